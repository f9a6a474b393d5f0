package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/flycloudone/flycloud/internal/config"
	"github.com/flycloudone/flycloud/internal/database"
)

type AuthHandlerTestSuite struct {
	suite.Suite
	db      *database.Client
	handler *Handler
	router  *gin.Engine
}

func (s *AuthHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := database.New(&config.DatabaseConfig{
		Path: filepath.Join(s.T().TempDir(), "test.db"),
	})
	require.NoError(s.T(), err)
	s.db = db
	s.handler = New(db)

	s.router = gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	s.router.Use(sessions.Sessions("flycloud_session", store))

	s.router.POST("/login", s.handler.Login)
	s.router.POST("/register", s.handler.Register)
	s.router.POST("/reset_password", s.handler.ResetPassword)

	protected := s.router.Group("/")
	protected.Use(s.handler.RequireAuth())
	protected.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "home of user %d", CurrentUserID(c))
	})
	protected.GET("/logout", s.handler.Logout)
}

func (s *AuthHandlerTestSuite) TearDownTest() {
	require.NoError(s.T(), s.db.Close())
}

func (s *AuthHandlerTestSuite) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *AuthHandlerTestSuite) register(username, email, password string) *httptest.ResponseRecorder {
	form := url.Values{}
	form.Add("username", username)
	form.Add("email", email)
	form.Add("password", password)
	form.Add("confirm_password", password)
	return s.postForm("/register", form)
}

func (s *AuthHandlerTestSuite) TestRegister() {
	w := s.register("ana", "Ana@Example.com", "secret123")

	assert.Equal(s.T(), http.StatusFound, w.Code)
	assert.Equal(s.T(), "/login", w.Header().Get("Location"))

	user, err := s.db.GetUserByEmail(context.Background(), "ana@example.com")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "ana", user.Username)
	// The plaintext password is never stored.
	assert.NotEqual(s.T(), "secret123", user.PasswordHash)
	assert.True(s.T(), CheckPassword(user.PasswordHash, "secret123"))
}

func (s *AuthHandlerTestSuite) TestRegisterMissingFields() {
	form := url.Values{}
	form.Add("username", "ana")
	form.Add("password", "secret123")
	form.Add("confirm_password", "secret123")
	w := s.postForm("/register", form)

	assert.Equal(s.T(), http.StatusFound, w.Code)
	assert.Equal(s.T(), "/register", w.Header().Get("Location"))
}

func (s *AuthHandlerTestSuite) TestRegisterPasswordMismatch() {
	form := url.Values{}
	form.Add("username", "ana")
	form.Add("email", "ana@example.com")
	form.Add("password", "secret123")
	form.Add("confirm_password", "different")
	w := s.postForm("/register", form)

	assert.Equal(s.T(), http.StatusFound, w.Code)
	assert.Equal(s.T(), "/register", w.Header().Get("Location"))
}

func (s *AuthHandlerTestSuite) TestRegisterDuplicateEmail() {
	s.register("ana", "ana@example.com", "secret123")
	w := s.register("impostor", "ANA@EXAMPLE.COM", "other456")

	assert.Equal(s.T(), http.StatusFound, w.Code)
	assert.Equal(s.T(), "/register", w.Header().Get("Location"))

	// The original row is untouched.
	user, err := s.db.GetUserByEmail(context.Background(), "ana@example.com")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "ana", user.Username)
	assert.True(s.T(), CheckPassword(user.PasswordHash, "secret123"))
}

func (s *AuthHandlerTestSuite) TestLoginByEmailAndUsername() {
	s.register("Ana", "ana@example.com", "secret123")

	for _, identifier := range []string{"ana@example.com", "ANA@example.com", "Ana"} {
		form := url.Values{}
		form.Add("username", identifier)
		form.Add("password", "secret123")
		w := s.postForm("/login", form)

		assert.Equal(s.T(), http.StatusFound, w.Code, identifier)
		assert.Equal(s.T(), "/", w.Header().Get("Location"), identifier)
	}
}

func (s *AuthHandlerTestSuite) TestLoginWrongPassword() {
	s.register("ana", "ana@example.com", "secret123")

	form := url.Values{}
	form.Add("username", "ana@example.com")
	form.Add("password", "wrong")
	w := s.postForm("/login", form)

	assert.Equal(s.T(), http.StatusFound, w.Code)
	assert.Equal(s.T(), "/login", w.Header().Get("Location"))
}

func (s *AuthHandlerTestSuite) TestLoginUnknownAccount() {
	// Unknown accounts behave exactly like wrong passwords.
	form := url.Values{}
	form.Add("username", "nobody@example.com")
	form.Add("password", "whatever")
	w := s.postForm("/login", form)

	assert.Equal(s.T(), http.StatusFound, w.Code)
	assert.Equal(s.T(), "/login", w.Header().Get("Location"))
}

func (s *AuthHandlerTestSuite) TestSessionFlow() {
	s.register("ana", "ana@example.com", "secret123")

	form := url.Values{}
	form.Add("username", "ana@example.com")
	form.Add("password", "secret123")
	login := s.postForm("/login", form)
	require.Equal(s.T(), http.StatusFound, login.Code)
	cookies := login.Result().Cookies()
	require.NotEmpty(s.T(), cookies)

	// With the session cookie the protected route is reachable.
	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Contains(s.T(), w.Body.String(), "home of user")

	// Logout clears the binding.
	req = httptest.NewRequest("GET", "/logout", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	logout := httptest.NewRecorder()
	s.router.ServeHTTP(logout, req)
	assert.Equal(s.T(), http.StatusFound, logout.Code)

	// The stale cookie no longer grants access.
	req = httptest.NewRequest("GET", "/", nil)
	for _, c := range logout.Result().Cookies() {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(s.T(), http.StatusFound, w.Code)
	assert.Contains(s.T(), w.Header().Get("Location"), "/login")
}

func (s *AuthHandlerTestSuite) TestRequireAuthRedirect() {
	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusFound, w.Code)
	assert.Equal(s.T(), "/login?next=/", w.Header().Get("Location"))
}

func (s *AuthHandlerTestSuite) TestResetPassword() {
	s.register("ana", "ana@example.com", "secret123")

	form := url.Values{}
	form.Add("username", "ana")
	form.Add("current_password", "secret123")
	form.Add("new_password", "changed456")
	w := s.postForm("/reset_password", form)

	assert.Equal(s.T(), http.StatusFound, w.Code)
	assert.Equal(s.T(), "/login", w.Header().Get("Location"))

	user, err := s.db.GetUserByEmail(context.Background(), "ana@example.com")
	require.NoError(s.T(), err)
	assert.True(s.T(), CheckPassword(user.PasswordHash, "changed456"))
	assert.False(s.T(), CheckPassword(user.PasswordHash, "secret123"))
}

func (s *AuthHandlerTestSuite) TestResetPasswordWrongCurrent() {
	s.register("ana", "ana@example.com", "secret123")

	form := url.Values{}
	form.Add("username", "ana")
	form.Add("current_password", "wrong")
	form.Add("new_password", "changed456")
	w := s.postForm("/reset_password", form)

	assert.Equal(s.T(), http.StatusFound, w.Code)
	assert.Equal(s.T(), "/reset_password", w.Header().Get("Location"))

	user, err := s.db.GetUserByEmail(context.Background(), "ana@example.com")
	require.NoError(s.T(), err)
	assert.True(s.T(), CheckPassword(user.PasswordHash, "secret123"))
}

func TestAuthHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)
	assert.True(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword(hash, "secret124"))
}
