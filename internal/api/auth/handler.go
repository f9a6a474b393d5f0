// Package auth implements session-based authentication: registration,
// login, logout and password reset against the users table. The
// session cookie is the only authorization mechanism.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/flycloudone/flycloud/internal/database"
)

// Handler serves the authentication routes.
type Handler struct {
	db database.DB
}

func New(db database.DB) *Handler {
	return &Handler{db: db}
}

// LoginForm renders the login page.
func (h *Handler) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"Flashes": Flashes(c),
		"Next":    c.Query("next"),
	})
}

// Login authenticates by email or username. The failure message is the
// same whether the account exists or not.
func (h *Handler) Login(c *gin.Context) {
	identifier := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	user, err := h.db.GetUserByIdentifier(c.Request.Context(), identifier)
	if err != nil || !CheckPassword(user.PasswordHash, password) {
		Flash(c, "Invalid username or password")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserID, user.ID)
	session.Set(sessionUsername, user.Username)
	if err := session.Save(); err != nil {
		log.Error("failed to save session", "error", err)
		Flash(c, "Something went wrong, try again")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	next := c.Query("next")
	if next == "" || !strings.HasPrefix(next, "/") {
		next = "/"
	}
	c.Redirect(http.StatusFound, next)
}

// Logout clears the session binding. Logging out twice is fine.
func (h *Handler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete(sessionUserID)
	session.Delete(sessionUsername)
	if err := session.Save(); err != nil {
		log.Error("failed to save session", "error", err)
	}
	c.Redirect(http.StatusFound, "/login")
}

// RegisterForm renders the registration page.
func (h *Handler) RegisterForm(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{
		"Flashes": Flashes(c),
	})
}

// Register creates a new account. It does not log the user in.
func (h *Handler) Register(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.ToLower(strings.TrimSpace(c.PostForm("email")))
	password := c.PostForm("password")
	confirm := c.PostForm("confirm_password")

	if username == "" || email == "" || password == "" || confirm == "" {
		Flash(c, "All fields are required")
		c.Redirect(http.StatusFound, "/register")
		return
	}
	if password != confirm {
		Flash(c, "Passwords do not match")
		c.Redirect(http.StatusFound, "/register")
		return
	}

	ctx := c.Request.Context()
	if _, err := h.db.GetUserByEmail(ctx, email); err == nil {
		Flash(c, "This email is already registered")
		c.Redirect(http.StatusFound, "/register")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error("failed to check existing email", "error", err)
		Flash(c, "Something went wrong, try again")
		c.Redirect(http.StatusFound, "/register")
		return
	}

	hash, err := HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		Flash(c, "Something went wrong, try again")
		c.Redirect(http.StatusFound, "/register")
		return
	}

	user := &database.User{Username: username, Email: email, PasswordHash: hash}
	if err := h.db.CreateUser(ctx, user); err != nil {
		Flash(c, "This email is already registered")
		c.Redirect(http.StatusFound, "/register")
		return
	}

	log.Info("user registered", "user", username)
	Flash(c, "Registration successful, you can log in now")
	c.Redirect(http.StatusFound, "/login")
}

// ResetPasswordForm renders the password reset page.
func (h *Handler) ResetPasswordForm(c *gin.Context) {
	c.HTML(http.StatusOK, "reset_password.html", gin.H{
		"Flashes": Flashes(c),
	})
}

// ResetPassword replaces the password hash after verifying the current
// password. The lookup is by exact username. Other active sessions
// stay valid.
func (h *Handler) ResetPassword(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	current := c.PostForm("current_password")
	newPassword := c.PostForm("new_password")

	ctx := c.Request.Context()
	user, err := h.db.GetUserByUsername(ctx, username)
	if err != nil {
		Flash(c, "User not found")
		c.Redirect(http.StatusFound, "/reset_password")
		return
	}
	if !CheckPassword(user.PasswordHash, current) {
		Flash(c, "Current password is not correct")
		c.Redirect(http.StatusFound, "/reset_password")
		return
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		Flash(c, "Something went wrong, try again")
		c.Redirect(http.StatusFound, "/reset_password")
		return
	}
	if err := h.db.UpdatePassword(ctx, user.ID, hash); err != nil {
		Flash(c, "Something went wrong, try again")
		c.Redirect(http.StatusFound, "/reset_password")
		return
	}

	log.Info("password updated", "user", username)
	Flash(c, "Password updated, log in again")
	c.Redirect(http.StatusFound, "/login")
}
