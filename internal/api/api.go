// Package api wires the HTTP server: session middleware, the auth
// routes and the category file routes.
package api

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/flycloudone/flycloud/internal/api/auth"
	"github.com/flycloudone/flycloud/internal/api/handler"
	"github.com/flycloudone/flycloud/internal/api/templates"
	"github.com/flycloudone/flycloud/internal/config"
	"github.com/flycloudone/flycloud/internal/database"
	"github.com/flycloudone/flycloud/internal/storage"
)

// Server is the flycloud HTTP server.
type Server struct {
	cfg         *config.Config
	ginEngine   *gin.Engine
	authHandler *auth.Handler
	fileHandler *handler.Handler
}

// New creates the server with the given backend already selected.
func New(cfg *config.Config, db database.DB, local *storage.Local, backend storage.Backend, debug bool) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), gzip.Gzip(gzip.DefaultCompression))

	tmpl, err := templates.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	engine.SetHTMLTemplate(tmpl)

	return &Server{
		cfg:         cfg,
		ginEngine:   engine,
		authHandler: auth.New(db),
		fileHandler: handler.New(local, backend),
	}, nil
}

func (s *Server) setupSession() {
	store := cookie.NewStore([]byte(s.cfg.SessionKey))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   s.cfg.SessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.ginEngine.Use(sessions.Sessions("flycloud_session", store))
}

func (s *Server) setupRoutes() {
	s.setupSession()

	s.ginEngine.GET("/login", s.authHandler.LoginForm)
	s.ginEngine.POST("/login", s.authHandler.Login)
	s.ginEngine.GET("/register", s.authHandler.RegisterForm)
	s.ginEngine.POST("/register", s.authHandler.Register)
	s.ginEngine.GET("/reset_password", s.authHandler.ResetPasswordForm)
	s.ginEngine.POST("/reset_password", s.authHandler.ResetPassword)

	protected := s.ginEngine.Group("/")
	protected.Use(s.authHandler.RequireAuth())

	protected.GET("/", s.fileHandler.Home)
	protected.GET("/logout", s.authHandler.Logout)
	protected.POST("/upload/:category", s.fileHandler.Upload)
	protected.GET("/download/:category/:filename", s.fileHandler.Download)
	protected.GET("/preview/:category/:filename", s.fileHandler.Preview)
	protected.GET("/uploads/:category/:filename", s.fileHandler.Raw)
	protected.GET("/delete/:category/:filename", s.fileHandler.Delete)
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	s.setupRoutes()

	return s.ginEngine.Run(s.cfg.Listen)
}
