package server

import (
	"database/sql"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/existflow/carnet/internal/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	_ "modernc.org/sqlite"
)

// Server is the carnet recipe server
type Server struct {
	db      *sql.DB
	echo    *echo.Echo
	dataDir string
}

// New creates a server backed by a sqlite database at dbPath. Uploaded
// images are stored under dataDir/uploads.
func New(dbPath, dataDir string) (*Server, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Join(dataDir, "uploads"), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	s := &Server{
		db:      db,
		dataDir: dataDir,
	}

	// Run migrations
	if err := s.migrate(); err != nil {
		return nil, err
	}

	// Setup Echo
	s.setupEcho()

	return s, nil
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true

	// Custom logging middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			res := c.Response()
			logger.Info("HTTP request",
				logger.F("method", req.Method),
				logger.F("uri", req.RequestURI),
				logger.F("status", res.Status),
				logger.F("size", res.Size),
				logger.F("duration", time.Since(start).String()))

			return err
		}
	})

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	// Health check
	e.GET("/health", s.handleHealth)

	// Uploaded images
	e.Static("/uploads", filepath.Join(s.dataDir, "uploads"))

	api := e.Group("/api")

	// Auth
	api.POST("/auth/login", s.handleLogin)
	api.POST("/auth/register", s.handleRegister)
	api.GET("/auth/me", s.handleMe, s.authMiddleware)
	api.POST("/auth/refresh", s.handleRefresh, s.authMiddleware)

	// Invites
	api.GET("/invites/validate/:token", s.handleInviteValidate)
	api.POST("/invites", s.handleInviteCreate, s.authMiddleware)

	// Categories (reads are public, writes require auth)
	api.GET("/categories", s.handleCategoryList)
	api.GET("/categories/:id", s.handleCategoryGet)
	api.GET("/categories/:id/recipes/count", s.handleCategoryRecipeCount)
	api.POST("/categories", s.handleCategoryCreate, s.authMiddleware)
	api.PUT("/categories/:id", s.handleCategoryUpdate, s.authMiddleware)
	api.DELETE("/categories/:id", s.handleCategoryDelete, s.authMiddleware)
	api.POST("/categories/:id/image", s.handleCategoryImageUpload, s.authMiddleware)
	api.DELETE("/categories/:id/image", s.handleCategoryImageDelete, s.authMiddleware)

	// Users
	api.PATCH("/users/me", s.handleProfileUpdate, s.authMiddleware)
	api.POST("/users/me/password", s.handlePasswordChange, s.authMiddleware)
	api.POST("/users/me/avatar", s.handleAvatarUpload, s.authMiddleware)
	api.DELETE("/users/me/avatar", s.handleAvatarDelete, s.authMiddleware)
	api.GET("/users/me/invited", s.handleInvitedList, s.authMiddleware)

	// Recipes (reads are public, writes require auth)
	api.GET("/recipes", s.handleRecipeList)
	api.GET("/recipes/:id", s.handleRecipeGet)
	api.POST("/recipes", s.handleRecipeCreate, s.authMiddleware)
	api.PUT("/recipes/:id", s.handleRecipeUpdate, s.authMiddleware)
	api.DELETE("/recipes/:id", s.handleRecipeDelete, s.authMiddleware)
	api.POST("/recipes/:id/image", s.handleRecipeImageUpload, s.authMiddleware)
	api.DELETE("/recipes/:id/image", s.handleRecipeImageDelete, s.authMiddleware)

	s.echo = e
}

// Close closes the database connection
func (s *Server) Close() error {
	return s.db.Close()
}

// Router returns the HTTP handler, mainly so tests can drive the server
// through httptest
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// jsonError writes the uniform error body. Every failure leaving this
// server is {"detail": "<message>"} so clients normalize on one shape.
func jsonError(c echo.Context, status int, detail string) error {
	return c.JSON(status, map[string]string{"detail": detail})
}
