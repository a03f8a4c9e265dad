// Package server exposes triage, drafting and the task board over a JSON
// HTTP API behind a single-user login.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/existflow/bizflow/internal/assist"
	"github.com/existflow/bizflow/internal/config"
	"github.com/existflow/bizflow/internal/logger"
	"github.com/existflow/bizflow/internal/taskstore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"
)

// defaultPassword is accepted when no password hash is configured.
const defaultPassword = "admin123"

// Server is the BizFlow API server
type Server struct {
	store    *taskstore.Store
	sessions *sessionStore
	gen      assist.Generator
	auth     config.AuthConfig
	author   string
	echo     *echo.Echo
}

// New creates a server over an opened store. backend holds login
// sessions; it is normally the same backend the store was loaded from.
func New(store *taskstore.Store, backend taskstore.Persistence, gen assist.Generator, cfg *config.Config) (*Server, error) {
	auth := cfg.Auth
	if auth.Username == "" {
		auth.Username = "admin"
	}
	if auth.PasswordHash == "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash default password: %w", err)
		}
		auth.PasswordHash = string(hash)
		logger.Warn("No password configured, using the default login; run 'bizflow auth hash-password --save'",
			logger.F("username", auth.Username))
	}

	s := &Server{
		store:    store,
		sessions: newSessionStore(backend, sessionTTL),
		gen:      gen,
		auth:     auth,
		author:   cfg.Tasks.CommentAuthor,
	}
	s.setupEcho()
	return s, nil
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(requestLogger)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	// Health check
	e.GET("/health", s.handleHealth)

	// API v1
	api := e.Group("/api/v1")
	api.POST("/login", s.handleLogin)

	// Protected endpoints
	protected := api.Group("")
	protected.Use(s.authMiddleware)
	protected.GET("/me", s.handleMe)
	protected.POST("/logout", s.handleLogout)

	protected.POST("/classify", s.handleClassify)
	protected.POST("/advise-timing", s.handleAdviseTiming)
	protected.POST("/drafts/reply", s.handleDraftReply)
	protected.POST("/drafts/task", s.handleDraftTask)
	protected.POST("/drafts/summary", s.handleDraftSummary)

	protected.GET("/tasks", s.handleListTasks)
	protected.POST("/tasks", s.handleCreateTask)
	protected.POST("/tasks/from-message", s.handleTaskFromMessage)
	protected.GET("/tasks/:id", s.handleGetTask)
	protected.DELETE("/tasks/:id", s.handleDeleteTask)
	protected.PUT("/tasks/:id/status", s.handleUpdateStatus)
	protected.POST("/tasks/:id/subtasks/:sid/toggle", s.handleToggleSubtask)
	protected.POST("/tasks/:id/comments", s.handleAddComment)
	protected.POST("/tasks/:id/tags", s.handleAddTags)
	protected.POST("/tasks/:id/duplicate", s.handleDuplicateTask)

	protected.GET("/projects", s.handleListProjects)
	protected.POST("/projects", s.handleCreateProject)
	protected.GET("/projects/:id", s.handleGetProject)
	protected.PUT("/projects/:id/progress", s.handleSetProgress)
	protected.GET("/projects/:id/stats", s.handleProjectStats)

	s.echo = e
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	logger.Info("Server listening", logger.F("addr", addr))
	return s.echo.Start(addr)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
