package server

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/existflow/bizflow/internal/logger"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	Username  string `json:"username"`
}

// handleLogin checks the configured login and issues a session token
func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.auth.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(s.auth.PasswordHash), []byte(req.Password))
	if !userOK || passErr != nil {
		logger.Warn("Login failed", logger.F("username", req.Username))
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}

	session, err := s.sessions.create(c.Request().Context(), req.Username)
	if err != nil {
		logger.Error("Session error", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	logger.Info("User logged in", logger.F("username", req.Username))

	return c.JSON(http.StatusOK, authResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
		Username:  session.Username,
	})
}

// handleLogout revokes the calling session
func (s *Server) handleLogout(c echo.Context) error {
	token := c.Get("token").(string)
	if err := s.sessions.revoke(c.Request().Context(), token); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

// handleMe returns current user info
func (s *Server) handleMe(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"username": c.Get("username").(string),
	})
}
