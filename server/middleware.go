package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/existflow/bizflow/internal/logger"
	"github.com/labstack/echo/v4"
)

// requestLogger writes one entry per request to the project logger
func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		res := c.Response()
		fields := []logger.Field{
			logger.F("method", req.Method),
			logger.F("uri", req.RequestURI),
			logger.F("status", res.Status),
			logger.F("size", res.Size),
			logger.F("duration", time.Since(start).String()),
			logger.F("request_id", res.Header().Get(echo.HeaderXRequestID)),
		}
		if res.Status >= http.StatusInternalServerError {
			logger.Error("HTTP Response", fields...)
		} else {
			logger.Info("HTTP Response", fields...)
		}
		return nil
	}
}

// authMiddleware checks for valid session token
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// Get token from Authorization header
		auth := c.Request().Header.Get("Authorization")
		if auth == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authorization required"})
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid authorization format"})
		}

		session, err := s.sessions.lookup(c.Request().Context(), token)
		switch {
		case errors.Is(err, errNoSession), errors.Is(err, errSessionExpired):
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
		case err != nil:
			return err
		}

		c.Set("username", session.Username)
		c.Set("token", token)
		return next(c)
	}
}
