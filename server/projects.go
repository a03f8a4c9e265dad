package server

import (
	"net/http"

	"github.com/existflow/bizflow/internal/taskstore"
	"github.com/labstack/echo/v4"
)

type progressRequest struct {
	Progress int `json:"progress"`
}

func (s *Server) handleListProjects(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.ListProjects())
}

func (s *Server) handleCreateProject(c echo.Context) error {
	var req taskstore.ProjectInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "project", "invalid request")
	}
	p, err := s.store.CreateProject(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) handleGetProject(c echo.Context) error {
	p, err := s.store.GetProject(c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleSetProgress(c echo.Context) error {
	var req progressRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "progress", "invalid request")
	}
	p, err := s.store.SetProjectProgress(c.Request().Context(), c.Param("id"), req.Progress)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// handleProjectStats counts the tasks filed under the project's name
func (s *Server) handleProjectStats(c echo.Context) error {
	p, err := s.store.GetProject(c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s.store.ProjectStats(p.Name))
}
