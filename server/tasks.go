package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/existflow/bizflow/internal/assist"
	"github.com/existflow/bizflow/internal/model"
	"github.com/existflow/bizflow/internal/taskstore"
	"github.com/labstack/echo/v4"
)

type createTaskRequest struct {
	taskstore.TaskInput
	SourceMessage *model.Message `json:"source_message,omitempty"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type commentRequest struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

type tagsRequest struct {
	Tags []string `json:"tags"`
}

func taskID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &taskstore.ValidationError{Field: "id", Reason: fmt.Sprintf("%q is not a task id", c.Param("id"))}
	}
	return id, nil
}

func (s *Server) handleListTasks(c echo.Context) error {
	f := taskstore.Filter{
		Project:  c.QueryParam("project"),
		Assignee: c.QueryParam("assignee"),
	}
	if v := c.QueryParam("priority"); v != "" {
		p, err := model.ParsePriority(v)
		if err != nil {
			return badRequest(c, "priority", err.Error())
		}
		f.Priority = p
	}
	if v := c.QueryParam("status"); v != "" {
		st, err := model.ParseStatus(v)
		if err != nil {
			return badRequest(c, "status", err.Error())
		}
		f.Status = st
	}

	tasks := s.store.List(f)
	if tasks == nil {
		tasks = []model.Task{}
	}
	return c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(c echo.Context) error {
	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "task", "invalid request")
	}

	task, err := s.store.CreateTask(c.Request().Context(), req.TaskInput, req.SourceMessage)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, task)
}

// handleTaskFromMessage drafts a task from a message and stores it
func (s *Server) handleTaskFromMessage(c echo.Context) error {
	req, err := bindDraftMessage(c)
	if err != nil {
		return writeError(c, err)
	}

	draft, origin := assist.DraftTask(c.Request().Context(), s.gen, req.Message)
	in := draft.ToInput()
	if req.Project != "" {
		in.Project = req.Project
	}

	task, err := s.store.CreateTask(c.Request().Context(), in, &req.Message)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"origin": origin,
		"task":   task,
	})
}

func (s *Server) handleGetTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return writeError(c, err)
	}
	task, err := s.store.Get(id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) handleDeleteTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := s.store.DeleteTask(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleUpdateStatus(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return writeError(c, err)
	}
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "status", "invalid request")
	}
	status, err := model.ParseStatus(req.Status)
	if err != nil {
		return badRequest(c, "status", err.Error())
	}

	task, err := s.store.UpdateStatus(c.Request().Context(), id, status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) handleToggleSubtask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return writeError(c, err)
	}
	sid, err := strconv.Atoi(c.Param("sid"))
	if err != nil {
		return badRequest(c, "subtask id", fmt.Sprintf("%q is not a number", c.Param("sid")))
	}

	task, err := s.store.ToggleSubtask(c.Request().Context(), id, sid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) handleAddComment(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return writeError(c, err)
	}
	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "comment", "invalid request")
	}
	if req.Author == "" {
		req.Author = s.author
	}

	task, err := s.store.AddComment(c.Request().Context(), id, req.Author, req.Text)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) handleAddTags(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return writeError(c, err)
	}
	var req tagsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "tags", "invalid request")
	}

	task, err := s.store.AddTags(c.Request().Context(), id, req.Tags...)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) handleDuplicateTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return writeError(c, err)
	}
	task, err := s.store.DuplicateTask(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, task)
}
