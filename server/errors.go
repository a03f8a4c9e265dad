package server

import (
	"errors"
	"net/http"

	"github.com/existflow/bizflow/internal/logger"
	"github.com/existflow/bizflow/internal/model"
	"github.com/existflow/bizflow/internal/taskstore"
	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Error   string         `json:"error"`
	Kind    string         `json:"kind"`
	Allowed []model.Status `json:"allowed,omitempty"`
}

// writeError maps store errors onto HTTP status codes
func writeError(c echo.Context, err error) error {
	resp := errorResponse{Error: err.Error(), Kind: taskstore.Kind(err)}

	status := http.StatusInternalServerError
	switch resp.Kind {
	case "ValidationError":
		status = http.StatusBadRequest
	case "NotFoundError":
		status = http.StatusNotFound
	case "InvalidTransitionError":
		status = http.StatusConflict
		var it *taskstore.InvalidTransitionError
		if errors.As(err, &it) {
			resp.Allowed = it.Allowed
		}
	default:
		logger.Error("Request failed", logger.F("uri", c.Request().RequestURI), logger.F("error", err))
		resp.Error = "internal error"
	}
	return c.JSON(status, resp)
}

func badRequest(c echo.Context, field, reason string) error {
	return writeError(c, &taskstore.ValidationError{Field: field, Reason: reason})
}
