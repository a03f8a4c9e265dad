package taskstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/existflow/bizflow/internal/model"
)

// ValidationError reports caller-supplied data that fails a precondition.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a task, subtask or project id that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// InvalidTransitionError reports a status move the active policy forbids.
// Allowed lists the moves that would have been accepted.
type InvalidTransitionError struct {
	TaskID  int64
	From    model.Status
	To      model.Status
	Allowed []model.Status
}

func (e *InvalidTransitionError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		allowed[i] = string(s)
	}
	return fmt.Sprintf("task %d cannot move from %s to %s (allowed: %s)",
		e.TaskID, e.From, e.To, strings.Join(allowed, ", "))
}

// Kind names the error category for CLI and HTTP callers.
func Kind(err error) string {
	var ve *ValidationError
	var nf *NotFoundError
	var it *InvalidTransitionError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return "ValidationError"
	case errors.As(err, &nf):
		return "NotFoundError"
	case errors.As(err, &it):
		return "InvalidTransitionError"
	default:
		return "Error"
	}
}

func taskNotFound(id int64) error {
	return &NotFoundError{Kind: "task", ID: fmt.Sprint(id)}
}
