package model

import (
	"fmt"
	"strings"
	"time"
)

// Status is a kanban column.
type Status string

const (
	StatusToDo       Status = "ToDo"
	StatusInProgress Status = "InProgress"
	StatusInReview   Status = "InReview"
	StatusDone       Status = "Done"
)

// Statuses lists the board columns left to right.
var Statuses = []Status{StatusToDo, StatusInProgress, StatusInReview, StatusDone}

// Valid reports whether s is a known column.
func (s Status) Valid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

// Title returns the column heading shown on the board.
func (s Status) Title() string {
	switch s {
	case StatusToDo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusInReview:
		return "In Review"
	case StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// ParseStatus accepts the canonical names in any case, with or without
// separators ("in-progress", "in_review", "todo").
func ParseStatus(s string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "", "_", "", " ", "").Replace(norm)
	switch norm {
	case "todo":
		return StatusToDo, nil
	case "inprogress", "doing":
		return StatusInProgress, nil
	case "inreview", "review":
		return StatusInReview, nil
	case "done":
		return StatusDone, nil
	}
	return "", fmt.Errorf("unknown status %q (want ToDo, InProgress, InReview or Done)", s)
}

// Subtask is a checklist entry owned by a task.
type Subtask struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// Comment is an append-only note on a task.
type Comment struct {
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Task is a card on the board.
type Task struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`

	// Project is a grouping key; it is not checked against stored projects.
	Project  string `json:"project,omitempty"`
	Assignee string `json:"assignee,omitempty"`

	// DueDate and EstimatedTime are free text ("next Friday", "2-3h").
	DueDate       string `json:"due_date,omitempty"`
	EstimatedTime string `json:"estimated_time,omitempty"`

	CreatedFromMessage bool     `json:"created_from_message"`
	SourceMessage      *Message `json:"source_message,omitempty"`

	Subtasks           []Subtask `json:"subtasks"`
	Comments           []Comment `json:"comments"`
	Tags               []string  `json:"tags"`
	CompletionCriteria string    `json:"completion_criteria,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	c := t
	if t.SourceMessage != nil {
		msg := *t.SourceMessage
		c.SourceMessage = &msg
	}
	c.Subtasks = append([]Subtask{}, t.Subtasks...)
	c.Comments = append([]Comment{}, t.Comments...)
	c.Tags = append([]string{}, t.Tags...)
	return c
}

// SubtaskProgress returns completed and total subtask counts.
func (t Task) SubtaskProgress() (done, total int) {
	for _, st := range t.Subtasks {
		if st.Completed {
			done++
		}
	}
	return done, len(t.Subtasks)
}
