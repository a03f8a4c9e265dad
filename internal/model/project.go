package model

import "time"

// Project status values.
const (
	ProjectActive    = "active"
	ProjectCompleted = "completed"
	ProjectArchived  = "archived"
)

// Project is a display aggregate. Progress is set by hand and is not
// kept in line with the completion of the project's tasks.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Progress    int       `json:"progress"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProject creates an active project with defaults
func NewProject(id, name string) Project {
	now := time.Now()
	return Project{
		ID:        id,
		Name:      name,
		Status:    ProjectActive,
		Color:     "#4ECDC4",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ProjectStats summarises the tasks filed under a project name.
type ProjectStats struct {
	Project        string         `json:"project"`
	Total          int            `json:"total"`
	ByStatus       map[Status]int `json:"by_status"`
	CompletionRate float64        `json:"completion_rate"`
}
