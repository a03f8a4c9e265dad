package taskstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/existflow/bizflow/internal/logger"
	"github.com/existflow/bizflow/internal/model"
)

// ProjectInput is the payload for a new project
type ProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Progress    int    `json:"progress,omitempty"`
}

func validateProgress(progress int) error {
	if progress < 0 || progress > 100 {
		return &ValidationError{Field: "progress", Reason: fmt.Sprintf("%d is outside 0-100", progress)}
	}
	return nil
}

func (s *Store) saveProject(ctx context.Context, p model.Project) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode project %s: %w", p.ID, err)
	}
	if err := s.backend.Put(ctx, collectionProjects, p.ID, data); err != nil {
		return fmt.Errorf("failed to save project %s: %w", p.ID, err)
	}
	if _, exists := s.projects[p.ID]; !exists {
		s.projectOrder = append(s.projectOrder, p.ID)
	}
	s.projects[p.ID] = &p
	return nil
}

// CreateProject stores a new project. The id is a slug of the name, or a
// short random id when the slug is taken.
func (s *Store) CreateProject(ctx context.Context, in ProjectInput) (model.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Project{}, &ValidationError{Field: "name", Reason: "project name must not be empty"}
	}
	if err := validateProgress(in.Progress); err != nil {
		return model.Project{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	if _, exists := s.projects[id]; exists {
		id = uuid.New().String()[:8]
	}

	p := model.NewProject(id, name)
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	p.Description = in.Description
	p.Progress = in.Progress
	if in.Color != "" {
		p.Color = in.Color
	}

	if err := s.saveProject(ctx, p); err != nil {
		return model.Project{}, err
	}
	logger.Info("Project created", logger.F("id", id), logger.F("name", name))
	return p, nil
}

// GetProject returns one project by id
func (s *Store) GetProject(id string) (model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return model.Project{}, &NotFoundError{Kind: "project", ID: id}
	}
	return *p, nil
}

// ListProjects returns all projects in creation order
func (s *Store) ListProjects() []model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Project, 0, len(s.projectOrder))
	for _, id := range s.projectOrder {
		out = append(out, *s.projects[id])
	}
	return out
}

// SetProjectProgress records a hand-entered progress value.
func (s *Store) SetProjectProgress(ctx context.Context, id string, progress int) (model.Project, error) {
	if err := validateProgress(progress); err != nil {
		return model.Project{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.projects[id]
	if !ok {
		return model.Project{}, &NotFoundError{Kind: "project", ID: id}
	}
	next := *cur
	next.Progress = progress
	if progress == 100 {
		next.Status = model.ProjectCompleted
	} else if next.Status == model.ProjectCompleted {
		next.Status = model.ProjectActive
	}
	next.UpdatedAt = s.now()

	if err := s.saveProject(ctx, next); err != nil {
		return model.Project{}, err
	}
	return next, nil
}

// ProjectStats counts the tasks filed under a project name. It does not
// touch the project's own Progress value.
func (s *Store) ProjectStats(project string) model.ProjectStats {
	tasks := s.List(Filter{Project: project})

	stats := model.ProjectStats{
		Project:  project,
		Total:    len(tasks),
		ByStatus: make(map[model.Status]int, len(model.Statuses)),
	}
	for _, st := range model.Statuses {
		stats.ByStatus[st] = 0
	}
	for _, t := range tasks {
		stats.ByStatus[t.Status]++
	}
	if stats.Total > 0 {
		stats.CompletionRate = float64(stats.ByStatus[model.StatusDone]) / float64(stats.Total)
	}
	return stats
}
