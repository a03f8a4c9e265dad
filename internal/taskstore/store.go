// Package taskstore owns tasks and projects for the lifetime of a process
// and enforces the kanban status rules. Every mutation is written through
// to a persistence backend before it becomes visible.
package taskstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/existflow/bizflow/internal/logger"
	"github.com/existflow/bizflow/internal/model"
)

const (
	collectionTasks    = "tasks"
	collectionProjects = "projects"
	collectionMeta     = "meta"

	// metaNextTaskID holds the next unused task id so ids of deleted
	// tasks are never handed out again.
	metaNextTaskID = "next_task_id"
)

// Persistence is the CRUD contract the store needs from its backend.
type Persistence interface {
	Get(ctx context.Context, collection, id string) ([]byte, bool, error)
	Put(ctx context.Context, collection, id string, data []byte) error
	Delete(ctx context.Context, collection, id string) error
	List(ctx context.Context, collection string) ([][]byte, error)
}

// TaskInput is the payload of a manual form submission or a generated
// task draft.
type TaskInput struct {
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Priority      model.Priority `json:"priority,omitempty"`
	Project       string         `json:"project,omitempty"`
	Assignee      string         `json:"assignee,omitempty"`
	DueDate       string         `json:"due_date,omitempty"`
	EstimatedTime string         `json:"estimated_time,omitempty"`

	// Subtasks holds one subtask name per line.
	Subtasks           string   `json:"subtasks,omitempty"`
	Tags               []string `json:"tags,omitempty"`
	CompletionCriteria string   `json:"completion_criteria,omitempty"`
}

// Filter narrows List. Zero-valued fields match everything.
type Filter struct {
	Project  string
	Priority model.Priority
	Status   model.Status
	Assignee string
}

func (f Filter) match(t *model.Task) bool {
	if f.Project != "" && t.Project != f.Project {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Assignee != "" && t.Assignee != f.Assignee {
		return false
	}
	return true
}

// Option configures a Store
type Option func(*Store)

// WithPolicy sets the status transition policy (default strict).
func WithPolicy(p Policy) Option {
	return func(s *Store) { s.policy = p }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is the task and project collection. It is safe for concurrent
// use; all operations are serialized on one mutex.
type Store struct {
	mu      sync.Mutex
	backend Persistence
	policy  Policy
	now     func() time.Time

	tasks  map[int64]*model.Task
	order  []int64
	nextID int64

	projects     map[string]*model.Project
	projectOrder []string
}

// New loads existing tasks and projects from backend and returns a ready
// store. Task ids continue from the highest stored id.
func New(ctx context.Context, backend Persistence, opts ...Option) (*Store, error) {
	s := &Store{
		backend:  backend,
		policy:   PolicyStrict,
		now:      time.Now,
		tasks:    make(map[int64]*model.Task),
		nextID:   1,
		projects: make(map[string]*model.Project),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(ctx); err != nil {
		return nil, err
	}

	logger.Debug("Task store loaded",
		logger.F("tasks", len(s.tasks)),
		logger.F("projects", len(s.projects)),
		logger.F("policy", string(s.policy)))
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	rows, err := s.backend.List(ctx, collectionTasks)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	for _, raw := range rows {
		var t model.Task
		if err := json.Unmarshal(raw, &t); err != nil {
			return fmt.Errorf("failed to decode task: %w", err)
		}
		s.tasks[t.ID] = &t
		s.order = append(s.order, t.ID)
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}
	sort.Slice(s.order, func(i, j int) bool { return s.order[i] < s.order[j] })

	raw, ok, err := s.backend.Get(ctx, collectionMeta, metaNextTaskID)
	if err != nil {
		return fmt.Errorf("failed to load task counter: %w", err)
	}
	if ok {
		var next int64
		if err := json.Unmarshal(raw, &next); err != nil {
			return fmt.Errorf("failed to decode task counter: %w", err)
		}
		s.nextID = max(s.nextID, next)
	}

	rows, err = s.backend.List(ctx, collectionProjects)
	if err != nil {
		return fmt.Errorf("failed to load projects: %w", err)
	}
	for _, raw := range rows {
		var p model.Project
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("failed to decode project: %w", err)
		}
		s.projects[p.ID] = &p
		s.projectOrder = append(s.projectOrder, p.ID)
	}
	sort.SliceStable(s.projectOrder, func(i, j int) bool {
		return s.projects[s.projectOrder[i]].CreatedAt.Before(s.projects[s.projectOrder[j]].CreatedAt)
	})
	return nil
}

// Policy returns the active status policy
func (s *Store) Policy() Policy {
	return s.policy
}

// saveTask persists t and, only once that succeeded, makes it visible.
// Caller holds s.mu.
func (s *Store) saveTask(ctx context.Context, t model.Task) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode task %d: %w", t.ID, err)
	}
	if err := s.backend.Put(ctx, collectionTasks, strconv.FormatInt(t.ID, 10), data); err != nil {
		return fmt.Errorf("failed to save task %d: %w", t.ID, err)
	}
	if _, exists := s.tasks[t.ID]; !exists {
		s.order = append(s.order, t.ID)
	}
	s.tasks[t.ID] = &t
	return nil
}

// reserveID persists the counter past the next id and returns that id.
// Caller holds s.mu.
func (s *Store) reserveID(ctx context.Context) (int64, error) {
	id := s.nextID
	data, err := json.Marshal(id + 1)
	if err != nil {
		return 0, err
	}
	if err := s.backend.Put(ctx, collectionMeta, metaNextTaskID, data); err != nil {
		return 0, fmt.Errorf("failed to save task counter: %w", err)
	}
	s.nextID = id + 1
	return id, nil
}

// CreateTask validates in, assigns the next id and stores the task in
// ToDo. A non-nil sourceMessage marks the task as created from a message.
func (s *Store) CreateTask(ctx context.Context, in TaskInput, sourceMessage *model.Message) (model.Task, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Task{}, &ValidationError{Field: "name", Reason: "task name must not be empty"}
	}
	priority := in.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return model.Task{}, &ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q", in.Priority)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.reserveID(ctx)
	if err != nil {
		return model.Task{}, err
	}

	now := s.now()
	t := model.Task{
		ID:                 id,
		Name:               name,
		Description:        in.Description,
		Status:             model.StatusToDo,
		Priority:           priority,
		Project:            in.Project,
		Assignee:           in.Assignee,
		DueDate:            in.DueDate,
		EstimatedTime:      in.EstimatedTime,
		CreatedFromMessage: sourceMessage != nil,
		Subtasks:           ParseSubtasks(in.Subtasks),
		Comments:           []model.Comment{},
		Tags:               appendTags(nil, in.Tags...),
		CompletionCriteria: in.CompletionCriteria,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if sourceMessage != nil {
		msg := *sourceMessage
		t.SourceMessage = &msg
	}

	if err := s.saveTask(ctx, t); err != nil {
		return model.Task{}, err
	}

	logger.Info("Task created",
		logger.F("id", t.ID),
		logger.F("priority", string(t.Priority)),
		logger.F("from_message", t.CreatedFromMessage))
	return t.Clone(), nil
}

// Get returns a copy of one task
func (s *Store) Get(id int64) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return model.Task{}, taskNotFound(id)
	}
	return t.Clone(), nil
}

// mutate copies task id, applies fn to the copy and saves it. Nothing is
// changed if fn or the save fails.
func (s *Store) mutate(ctx context.Context, id int64, fn func(t *model.Task) error) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.tasks[id]
	if !ok {
		return model.Task{}, taskNotFound(id)
	}
	next := cur.Clone()
	if err := fn(&next); err != nil {
		return model.Task{}, err
	}
	next.UpdatedAt = s.now()
	if err := s.saveTask(ctx, next); err != nil {
		return model.Task{}, err
	}
	return next.Clone(), nil
}

// UpdateStatus moves a task to another column.
func (s *Store) UpdateStatus(ctx context.Context, id int64, to model.Status) (model.Task, error) {
	if !to.Valid() {
		return model.Task{}, &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", to)}
	}
	t, err := s.mutate(ctx, id, func(t *model.Task) error {
		if !s.policy.CanMove(t.Status, to) {
			return &InvalidTransitionError{
				TaskID:  t.ID,
				From:    t.Status,
				To:      to,
				Allowed: s.policy.Allowed(t.Status),
			}
		}
		t.Status = to
		return nil
	})
	if err != nil {
		return model.Task{}, err
	}
	logger.Info("Task moved", logger.F("id", id), logger.F("status", string(to)))
	return t, nil
}

// ToggleSubtask flips the completed flag of one subtask.
func (s *Store) ToggleSubtask(ctx context.Context, taskID int64, subtaskID int) (model.Task, error) {
	return s.mutate(ctx, taskID, func(t *model.Task) error {
		for i := range t.Subtasks {
			if t.Subtasks[i].ID == subtaskID {
				t.Subtasks[i].Completed = !t.Subtasks[i].Completed
				return nil
			}
		}
		return &NotFoundError{Kind: "subtask", ID: fmt.Sprintf("%d/%d", taskID, subtaskID)}
	})
}

// AddComment appends a comment stamped with the store clock. An empty
// author is recorded as "me".
func (s *Store) AddComment(ctx context.Context, taskID int64, author, text string) (model.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Task{}, &ValidationError{Field: "text", Reason: "comment text must not be empty"}
	}
	author = strings.TrimSpace(author)
	if author == "" {
		author = "me"
	}
	return s.mutate(ctx, taskID, func(t *model.Task) error {
		t.Comments = append(t.Comments, model.Comment{
			Author:    author,
			Text:      text,
			Timestamp: s.now(),
		})
		return nil
	})
}

// AddTags appends tags not already present, keeping insertion order.
func (s *Store) AddTags(ctx context.Context, taskID int64, tags ...string) (model.Task, error) {
	return s.mutate(ctx, taskID, func(t *model.Task) error {
		t.Tags = appendTags(t.Tags, tags...)
		return nil
	})
}

// DuplicateTask copies a task under a new id, back in ToDo.
func (s *Store) DuplicateTask(ctx context.Context, id int64) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.tasks[id]
	if !ok {
		return model.Task{}, taskNotFound(id)
	}

	newID, err := s.reserveID(ctx)
	if err != nil {
		return model.Task{}, err
	}

	now := s.now()
	dup := src.Clone()
	dup.ID = newID
	dup.Status = model.StatusToDo
	dup.CreatedAt = now
	dup.UpdatedAt = now

	if err := s.saveTask(ctx, dup); err != nil {
		return model.Task{}, err
	}

	logger.Info("Task duplicated", logger.F("source", id), logger.F("id", dup.ID))
	return dup.Clone(), nil
}

// DeleteTask removes a task. Deleting an id that is not present fails
// with NotFoundError, including a second delete of the same id.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return taskNotFound(id)
	}
	if err := s.backend.Delete(ctx, collectionTasks, strconv.FormatInt(id, 10)); err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}

	delete(s.tasks, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}

	logger.Info("Task deleted", logger.F("id", id))
	return nil
}

// List returns copies of the tasks matching f in creation order.
func (s *Store) List(f Filter) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []model.Task{}
	for _, id := range s.order {
		t := s.tasks[id]
		if f.match(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

func appendTags(tags []string, more ...string) []string {
	out := append([]string{}, tags...)
	for _, tag := range more {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		dup := false
		for _, existing := range out {
			if existing == tag {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, tag)
		}
	}
	return out
}
