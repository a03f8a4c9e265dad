package taskstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/existflow/bizflow/internal/db"
	"github.com/existflow/bizflow/internal/model"
)

func newStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := New(context.Background(), db.NewMemory(), opts...)
	if err != nil {
		t.Fatalf("new store failed: %v", err)
	}
	return s
}

func mustCreate(t *testing.T, s *Store, in TaskInput) model.Task {
	t.Helper()
	task, err := s.CreateTask(context.Background(), in, nil)
	if err != nil {
		t.Fatalf("create %q failed: %v", in.Name, err)
	}
	return task
}

func TestCreateTaskDefaults(t *testing.T) {
	s := newStore(t)
	seen := map[int64]bool{}
	for i := 0; i < 5; i++ {
		task := mustCreate(t, s, TaskInput{Name: "X"})
		if task.Status != model.StatusToDo {
			t.Fatalf("expected ToDo, got %s", task.Status)
		}
		if len(task.Subtasks) != 0 {
			t.Fatalf("expected no subtasks, got %v", task.Subtasks)
		}
		if task.Priority != model.PriorityMedium {
			t.Fatalf("expected default Medium priority, got %s", task.Priority)
		}
		if task.CreatedFromMessage || task.SourceMessage != nil {
			t.Fatal("manual task must not be marked as from message")
		}
		if seen[task.ID] {
			t.Fatalf("duplicate id %d", task.ID)
		}
		seen[task.ID] = true
	}
}

func TestCreateTaskValidation(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.CreateTask(ctx, TaskInput{Name: "   "}, nil)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "name" {
		t.Fatalf("expected name ValidationError, got %v", err)
	}

	_, err = s.CreateTask(ctx, TaskInput{Name: "x", Priority: "Urgentest"}, nil)
	if !errors.As(err, &ve) || ve.Field != "priority" {
		t.Fatalf("expected priority ValidationError, got %v", err)
	}

	if got := s.List(Filter{}); len(got) != 0 {
		t.Fatalf("failed creates left %d tasks behind", len(got))
	}
}

func TestCreateTaskParsesSubtasks(t *testing.T) {
	s := newStore(t)
	task := mustCreate(t, s, TaskInput{Name: "with list", Subtasks: "A\n\nB\nC"})

	want := []string{"A", "B", "C"}
	if len(task.Subtasks) != len(want) {
		t.Fatalf("expected %d subtasks, got %d", len(want), len(task.Subtasks))
	}
	for i, st := range task.Subtasks {
		if st.Name != want[i] || st.Completed {
			t.Fatalf("subtask %d = %+v", i, st)
		}
	}
}

func TestCreateTaskFromMessage(t *testing.T) {
	s := newStore(t)
	msg := &model.Message{Sender: "Client Corp", Subject: "contract"}
	task, err := s.CreateTask(context.Background(), TaskInput{Name: "reply"}, msg)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !task.CreatedFromMessage || task.SourceMessage == nil {
		t.Fatalf("expected message back-reference, got %+v", task)
	}
	msg.Subject = "changed"
	got, _ := s.Get(task.ID)
	if got.SourceMessage.Subject != "contract" {
		t.Fatal("stored message aliases the caller's value")
	}
}

func TestUpdateStatusStrict(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	task := mustCreate(t, s, TaskInput{Name: "flow"})

	_, err := s.UpdateStatus(ctx, task.ID, model.StatusDone)
	var it *InvalidTransitionError
	if !errors.As(err, &it) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if it.From != model.StatusToDo || it.To != model.StatusDone {
		t.Fatalf("unexpected transition detail: %+v", it)
	}
	if len(it.Allowed) != 1 || it.Allowed[0] != model.StatusInProgress {
		t.Fatalf("unexpected allowed list: %v", it.Allowed)
	}

	path := []model.Status{model.StatusInProgress, model.StatusInReview, model.StatusDone, model.StatusInReview, model.StatusInProgress, model.StatusToDo}
	for _, st := range path {
		got, err := s.UpdateStatus(ctx, task.ID, st)
		if err != nil {
			t.Fatalf("move to %s failed: %v", st, err)
		}
		if got.Status != st {
			t.Fatalf("expected %s, got %s", st, got.Status)
		}
	}
}

func TestUpdateStatusStrictRejectsSkips(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	task := mustCreate(t, s, TaskInput{Name: "skip"})
	s.UpdateStatus(ctx, task.ID, model.StatusInProgress)

	if _, err := s.UpdateStatus(ctx, task.ID, model.StatusDone); Kind(err) != "InvalidTransitionError" {
		t.Fatalf("InProgress -> Done should be rejected, got %v", err)
	}
	got, _ := s.Get(task.ID)
	if got.Status != model.StatusInProgress {
		t.Fatalf("rejected move changed status to %s", got.Status)
	}
}

func TestUpdateStatusFree(t *testing.T) {
	s := newStore(t, WithPolicy(PolicyFree))
	task := mustCreate(t, s, TaskInput{Name: "free"})
	got, err := s.UpdateStatus(context.Background(), task.ID, model.StatusDone)
	if err != nil {
		t.Fatalf("free policy rejected move: %v", err)
	}
	if got.Status != model.StatusDone {
		t.Fatalf("expected Done, got %s", got.Status)
	}
}

func TestUpdateStatusErrors(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	if _, err := s.UpdateStatus(ctx, 99, model.StatusInProgress); Kind(err) != "NotFoundError" {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	task := mustCreate(t, s, TaskInput{Name: "x"})
	if _, err := s.UpdateStatus(ctx, task.ID, model.Status("Blocked")); Kind(err) != "ValidationError" {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestToggleSubtask(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	task := mustCreate(t, s, TaskInput{Name: "list", Subtasks: "one\ntwo"})

	got, err := s.ToggleSubtask(ctx, task.ID, 2)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if got.Subtasks[0].Completed || !got.Subtasks[1].Completed {
		t.Fatalf("unexpected subtasks after toggle: %+v", got.Subtasks)
	}
	got, _ = s.ToggleSubtask(ctx, task.ID, 2)
	if got.Subtasks[1].Completed {
		t.Fatal("second toggle should clear the flag")
	}

	if _, err := s.ToggleSubtask(ctx, task.ID, 9); Kind(err) != "NotFoundError" {
		t.Fatalf("expected NotFoundError for subtask, got %v", err)
	}
	if _, err := s.ToggleSubtask(ctx, 42, 1); Kind(err) != "NotFoundError" {
		t.Fatalf("expected NotFoundError for task, got %v", err)
	}
}

func TestAddComment(t *testing.T) {
	stamp := time.Date(2025, 7, 18, 9, 0, 0, 0, time.UTC)
	s := newStore(t, WithClock(func() time.Time { return stamp }))
	ctx := context.Background()
	task := mustCreate(t, s, TaskInput{Name: "c"})

	if _, err := s.AddComment(ctx, task.ID, "sato", "  "); Kind(err) != "ValidationError" {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	s.AddComment(ctx, task.ID, "sato", "first")
	got, err := s.AddComment(ctx, task.ID, "", "second")
	if err != nil {
		t.Fatalf("comment failed: %v", err)
	}
	if len(got.Comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(got.Comments))
	}
	if got.Comments[0].Text != "first" || got.Comments[1].Author != "me" {
		t.Fatalf("unexpected comments: %+v", got.Comments)
	}
	if !got.Comments[1].Timestamp.Equal(stamp) {
		t.Fatalf("expected store clock timestamp, got %s", got.Comments[1].Timestamp)
	}
}

func TestDuplicateTask(t *testing.T) {
	clock := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	s := newStore(t, WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	src := mustCreate(t, s, TaskInput{
		Name:     "orig",
		Project:  "X",
		Tags:     []string{"a", "b"},
		Subtasks: "one\ntwo",
	})
	s.UpdateStatus(ctx, src.ID, model.StatusInProgress)
	s.ToggleSubtask(ctx, src.ID, 1)
	s.AddComment(ctx, src.ID, "me", "note")

	clock = clock.Add(time.Hour)
	dup, err := s.DuplicateTask(ctx, src.ID)
	if err != nil {
		t.Fatalf("duplicate failed: %v", err)
	}
	if dup.ID == src.ID {
		t.Fatal("duplicate reused id")
	}
	if dup.Status != model.StatusToDo {
		t.Fatalf("duplicate should be ToDo, got %s", dup.Status)
	}
	if !dup.CreatedAt.Equal(clock) {
		t.Fatalf("duplicate CreatedAt not reset: %s", dup.CreatedAt)
	}
	if dup.Name != "orig" || dup.Project != "X" || len(dup.Tags) != 2 || len(dup.Comments) != 1 {
		t.Fatalf("fields not copied: %+v", dup)
	}
	if !dup.Subtasks[0].Completed {
		t.Fatal("subtask state not copied")
	}

	s.ToggleSubtask(ctx, dup.ID, 2)
	orig, _ := s.Get(src.ID)
	if orig.Subtasks[1].Completed {
		t.Fatal("duplicate shares subtask storage with source")
	}

	if _, err := s.DuplicateTask(ctx, 1234); Kind(err) != "NotFoundError" {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestDeleteTaskNotIdempotent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	task := mustCreate(t, s, TaskInput{Name: "gone"})
	keep := mustCreate(t, s, TaskInput{Name: "stay"})

	if err := s.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := s.DeleteTask(ctx, task.ID); Kind(err) != "NotFoundError" {
		t.Fatalf("repeated delete should fail with NotFoundError, got %v", err)
	}
	all := s.List(Filter{})
	if len(all) != 1 || all[0].ID != keep.ID {
		t.Fatalf("unexpected remaining tasks: %+v", all)
	}
}

func TestListByFilter(t *testing.T) {
	s := newStore(t, WithPolicy(PolicyFree))
	ctx := context.Background()

	a := mustCreate(t, s, TaskInput{Name: "a", Project: "P", Priority: model.PriorityHigh, Assignee: "me"})
	b := mustCreate(t, s, TaskInput{Name: "b", Project: "Q", Priority: model.PriorityLow})
	c := mustCreate(t, s, TaskInput{Name: "c", Project: "P", Priority: model.PriorityHigh})
	d := mustCreate(t, s, TaskInput{Name: "d", Project: "P", Priority: model.PriorityLow, Assignee: "me"})

	s.UpdateStatus(ctx, a.ID, model.StatusDone)
	s.UpdateStatus(ctx, d.ID, model.StatusDone)

	ids := func(tasks []model.Task) []int64 {
		out := []int64{}
		for _, t := range tasks {
			out = append(out, t.ID)
		}
		return out
	}
	check := func(name string, f Filter, want ...int64) {
		t.Helper()
		got := ids(s.List(f))
		if len(got) != len(want) {
			t.Fatalf("%s: got %v want %v", name, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s: got %v want %v", name, got, want)
			}
		}
	}

	check("all", Filter{}, a.ID, b.ID, c.ID, d.ID)
	check("done", Filter{Status: model.StatusDone}, a.ID, d.ID)
	check("project", Filter{Project: "P"}, a.ID, c.ID, d.ID)
	check("project+priority", Filter{Project: "P", Priority: model.PriorityHigh}, a.ID, c.ID)
	check("assignee+status", Filter{Assignee: "me", Status: model.StatusDone}, a.ID, d.ID)
	check("no match", Filter{Project: "Q", Status: model.StatusDone})
}

func TestListReturnsCopies(t *testing.T) {
	s := newStore(t)
	mustCreate(t, s, TaskInput{Name: "x", Subtasks: "one"})
	list := s.List(Filter{})
	list[0].Name = "mutated"
	list[0].Subtasks[0].Completed = true

	got := s.List(Filter{})
	if got[0].Name != "x" || got[0].Subtasks[0].Completed {
		t.Fatal("List exposed internal state")
	}
}

func TestAddTagsDeduplicates(t *testing.T) {
	s := newStore(t)
	task := mustCreate(t, s, TaskInput{Name: "t", Tags: []string{"b", "a", "b"}})
	got, err := s.AddTags(context.Background(), task.ID, "a", "c", " ")
	if err != nil {
		t.Fatalf("add tags failed: %v", err)
	}
	want := []string{"b", "a", "c"}
	if len(got.Tags) != len(want) {
		t.Fatalf("got %v want %v", got.Tags, want)
	}
	for i := range want {
		if got.Tags[i] != want[i] {
			t.Fatalf("got %v want %v", got.Tags, want)
		}
	}
}

func TestStoreReloadContinuesIDs(t *testing.T) {
	backend := db.NewMemory()
	ctx := context.Background()

	first, _ := New(ctx, backend)
	a, _ := first.CreateTask(ctx, TaskInput{Name: "a"}, nil)
	b, _ := first.CreateTask(ctx, TaskInput{Name: "b", Subtasks: "x"}, nil)
	first.ToggleSubtask(ctx, b.ID, 1)

	second, err := New(ctx, backend)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	got := second.List(Filter{})
	if len(got) != 2 || got[0].ID != a.ID || !got[1].Subtasks[0].Completed {
		t.Fatalf("reloaded state mismatch: %+v", got)
	}
	c, _ := second.CreateTask(ctx, TaskInput{Name: "c"}, nil)
	if c.ID <= b.ID {
		t.Fatalf("expected id after %d, got %d", b.ID, c.ID)
	}
}

func TestDeletedIDsAreNotReusedAfterReload(t *testing.T) {
	backend := db.NewMemory()
	ctx := context.Background()

	first, _ := New(ctx, backend)
	a, _ := first.CreateTask(ctx, TaskInput{Name: "a"}, nil)
	dup, _ := first.DuplicateTask(ctx, a.ID)
	if err := first.DeleteTask(ctx, dup.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := first.DeleteTask(ctx, a.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	second, err := New(ctx, backend)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	c, err := second.CreateTask(ctx, TaskInput{Name: "c"}, nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if c.ID == a.ID || c.ID == dup.ID {
		t.Fatalf("deleted id reused: got %d after deleting %d and %d", c.ID, a.ID, dup.ID)
	}
	if c.ID != dup.ID+1 {
		t.Fatalf("expected id %d, got %d", dup.ID+1, c.ID)
	}
}

type failingBackend struct {
	*db.Memory
	failPuts bool
}

func (f *failingBackend) Put(ctx context.Context, collection, id string, data []byte) error {
	if f.failPuts {
		return errors.New("disk full")
	}
	return f.Memory.Put(ctx, collection, id, data)
}

func TestFailedSaveLeavesStateUntouched(t *testing.T) {
	backend := &failingBackend{Memory: db.NewMemory()}
	ctx := context.Background()
	s, _ := New(ctx, backend)
	task, _ := s.CreateTask(ctx, TaskInput{Name: "safe", Subtasks: "one"}, nil)

	backend.failPuts = true
	if _, err := s.UpdateStatus(ctx, task.ID, model.StatusInProgress); err == nil {
		t.Fatal("expected save error")
	}
	if _, err := s.ToggleSubtask(ctx, task.ID, 1); err == nil {
		t.Fatal("expected save error")
	}
	if _, err := s.CreateTask(ctx, TaskInput{Name: "lost"}, nil); err == nil {
		t.Fatal("expected save error")
	}

	got, _ := s.Get(task.ID)
	if got.Status != model.StatusToDo || got.Subtasks[0].Completed {
		t.Fatalf("failed operations mutated task: %+v", got)
	}
	if len(s.List(Filter{})) != 1 {
		t.Fatal("failed create left a task behind")
	}

	backend.failPuts = false
	next, _ := s.CreateTask(ctx, TaskInput{Name: "next"}, nil)
	if next.ID != task.ID+1 {
		t.Fatalf("failed create consumed an id: got %d", next.ID)
	}
}

func TestConcurrentMutationsAreSerialized(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	task := mustCreate(t, s, TaskInput{Name: "busy"})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddComment(ctx, task.ID, "worker", "hello")
		}()
	}
	wg.Wait()

	got, _ := s.Get(task.ID)
	if len(got.Comments) != 20 {
		t.Fatalf("lost updates: %d comments", len(got.Comments))
	}
}
