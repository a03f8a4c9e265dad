package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/bizflow/internal/db"
	"github.com/existflow/bizflow/internal/model"
	"github.com/existflow/bizflow/internal/taskstore"
)

func newBoard(t *testing.T, opts ...taskstore.Option) (Model, *taskstore.Store) {
	t.Helper()
	store, err := taskstore.New(context.Background(), db.NewMemory(), opts...)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	return NewModel(store, "", "tester"), store
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestBoardGroupsByStatusAndPriority(t *testing.T) {
	m, store := newBoard(t)
	ctx := context.Background()
	store.CreateTask(ctx, taskstore.TaskInput{Name: "low", Priority: model.PriorityLow}, nil)
	store.CreateTask(ctx, taskstore.TaskInput{Name: "high", Priority: model.PriorityHigh}, nil)
	m.loadData()

	if len(m.columns) != 4 || len(m.columns[0]) != 2 {
		t.Fatalf("unexpected columns: %+v", m.columns)
	}
	if m.columns[0][0].Name != "high" {
		t.Fatalf("expected high priority first, got %s", m.columns[0][0].Name)
	}
}

func TestBoardMoveFollowsPolicy(t *testing.T) {
	m, store := newBoard(t)
	task, _ := store.CreateTask(context.Background(), taskstore.TaskInput{Name: "ship"}, nil)
	m.loadData()

	m = press(t, m, "L")
	got, _ := store.Get(task.ID)
	if got.Status != model.StatusInProgress || m.col != 1 {
		t.Fatalf("expected InProgress with focus following, got %s col %d", got.Status, m.col)
	}

	m = press(t, m, "L", "L", "L")
	got, _ = store.Get(task.ID)
	if got.Status != model.StatusDone || m.col != 3 {
		t.Fatalf("expected Done, got %s", got.Status)
	}

	// no column right of Done
	m = press(t, m, "L")
	if m.col != 3 {
		t.Fatalf("cursor left the board: %d", m.col)
	}

	m = press(t, m, "H")
	got, _ = store.Get(task.ID)
	if got.Status != model.StatusInReview {
		t.Fatalf("expected InReview, got %s", got.Status)
	}
}

func TestBoardDetailTogglesSubtaskAndComments(t *testing.T) {
	m, store := newBoard(t)
	task, _ := store.CreateTask(context.Background(), taskstore.TaskInput{Name: "report", Subtasks: "draft\nsend"}, nil)
	m.loadData()

	m = press(t, m, "enter")
	if m.mode != ModeDetail {
		t.Fatalf("expected detail mode, got %d", m.mode)
	}
	m = press(t, m, "j", "x")
	got, _ := store.Get(task.ID)
	if got.Subtasks[0].Completed || !got.Subtasks[1].Completed {
		t.Fatalf("wrong subtask toggled: %+v", got.Subtasks)
	}

	m = press(t, m, "c", "o", "k", "enter")
	got, _ = store.Get(task.ID)
	if len(got.Comments) != 1 || got.Comments[0].Text != "ok" || got.Comments[0].Author != "tester" {
		t.Fatalf("comment not added: %+v", got.Comments)
	}
	if m.mode != ModeDetail {
		t.Fatalf("expected to return to detail, got %d", m.mode)
	}

	m = press(t, m, "esc")
	if m.mode != ModeBoard {
		t.Fatalf("expected board mode, got %d", m.mode)
	}
}

func TestBoardAddDuplicateDelete(t *testing.T) {
	m, store := newBoard(t)

	m = press(t, m, "a", "n", "e", "w", "enter")
	if tasks := store.List(taskstore.Filter{}); len(tasks) != 1 || tasks[0].Name != "new" {
		t.Fatalf("task not added: %+v", tasks)
	}

	m = press(t, m, "D")
	if len(store.List(taskstore.Filter{})) != 2 {
		t.Fatal("task not duplicated")
	}

	m = press(t, m, "d")
	if len(store.List(taskstore.Filter{})) != 1 {
		t.Fatal("task not deleted")
	}
	if !strings.HasPrefix(m.message, "Deleted") {
		t.Fatalf("unexpected message %q", m.message)
	}
}

func TestBoardView(t *testing.T) {
	m, store := newBoard(t)
	store.CreateTask(context.Background(), taskstore.TaskInput{Name: "visible"}, nil)
	m.loadData()

	if m.View() != "Loading..." {
		t.Fatal("expected loading view before size is known")
	}
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	view := next.(Model).View()
	for _, want := range []string{"To Do (1)", "In Progress (0)", "visible"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q", want)
		}
	}
}
