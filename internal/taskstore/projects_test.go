package taskstore

import (
	"context"
	"testing"

	"github.com/existflow/bizflow/internal/model"
)

func TestCreateProject(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	p, err := s.CreateProject(ctx, ProjectInput{Name: "Market Research", Progress: 40})
	if err != nil {
		t.Fatalf("create project failed: %v", err)
	}
	if p.ID != "market-research" || p.Status != model.ProjectActive || p.Color == "" {
		t.Fatalf("unexpected project: %+v", p)
	}

	again, err := s.CreateProject(ctx, ProjectInput{Name: "Market Research"})
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	if again.ID == p.ID || len(again.ID) != 8 {
		t.Fatalf("expected short random id on collision, got %q", again.ID)
	}

	if _, err := s.CreateProject(ctx, ProjectInput{Name: ""}); Kind(err) != "ValidationError" {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, err := s.CreateProject(ctx, ProjectInput{Name: "x", Progress: 101}); Kind(err) != "ValidationError" {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	if got := s.ListProjects(); len(got) != 2 || got[0].ID != p.ID {
		t.Fatalf("unexpected project list: %+v", got)
	}
}

func TestProjectProgressIsIndependent(t *testing.T) {
	s := newStore(t, WithPolicy(PolicyFree))
	ctx := context.Background()

	p, _ := s.CreateProject(ctx, ProjectInput{Name: "X", Progress: 75})
	task := mustCreate(t, s, TaskInput{Name: "only", Project: "X"})
	mustCreate(t, s, TaskInput{Name: "other", Project: "X"})
	s.UpdateStatus(ctx, task.ID, model.StatusDone)

	stats := s.ProjectStats("X")
	if stats.Total != 2 || stats.ByStatus[model.StatusDone] != 1 || stats.CompletionRate != 0.5 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	got, _ := s.GetProject(p.ID)
	if got.Progress != 75 {
		t.Fatalf("stats changed stored progress to %d", got.Progress)
	}

	done, err := s.SetProjectProgress(ctx, p.ID, 100)
	if err != nil {
		t.Fatalf("set progress failed: %v", err)
	}
	if done.Status != model.ProjectCompleted {
		t.Fatalf("expected completed status, got %s", done.Status)
	}
	if _, err := s.SetProjectProgress(ctx, p.ID, -1); Kind(err) != "ValidationError" {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, err := s.SetProjectProgress(ctx, "nope", 10); Kind(err) != "NotFoundError" {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
