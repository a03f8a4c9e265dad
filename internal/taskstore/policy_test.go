package taskstore

import (
	"testing"

	"github.com/existflow/bizflow/internal/model"
)

func TestStrictPolicyGraph(t *testing.T) {
	allowed := map[[2]model.Status]bool{
		{model.StatusToDo, model.StatusInProgress}:     true,
		{model.StatusInProgress, model.StatusToDo}:     true,
		{model.StatusInProgress, model.StatusInReview}: true,
		{model.StatusInReview, model.StatusInProgress}: true,
		{model.StatusInReview, model.StatusDone}:       true,
		{model.StatusDone, model.StatusInReview}:       true,
	}
	for _, from := range model.Statuses {
		for _, to := range model.Statuses {
			if from == to {
				continue
			}
			want := allowed[[2]model.Status{from, to}]
			if got := PolicyStrict.CanMove(from, to); got != want {
				t.Fatalf("strict %s -> %s = %v, want %v", from, to, got, want)
			}
			if !PolicyFree.CanMove(from, to) {
				t.Fatalf("free %s -> %s rejected", from, to)
			}
		}
	}
}

func TestPolicyAllowedIsCopy(t *testing.T) {
	a := PolicyStrict.Allowed(model.StatusToDo)
	a[0] = model.StatusDone
	if PolicyStrict.Allowed(model.StatusToDo)[0] != model.StatusInProgress {
		t.Fatal("adjacency table mutated through Allowed")
	}
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{"": PolicyStrict, "Strict": PolicyStrict, "free": PolicyFree} {
		got, err := ParsePolicy(in)
		if err != nil || got != want {
			t.Fatalf("ParsePolicy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParsePolicy("loose"); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}

func TestParseSubtasks(t *testing.T) {
	got := ParseSubtasks("- draft\r\n\n  * review  \n・send\n\n")
	want := []string{"draft", "review", "send"}
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i, st := range got {
		if st.Name != want[i] || st.ID != i+1 || st.Completed {
			t.Fatalf("subtask %d = %+v", i, st)
		}
	}
	if len(ParseSubtasks("")) != 0 {
		t.Fatal("empty text should give no subtasks")
	}
}

func TestParseSubtasksSkipsBareBullets(t *testing.T) {
	got := ParseSubtasks("-\n*\n  •  \n・\n- -\nfile report\n")
	if len(got) != 1 || got[0].Name != "file report" || got[0].ID != 1 {
		t.Fatalf("got %+v", got)
	}
}
