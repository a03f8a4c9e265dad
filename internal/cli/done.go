package cli

import (
	"fmt"

	"github.com/existflow/bizflow/internal/model"
	"github.com/existflow/bizflow/internal/taskstore"
	"github.com/spf13/cobra"
)

var moveCmd = &cobra.Command{
	Use:   "move [task-id] [status]",
	Short: "Move a task to another column",
	Long: `Move a task to another kanban column: todo, in-progress, in-review or done.

With the strict status policy only neighbouring columns are allowed.

Examples:
  bizflow task move 3 in-progress
  bizflow task move 3 review`,
	Args: cobra.ExactArgs(2),
	RunE: runMove,
}

var doneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Move a task to Done",
	Long: `Move a task to Done. Under the strict policy the task must be In Review.

Examples:
  bizflow task done 3
  bizflow task done 3 --undo`,
	Args: cobra.ExactArgs(1),
	RunE: runDone,
}

var doneUndo bool

func init() {
	doneCmd.Flags().BoolVar(&doneUndo, "undo", false, "Move the task back to In Review")
}

func runMove(cmd *cobra.Command, args []string) error {
	status, err := model.ParseStatus(args[1])
	if err != nil {
		return &taskstore.ValidationError{Field: "status", Reason: err.Error()}
	}
	return moveTask(cmd, args[0], status)
}

func runDone(cmd *cobra.Command, args []string) error {
	status := model.StatusDone
	if doneUndo {
		status = model.StatusInReview
	}
	return moveTask(cmd, args[0], status)
}

func moveTask(cmd *cobra.Command, rawID string, status model.Status) error {
	id, err := parseTaskID(rawID)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	before, err := store.Get(id)
	if err != nil {
		return err
	}
	task, err := store.UpdateStatus(cmd.Context(), id, status)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ #%d %q: %s → %s\n", task.ID, task.Name, before.Status.Title(), task.Status.Title())
	return nil
}
