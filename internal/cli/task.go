package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/existflow/bizflow/internal/model"
	"github.com/existflow/bizflow/internal/taskstore"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"t"},
	Short:   "Manage tasks",
	Long:    `Create, move, comment on and list kanban tasks.`,
}

var toggleSubtaskCmd = &cobra.Command{
	Use:   "toggle-subtask [task-id] [subtask-id]",
	Short: "Flip a subtask between open and completed",
	Long: `Flip a subtask between open and completed.

Examples:
  bizflow task toggle-subtask 3 1`,
	Args: cobra.ExactArgs(2),
	RunE: runToggleSubtask,
}

var commentCmd = &cobra.Command{
	Use:   "comment [task-id] [text]",
	Short: "Add a comment to a task",
	Long: `Append a comment to a task.

Examples:
  bizflow task comment 3 "Waiting for legal"
  bizflow task comment 3 "Approved" --author tanaka`,
	Args: cobra.MinimumNArgs(2),
	RunE: runComment,
}

var tagCmd = &cobra.Command{
	Use:   "tag [task-id] [tag...]",
	Short: "Add tags to a task",
	Long: `Add tags to a task. Existing tags are kept and duplicates ignored.

Examples:
  bizflow task tag 3 legal client`,
	Args: cobra.MinimumNArgs(2),
	RunE: runTag,
}

var duplicateCmd = &cobra.Command{
	Use:     "duplicate [task-id]",
	Aliases: []string{"dup"},
	Short:   "Copy a task as a new To Do task",
	Args:    cobra.ExactArgs(1),
	RunE:    runDuplicate,
}

var commentAuthor string

func init() {
	commentCmd.Flags().StringVar(&commentAuthor, "author", "", "Comment author (default from config)")

	taskCmd.AddCommand(addCmd)
	taskCmd.AddCommand(fromMessageCmd)
	taskCmd.AddCommand(moveCmd)
	taskCmd.AddCommand(doneCmd)
	taskCmd.AddCommand(toggleSubtaskCmd)
	taskCmd.AddCommand(commentCmd)
	taskCmd.AddCommand(tagCmd)
	taskCmd.AddCommand(duplicateCmd)
	taskCmd.AddCommand(deleteCmd)
	taskCmd.AddCommand(clearCmd)
	taskCmd.AddCommand(listCmd)
	taskCmd.AddCommand(showCmd)
}

func runToggleSubtask(cmd *cobra.Command, args []string) error {
	taskID, err := parseTaskID(args[0])
	if err != nil {
		return err
	}
	subtaskID, err := strconv.Atoi(args[1])
	if err != nil {
		return &taskstore.ValidationError{Field: "subtask id", Reason: fmt.Sprintf("%q is not a number", args[1])}
	}

	store, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	task, err := store.ToggleSubtask(cmd.Context(), taskID, subtaskID)
	if err != nil {
		return err
	}

	for _, st := range task.Subtasks {
		if st.ID == subtaskID {
			state := "open"
			if st.Completed {
				state = "completed"
			}
			done, total := task.SubtaskProgress()
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %s (%d/%d)\n", st.Name, state, done, total)
		}
	}
	return nil
}

func runComment(cmd *cobra.Command, args []string) error {
	taskID, err := parseTaskID(args[0])
	if err != nil {
		return err
	}
	author := commentAuthor
	if author == "" {
		author = cfg.Tasks.CommentAuthor
	}

	store, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	task, err := store.AddComment(cmd.Context(), taskID, author, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Comment added to #%d (%d comments)\n", task.ID, len(task.Comments))
	return nil
}

func runTag(cmd *cobra.Command, args []string) error {
	taskID, err := parseTaskID(args[0])
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	task, err := store.AddTags(cmd.Context(), taskID, args[1:]...)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ #%d tags: %s\n", task.ID, strings.Join(task.Tags, ", "))
	return nil
}

func runDuplicate(cmd *cobra.Command, args []string) error {
	taskID, err := parseTaskID(args[0])
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	dup, err := store.DuplicateTask(cmd.Context(), taskID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Duplicated #%d as #%d: %q\n", taskID, dup.ID, dup.Name)
	return nil
}

// priorityBadge renders a priority for list output
func priorityBadge(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "!!!"
	case model.PriorityMedium:
		return "!! "
	default:
		return "!  "
	}
}
