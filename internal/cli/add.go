package cli

import (
	"fmt"
	"strings"

	"github.com/existflow/bizflow/internal/assist"
	"github.com/existflow/bizflow/internal/model"
	"github.com/existflow/bizflow/internal/taskstore"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:     "create [name]",
	Aliases: []string{"add"},
	Short:   "Create a task",
	Long: `Create a task in the To Do column.

Subtasks are given one per line (or repeat --subtask).

Examples:
  bizflow task create "Prepare Q3 report"
  bizflow task create "Vendor contract" -p high --project Legal --due 2026-11-01
  bizflow task create "Launch" --subtask "Write copy" --subtask "Publish"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var fromMessageCmd = &cobra.Command{
	Use:   "from-message [message-json|-]",
	Short: "Draft a task from a message and create it",
	Long: `Draft a task from a message with the AI service, or the built-in template
when none is available, and create it.

Examples:
  bizflow task from-message '{"sender":"Client Corp","subject":"Urgent: contract review","body_preview":"Need this today"}'
  bizflow task from-message --eml inbox/1234.eml --project Legal`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFromMessage,
}

var (
	addProject     string
	addPriority    string
	addDue         string
	addDescription string
	addAssignee    string
	addEstimate    string
	addSubtasks    []string
	addTags        []string
	addCriteria    string

	fromMessageEML     string
	fromMessageProject string
)

func init() {
	addCmd.Flags().StringVarP(&addProject, "project", "P", "", "Project (default: context)")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "", "Priority: high, medium or low (default medium)")
	addCmd.Flags().StringVarP(&addDue, "due", "d", "", "Due date (e.g., 'tomorrow', '2026-01-15')")
	addCmd.Flags().StringVar(&addDescription, "description", "", "Description")
	addCmd.Flags().StringVarP(&addAssignee, "assignee", "a", "", "Assignee")
	addCmd.Flags().StringVar(&addEstimate, "estimate", "", "Estimated time")
	addCmd.Flags().StringArrayVarP(&addSubtasks, "subtask", "s", nil, "Subtask (repeatable)")
	addCmd.Flags().StringSliceVar(&addTags, "tag", nil, "Tags (comma separated or repeated)")
	addCmd.Flags().StringVar(&addCriteria, "done-when", "", "Completion criteria")

	fromMessageCmd.Flags().StringVar(&fromMessageEML, "eml", "", "Read the message from an RFC 5322 mail file")
	fromMessageCmd.Flags().StringVarP(&fromMessageProject, "project", "P", "", "Project (default: drafted or context)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	in := taskstore.TaskInput{
		Name:               strings.Join(args, " "),
		Description:        addDescription,
		Project:            addProject,
		Assignee:           addAssignee,
		DueDate:            addDue,
		EstimatedTime:      addEstimate,
		Subtasks:           strings.Join(addSubtasks, "\n"),
		Tags:               addTags,
		CompletionCriteria: addCriteria,
	}
	if addPriority != "" {
		p, err := model.ParsePriority(addPriority)
		if err != nil {
			return &taskstore.ValidationError{Field: "priority", Reason: err.Error()}
		}
		in.Priority = p
	}
	// Use context if no project specified
	if in.Project == "" {
		in.Project = cfg.Tasks.DefaultProject
	}

	store, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	task, err := store.CreateTask(cmd.Context(), in, nil)
	if err != nil {
		return err
	}

	printCreated(cmd, task)
	return nil
}

func runFromMessage(cmd *cobra.Command, args []string) error {
	msg, err := readDraftMessage(args, fromMessageEML, cmd.InOrStdin())
	if err != nil {
		return err
	}

	draft, origin := assist.DraftTask(cmd.Context(), newGenerator(), msg)
	in := draft.ToInput()
	switch {
	case fromMessageProject != "":
		in.Project = fromMessageProject
	case in.Project == "":
		in.Project = cfg.Tasks.DefaultProject
	}

	store, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	task, err := store.CreateTask(cmd.Context(), in, &msg)
	if err != nil {
		return err
	}

	printCreated(cmd, task)
	fmt.Fprintf(cmd.OutOrStdout(), "  drafted by: %s\n", origin)
	return nil
}

func printCreated(cmd *cobra.Command, task model.Task) {
	out := cmd.OutOrStdout()
	where := task.Project
	if where == "" {
		where = "no project"
	}
	fmt.Fprintf(out, "✓ Added #%d to [%s]: %q (%s)\n", task.ID, where, task.Name, task.Priority)
	if len(task.Subtasks) > 0 {
		fmt.Fprintf(out, "  %d subtasks\n", len(task.Subtasks))
	}
}
