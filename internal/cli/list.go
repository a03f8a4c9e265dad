package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/existflow/bizflow/internal/model"
	"github.com/existflow/bizflow/internal/taskstore"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List tasks grouped by column, optionally filtered.

Examples:
  bizflow task list
  bizflow task list --project Legal --priority high
  bizflow task list --status in-progress --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var showCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show one task with subtasks and comments",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var (
	listProject  string
	listPriority string
	listStatus   string
	listAssignee string
	listAll      bool
	listJSON     bool

	showJSON bool
)

func init() {
	listCmd.Flags().StringVarP(&listProject, "project", "P", "", "Filter by project (default: context)")
	listCmd.Flags().StringVarP(&listPriority, "priority", "p", "", "Filter by priority")
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "Filter by status")
	listCmd.Flags().StringVarP(&listAssignee, "assignee", "a", "", "Filter by assignee")
	listCmd.Flags().BoolVar(&listAll, "all", false, "Ignore the project context")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print JSON")

	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	f := taskstore.Filter{Project: listProject, Assignee: listAssignee}
	if f.Project == "" && !listAll {
		f.Project = cfg.Tasks.DefaultProject
	}
	if listPriority != "" {
		p, err := model.ParsePriority(listPriority)
		if err != nil {
			return &taskstore.ValidationError{Field: "priority", Reason: err.Error()}
		}
		f.Priority = p
	}
	if listStatus != "" {
		s, err := model.ParseStatus(listStatus)
		if err != nil {
			return &taskstore.ValidationError{Field: "status", Reason: err.Error()}
		}
		f.Status = s
	}

	store, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	tasks := store.List(f)
	out := cmd.OutOrStdout()

	if listJSON {
		if tasks == nil {
			tasks = []model.Task{}
		}
		return json.NewEncoder(out).Encode(tasks)
	}

	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks found. Add one with: bizflow task create \"Your task\"")
		return nil
	}

	byStatus := make(map[model.Status][]model.Task)
	for _, t := range tasks {
		byStatus[t.Status] = append(byStatus[t.Status], t)
	}
	for _, s := range model.Statuses {
		if len(byStatus[s]) == 0 {
			continue
		}
		fmt.Fprintf(out, "\n%s (%d)\n", s.Title(), len(byStatus[s]))
		fmt.Fprintln(out, strings.Repeat("─", 72))
		for _, t := range byStatus[s] {
			printTask(out, t)
		}
	}
	fmt.Fprintln(out)
	return nil
}

func printTask(out io.Writer, t model.Task) {
	name := t.Name
	if r := []rune(name); len(r) > 36 {
		name = string(r[:35]) + "…"
	}

	subtasks := ""
	if done, total := t.SubtaskProgress(); total > 0 {
		subtasks = fmt.Sprintf("%d/%d", done, total)
	}

	fmt.Fprintf(out, "  %4d  %s  %-36s  %-12s  %-5s  %s\n",
		t.ID, priorityBadge(t.Priority), name, t.Project, subtasks, t.DueDate)
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	t, err := store.Get(id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if showJSON {
		return json.NewEncoder(out).Encode(t)
	}

	fmt.Fprintf(out, "#%d %s\n", t.ID, t.Name)
	fmt.Fprintf(out, "  Status:   %s\n", t.Status.Title())
	fmt.Fprintf(out, "  Priority: %s\n", t.Priority)
	for _, row := range [][2]string{
		{"Project", t.Project},
		{"Assignee", t.Assignee},
		{"Due", t.DueDate},
		{"Estimate", t.EstimatedTime},
		{"Tags", strings.Join(t.Tags, ", ")},
		{"Done when", t.CompletionCriteria},
	} {
		if row[1] != "" {
			fmt.Fprintf(out, "  %-9s %s\n", row[0]+":", row[1])
		}
	}
	if t.SourceMessage != nil {
		fmt.Fprintf(out, "  From:     %s: %q\n", t.SourceMessage.Sender, t.SourceMessage.Subject)
	}
	if t.Description != "" {
		fmt.Fprintf(out, "\n%s\n", t.Description)
	}

	if len(t.Subtasks) > 0 {
		done, total := t.SubtaskProgress()
		fmt.Fprintf(out, "\nSubtasks (%d/%d)\n", done, total)
		for _, st := range t.Subtasks {
			icon := "[ ]"
			if st.Completed {
				icon = "[x]"
			}
			fmt.Fprintf(out, "  %s %d. %s\n", icon, st.ID, st.Name)
		}
	}

	if len(t.Comments) > 0 {
		fmt.Fprintln(out, "\nComments")
		for _, c := range t.Comments {
			fmt.Fprintf(out, "  %s %s: %s\n", c.Timestamp.Format("2006-01-02 15:04"), c.Author, c.Text)
		}
	}
	return nil
}
