package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/existflow/bizflow/internal/model"
	"github.com/existflow/bizflow/internal/taskstore"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long:  `Create, list and track progress of projects.`,
}

var projectNewCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create a new project",
	Long: `Create a new project. Its id is derived from the name.

Examples:
  bizflow project new "Market Research"
  bizflow project new "Legal" --color "#FF6B6B" --progress 20`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProjectNew,
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all projects with task counts",
	RunE:    runProjectList,
}

var projectProgressCmd = &cobra.Command{
	Use:   "progress [project-id] [0-100]",
	Short: "Set a project's progress",
	Long: `Set a project's progress percentage. 100 marks the project completed.

Examples:
  bizflow project progress market-research 60`,
	Args: cobra.ExactArgs(2),
	RunE: runProjectProgress,
}

var (
	projectColor       string
	projectDescription string
	projectProgress    int
)

func init() {
	projectNewCmd.Flags().StringVarP(&projectColor, "color", "c", "#4ECDC4", "Project color (hex)")
	projectNewCmd.Flags().StringVarP(&projectDescription, "description", "d", "", "Description")
	projectNewCmd.Flags().IntVar(&projectProgress, "progress", 0, "Initial progress (0-100)")

	projectCmd.AddCommand(projectNewCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectProgressCmd)
}

func runProjectNew(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	p, err := store.CreateProject(cmd.Context(), taskstore.ProjectInput{
		Name:        strings.Join(args, " "),
		Description: projectDescription,
		Color:       projectColor,
		Progress:    projectProgress,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created project: %s (id: %s)\n", p.Name, p.ID)
	return nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	projects := store.ListProjects()
	out := cmd.OutOrStdout()
	if len(projects) == 0 {
		fmt.Fprintln(out, "No projects found.")
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %-18s  %-22s  %-10s  %8s  %s\n", "ID", "Name", "Status", "Progress", "Done/Tasks")
	fmt.Fprintln(out, strings.Repeat("─", 76))

	for _, p := range projects {
		stats := store.ProjectStats(p.Name)
		fmt.Fprintf(out, "  %-18s  %-22s  %-10s  %7d%%  %d/%d\n",
			p.ID, p.Name, p.Status, p.Progress, stats.ByStatus[model.StatusDone], stats.Total)
	}

	fmt.Fprintln(out, strings.Repeat("─", 76))
	fmt.Fprintf(out, "  %d projects\n\n", len(projects))
	return nil
}

func runProjectProgress(cmd *cobra.Command, args []string) error {
	progress, err := strconv.Atoi(strings.TrimSuffix(args[1], "%"))
	if err != nil {
		return &taskstore.ValidationError{Field: "progress", Reason: fmt.Sprintf("%q is not a number", args[1])}
	}

	store, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	p, err := store.SetProjectProgress(cmd.Context(), args[0], progress)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %d%% (%s)\n", p.Name, p.Progress, p.Status)
	return nil
}
