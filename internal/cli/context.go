package cli

import (
	"fmt"

	"github.com/existflow/bizflow/internal/model"
	"github.com/spf13/cobra"
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Manage project context",
	Long: `Set or view the current project context.

When a context is set, new tasks go to that project and list and board
show only that project.

Examples:
  bizflow context                      # Show current context
  bizflow context set market-research  # Use this project by default
  bizflow context clear                # Back to all projects`,
	RunE: runContextShow,
}

var contextSetCmd = &cobra.Command{
	Use:   "set [project-id]",
	Short: "Set the current project context",
	Args:  cobra.ExactArgs(1),
	RunE:  runContextSet,
}

var contextClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the current context",
	RunE:  runContextClear,
}

func init() {
	contextCmd.AddCommand(contextSetCmd)
	contextCmd.AddCommand(contextClearCmd)
}

func runContextShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if cfg.Tasks.DefaultProject == "" {
		fmt.Fprintln(out, "📥 Current context: all projects")
		return nil
	}

	store, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	stats := store.ProjectStats(cfg.Tasks.DefaultProject)
	fmt.Fprintf(out, "📁 Current context: %s (%d/%d done)\n",
		cfg.Tasks.DefaultProject, stats.ByStatus[model.StatusDone], stats.Total)
	return nil
}

func runContextSet(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	project, err := store.GetProject(args[0])
	if err != nil {
		return err
	}

	// Tasks refer to projects by name
	cfg.Tasks.DefaultProject = project.Name
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to set context: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "📁 Switched to: %s\n", project.Name)
	return nil
}

func runContextClear(cmd *cobra.Command, args []string) error {
	cfg.Tasks.DefaultProject = ""
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to clear context: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "📥 Context cleared, showing all projects")
	return nil
}
