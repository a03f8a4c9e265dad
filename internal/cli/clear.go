package cli

import (
	"fmt"
	"strings"

	"github.com/existflow/bizflow/internal/logger"
	"github.com/existflow/bizflow/internal/model"
	"github.com/existflow/bizflow/internal/taskstore"
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every task in the Done column",
	Long: `Delete every task in the Done column, optionally only for one project.

Examples:
  bizflow task clear
  bizflow task clear --project Legal --force`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

var (
	clearProject string
	clearForce   bool
)

func init() {
	clearCmd.Flags().StringVarP(&clearProject, "project", "P", "", "Only clear this project")
	clearCmd.Flags().BoolVar(&clearForce, "force", false, "Do not ask for confirmation")
}

func runClear(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	done := store.List(taskstore.Filter{Project: clearProject, Status: model.StatusDone})
	out := cmd.OutOrStdout()
	if len(done) == 0 {
		fmt.Fprintln(out, "Nothing to clear.")
		return nil
	}

	if !clearForce {
		fmt.Fprintf(out, "Delete %d done tasks? (y/N): ", len(done))
		var response string
		_, _ = fmt.Fscanln(cmd.InOrStdin(), &response)
		if strings.ToLower(response) != "y" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	for _, t := range done {
		if err := store.DeleteTask(cmd.Context(), t.ID); err != nil {
			return fmt.Errorf("failed to delete #%d: %w", t.ID, err)
		}
	}

	logger.Info("Cleared done tasks", logger.F("count", len(done)), logger.F("project", clearProject))
	fmt.Fprintf(out, "🧹 Cleared %d done tasks.\n", len(done))
	return nil
}
