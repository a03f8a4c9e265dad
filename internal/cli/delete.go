package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [task-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long: `Delete a task by its ID. There is no undo.

Examples:
  bizflow task delete 3
  bizflow task rm 3 --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var deleteForce bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Do not ask for confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	task, err := store.Get(id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cfg.Tasks.ConfirmDelete && !deleteForce {
		fmt.Fprintf(out, "About to delete: %q (#%d)\n", task.Name, task.ID)
		fmt.Fprint(out, "Are you sure? [y/N]: ")
		var confirm string
		fmt.Fscanln(cmd.InOrStdin(), &confirm)
		if strings.ToLower(strings.TrimSpace(confirm)) != "y" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	if err := store.DeleteTask(cmd.Context(), id); err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Deleted: %q\n", task.Name)
	return nil
}
