package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/bizflow/internal/config"
	"github.com/existflow/bizflow/internal/db"
	"github.com/existflow/bizflow/internal/logger"
	"github.com/existflow/bizflow/internal/taskstore"
	"github.com/existflow/bizflow/internal/tui"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	logFile    string
	logConsole bool

	// cfg is loaded once per invocation by the root pre-run hook
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "bizflow",
	Short: "BizFlow - message triage and kanban tasks",
	Long: `BizFlow turns inbound messages into prioritized, trackable work.

It classifies message urgency, suggests when to reply, drafts replies and
tasks (with or without an AI service) and keeps tasks on a kanban board.

Run 'bizflow' without arguments to open the board.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config from file (or defaults if not exists)
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded

		// Override with CLI flags if provided
		configChanged := false
		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level = logLevel
			configChanged = true
		}
		if cmd.Flags().Changed("log-file") {
			cfg.Log.File = logFile
			configChanged = true
		}
		if cmd.Flags().Changed("log-console") {
			cfg.Log.Console = logConsole
			configChanged = true
		}

		// Save config if changed via CLI flags
		if configChanged {
			if err := cfg.Save(); err != nil {
				logger.Warn("Failed to save config", logger.F("error", err))
			}
		}

		if err := logger.Init(cfg.LoggerConfig()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("BizFlow started", logger.F("command", cmd.CommandPath()))
		return nil
	},

	RunE: runBoard,

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("BizFlow exiting", logger.F("command", cmd.CommandPath()))
		logger.Close()
	},
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the kanban board",
	Long: `Open the interactive kanban board.

Examples:
  bizflow board
  bizflow board --project "Market Research"`,
	RunE: runBoard,
}

var boardProject string

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ErrorKind names the category of an error returned by Execute, for the
// "<Kind>: message" line on stderr.
func ErrorKind(err error) string {
	if k := taskstore.Kind(err); k != "" {
		return k
	}
	return "Error"
}

func init() {
	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")

	boardCmd.Flags().StringVarP(&boardProject, "project", "P", "", "Only show this project (default: context)")

	// Add subcommands
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(adviseTimingCmd)
	rootCmd.AddCommand(replyCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(authCmd)
}

// openStore opens the configured backend and loads the task store. The
// returned func closes the backend.
func openStore(ctx context.Context) (*taskstore.Store, func(), error) {
	policy, err := taskstore.ParsePolicy(cfg.Tasks.StatusPolicy)
	if err != nil {
		return nil, nil, &taskstore.ValidationError{Field: "tasks.status_policy", Reason: err.Error()}
	}

	var backend interface {
		taskstore.Persistence
		io.Closer
	}
	switch cfg.Storage.Driver {
	case "memory":
		backend = db.NewMemory()
	default:
		dsn := cfg.Storage.DSN
		if dsn == "" {
			if dsn, err = db.DefaultDBPath(); err != nil {
				return nil, nil, err
			}
		}
		conn, err := db.Open(cfg.Storage.Driver, dsn)
		if err != nil {
			logger.Error("Failed to open database", logger.F("error", err))
			return nil, nil, err
		}
		backend = conn
	}

	store, err := taskstore.New(ctx, backend, taskstore.WithPolicy(policy))
	if err != nil {
		backend.Close()
		return nil, nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	return store, func() {
		_ = backend.Close()
		logger.Debug("Database closed")
	}, nil
}

func runBoard(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	project := boardProject
	if project == "" {
		project = cfg.Tasks.DefaultProject
	}

	logger.Info("Launching board", logger.F("project", project))
	m := tui.NewModel(store, project, cfg.Tasks.CommentAuthor)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		logger.Error("Board error", logger.F("error", err))
		return fmt.Errorf("failed to run board: %w", err)
	}

	logger.Info("Board exited normally")
	return nil
}

// parseTaskID reads a numeric task id argument.
func parseTaskID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, &taskstore.ValidationError{Field: "task id", Reason: fmt.Sprintf("%q is not a task id", s)}
	}
	return id, nil
}
