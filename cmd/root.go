package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizquest/internal/config"
	"github.com/abhisek/quizquest/internal/logging"
	"github.com/abhisek/quizquest/internal/store"
)

var (
	appConfig *config.Config
	logger    = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:           "quizquest",
	Short:         "Quiz practice with spaced repetition",
	Long:          "QuizQuest runs question-bank quizzes, schedules reviews with SM-2 and turns streaks into monster battles.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		appConfig = cfg
		logger = logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
		slog.SetDefault(logger)
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (default: ./quizquest.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUIZQUEST_DB env var)")
	rootCmd.PersistentFlags().Bool("guest", false, "Keep progress in memory only")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(banksCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then QUIZQUEST_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
