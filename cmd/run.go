package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizquest/internal/store"
)

// openRepo opens the repository configured for this invocation. An SQLite
// DSN comes from --db, then storage.dsn, then the default path.
func openRepo(cmd *cobra.Command) (store.Repository, error) {
	opts := appConfig.Storage.StoreOptions()
	if opts.Driver == store.DriverSQLite || opts.Driver == "" {
		if flagged, _ := cmd.Flags().GetString("db"); flagged != "" || opts.DSN == "" {
			p, err := resolveDBPath(cmd)
			if err != nil {
				return nil, fmt.Errorf("resolve DB path: %w", err)
			}
			opts.DSN = p
		}
	}

	guest, _ := cmd.Flags().GetBool("guest")
	repo, err := store.Select(cmd.Context(), opts, !guest)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("store opened", "driver", opts.Driver, "guest", guest)
	return repo, nil
}
