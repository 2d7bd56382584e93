package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizquest/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset learner data",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		targets := map[string]func(context.Context, store.Repository) error{
			"spacedrep": func(ctx context.Context, r store.Repository) error { return r.ClearSpacedRep(ctx) },
			"mistakes": func(ctx context.Context, r store.Repository) error {
				return errors.Join(r.ClearMistakes(ctx), r.ClearAllRecentMistakes(ctx))
			},
			"session": func(ctx context.Context, r store.Repository) error { return r.ClearQuizSession(ctx) },
		}

		var selected []string
		for _, name := range []string{"spacedrep", "mistakes", "session"} {
			if on, _ := cmd.Flags().GetBool(name); on || all {
				selected = append(selected, name)
			}
		}
		if len(selected) == 0 {
			return errors.New("nothing to reset: pass --all, --spacedrep, --mistakes or --session")
		}

		repo, err := openRepo(cmd)
		if err != nil {
			return err
		}
		defer repo.Close()

		for _, name := range selected {
			if err := targets[name](cmd.Context(), repo); err != nil {
				return fmt.Errorf("reset %s: %w", name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %s\n", name)
		}
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("all", false, "Reset everything")
	resetCmd.Flags().Bool("spacedrep", false, "Reset the review schedule")
	resetCmd.Flags().Bool("mistakes", false, "Reset the mistake log and recent mistakes")
	resetCmd.Flags().Bool("session", false, "Discard the saved quiz session")
}
