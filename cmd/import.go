package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizquest/internal/question"
)

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import question banks from JSON files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo, err := openRepo(cmd)
		if err != nil {
			return err
		}
		defer repo.Close()

		for _, path := range args {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			banks, err := question.LoadBanks(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			for _, b := range banks {
				if err := repo.SaveBank(ctx, b); err != nil {
					return fmt.Errorf("save bank %s: %w", b.ID, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%d questions)\n", b.ID, len(b.Questions))
			}
		}
		return nil
	},
}
