package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var banksCmd = &cobra.Command{
	Use:   "banks",
	Short: "List imported question banks",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(cmd)
		if err != nil {
			return err
		}
		defer repo.Close()

		banks, err := repo.Banks(cmd.Context())
		if err != nil {
			return err
		}
		if len(banks) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No banks imported yet.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tQUESTIONS")
		for _, b := range banks {
			// Banks lists headers only; questions are loaded per bank.
			qs, err := repo.Questions(cmd.Context(), b.ID)
			if err != nil {
				return fmt.Errorf("load bank %s: %w", b.ID, err)
			}
			fmt.Fprintf(w, "%s\t%s\t%d\n", b.ID, b.Name, len(qs))
		}
		return w.Flush()
	},
}
