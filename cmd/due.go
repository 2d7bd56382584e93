package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizquest/internal/spacedrep"
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List questions due for review, most overdue first",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(cmd)
		if err != nil {
			return err
		}
		defer repo.Close()

		now := time.Now()
		due, err := spacedrep.NewScheduler(repo).Due(cmd.Context(), now)
		if err != nil {
			return err
		}
		if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && len(due) > limit {
			due = due[:limit]
		}
		if len(due) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing due. Come back later!")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "QUESTION\tSTATUS\tOVERDUE\tINTERVAL\tEF")
		for _, it := range due {
			fmt.Fprintf(w, "%s\t%s\t%.1fd\t%dd\t%.2f\n",
				it.QuestionID, it.Status(now), it.OverdueDays(now), it.Interval, it.EasinessFactor)
		}
		return w.Flush()
	},
}

func init() {
	dueCmd.Flags().Int("limit", 0, "Show at most this many items")
}
