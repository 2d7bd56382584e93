package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizquest/internal/spacedrep"
	"github.com/abhisek/quizquest/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show review schedule and session statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo, err := openRepo(cmd)
		if err != nil {
			return err
		}
		defer repo.Close()

		now := time.Now()
		st, err := spacedrep.NewScheduler(repo).Stats(ctx, now)
		if err != nil {
			return err
		}
		mistakes, err := repo.MistakeLog(ctx)
		if err != nil {
			return err
		}
		sessions, err := repo.QuerySessionSummaries(ctx, store.QueryOpts{Limit: 5})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Tracked questions: %d\n", st.Total)
		for _, s := range []spacedrep.Status{spacedrep.StatusDue, spacedrep.StatusOverdue, spacedrep.StatusNotDue, spacedrep.StatusMature} {
			fmt.Fprintf(out, "  %-8s %d\n", s, st.ByStatus[s])
		}
		if st.Total > 0 {
			fmt.Fprintf(out, "Mean easiness: %.2f\n", st.MeanEF)
		}
		if !st.NextReviewAt.IsZero() {
			fmt.Fprintf(out, "Next review:   %s\n", st.NextReviewAt.Local().Format(time.DateTime))
		}
		fmt.Fprintf(out, "Mistake log:   %d questions\n", len(mistakes))

		if len(sessions) == 0 {
			return nil
		}
		fmt.Fprintln(out, "Recent sessions:")
		for _, s := range sessions {
			fmt.Fprintf(out, "  %s  %-13s %d/%d correct  %s\n",
				s.Timestamp.Local().Format(time.DateTime), s.Mode,
				s.CorrectAnswers, s.QuestionsServed, time.Duration(s.DurationSecs)*time.Second)
		}
		return nil
	},
}
