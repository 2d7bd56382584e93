package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizquest/internal/reminder"
	"github.com/abhisek/quizquest/internal/spacedrep"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Log a reminder whenever reviews are due (runs until interrupted)",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(cmd)
		if err != nil {
			return err
		}
		defer repo.Close()

		job := reminder.New(spacedrep.NewScheduler(repo), reminder.LogNotifier{Logger: logger},
			appConfig.Reminder.Every, reminder.WithLogger(logger))
		if err := job.Start(); err != nil {
			return err
		}
		defer job.Stop()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()
		return nil
	},
}
