package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/abhisek/quizquest/internal/spacedrep"
)

// Notifier delivers a due-review reminder.
type Notifier interface {
	// NotifyDue is called with the due items, most overdue first, as of now.
	NotifyDue(ctx context.Context, due []spacedrep.Item, now time.Time) error
}

// LogNotifier writes reminders to a logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) NotifyDue(_ context.Context, due []spacedrep.Item, now time.Time) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	first := due[0]
	logger.Info("questions due for review",
		"count", len(due),
		"most_overdue", first.QuestionID,
		"overdue_days", fmt.Sprintf("%.1f", first.OverdueDays(now)))
	return nil
}

// Job periodically checks the spaced repetition schedule and notifies when
// questions are due.
type Job struct {
	scheduler *gocron.Scheduler
	reviews   *spacedrep.Scheduler
	notifier  Notifier
	every     time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Job.
type Option func(*Job)

// WithClock sets the time source used to decide what is due.
func WithClock(now func() time.Time) Option {
	return func(j *Job) { j.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(j *Job) { j.logger = l }
}

// New creates a reminder job that runs every interval once started.
func New(reviews *spacedrep.Scheduler, notifier Notifier, every time.Duration, opts ...Option) *Job {
	j := &Job{
		scheduler: gocron.NewScheduler(time.UTC),
		reviews:   reviews,
		notifier:  notifier,
		every:     every,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(j)
	}
	return j
}

// Start schedules the check and runs it immediately. It does not block.
func (j *Job) Start() error {
	_, err := j.scheduler.Every(j.every).SingletonMode().Do(func() {
		if _, err := j.Check(context.Background()); err != nil {
			j.logger.Warn("reminder check failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule reminder: %w", err)
	}
	j.scheduler.StartAsync()
	j.logger.Info("reminder started", "every", j.every)
	return nil
}

// Stop halts the schedule.
func (j *Job) Stop() {
	j.scheduler.Stop()
}

// Check notifies about due items and returns how many were due.
func (j *Job) Check(ctx context.Context) (int, error) {
	now := j.now()
	due, err := j.reviews.Due(ctx, now)
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		j.logger.Debug("nothing due")
		return 0, nil
	}
	if err := j.notifier.NotifyDue(ctx, due, now); err != nil {
		return len(due), fmt.Errorf("notify: %w", err)
	}
	return len(due), nil
}
