package spacedrep

import (
	"fmt"
	"time"
)

// Item holds the SM-2 schedule for a single question.
type Item struct {
	QuestionID     string     `json:"question_id"`
	EasinessFactor float64    `json:"easiness_factor"`
	Interval       int        `json:"interval"`
	Repetitions    int        `json:"repetitions"`
	NextReviewDate time.Time  `json:"next_review_date"`
	LastReviewDate *time.Time `json:"last_review_date,omitempty"`
}

// NewItem creates a fresh item that is due immediately.
func NewItem(questionID string, now time.Time) (Item, error) {
	if questionID == "" {
		return Item{}, ErrEmptyQuestionID
	}
	return Item{
		QuestionID:     questionID,
		EasinessFactor: DefaultEasinessFactor,
		NextReviewDate: now,
	}, nil
}

// IsDue returns true if the item is due for review (at or past the review date).
func (it Item) IsDue(now time.Time) bool {
	return !it.NextReviewDate.IsZero() && !now.Before(it.NextReviewDate)
}

// OverdueDays returns how many days past due the item is. Returns 0 if not yet due.
func (it Item) OverdueDays(now time.Time) float64 {
	if !it.IsDue(now) {
		return 0
	}
	return now.Sub(it.NextReviewDate).Hours() / 24.0
}

// Status describes an item's review status for display.
type Status string

const (
	StatusNotDue  Status = "not_due"
	StatusDue     Status = "due"
	StatusOverdue Status = "overdue"
	StatusMature  Status = "mature"
)

// MatureIntervalDays is the interval from which a passing item counts as mature.
const MatureIntervalDays = 21

// Status returns the review status for display. An item is overdue once it
// has been due for longer than half its interval.
func (it Item) Status(now time.Time) Status {
	if !it.IsDue(now) {
		if it.Interval >= MatureIntervalDays {
			return StatusMature
		}
		return StatusNotDue
	}
	grace := float64(max(it.Interval, 1)) * 0.5
	if it.OverdueDays(now) > grace {
		return StatusOverdue
	}
	return StatusDue
}

func (it Item) String() string {
	return fmt.Sprintf("%s ef=%.2f interval=%dd reps=%d next=%s",
		it.QuestionID, it.EasinessFactor, it.Interval, it.Repetitions,
		it.NextReviewDate.Format(time.DateOnly))
}
