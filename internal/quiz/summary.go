package quiz

import (
	"slices"
	"time"
)

// Summary describes a session for the results screen.
type Summary struct {
	SessionID        string
	Mode             ModeKind
	TotalQuestions   int
	Answered         int
	Correct          int
	Accuracy         float64
	Duration         time.Duration
	WrongQuestionIDs []string
}

// BuildSummary creates a Summary from a quiz state. Unfinished sessions are
// measured up to now.
func BuildSummary(s State, now time.Time) Summary {
	end := now
	if !s.FinishedAt.IsZero() {
		end = s.FinishedAt
	}

	var accuracy float64
	if s.AnswerCount > 0 {
		accuracy = float64(s.Score) / float64(s.AnswerCount)
	}

	var mode ModeKind
	if s.Mode != nil {
		mode = s.Mode.Kind()
	}

	var d time.Duration
	if !s.StartedAt.IsZero() {
		d = end.Sub(s.StartedAt)
	}

	return Summary{
		SessionID:        s.SessionID,
		Mode:             mode,
		TotalQuestions:   s.TotalQuestions,
		Answered:         s.AnswerCount,
		Correct:          s.Score,
		Accuracy:         accuracy,
		Duration:         d,
		WrongQuestionIDs: slices.Clone(s.WrongQuestionIDs),
	}
}
