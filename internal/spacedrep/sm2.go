package spacedrep

import (
	"fmt"
	"math"
	"time"
)

// SM-2 parameters.
const (
	DefaultEasinessFactor = 2.5
	MinEasinessFactor     = 1.3
	MaxIntervalDays       = 365

	MinGrade = 0
	MaxGrade = 5

	// PassThreshold is the lowest grade that counts as a successful recall.
	PassThreshold = 3
)

// Grades recorded by the quiz engine.
const (
	GradePass = 4
	GradeFail = 1
)

const day = 24 * time.Hour

// Update applies one SM-2 review with the given grade and returns the new
// item. The input item is not modified.
func Update(item Item, grade int, now time.Time) (Item, error) {
	if grade < MinGrade || grade > MaxGrade {
		return Item{}, fmt.Errorf("%w: got %d", ErrInvalidGrade, grade)
	}
	if item.QuestionID == "" {
		return Item{}, ErrEmptyQuestionID
	}

	reps := max(item.Repetitions, 0)
	interval := min(max(item.Interval, 0), MaxIntervalDays)
	ef := item.EasinessFactor
	if ef == 0 || math.IsNaN(ef) || math.IsInf(ef, 0) {
		ef = DefaultEasinessFactor
	}

	q := float64(MaxGrade - grade)
	newEF := math.Max(MinEasinessFactor, ef+(0.1-q*(0.08+q*0.02)))

	var newInterval, newReps int
	switch {
	case grade < PassThreshold:
		newInterval, newReps = 1, 0
	case reps == 0:
		newInterval, newReps = 1, 1
	case reps == 1:
		newInterval, newReps = 6, 2
	default:
		newInterval, newReps = int(math.Round(float64(interval)*ef)), reps+1
	}
	newInterval = min(max(newInterval, 1), MaxIntervalDays)

	last := now
	return Item{
		QuestionID:     item.QuestionID,
		EasinessFactor: newEF,
		Interval:       newInterval,
		Repetitions:    newReps,
		NextReviewDate: now.Add(time.Duration(newInterval) * day),
		LastReviewDate: &last,
	}, nil
}

// UpdateFloat is Update for callers holding an untyped numeric grade.
// Non-integral and non-finite grades are rejected rather than rounded.
func UpdateFloat(item Item, grade float64, now time.Time) (Item, error) {
	if math.IsNaN(grade) || math.IsInf(grade, 0) || grade != math.Trunc(grade) {
		return Item{}, fmt.Errorf("%w: got %v", ErrInvalidGrade, grade)
	}
	if grade < MinGrade || grade > MaxGrade {
		return Item{}, fmt.Errorf("%w: got %v", ErrInvalidGrade, grade)
	}
	return Update(item, int(grade), now)
}
