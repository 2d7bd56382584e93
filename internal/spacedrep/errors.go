package spacedrep

import "errors"

var (
	// ErrInvalidGrade is returned for grades outside 0..5 or non-integral grades.
	ErrInvalidGrade = errors.New("spacedrep: grade must be an integer in [0,5]")

	// ErrEmptyQuestionID is returned when an item has no question id.
	ErrEmptyQuestionID = errors.New("spacedrep: question id is empty")
)
