package quiz

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionActive is returned when starting or restoring a quiz while
	// another one is in progress.
	ErrSessionActive = errors.New("quiz: a session is already active")

	// ErrNoActiveSession is returned by operations that need a running quiz.
	ErrNoActiveSession = errors.New("quiz: no active session")

	// ErrAlreadyAnswered is returned when the current question was answered.
	ErrAlreadyAnswered = errors.New("quiz: question already answered")

	// ErrInvalidMode is returned for a nil mode or a challenge without a bank.
	ErrInvalidMode = errors.New("quiz: invalid mode")
)

// WarningCode identifies a non-fatal condition shown to the learner.
type WarningCode string

// WarnNoQuestions means the selection produced an empty question pool.
const WarnNoQuestions WarningCode = "no_questions"

// Warning is a user-facing notice. The engine state is unchanged when a
// Warning is returned.
type Warning struct {
	Code    WarningCode
	Message string
}

func (w *Warning) Error() string {
	return fmt.Sprintf("quiz warning (%s): %s", w.Code, w.Message)
}

// AsWarning reports whether err is a Warning and returns it.
func AsWarning(err error) (*Warning, bool) {
	var w *Warning
	if errors.As(err, &w) {
		return w, true
	}
	return nil, false
}
