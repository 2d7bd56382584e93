package quiz

import (
	"slices"
	"time"

	"github.com/abhisek/quizquest/internal/question"
)

// Phase is the lifecycle phase of the engine.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseActive   Phase = "active"
	PhaseFinished Phase = "finished"
)

// State is the quiz currently held by the engine.
type State struct {
	Phase     Phase
	SessionID string
	Mode      Mode
	BankIDs   []string

	// ChallengeID is set in challenge mode only.
	ChallengeID string

	ActiveQuestions      []question.Question
	CurrentQuestionIndex int
	TotalQuestions       int
	Score                int
	WrongQuestionIDs     []string
	IsFinished           bool

	// Answered is true once the current question has been answered.
	Answered bool

	// AnswerCount is the number of answers recorded this session.
	AnswerCount int

	StartedAt  time.Time
	FinishedAt time.Time
}

func (s State) clone() State {
	s.BankIDs = slices.Clone(s.BankIDs)
	s.ActiveQuestions = slices.Clone(s.ActiveQuestions)
	s.WrongQuestionIDs = slices.Clone(s.WrongQuestionIDs)
	return s
}

// CurrentQuestion returns the question at the current index.
func (s State) CurrentQuestion() (question.Question, bool) {
	if s.Phase == PhaseIdle || s.CurrentQuestionIndex >= len(s.ActiveQuestions) {
		return question.Question{}, false
	}
	return s.ActiveQuestions[s.CurrentQuestionIndex], true
}

func (s State) questionIDs() []string {
	ids := make([]string, len(s.ActiveQuestions))
	for i, q := range s.ActiveQuestions {
		ids[i] = q.ID
	}
	return ids
}
