package store

import (
	"context"
	"time"

	"github.com/abhisek/quizquest/internal/question"
)

// MaxRecentMistakeSessions is the capacity of the recent-mistakes FIFO.
const MaxRecentMistakeSessions = 5

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// SpacedRepRecord is the persisted form of a spaced repetition item.
type SpacedRepRecord struct {
	QuestionID     string
	EasinessFactor float64
	Interval       int
	Repetitions    int
	NextReviewDate time.Time
	LastReviewDate *time.Time
}

// MistakeEntry is one row of the mistake log.
type MistakeEntry struct {
	Count           int       `json:"count"`
	LastWrongAnswer string    `json:"last_wrong_answer"`
	Timestamp       time.Time `json:"timestamp"`
}

// SavedProgress is the mid-quiz snapshot used to offer resume after a reload.
type SavedProgress struct {
	BankIDs          []string  `json:"bank_ids"`
	QuestionIDs      []string  `json:"question_ids"`
	CurrentIndex     int       `json:"current_index"`
	Score            int       `json:"score"`
	WrongQuestionIDs []string  `json:"wrong_question_ids"`
	SavedAt          time.Time `json:"saved_at"`

	SessionID   string    `json:"session_id,omitempty"`
	Mode        string    `json:"mode,omitempty"`
	ChallengeID string    `json:"challenge_id,omitempty"`
	Answered    bool      `json:"answered,omitempty"` // current question already answered
	StartedAt   time.Time `json:"started_at,omitzero"`
}

// MistakeDetail records a single wrong answer within a session.
type MistakeDetail struct {
	QuestionID     string    `json:"question_id"`
	QuestionText   string    `json:"question_text"`
	SelectedAnswer string    `json:"selected_answer"`
	CorrectAnswer  []string  `json:"correct_answer"`
	Explanation    string    `json:"explanation,omitempty"`
	AnsweredAt     time.Time `json:"answered_at"`
}

// RecentMistakeSession groups the mistakes of one exited quiz session.
type RecentMistakeSession struct {
	ID        string          `json:"id"`
	BankNames []string        `json:"bank_names"`
	Mistakes  []MistakeDetail `json:"mistakes"`
	CreatedAt time.Time       `json:"created_at"`
}

// SessionEventData captures a quiz session lifecycle event (start/end).
type SessionEventData struct {
	SessionID       string
	Action          string // "start" or "end"
	Mode            string
	BankIDs         []string
	QuestionsServed int // end only
	CorrectAnswers  int // end only
	DurationSecs    int // end only
}

// AnswerEventData captures a single answered question.
type AnswerEventData struct {
	SessionID      string
	QuestionID     string
	SelectedAnswer string
	Correct        bool
	Grade          int
}

// SessionSummaryRecord is a completed session as read back from the event log.
type SessionSummaryRecord struct {
	SessionID       string
	Mode            string
	BankIDs         []string
	Sequence        int64
	Timestamp       time.Time
	QuestionsServed int
	CorrectAnswers  int
	DurationSecs    int
}

// MistakeLog tracks questions the learner got wrong.
type MistakeLog interface {
	MistakeLog(ctx context.Context) (map[string]MistakeEntry, error)

	// LogMistake increments the count for id and records the wrong answer.
	LogMistake(ctx context.Context, id, answer string, at time.Time) error

	RemoveMistake(ctx context.Context, id string) error
	ClearMistakes(ctx context.Context) error
}

// SpacedRepStore persists spaced repetition items keyed by question id.
type SpacedRepStore interface {
	// SpacedRepItem returns nil, nil when no item exists.
	SpacedRepItem(ctx context.Context, questionID string) (*SpacedRepRecord, error)
	SaveSpacedRepItem(ctx context.Context, rec SpacedRepRecord) error
	SpacedRepItems(ctx context.Context) ([]SpacedRepRecord, error)
	ClearSpacedRep(ctx context.Context) error
}

// SessionStore holds at most one saved mid-quiz snapshot.
type SessionStore interface {
	SaveQuizSession(ctx context.Context, p SavedProgress) error

	// QuizSession returns nil, nil when nothing is saved.
	QuizSession(ctx context.Context) (*SavedProgress, error)
	ClearQuizSession(ctx context.Context) error
}

// RecentMistakes is a FIFO of the last MaxRecentMistakeSessions sessions,
// newest first.
type RecentMistakes interface {
	AddRecentMistakeSession(ctx context.Context, s RecentMistakeSession) error
	RecentMistakeSessions(ctx context.Context) ([]RecentMistakeSession, error)
	ClearRecentMistakeSession(ctx context.Context, id string) error
	ClearAllRecentMistakes(ctx context.Context) error
}

// EventLog provides append access to quiz events. Every event receives a
// global monotonic sequence number.
type EventLog interface {
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error

	// QuerySessionSummaries returns completed sessions, newest first.
	QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummaryRecord, error)

	// AnswerAccuracy returns the fraction of correct answers for a question
	// and the number of answers seen.
	AnswerAccuracy(ctx context.Context, questionID string) (float64, int, error)
}

// BankStore stores question banks and serves them as a question.Source.
type BankStore interface {
	question.Source
	SaveBank(ctx context.Context, b question.Bank) error
	DeleteBank(ctx context.Context, id string) error
}

// Repository is the full learner progress store. The local and SQL
// implementations are interchangeable; callers pick one per session
// context with Select.
type Repository interface {
	MistakeLog
	SpacedRepStore
	SessionStore
	RecentMistakes
	EventLog
	BankStore
	Close() error
}
