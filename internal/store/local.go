package store

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/abhisek/quizquest/internal/question"
)

// Local is an in-memory Repository used for guests and tests. It mirrors
// the SQL store's semantics but keeps nothing across process restarts.
type Local struct {
	mu sync.Mutex

	seq       int64
	banks     []question.Bank
	spacedRep map[string]SpacedRepRecord
	mistakes  map[string]MistakeEntry
	session   *SavedProgress
	recent    []RecentMistakeSession

	sessionEvents []localSessionEvent
	answerEvents  []AnswerEventData
}

type localSessionEvent struct {
	SessionEventData
	sequence  int64
	timestamp time.Time
}

var _ Repository = (*Local)(nil)

// NewLocal creates an empty in-memory store.
func NewLocal() *Local {
	return &Local{
		spacedRep: make(map[string]SpacedRepRecord),
		mistakes:  make(map[string]MistakeEntry),
	}
}

func (l *Local) Close() error { return nil }

func (l *Local) next() int64 {
	l.seq++
	return l.seq
}

// MistakeLog

func (l *Local) MistakeLog(_ context.Context) (map[string]MistakeEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]MistakeEntry, len(l.mistakes))
	for id, e := range l.mistakes {
		out[id] = e
	}
	return out, nil
}

func (l *Local) LogMistake(_ context.Context, id, answer string, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.mistakes[id]
	e.Count++
	e.LastWrongAnswer = answer
	e.Timestamp = at
	l.mistakes[id] = e
	return nil
}

func (l *Local) RemoveMistake(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.mistakes, id)
	return nil
}

func (l *Local) ClearMistakes(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.mistakes)
	return nil
}

// SpacedRepStore

func (l *Local) SpacedRepItem(_ context.Context, questionID string) (*SpacedRepRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.spacedRep[questionID]
	if !ok {
		return nil, nil
	}
	return copyRecord(rec), nil
}

func (l *Local) SaveSpacedRepItem(_ context.Context, rec SpacedRepRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.spacedRep[rec.QuestionID] = *copyRecord(rec)
	return nil
}

func (l *Local) SpacedRepItems(_ context.Context) ([]SpacedRepRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]SpacedRepRecord, 0, len(l.spacedRep))
	for _, rec := range l.spacedRep {
		out = append(out, *copyRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

func (l *Local) ClearSpacedRep(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.spacedRep)
	return nil
}

func copyRecord(rec SpacedRepRecord) *SpacedRepRecord {
	if rec.LastReviewDate != nil {
		t := *rec.LastReviewDate
		rec.LastReviewDate = &t
	}
	return &rec
}

// SessionStore

func (l *Local) SaveQuizSession(_ context.Context, p SavedProgress) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.session = copyProgress(p)
	return nil
}

func (l *Local) QuizSession(_ context.Context) (*SavedProgress, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.session == nil {
		return nil, nil
	}
	return copyProgress(*l.session), nil
}

func (l *Local) ClearQuizSession(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.session = nil
	return nil
}

func copyProgress(p SavedProgress) *SavedProgress {
	p.BankIDs = slices.Clone(p.BankIDs)
	p.QuestionIDs = slices.Clone(p.QuestionIDs)
	p.WrongQuestionIDs = slices.Clone(p.WrongQuestionIDs)
	return &p
}

// RecentMistakes

func (l *Local) AddRecentMistakeSession(_ context.Context, s RecentMistakeSession) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recent = slices.DeleteFunc(l.recent, func(r RecentMistakeSession) bool { return r.ID == s.ID })
	l.recent = append([]RecentMistakeSession{s}, l.recent...)
	if len(l.recent) > MaxRecentMistakeSessions {
		l.recent = l.recent[:MaxRecentMistakeSessions]
	}
	return nil
}

func (l *Local) RecentMistakeSessions(_ context.Context) ([]RecentMistakeSession, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.recent), nil
}

func (l *Local) ClearRecentMistakeSession(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recent = slices.DeleteFunc(l.recent, func(r RecentMistakeSession) bool { return r.ID == id })
	return nil
}

func (l *Local) ClearAllRecentMistakes(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recent = nil
	return nil
}

// EventLog

func (l *Local) AppendSessionEvent(_ context.Context, data SessionEventData) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	data.BankIDs = slices.Clone(data.BankIDs)
	l.sessionEvents = append(l.sessionEvents, localSessionEvent{
		SessionEventData: data,
		sequence:         l.next(),
		timestamp:        time.Now(),
	})
	return nil
}

func (l *Local) AppendAnswerEvent(_ context.Context, data AnswerEventData) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next()
	l.answerEvents = append(l.answerEvents, data)
	return nil
}

func (l *Local) QuerySessionSummaries(_ context.Context, opts QueryOpts) ([]SessionSummaryRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []SessionSummaryRecord
	for i := len(l.sessionEvents) - 1; i >= 0; i-- {
		e := l.sessionEvents[i]
		if e.Action != "end" {
			continue
		}
		if opts.After > 0 && e.sequence <= opts.After {
			continue
		}
		if opts.Before > 0 && e.sequence >= opts.Before {
			continue
		}
		if !opts.From.IsZero() && e.timestamp.Before(opts.From) {
			continue
		}
		if !opts.To.IsZero() && e.timestamp.After(opts.To) {
			continue
		}
		out = append(out, SessionSummaryRecord{
			SessionID:       e.SessionID,
			Mode:            e.Mode,
			BankIDs:         slices.Clone(e.BankIDs),
			Sequence:        e.sequence,
			Timestamp:       e.timestamp,
			QuestionsServed: e.QuestionsServed,
			CorrectAnswers:  e.CorrectAnswers,
			DurationSecs:    e.DurationSecs,
		})
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out, nil
}

func (l *Local) AnswerAccuracy(_ context.Context, questionID string) (float64, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	total, correct := 0, 0
	for _, e := range l.answerEvents {
		if e.QuestionID != questionID {
			continue
		}
		total++
		if e.Correct {
			correct++
		}
	}
	if total == 0 {
		return 0, 0, nil
	}
	return float64(correct) / float64(total), total, nil
}

// BankStore

func (l *Local) SaveBank(_ context.Context, b question.Bank) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	b.Questions = slices.Clone(b.Questions)
	l.banks = slices.DeleteFunc(l.banks, func(x question.Bank) bool { return x.ID == b.ID })
	l.banks = append(l.banks, b)
	return nil
}

func (l *Local) DeleteBank(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.banks = slices.DeleteFunc(l.banks, func(x question.Bank) bool { return x.ID == id })
	return nil
}

func (l *Local) Banks(_ context.Context) ([]question.Bank, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]question.Bank, len(l.banks))
	for i, b := range l.banks {
		out[i] = question.Bank{ID: b.ID, Name: b.Name}
	}
	return out, nil
}

func (l *Local) Bank(_ context.Context, id string) (*question.Bank, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.banks {
		if b.ID == id {
			b.Questions = slices.Clone(b.Questions)
			return &b, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", question.ErrBankNotFound, id)
}

func (l *Local) Questions(ctx context.Context, bankID string) ([]question.Question, error) {
	b, err := l.Bank(ctx, bankID)
	if err != nil {
		return nil, err
	}
	return b.Questions, nil
}
