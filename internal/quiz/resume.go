package quiz

import (
	"context"
	"slices"

	"github.com/abhisek/quizquest/internal/question"
	"github.com/abhisek/quizquest/internal/store"
)

// PendingResume returns the saved session if one can be resumed. It is
// only offered while idle. A saved session whose questions no longer
// resolve is discarded silently.
func (e *Engine) PendingResume(ctx context.Context) (*store.SavedProgress, bool) {
	if e.state.Phase == PhaseActive {
		return nil, false
	}
	p, qs := e.loadSaved(ctx)
	if p == nil || qs == nil {
		return nil, false
	}
	return p, true
}

// RestoreSession rebuilds the saved session at its exact position. If the
// saved questions cannot be resolved the save is discarded and the engine
// stays idle; that is not an error.
func (e *Engine) RestoreSession(ctx context.Context) error {
	if e.state.Phase == PhaseActive {
		return ErrSessionActive
	}
	p, qs := e.loadSaved(ctx)
	if p == nil || qs == nil {
		return nil
	}

	startedAt := p.StartedAt
	if startedAt.IsZero() {
		startedAt = p.SavedAt
	}
	e.state = State{
		Phase:                PhaseActive,
		SessionID:            p.SessionID,
		Mode:                 restoreMode(p, len(qs)),
		BankIDs:              slices.Clone(p.BankIDs),
		ChallengeID:          p.ChallengeID,
		ActiveQuestions:      qs,
		CurrentQuestionIndex: p.CurrentIndex,
		TotalQuestions:       len(qs),
		Score:                p.Score,
		WrongQuestionIDs:     append([]string{}, p.WrongQuestionIDs...),
		Answered:             p.Answered,
		AnswerCount:          p.CurrentIndex,
		StartedAt:            startedAt,
	}
	if p.Answered {
		e.state.AnswerCount++
	}
	e.mistakes = e.rebuildMistakes(ctx, qs, p.WrongQuestionIDs)
	e.logger.Info("quiz restored", "session_id", p.SessionID, "index", p.CurrentIndex, "total", len(qs))
	return nil
}

// loadSaved reads the saved session and resolves its questions. It returns
// nil, nil when there is nothing usable, clearing a stale save.
func (e *Engine) loadSaved(ctx context.Context) (*store.SavedProgress, []question.Question) {
	p, err := e.repo.QuizSession(ctx)
	if err != nil {
		e.logger.Warn("load saved quiz", "error", err)
		return nil, nil
	}
	if p == nil {
		return nil, nil
	}

	qs, ok := e.resolve(ctx, p)
	if !ok || p.CurrentIndex < 0 || p.CurrentIndex >= len(qs) {
		e.logger.Warn("discarding saved quiz", "session_id", p.SessionID, "questions", len(p.QuestionIDs))
		if err := e.repo.ClearQuizSession(ctx); err != nil {
			e.logger.Warn("clear saved quiz", "error", err)
		}
		return nil, nil
	}
	return p, qs
}

// resolve looks up every saved question id in the saved banks, in saved order.
func (e *Engine) resolve(ctx context.Context, p *store.SavedProgress) ([]question.Question, bool) {
	if len(p.QuestionIDs) == 0 {
		return nil, false
	}
	byID := make(map[string]question.Question)
	for _, bankID := range p.BankIDs {
		qs, err := e.source.Questions(ctx, bankID)
		if err != nil {
			return nil, false
		}
		for _, q := range qs {
			if _, dup := byID[q.ID]; !dup {
				byID[q.ID] = q
			}
		}
	}

	out := make([]question.Question, 0, len(p.QuestionIDs))
	for _, id := range p.QuestionIDs {
		q, ok := byID[id]
		if !ok {
			return nil, false
		}
		out = append(out, q)
	}
	return out, true
}

func restoreMode(p *store.SavedProgress, n int) Mode {
	switch ModeKind(p.Mode) {
	case KindMistake:
		return Mistake{Count: n}
	case KindRetrySession:
		return RetrySession{QuestionIDs: slices.Clone(p.QuestionIDs)}
	case KindChallenge:
		var bankID string
		if len(p.BankIDs) > 0 {
			bankID = p.BankIDs[0]
		}
		return Challenge{ChallengeID: p.ChallengeID, BankID: bankID}
	default:
		return Random{Count: n}
	}
}

// rebuildMistakes recreates the session mistake buffer for a restored
// session. The selected answer and time come from the mistake log; entries
// missing there keep the question details only.
func (e *Engine) rebuildMistakes(ctx context.Context, qs []question.Question, wrong []string) []store.MistakeDetail {
	if len(wrong) == 0 {
		return nil
	}
	log, err := e.repo.MistakeLog(ctx)
	if err != nil {
		e.logger.Warn("load mistake log for resume", "error", err)
	}

	byID := make(map[string]question.Question, len(qs))
	for _, q := range qs {
		byID[q.ID] = q
	}

	out := make([]store.MistakeDetail, 0, len(wrong))
	for _, id := range wrong {
		q, ok := byID[id]
		if !ok {
			continue
		}
		entry := log[id]
		out = append(out, store.MistakeDetail{
			QuestionID:     id,
			QuestionText:   q.Question,
			SelectedAnswer: entry.LastWrongAnswer,
			CorrectAnswer:  slices.Clone([]string(q.Answer)),
			Explanation:    q.Explanation,
			AnsweredAt:     entry.Timestamp,
		})
	}
	return out
}
