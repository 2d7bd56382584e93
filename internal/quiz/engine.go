package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/quizquest/internal/question"
	"github.com/abhisek/quizquest/internal/spacedrep"
	"github.com/abhisek/quizquest/internal/store"
)

// AnswerListener receives every recorded answer after the quiz state has
// been updated. *battle.Battle satisfies it.
type AnswerListener interface {
	TriggerAnswer(isCorrect bool)
}

// Deps are the collaborators an Engine reads from and writes to.
type Deps struct {
	Repo store.Repository

	// Source serves questions. Defaults to Repo.
	Source question.Source

	// Scheduler records spaced repetition reviews. Defaults to a scheduler
	// over Repo.
	Scheduler *spacedrep.Scheduler
}

// Engine runs one quiz at a time for a single learner. It is not safe for
// concurrent use.
type Engine struct {
	repo      store.Repository
	source    question.Source
	scheduler *spacedrep.Scheduler
	listener  AnswerListener
	now       func() time.Time
	rng       Rand
	logger    *slog.Logger

	state State

	// mistakes buffers this session's wrong answers until exit.
	mistakes []store.MistakeDetail
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRand sets the shuffle source.
func WithRand(r Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithListener forwards answers to l, typically a battle.
func WithListener(l AnswerListener) Option {
	return func(e *Engine) { e.listener = l }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an idle engine.
func New(deps Deps, opts ...Option) *Engine {
	e := &Engine{
		repo:      deps.Repo,
		source:    deps.Source,
		scheduler: deps.Scheduler,
		now:       time.Now,
		rng:       globalRand{},
		logger:    slog.Default(),
		state:     State{Phase: PhaseIdle},
	}
	if e.source == nil {
		e.source = deps.Repo
	}
	if e.scheduler == nil {
		e.scheduler = spacedrep.NewScheduler(deps.Repo)
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// State returns a copy of the current quiz state.
func (e *Engine) State() State {
	return e.state.clone()
}

// Summary summarizes the current or most recently finished session.
func (e *Engine) Summary() Summary {
	return BuildSummary(e.state, e.now())
}

// SessionMistakes returns the wrong answers buffered this session.
func (e *Engine) SessionMistakes() []store.MistakeDetail {
	return slices.Clone(e.mistakes)
}

// StartQuiz builds a question list for mode from the given banks and makes
// it the active session. An empty selection returns a *Warning and leaves
// the engine untouched. A finished session is exited first, so its mistakes
// reach the recent-mistakes list.
func (e *Engine) StartQuiz(ctx context.Context, bankIDs []string, mode Mode) error {
	if e.state.Phase == PhaseActive {
		return ErrSessionActive
	}
	if mode == nil {
		return fmt.Errorf("%w: nil mode", ErrInvalidMode)
	}

	pool, banks, err := e.buildPool(ctx, bankIDs, mode)
	if err != nil {
		return err
	}
	if len(pool) == 0 {
		w := &Warning{Code: WarnNoQuestions, Message: "no questions in range"}
		e.logger.Warn("quiz not started", "mode", mode.Kind(), "banks", banks, "reason", w.Code)
		return w
	}

	// A finished session still holds its mistakes until it is exited.
	if e.state.Phase == PhaseFinished {
		if err := e.ExitQuiz(ctx); err != nil {
			return err
		}
	}

	now := e.now()
	st := State{
		Phase:            PhaseActive,
		SessionID:        uuid.New().String(),
		Mode:             mode,
		BankIDs:          banks,
		ActiveQuestions:  pool,
		TotalQuestions:   len(pool),
		WrongQuestionIDs: []string{},
		StartedAt:        now,
	}
	if c, ok := mode.(Challenge); ok {
		st.ChallengeID = c.ChallengeID
	}
	e.state = st
	e.mistakes = nil

	e.appendSessionEvent(ctx, "start")
	e.saveProgress(ctx)
	e.logger.Info("quiz started", "session_id", st.SessionID, "mode", mode.Kind(), "questions", st.TotalQuestions)
	return nil
}

// buildPool resolves the ordered question list for mode.
func (e *Engine) buildPool(ctx context.Context, bankIDs []string, mode Mode) ([]question.Question, []string, error) {
	if c, ok := mode.(Challenge); ok {
		if c.BankID == "" {
			return nil, nil, fmt.Errorf("%w: challenge without bank", ErrInvalidMode)
		}
		qs, err := e.source.Questions(ctx, c.BankID)
		if err != nil {
			return nil, nil, fmt.Errorf("load challenge bank: %w", err)
		}
		return slices.Clone(qs), []string{c.BankID}, nil
	}

	all, err := e.loadQuestions(ctx, bankIDs)
	if err != nil {
		return nil, nil, err
	}
	banks := slices.Clone(bankIDs)

	switch m := mode.(type) {
	case Random:
		Shuffle(all, e.rng)
		return truncate(all, m.Count), banks, nil

	case Mistake:
		log, err := e.repo.MistakeLog(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("load mistake log: %w", err)
		}
		pool := slices.DeleteFunc(all, func(q question.Question) bool {
			_, ok := log[q.ID]
			return !ok
		})
		Shuffle(pool, e.rng)
		return truncate(pool, m.Count), banks, nil

	case RetrySession:
		byID := make(map[string]question.Question, len(all))
		for _, q := range all {
			byID[q.ID] = q
		}
		pool := make([]question.Question, 0, len(m.QuestionIDs))
		seen := make(map[string]bool, len(m.QuestionIDs))
		for _, id := range m.QuestionIDs {
			if q, ok := byID[id]; ok && !seen[id] {
				pool = append(pool, q)
				seen[id] = true
			}
		}
		return pool, banks, nil
	}
	return nil, nil, fmt.Errorf("%w: %T", ErrInvalidMode, mode)
}

// loadQuestions concatenates the questions of the given banks, keeping the
// first occurrence of a duplicated id.
func (e *Engine) loadQuestions(ctx context.Context, bankIDs []string) ([]question.Question, error) {
	var out []question.Question
	seen := make(map[string]bool)
	for _, id := range bankIDs {
		qs, err := e.source.Questions(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load bank %s: %w", id, err)
		}
		for _, q := range qs {
			if seen[q.ID] {
				continue
			}
			seen[q.ID] = true
			out = append(out, q)
		}
	}
	return out, nil
}

func truncate(qs []question.Question, count int) []question.Question {
	if count > 0 && len(qs) > count {
		return qs[:count]
	}
	return qs
}

// Answer grades selected against the current question and records it.
func (e *Engine) Answer(ctx context.Context, selected string) (bool, error) {
	q, ok := e.state.CurrentQuestion()
	if !ok || e.state.Phase != PhaseActive {
		return false, ErrNoActiveSession
	}
	correct := q.IsCorrect(selected)
	return correct, e.HandleAnswer(ctx, correct, selected)
}

// HandleAnswer records the answer to the current question: spaced
// repetition, mistake log, score, then the answer listener. Store failures
// are returned before the quiz state changes.
func (e *Engine) HandleAnswer(ctx context.Context, isCorrect bool, selectedAnswer string) error {
	if e.state.Phase != PhaseActive {
		return ErrNoActiveSession
	}
	if e.state.Answered {
		return ErrAlreadyAnswered
	}
	q, _ := e.state.CurrentQuestion()
	now := e.now()

	grade := spacedrep.GradeFail
	if isCorrect {
		grade = spacedrep.GradePass
	}

	item, err := e.scheduler.Review(ctx, q.ID, grade, now)
	if err != nil {
		return fmt.Errorf("record review: %w", err)
	}

	if isCorrect {
		if e.state.Mode.Kind() == KindMistake {
			if err := e.repo.RemoveMistake(ctx, q.ID); err != nil {
				return fmt.Errorf("remove mistake: %w", err)
			}
		}
	} else if err := e.repo.LogMistake(ctx, q.ID, selectedAnswer, now); err != nil {
		return fmt.Errorf("log mistake: %w", err)
	}

	// Saved last: a failed mistake-log write must leave the review unrecorded.
	if err := e.scheduler.Save(ctx, item); err != nil {
		return fmt.Errorf("record review: %w", err)
	}

	st := &e.state
	st.Answered = true
	st.AnswerCount++
	if isCorrect {
		st.Score++
	} else {
		st.WrongQuestionIDs = append(st.WrongQuestionIDs, q.ID)
		e.mistakes = append(e.mistakes, store.MistakeDetail{
			QuestionID:     q.ID,
			QuestionText:   q.Question,
			SelectedAnswer: selectedAnswer,
			CorrectAnswer:  slices.Clone([]string(q.Answer)),
			Explanation:    q.Explanation,
			AnsweredAt:     now,
		})
	}

	if err := e.repo.AppendAnswerEvent(ctx, store.AnswerEventData{
		SessionID:      st.SessionID,
		QuestionID:     q.ID,
		SelectedAnswer: selectedAnswer,
		Correct:        isCorrect,
		Grade:          grade,
	}); err != nil {
		e.logger.Warn("append answer event", "session_id", st.SessionID, "error", err)
	}
	e.saveProgress(ctx)

	e.logger.Debug("answer recorded", "question_id", q.ID, "correct", isCorrect,
		"interval_days", item.Interval, "ef", item.EasinessFactor)

	if e.listener != nil {
		e.listener.TriggerAnswer(isCorrect)
	}
	return nil
}

// NextQuestion advances to the next question. Past the last question the
// session finishes: saved progress is cleared and the end is logged.
func (e *Engine) NextQuestion(ctx context.Context) error {
	if e.state.Phase != PhaseActive {
		return ErrNoActiveSession
	}
	st := &e.state
	if st.CurrentQuestionIndex >= st.TotalQuestions-1 {
		st.IsFinished = true
		st.Phase = PhaseFinished
		st.FinishedAt = e.now()
		if err := e.repo.ClearQuizSession(ctx); err != nil {
			e.logger.Warn("clear saved quiz", "error", err)
		}
		e.appendSessionEvent(ctx, "end")
		e.logger.Info("quiz finished", "session_id", st.SessionID, "score", st.Score, "total", st.TotalQuestions)
		return nil
	}

	st.CurrentQuestionIndex++
	st.Answered = false
	e.saveProgress(ctx)
	return nil
}

// ExitQuiz leaves the current session. Mistakes made during it are saved
// as a recent-mistake session. The engine returns to idle even if saving
// fails; the error is still returned.
func (e *Engine) ExitQuiz(ctx context.Context) error {
	if e.state.Phase == PhaseIdle {
		return nil
	}

	var saveErr error
	if len(e.mistakes) > 0 {
		rs := store.RecentMistakeSession{
			ID:        uuid.New().String(),
			BankNames: e.bankNames(ctx),
			Mistakes:  e.mistakes,
			CreatedAt: e.now(),
		}
		if err := e.repo.AddRecentMistakeSession(ctx, rs); err != nil {
			saveErr = fmt.Errorf("save recent mistakes: %w", err)
		}
	}

	if e.state.Phase == PhaseActive {
		e.state.FinishedAt = e.now()
		e.appendSessionEvent(ctx, "end")
	}
	if err := e.repo.ClearQuizSession(ctx); err != nil {
		saveErr = errors.Join(saveErr, fmt.Errorf("clear saved quiz: %w", err))
	}

	e.logger.Info("quiz exited", "session_id", e.state.SessionID, "mistakes", len(e.mistakes))
	e.state = State{Phase: PhaseIdle}
	e.mistakes = nil
	return saveErr
}

func (e *Engine) bankNames(ctx context.Context) []string {
	names := make([]string, 0, len(e.state.BankIDs))
	for _, id := range e.state.BankIDs {
		b, err := e.source.Bank(ctx, id)
		if err != nil || b.Name == "" {
			names = append(names, id)
			continue
		}
		names = append(names, b.Name)
	}
	return names
}

// saveProgress persists the in-flight session. Failures only cost the
// resume offer, so they are logged.
func (e *Engine) saveProgress(ctx context.Context) {
	st := e.state
	if st.Phase != PhaseActive {
		return
	}
	p := store.SavedProgress{
		BankIDs:          slices.Clone(st.BankIDs),
		QuestionIDs:      st.questionIDs(),
		CurrentIndex:     st.CurrentQuestionIndex,
		Score:            st.Score,
		WrongQuestionIDs: slices.Clone(st.WrongQuestionIDs),
		SavedAt:          e.now(),
		SessionID:        st.SessionID,
		Mode:             string(st.Mode.Kind()),
		ChallengeID:      st.ChallengeID,
		Answered:         st.Answered,
		StartedAt:        st.StartedAt,
	}
	if err := e.repo.SaveQuizSession(ctx, p); err != nil {
		e.logger.Warn("save quiz progress", "session_id", st.SessionID, "error", err)
	}
}

func (e *Engine) appendSessionEvent(ctx context.Context, action string) {
	st := e.state
	data := store.SessionEventData{
		SessionID: st.SessionID,
		Action:    action,
		Mode:      string(st.Mode.Kind()),
		BankIDs:   slices.Clone(st.BankIDs),
	}
	if action == "end" {
		data.QuestionsServed = st.AnswerCount
		data.CorrectAnswers = st.Score
		data.DurationSecs = int(st.FinishedAt.Sub(st.StartedAt).Seconds())
	}
	if err := e.repo.AppendSessionEvent(ctx, data); err != nil {
		e.logger.Warn("append session event", "action", action, "session_id", st.SessionID, "error", err)
	}
}
