package quiz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizquest/internal/question"
	"github.com/abhisek/quizquest/internal/store"
)

var testNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// keepOrder makes Shuffle the identity permutation.
type keepOrder struct{}

func (keepOrder) Float64() float64 { return 0.999999 }

type recordingListener struct{ answers []bool }

func (l *recordingListener) TriggerAnswer(isCorrect bool) { l.answers = append(l.answers, isCorrect) }

func q(id string) question.Question {
	return question.Question{
		ID:          id,
		Question:    "What is " + id + "?",
		Options:     []string{"right", "wrong"},
		Answer:      question.Answer{"right"},
		Explanation: "because " + id,
	}
}

func seedRepo(t *testing.T) *store.Local {
	t.Helper()
	ctx := context.Background()
	repo := store.NewLocal()
	require.NoError(t, repo.SaveBank(ctx, question.Bank{
		ID: "go", Name: "Go Basics",
		Questions: []question.Question{q("g1"), q("g2"), q("g3")},
	}))
	require.NoError(t, repo.SaveBank(ctx, question.Bank{
		ID: "sql", Name: "SQL",
		Questions: []question.Question{q("s1"), q("s2")},
	}))
	return repo
}

func newTestEngine(t *testing.T, repo store.Repository, opts ...Option) *Engine {
	t.Helper()
	clock := testNow
	base := []Option{
		WithRand(keepOrder{}),
		WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}),
	}
	return New(Deps{Repo: repo}, append(base, opts...)...)
}

func ids(qs []question.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func TestStartQuiz_Random(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	e := newTestEngine(t, repo)

	require.NoError(t, e.StartQuiz(ctx, []string{"go"}, Random{Count: 5}))

	st := e.State()
	assert.Equal(t, PhaseActive, st.Phase)
	assert.Equal(t, 3, st.TotalQuestions, "never more than available")
	assert.False(t, st.IsFinished)
	assert.Zero(t, st.CurrentQuestionIndex)
	assert.Zero(t, st.Score)
	assert.Empty(t, st.WrongQuestionIDs)
	assert.NotEmpty(t, st.SessionID)
	assert.False(t, st.StartedAt.IsZero())

	saved, err := repo.QuizSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, ids(st.ActiveQuestions), saved.QuestionIDs)
	assert.Equal(t, "random", saved.Mode)
}

func TestStartQuiz_RandomTruncatesAcrossBanks(t *testing.T) {
	e := newTestEngine(t, seedRepo(t))
	require.NoError(t, e.StartQuiz(context.Background(), []string{"go", "sql"}, Random{Count: 4}))
	assert.Equal(t, 4, e.State().TotalQuestions)

	require.NoError(t, e.ExitQuiz(context.Background()))
	require.NoError(t, e.StartQuiz(context.Background(), []string{"go", "sql"}, Random{}))
	assert.Equal(t, 5, e.State().TotalQuestions, "zero count means all")
}

func TestStartQuiz_EmptyPoolWarns(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, seedRepo(t))

	err := e.StartQuiz(ctx, []string{"go"}, Mistake{Count: 5})
	w, ok := AsWarning(err)
	require.True(t, ok, "want warning, got %v", err)
	assert.Equal(t, WarnNoQuestions, w.Code)
	assert.Equal(t, PhaseIdle, e.State().Phase)

	// A finished quiz is left exactly as it was.
	require.NoError(t, e.StartQuiz(ctx, []string{"sql"}, Random{Count: 1}))
	require.NoError(t, e.NextQuestion(ctx))
	before := e.State()
	require.True(t, before.IsFinished)

	err = e.StartQuiz(ctx, []string{"go"}, RetrySession{QuestionIDs: []string{"nope"}})
	_, ok = AsWarning(err)
	require.True(t, ok)
	after := e.State()
	assert.Equal(t, before.SessionID, after.SessionID)
	assert.Equal(t, before.Phase, after.Phase)
	assert.Equal(t, ids(before.ActiveQuestions), ids(after.ActiveQuestions))
}

func TestStartQuiz_RejectsReentry(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, seedRepo(t))
	require.NoError(t, e.StartQuiz(ctx, []string{"go"}, Random{}))
	id := e.State().SessionID

	assert.ErrorIs(t, e.StartQuiz(ctx, []string{"sql"}, Random{}), ErrSessionActive)
	assert.Equal(t, id, e.State().SessionID)
}

func TestStartQuiz_InvalidInput(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, seedRepo(t))

	assert.ErrorIs(t, e.StartQuiz(ctx, []string{"go"}, nil), ErrInvalidMode)
	assert.ErrorIs(t, e.StartQuiz(ctx, nil, Challenge{ChallengeID: "c1"}), ErrInvalidMode)
	assert.ErrorIs(t, e.StartQuiz(ctx, []string{"go"}, Mistake{Count: 5}), question.ErrBankNotFound)
	assert.Equal(t, PhaseIdle, e.State().Phase)
}

func TestStartQuiz_RetrySessionKeepsOrder(t *testing.T) {
	e := newTestEngine(t, seedRepo(t))
	err := e.StartQuiz(context.Background(), []string{"go", "sql"},
		RetrySession{QuestionIDs: []string{"s2", "gone", "g1", "s2"}})
	require.NoError(t, err)

	st := e.State()
	assert.Equal(t, []string{"s2", "g1"}, ids(st.ActiveQuestions))
	assert.Equal(t, KindRetrySession, st.Mode.Kind())
}

func TestStartQuiz_Challenge(t *testing.T) {
	e := newTestEngine(t, seedRepo(t), WithRand(constRand(0)))
	require.NoError(t, e.StartQuiz(context.Background(), nil, Challenge{ChallengeID: "weekly", BankID: "go"}))

	st := e.State()
	assert.Equal(t, []string{"g1", "g2", "g3"}, ids(st.ActiveQuestions), "original order, unshuffled")
	assert.Equal(t, "weekly", st.ChallengeID)
	assert.Equal(t, []string{"go"}, st.BankIDs)
}

func TestHandleAnswer(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	listener := &recordingListener{}
	e := newTestEngine(t, repo, WithListener(listener))
	require.NoError(t, e.StartQuiz(ctx, []string{"go"}, Random{}))

	require.NoError(t, e.HandleAnswer(ctx, true, "right"))
	assert.ErrorIs(t, e.HandleAnswer(ctx, false, "wrong"), ErrAlreadyAnswered)

	require.NoError(t, e.NextQuestion(ctx))
	require.NoError(t, e.HandleAnswer(ctx, false, "wrong"))

	st := e.State()
	assert.Equal(t, 1, st.Score)
	assert.Equal(t, []string{"g2"}, st.WrongQuestionIDs)
	assert.Equal(t, []bool{true, false}, listener.answers)

	item, err := repo.SpacedRepItem(ctx, "g1")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, 1, item.Repetitions)
	assert.Equal(t, 1, item.Interval)

	item, err = repo.SpacedRepItem(ctx, "g2")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Zero(t, item.Repetitions)
	assert.InDelta(t, 1.96, item.EasinessFactor, 1e-9)

	log, err := repo.MistakeLog(ctx)
	require.NoError(t, err)
	require.Contains(t, log, "g2")
	assert.Equal(t, 1, log["g2"].Count)
	assert.Equal(t, "wrong", log["g2"].LastWrongAnswer)

	mistakes := e.SessionMistakes()
	require.Len(t, mistakes, 1)
	assert.Equal(t, "g2", mistakes[0].QuestionID)
	assert.Equal(t, []string{"right"}, mistakes[0].CorrectAnswer)
	assert.Equal(t, "because g2", mistakes[0].Explanation)

	acc, n, err := repo.AnswerAccuracy(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1.0, acc)
}

func TestHandleAnswer_NoSession(t *testing.T) {
	e := newTestEngine(t, seedRepo(t))
	assert.ErrorIs(t, e.HandleAnswer(context.Background(), true, "x"), ErrNoActiveSession)
	assert.ErrorIs(t, e.NextQuestion(context.Background()), ErrNoActiveSession)
}

func TestAnswer_GradesSelection(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, seedRepo(t))
	require.NoError(t, e.StartQuiz(ctx, []string{"go"}, Random{}))

	correct, err := e.Answer(ctx, "  RIGHT ")
	require.NoError(t, err)
	assert.True(t, correct)
	assert.Equal(t, 1, e.State().Score)
}

func TestMistakeRemovedOnlyInMistakeMode(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	e := newTestEngine(t, repo)

	// Miss s1 once.
	require.NoError(t, e.StartQuiz(ctx, []string{"sql"}, RetrySession{QuestionIDs: []string{"s1"}}))
	require.NoError(t, e.HandleAnswer(ctx, false, "wrong"))
	require.NoError(t, e.ExitQuiz(ctx))

	// A correct answer in random mode keeps the entry.
	require.NoError(t, e.StartQuiz(ctx, []string{"sql"}, Random{}))
	require.NoError(t, e.HandleAnswer(ctx, true, "right"))
	require.NoError(t, e.ExitQuiz(ctx))
	log, err := repo.MistakeLog(ctx)
	require.NoError(t, err)
	assert.Contains(t, log, "s1")

	// A correct answer in mistake mode clears it.
	require.NoError(t, e.StartQuiz(ctx, []string{"sql"}, Mistake{}))
	st := e.State()
	require.Equal(t, []string{"s1"}, ids(st.ActiveQuestions))
	require.NoError(t, e.HandleAnswer(ctx, true, "right"))
	log, err = repo.MistakeLog(ctx)
	require.NoError(t, err)
	assert.NotContains(t, log, "s1")
}

func TestNextQuestion_Finishes(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	e := newTestEngine(t, repo)
	require.NoError(t, e.StartQuiz(ctx, []string{"sql"}, Random{}))

	require.NoError(t, e.HandleAnswer(ctx, true, "right"))
	require.NoError(t, e.NextQuestion(ctx))
	assert.Equal(t, 1, e.State().CurrentQuestionIndex)
	assert.False(t, e.State().Answered)

	require.NoError(t, e.HandleAnswer(ctx, false, "wrong"))
	require.NoError(t, e.NextQuestion(ctx))

	st := e.State()
	assert.True(t, st.IsFinished)
	assert.Equal(t, PhaseFinished, st.Phase)
	assert.ErrorIs(t, e.NextQuestion(ctx), ErrNoActiveSession)

	saved, err := repo.QuizSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, saved, "saved progress is cleared on finish")

	sums, err := repo.QuerySessionSummaries(ctx, store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.Equal(t, st.SessionID, sums[0].SessionID)
	assert.Equal(t, 2, sums[0].QuestionsServed)
	assert.Equal(t, 1, sums[0].CorrectAnswers)
	assert.Equal(t, "random", sums[0].Mode)

	sum := e.Summary()
	assert.Equal(t, 2, sum.Answered)
	assert.Equal(t, 0.5, sum.Accuracy)
	assert.Positive(t, sum.Duration)
}

func TestExitQuiz_SavesRecentMistakes(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	e := newTestEngine(t, repo)
	require.NoError(t, e.StartQuiz(ctx, []string{"go", "sql"}, Random{Count: 2}))
	require.NoError(t, e.HandleAnswer(ctx, false, "wrong"))

	require.NoError(t, e.ExitQuiz(ctx))
	assert.Equal(t, PhaseIdle, e.State().Phase)
	assert.Empty(t, e.SessionMistakes())

	recent, err := repo.RecentMistakeSessions(ctx)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, []string{"Go Basics", "SQL"}, recent[0].BankNames)
	require.Len(t, recent[0].Mistakes, 1)
	assert.Equal(t, "g1", recent[0].Mistakes[0].QuestionID)

	saved, err := repo.QuizSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestExitQuiz_NoMistakesNoRecent(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	e := newTestEngine(t, repo)
	require.NoError(t, e.ExitQuiz(ctx), "exit while idle is a no-op")

	require.NoError(t, e.StartQuiz(ctx, []string{"go"}, Random{}))
	require.NoError(t, e.HandleAnswer(ctx, true, "right"))
	require.NoError(t, e.ExitQuiz(ctx))

	recent, err := repo.RecentMistakeSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestResume(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	first := newTestEngine(t, repo)
	require.NoError(t, first.StartQuiz(ctx, []string{"go"}, Random{}))
	require.NoError(t, first.HandleAnswer(ctx, true, "right"))
	require.NoError(t, first.NextQuestion(ctx))
	require.NoError(t, first.HandleAnswer(ctx, false, "wrong"))
	want := first.State()

	// A new engine over the same store, as after a reload.
	second := newTestEngine(t, repo)
	p, ok := second.PendingResume(ctx)
	require.True(t, ok)
	assert.Equal(t, ids(want.ActiveQuestions), p.QuestionIDs)

	require.NoError(t, second.RestoreSession(ctx))
	got := second.State()
	assert.Equal(t, PhaseActive, got.Phase)
	assert.Equal(t, want.SessionID, got.SessionID)
	assert.Equal(t, ids(want.ActiveQuestions), ids(got.ActiveQuestions))
	assert.Equal(t, 1, got.CurrentQuestionIndex)
	assert.Equal(t, 1, got.Score)
	assert.Equal(t, []string{"g2"}, got.WrongQuestionIDs)
	assert.True(t, got.Answered)
	assert.Equal(t, KindRandom, got.Mode.Kind())

	assert.ErrorIs(t, second.HandleAnswer(ctx, true, "right"), ErrAlreadyAnswered)
	require.NoError(t, second.NextQuestion(ctx))
	assert.Equal(t, 2, second.State().CurrentQuestionIndex)

	_, ok = second.PendingResume(ctx)
	assert.False(t, ok, "no resume offer while a quiz is active")
	assert.ErrorIs(t, second.RestoreSession(ctx), ErrSessionActive)
}

func TestResume_DiscardsUnresolvable(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	e := newTestEngine(t, repo)
	require.NoError(t, e.StartQuiz(ctx, []string{"sql"}, Random{}))

	require.NoError(t, repo.DeleteBank(ctx, "sql"))

	reloaded := newTestEngine(t, repo)
	_, ok := reloaded.PendingResume(ctx)
	assert.False(t, ok)

	saved, err := repo.QuizSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, saved, "stale save is discarded")

	require.NoError(t, reloaded.RestoreSession(ctx))
	assert.Equal(t, PhaseIdle, reloaded.State().Phase)
}

func TestResume_DiscardsEditedBank(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	require.NoError(t, repo.SaveQuizSession(ctx, store.SavedProgress{
		BankIDs:     []string{"go"},
		QuestionIDs: []string{"g1", "g9"},
		SavedAt:     testNow,
	}))

	e := newTestEngine(t, repo)
	require.NoError(t, e.RestoreSession(ctx))
	assert.Equal(t, PhaseIdle, e.State().Phase)

	saved, err := repo.QuizSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestResume_NothingSaved(t *testing.T) {
	e := newTestEngine(t, seedRepo(t))
	_, ok := e.PendingResume(context.Background())
	assert.False(t, ok)
	require.NoError(t, e.RestoreSession(context.Background()))
	assert.Equal(t, PhaseIdle, e.State().Phase)
}

// flakyMistakeLog fails LogMistake while broken is set.
type flakyMistakeLog struct {
	*store.Local
	broken bool
}

func (f *flakyMistakeLog) LogMistake(ctx context.Context, id, answer string, at time.Time) error {
	if f.broken {
		return errors.New("disk full")
	}
	return f.Local.LogMistake(ctx, id, answer, at)
}

func TestHandleAnswer_MistakeLogFailureRecordsNothing(t *testing.T) {
	ctx := context.Background()
	repo := &flakyMistakeLog{Local: seedRepo(t), broken: true}
	listener := &recordingListener{}
	e := newTestEngine(t, repo, WithListener(listener))
	require.NoError(t, e.StartQuiz(ctx, []string{"go"}, Random{}))

	err := e.HandleAnswer(ctx, false, "wrong")
	require.ErrorContains(t, err, "disk full")

	st := e.State()
	assert.False(t, st.Answered)
	assert.Zero(t, st.AnswerCount)
	assert.Empty(t, st.WrongQuestionIDs)
	assert.Empty(t, listener.answers)
	item, err := repo.SpacedRepItem(ctx, "g1")
	require.NoError(t, err)
	assert.Nil(t, item, "review must not be saved when the mistake log fails")

	repo.broken = false
	require.NoError(t, e.HandleAnswer(ctx, false, "wrong"))
	item, err = repo.SpacedRepItem(ctx, "g1")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.InDelta(t, 1.96, item.EasinessFactor, 1e-9, "graded once")
}

func TestStartQuiz_AfterFinishKeepsMistakes(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	e := newTestEngine(t, repo)
	require.NoError(t, e.StartQuiz(ctx, []string{"sql"}, Random{Count: 1}))
	require.NoError(t, e.HandleAnswer(ctx, false, "wrong"))
	require.NoError(t, e.NextQuestion(ctx))
	require.True(t, e.State().IsFinished)

	require.NoError(t, e.StartQuiz(ctx, []string{"go"}, Random{}))
	assert.Equal(t, PhaseActive, e.State().Phase)
	assert.Empty(t, e.SessionMistakes())

	recent, err := repo.RecentMistakeSessions(ctx)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, []string{"SQL"}, recent[0].BankNames)
	require.Len(t, recent[0].Mistakes, 1)
	assert.Equal(t, "s1", recent[0].Mistakes[0].QuestionID)
}

func TestStartQuiz_AfterFinishEmptyPoolKeepsFinished(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	e := newTestEngine(t, repo)
	require.NoError(t, e.StartQuiz(ctx, []string{"sql"}, Random{Count: 1}))
	require.NoError(t, e.HandleAnswer(ctx, false, "wrong"))
	require.NoError(t, e.NextQuestion(ctx))

	_, ok := AsWarning(e.StartQuiz(ctx, []string{"go"}, Mistake{Count: 5}))
	require.True(t, ok)
	assert.Equal(t, PhaseFinished, e.State().Phase)
	assert.Len(t, e.SessionMistakes(), 1)
}

func TestResume_KeepsEarlierMistakes(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	first := newTestEngine(t, repo)
	require.NoError(t, first.StartQuiz(ctx, []string{"go"}, Random{}))
	require.NoError(t, first.HandleAnswer(ctx, false, "nope"))
	require.NoError(t, first.NextQuestion(ctx))

	second := newTestEngine(t, repo)
	require.NoError(t, second.RestoreSession(ctx))
	mistakes := second.SessionMistakes()
	require.Len(t, mistakes, 1)
	assert.Equal(t, "g1", mistakes[0].QuestionID)
	assert.Equal(t, "nope", mistakes[0].SelectedAnswer)
	assert.Equal(t, []string{"right"}, mistakes[0].CorrectAnswer)
	assert.False(t, mistakes[0].AnsweredAt.IsZero())

	require.NoError(t, second.HandleAnswer(ctx, false, "again"))
	require.NoError(t, second.ExitQuiz(ctx))

	recent, err := repo.RecentMistakeSessions(ctx)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Len(t, recent[0].Mistakes, 2)
	assert.Equal(t, "g1", recent[0].Mistakes[0].QuestionID)
	assert.Equal(t, "g2", recent[0].Mistakes[1].QuestionID)
}
