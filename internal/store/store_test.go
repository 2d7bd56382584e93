package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizquest/internal/question"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Options{
		Driver: DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// forEachRepo runs fn against both Repository implementations.
func forEachRepo(t *testing.T, fn func(t *testing.T, r Repository)) {
	t.Run("sql", func(t *testing.T) { fn(t, openTestStore(t)) })
	t.Run("local", func(t *testing.T) { fn(t, NewLocal()) })
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestReopenKeepsSequence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "seq.db")

	s, err := Open(ctx, Options{Driver: DriverSQLite, DSN: path})
	require.NoError(t, err)
	require.NoError(t, s.AppendSessionEvent(ctx, SessionEventData{SessionID: "a", Action: "end", Mode: "random"}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, Options{Driver: DriverSQLite, DSN: path})
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.AppendSessionEvent(ctx, SessionEventData{SessionID: "b", Action: "end", Mode: "random"}))

	got, err := s.QuerySessionSummaries(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].SessionID)
	assert.Greater(t, got[0].Sequence, got[1].Sequence)
}

func TestSelect(t *testing.T) {
	ctx := context.Background()

	r, err := Select(ctx, Options{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "x.db")}, false)
	require.NoError(t, err)
	assert.IsType(t, &Local{}, r)

	r, err = Select(ctx, Options{Driver: DriverMemory}, true)
	require.NoError(t, err)
	assert.IsType(t, &Local{}, r)

	r, err = Select(ctx, Options{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "y.db")}, true)
	require.NoError(t, err)
	defer r.Close()
	assert.IsType(t, &Store{}, r)
}

func TestMistakeLog(t *testing.T) {
	forEachRepo(t, func(t *testing.T, r Repository) {
		ctx := context.Background()
		at := time.UnixMilli(1_700_000_000_000).UTC()

		require.NoError(t, r.LogMistake(ctx, "q1", "B", at))
		require.NoError(t, r.LogMistake(ctx, "q1", "C", at.Add(time.Minute)))
		require.NoError(t, r.LogMistake(ctx, "q2", "A", at))

		log, err := r.MistakeLog(ctx)
		require.NoError(t, err)
		require.Len(t, log, 2)
		assert.Equal(t, 2, log["q1"].Count)
		assert.Equal(t, "C", log["q1"].LastWrongAnswer)
		assert.True(t, log["q1"].Timestamp.Equal(at.Add(time.Minute)))

		require.NoError(t, r.RemoveMistake(ctx, "q1"))
		log, err = r.MistakeLog(ctx)
		require.NoError(t, err)
		assert.NotContains(t, log, "q1")

		require.NoError(t, r.ClearMistakes(ctx))
		log, err = r.MistakeLog(ctx)
		require.NoError(t, err)
		assert.Empty(t, log)
	})
}

func TestSpacedRepItems(t *testing.T) {
	forEachRepo(t, func(t *testing.T, r Repository) {
		ctx := context.Background()

		got, err := r.SpacedRepItem(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)

		next := time.UnixMilli(1_700_000_000_000).UTC()
		last := next.Add(-6 * 24 * time.Hour)
		rec := SpacedRepRecord{
			QuestionID:     "q1",
			EasinessFactor: 2.6,
			Interval:       6,
			Repetitions:    2,
			NextReviewDate: next,
			LastReviewDate: &last,
		}
		require.NoError(t, r.SaveSpacedRepItem(ctx, rec))
		require.NoError(t, r.SaveSpacedRepItem(ctx, SpacedRepRecord{
			QuestionID:     "q0",
			EasinessFactor: 2.5,
			NextReviewDate: next,
		}))

		got, err = r.SpacedRepItem(ctx, "q1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 2.6, got.EasinessFactor)
		assert.Equal(t, 6, got.Interval)
		assert.Equal(t, 2, got.Repetitions)
		assert.True(t, got.NextReviewDate.Equal(next))
		require.NotNil(t, got.LastReviewDate)
		assert.True(t, got.LastReviewDate.Equal(last))

		// Overwrite.
		rec.Repetitions = 3
		require.NoError(t, r.SaveSpacedRepItem(ctx, rec))

		all, err := r.SpacedRepItems(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "q0", all[0].QuestionID)
		assert.Nil(t, all[0].LastReviewDate)
		assert.Equal(t, 3, all[1].Repetitions)

		require.NoError(t, r.ClearSpacedRep(ctx))
		all, err = r.SpacedRepItems(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func TestQuizSessionRoundTrip(t *testing.T) {
	forEachRepo(t, func(t *testing.T, r Repository) {
		ctx := context.Background()

		got, err := r.QuizSession(ctx)
		require.NoError(t, err)
		assert.Nil(t, got)

		saved := SavedProgress{
			BankIDs:          []string{"go"},
			QuestionIDs:      []string{"q1", "q2", "q3"},
			CurrentIndex:     1,
			Score:            1,
			WrongQuestionIDs: []string{},
			SavedAt:          time.UnixMilli(1_700_000_000_000).UTC(),
		}
		require.NoError(t, r.SaveQuizSession(ctx, saved))

		got, err = r.QuizSession(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, saved.QuestionIDs, got.QuestionIDs)
		assert.Equal(t, 1, got.CurrentIndex)
		assert.Equal(t, 1, got.Score)
		assert.True(t, got.SavedAt.Equal(saved.SavedAt))

		// Second save replaces the first.
		saved.CurrentIndex = 2
		require.NoError(t, r.SaveQuizSession(ctx, saved))
		got, err = r.QuizSession(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, got.CurrentIndex)

		require.NoError(t, r.ClearQuizSession(ctx))
		got, err = r.QuizSession(ctx)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestRecentMistakesCapped(t *testing.T) {
	forEachRepo(t, func(t *testing.T, r Repository) {
		ctx := context.Background()
		base := time.UnixMilli(1_700_000_000_000).UTC()

		for i := range 7 {
			require.NoError(t, r.AddRecentMistakeSession(ctx, RecentMistakeSession{
				ID:        fmt.Sprintf("s%d", i),
				BankNames: []string{"Go"},
				Mistakes:  []MistakeDetail{{QuestionID: "q1", SelectedAnswer: "B", CorrectAnswer: []string{"A"}}},
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			}))
		}

		got, err := r.RecentMistakeSessions(ctx)
		require.NoError(t, err)
		require.Len(t, got, MaxRecentMistakeSessions)

		ids := make([]string, len(got))
		for i, s := range got {
			ids[i] = s.ID
		}
		assert.Equal(t, []string{"s6", "s5", "s4", "s3", "s2"}, ids)
		assert.Equal(t, "B", got[0].Mistakes[0].SelectedAnswer)

		require.NoError(t, r.ClearRecentMistakeSession(ctx, "s4"))
		got, err = r.RecentMistakeSessions(ctx)
		require.NoError(t, err)
		assert.Len(t, got, 4)

		require.NoError(t, r.ClearAllRecentMistakes(ctx))
		got, err = r.RecentMistakeSessions(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestSessionSummaries(t *testing.T) {
	forEachRepo(t, func(t *testing.T, r Repository) {
		ctx := context.Background()

		for i := range 3 {
			id := fmt.Sprintf("s%d", i)
			require.NoError(t, r.AppendSessionEvent(ctx, SessionEventData{
				SessionID: id, Action: "start", Mode: "random", BankIDs: []string{"go"},
			}))
			require.NoError(t, r.AppendSessionEvent(ctx, SessionEventData{
				SessionID: id, Action: "end", Mode: "random", BankIDs: []string{"go"},
				QuestionsServed: 10, CorrectAnswers: i, DurationSecs: 60,
			}))
		}

		all, err := r.QuerySessionSummaries(ctx, QueryOpts{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "s2", all[0].SessionID)
		assert.Equal(t, 2, all[0].CorrectAnswers)
		assert.Equal(t, []string{"go"}, all[0].BankIDs)

		limited, err := r.QuerySessionSummaries(ctx, QueryOpts{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, limited, 2)

		after, err := r.QuerySessionSummaries(ctx, QueryOpts{After: all[1].Sequence})
		require.NoError(t, err)
		require.Len(t, after, 1)
		assert.Equal(t, "s2", after[0].SessionID)

		before, err := r.QuerySessionSummaries(ctx, QueryOpts{Before: all[1].Sequence})
		require.NoError(t, err)
		require.Len(t, before, 1)
		assert.Equal(t, "s0", before[0].SessionID)
	})
}

func TestAnswerAccuracy(t *testing.T) {
	forEachRepo(t, func(t *testing.T, r Repository) {
		ctx := context.Background()

		acc, n, err := r.AnswerAccuracy(ctx, "q1")
		require.NoError(t, err)
		assert.Zero(t, acc)
		assert.Zero(t, n)

		for _, correct := range []bool{true, false, true, true} {
			require.NoError(t, r.AppendAnswerEvent(ctx, AnswerEventData{
				SessionID: "s", QuestionID: "q1", Correct: correct, Grade: 4,
			}))
		}
		require.NoError(t, r.AppendAnswerEvent(ctx, AnswerEventData{SessionID: "s", QuestionID: "q2"}))

		acc, n, err = r.AnswerAccuracy(ctx, "q1")
		require.NoError(t, err)
		assert.Equal(t, 4, n)
		assert.InDelta(t, 0.75, acc, 1e-9)
	})
}

func TestBanks(t *testing.T) {
	forEachRepo(t, func(t *testing.T, r Repository) {
		ctx := context.Background()

		_, err := r.Bank(ctx, "nope")
		assert.ErrorIs(t, err, question.ErrBankNotFound)

		goBank := question.Bank{ID: "go", Name: "Go", Questions: []question.Question{
			{ID: "g1", Question: "Zero value of int?", Options: []string{"0", "nil"}, Answer: question.Answer{"0"}},
			{ID: "g2", Question: "Go has generics.", Type: question.TypeTrueFalse, Options: []string{"True", "False"}, Answer: question.Answer{"True"}},
		}}
		sqlBank := question.Bank{ID: "sql", Name: "SQL", Questions: []question.Question{
			{ID: "s1", Question: "Keyword to filter rows?", Type: question.TypeFill, Answer: question.Answer{"WHERE"}},
		}}
		require.NoError(t, r.SaveBank(ctx, goBank))
		require.NoError(t, r.SaveBank(ctx, sqlBank))

		banks, err := r.Banks(ctx)
		require.NoError(t, err)
		require.Len(t, banks, 2)
		assert.Equal(t, "go", banks[0].ID)
		assert.Equal(t, "sql", banks[1].ID)

		qs, err := r.Questions(ctx, "go")
		require.NoError(t, err)
		require.Len(t, qs, 2)
		assert.Equal(t, "g1", qs[0].ID)
		assert.Equal(t, question.Answer{"True"}, qs[1].Answer)
		assert.Equal(t, question.TypeTrueFalse, qs[1].Type)

		// Re-import replaces the questions.
		goBank.Questions = goBank.Questions[:1]
		require.NoError(t, r.SaveBank(ctx, goBank))
		qs, err = r.Questions(ctx, "go")
		require.NoError(t, err)
		assert.Len(t, qs, 1)

		require.NoError(t, r.DeleteBank(ctx, "sql"))
		_, err = r.Questions(ctx, "sql")
		assert.ErrorIs(t, err, question.ErrBankNotFound)
	})
}
