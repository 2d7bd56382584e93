package spacedrep

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/abhisek/quizquest/internal/store"
)

// Scheduler applies SM-2 reviews against a persistent item store.
type Scheduler struct {
	repo store.SpacedRepStore
}

// NewScheduler creates a scheduler backed by repo.
func NewScheduler(repo store.SpacedRepStore) *Scheduler {
	return &Scheduler{repo: repo}
}

// RecordAnswer loads (or creates) the item for questionID, grades it as a
// pass or fail and saves the result.
func (s *Scheduler) RecordAnswer(ctx context.Context, questionID string, correct bool, now time.Time) (Item, error) {
	grade := GradeFail
	if correct {
		grade = GradePass
	}
	return s.Record(ctx, questionID, grade, now)
}

// Record applies an explicit grade. Validation errors are returned before
// anything is written.
func (s *Scheduler) Record(ctx context.Context, questionID string, grade int, now time.Time) (Item, error) {
	updated, err := s.Review(ctx, questionID, grade, now)
	if err != nil {
		return Item{}, err
	}
	if err := s.Save(ctx, updated); err != nil {
		return Item{}, err
	}
	return updated, nil
}

// Review loads (or creates) the item for questionID and returns it graded,
// without saving. Callers that must order the write against other stores
// pair it with Save.
func (s *Scheduler) Review(ctx context.Context, questionID string, grade int, now time.Time) (Item, error) {
	if questionID == "" {
		return Item{}, ErrEmptyQuestionID
	}

	rec, err := s.repo.SpacedRepItem(ctx, questionID)
	if err != nil {
		return Item{}, fmt.Errorf("load item %s: %w", questionID, err)
	}

	var item Item
	if rec != nil {
		item = FromRecord(*rec)
	} else if item, err = NewItem(questionID, now); err != nil {
		return Item{}, err
	}
	return Update(item, grade, now)
}

// Save persists a reviewed item.
func (s *Scheduler) Save(ctx context.Context, item Item) error {
	if err := s.repo.SaveSpacedRepItem(ctx, item.Record()); err != nil {
		return fmt.Errorf("save item %s: %w", item.QuestionID, err)
	}
	return nil
}

// Items returns every stored item.
func (s *Scheduler) Items(ctx context.Context) ([]Item, error) {
	recs, err := s.repo.SpacedRepItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	items := make([]Item, len(recs))
	for i, rec := range recs {
		items[i] = FromRecord(rec)
	}
	return items, nil
}

// Due returns stored items due at now, most overdue first.
func (s *Scheduler) Due(ctx context.Context, now time.Time) ([]Item, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return nil, err
	}
	due := DueItems(items, now)
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].NextReviewDate.Before(due[j].NextReviewDate)
	})
	return due, nil
}

// Stats summarizes the stored schedule.
type Stats struct {
	Total        int
	ByStatus     map[Status]int
	MeanEF       float64
	NextReviewAt time.Time // earliest future review; zero if none
}

// Stats computes schedule statistics at now.
func (s *Scheduler) Stats(ctx context.Context, now time.Time) (Stats, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{Total: len(items), ByStatus: make(map[Status]int)}
	var efSum float64
	for _, it := range items {
		st.ByStatus[it.Status(now)]++
		efSum += it.EasinessFactor
		if !it.IsDue(now) && (st.NextReviewAt.IsZero() || it.NextReviewDate.Before(st.NextReviewAt)) {
			st.NextReviewAt = it.NextReviewDate
		}
	}
	if len(items) > 0 {
		st.MeanEF = efSum / float64(len(items))
	}
	return st, nil
}
