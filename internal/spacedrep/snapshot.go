package spacedrep

import "github.com/abhisek/quizquest/internal/store"

// FromRecord converts a persisted record into an Item.
func FromRecord(rec store.SpacedRepRecord) Item {
	return Item{
		QuestionID:     rec.QuestionID,
		EasinessFactor: rec.EasinessFactor,
		Interval:       rec.Interval,
		Repetitions:    rec.Repetitions,
		NextReviewDate: rec.NextReviewDate,
		LastReviewDate: rec.LastReviewDate,
	}
}

// Record converts the item into its persisted form.
func (it Item) Record() store.SpacedRepRecord {
	return store.SpacedRepRecord{
		QuestionID:     it.QuestionID,
		EasinessFactor: it.EasinessFactor,
		Interval:       it.Interval,
		Repetitions:    it.Repetitions,
		NextReviewDate: it.NextReviewDate,
		LastReviewDate: it.LastReviewDate,
	}
}
