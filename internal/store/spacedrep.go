package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var spacedRepColumns = []string{
	"question_id", "easiness_factor", "interval_days", "repetitions", "next_review_at", "last_review_at",
}

func (s *Store) SpacedRepItem(ctx context.Context, questionID string) (*SpacedRepRecord, error) {
	query, args := s.sb().Select(spacedRepColumns...).
		From(s.sb().Table("spaced_rep")).
		Where(entsql.EQ("question_id", questionID)).
		Query()

	rec, err := scanSpacedRep(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query spaced rep item: %w", err)
	}
	return rec, nil
}

func (s *Store) SaveSpacedRepItem(ctx context.Context, rec SpacedRepRecord) error {
	var last any
	if rec.LastReviewDate != nil {
		last = toMillis(*rec.LastReviewDate)
	}
	insert := s.sb().Insert("spaced_rep").
		Columns(spacedRepColumns...).
		Values(rec.QuestionID, rec.EasinessFactor, rec.Interval, rec.Repetitions, toMillis(rec.NextReviewDate), last).
		OnConflict(entsql.ConflictColumns("question_id"), entsql.ResolveWithNewValues())
	if err := s.exec(ctx, s.db, insert); err != nil {
		return fmt.Errorf("save spaced rep item: %w", err)
	}
	return nil
}

func (s *Store) SpacedRepItems(ctx context.Context) ([]SpacedRepRecord, error) {
	query, args := s.sb().Select(spacedRepColumns...).
		From(s.sb().Table("spaced_rep")).
		OrderBy("question_id").
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query spaced rep items: %w", err)
	}
	defer rows.Close()

	var out []SpacedRepRecord
	for rows.Next() {
		rec, err := scanSpacedRep(rows)
		if err != nil {
			return nil, fmt.Errorf("scan spaced rep item: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (s *Store) ClearSpacedRep(ctx context.Context) error {
	if err := s.exec(ctx, s.db, s.sb().Delete("spaced_rep")); err != nil {
		return fmt.Errorf("clear spaced rep: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSpacedRep(row scanner) (*SpacedRepRecord, error) {
	var (
		rec  SpacedRepRecord
		next int64
		last sql.NullInt64
	)
	if err := row.Scan(&rec.QuestionID, &rec.EasinessFactor, &rec.Interval, &rec.Repetitions, &next, &last); err != nil {
		return nil, err
	}
	rec.NextReviewDate = fromMillis(next)
	if last.Valid {
		t := fromMillis(last.Int64)
		rec.LastReviewDate = &t
	}
	return &rec, nil
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
