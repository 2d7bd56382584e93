package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// The saved session is a single-row table holding the progress as JSON.
const quizSessionRow = 1

func (s *Store) SaveQuizSession(ctx context.Context, p SavedProgress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal quiz session: %w", err)
	}

	insert := s.sb().Insert("quiz_session").
		Columns("id", "data", "saved_at").
		Values(quizSessionRow, string(data), toMillis(p.SavedAt)).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues())
	if err := s.exec(ctx, s.db, insert); err != nil {
		return fmt.Errorf("save quiz session: %w", err)
	}
	return nil
}

func (s *Store) QuizSession(ctx context.Context) (*SavedProgress, error) {
	query, args := s.sb().Select("data").
		From(s.sb().Table("quiz_session")).
		Where(entsql.EQ("id", quizSessionRow)).
		Query()

	var data string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query quiz session: %w", err)
	}

	var p SavedProgress
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("unmarshal quiz session: %w", err)
	}
	return &p, nil
}

func (s *Store) ClearQuizSession(ctx context.Context) error {
	if err := s.exec(ctx, s.db, s.sb().Delete("quiz_session")); err != nil {
		return fmt.Errorf("clear quiz session: %w", err)
	}
	return nil
}
