package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

func (s *Store) MistakeLog(ctx context.Context) (map[string]MistakeEntry, error) {
	query, args := s.sb().Select("question_id", "wrong_count", "last_wrong_answer", "wrong_at").
		From(s.sb().Table("mistakes")).
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query mistake log: %w", err)
	}
	defer rows.Close()

	log := make(map[string]MistakeEntry)
	for rows.Next() {
		var (
			id    string
			entry MistakeEntry
			at    int64
		)
		if err := rows.Scan(&id, &entry.Count, &entry.LastWrongAnswer, &at); err != nil {
			return nil, fmt.Errorf("scan mistake: %w", err)
		}
		entry.Timestamp = fromMillis(at)
		log[id] = entry
	}
	return log, rows.Err()
}

func (s *Store) LogMistake(ctx context.Context, id, answer string, at time.Time) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		query, args := s.sb().Select("wrong_count").
			From(s.sb().Table("mistakes")).
			Where(entsql.EQ("question_id", id)).
			Query()

		var count int
		err := tx.QueryRowContext(ctx, query, args...).Scan(&count)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("read mistake count: %w", err)
		}

		insert := s.sb().Insert("mistakes").
			Columns("question_id", "wrong_count", "last_wrong_answer", "wrong_at").
			Values(id, count+1, answer, toMillis(at)).
			OnConflict(entsql.ConflictColumns("question_id"), entsql.ResolveWithNewValues())
		if err := s.exec(ctx, tx, insert); err != nil {
			return fmt.Errorf("log mistake: %w", err)
		}
		return nil
	})
}

func (s *Store) RemoveMistake(ctx context.Context, id string) error {
	del := s.sb().Delete("mistakes").Where(entsql.EQ("question_id", id))
	if err := s.exec(ctx, s.db, del); err != nil {
		return fmt.Errorf("remove mistake: %w", err)
	}
	return nil
}

func (s *Store) ClearMistakes(ctx context.Context) error {
	if err := s.exec(ctx, s.db, s.sb().Delete("mistakes")); err != nil {
		return fmt.Errorf("clear mistakes: %w", err)
	}
	return nil
}
