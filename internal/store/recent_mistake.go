package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

func (s *Store) AddRecentMistakeSession(ctx context.Context, rs RecentMistakeSession) error {
	data, err := json.Marshal(rs)
	if err != nil {
		return fmt.Errorf("marshal recent mistake session: %w", err)
	}
	seqNum, err := s.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		insert := s.sb().Insert("recent_mistakes").
			Columns("id", "sequence", "created_at", "data").
			Values(rs.ID, seqNum, toMillis(rs.CreatedAt), string(data)).
			OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues())
		if err := s.exec(ctx, tx, insert); err != nil {
			return fmt.Errorf("save recent mistake session: %w", err)
		}

		// Trim to the newest MaxRecentMistakeSessions entries.
		query, args := s.sb().Select("id").
			From(s.sb().Table("recent_mistakes")).
			OrderBy(entsql.Desc("sequence")).
			Query()
		ids, err := queryStrings(ctx, tx, query, args)
		if err != nil {
			return fmt.Errorf("query recent mistake ids: %w", err)
		}
		if len(ids) <= MaxRecentMistakeSessions {
			return nil
		}
		stale := make([]any, 0, len(ids)-MaxRecentMistakeSessions)
		for _, id := range ids[MaxRecentMistakeSessions:] {
			stale = append(stale, id)
		}
		del := s.sb().Delete("recent_mistakes").Where(entsql.In("id", stale...))
		if err := s.exec(ctx, tx, del); err != nil {
			return fmt.Errorf("trim recent mistakes: %w", err)
		}
		return nil
	})
}

func (s *Store) RecentMistakeSessions(ctx context.Context) ([]RecentMistakeSession, error) {
	query, args := s.sb().Select("data").
		From(s.sb().Table("recent_mistakes")).
		OrderBy(entsql.Desc("sequence")).
		Query()

	blobs, err := queryStrings(ctx, s.db, query, args)
	if err != nil {
		return nil, fmt.Errorf("query recent mistakes: %w", err)
	}

	out := make([]RecentMistakeSession, 0, len(blobs))
	for _, b := range blobs {
		var rs RecentMistakeSession
		if err := json.Unmarshal([]byte(b), &rs); err != nil {
			return nil, fmt.Errorf("unmarshal recent mistake session: %w", err)
		}
		out = append(out, rs)
	}
	return out, nil
}

func (s *Store) ClearRecentMistakeSession(ctx context.Context, id string) error {
	del := s.sb().Delete("recent_mistakes").Where(entsql.EQ("id", id))
	if err := s.exec(ctx, s.db, del); err != nil {
		return fmt.Errorf("clear recent mistake session: %w", err)
	}
	return nil
}

func (s *Store) ClearAllRecentMistakes(ctx context.Context) error {
	if err := s.exec(ctx, s.db, s.sb().Delete("recent_mistakes")); err != nil {
		return fmt.Errorf("clear recent mistakes: %w", err)
	}
	return nil
}

// queryStrings runs a single-column query and collects the results.
func queryStrings(ctx context.Context, q querier, query string, args []any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
