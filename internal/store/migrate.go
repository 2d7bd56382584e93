package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Timestamps are stored as unix milliseconds so the same schema serves
// SQLite and Postgres.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS banks (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		position BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS questions (
		bank_id TEXT NOT NULL REFERENCES banks(id) ON DELETE CASCADE,
		id TEXT NOT NULL,
		position INTEGER NOT NULL,
		data TEXT NOT NULL,
		PRIMARY KEY (bank_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS spaced_rep (
		question_id TEXT PRIMARY KEY,
		easiness_factor DOUBLE PRECISION NOT NULL,
		interval_days INTEGER NOT NULL,
		repetitions INTEGER NOT NULL,
		next_review_at BIGINT NOT NULL,
		last_review_at BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS mistakes (
		question_id TEXT PRIMARY KEY,
		wrong_count INTEGER NOT NULL,
		last_wrong_answer TEXT NOT NULL,
		wrong_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS quiz_session (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		data TEXT NOT NULL,
		saved_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS recent_mistakes (
		id TEXT PRIMARY KEY,
		sequence BIGINT NOT NULL,
		created_at BIGINT NOT NULL,
		data TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS session_events (
		sequence BIGINT PRIMARY KEY,
		ts BIGINT NOT NULL,
		session_id TEXT NOT NULL,
		action TEXT NOT NULL,
		mode TEXT NOT NULL,
		bank_ids TEXT NOT NULL,
		questions_served INTEGER NOT NULL DEFAULT 0,
		correct_answers INTEGER NOT NULL DEFAULT 0,
		duration_secs INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS session_events_action ON session_events (action)`,
	`CREATE TABLE IF NOT EXISTS answer_events (
		sequence BIGINT PRIMARY KEY,
		ts BIGINT NOT NULL,
		session_id TEXT NOT NULL,
		question_id TEXT NOT NULL,
		selected_answer TEXT NOT NULL,
		correct BOOLEAN NOT NULL,
		grade INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS answer_events_question ON answer_events (question_id)`,
}

// migrate creates every table if missing. The statements are idempotent,
// so it runs on each Open.
func migrate(ctx context.Context, db *sql.DB, _ string) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
