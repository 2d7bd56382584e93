package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Postgres driver for the shared (signed-in) backend.
	_ "github.com/lib/pq"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Supported values for Options.Driver.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("store: unknown driver")

// Options selects and configures a storage backend.
type Options struct {
	Driver string
	DSN    string
}

// Store is the SQL-backed Repository.
type Store struct {
	db      *sql.DB
	dialect string
	seq     *sequenceCounter
}

var _ Repository = (*Store)(nil)

// Open connects to the database described by opts, applies driver pragmas
// and runs migrations.
func Open(ctx context.Context, opts Options) (*Store, error) {
	var (
		driverName  string
		dialectName string
	)
	switch opts.Driver {
	case DriverSQLite, "":
		driverName, dialectName = "sqlite", dialect.SQLite
	case DriverPostgres:
		driverName, dialectName = "postgres", dialect.Postgres
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}

	db, err := sql.Open(driverName, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dialectName == dialect.SQLite {
		// SQLite allows a single writer; keep one connection so pragmas stick.
		db.SetMaxOpenConns(1)
		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	}

	if err := migrate(ctx, db, dialectName); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	seq, err := newSequenceCounter(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, dialect: dialectName, seq: seq}, nil
}

// Select picks the backend for one session context. Guests and the memory
// driver get a Local store; signed-in learners get the SQL store.
func Select(ctx context.Context, opts Options, signedIn bool) (Repository, error) {
	if !signedIn || opts.Driver == DriverMemory {
		return NewLocal(), nil
	}
	return Open(ctx, opts)
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the ent dialect name in use.
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// sb starts a statement builder for the store's dialect.
func (s *Store) sb() *entsql.DialectBuilder {
	return entsql.Dialect(s.dialect)
}

// exec runs a built statement.
func (s *Store) exec(ctx context.Context, q querier, b entsql.Querier) error {
	query, args := b.Query()
	_, err := q.ExecContext(ctx, query, args...)
	return err
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// inTx runs fn in a transaction, rolling back on error.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. QUIZQUEST_DB environment variable
// 2. $XDG_DATA_HOME/quizquest/quizquest.db
// 3. ~/.local/share/quizquest/quizquest.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("QUIZQUEST_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "quizquest", "quizquest.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
