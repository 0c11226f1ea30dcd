// Package sqlite provides a SQLite-backed ledger store for single-node
// deployments.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"trivia-wager/internal/ledger"
	"trivia-wager/internal/store/sqlite/migrations"

	_ "modernc.org/sqlite"
)

const defaultOpeningBalance = 1000

type Option func(*Store)

func WithOpeningBalance(balance int64) Option {
	return func(s *Store) { s.openingBalance = balance }
}

// Store persists ledgers in a SQLite file.
type Store struct {
	sqlDB          *sql.DB
	openingBalance int64
	now            func() time.Time
}

var (
	_ ledger.Store  = (*Store)(nil)
	_ ledger.Ranker = (*Store)(nil)
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the database at path and applies embedded migrations.
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer connection serializes commits the way row locks do in Postgres.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	s := &Store{sqlDB: sqlDB, openingBalance: defaultOpeningBalance, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

func applyMigrations(sqlDB *sql.DB, migrationFS fs.FS) error {
	if _, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}
	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		var n int
		if err := sqlDB.QueryRow(`SELECT COUNT(1) FROM schema_migrations WHERE name = ?`, name).Scan(&n); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if n > 0 {
			continue
		}
		content, err := fs.ReadFile(migrationFS, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		tx, err := sqlDB.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`, name, toMillis(time.Now())); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}
	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanLedger(row *sql.Row, userID string) (ledger.Ledger, error) {
	l := ledger.Ledger{UserID: userID}
	var updatedAt int64
	if err := row.Scan(&l.Balance, &l.GamesPlayed, &l.CorrectAnswers, &l.IncorrectAnswers, &updatedAt); err != nil {
		return ledger.Ledger{}, err
	}
	l.UpdatedAt = fromMillis(updatedAt)
	return l, nil
}

func readLedger(ctx context.Context, q queryRower, userID string) (ledger.Ledger, error) {
	return scanLedger(q.QueryRowContext(ctx,
		`SELECT balance, games_played, correct_answers, incorrect_answers, updated_at FROM ledgers WHERE user_id = ?`,
		userID,
	), userID)
}

// Read returns the user's ledger, creating it with the opening balance on
// first access.
func (s *Store) Read(ctx context.Context, userID string) (ledger.Ledger, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Ledger{}, err
	}
	if _, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO ledgers (user_id, balance, updated_at) VALUES (?, ?, ?) ON CONFLICT(user_id) DO NOTHING`,
		userID, s.openingBalance, toMillis(s.now()),
	); err != nil {
		return ledger.Ledger{}, fmt.Errorf("ensure ledger: %w", err)
	}
	l, err := readLedger(ctx, s.sqlDB, userID)
	if err != nil {
		return ledger.Ledger{}, fmt.Errorf("read ledger: %w", err)
	}
	return l, nil
}

// Commit applies d in one transaction. A Ref that was already committed
// returns the snapshot recorded with it.
func (s *Store) Commit(ctx context.Context, userID string, d ledger.Delta) (ledger.Ledger, error) {
	if err := d.Validate(); err != nil {
		return ledger.Ledger{}, err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return ledger.Ledger{}, fmt.Errorf("begin commit: %w", err)
	}
	defer tx.Rollback()

	now := toMillis(s.now())
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ledgers (user_id, balance, updated_at) VALUES (?, ?, ?) ON CONFLICT(user_id) DO NOTHING`,
		userID, s.openingBalance, now,
	); err != nil {
		return ledger.Ledger{}, fmt.Errorf("ensure ledger: %w", err)
	}
	prior, err := scanLedger(tx.QueryRowContext(ctx,
		`SELECT balance, games_played, correct_answers, incorrect_answers, committed_at FROM ledger_commits WHERE user_id = ? AND ref = ?`,
		userID, d.Ref,
	), userID)
	switch {
	case err == nil:
		return prior, nil
	case !errors.Is(err, sql.ErrNoRows):
		return ledger.Ledger{}, fmt.Errorf("lookup commit: %w", err)
	}

	cur, err := readLedger(ctx, tx, userID)
	if err != nil {
		return ledger.Ledger{}, fmt.Errorf("read ledger: %w", err)
	}
	next := cur.Apply(d)
	next.UpdatedAt = fromMillis(now)
	if _, err := tx.ExecContext(ctx,
		`UPDATE ledgers SET balance = ?, games_played = ?, correct_answers = ?, incorrect_answers = ?, updated_at = ? WHERE user_id = ?`,
		next.Balance, next.GamesPlayed, next.CorrectAnswers, next.IncorrectAnswers, now, userID,
	); err != nil {
		return ledger.Ledger{}, fmt.Errorf("update ledger: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ledger_commits (user_id, ref, balance_delta, balance, games_played, correct_answers, incorrect_answers, committed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, d.Ref, d.BalanceDelta, next.Balance, next.GamesPlayed, next.CorrectAnswers, next.IncorrectAnswers, now,
	); err != nil {
		return ledger.Ledger{}, fmt.Errorf("record commit: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return ledger.Ledger{}, fmt.Errorf("commit ledger: %w", err)
	}
	return next, nil
}

func (s *Store) Top(ctx context.Context, limit int) ([]ledger.Standing, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT user_id, balance, games_played, correct_answers, incorrect_answers, updated_at
		 FROM ledgers ORDER BY balance DESC, user_id ASC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list ledgers: %w", err)
	}
	defer rows.Close()

	out := make([]ledger.Standing, 0, limit)
	for rows.Next() {
		var l ledger.Ledger
		var updatedAt int64
		if err := rows.Scan(&l.UserID, &l.Balance, &l.GamesPlayed, &l.CorrectAnswers, &l.IncorrectAnswers, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger: %w", err)
		}
		l.UpdatedAt = fromMillis(updatedAt)
		out = append(out, ledger.Standing{Rank: len(out) + 1, Ledger: l})
	}
	return out, rows.Err()
}
