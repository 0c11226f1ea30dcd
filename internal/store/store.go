package store

import (
	"context"
	_ "embed"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultOpeningBalance = 1000

var ErrNotFound = errors.New("not found")

//go:embed schema.sql
var schemaSQL string

type Option func(*Store)

// WithOpeningBalance sets the balance a user's ledger row is created with.
func WithOpeningBalance(balance int64) Option {
	return func(s *Store) { s.openingBalance = balance }
}

// Store is the Postgres ledger backend.
type Store struct {
	Pool           *pgxpool.Pool
	openingBalance int64
	now            func() time.Time
}

func New(dsn string, opts ...Option) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	s := &Store{Pool: pool, openingBalance: defaultOpeningBalance, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Pool.Ping(ctx)
}

// EnsureSchema creates the ledger tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, schemaSQL)
	return err
}
