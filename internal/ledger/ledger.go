package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnavailable  = errors.New("ledger_unavailable")
	ErrInvalidDelta = errors.New("invalid_ledger_delta")
)

// Ledger is the per-user balance and outcome counters.
type Ledger struct {
	UserID           string    `json:"user_id"`
	Balance          int64     `json:"balance"`
	GamesPlayed      int64     `json:"games_played"`
	CorrectAnswers   int64     `json:"correct_answers"`
	IncorrectAnswers int64     `json:"incorrect_answers"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Delta is one atomic ledger mutation. Ref is the idempotency key: a store
// applies a given Ref at most once per user.
type Delta struct {
	Ref              string
	BalanceDelta     int64
	GamesPlayed      int64
	CorrectAnswers   int64
	IncorrectAnswers int64
}

// OutcomeDelta builds the delta for one graded round.
func OutcomeDelta(ref string, correct bool, wagerDelta int64) Delta {
	d := Delta{Ref: ref, BalanceDelta: wagerDelta, GamesPlayed: 1}
	if correct {
		d.CorrectAnswers = 1
	} else {
		d.IncorrectAnswers = 1
	}
	return d
}

func (d Delta) Validate() error {
	if d.Ref == "" {
		return fmt.Errorf("%w: ref is required", ErrInvalidDelta)
	}
	if d.GamesPlayed < 0 || d.CorrectAnswers < 0 || d.IncorrectAnswers < 0 {
		return fmt.Errorf("%w: counters must not decrease", ErrInvalidDelta)
	}
	if d.CorrectAnswers+d.IncorrectAnswers != d.GamesPlayed {
		return fmt.Errorf("%w: answer counters must sum to games played", ErrInvalidDelta)
	}
	if d.BalanceDelta != 0 && d.GamesPlayed == 0 {
		return fmt.Errorf("%w: balance change without a played game", ErrInvalidDelta)
	}
	return nil
}

// Apply returns l with d applied. It does not check idempotency.
func (l Ledger) Apply(d Delta) Ledger {
	l.Balance += d.BalanceDelta
	l.GamesPlayed += d.GamesPlayed
	l.CorrectAnswers += d.CorrectAnswers
	l.IncorrectAnswers += d.IncorrectAnswers
	return l
}

// Store is the ledger persistence contract. Commit must be linearizable per
// user and must return the originally committed snapshot when a Ref repeats.
type Store interface {
	Read(ctx context.Context, userID string) (Ledger, error)
	Commit(ctx context.Context, userID string, d Delta) (Ledger, error)
}

// Standing is one leaderboard row.
type Standing struct {
	Rank int `json:"rank"`
	Ledger
}

// Ranker is implemented by stores that can list players by balance.
type Ranker interface {
	Top(ctx context.Context, limit int) ([]Standing, error)
}

// Unavailable wraps a backend failure so callers can match ErrUnavailable.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrInvalidDelta) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
