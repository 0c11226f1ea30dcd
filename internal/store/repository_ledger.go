package store

import (
	"context"
	"errors"

	"trivia-wager/internal/ledger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	ensureLedgerSQL = `INSERT INTO ledgers (user_id, balance, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO NOTHING`
	selectLedgerSQL = `SELECT balance, games_played, correct_answers, incorrect_answers, updated_at
FROM ledgers WHERE user_id = $1`
	selectLedgerForUpdateSQL = selectLedgerSQL + ` FOR UPDATE`
	selectCommitSQL          = `SELECT balance, games_played, correct_answers, incorrect_answers, committed_at
FROM ledger_commits WHERE user_id = $1 AND ref = $2`
	updateLedgerSQL = `UPDATE ledgers
SET balance = $2, games_played = $3, correct_answers = $4, incorrect_answers = $5, updated_at = $6
WHERE user_id = $1`
	insertCommitSQL = `INSERT INTO ledger_commits
(user_id, ref, balance_delta, balance, games_played, correct_answers, incorrect_answers, committed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	topLedgersSQL = `SELECT user_id, balance, games_played, correct_answers, incorrect_answers, updated_at
FROM ledgers ORDER BY balance DESC, user_id ASC LIMIT $1`
)

var (
	_ ledger.Store  = (*Store)(nil)
	_ ledger.Ranker = (*Store)(nil)
)

// Read returns the user's ledger, creating it with the opening balance on
// first access.
func (s *Store) Read(ctx context.Context, userID string) (ledger.Ledger, error) {
	if _, err := s.Pool.Exec(ctx, ensureLedgerSQL, userID, s.openingBalance, timestamptzParam(s.now())); err != nil {
		return ledger.Ledger{}, err
	}
	l, err := scanLedger(s.Pool.QueryRow(ctx, selectLedgerSQL, userID), userID)
	if err != nil {
		return ledger.Ledger{}, mapNotFound(err)
	}
	return l, nil
}

// Commit applies d in one transaction with the ledger row locked. A Ref that
// was already committed returns the snapshot recorded with it.
func (s *Store) Commit(ctx context.Context, userID string, d ledger.Delta) (ledger.Ledger, error) {
	if err := d.Validate(); err != nil {
		return ledger.Ledger{}, err
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return ledger.Ledger{}, err
	}
	defer tx.Rollback(ctx)

	now := s.now()
	if _, err := tx.Exec(ctx, ensureLedgerSQL, userID, s.openingBalance, timestamptzParam(now)); err != nil {
		return ledger.Ledger{}, err
	}
	cur, err := scanLedger(tx.QueryRow(ctx, selectLedgerForUpdateSQL, userID), userID)
	if err != nil {
		return ledger.Ledger{}, mapNotFound(err)
	}
	prior, err := scanLedger(tx.QueryRow(ctx, selectCommitSQL, userID, d.Ref), userID)
	switch {
	case err == nil:
		return prior, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return ledger.Ledger{}, err
	}

	next := cur.Apply(d)
	next.UpdatedAt = now
	if _, err := tx.Exec(ctx, updateLedgerSQL,
		userID, next.Balance, next.GamesPlayed, next.CorrectAnswers, next.IncorrectAnswers, timestamptzParam(now),
	); err != nil {
		return ledger.Ledger{}, err
	}
	if _, err := tx.Exec(ctx, insertCommitSQL,
		userID, d.Ref, d.BalanceDelta, next.Balance, next.GamesPlayed, next.CorrectAnswers, next.IncorrectAnswers, timestamptzParam(now),
	); err != nil {
		return ledger.Ledger{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return ledger.Ledger{}, err
	}
	return next, nil
}

func (s *Store) Top(ctx context.Context, limit int) ([]ledger.Standing, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, topLedgersSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ledger.Standing, 0, limit)
	for rows.Next() {
		var userID string
		var l ledger.Ledger
		var updatedAt pgtype.Timestamptz
		if err := rows.Scan(&userID, &l.Balance, &l.GamesPlayed, &l.CorrectAnswers, &l.IncorrectAnswers, &updatedAt); err != nil {
			return nil, err
		}
		l.UserID = userID
		l.UpdatedAt = timeVal(updatedAt)
		out = append(out, ledger.Standing{Rank: len(out) + 1, Ledger: l})
	}
	return out, rows.Err()
}
