package store

import (
	"errors"
	"time"

	"trivia-wager/internal/ledger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func timestamptzParam(v time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: v, Valid: true}
}

func timeVal(v pgtype.Timestamptz) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return v.Time
}

func scanLedger(row pgx.Row, userID string) (ledger.Ledger, error) {
	l := ledger.Ledger{UserID: userID}
	var updatedAt pgtype.Timestamptz
	if err := row.Scan(&l.Balance, &l.GamesPlayed, &l.CorrectAnswers, &l.IncorrectAnswers, &updatedAt); err != nil {
		return ledger.Ledger{}, err
	}
	l.UpdatedAt = timeVal(updatedAt)
	return l, nil
}
