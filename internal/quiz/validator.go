package quiz

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"trivia-wager/internal/ledger"
)

// WagerValidator gates stakes against the current balance. It never writes.
type WagerValidator struct {
	ledger               ledger.Store
	allowNegativeBalance bool
	maxWager             int64
}

func NewWagerValidator(st ledger.Store, allowNegativeBalance bool, maxWager int64) *WagerValidator {
	return &WagerValidator{ledger: st, allowNegativeBalance: allowNegativeBalance, maxWager: maxWager}
}

// Validate returns a rejection as a Decision. The error is reserved for ledger
// read failures.
func (v *WagerValidator) Validate(ctx context.Context, userID string, amount int64) (Decision, error) {
	if amount <= 0 || (v.maxWager > 0 && amount > v.maxWager) {
		return Decision{Reason: ErrInvalidWagerAmount.Error()}, nil
	}
	if v.allowNegativeBalance {
		return Decision{Approved: true}, nil
	}
	l, err := v.ledger.Read(ctx, userID)
	if err != nil {
		return Decision{}, ledger.Unavailable(err)
	}
	if amount > l.Balance {
		return Decision{Reason: ErrInsufficientBalance.Error()}, nil
	}
	return Decision{Approved: true}, nil
}

// ParseAmount converts transport input (a JSON number or string) to a wager.
// Anything that is not a whole number fails with ErrInvalidWagerAmount.
func ParseAmount(raw json.RawMessage) (int64, error) {
	s := strings.TrimSpace(string(raw))
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidWagerAmount
	}
	return n, nil
}
