package quiz

import (
	"errors"

	"trivia-wager/internal/ledger"
	"trivia-wager/internal/questions"
)

var (
	ErrInvalidSessionState = errors.New("invalid_session_state")
	ErrSessionNotFound     = errors.New("session_not_found")
	ErrInvalidWagerAmount  = errors.New("invalid_wager_amount")
	ErrInsufficientBalance = errors.New("insufficient_balance")
	ErrInvalidChoice       = errors.New("invalid_choice")
	ErrInvalidRequest      = errors.New("invalid_request")
)

// Code returns the reason code a presentation layer renders for err.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidSessionState):
		return ErrInvalidSessionState.Error()
	case errors.Is(err, ErrSessionNotFound):
		return ErrSessionNotFound.Error()
	case errors.Is(err, ErrInvalidWagerAmount):
		return ErrInvalidWagerAmount.Error()
	case errors.Is(err, ErrInsufficientBalance):
		return ErrInsufficientBalance.Error()
	case errors.Is(err, ErrInvalidChoice):
		return ErrInvalidChoice.Error()
	case errors.Is(err, ErrInvalidRequest):
		return ErrInvalidRequest.Error()
	case errors.Is(err, questions.ErrCategoryNotFound):
		return questions.ErrCategoryNotFound.Error()
	case errors.Is(err, questions.ErrNoQuestionsAvailable):
		return questions.ErrNoQuestionsAvailable.Error()
	case errors.Is(err, ledger.ErrUnavailable), errors.Is(err, ledger.ErrInvalidDelta):
		return ledger.ErrUnavailable.Error()
	default:
		return "internal_error"
	}
}
