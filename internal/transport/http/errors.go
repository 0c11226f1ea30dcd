package httptransport

import (
	"errors"
	"net/http"

	"trivia-wager/internal/app/player"
	"trivia-wager/internal/ledger"
	"trivia-wager/internal/questions"
	"trivia-wager/internal/quiz"
)

// MapError converts a domain error to an HTTP status and reason code.
func MapError(err error) (int, string) {
	switch {
	case errors.Is(err, quiz.ErrInvalidSessionState):
		return http.StatusConflict, "invalid_session_state"
	case errors.Is(err, quiz.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, quiz.ErrInvalidWagerAmount):
		return http.StatusBadRequest, "invalid_wager_amount"
	case errors.Is(err, quiz.ErrInsufficientBalance):
		return http.StatusBadRequest, "insufficient_balance"
	case errors.Is(err, quiz.ErrInvalidChoice):
		return http.StatusBadRequest, "invalid_choice"
	case errors.Is(err, quiz.ErrInvalidRequest), errors.Is(err, player.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, questions.ErrCategoryNotFound):
		return http.StatusNotFound, "category_not_found"
	case errors.Is(err, questions.ErrNoQuestionsAvailable):
		return http.StatusNotFound, "no_questions_available"
	case errors.Is(err, ledger.ErrUnavailable), errors.Is(err, ledger.ErrInvalidDelta):
		return http.StatusServiceUnavailable, "ledger_unavailable"
	case errors.Is(err, player.ErrLeaderboardUnavailable):
		return http.StatusServiceUnavailable, "leaderboard_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
