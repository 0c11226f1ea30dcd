package httptransport

import (
	"net/http"

	"trivia-wager/internal/app/player"
)

type PlayerHandlers struct {
	players *player.Service
}

func NewPlayerHandlers(svc *player.Service) *PlayerHandlers {
	return &PlayerHandlers{players: svc}
}

func (h *PlayerHandlers) Statistics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserIDFromContext(r.Context())
		resp, err := h.players.Statistics(r.Context(), userID)
		if err != nil {
			status, code := MapError(err)
			WriteHTTPError(w, status, code)
			return
		}
		writeJSON(w, resp)
	}
}

func (h *PlayerHandlers) Leaderboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.players.Leaderboard(r.Context(), ParseLimit(r))
		if err != nil {
			status, code := MapError(err)
			WriteHTTPError(w, status, code)
			return
		}
		writeJSON(w, resp)
	}
}
