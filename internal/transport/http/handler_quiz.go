package httptransport

import (
	"encoding/json"
	"net/http"

	"trivia-wager/internal/quiz"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type QuizHandlers struct {
	quiz *quiz.Service
}

func NewQuizHandlers(svc *quiz.Service) *QuizHandlers {
	return &QuizHandlers{quiz: svc}
}

type openSessionRequest struct {
	Category string `json:"category"`
}

type wagerRequest struct {
	Amount json.RawMessage `json:"amount"`
}

type answerRequest struct {
	Choice      *string `json:"choice"`
	ChoiceIndex *int    `json:"choice_index"`
}

type sessionStatusResponse struct {
	SessionID string      `json:"session_id"`
	Status    quiz.Status `json:"status"`
}

func (h *QuizHandlers) Categories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.quiz.Categories(r.Context())
		if err != nil {
			status, code := MapError(err)
			WriteHTTPError(w, status, code)
			return
		}
		writeJSON(w, map[string]any{"items": items})
	}
}

func (h *QuizHandlers) OpenSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricSessionOpenTotal.Add(1)
		userID, _ := UserIDFromContext(r.Context())
		var req openSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			metricSessionOpenErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		res, err := h.quiz.OpenCategory(r.Context(), userID, req.Category)
		if err != nil {
			metricSessionOpenErrors.Add(1)
			status, code := MapError(err)
			WriteHTTPError(w, status, code)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(res)
	}
}

func (h *QuizHandlers) SessionStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserIDFromContext(r.Context())
		sessionID := chi.URLParam(r, "session_id")
		st, err := h.quiz.SessionStatus(r.Context(), userID, sessionID)
		if err != nil {
			status, code := MapError(err)
			WriteHTTPError(w, status, code)
			return
		}
		writeJSON(w, sessionStatusResponse{SessionID: sessionID, Status: st})
	}
}

func (h *QuizHandlers) CloseSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserIDFromContext(r.Context())
		if err := h.quiz.CloseSession(r.Context(), userID, chi.URLParam(r, "session_id")); err != nil {
			status, code := MapError(err)
			WriteHTTPError(w, status, code)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	}
}

// SubmitWager answers with a decision body for every well-formed request on a
// session awaiting a wager. An unparseable amount is an invalid_wager_amount
// rejection.
func (h *QuizHandlers) SubmitWager() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricWagerSubmitTotal.Add(1)
		userID, _ := UserIDFromContext(r.Context())
		sessionID := chi.URLParam(r, "session_id")
		var req wagerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			metricWagerSubmitErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		amount, err := quiz.ParseAmount(req.Amount)
		if err != nil {
			// Judged like a zero stake so state errors still take precedence.
			amount = 0
		}
		decision, err := h.quiz.SubmitWager(r.Context(), userID, sessionID, amount)
		if err != nil {
			metricWagerSubmitErrors.Add(1)
			status, code := MapError(err)
			WriteHTTPError(w, status, code)
			return
		}
		writeJSON(w, decision)
	}
}

func (h *QuizHandlers) GetQuestion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserIDFromContext(r.Context())
		q, err := h.quiz.GetQuestion(r.Context(), userID, chi.URLParam(r, "session_id"))
		if err != nil {
			status, code := MapError(err)
			WriteHTTPError(w, status, code)
			return
		}
		writeJSON(w, q)
	}
}

func (h *QuizHandlers) SubmitAnswer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricAnswerSubmitTotal.Add(1)
		userID, _ := UserIDFromContext(r.Context())
		sessionID := chi.URLParam(r, "session_id")
		var req answerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			metricAnswerSubmitErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if req.Choice == nil && req.ChoiceIndex == nil {
			metricAnswerSubmitErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		ans := quiz.Answer{Index: req.ChoiceIndex}
		if req.Choice != nil {
			ans.Choice = *req.Choice
		}
		res, err := h.quiz.SubmitAnswer(r.Context(), userID, sessionID, ans)
		if err != nil {
			metricAnswerSubmitErrors.Add(1)
			status, code := MapError(err)
			if status == http.StatusServiceUnavailable {
				w.Header().Set("Retry-After", "1")
			}
			if status >= http.StatusInternalServerError {
				log.Error().Err(err).Str("user_id", userID).Str("session_id", sessionID).Msg("answer submit failed")
			}
			WriteHTTPError(w, status, code)
			return
		}
		writeJSON(w, res)
	}
}
