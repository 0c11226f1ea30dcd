package httptransport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"trivia-wager/internal/config"
	"trivia-wager/internal/ledger"
	"trivia-wager/internal/questions"
	"trivia-wager/internal/quiz"

	"github.com/go-chi/chi/v5"
)

func testBank() *questions.Bank {
	return questions.NewBank([]questions.Question{
		{Category: "Science", Prompt: "Symbol for gold?", Choices: []string{"Ag", "Au", "Gd"}, AnswerKey: "Au"},
		{Category: "History", Prompt: "Berlin Wall fell in?", Choices: []string{"1989", "1991"}, AnswerKey: "1989"},
	})
}

func newTestRouter(t *testing.T, st ledger.Store, cfg config.ServerConfig) *chi.Mux {
	t.Helper()
	svc := quiz.NewService(st, testBank(), quiz.Config{})
	return NewRouter(svc, st, cfg)
}

func doJSON(t *testing.T, h http.Handler, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			if err := json.NewEncoder(&buf).Encode(b); err != nil {
				t.Fatalf("encode body: %v", err)
			}
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(UserIDHeader, userID)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[map[string]string](t, w)["error"]
}

// playToQuestion opens a Science round, stakes wager and fetches the question.
func playToQuestion(t *testing.T, h http.Handler, userID string, wager int64) string {
	t.Helper()
	w := doJSON(t, h, http.MethodPost, "/api/quiz/sessions", userID, map[string]any{"category": "Science"})
	if w.Code != http.StatusCreated {
		t.Fatalf("open status=%d body=%s", w.Code, w.Body.String())
	}
	sessionID := decodeBody[quiz.OpenResult](t, w).SessionID
	w = doJSON(t, h, http.MethodPost, "/api/quiz/sessions/"+sessionID+"/wager", userID, map[string]any{"amount": wager})
	if w.Code != http.StatusOK || !decodeBody[quiz.Decision](t, w).Approved {
		t.Fatalf("wager status=%d body=%s", w.Code, w.Body.String())
	}
	w = doJSON(t, h, http.MethodGet, "/api/quiz/sessions/"+sessionID+"/question", userID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("question status=%d body=%s", w.Code, w.Body.String())
	}
	return sessionID
}
