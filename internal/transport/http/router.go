package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"trivia-wager/internal/app/player"
	"trivia-wager/internal/config"
	"trivia-wager/internal/ledger"
	"trivia-wager/internal/mcpserver"
	"trivia-wager/internal/quiz"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

func NewRouter(quizSvc *quiz.Service, st ledger.Store, cfg config.ServerConfig) *chi.Mux {
	playerSvc := player.NewService(st)

	quizHandlers := NewQuizHandlers(quizSvc)
	playerHandlers := NewPlayerHandlers(playerSvc)
	adminHandlers := NewAdminHandlers(st)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())

	if cfg.MCPEnabled {
		mcpSrv := mcpserver.New(quizSvc, playerSvc)
		r.With(APILogMiddleware()).MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Allow", "POST, GET, DELETE, OPTIONS")
			w.WriteHeader(http.StatusNoContent)
		})
		r.With(APILogMiddleware()).Method(http.MethodPost, "/mcp", mcpSrv.Handler())
		r.With(APILogMiddleware()).Method(http.MethodGet, "/mcp", mcpSrv.Handler())
		r.With(APILogMiddleware()).Method(http.MethodDelete, "/mcp", mcpSrv.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Get("/public/leaderboard", playerHandlers.Leaderboard())
		r.Get("/quiz/categories", quizHandlers.Categories())

		r.Group(func(r chi.Router) {
			r.Use(UserIdentityMiddleware())
			r.Get("/me/statistics", playerHandlers.Statistics())
			r.Route("/quiz/sessions", func(r chi.Router) {
				r.Post("/", quizHandlers.OpenSession())
				r.Get("/{session_id}", quizHandlers.SessionStatus())
				r.Delete("/{session_id}", quizHandlers.CloseSession())
				r.Post("/{session_id}/wager", quizHandlers.SubmitWager())
				r.Get("/{session_id}/question", quizHandlers.GetQuestion())
				r.Post("/{session_id}/answer", quizHandlers.SubmitAnswer())
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
			r.Route("/debug", func(r chi.Router) {
				r.Use(BodyCaptureMiddleware(4096))
				r.Get("/vars", expvar.Handler().ServeHTTP)
			})
		})
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 16)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
