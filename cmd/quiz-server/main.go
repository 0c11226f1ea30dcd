package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"trivia-wager/internal/config"
	"trivia-wager/internal/ledger"
	"trivia-wager/internal/logging"
	"trivia-wager/internal/questions"
	"trivia-wager/internal/quiz"
	"trivia-wager/internal/store"
	"trivia-wager/internal/store/sqlite"
	httptransport "trivia-wager/internal/transport/http"

	"github.com/rs/zerolog/log"
)

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadApp()
	if err != nil {
		log.Fatal().Err(err).Msg("load config failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeLedger, err := openLedger(ctx, cfg.Server)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Server.LedgerDriver).Msg("ledger init failed")
	}
	defer closeLedger()

	var bankOpts []questions.BankOption
	if cfg.Server.ShuffleChoices {
		bankOpts = append(bankOpts, questions.WithShuffledChoices())
	}
	bank, err := questions.LoadFile(cfg.Server.QuestionsPath, bankOpts...)
	if err != nil {
		log.Fatal().Err(err).Msg("question bank init failed")
	}

	quizSvc := quiz.NewService(st, bank, quiz.Config{
		AllowNegativeBalance: cfg.Quiz.AllowNegativeBalance,
		MaxWager:             cfg.Quiz.MaxWager,
		SessionTTL:           cfg.Quiz.SessionTTL,
		ResultRetention:      cfg.Quiz.ResultRetention,
	})
	quizSvc.StartJanitor(ctx, cfg.Quiz.JanitorInterval)

	r := httptransport.NewRouter(quizSvc, st, cfg.Server)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.Server.HTTPAddr).Str("ledger", cfg.Server.LedgerDriver).Msg("http listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server stopped")
		return
	}
	log.Info().Msg("server stopped")
}

// openLedger builds the configured ledger backend and its close func.
func openLedger(ctx context.Context, cfg config.ServerConfig) (ledger.Store, func(), error) {
	switch cfg.LedgerDriver {
	case config.LedgerMemory:
		return ledger.NewMemoryStore(ledger.WithOpeningBalance(cfg.StartingBalance)), func() {}, nil
	case config.LedgerSQLite:
		st, err := sqlite.Open(cfg.SQLitePath, sqlite.WithOpeningBalance(cfg.StartingBalance))
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	case config.LedgerPostgres:
		st, err := store.New(cfg.PostgresDSN, store.WithOpeningBalance(cfg.StartingBalance))
		if err != nil {
			return nil, nil, err
		}
		if err := st.Ping(ctx); err != nil {
			st.Close()
			return nil, nil, fmt.Errorf("db ping: %w", err)
		}
		if err := st.EnsureSchema(ctx); err != nil {
			st.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return st, st.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown ledger driver %q", cfg.LedgerDriver)
	}
}
