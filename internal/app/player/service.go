package player

import (
	"context"
	"strings"

	"trivia-wager/internal/ledger"
)

const (
	leaderboardDefaultRows = 20
	leaderboardMaxRows     = 100
)

// Service serves read-only views of player ledgers.
type Service struct {
	ledger ledger.Store
	ranker ledger.Ranker
}

// NewService uses st for rankings when it implements ledger.Ranker.
func NewService(st ledger.Store) *Service {
	s := &Service{ledger: st}
	if r, ok := st.(ledger.Ranker); ok {
		s.ranker = r
	}
	return s
}

func (s *Service) Statistics(ctx context.Context, userID string) (*StatisticsResponse, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidRequest
	}
	l, err := s.ledger.Read(ctx, userID)
	if err != nil {
		return nil, ledger.Unavailable(err)
	}
	return statistics(l), nil
}

func (s *Service) Leaderboard(ctx context.Context, limit int) (*LeaderboardResponse, error) {
	if s.ranker == nil {
		return nil, ErrLeaderboardUnavailable
	}
	limit = clampLeaderboardLimit(limit)
	rows, err := s.ranker.Top(ctx, limit)
	if err != nil {
		return nil, ledger.Unavailable(err)
	}
	return &LeaderboardResponse{Items: rows, Limit: limit}, nil
}

func statistics(l ledger.Ledger) *StatisticsResponse {
	out := &StatisticsResponse{
		UserID:           l.UserID,
		Balance:          l.Balance,
		GamesPlayed:      l.GamesPlayed,
		CorrectAnswers:   l.CorrectAnswers,
		IncorrectAnswers: l.IncorrectAnswers,
	}
	if l.GamesPlayed > 0 {
		out.Accuracy = float64(l.CorrectAnswers) / float64(l.GamesPlayed)
	}
	return out
}

func clampLeaderboardLimit(limit int) int {
	if limit <= 0 {
		return leaderboardDefaultRows
	}
	if limit > leaderboardMaxRows {
		return leaderboardMaxRows
	}
	return limit
}
