package player

import "errors"

var (
	ErrInvalidRequest         = errors.New("invalid_request")
	ErrLeaderboardUnavailable = errors.New("leaderboard_unavailable")
)
