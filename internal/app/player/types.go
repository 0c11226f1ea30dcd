package player

import "trivia-wager/internal/ledger"

type StatisticsResponse struct {
	UserID           string `json:"user_id"`
	Balance          int64  `json:"balance"`
	GamesPlayed      int64  `json:"games_played"`
	CorrectAnswers   int64  `json:"correct_answers"`
	IncorrectAnswers int64  `json:"incorrect_answers"`
	// Accuracy is correct/played in [0,1]; zero before the first round.
	Accuracy float64 `json:"accuracy"`
}

type LeaderboardResponse struct {
	Items []ledger.Standing `json:"items"`
	Limit int               `json:"limit"`
}
