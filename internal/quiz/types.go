package quiz

import (
	"time"

	"trivia-wager/internal/questions"
)

type Status string

const (
	StatusIdle             Status = "idle"
	StatusCategorySelected Status = "category_selected"
	StatusWagerPending     Status = "wager_pending"
	StatusWagerApproved    Status = "wager_approved"
	StatusQuestionIssued   Status = "question_issued"
	StatusGraded           Status = "graded"
	StatusAbandoned        Status = "abandoned"
)

func (s Status) Terminal() bool {
	return s == StatusGraded || s == StatusAbandoned
}

// Session is one in-progress round for one user.
type Session struct {
	ID             string
	UserID         string
	Category       string
	Wager          int64
	Question       *questions.Question
	Status         Status
	CreatedAt      time.Time
	LastActivityAt time.Time
}

type OpenResult struct {
	SessionID string `json:"session_id"`
	Category  string `json:"category"`
	Status    Status `json:"status"`
}

// Decision is the outcome of a wager check. Reason is set when not approved.
type Decision struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason,omitempty"`
}

// PublicQuestion is the client-facing view of a question; it never carries the
// answer key.
type PublicQuestion struct {
	SessionID string   `json:"session_id"`
	Category  string   `json:"category"`
	Prompt    string   `json:"prompt"`
	Choices   []string `json:"choices"`
	Wager     int64    `json:"wager"`
}

// Answer selects a choice by text or by zero-based index.
type Answer struct {
	Choice string
	Index  *int
}

// Grade is the transient result of comparing an answer to the key.
type Grade struct {
	IsCorrect  bool
	WagerDelta int64
}

type CommitResult struct {
	SessionID           string `json:"session_id"`
	IsCorrect           bool   `json:"is_correct"`
	CorrectChoice       string `json:"correct_choice"`
	NewBalance          int64  `json:"new_balance"`
	NewGamesPlayed      int64  `json:"new_games_played"`
	NewCorrectAnswers   int64  `json:"new_correct_answers"`
	NewIncorrectAnswers int64  `json:"new_incorrect_answers"`
}
