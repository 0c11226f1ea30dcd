// Package questions supplies trivia questions by category.
package questions

import (
	"context"
	"errors"
)

var (
	ErrCategoryNotFound     = errors.New("category_not_found")
	ErrNoQuestionsAvailable = errors.New("no_questions_available")
)

// Question carries the answer key. Only Prompt and Choices may leave the server
// before grading.
type Question struct {
	Category  string   `json:"category"`
	Prompt    string   `json:"prompt"`
	Choices   []string `json:"choices"`
	AnswerKey string   `json:"-"`
}

// HasChoice reports whether choice is one of q's offered choices.
func (q Question) HasChoice(choice string) bool {
	for _, c := range q.Choices {
		if c == choice {
			return true
		}
	}
	return false
}

type Provider interface {
	FetchQuestion(ctx context.Context, category string) (Question, error)
	Categories(ctx context.Context) ([]string, error)
}
