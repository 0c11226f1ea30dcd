package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"trivia-wager/internal/app/player"
	"trivia-wager/internal/quiz"
)

// apiError is the server's error envelope.
type apiError struct {
	Status int    `json:"-"`
	Code   string `json:"error"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.Code)
}

type client struct {
	baseURL string
	userID  string
	http    *http.Client
}

func newClient(baseURL, userID string) *client {
	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		userID:  userID,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("X-User-ID", c.userID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		apiErr := &apiError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *client) categories(ctx context.Context) ([]string, error) {
	var resp struct {
		Items []string `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, "/api/quiz/categories", nil, &resp)
	return resp.Items, err
}

func (c *client) openSession(ctx context.Context, category string) (quiz.OpenResult, error) {
	var out quiz.OpenResult
	err := c.do(ctx, http.MethodPost, "/api/quiz/sessions", map[string]string{"category": category}, &out)
	return out, err
}

func (c *client) wager(ctx context.Context, sessionID string, amount int64) (quiz.Decision, error) {
	var out quiz.Decision
	err := c.do(ctx, http.MethodPost, "/api/quiz/sessions/"+sessionID+"/wager", map[string]int64{"amount": amount}, &out)
	return out, err
}

func (c *client) question(ctx context.Context, sessionID string) (quiz.PublicQuestion, error) {
	var out quiz.PublicQuestion
	err := c.do(ctx, http.MethodGet, "/api/quiz/sessions/"+sessionID+"/question", nil, &out)
	return out, err
}

func (c *client) answer(ctx context.Context, sessionID string, index int) (quiz.CommitResult, error) {
	var out quiz.CommitResult
	err := c.do(ctx, http.MethodPost, "/api/quiz/sessions/"+sessionID+"/answer", map[string]int{"choice_index": index}, &out)
	return out, err
}

func (c *client) closeSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/api/quiz/sessions/"+sessionID, nil, nil)
}

func (c *client) statistics(ctx context.Context) (player.StatisticsResponse, error) {
	var out player.StatisticsResponse
	err := c.do(ctx, http.MethodGet, "/api/me/statistics", nil, &out)
	return out, err
}
