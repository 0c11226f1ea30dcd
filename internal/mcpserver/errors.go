package mcpserver

import (
	"errors"

	"trivia-wager/internal/app/player"
	"trivia-wager/internal/ledger"
	"trivia-wager/internal/quiz"

	"github.com/mark3labs/mcp-go/mcp"
)

// toolFailure is the structured payload of a failed tool call.
type toolFailure struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

func toolResult(data any) *mcp.CallToolResult {
	return mcp.NewToolResultStructuredOnly(data)
}

func toolError(code, message string) *mcp.CallToolResult {
	return failure(toolFailure{Code: code, Message: message})
}

func failure(f toolFailure) *mcp.CallToolResult {
	result := mcp.NewToolResultStructured(map[string]any{"error": f}, f.Code+": "+f.Message)
	result.IsError = true
	return result
}

// mapDomainError turns a service error into a tool failure carrying the same
// reason code the HTTP API returns. Ledger outages are marked retryable.
func mapDomainError(err error) *mcp.CallToolResult {
	f := toolFailure{Code: "internal_error", Message: "unknown error"}
	if err != nil {
		f.Message = err.Error()
	}
	switch {
	case err == nil:
	case errors.Is(err, player.ErrInvalidRequest):
		f.Code = "invalid_request"
	case errors.Is(err, player.ErrLeaderboardUnavailable):
		f.Code = "leaderboard_unavailable"
		f.Retryable = true
	default:
		f.Code = quiz.Code(err)
		f.Retryable = errors.Is(err, ledger.ErrUnavailable)
	}
	return failure(f)
}
