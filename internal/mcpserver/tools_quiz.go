package mcpserver

import (
	"context"
	"encoding/json"
	"strings"

	"trivia-wager/internal/quiz"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerQuizTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_categories",
			mcp.WithDescription("List question categories"),
		),
		s.handleListCategories,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"open_category",
			mcp.WithDescription("Start a round in a category; any open round is abandoned"),
			mcp.WithString("user_id", mcp.Required(), mcp.Description("Player id")),
			mcp.WithString("category", mcp.Required(), mcp.Description("Category name from list_categories")),
		),
		s.handleOpenCategory,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"submit_wager",
			mcp.WithDescription("Stake points on the round; returns approved or a rejection reason"),
			mcp.WithString("user_id", mcp.Required(), mcp.Description("Player id")),
			mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id from open_category")),
			mcp.WithNumber("amount", mcp.Required(), mcp.Description("Whole number of points, greater than zero")),
		),
		s.handleSubmitWager,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_question",
			mcp.WithDescription("Fetch the round's question after the wager is approved"),
			mcp.WithString("user_id", mcp.Required(), mcp.Description("Player id")),
			mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		),
		s.handleGetQuestion,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"submit_answer",
			mcp.WithDescription("Answer the question by choice text or zero-based index; settles the wager"),
			mcp.WithString("user_id", mcp.Required(), mcp.Description("Player id")),
			mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
			mcp.WithString("choice", mcp.Description("Exact choice text")),
			mcp.WithNumber("choice_index", mcp.Description("Zero-based choice index")),
		),
		s.handleSubmitAnswer,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"close_session",
			mcp.WithDescription("Abandon the open round without touching the balance"),
			mcp.WithString("user_id", mcp.Required(), mcp.Description("Player id")),
			mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		),
		s.handleCloseSession,
	)
}

func (s *Server) handleListCategories(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.quiz.Categories(ctx)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(map[string]any{"items": items}), nil
}

func (s *Server) handleOpenCategory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, errResp := requireUser(request)
	if errResp != nil {
		return errResp, nil
	}
	category, err := request.RequireString("category")
	if err != nil || strings.TrimSpace(category) == "" {
		return toolError("invalid_request", "category is required"), nil
	}
	res, err := s.quiz.OpenCategory(ctx, userID, category)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(res), nil
}

func (s *Server) handleSubmitWager(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, sessionID, errResp := requireSession(request)
	if errResp != nil {
		return errResp, nil
	}
	raw, err := json.Marshal(request.GetArguments()["amount"])
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	amount, err := quiz.ParseAmount(raw)
	if err != nil {
		amount = 0
	}
	decision, err := s.quiz.SubmitWager(ctx, userID, sessionID, amount)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(decision), nil
}

func (s *Server) handleGetQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, sessionID, errResp := requireSession(request)
	if errResp != nil {
		return errResp, nil
	}
	q, err := s.quiz.GetQuestion(ctx, userID, sessionID)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(q), nil
}

func (s *Server) handleSubmitAnswer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, sessionID, errResp := requireSession(request)
	if errResp != nil {
		return errResp, nil
	}
	args := request.GetArguments()
	var ans quiz.Answer
	if _, ok := args["choice_index"]; ok {
		idx := request.GetInt("choice_index", -1)
		ans.Index = &idx
	} else if _, ok := args["choice"]; ok {
		ans.Choice = request.GetString("choice", "")
	} else {
		return toolError("invalid_request", "choice or choice_index is required"), nil
	}
	res, err := s.quiz.SubmitAnswer(ctx, userID, sessionID, ans)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(res), nil
}

func (s *Server) handleCloseSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, sessionID, errResp := requireSession(request)
	if errResp != nil {
		return errResp, nil
	}
	if err := s.quiz.CloseSession(ctx, userID, sessionID); err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(map[string]any{"ok": true, "session_id": sessionID}), nil
}
