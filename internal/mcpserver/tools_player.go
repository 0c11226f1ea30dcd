package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPlayerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_statistics",
			mcp.WithDescription("Get a player's balance and answer counters"),
			mcp.WithString("user_id", mcp.Required(), mcp.Description("Player id")),
		),
		s.handleGetStatistics,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_leaderboard",
			mcp.WithDescription("Get players ranked by balance"),
			mcp.WithNumber("limit", mcp.Description("Rows to return, default 20, max 100")),
		),
		s.handleGetLeaderboard,
	)
}

func (s *Server) handleGetStatistics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, errResp := requireUser(request)
	if errResp != nil {
		return errResp, nil
	}
	resp, err := s.players.Statistics(ctx, userID)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleGetLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := s.players.Leaderboard(ctx, request.GetInt("limit", 0))
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}
