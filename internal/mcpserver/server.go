package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"trivia-wager/internal/app/player"
	"trivia-wager/internal/quiz"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const categoriesURI = "quiz://categories"

// Server exposes the quiz as MCP tools over streamable HTTP. Callers pass their
// user_id with every tool call.
type Server struct {
	quiz    *quiz.Service
	players *player.Service

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(quizSvc *quiz.Service, playerSvc *player.Service) *Server {
	mcpSrv := server.NewMCPServer(
		"trivia-wager",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithResourceRecovery(),
	)
	s := &Server{
		quiz:       quizSvc,
		players:    playerSvc,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerQuizTools()
	s.registerPlayerTools()
	s.registerResources()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcp.NewResource(
			categoriesURI,
			"quiz_categories",
			mcp.WithResourceDescription("Categories that can be opened"),
			mcp.WithMIMEType("application/json"),
		),
		func(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			items, err := s.quiz.Categories(ctx)
			if err != nil {
				return nil, err
			}
			payload, err := json.Marshal(map[string]any{"items": items})
			if err != nil {
				return nil, err
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      categoriesURI,
					MIMEType: "application/json",
					Text:     string(payload),
				},
			}, nil
		},
	)
}

func requireUser(request mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	userID, err := request.RequireString("user_id")
	if err != nil || strings.TrimSpace(userID) == "" {
		return "", toolError("invalid_request", "user_id is required")
	}
	return strings.TrimSpace(userID), nil
}

func requireSession(request mcp.CallToolRequest) (string, string, *mcp.CallToolResult) {
	userID, errResp := requireUser(request)
	if errResp != nil {
		return "", "", errResp
	}
	sessionID, err := request.RequireString("session_id")
	if err != nil || strings.TrimSpace(sessionID) == "" {
		return "", "", toolError("invalid_request", "session_id is required")
	}
	return userID, strings.TrimSpace(sessionID), nil
}
