// Package mcp exposes the assistant as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/tafel/internal/logging"
	"github.com/aretw0/tafel/pkg/domain"
	"github.com/aretw0/tafel/pkg/faq"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const knowledgeURI = "tafel://knowledge"

// Assistant is the part of tafel.Assistant used by the tools.
type Assistant interface {
	Ask(ctx context.Context, query string) (faq.Result, error)
	Reply(ctx context.Context, clientID, message string) (string, error)
	KnowledgeBase() *faq.KnowledgeBase
}

// AskResult is the structured output of the ask_faq tool.
type AskResult struct {
	Answer   string `json:"answer" jsonschema_description:"Answer text, or the fallback text when nothing matched"`
	Matched  bool   `json:"matched" jsonschema_description:"Whether a knowledge base record matched"`
	RecordID int    `json:"record_id,omitempty" jsonschema_description:"ID of the matching record"`
	Title    string `json:"title,omitempty" jsonschema_description:"Title of the matching record"`
}

// Server wraps the assistant and exposes it as an MCP Server.
type Server struct {
	assistant Assistant
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(assistant Assistant, version string, opts ...Option) *Server {
	s := &Server{
		assistant: assistant,
		mcpServer: server.NewMCPServer("tafel-mcp", version),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	askTool := mcp.NewTool("ask_faq",
		mcp.WithDescription("Answer a question about the restaurant (opening hours, menu, payment, parking, ...) from the FAQ knowledge base. Does not start a conversation."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The guest's question, in German")),
		mcp.WithOutputSchema[AskResult](),
	)
	s.mcpServer.AddTool(askTool, mcp.NewStructuredToolHandler(s.handleAsk))

	chatTool := mcp.NewTool("chat",
		mcp.WithDescription("Send one message of a guest conversation. The conversation (including table reservations) continues across calls with the same client_id."),
		mcp.WithString("client_id", mcp.Required(), mcp.Description("Stable identifier of the conversation")),
		mcp.WithString("message", mcp.Required(), mcp.Description("The guest's message")),
	)
	s.mcpServer.AddTool(chatTool, s.handleChat)
}

func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (AskResult, error) {
	query, _ := args["query"].(string)

	res, err := s.assistant.Ask(ctx, query)
	if err != nil {
		s.logger.Warn("MCP ask_faq: query rejected", "error", err)
		return AskResult{}, fmt.Errorf("query rejected: %w", err)
	}

	out := AskResult{Answer: res.Answer, Matched: res.Matched()}
	if res.Record != nil {
		out.RecordID = res.Record.ID
		out.Title = res.Record.Title
	}
	return out, nil
}

func (s *Server) handleChat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	clientID, err := request.RequireString("client_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	reply, err := s.assistant.Reply(ctx, clientID, message)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return mcp.NewToolResultError(fmt.Sprintf("message rejected: %v", err)), nil
		}
		s.logger.Error("MCP chat failed", "client_id", clientID, "error", err)
		return mcp.NewToolResultError("internal error"), nil
	}
	return mcp.NewToolResultText(reply), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(knowledgeURI, "Restaurant FAQ knowledge base",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.assistant.KnowledgeBase())
		if err != nil {
			return nil, fmt.Errorf("failed to encode knowledge base: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      knowledgeURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
