// Package mcp exposes the assistant over the Model Context Protocol on
// stdio, so agent hosts can ask questions on behalf of a roster employee
// and inspect session history.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/redfield/usiop/internal/actor"
	"github.com/redfield/usiop/internal/clearance"
	"github.com/redfield/usiop/internal/guard"
	"github.com/redfield/usiop/internal/pipeline"
)

// Config holds MCP server configuration.
type Config struct {
	PolicyPath string
	VocabPath  string
}

// SessionStore is the conversation store surface the tools need.
type SessionStore interface {
	pipeline.History
	Clear(ctx context.Context, sessionID string) error
}

// Server wraps the MCP SDK server around the turn pipeline. Each tool call
// resolves the employee from the roster; the guard applies exactly as it
// does on the HTTP surface.
type Server struct {
	mcpServer *mcpsdk.Server
	roster    *actor.Roster
	guard     *guard.Guard
	pipe      *pipeline.Pipeline
	sessions  SessionStore
}

// New creates an MCP server with the policy table and vocabulary loaded
// from the configured paths (built-in defaults when absent).
func New(cfg Config, roster *actor.Roster, ret pipeline.Retriever, gen pipeline.Generator, sessions SessionStore, recorder pipeline.Recorder) (*Server, error) {
	table, _, err := clearance.LoadTableWithHash(cfg.PolicyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy table: %w", err)
	}
	vocab, err := guard.LoadVocabulary(cfg.VocabPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}

	g := guard.New(table, vocab)
	var opts []pipeline.Option
	if recorder != nil {
		opts = append(opts, pipeline.WithRecorder(recorder))
	}

	s := &Server{
		roster:   roster,
		guard:    g,
		pipe:     pipeline.New(g, ret, gen, sessions, opts...),
		sessions: sessions,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "usiop",
			Version: "0.1.0",
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// registerTools adds the assistant tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "usiop_ask",
		Description: "Ask the onboarding assistant a question as a roster employee. Denied queries return the denial transmission, not an error.",
	}, s.handleAsk)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "usiop_check",
		Description: "Check whether a query would pass the clearance guard for a roster employee without asking it (dry-run).",
	}, s.handleCheck)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "usiop_history",
		Description: "List a session's conversation history in insertion order.",
	}, s.handleHistory)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "usiop_clear",
		Description: "Delete a session's conversation history.",
	}, s.handleClear)
}
