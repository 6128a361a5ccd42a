package mcp

import (
	"context"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/google/uuid"
)

// AskInput defines parameters for the usiop_ask tool.
type AskInput struct {
	EmployeeID string `json:"employee_id" jsonschema:"roster employee id"`
	SessionID  string `json:"session_id,omitempty" jsonschema:"conversation session id, omit to start a new session"`
	Query      string `json:"query" jsonschema:"question for the assistant"`
}

// AskOutput contains the assistant's enveloped response.
type AskOutput struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

// CheckInput defines parameters for the usiop_check tool.
type CheckInput struct {
	EmployeeID string `json:"employee_id" jsonschema:"roster employee id"`
	Query      string `json:"query" jsonschema:"query to evaluate against the guard"`
}

// CheckOutput contains the guard decision.
type CheckOutput struct {
	Allowed       bool   `json:"allowed"`
	Category      string `json:"category,omitempty"`
	Keyword       string `json:"keyword,omitempty"`
	RequiredLevel int    `json:"required_level,omitempty"`
	ActualLevel   int    `json:"actual_level"`
	RefID         string `json:"ref_id,omitempty"`
}

// HistoryInput defines parameters for the usiop_history tool.
type HistoryInput struct {
	SessionID string `json:"session_id" jsonschema:"conversation session id"`
}

// HistoryOutput lists a session's messages.
type HistoryOutput struct {
	SessionID string        `json:"session_id"`
	Messages  []HistoryItem `json:"messages"`
}

// HistoryItem is one message in a session.
type HistoryItem struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// ClearInput defines parameters for the usiop_clear tool.
type ClearInput struct {
	SessionID string `json:"session_id" jsonschema:"conversation session id"`
}

// ClearOutput confirms the deletion.
type ClearOutput struct {
	SessionID string `json:"session_id"`
	Cleared   bool   `json:"cleared"`
}

func (s *Server) handleAsk(ctx context.Context, req *mcpsdk.CallToolRequest, input AskInput) (*mcpsdk.CallToolResult, AskOutput, error) {
	if input.Query == "" {
		return nil, AskOutput{}, fmt.Errorf("query is required")
	}
	a, ok := s.roster.Lookup(input.EmployeeID)
	if !ok {
		return nil, AskOutput{}, fmt.Errorf("unknown employee id %q", input.EmployeeID)
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	response := s.pipe.HandleTurn(ctx, a, sessionID, input.Query)
	return nil, AskOutput{SessionID: sessionID, Response: response}, nil
}

func (s *Server) handleCheck(ctx context.Context, req *mcpsdk.CallToolRequest, input CheckInput) (*mcpsdk.CallToolResult, CheckOutput, error) {
	a, ok := s.roster.Lookup(input.EmployeeID)
	if !ok {
		return nil, CheckOutput{}, fmt.Errorf("unknown employee id %q", input.EmployeeID)
	}

	res := s.guard.Check(a, input.Query)
	return nil, CheckOutput{
		Allowed:       res.Allowed,
		Category:      string(res.Category),
		Keyword:       res.Keyword,
		RequiredLevel: res.RequiredLevel,
		ActualLevel:   res.ActualLevel,
		RefID:         res.RefID,
	}, nil
}

func (s *Server) handleHistory(ctx context.Context, req *mcpsdk.CallToolRequest, input HistoryInput) (*mcpsdk.CallToolResult, HistoryOutput, error) {
	msgs, err := s.sessions.List(ctx, input.SessionID)
	if err != nil {
		return nil, HistoryOutput{}, fmt.Errorf("list history: %w", err)
	}

	items := make([]HistoryItem, len(msgs))
	for i, m := range msgs {
		items[i] = HistoryItem{
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: m.Timestamp.UTC().Format(time.RFC3339),
		}
	}
	return nil, HistoryOutput{SessionID: input.SessionID, Messages: items}, nil
}

func (s *Server) handleClear(ctx context.Context, req *mcpsdk.CallToolRequest, input ClearInput) (*mcpsdk.CallToolResult, ClearOutput, error) {
	if err := s.sessions.Clear(ctx, input.SessionID); err != nil {
		return nil, ClearOutput{}, fmt.Errorf("clear history: %w", err)
	}
	return nil, ClearOutput{SessionID: input.SessionID, Cleared: true}, nil
}
