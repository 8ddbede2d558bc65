// Package model defines the gateway abstraction between the Orchestrator and
// a concrete completion endpoint, plus the normalized request/response shapes
// shared by all provider adapters. Providers live in subpackages (openai,
// anthropic); a deterministic MockGateway supports tests and examples.
package model

import (
	"context"
	"strings"

	"github.com/AlpaslanErdag/Orchestrator/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"` // JSON Schema
}

// Request captures one completion call: the full transcript so far plus the
// tools the bound agent is allowed to call.
type Request struct {
	Model      string                     `json:"model"`
	Transcript []core.ConversationMessage `json:"transcript"`
	Tools      []ToolDefinition           `json:"tools,omitempty"`
}

// Response is the gateway's normalized completion result. Text carries the
// assistant's free-form output; ToolCall is set when the provider surfaced a
// structured function call. Both may be present (reasoning text plus call).
//
// A connectivity or timeout failure is surfaced as a typed error from
// Complete, never as a successful empty Response.
type Response struct {
	Text     string         `json:"text,omitempty"`
	ToolCall *core.ToolCall `json:"tool_call,omitempty"`
}

// Info contains metadata about a gateway implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", ...
	SupportsTools bool   `json:"supports_tools"`
}

// Gateway is the minimal interface the loop requires to drive generation.
// Implementations must honor ctx deadlines and wrap transport faults in
// *core.GatewayError.
type Gateway interface {
	// Complete sends the transcript and returns the model's next turn.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the gateway implementation.
	Info() Info
}

// MockGateway is a deterministic in-memory Gateway for tests and examples.
// Responses are matched on the latest user or tool message; unmatched input
// falls back to a scripted sequence, then to a canned echo.
type MockGateway struct {
	info      Info
	responses map[string]Response
	script    []Response
	pos       int
	calls     []Request
}

// NewMockGateway constructs a MockGateway with tool support enabled.
func NewMockGateway(name string) *MockGateway {
	return &MockGateway{
		info:      Info{Name: name, Provider: "mock", SupportsTools: true},
		responses: make(map[string]Response),
	}
}

// AddResponse registers a canned response keyed on the latest message text.
func (m *MockGateway) AddResponse(input string, resp Response) { m.responses[input] = resp }

// Enqueue appends responses served in order whenever no keyed match exists.
func (m *MockGateway) Enqueue(resps ...Response) { m.script = append(m.script, resps...) }

// Requests returns all requests seen, in order. Useful for asserting on the
// transcript the loop actually sent.
func (m *MockGateway) Requests() []Request { return m.calls }

// Complete implements Gateway.
func (m *MockGateway) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.NewGatewayError(m.info.Name, err)
	}
	m.calls = append(m.calls, req)

	var last string
	for i := len(req.Transcript) - 1; i >= 0; i-- {
		msg := req.Transcript[i]
		if msg.Role == core.RoleUser || msg.Role == core.RoleTool {
			last = strings.TrimSpace(msg.Content)
			break
		}
	}
	if resp, ok := m.responses[last]; ok {
		return &resp, nil
	}
	if m.pos < len(m.script) {
		resp := m.script[m.pos]
		m.pos++
		return &resp, nil
	}
	return &Response{Text: "Mock response to: " + last}, nil
}

// Info implements Gateway.
func (m *MockGateway) Info() Info { return m.info }
