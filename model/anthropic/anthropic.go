// Package anthropic implements model.Gateway on top of the Anthropic
// Messages API, for deployments that bind agents to Claude models instead of
// a local Ollama server.
package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/AlpaslanErdag/Orchestrator/core"
	"github.com/AlpaslanErdag/Orchestrator/internal/xjson"
	"github.com/AlpaslanErdag/Orchestrator/model"
)

// Options configures the Anthropic gateway adapter (model id, temperature,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Gateway wraps the Anthropic Messages API behind model.Gateway.
type Gateway struct {
	client *anthropic.Client
	opts   Options
}

// NewGateway creates a new Anthropic gateway using the official client.
func NewGateway(optFns ...func(o *Options)) *Gateway {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Gateway{client: &client, opts: opts}
}

// NewGatewayFromClient creates a new Anthropic gateway from an existing client.
func NewGatewayFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Gateway {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Gateway{client: client, opts: opts}
}

// Complete implements model.Gateway.
func (g *Gateway) Complete(ctx context.Context, req model.Request) (*model.Response, error) {
	params := anthropic.MessageNewParams{
		Model:       g.opts.Model,
		Messages:    buildMessages(req.Transcript),
		MaxTokens:   g.opts.MaxTokens,
		Temperature: anthropic.Float(g.opts.Temperature),
	}
	if system := extractSystem(req.Transcript); len(system) > 0 {
		params.System = system
	}
	if len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return nil, core.NewGatewayError(string(g.opts.Model), fmt.Errorf("anthropic api error: %w", err))
	}

	out := &model.Response{}
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			out.Text += block.AsText().Text
		case "tool_use":
			if out.ToolCall != nil {
				continue // one invocation per turn; extras are re-requested next cycle
			}
			tu := block.AsToolUse()
			args := ""
			if tu.Input != nil {
				if b, err := xjson.Marshal(tu.Input); err == nil {
					args = string(b)
				}
			}
			out.ToolCall = &core.ToolCall{ID: tu.ID, Name: tu.Name, Arguments: args}
		}
	}
	return out, nil
}

// buildMessages converts the transcript to Anthropic message params. Tool
// observations are embedded as tool_result blocks on user messages, which is
// how the Messages API expects them.
func buildMessages(transcript []core.ConversationMessage) []anthropic.MessageParam {
	var messages []anthropic.MessageParam
	for _, m := range transcript {
		switch m.Role {
		case core.RoleSystem:
			continue // handled separately
		case core.RoleUser:
			if m.Content != "" {
				messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
			}
		case core.RoleAssistant:
			if m.ToolCall != nil {
				var input interface{}
				if m.ToolCall.Arguments != "" {
					if err := xjson.Unmarshal([]byte(m.ToolCall.Arguments), &input); err != nil {
						input = m.ToolCall.Arguments
					}
				}
				messages = append(messages, anthropic.NewAssistantMessage(
					anthropic.NewToolUseBlock(m.ToolCall.ID, input, m.ToolCall.Name),
				))
				continue
			}
			if m.Content != "" {
				messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
			}
		case core.RoleTool:
			messages = append(messages, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(m.ToolCallID, m.Content, false),
			))
		}
	}
	return messages
}

func extractSystem(transcript []core.ConversationMessage) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	for _, m := range transcript {
		if m.Role == core.RoleSystem && m.Content != "" {
			blocks = append(blocks, anthropic.TextBlockParam{Text: m.Content})
		}
	}
	return blocks
}

// buildTools converts tool definitions to the Anthropic tool format.
func buildTools(tools []model.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, len(tools))
	for i, td := range tools {
		schema := anthropic.ToolInputSchemaParam{Type: constant.Object("object")}
		if td.Parameters != nil {
			if properties, ok := td.Parameters["properties"]; ok {
				schema.Properties = properties
			}
			switch req := td.Parameters["required"].(type) {
			case []string:
				schema.Required = req
			case []interface{}:
				for _, r := range req {
					if s, ok := r.(string); ok {
						schema.Required = append(schema.Required, s)
					}
				}
			}
		}
		out[i] = anthropic.ToolUnionParamOfTool(schema, td.Name)
	}
	return out
}

// Info returns metadata describing this gateway implementation.
func (g *Gateway) Info() model.Info {
	return model.Info{Name: string(g.opts.Model), Provider: "anthropic", SupportsTools: true}
}
