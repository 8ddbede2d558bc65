// Package openai implements model.Gateway on top of the OpenAI Chat
// Completions API. Because Ollama exposes the same wire protocol, the
// adapter doubles as the local-model gateway: point BaseURL at an Ollama
// server (default http://localhost:11434/v1) and bind any pulled model.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/AlpaslanErdag/Orchestrator/core"
	"github.com/AlpaslanErdag/Orchestrator/model"
)

// DefaultBaseURL targets a local Ollama server speaking the OpenAI protocol.
const DefaultBaseURL = "http://localhost:11434/v1"

// Options configure the gateway adapter. Fields mirror a subset of Chat
// Completion parameters intentionally kept minimal; extend via functional
// options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	BaseURL             string
	APIKey              string
}

// Gateway wraps the OpenAI Chat Completions API behind model.Gateway.
type Gateway struct {
	client *openai.Client
	opts   Options
}

// NewGateway creates a gateway talking to an OpenAI-compatible endpoint.
// With no overrides it targets a local Ollama server.
func NewGateway(optFns ...func(o *Options)) *Gateway {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	clientOpts := []option.RequestOption{option.WithBaseURL(opts.BaseURL)}
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := openai.NewClient(clientOpts...)

	return &Gateway{client: &client, opts: opts}
}

// NewGatewayFromClient creates a gateway from an existing client.
func NewGatewayFromClient(client *openai.Client, optFns ...func(o *Options)) *Gateway {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Gateway{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:               "mistral:7b",
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
		BaseURL:             DefaultBaseURL,
		APIKey:              "ollama",
	}
}

// Complete implements model.Gateway. The transcript is converted to chat
// messages, tool descriptors become function declarations, and the first
// surfaced tool call (if any) is returned as the structured candidate.
func (g *Gateway) Complete(ctx context.Context, req model.Request) (*model.Response, error) {
	params := g.buildParams(req)

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, core.NewGatewayError(g.modelName(req), fmt.Errorf("openai api error: %w", err))
	}
	if len(resp.Choices) == 0 {
		return nil, core.NewGatewayError(g.modelName(req), fmt.Errorf("no choices returned"))
	}

	msg := resp.Choices[0].Message
	out := &model.Response{Text: msg.Content}
	if len(msg.ToolCalls) > 0 {
		tc := msg.ToolCalls[0]
		out.ToolCall = &core.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}
	}
	return out, nil
}

func (g *Gateway) modelName(req model.Request) string {
	if req.Model != "" {
		return req.Model
	}
	return g.opts.Model
}

// buildParams assembles the request parameters including tool declarations.
func (g *Gateway) buildParams(req model.Request) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req.Transcript),
		Model:               g.modelName(req),
		Temperature:         openai.Float(g.opts.Temperature),
		MaxCompletionTokens: openai.Int(g.opts.MaxCompletionTokens),
	}
	if len(req.Tools) == 0 {
		return params
	}
	tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
	for i, td := range req.Tools {
		tools[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        td.Name,
				Description: openai.String(td.Description),
				Parameters:  td.Parameters,
			},
		}
	}
	params.Tools = tools
	return params
}

// buildMessages converts the transcript into OpenAI chat messages. Assistant
// tool-call entries become assistant messages carrying tool_calls; tool-role
// observations become tool messages correlated by call id.
func buildMessages(transcript []core.ConversationMessage) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(transcript))
	for _, m := range transcript {
		switch m.Role {
		case core.RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case core.RoleUser:
			if m.ImageURL != "" {
				messages = append(messages, openai.UserMessage(
					[]openai.ChatCompletionContentPartUnionParam{
						openai.TextContentPart(m.Content),
						openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: m.ImageURL}),
					},
				))
				continue
			}
			messages = append(messages, openai.UserMessage(m.Content))
		case core.RoleAssistant:
			if m.ToolCall != nil {
				messages = append(messages, openai.ChatCompletionMessageParamUnion{
					OfAssistant: &openai.ChatCompletionAssistantMessageParam{
						ToolCalls: []openai.ChatCompletionMessageToolCallParam{{
							ID:   m.ToolCall.ID,
							Type: "function",
							Function: openai.ChatCompletionMessageToolCallFunctionParam{
								Name:      m.ToolCall.Name,
								Arguments: m.ToolCall.Arguments,
							},
						}},
					},
				})
				continue
			}
			messages = append(messages, openai.AssistantMessage(m.Content))
		case core.RoleTool:
			messages = append(messages, openai.ToolMessage(m.Content, m.ToolCallID))
		default:
			if m.Content != "" {
				messages = append(messages, openai.UserMessage(m.Content))
			}
		}
	}
	return messages
}

// Info returns metadata describing this gateway implementation.
func (g *Gateway) Info() model.Info {
	return model.Info{Name: g.opts.Model, Provider: "openai", SupportsTools: true}
}
