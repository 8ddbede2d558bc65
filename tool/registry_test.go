package tool

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlpaslanErdag/Orchestrator/core"
)

func echoSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{"type": "string"},
		},
		"required": []string{"text"},
	}
}

func newEchoTool() *FunctionTool {
	return NewFunctionTool("echo", "Echo text back.", echoSchema(),
		func(_ context.Context, args map[string]any) (any, error) {
			return args["text"], nil
		})
}

func TestRegistry_RegisterAndResolve(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newEchoTool()))
	assert.Error(t, r.Register(newEchoTool()), "duplicate registration must fail")

	tool, ok := r.Resolve("echo")
	require.True(t, ok)
	assert.Equal(t, "echo", tool.Name())

	_, ok = r.Resolve("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"echo"}, r.Names())
}

func TestRegistry_AliasResolution(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(NewFunctionTool("generate_pdf_report", "Render a PDF.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(context.Context, map[string]any) (any, error) { return "ok", nil }))

	// Models frequently use the shortened historical names.
	for _, alias := range []string{"pdf_tool", "pdf_report_tool", "generate_pdf_report"} {
		d, err := r.Describe(alias)
		require.NoError(t, err, alias)
		assert.Equal(t, "generate_pdf_report", d.Name)
	}

	res := r.Invoke(context.Background(), "pdf_tool", map[string]any{})
	assert.True(t, res.Success)
}

func TestRegistry_ListAllowed(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(newEchoTool())
	r.MustRegister(NewFunctionTool("generate_pdf_report", "Render a PDF.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(context.Context, map[string]any) (any, error) { return "ok", nil }))

	def := core.AgentDefinition{
		ID:        "a1",
		ModelName: "mistral:7b",
		// pdf_tool and the canonical name collapse to one descriptor; the
		// unknown entry is ignored.
		Tools: []string{"pdf_tool", "generate_pdf_report", "echo", "ghost_tool"},
	}

	allowed := r.ListAllowed(def)
	require.Len(t, allowed, 2)
	assert.Equal(t, "generate_pdf_report", allowed[0].Name)
	assert.Equal(t, "echo", allowed[1].Name)
}

func TestRegistry_Validate(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(newEchoTool())

	assert.NoError(t, r.Validate("echo", map[string]any{"text": "hi"}))

	err := r.Validate("echo", map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeValidation, toolErr.Code)

	err = r.Validate("ghost", nil)
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeUnknownTool, toolErr.Code)
}

func TestRegistry_InvokeSuccess(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(newEchoTool())

	res := r.Invoke(context.Background(), "echo", map[string]any{"text": "hello"})
	assert.True(t, res.Success)
	assert.Equal(t, "hello", res.Payload)
	assert.Empty(t, res.ArtifactPath)
}

func TestRegistry_InvokeLiftsArtifactPath(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(NewFunctionTool("report", "Writes a file.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(context.Context, map[string]any) (any, error) {
			return ArtifactPayload{Message: "report written", Path: "/tmp/report.pdf"}, nil
		}))

	res := r.Invoke(context.Background(), "report", map[string]any{})
	require.True(t, res.Success)
	assert.Equal(t, "/tmp/report.pdf", res.ArtifactPath)
}

func TestRegistry_InvokeFailuresNeverEscape(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(newEchoTool())
	r.MustRegister(NewFunctionTool("boom", "Fails.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(context.Context, map[string]any) (any, error) {
			return nil, errors.New("backend unreachable")
		}))
	r.MustRegister(NewFunctionTool("panicky", "Panics.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(context.Context, map[string]any) (any, error) {
			panic("boom")
		}))

	t.Run("unknown tool", func(t *testing.T) {
		res := r.Invoke(context.Background(), "ghost", nil)
		assert.False(t, res.Success)
		assert.Equal(t, CodeUnknownTool, res.Code)
	})

	t.Run("schema mismatch", func(t *testing.T) {
		res := r.Invoke(context.Background(), "echo", map[string]any{})
		assert.False(t, res.Success)
		assert.Equal(t, CodeValidation, res.Code)
	})

	t.Run("execution error", func(t *testing.T) {
		res := r.Invoke(context.Background(), "boom", map[string]any{})
		assert.False(t, res.Success)
		assert.Equal(t, CodeExecution, res.Code)
		assert.Contains(t, res.Error, "backend unreachable")
	})

	t.Run("panic recovered", func(t *testing.T) {
		res := r.Invoke(context.Background(), "panicky", map[string]any{})
		assert.False(t, res.Success)
		assert.Equal(t, CodeExecution, res.Code)
		assert.Contains(t, res.Error, "panic")
	})
}

func TestRegistry_InvokeTimeout(t *testing.T) {
	r := NewRegistry(func(o *RegistryOptions) { o.InvokeTimeout = 20 * time.Millisecond })
	r.MustRegister(NewFunctionTool("sleepy", "Ignores its context.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(context.Context, map[string]any) (any, error) {
			time.Sleep(500 * time.Millisecond)
			return "late", nil
		}))

	start := time.Now()
	res := r.Invoke(context.Background(), "sleepy", map[string]any{})
	assert.False(t, res.Success)
	assert.Equal(t, CodeTimeout, res.Code)
	assert.Less(t, time.Since(start), 400*time.Millisecond, "a wedged tool must not block the caller")
}

func TestFunctionTool_ErrorNormalization(t *testing.T) {
	custom := NewFunctionTool("custom", "Returns a coded error.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(context.Context, map[string]any) (any, error) {
			return nil, NewToolError("custom", "quota exceeded", "RATE_LIMITED")
		})

	_, err := custom.Call(context.Background(), map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "RATE_LIMITED", toolErr.Code, "custom codes pass through unchanged")

	plain := NewFunctionTool("plain", "Returns a plain error.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(context.Context, map[string]any) (any, error) {
			return nil, errors.New("nope")
		})
	_, err = plain.Call(context.Background(), map[string]any{})
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeExecution, toolErr.Code)
}
