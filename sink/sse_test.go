package sink

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlpaslanErdag/Orchestrator/core"
)

func TestSSEWriter_FrameFormat(t *testing.T) {
	var buf bytes.Buffer
	s := NewSSEWriter(&buf)

	err := s.Publish(context.Background(), core.ExecutionEvent{
		RunID:    "run-1",
		Sequence: 3,
		Stage:    core.StageThinking,
		Payload:  "pondering",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "event: thought\ndata: "))
	assert.True(t, strings.HasSuffix(out, "\n\n"))
	assert.Contains(t, out, `"run_id":"run-1"`)
	assert.Contains(t, out, `"sequence":3`)
	assert.Contains(t, out, `"content":"pondering"`)
	assert.NotContains(t, out, "[DONE]")
}

func TestSSEWriter_StageNames(t *testing.T) {
	stages := map[core.Stage]string{
		core.StageInit:        "start",
		core.StageThinking:    "thought",
		core.StageActing:      "action",
		core.StageObservation: "observation",
		core.StageError:       "error",
		core.Stage("WEIRD"):   "message",
	}

	for stage, name := range stages {
		var buf bytes.Buffer
		s := NewSSEWriter(&buf)
		// Tag with a node id so terminal stages do not add the done frame.
		require.NoError(t, s.Publish(context.Background(), core.ExecutionEvent{
			Stage: stage, NodeID: "n1",
		}))
		assert.True(t, strings.HasPrefix(buf.String(), "event: "+name+"\n"), "stage %s", stage)
	}
}

func TestSSEWriter_TerminalSentinel(t *testing.T) {
	var buf bytes.Buffer
	s := NewSSEWriter(&buf)

	require.NoError(t, s.Publish(context.Background(), core.ExecutionEvent{
		RunID: "run-1", Sequence: 9, Stage: core.StageDone, Payload: "answer",
	}))

	out := buf.String()
	assert.Contains(t, out, "event: final\n")
	assert.True(t, strings.HasSuffix(out, "event: done\ndata: [DONE]\n\n"))
}

func TestSSEWriter_NodeTaggedDoneIsNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := NewSSEWriter(&buf)

	// An agent node finishing inside a workflow must not end the stream.
	require.NoError(t, s.Publish(context.Background(), core.ExecutionEvent{
		RunID: "run-1", Stage: core.StageDone, NodeID: "summarize", Payload: "partial",
	}))
	assert.NotContains(t, buf.String(), "[DONE]")

	require.NoError(t, s.Publish(context.Background(), core.ExecutionEvent{
		RunID: "run-1", Stage: core.StageError, NodeID: "scrape", Payload: "failed",
	}))
	assert.NotContains(t, buf.String(), "[DONE]")

	require.NoError(t, s.Publish(context.Background(), core.ExecutionEvent{
		RunID: "run-1", Stage: core.StageDone, Payload: "run finished",
	}))
	assert.Contains(t, buf.String(), "[DONE]")
}

func TestSSEWriter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	s := NewSSEWriter(&buf)
	err := s.Publish(ctx, core.ExecutionEvent{Stage: core.StageThinking})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len())
}

func TestSSEWriter_WriteHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	s := NewSSEWriter(rec)
	s.WriteHeader(rec)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "keep-alive", rec.Header().Get("Connection"))
	assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))
}
