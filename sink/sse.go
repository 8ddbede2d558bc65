package sink

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/AlpaslanErdag/Orchestrator/core"
	"github.com/AlpaslanErdag/Orchestrator/internal/xjson"
)

// sseEventNames maps run stages to the event names of the SSE stream.
var sseEventNames = map[core.Stage]string{
	core.StageInit:        "start",
	core.StageThinking:    "thought",
	core.StageActing:      "action",
	core.StageObservation: "observation",
	core.StageDone:        "final",
	core.StageError:       "error",
	core.StageCancelled:   "error",
}

// sseFrame is the JSON payload of one SSE data line.
type sseFrame struct {
	RunID    string `json:"run_id"`
	Sequence uint64 `json:"sequence"`
	NodeID   string `json:"node_id,omitempty"`
	Content  string `json:"content"`
}

// SSEWriter streams run events as server-sent events. Each event becomes one
// `event:`/`data:` frame; a terminal stage is followed by a `done` frame
// carrying the [DONE] sentinel so clients can detach. Writes are serialized;
// the writer is flushed after every frame when it supports flushing.
type SSEWriter struct {
	w  io.Writer
	fl http.Flusher
	mu sync.Mutex
}

// NewSSEWriter wraps w as an SSE event sink. If w is an http.ResponseWriter
// the response is flushed after each frame.
func NewSSEWriter(w io.Writer) *SSEWriter {
	s := &SSEWriter{w: w}
	if fl, ok := w.(http.Flusher); ok {
		s.fl = fl
	}
	return s
}

// WriteHeader sets the response headers an SSE stream needs. Call it once
// before the first event when w is an http.ResponseWriter.
func (s *SSEWriter) WriteHeader(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
}

// Publish implements core.Sink.
func (s *SSEWriter) Publish(ctx context.Context, event core.ExecutionEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name, ok := sseEventNames[event.Stage]
	if !ok {
		name = "message"
	}
	data, err := xjson.Marshal(sseFrame{
		RunID:    event.RunID,
		Sequence: event.Sequence,
		NodeID:   event.NodeID,
		Content:  event.Payload,
	})
	if err != nil {
		return fmt.Errorf("encode sse frame: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeFrame(name, string(data)); err != nil {
		return err
	}
	if isTerminal(event) {
		if err := s.writeFrame("done", "[DONE]"); err != nil {
			return err
		}
	}
	return nil
}

func (s *SSEWriter) writeFrame(event, data string) error {
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return fmt.Errorf("write sse frame: %w", err)
	}
	if s.fl != nil {
		s.fl.Flush()
	}
	return nil
}

// isTerminal reports whether an event ends the whole stream. Stage alone is
// not enough: a DONE or ERROR tagged with a node id belongs to one workflow
// node, and the surrounding run continues.
func isTerminal(event core.ExecutionEvent) bool {
	if event.NodeID != "" {
		return false
	}
	switch event.Stage {
	case core.StageDone, core.StageError, core.StageCancelled:
		return true
	}
	return false
}
