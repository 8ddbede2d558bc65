package core

import (
	"context"
	"sync"
	"time"
)

// Stage tags an ExecutionEvent with the loop (or engine) phase it reports.
type Stage string

// Stages of one Orchestrator run. Within a run they obey the partial order
// INIT < THINKING < ACTING < OBSERVATION < DONE, with the
// THINKING/ACTING/OBSERVATION block repeating any number of times.
const (
	StageInit        Stage = "INIT"
	StageThinking    Stage = "THINKING"
	StageActing      Stage = "ACTING"
	StageObservation Stage = "OBSERVATION"
	StageDone        Stage = "DONE"
	StageError       Stage = "ERROR"
	StageCancelled   Stage = "CANCELLED"
)

// ExecutionEvent is one immutable entry of a run's progress trace. Sequence
// numbers are strictly increasing within a run and never reused; NodeID is
// set when the event originates from a workflow node.
type ExecutionEvent struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Sequence  uint64    `json:"sequence"`
	Stage     Stage     `json:"stage"`
	NodeID    string    `json:"node_id,omitempty"`
	Payload   string    `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Sink receives the ordered event trace of a run. Publish must observe
// submission order and apply no reordering; it may block to exert
// backpressure on the producing loop. A ctx cancellation while blocked must
// cause Publish to return ctx.Err() so the producer can stop cleanly.
type Sink interface {
	Publish(ctx context.Context, event ExecutionEvent) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, event ExecutionEvent) error

// Publish implements Sink.
func (f SinkFunc) Publish(ctx context.Context, event ExecutionEvent) error {
	return f(ctx, event)
}

// NullSink discards all events. Useful for tests or fire-and-forget runs.
type NullSink struct{}

// Publish implements Sink.
func (NullSink) Publish(context.Context, ExecutionEvent) error { return nil }

// Emitter hands out sequence-stamped events for a single run. It is safe for
// concurrent use: sequence assignment and publication happen under one lock,
// so delivery order always matches sequence order even when parallel
// workflow branches share the run's sequence space. A blocked sink therefore
// backpressures this run only, never unrelated runs.
type Emitter struct {
	runID string
	mu    sync.Mutex
	seq   uint64
	sink  Sink
}

// NewEmitter creates an Emitter publishing to sink. A nil sink is replaced by
// NullSink.
func NewEmitter(runID string, sink Sink) *Emitter {
	if sink == nil {
		sink = NullSink{}
	}
	return &Emitter{runID: runID, sink: sink}
}

// Emit stamps and publishes the next event of the run. The returned error is
// non-nil only if the sink rejected the event (e.g. consumer gone); the
// caller must then stop producing.
func (e *Emitter) Emit(ctx context.Context, stage Stage, nodeID, payload string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq++
	return e.sink.Publish(ctx, ExecutionEvent{
		ID:        NewID(),
		RunID:     e.runID,
		Sequence:  e.seq,
		Stage:     stage,
		NodeID:    nodeID,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
}

// RunID returns the run this emitter stamps events for.
func (e *Emitter) RunID() string { return e.runID }

// Sequence returns the last issued sequence number.
func (e *Emitter) Sequence() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seq
}
