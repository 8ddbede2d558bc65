package testutil

import (
	"context"
	"sync"

	"github.com/AlpaslanErdag/Orchestrator/core"
)

// CollectorSink records every published event in order. Safe for concurrent
// use; useful for asserting on a run's full trace after it finishes.
type CollectorSink struct {
	mu     sync.Mutex
	events []core.ExecutionEvent
}

// NewCollectorSink returns an empty collector.
func NewCollectorSink() *CollectorSink { return &CollectorSink{} }

// Publish implements core.Sink.
func (s *CollectorSink) Publish(_ context.Context, event core.ExecutionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a snapshot of the recorded events.
func (s *CollectorSink) Events() []core.ExecutionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.ExecutionEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Stages returns the recorded stages in publication order.
func (s *CollectorSink) Stages() []core.Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Stage, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.Stage
	}
	return out
}

// StagesFor returns the stages of events tagged with the given node id.
func (s *CollectorSink) StagesFor(nodeID string) []core.Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Stage
	for _, ev := range s.events {
		if ev.NodeID == nodeID {
			out = append(out, ev.Stage)
		}
	}
	return out
}

// FailingSink rejects every publication with Err, simulating a gone
// consumer.
type FailingSink struct {
	Err error
}

// Publish implements core.Sink.
func (s FailingSink) Publish(context.Context, core.ExecutionEvent) error {
	return s.Err
}
