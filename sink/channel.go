package sink

import (
	"context"
	"sync"

	"github.com/AlpaslanErdag/Orchestrator/core"
)

// ChannelSink delivers events over a buffered channel. Publish blocks once
// the buffer is full, backpressuring the producing run; a cancelled context
// unblocks it with ctx.Err() so the producer can stop cleanly. A consumer
// that goes away signals it by cancelling the run's context.
type ChannelSink struct {
	ch   chan core.ExecutionEvent
	once sync.Once
}

// NewChannelSink creates a ChannelSink with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer < 0 {
		buffer = 0
	}
	return &ChannelSink{ch: make(chan core.ExecutionEvent, buffer)}
}

// Publish implements core.Sink.
func (s *ChannelSink) Publish(ctx context.Context, event core.ExecutionEvent) error {
	select {
	case s.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Events returns the receive side of the sink.
func (s *ChannelSink) Events() <-chan core.ExecutionEvent { return s.ch }

// Close ends the event stream so consumers ranging over Events terminate.
// Producer side only: call it after the run has returned. Safe to call more
// than once.
func (s *ChannelSink) Close() {
	s.once.Do(func() { close(s.ch) })
}
