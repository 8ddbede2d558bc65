package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitter_StampsSequentially(t *testing.T) {
	var events []ExecutionEvent
	sink := SinkFunc(func(_ context.Context, ev ExecutionEvent) error {
		events = append(events, ev)
		return nil
	})

	e := NewEmitter("run-1", sink)
	require.NoError(t, e.Emit(context.Background(), StageInit, "", "starting"))
	require.NoError(t, e.Emit(context.Background(), StageThinking, "", "thinking"))
	require.NoError(t, e.Emit(context.Background(), StageDone, "node-1", "done"))

	require.Len(t, events, 3)
	for i, ev := range events {
		assert.Equal(t, uint64(i+1), ev.Sequence)
		assert.Equal(t, "run-1", ev.RunID)
		assert.NotEmpty(t, ev.ID)
		assert.False(t, ev.Timestamp.IsZero())
	}
	assert.Equal(t, "node-1", events[2].NodeID)
	assert.Equal(t, uint64(3), e.Sequence())
}

func TestEmitter_ConcurrentDeliveryMatchesSequence(t *testing.T) {
	var mu sync.Mutex
	var events []ExecutionEvent
	sink := SinkFunc(func(_ context.Context, ev ExecutionEvent) error {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
		return nil
	})

	e := NewEmitter("run-1", sink)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				_ = e.Emit(context.Background(), StageObservation, "", "x")
			}
		}()
	}
	wg.Wait()

	require.Len(t, events, 200)
	for i, ev := range events {
		assert.Equal(t, uint64(i+1), ev.Sequence, "delivery order must match sequence order")
	}
}

func TestEmitter_SinkErrorPropagates(t *testing.T) {
	wantErr := errors.New("consumer gone")
	e := NewEmitter("run-1", SinkFunc(func(context.Context, ExecutionEvent) error {
		return wantErr
	}))

	err := e.Emit(context.Background(), StageInit, "", "")
	assert.ErrorIs(t, err, wantErr)
}

func TestEmitter_NilSinkDiscards(t *testing.T) {
	e := NewEmitter("run-1", nil)
	assert.NoError(t, e.Emit(context.Background(), StageInit, "", ""))
	assert.Equal(t, "run-1", e.RunID())
}
