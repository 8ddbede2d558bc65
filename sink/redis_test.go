package sink

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlpaslanErdag/Orchestrator/core"
	"github.com/AlpaslanErdag/Orchestrator/internal/xjson"
)

func TestRedisSink_ChannelName(t *testing.T) {
	s := NewRedisSink(nil)
	assert.Equal(t, "agentflow:runs:run-1", s.Channel("run-1"))

	s = NewRedisSink(nil, func(o *RedisSinkOptions) { o.ChannelPrefix = "custom" })
	assert.Equal(t, "custom:run-1", s.Channel("run-1"))
}

func TestRedisSink_PublishRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s := NewRedisSink(client)

	sub := client.Subscribe(ctx, s.Channel("run-1"))
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	want := core.ExecutionEvent{
		ID:       "ev-1",
		RunID:    "run-1",
		Sequence: 7,
		Stage:    core.StageObservation,
		NodeID:   "scrape",
		Payload:  "fetched 1204 bytes",
	}
	require.NoError(t, s.Publish(ctx, want))

	select {
	case msg := <-sub.Channel():
		var got core.ExecutionEvent
		require.NoError(t, xjson.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, want.RunID, got.RunID)
		assert.Equal(t, want.Sequence, got.Sequence)
		assert.Equal(t, want.Stage, got.Stage)
		assert.Equal(t, want.NodeID, got.NodeID)
		assert.Equal(t, want.Payload, got.Payload)
	case <-ctx.Done():
		t.Fatal("no message received")
	}
}

func TestRedisSink_PublishErrorSurfaces(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	s := NewRedisSink(client)
	err := s.Publish(context.Background(), core.ExecutionEvent{RunID: "run-1"})
	assert.Error(t, err)
}
