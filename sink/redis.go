package sink

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/AlpaslanErdag/Orchestrator/core"
	"github.com/AlpaslanErdag/Orchestrator/internal/xjson"
)

// RedisSink publishes run events to a Redis pub/sub channel so consumers in
// other processes can follow the trace. Events go out in submission order on
// the channel "<prefix>:<run_id>".
type RedisSink struct {
	client *redis.Client
	prefix string
}

// RedisSinkOptions configure a RedisSink.
type RedisSinkOptions struct {
	// ChannelPrefix is prepended to the run id to form the pub/sub channel
	// name.
	ChannelPrefix string
}

// NewRedisSink wraps an existing Redis client as an event sink.
func NewRedisSink(client *redis.Client, optFns ...func(o *RedisSinkOptions)) *RedisSink {
	opts := RedisSinkOptions{ChannelPrefix: "agentflow:runs"}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &RedisSink{client: client, prefix: opts.ChannelPrefix}
}

// Channel returns the pub/sub channel name used for a run.
func (s *RedisSink) Channel(runID string) string {
	return fmt.Sprintf("%s:%s", s.prefix, runID)
}

// Publish implements core.Sink.
func (s *RedisSink) Publish(ctx context.Context, event core.ExecutionEvent) error {
	data, err := xjson.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := s.client.Publish(ctx, s.Channel(event.RunID), data).Err(); err != nil {
		return fmt.Errorf("publish event to redis: %w", err)
	}
	return nil
}
