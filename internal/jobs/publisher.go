package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Channels carrying job summaries.
const (
	ChannelDirectoryEnriched = "EVENT_DIRECTORY_ENRICHED"
	ChannelListingsValidated = "EVENT_LISTINGS_VALIDATED"
)

// Publisher sends a job event to subscribers.
type Publisher interface {
	Publish(ctx context.Context, channel string, event Event) error
}

// RedisPublisher publishes events as JSON over Redis pub/sub.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", channel, err)
	}
	if err := p.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

// NopPublisher drops every event. Used by CLIs and tests.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Event) error { return nil }
