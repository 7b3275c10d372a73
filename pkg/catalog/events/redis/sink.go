// Package redis publishes catalog events to a Redis pub/sub channel.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

// DefaultChannel is used when no channel is configured.
const DefaultChannel = "catalog.events"

// Message is the JSON payload published for each event.
type Message struct {
	// MessageID is unique per publish so consumers can drop duplicates.
	MessageID string `json:"messageId"`
	catalog.Event
}

// Sink implements catalog.EventSink with Redis PUBLISH.
type Sink struct {
	client  goredis.UniversalClient
	channel string
}

// NewSink returns a sink publishing to channel, or DefaultChannel when empty.
func NewSink(client goredis.UniversalClient, channel string) *Sink {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Sink{client: client, channel: channel}
}

// Channel returns the pub/sub channel name.
func (s *Sink) Channel() string {
	return s.channel
}

func (s *Sink) Publish(ctx context.Context, event catalog.Event) error {
	payload, err := json.Marshal(Message{MessageID: uuid.NewString(), Event: event})
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
