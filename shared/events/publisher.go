package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish appends an event to the stream. partitionKey groups events whose
// relative order matters (one account's events share a key); ordering across
// keys is not guaranteed. Callers on mutation paths log the returned error
// and move on — publication is best-effort by contract.
func (p *Publisher) Publish(ctx context.Context, stream, eventType, partitionKey string, data any) error {
	event := Event{
		EventID:      uuid.NewString(),
		Type:         eventType,
		PartitionKey: partitionKey,
		Timestamp:    time.Now().UTC(),
		Data:         data,
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{
			"event": eventJSON,
			"key":   partitionKey,
		},
	}

	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
