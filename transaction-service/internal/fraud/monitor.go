// Package fraud consumes the fraud-detection stream and flags suspicious
// money movements.
package fraud

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/meridianbank/banking/shared/events"
)

// defaultThreshold flags any single movement of 10000 or more, regardless
// of currency.
var defaultThreshold = decimal.NewFromInt(10000)

// Alert is one flagged money movement, stored for operator review.
type Alert struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	AccountID string          `json:"accountId"`
	OwnerID   string          `json:"ownerId"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	FlaggedAt time.Time       `json:"flaggedAt"`
}

// AlertStore persists alerts and remembers which event IDs were handled.
type AlertStore interface {
	AlreadySeen(ctx context.Context, eventID string) bool
	MarkSeen(ctx context.Context, eventID string)
	StoreAlert(ctx context.Context, alert Alert) error
}

// Monitor inspects every money movement on the fraud-detection stream.
// Delivery is at-least-once, so the monitor dedupes by event ID before
// flagging anything.
type Monitor struct {
	store     AlertStore
	threshold decimal.Decimal
}

func NewMonitor(store AlertStore) *Monitor {
	return &Monitor{store: store, threshold: defaultThreshold}
}

// HandleMoneyMoved is the stream handler. A non-nil return leaves the
// message pending for redelivery.
func (m *Monitor) HandleMoneyMoved(ctx context.Context, event events.Event) error {
	if event.Type != events.MoneyDeposited && event.Type != events.MoneyWithdrawn {
		return nil
	}
	if m.store.AlreadySeen(ctx, event.EventID) {
		return nil
	}

	dataBytes, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to re-marshal event data: %w", err)
	}
	var moved events.MoneyMovedEvent
	if err := json.Unmarshal(dataBytes, &moved); err != nil {
		return fmt.Errorf("failed to unmarshal money movement: %w", err)
	}

	if moved.Amount.GreaterThanOrEqual(m.threshold) {
		alert := Alert{
			EventID:   event.EventID,
			EventType: event.Type,
			AccountID: moved.AccountID,
			OwnerID:   moved.OwnerID,
			Amount:    moved.Amount,
			Currency:  moved.Currency,
			FlaggedAt: time.Now().UTC(),
		}
		if err := m.store.StoreAlert(ctx, alert); err != nil {
			return err
		}
		log.Printf("Fraud alert: %s of %s %s on account %s", event.Type, moved.Currency, moved.Amount, moved.AccountID)
	}

	m.store.MarkSeen(ctx, event.EventID)
	return nil
}

const (
	seenEventKeyPrefix = "fraud:seen:"
	seenEventTTL       = 72 * time.Hour
	alertListKey       = "fraud:alerts"
)

// RedisAlertStore keeps alerts in a Redis list and seen-markers as expiring
// keys.
type RedisAlertStore struct {
	redis *goredis.Client
}

func NewRedisAlertStore(redisClient *goredis.Client) *RedisAlertStore {
	return &RedisAlertStore{redis: redisClient}
}

// AlreadySeen guards against duplicate delivery under at-least-once Redis
// Streams semantics.
func (s *RedisAlertStore) AlreadySeen(ctx context.Context, eventID string) bool {
	val, err := s.redis.Exists(ctx, seenEventKeyPrefix+eventID).Result()
	return err == nil && val > 0
}

// MarkSeen records the event ID. The key expires after 72 hours — long
// enough to cover any realistic redelivery window from a consumer group.
func (s *RedisAlertStore) MarkSeen(ctx context.Context, eventID string) {
	if err := s.redis.Set(ctx, seenEventKeyPrefix+eventID, "1", seenEventTTL).Err(); err != nil {
		log.Printf("Failed to mark event %s as seen: %v", eventID, err)
	}
}

func (s *RedisAlertStore) StoreAlert(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}
	if err := s.redis.LPush(ctx, alertListKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to store alert: %w", err)
	}
	return nil
}
