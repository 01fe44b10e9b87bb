package fraud

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridianbank/banking/shared/events"
)

type memoryStore struct {
	seen     map[string]bool
	alerts   []Alert
	storeErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{seen: map[string]bool{}}
}

func (m *memoryStore) AlreadySeen(ctx context.Context, eventID string) bool {
	return m.seen[eventID]
}

func (m *memoryStore) MarkSeen(ctx context.Context, eventID string) {
	m.seen[eventID] = true
}

func (m *memoryStore) StoreAlert(ctx context.Context, alert Alert) error {
	if m.storeErr != nil {
		return m.storeErr
	}
	m.alerts = append(m.alerts, alert)
	return nil
}

func movedEvent(eventID, eventType, amount string) events.Event {
	return events.Event{
		EventID:      eventID,
		Type:         eventType,
		PartitionKey: "acc-1",
		Timestamp:    time.Now().UTC(),
		Data: events.MoneyMovedEvent{
			AccountID: "acc-1",
			OwnerID:   "owner-1",
			Amount:    decimal.RequireFromString(amount),
			Currency:  "USD",
		},
	}
}

func TestFlagsLargeMovement(t *testing.T) {
	store := newMemoryStore()
	monitor := NewMonitor(store)

	err := monitor.HandleMoneyMoved(context.Background(), movedEvent("ev-1", events.MoneyDeposited, "10000.00"))
	if err != nil {
		t.Fatalf("HandleMoneyMoved: %v", err)
	}

	if len(store.alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(store.alerts))
	}
	alert := store.alerts[0]
	if alert.EventID != "ev-1" || alert.AccountID != "acc-1" || alert.Currency != "USD" {
		t.Errorf("unexpected alert: %+v", alert)
	}
	if !store.seen["ev-1"] {
		t.Error("event must be marked seen after handling")
	}
}

func TestIgnoresSmallMovement(t *testing.T) {
	store := newMemoryStore()
	monitor := NewMonitor(store)

	err := monitor.HandleMoneyMoved(context.Background(), movedEvent("ev-2", events.MoneyWithdrawn, "9999.99"))
	if err != nil {
		t.Fatalf("HandleMoneyMoved: %v", err)
	}
	if len(store.alerts) != 0 {
		t.Errorf("expected no alerts, got %+v", store.alerts)
	}
	if !store.seen["ev-2"] {
		t.Error("small movements still count as seen")
	}
}

func TestDuplicateDeliveryFlagsOnce(t *testing.T) {
	store := newMemoryStore()
	monitor := NewMonitor(store)
	event := movedEvent("ev-3", events.MoneyDeposited, "50000.00")

	for i := 0; i < 3; i++ {
		if err := monitor.HandleMoneyMoved(context.Background(), event); err != nil {
			t.Fatalf("delivery %d: %v", i, err)
		}
	}
	if len(store.alerts) != 1 {
		t.Errorf("expected exactly 1 alert after redeliveries, got %d", len(store.alerts))
	}
}

func TestIgnoresForeignEventTypes(t *testing.T) {
	store := newMemoryStore()
	monitor := NewMonitor(store)

	event := movedEvent("ev-4", events.AccountCreated, "99999.00")
	if err := monitor.HandleMoneyMoved(context.Background(), event); err != nil {
		t.Fatalf("HandleMoneyMoved: %v", err)
	}
	if len(store.alerts) != 0 || store.seen["ev-4"] {
		t.Error("non-movement events must be ignored entirely")
	}
}

// A failed alert write must leave the event unseen so the stream redelivers
// it.
func TestStoreFailureLeavesEventUnseen(t *testing.T) {
	store := newMemoryStore()
	store.storeErr = fmt.Errorf("redis down")
	monitor := NewMonitor(store)

	err := monitor.HandleMoneyMoved(context.Background(), movedEvent("ev-5", events.MoneyDeposited, "20000.00"))
	if err == nil {
		t.Fatal("expected error when alert store fails")
	}
	if store.seen["ev-5"] {
		t.Error("event must stay unseen for redelivery")
	}
}

// Round-trip through the envelope's JSON form: after publish the Data field
// arrives as a map, not a struct.
func TestHandlesDecodedJSONPayload(t *testing.T) {
	store := newMemoryStore()
	monitor := NewMonitor(store)

	event := events.Event{
		EventID: "ev-6",
		Type:    events.MoneyWithdrawn,
		Data: map[string]any{
			"accountId": "acc-2",
			"ownerId":   "owner-2",
			"amount":    "15000.00",
			"currency":  "EUR",
		},
	}
	if err := monitor.HandleMoneyMoved(context.Background(), event); err != nil {
		t.Fatalf("HandleMoneyMoved: %v", err)
	}
	if len(store.alerts) != 1 || store.alerts[0].AccountID != "acc-2" {
		t.Errorf("unexpected alerts: %+v", store.alerts)
	}
}
