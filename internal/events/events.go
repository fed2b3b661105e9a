// Package events carries domain events between the console and other
// services over RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
)

// Routing keys published on the topic exchange
const (
	KeyOrderCreated       = "order.created"
	KeyOrderUpdated       = "order.updated"
	KeyOrderStatusChanged = "order.status_changed"
	KeyCheckoutPaid       = "checkout.paid"
	KeyTableChanged       = "table.status_changed"

	// FloorBinding selects inbound table requests, e.g. floor.table.billing
	FloorBinding = "floor.#"
	// SourceBroker marks table events that arrived from the broker
	SourceBroker = "broker"
)

var ErrInvalidEvent = errors.New("invalid table event")

// Publisher sends an event under a routing key
type Publisher interface {
	Publish(ctx context.Context, key string, payload any) error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

// Envelope is the JSON body of every published message
type Envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

func encode(key string, payload any, at time.Time) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", key, err)
	}
	return json.Marshal(Envelope{Type: key, OccurredAt: at.UTC(), Data: data})
}

// decodeTableEvent accepts either an Envelope or a bare TableEvent
func decodeTableEvent(body []byte, now time.Time) (models.TableEvent, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err == nil && len(env.Data) > 0 {
		body = env.Data
	}

	var ev models.TableEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return models.TableEvent{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if ev.TableID == "" || !ev.Status.Valid() {
		return models.TableEvent{}, ErrInvalidEvent
	}
	if ev.Source == "" {
		ev.Source = SourceBroker
	}
	if ev.At.IsZero() {
		ev.At = now
	}
	return ev, nil
}
