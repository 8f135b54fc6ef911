package events

import (
	"context"
	"errors"
	"time"
)

const (
	AlertRead     = "ALERT_READ"
	AlertsAllRead = "ALERTS_ALL_READ"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "ALERT_READ").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Publisher is satisfied by the in-process Bus and by the NATS publisher.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Handler processes one event delivered by a subscription.
type Handler func(ctx context.Context, event Event) error

// MultiPublisher fans an event out to every non-nil publisher and joins the
// errors. One failing sink does not stop the others.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
