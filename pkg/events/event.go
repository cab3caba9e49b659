package events

import (
	"context"
	"time"
)

// Event types published to the external bus.
const (
	RestaurantCreated = "RESTAURANT_CREATED"
	RestaurantDeleted = "RESTAURANT_DELETED"
	DishCreated       = "DISH_CREATED"
	DishUpdated       = "DISH_UPDATED"
	DishDeleted       = "DISH_DELETED"
	MenuIngested      = "MENU_INGESTED"
	ChatTurnCompleted = "CHAT_TURN_COMPLETED"
	UserSignedUp      = "USER_SIGNED_UP"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DISH_CREATED").
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

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now().UTC()}
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

// Publisher delivers events to whoever listens outside the process.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. Used when no bus is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event Event) error {
	return nil
}

// RecordingPublisher keeps published events in memory.
type RecordingPublisher struct {
	Events []Event
}

func (r *RecordingPublisher) Publish(ctx context.Context, event Event) error {
	r.Events = append(r.Events, event)
	return nil
}

func (r *RecordingPublisher) Types() []string {
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.EventType())
	}
	return out
}
