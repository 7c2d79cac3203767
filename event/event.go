// Package event in-process event dispatching
package event

import "time"

// Event event interface
type Event interface {
	// Name event name (unique identifier, such as "nacos.config.received")
	Name() string
}

// BaseEvent base type for events, embedded into concrete event structs
type BaseEvent struct {
	name       string
	occurredAt time.Time
}

// NewEvent creates a base event stamped with the current time
func NewEvent(name string) BaseEvent {
	return BaseEvent{
		name:       name,
		occurredAt: time.Now(),
	}
}

// Name returns the event name
func (e BaseEvent) Name() string {
	return e.name
}

// OccurredAt returns the event occurrence time
func (e BaseEvent) OccurredAt() time.Time {
	return e.occurredAt
}
