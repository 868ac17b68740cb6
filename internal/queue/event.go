// Package queue carries reservation domain events to interested sinks:
// the live floor-map hub in process and RabbitMQ for other consumers.
package queue

import "time"

const (
	EventReservationCreated   = "reservation.created"
	EventReservationCancelled = "reservation.cancelled"
	EventStatusChanged        = "resource.status_changed"
)

// DefaultQueueName is the durable queue events are published to.
const DefaultQueueName = "linkup.events"

type Event struct {
	Type         string     `json:"type"`
	ResourceType string     `json:"resource_type"`
	ResourceID   int64      `json:"resource_id"`
	Status       string     `json:"status,omitempty"`
	UserID       int64      `json:"user_id,omitempty"`
	Start        *time.Time `json:"start,omitempty"`
	End          *time.Time `json:"end,omitempty"`
	OccurredAt   time.Time  `json:"occurred_at"`
}
