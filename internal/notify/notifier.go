package notify

import (
	"context"
	"time"
)

// Event is a customer-facing notification. Delivery is owned by downstream
// consumers of the notifications topic; the API only publishes.
type Event struct {
	Type       string                 `json:"type"`
	UserID     uint                   `json:"userId"`
	Email      string                 `json:"email"`
	OccurredAt time.Time              `json:"occurredAt"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

const (
	EventOrderConfirmation     = "order.confirmation"
	EventOrderStatusUpdate     = "order.status_update"
	EventOrderCancellation     = "order.cancellation"
	EventReservationConfirmed  = "reservation.confirmation"
	EventReservationUpdated    = "reservation.update"
	EventReservationCancelled  = "reservation.cancellation"
)

// Notifier publishes events best-effort. Callers must treat errors as
// log-and-continue; a failed notification never rolls back the write it
// accompanies.
type Notifier interface {
	Publish(ctx context.Context, event Event) error
}

// Noop is used when no broker is configured (local dev, tests).
type Noop struct{}

func (Noop) Publish(ctx context.Context, event Event) error { return nil }
