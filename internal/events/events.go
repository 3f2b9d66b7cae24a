package events

import (
	"context"
	"time"

	"cabbooking/internal/domain"
)

// Event types published on the booking topic.
const (
	TypeBookingCreated       = "booking.created"
	TypeBookingStatusChanged = "booking.status_changed"
	TypeBookingPriceOverride = "booking.price_overridden"
)

// Header keys, shared with every consumer of the topic.
const (
	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderSource    = "source"
	HeaderTimestamp = "timestamp"
)

type BookingEvent struct {
	ID         string               `json:"id"`
	Type       string               `json:"type"`
	BookingID  string               `json:"booking_id"`
	CustomerID string               `json:"customer_id"`
	From       domain.BookingStatus `json:"from,omitempty"`
	Status     domain.BookingStatus `json:"status"`
	Price      float64              `json:"price"`
	ActorID    string               `json:"actor_id,omitempty"`
	OccurredAt time.Time            `json:"occurred_at"`
}

// Publisher delivers booking events. Implementations must be safe for concurrent use.
type Publisher interface {
	PublishBooking(ctx context.Context, ev BookingEvent) error
	Close() error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) PublishBooking(context.Context, BookingEvent) error { return nil }
func (Nop) Close() error { return nil }
