package domain

import (
	"time"

	"github.com/google/uuid"
)

// Booking is an immutable record of one purchased slot
type Booking struct {
	ID             uuid.UUID `json:"id"`
	EventID        uuid.UUID `json:"event_id"`
	Username       string    `json:"username"`
	TicketType     string    `json:"ticket_type"`
	Price          float64   `json:"price"`
	IdempotencyKey *string   `json:"idempotency_key,omitempty"`
	PurchasedAt    time.Time `json:"purchased_at"`
}

// NewBooking builds a booking for a consumed slot
func NewBooking(eventID uuid.UUID, username, ticketType string, price float64, idempotencyKey string) *Booking {
	b := &Booking{
		ID:          uuid.New(),
		EventID:     eventID,
		Username:    username,
		TicketType:  ticketType,
		Price:       price,
		PurchasedAt: time.Now().UTC(),
	}
	if idempotencyKey != "" {
		b.IdempotencyKey = &idempotencyKey
	}
	return b
}

// BookingEventType identifies the kind of booking event published
type BookingEventType string

const (
	// BookingEventCreated is published after a successful purchase
	BookingEventCreated BookingEventType = "booking.created"
	// BookingEventWriteFailed is published when a slot was consumed but
	// the booking record could not be written; consumers reconcile these
	BookingEventWriteFailed BookingEventType = "booking.write_failed"
)

// BookingEvent is the message published to the booking events topic
type BookingEvent struct {
	EventID    string           `json:"event_id"`
	Type       BookingEventType `json:"type"`
	Booking    *Booking         `json:"booking"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// NewBookingEvent builds a booking event envelope
func NewBookingEvent(eventType BookingEventType, booking *Booking, eventID string) *BookingEvent {
	return &BookingEvent{
		EventID:    eventID,
		Type:       eventType,
		Booking:    booking,
		OccurredAt: time.Now().UTC(),
	}
}

// Key returns the partition key; bookings for the same catalog event
// stay ordered on one partition.
func (e *BookingEvent) Key() string {
	if e.Booking == nil {
		return e.EventID
	}
	return e.Booking.EventID.String()
}
