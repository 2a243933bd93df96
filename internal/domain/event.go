package domain

import (
	"time"

	"github.com/google/uuid"
)

// Default ticket type attached when an event is created without any
const (
	DefaultTicketTypeName  = "General"
	DefaultTicketTypePrice = 50.0
	DefaultTicketTypeSlots = 100
)

// Event represents a catalog entry with its inventory and reviews
type Event struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Category    string       `json:"category"`
	Location    string       `json:"location"`
	Date        time.Time    `json:"date"`
	Tags        []string     `json:"tags"`
	CreatedBy   string       `json:"created_by"`
	CreatedAt   time.Time    `json:"created_at"`
	TicketTypes []TicketType `json:"ticket_types"`
	Reviews     []Review     `json:"reviews"`
}

// TicketType is one tier of an event's inventory. Sold only ever
// increases, and never past TotalSlots.
type TicketType struct {
	ID         uuid.UUID `json:"id"`
	EventID    uuid.UUID `json:"event_id"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	TotalSlots int       `json:"total_slots"`
	Sold       int       `json:"sold"`
}

// Remaining returns the number of unsold slots
func (t *TicketType) Remaining() int {
	return t.TotalSlots - t.Sold
}

// SoldOut reports whether every slot has been sold
func (t *TicketType) SoldOut() bool {
	return t.Sold >= t.TotalSlots
}

// Review is an append-only comment left on an event
type Review struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"event_id"`
	Username  string    `json:"username"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryRevenue is the aggregated revenue for one event category
type CategoryRevenue struct {
	Category     string  `json:"category"`
	TotalRevenue float64 `json:"total_rev"`
}

// NewEvent builds an event with defaults applied: missing date becomes
// today, missing ticket types become a single default tier.
func NewEvent(title, category, location string, date time.Time, createdBy string, tags []string, ticketTypes []TicketType) *Event {
	if date.IsZero() {
		date = time.Now().UTC().Truncate(24 * time.Hour)
	}

	if tags == nil {
		tags = []string{}
	}

	event := &Event{
		ID:        uuid.New(),
		Title:     title,
		Category:  category,
		Location:  location,
		Date:      date,
		Tags:      tags,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}

	if len(ticketTypes) == 0 {
		ticketTypes = []TicketType{{
			Name:       DefaultTicketTypeName,
			Price:      DefaultTicketTypePrice,
			TotalSlots: DefaultTicketTypeSlots,
		}}
	}

	for i := range ticketTypes {
		ticketTypes[i].ID = uuid.New()
		ticketTypes[i].EventID = event.ID
		ticketTypes[i].Sold = 0
	}
	event.TicketTypes = ticketTypes
	event.Reviews = []Review{}

	return event
}

// NewReview builds a review after validating the rating range
func NewReview(eventID uuid.UUID, username, comment string, rating int) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	return &Review{
		ID:        uuid.New(),
		EventID:   eventID,
		Username:  username,
		Comment:   comment,
		Rating:    rating,
		CreatedAt: time.Now().UTC(),
	}, nil
}
