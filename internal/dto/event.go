package dto

import (
	"time"

	"github.com/google/uuid"
)

// TicketTypeRequest is one inventory tier in a create-event request
type TicketTypeRequest struct {
	Name       string  `json:"name" binding:"required,min=1,max=64"`
	Price      float64 `json:"price"`
	TotalSlots int     `json:"total_slots"`
}

// CreateEventRequest represents the request to create a new event
type CreateEventRequest struct {
	Title       string              `json:"title" binding:"required,min=1,max=255"`
	Category    string              `json:"category" binding:"max=64"`
	Location    string              `json:"location" binding:"max=255"`
	Date        *time.Time          `json:"date"`
	Tags        []string            `json:"tags"`
	TicketTypes []TicketTypeRequest `json:"ticket_types"`
}

// Validate validates the CreateEventRequest
func (r *CreateEventRequest) Validate() (bool, string) {
	if r.Title == "" {
		return false, "Event title is required"
	}
	seen := make(map[string]bool, len(r.TicketTypes))
	for _, tt := range r.TicketTypes {
		if tt.Name == "" {
			return false, "Ticket type name is required"
		}
		if seen[tt.Name] {
			return false, "Ticket type names must be unique"
		}
		seen[tt.Name] = true
		if tt.Price < 0 {
			return false, "Ticket price cannot be negative"
		}
		if tt.TotalSlots < 0 {
			return false, "Total slots cannot be negative"
		}
	}
	return true, ""
}

// CreateEventResponse carries the id of a newly created event
type CreateEventResponse struct {
	ID uuid.UUID `json:"id"`
}

// MaxEventListLimit caps a single listing page
const MaxEventListLimit = 100

// EventListFilter represents filters for listing events
type EventListFilter struct {
	Category string `form:"category"`
	Limit    int    `form:"limit"`
}

// SetDefaults clamps the listing limit
func (f *EventListFilter) SetDefaults() {
	if f.Limit <= 0 || f.Limit > MaxEventListLimit {
		f.Limit = MaxEventListLimit
	}
}

// AddReviewRequest represents the request to append a review
type AddReviewRequest struct {
	Comment string `json:"comment" binding:"max=2000"`
	Rating  int    `json:"rating" binding:"required"`
}

// Validate validates the AddReviewRequest
func (r *AddReviewRequest) Validate() (bool, string) {
	if r.Rating < 1 || r.Rating > 5 {
		return false, "Rating must be between 1 and 5"
	}
	return true, ""
}
