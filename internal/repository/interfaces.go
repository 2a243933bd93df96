package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/jirapat-s/ticketline/internal/domain"
	"github.com/jirapat-s/ticketline/internal/dto"
)

// UserRepository persists user accounts
type UserRepository interface {
	// Create inserts a new user; returns domain.ErrUserAlreadyExists on
	// a duplicate username
	Create(ctx context.Context, user *domain.User) error

	// GetByUsername returns the user or domain.ErrUserNotFound
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// EventRepository persists events, ticket types and reviews
type EventRepository interface {
	// Create inserts the event and its ticket types in one transaction
	Create(ctx context.Context, event *domain.Event) error

	// GetByID returns the event with ticket types and reviews loaded,
	// or domain.ErrEventNotFound
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)

	// List returns events newest first, optionally filtered by category
	List(ctx context.Context, filter *dto.EventListFilter) ([]*domain.Event, error)

	// Delete removes the event unless bookings reference it. Returns
	// domain.ErrEventHasBookings when blocked, domain.ErrEventNotFound
	// when the event does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddReview appends a review to an existing event
	AddReview(ctx context.Context, review *domain.Review) error

	// RevenueByCategory aggregates booking revenue per event category,
	// highest first
	RevenueByCategory(ctx context.Context) ([]*domain.CategoryRevenue, error)
}

// InventoryRepository owns the sold counters on ticket types
type InventoryRepository interface {
	// ConsumeSlot atomically increments sold for the named ticket type
	// if capacity remains. Returns the tier's price on success,
	// domain.ErrSoldOut when full, domain.ErrTicketTypeNotFound or
	// domain.ErrEventNotFound when the target does not exist.
	ConsumeSlot(ctx context.Context, eventID uuid.UUID, ticketType string) (float64, error)
}

// BookingRepository persists immutable purchase records
type BookingRepository interface {
	// Create inserts a booking
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByIdempotencyKey returns the booking recorded under the key,
	// or domain.ErrBookingNotFound
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Booking, error)
}
