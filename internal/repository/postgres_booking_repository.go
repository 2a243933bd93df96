package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jirapat-s/ticketline/internal/domain"
)

// PostgresBookingRepository implements BookingRepository using PostgreSQL
type PostgresBookingRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBookingRepository creates a new PostgresBookingRepository
func NewPostgresBookingRepository(pool *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{pool: pool}
}

// Create inserts a booking
func (r *PostgresBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (id, event_id, username, ticket_type, price, idempotency_key, purchased_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		booking.ID,
		booking.EventID,
		booking.Username,
		booking.TicketType,
		booking.Price,
		booking.IdempotencyKey,
		booking.PurchasedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// GetByIdempotencyKey returns the booking recorded under the key
func (r *PostgresBookingRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Booking, error) {
	query := `
		SELECT id, event_id, username, ticket_type, price, idempotency_key, purchased_at
		FROM bookings
		WHERE idempotency_key = $1`

	booking := &domain.Booking{}
	err := r.pool.QueryRow(ctx, query, key).Scan(
		&booking.ID,
		&booking.EventID,
		&booking.Username,
		&booking.TicketType,
		&booking.Price,
		&booking.IdempotencyKey,
		&booking.PurchasedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return booking, nil
}
