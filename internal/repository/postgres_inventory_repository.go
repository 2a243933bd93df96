package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jirapat-s/ticketline/internal/domain"
)

// PostgresInventoryRepository implements InventoryRepository using PostgreSQL
type PostgresInventoryRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresInventoryRepository creates a new PostgresInventoryRepository
func NewPostgresInventoryRepository(pool *pgxpool.Pool) *PostgresInventoryRepository {
	return &PostgresInventoryRepository{pool: pool}
}

// ConsumeSlot atomically claims one slot of the named ticket type. The
// sold < total_slots predicate inside the UPDATE is the only
// serialization point; concurrent callers past capacity simply match
// zero rows. The counter is never read first and written back.
func (r *PostgresInventoryRepository) ConsumeSlot(ctx context.Context, eventID uuid.UUID, ticketType string) (float64, error) {
	query := `
		UPDATE ticket_types
		SET sold = sold + 1
		WHERE event_id = $1 AND name = $2 AND sold < total_slots
		RETURNING price`

	var price float64
	err := r.pool.QueryRow(ctx, query, eventID, ticketType).Scan(&price)
	if err == nil {
		return price, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to consume slot: %w", err)
	}

	// Zero rows matched: sold out, unknown ticket type, or unknown event
	var exists bool
	err = r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM ticket_types WHERE event_id = $1 AND name = $2)`,
		eventID, ticketType,
	).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to check ticket type existence: %w", err)
	}
	if exists {
		return 0, domain.ErrSoldOut
	}

	err = r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`,
		eventID,
	).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to check event existence: %w", err)
	}
	if exists {
		return 0, domain.ErrTicketTypeNotFound
	}

	return 0, domain.ErrEventNotFound
}
