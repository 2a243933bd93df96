package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jirapat-s/ticketline/internal/domain"
	"github.com/jirapat-s/ticketline/internal/dto"
)

// PostgresEventRepository implements EventRepository using PostgreSQL
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

// Create inserts the event and its ticket types in one transaction
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	eventQuery := `
		INSERT INTO events (id, title, category, location, date, tags, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = tx.Exec(ctx, eventQuery,
		event.ID, event.Title, event.Category, event.Location,
		event.Date, event.Tags, event.CreatedBy, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	ticketQuery := `
		INSERT INTO ticket_types (id, event_id, name, price, total_slots, sold)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for _, tt := range event.TicketTypes {
		if _, err := tx.Exec(ctx, ticketQuery, tt.ID, tt.EventID, tt.Name, tt.Price, tt.TotalSlots, tt.Sold); err != nil {
			return fmt.Errorf("failed to insert ticket type %s: %w", tt.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetByID returns the event with ticket types and reviews loaded
func (r *PostgresEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	query := `
		SELECT id, title, category, location, date, tags, created_by, created_at
		FROM events
		WHERE id = $1`

	event := &domain.Event{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.Title,
		&event.Category,
		&event.Location,
		&event.Date,
		&event.Tags,
		&event.CreatedBy,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if err := r.loadTicketTypes(ctx, event); err != nil {
		return nil, err
	}
	if err := r.loadReviews(ctx, event); err != nil {
		return nil, err
	}

	return event, nil
}

// List returns events newest first, optionally filtered by category
func (r *PostgresEventRepository) List(ctx context.Context, filter *dto.EventListFilter) ([]*domain.Event, error) {
	query := `
		SELECT id, title, category, location, date, tags, created_by, created_at
		FROM events`

	args := []interface{}{}
	if filter.Category != "" {
		query += ` WHERE category = $1`
		args = append(args, filter.Category)
	}
	query += fmt.Sprintf(` ORDER BY date DESC LIMIT %d`, filter.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []*domain.Event{}
	for rows.Next() {
		event := &domain.Event{}
		err := rows.Scan(
			&event.ID,
			&event.Title,
			&event.Category,
			&event.Location,
			&event.Date,
			&event.Tags,
			&event.CreatedBy,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	for _, event := range events {
		if err := r.loadTicketTypes(ctx, event); err != nil {
			return nil, err
		}
		if err := r.loadReviews(ctx, event); err != nil {
			return nil, err
		}
	}

	return events, nil
}

// Delete removes the event unless bookings reference it. The NOT EXISTS
// guard and the delete are one statement, so a concurrent purchase
// cannot slip a booking in between check and delete.
func (r *PostgresEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM events
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM bookings WHERE bookings.event_id = $1)`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Distinguish missing event from blocked delete
		var exists bool
		err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check event existence: %w", err)
		}
		if exists {
			return domain.ErrEventHasBookings
		}
		return domain.ErrEventNotFound
	}

	return nil
}

// AddReview appends a review to an existing event
func (r *PostgresEventRepository) AddReview(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, event_id, username, comment, rating, created_at)
		SELECT $1, $2, $3, $4, $5, $6
		WHERE EXISTS (SELECT 1 FROM events WHERE id = $2)`

	tag, err := r.pool.Exec(ctx, query,
		review.ID, review.EventID, review.Username, review.Comment, review.Rating, review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add review: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}

	return nil
}

// RevenueByCategory aggregates revenue per event category. Revenue is
// computed from the sold counters, so slots consumed by a purchase whose
// booking write failed still count until reconciliation.
func (r *PostgresEventRepository) RevenueByCategory(ctx context.Context) ([]*domain.CategoryRevenue, error) {
	query := `
		SELECT e.category, COALESCE(SUM(tt.price * tt.sold), 0) AS total_rev
		FROM ticket_types tt
		JOIN events e ON e.id = tt.event_id
		GROUP BY e.category
		ORDER BY total_rev DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}
	defer rows.Close()

	stats := []*domain.CategoryRevenue{}
	for rows.Next() {
		s := &domain.CategoryRevenue{}
		if err := rows.Scan(&s.Category, &s.TotalRevenue); err != nil {
			return nil, fmt.Errorf("failed to scan revenue row: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate revenue rows: %w", err)
	}

	return stats, nil
}

func (r *PostgresEventRepository) loadTicketTypes(ctx context.Context, event *domain.Event) error {
	query := `
		SELECT id, event_id, name, price, total_slots, sold
		FROM ticket_types
		WHERE event_id = $1
		ORDER BY name`

	rows, err := r.pool.Query(ctx, query, event.ID)
	if err != nil {
		return fmt.Errorf("failed to load ticket types: %w", err)
	}
	defer rows.Close()

	event.TicketTypes = []domain.TicketType{}
	for rows.Next() {
		tt := domain.TicketType{}
		if err := rows.Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.Price, &tt.TotalSlots, &tt.Sold); err != nil {
			return fmt.Errorf("failed to scan ticket type: %w", err)
		}
		event.TicketTypes = append(event.TicketTypes, tt)
	}
	return rows.Err()
}

func (r *PostgresEventRepository) loadReviews(ctx context.Context, event *domain.Event) error {
	query := `
		SELECT id, event_id, username, comment, rating, created_at
		FROM reviews
		WHERE event_id = $1
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, event.ID)
	if err != nil {
		return fmt.Errorf("failed to load reviews: %w", err)
	}
	defer rows.Close()

	event.Reviews = []domain.Review{}
	for rows.Next() {
		rv := domain.Review{}
		if err := rows.Scan(&rv.ID, &rv.EventID, &rv.Username, &rv.Comment, &rv.Rating, &rv.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan review: %w", err)
		}
		event.Reviews = append(event.Reviews, rv)
	}
	return rows.Err()
}
