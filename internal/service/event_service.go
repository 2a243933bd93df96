package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jirapat-s/ticketline/internal/domain"
	"github.com/jirapat-s/ticketline/internal/dto"
	"github.com/jirapat-s/ticketline/internal/repository"
	"github.com/jirapat-s/ticketline/pkg/telemetry"
)

// EventService defines the interface for catalog operations
type EventService interface {
	// CreateEvent creates an event with defaults applied
	CreateEvent(ctx context.Context, req *dto.CreateEventRequest, createdBy string) (*domain.Event, error)
	// GetEvent returns one event with inventory and reviews
	GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	// ListEvents returns events newest first
	ListEvents(ctx context.Context, filter *dto.EventListFilter) ([]*domain.Event, error)
	// DeleteEvent removes an event unless bookings reference it
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	// AddReview appends a review authored by the token subject
	AddReview(ctx context.Context, eventID uuid.UUID, username string, req *dto.AddReviewRequest) error
	// RevenueByCategory aggregates booking revenue per category
	RevenueByCategory(ctx context.Context) ([]*domain.CategoryRevenue, error)
}

// eventService implements EventService
type eventService struct {
	eventRepo repository.EventRepository
}

// NewEventService creates a new EventService
func NewEventService(eventRepo repository.EventRepository) EventService {
	return &eventService{eventRepo: eventRepo}
}

// CreateEvent creates an event with defaults applied
func (s *eventService) CreateEvent(ctx context.Context, req *dto.CreateEventRequest, createdBy string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create")
	defer span.End()

	if req.Title == "" {
		span.SetStatus(codes.Error, "event title required")
		return nil, domain.ErrInvalidEventTitle
	}

	ticketTypes := make([]domain.TicketType, 0, len(req.TicketTypes))
	for _, tt := range req.TicketTypes {
		ticketTypes = append(ticketTypes, domain.TicketType{
			Name:       tt.Name,
			Price:      tt.Price,
			TotalSlots: tt.TotalSlots,
		})
	}

	var date time.Time
	if req.Date != nil {
		date = *req.Date
	}
	event := domain.NewEvent(req.Title, req.Category, req.Location, date, createdBy, req.Tags, ticketTypes)

	if err := s.eventRepo.Create(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("event_id", event.ID.String()))
	span.SetStatus(codes.Ok, "")
	return event, nil
}

// GetEvent returns one event with inventory and reviews
func (s *eventService) GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id.String()))

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}

// ListEvents returns events newest first
func (s *eventService) ListEvents(ctx context.Context, filter *dto.EventListFilter) ([]*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.list")
	defer span.End()

	filter.SetDefaults()

	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	return events, nil
}

// DeleteEvent removes an event unless bookings reference it
func (s *eventService) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	ctx, span := telemetry.StartSpan(ctx, "service.event.delete")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id.String()))

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// AddReview appends a review authored by the token subject
func (s *eventService) AddReview(ctx context.Context, eventID uuid.UUID, username string, req *dto.AddReviewRequest) error {
	ctx, span := telemetry.StartSpan(ctx, "service.event.add_review")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID.String()),
		attribute.String("username", username),
	)

	review, err := domain.NewReview(eventID, username, req.Comment, req.Rating)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := s.eventRepo.AddReview(ctx, review); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// RevenueByCategory aggregates booking revenue per category
func (s *eventService) RevenueByCategory(ctx context.Context) ([]*domain.CategoryRevenue, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.revenue_by_category")
	defer span.End()

	stats, err := s.eventRepo.RevenueByCategory(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return stats, nil
}
