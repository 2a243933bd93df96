package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/jirapat-s/ticketline/internal/domain"
	"github.com/jirapat-s/ticketline/internal/repository"
	"github.com/jirapat-s/ticketline/pkg/logger"
	"github.com/jirapat-s/ticketline/pkg/retry"
	"github.com/jirapat-s/ticketline/pkg/telemetry"
)

// PurchaseService defines the interface for buying tickets
type PurchaseService interface {
	// Purchase claims one slot of the ticket type and records a booking.
	// A repeated idempotencyKey returns the original booking without
	// consuming another slot.
	Purchase(ctx context.Context, eventID uuid.UUID, username, ticketType, idempotencyKey string) (*domain.Booking, error)
}

// PurchaseServiceConfig holds configuration for PurchaseService
type PurchaseServiceConfig struct {
	// BookingWriteRetry bounds retries of the booking insert after a
	// slot has already been consumed
	BookingWriteRetry *retry.Config
}

// purchaseService implements PurchaseService
type purchaseService struct {
	inventoryRepo repository.InventoryRepository
	bookingRepo   repository.BookingRepository
	publisher     EventPublisher
	retrier       *retry.Retrier
	log           *logger.Logger
}

// NewPurchaseService creates a new PurchaseService
func NewPurchaseService(
	inventoryRepo repository.InventoryRepository,
	bookingRepo repository.BookingRepository,
	publisher EventPublisher,
	config *PurchaseServiceConfig,
) PurchaseService {
	if config == nil {
		config = &PurchaseServiceConfig{}
	}
	if config.BookingWriteRetry == nil {
		config.BookingWriteRetry = retry.DefaultConfig()
	}
	if publisher == nil {
		publisher = NewNoOpEventPublisher()
	}
	return &purchaseService{
		inventoryRepo: inventoryRepo,
		bookingRepo:   bookingRepo,
		publisher:     publisher,
		retrier:       retry.New(config.BookingWriteRetry),
		log:           logger.Get(),
	}
}

// Purchase claims one slot and records the booking
func (s *purchaseService) Purchase(ctx context.Context, eventID uuid.UUID, username, ticketType, idempotencyKey string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.purchase.purchase")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID.String()),
		attribute.String("ticket_type", ticketType),
	)

	// A known key means this request already went through
	if idempotencyKey != "" {
		existing, err := s.bookingRepo.GetByIdempotencyKey(ctx, idempotencyKey)
		if err == nil {
			span.SetAttributes(attribute.Bool("idempotent_replay", true))
			span.SetStatus(codes.Ok, "")
			return existing, nil
		}
		if !errors.Is(err, domain.ErrBookingNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	price, err := s.inventoryRepo.ConsumeSlot(ctx, eventID, ticketType)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	booking := domain.NewBooking(eventID, username, ticketType, price, idempotencyKey)

	// The slot is already consumed. The insert is retried because
	// giving up here loses the purchase record while the counter keeps
	// its increment; the counter is never decremented to compensate.
	result := s.retrier.DoWithCallback(ctx, func(ctx context.Context) error {
		return s.bookingRepo.Create(ctx, booking)
	}, func(attempt int, err error, nextInterval time.Duration) {
		s.log.Warn("booking write failed, retrying",
			zap.String("booking_id", booking.ID.String()),
			zap.Int("attempt", attempt),
			zap.Duration("next_interval", nextInterval),
			zap.Error(err),
		)
	})

	if result.Err != nil {
		s.log.Error("booking write failed after slot was consumed, needs reconciliation",
			zap.String("booking_id", booking.ID.String()),
			zap.String("event_id", eventID.String()),
			zap.String("ticket_type", ticketType),
			zap.String("username", username),
			zap.String("trace_id", telemetry.GetTraceID(ctx)),
			zap.Int("attempts", result.Attempts),
			zap.Error(result.LastError),
		)

		if pubErr := s.publisher.PublishBookingWriteFailed(ctx, booking); pubErr != nil {
			s.log.Error("failed to publish reconciliation event",
				zap.String("booking_id", booking.ID.String()),
				zap.Error(pubErr),
			)
		}

		span.RecordError(result.LastError)
		span.SetStatus(codes.Error, "booking write failed")
		return nil, domain.ErrPurchaseFailed
	}

	if pubErr := s.publisher.PublishBookingCreated(ctx, booking); pubErr != nil {
		// Publishing is best effort; the purchase itself succeeded
		s.log.Warn("failed to publish booking created event",
			zap.String("booking_id", booking.ID.String()),
			zap.Error(pubErr),
		)
	}

	span.SetAttributes(attribute.String("booking_id", booking.ID.String()))
	span.SetStatus(codes.Ok, "")
	return booking, nil
}
