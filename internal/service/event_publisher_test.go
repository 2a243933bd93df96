package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/jirapat-s/ticketline/internal/domain"
)

func TestNewKafkaEventPublisher_ConfigValidation(t *testing.T) {
	ctx := context.Background()

	if _, err := NewKafkaEventPublisher(ctx, nil); err == nil {
		t.Error("expected error for nil config")
	}

	if _, err := NewKafkaEventPublisher(ctx, &EventPublisherConfig{Topic: "booking-events"}); err == nil {
		t.Error("expected error for missing brokers")
	}
}

func TestNoOpEventPublisher(t *testing.T) {
	publisher := NewNoOpEventPublisher()
	ctx := context.Background()
	booking := domain.NewBooking(uuid.New(), "alice", "General", 50, "")

	if err := publisher.PublishBookingCreated(ctx, booking); err != nil {
		t.Errorf("PublishBookingCreated() error = %v", err)
	}
	if err := publisher.PublishBookingWriteFailed(ctx, booking); err != nil {
		t.Errorf("PublishBookingWriteFailed() error = %v", err)
	}
	if err := publisher.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
