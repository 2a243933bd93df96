package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jirapat-s/ticketline/internal/domain"
	"github.com/jirapat-s/ticketline/pkg/retry"
)

// memInventory mimics the conditional increment semantics of the SQL
// UPDATE: check capacity and increment under one lock.
type memInventory struct {
	mu      sync.Mutex
	eventID uuid.UUID
	tiers   map[string]*memTier
}

type memTier struct {
	price      float64
	totalSlots int
	sold       int
}

func newMemInventory(eventID uuid.UUID) *memInventory {
	return &memInventory{eventID: eventID, tiers: map[string]*memTier{}}
}

func (m *memInventory) addTier(name string, price float64, slots int) {
	m.tiers[name] = &memTier{price: price, totalSlots: slots}
}

func (m *memInventory) ConsumeSlot(ctx context.Context, eventID uuid.UUID, ticketType string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if eventID != m.eventID {
		return 0, domain.ErrEventNotFound
	}
	tier, ok := m.tiers[ticketType]
	if !ok {
		return 0, domain.ErrTicketTypeNotFound
	}
	if tier.sold >= tier.totalSlots {
		return 0, domain.ErrSoldOut
	}
	tier.sold++
	return tier.price, nil
}

func (m *memInventory) soldCount(ticketType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tiers[ticketType].sold
}

// memBookings stores bookings in memory with optional failure injection
type memBookings struct {
	mu         sync.Mutex
	bookings   map[uuid.UUID]*domain.Booking
	byIdemKey  map[string]*domain.Booking
	failAlways bool
	failFirst  int
	attempts   int
}

func newMemBookings() *memBookings {
	return &memBookings{
		bookings:  map[uuid.UUID]*domain.Booking{},
		byIdemKey: map[string]*domain.Booking{},
	}
}

func (m *memBookings) Create(ctx context.Context, booking *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts++
	if m.failAlways || m.attempts <= m.failFirst {
		return errors.New("connection refused")
	}

	m.bookings[booking.ID] = booking
	if booking.IdempotencyKey != nil {
		m.byIdemKey[*booking.IdempotencyKey] = booking
	}
	return nil
}

func (m *memBookings) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b, ok := m.byIdemKey[key]; ok {
		return b, nil
	}
	return nil, domain.ErrBookingNotFound
}

func (m *memBookings) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

// countingPublisher records how many events of each type were published
type countingPublisher struct {
	mu          sync.Mutex
	created     int
	writeFailed int
}

func (p *countingPublisher) PublishBookingCreated(ctx context.Context, booking *domain.Booking) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created++
	return nil
}

func (p *countingPublisher) PublishBookingWriteFailed(ctx context.Context, booking *domain.Booking) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeFailed++
	return nil
}

func (p *countingPublisher) Close() error { return nil }

func fastRetryConfig() *PurchaseServiceConfig {
	return &PurchaseServiceConfig{
		BookingWriteRetry: &retry.Config{
			MaxRetries:      2,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
			Multiplier:      2.0,
			JitterFactor:    0,
		},
	}
}

func TestPurchase_Success(t *testing.T) {
	eventID := uuid.New()
	inventory := newMemInventory(eventID)
	inventory.addTier("General", 50, 10)
	bookings := newMemBookings()
	publisher := &countingPublisher{}

	svc := NewPurchaseService(inventory, bookings, publisher, fastRetryConfig())

	booking, err := svc.Purchase(context.Background(), eventID, "alice", "General", "")
	if err != nil {
		t.Fatalf("Purchase() error = %v, want nil", err)
	}
	if booking.Username != "alice" {
		t.Errorf("Username = %s, want alice", booking.Username)
	}
	if booking.Price != 50 {
		t.Errorf("Price = %f, want 50", booking.Price)
	}
	if inventory.soldCount("General") != 1 {
		t.Errorf("sold = %d, want 1", inventory.soldCount("General"))
	}
	if bookings.count() != 1 {
		t.Errorf("bookings = %d, want 1", bookings.count())
	}
	if publisher.created != 1 {
		t.Errorf("created events = %d, want 1", publisher.created)
	}
}

func TestPurchase_SoldOut(t *testing.T) {
	eventID := uuid.New()
	inventory := newMemInventory(eventID)
	inventory.addTier("General", 50, 0)
	bookings := newMemBookings()

	svc := NewPurchaseService(inventory, bookings, &countingPublisher{}, fastRetryConfig())

	_, err := svc.Purchase(context.Background(), eventID, "alice", "General", "")
	if !errors.Is(err, domain.ErrSoldOut) {
		t.Fatalf("Purchase() error = %v, want ErrSoldOut", err)
	}
	if bookings.count() != 0 {
		t.Errorf("bookings = %d, want 0", bookings.count())
	}
}

func TestPurchase_TicketTypeNotFound(t *testing.T) {
	eventID := uuid.New()
	inventory := newMemInventory(eventID)
	inventory.addTier("General", 50, 10)

	svc := NewPurchaseService(inventory, newMemBookings(), &countingPublisher{}, fastRetryConfig())

	_, err := svc.Purchase(context.Background(), eventID, "alice", "VIP", "")
	if !errors.Is(err, domain.ErrTicketTypeNotFound) {
		t.Fatalf("Purchase() error = %v, want ErrTicketTypeNotFound", err)
	}
}

func TestPurchase_EventNotFound(t *testing.T) {
	inventory := newMemInventory(uuid.New())
	inventory.addTier("General", 50, 10)

	svc := NewPurchaseService(inventory, newMemBookings(), &countingPublisher{}, fastRetryConfig())

	_, err := svc.Purchase(context.Background(), uuid.New(), "alice", "General", "")
	if !errors.Is(err, domain.ErrEventNotFound) {
		t.Fatalf("Purchase() error = %v, want ErrEventNotFound", err)
	}
}

func TestPurchase_ConcurrentNeverOversells(t *testing.T) {
	const (
		capacity = 10
		buyers   = 50
	)

	eventID := uuid.New()
	inventory := newMemInventory(eventID)
	inventory.addTier("General", 50, capacity)
	bookings := newMemBookings()
	publisher := &countingPublisher{}

	svc := NewPurchaseService(inventory, bookings, publisher, fastRetryConfig())

	var wg sync.WaitGroup
	results := make(chan error, buyers)

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Purchase(context.Background(), eventID, "buyer", "General", "")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, soldOut := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrSoldOut):
			soldOut++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if succeeded != capacity {
		t.Errorf("succeeded = %d, want %d", succeeded, capacity)
	}
	if soldOut != buyers-capacity {
		t.Errorf("sold out = %d, want %d", soldOut, buyers-capacity)
	}
	if inventory.soldCount("General") != capacity {
		t.Errorf("sold = %d, want %d", inventory.soldCount("General"), capacity)
	}
	if bookings.count() != capacity {
		t.Errorf("bookings = %d, want %d", bookings.count(), capacity)
	}
}

func TestPurchase_BookingWriteRetriesThenSucceeds(t *testing.T) {
	eventID := uuid.New()
	inventory := newMemInventory(eventID)
	inventory.addTier("General", 50, 10)
	bookings := newMemBookings()
	bookings.failFirst = 2

	svc := NewPurchaseService(inventory, bookings, &countingPublisher{}, fastRetryConfig())

	booking, err := svc.Purchase(context.Background(), eventID, "alice", "General", "")
	if err != nil {
		t.Fatalf("Purchase() error = %v, want nil", err)
	}
	if booking == nil {
		t.Fatal("Purchase() booking = nil")
	}
	if bookings.attempts != 3 {
		t.Errorf("insert attempts = %d, want 3", bookings.attempts)
	}
}

func TestPurchase_BookingWriteExhausted(t *testing.T) {
	eventID := uuid.New()
	inventory := newMemInventory(eventID)
	inventory.addTier("General", 50, 10)
	bookings := newMemBookings()
	bookings.failAlways = true
	publisher := &countingPublisher{}

	svc := NewPurchaseService(inventory, bookings, publisher, fastRetryConfig())

	_, err := svc.Purchase(context.Background(), eventID, "alice", "General", "")
	if !errors.Is(err, domain.ErrPurchaseFailed) {
		t.Fatalf("Purchase() error = %v, want ErrPurchaseFailed", err)
	}

	// The slot stays consumed; reconciliation happens out of band
	if inventory.soldCount("General") != 1 {
		t.Errorf("sold = %d, want 1 (never rolled back)", inventory.soldCount("General"))
	}
	if publisher.writeFailed != 1 {
		t.Errorf("write failed events = %d, want 1", publisher.writeFailed)
	}
}

func TestPurchase_IdempotentReplay(t *testing.T) {
	eventID := uuid.New()
	inventory := newMemInventory(eventID)
	inventory.addTier("General", 50, 10)
	bookings := newMemBookings()

	svc := NewPurchaseService(inventory, bookings, &countingPublisher{}, fastRetryConfig())

	first, err := svc.Purchase(context.Background(), eventID, "alice", "General", "key-1")
	if err != nil {
		t.Fatalf("first Purchase() error = %v", err)
	}

	second, err := svc.Purchase(context.Background(), eventID, "alice", "General", "key-1")
	if err != nil {
		t.Fatalf("second Purchase() error = %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("replay returned different booking: %s vs %s", first.ID, second.ID)
	}
	if inventory.soldCount("General") != 1 {
		t.Errorf("sold = %d, want 1 (replay must not consume a slot)", inventory.soldCount("General"))
	}
	if bookings.count() != 1 {
		t.Errorf("bookings = %d, want 1", bookings.count())
	}
}
