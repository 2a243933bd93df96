package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// fakeRedis is a map-backed RedisClient
type fakeRedis struct {
	mu      sync.Mutex
	data    map[string]string
	failing bool
	failSet bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failing {
		return redis.NewStringResult("", errors.New("connection refused"))
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failing || f.failSet {
		return redis.NewStatusResult("", errors.New("connection refused"))
	}
	f.data[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failing {
		return redis.NewBoolResult(false, errors.New("connection refused"))
	}
	if _, exists := f.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	deleted := int64(0)
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			delete(f.data, key)
			deleted++
		}
	}
	return redis.NewIntResult(deleted, nil)
}

func setupIdempotentRouter(client RedisClient, handlerCalls *int) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ContextKeyUsername, "alice")
		c.Next()
	})
	router.Use(Idempotency(DefaultIdempotencyConfig(client)))
	router.POST("/purchase", func(c *gin.Context) {
		*handlerCalls++
		c.JSON(http.StatusOK, gin.H{"status": "purchased", "call": *handlerCalls})
	})
	return router
}

func postPurchase(router *gin.Engine, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/purchase", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency_NoHeaderPassesThrough(t *testing.T) {
	client := newFakeRedis()
	calls := 0
	router := setupIdempotentRouter(client, &calls)

	postPurchase(router, "", `{"ticket_type":"General"}`)
	postPurchase(router, "", `{"ticket_type":"General"}`)

	if calls != 2 {
		t.Errorf("handler calls = %d, want 2", calls)
	}
	if len(client.data) != 0 {
		t.Errorf("redis keys = %d, want 0", len(client.data))
	}
}

func TestIdempotency_ReplaysCachedResponse(t *testing.T) {
	client := newFakeRedis()
	calls := 0
	router := setupIdempotentRouter(client, &calls)

	first := postPurchase(router, "key-1", `{"ticket_type":"General"}`)
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d", first.Code)
	}

	second := postPurchase(router, "key-1", `{"ticket_type":"General"}`)
	if second.Code != http.StatusOK {
		t.Fatalf("second request status = %d", second.Code)
	}

	if calls != 1 {
		t.Errorf("handler calls = %d, want 1 (replay must not re-run the handler)", calls)
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("replayed body differs: %q vs %q", first.Body.String(), second.Body.String())
	}
}

func TestIdempotency_KeyReuseWithDifferentBody(t *testing.T) {
	client := newFakeRedis()
	calls := 0
	router := setupIdempotentRouter(client, &calls)

	postPurchase(router, "key-1", `{"ticket_type":"General"}`)

	w := postPurchase(router, "key-1", `{"ticket_type":"VIP"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
}

func TestIdempotency_InFlightKeyConflicts(t *testing.T) {
	client := newFakeRedis()
	calls := 0
	router := setupIdempotentRouter(client, &calls)

	// Simulate an in-flight request by planting a processing record with
	// the hash the middleware would compute
	probe := postPurchase(router, "probe", `{"ticket_type":"General"}`)
	if probe.Code != http.StatusOK {
		t.Fatalf("probe status = %d", probe.Code)
	}
	var stored IdempotencyRecord
	if err := json.Unmarshal([]byte(client.data[IdempotencyKeyPrefix+"probe"]), &stored); err != nil {
		t.Fatalf("unmarshal stored record: %v", err)
	}

	record := IdempotencyRecord{
		Key:         "key-1",
		Status:      StatusProcessing,
		RequestHash: stored.RequestHash,
		CreatedAt:   time.Now(),
	}
	data, _ := json.Marshal(record)
	client.data[IdempotencyKeyPrefix+"key-1"] = string(data)

	w := postPurchase(router, "key-1", `{"ticket_type":"General"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1 (probe only)", calls)
	}
}

func TestIdempotency_FailsOpenWhenRedisDown(t *testing.T) {
	client := newFakeRedis()
	client.failing = true
	calls := 0
	router := setupIdempotentRouter(client, &calls)

	w := postPurchase(router, "key-1", `{"ticket_type":"General"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
}

func TestIdempotency_LostCompletedRecordLeavesKeyInFlight(t *testing.T) {
	client := newFakeRedis()
	client.failSet = true
	calls := 0
	router := setupIdempotentRouter(client, &calls)

	w := postPurchase(router, "key-1", `{"ticket_type":"General"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}

	// The completed record never landed, so the key still holds the
	// processing claim set via SetNX.
	var record IdempotencyRecord
	if err := json.Unmarshal([]byte(client.data[IdempotencyKeyPrefix+"key-1"]), &record); err != nil {
		t.Fatalf("unmarshal stored record: %v", err)
	}
	if record.Status != StatusProcessing {
		t.Errorf("stored status = %s, want %s", record.Status, StatusProcessing)
	}
}

func TestGetIdempotencyKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := GetIdempotencyKey(c); ok {
		t.Error("expected no key on fresh context")
	}

	c.Set(ContextKeyIdempotencyKey, "key-1")
	key, ok := GetIdempotencyKey(c)
	if !ok || key != "key-1" {
		t.Errorf("GetIdempotencyKey() = %q, %v", key, ok)
	}
}
