package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type fakeRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{counts: map[string]int64{}}
}

func (f *fakeRateStore) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, 0, f.err
	}
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func limitedHandler(store RateLimiter, limit int64) http.Handler {
	return RateLimit(limit, time.Minute, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRateLimitBlocksPerActor(t *testing.T) {
	store := newFakeRateStore()
	handler := limitedHandler(store, 2)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/cart/", nil)
		req = req.WithContext(WithActor(req.Context(), "session:a"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if i < 2 && rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i, rec.Code)
		}
		if i == 2 && rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429 got %d", rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/cart/", nil)
	req = req.WithContext(WithActor(req.Context(), "session:b"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("other actor should not be limited, got %d", rec.Code)
	}
}

func TestRateLimitFallsBackToClientIP(t *testing.T) {
	store := newFakeRateStore()
	handler := limitedHandler(store, 5)

	req := httptest.NewRequest(http.MethodGet, "/api/cart/", nil)
	req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if store.counts["ip:9.9.9.9"] != 1 {
		t.Fatalf("expected ip scope counter, got %v", store.counts)
	}
}

func TestRateLimitDisabledAndStoreErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/cart/", nil)

	rec := httptest.NewRecorder()
	limitedHandler(nil, 1).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("nil store should pass through, got %d", rec.Code)
	}

	store := newFakeRateStore()
	store.err = errors.New("redis down")
	rec = httptest.NewRecorder()
	limitedHandler(store, 1).ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}
