package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/meridianprocure/storefront-backend/pkg/errors"
)

type fakeLimiter struct {
	mu     sync.Mutex
	counts map[string]int64
	limit  int64
	err    error
}

func newFakeLimiter(limit int64) *fakeLimiter {
	return &fakeLimiter{counts: map[string]int64{}, limit: limit}
}

func (f *fakeLimiter) FixedWindowAllow(_ context.Context, scope string, _ int64, _ time.Duration) (bool, int64, error) {
	if f.err != nil {
		return false, 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[scope]++
	return f.counts[scope] <= f.limit, f.counts[scope], nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitByIP_AllowsUnderLimit(t *testing.T) {
	handler := RateLimitByIP(newFakeLimiter(2), "quotes", 2, time.Minute, nil)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", nil)
	req.RemoteAddr = "1.2.3.4:5678"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRateLimitByIP_LimitTriggers(t *testing.T) {
	handler := RateLimitByIP(newFakeLimiter(2), "quotes", 2, time.Minute, nil)(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", nil)
		req.RemoteAddr = "1.2.3.4:5678"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if i < 2 && rec.Code != http.StatusOK {
			t.Fatalf("expected success before limit, got %d", rec.Code)
		}
		if i == 2 {
			if rec.Code != http.StatusTooManyRequests {
				t.Fatalf("expected 429, got %d", rec.Code)
			}
			var payload struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
				t.Fatalf("decode error: %v", err)
			}
			if payload.Error.Code != string(pkgerrors.CodeRateLimit) {
				t.Fatalf("unexpected code: %s", payload.Error.Code)
			}
		}
	}
}

func TestRateLimitByIP_SeparateClientsSeparateWindows(t *testing.T) {
	handler := RateLimitByIP(newFakeLimiter(1), "quotes", 1, time.Minute, nil)(okHandler())

	first := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", nil)
	first.RemoteAddr = "1.2.3.4:5678"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for first client, got %d", rec.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", nil)
	second.RemoteAddr = "9.8.7.6:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for second client, got %d", rec.Code)
	}
}

func TestRateLimitByIP_ForwardedForWins(t *testing.T) {
	limiter := newFakeLimiter(1)
	handler := RateLimitByIP(limiter, "quotes", 1, time.Minute, nil)(okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", nil)
		req.RemoteAddr = "10.0.0.1:1111"
		req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if i == 1 && rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429 for repeated forwarded client, got %d", rec.Code)
		}
	}

	if _, ok := limiter.counts["quotes:203.0.113.9"]; !ok {
		t.Fatalf("expected limiter keyed by forwarded ip, got %v", limiter.counts)
	}
}

func TestRateLimitByIP_FailsOpenOnLimiterError(t *testing.T) {
	limiter := newFakeLimiter(0)
	limiter.err = errors.New("redis down")
	handler := RateLimitByIP(limiter, "quotes", 1, time.Minute, nil)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", nil)
	req.RemoteAddr = "1.2.3.4:5678"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("limiter outage must not block requests, got %d", rec.Code)
	}
}
