package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

type fixedThrottle struct {
	ok   bool
	wait time.Duration
}

func (f fixedThrottle) Admit() (bool, time.Duration) {
	return f.ok, f.wait
}

func withThrottle(t throttle) RouterOption {
	return func(rt *inspectionRouter) {
		rt.throttle = t
	}
}

func TestThrottledVarLookupReturnsRetryHint(t *testing.T) {
	router := newTestRouter(t, WithLogging(false), withThrottle(fixedThrottle{wait: 1500 * time.Millisecond}))

	req := httptest.NewRequest(http.MethodGet, "/api/vars/PORT", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("expected Retry-After 2, got %q", got)
	}

	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Error != "Too many requests" {
		t.Fatalf("unexpected error %q", body.Error)
	}
	if !strings.Contains(body.Details, "staging") || !strings.Contains(body.Details, "retry in 2s") {
		t.Fatalf("expected details to name the environment and wait, got %q", body.Details)
	}
	if !strings.Contains(body.Suggestion, "--rate-limit-rps") {
		t.Fatalf("expected suggestion to point at the rate limit flag, got %q", body.Suggestion)
	}
}

func TestThrottledRequestKeepsRequestID(t *testing.T) {
	router := newTestRouter(t, WithLogging(false), withThrottle(fixedThrottle{}))

	req := httptest.NewRequest(http.MethodGet, "/api/vars", nil)
	req.Header.Set("X-Request-ID", "throttled-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "1" {
		t.Fatalf("expected minimum Retry-After of 1, got %q", got)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "throttled-1" {
		t.Fatalf("expected request id on throttled response, got %q", got)
	}
}

func TestRateLimitBlocksSecondVarLookup(t *testing.T) {
	router := newTestRouter(t, WithLogging(false), WithRateLimit(1, 1))

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/vars/PORT", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("expected first lookup to succeed, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/vars/PORT", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second lookup to be throttled, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected Retry-After 1, got %q", second.Header().Get("Retry-After"))
	}
}

func TestRateLimitZeroDisablesThrottle(t *testing.T) {
	router := newTestRouter(t, WithLogging(false), withThrottle(fixedThrottle{}), WithRateLimit(0, 0))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/env", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 with throttle disabled, got %d", i, rec.Code)
		}
	}
}

func TestTokenBucketAdmit(t *testing.T) {
	now := time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)
	bucket := newTokenBucket(2, 0)
	bucket.now = func() time.Time { return now }

	if ok, _ := bucket.Admit(); !ok {
		t.Fatalf("expected first request to be admitted")
	}

	ok, wait := bucket.Admit()
	if ok {
		t.Fatalf("expected empty bucket to refuse")
	}
	if wait <= 0 || wait > 500*time.Millisecond {
		t.Fatalf("expected wait in (0, 500ms], got %s", wait)
	}

	// A refused request must not consume the next token.
	now = now.Add(500 * time.Millisecond)
	if ok, _ := bucket.Admit(); !ok {
		t.Fatalf("expected request to be admitted once a token is refilled")
	}
}

func TestNewRouterThrottlesByDefault(t *testing.T) {
	handler := NewHandler(newTestRegistry(t))
	router := NewRouter(handler, zaptest.NewLogger(t), WithLogging(false))

	throttled := 0
	for i := 0; i < defaultRateLimitBurst+5; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		if rec.Code == http.StatusTooManyRequests {
			throttled++
		}
	}
	if throttled == 0 {
		t.Fatalf("expected the default bucket to throttle a burst above %d", defaultRateLimitBurst)
	}
}
