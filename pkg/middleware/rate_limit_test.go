package middleware

import (
	"hirfa/pkg/logger"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientRateLimiter_Allow(t *testing.T) {
	log := logger.Discard()
	limiter := NewClientRateLimiter(2, time.Minute, nil, log)
	defer limiter.Stop()

	if !limiter.Allow("10.0.0.1") || !limiter.Allow("10.0.0.1") {
		t.Fatal("first two requests should pass")
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatal("third request in window should be rejected")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Fatal("other clients are independent")
	}
	if !limiter.Allow("") {
		t.Fatal("empty key is never limited")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	log := logger.Discard()
	limiter := NewClientRateLimiter(1, time.Minute, nil, log)
	defer limiter.Stop()

	handler := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/craftsmen", nil)
		req.Header.Set("X-Forwarded-For", "196.200.1.1, 10.0.0.1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 429]", codes)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "41.250.3.4:51234"
	if got := ClientIP(req); got != "41.250.3.4" {
		t.Errorf("ClientIP = %q", got)
	}
}
