package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"hirfa/pkg/contracts"
	"hirfa/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

func healthy(context.Context) error { return nil }

func down(context.Context) error { return errors.New("connection refused") }

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		checks     []contracts.HealthCheck
		wantStatus int
		wantDeps   map[string]string
	}{
		{
			name:       "all dependencies up",
			checks:     []contracts.HealthCheck{{Name: "mongo", Check: healthy}, {Name: "redis", Check: healthy}},
			wantStatus: http.StatusOK,
			wantDeps:   map[string]string{"mongo": "ok", "redis": "ok"},
		},
		{
			name:       "redis down",
			checks:     []contracts.HealthCheck{{Name: "mongo", Check: healthy}, {Name: "redis", Check: down}},
			wantStatus: http.StatusServiceUnavailable,
			wantDeps:   map[string]string{"mongo": "ok", "redis": "error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := httprouter.New()
			NewHealthHandler(logger.Discard(), tt.checks...).RegisterRoutes(router)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var resp HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			for name, want := range tt.wantDeps {
				if resp.Dependencies[name] != want {
					t.Errorf("%s = %q, want %q", name, resp.Dependencies[name], want)
				}
			}
		})
	}
}

func TestHealth(t *testing.T) {
	router := httprouter.New()
	NewHealthHandler(logger.Discard(), contracts.HealthCheck{Name: "mongo", Check: down}).RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("liveness should not depend on backing stores, got %d", rec.Code)
	}
}
