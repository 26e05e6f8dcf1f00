package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testSecret = "a-secret-long-enough"

func protected(t *testing.T) (http.Handler, *string) {
	t.Helper()
	var seen string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, ok := OwnerFromContext(r.Context())
		if !ok {
			t.Fatal("owner missing from context inside protected handler")
		}
		seen = owner
		w.WriteHeader(http.StatusNoContent)
	})
	return Middleware(testSecret, h), &seen
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	token, err := NewToken(testSecret, "anna", time.Hour)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}

	h, seen := protected(t)
	req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if *seen != "anna" {
		t.Fatalf("owner = %q, want anna", *seen)
	}
}

func TestMiddlewareRejects(t *testing.T) {
	expired, err := NewToken(testSecret, "anna", -time.Minute)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	wrongKey, err := NewToken("another-secret-entirely", "anna", time.Hour)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"malformed header", "Token abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + expired},
		{"wrong signing key", "Bearer " + wrongKey},
	}

	h, _ := protected(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
		})
	}
}
