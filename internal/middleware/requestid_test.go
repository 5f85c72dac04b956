package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/caja", nil)

	RequestID(next).ServeHTTP(w, r)

	if seen == "" {
		t.Fatalf("request id must be generated")
	}
	if got := w.Header().Get("X-Request-ID"); got != seen {
		t.Fatalf("header id %q != context id %q", got, seen)
	}
}

func TestRequestID_KeepsClientProvided(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := RequestIDFromContext(r.Context()); got != "client-id-1" {
			t.Fatalf("request id = %q, want client-id-1", got)
		}
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/caja", nil)
	r.Header.Set("X-Request-ID", "client-id-1")

	RequestID(next).ServeHTTP(w, r)

	if got := w.Header().Get("X-Request-ID"); got != "client-id-1" {
		t.Fatalf("header = %q, want client-id-1", got)
	}
}
