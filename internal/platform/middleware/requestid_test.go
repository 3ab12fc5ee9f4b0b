package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

func captureRequestID(t *testing.T, header string) (string, *httptest.ResponseRecorder) {
	t.Helper()
	var captured string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = chimiddleware.GetReqID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(chimiddleware.RequestIDHeader, header)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return captured, resp
}

func TestRequestIDGeneratesUUIDv4(t *testing.T) {
	captured, resp := captureRequestID(t, "")

	if header := resp.Header().Get(chimiddleware.RequestIDHeader); header != captured {
		t.Fatalf("expected response header %q, got %q", captured, header)
	}
	parsed, err := uuid.Parse(captured)
	if err != nil {
		t.Fatalf("request ID %q is not a valid UUID: %v", captured, err)
	}
	if parsed.Version() != 4 {
		t.Fatalf("expected UUIDv4, got version %d", parsed.Version())
	}
}

func TestRequestIDPreservesValidHeader(t *testing.T) {
	if captured, _ := captureRequestID(t, "external-id"); captured != "external-id" {
		t.Fatalf("expected external-id, got %q", captured)
	}
}

func TestRequestIDRejectsInvalidHeaders(t *testing.T) {
	for name, header := range map[string]string{
		"newline":   "abc\ninjected",
		"control":   "abc\x01",
		"non-ascii": "abc\xff",
		"too long":  strings.Repeat("a", maxRequestIDLength+1),
	} {
		t.Run(name, func(t *testing.T) {
			captured, _ := captureRequestID(t, header)
			if captured == header {
				t.Fatalf("expected invalid header to be replaced")
			}
			if _, err := uuid.Parse(captured); err != nil {
				t.Fatalf("expected generated UUID, got %q", captured)
			}
		})
	}
}
