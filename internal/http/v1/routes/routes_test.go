package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	applog "github.com/janisto/profile-playground/internal/platform/logging"
	appmiddleware "github.com/janisto/profile-playground/internal/platform/middleware"
	"github.com/janisto/profile-playground/internal/platform/respond"
	"github.com/janisto/profile-playground/internal/service/profilestore"
	"github.com/janisto/profile-playground/internal/store"
)

func newTestRouter() chi.Router {
	router := chi.NewRouter()
	router.Use(
		appmiddleware.RequestID(),
		chimiddleware.RealIP,
		applog.RequestLogger(),
		respond.Recoverer(),
	)
	return router
}

func TestRegisterWebRoutes(t *testing.T) {
	router := newTestRouter()
	Register(NewAPI(router, "RoutesTest", "test"), store.New())

	req := httptest.NewRequest(http.MethodGet, "/v1/state", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "routes-state")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/validate", strings.NewReader(`{"name":"Alice","email":"a@b.co"}`))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRegisterProfileAPIRoutes(t *testing.T) {
	router := newTestRouter()
	RegisterProfileAPI(NewAPI(router, "RoutesTest", "test"), profilestore.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/profiles", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestOpenAPIAdvertisesCBOR(t *testing.T) {
	router := newTestRouter()
	Register(NewAPI(router, "RoutesTest", "test"), store.New())

	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var doc struct {
		Paths map[string]map[string]struct {
			RequestBody *struct {
				Content map[string]any `json:"content"`
			} `json:"requestBody"`
			Responses map[string]struct {
				Content map[string]any `json:"content"`
			} `json:"responses"`
		} `json:"paths"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &doc); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}

	op := doc.Paths["/v1/validate"]["post"]
	if op.RequestBody == nil {
		t.Fatal("expected request body for /v1/validate")
	}
	if _, ok := op.RequestBody.Content["application/cbor"]; !ok {
		t.Error("expected CBOR request content")
	}
	if _, ok := op.Responses["200"].Content["application/cbor"]; !ok {
		t.Error("expected CBOR response content")
	}
}

func TestDocsServed(t *testing.T) {
	router := newTestRouter()
	Register(NewAPI(router, "RoutesTest", "test"), store.New())

	req := httptest.NewRequest(http.MethodGet, DocsPath, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}
