package state

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/janisto/profile-playground/internal/profile"
	"github.com/janisto/profile-playground/internal/store"
)

func newTestRouter(st *store.Store) chi.Router {
	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig("StateTest", "test"))
	Register(api, st)
	return router
}

func getState(t *testing.T, router http.Handler) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/v1/state", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	return body
}

func TestGetStateEmpty(t *testing.T) {
	body := getState(t, newTestRouter(store.New()))

	if body["profile"] != nil {
		t.Errorf("expected null profile, got %v", body["profile"])
	}
	if body["loading"] != false {
		t.Errorf("expected loading false, got %v", body["loading"])
	}
	if _, ok := body["error"]; ok {
		t.Errorf("expected no error field, got %v", body["error"])
	}
}

func TestGetStateWithProfileAndError(t *testing.T) {
	st := store.New()
	st.Set(&profile.Profile{ID: "1", Name: "Alice", Email: "a@b.co"})
	st.SetError("Failed to fetch profile data: Not Found")

	body := getState(t, newTestRouter(st))

	p, ok := body["profile"].(map[string]any)
	if !ok {
		t.Fatalf("expected profile object, got %v", body["profile"])
	}
	if p["id"] != float64(1) || p["name"] != "Alice" {
		t.Errorf("unexpected profile %v", p)
	}
	if body["error"] != "Failed to fetch profile data: Not Found" {
		t.Errorf("unexpected error %v", body["error"])
	}
	if body["version"] != float64(2) {
		t.Errorf("expected version 2, got %v", body["version"])
	}
}
