package routes

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"

	"github.com/janisto/profile-playground/internal/http/v1/profiles"
	"github.com/janisto/profile-playground/internal/http/v1/state"
	"github.com/janisto/profile-playground/internal/http/v1/validation"
	"github.com/janisto/profile-playground/internal/service/profilestore"
	"github.com/janisto/profile-playground/internal/store"
)

// DocsPath serves the OpenAPI documentation on both servers.
const DocsPath = "/api-docs"

// NewAPI creates a huma API on router with docs at DocsPath. Every operation
// advertises CBOR next to JSON.
func NewAPI(router chi.Router, title, version string) huma.API {
	cfg := huma.DefaultConfig(title, version)
	cfg.DocsPath = DocsPath
	// Wildcard Accept headers fall back to JSON; huma does not negotiate */*.
	api := humachi.New(router, cfg)

	api.OpenAPI().OnAddOperation = append(api.OpenAPI().OnAddOperation, addCBORContent)
	return api
}

// addCBORContent mirrors application/json request and response content as application/cbor.
func addCBORContent(_ *huma.OpenAPI, op *huma.Operation) {
	if op.RequestBody != nil && op.RequestBody.Content != nil {
		if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
			op.RequestBody.Content["application/cbor"] = jsonContent
		}
	}
	for _, resp := range op.Responses {
		if resp.Content == nil {
			continue
		}
		if jsonContent, ok := resp.Content["application/json"]; ok {
			resp.Content["application/cbor"] = jsonContent
		}
	}
}

// Register wires the web client's JSON endpoints under /v1.
func Register(api huma.API, st *store.Store) {
	state.Register(api, st)
	validation.Register(api)
}

// RegisterProfileAPI wires the profile REST API served by cmd/profileapi.
func RegisterProfileAPI(api huma.API, svc profilestore.Service) {
	profiles.Register(api, svc)
}
