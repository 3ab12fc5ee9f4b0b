package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/janisto/profile-playground/internal/platform/logging"
)

const schemaPath = "/schemas/ErrorModel.json"

// problem is the RFC 9457 body written outside of huma operations. It matches
// huma.ErrorModel so clients decode both the same way.
type problem struct {
	Schema string              `json:"$schema,omitempty"`
	Type   string              `json:"type,omitempty"`
	Title  string              `json:"title,omitempty"`
	Status int                 `json:"status,omitempty"`
	Detail string              `json:"detail,omitempty"`
	Errors []*huma.ErrorDetail `json:"errors,omitempty"`
}

// mediaRange is one parsed entry of an Accept header.
type mediaRange struct {
	typ     string
	subtype string
	q       float64
}

// parseAccept parses an Accept header value into media ranges per RFC 9110.
func parseAccept(header string) []mediaRange {
	if header == "" {
		return nil
	}

	var ranges []mediaRange
	for part := range strings.SplitSeq(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		mr := mediaRange{q: 1.0}
		mediaType := part
		if before, after, ok := strings.Cut(part, ";"); ok {
			mediaType = strings.TrimSpace(before)
			for param := range strings.SplitSeq(after, ";") {
				param = strings.TrimSpace(param)
				if !strings.HasPrefix(strings.ToLower(param), "q=") {
					continue
				}
				if qval, err := strconv.ParseFloat(param[2:], 64); err == nil && qval >= 0 && qval <= 1 {
					mr.q = qval
				}
			}
		}

		if before, after, ok := strings.Cut(mediaType, "/"); ok {
			mr.typ = strings.ToLower(strings.TrimSpace(before))
			mr.subtype = strings.ToLower(strings.TrimSpace(after))
		} else {
			mr.typ = strings.ToLower(strings.TrimSpace(mediaType))
			mr.subtype = "*"
		}
		ranges = append(ranges, mr)
	}
	return ranges
}

// selectFormat reports whether CBOR is preferred over JSON. The q-value ranks first,
// specificity breaks ties, and JSON wins everything else.
func selectFormat(header string) bool {
	var cborQ, jsonQ float64 = -1, -1
	cborRank, jsonRank := 0, 0

	for _, mr := range parseAccept(header) {
		if mr.q == 0 {
			continue
		}

		rank := 0
		isCBOR, isJSON := false, false
		switch {
		case mr.typ == "application" && mr.subtype == "problem+cbor":
			isCBOR, rank = true, 4
		case mr.typ == "application" && mr.subtype == "problem+json":
			isJSON, rank = true, 4
		case mr.typ == "application" && (mr.subtype == "cbor" || strings.HasSuffix(mr.subtype, "+cbor")):
			isCBOR, rank = true, 3
		case mr.typ == "application" && (mr.subtype == "json" || strings.HasSuffix(mr.subtype, "+json")):
			isJSON, rank = true, 3
		case mr.typ == "application" && mr.subtype == "*":
			isCBOR, isJSON, rank = true, true, 2
		case mr.typ == "*" && mr.subtype == "*":
			isCBOR, isJSON, rank = true, true, 1
		}

		if isCBOR && (rank > cborRank || (rank == cborRank && mr.q > cborQ)) {
			cborQ, cborRank = mr.q, rank
		}
		if isJSON && (rank > jsonRank || (rank == jsonRank && mr.q > jsonQ)) {
			jsonQ, jsonRank = mr.q, rank
		}
	}

	switch {
	case cborQ <= 0 && jsonQ <= 0:
		return false
	case cborQ != jsonQ:
		return cborQ > jsonQ
	default:
		return cborRank > jsonRank
	}
}

// ensureVary adds values to the Vary header without duplicating existing entries.
func ensureVary(h http.Header, values ...string) {
	existing := make(map[string]struct{})
	for _, v := range h.Values("Vary") {
		for part := range strings.SplitSeq(v, ",") {
			existing[strings.TrimSpace(part)] = struct{}{}
		}
	}
	for _, v := range values {
		if _, ok := existing[v]; ok {
			continue
		}
		h.Add("Vary", v)
		existing[v] = struct{}{}
	}
}

func schemaURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host + schemaPath
}

// WriteProblem writes a Problem Details response honoring content negotiation.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string, errs ...*huma.ErrorDetail) {
	schema := schemaURL(r)
	body := problem{
		Schema: schema,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
		Errors: errs,
	}

	h := w.Header()
	ensureVary(h, "Origin", "Accept")
	h.Set("Link", "<"+schema+`>; rel="describedBy"`)

	if selectFormat(r.Header.Get("Accept")) {
		h.Set("Content-Type", "application/problem+cbor")
		w.WriteHeader(status)
		if err := cbor.NewEncoder(w).Encode(body); err != nil {
			logging.LogError(r.Context(), "failed to encode problem", err)
		}
		return
	}
	h.Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		logging.LogError(r.Context(), "failed to encode problem", err)
	}
}

// WriteRedirect writes a redirect with the Location header and no body.
func WriteRedirect(w http.ResponseWriter, r *http.Request, location string, status int) {
	logging.LogInfo(r.Context(), "redirect",
		zap.String("from", r.URL.Path),
		zap.String("location", location),
		zap.Int("status", status),
	)
	w.Header().Set("Location", location)
	w.WriteHeader(status)
}

// NotFoundHandler emits a Problem Details 404.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteProblem(w, r, http.StatusNotFound, "resource not found")
	}
}

// MethodNotAllowedHandler emits a Problem Details 405 with the Allow header.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if allow := allowedMethods(r); len(allow) > 0 {
			w.Header().Set("Allow", strings.Join(allow, ", "))
		}
		WriteProblem(w, r, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
	}
}

// responseWriter records whether the status line went out so a panic after a
// partial write does not produce a second response.
type responseWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Recoverer converts panics into Problem Details 500 responses. It re-panics on
// http.ErrAbortHandler so net/http can abort the connection.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				logging.LogError(r.Context(), "panic recovered", err, zap.ByteString("stack", debug.Stack()))
				if rw.wroteHeader {
					return
				}
				WriteProblem(rw, r, http.StatusInternalServerError, "internal server error")
			}()
			next.ServeHTTP(rw, r)
		})
	}
}

// allowedMethods inspects chi's routing tree to discover allowed methods.
func allowedMethods(r *http.Request) []string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return nil
	}

	routePath := rctx.RoutePath
	if routePath == "" {
		routePath = r.URL.RawPath
		if routePath == "" {
			routePath = r.URL.Path
		}
		if routePath == "" {
			routePath = "/"
		}
	}

	methods := []string{
		http.MethodGet,
		http.MethodHead,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodOptions,
	}
	allowed := make([]string, 0, len(methods))
	for _, method := range methods {
		if rctx.Routes.Match(chi.NewRouteContext(), method, routePath) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}
