package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS returns permissive CORS handling for the JSON endpoints. Only the methods the
// profile routes use are allowed.
func CORS() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-Id",
			"traceparent",
		},
		ExposedHeaders: []string{"Link", "Location", "X-Request-Id", "X-Total-Count"},
		MaxAge:         300,
	})
}
