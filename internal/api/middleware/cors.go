package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS разрешает браузерные запросы с указанных origin
// Пустой список отключает CORS, "*" разрешает все origin без credentials
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	options := cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			RequestIDHeader,
		},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}

	for _, origin := range allowedOrigins {
		if origin == "*" {
			options.AllowCredentials = false
			break
		}
	}

	return cors.Handler(options)
}
