package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"graca-pdv/internal/config"
)

// CORSMiddleware lets the till front end call the API. Development servers
// accept any origin; otherwise only CORS_ALLOWED_ORIGINS.
func CORSMiddleware(cfg config.ServerConfig) func(http.Handler) http.Handler {
	origins := cfg.AllowedOrigins
	if cfg.Env == "development" {
		origins = []string{"*"}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		// receipts and exports are downloaded by name
		ExposedHeaders: []string{"Content-Disposition", "X-Request-Id"},
		MaxAge:         300,
	})
}

// DefaultMiddlewareStack returns the chi middleware every route runs behind.
// Workbooks are already zip archives, so only text bodies are compressed.
func DefaultMiddlewareStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		middleware.CleanPath,
		middleware.Compress(5, "application/json", "text/plain", "text/csv"),
	}
}
