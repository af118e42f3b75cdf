package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// routeFields names the cart session, sale or product a request touched.
// Route params are only known once the router has matched, so this runs
// after the handler returns.
func routeFields(r *http.Request) []zap.Field {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return nil
	}

	pattern := rctx.RoutePattern()
	fields := []zap.Field{zap.String("route", pattern)}

	if id := rctx.URLParam("id"); id != "" {
		switch {
		case strings.HasPrefix(pattern, "/api/sessions/"):
			fields = append(fields, zap.String("session_id", id))
		case strings.HasPrefix(pattern, "/api/sales/"):
			fields = append(fields, zap.String("sale_id", id))
		}
	}
	if code := rctx.URLParam("code"); code != "" {
		fields = append(fields, zap.String("product_code", code))
	}
	return fields
}

// statusLevel logs rejected requests as warnings and failures as errors
func statusLevel(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// LoggingMiddleware logs one entry per request once the response is written
func LoggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			fields := []zap.Field{
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			}
			fields = append(fields, routeFields(r)...)

			if ce := logger.Check(statusLevel(status), "Request completed"); ce != nil {
				ce.Write(fields...)
			}
		})
	}
}
