package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type contextKey string

const contextKeyRequestID contextKey = "requestID"

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

// requestIDFrom returns the request id stored by requestIDMiddleware.
func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}

// requestIDMiddleware keeps a valid incoming request id or generates one.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), contextKeyRequestID, requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimitMiddleware rejects requests beyond the limiter's budget with 429.
func (h *handler) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.limiter.Allow() {
			rateLimitRejects.Inc()
			w.Header().Set("Retry-After", "1")
			h.respondErrorWithOp(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded", "server.rateLimit")
			return
		}

		if limit := h.limiter.Limit(); limit != rate.Inf {
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", int(limit)))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", int(h.limiter.Tokens())))
		}
		next.ServeHTTP(w, r)
	})
}

// recoverMiddleware turns a panicking handler into a 500.
func (h *handler) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Error("panic recovered",
					zap.String("op", "server.recover"),
					zap.String("requestID", requestIDFrom(r.Context())),
					zap.String("path", r.URL.Path),
					zap.Any("panic", rec),
				)
				h.respondErrorWithOp(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", "server.recover")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request at debug level.
func (h *handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newResponseWriter(w)

		next.ServeHTTP(rw, r)

		h.logger.Debug("request completed",
			zap.String("op", "server.request"),
			zap.String("requestID", requestIDFrom(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rw.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func newLimiter(limit float64, burst int) *rate.Limiter {
	if limit <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(limit), burst)
}

// responseWriter records the status code written by a handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if rw.written {
		return
	}
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
	rw.written = true
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Status returns the HTTP status code that was written.
func (rw *responseWriter) Status() int {
	return rw.statusCode
}
