package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware adds CORS headers to responses and records request metrics.
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		// Cache preflight results for a day to reduce OPTIONS traffic
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		start := time.Now()
		next(rw, r)
		duration := time.Since(start)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, http.StatusText(rw.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration.Seconds())
	}
}

// rateLimitMiddleware enforces rate limiting and quotas.
func (s *Server) rateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.rateLimiter == nil {
			next(w, r)
			return
		}

		clientID := getClientIP(r)

		var dataSize int64
		if r.ContentLength > 0 {
			dataSize = r.ContentLength
		}

		if err := s.rateLimiter.Allow(clientID, dataSize); err != nil {
			var rlErr *RateLimitError
			var quotaErr *QuotaExceededError
			switch {
			case errors.As(err, &rlErr):
				rateLimitHits.WithLabelValues(rlErr.Type).Inc()
			case errors.As(err, &quotaErr):
				rateLimitHits.WithLabelValues(quotaErr.Type).Inc()
			}
			s.handleRateLimitError(w, err)
			return
		}

		next(w, r)
	}
}

// handleRateLimitError writes the 429 response for rate limit and quota errors.
func (s *Server) handleRateLimitError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	var rlErr *RateLimitError
	var quotaErr *QuotaExceededError
	switch {
	case errors.As(err, &rlErr):
		w.Header().Set("X-RateLimit-Type", rlErr.Type)
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rlErr.Limit))
		w.Header().Set("Retry-After", fmt.Sprintf("%.0f", rlErr.RetryAfter.Seconds()))
		w.WriteHeader(http.StatusTooManyRequests)
		response := map[string]interface{}{
			"error":       "rate_limit_exceeded",
			"type":        rlErr.Type,
			"limit":       rlErr.Limit,
			"retry_after": rlErr.RetryAfter.Seconds(),
			"message":     rlErr.Error(),
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			slog.Error("Failed to encode rate limit response", "error", err)
		}
	case errors.As(err, &quotaErr):
		w.Header().Set("X-Quota-Type", quotaErr.Type)
		w.Header().Set("X-Quota-Limit", strconv.FormatInt(quotaErr.Limit, 10))
		w.Header().Set("X-Quota-Used", strconv.FormatInt(quotaErr.Used, 10))
		w.Header().Set("X-Quota-Resets", quotaErr.Resets.Format(http.TimeFormat))
		w.WriteHeader(http.StatusTooManyRequests)
		response := map[string]interface{}{
			"error":   "quota_exceeded",
			"type":    quotaErr.Type,
			"limit":   quotaErr.Limit,
			"used":    quotaErr.Used,
			"resets":  quotaErr.Resets.Format(time.RFC3339),
			"message": quotaErr.Error(),
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			slog.Error("Failed to encode quota exceeded response", "error", err)
		}
	default:
		w.WriteHeader(http.StatusInternalServerError)
		if err := json.NewEncoder(w).Encode(map[string]string{
			"error":   "internal_error",
			"message": "Rate limiting check failed",
		}); err != nil {
			slog.Error("Failed to encode internal error response", "error", err)
		}
	}
}

// getClientIP extracts the client IP address from the request.
func getClientIP(r *http.Request) string {
	// X-Forwarded-For first (proxies, load balancers); it can hold a list.
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		if idx := strings.Index(xff, ","); idx > 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
