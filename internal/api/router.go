package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultRateLimitRPS   = 25
	defaultRateLimitBurst = 50

	varsPathPrefix = "/api/vars/"
)

// RouterOption configures NewRouter.
type RouterOption func(*inspectionRouter)

// WithLogging controls whether access logs are emitted.
func WithLogging(enabled bool) RouterOption {
	return func(rt *inspectionRouter) {
		rt.accessLog = enabled
	}
}

// WithRateLimit configures the token bucket. A non-positive rate disables
// rate limiting.
func WithRateLimit(ratePerSecond float64, burst int) RouterOption {
	return func(rt *inspectionRouter) {
		if ratePerSecond <= 0 {
			rt.throttle = nil
			return
		}
		rt.throttle = newTokenBucket(ratePerSecond, burst)
	}
}

type inspectionRouter struct {
	handler   *Handler
	logger    *zap.Logger
	accessLog bool
	throttle  throttle
}

// NewRouter routes the read-only inspection endpoints. Requests are tagged
// with an id, throttled, logged with the resolved environment and recovered
// from panics.
func NewRouter(handler *Handler, logger *zap.Logger, opts ...RouterOption) http.Handler {
	rt := &inspectionRouter{
		handler:   handler,
		logger:    logger,
		accessLog: true,
		throttle:  newTokenBucket(defaultRateLimitRPS, defaultRateLimitBurst),
	}
	for _, opt := range opts {
		opt(rt)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handler.handleHealth)
	mux.HandleFunc("GET /api/env", handler.handleEnv)
	mux.HandleFunc("GET /api/vars", handler.handleListVars)
	mux.HandleFunc("GET "+varsPathPrefix+"{key}", handler.handleGetVar)

	var root http.Handler = rt.recovered(mux)
	if rt.accessLog {
		root = rt.logged(root)
	}
	if rt.throttle != nil {
		root = rt.throttled(root)
	}
	return rt.tagged(root)
}

func (rt *inspectionRouter) env() string {
	return rt.handler.registry.GetNowEnv()
}

// requestFields identifies a request in log entries.
func (rt *inspectionRouter) requestFields(r *http.Request) []zap.Field {
	fields := []zap.Field{
		zap.String("env", rt.env()),
		zap.String("request_id", requestIDFromContext(r.Context())),
	}
	if key, ok := strings.CutPrefix(r.URL.Path, varsPathPrefix); ok && key != "" {
		fields = append(fields, zap.String("key", key))
	}
	return fields
}

func (rt *inspectionRouter) logged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)

		fields := append(rt.requestFields(r),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Int("bytes", sw.written),
			zap.Duration("duration", time.Since(start)),
		)
		rt.logger.Info("inspection request", fields...)
	})
}

func (rt *inspectionRouter) recovered(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				fields := append(rt.requestFields(r), zap.Any("panic", p))
				rt.logger.Error("inspection handler panicked", fields...)
				writeError(w, http.StatusInternalServerError, "Internal error", "unexpected server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// tagged propagates X-Request-ID or assigns a fresh UUID.
func (rt *inspectionRouter) tagged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(contextWithRequestID(r.Context(), id)))
	})
}

func contextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

type statusWriter struct {
	http.ResponseWriter
	status  int
	written int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.written += n
	return n, err
}
