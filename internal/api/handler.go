package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/eugenenazirov/envs"
	"github.com/eugenenazirov/envs/internal/coerce"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Registry is the read side of an envs registry.
type Registry interface {
	GetNowEnv() string
	Get(key string, defaultVal ...any) (any, error)
	GetByString(key string, defaultVal ...string) string
	GetAll() (map[string]any, error)
	GetAllByString() map[string]string
	TypeOf(key string) (envs.Type, bool)
}

// Handler exposes a registry over HTTP.
type Handler struct {
	registry Registry

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(registry Registry, opts ...HandlerOption) *Handler {
	h := &Handler{
		registry: registry,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleEnv(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, envResponse{Env: h.registry.GetNowEnv()})
}

func (h *Handler) handleListVars(w http.ResponseWriter, r *http.Request) {
	raw, err := parseRawFlag(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "raw must be a boolean")
		return
	}

	resp := varsResponse{Env: h.registry.GetNowEnv()}
	if raw {
		vars := h.registry.GetAllByString()
		resp.Vars = make(map[string]any, len(vars))
		for key, value := range vars {
			resp.Vars[key] = value
		}
	} else {
		vars, err := h.registry.GetAll()
		if err != nil {
			writeDecodeError(w, err)
			return
		}
		resp.Vars = make(map[string]any, len(vars))
		for key, value := range vars {
			resp.Vars[key] = coerce.Encodable(value)
		}
	}
	resp.Count = len(resp.Vars)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetVar(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	kind, ok := h.registry.TypeOf(key)
	if !ok {
		writeError(w, http.StatusNotFound, "Variable not registered", key)
		return
	}

	value, err := h.registry.Get(key)
	if err != nil {
		writeDecodeError(w, err)
		return
	}

	resp := varResponse{
		Key:   key,
		Type:  kind.String(),
		Value: coerce.Encodable(value),
		Raw:   h.registry.GetByString(key),
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseRawFlag(r *http.Request) (bool, error) {
	raw := r.URL.Query().Get("raw")
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type envResponse struct {
	Env string `json:"env"`
}

type varsResponse struct {
	Env   string         `json:"env"`
	Count int            `json:"count"`
	Vars  map[string]any `json:"vars"`
}

type varResponse struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Value any    `json:"value"`
	Raw   string `json:"raw"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, envs.ErrInvalidJSON) {
		writeError(w, http.StatusInternalServerError, "Invalid variable value", err.Error(),
			"Fix the JSON text of the variable or declare it with another type")
		return
	}
	writeInternalError(w, err)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
