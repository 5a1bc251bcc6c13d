package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kaurvahtra/listq/internal/models"
	"github.com/kaurvahtra/listq/internal/remote"
)

// Config holds configurable limits for the server.
type Config struct {
	MaxRequestBody int64  // bytes
	Token          string // bearer token; empty disables auth
}

// DefaultConfig returns reasonable defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxRequestBody: 1 * 1024 * 1024, // 1MB
	}
}

// Handler creates the HTTP handler with all routes and middleware.
func Handler(st *Store, cfg *Config, logger *slog.Logger) http.Handler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	h := &handler{store: st, cfg: cfg, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/lists/{list}/items", h.listItems)
	mux.HandleFunc("POST /api/v1/lists/{list}/items", h.createItem)
	mux.HandleFunc("GET /api/v1/lists/{list}/items/{id}", h.getItem)
	mux.HandleFunc("PATCH /api/v1/lists/{list}/items/{id}", h.updateItem)
	mux.HandleFunc("DELETE /api/v1/lists/{list}/items/{id}", h.deleteItem)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return logRequests(logger, authBearer(cfg.Token, mux))
}

type handler struct {
	store  *Store
	cfg    *Config
	logger *slog.Logger
}

func (h *handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListItems(r.PathValue("list"))
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &remote.ItemsResponse{Items: items})
}

func (h *handler) createItem(w http.ResponseWriter, r *http.Request) {
	var item models.Item
	if !h.readJSON(w, r, &item) {
		return
	}
	if item.ID == "" || item.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid_item", "id and name are required")
		return
	}
	if item.UpdatedAt == 0 {
		item.UpdatedAt = time.Now().UnixMilli()
	}

	err := h.store.CreateItem(r.PathValue("list"), &item)
	if errors.Is(err, ErrExists) {
		writeError(w, http.StatusConflict, "exists", "item already exists")
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, &item)
}

func (h *handler) getItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.store.GetItem(r.PathValue("list"), r.PathValue("id"))
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "item not found")
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *handler) updateItem(w http.ResponseWriter, r *http.Request) {
	var patch models.ItemPatch
	if !h.readJSON(w, r, &patch) {
		return
	}

	item, err := h.store.UpdateItem(r.PathValue("list"), r.PathValue("id"), &patch)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "item not found")
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteItem(r.PathValue("list"), r.PathValue("id")); err != nil {
		h.internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// readJSON decodes a JSON body with a size cap.
func (h *handler) readJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return false
	}
	return true
}

func (h *handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, &remote.ErrorResponse{Error: code, Message: message})
}

// authBearer enforces a constant-time bearer token check. An empty token
// disables auth (local development).
func authBearer(token string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token == "" || r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}
		got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// logRequests logs method, path, status, and latency for every request.
func logRequests(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"latency_ms", time.Since(start).Milliseconds(),
		}
		if id := r.Header.Get(remote.ClientIDHeader); id != "" {
			attrs = append(attrs, "client", id)
		}
		logger.Info("request", attrs...)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
