package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"
)

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSONMessage(w, http.StatusOK, "Server is running")
}

// Health reports 503 when the database does not answer a ping within two seconds.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbStatus := map[string]any{"status": "ok"}
	status, code := "ok", http.StatusOK
	if err := h.db.PingContext(ctx); err != nil {
		dbStatus = map[string]any{"status": "down", "error": "database unreachable"}
		status, code = "degraded", http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{"status": status, "db": dbStatus})
}
