package handler

import (
	"net/http"
)

// Health is the liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports whether the storage dependencies are reachable.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.db.HealthCheck(ctx); err != nil {
		h.log.Error().Err(err).Msg("database health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "component": "database"})
		return
	}
	if err := h.rdb.HealthCheck(ctx); err != nil {
		h.log.Error().Err(err).Msg("redis health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "component": "redis"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
