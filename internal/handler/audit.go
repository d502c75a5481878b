package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Xirnus/offline-attendance-system-sub000/internal/fingerprint"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/model"
)

const defaultDeniedLimit = 100

// ListDeniedAttempts returns the most recent denied check-in attempts.
func (h *Handler) ListDeniedAttempts(w http.ResponseWriter, r *http.Request) {
	limit := defaultDeniedLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	attempts, err := h.attendance.ListDeniedAttempts(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list denied attempts")
		writeServerError(w)
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

type fingerprintView struct {
	model.DeviceFingerprint
	UniquenessScore int `json:"uniquenessScore"`
}

// ListFingerprints returns the device dedup table with a uniqueness score
// recomputed from the stored raw signals.
func (h *Handler) ListFingerprints(w http.ResponseWriter, r *http.Request) {
	fingerprints, err := h.fingerprints.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list fingerprints")
		writeServerError(w)
		return
	}

	views := make([]fingerprintView, 0, len(fingerprints))
	for _, f := range fingerprints {
		var signals fingerprint.RawSignals
		// Older rows may hold blobs from before a signal was collected;
		// a failed decode just scores what is there.
		json.Unmarshal([]byte(f.RawSignals), &signals)
		views = append(views, fingerprintView{
			DeviceFingerprint: f,
			UniquenessScore:   fingerprint.UniquenessScore(signals),
		})
	}
	writeJSON(w, http.StatusOK, views)
}
