package handler

import (
	"errors"
	"net/http"

	"github.com/Xirnus/offline-attendance-system-sub000/internal/model"
)

// GetSettings returns the admission policy currently in effect.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.policySvc.Get(r.Context()))
}

// UpdateSettings validates and persists new admission policy settings.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings model.PolicySettings
	if err := readJSON(r, &settings); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.policySvc.Set(r.Context(), settings); err != nil {
		if errors.Is(err, model.ErrInvalidPolicy) {
			writeError(w, model.ReasonInvalidPolicy.HTTPStatus(), model.ReasonInvalidPolicy.Message())
			return
		}
		h.log.Error().Err(err).Msg("failed to save policy")
		writeServerError(w)
		return
	}

	writeJSON(w, http.StatusOK, settings)
}
