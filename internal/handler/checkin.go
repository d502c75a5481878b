package handler

import (
	"net/http"

	"github.com/Xirnus/offline-attendance-system-sub000/internal/fingerprint"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/service"
)

// checkinPayload is the POST /checkin body: identity, token and the raw
// device signals, flattened into one object.
type checkinPayload struct {
	StudentID string `json:"student_id"`
	Token     string `json:"token"`
	fingerprint.RawSignals
}

type checkinResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	// Diagnostics, never used for admission decisions.
	DeviceID        string `json:"device_id,omitempty"`
	UniquenessScore int    `json:"uniqueness_score,omitempty"`
}

// Checkin handles a check-in submission through the admission pipeline.
func (h *Handler) Checkin(w http.ResponseWriter, r *http.Request) {
	var payload checkinPayload
	if err := readJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Fall back to the transport user agent when the client did not probe it.
	if payload.UserAgent == "" {
		payload.UserAgent = r.Header.Get("User-Agent")
	}

	result, err := h.checkinSvc.Process(r.Context(), service.CheckinRequest{
		StudentID: payload.StudentID,
		Token:     payload.Token,
		Signals:   payload.RawSignals,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("check-in pipeline failed")
		writeServerError(w)
		return
	}

	if !result.OK {
		writeJSON(w, result.Reason.HTTPStatus(), checkinResponse{
			Status:  "error",
			Message: result.Message,
		})
		return
	}

	writeJSON(w, http.StatusOK, checkinResponse{
		Status:          "success",
		Message:         result.Message,
		DeviceID:        result.SaltedHash,
		UniquenessScore: result.UniquenessScore,
	})
}
