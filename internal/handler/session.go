package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/Xirnus/offline-attendance-system-sub000/internal/service"
)

type createSessionPayload struct {
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	ClassName string    `json:"class_name"`
	Activate  bool      `json:"activate"`
}

// CreateSession creates a new attendance session.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var payload createSessionPayload
	if err := readJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.sessionSvc.Create(r.Context(), service.CreateSessionRequest{
		Name:      payload.Name,
		StartTime: payload.StartTime,
		EndTime:   payload.EndTime,
		ClassName: payload.ClassName,
		Activate:  payload.Activate,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidSession) {
			writeError(w, http.StatusBadRequest, "Session name and a valid time window are required")
			return
		}
		h.log.Error().Err(err).Msg("failed to create session")
		writeServerError(w)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// ListSessions returns all sessions, most recent first.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessionSvc.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list sessions")
		writeServerError(w)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// CurrentSession returns the active session, if any.
func (h *Handler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionSvc.Current(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to get current session")
		writeServerError(w)
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "No session is currently active")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// ActivateSession makes the given session the single active one.
func (h *Handler) ActivateSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.sessionSvc.Activate(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		h.log.Error().Err(err).Msg("failed to activate session")
		writeServerError(w)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "success", Message: "Session activated"})
}

// DeactivateSession ends the given session's check-in window.
func (h *Handler) DeactivateSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.sessionSvc.Deactivate(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		h.log.Error().Err(err).Msg("failed to deactivate session")
		writeServerError(w)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "success", Message: "Session deactivated"})
}
