package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/Xirnus/offline-attendance-system-sub000/internal/model"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/repository"
)

type createStudentPayload struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Course string `json:"course"`
	Year   int    `json:"year"`
}

// CreateStudent adds one student to the roster. Bulk spreadsheet import is
// handled by external tooling against the same table.
func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var payload createStudentPayload
	if err := readJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.ID == "" || payload.Name == "" {
		writeError(w, http.StatusBadRequest, "Student id and name are required")
		return
	}

	student := &model.Student{
		ID:        payload.ID,
		Name:      payload.Name,
		Course:    payload.Course,
		Year:      payload.Year,
		CreatedAt: time.Now(),
	}
	if err := h.students.Create(r.Context(), student); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			writeError(w, http.StatusConflict, "A student with this id already exists")
			return
		}
		h.log.Error().Err(err).Msg("failed to create student")
		writeServerError(w)
		return
	}

	writeJSON(w, http.StatusCreated, student)
}

// ListStudents returns the roster with attendance summary counters.
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.students.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list students")
		writeServerError(w)
		return
	}
	writeJSON(w, http.StatusOK, students)
}
