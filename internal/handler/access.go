package handler

import (
	"net/http"
	"time"

	"github.com/evia-dev/comedor-access/backend/internal/domain"
)

// RecordAttempt runs one scan through the gate. Denials are ordinary
// response values, not errors; the envelope is always successful and the
// decision rides in the data field.
func (h *Handler) RecordAttempt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SubjectID   int64  `json:"subjectId"`
		SubjectCode string `json:"subjectCode" validate:"required"`
		ShiftHint   string `json:"shiftHint"`
		Timestamp   string `json:"timestamp" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	attempt := domain.AccessAttempt{
		SubjectID:   req.SubjectID,
		SubjectCode: req.SubjectCode,
		ShiftHint:   req.ShiftHint,
	}
	if req.Timestamp != "" {
		t, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		attempt.Timestamp = t
	}

	decision := h.gate.RecordAttempt(r.Context(), attempt)

	h.successResponse(w, r, "attempt processed", decision)
}
