package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/evia-dev/comedor-access/backend/internal/domain"
)

func (h *Handler) GetAllExceptions(w http.ResponseWriter, r *http.Request) {
	exceptions, err := h.exceptions.List()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "exceptions listed", exceptions)
}

func (h *Handler) CreateException(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SubjectCode string  `json:"subjectCode" validate:"required"`
		SourceShift string  `json:"sourceShift"`
		TargetShift string  `json:"targetShift" validate:"required"`
		ValidFrom   string  `json:"validFrom" validate:"required,datetime=2006-01-02"`
		ValidTo     *string `json:"validTo" validate:"omitempty,datetime=2006-01-02"`
		Reason      string  `json:"reason"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	validFrom, err := time.Parse("2006-01-02", req.ValidFrom)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	var validTo *time.Time
	if req.ValidTo != nil {
		t, err := time.Parse("2006-01-02", *req.ValidTo)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		validTo = &t
	}

	creator, err := h.currentUser(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	exc := &domain.AccessException{
		SubjectCode: req.SubjectCode,
		SourceShift: req.SourceShift,
		TargetShift: req.TargetShift,
		ValidFrom:   validFrom,
		ValidTo:     validTo,
		Reason:      req.Reason,
		Active:      true,
		CreatedBy:   creator.Username,
	}

	if err := h.exceptions.Create(exc); err != nil {
		var validationErr *domain.ValidationError
		switch {
		case errors.As(err, &validationErr):
			h.errorResponse(w, r, validationErr.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "exception created", exc)
}

func (h *Handler) UpdateException(w http.ResponseWriter, r *http.Request) {
	exc := r.Context().Value(ExceptionCtx).(*domain.AccessException)

	var req struct {
		Active  *bool   `json:"active"`
		Reason  *string `json:"reason"`
		ValidTo *string `json:"validTo" validate:"omitempty,datetime=2006-01-02"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Active != nil {
		exc.Active = *req.Active
	}
	if req.Reason != nil {
		exc.Reason = *req.Reason
	}
	if req.ValidTo != nil {
		t, err := time.Parse("2006-01-02", *req.ValidTo)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		exc.ValidTo = &t
	}

	if err := h.exceptions.Update(exc); err != nil {
		var validationErr *domain.ValidationError
		switch {
		case errors.As(err, &validationErr):
			h.errorResponse(w, r, validationErr.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "exception updated", exc)
}

func (h *Handler) DeleteException(w http.ResponseWriter, r *http.Request) {
	exc := r.Context().Value(ExceptionCtx).(*domain.AccessException)

	if err := h.exceptions.Delete(exc.ID); err != nil {
		var notFound *domain.NotFoundError
		switch {
		case errors.As(err, &notFound):
			h.errorResponse(w, r, "NOT_FOUND")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "exception deleted", nil)
}

func (h *Handler) GetExceptionPolicy(w http.ResponseWriter, r *http.Request) {
	policy, err := h.exceptions.Policy()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "policy fetched", policy)
}

func (h *Handler) UpdateExceptionPolicy(w http.ResponseWriter, r *http.Request) {
	policy, err := h.exceptions.Policy()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	var req struct {
		AllowOutOfShiftAccess *bool `json:"allowOutOfShiftAccess"`
		LogExceptions         *bool `json:"logExceptions"`
		RequireAdminApproval  *bool `json:"requireAdminApproval"`
		NewHireGraceDays      *int  `json:"newHireGraceDays" validate:"omitempty,gte=0"`
		GraceMinutes          *int  `json:"graceMinutes" validate:"omitempty,gte=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.AllowOutOfShiftAccess != nil {
		policy.AllowOutOfShiftAccess = *req.AllowOutOfShiftAccess
	}
	if req.LogExceptions != nil {
		policy.LogExceptions = *req.LogExceptions
	}
	if req.RequireAdminApproval != nil {
		policy.RequireAdminApproval = *req.RequireAdminApproval
	}
	if req.NewHireGraceDays != nil {
		policy.NewHireGraceDays = *req.NewHireGraceDays
	}
	if req.GraceMinutes != nil {
		policy.GraceMinutes = *req.GraceMinutes
	}

	if err := h.exceptions.UpdatePolicy(policy); err != nil {
		var validationErr *domain.ValidationError
		switch {
		case errors.As(err, &validationErr):
			h.errorResponse(w, r, validationErr.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "policy updated", policy)
}
