package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/evia-dev/comedor-access/backend/internal/domain"
	"github.com/evia-dev/comedor-access/backend/internal/shiftclock"
	"github.com/evia-dev/comedor-access/backend/internal/utils"
)

func (h *Handler) GetAllShifts(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.registry.List()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "shifts listed", shifts)
}

type currentShiftResponse struct {
	Status            domain.ShiftStatus `json:"status"`
	Name              string             `json:"name,omitempty"`
	StartTime         string             `json:"startTime,omitempty"`
	EndTime           string             `json:"endTime,omitempty"`
	Active            bool               `json:"active,omitempty"`
	ProgressPercent   int                `json:"progressPercent,omitempty"`
	MinutesRemaining  int                `json:"minutesRemaining,omitempty"`
	MinutesUntilStart int                `json:"minutesUntilStart,omitempty"`
}

func (h *Handler) GetCurrentShift(w http.ResponseWriter, r *http.Request) {
	definitions, err := h.registry.ListActive()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	state := h.clock.Resolve(shiftclock.MinuteOf(time.Now()), definitions)

	resp := currentShiftResponse{
		Status:            state.Status,
		ProgressPercent:   state.ProgressPercent,
		MinutesRemaining:  state.MinutesRemaining,
		MinutesUntilStart: state.MinutesUntilStart,
	}
	if state.Shift != nil {
		resp.Name = state.Shift.Name
		resp.StartTime = utils.FormatMinute(state.Shift.StartMinute)
		resp.EndTime = utils.FormatMinute(state.Shift.EndMinute)
		resp.Active = state.Shift.Active
	}

	h.successResponse(w, r, "current shift resolved", resp)
}

func (h *Handler) UpsertShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID          *int64 `json:"id"`
		Name        string `json:"name" validate:"required"`
		StartTime   string `json:"startTime" validate:"required"`
		EndTime     string `json:"endTime" validate:"required"`
		Active      bool   `json:"active"`
		Description string `json:"description"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	startMinute, err := utils.ParseClock(req.StartTime)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	endMinute, err := utils.ParseClock(req.EndTime)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	draft := domain.ShiftDraft{
		Name:        req.Name,
		StartMinute: startMinute,
		EndMinute:   endMinute,
		Active:      req.Active,
		Description: req.Description,
	}

	var shift *domain.Shift
	if req.ID == nil {
		shift, err = h.registry.Create(draft)
	} else {
		shift, err = h.registry.Update(*req.ID, draft)
	}
	if err != nil {
		var validationErr *domain.ValidationError
		var notFound *domain.NotFoundError
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &validationErr):
			h.errorResponse(w, r, validationErr.Error())
		case errors.As(err, &notFound):
			h.errorResponse(w, r, "NOT_FOUND")
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "shifts_name_key":
				h.errorResponse(w, r, "shift name already exists")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "shift saved", shift)
}

func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "invalid shift id")
		return
	}

	if err := h.registry.Delete(id); err != nil {
		var notFound *domain.NotFoundError
		switch {
		case errors.As(err, &notFound):
			h.errorResponse(w, r, "NOT_FOUND")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "shift deleted", nil)
}
