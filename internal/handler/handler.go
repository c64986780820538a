package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/evia-dev/comedor-access/backend/internal/config"
	"github.com/evia-dev/comedor-access/backend/internal/dispatcher"
	"github.com/evia-dev/comedor-access/backend/internal/domain"
	"github.com/evia-dev/comedor-access/backend/internal/exception"
	"github.com/evia-dev/comedor-access/backend/internal/gate"
	"github.com/evia-dev/comedor-access/backend/internal/registry"
	"github.com/evia-dev/comedor-access/backend/internal/repository"
	"github.com/evia-dev/comedor-access/backend/internal/shiftclock"
)

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	repository *repository.Repository
	translator ut.Translator

	registry   *registry.Registry
	clock      *shiftclock.Clock
	exceptions *exception.Manager
	gate       *gate.Gate
	dispatcher *dispatcher.Dispatcher

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, reg *registry.Registry, clock *shiftclock.Clock, excs *exception.Manager, g *gate.Gate, disp *dispatcher.Dispatcher) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		repository: repo,
		translator: trans,

		registry:   reg,
		clock:      clock,
		exceptions: excs,
		gate:       g,
		dispatcher: disp,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// everything below requires a logged-in admin or operator
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", h.GetAllShifts)
			r.Get("/current", h.GetCurrentShift)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.UpsertShift)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/{id}", h.DeleteShift)
		})

		r.Route("/exceptions", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
			r.Get("/", h.GetAllExceptions)
			r.Post("/", h.CreateException)
			r.Route("/policy", func(r chi.Router) {
				r.Get("/", h.GetExceptionPolicy)
				r.Patch("/", h.UpdateExceptionPolicy)
			})
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.exceptionRecord)
				r.Patch("/", h.UpdateException)
				r.Delete("/", h.DeleteException)
			})
		})

		r.Post("/access/attempts", h.RecordAttempt)
		r.Get("/events/subscribe", h.SubscribeShiftEvents)
	})
}
