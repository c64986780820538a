package seed

import (
	"errors"
	"log/slog"

	"github.com/evia-dev/comedor-access/backend/internal/domain"
	"github.com/evia-dev/comedor-access/backend/internal/registry"
	"github.com/evia-dev/comedor-access/backend/internal/repository"
	"github.com/evia-dev/comedor-access/backend/internal/utils"
)

// DefaultShifts is the standard cafeteria service schedule.
var DefaultShifts = []domain.ShiftDraft{
	{Name: "DESAYUNO", StartMinute: 360, EndMinute: 540, Active: true, Description: "Servicio de desayuno"},
	{Name: "COMIDA", StartMinute: 720, EndMinute: 960, Active: true, Description: "Servicio de comida"},
	{Name: "CENA", StartMinute: 1140, EndMinute: 1320, Active: true, Description: "Servicio de cena"},
}

// SeedShifts inserts the default schedule through the registry so the
// overlap invariant applies to seed data too.
func SeedShifts(reg *registry.Registry) int {
	count := 0
	for _, draft := range DefaultShifts {
		if _, err := reg.Create(draft); err != nil {
			var validationErr *domain.ValidationError
			if errors.As(err, &validationErr) {
				slog.Warn("skipping shift", "name", draft.Name, "reason", validationErr.Error())
				continue
			}
			slog.Error("failed to insert shift", "name", draft.Name, "error", err)
			continue
		}
		count++
	}
	return count
}

// SeedSubjects inserts n random roster entries assigned to the default
// shifts.
func SeedSubjects(repo *repository.Repository, n int) int {
	shiftNames := make([]string, 0, len(DefaultShifts))
	for _, draft := range DefaultShifts {
		shiftNames = append(shiftNames, draft.Name)
	}

	count := 0
	for i := 0; i < n; i++ {
		subject := utils.GenerateRandomSubject(shiftNames)
		if err := repo.CreateSubject(subject); err != nil {
			slog.Error("failed to insert subject", "code", subject.Code, "error", err)
			continue
		}
		count++
	}
	return count
}
