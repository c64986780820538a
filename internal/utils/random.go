package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/evia-dev/comedor-access/backend/internal/domain"
)

var commonFirstNames = []string{
	"María", "José", "Juan", "Ana", "Luis", "Carmen", "Carlos", "Laura",
	"Miguel", "Sofía", "Jorge", "Lucía", "Pedro", "Elena", "Diego", "Rosa",
}
var commonLastNames = []string{
	"García", "Martínez", "López", "Hernández", "González", "Pérez",
	"Sánchez", "Ramírez", "Torres", "Flores", "Rivera", "Cruz",
}

func GenerateRandomFullName() string {
	return commonFirstNames[rand.Intn(len(commonFirstNames))] + " " +
		commonLastNames[rand.Intn(len(commonLastNames))]
}

// GenerateRandomSubject builds a seed roster entry assigned to one of the
// given shift names, registered up to a year in the past.
func GenerateRandomSubject(shiftNames []string) *domain.Subject {
	return &domain.Subject{
		Code:         fmt.Sprintf("EMP%06d", rand.Intn(1000000)),
		FullName:     GenerateRandomFullName(),
		ShiftName:    shiftNames[rand.Intn(len(shiftNames))],
		Email:        fmt.Sprintf("emp%05d@example.com", rand.Intn(100000)),
		Active:       true,
		RegisteredAt: time.Now().AddDate(0, 0, -rand.Intn(365)),
	}
}

const passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func GenerateRandomPassword(length int) string {
	password := make([]byte, length)
	for i := range password {
		password[i] = passwordCharset[rand.Intn(len(passwordCharset))]
	}
	return string(password)
}
