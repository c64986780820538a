package repository

import (
	"context"
	"time"

	"github.com/evia-dev/comedor-access/backend/internal/domain"
)

func (r *Repository) GetSubjectByCode(code string) (*domain.Subject, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, full_name, shift_name, email, active, registered_at
		FROM subjects WHERE code = $1
	`

	subject := &domain.Subject{Code: code}
	dst := []any{&subject.ID, &subject.FullName, &subject.ShiftName, &subject.Email, &subject.Active, &subject.RegisteredAt}
	if err := r.dbpool.QueryRowContext(ctx, query, code).Scan(dst...); err != nil {
		return nil, err
	}

	return subject, nil
}

func (r *Repository) CreateSubject(subject *domain.Subject) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO subjects (code, full_name, shift_name, email, active, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	params := []any{subject.Code, subject.FullName, subject.ShiftName, subject.Email, subject.Active, subject.RegisteredAt}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&subject.ID); err != nil {
		return err
	}

	return nil
}
