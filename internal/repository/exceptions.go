package repository

import (
	"context"
	"time"

	"github.com/evia-dev/comedor-access/backend/internal/domain"
)

func (r *Repository) ListExceptions() ([]*domain.AccessException, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, subject_code, source_shift, target_shift, valid_from, valid_to, reason, active, created_by, created_at, version
		FROM access_exceptions
		ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exceptions := make([]*domain.AccessException, 0)
	for rows.Next() {
		exc := &domain.AccessException{}
		dst := []any{&exc.ID, &exc.SubjectCode, &exc.SourceShift, &exc.TargetShift, &exc.ValidFrom, &exc.ValidTo, &exc.Reason, &exc.Active, &exc.CreatedBy, &exc.CreatedAt, &exc.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		exceptions = append(exceptions, exc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return exceptions, nil
}

// ListExceptionsForSubject returns the subject's active exceptions ordered
// by id, so the oldest applicable one wins in the manager.
func (r *Repository) ListExceptionsForSubject(subjectCode string) ([]*domain.AccessException, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, subject_code, source_shift, target_shift, valid_from, valid_to, reason, active, created_by, created_at, version
		FROM access_exceptions
		WHERE subject_code = $1 AND active = TRUE
		ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, subjectCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exceptions := make([]*domain.AccessException, 0)
	for rows.Next() {
		exc := &domain.AccessException{}
		dst := []any{&exc.ID, &exc.SubjectCode, &exc.SourceShift, &exc.TargetShift, &exc.ValidFrom, &exc.ValidTo, &exc.Reason, &exc.Active, &exc.CreatedBy, &exc.CreatedAt, &exc.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		exceptions = append(exceptions, exc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return exceptions, nil
}

func (r *Repository) GetExceptionByID(id int64) (*domain.AccessException, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT subject_code, source_shift, target_shift, valid_from, valid_to, reason, active, created_by, created_at, version
		FROM access_exceptions WHERE id = $1
	`

	exc := &domain.AccessException{ID: id}
	dst := []any{&exc.SubjectCode, &exc.SourceShift, &exc.TargetShift, &exc.ValidFrom, &exc.ValidTo, &exc.Reason, &exc.Active, &exc.CreatedBy, &exc.CreatedAt, &exc.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return exc, nil
}

func (r *Repository) CreateException(exc *domain.AccessException) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO access_exceptions (subject_code, source_shift, target_shift, valid_from, valid_to, reason, active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, version
	`

	params := []any{exc.SubjectCode, exc.SourceShift, exc.TargetShift, exc.ValidFrom, exc.ValidTo, exc.Reason, exc.Active, exc.CreatedBy}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&exc.ID, &exc.CreatedAt, &exc.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateException(exc *domain.AccessException) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE access_exceptions
		SET
			active = $1,
			reason = $2,
			valid_to = $3,
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version
	`

	params := []any{exc.Active, exc.Reason, exc.ValidTo, exc.ID, exc.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&exc.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteException(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM access_exceptions WHERE id = $1
	`

	result, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &domain.NotFoundError{Resource: "exception", ID: id}
	}

	return nil
}

func (r *Repository) GetExceptionPolicy() (*domain.ExceptionPolicy, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT allow_out_of_shift, log_exceptions, require_admin_approval, new_hire_grace_days, grace_minutes, version
		FROM exception_policy WHERE id = 1
	`

	policy := &domain.ExceptionPolicy{}
	dst := []any{&policy.AllowOutOfShiftAccess, &policy.LogExceptions, &policy.RequireAdminApproval, &policy.NewHireGraceDays, &policy.GraceMinutes, &policy.Version}
	if err := r.dbpool.QueryRowContext(ctx, query).Scan(dst...); err != nil {
		return nil, err
	}

	return policy, nil
}

func (r *Repository) UpdateExceptionPolicy(policy *domain.ExceptionPolicy) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE exception_policy
		SET
			allow_out_of_shift = $1,
			log_exceptions = $2,
			require_admin_approval = $3,
			new_hire_grace_days = $4,
			grace_minutes = $5,
			version = version + 1
		WHERE id = 1 AND version = $6
		RETURNING version
	`

	params := []any{policy.AllowOutOfShiftAccess, policy.LogExceptions, policy.RequireAdminApproval, policy.NewHireGraceDays, policy.GraceMinutes, policy.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&policy.Version); err != nil {
		return err
	}

	return nil
}
