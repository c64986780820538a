package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/evia-dev/comedor-access/backend/internal/domain"
)

// InsertScanRecord appends one entry to the scan ledger. The insert and the
// uniqueness check are one statement; a violation of
// scan_records_subject_shift_date_key surfaces as domain.ErrDuplicateScan.
// The caller supplies the context so the gate can bound the round trip.
func (r *Repository) InsertScanRecord(ctx context.Context, record *domain.ScanRecord) error {
	query := `
		INSERT INTO scan_records (subject_id, shift_name, scan_date, scanned_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	params := []any{record.SubjectID, record.ShiftName, record.Date, record.Timestamp}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&record.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "scan_records_subject_shift_date_key" {
			return domain.ErrDuplicateScan
		}
		return err
	}

	return nil
}

// ListScansForDate is used by downstream reporting; the gate itself never
// reads the ledger.
func (r *Repository) ListScansForDate(date time.Time) ([]*domain.ScanRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, subject_id, shift_name, scan_date, scanned_at
		FROM scan_records
		WHERE scan_date = $1
		ORDER BY scanned_at
	`

	rows, err := r.dbpool.QueryContext(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*domain.ScanRecord, 0)
	for rows.Next() {
		record := &domain.ScanRecord{}
		dst := []any{&record.ID, &record.SubjectID, &record.ShiftName, &record.Date, &record.Timestamp}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
