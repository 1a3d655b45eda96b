package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"casedesk/internal/domain"
	"casedesk/internal/port"
)

type caseRecordRepo struct {
	db *sqlx.DB
}

// NewCaseRecordRepo creates a new PostgreSQL-backed CaseRecordRepository.
func NewCaseRecordRepo(db *sqlx.DB) port.CaseRecordRepository {
	return &caseRecordRepo{db: db}
}

func (r *caseRecordRepo) GetRecord(ctx context.Context, caseID uuid.UUID) (map[string]string, error) {
	var rows []domain.RecordField
	err := r.db.SelectContext(ctx, &rows,
		"SELECT * FROM case_record_fields WHERE case_id = $1", caseID)
	if err != nil {
		return nil, fmt.Errorf("caseRecordRepo.GetRecord: %w", err)
	}

	record := make(map[string]string, len(rows))
	for _, f := range rows {
		record[f.FieldName] = f.Value
	}
	return record, nil
}

func (r *caseRecordRepo) UpsertFields(ctx context.Context, caseID uuid.UUID, fields map[string]string, source domain.FieldSource) error {
	if len(fields) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("caseRecordRepo.UpsertFields begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	query := `INSERT INTO case_record_fields (case_id, field_name, value, source, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (case_id, field_name) DO UPDATE SET
			value = EXCLUDED.value,
			source = EXCLUDED.source,
			updated_at = EXCLUDED.updated_at`

	for name, value := range fields {
		if _, err := tx.ExecContext(ctx, query, caseID, name, value, source, now); err != nil {
			return fmt.Errorf("caseRecordRepo.UpsertFields %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("caseRecordRepo.UpsertFields commit: %w", err)
	}
	return nil
}
