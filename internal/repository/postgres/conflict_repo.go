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

type conflictRepo struct {
	db *sqlx.DB
}

// NewConflictRepo creates a new PostgreSQL-backed ConflictRepository.
func NewConflictRepo(db *sqlx.DB) port.ConflictRepository {
	return &conflictRepo{db: db}
}

func (r *conflictRepo) CreateBatch(ctx context.Context, conflicts []domain.FieldConflict) error {
	if len(conflicts) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("conflictRepo.CreateBatch begin: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO field_conflicts (
		id, case_id, document_id, field_name,
		ocr_value, manual_value, confidence,
		status, resolution_notes, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	for _, c := range conflicts {
		_, err := tx.ExecContext(ctx, query,
			c.ID, c.CaseID, c.DocumentID, c.FieldName,
			c.OCRValue, c.ManualValue, c.Confidence,
			c.Status, c.ResolutionNotes, c.CreatedAt)
		if err != nil {
			return fmt.Errorf("conflictRepo.CreateBatch %s: %w", c.FieldName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("conflictRepo.CreateBatch commit: %w", err)
	}
	return nil
}

func (r *conflictRepo) ListByCase(ctx context.Context, caseID uuid.UUID, status domain.ConflictStatus) ([]domain.FieldConflict, error) {
	var conflicts []domain.FieldConflict
	var err error
	if status == "" {
		err = r.db.SelectContext(ctx, &conflicts,
			"SELECT * FROM field_conflicts WHERE case_id = $1 ORDER BY created_at ASC", caseID)
	} else {
		err = r.db.SelectContext(ctx, &conflicts,
			`SELECT * FROM field_conflicts WHERE case_id = $1 AND status = $2
			 ORDER BY created_at ASC`, caseID, status)
	}
	if err != nil {
		return nil, fmt.Errorf("conflictRepo.ListByCase: %w", err)
	}
	return conflicts, nil
}

func (r *conflictRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.FieldConflict, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In("SELECT * FROM field_conflicts WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("conflictRepo.GetByIDs: %w", err)
	}
	query = r.db.Rebind(query)

	var conflicts []domain.FieldConflict
	if err := r.db.SelectContext(ctx, &conflicts, query, args...); err != nil {
		return nil, fmt.Errorf("conflictRepo.GetByIDs: %w", err)
	}
	return conflicts, nil
}

func (r *conflictRepo) ResolveBatch(ctx context.Context, ids []uuid.UUID, status domain.ConflictStatus, notes string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(
		`UPDATE field_conflicts SET status = ?, resolution_notes = ?, resolved_at = ?
		 WHERE id IN (?) AND status = ?`,
		status, notes, time.Now().UTC(), ids, domain.ConflictStatusPending)
	if err != nil {
		return 0, fmt.Errorf("conflictRepo.ResolveBatch: %w", err)
	}
	query = r.db.Rebind(query)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("conflictRepo.ResolveBatch: %w", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}
