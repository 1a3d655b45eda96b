package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"casedesk/internal/domain"
	"casedesk/internal/port"
)

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *domain.Document) error {
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	query := `INSERT INTO documents (
		id, case_id, name, storage_path, content_type,
		document_kind, person_role,
		ocr_status, ocr_attempts, ocr_error, ocr_result,
		applied_to_case, claimed_at,
		created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7,
		$8, $9, $10, $11,
		$12, $13,
		$14, $15
	)`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.CaseID, doc.Name, doc.StoragePath, doc.ContentType,
		doc.DocumentKind, doc.PersonRole,
		doc.OCRStatus, doc.OCRAttempts, doc.OCRError, doc.OCRResult,
		doc.AppliedToCase, doc.ClaimedAt,
		doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("documentRepo.Create: %w", err)
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc, "SELECT * FROM documents WHERE id = $1", docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) ListByCase(ctx context.Context, caseID uuid.UUID, offset, limit int) ([]domain.Document, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM documents WHERE case_id = $1", caseID)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.ListByCase count: %w", err)
	}

	var docs []domain.Document
	err = r.db.SelectContext(ctx, &docs,
		`SELECT * FROM documents WHERE case_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		caseID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.ListByCase: %w", err)
	}
	return docs, total, nil
}

func (r *documentRepo) MarkQueued(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc,
		`UPDATE documents SET
			ocr_status = $1,
			ocr_attempts = CASE WHEN ocr_status = $4 THEN 0 ELSE ocr_attempts END,
			ocr_error = '', updated_at = $2
		 WHERE id = $3 AND ocr_status NOT IN ($1, $5)
		 RETURNING *`,
		domain.OCRStatusQueued, time.Now().UTC(), docID,
		domain.OCRStatusFailed, domain.OCRStatusProcessing)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Already queued or processing, or missing. Re-read to tell apart.
			return r.GetByID(ctx, docID)
		}
		return nil, fmt.Errorf("documentRepo.MarkQueued: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) ClaimQueued(ctx context.Context, limit, maxAttempts int) ([]domain.Document, error) {
	now := time.Now().UTC()
	var docs []domain.Document
	err := r.db.SelectContext(ctx, &docs,
		`UPDATE documents SET
			ocr_status = $1, ocr_attempts = ocr_attempts + 1,
			claimed_at = $2, updated_at = $2
		 WHERE id IN (
			SELECT id FROM documents
			WHERE ocr_status = $3 AND ocr_attempts < $4
			ORDER BY created_at ASC
			LIMIT $5
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING *`,
		domain.OCRStatusProcessing, now, domain.OCRStatusQueued, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.ClaimQueued: %w", err)
	}
	return docs, nil
}

func (r *documentRepo) RequeueStale(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	result, err := r.db.ExecContext(ctx,
		`UPDATE documents SET
			ocr_status = $1, claimed_at = NULL, updated_at = $2
		 WHERE ocr_status = $3 AND claimed_at < $4`,
		domain.OCRStatusQueued, time.Now().UTC(), domain.OCRStatusProcessing, cutoff)
	if err != nil {
		return 0, fmt.Errorf("documentRepo.RequeueStale: %w", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

func (r *documentRepo) UpdateOCRResult(ctx context.Context, doc *domain.Document) error {
	doc.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE documents SET
			ocr_status = $1, ocr_error = $2, ocr_result = $3,
			document_kind = $4, claimed_at = NULL, updated_at = $5
		 WHERE id = $6`,
		doc.OCRStatus, doc.OCRError, doc.OCRResult,
		doc.DocumentKind, doc.UpdatedAt, doc.ID)
	if err != nil {
		return fmt.Errorf("documentRepo.UpdateOCRResult: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepo) UpdateStoragePath(ctx context.Context, docID uuid.UUID, path string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE documents SET storage_path = $1, updated_at = $2 WHERE id = $3",
		path, time.Now().UTC(), docID)
	if err != nil {
		return fmt.Errorf("documentRepo.UpdateStoragePath: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepo) SetAppliedToCase(ctx context.Context, docID uuid.UUID, applied bool) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE documents SET applied_to_case = $1, updated_at = $2 WHERE id = $3",
		applied, time.Now().UTC(), docID)
	if err != nil {
		return fmt.Errorf("documentRepo.SetAppliedToCase: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepo) Delete(ctx context.Context, docID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = $1", docID)
	if err != nil {
		return fmt.Errorf("documentRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}
