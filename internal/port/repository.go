package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"casedesk/internal/domain"
)

// CaseRepository defines the contract for case persistence.
type CaseRepository interface {
	Create(ctx context.Context, c *domain.Case) error
	GetByID(ctx context.Context, caseID uuid.UUID) (*domain.Case, error)
	List(ctx context.Context, offset, limit int) ([]domain.Case, int, error)
}

// DocumentRepository defines the contract for document persistence and queue
// claiming.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	ListByCase(ctx context.Context, caseID uuid.UUID, offset, limit int) ([]domain.Document, int, error)

	// MarkQueued transitions a document to queued. It is a no-op if the
	// document is already queued or processing. Re-queueing a failed
	// document resets its attempt counter so it is claimable again.
	MarkQueued(ctx context.Context, docID uuid.UUID) (*domain.Document, error)

	// ClaimQueued atomically claims up to limit queued documents whose attempt
	// counter is below maxAttempts, oldest-created first. Claimed rows move to
	// processing with the attempt counter incremented.
	ClaimQueued(ctx context.Context, limit, maxAttempts int) ([]domain.Document, error)

	// RequeueStale returns processing documents older than the threshold to
	// queued, preserving their attempt counters.
	RequeueStale(ctx context.Context, olderThan time.Duration) (int, error)

	UpdateOCRResult(ctx context.Context, doc *domain.Document) error
	UpdateStoragePath(ctx context.Context, docID uuid.UUID, path string) error
	SetAppliedToCase(ctx context.Context, docID uuid.UUID, applied bool) error
	Delete(ctx context.Context, docID uuid.UUID) error
}

// CaseRecordRepository defines the contract for the flat per-case key-value
// record.
type CaseRecordRepository interface {
	// GetRecord returns the full field map for a case. A case with no fields
	// yields an empty map.
	GetRecord(ctx context.Context, caseID uuid.UUID) (map[string]string, error)

	// UpsertFields writes the given fields in a single transaction,
	// overwriting existing values (field-level last writer wins).
	UpsertFields(ctx context.Context, caseID uuid.UUID, fields map[string]string, source domain.FieldSource) error
}

// ConflictRepository defines the contract for field conflict persistence.
type ConflictRepository interface {
	CreateBatch(ctx context.Context, conflicts []domain.FieldConflict) error
	ListByCase(ctx context.Context, caseID uuid.UUID, status domain.ConflictStatus) ([]domain.FieldConflict, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.FieldConflict, error)

	// ResolveBatch moves the given pending conflicts to a terminal status.
	// Already-resolved conflicts are skipped; the count of updated rows is
	// returned.
	ResolveBatch(ctx context.Context, ids []uuid.UUID, status domain.ConflictStatus, notes string) (int, error)
}
