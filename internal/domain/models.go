package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Case represents one client matter. All documents and the case record hang
// off a case.
type Case struct {
	ID         uuid.UUID `db:"id" json:"id"`
	ClientName string    `db:"client_name" json:"client_name"`
	FolderName string    `db:"folder_name" json:"folder_name"`
	Notes      string    `db:"notes" json:"notes"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Document represents one uploaded file tracked through the OCR pipeline.
type Document struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	CaseID        uuid.UUID       `db:"case_id" json:"case_id"`
	Name          string          `db:"name" json:"name"`
	StoragePath   string          `db:"storage_path" json:"storage_path"`
	ContentType   string          `db:"content_type" json:"content_type"`
	DocumentKind  DocumentKind    `db:"document_kind" json:"document_kind"`
	PersonRole    PersonRole      `db:"person_role" json:"person_role"`
	OCRStatus     OCRStatus       `db:"ocr_status" json:"ocr_status"`
	OCRAttempts   int             `db:"ocr_attempts" json:"ocr_attempts"`
	OCRError      string          `db:"ocr_error" json:"ocr_error"`
	OCRResult     json.RawMessage `db:"ocr_result" json:"ocr_result"`
	AppliedToCase bool            `db:"applied_to_case" json:"applied_to_case"`
	ClaimedAt     *time.Time      `db:"claimed_at" json:"claimed_at"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// ExtractionResult is the structured payload stored in Document.OCRResult
// after a successful extraction.
type ExtractionResult struct {
	Confidence   float64           `json:"confidence"`
	DocumentKind DocumentKind      `json:"document_kind"`
	Fields       map[string]string `json:"fields"`
}

// RecordField is one entry of a case's flat key-value record.
type RecordField struct {
	CaseID    uuid.UUID   `db:"case_id" json:"case_id"`
	FieldName string      `db:"field_name" json:"field_name"`
	Value     string      `db:"value" json:"value"`
	Source    FieldSource `db:"source" json:"source"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// FieldConflict records a disagreement between an extracted value and an
// existing case-record value, awaiting human resolution.
type FieldConflict struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	CaseID          uuid.UUID      `db:"case_id" json:"case_id"`
	DocumentID      uuid.UUID      `db:"document_id" json:"document_id"`
	FieldName       string         `db:"field_name" json:"field_name"`
	OCRValue        string         `db:"ocr_value" json:"ocr_value"`
	ManualValue     string         `db:"manual_value" json:"manual_value"`
	Confidence      float64        `db:"confidence" json:"confidence"`
	Status          ConflictStatus `db:"status" json:"status"`
	ResolutionNotes string         `db:"resolution_notes" json:"resolution_notes"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	ResolvedAt      *time.Time     `db:"resolved_at" json:"resolved_at"`
}

// RunReport summarizes one queue worker batch. It is returned to the caller
// and never persisted.
type RunReport struct {
	Attempted int         `json:"attempted"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Details   []RunDetail `json:"details"`
}

// RunDetail is the per-document entry of a RunReport.
type RunDetail struct {
	DocumentID     uuid.UUID `json:"document_id"`
	Name           string    `json:"name"`
	Outcome        string    `json:"outcome"` // completed, requeued, failed
	Confidence     float64   `json:"confidence,omitempty"`
	Error          string    `json:"error,omitempty"`
	RetryScheduled bool      `json:"retry_scheduled"`
}
