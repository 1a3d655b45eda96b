package port

import (
	"context"

	"casedesk/internal/domain"
)

// ExtractInput carries the data needed for text extraction. DocumentKind and
// PersonRole are declared hints and may be unknown.
type ExtractInput struct {
	FileBytes    []byte
	ContentType  string
	DocumentKind domain.DocumentKind
	PersonRole   domain.PersonRole
}

// ExtractOutput is the structured result of one extraction. DocumentKind is
// the kind as detected, which may differ from the declared one.
type ExtractOutput struct {
	Confidence   float64
	DocumentKind domain.DocumentKind
	Fields       map[string]string
}

// TextExtractor abstracts the OCR capability. Implementations perform no
// retries; retry policy lives in the queue worker.
type TextExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}
