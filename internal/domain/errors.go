package domain

import "errors"

var (
	ErrNotFound             = errors.New("resource not found")
	ErrCaseNotFound         = errors.New("case not found")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrConflictNotFound     = errors.New("conflict not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrFileTooLarge         = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed         = errors.New("file upload to storage failed")
	ErrDocumentNotExtracted = errors.New("document has no extraction result")
	ErrInvalidResolution    = errors.New("invalid conflict resolution")
	ErrMissingStoragePath   = errors.New("document has no storage path")

	// Storage failures the error classifier treats as permanent.
	ErrPathNotFound = errors.New("storage path not found")
	ErrPathConflict = errors.New("storage path conflict")
)
