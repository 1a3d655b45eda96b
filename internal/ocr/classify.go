package ocr

import (
	"errors"
	"strings"

	"casedesk/internal/domain"
)

// Class is the retry classification of a pipeline failure.
type Class int

const (
	// ClassTransient failures are retried until the attempt ceiling.
	ClassTransient Class = iota
	// ClassPermanent failures are never retried.
	ClassPermanent
)

func (c Class) String() string {
	if c == ClassPermanent {
		return "permanent"
	}
	return "transient"
}

// Patterns matched against opaque third-party error text, checked in order:
// permanent first, then transient, then the transient default. Typed error
// kinds from our own clients take precedence over any pattern.
var permanentPatterns = []string{
	"not found",
	"path/not_found",
	"malformed_path",
	"malformed path",
	"unsupported",
	"invalid file type",
	"invalid format",
	"conflict",
	"missing required",
	"all path variations failed",
}

var transientPatterns = []string{
	"rate limit",
	"too many requests",
	"timeout",
	"timed out",
	"network",
	"connection refused",
	"connection reset",
	"internal server error",
	"bad gateway",
	"service unavailable",
	"gateway timeout",
	"temporarily unavailable",
}

// Classify decides whether a per-document failure is permanent or transient.
// It is pure and knows nothing about retry counters.
func Classify(err error) Class {
	if err == nil {
		return ClassTransient
	}

	// Typed errors from our own storage and extraction clients.
	if errors.Is(err, domain.ErrPathNotFound) || errors.Is(err, domain.ErrPathConflict) ||
		errors.Is(err, domain.ErrMissingStoragePath) || errors.Is(err, domain.ErrUnsupportedFileType) {
		return ClassPermanent
	}
	var xerr *ExtractionError
	if errors.As(err, &xerr) {
		switch xerr.Kind {
		case KindUnsupportedFile, KindEmptyContent:
			return ClassPermanent
		case KindRateLimited, KindProviderError:
			return ClassTransient
		}
	}

	// Fall back to pattern matching for opaque third-party messages.
	msg := strings.ToLower(err.Error())
	for _, p := range permanentPatterns {
		if strings.Contains(msg, p) {
			return ClassPermanent
		}
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return ClassTransient
		}
	}

	// Unknown failures are assumed recoverable.
	return ClassTransient
}
