package ocr

import (
	"fmt"
	"strconv"
	"time"
)

// ErrorKind categorizes extraction failures so the classifier can avoid
// string matching for errors raised by our own clients.
type ErrorKind string

const (
	KindRateLimited     ErrorKind = "rate_limited"
	KindUnsupportedFile ErrorKind = "unsupported_file"
	KindEmptyContent    ErrorKind = "empty_content"
	KindProviderError   ErrorKind = "provider_error"
)

// ExtractionError wraps a failure from the extraction provider with a kind.
type ExtractionError struct {
	Kind       ErrorKind
	Err        error
	RetryAfter time.Duration // only set for KindRateLimited
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction %s: %v", e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a rate-limited ExtractionError. A zero or
// negative retryAfterSecs defaults to 60s.
func NewRateLimitError(err error, retryAfterSecs int) *ExtractionError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &ExtractionError{
		Kind:       KindRateLimited,
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}
