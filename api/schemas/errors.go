// File: api/schemas/errors.go
package schemas

import (
	"errors"
	"fmt"
)

// GenerationErrorKind classifies generation failures so callers can apply
// the right recovery policy without string-matching provider messages.
type GenerationErrorKind string

const (
	// KindRateLimited means the provider rejected the call on quota grounds
	// (HTTP 429). Callers should wait a long interval before retrying.
	KindRateLimited GenerationErrorKind = "rate_limited"
	// KindTransient covers server-side failures (5xx, network errors) that
	// are worth retrying after a short interval.
	KindTransient GenerationErrorKind = "transient"
	// KindBlocked means the provider refused the content (safety filters).
	// Retrying the same request is pointless.
	KindBlocked GenerationErrorKind = "blocked"
	// KindEmpty means the provider returned a well-formed but empty response.
	KindEmpty GenerationErrorKind = "empty"
)

// GenerationError wraps a failed generation attempt with its classification.
type GenerationError struct {
	Kind       GenerationErrorKind
	StatusCode int
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("generation failed (%s, status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("generation failed (%s): %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// IsRateLimited reports whether err is a quota-exhaustion failure.
func IsRateLimited(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge) && ge.Kind == KindRateLimited
}

// IsRetryable reports whether err is worth another attempt at all.
// Blocked responses are permanent; everything else in the taxonomy is not.
func IsRetryable(err error) bool {
	var ge *GenerationError
	if !errors.As(err, &ge) {
		// Unclassified errors (network hiccups wrapped by the HTTP layer)
		// get the transient treatment.
		return true
	}
	return ge.Kind != KindBlocked
}
