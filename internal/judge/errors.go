// File: internal/judge/errors.go
package judge

import (
	"errors"
	"fmt"

	"github.com/openpolicylab/debatesim/internal/llmutil"
)

// ErrAllRunsFailed is returned by EvaluateWithConfidence when not a single
// run in the batch produced a valid score. No partial summary is fabricated.
var ErrAllRunsFailed = errors.New("all evaluation runs failed")

// MalformedOutputError means the judge model's response could not be parsed
// as the required structured object, or failed range/type validation. It
// carries the offending raw output for diagnosis.
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed judge output: %v (raw, truncated: %s)", e.Err, llmutil.Truncate(e.Raw, 200))
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }
