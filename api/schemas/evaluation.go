// File: api/schemas/evaluation.go
package schemas

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidScore is wrapped by every ScoreRecord validation failure.
var ErrInvalidScore = errors.New("score record failed validation")

// ScoreRecord is the structured verdict of a single judge call.
// Both scores are integers in [1, 10]; Explanation must be non-empty.
type ScoreRecord struct {
	Coherence   int    `json:"coherence"`
	Factuality  int    `json:"factuality"`
	Explanation string `json:"explanation"`
}

// Validate enforces the range and presence invariants. A record that fails
// validation must never be returned to a caller.
func (r ScoreRecord) Validate() error {
	if r.Coherence < 1 || r.Coherence > 10 {
		return fmt.Errorf("%w: coherence %d out of range [1,10]", ErrInvalidScore, r.Coherence)
	}
	if r.Factuality < 1 || r.Factuality > 10 {
		return fmt.Errorf("%w: factuality %d out of range [1,10]", ErrInvalidScore, r.Factuality)
	}
	if strings.TrimSpace(r.Explanation) == "" {
		return fmt.Errorf("%w: explanation is empty", ErrInvalidScore)
	}
	return nil
}

// MetricSummary holds the aggregate statistics for one metric across a
// batch of evaluation runs.
type MetricSummary struct {
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Median float64 `json:"median"`
	IQR    float64 `json:"iqr"`
}

// EvaluationSummary is the result of a multi-run evaluation batch. Never
// mutated once computed.
type EvaluationSummary struct {
	Coherence        MetricSummary `json:"coherence"`
	Factuality       MetricSummary `json:"factuality"`
	CoherenceScores  []int         `json:"coherence_scores"`
	FactualityScores []int         `json:"factuality_scores"`
	Explanations     []string      `json:"explanations"`
	SuccessfulRuns   int           `json:"n_runs"`
	SuccessRate      float64       `json:"success_rate"`
}

// AuditRecordKind distinguishes per-call records from batch aggregates.
type AuditRecordKind string

const (
	AuditEvaluation AuditRecordKind = "evaluation"
	AuditAggregate  AuditRecordKind = "aggregate"
)

// AuditRecord is the persisted trace of an evaluation attempt or batch,
// required for reproducibility audits. Exactly one of Scores or Summary is
// set depending on Kind; Error carries the terminal failure, if any.
type AuditRecord struct {
	ExperimentID    string             `json:"experiment_id"`
	Kind            AuditRecordKind    `json:"kind"`
	Timestamp       time.Time          `json:"timestamp"`
	Model           string             `json:"model"`
	Temperature     float32            `json:"temperature"`
	ConversationLog string             `json:"conversation_log,omitempty"`
	RawOutput       string             `json:"raw_output,omitempty"`
	Scores          *ScoreRecord       `json:"scores,omitempty"`
	Summary         *EvaluationSummary `json:"summary,omitempty"`
	Error           string             `json:"error,omitempty"`
}
