// File: internal/judge/judge.go
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openpolicylab/debatesim/api/schemas"
	"github.com/openpolicylab/debatesim/internal/config"
	"github.com/openpolicylab/debatesim/internal/llmutil"
	"github.com/openpolicylab/debatesim/internal/store"
)

const promptTemplate = `You are an independent expert reviewer evaluating the quality of a multi-agent
policy debate on carbon tax implementation in the textile industry.

Your task:
- Carefully read the full conversation below.
- Assign integer scores from 1 to 10 for each criterion.

Scoring guidelines:
- Use the full 1-10 scale.
- A score of 5 represents an average-quality debate.
- Avoid overly generous scoring.

Evaluation criteria:

1. coherence:
   The logical consistency, clarity, and structured flow of arguments
   across the entire debate.

2. factuality:
   The degree to which arguments are accurate, grounded in policy knowledge,
   economic reasoning, and domain-specific facts.

STRICT REQUIREMENTS:
- Output ONLY valid JSON.
- Do NOT include any text outside the JSON object.
- Use the exact format below.

{
  "coherence": <int>,
  "factuality": <int>,
  "explanation": "<brief explanation, maximum 3 sentences>"
}

Conversation:
<<<
%s
>>>`

// rawScore mirrors the judge's required output. json.Number lets validation
// reject fractional scores instead of silently truncating them.
type rawScore struct {
	Coherence   json.Number `json:"coherence"`
	Factuality  json.Number `json:"factuality"`
	Explanation string      `json:"explanation"`
}

// Judge scores finished transcripts with a second LLM at temperature 0.
// Unlike the debate path, failures here surface to the caller: a degraded
// turn is tolerable, a fabricated score is not.
type Judge struct {
	client schemas.LLMClient
	cfg    config.EvaluationConfig
	audit  store.AuditStore
	logger *zap.Logger
	sleep  func(time.Duration)
	now    func() time.Time
}

// Option customizes a Judge at construction.
type Option func(*Judge)

// WithSleeper replaces the inter-retry sleep. Tests inject a no-op.
func WithSleeper(sleep func(time.Duration)) Option {
	return func(j *Judge) { j.sleep = sleep }
}

// WithClock replaces the time source used for experiment identifiers.
func WithClock(now func() time.Time) Option {
	return func(j *Judge) { j.now = now }
}

// New creates a Judge. audit may be nil to disable persistence (tests);
// production always wires a store for reproducibility audits.
func New(client schemas.LLMClient, cfg config.EvaluationConfig, audit store.AuditStore, logger *zap.Logger, opts ...Option) (*Judge, error) {
	if client == nil || logger == nil {
		return nil, fmt.Errorf("cannot initialize judge with nil dependencies")
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	j := &Judge{
		client: client,
		cfg:    cfg,
		audit:  audit,
		logger: logger.Named("judge"),
		sleep:  time.Sleep,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// EvaluateConversation performs a single evaluation of the rendered
// transcript. Transient API failures are retried with exponentially growing
// delays; malformed output is logged with the raw response and the call is
// retried from scratch. After the budget, the last error surfaces. Every
// call, success or terminal failure, is persisted as an audit record.
func (j *Judge) EvaluateConversation(ctx context.Context, conversationLog, experimentID string) (schemas.ScoreRecord, error) {
	if experimentID == "" {
		experimentID = j.newExperimentID()
	}
	prompt := fmt.Sprintf(promptTemplate, conversationLog)

	// Temperature is forced to 0 regardless of config drift; the judge must
	// decode deterministically.
	req := schemas.GenerationRequest{
		UserPrompt: prompt,
		Options: schemas.GenerationOptions{
			Temperature:     0,
			ForceJSONFormat: true,
		},
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = j.cfg.RetryDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = 5 * time.Minute
	b.Reset()

	var rawOutput string
	var lastErr error

	for attempt := 1; attempt <= j.cfg.MaxRetries; attempt++ {
		raw, err := j.client.Generate(ctx, req)
		if err != nil {
			lastErr = err
			j.logger.Warn("Judge generation attempt failed",
				zap.Int("attempt", attempt), zap.Error(err))
			if !schemas.IsRetryable(err) {
				break
			}
		} else {
			rawOutput = raw
			record, perr := parseScores(raw)
			if perr == nil {
				j.persist(ctx, schemas.AuditRecord{
					ExperimentID:    experimentID,
					Kind:            schemas.AuditEvaluation,
					Timestamp:       j.now().UTC(),
					Model:           j.cfg.Model,
					Temperature:     0,
					ConversationLog: conversationLog,
					RawOutput:       raw,
					Scores:          &record,
				})
				return record, nil
			}
			// Do not blindly resend: keep the raw output for diagnosis, then
			// rerun the whole call against the budget.
			j.logger.Error("Judge output failed parsing or validation",
				zap.Int("attempt", attempt),
				zap.String("raw_output", llmutil.Truncate(raw, 500)),
				zap.Error(perr))
			lastErr = &MalformedOutputError{Raw: raw, Err: perr}
		}

		if attempt < j.cfg.MaxRetries {
			j.sleep(b.NextBackOff())
		}
	}

	j.persist(ctx, schemas.AuditRecord{
		ExperimentID:    experimentID,
		Kind:            schemas.AuditEvaluation,
		Timestamp:       j.now().UTC(),
		Model:           j.cfg.Model,
		Temperature:     0,
		ConversationLog: conversationLog,
		RawOutput:       rawOutput,
		Error:           lastErr.Error(),
	})
	return schemas.ScoreRecord{}, fmt.Errorf("evaluation failed after %d attempts: %w", j.cfg.MaxRetries, lastErr)
}

// EvaluateWithConfidence runs n independent evaluations and aggregates them.
// A failing run is logged and excluded; only a batch with zero successes
// fails, with ErrAllRunsFailed.
func (j *Judge) EvaluateWithConfidence(ctx context.Context, conversationLog string, nRuns int) (schemas.EvaluationSummary, error) {
	if nRuns <= 0 {
		nRuns = j.cfg.NRuns
	}
	batchID := j.newExperimentID()

	var records []schemas.ScoreRecord
	var lastErr error

	for i := 1; i <= nRuns; i++ {
		runID := fmt.Sprintf("%s_run%02d", batchID, i)
		record, err := j.EvaluateConversation(ctx, conversationLog, runID)
		if err != nil {
			lastErr = err
			j.logger.Warn("Evaluation run failed, excluding from batch",
				zap.String("run_id", runID), zap.Error(err))
			continue
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return schemas.EvaluationSummary{}, fmt.Errorf("%w (batch %s, last error: %v)", ErrAllRunsFailed, batchID, lastErr)
	}

	coherence := make([]int, len(records))
	factuality := make([]int, len(records))
	explanations := make([]string, len(records))
	for i, r := range records {
		coherence[i] = r.Coherence
		factuality[i] = r.Factuality
		explanations[i] = r.Explanation
	}

	summary := schemas.EvaluationSummary{
		Coherence:        Summarize(coherence),
		Factuality:       Summarize(factuality),
		CoherenceScores:  coherence,
		FactualityScores: factuality,
		Explanations:     explanations,
		SuccessfulRuns:   len(records),
		SuccessRate:      float64(len(records)) / float64(nRuns),
	}

	j.persist(ctx, schemas.AuditRecord{
		ExperimentID: batchID + "_aggregated",
		Kind:         schemas.AuditAggregate,
		Timestamp:    j.now().UTC(),
		Model:        j.cfg.Model,
		Temperature:  0,
		Summary:      &summary,
	})
	return summary, nil
}

// parseScores extracts and validates the judge's structured verdict.
func parseScores(raw string) (schemas.ScoreRecord, error) {
	parsed, err := llmutil.ParseJSONResponse[rawScore](raw)
	if err != nil {
		return schemas.ScoreRecord{}, err
	}
	if parsed.Coherence == "" || parsed.Factuality == "" {
		return schemas.ScoreRecord{}, fmt.Errorf("missing required key (coherence and factuality are mandatory)")
	}

	coherence, err := parsed.Coherence.Int64()
	if err != nil {
		return schemas.ScoreRecord{}, fmt.Errorf("coherence must be an integer: %w", err)
	}
	factuality, err := parsed.Factuality.Int64()
	if err != nil {
		return schemas.ScoreRecord{}, fmt.Errorf("factuality must be an integer: %w", err)
	}

	record := schemas.ScoreRecord{
		Coherence:   int(coherence),
		Factuality:  int(factuality),
		Explanation: parsed.Explanation,
	}
	if err := record.Validate(); err != nil {
		return schemas.ScoreRecord{}, err
	}
	return record, nil
}

func (j *Judge) persist(ctx context.Context, record schemas.AuditRecord) {
	if j.audit == nil {
		return
	}
	if err := j.audit.Save(ctx, record); err != nil {
		// Persistence failure must not poison the evaluation result.
		j.logger.Warn("Failed to persist audit record",
			zap.String("experiment_id", record.ExperimentID), zap.Error(err))
	}
}

func (j *Judge) newExperimentID() string {
	return fmt.Sprintf("%s_%s", j.now().UTC().Format("20060102_150405"), uuid.NewString()[:8])
}
