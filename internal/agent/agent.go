// File: internal/agent/agent.go
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/openpolicylab/debatesim/api/schemas"
	"github.com/openpolicylab/debatesim/internal/config"
)

// FallbackResponse is substituted for a turn whose generation attempts are
// all exhausted. The debate must never crash mid-run because of one turn.
const FallbackResponse = "I apologize, I am unable to contribute at this moment. Please proceed with the discussion."

// groundingLabel prefixes retrieved evidence in the composed prompt.
const groundingLabel = "EVIDENCE (you must use the following passages to support your argument):"

// Session is the conversational generation capability an Agent owns.
// *llmclient.ChatSession satisfies it; tests substitute mocks.
type Session interface {
	Send(ctx context.Context, text string) (string, error)
}

// RetryPolicy controls how an agent recovers from failed generation calls.
// Quota errors get the long pause, everything else the short one.
type RetryPolicy struct {
	Attempts       int
	RateLimitPause time.Duration
	TransientPause time.Duration
}

// RetryPolicyFromConfig extracts the agent retry policy from debate config.
func RetryPolicyFromConfig(cfg config.DebateConfig) RetryPolicy {
	return RetryPolicy{
		Attempts:       cfg.RetryAttempts,
		RateLimitPause: cfg.RateLimitPause,
		TransientPause: cfg.TransientPause,
	}
}

// Agent is one debate participant: a persona, an exclusively owned chat
// session, and optionally a shared retriever for grounding. Agents never
// fail a turn outward; after the retry budget they degrade to
// FallbackResponse.
type Agent struct {
	name      string
	role      string
	session   Session
	retriever schemas.Retriever
	topK      int
	retry     RetryPolicy
	sleep     func(time.Duration)
	logger    *zap.Logger
}

// Option customizes an Agent at construction.
type Option func(*Agent)

// WithRetriever binds a shared retrieval capability. Agents without one
// never issue retrieval calls.
func WithRetriever(r schemas.Retriever, topK int) Option {
	return func(a *Agent) {
		a.retriever = r
		if topK > 0 {
			a.topK = topK
		}
	}
}

// WithSleeper replaces the inter-retry sleep. Tests inject a no-op.
func WithSleeper(sleep func(time.Duration)) Option {
	return func(a *Agent) { a.sleep = sleep }
}

// New creates an Agent for the given persona. The session must be
// exclusively owned by this agent.
func New(persona schemas.Persona, session Session, retry RetryPolicy, logger *zap.Logger, opts ...Option) (*Agent, error) {
	if session == nil {
		return nil, fmt.Errorf("agent %q requires a session", persona.Name)
	}
	if retry.Attempts <= 0 {
		retry.Attempts = 3
	}

	a := &Agent{
		name:    persona.Name,
		role:    persona.Instruction,
		session: session,
		topK:    3,
		retry:   retry,
		sleep:   time.Sleep,
		logger:  logger.Named("agent").With(zap.String("agent", persona.Name)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Name returns the agent's display name used in transcripts.
func (a *Agent) Name() string { return a.name }

// Role returns the persona instruction text.
func (a *Agent) Role() string { return a.role }

// Chat runs one turn: retrieve grounding (best effort), compose the prompt
// as role statement, then evidence, then the live input, and send it through
// the owned session with the retry policy. Always returns usable text.
func (a *Agent) Chat(ctx context.Context, userInput string) string {
	grounding := a.groundingBlock(ctx, userInput)
	prompt := a.composePrompt(grounding, userInput)

	var lastErr error
	for attempt := 1; attempt <= a.retry.Attempts; attempt++ {
		reply, err := a.session.Send(ctx, prompt)
		if err == nil {
			return reply
		}
		lastErr = err

		pause := a.retry.TransientPause
		if schemas.IsRateLimited(err) {
			pause = a.retry.RateLimitPause
			a.logger.Warn("Generation rate limited, backing off",
				zap.Int("attempt", attempt), zap.Duration("pause", pause), zap.Error(err))
		} else {
			a.logger.Warn("Generation failed, retrying",
				zap.Int("attempt", attempt), zap.Duration("pause", pause), zap.Error(err))
		}

		if attempt < a.retry.Attempts {
			a.sleep(pause)
		}
	}

	a.logger.Error("All generation attempts exhausted, substituting fallback",
		zap.Int("attempts", a.retry.Attempts), zap.Error(lastErr))
	return FallbackResponse
}

// groundingBlock queries the retriever and formats the results. Retrieval
// failure must never abort the turn; it degrades to no grounding.
func (a *Agent) groundingBlock(ctx context.Context, query string) string {
	if a.retriever == nil {
		return ""
	}

	docs, err := a.retriever.Retrieve(ctx, query, a.topK)
	if err != nil {
		a.logger.Warn("Retrieval failed, proceeding without grounding", zap.Error(err))
		return ""
	}
	if len(docs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(groundingLabel)
	b.WriteString("\n")
	for _, doc := range docs {
		fmt.Fprintf(&b, "- [source: %s, chunk %s, similarity %.2f] %s\n",
			doc.Source.Filename, doc.Source.ChunkID, doc.Similarity, doc.Content)
	}
	return b.String()
}

// composePrompt fixes the ordering: persona instructions precede retrieved
// evidence, which precedes the live question.
func (a *Agent) composePrompt(grounding, userInput string) string {
	var b strings.Builder
	b.WriteString("YOUR ROLE:\n")
	b.WriteString(a.role)
	b.WriteString("\n\n")
	if grounding != "" {
		b.WriteString(grounding)
		b.WriteString("\n")
	}
	b.WriteString(userInput)
	return b.String()
}
