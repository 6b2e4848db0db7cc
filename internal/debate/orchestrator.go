// File: internal/debate/orchestrator.go
// The turn-taking engine. It owns the transcript, the round-robin order and
// the termination condition; agents and the moderator only ever see bounded
// excerpts passed by value.
package debate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/openpolicylab/debatesim/api/schemas"
	"github.com/openpolicylab/debatesim/internal/agent"
	"github.com/openpolicylab/debatesim/internal/config"
)

// State is the orchestrator lifecycle. A debate runs exactly once.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StateEnded:
		return "ended"
	}
	return "unknown"
}

// Debater is a debate participant from the orchestrator's point of view.
// Chat never fails; a participant that cannot generate degrades internally.
type Debater interface {
	Name() string
	Chat(ctx context.Context, prompt string) string
}

// ModeratorContract produces transition and closing narration.
type ModeratorContract interface {
	Name() string
	Moderate(ctx context.Context, lastSpeaker, lastMessage, nextSpeaker string, currentRound, maxRounds int) string
}

// Orchestrator drives one debate run: strictly sequential, single writer of
// the transcript, cooldowns between turns to respect external quotas.
type Orchestrator struct {
	cfg        config.DebateConfig
	logger     *zap.Logger
	agents     []Debater
	moderator  ModeratorContract
	transcript schemas.Transcript
	state      State
	sleep      func(time.Duration)
}

// Option customizes an Orchestrator at construction.
type Option func(*Orchestrator)

// WithSleeper replaces the cooldown sleep. Tests inject a no-op; production
// keeps the real pauses because they exist to respect an external quota.
func WithSleeper(sleep func(time.Duration)) Option {
	return func(o *Orchestrator) { o.sleep = sleep }
}

// New creates an Orchestrator with its participants injected.
func New(cfg config.DebateConfig, logger *zap.Logger, agents []Debater, moderator ModeratorContract, opts ...Option) (*Orchestrator, error) {
	if logger == nil || moderator == nil {
		return nil, fmt.Errorf("cannot initialize orchestrator with nil dependencies")
	}
	if len(agents) < 2 {
		return nil, fmt.Errorf("a debate requires at least two agents, got %d", len(agents))
	}
	if cfg.MaxRounds <= 0 {
		return nil, fmt.Errorf("max_rounds must be positive, got %d", cfg.MaxRounds)
	}

	o := &Orchestrator{
		cfg:       cfg,
		logger:    logger.Named("orchestrator"),
		agents:    agents,
		moderator: moderator,
		state:     StateNotStarted,
		sleep:     time.Sleep,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State { return o.state }

// Transcript returns a copy of the canonical transcript.
func (o *Orchestrator) Transcript() schemas.Transcript {
	out := make(schemas.Transcript, len(o.transcript))
	copy(out, o.transcript)
	return out
}

// Run executes the full debate on the given topic and returns the finished
// transcript. Turn-level failures never surface here: agents substitute
// fallback text, so the loop always completes in bounded time.
func (o *Orchestrator) Run(ctx context.Context, topic string) (schemas.Transcript, error) {
	if o.state != StateNotStarted {
		return nil, fmt.Errorf("debate already ran (state: %s)", o.state)
	}
	o.state = StateRunning
	o.logger.Info("Debate starting",
		zap.String("topic", topic),
		zap.Int("agents", len(o.agents)),
		zap.Int("max_rounds", o.cfg.MaxRounds))

	totalTurns := o.cfg.MaxRounds * len(o.agents)
	turnsTaken := 0

	for round := 1; round <= o.cfg.MaxRounds; round++ {
		o.logger.Info("Round starting", zap.Int("round", round))

		for i, speaker := range o.agents {
			prompt := o.turnPrompt(topic, speaker.Name())
			response := speaker.Chat(ctx, prompt)
			o.transcript = append(o.transcript, schemas.Utterance{
				Speaker: speaker.Name(),
				Role:    schemas.RoleAgent,
				Text:    response,
			})
			turnsTaken++
			o.logger.Info("Turn complete",
				zap.Int("round", round), zap.String("speaker", speaker.Name()))
			o.sleep(o.cfg.AgentPause)

			// The very last scheduled turn tells the moderator to close
			// instead of handing over.
			moderatorRound := round
			if turnsTaken == totalTurns {
				moderatorRound = o.cfg.MaxRounds + 1
			}
			next := o.agents[(i+1)%len(o.agents)]

			narration := o.moderator.Moderate(ctx, speaker.Name(), response, next.Name(), moderatorRound, o.cfg.MaxRounds)
			o.transcript = append(o.transcript, schemas.Utterance{
				Speaker: o.moderator.Name(),
				Role:    schemas.RoleModerator,
				Text:    narration,
			})

			if agent.ContainsTerminationMarker(narration) {
				o.state = StateEnded
				o.logger.Info("Termination marker received, debate ended",
					zap.Int("round", round), zap.Int("turns_taken", turnsTaken))
				return o.Transcript(), nil
			}
			o.sleep(o.cfg.ModeratorPause)
		}
	}

	// All rounds completed without a marker; still a clean end.
	o.state = StateEnded
	o.logger.Info("Debate ended after all scheduled rounds", zap.Int("turns_taken", turnsTaken))
	return o.Transcript(), nil
}

// turnPrompt builds the prompt for one debater turn. The first turn gets an
// opening assignment; later turns see a bounded excerpt of the most recent
// entries and are instructed to rebut, not to open.
func (o *Orchestrator) turnPrompt(topic, speakerName string) string {
	if len(o.transcript) == 0 {
		return fmt.Sprintf(
			"DEBATE TOPIC: %s\n"+
				"YOUR TASK: You open the debate. Present the core position of your assigned role.\n"+
				"Give at least two main arguments, with supporting evidence where available.",
			topic)
	}

	excerpt := o.transcript.Tail(o.cfg.HistoryWindow).Render()

	var b strings.Builder
	fmt.Fprintf(&b, "ORIGINAL TOPIC: %s\n\n", topic)
	b.WriteString("--- DEBATE SO FAR (most recent turns) ---\n")
	b.WriteString(excerpt)
	b.WriteString("-----------------------------------------\n\n")
	fmt.Fprintf(&b, "It is your turn: %s\n\n", speakerName)
	b.WriteString("YOUR TASK (critical engagement):\n")
	b.WriteString("1. SUMMARIZE: what did the previous speaker just claim?\n")
	b.WriteString("2. REBUT: find the weakness in their argument and attack it directly.\n")
	b.WriteString("3. DEFEND: give evidence that protects your side's interests.\n\n")
	b.WriteString("HARD RULES:\n")
	b.WriteString("- Do NOT open with pleasantries ('Thank you', 'I fully agree', 'Much appreciated').\n")
	b.WriteString("- Do NOT praise your opponent.\n")
	b.WriteString("- Use a direct, adversarial debating tone; go straight to costs and interests.")
	return b.String()
}
