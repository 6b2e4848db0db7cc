// File: internal/agent/moderator.go
package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/openpolicylab/debatesim/api/schemas"
)

// TerminationMarker is the fixed phrase the moderator must emit verbatim in
// its closing statement. The orchestrator stops the debate as soon as it
// appears (case-insensitively) anywhere in a moderator response.
const TerminationMarker = "DEBATE CONCLUDED"

// maxQuotedRunes bounds how much of the previous message is quoted back
// into moderation prompts.
const maxQuotedRunes = 300

// ContainsTerminationMarker reports whether text carries the termination
// signal. Matching is case-insensitive by design; the marker is an
// LLM-produced phrase and capitalization drifts.
func ContainsTerminationMarker(text string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(TerminationMarker))
}

// Moderator is a specialized Agent that narrates transitions between
// speakers and decides when the debate ends. It never retrieves.
type Moderator struct {
	*Agent
}

// NewModerator creates the moderator from its persona. The session must be
// exclusively owned, same as any agent's.
func NewModerator(persona schemas.Persona, session Session, retry RetryPolicy, logger *zap.Logger, opts ...Option) (*Moderator, error) {
	inner, err := New(persona, session, retry, logger, opts...)
	if err != nil {
		return nil, err
	}
	return &Moderator{Agent: inner}, nil
}

// Moderate produces the moderator's entry for one turn. A currentRound
// beyond maxRounds is the sentinel for "this was the final turn" and yields
// a closing statement carrying the termination marker; otherwise the
// moderator hands over to nextSpeaker.
func (m *Moderator) Moderate(ctx context.Context, lastSpeaker, lastMessage, nextSpeaker string, currentRound, maxRounds int) string {
	var prompt string
	if currentRound > maxRounds {
		prompt = fmt.Sprintf(
			"Situation: the participants have completed all %d rounds of the debate. "+
				"The final speaker was %s.\nTheir statement: '%s'\n\n"+
				"YOUR TASK:\n"+
				"1. Briefly summarize the core disagreement between the parties.\n"+
				"2. Thank the participants for taking part.\n"+
				"3. You MUST end your statement with the exact phrase: '%s'.",
			maxRounds, lastSpeaker, truncateRunes(lastMessage, maxQuotedRunes), TerminationMarker)
	} else {
		prompt = fmt.Sprintf(
			"Situation: we are in round %d of %d.\n"+
				"The speaker who just finished: %s.\nTheir statement: '%s'\n"+
				"The next speaker will be: %s.\n\n"+
				"YOUR TASK:\n"+
				"1. Summarize the previous speaker's main point in a single sentence.\n"+
				"2. Invite %s to respond.",
			currentRound, maxRounds, lastSpeaker, truncateRunes(lastMessage, maxQuotedRunes),
			nextSpeaker, nextSpeaker)
	}

	return m.Chat(ctx, prompt)
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
