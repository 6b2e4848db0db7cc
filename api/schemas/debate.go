// File: api/schemas/debate.go
package schemas

import (
	"fmt"
	"strings"
)

// PersonaID names one of the fixed debate roles.
type PersonaID string

const (
	PersonaGovernment        PersonaID = "government"
	PersonaEnterprise        PersonaID = "enterprise"
	PersonaIndependentExpert PersonaID = "independent-expert"
	PersonaModerator         PersonaID = "moderator"
)

// Persona bundles the identity and system instruction of one debate
// participant. Instruction text is opaque configuration; the engine never
// inspects it. Grounded personas get the shared retriever bound at setup.
type Persona struct {
	ID             PersonaID `json:"id"`
	Name           string    `json:"name"`
	Instruction    string    `json:"instruction"`
	TargetAudience string    `json:"target_audience"`
	Grounded       bool      `json:"grounded"`
}

// SpeakerRole tags a transcript entry as a debater or moderator turn.
type SpeakerRole string

const (
	RoleAgent     SpeakerRole = "agent"
	RoleModerator SpeakerRole = "moderator"
)

// Utterance is one speaker-tagged entry in a debate transcript.
type Utterance struct {
	Speaker string      `json:"speaker"`
	Role    SpeakerRole `json:"role"`
	Text    string      `json:"text"`
}

// Transcript is the ordered, append-only record of a debate. The
// orchestrator is the sole writer; everyone else works from copies or the
// rendered string form.
type Transcript []Utterance

// Tail returns the last n entries (all of them if n exceeds the length).
// The returned slice aliases the transcript; callers treat it as read-only.
func (t Transcript) Tail(n int) Transcript {
	if n <= 0 || n >= len(t) {
		return t
	}
	return t[len(t)-n:]
}

// Render formats the transcript as speaker-tagged lines, the sole artifact
// handed from the orchestrator to the judge.
func (t Transcript) Render() string {
	var b strings.Builder
	for _, u := range t {
		fmt.Fprintf(&b, "[%s]: %s\n", u.Speaker, u.Text)
	}
	return b.String()
}
