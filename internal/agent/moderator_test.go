// File: internal/agent/moderator_test.go
package agent

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/openpolicylab/debatesim/api/schemas"
)

var moderatorPersona = schemas.Persona{
	ID:          schemas.PersonaModerator,
	Name:        "Moderator",
	Instruction: "Summarize and hand over. Stay neutral.",
}

func newTestModerator(t *testing.T, session Session) *Moderator {
	t.Helper()
	m, err := NewModerator(moderatorPersona, session, RetryPolicy{Attempts: 1}, zaptest.NewLogger(t),
		WithSleeper(func(d time.Duration) {}))
	require.NoError(t, err)
	return m
}

// TestContainsTerminationMarker verifies case-insensitive marker detection.
func TestContainsTerminationMarker(t *testing.T) {
	assert.True(t, ContainsTerminationMarker("That is all. DEBATE CONCLUDED"))
	assert.True(t, ContainsTerminationMarker("that is all. debate concluded."))
	assert.True(t, ContainsTerminationMarker("Thank you everyone.\nDebate Concluded"))
	assert.False(t, ContainsTerminationMarker("the debate continues"))
	assert.False(t, ContainsTerminationMarker(""))
}

// TestModerator_Moderate_Transition verifies the hand-over prompt within the
// round budget.
func TestModerator_Moderate_Transition(t *testing.T) {
	session := new(MockSession)
	session.On("Send", mock.Anything, mock.Anything).Return("Over to you.", nil).Once()

	m := newTestModerator(t, session)
	narration := m.Moderate(context.Background(), "Gov_Representative", "We need the tax.", "Textile_Association", 1, 2)

	assert.Equal(t, "Over to you.", narration)

	prompts := session.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "round 1 of 2")
	assert.Contains(t, prompts[0], "Gov_Representative")
	assert.Contains(t, prompts[0], "We need the tax.")
	assert.Contains(t, prompts[0], "Textile_Association")
	assert.NotContains(t, prompts[0], TerminationMarker)
}

// TestModerator_Moderate_Closing verifies the closing prompt triggered by the
// beyond-budget round sentinel.
func TestModerator_Moderate_Closing(t *testing.T) {
	session := new(MockSession)
	session.On("Send", mock.Anything, mock.Anything).
		Return("Thanks everyone. DEBATE CONCLUDED", nil).Once()

	m := newTestModerator(t, session)
	narration := m.Moderate(context.Background(), "Policy_Expert", "Final word.", "", 3, 2)

	assert.True(t, ContainsTerminationMarker(narration))

	prompts := session.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "completed all 2 rounds")
	assert.Contains(t, prompts[0], TerminationMarker)
	assert.Contains(t, prompts[0], "Thank the participants")
}

// TestModerator_Moderate_QuoteTruncation checks that long statements are
// quoted back bounded.
func TestModerator_Moderate_QuoteTruncation(t *testing.T) {
	session := new(MockSession)
	session.On("Send", mock.Anything, mock.Anything).Return("noted", nil).Once()

	longStatement := strings.Repeat("x", 1000)
	m := newTestModerator(t, session)
	m.Moderate(context.Background(), "Gov_Representative", longStatement, "Policy_Expert", 1, 2)

	prompt := session.Prompts()[0]
	assert.Contains(t, prompt, strings.Repeat("x", maxQuotedRunes)+"...")
	assert.NotContains(t, prompt, strings.Repeat("x", maxQuotedRunes+1))
}
