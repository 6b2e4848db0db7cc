// File: internal/debate/setup_test.go
package debate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/openpolicylab/debatesim/api/schemas"
	"github.com/openpolicylab/debatesim/internal/agent"
	"github.com/openpolicylab/debatesim/internal/config"
)

// stubClient satisfies schemas.LLMClient; setup tests never generate.
type stubClient struct{}

func (stubClient) Generate(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	return "ok", nil
}

// stubRetriever satisfies schemas.Retriever.
type stubRetriever struct{}

func (stubRetriever) Retrieve(ctx context.Context, query string, topK int) ([]schemas.RetrievedDocument, error) {
	return nil, nil
}

// TestBuildParticipants wires the default registry into agents plus a
// moderator.
func TestBuildParticipants(t *testing.T) {
	cfg := config.NewDefaultConfig()
	personas := agent.DefaultPersonas()

	debaters, moderator, err := BuildParticipants(cfg, personas, stubClient{}, stubRetriever{}, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.Len(t, debaters, 3)
	require.NotNil(t, moderator)
	assert.Equal(t, "Gov_Representative", debaters[0].Name())
	assert.Equal(t, "Moderator", moderator.Name())
}

// TestBuildParticipants_NoModerator rejects a registry without a moderator.
func TestBuildParticipants_NoModerator(t *testing.T) {
	cfg := config.NewDefaultConfig()
	personas := agent.Debaters(agent.DefaultPersonas())

	_, _, err := BuildParticipants(cfg, personas, stubClient{}, nil, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "moderator")
}

// TestBuildParticipants_NilRetriever verifies agents build fine ungrounded.
func TestBuildParticipants_NilRetriever(t *testing.T) {
	cfg := config.NewDefaultConfig()

	debaters, moderator, err := BuildParticipants(cfg, agent.DefaultPersonas(), stubClient{}, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Len(t, debaters, 3)
	assert.NotNil(t, moderator)
}
