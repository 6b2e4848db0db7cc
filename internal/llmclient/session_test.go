// File: internal/llmclient/session_test.go
package llmclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/openpolicylab/debatesim/api/schemas"
)

// MockLLMClient mocks the schemas.LLMClient interface.
type MockLLMClient struct {
	mock.Mock
}

// Generate mocks the LLM generation call.
func (m *MockLLMClient) Generate(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// TestChatSession_Send_HistoryGrowth verifies the statelessness bridge: the
// session replays its history and appends both sides of a successful turn.
func TestChatSession_Send_HistoryGrowth(t *testing.T) {
	mockClient := new(MockLLMClient)
	session := NewChatSession(mockClient, "system text", schemas.GenerationOptions{Temperature: 0.5}, zaptest.NewLogger(t))

	mockClient.On("Generate", mock.Anything, mock.MatchedBy(func(req schemas.GenerationRequest) bool {
		return req.SystemPrompt == "system text" && len(req.History) == 0
	})).Return("first reply", nil).Once()

	reply, err := session.Send(context.Background(), "first message")
	require.NoError(t, err)
	assert.Equal(t, "first reply", reply)

	// The second call must replay the first exchange.
	mockClient.On("Generate", mock.Anything, mock.MatchedBy(func(req schemas.GenerationRequest) bool {
		return len(req.History) == 2 &&
			req.History[0].Role == "user" && req.History[0].Text == "first message" &&
			req.History[1].Role == "model" && req.History[1].Text == "first reply"
	})).Return("second reply", nil).Once()

	_, err = session.Send(context.Background(), "second message")
	require.NoError(t, err)

	history := session.History()
	require.Len(t, history, 4)
	assert.Equal(t, "second reply", history[3].Text)
	mockClient.AssertExpectations(t)
}

// TestChatSession_Send_FailureLeavesHistoryUntouched checks that a failed
// turn can be retried against identical state.
func TestChatSession_Send_FailureLeavesHistoryUntouched(t *testing.T) {
	mockClient := new(MockLLMClient)
	session := NewChatSession(mockClient, "system", schemas.GenerationOptions{}, zaptest.NewLogger(t))

	genErr := &schemas.GenerationError{Kind: schemas.KindTransient}
	mockClient.On("Generate", mock.Anything, mock.Anything).Return("", genErr).Once()

	_, err := session.Send(context.Background(), "message")
	require.Error(t, err)
	assert.Empty(t, session.History())

	// Retry succeeds against the same empty history.
	mockClient.On("Generate", mock.Anything, mock.MatchedBy(func(req schemas.GenerationRequest) bool {
		return len(req.History) == 0
	})).Return("recovered", nil).Once()

	reply, err := session.Send(context.Background(), "message")
	require.NoError(t, err)
	assert.Equal(t, "recovered", reply)
	assert.Len(t, session.History(), 2)
}

// TestChatSession_History_ReturnsCopy guards against callers mutating the
// session's internal state.
func TestChatSession_History_ReturnsCopy(t *testing.T) {
	mockClient := new(MockLLMClient)
	session := NewChatSession(mockClient, "system", schemas.GenerationOptions{}, zaptest.NewLogger(t))

	mockClient.On("Generate", mock.Anything, mock.Anything).Return("reply", nil).Once()
	_, err := session.Send(context.Background(), "message")
	require.NoError(t, err)

	history := session.History()
	history[0].Text = "tampered"

	assert.Equal(t, "message", session.History()[0].Text)
}
