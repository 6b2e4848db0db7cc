// File: internal/llmclient/session.go
package llmclient

import (
	"context"

	"go.uber.org/zap"

	"github.com/openpolicylab/debatesim/api/schemas"
)

// ChatSession is a stateful conversation bound to one system instruction.
// The wire API is stateless, so the session replays its history on every
// call. History grows monotonically on success; there is no rollback. Each
// agent owns exactly one session, so context never leaks between agents.
type ChatSession struct {
	client  schemas.LLMClient
	system  string
	history []schemas.Message
	options schemas.GenerationOptions
	logger  *zap.Logger
}

// NewChatSession creates a session bound to the given system instruction.
func NewChatSession(client schemas.LLMClient, systemInstruction string, options schemas.GenerationOptions, logger *zap.Logger) *ChatSession {
	return &ChatSession{
		client:  client,
		system:  systemInstruction,
		options: options,
		logger:  logger.Named("chat_session"),
	}
}

// Send delivers one user message and returns the model's reply. On failure
// the history is left untouched, so a retry resends the same state.
func (s *ChatSession) Send(ctx context.Context, text string) (string, error) {
	req := schemas.GenerationRequest{
		SystemPrompt: s.system,
		UserPrompt:   text,
		History:      s.history,
		Options:      s.options,
	}

	reply, err := s.client.Generate(ctx, req)
	if err != nil {
		return "", err
	}

	s.history = append(s.history,
		schemas.Message{Role: "user", Text: text},
		schemas.Message{Role: "model", Text: reply},
	)
	return reply, nil
}

// History returns a copy of the conversation so far.
func (s *ChatSession) History() []schemas.Message {
	out := make([]schemas.Message, len(s.history))
	copy(out, s.history)
	return out
}
