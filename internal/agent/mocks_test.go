// File: internal/agent/mocks_test.go
package agent

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/openpolicylab/debatesim/api/schemas"
)

// -- Chat Session Mock --

// MockSession mocks the Session interface and records every prompt it saw.
type MockSession struct {
	mock.Mock
	mu      sync.Mutex
	prompts []string
}

// Send mocks one turn through the session.
func (m *MockSession) Send(ctx context.Context, text string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, text)
	m.mu.Unlock()
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

// Prompts returns a copy of every prompt sent so far.
func (m *MockSession) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// -- Retriever Mock --

// MockRetriever mocks the schemas.Retriever interface.
type MockRetriever struct {
	mock.Mock
}

// Retrieve mocks a knowledge base query.
func (m *MockRetriever) Retrieve(ctx context.Context, query string, topK int) ([]schemas.RetrievedDocument, error) {
	args := m.Called(ctx, query, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schemas.RetrievedDocument), args.Error(1)
}

// -- Sleep Recorder --

// sleepRecorder replaces real pauses and records what was requested.
type sleepRecorder struct {
	mu     sync.Mutex
	pauses []time.Duration
}

func (s *sleepRecorder) sleep(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauses = append(s.pauses, d)
}

func (s *sleepRecorder) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, len(s.pauses))
	copy(out, s.pauses)
	return out
}
