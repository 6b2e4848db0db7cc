// File: internal/retrieval/chroma_test.go
package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/openpolicylab/debatesim/internal/config"
)

// stubEmbedder returns a fixed vector, or an error when set.
type stubEmbedder struct {
	vector []float64
	err    error
	calls  int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.vector, nil
}

func newTestRetriever(t *testing.T, serverURL string, embedder *stubEmbedder) *ChromaRetriever {
	t.Helper()
	cfg := config.RetrievalConfig{
		Enabled:    true,
		BaseURL:    serverURL,
		Collection: "knowledge_base",
		TopK:       3,
	}
	r, err := NewChromaRetriever(cfg, embedder, zaptest.NewLogger(t))
	require.NoError(t, err)
	return r
}

// TestNewChromaRetriever_Validation checks construction requirements.
func TestNewChromaRetriever_Validation(t *testing.T) {
	logger := zaptest.NewLogger(t)

	_, err := NewChromaRetriever(config.RetrievalConfig{}, &stubEmbedder{}, logger)
	assert.Error(t, err, "missing base URL must be rejected")

	_, err = NewChromaRetriever(config.RetrievalConfig{BaseURL: "http://localhost:8000"}, nil, logger)
	assert.Error(t, err, "missing embedder must be rejected")
}

// TestChromaRetriever_Retrieve verifies the query wire format and result
// mapping, including the distance-to-similarity conversion.
func TestChromaRetriever_Retrieve(t *testing.T) {
	var captured chromaQueryRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/collections/knowledge_base/query", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{
			"documents": [["CBAM enters into force in 2026.", "Carbon pricing affects exports."]],
			"metadatas": [[{"filename": "cbam_report.pdf", "chunk_id": 4}, {"filename": "policy_brief.txt", "chunk_id": "12"}]],
			"distances": [[0.5, 1.0]]
		}`))
	}))
	defer server.Close()

	embedder := &stubEmbedder{vector: []float64{0.1, 0.2}}
	docs, err := newTestRetriever(t, server.URL, embedder).Retrieve(context.Background(), "what is CBAM", 2)
	require.NoError(t, err)

	assert.Equal(t, 1, embedder.calls)
	assert.Equal(t, [][]float64{{0.1, 0.2}}, captured.QueryEmbeddings)
	assert.Equal(t, 2, captured.NResults)

	require.Len(t, docs, 2)
	assert.Equal(t, "CBAM enters into force in 2026.", docs[0].Content)
	assert.Equal(t, "cbam_report.pdf", docs[0].Source.Filename)
	// Numeric and string chunk ids both normalize to strings.
	assert.Equal(t, "4", docs[0].Source.ChunkID)
	assert.Equal(t, "12", docs[1].Source.ChunkID)
	assert.InDelta(t, 1.0/1.5, docs[0].Similarity, 1e-9)
	assert.InDelta(t, 0.5, docs[1].Similarity, 1e-9)
}

// TestChromaRetriever_Retrieve_Empty checks that an empty result set is a
// valid non-error outcome.
func TestChromaRetriever_Retrieve_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"documents": [[]], "metadatas": [[]], "distances": [[]]}`))
	}))
	defer server.Close()

	docs, err := newTestRetriever(t, server.URL, &stubEmbedder{vector: []float64{1}}).
		Retrieve(context.Background(), "obscure query", 3)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

// TestChromaRetriever_Retrieve_Failures covers embedding and server errors.
func TestChromaRetriever_Retrieve_Failures(t *testing.T) {
	t.Run("embedding failure aborts the query", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("query must not be issued when embedding fails")
		}))
		defer server.Close()

		embedder := &stubEmbedder{err: errors.New("embed quota exhausted")}
		_, err := newTestRetriever(t, server.URL, embedder).Retrieve(context.Background(), "query", 3)
		assert.Error(t, err)
	})

	t.Run("server error status surfaces", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		_, err := newTestRetriever(t, server.URL, &stubEmbedder{vector: []float64{1}}).
			Retrieve(context.Background(), "query", 3)
		assert.Error(t, err)
	})
}
