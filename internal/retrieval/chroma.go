// File: internal/retrieval/chroma.go
package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/openpolicylab/debatesim/api/schemas"
	"github.com/openpolicylab/debatesim/internal/config"
)

// ChromaRetriever implements schemas.Retriever against a running ChromaDB
// instance. Ingestion lives in a separate pipeline; this client only issues
// queries. The query text is embedded through the injected Embedder with the
// same model used at ingest time, then matched against the collection.
// Safe for concurrent use by multiple agents.
type ChromaRetriever struct {
	baseURL    string
	collection string
	embedder   schemas.Embedder
	httpClient *http.Client
	logger     *zap.Logger
}

type chromaQueryRequest struct {
	QueryEmbeddings [][]float64 `json:"query_embeddings"`
	NResults        int         `json:"n_results"`
	Include         []string    `json:"include"`
}

type chromaQueryResponse struct {
	Documents [][]string                 `json:"documents"`
	Metadatas [][]map[string]interface{} `json:"metadatas"`
	Distances [][]float64                `json:"distances"`
}

// NewChromaRetriever builds a retriever for the configured collection.
func NewChromaRetriever(cfg config.RetrievalConfig, embedder schemas.Embedder, logger *zap.Logger) (*ChromaRetriever, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("retrieval base URL is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("retrieval requires an embedder for query embedding")
	}

	return &ChromaRetriever{
		baseURL:    cfg.BaseURL,
		collection: cfg.Collection,
		embedder:   embedder,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named("retrieval.chroma"),
	}, nil
}

// Retrieve returns the topK closest chunks for the query, ranked by
// distance. An empty result is valid and not an error.
func (r *ChromaRetriever) Retrieve(ctx context.Context, query string, topK int) ([]schemas.RetrievedDocument, error) {
	if topK <= 0 {
		topK = 3
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	body, err := json.Marshal(chromaQueryRequest{
		QueryEmbeddings: [][]float64{vector},
		NResults:        topK,
		Include:         []string{"documents", "metadatas", "distances"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query payload: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/collections/%s/query", r.baseURL, r.collection)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create query request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read query response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		r.logger.Error("ChromaDB query returned error status",
			zap.Int("status", resp.StatusCode), zap.ByteString("response", respBody))
		return nil, fmt.Errorf("chromadb query error: status %d", resp.StatusCode)
	}

	var parsed chromaQueryResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode query response: %w", err)
	}

	if len(parsed.Documents) == 0 || len(parsed.Documents[0]) == 0 {
		r.logger.Debug("Retrieval returned no documents", zap.String("query", query))
		return nil, nil
	}

	docs := parsed.Documents[0]
	results := make([]schemas.RetrievedDocument, 0, len(docs))
	for i, content := range docs {
		doc := schemas.RetrievedDocument{Content: content}
		if len(parsed.Distances) > 0 && i < len(parsed.Distances[0]) {
			doc.Distance = parsed.Distances[0][i]
			doc.Similarity = schemas.SimilarityFromDistance(doc.Distance)
		}
		if len(parsed.Metadatas) > 0 && i < len(parsed.Metadatas[0]) {
			doc.Source = sourceFromMetadata(parsed.Metadatas[0][i])
		}
		results = append(results, doc)
	}

	r.logger.Debug("Retrieval complete",
		zap.String("query", query), zap.Int("results", len(results)))
	return results, nil
}

func sourceFromMetadata(meta map[string]interface{}) schemas.DocumentSource {
	src := schemas.DocumentSource{}
	if v, ok := meta["filename"].(string); ok {
		src.Filename = v
	}
	switch v := meta["chunk_id"].(type) {
	case string:
		src.ChunkID = v
	case float64:
		src.ChunkID = fmt.Sprintf("%d", int(v))
	}
	return src
}
