// File: internal/llmclient/embedder.go
package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/openpolicylab/debatesim/internal/config"
)

// GeminiEmbedder implements schemas.Embedder against the embedContent
// endpoint. Used for retrieval query embedding and the embedding-based
// diversity metric.
type GeminiEmbedder struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

type embedRequestPayload struct {
	Content geminiContent `json:"content"`
}

type embedResponsePayload struct {
	Embedding struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
}

// NewGeminiEmbedder initializes the embedder from the shared LLM config.
func NewGeminiEmbedder(cfg config.LLMConfig, logger *zap.Logger) (*GeminiEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	model := cfg.EmbedModel
	if model == "" {
		model = "text-embedding-004"
	}

	return &GeminiEmbedder{
		apiKey:     cfg.APIKey,
		endpoint:   fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:embedContent", model),
		httpClient: &http.Client{Timeout: cfg.APITimeout},
		logger:     logger.Named("llm_client.embedder"),
	}, nil
}

// WithEndpoint overrides the API endpoint. Tests point this at a local server.
func (e *GeminiEmbedder) WithEndpoint(endpoint string) *GeminiEmbedder {
	e.endpoint = endpoint
	return e
}

// Embed returns the embedding vector for the given text.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	payload := embedRequestPayload{
		Content: geminiContent{Parts: []geminiPart{{Text: text}}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embed payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", e.apiKey)

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute embed request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read embed response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		e.logger.Error("Embedding API returned error status",
			zap.Int("status", resp.StatusCode), zap.ByteString("response", respBody))
		return nil, fmt.Errorf("embedding API error: status %d", resp.StatusCode)
	}

	var parsed embedResponsePayload
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode embed response: %w", err)
	}
	if len(parsed.Embedding.Values) == 0 {
		return nil, fmt.Errorf("embedding API returned an empty vector")
	}
	return parsed.Embedding.Values, nil
}
