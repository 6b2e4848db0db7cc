// File: api/schemas/generation.go
package schemas

import "context"

// Message is a single entry in a conversational history. Role follows the
// Gemini wire convention: "user" or "model".
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// GenerationOptions carries per-request decoding parameters. Zero values
// defer to the client's configured defaults.
type GenerationOptions struct {
	Temperature     float32
	MaxOutputTokens int
	ForceJSONFormat bool
}

// GenerationRequest is the provider-agnostic payload handed to an LLMClient.
// History holds prior turns for session continuation; UserPrompt is the live
// message. SystemPrompt is bound once per session and repeated on every call
// because the API is stateless on the wire.
type GenerationRequest struct {
	SystemPrompt string
	UserPrompt   string
	History      []Message
	Options      GenerationOptions
}

// LLMClient is the generation capability consumed by agents and the judge.
// Implementations perform exactly one attempt per call; retry policy belongs
// to the caller, which knows whether a degraded answer is acceptable.
type LLMClient interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// Embedder produces a vector representation of a text. Used for retrieval
// query embedding and the embedding-based diversity metric.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}
