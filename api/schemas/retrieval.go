// File: api/schemas/retrieval.go
package schemas

import "context"

// DocumentSource identifies where a retrieved chunk came from.
type DocumentSource struct {
	Filename string `json:"filename"`
	ChunkID  string `json:"chunk_id"`
}

// RetrievedDocument is one ranked result from the knowledge base. Distance is
// the raw L2 distance reported by the vector store; Similarity is the derived
// score in (0, 1].
type RetrievedDocument struct {
	Content    string         `json:"content"`
	Source     DocumentSource `json:"source"`
	Distance   float64        `json:"distance"`
	Similarity float64        `json:"similarity_score"`
}

// SimilarityFromDistance converts an L2 distance into a similarity score.
// Monotonically decreasing, 1.0 at distance 0.
func SimilarityFromDistance(distance float64) float64 {
	return 1.0 / (1.0 + distance)
}

// Retriever is the retrieval capability shared by grounded agents. An empty
// result slice is a valid, non-error outcome. Implementations must be safe
// for use by multiple agents; retrieval is stateless per call.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]RetrievedDocument, error)
}
