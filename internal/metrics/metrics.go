// File: internal/metrics/metrics.go
// Quantitative text metrics over debate responses: response length, citation
// density, and cross-response diversity. Everything here is a pure function
// over text except the embedding-based diversity strategy, which needs an
// injected Embedder and falls back to the lexical strategy without one.
package metrics

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/openpolicylab/debatesim/api/schemas"
)

var (
	wordRegex     = regexp.MustCompile(`\b\w+\b`)
	sentenceRegex = regexp.MustCompile(`[.!?]+`)
	spaceRegex    = regexp.MustCompile(`\s+`)
)

// WordStats summarizes the length characteristics of one response.
type WordStats struct {
	WordCount           int     `json:"word_count"`
	CharCount           int     `json:"char_count"`
	SentenceCount       int     `json:"sentence_count"`
	AvgWordsPerSentence float64 `json:"avg_word_per_sentence"`
}

// CountWords computes length statistics for a text.
func CountWords(text string) WordStats {
	text = strings.TrimSpace(text)
	if text == "" {
		return WordStats{}
	}

	words := wordRegex.FindAllString(text, -1)
	chars := len([]rune(spaceRegex.ReplaceAllString(text, "")))

	sentences := 0
	for _, s := range sentenceRegex.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}

	stats := WordStats{
		WordCount:     len(words),
		CharCount:     chars,
		SentenceCount: sentences,
	}
	if sentences > 0 {
		stats.AvgWordsPerSentence = float64(len(words)) / float64(sentences)
	}
	return stats
}

// citationPatterns are the textual signals counted as citations in debate
// responses. Keyed by a stable name so pattern counts are reportable.
var citationPatterns = map[string]*regexp.Regexp{
	"according_to_report": regexp.MustCompile(`(?i)according to (the )?report\s+[\w\s,]+`),
	"according_to_decree": regexp.MustCompile(`(?i)according to Decree\s+[\w/\-]+`),
	"according_to_law":    regexp.MustCompile(`(?i)according to (the )?Law\s+[\w\s]+`),
	"according_to_data":   regexp.MustCompile(`(?i)according to (the )?data\s+[\w\s,]+`),
	"data_shows":          regexp.MustCompile(`(?i)data shows?`),
	"research_by":         regexp.MustCompile(`(?i)research by\s+[\w\s]+`),
	"source_from":         regexp.MustCompile(`(?i)source from\s+[\w\s,]+`),
	"cbam_regulation":     regexp.MustCompile(`(?i)CBAM\s+regulation`),
	"eu_requires":         regexp.MustCompile(`(?i)EU\s+requires`),
	"study_indicates":     regexp.MustCompile(`(?i)study (indicates|shows)`),
	"analysis_reveals":    regexp.MustCompile(`(?i)analysis (reveals|shows)`),
	"according_to_article": regexp.MustCompile(`(?i)according to Article\s+\d+`),
	"ministry_data":        regexp.MustCompile(`(?i)ministry of\s+[\w\s]+\s+(data|report)`),
}

// CitationStats summarizes citation usage in one response.
type CitationStats struct {
	Total    int            `json:"total_citations"`
	Patterns map[string]int `json:"citation_patterns"`
	Density  float64        `json:"citation_density"`
	Found    []string       `json:"found_citations"`
}

// maxReportedCitations caps the list of quoted matches in the result.
const maxReportedCitations = 10

// CountCitations counts citation-pattern matches and their density per 100
// words.
func CountCitations(text string) CitationStats {
	stats := CitationStats{Patterns: make(map[string]int)}
	if strings.TrimSpace(text) == "" {
		return stats
	}

	for name, pattern := range citationPatterns {
		matches := pattern.FindAllString(text, -1)
		stats.Patterns[name] = len(matches)
		stats.Total += len(matches)
		for _, m := range matches {
			if len(stats.Found) < maxReportedCitations {
				stats.Found = append(stats.Found, m)
			}
		}
	}

	if wc := CountWords(text).WordCount; wc > 0 {
		stats.Density = math.Round(float64(stats.Total)/float64(wc)*100*100) / 100
	}
	return stats
}

// Method selects a diversity calculation strategy.
type Method string

const (
	MethodEmbedding Method = "embedding"
	MethodLexical   Method = "lexical"
	MethodNGram     Method = "ngram"
)

// DiversityResult reports how different a set of responses are from each
// other, in [0, 1], higher meaning more diverse.
type DiversityResult struct {
	Score       float64 `json:"diversity_score"`
	MethodUsed  string  `json:"method_used"`
	Comparisons int     `json:"num_comparisons"`
}

// Calculator computes diversity scores. The embedder is optional; without
// one the embedding method silently degrades to the lexical method.
type Calculator struct {
	embedder schemas.Embedder
	logger   *zap.Logger
}

// NewCalculator builds a Calculator. embedder may be nil.
func NewCalculator(embedder schemas.Embedder, logger *zap.Logger) *Calculator {
	return &Calculator{
		embedder: embedder,
		logger:   logger.Named("metrics"),
	}
}

// DiversityScore measures pairwise diversity between texts with the chosen
// strategy. Fewer than two texts scores 0 by definition.
func (c *Calculator) DiversityScore(ctx context.Context, texts []string, method Method) (DiversityResult, error) {
	if len(texts) < 2 {
		return DiversityResult{MethodUsed: string(method)}, nil
	}

	switch method {
	case MethodEmbedding:
		if c.embedder == nil {
			c.logger.Warn("No embedder available, falling back to lexical diversity")
			return c.diversityLexical(texts), nil
		}
		result, err := c.diversityEmbedding(ctx, texts)
		if err != nil {
			c.logger.Warn("Embedding diversity failed, falling back to lexical", zap.Error(err))
			return c.diversityLexical(texts), nil
		}
		return result, nil
	case MethodLexical:
		return c.diversityLexical(texts), nil
	case MethodNGram:
		return c.diversityNGram(texts, 2), nil
	default:
		return DiversityResult{}, fmt.Errorf("unknown diversity method %q", method)
	}
}

func (c *Calculator) diversityEmbedding(ctx context.Context, texts []string) (DiversityResult, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		v, err := c.embedder.Embed(ctx, text)
		if err != nil {
			return DiversityResult{}, fmt.Errorf("failed to embed text %d: %w", i, err)
		}
		vectors[i] = v
	}

	var distances []float64
	for i := 0; i < len(vectors); i++ {
		for k := i + 1; k < len(vectors); k++ {
			distances = append(distances, 1-cosineSimilarity(vectors[i], vectors[k]))
		}
	}
	return DiversityResult{
		Score:       round4(mean(distances)),
		MethodUsed:  string(MethodEmbedding),
		Comparisons: len(distances),
	}, nil
}

// diversityLexical scores by Jaccard distance over vocabulary sets.
func (c *Calculator) diversityLexical(texts []string) DiversityResult {
	sets := make([]map[string]struct{}, len(texts))
	for i, text := range texts {
		set := make(map[string]struct{})
		for _, w := range wordRegex.FindAllString(strings.ToLower(text), -1) {
			set[w] = struct{}{}
		}
		sets[i] = set
	}

	var distances []float64
	for i := 0; i < len(sets); i++ {
		for k := i + 1; k < len(sets); k++ {
			distances = append(distances, 1-jaccard(sets[i], sets[k]))
		}
	}
	return DiversityResult{
		Score:       round4(mean(distances)),
		MethodUsed:  string(MethodLexical),
		Comparisons: len(distances),
	}
}

// diversityNGram scores by n-gram overlap distance.
func (c *Calculator) diversityNGram(texts []string, n int) DiversityResult {
	sets := make([]map[string]struct{}, len(texts))
	for i, text := range texts {
		words := wordRegex.FindAllString(strings.ToLower(text), -1)
		set := make(map[string]struct{})
		for k := 0; k+n <= len(words); k++ {
			set[strings.Join(words[k:k+n], " ")] = struct{}{}
		}
		sets[i] = set
	}

	var distances []float64
	for i := 0; i < len(sets); i++ {
		for k := i + 1; k < len(sets); k++ {
			distances = append(distances, 1-jaccard(sets[i], sets[k]))
		}
	}
	return DiversityResult{
		Score:       round4(mean(distances)),
		MethodUsed:  fmt.Sprintf("%d-gram", n),
		Comparisons: len(distances),
	}
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func cosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
