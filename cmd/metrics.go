// File: cmd/metrics.go
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/openpolicylab/debatesim/api/schemas"
	"github.com/openpolicylab/debatesim/internal/config"
	"github.com/openpolicylab/debatesim/internal/llmclient"
	"github.com/openpolicylab/debatesim/internal/metrics"
	"github.com/openpolicylab/debatesim/internal/observability"
)

// speakerReport bundles the per-speaker text metrics in the final report.
type speakerReport struct {
	Speaker   string                `json:"speaker"`
	Words     metrics.WordStats     `json:"words"`
	Citations metrics.CitationStats `json:"citations"`
}

type metricsReport struct {
	Speakers  []speakerReport         `json:"speakers"`
	Diversity metrics.DiversityResult `json:"diversity"`
}

// newMetricsCmd creates and configures the `metrics` command.
func newMetricsCmd() *cobra.Command {
	var method string

	metricsCmd := &cobra.Command{
		Use:   "metrics <transcript-file>",
		Short: "Computes length, citation, and diversity metrics for a transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}

			transcript, err := loadTranscriptUtterances(args[0])
			if err != nil {
				return err
			}

			var embedder schemas.Embedder
			if metrics.Method(method) == metrics.MethodEmbedding {
				embedder, err = llmclient.NewGeminiEmbedder(cfg.LLM, logger)
				if err != nil {
					// The calculator degrades to lexical diversity on its own.
					logger.Warn("Embedder unavailable for diversity scoring", zap.Error(err))
					embedder = nil
				}
			}
			calc := metrics.NewCalculator(embedder, logger)

			var report metricsReport
			var agentTexts []string
			for _, u := range transcript {
				report.Speakers = append(report.Speakers, speakerReport{
					Speaker:   u.Speaker,
					Words:     metrics.CountWords(u.Text),
					Citations: metrics.CountCitations(u.Text),
				})
				if u.Role == schemas.RoleAgent {
					agentTexts = append(agentTexts, u.Text)
				}
			}

			report.Diversity, err = calc.DiversityScore(ctx, agentTexts, metrics.Method(method))
			if err != nil {
				return err
			}

			payload, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal metrics report: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			return nil
		},
	}

	metricsCmd.Flags().StringVarP(&method, "method", "m", string(metrics.MethodEmbedding),
		"diversity method: embedding, lexical, or ngram")
	return metricsCmd
}

// loadTranscriptUtterances reads the JSON transcript form. Plain text lacks
// speaker attribution, so metrics require the structured form.
func loadTranscriptUtterances(path string) (schemas.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	var transcript schemas.Transcript
	if err := json.Unmarshal(data, &transcript); err != nil {
		return nil, fmt.Errorf("transcript must be the JSON form written by `debate --out`: %w", err)
	}
	return transcript, nil
}
