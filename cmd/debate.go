// File: cmd/debate.go
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/openpolicylab/debatesim/api/schemas"
	"github.com/openpolicylab/debatesim/internal/agent"
	"github.com/openpolicylab/debatesim/internal/config"
	"github.com/openpolicylab/debatesim/internal/debate"
	"github.com/openpolicylab/debatesim/internal/llmclient"
	"github.com/openpolicylab/debatesim/internal/observability"
	"github.com/openpolicylab/debatesim/internal/retrieval"
)

// newDebateCmd creates and configures the `debate` command.
func newDebateCmd() *cobra.Command {
	var (
		outFile     string
		noRetrieval bool
	)

	debateCmd := &cobra.Command{
		Use:   "debate [topic...]",
		Short: "Runs a full multi-agent debate on the given topic",
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to viper keys so CLI values override file and env.
			if err := viper.BindPFlag("debate.max_rounds", cmd.Flags().Lookup("rounds")); err != nil {
				return err
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}
			if noRetrieval {
				cfg.Retrieval.Enabled = false
			}
			topic := strings.Join(args, " ")

			client, err := llmclient.NewClient(cfg.LLM, "", logger)
			if err != nil {
				return fmt.Errorf("failed to build LLM client: %w", err)
			}

			var retriever schemas.Retriever
			if cfg.Retrieval.Enabled {
				embedder, err := llmclient.NewGeminiEmbedder(cfg.LLM, logger)
				if err != nil {
					return fmt.Errorf("failed to build embedder: %w", err)
				}
				retriever, err = retrieval.NewChromaRetriever(cfg.Retrieval, embedder, logger)
				if err != nil {
					// Grounding is best effort; a missing knowledge base must
					// not prevent the debate from running.
					logger.Warn("Retriever unavailable, agents will run ungrounded", zap.Error(err))
					retriever = nil
				}
			}

			personas := agent.PersonasFromConfig(cfg.Personas)
			debaters, moderator, err := debate.BuildParticipants(cfg, personas, client, retriever, logger)
			if err != nil {
				return err
			}

			orch, err := debate.New(cfg.Debate, logger, debaters, moderator)
			if err != nil {
				return err
			}

			transcript, err := orch.Run(ctx, topic)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), transcript.Render())

			if outFile != "" {
				payload, err := json.MarshalIndent(transcript, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal transcript: %w", err)
				}
				if err := os.WriteFile(outFile, payload, 0o644); err != nil {
					return fmt.Errorf("failed to write transcript: %w", err)
				}
				logger.Info("Transcript written", zap.String("path", outFile))
			}
			return nil
		},
	}

	debateCmd.Flags().Int("rounds", 0, "number of debate rounds (overrides config)")
	debateCmd.Flags().StringVarP(&outFile, "out", "o", "", "write the transcript as JSON to this file")
	debateCmd.Flags().BoolVar(&noRetrieval, "no-retrieval", false, "run all agents without RAG grounding")
	return debateCmd
}
