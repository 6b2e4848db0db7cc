// File: cmd/evaluate.go
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/openpolicylab/debatesim/api/schemas"
	"github.com/openpolicylab/debatesim/internal/config"
	"github.com/openpolicylab/debatesim/internal/judge"
	"github.com/openpolicylab/debatesim/internal/llmclient"
	"github.com/openpolicylab/debatesim/internal/observability"
	"github.com/openpolicylab/debatesim/internal/store"
)

// newEvaluateCmd creates and configures the `evaluate` command.
func newEvaluateCmd() *cobra.Command {
	evaluateCmd := &cobra.Command{
		Use:   "evaluate <transcript-file>",
		Short: "Scores a finished debate transcript with repeated LLM-judge runs",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return viper.BindPFlag("evaluation.n_runs", cmd.Flags().Lookup("runs"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}

			conversationLog, err := loadTranscript(args[0])
			if err != nil {
				return err
			}

			audit, cleanup, err := buildAuditStore(ctx, cfg.Evaluation, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			client, err := llmclient.NewClient(cfg.LLM, cfg.Evaluation.Model, logger)
			if err != nil {
				return fmt.Errorf("failed to build judge client: %w", err)
			}

			j, err := judge.New(client, cfg.Evaluation, audit, logger)
			if err != nil {
				return err
			}

			summary, err := j.EvaluateWithConfidence(ctx, conversationLog, cfg.Evaluation.NRuns)
			if err != nil {
				return err
			}

			payload, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal evaluation summary: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			return nil
		},
	}

	evaluateCmd.Flags().IntP("runs", "n", 0, "number of independent judge runs (overrides config)")
	return evaluateCmd
}

// loadTranscript reads a transcript file. Both the JSON form produced by
// `debate --out` and plain speaker-tagged text are accepted.
func loadTranscript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read transcript: %w", err)
	}

	var transcript schemas.Transcript
	if err := json.Unmarshal(data, &transcript); err == nil && len(transcript) > 0 {
		return transcript.Render(), nil
	}
	return string(data), nil
}

// buildAuditStore constructs the configured audit sink. The cleanup closes
// any underlying connection pool and is safe to call unconditionally.
func buildAuditStore(ctx context.Context, cfg config.EvaluationConfig, logger *zap.Logger) (store.AuditStore, func(), error) {
	switch cfg.Store {
	case "postgres":
		pool, err := pgxpool.New(ctx, postgresDSN(cfg.Postgres))
		if err != nil {
			return nil, func() {}, fmt.Errorf("failed to create database pool: %w", err)
		}
		pg, err := store.NewPostgresStore(ctx, pool, logger)
		if err != nil {
			pool.Close()
			return nil, func() {}, err
		}
		return pg, pool.Close, nil
	default:
		fs, err := store.NewFileStore(cfg.LogDir, logger)
		if err != nil {
			return nil, func() {}, err
		}
		return fs, func() {}, nil
	}
}

func postgresDSN(pg config.PostgresConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(pg.User), url.QueryEscape(pg.Password),
		pg.Host, pg.Port, pg.DBName, pg.SSLMode)
}
