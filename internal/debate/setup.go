// File: internal/debate/setup.go
package debate

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/openpolicylab/debatesim/api/schemas"
	"github.com/openpolicylab/debatesim/internal/agent"
	"github.com/openpolicylab/debatesim/internal/config"
	"github.com/openpolicylab/debatesim/internal/llmclient"
)

// BuildParticipants constructs agents and the moderator from the persona
// registry. Every participant gets its own chat session bound to its
// instruction text; the shared retriever is bound only to grounded personas,
// and to nobody when retrieval is disabled.
func BuildParticipants(
	cfg *config.Config,
	personas []schemas.Persona,
	client schemas.LLMClient,
	retriever schemas.Retriever,
	logger *zap.Logger,
) ([]Debater, *agent.Moderator, error) {
	retry := agent.RetryPolicyFromConfig(cfg.Debate)
	genOptions := schemas.GenerationOptions{
		Temperature:     cfg.LLM.Temperature,
		MaxOutputTokens: cfg.LLM.MaxTokens,
	}

	var debaters []Debater
	var moderator *agent.Moderator

	for _, p := range personas {
		session := llmclient.NewChatSession(client, p.Instruction, genOptions, logger)

		if p.ID == schemas.PersonaModerator {
			m, err := agent.NewModerator(p, session, retry, logger)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to build moderator: %w", err)
			}
			moderator = m
			continue
		}

		var opts []agent.Option
		if p.Grounded && retriever != nil {
			opts = append(opts, agent.WithRetriever(retriever, cfg.Retrieval.TopK))
		}
		a, err := agent.New(p, session, retry, logger, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build agent %q: %w", p.Name, err)
		}
		debaters = append(debaters, a)
	}

	if moderator == nil {
		return nil, nil, fmt.Errorf("persona registry has no moderator")
	}
	return debaters, moderator, nil
}
