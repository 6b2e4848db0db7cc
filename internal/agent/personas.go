// File: internal/agent/personas.go
package agent

import (
	"github.com/openpolicylab/debatesim/api/schemas"
	"github.com/openpolicylab/debatesim/internal/config"
)

// Default persona definitions for the carbon-tax/CBAM debate. The
// instruction text is opaque configuration as far as the engine is
// concerned; everything here can be overridden per-persona via the config
// file. The three debaters are grounded; the moderator is not.
func DefaultPersonas() []schemas.Persona {
	return []schemas.Persona{
		{
			ID:   schemas.PersonaGovernment,
			Name: "Gov_Representative",
			Instruction: "You represent the Ministry of Natural Resources and Environment. " +
				"You defend the carbon tax and greenhouse-gas inventory mandates as necessary " +
				"for meeting national climate commitments and for keeping exports viable under " +
				"the EU Carbon Border Adjustment Mechanism (CBAM). Argue from regulation, " +
				"decrees and national strategy. Cite specific legal instruments when possible.",
			TargetAudience: "Government bodies, ministries, provincial administrations",
			Grounded:       true,
		},
		{
			ID:   schemas.PersonaEnterprise,
			Name: "Textile_Association",
			Instruction: "You represent the national textile and garment industry association. " +
				"You defend manufacturers, especially SMEs, against compliance costs they cannot " +
				"absorb. Argue from production economics: thin margins, export competitiveness, " +
				"upfront investment in cleaner technology, and the risk of losing orders to " +
				"competitors in countries without a carbon price.",
			TargetAudience: "Textile manufacturers, factories, SMEs",
			Grounded:       true,
		},
		{
			ID:   schemas.PersonaIndependentExpert,
			Name: "Policy_Expert",
			Instruction: "You are an independent policy and economics consultant. You weigh both " +
				"sides against evidence: effectiveness of carbon pricing, revenue recycling, phased " +
				"implementation, and international experience. You are nobody's advocate; you attack " +
				"weak arguments from either side and propose workable compromises.",
			TargetAudience: "Government, enterprises, international organizations, researchers",
			Grounded:       true,
		},
		{
			ID:   schemas.PersonaModerator,
			Name: "Moderator",
			Instruction: "You are the moderator of a policy roundtable. Your job is to briefly " +
				"summarize what the previous speaker said and invite the next one. Stay neutral " +
				"and professional. Never argue a position yourself.",
			TargetAudience: "All participants",
			Grounded:       false,
		},
	}
}

// PersonasFromConfig merges config overrides into the default registry.
// Overrides are keyed by persona ID; empty fields keep the default.
func PersonasFromConfig(overrides map[string]config.PersonaConfig) []schemas.Persona {
	personas := DefaultPersonas()
	if len(overrides) == 0 {
		return personas
	}

	for i, p := range personas {
		o, ok := overrides[string(p.ID)]
		if !ok {
			continue
		}
		if o.Name != "" {
			personas[i].Name = o.Name
		}
		if o.Instruction != "" {
			personas[i].Instruction = o.Instruction
			// An explicitly configured persona also controls its grounding.
			personas[i].Grounded = o.Grounded
		}
		if o.TargetAudience != "" {
			personas[i].TargetAudience = o.TargetAudience
		}
	}
	return personas
}

// Debaters returns the personas that take debate turns, preserving order.
func Debaters(personas []schemas.Persona) []schemas.Persona {
	out := make([]schemas.Persona, 0, len(personas))
	for _, p := range personas {
		if p.ID != schemas.PersonaModerator {
			out = append(out, p)
		}
	}
	return out
}

// ModeratorPersona returns the moderator persona from the registry.
func ModeratorPersona(personas []schemas.Persona) (schemas.Persona, bool) {
	for _, p := range personas {
		if p.ID == schemas.PersonaModerator {
			return p, true
		}
	}
	return schemas.Persona{}, false
}
