package ai

import (
	"context"

	"talentscan/internal/types"
)

// Provider defines the structured AI operations used by the scan engine.
type Provider interface {
	// ExtractJobAnalysis turns a free-text posting into a structured
	// extraction. The result is untrusted until validated by the engine.
	ExtractJobAnalysis(ctx context.Context, posting types.JobPosting) (types.JobExtraction, *TokenUsage, error)

	// EnhanceSkills expands and categorizes the extracted skill lists for a
	// classified role.
	EnhanceSkills(ctx context.Context, input EnhanceSkillsInput) (types.SkillsRecommendation, *TokenUsage, error)

	// GetModelInfo checks model availability for health reporting
	GetModelInfo(ctx context.Context) *ModelInfo

	// GetCircuitBreakerStats returns circuit breaker statistics for monitoring
	GetCircuitBreakerStats() map[string]any

	// Close cleans up any resources used by the provider
	Close() error
}

// Embedder converts text into a dense vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Close() error
}

// EnhanceSkillsInput carries the classified role and raw skill lists into the
// skills enhancement operation.
type EnhanceSkillsInput struct {
	RoleCategory     types.RoleCategory
	MustHaveSkills   []string
	NiceToHaveSkills []string
}
