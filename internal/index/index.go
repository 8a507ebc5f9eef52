// Package index provides the similarity index used to find historical scans
// close to a new posting. Backends share client-side cosine scoring so that
// results are identical regardless of where vectors live.
package index

import (
	"context"
	"fmt"
	"math"
	"sort"

	"talentscan/internal/config"
	"talentscan/internal/errors"
	"talentscan/internal/types"
)

// DefaultMinScore is the similarity cutoff below which a historical scan is
// not considered a real match.
const DefaultMinScore = 0.75

// Index stores scan vectors and answers nearest-neighbor queries.
type Index interface {
	// Upsert stores or replaces the vector and metadata for a scan.
	Upsert(ctx context.Context, scanID string, vector []float32, metadata types.ScanMetadata) error

	// Query returns up to topK matches with similarity >= minScore, ordered
	// by descending similarity. Ties break on scan ID for determinism.
	Query(ctx context.Context, vector []float32, topK int, minScore float64) ([]types.SimilarScanMatch, error)

	// Close releases backend resources.
	Close() error
}

// New creates an index for the configured backend. A zero MinScore is
// normalized to DefaultMinScore so a partially populated config still
// filters out weak matches.
func New(ctx context.Context, cfg *config.IndexConfig, logger *errors.Logger) (Index, error) {
	if cfg.MinScore <= 0 {
		cfg.MinScore = DefaultMinScore
	}
	switch cfg.Backend {
	case "memory":
		return NewMemoryIndex(), nil
	case "redis":
		return NewRedisIndex(ctx, cfg, logger)
	}
	return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
		fmt.Sprintf("Unknown index backend: %s", cfg.Backend), nil)
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 for mismatched lengths or zero vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// rankMatches filters, sorts and truncates scored candidates.
func rankMatches(matches []types.SimilarScanMatch, topK int, minScore float64) []types.SimilarScanMatch {
	filtered := matches[:0]
	for _, m := range matches {
		if m.SimilarityScore >= minScore {
			filtered = append(filtered, m)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].SimilarityScore != filtered[j].SimilarityScore {
			return filtered[i].SimilarityScore > filtered[j].SimilarityScore
		}
		return filtered[i].ScanID < filtered[j].ScanID
	})

	if topK > 0 && len(filtered) > topK {
		filtered = filtered[:topK]
	}
	return filtered
}
