package index

import (
	"context"
	"sync"

	"talentscan/internal/errors"
	"talentscan/internal/types"
)

// MemoryIndex is an in-process Index. Suitable for single-node deployments
// and tests; vectors do not survive a restart.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	vector   []float32
	metadata types.ScanMetadata
}

var _ Index = (*MemoryIndex)(nil)

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		entries: make(map[string]memoryEntry),
	}
}

// Upsert stores or replaces the vector and metadata for a scan.
func (m *MemoryIndex) Upsert(ctx context.Context, scanID string, vector []float32, metadata types.ScanMetadata) error {
	if scanID == "" {
		return errors.NewIndexError(errors.ErrCodeIndexUnavailable, "Scan ID must not be empty", nil)
	}
	if len(vector) == 0 {
		return errors.NewIndexError(errors.ErrCodeIndexUnavailable, "Vector must not be empty", nil)
	}

	stored := make([]float32, len(vector))
	copy(stored, vector)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[scanID] = memoryEntry{vector: stored, metadata: metadata}
	return nil
}

// Query scores every stored vector against the query vector.
func (m *MemoryIndex) Query(ctx context.Context, vector []float32, topK int, minScore float64) ([]types.SimilarScanMatch, error) {
	if len(vector) == 0 {
		return nil, errors.NewIndexError(errors.ErrCodeIndexUnavailable, "Query vector must not be empty", nil)
	}

	m.mu.RLock()
	matches := make([]types.SimilarScanMatch, 0, len(m.entries))
	for scanID, entry := range m.entries {
		matches = append(matches, types.SimilarScanMatch{
			ScanID:          scanID,
			SimilarityScore: CosineSimilarity(vector, entry.vector),
			Metadata:        entry.metadata,
		})
	}
	m.mu.RUnlock()

	return rankMatches(matches, topK, minScore), nil
}

// Len returns the number of stored scans.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close implements Index.
func (m *MemoryIndex) Close() error {
	return nil
}
