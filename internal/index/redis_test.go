package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"talentscan/internal/config"
	"talentscan/internal/errors"
	"talentscan/internal/types"
)

// Integration test against a real Redis. Set TALENTSCAN_TEST_REDIS_URL to run,
// e.g. redis://localhost:6379/15. The test database is flushed of its own keys
// only, via the key prefix.
func TestRedisIndexIntegration(t *testing.T) {
	redisURL := os.Getenv("TALENTSCAN_TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TALENTSCAN_TEST_REDIS_URL not set, skipping Redis integration test")
	}

	cfg := &config.IndexConfig{
		Backend:       "redis",
		RedisURL:      redisURL,
		KeyPrefix:     fmt.Sprintf("talentscan:test:%d:", time.Now().UnixNano()),
		TopK:          5,
		MinScore:      0.75,
		QueryTimeout:  5 * time.Second,
		UpsertTimeout: 5 * time.Second,
	}

	ctx := context.Background()
	idx, err := NewRedisIndex(ctx, cfg, errors.NewLogger(slog.LevelError))
	if err != nil {
		t.Fatalf("NewRedisIndex() error = %v", err)
	}
	defer func() {
		if err := idx.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	}()

	vectors := map[string][]float32{
		"scan-close":   {1, 0, 0},
		"scan-nearby":  {0.9, 0.1, 0},
		"scan-distant": {0, 0, 1},
	}
	for scanID, vector := range vectors {
		meta := types.ScanMetadata{
			JobTitle:     "Data Analyst",
			RoleCategory: types.RoleDataAnalyst,
		}
		if err := idx.Upsert(ctx, scanID, vector, meta); err != nil {
			t.Fatalf("Upsert(%s) error = %v", scanID, err)
		}
	}

	matches, err := idx.Query(ctx, []float32{1, 0, 0}, 5, 0.75)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("len(matches) = %d, want 2 above the 0.75 cutoff", len(matches))
	}
	if matches[0].ScanID != "scan-close" {
		t.Errorf("matches[0].ScanID = %q, want scan-close", matches[0].ScanID)
	}
	if matches[0].SimilarityScore < matches[1].SimilarityScore {
		t.Error("matches not in descending score order")
	}
	if matches[0].Metadata.RoleCategory != types.RoleDataAnalyst {
		t.Errorf("metadata lost: %+v", matches[0].Metadata)
	}
}
