package index

import (
	"context"
	"encoding/json"

	"talentscan/internal/config"
	"talentscan/internal/errors"
	"talentscan/internal/types"

	"github.com/redis/go-redis/v9"
)

// RedisIndex stores scan vectors in Redis hashes, one hash per scan under a
// common key prefix. Scoring happens client-side, which keeps the backend a
// plain Redis with no module requirements and caps well below a few hundred
// thousand vectors.
type RedisIndex struct {
	client    *redis.Client
	keyPrefix string
	logger    *errors.Logger
}

var _ Index = (*RedisIndex)(nil)

const (
	fieldVector   = "vector"
	fieldMetadata = "metadata"
)

// NewRedisIndex connects to Redis and verifies the connection.
func NewRedisIndex(ctx context.Context, cfg *config.IndexConfig, logger *errors.Logger) (*RedisIndex, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, errors.NewIndexError(errors.ErrCodeIndexUnavailable,
			"Invalid Redis URL", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.NewIndexError(errors.ErrCodeIndexUnavailable,
			"Failed to connect to Redis", err)
	}

	logger.Info("Connected to Redis similarity index",
		"addr", opts.Addr,
		"key_prefix", cfg.KeyPrefix)

	return &RedisIndex{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		logger:    logger,
	}, nil
}

// Upsert stores or replaces the vector and metadata for a scan.
func (r *RedisIndex) Upsert(ctx context.Context, scanID string, vector []float32, metadata types.ScanMetadata) error {
	if scanID == "" {
		return errors.NewIndexError(errors.ErrCodeIndexUnavailable, "Scan ID must not be empty", nil)
	}
	if len(vector) == 0 {
		return errors.NewIndexError(errors.ErrCodeIndexUnavailable, "Vector must not be empty", nil)
	}

	vectorJSON, err := json.Marshal(vector)
	if err != nil {
		return errors.NewIndexError(errors.ErrCodeIndexUnavailable, "Failed to encode vector", err)
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return errors.NewIndexError(errors.ErrCodeIndexUnavailable, "Failed to encode scan metadata", err)
	}

	key := r.keyPrefix + scanID
	if err := r.client.HSet(ctx, key,
		fieldVector, vectorJSON,
		fieldMetadata, metadataJSON,
	).Err(); err != nil {
		return errors.NewIndexError(errors.ErrCodeIndexUnavailable,
			"Failed to store scan vector", err)
	}

	return nil
}

// Query scans all stored vectors and scores them against the query vector.
func (r *RedisIndex) Query(ctx context.Context, vector []float32, topK int, minScore float64) ([]types.SimilarScanMatch, error) {
	if len(vector) == 0 {
		return nil, errors.NewIndexError(errors.ErrCodeIndexUnavailable, "Query vector must not be empty", nil)
	}

	var matches []types.SimilarScanMatch

	iter := r.client.Scan(ctx, 0, r.keyPrefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		fields, err := r.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, errors.NewIndexError(errors.ErrCodeIndexUnavailable,
				"Failed to read scan entry", err)
		}

		var stored []float32
		if err := json.Unmarshal([]byte(fields[fieldVector]), &stored); err != nil {
			// A corrupt entry should not poison the whole query
			r.logger.Warn("Skipping corrupt index entry", "key", key, "error", err.Error())
			continue
		}

		var metadata types.ScanMetadata
		if raw, ok := fields[fieldMetadata]; ok && raw != "" {
			if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
				r.logger.Warn("Skipping entry with corrupt metadata", "key", key, "error", err.Error())
				continue
			}
		}

		matches = append(matches, types.SimilarScanMatch{
			ScanID:          key[len(r.keyPrefix):],
			SimilarityScore: CosineSimilarity(vector, stored),
			Metadata:        metadata,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, errors.NewIndexError(errors.ErrCodeIndexUnavailable,
			"Failed to scan index keys", err)
	}

	return rankMatches(matches, topK, minScore), nil
}

// Close releases the Redis connection.
func (r *RedisIndex) Close() error {
	return r.client.Close()
}
