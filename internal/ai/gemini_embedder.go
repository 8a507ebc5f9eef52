package ai

import (
	"context"
	"fmt"

	"unicode/utf8"

	"talentscan/internal/config"
	"talentscan/internal/errors"
	"talentscan/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// GeminiEmbedder implements Embedder using the Gemini embedding models. Calls
// are rate limited client-side because embedding traffic is bursty around
// batch re-indexing.
type GeminiEmbedder struct {
	client  *genai.Client
	config  *config.EmbeddingConfig
	limiter *rate.Limiter
	breaker *EmbedCircuitBreaker
	logger  *errors.Logger
}

var _ Embedder = (*GeminiEmbedder)(nil)

// NewGeminiEmbedder creates a new Gemini embedding adapter
func NewGeminiEmbedder(cfg *config.EmbeddingConfig, apiKey string, logger *errors.Logger) (*GeminiEmbedder, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, errors.NewEmbeddingError(errors.ErrCodeEmbeddingUnavailable,
			"Failed to create Gemini embedding client", err)
	}

	limit := rate.Limit(float64(cfg.RequestsPerMin) / 60.0)
	burst := cfg.BurstCapacity
	if burst < 1 {
		burst = 1
	}

	return &GeminiEmbedder{
		client:  client,
		config:  cfg,
		limiter: rate.NewLimiter(limit, burst),
		breaker: NewEmbedCircuitBreaker(cfg, logger),
		logger:  logger,
	}, nil
}

// BuildEmbedText composes the canonical embedding text for a posting,
// truncated to the configured character limit.
func BuildEmbedText(posting types.JobPosting, maxChars int) string {
	text := fmt.Sprintf("Job Title: %s\n\nJob Description: %s", posting.Title, posting.Description)
	return truncateText(text, maxChars)
}

// truncateText caps text at maxChars bytes without splitting a UTF-8 rune.
// The cut point backs off to the nearest rune boundary so the result is
// always valid UTF-8.
func truncateText(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// Embed converts text into a dense vector
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	tracer := otel.Tracer("talentscan.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini.embed")
	defer span.End()

	text = truncateText(text, e.config.MaxChars)

	span.SetAttributes(
		attribute.String("ai.model", e.config.Model),
		attribute.Int("ai.embedding.dimension", e.config.Dimension),
		attribute.Int("input.text_length", len(text)),
	)

	if err := e.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		return nil, errors.NewEmbeddingError(errors.ErrCodeEmbeddingUnavailable,
			"Embedding rate limit wait aborted", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	dimension := int32(e.config.Dimension)
	embedConfig := &genai.EmbedContentConfig{
		OutputDimensionality: &dimension,
	}

	result, err := e.breaker.Execute(func() (*genai.EmbedContentResponse, error) {
		return executeWithRetry(ctx, e.logger, "embed", e.config.MaxRetries, func() (*genai.EmbedContentResponse, error) {
			return e.client.Models.EmbedContent(ctx, e.config.Model, genai.Text(text), embedConfig)
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, errors.NewEmbeddingError(errors.ErrCodeEmbeddingUnavailable,
			"Failed to generate embedding", err)
	}

	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		span.SetAttributes(attribute.Bool("success", false))
		return nil, errors.NewEmbeddingError(errors.ErrCodeEmbeddingUnavailable,
			"Embedding response contained no vector", nil)
	}

	vector := result.Embeddings[0].Values
	if len(vector) != e.config.Dimension {
		e.logger.Warn("Embedding dimension mismatch",
			"expected", e.config.Dimension,
			"actual", len(vector),
			"model", e.config.Model)
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("output.vector_length", len(vector)),
	)

	return vector, nil
}

// Close implements Embedder interface
func (e *GeminiEmbedder) Close() error {
	return nil
}
