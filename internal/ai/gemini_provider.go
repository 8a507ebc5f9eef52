package ai

import (
	"context"
	"crypto/rand"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"talentscan/internal/config"
	"talentscan/internal/errors"
	"talentscan/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GeminiProvider implements Provider for Google Gemini
type GeminiProvider struct {
	client         *genai.Client
	httpClient     *http.Client
	config         *config.AIOperationConfig
	circuitBreaker *AICircuitBreaker
	modelBreaker   *ModelCircuitBreaker
	logger         *errors.Logger
}

// Ensure GeminiProvider implements Provider
var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance for a specific operation
func NewGeminiProvider(cfg *config.AIOperationConfig, operationType string, logger *errors.Logger) (*GeminiProvider, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client: client,
		httpClient: &http.Client{
			Timeout: *cfg.Timeout,
		},
		config:         cfg,
		circuitBreaker: NewAICircuitBreaker(operationType, cfg, logger),
		modelBreaker:   NewModelCircuitBreaker(operationType, cfg, logger),
		logger:         logger,
	}, nil
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Available: false,
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	model, err := g.modelBreaker.ExecuteModel(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", g.config.Provider,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	if model.DisplayName != "" {
		modelInfo.DisplayName = model.DisplayName
	}
	if model.Version != "" {
		modelInfo.Version = model.Version
	}

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"provider", g.config.Provider,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

// executeWithRetry executes an operation with retry logic and exponential backoff
func executeWithRetry[T any](ctx context.Context, logger *errors.Logger, operation string, maxRetries int, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", maxRetries,
				"error", lastErr.Error())

			// Exponential backoff with jitter to prevent thundering herd
			baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			jitterMax := big.NewInt(int64(float64(baseDelay) * 0.1))
			jitterBig, _ := rand.Int(rand.Reader, jitterMax)
			jitter := time.Duration(jitterBig.Int64())
			// Cap maximum backoff at 30 seconds
			backoff := min(baseDelay+jitter, 30*time.Second)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"successful_attempt", attempt+1)
			}
			return result, nil
		}

		lastErr = err

		// Don't retry on certain errors (auth, invalid input, etc.)
		if !isRetryableError(err) {
			logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"total_attempts", maxRetries+1)

	return zero, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, maxRetries, lastErr)
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Network errors (timeouts, connection issues) are retryable
	var netErr net.Error
	if goerrors.As(err, &netErr) {
		return true
	}

	// Check for Google API errors (HTTP status codes)
	var apiErr *googleapi.Error
	if goerrors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// executeAIOperation is a generic helper to run AI operations with common tracing, circuit breaker, and parsing logic.
func executeAIOperation[Out any](
	g *GeminiProvider,
	ctx context.Context,
	operationName string,
	userPrompt string,
	systemPrompt string,
	genaiConfig *genai.GenerateContentConfig,
	spanAttributes ...attribute.KeyValue,
) (Out, *TokenUsage, error) {
	var output Out
	tracer := otel.Tracer("talentscan.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+operationName)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(*g.config.Temperature)),
	)
	span.SetAttributes(spanAttributes...)

	if systemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return executeWithRetry(ctx, g.logger, operationName, *g.config.MaxRetries, func() (*genai.GenerateContentResponse, error) {
			return g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(userPrompt), genaiConfig)
		})
	})

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "Failed to generate content for "+operationName, err)
	}

	if err := json.Unmarshal([]byte(result.Text()), &output); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, errors.NewAIError(errors.ErrCodeAIResponseInvalid, "Failed to parse AI response for "+operationName, err)
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return output, tokenUsage, nil
}

// ExtractJobAnalysis implements Provider for structured job posting extraction
func (g *GeminiProvider) ExtractJobAnalysis(ctx context.Context, posting types.JobPosting) (types.JobExtraction, *TokenUsage, error) {
	systemPrompt := DefaultSystemPrompts.ExtractJob
	userPrompt := fmt.Sprintf(DefaultUserPrompts.ExtractJob,
		posting.Title, posting.Description, posting.HiringChallenges)
	config := g.buildExtractSchema()

	output, tokenUsage, err := executeAIOperation[types.JobExtraction](
		g,
		ctx,
		"extract_job",
		userPrompt,
		systemPrompt,
		config,
		attribute.Int("input.title_length", len(posting.Title)),
		attribute.Int("input.description_length", len(posting.Description)),
	)

	if err != nil {
		return types.JobExtraction{}, nil, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("output.role_category", output.RoleCategoryGuess),
			attribute.Int("output.complexity_score", output.ComplexityScore),
			attribute.Int("output.must_have_count", len(output.MustHaveSkills)),
		)
	}

	return output, tokenUsage, nil
}

// skillsEnhancement is the raw response shape for the skills operation. The
// category groups come back as an array because the response schema cannot
// express open-keyed maps.
type skillsEnhancement struct {
	MustHaveSkills               []string            `json:"mustHaveSkills"`
	NiceToHaveSkills             []string            `json:"niceToHaveSkills"`
	SkillCategories              []skillCategoryItem `json:"skillCategories"`
	CertificationRecommendations []string            `json:"certificationRecommendations"`
}

type skillCategoryItem struct {
	Category string   `json:"category"`
	Skills   []string `json:"skills"`
}

// EnhanceSkills implements Provider for skills consolidation and enrichment
func (g *GeminiProvider) EnhanceSkills(ctx context.Context, input EnhanceSkillsInput) (types.SkillsRecommendation, *TokenUsage, error) {
	systemPrompt := DefaultSystemPrompts.EnhanceSkills
	userPrompt := fmt.Sprintf(DefaultUserPrompts.EnhanceSkills,
		input.RoleCategory,
		strings.Join(input.MustHaveSkills, "\n"),
		strings.Join(input.NiceToHaveSkills, "\n"))
	config := g.buildSkillsSchema()

	output, tokenUsage, err := executeAIOperation[skillsEnhancement](
		g,
		ctx,
		"enhance_skills",
		userPrompt,
		systemPrompt,
		config,
		attribute.String("input.role_category", string(input.RoleCategory)),
		attribute.Int("input.must_have_count", len(input.MustHaveSkills)),
		attribute.Int("input.nice_to_have_count", len(input.NiceToHaveSkills)),
	)

	if err != nil {
		return types.SkillsRecommendation{}, nil, err
	}

	recommendation := types.SkillsRecommendation{
		MustHaveSkills:               output.MustHaveSkills,
		NiceToHaveSkills:             output.NiceToHaveSkills,
		CertificationRecommendations: output.CertificationRecommendations,
	}
	if len(output.SkillCategories) > 0 {
		recommendation.SkillCategories = make(map[string][]string, len(output.SkillCategories))
		for _, group := range output.SkillCategories {
			if group.Category == "" || len(group.Skills) == 0 {
				continue
			}
			recommendation.SkillCategories[group.Category] = group.Skills
		}
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Int("output.must_have_count", len(recommendation.MustHaveSkills)),
			attribute.Int("output.category_count", len(recommendation.SkillCategories)),
		)
	}

	return recommendation, tokenUsage, nil
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"ai_operations":    g.circuitBreaker.GetStats(),
		"model_operations": g.modelBreaker.GetModelStats(),
	}

	// Overall health - both breakers must be healthy
	stats["overall_healthy"] = g.circuitBreaker.IsHealthy() && g.modelBreaker.IsModelHealthy()

	return stats
}

// Close implements Provider interface
func (g *GeminiProvider) Close() error {
	// Gemini client doesn't have a Close method in current single-shot usage
	return nil
}

func roleCategoryEnum() []string {
	categories := types.KnownRoleCategories()
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return names
}

// buildExtractSchema creates the response schema for job extraction requests
func (g *GeminiProvider) buildExtractSchema() *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"roleCategory": {
					Type: genai.TypeString,
					Enum: roleCategoryEnum(),
				},
				"experienceLevel": {
					Type: genai.TypeString,
					Enum: []string{"junior", "mid", "senior", "expert"},
				},
				"yearsExperienceRequired": {Type: genai.TypeString},
				"complexityScore":         {Type: genai.TypeInteger},
				"mustHaveSkills": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"niceToHaveSkills": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"keyResponsibilities": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"remoteWorkSuitability": {
					Type: genai.TypeString,
					Enum: []string{"low", "medium", "high"},
				},
				"uniqueChallenges": {Type: genai.TypeString},
				"salaryFactors": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
			},
			Required: []string{
				"roleCategory", "experienceLevel", "yearsExperienceRequired",
				"complexityScore", "mustHaveSkills", "niceToHaveSkills",
				"keyResponsibilities", "remoteWorkSuitability", "salaryFactors",
			},
		},
	}

	// Apply temperature configuration if set
	if *g.config.Temperature > 0 {
		config.Temperature = g.config.Temperature
	}

	return config
}

// buildSkillsSchema creates the response schema for skills enhancement requests
func (g *GeminiProvider) buildSkillsSchema() *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"mustHaveSkills": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"niceToHaveSkills": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"skillCategories": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"category": {Type: genai.TypeString},
							"skills": {
								Type:  genai.TypeArray,
								Items: &genai.Schema{Type: genai.TypeString},
							},
						},
						Required: []string{"category", "skills"},
					},
				},
				"certificationRecommendations": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
			},
			Required: []string{"mustHaveSkills", "niceToHaveSkills", "skillCategories"},
		},
	}

	if *g.config.Temperature > 0 {
		config.Temperature = g.config.Temperature
	}

	return config
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
