package engine

import (
	"context"
	"strings"
	"time"

	"talentscan/internal/ai"
	"talentscan/internal/benchmarks"
	"talentscan/internal/config"
	"talentscan/internal/errors"
	"talentscan/internal/index"
	"talentscan/internal/observability"
	"talentscan/internal/types"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// ScanState names a stage of the analysis pipeline.
type ScanState string

const (
	StateReceived            ScanState = "received"
	StateEmbedding           ScanState = "embedding"
	StateClassifying         ScanState = "classifying"
	StateMatchingSimilar     ScanState = "matching_similar"
	StateSelectingRegions    ScanState = "selecting_regions"
	StateAggregatingSalary   ScanState = "aggregating_salary"
	StateConsolidatingSkills ScanState = "consolidating_skills"
	StateValidating          ScanState = "validating"
	StateCompleted           ScanState = "completed"
	StateFailed              ScanState = "failed"
)

// Analyzer runs the market scan pipeline. Embedding and similarity lookups
// are best-effort; classification and salary aggregation are required.
type Analyzer struct {
	extract    ai.Provider
	skills     ai.Provider
	embedder   ai.Embedder
	index      index.Index
	classifier *Classifier
	policy     *RegionPolicy
	salary     *SalaryCalculator
	confidence config.ConfidenceConfig
	indexCfg   config.IndexConfig
	embedCfg   config.EmbeddingConfig
	metrics    *observability.Metrics
	logger     *errors.Logger
}

// AnalyzerDeps carries the collaborators for NewAnalyzer. Embedder and Index
// may be nil; the pipeline then runs without similarity context.
type AnalyzerDeps struct {
	Extract  ai.Provider
	Skills   ai.Provider
	Embedder ai.Embedder
	Index    index.Index
	Store    benchmarks.Store
	Config   *config.Config
	Metrics  *observability.Metrics
	Logger   *errors.Logger
}

// NewAnalyzer wires the pipeline.
func NewAnalyzer(deps AnalyzerDeps) *Analyzer {
	return &Analyzer{
		extract:    deps.Extract,
		skills:     deps.Skills,
		embedder:   deps.Embedder,
		index:      deps.Index,
		classifier: NewClassifier(deps.Logger),
		policy:     NewRegionPolicy(deps.Config.Engine.Regions),
		salary:     NewSalaryCalculator(deps.Store, deps.Logger),
		confidence: deps.Config.Engine.Confidence,
		indexCfg:   deps.Config.Index,
		embedCfg:   deps.Config.Embedding,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// Analyze runs the full pipeline for one posting. The result is immutable
// once returned; re-running with unchanged inputs and stores yields the same
// analysis (scan IDs aside).
func (a *Analyzer) Analyze(ctx context.Context, posting types.JobPosting) (*types.MarketScanResult, error) {
	tracer := otel.Tracer("talentscan.engine")
	ctx, span := tracer.Start(ctx, "engine.analyze")
	defer span.End()

	start := time.Now()
	scanID := uuid.NewString()
	span.SetAttributes(attribute.String("scan.id", scanID))

	state := StateReceived
	a.logState(scanID, state)

	fail := func(failedIn ScanState, err error) (*types.MarketScanResult, error) {
		a.logState(scanID, StateFailed)
		a.logger.LogError(err, "Market scan failed",
			"scan_id", scanID,
			"failed_state", string(failedIn))
		span.RecordError(err)
		span.SetAttributes(attribute.String("scan.state", string(StateFailed)))
		a.metrics.RecordScan(ctx, time.Since(start), "", false)
		return nil, err
	}

	if err := validatePosting(posting); err != nil {
		return fail(state, err)
	}

	// Embedding is best-effort: without a vector the scan proceeds with no
	// similarity context and a capped confidence score.
	state = StateEmbedding
	a.logState(scanID, state)
	var vector []float32
	if a.embedder != nil {
		embedded, err := a.embedder.Embed(ctx, ai.BuildEmbedText(posting, a.embedCfg.MaxChars))
		if err != nil {
			a.logger.Warn("Embedding unavailable, proceeding without similarity context",
				"scan_id", scanID,
				"error", err.Error())
		} else {
			vector = embedded
		}
	}

	state = StateClassifying
	a.logState(scanID, state)
	extraction, classification, err := a.classify(ctx, scanID, posting)
	if err != nil {
		return fail(state, err)
	}
	if classification.Corrected {
		a.metrics.RecordClassifierCorrection(ctx)
	}
	span.SetAttributes(
		attribute.String("scan.role_category", string(classification.Category)),
		attribute.Int("scan.complexity", extraction.ComplexityScore),
	)

	state = StateMatchingSimilar
	a.logState(scanID, state)
	matches := a.findSimilar(ctx, scanID, vector)

	state = StateSelectingRegions
	a.logState(scanID, state)
	remote, _ := types.ParseRemoteSuitability(extraction.RemoteWorkSuitability)
	level, _ := types.ParseExperienceLevel(extraction.ExperienceLevel)
	regions := a.policy.SelectRegions(classification.Category, extraction.ComplexityScore, remote)

	mustHave, niceToHave := ConsolidateSkills(extraction.MustHaveSkills, extraction.NiceToHaveSkills)
	analysis := types.JobAnalysis{
		RoleCategory:            classification.Category,
		ExperienceLevel:         level,
		YearsExperienceRequired: extraction.YearsExperienceRequired,
		ComplexityScore:         extraction.ComplexityScore,
		MustHaveSkills:          mustHave,
		NiceToHaveSkills:        niceToHave,
		KeyResponsibilities:     extraction.KeyResponsibilities,
		RemoteWorkSuitability:   remote,
		RecommendedRegions:      regions,
		UniqueChallenges:        extraction.UniqueChallenges,
		SalaryFactors:           extraction.SalaryFactors,
	}

	state = StateAggregatingSalary
	a.logState(scanID, state)
	highDemand := a.policy.HighDemandRegions(regions, analysis.ComplexityScore)
	salaryRec, coverage, err := a.salary.Calculate(ctx, analysis, highDemand)
	if err != nil {
		return fail(state, err)
	}

	state = StateConsolidatingSkills
	a.logState(scanID, state)
	skillsRec := a.consolidateSkills(ctx, scanID, classification.Category, mustHave, niceToHave)

	result := &types.MarketScanResult{
		ScanID:               scanID,
		JobAnalysis:          analysis,
		SalaryRecommendation: salaryRec,
		SkillsRecommendation: skillsRec,
		SimilarScans:         matches,
	}

	state = StateValidating
	a.logState(scanID, state)
	a.validateResult(ctx, scanID, result)

	result.ConfidenceScore = a.confidenceScore(matches, coverage, classification.Certainty)
	a.metrics.RecordConfidence(ctx, result.ConfidenceScore)

	state = StateCompleted
	a.logState(scanID, state)
	span.SetAttributes(
		attribute.String("scan.state", string(state)),
		attribute.Float64("scan.confidence", result.ConfidenceScore),
		attribute.Int("scan.similar_count", len(matches)),
	)
	a.metrics.RecordScan(ctx, time.Since(start), string(classification.Category), true)

	// Index the completed scan for future queries without blocking the
	// response. Failures are logged only.
	if a.index != nil && len(vector) > 0 {
		go a.upsertScan(scanID, vector, types.ScanMetadata{
			JobTitle:           posting.Title,
			RoleCategory:       analysis.RoleCategory,
			ExperienceLevel:    analysis.ExperienceLevel,
			ComplexityScore:    analysis.ComplexityScore,
			RecommendedRegions: analysis.RecommendedRegions,
			CreatedAt:          time.Now().UTC().Format(time.RFC3339),
		})
	}

	return result, nil
}

func validatePosting(posting types.JobPosting) error {
	if strings.TrimSpace(posting.Title) == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Job title must not be empty", nil)
	}
	if strings.TrimSpace(posting.Description) == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Job description must not be empty", nil)
	}
	return nil
}

// classify runs AI extraction with boundary validation, falling back to
// keyword classification with default extraction values when the AI service
// is unavailable and the title maps cleanly into the catalog.
func (a *Analyzer) classify(ctx context.Context, scanID string, posting types.JobPosting) (types.JobExtraction, Classification, error) {
	extraction, usage, err := a.extract.ExtractJobAnalysis(ctx, posting)
	if err != nil {
		classification, ok := a.classifier.ClassifyByKeywords(posting.Title)
		if !ok {
			return types.JobExtraction{}, Classification{}, errors.NewAIError(errors.ErrCodeClassificationFailed,
				"Job extraction failed and no keyword rule matched the title", err)
		}
		a.logger.Warn("AI extraction unavailable, using keyword fallback",
			"scan_id", scanID,
			"category", string(classification.Category),
			"error", err.Error())
		return fallbackExtraction(classification.Category), classification, nil
	}
	if usage != nil {
		a.metrics.RecordTokenUsage(ctx, "extract_job", usage.InputTokens, usage.OutputTokens, usage.TotalTokens)
	}

	// Clamp rather than fail on an out-of-range score; the enum fields have
	// no safe correction and stay fatal
	if extraction.ComplexityScore < 1 || extraction.ComplexityScore > 10 {
		clamped := min(max(extraction.ComplexityScore, 1), 10)
		a.logger.Warn("Clamping out-of-range complexity score",
			"scan_id", scanID,
			"reported", extraction.ComplexityScore,
			"clamped", clamped)
		extraction.ComplexityScore = clamped
	}
	if err := extraction.Validate(); err != nil {
		return types.JobExtraction{}, Classification{}, errors.NewAIError(errors.ErrCodeAIResponseInvalid,
			"Job extraction failed validation", err)
	}

	classification, err := a.classifier.Classify(posting.Title, extraction.RoleCategoryGuess)
	if err != nil {
		return types.JobExtraction{}, Classification{}, err
	}
	return extraction, classification, nil
}

// fallbackExtraction provides conservative defaults when extraction is
// unavailable but the title classified by keyword.
func fallbackExtraction(category types.RoleCategory) types.JobExtraction {
	return types.JobExtraction{
		RoleCategoryGuess:       string(category),
		ExperienceLevel:         string(types.ExperienceMid),
		YearsExperienceRequired: "3-5 years",
		ComplexityScore:         5,
		MustHaveSkills:          []string{"Communication", "Project Management", "Analytical Thinking"},
		NiceToHaveSkills:        []string{"Remote Work Experience", "Industry Knowledge"},
		KeyResponsibilities:     []string{"Manage daily operations", "Coordinate with teams", "Analyze performance"},
		RemoteWorkSuitability:   string(types.RemoteHigh),
		UniqueChallenges:        "Standard remote role requirements",
		SalaryFactors:           []string{"Experience level", "Technical skills", "Industry knowledge"},
	}
}

// findSimilar queries the index, tolerating an unavailable backend.
func (a *Analyzer) findSimilar(ctx context.Context, scanID string, vector []float32) []types.SimilarScanMatch {
	if a.index == nil || len(vector) == 0 {
		return nil
	}

	queryCtx, cancel := context.WithTimeout(ctx, a.indexCfg.QueryTimeout)
	defer cancel()

	matches, err := a.index.Query(queryCtx, vector, a.indexCfg.TopK, a.indexCfg.MinScore)
	if err != nil {
		a.logger.Warn("Similarity index unavailable, proceeding without matches",
			"scan_id", scanID,
			"error", err.Error())
		return nil
	}
	return matches
}

// consolidateSkills optionally enriches the consolidated lists with AI
// categories and certifications. Enhancement failure falls back to the plain
// consolidated lists.
func (a *Analyzer) consolidateSkills(ctx context.Context, scanID string, category types.RoleCategory, mustHave, niceToHave []string) types.SkillsRecommendation {
	base := types.SkillsRecommendation{
		MustHaveSkills:   mustHave,
		NiceToHaveSkills: niceToHave,
	}
	if a.skills == nil {
		return base
	}

	enhanced, usage, err := a.skills.EnhanceSkills(ctx, ai.EnhanceSkillsInput{
		RoleCategory:     category,
		MustHaveSkills:   mustHave,
		NiceToHaveSkills: niceToHave,
	})
	if err != nil {
		a.logger.Warn("Skills enhancement unavailable, using consolidated lists",
			"scan_id", scanID,
			"error", err.Error())
		return base
	}
	if usage != nil {
		a.metrics.RecordTokenUsage(ctx, "enhance_skills", usage.InputTokens, usage.OutputTokens, usage.TotalTokens)
	}

	// The model output is re-consolidated; disjointness is never delegated
	enhanced.MustHaveSkills, enhanced.NiceToHaveSkills = ConsolidateSkills(enhanced.MustHaveSkills, enhanced.NiceToHaveSkills)
	if len(enhanced.MustHaveSkills) == 0 {
		return base
	}
	return enhanced
}

// validateResult re-checks cross-component invariants and corrects
// violations by reapplying the authoritative derivations. Corrections are
// defects worth alerting on, not user-visible errors.
func (a *Analyzer) validateResult(ctx context.Context, scanID string, result *types.MarketScanResult) {
	// Recommended regions stay within 1-3
	if len(result.JobAnalysis.RecommendedRegions) > 3 {
		a.recordCorrection(ctx, scanID, "region_count")
		result.JobAnalysis.RecommendedRegions = result.JobAnalysis.RecommendedRegions[:3]
	}

	recommended := make(map[types.Region]bool, len(result.JobAnalysis.RecommendedRegions))
	for _, region := range result.JobAnalysis.RecommendedRegions {
		recommended[region] = true
	}

	// High-demand regions must be a subset of recommended regions
	for _, region := range result.SalaryRecommendation.MarketInsights.HighDemandRegions {
		if !recommended[region] {
			a.recordCorrection(ctx, scanID, "high_demand_subset")
			result.SalaryRecommendation.MarketInsights.HighDemandRegions = a.policy.HighDemandRegions(
				result.JobAnalysis.RecommendedRegions, result.JobAnalysis.ComplexityScore)
			break
		}
	}

	// Salary ranges must not cover regions outside the recommendation
	for region := range result.SalaryRecommendation.Ranges {
		if !recommended[region] {
			a.recordCorrection(ctx, scanID, "salary_region_subset")
			delete(result.SalaryRecommendation.Ranges, region)
		}
	}

	// Skill lists must be disjoint
	if !SkillsDisjoint(result.SkillsRecommendation.MustHaveSkills, result.SkillsRecommendation.NiceToHaveSkills) {
		a.recordCorrection(ctx, scanID, "skills_disjoint")
		result.SkillsRecommendation.MustHaveSkills, result.SkillsRecommendation.NiceToHaveSkills =
			ConsolidateSkills(result.SkillsRecommendation.MustHaveSkills, result.SkillsRecommendation.NiceToHaveSkills)
	}
}

func (a *Analyzer) recordCorrection(ctx context.Context, scanID, check string) {
	correction := errors.NewConsistencyError(errors.ErrCodeConsistencyViolation,
		"Result invariant violated, correcting", nil).WithContext("check", check)
	a.logger.LogError(correction, "Consistency correction applied",
		"scan_id", scanID,
		"check", check)
	a.metrics.RecordConsistencyCorrection(ctx, check)
}

// confidenceScore combines similarity, benchmark coverage and classifier
// certainty. With no similar scans the score is capped below the
// high-confidence threshold.
func (a *Analyzer) confidenceScore(matches []types.SimilarScanMatch, coverage, certainty float64) float64 {
	var similarity float64
	if len(matches) > 0 {
		top := matches
		if len(top) > 3 {
			top = top[:3]
		}
		var sum float64
		for _, m := range top {
			sum += m.SimilarityScore
		}
		similarity = sum / float64(len(top))
	}

	score := a.confidence.SimilarityWeight*similarity +
		a.confidence.CoverageWeight*coverage +
		a.confidence.ClassifierWeight*certainty

	if len(matches) == 0 && a.confidence.HighConfidenceCap > 0 {
		score = min(score, a.confidence.HighConfidenceCap)
	}
	return min(max(score, 0), 1)
}

// upsertScan indexes a completed scan on a detached context.
func (a *Analyzer) upsertScan(scanID string, vector []float32, metadata types.ScanMetadata) {
	ctx, cancel := context.WithTimeout(context.Background(), a.indexCfg.UpsertTimeout)
	defer cancel()

	if err := a.index.Upsert(ctx, scanID, vector, metadata); err != nil {
		a.logger.Warn("Failed to index completed scan",
			"scan_id", scanID,
			"error", err.Error())
		return
	}
	a.logger.Debug("Indexed completed scan", "scan_id", scanID)
}

func (a *Analyzer) logState(scanID string, state ScanState) {
	a.logger.Debug("Scan state transition",
		"scan_id", scanID,
		"state", string(state))
}
