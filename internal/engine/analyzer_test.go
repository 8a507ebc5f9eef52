package engine

import (
	"context"
	goerrors "errors"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"talentscan/internal/ai"
	"talentscan/internal/benchmarks"
	"talentscan/internal/config"
	"talentscan/internal/errors"
	"talentscan/internal/index"
	"talentscan/internal/types"
)

type stubProvider struct {
	extraction types.JobExtraction
	extractErr error
	skills     types.SkillsRecommendation
	skillsErr  error
}

func (s *stubProvider) ExtractJobAnalysis(ctx context.Context, posting types.JobPosting) (types.JobExtraction, *ai.TokenUsage, error) {
	if s.extractErr != nil {
		return types.JobExtraction{}, nil, s.extractErr
	}
	return s.extraction, &ai.TokenUsage{InputTokens: 100, OutputTokens: 50, TotalTokens: 150}, nil
}

func (s *stubProvider) EnhanceSkills(ctx context.Context, input ai.EnhanceSkillsInput) (types.SkillsRecommendation, *ai.TokenUsage, error) {
	if s.skillsErr != nil {
		return types.SkillsRecommendation{}, nil, s.skillsErr
	}
	return s.skills, &ai.TokenUsage{InputTokens: 80, OutputTokens: 40, TotalTokens: 120}, nil
}

func (s *stubProvider) GetModelInfo(ctx context.Context) *ai.ModelInfo { return nil }

func (s *stubProvider) GetCircuitBreakerStats() map[string]any { return nil }

func (s *stubProvider) Close() error { return nil }

type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.vector, s.err
}

func (s *stubEmbedder) Close() error { return nil }

func analyzerConfig() *config.Config {
	return &config.Config{
		Embedding: config.EmbeddingConfig{MaxChars: 8000},
		Index: config.IndexConfig{
			TopK:          5,
			MinScore:      0.75,
			QueryTimeout:  time.Second,
			UpsertTimeout: time.Second,
		},
		Engine: config.EngineConfig{
			Regions: config.RegionPolicyConfig{
				PremiumComplexityThreshold:  8,
				USHighDemandThreshold:       8,
				TimezoneComplexityThreshold: 6,
				StrategicCategories:         []string{"Sales Operations Manager"},
				MaxRegions:                  3,
			},
			Confidence: config.ConfidenceConfig{
				SimilarityWeight:  0.5,
				CoverageWeight:    0.3,
				ClassifierWeight:  0.2,
				HighConfidenceCap: 0.5,
			},
		},
	}
}

func analystExtraction() types.JobExtraction {
	return types.JobExtraction{
		RoleCategoryGuess:       "Data Analyst",
		ExperienceLevel:         "junior",
		YearsExperienceRequired: "2-4 years",
		ComplexityScore:         5,
		MustHaveSkills:          []string{"SQL", "Excel"},
		NiceToHaveSkills:        []string{"Python", "SQL"},
		KeyResponsibilities:     []string{"Build dashboards"},
		RemoteWorkSuitability:   "high",
		SalaryFactors:           []string{"Experience level"},
	}
}

func newTestAnalyzer(t *testing.T, provider *stubProvider, embedder ai.Embedder, idx index.Index) *Analyzer {
	t.Helper()
	return NewAnalyzer(AnalyzerDeps{
		Extract:  provider,
		Skills:   provider,
		Embedder: embedder,
		Index:    idx,
		Store:    benchmarks.NewStaticStore(),
		Config:   analyzerConfig(),
		Logger:   errors.NewLogger(slog.LevelError),
	})
}

func seedIndex(t *testing.T, idx *index.MemoryIndex, vector []float32, ids ...string) {
	t.Helper()
	for _, id := range ids {
		meta := types.ScanMetadata{JobTitle: "Data Analyst", RoleCategory: types.RoleDataAnalyst}
		if err := idx.Upsert(context.Background(), id, vector, meta); err != nil {
			t.Fatalf("seed upsert: %v", err)
		}
	}
}

func TestAnalyzeFullPipeline(t *testing.T) {
	vector := []float32{1, 0, 0}
	idx := index.NewMemoryIndex()
	seedIndex(t, idx, vector, "scan-a", "scan-b", "scan-c")

	provider := &stubProvider{
		extraction: analystExtraction(),
		skills: types.SkillsRecommendation{
			MustHaveSkills:   []string{"SQL", "Excel", "Looker"},
			NiceToHaveSkills: []string{"Python", "sql"},
			SkillCategories:  map[string][]string{"Technical": {"SQL", "Python"}},
		},
	}
	analyzer := newTestAnalyzer(t, provider, &stubEmbedder{vector: vector}, idx)

	result, err := analyzer.Analyze(context.Background(), types.JobPosting{
		Title:       "Data Analyst",
		Description: "Own reporting and dashboards for the growth team.",
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if result.ScanID == "" {
		t.Error("missing scan ID")
	}
	if result.JobAnalysis.RoleCategory != types.RoleDataAnalyst {
		t.Errorf("RoleCategory = %q, want Data Analyst", result.JobAnalysis.RoleCategory)
	}
	wantRegions := []types.Region{types.RegionPhilippines, types.RegionLatinAmerica}
	if len(result.JobAnalysis.RecommendedRegions) != len(wantRegions) {
		t.Fatalf("RecommendedRegions = %v, want %v", result.JobAnalysis.RecommendedRegions, wantRegions)
	}
	for i, region := range wantRegions {
		if result.JobAnalysis.RecommendedRegions[i] != region {
			t.Errorf("RecommendedRegions[%d] = %q, want %q", i, result.JobAnalysis.RecommendedRegions[i], region)
		}
	}
	if len(result.SimilarScans) != 3 {
		t.Errorf("len(SimilarScans) = %d, want 3", len(result.SimilarScans))
	}
	if result.SalaryRecommendation.RecommendedPayBand != types.PayBandMid {
		t.Errorf("pay band = %q, want mid", result.SalaryRecommendation.RecommendedPayBand)
	}

	// All three identical vectors score 1.0; junior hits the 2-4 band exactly
	// in both regions; the title lookup is certain. 0.5 + 0.3 + 0.2 = 1.0.
	if result.ConfidenceScore < 0.999 || result.ConfidenceScore > 1.0 {
		t.Errorf("ConfidenceScore = %v, want 1.0", result.ConfidenceScore)
	}

	if !SkillsDisjoint(result.SkillsRecommendation.MustHaveSkills, result.SkillsRecommendation.NiceToHaveSkills) {
		t.Error("skills lists are not disjoint")
	}
	foundLooker := false
	for _, skill := range result.SkillsRecommendation.MustHaveSkills {
		if skill == "Looker" {
			foundLooker = true
		}
	}
	if !foundLooker {
		t.Error("enhanced skill missing from result")
	}

	// The completed scan is indexed asynchronously
	deadline := time.Now().Add(2 * time.Second)
	for idx.Len() < 4 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if idx.Len() != 4 {
		t.Errorf("index size = %d, want 4 after post-completion upsert", idx.Len())
	}
}

func TestAnalyzeEmbeddingFailureIsRecoverable(t *testing.T) {
	provider := &stubProvider{extraction: analystExtraction(), skillsErr: goerrors.New("unavailable")}
	analyzer := newTestAnalyzer(t, provider, &stubEmbedder{err: goerrors.New("quota exhausted")}, index.NewMemoryIndex())

	result, err := analyzer.Analyze(context.Background(), types.JobPosting{
		Title:       "Data Analyst",
		Description: "Own reporting.",
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(result.SimilarScans) != 0 {
		t.Errorf("len(SimilarScans) = %d, want 0", len(result.SimilarScans))
	}
	if result.ConfidenceScore > 0.5 {
		t.Errorf("ConfidenceScore = %v, want capped at 0.5 without similar scans", result.ConfidenceScore)
	}
}

func TestAnalyzeConfidenceCappedWithoutMatches(t *testing.T) {
	provider := &stubProvider{extraction: analystExtraction(), skillsErr: goerrors.New("unavailable")}
	analyzer := newTestAnalyzer(t, provider, &stubEmbedder{vector: []float32{1, 0, 0}}, index.NewMemoryIndex())

	result, err := analyzer.Analyze(context.Background(), types.JobPosting{
		Title:       "Data Analyst",
		Description: "Own reporting.",
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	// Coverage and certainty alone reach exactly the cap
	if result.ConfidenceScore != 0.5 {
		t.Errorf("ConfidenceScore = %v, want 0.5", result.ConfidenceScore)
	}
}

func TestAnalyzeKeywordFallbackOnExtractionFailure(t *testing.T) {
	provider := &stubProvider{
		extractErr: goerrors.New("model unavailable"),
		skillsErr:  goerrors.New("model unavailable"),
	}
	analyzer := newTestAnalyzer(t, provider, &stubEmbedder{vector: []float32{1, 0, 0}}, index.NewMemoryIndex())

	result, err := analyzer.Analyze(context.Background(), types.JobPosting{
		Title:       "Logistics Coordinator",
		Description: "Coordinate inbound freight.",
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result.JobAnalysis.RoleCategory != types.RoleLogisticsManager {
		t.Errorf("RoleCategory = %q, want Logistics Manager", result.JobAnalysis.RoleCategory)
	}
	if result.JobAnalysis.ComplexityScore != 5 {
		t.Errorf("ComplexityScore = %d, want fallback default 5", result.JobAnalysis.ComplexityScore)
	}
	if result.JobAnalysis.RemoteWorkSuitability != types.RemoteHigh {
		t.Errorf("RemoteWorkSuitability = %q, want high", result.JobAnalysis.RemoteWorkSuitability)
	}
	if result.ConfidenceScore >= 0.5 {
		t.Errorf("ConfidenceScore = %v, want below cap for degraded scan", result.ConfidenceScore)
	}
}

func TestAnalyzeFailsWhenNothingClassifies(t *testing.T) {
	provider := &stubProvider{extractErr: goerrors.New("model unavailable")}
	analyzer := newTestAnalyzer(t, provider, &stubEmbedder{vector: []float32{1, 0, 0}}, index.NewMemoryIndex())

	_, err := analyzer.Analyze(context.Background(), types.JobPosting{
		Title:       "Chief Vibes Officer",
		Description: "Keep the vibes immaculate.",
	})
	if err == nil {
		t.Fatal("expected classification failure")
	}
	var appErr *errors.AppError
	if !goerrors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeClassificationFailed {
		t.Errorf("Code = %q, want %q", appErr.Code, errors.ErrCodeClassificationFailed)
	}
}

func TestAnalyzeSkillsEnhancementFailureFallsBack(t *testing.T) {
	provider := &stubProvider{
		extraction: analystExtraction(),
		skillsErr:  goerrors.New("model unavailable"),
	}
	analyzer := newTestAnalyzer(t, provider, &stubEmbedder{vector: []float32{1, 0, 0}}, index.NewMemoryIndex())

	result, err := analyzer.Analyze(context.Background(), types.JobPosting{
		Title:       "Data Analyst",
		Description: "Own reporting.",
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	wantMust := []string{"SQL", "Excel"}
	wantNice := []string{"Python"}
	if len(result.SkillsRecommendation.MustHaveSkills) != len(wantMust) {
		t.Fatalf("MustHaveSkills = %v, want %v", result.SkillsRecommendation.MustHaveSkills, wantMust)
	}
	if len(result.SkillsRecommendation.NiceToHaveSkills) != len(wantNice) {
		t.Fatalf("NiceToHaveSkills = %v, want %v", result.SkillsRecommendation.NiceToHaveSkills, wantNice)
	}
	if result.SkillsRecommendation.NiceToHaveSkills[0] != "Python" {
		t.Errorf("NiceToHaveSkills[0] = %q, want Python", result.SkillsRecommendation.NiceToHaveSkills[0])
	}
}

func TestAnalyzeRejectsBlankPosting(t *testing.T) {
	provider := &stubProvider{extraction: analystExtraction()}
	analyzer := newTestAnalyzer(t, provider, nil, nil)

	tests := []struct {
		name    string
		posting types.JobPosting
	}{
		{"empty title", types.JobPosting{Description: "desc"}},
		{"empty description", types.JobPosting{Title: "Data Analyst"}},
		{"whitespace only", types.JobPosting{Title: "  ", Description: "\t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analyzer.Analyze(context.Background(), tt.posting)
			if err == nil {
				t.Fatal("expected validation error")
			}
			var appErr *errors.AppError
			if !goerrors.As(err, &appErr) {
				t.Fatalf("expected *AppError, got %T", err)
			}
			if appErr.Code != errors.ErrCodeInvalidRequest {
				t.Errorf("Code = %q, want %q", appErr.Code, errors.ErrCodeInvalidRequest)
			}
		})
	}
}

func TestAnalyzeClampsComplexity(t *testing.T) {
	extraction := analystExtraction()
	extraction.ComplexityScore = 15
	provider := &stubProvider{extraction: extraction, skillsErr: goerrors.New("unavailable")}
	analyzer := newTestAnalyzer(t, provider, &stubEmbedder{vector: []float32{1, 0, 0}}, index.NewMemoryIndex())

	result, err := analyzer.Analyze(context.Background(), types.JobPosting{
		Title:       "Data Analyst",
		Description: "Own reporting.",
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result.JobAnalysis.ComplexityScore != 10 {
		t.Errorf("ComplexityScore = %d, want clamped to 10", result.JobAnalysis.ComplexityScore)
	}
	// Clamped premium complexity pulls the US into the selection
	if result.JobAnalysis.RecommendedRegions[0] != types.RegionUnitedStates {
		t.Errorf("RecommendedRegions[0] = %q, want United States", result.JobAnalysis.RecommendedRegions[0])
	}
	if result.SalaryRecommendation.RecommendedPayBand != types.PayBandHigh {
		t.Errorf("pay band = %q, want high", result.SalaryRecommendation.RecommendedPayBand)
	}
}

func TestValidateResultCorrectsViolations(t *testing.T) {
	provider := &stubProvider{extraction: analystExtraction()}
	analyzer := newTestAnalyzer(t, provider, nil, nil)

	result := &types.MarketScanResult{
		JobAnalysis: types.JobAnalysis{
			RoleCategory:    types.RoleDataAnalyst,
			ComplexityScore: 5,
			RecommendedRegions: []types.Region{
				types.RegionUnitedStates,
				types.RegionPhilippines,
				types.RegionLatinAmerica,
				types.RegionSouthAfrica,
			},
		},
		SalaryRecommendation: types.SalaryRecommendation{
			Ranges: map[types.Region]types.SalaryRange{
				types.RegionUnitedStates: {Mid: 5000},
				types.RegionPhilippines:  {Mid: 1450},
				types.RegionLatinAmerica: {Mid: 2100},
				types.RegionSouthAfrica:  {Mid: 2600},
			},
			MarketInsights: types.MarketInsights{
				HighDemandRegions: []types.Region{
					types.RegionUnitedStates,
					types.RegionEurope,
				},
			},
		},
		SkillsRecommendation: types.SkillsRecommendation{
			MustHaveSkills:   []string{"SQL", "Excel"},
			NiceToHaveSkills: []string{"Excel", "Python"},
		},
	}

	analyzer.validateResult(context.Background(), "scan-test", result)

	wantRegions := []types.Region{
		types.RegionUnitedStates,
		types.RegionPhilippines,
		types.RegionLatinAmerica,
	}
	if !reflect.DeepEqual(result.JobAnalysis.RecommendedRegions, wantRegions) {
		t.Errorf("RecommendedRegions = %v, want truncated to %v",
			result.JobAnalysis.RecommendedRegions, wantRegions)
	}

	// Re-derived from the corrected selection: complexity 5 is below the US
	// high-demand threshold, so the US drops out
	wantDemand := []types.Region{types.RegionPhilippines, types.RegionLatinAmerica}
	if !reflect.DeepEqual(result.SalaryRecommendation.MarketInsights.HighDemandRegions, wantDemand) {
		t.Errorf("HighDemandRegions = %v, want %v",
			result.SalaryRecommendation.MarketInsights.HighDemandRegions, wantDemand)
	}

	if len(result.SalaryRecommendation.Ranges) != 3 {
		t.Errorf("Ranges has %d regions, want 3", len(result.SalaryRecommendation.Ranges))
	}
	if _, ok := result.SalaryRecommendation.Ranges[types.RegionSouthAfrica]; ok {
		t.Error("range for a non-recommended region should be removed")
	}

	if !reflect.DeepEqual(result.SkillsRecommendation.MustHaveSkills, []string{"SQL", "Excel"}) {
		t.Errorf("MustHaveSkills = %v, want [SQL Excel]", result.SkillsRecommendation.MustHaveSkills)
	}
	if !reflect.DeepEqual(result.SkillsRecommendation.NiceToHaveSkills, []string{"Python"}) {
		t.Errorf("NiceToHaveSkills = %v, want [Python]", result.SkillsRecommendation.NiceToHaveSkills)
	}
}

func TestValidateResultKeepsConsistentResult(t *testing.T) {
	provider := &stubProvider{extraction: analystExtraction()}
	analyzer := newTestAnalyzer(t, provider, nil, nil)

	result := &types.MarketScanResult{
		JobAnalysis: types.JobAnalysis{
			RoleCategory:       types.RoleDataAnalyst,
			ComplexityScore:    5,
			RecommendedRegions: []types.Region{types.RegionPhilippines, types.RegionLatinAmerica},
		},
		SalaryRecommendation: types.SalaryRecommendation{
			Ranges: map[types.Region]types.SalaryRange{
				types.RegionPhilippines:  {Mid: 1450},
				types.RegionLatinAmerica: {Mid: 2100},
			},
			MarketInsights: types.MarketInsights{
				HighDemandRegions: []types.Region{types.RegionPhilippines},
			},
		},
		SkillsRecommendation: types.SkillsRecommendation{
			MustHaveSkills:   []string{"SQL"},
			NiceToHaveSkills: []string{"Python"},
		},
	}
	before := *result
	before.SalaryRecommendation.Ranges = make(map[types.Region]types.SalaryRange, len(result.SalaryRecommendation.Ranges))
	for region, r := range result.SalaryRecommendation.Ranges {
		before.SalaryRecommendation.Ranges[region] = r
	}
	beforeRegions := append([]types.Region(nil), result.JobAnalysis.RecommendedRegions...)

	analyzer.validateResult(context.Background(), "scan-test", result)

	if !reflect.DeepEqual(result.JobAnalysis.RecommendedRegions, beforeRegions) {
		t.Errorf("RecommendedRegions changed: %v", result.JobAnalysis.RecommendedRegions)
	}
	if !reflect.DeepEqual(result.SalaryRecommendation, before.SalaryRecommendation) {
		t.Errorf("SalaryRecommendation changed: %+v", result.SalaryRecommendation)
	}
	if !reflect.DeepEqual(result.SkillsRecommendation, before.SkillsRecommendation) {
		t.Errorf("SkillsRecommendation changed: %+v", result.SkillsRecommendation)
	}
}

func TestAnalyzeRepeatedScansAgree(t *testing.T) {
	provider := &stubProvider{
		extraction: analystExtraction(),
		skills: types.SkillsRecommendation{
			MustHaveSkills:   []string{"SQL", "Excel", "Data Modeling"},
			NiceToHaveSkills: []string{"Python", "Looker"},
		},
	}
	analyzer := newTestAnalyzer(t, provider, &stubEmbedder{vector: []float32{1, 0, 0}}, nil)

	posting := types.JobPosting{
		Title:       "Data Analyst",
		Description: "Own the reporting stack end to end.",
	}

	first, err := analyzer.Analyze(context.Background(), posting)
	if err != nil {
		t.Fatalf("first Analyze() error = %v", err)
	}
	second, err := analyzer.Analyze(context.Background(), posting)
	if err != nil {
		t.Fatalf("second Analyze() error = %v", err)
	}

	if !reflect.DeepEqual(first.JobAnalysis, second.JobAnalysis) {
		t.Errorf("JobAnalysis differs between runs:\nfirst:  %+v\nsecond: %+v",
			first.JobAnalysis, second.JobAnalysis)
	}
	if !reflect.DeepEqual(first.SalaryRecommendation, second.SalaryRecommendation) {
		t.Errorf("SalaryRecommendation differs between runs:\nfirst:  %+v\nsecond: %+v",
			first.SalaryRecommendation, second.SalaryRecommendation)
	}
	if !reflect.DeepEqual(first.SkillsRecommendation, second.SkillsRecommendation) {
		t.Errorf("SkillsRecommendation differs between runs:\nfirst:  %+v\nsecond: %+v",
			first.SkillsRecommendation, second.SkillsRecommendation)
	}
	if first.ConfidenceScore != second.ConfidenceScore {
		t.Errorf("ConfidenceScore differs: %v vs %v", first.ConfidenceScore, second.ConfidenceScore)
	}
}
