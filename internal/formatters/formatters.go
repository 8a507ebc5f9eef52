package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"talentscan/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "MarketScanResult", &ScanTextFormatter{})
	registry.RegisterFormatter("markdown", "MarketScanResult", &ScanMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.MarketScanResult, *types.MarketScanResult:
		return "MarketScanResult"
	default:
		return "any"
	}
}

func asScanResult(data any) (*types.MarketScanResult, bool) {
	switch v := data.(type) {
	case types.MarketScanResult:
		return &v, true
	case *types.MarketScanResult:
		return v, true
	}
	return nil, false
}

// orderedRanges walks the salary ranges in recommended-region order so
// rendered output is stable across runs.
func orderedRanges(result *types.MarketScanResult) []types.Region {
	regions := make([]types.Region, 0, len(result.SalaryRecommendation.Ranges))
	for _, region := range result.JobAnalysis.RecommendedRegions {
		if _, ok := result.SalaryRecommendation.Ranges[region]; ok {
			regions = append(regions, region)
		}
	}
	return regions
}

func formatRange(r types.SalaryRange) string {
	line := fmt.Sprintf("%d - %d %s/%s (mid %d)", r.Low, r.High, r.Currency, r.Period, r.Mid)
	if r.SavingsVsUS != nil {
		line += fmt.Sprintf(", %d%% savings vs US", *r.SavingsVsUS)
	}
	return line
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// ScanTextFormatter handles text formatting for market scan results
type ScanTextFormatter struct{}

func (stf *ScanTextFormatter) Format(data any) (string, error) {
	result, ok := asScanResult(data)
	if !ok {
		return "", fmt.Errorf("expected MarketScanResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== MARKET SCAN ===\n\n")
	output.WriteString(fmt.Sprintf("Scan ID: %s\n", result.ScanID))
	output.WriteString(fmt.Sprintf("Confidence Score: %.2f\n\n", result.ConfidenceScore))

	output.WriteString("=== ROLE ANALYSIS ===\n")
	output.WriteString(fmt.Sprintf("Role Category: %s\n", result.JobAnalysis.RoleCategory))
	output.WriteString(fmt.Sprintf("Experience Level: %s", result.JobAnalysis.ExperienceLevel))
	if result.JobAnalysis.YearsExperienceRequired != "" {
		output.WriteString(fmt.Sprintf(" (%s)", result.JobAnalysis.YearsExperienceRequired))
	}
	output.WriteString("\n")
	output.WriteString(fmt.Sprintf("Complexity Score: %d/10\n", result.JobAnalysis.ComplexityScore))
	output.WriteString(fmt.Sprintf("Remote Work Suitability: %s\n", result.JobAnalysis.RemoteWorkSuitability))
	output.WriteString("Recommended Regions:\n")
	for _, region := range result.JobAnalysis.RecommendedRegions {
		output.WriteString(fmt.Sprintf("- %s\n", region))
	}
	output.WriteString("\n")

	output.WriteString("=== SALARY RECOMMENDATION ===\n")
	output.WriteString(fmt.Sprintf("Recommended Pay Band: %s\n\n", result.SalaryRecommendation.RecommendedPayBand))
	for _, region := range orderedRanges(result) {
		output.WriteString(fmt.Sprintf("%s: %s\n", region, formatRange(result.SalaryRecommendation.Ranges[region])))
	}
	output.WriteString("\n")
	if len(result.SalaryRecommendation.FactorsConsidered) > 0 {
		output.WriteString("Factors Considered:\n")
		for _, factor := range result.SalaryRecommendation.FactorsConsidered {
			output.WriteString(fmt.Sprintf("- %s\n", factor))
		}
		output.WriteString("\n")
	}

	output.WriteString("=== MARKET INSIGHTS ===\n")
	if len(result.SalaryRecommendation.MarketInsights.HighDemandRegions) > 0 {
		output.WriteString("High Demand Regions:\n")
		for _, region := range result.SalaryRecommendation.MarketInsights.HighDemandRegions {
			output.WriteString(fmt.Sprintf("- %s\n", region))
		}
		output.WriteString("\n")
	}
	output.WriteString("Competitive Factors:\n")
	for _, factor := range result.SalaryRecommendation.MarketInsights.CompetitiveFactors {
		output.WriteString(fmt.Sprintf("- %s\n", factor))
	}
	output.WriteString("\n")
	output.WriteString("Cost Efficiency:\n")
	output.WriteString(result.SalaryRecommendation.MarketInsights.CostEfficiency)
	output.WriteString("\n\n")

	output.WriteString("=== SKILLS ===\n")
	output.WriteString("Must Have:\n")
	for _, skill := range result.SkillsRecommendation.MustHaveSkills {
		output.WriteString(fmt.Sprintf("- %s\n", skill))
	}
	output.WriteString("\n")
	if len(result.SkillsRecommendation.NiceToHaveSkills) > 0 {
		output.WriteString("Nice to Have:\n")
		for _, skill := range result.SkillsRecommendation.NiceToHaveSkills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
		output.WriteString("\n")
	}
	if len(result.SkillsRecommendation.CertificationRecommendations) > 0 {
		output.WriteString("Recommended Certifications:\n")
		for _, cert := range result.SkillsRecommendation.CertificationRecommendations {
			output.WriteString(fmt.Sprintf("- %s\n", cert))
		}
		output.WriteString("\n")
	}

	if len(result.SimilarScans) > 0 {
		output.WriteString("=== SIMILAR SCANS ===\n")
		for i, match := range result.SimilarScans {
			output.WriteString(fmt.Sprintf("%d. %s (%.0f%% similar)", i+1, match.Metadata.JobTitle, match.SimilarityScore*100))
			if match.Metadata.RoleCategory != "" {
				output.WriteString(fmt.Sprintf(" - %s", match.Metadata.RoleCategory))
			}
			output.WriteString("\n")
		}
	}

	return output.String(), nil
}

func (stf *ScanTextFormatter) SupportedType() string {
	return "MarketScanResult"
}

// ScanMarkdownFormatter handles markdown formatting for market scan results
type ScanMarkdownFormatter struct{}

func (smf *ScanMarkdownFormatter) Format(data any) (string, error) {
	result, ok := asScanResult(data)
	if !ok {
		return "", fmt.Errorf("expected MarketScanResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Market Scan\n\n")
	output.WriteString(fmt.Sprintf("**Scan ID:** %s\n\n", result.ScanID))
	output.WriteString(fmt.Sprintf("**Confidence Score:** %.2f\n\n", result.ConfidenceScore))

	output.WriteString("## Role Analysis\n\n")
	output.WriteString(fmt.Sprintf("**Role Category:** %s\n\n", result.JobAnalysis.RoleCategory))
	output.WriteString(fmt.Sprintf("**Experience Level:** %s", result.JobAnalysis.ExperienceLevel))
	if result.JobAnalysis.YearsExperienceRequired != "" {
		output.WriteString(fmt.Sprintf(" (%s)", result.JobAnalysis.YearsExperienceRequired))
	}
	output.WriteString("\n\n")
	output.WriteString(fmt.Sprintf("**Complexity Score:** %d/10\n\n", result.JobAnalysis.ComplexityScore))
	output.WriteString(fmt.Sprintf("**Remote Work Suitability:** %s\n\n", result.JobAnalysis.RemoteWorkSuitability))
	output.WriteString("### Recommended Regions\n")
	for _, region := range result.JobAnalysis.RecommendedRegions {
		output.WriteString(fmt.Sprintf("- %s\n", region))
	}
	output.WriteString("\n")

	output.WriteString("## Salary Recommendation\n\n")
	output.WriteString(fmt.Sprintf("**Recommended Pay Band:** %s\n\n", result.SalaryRecommendation.RecommendedPayBand))
	output.WriteString("| Region | Low | Mid | High | Savings vs US |\n")
	output.WriteString("|---|---|---|---|---|\n")
	for _, region := range orderedRanges(result) {
		r := result.SalaryRecommendation.Ranges[region]
		savings := "-"
		if r.SavingsVsUS != nil {
			savings = fmt.Sprintf("%d%%", *r.SavingsVsUS)
		}
		output.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %s |\n", region, r.Low, r.Mid, r.High, savings))
	}
	output.WriteString("\n")
	if len(result.SalaryRecommendation.FactorsConsidered) > 0 {
		output.WriteString("### Factors Considered\n")
		for _, factor := range result.SalaryRecommendation.FactorsConsidered {
			output.WriteString(fmt.Sprintf("- %s\n", factor))
		}
		output.WriteString("\n")
	}

	output.WriteString("## Market Insights\n\n")
	if len(result.SalaryRecommendation.MarketInsights.HighDemandRegions) > 0 {
		output.WriteString("### High Demand Regions\n")
		for _, region := range result.SalaryRecommendation.MarketInsights.HighDemandRegions {
			output.WriteString(fmt.Sprintf("- %s\n", region))
		}
		output.WriteString("\n")
	}
	output.WriteString("### Competitive Factors\n")
	for _, factor := range result.SalaryRecommendation.MarketInsights.CompetitiveFactors {
		output.WriteString(fmt.Sprintf("- %s\n", factor))
	}
	output.WriteString("\n")
	output.WriteString("### Cost Efficiency\n")
	output.WriteString(result.SalaryRecommendation.MarketInsights.CostEfficiency)
	output.WriteString("\n\n")

	output.WriteString("## Skills\n\n")
	output.WriteString("### Must Have\n")
	for _, skill := range result.SkillsRecommendation.MustHaveSkills {
		output.WriteString(fmt.Sprintf("- %s\n", skill))
	}
	output.WriteString("\n")
	if len(result.SkillsRecommendation.NiceToHaveSkills) > 0 {
		output.WriteString("### Nice to Have\n")
		for _, skill := range result.SkillsRecommendation.NiceToHaveSkills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
		output.WriteString("\n")
	}
	if len(result.SkillsRecommendation.CertificationRecommendations) > 0 {
		output.WriteString("### Recommended Certifications\n")
		for _, cert := range result.SkillsRecommendation.CertificationRecommendations {
			output.WriteString(fmt.Sprintf("- %s\n", cert))
		}
		output.WriteString("\n")
	}

	if len(result.SimilarScans) > 0 {
		output.WriteString("## Similar Scans\n\n")
		for i, match := range result.SimilarScans {
			output.WriteString(fmt.Sprintf("%d. **%s** (%.0f%% similar)", i+1, match.Metadata.JobTitle, match.SimilarityScore*100))
			if match.Metadata.RoleCategory != "" {
				output.WriteString(fmt.Sprintf(" - %s", match.Metadata.RoleCategory))
			}
			output.WriteString("\n")
		}
	}

	return output.String(), nil
}

func (smf *ScanMarkdownFormatter) SupportedType() string {
	return "MarketScanResult"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
