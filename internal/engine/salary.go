package engine

import (
	"context"
	"math"
	"sort"
	"strings"

	"talentscan/internal/benchmarks"
	"talentscan/internal/errors"
	"talentscan/internal/types"
)

// SalaryCalculator aggregates benchmark rows into regional salary
// recommendations.
type SalaryCalculator struct {
	store  benchmarks.Store
	logger *errors.Logger
}

// NewSalaryCalculator creates a calculator backed by a benchmark store.
func NewSalaryCalculator(store benchmarks.Store, logger *errors.Logger) *SalaryCalculator {
	return &SalaryCalculator{store: store, logger: logger}
}

// Calculate builds the salary recommendation for an analysis. The returned
// coverage is the fraction of recommended regions whose primary range came
// from an exact band match; it feeds the confidence score.
//
// Regions without benchmark data are omitted, never fabricated. Zero
// populated regions is fatal.
func (c *SalaryCalculator) Calculate(ctx context.Context, analysis types.JobAnalysis, highDemand []types.Region) (types.SalaryRecommendation, float64, error) {
	rows, err := c.store.Benchmarks(ctx, analysis.RoleCategory)
	if err != nil {
		return types.SalaryRecommendation{}, 0, err
	}

	byRegion := groupByRegion(rows)
	years := analysis.ExperienceLevel.YearsAnchor()

	usRange, usOK := rangeForYears(byRegion[types.RegionUnitedStates], years)

	ranges := make(map[types.Region]types.SalaryRange, len(analysis.RecommendedRegions))
	exactMatches := 0
	for _, region := range analysis.RecommendedRegions {
		bandRows := byRegion[region]
		r, ok := rangeForYears(bandRows, years)
		if !ok {
			c.logger.Warn("No benchmark data for region, omitting from recommendation",
				"role_category", string(analysis.RoleCategory),
				"region", string(region))
			continue
		}
		attachSavings(&r, region, usRange, usOK)
		ranges[region] = r
		if !r.Interpolated {
			exactMatches++
		}
	}

	if len(ranges) == 0 {
		return types.SalaryRecommendation{}, 0, errors.NewBenchmarkError(errors.ErrCodeBenchmarkMissing,
			"No benchmark data for any recommended region", nil).
			WithContext("role_category", string(analysis.RoleCategory))
	}

	coverage := float64(exactMatches) / float64(len(analysis.RecommendedRegions))

	matrix := make(map[types.ExperienceLevel]map[types.Region]types.SalaryRange, 4)
	for _, level := range types.ExperienceLevels() {
		levelYears := level.YearsAnchor()
		usLevel, usLevelOK := rangeForYears(byRegion[types.RegionUnitedStates], levelYears)
		levelRanges := make(map[types.Region]types.SalaryRange, len(analysis.RecommendedRegions))
		for _, region := range analysis.RecommendedRegions {
			r, ok := rangeForYears(byRegion[region], levelYears)
			if !ok {
				continue
			}
			attachSavings(&r, region, usLevel, usLevelOK)
			levelRanges[region] = r
		}
		if len(levelRanges) > 0 {
			matrix[level] = levelRanges
		}
	}

	return types.SalaryRecommendation{
		Ranges:             ranges,
		RecommendedPayBand: payBandFor(analysis.ComplexityScore),
		FactorsConsidered:  analysis.SalaryFactors,
		MarketInsights: types.MarketInsights{
			HighDemandRegions:  highDemand,
			CompetitiveFactors: competitiveFactors(analysis),
			CostEfficiency:     costEfficiency(analysis.RecommendedRegions),
		},
		ExperienceMatrix: matrix,
	}, coverage, nil
}

// payBandFor maps complexity to the recommended position in the range.
func payBandFor(complexity int) types.PayBand {
	switch {
	case complexity >= 8:
		return types.PayBandHigh
	case complexity <= 3:
		return types.PayBandLow
	default:
		return types.PayBandMid
	}
}

func competitiveFactors(analysis types.JobAnalysis) []string {
	var factors []string
	if analysis.ComplexityScore >= 7 {
		factors = append(factors, "High complexity role requires experienced candidates")
	}
	for _, skill := range analysis.MustHaveSkills {
		if strings.Contains(strings.ToLower(skill), "technical") {
			factors = append(factors, "Technical skills increase market competition")
			break
		}
	}
	if len(analysis.MustHaveSkills) >= 5 {
		factors = append(factors, "Multiple required skills narrow candidate pool")
	}
	if len(factors) == 0 {
		factors = append(factors, "Standard market competition")
	}
	return factors
}

func costEfficiency(regions []types.Region) string {
	for _, region := range regions {
		if region == types.RegionPhilippines || region == types.RegionLatinAmerica {
			return "High cost savings available through strategic regional hiring"
		}
	}
	return "Moderate cost optimization possible with current regional focus"
}

// attachSavings computes savings vs the US mid for the same years. Only set
// when a US row exists for the category; never set on the baseline itself.
func attachSavings(r *types.SalaryRange, region types.Region, usRange types.SalaryRange, usOK bool) {
	if region.IsBaseline() || !usOK || usRange.Mid == 0 {
		return
	}
	savings := roundHalfUp(100 * (1 - float64(r.Mid)/float64(usRange.Mid)))
	r.SavingsVsUS = &savings
}

func groupByRegion(rows []types.SalaryBenchmarkRow) map[types.Region][]types.SalaryBenchmarkRow {
	grouped := make(map[types.Region][]types.SalaryBenchmarkRow)
	for _, row := range rows {
		grouped[row.Region] = append(grouped[row.Region], row)
	}
	return grouped
}

// rangeForYears derives the salary range for a years-of-experience value from
// a region's band rows. An exact band-anchor hit (or a clamp beyond the
// outermost band) uses that band's row directly; values between anchors
// interpolate linearly.
func rangeForYears(rows []types.SalaryBenchmarkRow, years float64) (types.SalaryRange, bool) {
	if len(rows) == 0 {
		return types.SalaryRange{}, false
	}

	sorted := make([]types.SalaryBenchmarkRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ExperienceBand.YearsAnchor() < sorted[j].ExperienceBand.YearsAnchor()
	})

	first, last := sorted[0], sorted[len(sorted)-1]
	if years <= first.ExperienceBand.YearsAnchor() {
		return rowToRange(first, false), true
	}
	if years >= last.ExperienceBand.YearsAnchor() {
		return rowToRange(last, false), true
	}

	for i := 0; i < len(sorted)-1; i++ {
		lower, upper := sorted[i], sorted[i+1]
		lowerYears := lower.ExperienceBand.YearsAnchor()
		upperYears := upper.ExperienceBand.YearsAnchor()
		if years == lowerYears {
			return rowToRange(lower, false), true
		}
		if years > lowerYears && years < upperYears {
			fraction := (years - lowerYears) / (upperYears - lowerYears)
			return types.SalaryRange{
				Low:          interpolate(lower.Low, upper.Low, fraction),
				Mid:          interpolate(lower.Mid, upper.Mid, fraction),
				High:         interpolate(lower.High, upper.High, fraction),
				Currency:     lower.Currency,
				Period:       lower.Period,
				Interpolated: true,
			}, true
		}
	}

	return rowToRange(last, false), true
}

func rowToRange(row types.SalaryBenchmarkRow, interpolated bool) types.SalaryRange {
	return types.SalaryRange{
		Low:          row.Low,
		Mid:          row.Mid,
		High:         row.High,
		Currency:     row.Currency,
		Period:       row.Period,
		Interpolated: interpolated,
	}
}

func interpolate(lower, upper int, fraction float64) int {
	return roundHalfUp(float64(lower) + (float64(upper)-float64(lower))*fraction)
}

// roundHalfUp rounds to the nearest integer with .5 going up, matching the
// historical report rounding.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
