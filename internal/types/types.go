package types

import (
	"fmt"
	"strings"
)

// JobPosting is the immutable input to a market scan.
type JobPosting struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	HiringChallenges string `json:"hiringChallenges,omitempty"`
}

// RoleCategory is a canonical job-family label used to key salary benchmarks
// and skills data.
type RoleCategory string

const (
	RoleBrandMarketingManager RoleCategory = "Brand Marketing Manager"
	RoleCommunityManager      RoleCategory = "Community Manager"
	RoleContentMarketer       RoleCategory = "Content Marketer"
	RoleRetentionManager      RoleCategory = "Retention Manager"
	RoleEcommerceManager      RoleCategory = "Ecommerce Manager"
	RoleSalesOpsManager       RoleCategory = "Sales Operations Manager"
	RoleDataAnalyst           RoleCategory = "Data Analyst"
	RoleLogisticsManager      RoleCategory = "Logistics Manager"
	RoleOperationsManager     RoleCategory = "Operations Manager"
	RoleAdminEA               RoleCategory = "Admin & EA"
)

// KnownRoleCategories returns the full role catalog in stable order.
func KnownRoleCategories() []RoleCategory {
	return []RoleCategory{
		RoleBrandMarketingManager,
		RoleCommunityManager,
		RoleContentMarketer,
		RoleRetentionManager,
		RoleEcommerceManager,
		RoleSalesOpsManager,
		RoleDataAnalyst,
		RoleLogisticsManager,
		RoleOperationsManager,
		RoleAdminEA,
	}
}

// ParseRoleCategory matches a string against the catalog, ignoring case and
// surrounding whitespace.
func ParseRoleCategory(s string) (RoleCategory, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, rc := range KnownRoleCategories() {
		if strings.ToLower(string(rc)) == needle {
			return rc, nil
		}
	}
	return "", fmt.Errorf("unknown role category: %q", s)
}

// Region is a supported hiring region.
type Region string

const (
	RegionUnitedStates Region = "United States"
	RegionPhilippines  Region = "Philippines"
	RegionLatinAmerica Region = "Latin America"
	RegionSouthAfrica  Region = "South Africa"
	RegionEurope       Region = "Europe"
)

// KnownRegions returns the supported regions in stable order.
func KnownRegions() []Region {
	return []Region{
		RegionUnitedStates,
		RegionPhilippines,
		RegionLatinAmerica,
		RegionSouthAfrica,
		RegionEurope,
	}
}

// IsBaseline reports whether the region is the 0%-savings salary baseline.
func (r Region) IsBaseline() bool {
	return r == RegionUnitedStates
}

// ParseRegion matches a string against the supported regions, ignoring case
// and surrounding whitespace.
func ParseRegion(s string) (Region, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, r := range KnownRegions() {
		if strings.ToLower(string(r)) == needle {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown region: %q", s)
}

// ExperienceLevel buckets seniority for salary lookups.
type ExperienceLevel string

const (
	ExperienceJunior ExperienceLevel = "junior"
	ExperienceMid    ExperienceLevel = "mid"
	ExperienceSenior ExperienceLevel = "senior"
	ExperienceExpert ExperienceLevel = "expert"
)

// ExperienceLevels returns all levels in ascending seniority order. The order
// matters: the experience matrix is built by iterating these anchors.
func ExperienceLevels() []ExperienceLevel {
	return []ExperienceLevel{ExperienceJunior, ExperienceMid, ExperienceSenior, ExperienceExpert}
}

// YearsAnchor returns the fixed years-of-experience anchor used when
// interpolating benchmark bands for this level.
func (e ExperienceLevel) YearsAnchor() float64 {
	switch e {
	case ExperienceJunior:
		return 2
	case ExperienceMid:
		return 4
	case ExperienceSenior:
		return 7
	case ExperienceExpert:
		return 10
	default:
		return 4
	}
}

// ParseExperienceLevel matches a string against the known levels.
func ParseExperienceLevel(s string) (ExperienceLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "junior":
		return ExperienceJunior, nil
	case "mid":
		return ExperienceMid, nil
	case "senior":
		return ExperienceSenior, nil
	case "expert":
		return ExperienceExpert, nil
	}
	return "", fmt.Errorf("unknown experience level: %q", s)
}

// RemoteSuitability grades how well a role fits remote work.
type RemoteSuitability string

const (
	RemoteLow    RemoteSuitability = "low"
	RemoteMedium RemoteSuitability = "medium"
	RemoteHigh   RemoteSuitability = "high"
)

// ParseRemoteSuitability matches a string against the known grades.
func ParseRemoteSuitability(s string) (RemoteSuitability, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return RemoteLow, nil
	case "medium":
		return RemoteMedium, nil
	case "high":
		return RemoteHigh, nil
	}
	return "", fmt.Errorf("unknown remote work suitability: %q", s)
}

// ExperienceBand is a bucketed years-of-experience range used as a benchmark
// lookup key.
type ExperienceBand string

const (
	Band2to4  ExperienceBand = "2-4"
	Band5to8  ExperienceBand = "5-8"
	Band9plus ExperienceBand = "9+"
)

// KnownExperienceBands returns the bands in ascending order. Interpolation
// relies on this ordering.
func KnownExperienceBands() []ExperienceBand {
	return []ExperienceBand{Band2to4, Band5to8, Band9plus}
}

// YearsAnchor returns the midpoint of the band used for interpolation.
func (b ExperienceBand) YearsAnchor() float64 {
	switch b {
	case Band2to4:
		return 3
	case Band5to8:
		return 6.5
	case Band9plus:
		return 10
	default:
		return 3
	}
}

// ParseExperienceBand matches a string such as "5-8" or "5-8 years".
func ParseExperienceBand(s string) (ExperienceBand, error) {
	cleaned := strings.ToLower(strings.TrimSpace(s))
	cleaned = strings.TrimSuffix(cleaned, "years")
	cleaned = strings.TrimSuffix(cleaned, "yr")
	cleaned = strings.TrimSpace(cleaned)
	switch cleaned {
	case "2-4":
		return Band2to4, nil
	case "5-8":
		return Band5to8, nil
	case "9+":
		return Band9plus, nil
	}
	return "", fmt.Errorf("unknown experience band: %q", s)
}

// JobAnalysis holds the validated analysis derived for a posting.
type JobAnalysis struct {
	RoleCategory            RoleCategory      `json:"roleCategory"`
	ExperienceLevel         ExperienceLevel   `json:"experienceLevel"`
	YearsExperienceRequired string            `json:"yearsExperienceRequired"`
	ComplexityScore         int               `json:"complexityScore"`
	MustHaveSkills          []string          `json:"mustHaveSkills"`
	NiceToHaveSkills        []string          `json:"niceToHaveSkills"`
	KeyResponsibilities     []string          `json:"keyResponsibilities"`
	RemoteWorkSuitability   RemoteSuitability `json:"remoteWorkSuitability"`
	RecommendedRegions      []Region          `json:"recommendedRegions"`
	UniqueChallenges        string            `json:"uniqueChallenges,omitempty"`
	SalaryFactors           []string          `json:"salaryFactors"`
}

// JobExtraction is the untrusted intermediate decoded from the AI extraction
// call. It is validated and converted at the boundary; raw strings never
// travel deeper into the pipeline.
type JobExtraction struct {
	RoleCategoryGuess       string   `json:"roleCategory"`
	ExperienceLevel         string   `json:"experienceLevel"`
	YearsExperienceRequired string   `json:"yearsExperienceRequired"`
	ComplexityScore         int      `json:"complexityScore"`
	MustHaveSkills          []string `json:"mustHaveSkills"`
	NiceToHaveSkills        []string `json:"niceToHaveSkills"`
	KeyResponsibilities     []string `json:"keyResponsibilities"`
	RemoteWorkSuitability   string   `json:"remoteWorkSuitability"`
	UniqueChallenges        string   `json:"uniqueChallenges"`
	SalaryFactors           []string `json:"salaryFactors"`
}

// Validate checks the extraction's numeric ranges and enum-valued fields.
// Role category membership is deliberately not checked here: classification
// has its own lookup-backed validation path.
func (e *JobExtraction) Validate() error {
	if e.ComplexityScore < 1 || e.ComplexityScore > 10 {
		return fmt.Errorf("complexity score %d outside range 1-10", e.ComplexityScore)
	}
	if _, err := ParseExperienceLevel(e.ExperienceLevel); err != nil {
		return err
	}
	if _, err := ParseRemoteSuitability(e.RemoteWorkSuitability); err != nil {
		return err
	}
	return nil
}

// SalaryBenchmarkRow is a read-only historical benchmark record. All currency
// values are integers in USD per month unless tagged otherwise.
type SalaryBenchmarkRow struct {
	RoleCategory      RoleCategory   `json:"roleCategory" yaml:"roleCategory"`
	Region            Region         `json:"region" yaml:"region"`
	ExperienceBand    ExperienceBand `json:"experienceBand" yaml:"experienceBand"`
	Low               int            `json:"low" yaml:"low"`
	Mid               int            `json:"mid" yaml:"mid"`
	High              int            `json:"high" yaml:"high"`
	Currency          string         `json:"currency" yaml:"currency"`
	Period            string         `json:"period" yaml:"period"`
	SavingsVsBaseline int            `json:"savingsVsBaseline" yaml:"savingsVsBaseline"`
}

// SalaryRange is the per-region output range.
type SalaryRange struct {
	Low      int    `json:"low"`
	Mid      int    `json:"mid"`
	High     int    `json:"high"`
	Currency string `json:"currency"`
	Period   string `json:"period"`
	// SavingsVsUS is only set for non-baseline regions with a US baseline row.
	SavingsVsUS *int `json:"savingsVsUs,omitempty"`
	// Interpolated is true when the range was derived between bands rather
	// than read from an exact band match. Feeds the confidence score.
	Interpolated bool `json:"-"`
}

// PayBand names the recommended position within a salary range.
type PayBand string

const (
	PayBandLow  PayBand = "low"
	PayBandMid  PayBand = "mid"
	PayBandHigh PayBand = "high"
)

// MarketInsights carries the qualitative market narrative. HighDemandRegions
// is always derived from the recommended-region selection, never maintained
// independently.
type MarketInsights struct {
	HighDemandRegions  []Region `json:"highDemandRegions"`
	CompetitiveFactors []string `json:"competitiveFactors"`
	CostEfficiency     string   `json:"costEfficiency"`
}

// SalaryRecommendation is the complete salary output for a scan.
type SalaryRecommendation struct {
	Ranges             map[Region]SalaryRange                     `json:"salaryRecommendations"`
	RecommendedPayBand PayBand                                    `json:"recommendedPayBand"`
	FactorsConsidered  []string                                   `json:"factorsConsidered"`
	MarketInsights     MarketInsights                             `json:"marketInsights"`
	ExperienceMatrix   map[ExperienceLevel]map[Region]SalaryRange `json:"experienceMatrix,omitempty"`
}

// SkillsRecommendation is the consolidated, categorized skills output.
// MustHaveSkills and NiceToHaveSkills are disjoint case-insensitively.
type SkillsRecommendation struct {
	MustHaveSkills               []string            `json:"mustHaveSkills"`
	NiceToHaveSkills             []string            `json:"niceToHaveSkills"`
	SkillCategories              map[string][]string `json:"skillCategories,omitempty"`
	CertificationRecommendations []string            `json:"certificationRecommendations,omitempty"`
}

// ScanMetadata is the snapshot stored alongside a vector in the similarity
// index and returned with each match.
type ScanMetadata struct {
	JobTitle           string          `json:"jobTitle"`
	RoleCategory       RoleCategory    `json:"roleCategory"`
	ExperienceLevel    ExperienceLevel `json:"experienceLevel"`
	ComplexityScore    int             `json:"complexityScore"`
	RecommendedRegions []Region        `json:"recommendedRegions"`
	CreatedAt          string          `json:"createdAt,omitempty"`
}

// SimilarScanMatch is one nearest-neighbor result. Ephemeral, produced per
// request and never persisted by the engine.
type SimilarScanMatch struct {
	ScanID          string       `json:"scanId"`
	SimilarityScore float64      `json:"similarityScore"`
	Metadata        ScanMetadata `json:"metadata"`
}

// MarketScanResult is the final aggregate handed to the caller. Immutable
// after construction.
type MarketScanResult struct {
	ScanID               string               `json:"scanId"`
	JobAnalysis          JobAnalysis          `json:"jobAnalysis"`
	SalaryRecommendation SalaryRecommendation `json:"salaryRecommendation"`
	SkillsRecommendation SkillsRecommendation `json:"skillsRecommendation"`
	SimilarScans         []SimilarScanMatch   `json:"similarScans"`
	ConfidenceScore      float64              `json:"confidenceScore"`
}
