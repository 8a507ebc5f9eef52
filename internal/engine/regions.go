package engine

import (
	"talentscan/internal/config"
	"talentscan/internal/types"
)

// RegionPolicy selects hiring regions from role attributes. Both the
// recommended-region list and the high-demand insight list come from this
// policy so the latter is always a subset of the former.
type RegionPolicy struct {
	premiumComplexity  int
	usHighDemand       int
	timezoneComplexity int
	strategic          map[types.RoleCategory]bool
	maxRegions         int
}

// NewRegionPolicy builds a policy from configuration.
func NewRegionPolicy(cfg config.RegionPolicyConfig) *RegionPolicy {
	strategic := make(map[types.RoleCategory]bool, len(cfg.StrategicCategories))
	for _, name := range cfg.StrategicCategories {
		if category, err := types.ParseRoleCategory(name); err == nil {
			strategic[category] = true
		}
	}

	maxRegions := cfg.MaxRegions
	if maxRegions < 1 || maxRegions > 3 {
		maxRegions = 3
	}

	return &RegionPolicy{
		premiumComplexity:  cfg.PremiumComplexityThreshold,
		usHighDemand:       cfg.USHighDemandThreshold,
		timezoneComplexity: cfg.TimezoneComplexityThreshold,
		strategic:          strategic,
		maxRegions:         maxRegions,
	}
}

// SelectRegions returns 1 to maxRegions regions ordered best-fit first.
//
// Remote-friendly roles start from the cost-efficient base pair. The United
// States joins, placed first, for premium-complexity roles, low remote
// suitability, or strategic categories. South Africa fills the third slot for
// remote senior roles when the US is absent, for its timezone overlap.
func (p *RegionPolicy) SelectRegions(category types.RoleCategory, complexity int, remote types.RemoteSuitability) []types.Region {
	remoteFriendly := remote == types.RemoteMedium || remote == types.RemoteHigh

	includeUS := complexity >= p.premiumComplexity ||
		remote == types.RemoteLow ||
		p.strategic[category]

	var selected []types.Region
	if includeUS {
		selected = append(selected, types.RegionUnitedStates)
	}
	if remoteFriendly {
		selected = append(selected, types.RegionPhilippines, types.RegionLatinAmerica)
		if !includeUS && complexity >= p.timezoneComplexity {
			selected = append(selected, types.RegionSouthAfrica)
		}
	}

	if len(selected) == 0 {
		// Low remote suitability without any US trigger cannot happen with
		// the current rules, but the contract is never-empty
		selected = append(selected, types.RegionUnitedStates)
	}
	if len(selected) > p.maxRegions {
		selected = selected[:p.maxRegions]
	}
	return selected
}

// HighDemandRegions derives the market-insight demand list from the selected
// regions. The United States is dropped below the high-demand complexity
// threshold as long as at least one region remains.
func (p *RegionPolicy) HighDemandRegions(selected []types.Region, complexity int) []types.Region {
	demand := make([]types.Region, 0, len(selected))
	for _, region := range selected {
		if region == types.RegionUnitedStates && complexity < p.usHighDemand && len(selected) > 1 {
			continue
		}
		demand = append(demand, region)
	}
	return demand
}
