package engine

import (
	"reflect"
	"testing"

	"talentscan/internal/config"
	"talentscan/internal/types"
)

func defaultPolicyConfig() config.RegionPolicyConfig {
	return config.RegionPolicyConfig{
		PremiumComplexityThreshold:  8,
		USHighDemandThreshold:       8,
		TimezoneComplexityThreshold: 6,
		StrategicCategories:         []string{"Sales Operations Manager"},
		MaxRegions:                  3,
	}
}

func TestSelectRegions(t *testing.T) {
	policy := NewRegionPolicy(defaultPolicyConfig())

	tests := []struct {
		name       string
		category   types.RoleCategory
		complexity int
		remote     types.RemoteSuitability
		want       []types.Region
	}{
		{
			name:       "remote friendly mid complexity",
			category:   types.RoleContentMarketer,
			complexity: 5,
			remote:     types.RemoteHigh,
			want:       []types.Region{types.RegionPhilippines, types.RegionLatinAmerica},
		},
		{
			name:       "remote senior adds south africa",
			category:   types.RoleDataAnalyst,
			complexity: 7,
			remote:     types.RemoteMedium,
			want:       []types.Region{types.RegionPhilippines, types.RegionLatinAmerica, types.RegionSouthAfrica},
		},
		{
			name:       "premium complexity puts US first and caps at three",
			category:   types.RoleDataAnalyst,
			complexity: 9,
			remote:     types.RemoteHigh,
			want:       []types.Region{types.RegionUnitedStates, types.RegionPhilippines, types.RegionLatinAmerica},
		},
		{
			name:       "low remote suitability is US only",
			category:   types.RoleOperationsManager,
			complexity: 5,
			remote:     types.RemoteLow,
			want:       []types.Region{types.RegionUnitedStates},
		},
		{
			name:       "strategic category includes US at mid complexity",
			category:   types.RoleSalesOpsManager,
			complexity: 5,
			remote:     types.RemoteHigh,
			want:       []types.Region{types.RegionUnitedStates, types.RegionPhilippines, types.RegionLatinAmerica},
		},
		{
			name:       "complexity below timezone threshold skips south africa",
			category:   types.RoleCommunityManager,
			complexity: 5,
			remote:     types.RemoteMedium,
			want:       []types.Region{types.RegionPhilippines, types.RegionLatinAmerica},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.SelectRegions(tt.category, tt.complexity, tt.remote)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SelectRegions() = %v, want %v", got, tt.want)
			}
			if len(got) == 0 || len(got) > 3 {
				t.Errorf("region count %d outside 1-3", len(got))
			}
		})
	}
}

func TestSelectRegionsNeverEmpty(t *testing.T) {
	policy := NewRegionPolicy(defaultPolicyConfig())

	for complexity := 1; complexity <= 10; complexity++ {
		for _, remote := range []types.RemoteSuitability{types.RemoteLow, types.RemoteMedium, types.RemoteHigh} {
			got := policy.SelectRegions(types.RoleAdminEA, complexity, remote)
			if len(got) == 0 {
				t.Errorf("empty selection for complexity=%d remote=%s", complexity, remote)
			}
		}
	}
}

func TestSelectRegionsMaxRegionsClamped(t *testing.T) {
	cfg := defaultPolicyConfig()
	cfg.MaxRegions = 7
	policy := NewRegionPolicy(cfg)

	got := policy.SelectRegions(types.RoleDataAnalyst, 9, types.RemoteHigh)
	if len(got) > 3 {
		t.Errorf("region count %d exceeds hard cap of 3", len(got))
	}
}

func TestHighDemandRegions(t *testing.T) {
	policy := NewRegionPolicy(defaultPolicyConfig())

	tests := []struct {
		name       string
		selected   []types.Region
		complexity int
		want       []types.Region
	}{
		{
			name:       "US dropped below threshold with alternatives",
			selected:   []types.Region{types.RegionUnitedStates, types.RegionPhilippines, types.RegionLatinAmerica},
			complexity: 5,
			want:       []types.Region{types.RegionPhilippines, types.RegionLatinAmerica},
		},
		{
			name:       "US kept at threshold",
			selected:   []types.Region{types.RegionUnitedStates, types.RegionPhilippines, types.RegionLatinAmerica},
			complexity: 8,
			want:       []types.Region{types.RegionUnitedStates, types.RegionPhilippines, types.RegionLatinAmerica},
		},
		{
			name:       "US kept when it is the only region",
			selected:   []types.Region{types.RegionUnitedStates},
			complexity: 4,
			want:       []types.Region{types.RegionUnitedStates},
		},
		{
			name:       "no US passes through",
			selected:   []types.Region{types.RegionPhilippines, types.RegionLatinAmerica},
			complexity: 6,
			want:       []types.Region{types.RegionPhilippines, types.RegionLatinAmerica},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.HighDemandRegions(tt.selected, tt.complexity)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("HighDemandRegions() = %v, want %v", got, tt.want)
			}
		})
	}
}
