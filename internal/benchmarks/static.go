package benchmarks

import (
	"context"

	"talentscan/internal/types"
)

// baseMonthlyUSD is the US monthly base salary per role and experience band,
// maintained by the market team. Regional rows are derived by applying the
// standard savings percentages.
var baseMonthlyUSD = map[types.RoleCategory]map[types.ExperienceBand]int{
	types.RoleBrandMarketingManager: {types.Band2to4: 6000, types.Band5to8: 7500, types.Band9plus: 9000},
	types.RoleCommunityManager:      {types.Band2to4: 4000, types.Band5to8: 5500, types.Band9plus: 7000},
	types.RoleContentMarketer:       {types.Band2to4: 4500, types.Band5to8: 6000, types.Band9plus: 7500},
	types.RoleRetentionManager:      {types.Band2to4: 5000, types.Band5to8: 6500, types.Band9plus: 8000},
	types.RoleEcommerceManager:      {types.Band2to4: 5500, types.Band5to8: 7000, types.Band9plus: 8500},
	types.RoleSalesOpsManager:       {types.Band2to4: 5500, types.Band5to8: 7000, types.Band9plus: 8500},
	types.RoleDataAnalyst:           {types.Band2to4: 5000, types.Band5to8: 6500, types.Band9plus: 8000},
	types.RoleLogisticsManager:      {types.Band2to4: 5000, types.Band5to8: 6500, types.Band9plus: 8000},
	types.RoleOperationsManager:     {types.Band2to4: 5200, types.Band5to8: 6700, types.Band9plus: 8200},
	types.RoleAdminEA:               {types.Band2to4: 3500, types.Band5to8: 4500, types.Band9plus: 5500},
}

// staticRegions lists the regions with curated benchmark coverage. Europe is
// deliberately absent; it has no historical data yet.
var staticRegions = []types.Region{
	types.RegionUnitedStates,
	types.RegionPhilippines,
	types.RegionLatinAmerica,
	types.RegionSouthAfrica,
}

// StaticStore serves the built-in benchmark table. Zero-dependency default
// used when no file or database source is configured.
type StaticStore struct {
	rows map[types.RoleCategory][]types.SalaryBenchmarkRow
}

var _ Store = (*StaticStore)(nil)

// NewStaticStore builds the full benchmark table from the base salaries.
func NewStaticStore() *StaticStore {
	rows := make(map[types.RoleCategory][]types.SalaryBenchmarkRow, len(baseMonthlyUSD))
	for category, bands := range baseMonthlyUSD {
		var categoryRows []types.SalaryBenchmarkRow
		for _, band := range types.KnownExperienceBands() {
			usBase, ok := bands[band]
			if !ok {
				continue
			}
			for _, region := range staticRegions {
				savings := RegionalSavings(region)
				mid := usBase * (100 - savings) / 100
				categoryRows = append(categoryRows, types.SalaryBenchmarkRow{
					RoleCategory:      category,
					Region:            region,
					ExperienceBand:    band,
					Low:               mid * 85 / 100,
					Mid:               mid,
					High:              mid * 115 / 100,
					Currency:          "USD",
					Period:            "monthly",
					SavingsVsBaseline: savings,
				})
			}
		}
		rows[category] = categoryRows
	}
	return &StaticStore{rows: rows}
}

// Benchmarks returns all rows for a role category.
func (s *StaticStore) Benchmarks(ctx context.Context, category types.RoleCategory) ([]types.SalaryBenchmarkRow, error) {
	return s.rows[category], nil
}

// Close implements Store.
func (s *StaticStore) Close() error {
	return nil
}
