package benchmarks

import (
	"context"
	"testing"

	"talentscan/internal/types"
)

func TestRegionalSavings(t *testing.T) {
	tests := []struct {
		region types.Region
		want   int
	}{
		{types.RegionUnitedStates, 0},
		{types.RegionPhilippines, 71},
		{types.RegionLatinAmerica, 58},
		{types.RegionSouthAfrica, 48},
		{types.RegionEurope, 50},
	}

	for _, tt := range tests {
		t.Run(string(tt.region), func(t *testing.T) {
			if got := RegionalSavings(tt.region); got != tt.want {
				t.Errorf("RegionalSavings(%s) = %d, want %d", tt.region, got, tt.want)
			}
		})
	}
}

func TestStaticStoreCoverage(t *testing.T) {
	ctx := context.Background()
	store := NewStaticStore()

	for _, category := range types.KnownRoleCategories() {
		rows, err := store.Benchmarks(ctx, category)
		if err != nil {
			t.Fatalf("Benchmarks(%s) failed: %v", category, err)
		}

		// 3 bands x 4 curated regions
		if len(rows) != 12 {
			t.Errorf("Benchmarks(%s) returned %d rows, want 12", category, len(rows))
		}
	}
}

func TestStaticStoreSavingsMonotonicity(t *testing.T) {
	ctx := context.Background()
	store := NewStaticStore()

	rows, err := store.Benchmarks(ctx, types.RoleDataAnalyst)
	if err != nil {
		t.Fatalf("Benchmarks failed: %v", err)
	}

	// Higher savings must mean lower salaries within the same band
	byBand := make(map[types.ExperienceBand]map[types.Region]types.SalaryBenchmarkRow)
	for _, row := range rows {
		if byBand[row.ExperienceBand] == nil {
			byBand[row.ExperienceBand] = make(map[types.Region]types.SalaryBenchmarkRow)
		}
		byBand[row.ExperienceBand][row.Region] = row
	}

	for band, regions := range byBand {
		us := regions[types.RegionUnitedStates]
		for region, row := range regions {
			if region.IsBaseline() {
				if row.SavingsVsBaseline != 0 {
					t.Errorf("band %s: US savings = %d, want 0", band, row.SavingsVsBaseline)
				}
				continue
			}
			if row.Mid >= us.Mid {
				t.Errorf("band %s region %s: mid %d not below US mid %d", band, region, row.Mid, us.Mid)
			}
			if row.Low > row.Mid || row.Mid > row.High {
				t.Errorf("band %s region %s: range not ordered: %d/%d/%d", band, region, row.Low, row.Mid, row.High)
			}
		}
	}
}

func TestStaticStoreKnownValues(t *testing.T) {
	ctx := context.Background()
	store := NewStaticStore()

	rows, err := store.Benchmarks(ctx, types.RoleDataAnalyst)
	if err != nil {
		t.Fatalf("Benchmarks failed: %v", err)
	}

	for _, row := range rows {
		if row.Region == types.RegionPhilippines && row.ExperienceBand == types.Band2to4 {
			// 5000 US base at 71% savings
			if row.Mid != 1450 {
				t.Errorf("PH 2-4 mid = %d, want 1450", row.Mid)
			}
			if row.Currency != "USD" || row.Period != "monthly" {
				t.Errorf("unexpected currency/period: %s/%s", row.Currency, row.Period)
			}
			return
		}
	}
	t.Fatal("Philippines 2-4 row not found")
}
