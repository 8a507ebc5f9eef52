// Package benchmarks provides read access to historical salary benchmark
// rows, keyed by role category, region and experience band.
package benchmarks

import (
	"context"
	"fmt"

	"talentscan/internal/config"
	"talentscan/internal/errors"
	"talentscan/internal/types"
)

// Store serves salary benchmark rows. Implementations must be safe for
// concurrent use.
type Store interface {
	// Benchmarks returns all rows for a role category, across every region
	// and experience band the store knows about. An empty slice with a nil
	// error means the category has no benchmark data.
	Benchmarks(ctx context.Context, category types.RoleCategory) ([]types.SalaryBenchmarkRow, error)

	// Close releases backend resources.
	Close() error
}

// NewStore selects a Store implementation from configuration.
func NewStore(ctx context.Context, cfg *config.BenchmarksConfig, logger *errors.Logger) (Store, error) {
	switch cfg.Source {
	case "static":
		return NewStaticStore(), nil
	case "file":
		return NewFileStore(cfg, logger)
	case "postgres":
		return NewPostgresStore(ctx, cfg, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported benchmark source: %s", cfg.Source), nil)
	}
}

// RegionalSavings returns the percentage savings vs the US baseline for a
// region. Unknown regions fall back to 50 per historical convention.
func RegionalSavings(region types.Region) int {
	switch region {
	case types.RegionUnitedStates:
		return 0
	case types.RegionPhilippines:
		return 71
	case types.RegionLatinAmerica:
		return 58
	case types.RegionSouthAfrica:
		return 48
	default:
		return 50
	}
}
