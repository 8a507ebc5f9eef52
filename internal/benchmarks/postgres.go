package benchmarks

import (
	"context"

	"talentscan/internal/config"
	"talentscan/internal/errors"
	"talentscan/internal/types"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore serves benchmark rows from the salary_benchmarks table.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *errors.Logger
}

var _ Store = (*PostgresStore)(nil)

const benchmarkQuery = `
SELECT role_category, region, experience_band,
       salary_low, salary_mid, salary_high,
       COALESCE(currency, 'USD'), COALESCE(period, 'monthly')
FROM salary_benchmarks
WHERE role_category = $1`

// NewPostgresStore connects to Postgres and verifies the connection.
func NewPostgresStore(ctx context.Context, cfg *config.BenchmarksConfig, logger *errors.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, errors.NewBenchmarkError(errors.ErrCodeBenchmarkMissing,
			"Failed to create Postgres pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.NewBenchmarkError(errors.ErrCodeBenchmarkMissing,
			"Failed to connect to Postgres", err)
	}

	logger.Info("Connected to Postgres benchmark store")
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// Benchmarks returns all rows for a role category.
func (s *PostgresStore) Benchmarks(ctx context.Context, category types.RoleCategory) ([]types.SalaryBenchmarkRow, error) {
	rows, err := s.pool.Query(ctx, benchmarkQuery, string(category))
	if err != nil {
		return nil, errors.NewBenchmarkError(errors.ErrCodeBenchmarkMissing,
			"Failed to query salary benchmarks", err)
	}
	defer rows.Close()

	var result []types.SalaryBenchmarkRow
	for rows.Next() {
		var rawCategory, rawRegion, rawBand, currency, period string
		var low, mid, high int
		if err := rows.Scan(&rawCategory, &rawRegion, &rawBand, &low, &mid, &high, &currency, &period); err != nil {
			return nil, errors.NewBenchmarkError(errors.ErrCodeBenchmarkMissing,
				"Failed to scan salary benchmark row", err)
		}

		roleCategory, err := types.ParseRoleCategory(rawCategory)
		if err != nil {
			s.logger.Warn("Skipping benchmark row with unknown role category", "value", rawCategory)
			continue
		}
		region, err := types.ParseRegion(rawRegion)
		if err != nil {
			s.logger.Warn("Skipping benchmark row with unknown region", "value", rawRegion)
			continue
		}
		band, err := types.ParseExperienceBand(rawBand)
		if err != nil {
			s.logger.Warn("Skipping benchmark row with unknown experience band", "value", rawBand)
			continue
		}

		result = append(result, types.SalaryBenchmarkRow{
			RoleCategory:      roleCategory,
			Region:            region,
			ExperienceBand:    band,
			Low:               low,
			Mid:               mid,
			High:              high,
			Currency:          currency,
			Period:            period,
			SavingsVsBaseline: RegionalSavings(region),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewBenchmarkError(errors.ErrCodeBenchmarkMissing,
			"Failed to read salary benchmark rows", err)
	}

	return result, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
