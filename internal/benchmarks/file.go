package benchmarks

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"talentscan/internal/config"
	"talentscan/internal/errors"
	"talentscan/internal/types"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// benchmarkFile is the on-disk YAML document shape.
type benchmarkFile struct {
	Benchmarks []benchmarkFileRow `yaml:"benchmarks"`
}

type benchmarkFileRow struct {
	RoleCategory   string `yaml:"roleCategory"`
	Region         string `yaml:"region"`
	ExperienceBand string `yaml:"experienceBand"`
	Low            int    `yaml:"low"`
	Mid            int    `yaml:"mid"`
	High           int    `yaml:"high"`
	Currency       string `yaml:"currency"`
	Period         string `yaml:"period"`
}

// FileStore serves benchmark rows from a YAML file, reloading when the file
// changes on disk. Editors and config-map updates replace files rather than
// writing in place, so the watcher follows the parent directory.
type FileStore struct {
	path     string
	debounce time.Duration
	logger   *errors.Logger

	mu   sync.RWMutex
	rows map[types.RoleCategory][]types.SalaryBenchmarkRow

	watcher *fsnotify.Watcher
	done    chan struct{}
}

var _ Store = (*FileStore)(nil)

// NewFileStore loads the benchmark file and, when watching is enabled,
// starts a background reloader.
func NewFileStore(cfg *config.BenchmarksConfig, logger *errors.Logger) (*FileStore, error) {
	s := &FileStore{
		path:     cfg.FilePath,
		debounce: cfg.Debounce,
		logger:   logger,
		done:     make(chan struct{}),
	}
	if s.debounce <= 0 {
		s.debounce = time.Second
	}

	if err := s.reload(); err != nil {
		return nil, err
	}

	if cfg.Watch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, errors.NewBenchmarkError(errors.ErrCodeBenchmarkMissing,
				"Failed to create benchmark file watcher", err)
		}
		if err := watcher.Add(filepath.Dir(cfg.FilePath)); err != nil {
			watcher.Close()
			return nil, errors.NewBenchmarkError(errors.ErrCodeBenchmarkMissing,
				"Failed to watch benchmark file directory", err)
		}
		s.watcher = watcher
		go s.watchLoop()
	}

	return s, nil
}

// Benchmarks returns all rows for a role category.
func (s *FileStore) Benchmarks(ctx context.Context, category types.RoleCategory) ([]types.SalaryBenchmarkRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rows[category], nil
}

// Close stops the watcher.
func (s *FileStore) Close() error {
	close(s.done)
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

// reload parses the file and swaps the row table atomically. A broken file
// leaves the previous table in place.
func (s *FileStore) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return errors.NewBenchmarkError(errors.ErrCodeBenchmarkMissing,
			"Failed to read benchmark file", err)
	}

	var doc benchmarkFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return errors.NewBenchmarkError(errors.ErrCodeBenchmarkMissing,
			"Failed to parse benchmark file", err)
	}

	rows := make(map[types.RoleCategory][]types.SalaryBenchmarkRow)
	skipped := 0
	for _, raw := range doc.Benchmarks {
		row, err := parseFileRow(raw)
		if err != nil {
			skipped++
			s.logger.Warn("Skipping invalid benchmark row",
				"role_category", raw.RoleCategory,
				"region", raw.Region,
				"error", err.Error())
			continue
		}
		rows[row.RoleCategory] = append(rows[row.RoleCategory], row)
	}

	s.mu.Lock()
	s.rows = rows
	s.mu.Unlock()

	s.logger.Info("Loaded salary benchmarks",
		"path", s.path,
		"categories", len(rows),
		"skipped_rows", skipped)
	return nil
}

func parseFileRow(raw benchmarkFileRow) (types.SalaryBenchmarkRow, error) {
	category, err := types.ParseRoleCategory(raw.RoleCategory)
	if err != nil {
		return types.SalaryBenchmarkRow{}, err
	}
	region, err := types.ParseRegion(raw.Region)
	if err != nil {
		return types.SalaryBenchmarkRow{}, err
	}
	band, err := types.ParseExperienceBand(raw.ExperienceBand)
	if err != nil {
		return types.SalaryBenchmarkRow{}, err
	}

	currency := raw.Currency
	if currency == "" {
		currency = "USD"
	}
	period := raw.Period
	if period == "" {
		period = "monthly"
	}

	return types.SalaryBenchmarkRow{
		RoleCategory:      category,
		Region:            region,
		ExperienceBand:    band,
		Low:               raw.Low,
		Mid:               raw.Mid,
		High:              raw.High,
		Currency:          currency,
		Period:            period,
		SavingsVsBaseline: RegionalSavings(region),
	}, nil
}

// watchLoop reloads the file after changes settle, collapsing editor
// write-rename bursts into a single reload.
func (s *FileStore) watchLoop() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-s.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
				timerC = timer.C
			} else {
				timer.Reset(s.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			if err := s.reload(); err != nil {
				s.logger.LogError(err, "Benchmark file reload failed, keeping previous data",
					"path", s.path)
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("Benchmark file watcher error", "error", err.Error())
		}
	}
}
