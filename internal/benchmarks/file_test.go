package benchmarks

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"talentscan/internal/config"
	"talentscan/internal/errors"
	"talentscan/internal/types"
)

const testBenchmarkYAML = `benchmarks:
  - roleCategory: Data Analyst
    region: United States
    experienceBand: "2-4"
    low: 4250
    mid: 5000
    high: 5750
  - roleCategory: Data Analyst
    region: Philippines
    experienceBand: "2-4"
    low: 1230
    mid: 1450
    high: 1660
  - roleCategory: Nonexistent Role
    region: United States
    experienceBand: "2-4"
    low: 1
    mid: 2
    high: 3
`

func writeTestFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "benchmarks.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func TestFileStoreLoad(t *testing.T) {
	path := writeTestFile(t, testBenchmarkYAML)
	logger := errors.NewLogger(slog.LevelError)

	store, err := NewFileStore(&config.BenchmarksConfig{
		Source:   "file",
		FilePath: path,
		Watch:    false,
	}, logger)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer store.Close()

	rows, err := store.Benchmarks(context.Background(), types.RoleDataAnalyst)
	if err != nil {
		t.Fatalf("Benchmarks failed: %v", err)
	}

	// The row with the unknown role category is skipped, not fatal
	if len(rows) != 2 {
		t.Fatalf("expected 2 valid rows, got %d", len(rows))
	}

	for _, row := range rows {
		switch row.Region {
		case types.RegionUnitedStates:
			if row.SavingsVsBaseline != 0 {
				t.Errorf("US savings = %d, want 0", row.SavingsVsBaseline)
			}
		case types.RegionPhilippines:
			if row.SavingsVsBaseline != 71 {
				t.Errorf("PH savings = %d, want 71", row.SavingsVsBaseline)
			}
			if row.Currency != "USD" {
				t.Errorf("default currency = %q, want USD", row.Currency)
			}
		default:
			t.Errorf("unexpected region %s", row.Region)
		}
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	logger := errors.NewLogger(slog.LevelError)
	_, err := NewFileStore(&config.BenchmarksConfig{
		Source:   "file",
		FilePath: filepath.Join(t.TempDir(), "missing.yaml"),
	}, logger)
	if err == nil {
		t.Fatal("expected error for missing benchmark file")
	}
}

func TestFileStoreBrokenReloadKeepsData(t *testing.T) {
	path := writeTestFile(t, testBenchmarkYAML)
	logger := errors.NewLogger(slog.LevelError)

	store, err := NewFileStore(&config.BenchmarksConfig{
		Source:   "file",
		FilePath: path,
		Watch:    false,
	}, logger)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer store.Close()

	// Corrupt the file and force a reload; the old table must survive
	if err := os.WriteFile(path, []byte("{not yaml"), 0o644); err != nil {
		t.Fatalf("failed to corrupt file: %v", err)
	}
	if err := store.reload(); err == nil {
		t.Fatal("expected reload to fail on corrupt file")
	}

	rows, err := store.Benchmarks(context.Background(), types.RoleDataAnalyst)
	if err != nil {
		t.Fatalf("Benchmarks failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("previous data not retained after failed reload, got %d rows", len(rows))
	}
}
