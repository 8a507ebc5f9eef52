package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"talentscan/internal/ai"
	"talentscan/internal/benchmarks"
	"talentscan/internal/common"
	"talentscan/internal/engine"
	"talentscan/internal/errors"
	"talentscan/internal/index"
	"talentscan/internal/observability"
	"talentscan/internal/types"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan [posting-file] [challenges-file]",
	Short: "Run a market scan for a job posting",
	Long: `Run a full market scan for a job posting. The posting file holds the
free-text job description; an optional second file describes the hiring
challenges the team is facing.

The scan includes:
- Role classification against the category catalog
- Similar historical scans from the vector index
- Regional hiring recommendations
- Salary ranges with savings vs the US baseline
- Consolidated must-have and nice-to-have skills
- A confidence score for the overall analysis`,
	Args: cobra.RangeArgs(1, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if strings.TrimSpace(scanTitle) == "" {
			return fmt.Errorf("a job title is required, pass it with --title")
		}
		// Apply default format if not specified
		if scanConfig.OutputFormat == "" {
			scanConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(scanConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runScan,
}

var (
	scanConfig common.CommandConfig
	scanTitle  string
)

func init() {
	scanCmd.Flags().StringVarP(&scanTitle, "title", "t", "", "Job title of the posting (required)")
	scanCmd.Flags().StringVarP(&scanConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	scanCmd.Flags().StringVar(&scanConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = scanCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return []string{}, cobra.ShellCompDirectiveError
		}
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := getConfigFromContext(ctx)
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(ctx)
	if err != nil {
		return err
	}

	// Observability is optional; a scan works identically without it
	var metrics *observability.Metrics
	if cfg.Observability.Enabled {
		manager, err := observability.NewObservabilityManager(
			observability.GetObservabilityConfig(cfg, Version), cfg)
		if err != nil {
			logger.Warn("Observability setup failed, continuing without it", "error", err.Error())
		} else {
			metrics = manager.GetMetrics()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := manager.Shutdown(shutdownCtx); err != nil {
					logger.Warn("Observability shutdown failed", "error", err.Error())
				}
			}()
		}
	}

	// AI services for the two structured operations
	extractConfig := cfg.GetExtractConfig()
	extractService, err := ai.NewService(&extractConfig, "extract", logger)
	if err != nil {
		return fmt.Errorf("failed to create extraction AI service: %w", err)
	}
	defer closeQuietly(logger, "extract service", extractService.Provider.Close)

	skillsConfig := cfg.GetSkillsConfig()
	skillsService, err := ai.NewService(&skillsConfig, "skills", logger)
	if err != nil {
		return fmt.Errorf("failed to create skills AI service: %w", err)
	}
	defer closeQuietly(logger, "skills service", skillsService.Provider.Close)

	// Embedding and the similarity index are best-effort: a scan without
	// them completes with a reduced confidence score
	var embedder ai.Embedder
	if geminiEmbedder, err := ai.NewGeminiEmbedder(&cfg.Embedding, cfg.AI.APIKey, logger); err != nil {
		logger.Warn("Embedder unavailable, scans will run without similarity context", "error", err.Error())
	} else {
		embedder = geminiEmbedder
		defer closeQuietly(logger, "embedder", geminiEmbedder.Close)
	}

	var scanIndex index.Index
	if idx, err := index.New(ctx, &cfg.Index, logger); err != nil {
		logger.Warn("Similarity index unavailable, scans will run without matches", "error", err.Error())
	} else {
		scanIndex = idx
		defer closeQuietly(logger, "similarity index", idx.Close)
	}

	store, err := benchmarks.NewStore(ctx, &cfg.Benchmarks, logger)
	if err != nil {
		return fmt.Errorf("failed to open benchmark store: %w", err)
	}
	defer closeQuietly(logger, "benchmark store", store.Close)

	analyzer := engine.NewAnalyzer(engine.AnalyzerDeps{
		Extract:  extractService.Provider,
		Skills:   skillsService.Provider,
		Embedder: embedder,
		Index:    scanIndex,
		Store:    store,
		Config:   cfg,
		Metrics:  metrics,
		Logger:   logger,
	})

	createInput := func(contents []string) (types.JobPosting, error) {
		posting := types.JobPosting{
			Title:       scanTitle,
			Description: contents[0],
		}
		if len(contents) > 1 {
			posting.HiringChallenges = contents[1]
		}
		return posting, nil
	}

	logDetails := func(posting types.JobPosting, cfg common.CommandConfig) {
		logger.Info("Starting market scan",
			"title", posting.Title,
			"description_chars", len(posting.Description),
			"output_format", cfg.OutputFormat)
	}

	scanOperation := func(ctx context.Context, posting types.JobPosting) (*types.MarketScanResult, error) {
		return analyzer.Analyze(ctx, posting)
	}

	err = common.RunScanCommand(
		ctx,
		logger,
		scanConfig,
		cfg.App.MaxFileSize,
		args,
		createInput,
		scanOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to run market scan: %w", err)
	}
	logger.Info("Market scan completed successfully")
	return nil
}

func closeQuietly(logger *errors.Logger, name string, close func() error) {
	if err := close(); err != nil {
		logger.Warn("Failed to close "+name, "error", err.Error())
	}
}
