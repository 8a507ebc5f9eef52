package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func defaultTestConfig() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(err)
	}
	cfg.AI.APIKey = "test-key"
	return &cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults with api key are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing api key",
			mutate:  func(c *Config) { c.AI.APIKey = "" },
			wantErr: true,
		},
		{
			name:    "unknown index backend",
			mutate:  func(c *Config) { c.Index.Backend = "pinecone" },
			wantErr: true,
		},
		{
			name:    "redis backend without url",
			mutate:  func(c *Config) { c.Index.Backend = "redis" },
			wantErr: true,
		},
		{
			name: "redis backend with url",
			mutate: func(c *Config) {
				c.Index.Backend = "redis"
				c.Index.RedisURL = "redis://localhost:6379/0"
			},
			wantErr: false,
		},
		{
			name:    "file benchmarks without path",
			mutate:  func(c *Config) { c.Benchmarks.Source = "file" },
			wantErr: true,
		},
		{
			name:    "postgres benchmarks without url",
			mutate:  func(c *Config) { c.Benchmarks.Source = "postgres" },
			wantErr: true,
		},
		{
			name:    "min score out of range",
			mutate:  func(c *Config) { c.Index.MinScore = 1.5 },
			wantErr: true,
		},
		{
			name:    "max regions out of range",
			mutate:  func(c *Config) { c.Engine.Regions.MaxRegions = 5 },
			wantErr: true,
		},
		{
			name:    "negative confidence weight",
			mutate:  func(c *Config) { c.Engine.Confidence.CoverageWeight = -0.1 },
			wantErr: true,
		},
		{
			name:    "default format not in supported list",
			mutate:  func(c *Config) { c.App.DefaultFormat = "xml" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultTestConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOperationConfigFallbacks(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.AI.Model = "gemini-2.0-flash"
	cfg.AI.Timeout = 60 * time.Second
	cfg.AI.Extract.Model = ""
	cfg.AI.Skills.Model = "gemini-2.5-pro"

	extract := cfg.GetExtractConfig()
	if extract.Model != "gemini-2.0-flash" {
		t.Errorf("extract model = %q, want fallback to global", extract.Model)
	}
	if extract.APIKey != "test-key" {
		t.Errorf("extract apiKey = %q, want global key", extract.APIKey)
	}
	if extract.Timeout == nil || *extract.Timeout != 75*time.Second {
		t.Errorf("extract timeout should keep the operation default")
	}

	skills := cfg.GetSkillsConfig()
	if skills.Model != "gemini-2.5-pro" {
		t.Errorf("skills model = %q, want operation override", skills.Model)
	}
}

func TestDefaultsMatchDocumentedBehavior(t *testing.T) {
	cfg := defaultTestConfig()

	if cfg.Index.MinScore != 0.75 {
		t.Errorf("index.minScore default = %v, want 0.75", cfg.Index.MinScore)
	}
	if cfg.Index.TopK != 5 {
		t.Errorf("index.topK default = %v, want 5", cfg.Index.TopK)
	}
	if cfg.Embedding.Dimension != 1536 {
		t.Errorf("embedding.dimension default = %v, want 1536", cfg.Embedding.Dimension)
	}
	if cfg.Embedding.MaxChars != 8000 {
		t.Errorf("embedding.maxChars default = %v, want 8000", cfg.Embedding.MaxChars)
	}
	if cfg.Engine.Regions.MaxRegions != 3 {
		t.Errorf("regions.maxRegions default = %v, want 3", cfg.Engine.Regions.MaxRegions)
	}
	sum := cfg.Engine.Confidence.SimilarityWeight + cfg.Engine.Confidence.CoverageWeight + cfg.Engine.Confidence.ClassifierWeight
	if sum != 1.0 {
		t.Errorf("confidence weights sum = %v, want 1.0", sum)
	}
}
