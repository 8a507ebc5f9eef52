package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
// API Key Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (TALENTSCAN_AI_APIKEY, etc.)
// 4. Default values - Lowest priority
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Embedding     EmbeddingConfig     `mapstructure:"embedding"`
	Index         IndexConfig         `mapstructure:"index"`
	Benchmarks    BenchmarksConfig    `mapstructure:"benchmarks"`
	Engine        EngineConfig        `mapstructure:"engine"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AIConfig holds AI service configuration.
type AIConfig struct {
	// Global/fallback configuration
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	APIKey      string        `mapstructure:"apiKey"`
	MaxRetries  int           `mapstructure:"maxRetries"`
	Temperature float32       `mapstructure:"temperature"`

	// Operation-specific configurations
	Extract AIOperationConfig `mapstructure:"extract"`
	Skills  AIOperationConfig `mapstructure:"skills"`
}

// AIOperationConfig holds AI configuration for a specific operation. Pointer
// fields distinguish "unset" from zero so global defaults can fall through.
type AIOperationConfig struct {
	Provider       string               `mapstructure:"provider"`
	Model          string               `mapstructure:"model"`
	Timeout        *time.Duration       `mapstructure:"timeout"`
	APIKey         string               `mapstructure:"apiKey"`
	MaxRetries     *int                 `mapstructure:"maxRetries"`
	Temperature    *float32             `mapstructure:"temperature"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// CircuitBreakerConfig represents circuit breaker configuration.
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// EmbeddingConfig holds configuration for the text embedding adapter.
type EmbeddingConfig struct {
	Model          string               `mapstructure:"model"`
	Dimension      int                  `mapstructure:"dimension"`
	MaxChars       int                  `mapstructure:"maxChars"`
	Timeout        time.Duration        `mapstructure:"timeout"`
	MaxRetries     int                  `mapstructure:"maxRetries"`
	RequestsPerMin int                  `mapstructure:"requestsPerMin"`
	BurstCapacity  int                  `mapstructure:"burstCapacity"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// IndexConfig holds configuration for the similarity index.
type IndexConfig struct {
	Backend       string        `mapstructure:"backend"` // "memory" or "redis"
	RedisURL      string        `mapstructure:"redisURL"`
	KeyPrefix     string        `mapstructure:"keyPrefix"`
	TopK          int           `mapstructure:"topK"`
	MinScore      float64       `mapstructure:"minScore"`
	QueryTimeout  time.Duration `mapstructure:"queryTimeout"`
	UpsertTimeout time.Duration `mapstructure:"upsertTimeout"`
}

// BenchmarksConfig holds configuration for the salary benchmark store.
type BenchmarksConfig struct {
	Source      string        `mapstructure:"source"` // "static", "file" or "postgres"
	FilePath    string        `mapstructure:"filePath"`
	Watch       bool          `mapstructure:"watch"`
	Debounce    time.Duration `mapstructure:"debounce"`
	PostgresURL string        `mapstructure:"postgresURL"`
}

// EngineConfig holds tunables for region selection and confidence scoring.
type EngineConfig struct {
	Regions    RegionPolicyConfig `mapstructure:"regions"`
	Confidence ConfidenceConfig   `mapstructure:"confidence"`
}

// RegionPolicyConfig parameterizes the region selector. The thresholds are
// judgment calls inherited from the market team, kept configurable until
// business intent is confirmed.
type RegionPolicyConfig struct {
	PremiumComplexityThreshold  int      `mapstructure:"premiumComplexityThreshold"`
	USHighDemandThreshold       int      `mapstructure:"usHighDemandThreshold"`
	TimezoneComplexityThreshold int      `mapstructure:"timezoneComplexityThreshold"`
	StrategicCategories         []string `mapstructure:"strategicCategories"`
	MaxRegions                  int      `mapstructure:"maxRegions"`
}

// ConfidenceConfig holds the confidence score weights.
type ConfidenceConfig struct {
	SimilarityWeight float64 `mapstructure:"similarityWeight"`
	CoverageWeight   float64 `mapstructure:"coverageWeight"`
	ClassifierWeight float64 `mapstructure:"classifierWeight"`
	// HighConfidenceCap bounds the score when no similar scans were found.
	HighConfidenceCap float64 `mapstructure:"highConfidenceCap"`
}

// AppConfig holds general application configuration.
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// ObservabilityConfig holds observability configuration.
type ObservabilityConfig struct {
	Enabled         bool              `mapstructure:"enabled"`
	ServiceName     string            `mapstructure:"serviceName"`
	ServiceVersion  string            `mapstructure:"serviceVersion"`
	ServiceInstance string            `mapstructure:"serviceInstance"`
	ConsoleOutput   bool              `mapstructure:"consoleOutput"`
	SampleRate      float64           `mapstructure:"sampleRate"`
	Tracing         TracingConfig     `mapstructure:"tracing"`
	Metrics         MetricsConfig     `mapstructure:"metrics"`
	Console         ConsoleConfig     `mapstructure:"console"`
	Prometheus      PrometheusConfig  `mapstructure:"prometheus"`
	OTLP            OTLPConfig        `mapstructure:"otlp"`
	HealthCheck     HealthCheckConfig `mapstructure:"healthCheck"`
}

// TracingConfig holds tracing configuration.
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console output configuration.
type ConsoleConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// PrometheusConfig holds Prometheus configuration.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration.
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// HealthCheckConfig holds health check configuration.
type HealthCheckConfig struct {
	Timeout             time.Duration `mapstructure:"timeout"`
	AIModelCheckTimeout time.Duration `mapstructure:"aiModelCheckTimeout"`
}

// LoadConfig loads configuration from environment variables and a config file.
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("TALENTSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/talentscan/")
	v.AddConfigPath("$HOME/.talentscan")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyFallbacks()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets the default configuration values.
func setDefaults(v *viper.Viper) {
	// AI Configuration - Global defaults
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 2)
	v.SetDefault("ai.temperature", 0.2)

	// AI Configuration - Extract operation defaults
	v.SetDefault("ai.extract.provider", "gemini")
	v.SetDefault("ai.extract.model", "")
	v.SetDefault("ai.extract.timeout", 75*time.Second)
	v.SetDefault("ai.extract.maxRetries", 2)
	v.SetDefault("ai.extract.temperature", 0.1) // Low temperature for factual extraction

	// AI Configuration - Skills operation defaults
	v.SetDefault("ai.skills.provider", "gemini")
	v.SetDefault("ai.skills.model", "")
	v.SetDefault("ai.skills.timeout", 45*time.Second)
	v.SetDefault("ai.skills.maxRetries", 2)
	v.SetDefault("ai.skills.temperature", 0.3)

	// Circuit breaker defaults for both AI operations
	for _, op := range []string{"extract", "skills"} {
		v.SetDefault("ai."+op+".circuitBreaker.enabled", true)
		v.SetDefault("ai."+op+".circuitBreaker.maxRequests", 3)
		v.SetDefault("ai."+op+".circuitBreaker.interval", 60*time.Second)
		v.SetDefault("ai."+op+".circuitBreaker.timeout", 60*time.Second)
		v.SetDefault("ai."+op+".circuitBreaker.minRequests", 3)
		v.SetDefault("ai."+op+".circuitBreaker.failureThreshold", 0.6)
	}

	// Embedding Configuration
	v.SetDefault("embedding.model", "gemini-embedding-001")
	v.SetDefault("embedding.dimension", 1536)
	v.SetDefault("embedding.maxChars", 8000)
	v.SetDefault("embedding.timeout", 30*time.Second)
	v.SetDefault("embedding.maxRetries", 2)
	v.SetDefault("embedding.requestsPerMin", 120)
	v.SetDefault("embedding.burstCapacity", 10)
	v.SetDefault("embedding.circuitBreaker.enabled", true)
	v.SetDefault("embedding.circuitBreaker.maxRequests", 3)
	v.SetDefault("embedding.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("embedding.circuitBreaker.timeout", 30*time.Second)
	v.SetDefault("embedding.circuitBreaker.minRequests", 5)
	v.SetDefault("embedding.circuitBreaker.failureThreshold", 0.6)

	// Index Configuration
	v.SetDefault("index.backend", "memory")
	v.SetDefault("index.redisURL", "")
	v.SetDefault("index.keyPrefix", "talentscan:scan:")
	v.SetDefault("index.topK", 5)
	v.SetDefault("index.minScore", 0.75) // mirrors index.DefaultMinScore
	v.SetDefault("index.queryTimeout", 10*time.Second)
	v.SetDefault("index.upsertTimeout", 15*time.Second)

	// Benchmarks Configuration
	v.SetDefault("benchmarks.source", "static")
	v.SetDefault("benchmarks.filePath", "")
	v.SetDefault("benchmarks.watch", true)
	v.SetDefault("benchmarks.debounce", time.Second)
	v.SetDefault("benchmarks.postgresURL", "")

	// Engine Configuration
	v.SetDefault("engine.regions.premiumComplexityThreshold", 8)
	v.SetDefault("engine.regions.usHighDemandThreshold", 8)
	v.SetDefault("engine.regions.timezoneComplexityThreshold", 6)
	v.SetDefault("engine.regions.strategicCategories", []string{"Sales Operations Manager"})
	v.SetDefault("engine.regions.maxRegions", 3)
	v.SetDefault("engine.confidence.similarityWeight", 0.5)
	v.SetDefault("engine.confidence.coverageWeight", 0.3)
	v.SetDefault("engine.confidence.classifierWeight", 0.2)
	v.SetDefault("engine.confidence.highConfidenceCap", 0.5)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 1024*1024) // 1MB

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.geminiKey", "")
	v.SetDefault("vault.secrets.redisURL", "")
	v.SetDefault("vault.secrets.postgresURL", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "talentscan")
	v.SetDefault("observability.serviceVersion", "")
	v.SetDefault("observability.serviceInstance", "")
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)
	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
	v.SetDefault("observability.healthCheck.timeout", 15*time.Second)
	v.SetDefault("observability.healthCheck.aiModelCheckTimeout", 10*time.Second)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	// With Vault enabled the key may arrive after load via LoadVaultSecrets
	if c.AI.APIKey == "" && !c.Vault.Enabled {
		return fmt.Errorf("AI API key is required (set TALENTSCAN_AI_APIKEY environment variable)")
	}

	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI timeout must be positive")
	}

	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive")
	}

	switch c.Index.Backend {
	case "memory":
	case "redis":
		if c.Index.RedisURL == "" {
			return fmt.Errorf("index.redisURL is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid index backend: %s (must be 'memory' or 'redis')", c.Index.Backend)
	}

	switch c.Benchmarks.Source {
	case "static":
	case "file":
		if c.Benchmarks.FilePath == "" {
			return fmt.Errorf("benchmarks.filePath is required for the file source")
		}
	case "postgres":
		if c.Benchmarks.PostgresURL == "" {
			return fmt.Errorf("benchmarks.postgresURL is required for the postgres source")
		}
	default:
		return fmt.Errorf("invalid benchmarks source: %s (must be 'static', 'file' or 'postgres')", c.Benchmarks.Source)
	}

	if c.Index.MinScore < 0 || c.Index.MinScore > 1 {
		return fmt.Errorf("index.minScore must be within [0, 1]")
	}

	if c.Engine.Regions.MaxRegions < 1 || c.Engine.Regions.MaxRegions > 3 {
		return fmt.Errorf("engine.regions.maxRegions must be within [1, 3]")
	}

	weights := c.Engine.Confidence
	if weights.SimilarityWeight < 0 || weights.CoverageWeight < 0 || weights.ClassifierWeight < 0 {
		return fmt.Errorf("confidence weights must be non-negative")
	}

	validFormats := make(map[string]bool)
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultFormat] {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	return nil
}

// applyOperationDefaults applies global defaults to operation-specific configuration.
func (c *Config) applyOperationDefaults(opCfg *AIOperationConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		opCfg.MaxRetries = &c.AI.MaxRetries
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
}

// GetExtractConfig returns the AI configuration for the job extraction
// operation with fallback to global config.
func (c *Config) GetExtractConfig() AIOperationConfig {
	config := c.AI.Extract
	c.applyOperationDefaults(&config)
	return config
}

// GetSkillsConfig returns the AI configuration for the skills enhancement
// operation with fallback to global config.
func (c *Config) GetSkillsConfig() AIOperationConfig {
	config := c.AI.Skills
	c.applyOperationDefaults(&config)
	return config
}

// applyFallbacks applies environment variable fallbacks and derived values.
func (c *Config) applyFallbacks() {
	// Legacy environment variable support for the Gemini key
	if c.AI.APIKey == "" {
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			c.AI.APIKey = key
		}
	}

	// Set dynamic service instance ID if not specified
	if c.Observability.ServiceInstance == "" {
		if hostname, err := os.Hostname(); err == nil {
			c.Observability.ServiceInstance = fmt.Sprintf("%s-%s", c.Observability.ServiceName, hostname)
		} else {
			c.Observability.ServiceInstance = fmt.Sprintf("%s-1", c.Observability.ServiceName)
		}
	}

	// Console output tracks debug logging unless explicitly configured
	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}
