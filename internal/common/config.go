package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
	LLM         LLMConfig       `toml:"llm"`
	Pipeline    PipelineConfig  `toml:"pipeline"`
	Batch       BatchConfig     `toml:"batch"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger  BadgerConfig `toml:"badger"`
	Objects string       `toml:"objects"` // Directory for uploaded material files
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`       // Default: "gemini-3-flash-preview"
	MaxTokens   int     `toml:"max_tokens"`  // Maximum output tokens (default: 65536)
	Temperature float32 `toml:"temperature"` // Default generation temperature
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`      // Default: "claude-haiku-4-5"
	MaxTokens   int     `toml:"max_tokens"` // Maximum output tokens (default: 16384)
	Temperature float32 `toml:"temperature"`
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	LLMProviderGemini LLMProvider = "gemini"
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider" validate:"oneof=gemini claude"`
}

// PipelineConfig controls the material analysis pipeline
type PipelineConfig struct {
	QuestionsPerTopic int           `toml:"questions_per_topic" validate:"min=1"` // Desired questions per topic (default: 5)
	MaxQuestions      int           `toml:"max_questions" validate:"min=1"`       // Cap on kept questions per topic (default: 8)
	SectionStagger    time.Duration `toml:"section_stagger"`                      // Delay between section extraction launches (default: 500ms)
	ExtractionTokens  int           `toml:"extraction_tokens"`                    // Max output tokens for extraction calls
}

// BatchConfig controls the batch re-analysis orchestrator
type BatchConfig struct {
	PoolSize       int           `toml:"pool_size" validate:"min=1"`   // Concurrent re-analysis workers (default: 5)
	LaunchInterval time.Duration `toml:"launch_interval"`              // Minimum delay between worker launches (default: 2s)
	ItemTimeout    time.Duration `toml:"item_timeout"`                 // Per-item LLM call timeout (default: 90s)
	MaxRetries     int           `toml:"max_retries" validate:"min=0"` // Additional attempts per item (default: 3)
	RetryDelay     time.Duration `toml:"retry_delay"`                  // Base backoff delay, doubled per attempt (default: 1s)
}

// SchedulerConfig controls scheduled stale-question re-analysis
type SchedulerConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron schedule format (default: daily at 03:00)
	MaxAge   string `toml:"max_age"`  // Questions analyzed longer ago than this are stale (default: "720h")
}

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings should be exposed in quaestio.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
			Objects: "./data/materials",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Gemini: GeminiConfig{
			Model:       "gemini-3-flash-preview",
			MaxTokens:   65536,
			Temperature: 0.3,
		},
		Claude: ClaudeConfig{
			Model:       "claude-haiku-4-5",
			MaxTokens:   16384,
			Temperature: 0.3,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
		},
		Pipeline: PipelineConfig{
			QuestionsPerTopic: 5,
			MaxQuestions:      8,
			SectionStagger:    500 * time.Millisecond,
			ExtractionTokens:  32768,
		},
		Batch: BatchConfig{
			PoolSize:       5,
			LaunchInterval: 2 * time.Second,
			ItemTimeout:    90 * time.Second,
			MaxRetries:     3,
			RetryDelay:     time.Second,
		},
		Scheduler: SchedulerConfig{
			Enabled:  false,
			Schedule: "0 0 3 * * *",
			MaxAge:   "720h",
		},
	}
}

// LoadConfig loads configuration in priority order:
// defaults -> config file(s) -> environment variables
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies QUAESTIO_* environment variable overrides
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("QUAESTIO_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("QUAESTIO_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("QUAESTIO_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("QUAESTIO_DATA_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		config.Gemini.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		config.Claude.APIKey = v
	}
	if v := os.Getenv("QUAESTIO_LLM_PROVIDER"); v != "" {
		config.LLM.DefaultProvider = LLMProvider(strings.ToLower(v))
	}
}

// Validate checks configuration invariants before startup
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Batch.ItemTimeout <= 0 {
		return fmt.Errorf("batch item_timeout must be positive")
	}
	if c.Pipeline.MaxQuestions < c.Pipeline.QuestionsPerTopic {
		return fmt.Errorf("pipeline max_questions (%d) must be >= questions_per_topic (%d)",
			c.Pipeline.MaxQuestions, c.Pipeline.QuestionsPerTopic)
	}
	return nil
}
