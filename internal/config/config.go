package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// API key required by the HTTP API. Empty disables auth (local use).
	APIKey string `envconfig:"API_KEY"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	ChatModel    string `envconfig:"CHAT_MODEL" default:"gpt-4o-mini"`
	JudgeModel   string `envconfig:"JUDGE_MODEL" default:"gpt-4o-mini"`
	// Requests per minute across all LLM calls. Zero disables limiting.
	LLMRateLimit int `envconfig:"LLM_RATE_LIMIT" default:"60"`

	// Optional Postgres source for tabular data.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	LogsDir string `envconfig:"LOGS_DIRECTORY" default:"logs"`

	ArchiveBaseURL string `envconfig:"ARCHIVE_BASE_URL" default:"https://codeload.github.com"`

	ChunkSize int `envconfig:"CHUNK_SIZE" default:"2000"`
	ChunkStep int `envconfig:"CHUNK_STEP" default:"1000"`

	SentryDSN        string  `envconfig:"SENTRY_DSN"`
	SentryEnv        string  `envconfig:"SENTRY_ENVIRONMENT"`
	SentrySampleRate float64 `envconfig:"SENTRY_TRACES_SAMPLE_RATE" default:"1.0"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("DOCENT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.ChunkSize <= 0 || cfg.ChunkStep <= 0 {
		return nil, fmt.Errorf("chunk size and step must be positive (size=%d step=%d)", cfg.ChunkSize, cfg.ChunkStep)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}
