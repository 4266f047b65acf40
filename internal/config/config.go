package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/MikeSquared-Agency/chatreport/internal/classifier"
	"github.com/MikeSquared-Agency/chatreport/internal/pipeline"
)

const (
	BackendOllama   = "ollama"
	BackendLlamaAPI = "llamaapi"
)

type Config struct {
	Period    string `mapstructure:"PERIOD"`
	SourceDir string `mapstructure:"SOURCE_DIR"`
	Workers   int    `mapstructure:"WORKERS"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`

	SpreadsheetID     string `mapstructure:"SPREADSHEET_ID"`
	SheetsAccessToken string `mapstructure:"SHEETS_ACCESS_TOKEN"`
	SheetsBaseURL     string `mapstructure:"SHEETS_BASE_URL"`
	BaseSheet         string `mapstructure:"BASE_SHEET"`
	SheetName         string `mapstructure:"SHEET_NAME"`
	StartRow          int    `mapstructure:"START_ROW"`

	NLPAPIKey  string `mapstructure:"NLP_API_KEY"`
	NLPModel   string `mapstructure:"NLP_MODEL"`
	NLPBaseURL string `mapstructure:"NLP_BASE_URL"`

	OllamaHost  string `mapstructure:"OLLAMA_HOST"`
	OllamaModel string `mapstructure:"OLLAMA_MODEL"`

	LlamaAPIKey  string `mapstructure:"LLAMA_API_KEY"`
	LlamaModel   string `mapstructure:"LLAMA_MODEL"`
	LlamaBaseURL string `mapstructure:"LLAMA_BASE_URL"`

	Classifier          string        `mapstructure:"CLASSIFIER"`
	GenerativeBackend   string        `mapstructure:"GENERATIVE_BACKEND"`
	ClassifyThrottle    time.Duration `mapstructure:"CLASSIFY_THROTTLE"`
	ClassifyCooldown    time.Duration `mapstructure:"CLASSIFY_COOLDOWN"`
	ClassifyMaxAttempts int           `mapstructure:"CLASSIFY_MAX_ATTEMPTS"`
	ClassifyPolicy      string        `mapstructure:"CLASSIFY_POLICY"`
	SummarizePolicy     string        `mapstructure:"SUMMARIZE_POLICY"`

	NatsURL       string `mapstructure:"NATS_URL"`
	NatsToken     string `mapstructure:"NATS_TOKEN"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	SlackBotToken string `mapstructure:"SLACK_BOT_TOKEN"`
	SlackChannel  string `mapstructure:"SLACK_CHANNEL"`
	StatusPort    int    `mapstructure:"STATUS_PORT"`
	OutputFile    string `mapstructure:"OUTPUT_FILE"`
}

// Every key needs a default, otherwise Unmarshal ignores its env var.
var defaults = map[string]any{
	"PERIOD":                "JULIO24",
	"SOURCE_DIR":            "./chats/07",
	"WORKERS":               1,
	"LOG_LEVEL":             "info",
	"SPREADSHEET_ID":        "",
	"SHEETS_ACCESS_TOKEN":   "",
	"SHEETS_BASE_URL":       "",
	"BASE_SHEET":            "BASE",
	"SHEET_NAME":            "",
	"START_ROW":             5,
	"NLP_API_KEY":           "",
	"NLP_MODEL":             "xlm-roberta-large-xnli",
	"NLP_BASE_URL":          "",
	"OLLAMA_HOST":           "http://localhost:11434",
	"OLLAMA_MODEL":          "llama3.1",
	"LLAMA_API_KEY":         "",
	"LLAMA_MODEL":           "llama3-70b",
	"LLAMA_BASE_URL":        "",
	"CLASSIFIER":            classifier.StrategyZeroShot,
	"GENERATIVE_BACKEND":    BackendOllama,
	"CLASSIFY_THROTTLE":     "6s",
	"CLASSIFY_COOLDOWN":     "60s",
	"CLASSIFY_MAX_ATTEMPTS": 0,
	"CLASSIFY_POLICY":       "failfast",
	"SUMMARIZE_POLICY":      "besteffort",
	"NATS_URL":              "",
	"NATS_TOKEN":            "",
	"DATABASE_URL":          "",
	"SLACK_BOT_TOKEN":       "",
	"SLACK_CHANNEL":         "",
	"STATUS_PORT":           0,
	"OUTPUT_FILE":           "",
}

// Load reads an optional .env file from the working directory, then the
// environment.
func Load() (Config, error) {
	return load(".env")
}

func load(envFile string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read %s: %w", envFile, err)
	}

	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Classifier = strings.ToLower(cfg.Classifier)
	cfg.GenerativeBackend = strings.ToLower(cfg.GenerativeBackend)
	return cfg, nil
}

// Validate checks the settings a run cannot start without.
func (c Config) Validate() error {
	if c.Period == "" {
		return fmt.Errorf("PERIOD is required")
	}
	if c.SourceDir == "" {
		return fmt.Errorf("SOURCE_DIR is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.ClassifyMaxAttempts < 0 {
		return fmt.Errorf("CLASSIFY_MAX_ATTEMPTS must not be negative, got %d", c.ClassifyMaxAttempts)
	}
	if _, err := pipeline.ParsePolicy(c.ClassifyPolicy); err != nil {
		return fmt.Errorf("CLASSIFY_POLICY: %w", err)
	}
	if _, err := pipeline.ParsePolicy(c.SummarizePolicy); err != nil {
		return fmt.Errorf("SUMMARIZE_POLICY: %w", err)
	}

	switch c.GenerativeBackend {
	case BackendOllama:
	case BackendLlamaAPI:
		if c.LlamaAPIKey == "" {
			return fmt.Errorf("LLAMA_API_KEY is required for the %s backend", BackendLlamaAPI)
		}
	default:
		return fmt.Errorf("unknown GENERATIVE_BACKEND %q", c.GenerativeBackend)
	}

	switch c.Classifier {
	case classifier.StrategyZeroShot:
		if c.NLPAPIKey == "" {
			return fmt.Errorf("NLP_API_KEY is required for the %s classifier", classifier.StrategyZeroShot)
		}
	case classifier.StrategyGenerative:
	default:
		return fmt.Errorf("unknown CLASSIFIER %q", c.Classifier)
	}

	if c.SpreadsheetID != "" && c.SheetsAccessToken == "" {
		return fmt.Errorf("SHEETS_ACCESS_TOKEN is required when SPREADSHEET_ID is set")
	}
	return nil
}

// RetryPolicy returns the zero-shot pacing settings.
func (c Config) RetryPolicy() classifier.RetryPolicy {
	return classifier.RetryPolicy{
		Throttle:    c.ClassifyThrottle,
		Cooldown:    c.ClassifyCooldown,
		MaxAttempts: c.ClassifyMaxAttempts,
	}
}

// PipelineOptions returns run options. Call Validate first.
func (c Config) PipelineOptions() pipeline.Options {
	opts := pipeline.DefaultOptions(c.Period)
	opts.Workers = c.Workers
	if p, err := pipeline.ParsePolicy(c.ClassifyPolicy); err == nil {
		opts.ClassifyPolicy = p
	}
	if p, err := pipeline.ParsePolicy(c.SummarizePolicy); err == nil {
		opts.SummarizePolicy = p
	}
	return opts
}
