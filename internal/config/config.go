// Package config provides configuration management for the notice crawler.
// It handles loading, validation, and access to configuration values from a
// YAML config file and environment variables via Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Default timeouts and thresholds.
const (
	DefaultRenderTimeout      = 60 * time.Second
	DefaultStaticTimeout      = 15 * time.Second
	DefaultLLMTimeout         = 30 * time.Second
	DefaultMessagingTimeout   = 15 * time.Second
	DefaultRelevanceThreshold = 0.5
	DefaultMinContentLength   = 100
	DefaultTimezone           = "Asia/Seoul"
)

// Config represents the application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Fetcher   FetcherConfig   `mapstructure:"fetcher"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Messaging MessagingConfig `mapstructure:"messaging"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Timezone    string `mapstructure:"timezone"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level       string `mapstructure:"level"`
	Encoding    string `mapstructure:"encoding"`
	Development bool   `mapstructure:"development"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// FetcherConfig holds page acquisition settings.
type FetcherConfig struct {
	// RenderURL is the scrape endpoint of the JS-rendering service.
	// Empty disables the render strategy; the static fetch runs directly.
	RenderURL        string        `mapstructure:"render_url"`
	RenderAPIKey     string        `mapstructure:"render_api_key"`
	RenderTimeout    time.Duration `mapstructure:"render_timeout"`
	StaticTimeout    time.Duration `mapstructure:"static_timeout"`
	UserAgent        string        `mapstructure:"user_agent"`
	MinContentLength int           `mapstructure:"min_content_length"`
}

// LLMConfig holds reasoning-service settings (OpenAI-compatible chat API).
type LLMConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Model    string        `mapstructure:"model"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether the reasoning service is configured.
func (c LLMConfig) Enabled() bool {
	return c.APIKey != "" && c.Endpoint != "" && c.Model != ""
}

// MessagingConfig holds the templated-message API settings.
// All keys are required deployment inputs; there are no embedded defaults.
type MessagingConfig struct {
	Endpoint     string        `mapstructure:"endpoint"`
	SenderKey    string        `mapstructure:"sender_key"`
	SecretKey    string        `mapstructure:"secret_key"`
	AppKey       string        `mapstructure:"app_key"`
	TemplateCode string        `mapstructure:"template_code"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// PipelineConfig holds orchestrator behavior settings.
type PipelineConfig struct {
	RelevanceThreshold float64 `mapstructure:"relevance_threshold"`
	DeepCrawl          bool    `mapstructure:"deep_crawl"`
	DispatchAfterCrawl bool    `mapstructure:"dispatch_after_crawl"`
}

// SchedulerConfig holds cron expressions for the in-process scheduler.
type SchedulerConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	CrawlSpec    string `mapstructure:"crawl_spec"`
	DispatchSpec string `mapstructure:"dispatch_spec"`
}

// Location resolves the configured timezone, falling back to the default.
func (c *Config) Location() *time.Location {
	tz := c.App.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc, _ = time.LoadLocation(DefaultTimezone)
	}
	return loc
}

// Load reads configuration from .env, config.yaml, and environment variables.
func Load() (*Config, error) {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("NOTICECRAWL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets production-safe default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "noticecrawl")
	v.SetDefault("app.environment", "production")
	v.SetDefault("app.timezone", DefaultTimezone)

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 2*time.Minute)
	v.SetDefault("server.idle_timeout", time.Minute)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
	v.SetDefault("logger.development", false)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("fetcher.render_timeout", DefaultRenderTimeout)
	v.SetDefault("fetcher.static_timeout", DefaultStaticTimeout)
	v.SetDefault("fetcher.min_content_length", DefaultMinContentLength)
	v.SetDefault("fetcher.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	v.SetDefault("llm.endpoint", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("llm.timeout", DefaultLLMTimeout)

	v.SetDefault("messaging.timeout", DefaultMessagingTimeout)
	v.SetDefault("messaging.template_code", "send-article")

	v.SetDefault("pipeline.relevance_threshold", DefaultRelevanceThreshold)
	v.SetDefault("pipeline.deep_crawl", false)
	v.SetDefault("pipeline.dispatch_after_crawl", false)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.crawl_spec", "0 * * * *")
	v.SetDefault("scheduler.dispatch_spec", "* * * * *")
}

// Validate checks settings that have no safe fallback.
func (c *Config) Validate() error {
	if c.Fetcher.MinContentLength <= 0 {
		return errors.New("fetcher.min_content_length must be positive")
	}
	if c.Pipeline.RelevanceThreshold < 0 || c.Pipeline.RelevanceThreshold > 1 {
		return fmt.Errorf("pipeline.relevance_threshold %v out of range [0,1]", c.Pipeline.RelevanceThreshold)
	}
	return nil
}
