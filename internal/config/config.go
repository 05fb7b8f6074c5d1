// Package config loads server settings from the environment, an optional .env
// file and an optional YAML file.
//
// Precedence, lowest first: built-in defaults, the YAML file named by
// CONFIG_FILE, environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

type Config struct {
	// HTTP Server
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	// Session storage
	StoreBackend    string        `yaml:"store_backend"`
	SQLitePath      string        `yaml:"sqlite_path"`
	SessionSecret   string        `yaml:"session_secret"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
	JanitorInterval time.Duration `yaml:"janitor_interval"`

	// Gemini
	GeminiAPIKey    string        `yaml:"gemini_api_key"`
	GeminiModel     string        `yaml:"gemini_model"`
	GeminiBaseURL   string        `yaml:"gemini_base_url"`
	ExternalTimeout time.Duration `yaml:"external_timeout"`
	ReplyLanguage   string        `yaml:"reply_language"`

	// Receipts
	DefaultCurrency string        `yaml:"default_currency"`
	ScanCacheSize   int           `yaml:"scan_cache_size"`
	ScanCacheTTL    time.Duration `yaml:"scan_cache_ttl"`

	// AMQP events, disabled when AMQPURL is empty
	AMQPURL      string `yaml:"amqp_url"`
	AMQPExchange string `yaml:"amqp_exchange"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Port:            "8080",
		LogLevel:        "info",
		StoreBackend:    BackendMemory,
		SQLitePath:      ":memory:",
		SessionTTL:      2 * time.Hour,
		JanitorInterval: 5 * time.Minute,
		GeminiModel:     "gemini-2.5-flash",
		GeminiBaseURL:   "https://generativelanguage.googleapis.com",
		ExternalTimeout: 60 * time.Second,
		ReplyLanguage:   "English",
		DefaultCurrency: "$",
		ScanCacheSize:   64,
		ScanCacheTTL:    time.Hour,
		AMQPExchange:    "receiptsplit",
	}
}

// Load reads .env (if present), the YAML file named by CONFIG_FILE (if set)
// and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.StoreBackend = getEnv("STORE_BACKEND", c.StoreBackend)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)
	c.SessionSecret = getEnv("SESSION_SECRET", c.SessionSecret)
	c.SessionTTL = getEnvDuration("SESSION_TTL", c.SessionTTL)
	c.JanitorInterval = getEnvDuration("JANITOR_INTERVAL", c.JanitorInterval)

	c.GeminiAPIKey = getEnv("GEMINI_API_KEY", c.GeminiAPIKey)
	c.GeminiModel = getEnv("GEMINI_MODEL", c.GeminiModel)
	c.GeminiBaseURL = getEnv("GEMINI_BASE_URL", c.GeminiBaseURL)
	c.ExternalTimeout = getEnvDuration("EXTERNAL_TIMEOUT", c.ExternalTimeout)
	c.ReplyLanguage = getEnv("REPLY_LANGUAGE", c.ReplyLanguage)

	c.DefaultCurrency = getEnv("DEFAULT_CURRENCY", c.DefaultCurrency)
	c.ScanCacheSize = getEnvInt("SCAN_CACHE_SIZE", c.ScanCacheSize)
	c.ScanCacheTTL = getEnvDuration("SCAN_CACHE_TTL", c.ScanCacheTTL)

	c.AMQPURL = getEnv("AMQP_URL", c.AMQPURL)
	c.AMQPExchange = getEnv("AMQP_EXCHANGE", c.AMQPExchange)
}

// Validate validates the configuration and returns an error listing every problem.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validLevels := []string{"debug", "info", "warn", "warning", "error"}
	if !slices.Contains(validLevels, strings.ToLower(c.LogLevel)) {
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLevels))
	}

	validBackends := []string{BackendMemory, BackendSQLite}
	if !slices.Contains(validBackends, c.StoreBackend) {
		problems = append(problems, fmt.Sprintf("invalid store backend '%s': must be one of %v", c.StoreBackend, validBackends))
	}
	if c.StoreBackend == BackendSQLite && c.SQLitePath == "" {
		problems = append(problems, "SQLite path cannot be empty when using sqlite backend")
	}

	if c.SessionSecret != "" && len(c.SessionSecret) < 16 {
		problems = append(problems, "session secret must be at least 16 characters")
	}
	if c.SessionTTL < time.Minute {
		problems = append(problems, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.JanitorInterval < time.Second {
		problems = append(problems, fmt.Sprintf("invalid janitor interval %v: must be at least 1 second", c.JanitorInterval))
	}

	if c.GeminiModel == "" {
		problems = append(problems, "Gemini model cannot be empty")
	}
	if u, err := url.Parse(c.GeminiBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, fmt.Sprintf("invalid Gemini base URL '%s': must be an http(s) URL", c.GeminiBaseURL))
	}
	if c.ExternalTimeout < time.Second || c.ExternalTimeout > 5*time.Minute {
		problems = append(problems, fmt.Sprintf("invalid external timeout %v: must be between 1s and 5m", c.ExternalTimeout))
	}
	if strings.TrimSpace(c.ReplyLanguage) == "" {
		problems = append(problems, "reply language cannot be empty")
	}

	if strings.TrimSpace(c.DefaultCurrency) == "" {
		problems = append(problems, "default currency cannot be empty")
	}
	if c.ScanCacheSize < 0 {
		problems = append(problems, fmt.Sprintf("invalid scan cache size %d: must not be negative", c.ScanCacheSize))
	}
	if c.ScanCacheSize > 0 && c.ScanCacheTTL <= 0 {
		problems = append(problems, "scan cache TTL must be positive when the cache is enabled")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
