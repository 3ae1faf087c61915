// Package config loads runtime configuration for the hotel MCP adapters.
//
// Values are resolved in order: built-in defaults, an optional YAML file
// (HOTEL_CONFIG), a .env file in the working directory, then environment
// variables. Later sources win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultAPIBaseURL is used when neither HOTEL_API_URL nor VITE_API_URL is set.
const DefaultAPIBaseURL = "http://localhost:8000/api/v1"

// DefaultAPITimeout bounds a single API call, refresh included.
const DefaultAPITimeout = 30 * time.Second

// Config holds everything the server and CLI need at startup
type Config struct {
	API    APIConfig    `yaml:"api"`
	Tokens TokenConfig  `yaml:"tokens"`
	Server ServerConfig `yaml:"server"`
	Debug  DebugConfig  `yaml:"debug"`
}

// APIConfig describes the upstream hotel REST API
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"` // requests per second, 0 disables pacing
	Burst     int           `yaml:"burst"`
	UserAgent string        `yaml:"user_agent"`
}

// TokenConfig selects where the credential pair is persisted
type TokenConfig struct {
	Backend       string `yaml:"backend"` // "memory", "sqlite", "redis"
	Path          string `yaml:"path"`
	MasterKey     string `yaml:"master_key"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	KeyPrefix     string `yaml:"key_prefix"`
}

// ServerConfig configures the HTTP transport of the MCP server
type ServerConfig struct {
	Port           string   `yaml:"port"`
	ServerURL      string   `yaml:"server_url"`
	AuthToken      string   `yaml:"auth_token"`
	DisableAuth    bool     `yaml:"disable_auth"` // serve /mcp without a bearer token
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DebugConfig controls the API exchange log
type DebugConfig struct {
	Enabled     bool   `yaml:"enabled"`
	StorageType string `yaml:"storage_type"` // "memory" or "file"
	StoragePath string `yaml:"storage_path"`
	RetentionH  int    `yaml:"retention_hours"`
}

// Default returns a configuration that talks to a local backend and keeps
// credentials in memory.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   DefaultAPIBaseURL,
			Timeout:   DefaultAPITimeout,
			UserAgent: "hotel-mcp/1.0",
		},
		Tokens: TokenConfig{
			Backend:   "memory",
			Path:      "./data/credentials.db",
			KeyPrefix: "hotel",
		},
		Server: ServerConfig{
			Port: "8080",
		},
		Debug: DebugConfig{
			StorageType: "memory",
			StoragePath: "./data/debug.db",
			RetentionH:  24,
		},
	}
}

// Load resolves the configuration from every source and validates it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[CONFIG] Ignoring unreadable .env: %v", err)
	}

	cfg, err := LoadYAMLConfig(os.Getenv("HOTEL_CONFIG"), Default)
	if err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadYAMLConfig builds a config with fn and overlays the YAML file at path.
// A missing path or file is not an error; the defaults are returned.
func LoadYAMLConfig[T any](path string, fn func() *T) (*T, error) {
	cfg := fn()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.API.BaseURL = getEnvDefault("HOTEL_API_URL", getEnvDefault("VITE_API_URL", c.API.BaseURL))
	c.API.Timeout = getEnvDuration("HOTEL_API_TIMEOUT", c.API.Timeout)
	c.API.RateLimit = getEnvFloat("HOTEL_API_RATE_LIMIT", c.API.RateLimit)
	c.API.Burst = getEnvInt("HOTEL_API_BURST", c.API.Burst)
	c.API.UserAgent = getEnvDefault("HOTEL_API_USER_AGENT", c.API.UserAgent)

	c.Tokens.Backend = getEnvDefault("HOTEL_TOKEN_STORE", c.Tokens.Backend)
	if path := os.Getenv("TOKEN_DB_PATH"); path != "" {
		c.Tokens.Path = path
		if os.Getenv("HOTEL_TOKEN_STORE") == "" {
			c.Tokens.Backend = "sqlite"
		}
	}
	c.Tokens.MasterKey = getEnvDefault("HOTEL_MASTER_KEY", c.Tokens.MasterKey)
	c.Tokens.RedisAddr = getEnvDefault("REDIS_ADDR", c.Tokens.RedisAddr)
	c.Tokens.RedisPassword = getEnvDefault("REDIS_PASSWORD", c.Tokens.RedisPassword)
	c.Tokens.RedisDB = getEnvInt("REDIS_DB", c.Tokens.RedisDB)
	c.Tokens.KeyPrefix = getEnvDefault("HOTEL_TOKEN_PREFIX", c.Tokens.KeyPrefix)

	c.Server.Port = getEnvDefault("PORT", c.Server.Port)
	c.Server.ServerURL = getEnvDefault("SERVER_URL", c.Server.ServerURL)
	if c.Server.ServerURL == "" {
		c.Server.ServerURL = "http://localhost:" + c.Server.Port
	}
	c.Server.AuthToken = getEnvDefault("MCP_AUTH_TOKEN", c.Server.AuthToken)
	c.Server.DisableAuth = getEnvBool("DISABLE_AUTH", c.Server.DisableAuth)
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = append(c.Server.AllowedOrigins, strings.Split(origins, ",")...)
	}

	c.Debug.Enabled = getEnvBool("HOTEL_DEBUG", c.Debug.Enabled)
	c.Debug.StorageType = getEnvDefault("HOTEL_DEBUG_STORAGE", c.Debug.StorageType)
	c.Debug.StoragePath = getEnvDefault("HOTEL_DEBUG_PATH", c.Debug.StoragePath)
	c.Debug.RetentionH = getEnvInt("HOTEL_DEBUG_RETENTION_H", c.Debug.RetentionH)
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api base url %q is not an absolute URL", c.API.BaseURL))
	}
	if c.API.Timeout < 0 {
		errs = append(errs, fmt.Errorf("api timeout must not be negative"))
	}
	if c.API.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("api rate limit must not be negative"))
	}

	switch c.Tokens.Backend {
	case "memory":
	case "sqlite":
		if c.Tokens.Path == "" {
			errs = append(errs, fmt.Errorf("sqlite token store requires a path"))
		}
	case "redis":
		if c.Tokens.RedisAddr == "" {
			errs = append(errs, fmt.Errorf("redis token store requires REDIS_ADDR"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown token store backend %q", c.Tokens.Backend))
	}

	if c.Debug.Enabled && c.Debug.StorageType != "memory" && c.Debug.StorageType != "file" {
		errs = append(errs, fmt.Errorf("unsupported debug storage type %q", c.Debug.StorageType))
	}

	return errors.Join(errs...)
}

// Helper functions for environment variables
func getEnvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
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
