// Package config loads the CLI configuration from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Sternrassler/boutique-hotel-client/pkg/client"
	"github.com/Sternrassler/boutique-hotel-client/pkg/pagination"
	"github.com/Sternrassler/boutique-hotel-client/pkg/session"
)

// Config holds all configuration for the hotel CLI.
type Config struct {
	Environment    string
	APIURL         string
	UserAgent      string
	RedisURL       string
	TokenFile      string
	LogLevel       string
	LogPretty      bool
	PageSize       int
	MaxConcurrency int

	// EnvFileLoaded reports whether a .env file was read.
	EnvFileLoaded bool
}

// Load reads configuration from environment variables. Outside production it
// first loads the given .env files (".env" when none are named); variables
// already set in the environment win.
func Load(files ...string) (*Config, error) {
	env := os.Getenv("HOTEL_ENV")
	if env == "" {
		env = "development"
	}

	cfg := &Config{Environment: env}

	// A missing .env file is normal; the environment may carry everything.
	if env != "production" {
		if err := godotenv.Load(files...); err == nil {
			cfg.EnvFileLoaded = true
		}
	}

	cfg.APIURL = getenv("HOTEL_API_URL", client.DefaultBaseURL)
	cfg.UserAgent = getenv("HOTEL_USER_AGENT", client.DefaultUserAgent)
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.LogLevel = getenv("LOG_LEVEL", "info")
	cfg.PageSize = pagination.PositiveOr(os.Getenv("HOTEL_PAGE_SIZE"), pagination.DefaultPageSize)
	cfg.MaxConcurrency = pagination.PositiveOr(os.Getenv("HOTEL_MAX_CONCURRENCY"), 5)

	if raw := os.Getenv("LOG_PRETTY"); raw != "" {
		pretty, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("LOG_PRETTY: %w", err)
		}
		cfg.LogPretty = pretty
	}

	cfg.TokenFile = os.Getenv("HOTEL_TOKEN_FILE")
	if cfg.TokenFile == "" {
		path, err := session.DefaultTokenPath()
		if err != nil {
			return nil, err
		}
		cfg.TokenFile = path
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the API URL and Redis URL.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("HOTEL_API_URL must be an absolute http(s) url (got %q)", c.APIURL)
	}
	if c.RedisURL != "" {
		if _, err := redis.ParseURL(c.RedisURL); err != nil {
			return fmt.Errorf("REDIS_URL: %w", err)
		}
	}
	return nil
}

// RedisClient returns a client for RedisURL, or nil when Redis is not
// configured.
func (c *Config) RedisClient() (*redis.Client, error) {
	if c.RedisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(c.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("REDIS_URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

// ClientConfig builds the HTTP client configuration.
func (c *Config) ClientConfig(rdb *redis.Client) client.Config {
	cfg := client.DefaultConfig(c.APIURL, rdb)
	cfg.UserAgent = c.UserAgent
	cfg.MaxConcurrency = c.MaxConcurrency
	return cfg
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
