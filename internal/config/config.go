// Package config loads dashboard settings from an optional .env file, an
// optional YAML file and the environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no config file is named explicitly.
const DefaultPath = "admin.yaml"

type Config struct {
	App   AppConfig   `yaml:"app"`
	Store StoreConfig `yaml:"store"`
	Cache CacheConfig `yaml:"cache"`
	Auth  AuthConfig  `yaml:"auth"`
	Log   LogConfig   `yaml:"log"`
}

type AppConfig struct {
	Port string `yaml:"port"`
	Env  string `yaml:"env"`
}

type StoreConfig struct {
	Driver string       `yaml:"driver"` // postgres, mysql, sqlite3 or sanity
	DSN    string       `yaml:"dsn"`
	Sanity SanityConfig `yaml:"sanity"`
}

type SanityConfig struct {
	ProjectID  string `yaml:"project_id"`
	Dataset    string `yaml:"dataset"`
	APIVersion string `yaml:"api_version"`
	Token      string `yaml:"token"`
	BaseURL    string `yaml:"base_url"`
}

type CacheConfig struct {
	RedisURL string        `yaml:"redis_url"` // empty disables caching
	TTL      time.Duration `yaml:"ttl"`
}

type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	AdminEmail    string        `yaml:"admin_email"`
	AdminPassword string        `yaml:"admin_password"`
	SecureCookie  bool          `yaml:"secure_cookie"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Load builds the configuration. A missing .env or YAML file is not an error
// unless path was given explicitly.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	setString(&c.App.Port, "APP_PORT")
	setString(&c.App.Env, "APP_ENV")

	setString(&c.Store.Driver, "STORE_DRIVER")
	setString(&c.Store.DSN, "DATABASE_URL")
	setString(&c.Store.Sanity.ProjectID, "SANITY_PROJECT_ID")
	setString(&c.Store.Sanity.Dataset, "SANITY_DATASET")
	setString(&c.Store.Sanity.APIVersion, "SANITY_API_VERSION")
	setString(&c.Store.Sanity.Token, "SANITY_API_TOKEN")
	setString(&c.Store.Sanity.BaseURL, "SANITY_BASE_URL")

	setString(&c.Cache.RedisURL, "REDIS_URL")
	setDuration(&c.Cache.TTL, "CACHE_TTL")

	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setDuration(&c.Auth.SessionTTL, "SESSION_TTL")
	setString(&c.Auth.AdminEmail, "ADMIN_EMAIL")
	setString(&c.Auth.AdminPassword, "ADMIN_PASSWORD")
	if v, err := strconv.ParseBool(os.Getenv("SECURE_COOKIE")); err == nil {
		c.Auth.SecureCookie = v
	}

	setString(&c.Log.Level, "LOG_LEVEL")
	if v, err := strconv.ParseBool(os.Getenv("LOG_DEVELOPMENT")); err == nil {
		c.Log.Development = v
	}
}

func (c *Config) applyDefaults() {
	if c.App.Port == "" {
		c.App.Port = "8080"
	}
	if c.App.Env == "" {
		c.App.Env = "development"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "sqlite3"
	}
	if c.Store.DSN == "" && c.Store.Driver == "sqlite3" {
		c.Store.DSN = "./admin.db?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	}
	if c.Store.Sanity.APIVersion == "" {
		c.Store.Sanity.APIVersion = "2025-02-03"
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = 2 * time.Minute
	}
	if c.Auth.SessionTTL <= 0 {
		c.Auth.SessionTTL = 24 * time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	errs := c.storeErrors()
	if len(c.Auth.JWTSecret) < 16 {
		errs = append(errs, errors.New("auth.jwt_secret (JWT_SECRET) must be at least 16 characters"))
	}
	return errors.Join(errs...)
}

// ValidateStore checks only what is needed to reach the document store, for
// commands that never issue sessions.
func (c *Config) ValidateStore() error {
	return errors.Join(c.storeErrors()...)
}

func (c *Config) storeErrors() []error {
	var errs []error
	switch c.Store.Driver {
	case "postgres", "mysql":
		if c.Store.DSN == "" {
			errs = append(errs, fmt.Errorf("store.dsn (DATABASE_URL) is required for %s", c.Store.Driver))
		}
	case "sqlite3":
	case "sanity":
		if c.Store.Sanity.ProjectID == "" {
			errs = append(errs, errors.New("store.sanity.project_id (SANITY_PROJECT_ID) is required"))
		}
		if c.Store.Sanity.Dataset == "" {
			errs = append(errs, errors.New("store.sanity.dataset (SANITY_DATASET) is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.driver %q", c.Store.Driver))
	}
	return errs
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, env string) {
	if v := os.Getenv(env); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
