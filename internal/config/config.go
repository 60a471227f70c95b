// Package config loads server settings from a TOML file with per-environment
// sections, then applies environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Addr        string `toml:"addr"`
	WebDir      string `toml:"web_dir"`
	DatabaseURL string `toml:"database_url"`
	MealsFile   string `toml:"meals_file"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	// auth
	AuthDisabled      bool   `toml:"auth_disabled"`
	DefaultUserID     int64  `toml:"default_user_id"`
	ForwardAuthHeader string `toml:"forward_auth_header"`
	SessionHours      int    `toml:"session_hours"`
	OIDC              OIDC   `toml:"oidc"`
	// metrics
	MetricsNamespace string `toml:"metrics_namespace"`
}

type OIDC struct {
	Enabled      bool   `toml:"enabled"`
	Issuer       string `toml:"issuer"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURL  string `toml:"redirect_url"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "", "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Default returns settings that run the server in memory on :8080.
func Default() *Config {
	return &Config{
		Addr:              ":8080",
		WebDir:            "web",
		LogLevel:          "info",
		LogToStdout:       true,
		DefaultUserID:     1,
		ForwardAuthHeader: "Remote-User",
		SessionHours:      24,
		MetricsNamespace:  "mealtracker",
	}
}

// Load reads the env section of the file at path over Default, then applies
// environment overrides. An empty path skips the file.
func Load(path, env string) (*Config, error) {
	cfg := Default()
	if path != "" {
		t := Toml{Development: Default(), Production: Default()}
		if _, err := toml.DecodeFile(path, &t); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
		c, err := t.Get(env)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(c *Config) {
	c.Addr = env("ADDR", c.Addr)
	c.WebDir = env("WEB_DIR", c.WebDir)
	c.DatabaseURL = env("DATABASE_URL", c.DatabaseURL)
	c.MealsFile = env("MEALS_FILE", c.MealsFile)
	c.LogLevel = env("LOG_LEVEL", c.LogLevel)
	c.LogsPath = env("LOGS_PATH", c.LogsPath)
	c.LogToStdout = envBool("LOG_TO_STDOUT", c.LogToStdout)
	c.LogFormatJSON = envBool("LOG_FORMAT_JSON", c.LogFormatJSON)
	c.AuthDisabled = envBool("AUTH_DISABLED", c.AuthDisabled)
	c.ForwardAuthHeader = env("FORWARD_AUTH_HEADER", c.ForwardAuthHeader)

	c.OIDC.Issuer = env("OIDC_ISSUER", c.OIDC.Issuer)
	c.OIDC.ClientID = env("OIDC_CLIENT_ID", c.OIDC.ClientID)
	c.OIDC.ClientSecret = env("OIDC_CLIENT_SECRET", c.OIDC.ClientSecret)
	c.OIDC.RedirectURL = env("OIDC_REDIRECT_URL", c.OIDC.RedirectURL)
	if c.OIDC.Issuer != "" && c.OIDC.ClientID != "" {
		c.OIDC.Enabled = envBool("OIDC_ENABLED", true)
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
