// Package config layers the CLI's settings: hardcoded defaults, then an
// optional YAML file, then CHAT_-prefixed environment variables, then
// command-line flags. Later layers win.
package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

type Config struct {
	Model        string `koanf:"model"`
	BaseURL      string `koanf:"base_url"`
	LogLevel     string `koanf:"log_level"`
	WebSearch    bool   `koanf:"web_search"`
	HistoryLimit int    `koanf:"history_limit"`

	// APIKey comes from the environment only; it never lives in the
	// config file.
	APIKey string `koanf:"-"`
}

const (
	DefaultModel        = "gpt-5"
	DefaultBaseURL      = "https://api.openai.com/v1"
	DefaultLogLevel     = "warn"
	DefaultWebSearch    = true
	DefaultHistoryLimit = 100

	envPrefix = "CHAT_"
)

// ErrMissingAPIKey is returned when OPENAI_API_KEY is unset.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set")

// Load builds the effective configuration. cmd may be nil in tests; if
// it carries a --config flag that path replaces the default config
// file location (~/.chat-cli/config.yaml).
func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]any{
		"model":         DefaultModel,
		"base_url":      DefaultBaseURL,
		"log_level":     DefaultLogLevel,
		"web_search":    DefaultWebSearch,
		"history_limit": DefaultHistoryLimit,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	configPath := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("config"); flag != nil {
			configPath = strings.TrimSpace(flag.Value.String())
		}
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, err
		}
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			globalPath := filepath.Join(home, ".chat-cli", "config.yaml")
			if err := k.Load(file.Provider(globalPath), yaml.Parser()); err != nil {
				slog.Debug("Global config not found or invalid", "path", globalPath, "error", err)
			}
		}
	}

	// Keys are flat, so CHAT_BASE_URL maps straight to base_url.
	k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)

	if cmd != nil {
		k.Load(posflag.Provider(cmd.Flags(), ".", k), nil)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	return &cfg, nil
}
