// Package config loads kanjiclaw configuration from the environment and an
// optional JSON file in the user's home directory.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Placeholder value shipped in example configs; treated the same as no key.
const placeholderKey = "YOUR_RAPIDAPI_KEY_HERE"

// Defaults for the Kanji Alive API on RapidAPI.
const (
	DefaultBaseURL = "https://kanjialive-api.p.rapidapi.com/api/public"
	DefaultHost    = "kanjialive-api.p.rapidapi.com"
	DefaultTimeout = 30 * time.Second
)

// Config represents the merged kanjiclaw configuration
type Config struct {
	API APIConfig `json:"api"`
	Log LogConfig `json:"log"`
}

// APIConfig holds the upstream Kanji Alive API settings.
type APIConfig struct {
	// Key is never read from the config file, only from RAPIDAPI_KEY.
	Key     string `json:"-"`
	BaseURL string `json:"baseUrl"`
	Host    string `json:"host"`
	// Timeout is the per-request timeout, e.g. "30s".
	Timeout string `json:"timeout"`
}

type LogConfig struct {
	Level string `json:"level"`
}

// RequestTimeout parses the configured timeout, falling back to the default.
func (a APIConfig) RequestTimeout() time.Duration {
	if a.Timeout == "" {
		return DefaultTimeout
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

// Load reads configuration from ~/.kanjiclaw/kanjiclaw.json (if present) and
// the RAPIDAPI_KEY environment variable. A missing or placeholder API key is
// a configuration error: the server must not start without a credential.
func Load() (*Config, error) {
	cfg := &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Host:    DefaultHost,
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	home, _ := os.UserHomeDir()
	path := filepath.Join(home, ".kanjiclaw", "kanjiclaw.json")

	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	key := os.Getenv("RAPIDAPI_KEY")
	if key == "" || key == placeholderKey {
		return nil, fmt.Errorf(
			"RAPIDAPI_KEY environment variable must be set. " +
				"Get your free API key at: " +
				"https://rapidapi.com/KanjiAlive/api/learn-to-read-and-write-japanese-kanji")
	}
	cfg.API.Key = key

	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	if cfg.API.Host == "" {
		cfg.API.Host = DefaultHost
	}

	return cfg, nil
}
