// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config handles loading and saving chatbot-tui configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/Goutam-aswani/chatbot-tui/internal/util"
)

// Config file locations, resolved under the user's home directory.
const (
	// ConfigDirName is the directory under $HOME holding all app state.
	ConfigDirName = ".chatbot-tui"

	// ConfigFileTOML is the preferred config file name.
	ConfigFileTOML = "config.toml"

	// ConfigFileJSON is the legacy config file name, still read.
	ConfigFileJSON = "config.json"
)

// envPrefix is the prefix for environment variable overrides.
const envPrefix = "CHATBOT_"

// =============================================================================
// CONFIG STRUCTURE
// =============================================================================

// Config is the complete application configuration.
type Config struct {
	Server ServerConfig `toml:"server" json:"server"`
	Chat   ChatConfig   `toml:"chat" json:"chat"`
	Typing TypingConfig `toml:"typing" json:"typing"`
	UI     UIConfig     `toml:"ui" json:"ui"`
}

// ServerConfig holds backend connection settings.
type ServerConfig struct {
	// BaseURL is the backend root, e.g. "http://localhost:8000".
	BaseURL string `toml:"base_url" json:"base_url"`

	// Token is the bearer token for all requests. Treated as opaque.
	// SECURITY: Saved config files are written with 0600 permissions.
	Token string `toml:"token" json:"token"`

	// RequestTimeoutSecs bounds non-streaming requests. The chat stream
	// itself has no timeout.
	RequestTimeoutSecs int `toml:"request_timeout_secs" json:"request_timeout_secs"`
}

// ChatConfig holds per-turn request defaults.
type ChatConfig struct {
	// Model is the backend model name sent with each turn.
	Model string `toml:"model" json:"model"`

	// UseWebSearch asks the backend to ground responses in web search.
	UseWebSearch bool `toml:"use_web_search" json:"use_web_search"`
}

// TypingConfig controls the paced reveal of responses.
type TypingConfig struct {
	// TickMs is the reveal cadence in milliseconds.
	TickMs int `toml:"tick_ms" json:"tick_ms"`

	// RunesPerTick is how many characters are revealed per tick.
	RunesPerTick int `toml:"runes_per_tick" json:"runes_per_tick"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	// Theme selects the color theme ("dark", "light", or "auto").
	Theme string `toml:"theme" json:"theme"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:            "http://localhost:8000",
			RequestTimeoutSecs: 30,
		},
		Chat: ChatConfig{
			Model: "gemini-2.0-flash",
		},
		Typing: TypingConfig{
			TickMs:       33,
			RunesPerTick: 4,
		},
		UI: UIConfig{
			Theme: "auto",
		},
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Dir returns the configuration directory, creating nothing.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ConfigDirName), nil
}

// Path returns the preferred (TOML) config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileTOML), nil
}

// Load reads the configuration: TOML first, then legacy JSON, then
// defaults for anything missing, then environment overrides, then
// validation. A missing file is not an error.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(dir)
}

// LoadFrom is Load with an explicit directory, used by tests.
func LoadFrom(dir string) (*Config, error) {
	cfg := Default()

	tomlPath := filepath.Join(dir, ConfigFileTOML)
	jsonPath := filepath.Join(dir, ConfigFileJSON)

	switch {
	case fileExists(tomlPath):
		if _, err := toml.DecodeFile(tomlPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", tomlPath, err)
		}
	case fileExists(jsonPath):
		data, err := os.ReadFile(jsonPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", jsonPath, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", jsonPath, err)
		}
	}

	cfg.fillDefaults()
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillDefaults replaces zero values left by a partial config file.
func (c *Config) fillDefaults() {
	def := Default()
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = def.Server.BaseURL
	}
	if c.Server.RequestTimeoutSecs <= 0 {
		c.Server.RequestTimeoutSecs = def.Server.RequestTimeoutSecs
	}
	if c.Chat.Model == "" {
		c.Chat.Model = def.Chat.Model
	}
	if c.Typing.TickMs <= 0 {
		c.Typing.TickMs = def.Typing.TickMs
	}
	if c.Typing.RunesPerTick <= 0 {
		c.Typing.RunesPerTick = def.Typing.RunesPerTick
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
}

// ApplyEnvOverrides applies CHATBOT_* environment variables on top of the
// loaded values. Environment wins over file contents.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv(envPrefix + "SERVER_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv(envPrefix + "TOKEN"); v != "" {
		c.Server.Token = v
	}
	if v := os.Getenv(envPrefix + "MODEL"); v != "" {
		c.Chat.Model = v
	}
	if v := os.Getenv(envPrefix + "USE_WEB_SEARCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Chat.UseWebSearch = b
		}
	}
	if v := os.Getenv(envPrefix + "THEME"); v != "" {
		c.UI.Theme = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes one invalid config field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	var errs []error

	if !strings.HasPrefix(c.Server.BaseURL, "http://") &&
		!strings.HasPrefix(c.Server.BaseURL, "https://") {
		errs = append(errs, &ValidationError{
			Field:   "server.base_url",
			Message: "must start with http:// or https://",
		})
	}
	if c.Typing.TickMs < 10 || c.Typing.TickMs > 1000 {
		errs = append(errs, &ValidationError{
			Field:   "typing.tick_ms",
			Message: "must be between 10 and 1000",
		})
	}
	if c.Typing.RunesPerTick > 256 {
		errs = append(errs, &ValidationError{
			Field:   "typing.runes_per_tick",
			Message: "must be at most 256",
		})
	}
	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		errs = append(errs, &ValidationError{
			Field:   "ui.theme",
			Message: "must be dark, light, or auto",
		})
	}

	return errors.Join(errs...)
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration as TOML.
// SECURITY: The file carries the bearer token, so it is written 0600 in a
// 0700 directory.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo is Save with an explicit path, used by tests.
func (c *Config) SaveTo(path string) error {
	var sb strings.Builder
	sb.WriteString("# chatbot-tui configuration\n")
	sb.WriteString("# Generated " + time.Now().Format("2006-01-02 15:04:05") + "\n\n")

	enc := toml.NewEncoder(&sb)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFileWithDir(path, []byte(sb.String()), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// RequestTimeout returns the REST request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSecs) * time.Second
}

// TickInterval returns the typing reveal cadence as a duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Typing.TickMs) * time.Millisecond
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
