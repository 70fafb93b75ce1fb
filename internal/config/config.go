// Package config loads scrappy settings from ~/.scrappy/config.json, environment
// variables prefixed SCRAPPY_ and named profiles within the file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Digital-Shane/scrappy/internal/format"
	"github.com/spf13/viper"
)

// Config holds every setting a rename session reads.
type Config struct {
	Provider string `json:"provider" mapstructure:"provider"`
	Language string `json:"language" mapstructure:"language"`

	// Confidence is the series confidence a filename guess must exceed.
	Confidence float64 `json:"confidence" mapstructure:"confidence"`
	// Threshold is the largest name difference accepted automatically. Zero asks
	// the user when a terminal is attached.
	Threshold float64 `json:"threshold" mapstructure:"threshold"`
	Precision int     `json:"precision" mapstructure:"precision"`
	Recursive bool    `json:"recursive" mapstructure:"recursive"`

	EpisodeFormat string `json:"episode_format" mapstructure:"episode_format"`

	TMDBAPIKey string `json:"tmdb_api_key" mapstructure:"tmdb_api_key"`
	TVDBAPIKey string `json:"tvdb_api_key" mapstructure:"tvdb_api_key"`

	CacheEnabled bool `json:"cache_enabled" mapstructure:"cache_enabled"`
	CacheHours   int  `json:"cache_hours" mapstructure:"cache_hours"`

	EnableLogging    bool   `json:"enable_logging" mapstructure:"enable_logging"`
	LogRetentionDays int    `json:"log_retention_days" mapstructure:"log_retention_days"`
	LogLevel         string `json:"log_level" mapstructure:"log_level"`

	// Profiles maps a profile name to the settings it overrides.
	Profiles map[string]map[string]interface{} `json:"profiles,omitempty" mapstructure:"profiles"`
}

// Built in profiles, used when the file does not define them.
var builtinProfiles = map[string]map[string]interface{}{
	"default": {},
	"auto":    {"threshold": 0.3},
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Provider:         "tmdb",
		Language:         "en",
		Confidence:       0,
		Threshold:        0,
		Precision:        2,
		Recursive:        false,
		EpisodeFormat:    format.DefaultTemplate,
		CacheEnabled:     true,
		CacheHours:       24,
		EnableLogging:    true,
		LogRetentionDays: 30,
		LogLevel:         "info",
	}
}

// Dir returns ~/.scrappy, the directory holding config, cache and logs.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".scrappy"), nil
}

// ConfigPath returns the path to the config file
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LogDir returns the directory rename sessions are journaled to.
func LogDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs"), nil
}

// CachePath returns the response cache file of a provider.
func CachePath(providerName string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache", providerName+".gob"), nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("provider", d.Provider)
	v.SetDefault("language", d.Language)
	v.SetDefault("confidence", d.Confidence)
	v.SetDefault("threshold", d.Threshold)
	v.SetDefault("precision", d.Precision)
	v.SetDefault("recursive", d.Recursive)
	v.SetDefault("episode_format", d.EpisodeFormat)
	v.SetDefault("tmdb_api_key", d.TMDBAPIKey)
	v.SetDefault("tvdb_api_key", d.TVDBAPIKey)
	v.SetDefault("cache_enabled", d.CacheEnabled)
	v.SetDefault("cache_hours", d.CacheHours)
	v.SetDefault("enable_logging", d.EnableLogging)
	v.SetDefault("log_retention_days", d.LogRetentionDays)
	v.SetDefault("log_level", d.LogLevel)
}

// Load reads the config file at path (ConfigPath when empty), applies SCRAPPY_*
// environment overrides and then the named profile. A missing file yields the
// defaults.
func Load(path, profile string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = ConfigPath(); err != nil {
			return nil, err
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix("SCRAPPY")
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := applyProfile(v, profile); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyProfile(v *viper.Viper, profile string) error {
	profile = strings.ToLower(strings.TrimSpace(profile))
	if profile == "" {
		return nil
	}

	var overrides map[string]interface{}
	if sub := v.Sub("profiles." + profile); sub != nil {
		overrides = make(map[string]interface{})
		for _, key := range sub.AllKeys() {
			overrides[key] = sub.Get(key)
		}
	} else if builtin, ok := builtinProfiles[profile]; ok {
		overrides = builtin
	} else {
		return fmt.Errorf("unknown profile %q", profile)
	}

	for key, value := range overrides {
		v.Set(key, value)
	}
	return nil
}

// Validate checks ranges and the episode template.
func (cfg *Config) Validate() error {
	switch cfg.Provider {
	case "tmdb", "tvdb":
	default:
		return fmt.Errorf("unknown provider %q (want tmdb or tvdb)", cfg.Provider)
	}
	if cfg.Confidence < 0 || cfg.Confidence > 1 {
		return fmt.Errorf("confidence %.2f out of range [0,1]", cfg.Confidence)
	}
	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		return fmt.Errorf("threshold %.2f out of range [0,1]", cfg.Threshold)
	}
	if cfg.Precision < 0 {
		return fmt.Errorf("precision must not be negative")
	}
	if cfg.CacheHours < 0 {
		return fmt.Errorf("cache_hours must not be negative")
	}
	if cfg.EpisodeFormat != "" {
		if err := format.Validate(cfg.EpisodeFormat); err != nil {
			return fmt.Errorf("episode_format: %w", err)
		}
	}
	return nil
}

// ProfileNames lists the profiles available to Load, sorted.
func (cfg *Config) ProfileNames() []string {
	seen := make(map[string]bool)
	for name := range builtinProfiles {
		seen[name] = true
	}
	for name := range cfg.Profiles {
		seen[strings.ToLower(name)] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// APIKey returns the key configured for providerName.
func (cfg *Config) APIKey(providerName string) string {
	switch providerName {
	case "tmdb":
		return cfg.TMDBAPIKey
	case "tvdb":
		return cfg.TVDBAPIKey
	}
	return ""
}

// Save writes the configuration to path, ConfigPath when empty.
func (cfg *Config) Save(path string) error {
	if path == "" {
		var err error
		if path, err = ConfigPath(); err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
