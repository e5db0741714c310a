// Package config handles configuration loading and management for vvlci.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// envKeyReplacer maps config keys like build.jobs to VVLCI_BUILD_JOBS.
var envKeyReplacer = strings.NewReplacer(".", "_")

// Config holds all configuration for vvlci.
type Config struct {
	Build   BuildConfig   `mapstructure:"build" yaml:"build"`
	Darwin  DarwinConfig  `mapstructure:"darwin" yaml:"darwin"`
	History HistoryConfig `mapstructure:"history" yaml:"history"`
}

// BuildConfig holds build invocation settings.
type BuildConfig struct {
	// Configuration is the default build variant when --configuration is not given.
	Configuration string `mapstructure:"configuration" yaml:"configuration"`
	// Dir is the build tree, relative to RepoRoot unless absolute.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// RepoRoot is the source tree to configure. Defaults to the current directory.
	RepoRoot string `mapstructure:"repo_root" yaml:"repo_root"`
	// Jobs is the parallelism passed to the build and check steps.
	Jobs int `mapstructure:"jobs" yaml:"jobs"`
}

// DarwinConfig holds macOS setup settings.
type DarwinConfig struct {
	// DeploymentTargetMin is the MACOSX_DEPLOYMENT_TARGET used for the
	// "min" target selector.
	DeploymentTargetMin string `mapstructure:"deployment_target_min" yaml:"deployment_target_min"`
}

// HistoryConfig holds run-history store settings.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (VVLCI_*)
// 2. Project config (.vvlci.yaml in current directory or parent)
// 3. User config (~/.config/vvlci/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Load project config if present
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			// Merge project config (takes precedence)
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	// Environment variable overrides: VVLCI_BUILD_JOBS, VVLCI_BUILD_DIR, ...
	v.SetEnvPrefix("VVLCI")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// BuildDir returns the build tree location, resolving Dir against
// RepoRoot when it is relative.
func (c *Config) BuildDir() string {
	if filepath.IsAbs(c.Build.Dir) {
		return c.Build.Dir
	}
	return filepath.Join(c.Build.RepoRoot, c.Build.Dir)
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("build.configuration", "Release")
	v.SetDefault("build.dir", "build")
	v.SetDefault("build.repo_root", ".")
	v.SetDefault("build.jobs", runtime.NumCPU())

	v.SetDefault("darwin.deployment_target_min", "10.15")

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "")
}

// getUserConfigDir returns the XDG config directory for vvlci.
func getUserConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "vvlci")
	}

	// Fall back to ~/.config/vvlci
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "vvlci")
	}
	return filepath.Join(home, ".config", "vvlci")
}

// findProjectConfig searches for .vvlci.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".vvlci.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Build: BuildConfig{
			Configuration: "Release",
			Dir:           "build",
			RepoRoot:      ".",
			Jobs:          runtime.NumCPU(),
		},
		Darwin: DarwinConfig{
			DeploymentTargetMin: "10.15",
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}
