// Package config handles configuration loading for AgentCrew. It supports
// XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for AgentCrew.
type Config struct {
	Backend    string           `mapstructure:"backend"`
	Anthropic  AnthropicConfig  `mapstructure:"anthropic"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Memory     MemoryConfig     `mapstructure:"memory"`
	Evaluation EvaluationConfig `mapstructure:"evaluation"`
	Storage    StorageConfig    `mapstructure:"storage"`
}

// AnthropicConfig holds Anthropic backend settings.
type AnthropicConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	MaxTokens int64  `mapstructure:"max_tokens"`
}

// OpenAIConfig holds OpenAI backend settings.
type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MemoryConfig holds conversation memory settings.
type MemoryConfig struct {
	MaxMessages int `mapstructure:"max_messages"`
}

// EvaluationConfig holds competency assessment settings.
type EvaluationConfig struct {
	MaxQuestions int `mapstructure:"max_questions"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	// DatabasePath enables SQLite session persistence when non-empty.
	DatabasePath string `mapstructure:"database_path"`
	// DeliverableDir enables file-backed deliverable storage when non-empty.
	DeliverableDir string `mapstructure:"deliverable_dir"`
}

// Load loads configuration with the following precedence (highest first):
// environment variables (AGENTCREW_*, ANTHROPIC_API_KEY, OPENAI_API_KEY),
// project config (.agentcrew.yaml in the current directory or a parent),
// user config (~/.config/agentcrew/config.yaml), built-in defaults.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("AGENTCREW")
	v.AutomaticEnv()
	v.BindEnv("backend", "AGENTCREW_BACKEND")
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("openai.api_key", "OPENAI_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references in secrets.
	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)
	cfg.OpenAI.APIKey = os.ExpandEnv(cfg.OpenAI.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific file (for testing).
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

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)
	cfg.OpenAI.APIKey = os.ExpandEnv(cfg.OpenAI.APIKey)

	return cfg, nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", "anthropic")

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.max_tokens", 4096)

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("memory.max_messages", 20)

	v.SetDefault("evaluation.max_questions", 7)

	v.SetDefault("storage.database_path", "")
	v.SetDefault("storage.deliverable_dir", "")
}

// getUserConfigDir returns the XDG config directory for AgentCrew.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "agentcrew")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "agentcrew")
	}
	return filepath.Join(home, ".config", "agentcrew")
}

// findProjectConfig searches for .agentcrew.yaml in the current directory
// and its parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".agentcrew.yaml")
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
