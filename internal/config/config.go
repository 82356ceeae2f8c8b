// Package config defines the agentwatch configuration, loaded via viper from
// config.yaml plus AGENTWATCH_* environment overrides.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete agentwatch configuration
type Config struct {
	Monitor    MonitorConfig    `mapstructure:"monitor"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Completion CompletionConfig `mapstructure:"completion"`
	Capture    CaptureConfig    `mapstructure:"capture"`
	Patterns   PatternsConfig   `mapstructure:"patterns"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// MonitorConfig controls the polling event monitor
type MonitorConfig struct {
	// PollIntervalMs is how often to capture output (in milliseconds)
	PollIntervalMs int `mapstructure:"poll_interval_ms"`
	// CaptureLines is how many trailing lines each capture reads
	CaptureLines int `mapstructure:"capture_lines"`
	// SilenceThresholdMs is how long without output before a silence event (in milliseconds)
	SilenceThresholdMs int `mapstructure:"silence_threshold_ms"`
	// CaptureTimeoutMs bounds a single capture call (in milliseconds)
	CaptureTimeoutMs int `mapstructure:"capture_timeout_ms"`
	// HistoryLines is the rolling transcript capacity in lines
	HistoryLines int `mapstructure:"history_lines"`
	// TargetPattern is the discovery glob used when no target is given
	TargetPattern string `mapstructure:"target_pattern"`
}

// ClassifierConfig controls state classification
type ClassifierConfig struct {
	// WindowLines bounds how much trailing output is classified
	WindowLines int `mapstructure:"window_lines"`
	// MenuLines bounds menu-option extraction to the window's tail
	MenuLines int `mapstructure:"menu_lines"`
	// IdleLines bounds idle-marker matching to the window's tail
	IdleLines int `mapstructure:"idle_lines"`
	// MinConfidence is the floor confidence for unknown states
	MinConfidence float64 `mapstructure:"min_confidence"`
	// Confidence overrides per-category confidence assignments
	Confidence ConfidenceConfig `mapstructure:"confidence"`
}

// ConfidenceConfig holds per-category confidence overrides.
// Zero values fall back to the classifier defaults.
type ConfidenceConfig struct {
	Permission float64 `mapstructure:"permission"`
	Question   float64 `mapstructure:"question"`
	Error      float64 `mapstructure:"error"`
	ToolUse    float64 `mapstructure:"tool_use"`
	Working    float64 `mapstructure:"working"`
	Complete   float64 `mapstructure:"complete"`
	Idle       float64 `mapstructure:"idle"`
	IdleSoft   float64 `mapstructure:"idle_soft"`
}

// CompletionConfig controls completion detection
type CompletionConfig struct {
	// Strategy is the preset name, e.g. "default", "state", "silence-3s",
	// "aggressive-hybrid", "conservative-hybrid"
	Strategy string `mapstructure:"strategy"`
	// SignalChannel is the wait channel used by external-signal detection
	SignalChannel string `mapstructure:"signal_channel"`
	// SettleBufferMs is how long idle must hold before state detection trusts it (in milliseconds)
	SettleBufferMs int `mapstructure:"settle_buffer_ms"`
}

// CaptureConfig controls the tmux capture backend
type CaptureConfig struct {
	// Socket is the tmux socket name to capture from
	Socket string `mapstructure:"socket"`
}

// PatternsConfig controls the signal-pattern catalog
type PatternsConfig struct {
	// ExtensionsFile is an optional YAML file of user-defined patterns
	// appended to the built-in catalog
	ExtensionsFile string `mapstructure:"extensions_file"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// Dir is the log directory; empty logs to stderr
	Dir string `mapstructure:"dir"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Monitor: MonitorConfig{
			PollIntervalMs:     500,
			CaptureLines:       30,
			SilenceThresholdMs: 5000,
			CaptureTimeoutMs:   2000,
			HistoryLines:       500,
			TargetPattern:      "*",
		},
		Classifier: ClassifierConfig{
			WindowLines:   50,
			MenuLines:     15,
			IdleLines:     5,
			MinConfidence: 0.3,
		},
		Completion: CompletionConfig{
			Strategy:       "default",
			SignalChannel:  "agentwatch-done",
			SettleBufferMs: 2000,
		},
		Capture: CaptureConfig{
			Socket: "agentwatch",
		},
		Patterns: PatternsConfig{
			ExtensionsFile: "",
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
			Dir:     "",
		},
	}
}

// PollInterval returns the poll interval as a time.Duration
func (m *MonitorConfig) PollInterval() time.Duration {
	return time.Duration(m.PollIntervalMs) * time.Millisecond
}

// SilenceThreshold returns the silence threshold as a time.Duration
func (m *MonitorConfig) SilenceThreshold() time.Duration {
	return time.Duration(m.SilenceThresholdMs) * time.Millisecond
}

// CaptureTimeout returns the capture timeout as a time.Duration
func (m *MonitorConfig) CaptureTimeout() time.Duration {
	return time.Duration(m.CaptureTimeoutMs) * time.Millisecond
}

// SettleBuffer returns the settle buffer as a time.Duration
func (c *CompletionConfig) SettleBuffer() time.Duration {
	return time.Duration(c.SettleBufferMs) * time.Millisecond
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Monitor defaults
	viper.SetDefault("monitor.poll_interval_ms", defaults.Monitor.PollIntervalMs)
	viper.SetDefault("monitor.capture_lines", defaults.Monitor.CaptureLines)
	viper.SetDefault("monitor.silence_threshold_ms", defaults.Monitor.SilenceThresholdMs)
	viper.SetDefault("monitor.capture_timeout_ms", defaults.Monitor.CaptureTimeoutMs)
	viper.SetDefault("monitor.history_lines", defaults.Monitor.HistoryLines)
	viper.SetDefault("monitor.target_pattern", defaults.Monitor.TargetPattern)

	// Classifier defaults
	viper.SetDefault("classifier.window_lines", defaults.Classifier.WindowLines)
	viper.SetDefault("classifier.menu_lines", defaults.Classifier.MenuLines)
	viper.SetDefault("classifier.idle_lines", defaults.Classifier.IdleLines)
	viper.SetDefault("classifier.min_confidence", defaults.Classifier.MinConfidence)

	// Completion defaults
	viper.SetDefault("completion.strategy", defaults.Completion.Strategy)
	viper.SetDefault("completion.signal_channel", defaults.Completion.SignalChannel)
	viper.SetDefault("completion.settle_buffer_ms", defaults.Completion.SettleBufferMs)

	// Capture defaults
	viper.SetDefault("capture.socket", defaults.Capture.Socket)

	// Patterns defaults
	viper.SetDefault("patterns.extensions_file", defaults.Patterns.ExtensionsFile)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "agentwatch")
	}
	// Fall back to ~/.config/agentwatch
	home, err := os.UserHomeDir()
	if err != nil {
		return ".agentwatch"
	}
	return filepath.Join(home, ".config", "agentwatch")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
