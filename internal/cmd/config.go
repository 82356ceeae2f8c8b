package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/agentwatch/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify agentwatch configuration",
	Long: `View or modify agentwatch configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  agentwatch config set monitor.poll_interval_ms 250
  agentwatch config set completion.strategy conservative-hybrid
  agentwatch config set logging.level debug

Valid keys:
  monitor.poll_interval_ms      - Output poll interval in milliseconds
  monitor.capture_lines         - Trailing lines captured per poll
  monitor.silence_threshold_ms  - Silence before a silence event, in milliseconds
  monitor.capture_timeout_ms    - Per-capture timeout in milliseconds
  monitor.history_lines         - Rolling transcript capacity in lines
  monitor.target_pattern        - Discovery glob for unnamed targets
  classifier.window_lines       - Classification window in lines
  classifier.menu_lines         - Menu extraction window in lines
  classifier.idle_lines         - Idle matching window in lines
  completion.strategy           - Completion strategy preset
  completion.signal_channel     - External signal channel name
  completion.settle_buffer_ms   - Idle settle buffer in milliseconds
  capture.socket                - tmux socket name
  patterns.extensions_file      - Pattern extension YAML path
  logging.enabled               - Enable logging (true/false)
  logging.level                 - Log level (debug, info, warn, error)
  logging.dir                   - Log directory (empty for stderr)`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/agentwatch/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	fmt.Println("Current configuration:")
	fmt.Println()

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Printf("Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Printf("Config file: (none - using defaults)\n")
	}
	fmt.Println()

	fmt.Println("monitor:")
	fmt.Printf("  poll_interval_ms: %d\n", cfg.Monitor.PollIntervalMs)
	fmt.Printf("  capture_lines: %d\n", cfg.Monitor.CaptureLines)
	fmt.Printf("  silence_threshold_ms: %d\n", cfg.Monitor.SilenceThresholdMs)
	fmt.Printf("  capture_timeout_ms: %d\n", cfg.Monitor.CaptureTimeoutMs)
	fmt.Printf("  history_lines: %d\n", cfg.Monitor.HistoryLines)
	fmt.Printf("  target_pattern: %s\n", cfg.Monitor.TargetPattern)

	fmt.Println("classifier:")
	fmt.Printf("  window_lines: %d\n", cfg.Classifier.WindowLines)
	fmt.Printf("  menu_lines: %d\n", cfg.Classifier.MenuLines)
	fmt.Printf("  idle_lines: %d\n", cfg.Classifier.IdleLines)
	fmt.Printf("  min_confidence: %.2f\n", cfg.Classifier.MinConfidence)

	fmt.Println("completion:")
	fmt.Printf("  strategy: %s\n", cfg.Completion.Strategy)
	fmt.Printf("  signal_channel: %s\n", cfg.Completion.SignalChannel)
	fmt.Printf("  settle_buffer_ms: %d\n", cfg.Completion.SettleBufferMs)

	fmt.Println("capture:")
	fmt.Printf("  socket: %s\n", cfg.Capture.Socket)

	fmt.Println("patterns:")
	fmt.Printf("  extensions_file: %s\n", cfg.Patterns.ExtensionsFile)

	fmt.Println("logging:")
	fmt.Printf("  enabled: %v\n", cfg.Logging.Enabled)
	fmt.Printf("  level: %s\n", cfg.Logging.Level)
	fmt.Printf("  dir: %s\n", cfg.Logging.Dir)

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	// Validate the key exists
	validKeys := map[string]string{
		"monitor.poll_interval_ms":     "int",
		"monitor.capture_lines":        "int",
		"monitor.silence_threshold_ms": "int",
		"monitor.capture_timeout_ms":   "int",
		"monitor.history_lines":        "int",
		"monitor.target_pattern":       "string",
		"classifier.window_lines":      "int",
		"classifier.menu_lines":        "int",
		"classifier.idle_lines":        "int",
		"completion.strategy":          "string",
		"completion.signal_channel":    "string",
		"completion.settle_buffer_ms":  "int",
		"capture.socket":               "string",
		"patterns.extensions_file":     "string",
		"logging.enabled":              "bool",
		"logging.level":                "string",
		"logging.dir":                  "string",
	}

	keyType, ok := validKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s\nRun 'agentwatch config set --help' to see valid keys", key)
	}

	// Validate the value based on type
	var typedValue interface{}
	switch keyType {
	case "string":
		typedValue = value
	case "bool":
		if value != "true" && value != "false" {
			return fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		typedValue = value == "true"
	case "int":
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if intVal < 0 {
			return fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		typedValue = intVal
	}

	// Ensure config directory exists
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set the value in viper
	viper.Set(key, typedValue)

	// Write to config file
	configFile := config.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Set %s = %v\n", key, typedValue)
	fmt.Printf("Config saved to %s\n", configFile)

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'agentwatch config set' to modify values", configFile)
	}

	// Create config directory
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Generate a commented config file
	configContent := `# Agentwatch Configuration
# See: https://github.com/Iron-Ham/agentwatch

# Monitor settings
monitor:
  # How often to capture output, in milliseconds
  poll_interval_ms: 500
  # Trailing lines captured per poll
  capture_lines: 30
  # How long without new output before a silence event, in milliseconds
  silence_threshold_ms: 5000
  # Per-capture timeout, in milliseconds
  capture_timeout_ms: 2000
  # Rolling transcript capacity, in lines
  history_lines: 500
  # Discovery glob used when no target is given
  target_pattern: "*"

# Classifier settings
classifier:
  # How much trailing output to classify, in lines
  window_lines: 50
  # Menu-option extraction window, in lines
  menu_lines: 15
  # Idle-marker matching window, in lines
  idle_lines: 5
  # Floor confidence for unknown states
  min_confidence: 0.3

# Completion detection settings
completion:
  # Strategy preset: default, state, silence-<N>s, silence-<N>ms,
  # aggressive-hybrid, conservative-hybrid
  strategy: default
  # Channel name for external-signal completion (tmux wait-for)
  signal_channel: agentwatch-done
  # How long idle must hold before state detection trusts it, in milliseconds
  settle_buffer_ms: 2000

# Capture backend settings
capture:
  # tmux socket to capture from
  socket: agentwatch

# Signal pattern settings
patterns:
  # Optional YAML file of user-defined patterns appended to the catalog
  extensions_file: ""

# Logging settings
logging:
  enabled: true
  # Log level: debug, info, warn, error
  level: info
  # Log directory; empty logs to stderr
  dir: ""
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created config file at %s\n", configFile)
	fmt.Println("Edit this file to customize agentwatch's behavior.")

	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	configFile := config.ConfigFile()

	if viper.ConfigFileUsed() != "" {
		fmt.Printf("Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Printf("Default path: %s (not created)\n", configFile)
	}

	// Also show config search paths
	fmt.Println("\nSearch paths:")
	fmt.Printf("  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Printf("  2. $HOME/.config/agentwatch/config.yaml\n")
	fmt.Printf("  3. ./config.yaml (current directory)\n")
	fmt.Println("\nEnvironment variables: AGENTWATCH_* (e.g., AGENTWATCH_MONITOR_POLL_INTERVAL_MS)")

	return nil
}
