package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/agentwatch/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "agentwatch",
	Short: "Terminal state monitor for AI coding agents",
	Long: `Agentwatch infers what an AI coding agent running in a terminal is
doing — working, waiting for permission, asking a question, erroring,
or finished — by polling its output and matching it against a catalog
of signal patterns. It emits typed events and detects task completion
with pluggable strategies.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/agentwatch/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/agentwatch")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("AGENTWATCH")
	// Replace dots with underscores for nested keys in env vars
	// e.g., AGENTWATCH_MONITOR_POLL_INTERVAL_MS for monitor.poll_interval_ms
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
