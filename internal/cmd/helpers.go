package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/agentwatch/internal/classify"
	"github.com/Iron-Ham/agentwatch/internal/config"
	"github.com/Iron-Ham/agentwatch/internal/logging"
	"github.com/Iron-Ham/agentwatch/internal/monitor"
	"github.com/Iron-Ham/agentwatch/internal/pattern"
)

// State colors for terminal output.
var stateStyles = map[classify.StateType]lipgloss.Style{
	classify.StateWorking:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")), // blue
	classify.StateToolUse:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")), // cyan
	classify.StatePermission: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
	classify.StateQuestion:   lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
	classify.StateError:      lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	classify.StateComplete:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	classify.StateIdle:       lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	classify.StateUnknown:    lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
}

var dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

func styleState(t classify.StateType) string {
	if style, ok := stateStyles[t]; ok {
		return style.Render(string(t))
	}
	return string(t)
}

// buildClassifierConfig converts the file configuration into classifier
// settings, loading pattern extensions when configured.
func buildClassifierConfig(cfg *config.Config) (classify.Config, error) {
	cc := classify.DefaultConfig()
	cc.WindowLines = cfg.Classifier.WindowLines
	cc.MenuLines = cfg.Classifier.MenuLines
	cc.IdleLines = cfg.Classifier.IdleLines
	cc.MinConfidence = cfg.Classifier.MinConfidence

	conf := &cc.Confidence
	overrides := cfg.Classifier.Confidence
	for _, o := range []struct {
		dst *float64
		val float64
	}{
		{&conf.Permission, overrides.Permission},
		{&conf.Question, overrides.Question},
		{&conf.Error, overrides.Error},
		{&conf.ToolUse, overrides.ToolUse},
		{&conf.Working, overrides.Working},
		{&conf.Complete, overrides.Complete},
		{&conf.Idle, overrides.Idle},
		{&conf.IdleSoft, overrides.IdleSoft},
	} {
		if o.val > 0 {
			*o.dst = o.val
		}
	}

	if cfg.Patterns.ExtensionsFile != "" {
		catalog, err := pattern.LoadExtensions(cfg.Patterns.ExtensionsFile)
		if err != nil {
			return cc, fmt.Errorf("failed to load pattern extensions: %w", err)
		}
		cc.Catalog = catalog
	}
	return cc, nil
}

// buildMonitorConfig converts the file configuration into monitor settings.
func buildMonitorConfig(cfg *config.Config) (monitor.Config, error) {
	cc, err := buildClassifierConfig(cfg)
	if err != nil {
		return monitor.Config{}, err
	}
	return monitor.Config{
		PollInterval:     cfg.Monitor.PollInterval(),
		CaptureLines:     cfg.Monitor.CaptureLines,
		SilenceThreshold: cfg.Monitor.SilenceThreshold(),
		CaptureTimeout:   cfg.Monitor.CaptureTimeout(),
		HistoryLines:     cfg.Monitor.HistoryLines,
		TargetPattern:    cfg.Monitor.TargetPattern,
		Classifier:       cc,
	}, nil
}

// buildLogger creates the logger configured in the file configuration.
func buildLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.Nop(), nil
	}
	return logging.New(cfg.Logging.Dir, cfg.Logging.Level)
}
