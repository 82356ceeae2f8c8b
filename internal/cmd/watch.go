package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/agentwatch/internal/capture"
	"github.com/Iron-Ham/agentwatch/internal/completion"
	"github.com/Iron-Ham/agentwatch/internal/config"
	"github.com/Iron-Ham/agentwatch/internal/event"
	"github.com/Iron-Ham/agentwatch/internal/monitor"
	"github.com/Iron-Ham/agentwatch/internal/planwatch"
)

var (
	watchStrategy string
	watchTimeout  time.Duration
	watchSocket   string
	watchPlanFile string
	watchQuiet    bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [target]",
	Short: "Monitor a tmux target and report agent state",
	Long: `Watch polls a tmux session's output, prints state changes and prompts
as they happen, and exits when the completion strategy concludes the
agent's task is done (or the timeout elapses).

Without a target, the first session matching monitor.target_pattern on
the configured socket is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchStrategy, "strategy", "s", "", "completion strategy preset (default, state, silence-<N>s, aggressive-hybrid, conservative-hybrid)")
	watchCmd.Flags().DurationVarP(&watchTimeout, "timeout", "t", 0, "overall detection budget (0 uses the strategy's own budget)")
	watchCmd.Flags().StringVar(&watchSocket, "socket", "", "tmux socket name (default from config)")
	watchCmd.Flags().StringVar(&watchPlanFile, "plan-file", "", "plan file to watch for rewrites")
	watchCmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false, "only print the final result")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	logger, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	mcfg, err := buildMonitorConfig(cfg)
	if err != nil {
		return err
	}

	socket := watchSocket
	if socket == "" {
		socket = cfg.Capture.Socket
	}
	provider := capture.NewTmuxProviderWithSocket(socket)

	target := ""
	if len(args) == 1 {
		target = args[0]
	}

	mon := monitor.New(provider, target, mcfg, logger)
	if !watchQuiet {
		mon.SubscribeAll(printEvent)
	}

	if err := mon.Start(); err != nil {
		return err
	}
	defer mon.Stop()

	if watchPlanFile != "" {
		pw := planwatch.New(watchPlanFile, func(path string) {
			if !watchQuiet {
				fmt.Printf("%s plan rewritten: %s\n", dimStyle.Render(stamp()), path)
			}
		}, logger)
		if err := pw.Start(); err != nil {
			return err
		}
		defer pw.Stop()
	}

	strategyName := watchStrategy
	if strategyName == "" {
		strategyName = cfg.Completion.Strategy
	}
	strategy, err := buildStrategy(strategyName, cfg, provider)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	timeout := watchTimeout
	if timeout <= 0 {
		// Strategies interpret a huge budget as "use your own"; hybrids cap it
		// with their configured total.
		timeout = 24 * time.Hour
	}

	res := strategy.Detect(ctx, mon, timeout)

	fmt.Printf("complete: %v\n", res.Complete)
	fmt.Printf("method:   %s\n", res.Method)
	fmt.Printf("reason:   %s\n", res.Reason)
	fmt.Printf("latency:  %s\n", res.Latency.Round(time.Millisecond))
	fmt.Printf("state:    %s (%.2f)\n", styleState(res.State.Type), res.State.Confidence)

	if !res.Complete && ctx.Err() == nil {
		return fmt.Errorf("completion not detected within budget")
	}
	return nil
}

// buildStrategy resolves the configured strategy, wiring the external-signal
// channel through the capture provider.
func buildStrategy(name string, cfg *config.Config, provider capture.Provider) (completion.Strategy, error) {
	if name == "signal" || strings.HasPrefix(name, "signal-") {
		channel := strings.TrimPrefix(name, "signal-")
		if channel == "" || channel == "signal" {
			channel = cfg.Completion.SignalChannel
		}
		return completion.NewExternalSignal(provider, channel), nil
	}
	return completion.ByName(name)
}

func stamp() string {
	return time.Now().Format("15:04:05")
}

// printEvent renders one monitor event for the terminal.
func printEvent(ev event.Event) {
	ts := dimStyle.Render(stamp())

	switch e := ev.(type) {
	case event.StateChangeEvent:
		fmt.Printf("%s %s -> %s (%.2f)", ts, styleState(e.Old.Type), styleState(e.New.Type), e.New.Confidence)
		if e.New.Detail != "" {
			fmt.Printf("  %s", e.New.Detail)
		}
		fmt.Println()
		if len(e.New.Options) > 0 {
			fmt.Printf("%s options: %s\n", ts, strings.Join(e.New.Options, " | "))
		}
	case event.SilenceEvent:
		fmt.Printf("%s silence for %s\n", ts, e.Silence.Round(time.Second))
	case event.CompleteEvent:
		fmt.Printf("%s complete: %s\n", ts, e.Reason)
	case event.CaptureErrorEvent:
		fmt.Printf("%s capture error: %v\n", ts, e.Err)
	case event.PlanFileEvent:
		fmt.Printf("%s plan file: %s\n", ts, e.Path)
	}
}
