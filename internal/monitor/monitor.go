// Package monitor owns the poll loop for one monitored terminal target.
// Each poll captures output, diffs it against the previous capture,
// re-classifies the window, and emits typed events in poll order.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/agentwatch/internal/capture"
	"github.com/Iron-Ham/agentwatch/internal/classify"
	"github.com/Iron-Ham/agentwatch/internal/diffbuf"
	"github.com/Iron-Ham/agentwatch/internal/event"
	"github.com/Iron-Ham/agentwatch/internal/logging"
	"github.com/Iron-Ham/agentwatch/internal/pattern"
)

// Config holds monitor tuning knobs.
type Config struct {
	// PollInterval is how often to capture output (default 500ms).
	PollInterval time.Duration

	// CaptureLines bounds each capture (default 30).
	CaptureLines int

	// SilenceThreshold is how long without new output before a silence
	// event fires (default 5s). The event fires once per crossing, not on
	// every quiet poll.
	SilenceThreshold time.Duration

	// CaptureTimeout bounds a single capture call so a hung provider cannot
	// stall the poll loop (default 2s).
	CaptureTimeout time.Duration

	// HistoryLines is the rolling transcript capacity (default 500).
	HistoryLines int

	// TargetPattern is the discovery glob used when no explicit target is
	// given and the provider supports discovery (default "*").
	TargetPattern string

	// Classifier configures state classification for captured windows.
	Classifier classify.Config
}

// DefaultConfig returns sensible monitor defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval:     500 * time.Millisecond,
		CaptureLines:     30,
		SilenceThreshold: 5 * time.Second,
		CaptureTimeout:   2 * time.Second,
		HistoryLines:     500,
		TargetPattern:    "*",
		Classifier:       classify.DefaultConfig(),
	}
}

// Monitor polls one target and emits events describing what the agent in
// that target is doing. Lifecycle: not-started -> running -> stopped; a
// stopped monitor cannot be restarted.
//
// The poll loop is the session state's single writer. Readers get snapshots
// via CurrentState and SilenceFor and never block a poll.
type Monitor struct {
	id       string
	targetID string
	provider capture.Provider
	cfg      Config
	bus      *event.Bus
	logger   *logging.Logger
	history  *diffbuf.History

	mu           sync.RWMutex
	started      bool
	lastOutput   string
	lastState    classify.State
	lastActivity time.Time
	silenceFired bool
	lastPlanPath string
	startedAt    time.Time

	stopped atomic.Bool
	done    chan struct{}
	loop    sync.WaitGroup
}

// New creates a monitor for targetID. An empty targetID is resolved at Start
// via the provider's discovery capability, if it has one.
func New(provider capture.Provider, targetID string, cfg Config, logger *logging.Logger) *Monitor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	if cfg.CaptureLines <= 0 {
		cfg.CaptureLines = DefaultConfig().CaptureLines
	}
	if cfg.SilenceThreshold <= 0 {
		cfg.SilenceThreshold = DefaultConfig().SilenceThreshold
	}
	if cfg.CaptureTimeout <= 0 {
		cfg.CaptureTimeout = DefaultConfig().CaptureTimeout
	}
	if cfg.HistoryLines <= 0 {
		cfg.HistoryLines = DefaultConfig().HistoryLines
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Monitor{
		id:       uuid.NewString(),
		targetID: targetID,
		provider: provider,
		cfg:      cfg,
		bus:      event.NewBus(),
		logger:   logger.WithTarget(targetID),
		history:  diffbuf.NewHistory(cfg.HistoryLines),
		done:     make(chan struct{}),
	}
}

// ID returns the monitor's unique identifier.
func (m *Monitor) ID() string { return m.id }

// TargetID returns the resolved capture target. Empty until Start resolves a
// discovered target.
func (m *Monitor) TargetID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.targetID
}

// Subscribe registers a handler for one event type and returns a
// subscription ID for Unsubscribe.
func (m *Monitor) Subscribe(eventType string, handler event.Handler) string {
	return m.bus.Subscribe(eventType, handler)
}

// SubscribeAll registers a handler for every event type.
func (m *Monitor) SubscribeAll(handler event.Handler) string {
	return m.bus.SubscribeAll(handler)
}

// Unsubscribe removes a subscription by ID.
func (m *Monitor) Unsubscribe(id string) bool {
	return m.bus.Unsubscribe(id)
}

// Start resolves the capture target, performs one synchronous initial poll,
// and arms the repeating poll loop. Starting an already started or stopped
// monitor is an error.
func (m *Monitor) Start() error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return fmt.Errorf("monitor already started")
	}
	if m.stopped.Load() {
		m.mu.Unlock()
		return fmt.Errorf("monitor already stopped")
	}

	if m.targetID == "" {
		target, err := m.discoverTarget()
		if err != nil {
			m.mu.Unlock()
			return err
		}
		m.targetID = target
		m.logger = m.logger.WithTarget(target)
	}

	now := time.Now()
	m.started = true
	m.startedAt = now
	m.lastActivity = now
	m.mu.Unlock()

	m.logger.Info("monitor started",
		"monitor_id", m.id,
		"poll_interval", m.cfg.PollInterval.String())

	// Initial poll runs synchronously so callers observe a classified state
	// as soon as Start returns.
	m.poll()

	m.loop.Add(1)
	go m.run()
	return nil
}

// discoverTarget resolves a target via the provider's discovery capability.
// Caller holds m.mu.
func (m *Monitor) discoverTarget() (string, error) {
	d, ok := m.provider.(capture.Discoverer)
	if !ok {
		return "", fmt.Errorf("no target specified and provider does not support discovery")
	}
	targets, err := d.ListTargets(m.cfg.TargetPattern)
	if err != nil {
		return "", fmt.Errorf("target discovery failed: %w", err)
	}
	if len(targets) == 0 {
		return "", fmt.Errorf("no targets match pattern %q", m.cfg.TargetPattern)
	}
	return targets[0], nil
}

// run is the poll loop. It exits when Stop closes the done channel; the
// process is never kept alive by a discarded monitor because Stop is the
// owner's responsibility and the loop holds no other resources.
func (m *Monitor) run() {
	defer m.loop.Done()

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.poll()
		}
	}
}

// Stop halts polling immediately. In-flight poll results are discarded; no
// events are emitted after Stop wins the stop flag. Stop is idempotent.
func (m *Monitor) Stop() {
	if !m.stopped.CompareAndSwap(false, true) {
		return
	}
	close(m.done)
	m.logger.Info("monitor stopped", "monitor_id", m.id)
}

// IsRunning reports whether the monitor has started and not yet stopped.
func (m *Monitor) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.started && !m.stopped.Load()
}

// CurrentState returns a snapshot of the last classified state.
func (m *Monitor) CurrentState() classify.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastState
}

// SilenceFor returns how long the target has produced no new output.
func (m *Monitor) SilenceFor() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastActivity.IsZero() {
		return 0
	}
	return time.Since(m.lastActivity)
}

// History returns the rolling transcript of output deltas, oldest first.
func (m *Monitor) History() []string {
	return m.history.Lines()
}

// emit publishes an event unless the monitor has been stopped.
func (m *Monitor) emit(ev event.Event) {
	if m.stopped.Load() {
		return
	}
	m.bus.Publish(ev)
}

// poll captures output once and emits whatever events the capture implies.
// Polls are serialized: the initial poll runs before the loop starts, and
// the loop runs polls one at a time, so a session has at most one in-flight
// poll.
func (m *Monitor) poll() {
	if m.stopped.Load() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.CaptureTimeout)
	output, err := m.provider.CaptureOutput(ctx, m.TargetID(), m.cfg.CaptureLines)
	cancel()

	if err != nil {
		// Transient capture failures are diagnostic, never fatal.
		m.logger.Warn("capture failed", "error", err.Error())
		m.emit(event.NewCaptureErrorEvent(m.TargetID(), err))
		return
	}

	now := time.Now()

	m.mu.Lock()
	if m.stopped.Load() {
		m.mu.Unlock()
		return
	}
	target := m.targetID
	prevOutput := m.lastOutput
	prevState := m.lastState

	if output == prevOutput {
		silence := now.Sub(m.lastActivity)
		fire := silence >= m.cfg.SilenceThreshold && !m.silenceFired
		if fire {
			m.silenceFired = true
		}
		m.mu.Unlock()

		if fire {
			m.logger.Debug("silence threshold crossed", "silence", silence.String())
			m.emit(event.NewSilenceEvent(target, silence))
		}
		return
	}

	delta, _ := diffbuf.Delta(prevOutput, output)
	newState := classify.ClassifyWith(output, m.cfg.Classifier)

	m.lastOutput = output
	m.lastState = newState
	if delta != "" {
		m.lastActivity = now
		m.silenceFired = false
		m.history.Append(delta)
	}

	planPath := m.detectPlanFile(output)
	m.mu.Unlock()

	if delta != "" {
		m.emit(event.NewOutputEvent(target, delta))
		m.emit(event.NewActivityEvent(target))
	}

	if newState.Type != prevState.Type {
		m.logger.Debug("state changed",
			"old", string(prevState.Type),
			"new", string(newState.Type),
			"confidence", newState.Confidence)
		m.emit(event.NewStateChangeEvent(target, prevState, newState))

		switch newState.Type {
		case classify.StatePermission:
			m.emit(event.NewPermissionEvent(target, newState))
		case classify.StateQuestion:
			m.emit(event.NewQuestionEvent(target, newState))
		case classify.StateError:
			m.emit(event.NewErrorEvent(target, newState))
		}

		if reason, ok := completionReason(prevState, newState); ok {
			m.emit(event.NewCompleteEvent(target, newState, reason))
		}
	}

	if planPath != "" {
		m.emit(event.NewPlanFileEvent(target, planPath))
	}
}

// detectPlanFile extracts a plan document path and returns it only when it
// differs from the last one seen, so rewrites of the same path don't re-fire.
// Caller holds m.mu.
func (m *Monitor) detectPlanFile(output string) string {
	planPatterns := m.cfg.Classifier.Catalog.PlanFile
	if planPatterns == nil {
		planPatterns = pattern.PlanFile
	}
	hit, ok := pattern.FirstMatch(pattern.StripANSI(output), planPatterns)
	if !ok {
		return ""
	}
	path := hit.Fields["path"]
	if path == "" || path == m.lastPlanPath {
		return ""
	}
	m.lastPlanPath = path
	return path
}

// completionReason decides whether a state transition implies the task is
// done. Triggers: leaving working for a settled state, or an explicit
// complete/idle classification above the confidence floor.
func completionReason(old, new classify.State) (string, bool) {
	const confidenceFloor = 0.6

	if old.Type == classify.StateWorking &&
		(new.Type == classify.StateComplete || new.Type == classify.StateIdle) {
		return fmt.Sprintf("transitioned from working to %s", new.Type), true
	}
	if new.Type == classify.StateComplete && new.Confidence > confidenceFloor {
		return "explicit completion state", true
	}
	if new.Type == classify.StateIdle && new.Confidence > confidenceFloor {
		return fmt.Sprintf("idle state with confidence %.2f", new.Confidence), true
	}
	return "", false
}
