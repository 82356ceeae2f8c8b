package capture

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/gobwas/glob"
)

// SocketName is the tmux socket used for agentwatch operations. A dedicated
// socket keeps monitored sessions isolated from the user's default server.
const SocketName = "agentwatch"

// TmuxProvider implements Provider and Discoverer against tmux panes.
// Each capture shells out to capture-pane; there is no long-lived connection,
// so the zero-interaction cost of an idle provider is nil.
type TmuxProvider struct {
	socket string
}

// NewTmuxProvider creates a provider on the default agentwatch socket.
func NewTmuxProvider() *TmuxProvider {
	return &TmuxProvider{socket: SocketName}
}

// NewTmuxProviderWithSocket creates a provider on a custom socket.
// Use this to monitor sessions owned by another tmux server, e.g. the user's
// default server (socket "default").
func NewTmuxProviderWithSocket(socket string) *TmuxProvider {
	return &TmuxProvider{socket: socket}
}

// command builds a socket-scoped tmux command.
func (t *TmuxProvider) command(ctx context.Context, args ...string) *exec.Cmd {
	fullArgs := append([]string{"-L", t.socket}, args...)
	return exec.CommandContext(ctx, "tmux", fullArgs...)
}

// CaptureOutput returns the last lines of the target pane's buffer with
// escape sequences preserved.
func (t *TmuxProvider) CaptureOutput(ctx context.Context, targetID string, lines int) (string, error) {
	if lines <= 0 {
		lines = 30
	}
	cmd := t.command(ctx,
		"capture-pane",
		"-t", targetID,
		"-p", // print to stdout
		"-e", // preserve escape sequences
		"-S", "-"+strconv.Itoa(lines),
	)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to capture pane %s: %w", targetID, err)
	}
	return string(out), nil
}

// WaitForSignal blocks on `tmux wait-for channel` until the channel is
// signalled or the context is done.
func (t *TmuxProvider) WaitForSignal(ctx context.Context, channel string) error {
	cmd := t.command(ctx, "wait-for", channel)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to wait for signal on %s: %w", channel, err)
	}
	return nil
}

// ListTargets returns session names matching the glob pattern, e.g.
// "agent-*". An empty pattern matches every session.
func (t *TmuxProvider) ListTargets(pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	matcher, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid target pattern %q: %w", pattern, err)
	}

	cmd := t.command(context.Background(), "list-sessions", "-F", "#{session_name}")
	out, err := cmd.Output()
	if err != nil {
		// No server on this socket means no targets, not an error.
		return nil, nil
	}

	var targets []string
	for _, name := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if name != "" && matcher.Match(name) {
			targets = append(targets, name)
		}
	}
	return targets, nil
}

// HasTarget reports whether the target session exists.
func (t *TmuxProvider) HasTarget(targetID string) bool {
	return t.command(context.Background(), "has-session", "-t", targetID).Run() == nil
}
