package completion

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// silencePreset matches names like "silence-3s" or "silence-500ms".
var silencePreset = regexp.MustCompile(`^silence-(\d+)(ms|s)$`)

// Default returns the recommended strategy: state detection for up to 30s,
// falling back to a 5s silence timeout capped at a 90s fallback slice.
func Default() Strategy {
	return NewHybrid(
		NewStateDetection(),
		NewSilenceTimeout(5*time.Second),
		30*time.Second,
		90*time.Second,
	)
}

// ByName resolves a preset strategy name.
//
// Fixed names: "default", "state", "aggressive-hybrid" (short budgets for
// quick tasks), "conservative-hybrid" (long budgets for slow agents).
// "silence-<N>ms" and "silence-<N>s" build a bare silence timeout of that
// duration.
func ByName(name string) (Strategy, error) {
	switch name {
	case "", "default":
		return Default(), nil
	case "state":
		return NewStateDetection(), nil
	case "aggressive-hybrid":
		return NewHybrid(
			NewStateDetection(),
			NewSilenceTimeout(2*time.Second),
			10*time.Second,
			30*time.Second,
		), nil
	case "conservative-hybrid":
		return NewHybrid(
			NewStateDetectionWithSettle(5*time.Second),
			NewSilenceTimeout(15*time.Second),
			2*time.Minute,
			10*time.Minute,
		), nil
	}

	if m := silencePreset.FindStringSubmatch(name); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid silence duration in %q", name)
		}
		unit := time.Second
		if m[2] == "ms" {
			unit = time.Millisecond
		}
		return NewSilenceTimeout(time.Duration(n) * unit), nil
	}

	return nil, fmt.Errorf("unknown completion strategy %q", name)
}
