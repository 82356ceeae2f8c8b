package completion

import (
	"context"
	"time"
)

// Hybrid runs a primary strategy inside a bounded slice of the overall
// detection budget, then hands the remainder to a fallback. The usual
// pairing is state detection first (precise, can miss) backed by a silence
// timeout (coarse, always concludes).
type Hybrid struct {
	methodMetrics
	primary         Strategy
	fallback        Strategy
	primaryTimeout  time.Duration
	fallbackTimeout time.Duration
}

// NewHybrid composes two strategies. primaryTimeout caps the primary's slice
// of the budget and fallbackTimeout caps the fallback's. When Detect is
// called with a non-positive timeout, the overall budget is the sum of the
// two slices.
func NewHybrid(primary, fallback Strategy, primaryTimeout, fallbackTimeout time.Duration) *Hybrid {
	h := &Hybrid{
		primary:         primary,
		fallback:        fallback,
		primaryTimeout:  primaryTimeout,
		fallbackTimeout: fallbackTimeout,
	}
	h.methodMetrics.name = h.Name()
	return h
}

// Name returns "hybrid".
func (h *Hybrid) Name() string { return "hybrid" }

// Detect runs the primary strategy first, then the fallback on whatever
// budget remains, capped at the fallback's slice. Result reasons are tagged
// with the phase that produced them so metrics can be attributed after the
// fact.
func (h *Hybrid) Detect(ctx context.Context, m Monitor, timeout time.Duration) Result {
	start := time.Now()

	total := timeout
	if total <= 0 {
		total = h.primaryTimeout + h.fallbackTimeout
	}
	primaryBudget := h.primaryTimeout
	if primaryBudget > total {
		primaryBudget = total
	}

	pres := h.primary.Detect(ctx, m, primaryBudget)
	if pres.Complete {
		return Result{
			Complete: true,
			State:    pres.State,
			Reason:   "primary(" + pres.Reason + ")",
			Latency:  time.Since(start),
			Method:   h.Name(),
		}
	}
	if ctx.Err() != nil {
		return Result{
			Complete: false,
			State:    pres.State,
			Reason:   "cancelled",
			Latency:  time.Since(start),
			Method:   h.Name(),
		}
	}

	remaining := total - time.Since(start)
	if remaining <= 0 {
		return Result{
			Complete: false,
			State:    m.CurrentState(),
			Reason:   "timeout after primary method",
			Latency:  time.Since(start),
			Method:   h.Name(),
		}
	}

	fallbackBudget := h.fallbackTimeout
	if fallbackBudget > remaining {
		fallbackBudget = remaining
	}

	fres := h.fallback.Detect(ctx, m, fallbackBudget)
	res := Result{
		Complete: fres.Complete,
		State:    fres.State,
		Latency:  time.Since(start),
		Method:   h.Name(),
	}
	if fres.Complete {
		res.Reason = "fallback(" + fres.Reason + ")"
	} else {
		res.Reason = "timeout"
	}
	return res
}
