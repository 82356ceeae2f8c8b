package completion

import (
	"sync"
	"time"
)

// methodMetrics accumulates effectiveness counters for one strategy.
// Embedded by each strategy so RecordResult and Metrics come for free.
type methodMetrics struct {
	mu             sync.Mutex
	name           string
	runs           int
	falsePositives int
	falseNegatives int
	totalLatency   time.Duration
	minLatency     time.Duration
	maxLatency     time.Duration
}

// MetricsSnapshot is a point-in-time copy of a strategy's counters.
type MetricsSnapshot struct {
	Method         string
	Runs           int
	FalsePositives int
	FalseNegatives int

	// SuccessRate is (runs - falsePositives - falseNegatives) / runs,
	// or 0 when no runs have been recorded.
	SuccessRate float64

	// AvgLatency is the mean detection latency across recorded runs;
	// MinLatency and MaxLatency bound the observed range.
	AvgLatency time.Duration
	MinLatency time.Duration
	MaxLatency time.Duration
}

// RecordResult folds one ground-truth observation into the counters.
// An incorrect verdict is a false positive when the strategy claimed
// completion too early, otherwise a false negative (a missed finish).
func (m *methodMetrics) RecordResult(latency time.Duration, correct, falsePositive bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs++
	m.totalLatency += latency
	if m.runs == 1 || latency < m.minLatency {
		m.minLatency = latency
	}
	if latency > m.maxLatency {
		m.maxLatency = latency
	}
	if correct {
		return
	}
	if falsePositive {
		m.falsePositives++
	} else {
		m.falseNegatives++
	}
}

// Metrics returns a snapshot of the counters.
func (m *methodMetrics) Metrics() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := MetricsSnapshot{
		Method:         m.name,
		Runs:           m.runs,
		FalsePositives: m.falsePositives,
		FalseNegatives: m.falseNegatives,
	}
	if m.runs > 0 {
		snap.SuccessRate = float64(m.runs-m.falsePositives-m.falseNegatives) / float64(m.runs)
		snap.AvgLatency = m.totalLatency / time.Duration(m.runs)
		snap.MinLatency = m.minLatency
		snap.MaxLatency = m.maxLatency
	}
	return snap
}
