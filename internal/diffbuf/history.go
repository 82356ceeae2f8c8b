package diffbuf

import (
	"strings"
	"sync"
)

// History is a thread-safe ring over delta lines. It retains the most recent
// capacity lines appended to it, discarding the oldest as new lines arrive,
// so long-running monitors can keep a rolling transcript without unbounded
// growth.
type History struct {
	mu    sync.RWMutex
	lines []string
	size  int
	start int
	count int
}

// NewHistory creates a History retaining up to capacity lines.
// A capacity below 1 is treated as 1.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{
		lines: make([]string, capacity),
		size:  capacity,
	}
}

// Append splits delta into lines and appends them, evicting the oldest lines
// once the ring is full. Empty deltas are ignored.
func (h *History) Append(delta string) {
	if delta == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, line := range strings.Split(delta, "\n") {
		idx := (h.start + h.count) % h.size
		h.lines[idx] = line
		if h.count < h.size {
			h.count++
		} else {
			h.start = (h.start + 1) % h.size
		}
	}
}

// Lines returns a copy of the retained lines, oldest first.
func (h *History) Lines() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, h.count)
	for i := 0; i < h.count; i++ {
		out[i] = h.lines[(h.start+i)%h.size]
	}
	return out
}

// String joins the retained lines with newlines, oldest first.
func (h *History) String() string {
	return strings.Join(h.Lines(), "\n")
}

// Len returns the number of retained lines.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Reset discards all retained lines, keeping the capacity.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.start = 0
	h.count = 0
}
