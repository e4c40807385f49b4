package seat

import (
	"strings"
	"sync"
)

// diagnosticCapacity is the number of stderr lines retained per process.
const diagnosticCapacity = 50

// lineRing is a fixed-capacity buffer of recent output lines. Appending
// beyond capacity evicts the oldest line. Safe for concurrent use.
type lineRing struct {
	mu       sync.Mutex
	lines    []string
	capacity int
}

func newLineRing(capacity int) *lineRing {
	return &lineRing{capacity: capacity}
}

// Append adds a line, evicting the oldest when full.
func (r *lineRing) Append(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.lines) == r.capacity {
		copy(r.lines, r.lines[1:])
		r.lines = r.lines[:r.capacity-1]
	}
	r.lines = append(r.lines, line)
}

// Len returns the number of buffered lines.
func (r *lineRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lines)
}

// String returns the buffered lines joined by newlines, oldest first.
func (r *lineRing) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Join(r.lines, "\n")
}

// Reset discards all buffered lines.
func (r *lineRing) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = nil
}
