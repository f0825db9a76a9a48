package store

import (
	"fmt"
	"sync"
	"time"
)

// IDGenerator produces "{prefix}-{timestamp}-{counter}" identifiers. The
// counter is monotonic for the life of the generator; the timestamp is
// milliseconds since the epoch unless pinned with Seed.
type IDGenerator struct {
	mu        sync.Mutex
	counter   uint64
	now       func() time.Time
	timestamp int64
	pinned    bool
}

// NewIDGenerator creates a generator reading the wall clock.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// Seed pins the timestamp and resets the counter so tests get
// deterministic identifiers.
func (g *IDGenerator) Seed(counter uint64, timestamp int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter = counter
	g.timestamp = timestamp
	g.pinned = true
}

// SetClock replaces the time source and unpins the timestamp.
func (g *IDGenerator) SetClock(now func() time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
	g.pinned = false
}

// Next returns a fresh identifier for prefix.
func (g *IDGenerator) Next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ts := g.timestamp
	if !g.pinned {
		ts = g.now().UnixMilli()
	}
	id := fmt.Sprintf("%s-%d-%d", prefix, ts, g.counter)
	g.counter++
	return id
}
