package numbering

import (
	"context"
	"sync"
	"time"
)

// MemoryCounter keeps the sequence in process memory behind a mutex. Used for
// single-process runs and tests; state does not survive a restart.
type MemoryCounter struct {
	mu      sync.Mutex
	year    int
	counter int
}

// NewMemoryCounter constructs an ephemeral counter.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{}
}

func (c *MemoryCounter) Next(ctx context.Context, now time.Time) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	year := now.Year()
	if year != c.year {
		c.year = year
		c.counter = 0
	}
	c.counter++
	return Format(year, c.counter), nil
}
