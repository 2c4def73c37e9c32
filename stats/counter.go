package stats

import "sync"

// FixedWindowCounter counts events in a fixed-duration window and resets at each tick.
type FixedWindowCounter struct {
	mu    sync.Mutex
	count int64
}

func NewFixedWindowCounter() *FixedWindowCounter {
	return &FixedWindowCounter{}
}

func (c *FixedWindowCounter) Add(n int64) {
	c.mu.Lock()
	c.count += n
	c.mu.Unlock()
}

func (c *FixedWindowCounter) AddEvent() { c.Add(1) }

func (c *FixedWindowCounter) Count() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Swap returns the current count and resets it.
func (c *FixedWindowCounter) Swap() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.count
	c.count = 0
	return n
}

func (c *FixedWindowCounter) Reset() {
	c.mu.Lock()
	c.count = 0
	c.mu.Unlock()
}
