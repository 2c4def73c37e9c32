package pipeline

import (
	"hash/fnv"
	"time"
)

// Deduper drops lines already seen within a time window.
type Deduper struct {
	window time.Duration
	seen   map[uint32]time.Time
}

func NewDeduper(window time.Duration) *Deduper {
	return &Deduper{window: window, seen: make(map[uint32]time.Time)}
}

func fnvHash(message string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(message))
	return h.Sum32()
}

// Duplicate reports whether line was seen within the window before now and
// records it otherwise.
func (d *Deduper) Duplicate(line string, now time.Time) bool {
	if d.window <= 0 {
		return false
	}
	h := fnvHash(line)
	if last, ok := d.seen[h]; ok && now.Sub(last) < d.window {
		return true
	}
	d.seen[h] = now
	return false
}

// Prune forgets entries older than the window.
func (d *Deduper) Prune(now time.Time) {
	for h, ts := range d.seen {
		if now.Sub(ts) >= d.window {
			delete(d.seen, h)
		}
	}
}
