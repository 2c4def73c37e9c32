package stats

import (
	"encoding/json"
	"math"
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"
)

// metric keeps a running total and the count for the current window.
type metric struct {
	total  int64
	window *FixedWindowCounter
	last   int64 // count of the previous, completed window
}

func newMetric() *metric { return &metric{window: NewFixedWindowCounter()} }

func (m *metric) add(n int64) {
	m.total += n
	m.window.Add(n)
}

// Collector tracks decoder throughput. Counts for the open window are
// published by Rotate, which the service calls every metric window.
type Collector struct {
	mu         sync.RWMutex
	start      time.Time
	now        func() time.Time
	windowSize time.Duration

	sentences    *metric
	messages     *metric
	deduplicated *metric
	expired      *metric
	byType       map[string]*metric
	failures     map[string]*metric
	sinkErrors   map[string]*metric
	bySource     map[string]*metric
}

func NewCollector(windowSize time.Duration) *Collector {
	return newCollector(windowSize, time.Now)
}

func newCollector(windowSize time.Duration, now func() time.Time) *Collector {
	return &Collector{
		start:        now(),
		now:          now,
		windowSize:   windowSize,
		sentences:    newMetric(),
		messages:     newMetric(),
		deduplicated: newMetric(),
		expired:      newMetric(),
		byType:       make(map[string]*metric),
		failures:     make(map[string]*metric),
		sinkErrors:   make(map[string]*metric),
		bySource:     make(map[string]*metric),
	}
}

func keyed(m map[string]*metric, key string) *metric {
	c, ok := m[key]
	if !ok {
		c = newMetric()
		m[key] = c
	}
	return c
}

// Sentence records one received line from source.
func (c *Collector) Sentence(source string) {
	c.mu.Lock()
	c.sentences.add(1)
	keyed(c.bySource, source).add(1)
	c.mu.Unlock()
}

// Message records one fully decoded message of the named type.
func (c *Collector) Message(typeName string) {
	c.mu.Lock()
	c.messages.add(1)
	keyed(c.byType, typeName).add(1)
	c.mu.Unlock()
}

// Failure records a line that could not be decoded, by error kind.
func (c *Collector) Failure(kind string) {
	c.mu.Lock()
	keyed(c.failures, kind).add(1)
	c.mu.Unlock()
}

func (c *Collector) Deduplicated() {
	c.mu.Lock()
	c.deduplicated.add(1)
	c.mu.Unlock()
}

// Expired records incomplete multi-part messages dropped by age.
func (c *Collector) Expired(n int) {
	if n == 0 {
		return
	}
	c.mu.Lock()
	c.expired.add(int64(n))
	c.mu.Unlock()
}

func (c *Collector) SinkError(sink string) {
	c.mu.Lock()
	keyed(c.sinkErrors, sink).add(1)
	c.mu.Unlock()
}

// Rotate closes the current window.
func (c *Collector) Rotate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.all() {
		m.last = m.window.Swap()
	}
}

func (c *Collector) all() []*metric {
	out := []*metric{c.sentences, c.messages, c.deduplicated, c.expired}
	for _, group := range []map[string]*metric{c.byType, c.failures, c.sinkErrors, c.bySource} {
		for _, m := range group {
			out = append(out, m)
		}
	}
	return out
}

// Count is a total and the value of the last completed window.
type Count struct {
	Total  int64 `json:"total"`
	Window int64 `json:"window"`
}

type Snapshot struct {
	UptimeSeconds int64            `json:"uptime_seconds"`
	WindowSeconds int64            `json:"window_seconds"`
	Sentences     Count            `json:"sentences"`
	Messages      Count            `json:"messages"`
	Deduplicated  Count            `json:"deduplicated"`
	Expired       Count            `json:"expired_fragments"`
	ByType        map[string]Count `json:"by_type"`
	Failures      map[string]Count `json:"failures"`
	SinkErrors    map[string]Count `json:"sink_errors"`
	BySource      map[string]Count `json:"by_source"`
	HeapAllocMB   float64          `json:"heap_alloc_mb"`
}

func (m *metric) count() Count { return Count{Total: m.total, Window: m.last} }

func counts(group map[string]*metric) map[string]Count {
	out := make(map[string]Count, len(group))
	for k, m := range group {
		out[k] = m.count()
	}
	return out
}

func (c *Collector) Snapshot() Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		UptimeSeconds: int64(math.Round(c.now().Sub(c.start).Seconds())),
		WindowSeconds: int64(c.windowSize.Seconds()),
		Sentences:     c.sentences.count(),
		Messages:      c.messages.count(),
		Deduplicated:  c.deduplicated.count(),
		Expired:       c.expired.count(),
		ByType:        counts(c.byType),
		Failures:      counts(c.failures),
		SinkErrors:    counts(c.sinkErrors),
		BySource:      counts(c.bySource),
		HeapAllocMB:   math.Round(float64(mem.HeapAlloc)/1024/1024*100) / 100,
	}
}

// Keys returns the sorted keys of a count map.
func Keys(m map[string]Count) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Handler serves the snapshot as JSON.
func (c *Collector) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(c.Snapshot()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
