// Package pipeline runs decoded AIS traffic from sources to sinks.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kintel/aisdecoder/decoder"
	"github.com/kintel/aisdecoder/stats"
)

type Config struct {
	FragmentTTL  time.Duration // incomplete multi-part messages older than this are dropped
	DedupeWindow time.Duration // zero disables deduplication
	MetricWindow time.Duration
}

// Pipeline owns one decoder. Run and Handle must be called from a single
// goroutine.
type Pipeline struct {
	cfg    Config
	dec    *decoder.Decoder
	dedupe *Deduper
	sinks  []Sink
	stats  *stats.Collector
	log    *zap.Logger
	failed *zap.Logger
	now    func() time.Time
}

type Option func(*Pipeline)

// WithFailedLog sets the logger that records every line that failed to
// decode.
func WithFailedLog(l *zap.Logger) Option {
	return func(p *Pipeline) { p.failed = l }
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func New(cfg Config, sinks []Sink, collector *stats.Collector, log *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:    cfg,
		sinks:  sinks,
		stats:  collector,
		log:    log,
		failed: zap.NewNop(),
		now:    time.Now,
		dedupe: NewDeduper(cfg.DedupeWindow),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.dec = decoder.New(
		decoder.WithLogger(log.Named("decoder")),
		decoder.WithClock(p.now),
	)
	return p
}

// Handle decodes one line and publishes the result. It returns a nil record
// for duplicates and for fragments of incomplete messages.
func (p *Pipeline) Handle(ctx context.Context, line Line) (*Record, error) {
	if line.Received.IsZero() {
		line.Received = p.now()
	}
	p.stats.Sentence(line.Source)

	if p.dedupe.Duplicate(line.Text, line.Received) {
		p.stats.Deduplicated()
		p.log.Debug("dropped duplicate",
			zap.String("source", line.Source),
			zap.String("sentence", line.Text))
		return nil, nil
	}

	fr, err := p.dec.DecodeFrame(line.Text)
	if err != nil {
		kind := decoder.ErrorKind(err)
		p.stats.Failure(kind)
		p.failed.Info("decode failed",
			zap.String("source", line.Source),
			zap.String("kind", kind),
			zap.String("sentence", line.Text),
			zap.Error(err))
		return nil, err
	}
	if fr == nil {
		return nil, nil
	}

	rec := NewRecord(fr, line)
	p.stats.Message(fr.Message.GetHeader().Type)
	for _, s := range p.sinks {
		if err := s.Publish(ctx, rec); err != nil {
			p.stats.SinkError(s.Name())
			p.log.Warn("sink publish failed",
				zap.String("sink", s.Name()),
				zap.Uint32("mmsi", rec.MMSI),
				zap.Error(err))
		}
	}
	return rec, nil
}

// Run consumes lines until the channel is closed or ctx is done. Stale
// fragments are evicted and the metric window rotated on their own tickers.
func (p *Pipeline) Run(ctx context.Context, lines <-chan Line) error {
	ttl := p.cfg.FragmentTTL
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	window := p.cfg.MetricWindow
	if window <= 0 {
		window = time.Minute
	}
	expire := time.NewTicker(ttl / 2)
	defer expire.Stop()
	rotate := time.NewTicker(window)
	defer rotate.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if _, err := p.Handle(ctx, line); err != nil {
				p.log.Debug("error decoding sentence",
					zap.String("source", line.Source),
					zap.Error(err))
			}
		case <-expire.C:
			p.expire(ttl)
		case <-rotate.C:
			p.stats.Rotate()
		}
	}
}

func (p *Pipeline) expire(ttl time.Duration) {
	n := p.dec.Expire(ttl)
	p.stats.Expired(n)
	if n > 0 {
		p.log.Debug("expired incomplete messages", zap.Int("count", n))
	}
	if p.cfg.DedupeWindow > 0 {
		p.dedupe.Prune(p.now())
	}
}

// Close closes every sink.
func (p *Pipeline) Close() error {
	return closeSinks(p.sinks)
}
