// Package influx pushes decoder statistics to InfluxDB 1.x.
package influx

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	client "github.com/influxdata/influxdb1-client/v2"
	"go.uber.org/zap"

	"github.com/kintel/aisdecoder/stats"
)

const measurement = "aisdecoder"

// Reporter writes a stats snapshot every interval.
type Reporter struct {
	c        client.Client
	db       string
	interval time.Duration
	source   func() stats.Snapshot
	log      *zap.Logger
}

func Dial(url, db string, interval time.Duration, source func() stats.Snapshot, log *zap.Logger) (*Reporter, error) {
	c, err := client.NewHTTPClient(client.HTTPConfig{Addr: url})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create InfluxDB client for %s", url)
	}
	r := &Reporter{c: c, db: db, interval: interval, source: source, log: log}
	if err := r.ensureDatabase(); err != nil {
		c.Close()
		return nil, err
	}
	log.Info("reporting to InfluxDB", zap.String("url", url), zap.String("db", db))
	return r, nil
}

func (r *Reporter) ensureDatabase() error {
	q := client.NewQuery(fmt.Sprintf("CREATE DATABASE %q", r.db), "", "")
	resp, err := r.c.Query(q)
	if err != nil {
		return errors.Wrapf(err, "failed to create database %s", r.db)
	}
	if resp.Error() != nil {
		return errors.Wrapf(resp.Error(), "failed to create database %s", r.db)
	}
	return nil
}

// Run writes until ctx is done.
func (r *Reporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := r.write(now); err != nil {
				r.log.Warn("failed to write metrics to InfluxDB", zap.Error(err))
			}
		}
	}
}

func (r *Reporter) write(now time.Time) error {
	bp, err := Points(r.db, r.source(), now)
	if err != nil {
		return err
	}
	return r.c.Write(bp)
}

// Points converts a snapshot into a batch: one point of totals and one
// point per message type, failure kind and source.
func Points(db string, snap stats.Snapshot, now time.Time) (client.BatchPoints, error) {
	bp, err := client.NewBatchPoints(client.BatchPointsConfig{
		Database:  db,
		Precision: "s",
	})
	if err != nil {
		return nil, err
	}

	add := func(tags map[string]string, fields map[string]interface{}) error {
		p, err := client.NewPoint(measurement, tags, fields, now)
		if err != nil {
			return err
		}
		bp.AddPoint(p)
		return nil
	}

	err = add(map[string]string{"scope": "total"}, map[string]interface{}{
		"sentences":         snap.Sentences.Total,
		"messages":          snap.Messages.Total,
		"deduplicated":      snap.Deduplicated.Total,
		"expired_fragments": snap.Expired.Total,
		"window_sentences":  snap.Sentences.Window,
		"window_messages":   snap.Messages.Window,
		"heap_alloc_mb":     snap.HeapAllocMB,
		"uptime_seconds":    snap.UptimeSeconds,
	})
	if err != nil {
		return nil, err
	}

	groups := []struct {
		tag    string
		counts map[string]stats.Count
	}{
		{"message_type", snap.ByType},
		{"failure", snap.Failures},
		{"source", snap.BySource},
		{"sink_error", snap.SinkErrors},
	}
	for _, g := range groups {
		for _, k := range stats.Keys(g.counts) {
			c := g.counts[k]
			err := add(map[string]string{"scope": g.tag, g.tag: k}, map[string]interface{}{
				"total":  c.Total,
				"window": c.Window,
			})
			if err != nil {
				return nil, err
			}
		}
	}
	return bp, nil
}

func (r *Reporter) Close() error {
	return r.c.Close()
}
