// Package vesselcache keeps the latest known state of every vessel in Redis.
package vesselcache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/kintel/aisdecoder/pipeline"
)

// store is the part of redis.Client the cache uses.
type store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// Keys always taken from the newest report. Everything else only fills
// gaps, so static data survives position updates.
var dynamicKeys = map[string]bool{
	"lat": true, "lon": true, "speed": true, "course": true, "heading": true,
	"status": true, "turn": true, "second": true, "callsign": true,
	"destination": true, "draught": true,
	"eta_month": true, "eta_day": true, "eta_hour": true, "eta_minute": true,
}

type Cache struct {
	rdb store
	ttl time.Duration
	log *zap.Logger
}

func Dial(ctx context.Context, addr, password string, db int, ttl time.Duration, log *zap.Logger) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, errors.Wrapf(err, "failed to connect to Redis at %s", addr)
	}
	log.Info("connected to Redis", zap.String("addr", addr))
	return newCache(rdb, ttl, log), nil
}

func newCache(rdb store, ttl time.Duration, log *zap.Logger) *Cache {
	return &Cache{rdb: rdb, ttl: ttl, log: log}
}

func key(mmsi uint32) string {
	return "vessel:" + strconv.FormatUint(uint64(mmsi), 10)
}

// merge merges newData into baseData.
func merge(baseData, newData map[string]interface{}) map[string]interface{} {
	if baseData == nil {
		baseData = make(map[string]interface{})
	}
	for k, v := range newData {
		if dynamicKeys[k] {
			baseData[k] = v
		} else if _, ok := baseData[k]; !ok {
			baseData[k] = v
		}
	}
	return baseData
}

// Lookup returns the cached state of a vessel, or nil if none is cached.
func (c *Cache) Lookup(ctx context.Context, mmsi uint32) (map[string]interface{}, error) {
	b, err := c.rdb.Get(ctx, key(mmsi)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read vessel %d", mmsi)
	}
	var state map[string]interface{}
	if err := json.Unmarshal(b, &state); err != nil {
		return nil, errors.Wrapf(err, "corrupt cache entry for vessel %d", mmsi)
	}
	return state, nil
}

func (c *Cache) Name() string { return "vesselcache" }

func (c *Cache) Publish(ctx context.Context, rec *pipeline.Record) error {
	fields, err := rec.Fields()
	if err != nil {
		return errors.Wrap(err, "failed to flatten record")
	}
	state, err := c.Lookup(ctx, rec.MMSI)
	if err != nil {
		return err
	}
	state = merge(state, fields)
	// the last report's identity always wins
	state["type"] = fields["type"]
	state["message_id"] = fields["message_id"]
	state["last_seen"] = rec.ReceivedAt.UTC().Format(time.RFC3339)

	b, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "failed to marshal vessel state")
	}
	if err := c.rdb.Set(ctx, key(rec.MMSI), b, c.ttl).Err(); err != nil {
		return errors.Wrapf(err, "failed to store vessel %d", rec.MMSI)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.rdb.Close()
}
