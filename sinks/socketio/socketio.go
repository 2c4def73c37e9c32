// Package socketio streams decoded records to browsers over Socket.IO.
package socketio

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"

	"github.com/kintel/aisdecoder/pipeline"
)

const (
	eventData   = "ais_data"
	eventLatest = "latest_vessel_data"
)

type client interface {
	Emit(ev string, args ...any) error
}

type vessel struct {
	data json.RawMessage
	seen time.Time
}

// Hub emits every record to all connected clients. New clients first get
// the latest record of every vessel seen so far.
type Hub struct {
	engine *types.HttpServer
	sio    *socket.Server
	log    *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	clients []client
	latest  map[uint32]vessel
}

func New(log *zap.Logger) *Hub {
	h := &Hub{
		engine: types.CreateServer(nil),
		log:    log,
		now:    time.Now,
		latest: make(map[uint32]vessel),
	}
	sio := socket.NewServer(h.engine, nil)
	h.sio = sio
	sio.On("connection", func(args ...any) {
		c := args[0].(*socket.Socket)
		h.log.Debug("socket.io client connected", zap.Any("id", c.Id()))
		c.Join(eventData)
		h.add(c)
		c.On("disconnect", func(...any) {
			h.log.Debug("socket.io client disconnected", zap.Any("id", c.Id()))
			h.remove(c)
		})
	})
	return h
}

// Handler serves /socket.io/.
func (h *Hub) Handler() http.Handler { return h.engine }

func (h *Hub) add(c client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	latest := make(map[uint32]json.RawMessage, len(h.latest))
	for mmsi, v := range h.latest {
		latest[mmsi] = v.data
	}
	snapshot, err := json.Marshal(latest)
	if err == nil {
		if err := c.Emit(eventLatest, string(snapshot)); err != nil {
			h.log.Warn("error sending latest vessel data", zap.Error(err))
		}
	}
	h.clients = append(h.clients, c)
}

func (h *Hub) remove(c client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, existing := range h.clients {
		if existing == c {
			h.clients = append(h.clients[:i], h.clients[i+1:]...)
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) Name() string { return "socketio" }

func (h *Hub) Publish(_ context.Context, rec *pipeline.Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "failed to marshal record")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest[rec.MMSI] = vessel{data: b, seen: h.now()}
	var failed int
	for _, c := range h.clients {
		if err := c.Emit(eventData, string(b)); err != nil {
			failed++
		}
	}
	if failed > 0 {
		return errors.Newf("failed to emit to %d of %d clients", failed, len(h.clients))
	}
	return nil
}

// Prune forgets vessels not heard from within maxAge and returns how many
// were dropped.
func (h *Hub) Prune(maxAge time.Duration) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.now()
	n := 0
	for mmsi, v := range h.latest {
		if now.Sub(v.seen) > maxAge {
			delete(h.latest, mmsi)
			n++
		}
	}
	return n
}

// Run prunes the vessel snapshot every maxAge/2 until ctx is done. A
// non-positive maxAge keeps vessels forever.
func (h *Hub) Run(ctx context.Context, maxAge time.Duration) {
	if maxAge <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(maxAge / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := h.Prune(maxAge); n > 0 {
				h.log.Debug("pruned silent vessels", zap.Int("count", n))
			}
		}
	}
}

// Close disconnects all clients and shuts down the Socket.IO server.
func (h *Hub) Close() error {
	h.mu.Lock()
	h.clients = nil
	h.latest = make(map[uint32]vessel)
	h.mu.Unlock()
	if h.sio != nil {
		var err error
		h.sio.Close(func(e error) { err = e })
		return errors.Wrap(err, "failed to close socket.io server")
	}
	return nil
}
