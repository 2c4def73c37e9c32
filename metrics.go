package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kintel/aisdecoder/sinks/socketio"
	"github.com/kintel/aisdecoder/sinks/vesselcache"
	"github.com/kintel/aisdecoder/stats"
)

// newMux serves the metrics snapshot, cached vessel state, the Socket.IO
// stream and the static web root. hub and cache may be nil.
func newMux(webRoot string, collector *stats.Collector, hub *socketio.Hub, cache *vesselcache.Cache) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", collector.Handler())
	if cache != nil {
		mux.HandleFunc("GET /vessels/{mmsi}", func(w http.ResponseWriter, r *http.Request) {
			mmsi, err := strconv.ParseUint(r.PathValue("mmsi"), 10, 32)
			if err != nil {
				http.Error(w, "invalid MMSI", http.StatusBadRequest)
				return
			}
			state, err := cache.Lookup(r.Context(), uint32(mmsi))
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadGateway)
				return
			}
			if state == nil {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(state)
		})
	}
	if hub != nil {
		mux.Handle("/socket.io/", hub.Handler())
	}
	if webRoot != "" {
		mux.Handle("/", http.FileServer(http.Dir(webRoot)))
	}
	return mux
}
