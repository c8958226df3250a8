// Package net exposes the debug HTTP surface of a running simulation.
package net

import (
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/birnsj/Project9-V1-sub002/internal/behavior"
	"github.com/birnsj/Project9-V1-sub002/internal/sim"
	"github.com/birnsj/Project9-V1-sub002/internal/telemetry"
)

// Simulation is the part of sim.Loop the handlers read and poke.
type Simulation interface {
	Snapshot() sim.Snapshot
	Agent(id string) (behavior.View, error)
	Stun(id string, duration float64) error
}

// HTTPHandlerConfig wires optional collaborators. Stream, when set, serves
// the websocket snapshot stream on /ws.
type HTTPHandlerConfig struct {
	Logger   telemetry.Logger
	Counters *telemetry.Counters
	Stream   nethttp.HandlerFunc
	TickRate int
	Now      func() time.Time
}

type stunRequest struct {
	Duration float64 `json:"duration"`
}

const defaultStunDuration = 1.0

func NewHTTPHandler(simulation Simulation, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(nil)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	}).Methods(nethttp.MethodGet)

	router.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		snap := simulation.Snapshot()
		payload := struct {
			Status     string            `json:"status"`
			ServerTime int64             `json:"serverTime"`
			Tick       uint64            `json:"tick"`
			TickRate   int               `json:"tickRate"`
			Agents     int               `json:"agents"`
			Nav        any               `json:"nav"`
			Counters   map[string]uint64 `json:"counters,omitempty"`
		}{
			Status:     "ok",
			ServerTime: now().UnixMilli(),
			Tick:       snap.Tick,
			TickRate:   cfg.TickRate,
			Agents:     len(snap.Agents),
			Nav:        snap.Nav,
			Counters:   cfg.Counters.Snapshot(),
		}
		writeJSON(w, logger, nethttp.StatusOK, payload)
	}).Methods(nethttp.MethodGet)

	router.HandleFunc("/snapshot", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		writeJSON(w, logger, nethttp.StatusOK, simulation.Snapshot())
	}).Methods(nethttp.MethodGet)

	router.HandleFunc("/agents", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		writeJSON(w, logger, nethttp.StatusOK, simulation.Snapshot().Agents)
	}).Methods(nethttp.MethodGet)

	router.HandleFunc("/agents/{id}", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		view, err := simulation.Agent(mux.Vars(r)["id"])
		if err != nil {
			agentError(w, err)
			return
		}
		writeJSON(w, logger, nethttp.StatusOK, view)
	}).Methods(nethttp.MethodGet)

	router.HandleFunc("/agents/{id}/stun", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		req := stunRequest{Duration: defaultStunDuration}
		if r.Body != nil {
			defer r.Body.Close()
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
				httpError(w, "invalid payload", nethttp.StatusBadRequest)
				return
			}
		}
		if req.Duration <= 0 {
			httpError(w, "duration must be positive", nethttp.StatusBadRequest)
			return
		}
		id := mux.Vars(r)["id"]
		if err := simulation.Stun(id, req.Duration); err != nil {
			agentError(w, err)
			return
		}
		logger.Printf("stunned agent %s for %.2fs", id, req.Duration)
		view, err := simulation.Agent(id)
		if err != nil {
			agentError(w, err)
			return
		}
		writeJSON(w, logger, nethttp.StatusOK, view)
	}).Methods(nethttp.MethodPost)

	if cfg.Stream != nil {
		router.HandleFunc("/ws", cfg.Stream)
	}

	return router
}

func agentError(w nethttp.ResponseWriter, err error) {
	if errors.Is(err, sim.ErrUnknownAgent) {
		httpError(w, err.Error(), nethttp.StatusNotFound)
		return
	}
	httpError(w, err.Error(), nethttp.StatusInternalServerError)
}

func writeJSON(w nethttp.ResponseWriter, logger telemetry.Logger, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Printf("failed to encode response: %v", err)
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
