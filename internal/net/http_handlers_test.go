package net

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birnsj/Project9-V1-sub002/internal/behavior"
	"github.com/birnsj/Project9-V1-sub002/internal/geom"
	"github.com/birnsj/Project9-V1-sub002/internal/sim"
	"github.com/birnsj/Project9-V1-sub002/internal/telemetry"
)

type fakeSimulation struct {
	agents map[string]behavior.View
	stuns  map[string]float64
}

func newFakeSimulation() *fakeSimulation {
	return &fakeSimulation{
		agents: map[string]behavior.View{
			"g1": {ID: "g1", Position: geom.Vec2{X: 10, Y: 20}, State: behavior.StateIdle},
			"g2": {ID: "g2", State: behavior.StateChase},
		},
		stuns: make(map[string]float64),
	}
}

func (f *fakeSimulation) Snapshot() sim.Snapshot {
	return sim.Snapshot{
		Tick:   42,
		Agents: []behavior.View{f.agents["g1"], f.agents["g2"]},
	}
}

func (f *fakeSimulation) Agent(id string) (behavior.View, error) {
	view, ok := f.agents[id]
	if !ok {
		return behavior.View{}, fmt.Errorf("agent %q: %w", id, sim.ErrUnknownAgent)
	}
	return view, nil
}

func (f *fakeSimulation) Stun(id string, duration float64) error {
	view, ok := f.agents[id]
	if !ok {
		return fmt.Errorf("stun %q: %w", id, sim.ErrUnknownAgent)
	}
	f.stuns[id] = duration
	view.Stunned = true
	view.State = behavior.StateStunned
	f.agents[id] = view
	return nil
}

func serve(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestHealthz(t *testing.T) {
	handler := NewHTTPHandler(newFakeSimulation(), HTTPHandlerConfig{})
	resp := serve(t, handler, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ok", resp.Body.String())
}

func TestAgentsListsViews(t *testing.T) {
	handler := NewHTTPHandler(newFakeSimulation(), HTTPHandlerConfig{})
	resp := serve(t, handler, http.MethodGet, "/agents", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))

	var views []map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &views))
	require.Len(t, views, 2)
	assert.Equal(t, "g1", views[0]["id"])
	assert.Equal(t, "idle", views[0]["state"])
	assert.Equal(t, "chase", views[1]["state"])
}

func TestAgentByID(t *testing.T) {
	handler := NewHTTPHandler(newFakeSimulation(), HTTPHandlerConfig{})

	resp := serve(t, handler, http.MethodGet, "/agents/g1", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var view behavior.View
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &view))
	assert.Equal(t, geom.Vec2{X: 10, Y: 20}, view.Position)

	resp = serve(t, handler, http.MethodGet, "/agents/nobody", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestStunAgent(t *testing.T) {
	simulation := newFakeSimulation()
	handler := NewHTTPHandler(simulation, HTTPHandlerConfig{})

	resp := serve(t, handler, http.MethodPost, "/agents/g2/stun", `{"duration":2.5}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 2.5, simulation.stuns["g2"])
	assert.Contains(t, resp.Body.String(), `"stunned":true`)

	resp = serve(t, handler, http.MethodPost, "/agents/g1/stun", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, defaultStunDuration, simulation.stuns["g1"])

	for _, tc := range []struct {
		name, target, body string
		code               int
	}{
		{name: "bad json", target: "/agents/g1/stun", body: "{", code: http.StatusBadRequest},
		{name: "negative", target: "/agents/g1/stun", body: `{"duration":-1}`, code: http.StatusBadRequest},
		{name: "unknown", target: "/agents/zz/stun", body: `{}`, code: http.StatusNotFound},
	} {
		t.Run(tc.name, func(t *testing.T) {
			resp := serve(t, handler, http.MethodPost, tc.target, tc.body)
			assert.Equal(t, tc.code, resp.Code)
		})
	}

	resp = serve(t, handler, http.MethodGet, "/agents/g1/stun", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)
}

func TestDiagnosticsIncludesCounters(t *testing.T) {
	counters := telemetry.NewCounters()
	counters.Add("sim.ticks", 5)
	handler := NewHTTPHandler(newFakeSimulation(), HTTPHandlerConfig{Counters: counters, TickRate: 30})

	resp := serve(t, handler, http.MethodGet, "/diagnostics", "")
	require.Equal(t, http.StatusOK, resp.Code)

	var payload struct {
		Tick     uint64            `json:"tick"`
		TickRate int               `json:"tickRate"`
		Agents   int               `json:"agents"`
		Counters map[string]uint64 `json:"counters"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	assert.Equal(t, uint64(42), payload.Tick)
	assert.Equal(t, 30, payload.TickRate)
	assert.Equal(t, 2, payload.Agents)
	assert.Equal(t, uint64(5), payload.Counters["sim.ticks"])
}

func TestStreamRouteIsOptional(t *testing.T) {
	handler := NewHTTPHandler(newFakeSimulation(), HTTPHandlerConfig{})
	assert.Equal(t, http.StatusNotFound, serve(t, handler, http.MethodGet, "/ws", "").Code)

	called := false
	handler = NewHTTPHandler(newFakeSimulation(), HTTPHandlerConfig{Stream: func(w http.ResponseWriter, r *http.Request) {
		called = true
	}})
	serve(t, handler, http.MethodGet, "/ws", "")
	assert.True(t, called)
}
