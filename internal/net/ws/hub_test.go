package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birnsj/Project9-V1-sub002/internal/sim"
	"github.com/birnsj/Project9-V1-sub002/internal/telemetry"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func waitSubscribers(t *testing.T, hub *Hub, want int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Subscribers() == want }, 2*time.Second, 10*time.Millisecond)
}

func TestBroadcastReachesSubscribers(t *testing.T) {
	counters := telemetry.NewCounters()
	hub := NewHub(HubConfig{Metrics: counters})
	srv := httptest.NewServer(http.HandlerFunc(hub.Handle))
	defer srv.Close()
	defer hub.Close()

	first := dial(t, srv)
	second := dial(t, srv)
	waitSubscribers(t, hub, 2)

	require.NoError(t, hub.Broadcast(sim.Snapshot{Tick: 7}))

	for _, conn := range []*websocket.Conn{first, second} {
		msg := readMessage(t, conn)
		assert.Equal(t, TypeSnapshot, msg.Type)
		assert.Equal(t, uint64(7), msg.Snapshot.Tick)
	}
	assert.Equal(t, uint64(1), counters.Get("ws.broadcasts"))
	assert.Equal(t, uint64(2), counters.Get("ws.subscribers"))
}

func TestLateSubscriberReceivesLatest(t *testing.T) {
	hub := NewHub(HubConfig{})
	srv := httptest.NewServer(http.HandlerFunc(hub.Handle))
	defer srv.Close()
	defer hub.Close()

	require.NoError(t, hub.Broadcast(sim.Snapshot{Tick: 3}))
	require.NoError(t, hub.Broadcast(sim.Snapshot{Tick: 4}))

	conn := dial(t, srv)
	msg := readMessage(t, conn)
	assert.Equal(t, uint64(4), msg.Snapshot.Tick)
}

func TestDisconnectUnregisters(t *testing.T) {
	hub := NewHub(HubConfig{})
	srv := httptest.NewServer(http.HandlerFunc(hub.Handle))
	defer srv.Close()
	defer hub.Close()

	conn := dial(t, srv)
	waitSubscribers(t, hub, 1)
	require.NoError(t, conn.Close())
	waitSubscribers(t, hub, 0)
}

func TestCloseRejectsNewClients(t *testing.T) {
	hub := NewHub(HubConfig{})
	srv := httptest.NewServer(http.HandlerFunc(hub.Handle))
	defer srv.Close()

	conn := dial(t, srv)
	waitSubscribers(t, hub, 1)
	hub.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.Equal(t, 0, hub.Subscribers())

	late := dial(t, srv)
	require.NoError(t, late.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = late.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
	assert.NoError(t, hub.Broadcast(sim.Snapshot{}))
}
