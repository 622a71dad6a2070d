package api

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

	"github.com/wonny/jhlj/backend/pkg/config"
	"github.com/wonny/jhlj/backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{
		Env:      "test",
		LogLevel: "error",
		Database: config.DatabaseConfig{URL: "dummy"},
	})
}

func dialHub(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d connected clients, have %d", want, hub.ClientCount())
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(testLogger())
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	conn := dialHub(t, server)
	waitForClients(t, hub, 1)

	hub.NotifyIndexRefreshed()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var event map[string]string
	require.NoError(t, json.Unmarshal(msg, &event))
	assert.Equal(t, "index_refreshed", event["event"])
}

func TestHubBroadcastMultipleClients(t *testing.T) {
	hub := NewHub(testLogger())
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	first := dialHub(t, server)
	second := dialHub(t, server)
	waitForClients(t, hub, 2)

	hub.Broadcast("index_refreshed")

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Contains(t, string(msg), "index_refreshed")
	}
}

func TestHubClientDisconnect(t *testing.T) {
	hub := NewHub(testLogger())
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	conn := dialHub(t, server)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestHubBroadcastNoClients(t *testing.T) {
	hub := NewHub(testLogger())

	// Must not panic or block with nobody connected.
	hub.NotifyIndexRefreshed()
	assert.Equal(t, 0, hub.ClientCount())
}
