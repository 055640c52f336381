package websocket

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/hockeygame/internal/pipeline"
)

func startServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub()
	go hub.Run()
	srv := httptest.NewServer(NewServer(hub).Handler())
	t.Cleanup(func() {
		srv.Close()
		hub.Stop()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/pipeline"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func TestHubBroadcastsPipelineEvents(t *testing.T) {
	hub, srv := startServer(t)
	conn := dial(t, srv)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.OnPlayerStart("Steven Stamkos", 1, 2)
	event := readEvent(t, conn)
	assert.Equal(t, "player_start", event["type"])
	data := event["data"].(map[string]interface{})
	assert.Equal(t, "Steven Stamkos", data["player"])
	assert.Equal(t, float64(2), data["total"])

	hub.OnJobComplete(&pipeline.Summary{Players: 2, Failed: 1})
	event = readEvent(t, conn)
	assert.Equal(t, "job_complete", event["type"])
	assert.Equal(t, float64(2), event["data"].(map[string]interface{})["players"])

	hub.OnJobError(errors.New("boom"))
	event = readEvent(t, conn)
	assert.Equal(t, "job_error", event["type"])
	assert.Equal(t, "boom", event["data"].(map[string]interface{})["error"])
}

func TestHubDropsClosedClients(t *testing.T) {
	hub, srv := startServer(t)
	conn := dial(t, srv)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHealthReportsClientCount(t *testing.T) {
	_, srv := startServer(t)

	resp, err := http.Get(srv.URL + "/ws/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status": "healthy", "clients": 0}`, string(body))
}
