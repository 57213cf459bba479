package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sandevgo/devterm/internal/config"
	"github.com/sandevgo/devterm/internal/core"
	"github.com/sandevgo/devterm/internal/service/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, origins []string, remote core.Executor) *httptest.Server {
	t.Helper()
	cfg := &config.AppConfig{
		ReservedDeviceID: "real-san-device",
		AllowedOrigins:   origins,
	}
	server := httptest.NewServer(NewServer(cfg, gateway.New(cfg, remote)).Handler())
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, deviceID string, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/" + deviceID
	ws, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func exchange(t *testing.T, ws *websocket.Conn, line string) string {
	t.Helper()
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(line)))
	return read(t, ws)
}

func read(t *testing.T, ws *websocket.Conn) string {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	mt, data, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, mt)
	return string(data)
}

func TestServer_Status(t *testing.T) {
	server := newTestServer(t, []string{"*"}, nil)

	resp, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "devterm gateway is running.", body["message"])
}

func TestServer_SimulatedSession(t *testing.T) {
	server := newTestServer(t, []string{"*"}, nil)
	ws := dial(t, server, "sw1-edge", nil)

	assert.Equal(t, "Successfully connected to device: sw1-edge\nsw1# ", read(t, ws))
	assert.Equal(t, "\nMock 'show version' for sw1-edge\nsw1# ", exchange(t, ws, "show version"))
	assert.Equal(t, "sw1# ", exchange(t, ws, ""))
	assert.Equal(t, "\nCommand 'show clock' executed (simulated for sw1-edge).\nsw1# ", exchange(t, ws, "show clock"))
}

func TestServer_RemoteSessionSurvivesFaults(t *testing.T) {
	remote := core.ExecutorFunc(func(ctx context.Context, command string) (string, error) {
		if command == "show version" {
			return "Cisco NX-OS", nil
		}
		return "", &core.Fault{Kind: core.RemoteUnavailable, Err: context.DeadlineExceeded}
	})
	server := newTestServer(t, []string{"*"}, remote)
	ws := dial(t, server, "real-san-device", nil)

	assert.Equal(t, "Successfully connected to device: real-san-device\nnx-sandbox# ", read(t, ws))

	reply := exchange(t, ws, "show interface")
	assert.Contains(t, reply, "% NX-API Request Error")
	assert.True(t, strings.HasSuffix(reply, "nx-sandbox# "))

	assert.Equal(t, "\nCisco NX-OS\nnx-sandbox# ", exchange(t, ws, "show version"))
}

func TestServer_OriginCheck(t *testing.T) {
	server := newTestServer(t, []string{"https://ops.example.com"}, nil)
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/sw1-edge"

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example.com"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	ws := dial(t, server, "sw1-edge", http.Header{"Origin": {"https://ops.example.com"}})
	assert.Equal(t, "Successfully connected to device: sw1-edge\nsw1# ", read(t, ws))
}

func TestServer_OversizedLineEndsSession(t *testing.T) {
	server := newTestServer(t, []string{"*"}, nil)
	ws := dial(t, server, "sw1-edge", nil)
	read(t, ws)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(strings.Repeat("x", maxLineSize+1))))

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := ws.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseMessageTooBig), "got %v", err)

	// Other sessions are unaffected.
	other := dial(t, server, "sw1-edge", nil)
	read(t, other)
	assert.Equal(t, "\nMock 'show version' for sw1-edge\nsw1# ", exchange(t, other, "show version"))
}
