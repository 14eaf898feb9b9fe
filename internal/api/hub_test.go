package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pointshade/server/internal/viewer"
	"github.com/pointshade/server/pkg/colormap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) messageOut {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var m messageOut
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

func TestHubBroadcastsRedraws(t *testing.T) {
	reg := colormap.NewRegistry()
	hub := NewHub(reg, nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dialHub(t, srv)

	hello := readMessage(t, conn)
	assert.Equal(t, KindHello, hello.Kind)
	payload, ok := hello.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, payload["id"])
	assert.Equal(t, "jet", payload["palette"])

	require.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	v := viewer.New(reg, hub)
	v.SetPalette(colormap.KindSummer)

	geometry := readMessage(t, conn)
	assert.Equal(t, KindGeometry, geometry.Kind)
	assert.Equal(t, "summer", geometry.Payload.(map[string]interface{})["palette"])

	render := readMessage(t, conn)
	assert.Equal(t, KindRender, render.Kind)
}

func TestHubForgetsClosedClients(t *testing.T) {
	hub := NewHub(colormap.NewRegistry(), []string{"*"})
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dialHub(t, srv)
	readMessage(t, conn)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubRejectsForeignOrigin(t *testing.T) {
	hub := NewHub(colormap.NewRegistry(), []string{"http://allowed.example"})
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := map[string][]string{"Origin": {"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)
}
