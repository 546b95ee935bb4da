package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialWatch opens a websocket against the watch endpoint of a running
// test server.
func dialWatch(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/watch?" + query
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readChange(t *testing.T, ws *websocket.Conn) string {
	t.Helper()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Topic string `json:"topic"`
	}
	require.NoError(t, ws.ReadJSON(&msg))
	return msg.Topic
}

func TestWatch_DeliversChangeFrames(t *testing.T) {
	h, hub := newTestHandler()
	srv := httptest.NewServer(h)
	defer srv.Close()

	ws := dialWatch(t, srv, "topic=trips")

	// Give the server a moment to register the hub listener.
	require.Eventually(t, func() bool {
		return hub.ListenerCount("trips") == 1
	}, time.Second, 10*time.Millisecond)

	hub.Publish("trips")

	assert.Equal(t, "trips", readChange(t, ws))
}

func TestWatch_MultipleTopics(t *testing.T) {
	h, hub := newTestHandler()
	srv := httptest.NewServer(h)
	defer srv.Close()

	ws := dialWatch(t, srv, "topic=trips&topic=other")
	require.Eventually(t, func() bool {
		return hub.ListenerCount("trips") == 1 && hub.ListenerCount("other") == 1
	}, time.Second, 10*time.Millisecond)

	hub.Publish("other")

	assert.Equal(t, "other", readChange(t, ws))
}

func TestWatch_IgnoresUnsubscribedTopics(t *testing.T) {
	h, hub := newTestHandler()
	srv := httptest.NewServer(h)
	defer srv.Close()

	ws := dialWatch(t, srv, "topic=trips")
	require.Eventually(t, func() bool {
		return hub.ListenerCount("trips") == 1
	}, time.Second, 10*time.Millisecond)

	hub.Publish("unrelated")

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var msg struct {
		Topic string `json:"topic"`
	}
	assert.Error(t, ws.ReadJSON(&msg), "no frame expected for an unsubscribed topic")
}

func TestWatch_DisconnectReleasesListeners(t *testing.T) {
	h, hub := newTestHandler()
	srv := httptest.NewServer(h)
	defer srv.Close()

	ws := dialWatch(t, srv, "topic=trips")
	require.Eventually(t, func() bool {
		return hub.ListenerCount("trips") == 1
	}, time.Second, 10*time.Millisecond)

	ws.Close()

	assert.Eventually(t, func() bool {
		return hub.ListenerCount("trips") == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatch_RequiresTopic(t *testing.T) {
	h, _ := newTestHandler()
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/watch")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}
