package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hirfa/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, hub *Hub, userID string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewClient(hub, conn, userID, logger.Discard()).Serve()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForConnections(t *testing.T, hub *Hub, userID string, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Connections(userID) == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_PublishReachesEveryConnectionOfUser(t *testing.T) {
	hub := NewHub(logger.Discard())
	srv := newTestServer(t, hub, "user-1")

	a := dial(t, srv)
	b := dial(t, srv)
	waitForConnections(t, hub, "user-1", 2)

	require.NoError(t, hub.Publish(context.Background(), "user-1", TypeNotification, map[string]string{"title": "Booking confirmed"}))

	for _, conn := range []*websocket.Conn{a, b} {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg struct {
			Type    string            `json:"type"`
			Payload map[string]string `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, TypeNotification, msg.Type)
		assert.Equal(t, "Booking confirmed", msg.Payload["title"])
	}
}

func TestHub_PublishToOfflineUserIsNoop(t *testing.T) {
	hub := NewHub(logger.Discard())
	assert.NoError(t, hub.Publish(context.Background(), "nobody", TypeNotification, "x"))
	assert.Equal(t, 0, hub.Connections("nobody"))
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	hub := NewHub(logger.Discard())
	srv := newTestServer(t, hub, "user-2")

	conn := dial(t, srv)
	waitForConnections(t, hub, "user-2", 1)

	require.NoError(t, conn.Close())
	waitForConnections(t, hub, "user-2", 0)
}

func TestHub_CloseRefusesNewClients(t *testing.T) {
	hub := NewHub(logger.Discard())
	hub.Close()

	c := &Client{ID: "c1", UserID: "u", send: make(chan []byte, 1)}
	assert.False(t, hub.Register(c))
}

func TestRedisRelay_DispatchDeliversToLocalHub(t *testing.T) {
	hub := NewHub(logger.Discard())
	c := &Client{ID: "c1", UserID: "user-3", send: make(chan []byte, 1)}
	require.True(t, hub.Register(c))

	relay := NewRedisRelay(nil, "hirfa:notifications", hub, logger.Discard())
	raw, err := json.Marshal(envelope{
		UserID:  "user-3",
		Message: Message{Type: TypeNotification, Payload: "hello", Timestamp: time.Now()},
	})
	require.NoError(t, err)

	relay.dispatch(string(raw))
	relay.dispatch("{broken")

	select {
	case data := <-c.send:
		assert.Contains(t, string(data), `"payload":"hello"`)
	default:
		t.Fatal("expected a delivered frame")
	}
	assert.Empty(t, c.send)
}
