package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"greenlight/approval-portal/approval-portal-backend/internal/notifications"
)

func newManagerServer(m *Manager) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.HandleConnection(w, r)
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestManagerBroadcastsToConnectedClients(t *testing.T) {
	m := NewManager(zap.NewNop())
	defer m.Stop()

	srv := newManagerServer(m)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.Close()

	// registration happens on the hub goroutine
	time.Sleep(50 * time.Millisecond)

	m.Broadcast(notifications.Message{Type: notifications.TypeProjectCreated, Timestamp: time.Now()})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg notifications.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, notifications.TypeProjectCreated, msg.Type)
}

func TestManagerStopDoesNotBlockConnectionTeardown(t *testing.T) {
	m := NewManager(zap.NewNop())

	srv := newManagerServer(m)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	m.Stop()

	// Closing a live connection after shutdown must let its pumps exit
	// instead of hanging on the dead hub.
	conn.Close()

	// A connect attempt after shutdown returns promptly as well.
	done := make(chan struct{})
	go func() {
		c, _, dialErr := websocket.DefaultDialer.Dial(wsURL(srv), nil)
		if dialErr == nil {
			c.Close()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("connection attempt blocked after shutdown")
	}
}
