package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// acceptOneConn upgrades a single WebSocket connection and hands the server
// side to the test.
func acceptOneConn(t *testing.T) (*httptest.Server, chan *websocket.Conn) {
	t.Helper()

	connCh := make(chan *websocket.Conn, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		connCh <- conn
	}))
	t.Cleanup(ts.Close)
	return ts, connCh
}

func TestPingClientsRemovesDeadClient(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	ts, connCh := acceptOneConn(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	clientConn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	require.NoError(t, err)
	defer clientConn.Close(websocket.StatusNormalClosure, "")

	serverConn := <-connCh
	require.NoError(t, serverConn.Close(websocket.StatusNormalClosure, ""))

	s.clientsMutex.Lock()
	s.clients[serverConn] = &client{conn: serverConn, send: make(chan []byte, 1), server: s}
	s.clientsMutex.Unlock()

	// Nothing services s.unregister here, exactly as when the hub goroutine
	// itself runs the ping sweep; removal must complete regardless.
	done := make(chan struct{})
	go func() {
		s.pingClients(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("pingClients did not return after a failed ping")
	}
	assert.Equal(t, 0, s.clientCount())
}

func TestRemoveClient(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	ts, connCh := acceptOneConn(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	clientConn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	require.NoError(t, err)
	defer clientConn.Close(websocket.StatusNormalClosure, "")

	serverConn := <-connCh
	c := &client{conn: serverConn, send: make(chan []byte, 1), server: s}
	s.clientsMutex.Lock()
	s.clients[serverConn] = c
	s.clientsMutex.Unlock()

	s.removeClient(serverConn, websocket.StatusNormalClosure, "")
	assert.Equal(t, 0, s.clientCount())

	_, open := <-c.send
	assert.False(t, open, "send channel closes so writePump exits")

	// Unknown connections are a no-op
	s.removeClient(serverConn, websocket.StatusNormalClosure, "")
	assert.Equal(t, 0, s.clientCount())
}

func TestBroadcastSkipsSlowClients(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	send := make(chan []byte, 1)
	send <- []byte("stale") // buffer full, nothing draining it
	s.clientsMutex.Lock()
	s.clients[nil] = &client{send: send}
	s.clientsMutex.Unlock()

	done := make(chan struct{})
	go func() {
		s.broadcast([]byte(`{"type":"reload"}`))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow client")
	}
	assert.Equal(t, "stale", string(<-send))
}
