package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to the peer with this period.
	pingPeriod = 54 * time.Second
)

// client is one connected browser awaiting reload notifications.
type client struct {
	conn   *websocket.Conn
	send   chan []byte
	server *DevServer
}

func (s *DevServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.checkOrigin(r) {
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: false, // Always verify origin
	})
	if err != nil {
		s.logger.Warn(r.Context(), err, "WebSocket upgrade failed")
		return
	}

	c := &client{
		conn:   conn,
		send:   make(chan []byte, 16),
		server: s,
	}

	go c.writePump()
	go c.readPump()

	s.register <- c
}

// checkOrigin validates the request origin against the server address and any
// configured allowed origins.
func (s *DevServer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Reject connections without an origin header
		return false
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return false
	}

	allowed := []string{
		fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		fmt.Sprintf("localhost:%d", s.config.Server.Port),
		fmt.Sprintf("127.0.0.1:%d", s.config.Server.Port),
	}
	for _, o := range s.config.Server.AllowedOrigins {
		if o == "*" {
			return true
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			allowed = append(allowed, u.Host)
		} else {
			allowed = append(allowed, o)
		}
	}

	for _, host := range allowed {
		if originURL.Host == host {
			return true
		}
	}
	return false
}

// runHub owns the clients map: it registers, unregisters, and pings clients.
func (s *DevServer) runHub(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.closeAllClients()
			return

		case c := <-s.register:
			s.clientsMutex.Lock()
			s.clients[c.conn] = c
			count := len(s.clients)
			s.clientsMutex.Unlock()
			s.logger.Debug(ctx, "Client connected", "total", count)

		case conn := <-s.unregister:
			s.removeClient(conn, websocket.StatusNormalClosure, "")
			s.logger.Debug(ctx, "Client disconnected", "total", s.clientCount())

		case <-ticker.C:
			s.pingClients(ctx)
		}
	}
}

// broadcast queues a message for every connected client without blocking.
func (s *DevServer) broadcast(message []byte) {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()
	for _, c := range s.clients {
		select {
		case c.send <- message:
		default:
			// Slow client, drop the message
		}
	}
}

func (s *DevServer) pingClients(ctx context.Context) {
	s.clientsMutex.RLock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for conn := range s.clients {
		conns = append(conns, conn)
	}
	s.clientsMutex.RUnlock()

	for _, conn := range conns {
		pingCtx, cancel := context.WithTimeout(ctx, writeWait)
		err := conn.Ping(pingCtx)
		cancel()
		if err != nil {
			// The hub goroutine runs this, so it cannot also receive on
			// s.unregister here; remove the client inline.
			s.removeClient(conn, websocket.StatusGoingAway, "ping failed")
		}
	}
}

// removeClient drops a client from the map and closes its connection. Safe
// from any goroutine; unknown connections are a no-op.
func (s *DevServer) removeClient(conn *websocket.Conn, code websocket.StatusCode, reason string) {
	s.clientsMutex.Lock()
	c, ok := s.clients[conn]
	if ok {
		delete(s.clients, conn)
	}
	s.clientsMutex.Unlock()

	if ok {
		close(c.send)
		_ = conn.Close(code, reason)
	}
}

func (s *DevServer) clientCount() int {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()
	return len(s.clients)
}

func (s *DevServer) closeAllClients() {
	s.clientsMutex.Lock()
	defer s.clientsMutex.Unlock()
	for conn, c := range s.clients {
		close(c.send)
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		delete(s.clients, conn)
	}
}

// writePump sends queued messages to the peer until the send channel closes.
func (c *client) writePump() {
	for message := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		err := c.conn.Write(ctx, websocket.MessageText, message)
		cancel()
		if err != nil {
			return
		}
	}
}

// readPump drains incoming messages so control frames are processed, and
// unregisters the client when the connection drops.
func (c *client) readPump() {
	defer func() {
		c.server.unregister <- c.conn
	}()

	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.Read(context.Background()); err != nil {
			return
		}
	}
}
