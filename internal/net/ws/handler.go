package ws

import (
	"context"
	"errors"
	nethttp "net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/evymii/ard-arena/internal/session"
	"github.com/evymii/ard-arena/internal/telemetry"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 1 << 16
)

var (
	ErrConnClosed     = errors.New("ws: connection closed")
	ErrSendBufferFull = errors.New("ws: send buffer full")
)

type HandlerConfig struct {
	Logger telemetry.Logger
	// SendBuffer is the number of outbound messages queued per peer.
	SendBuffer int
}

// Handler upgrades relay connections and feeds their messages to a session
// registry.
type Handler struct {
	registry   *session.Registry
	logger     telemetry.Logger
	sendBuffer int
	upgrader   websocket.Upgrader
}

func NewHandler(registry *session.Registry, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(nil)
	}
	buffer := cfg.SendBuffer
	if buffer <= 0 {
		buffer = 64
	}
	return &Handler{
		registry:   registry,
		logger:     logger,
		sendBuffer: buffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *nethttp.Request) bool {
				return true
			},
		},
	}
}

func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed from %s: %v", r.RemoteAddr, err)
		return
	}
	h.Serve(r.Context(), conn)
}

// Serve runs the read loop for one peer until its connection ends, then
// removes the peer from the registry.
func (h *Handler) Serve(ctx context.Context, conn *websocket.Conn) {
	pc := newPeerConn(conn, h.sendBuffer)
	peer := h.registry.Connect(pc)
	go pc.writePump()
	defer func() {
		h.registry.Disconnect(context.WithoutCancel(ctx), peer)
		_ = pc.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Printf("peer %s read: %v", peer.ID, err)
			}
			return
		}
		if err := h.registry.Handle(ctx, peer, payload); err != nil {
			h.logger.Printf("peer %s: %v", peer.ID, err)
		}
	}
}

// peerConn queues outbound messages for a single writer goroutine.
type peerConn struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newPeerConn(conn *websocket.Conn, buffer int) *peerConn {
	return &peerConn{
		conn: conn,
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

func (c *peerConn) Send(msg []byte) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}
	select {
	case c.send <- msg:
		return nil
	case <-c.done:
		return ErrConnClosed
	default:
		return ErrSendBufferFull
	}
}

// Close asks the writer to flush queued messages, send a close frame and
// drop the connection. It is safe to call more than once.
func (c *peerConn) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

func (c *peerConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				_ = c.Close()
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}
		case <-c.done:
			c.flush()
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *peerConn) flush() {
	for {
		select {
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *peerConn) write(messageType int, data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}
