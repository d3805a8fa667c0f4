package ws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/evymii/ard-arena/internal/net/proto"
)

// Client is a relay connection from a game process. Inbound envelopes arrive
// on Incoming, which is closed when the connection ends.
type Client struct {
	conn     *websocket.Conn
	incoming chan proto.Envelope
	done     chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// Dial connects to the relay at url, for example ws://host:55555/ws.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("ws: dial %s: %w", url, err)
	}
	c := &Client{
		conn:     conn,
		incoming: make(chan proto.Envelope, 64),
		done:     make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) Incoming() <-chan proto.Envelope {
	return c.incoming
}

// Send encodes payload under message type t and writes it.
func (c *Client) Send(t string, payload any) error {
	data, err := proto.Encode(t, payload)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func (c *Client) readLoop() {
	defer close(c.incoming)
	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		env, err := proto.DecodeEnvelope(payload)
		if err != nil {
			continue
		}
		select {
		case c.incoming <- env:
		case <-c.done:
			return
		}
	}
}
