package ws

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"nhooyr.io/websocket"
)

const (
	sendQueueDepth = 256
	pingInterval   = 20 * time.Second

	// A consumer that drops this many frames in a row (a couple of
	// seconds of snapshots) is not coming back.
	maxConsecutiveDrops = 120
)

var errConnClosed = errors.New("ws: connection closed")

// Accept upgrades HTTP to websocket (allow all origins)
func Accept(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
}

// Conn adapts one websocket to what a room wants: a queue-and-forget
// Send plus Close. The write side runs on its own goroutine so a slow
// socket never backs up into a room's tick.
type Conn struct {
	ws     *websocket.Conn
	out    chan []byte
	closed atomic.Bool
	drops  atomic.Int32
}

func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws, out: make(chan []byte, sendQueueDepth)}
}

// Send queues one frame. A full queue drops the frame silently; only a
// connection that is closed, or has been dropping for a sustained
// stretch, reports an error so the room detaches it.
func (c *Conn) Send(b []byte) error {
	if c.closed.Load() {
		return errConnClosed
	}
	select {
	case c.out <- b:
		c.drops.Store(0)
		return nil
	default:
	}
	if c.drops.Add(1) >= maxConsecutiveDrops {
		c.closed.Store(true)
		return errConnClosed
	}
	return nil
}

// Read blocks until it receives a text/binary message.
// Returns false if the connection is closed.
func (c *Conn) Read(ctx context.Context) ([]byte, bool) {
	for {
		typ, data, err := c.ws.Read(ctx)
		if err != nil {
			return nil, false
		}
		if typ == websocket.MessageText || typ == websocket.MessageBinary {
			return data, true
		}
	}
}

// WriteLoop sends outbound frames + periodic pings.
// Exits when the socket dies or ctx is cancelled.
func (c *Conn) WriteLoop(ctx context.Context) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()

	for {
		select {
		case b := <-c.out:
			if err := c.ws.Write(ctx, websocket.MessageText, b); err != nil {
				c.closed.Store(true)
				return
			}
		case <-t.C:
			if err := c.ws.Ping(ctx); err != nil {
				c.closed.Store(true)
				return
			}
		case <-ctx.Done():
			c.closed.Store(true)
			return
		}
	}
}

// Close closes the WS connection normally
func (c *Conn) Close() error {
	c.closed.Store(true)
	return c.ws.Close(websocket.StatusNormalClosure, "bye")
}
