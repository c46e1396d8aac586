package ws

import (
	"context"
	"sync"
	"time"

	"ledger-service/internal/domain"
	"ledger-service/pkg/utils/id"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Connection wraps a websocket.Conn as a Subscriber.
type Connection struct {
	id          string
	AdminID     string
	ConnectedAt time.Time

	conn      *websocket.Conn
	writeMu   sync.Mutex
	closeOnce sync.Once
}

func NewConnection(conn *websocket.Conn, adminID string) *Connection {
	return &Connection{
		id:          id.GenerateULID("ws"),
		AdminID:     adminID,
		ConnectedAt: time.Now(),
		conn:        conn,
	}
}

func (c *Connection) ID() string {
	return c.id
}

// Send writes the event as one JSON text frame. The write deadline follows
// the context deadline when there is one.
func (c *Connection) Send(ctx context.Context, event domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.conn.WriteJSON(event)
}

// Close sends a close frame (best effort) and closes the socket. Safe to call
// more than once.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}

// ReadUntilClosed discards inbound frames until the peer disconnects or the
// read fails. No read deadline is set: an idle connection stays
// registered until it errors.
func (c *Connection) ReadUntilClosed(readLimit int64) error {
	c.conn.SetReadLimit(readLimit)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return err
		}
	}
}
