package websocket

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sandevgo/devterm/internal/core"
)

const (
	writeWait = 10 * time.Second
	// maxLineSize bounds one inbound command message.
	maxLineSize = 64 << 10
)

var _ core.Channel = (*conn)(nil)

// conn carries one text message per command line and per reply.
type conn struct {
	ws        *websocket.Conn
	closeOnce sync.Once
}

func newConn(ws *websocket.Conn) *conn {
	ws.SetReadLimit(maxLineSize)
	return &conn{ws: ws}
}

// ReadLine blocks until the next message; ctx is honoured through Close.
func (c *conn) ReadLine(ctx context.Context) (string, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err,
			websocket.CloseNormalClosure,
			websocket.CloseGoingAway,
			websocket.CloseNoStatusReceived,
			websocket.CloseAbnormalClosure,
		) {
			return "", io.EOF
		}
		return "", err
	}
	return string(data), nil
}

func (c *conn) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.ws.SetWriteDeadline(deadline)
	return c.ws.WriteMessage(websocket.TextMessage, []byte(text))
}

func (c *conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		err = c.ws.Close()
	})
	return err
}
