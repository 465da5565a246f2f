package tmi

import (
	"context"
	"io"
	"time"

	"github.com/gorilla/websocket"
)

// Dial opens the default transport: a websocket connection speaking the
// "irc" subprotocol, adapted to a plain byte stream of IRC lines. It is
// what a Client uses when DialFn is nil, exported so a custom DialFn can
// wrap the real connection, e.g. with tmidebug.
func Dial(ctx context.Context, addr string) (io.ReadWriteCloser, error) {
	d := websocket.Dialer{
		Subprotocols:     []string{"irc"},
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := d.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, err
	}
	return &wsConn{conn: conn}, nil
}

// wsConn adapts a websocket connection to io.ReadWriteCloser. Each Write
// sends one websocket text frame; Read drains frames in order. Reads and
// writes are each single-goroutine, matching the client's usage.
type wsConn struct {
	conn   *websocket.Conn
	reader io.Reader
}

func (w *wsConn) Read(p []byte) (int, error) {
	for {
		if w.reader == nil {
			_, r, err := w.conn.NextReader()
			if err != nil {
				return 0, err
			}
			w.reader = r
		}
		n, err := w.reader.Read(p)
		if err == io.EOF {
			w.reader = nil
			if n == 0 {
				continue
			}
			err = nil
		}
		return n, err
	}
}

func (w *wsConn) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsConn) Close() error {
	return w.conn.Close()
}
