/*
Package tmidebug contains helper functions that are useful while
developing a chat client.
*/
package tmidebug

import (
	"io"
	"sync"
)

// WriteTo returns a new io.ReadWriteCloser that copies all traffic on
// rwc to w. Received data is prefixed with inPrefix and sent data with
// outPrefix. This is mainly useful while developing a chat bot,
// e.g. for writing to os.Stdout or a file:
//
//	client.DialFn = func(ctx context.Context) (io.ReadWriteCloser, error) {
//		conn, err := dial(ctx)
//		return tmidebug.WriteTo(os.Stdout, conn, "-> ", "<- "), err
//	}
//
// Copies to w are serialized, so sends and receives never interleave
// mid-line, but their relative order is whatever order the goroutines
// touched the connection.
func WriteTo(w io.Writer, rwc io.ReadWriteCloser, outPrefix string, inPrefix string) io.ReadWriteCloser {
	dc := &debugConn{conn: rwc}
	dc.in = &prefixWriter{w: w, mu: &dc.mu, prefix: inPrefix}
	dc.out = &prefixWriter{w: w, mu: &dc.mu, prefix: outPrefix}
	return dc
}

type debugConn struct {
	conn io.ReadWriteCloser
	mu   sync.Mutex
	in   *prefixWriter
	out  *prefixWriter
}

func (dc *debugConn) Read(p []byte) (int, error) {
	n, err := dc.conn.Read(p)
	if n > 0 {
		dc.in.Write(p[:n])
	}
	return n, err
}

func (dc *debugConn) Write(p []byte) (int, error) {
	n, err := dc.conn.Write(p)
	if n > 0 {
		dc.out.Write(p[:n])
	}
	return n, err
}

func (dc *debugConn) Close() error {
	return dc.conn.Close()
}

// prefixWriter copies chunks to w with a prefix. Write errors are
// swallowed; losing debug output should never affect the connection.
type prefixWriter struct {
	w      io.Writer
	mu     *sync.Mutex
	prefix string
}

func (pw *prefixWriter) Write(p []byte) (int, error) {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	b := make([]byte, 0, len(pw.prefix)+len(p))
	b = append(b, pw.prefix...)
	b = append(b, p...)
	_, _ = pw.w.Write(b)
	return len(p), nil
}
