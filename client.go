package tmi

import (
	"bufio"
	"bytes"
	"context"
	"encoding"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	"golang.org/x/time/rate"
)

var (
	// ErrNotConnected is returned by outbound operations issued while the
	// client has no connection.
	ErrNotConnected = errors.New("not connected")

	// ErrAlreadyConnected is returned by Connect when the client is
	// already running.
	ErrAlreadyConnected = errors.New("already connected")

	errPingTimeout = errors.New("ping timeout")
)

const (
	// keepaliveInterval is how often the client pings the server.
	keepaliveInterval = 60 * time.Second

	// pongTimeout is how long the client waits for the reply to a
	// keepalive ping before closing the connection.
	pongTimeout = 10 * time.Second
)

// DialFn opens the transport connection for a client. The returned
// connection must carry a stream of CRLF-delimited IRC lines.
type DialFn func(ctx context.Context) (io.ReadWriteCloser, error)

// A Client manages a connection to a Twitch chat server.
// It reads IRC lines from the connection, parses each into a Message, and
// fans the result out to the registered event callbacks.
//
// Create a Client with NewClient, configure the exported fields, register
// callbacks, and call Connect. Callbacks run on the client's read
// goroutine in arrival order; a callback that blocks stalls all dispatch,
// so hand long work to another goroutine.
type Client struct {

	// Addr is the websocket address of the chat server. Defaults to
	// DefaultServerAddr. Only used when DialFn is nil.
	Addr string

	// Token authenticates the connection. A nil Token connects
	// anonymously, which is read-only.
	Token *Token

	// InitialChannels are joined after each successful login.
	InitialChannels []string

	// DialFn overrides how the transport connection is opened.
	//
	// The returned connection can be any io.ReadWriteCloser: a websocket
	// adapter, a plain TCP connection, a server mock, etc. The only
	// requirement is that the stream consists of CRLF-delimited IRC
	// lines. When DialFn is nil, the default dials Addr over websocket.
	DialFn DialFn

	// Logger receives the client's structured log output.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	handlers eventHandlers
	waits    waiter

	channels cmap.ConcurrentMap[string, *Channel]

	pendingMu       sync.Mutex
	pendingChannels map[string]struct{}

	mu        sync.Mutex
	conn      io.ReadWriteCloser
	connected bool
	identity  Identity

	writeMu sync.Mutex

	keepalive keepalive

	// limiter paces outbound chat messages to the Twitch flood limit.
	limiter *rate.Limiter

	reconnecting atomic.Bool

	// errC is a buffered channel of errors, one per session.
	// Only the first error sent to the channel will be used.
	errC chan error
}

// NewClient returns a Client ready to configure and connect.
func NewClient() *Client {
	return &Client{
		channels:        cmap.New[*Channel](),
		pendingChannels: make(map[string]struct{}),
		// 20 messages per 30 seconds, the limit for regular users.
		limiter: rate.NewLimiter(rate.Every(1500*time.Millisecond), 20),
	}
}

// Connect dials the chat server, logs in, and runs the read loop until
// ctx is canceled or the connection fails. A server-initiated RECONNECT
// makes Connect drop the connection and dial again; channel membership is
// requeued and rejoined after the new login.
//
// Connect blocks for the life of the connection. It returns nil only when
// ctx ended the session.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.mu.Unlock()

	for _, name := range c.InitialChannels {
		if n, err := normalizeChannel(name); err == nil {
			c.addPending(n)
		}
	}

	for {
		err := c.runSession(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if c.reconnecting.CompareAndSwap(true, false) {
			c.logger().Info("reconnecting")
			continue
		}
		return err
	}
}

func (c *Client) runSession(ctx context.Context) error {
	dial := c.DialFn
	if dial == nil {
		addr := c.Addr
		if addr == "" {
			addr = DefaultServerAddr
		}
		dial = func(ctx context.Context) (io.ReadWriteCloser, error) {
			return Dial(ctx, addr)
		}
	}

	conn, err := dial(ctx)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.identity = Identity{IsAnonymous: c.token().IsAnonymous()}
	c.mu.Unlock()
	c.errC = make(chan error, 1)

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	lines := c.startReading(&wg, conn)

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.keepaliveLoop(sessionCtx)
	}()

	// Closing the connection is the only way to break the read loop.
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-sessionCtx.Done()
		_ = conn.Close()
	}()

	if err := c.login(ctx); err != nil {
		c.exit(err)
	}

	for l := range lines {
		m := new(Message)
		if err := m.UnmarshalText(l); err != nil {
			// A parse error might be caused by a malformed line from the
			// server or a bug in our parser. Both cases are interesting
			// but not a reason for the client to exit.
			c.logger().Warn("parse error", "error", err, "line", string(l))
			continue
		}
		c.dispatch(m, time.Now())
	}

	cancel()
	c.teardown()
	wg.Wait()

	select {
	case err = <-c.errC:
	default:
		err = nil
	}
	if errors.Is(err, io.EOF) {
		return errors.New("connection closed by server")
	}
	return err
}

// login performs capability negotiation and authentication. Twitch
// assigns the final nickname from the token; the NICK value only matters
// for anonymous connections, which use a justinfan account.
func (c *Client) login(ctx context.Context) error {
	c.WriteMessage(CapReq("twitch.tv/commands twitch.tv/tags"))
	pass, err := c.token().formatIRC(ctx)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	c.WriteMessage(Pass(pass))
	nick := "justinfan"
	if c.token().IsAnonymous() {
		nick = "justinfan123456"
	}
	c.WriteMessage(Nick(nick))
	return nil
}

func (c *Client) startReading(wg *sync.WaitGroup, conn io.Reader) <-chan []byte {
	lines := make(chan []byte)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(lines)

		s := bufio.NewScanner(conn)
		for s.Scan() {
			l := bytes.TrimSpace(s.Bytes())
			if len(l) == 0 {
				continue
			}
			lines <- append([]byte(nil), l...)
		}
		if err := s.Err(); err != nil {
			c.exit(err)
		} else {
			// scanner.Err() returns nil when the reader error was EOF.
			c.exit(io.EOF)
		}
	}()
	return lines
}

// exit requests the session to end and report err. Only the first such
// error is kept; any successive calls drop theirs.
func (c *Client) exit(err error) {
	select {
	case c.errC <- err:
	default:
	}
	c.closeConn()
}

// teardown invalidates channel membership after a session ends. Channel
// names are queued so the next login rejoins them.
func (c *Client) teardown() {
	c.mu.Lock()
	c.connected = false
	c.conn = nil
	c.mu.Unlock()

	for item := range c.channels.IterBuffered() {
		item.Val.setJoined(false)
		c.addPending(item.Val.Name())
	}
	c.channels.Clear()
	c.keepalive.reset()
}

// WriteMessage implements MessageWriter. It writes m to the client's
// connection. Marshaling problems are logged; write errors end the
// session with the first error.
func (c *Client) WriteMessage(m encoding.TextMarshaler) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		c.logger().Warn("write on closed connection")
		return
	}

	b, err := m.MarshalText()
	if err != nil {
		if !errors.Is(err, warnTruncate) {
			c.logger().Error("marshal message", "error", err)
			return
		}
		c.logger().Warn("message may be truncated", "error", err)
	}
	if !bytes.HasSuffix(b, []byte("\r\n")) {
		b = append(b, "\r\n"...)
	}

	c.writeMu.Lock()
	_, err = conn.Write(b)
	c.writeMu.Unlock()
	if err != nil {
		c.exit(err)
	}
}

func (c *Client) writeMessage(m *Message) {
	c.WriteMessage(m)
}

// send writes m if the client is connected.
func (c *Client) send(m *Message) error {
	c.mu.Lock()
	connected := c.connected
	c.mu.Unlock()
	if !connected {
		return ErrNotConnected
	}
	c.WriteMessage(m)
	return nil
}

// Identity returns the identity of the connected account. Nick is empty
// until the server confirms the login.
func (c *Client) Identity() Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

func (c *Client) setNick(nick string) Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identity.Nick = nick
	return c.identity
}

// GetChannel returns the registered channel with the given name, which is
// normalized first.
func (c *Client) GetChannel(name string) (*Channel, bool) {
	n, err := normalizeChannel(name)
	if err != nil {
		return nil, false
	}
	return c.channels.Get(n)
}

// Channels returns the currently registered channels.
func (c *Client) Channels() []*Channel {
	out := make([]*Channel, 0, c.channels.Count())
	for item := range c.channels.IterBuffered() {
		out = append(out, item.Val)
	}
	return out
}

func (c *Client) addPending(name string) {
	c.pendingMu.Lock()
	c.pendingChannels[name] = struct{}{}
	c.pendingMu.Unlock()
}

// joinPendingChannels joins every queued channel name, removing each from
// the queue once its join is confirmed. Runs on its own goroutine because
// Join blocks on the server's echo.
func (c *Client) joinPendingChannels() {
	c.pendingMu.Lock()
	names := make([]string, 0, len(c.pendingChannels))
	for name := range c.pendingChannels {
		names = append(names, name)
	}
	c.pendingMu.Unlock()
	sort.Strings(names)

	for _, name := range names {
		if _, err := c.Join(context.Background(), name); err != nil {
			c.logger().Warn("join failed", "channel", name, "error", err)
			continue
		}
		c.pendingMu.Lock()
		delete(c.pendingChannels, name)
		c.pendingMu.Unlock()
	}
}

func (c *Client) token() *Token {
	if c.Token == nil {
		c.Token = NewToken("")
	}
	return c.Token
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// requestReconnect flags the session loop to dial again and drops the
// current connection.
func (c *Client) requestReconnect() {
	c.reconnecting.Store(true)
	c.closeConn()
}

func (c *Client) closeConn() {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

// keepalive tracks the state of the ping/pong liveness check.
type keepalive struct {
	mu          sync.Mutex
	lastPingOut time.Time
	pongTimer   *time.Timer
	latency     time.Duration
}

func (k *keepalive) reset() {
	k.mu.Lock()
	if k.pongTimer != nil {
		k.pongTimer.Stop()
		k.pongTimer = nil
	}
	k.lastPingOut = time.Time{}
	k.latency = 0
	k.mu.Unlock()
}

// keepaliveLoop pings the server on a fixed interval and arms a deadline
// for each reply. A missed deadline closes the connection; it does not
// trigger a reconnect on its own.
func (c *Client) keepaliveLoop(ctx context.Context) {
	t := time.NewTicker(keepaliveInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			c.keepalive.reset()
			return
		case <-t.C:
			k := &c.keepalive
			k.mu.Lock()
			k.lastPingOut = time.Now()
			if k.pongTimer != nil {
				k.pongTimer.Stop()
			}
			k.pongTimer = time.AfterFunc(pongTimeout, func() {
				c.logger().Error("ping timeout")
				c.exit(errPingTimeout)
			})
			k.mu.Unlock()
			c.WriteMessage(Ping(pingPayload))
		}
	}
}

// onPong cancels the armed keepalive deadline and records the round trip.
func (c *Client) onPong(now time.Time) {
	k := &c.keepalive
	k.mu.Lock()
	if k.lastPingOut.IsZero() {
		k.mu.Unlock()
		c.logger().Warn("received PONG before sending PING")
		return
	}
	if k.pongTimer != nil {
		k.pongTimer.Stop()
		k.pongTimer = nil
	}
	k.latency = now.Sub(k.lastPingOut)
	latency := k.latency
	k.mu.Unlock()
	emit(&c.handlers, &c.handlers.pong, latency)
}

// Latency returns the round-trip time of the last keepalive ping, or 0
// if none has completed on the current connection.
func (c *Client) Latency() time.Duration {
	c.keepalive.mu.Lock()
	defer c.keepalive.mu.Unlock()
	return c.keepalive.latency
}
