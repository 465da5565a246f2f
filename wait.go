package tmi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// defaultWaitTimeout bounds how long an outbound operation waits for its
// acknowledgement from the server.
const defaultWaitTimeout = 10 * time.Second

// ErrWaitTimeout is returned when the server does not acknowledge an
// outbound operation in time. This is the expected outcome for operations
// issued against a channel that does not exist.
var ErrWaitTimeout = errors.New("timed out waiting for server reply")

// NoticeError is returned when the server rejects an outbound operation
// with a NOTICE. MsgID is the notice's msg-id tag, e.g. "msg_ratelimit".
type NoticeError struct {
	MsgID   string
	Command Command
}

func (e *NoticeError) Error() string {
	return fmt.Sprintf("received notice %q while waiting for %s", e.MsgID, e.Command)
}

// pendingWait correlates one outbound operation with the future inbound
// message that acknowledges it. Exactly one of match, failure notice, or
// timeout settles it.
type pendingWait struct {
	command        Command
	channel        string
	match          func(*Message) bool
	failureNotices []string
	done           chan waitResult
}

type waitResult struct {
	msg *Message
	err error
}

// waiter holds the pending waits of one client. Waits are added by
// outbound callers and settled by the dispatch goroutine.
type waiter struct {
	mu    sync.Mutex
	waits []*pendingWait
}

func (w *waiter) add(pw *pendingWait) {
	w.mu.Lock()
	w.waits = append(w.waits, pw)
	w.mu.Unlock()
}

func (w *waiter) remove(pw *pendingWait) {
	w.mu.Lock()
	for i, o := range w.waits {
		if o == pw {
			w.waits = append(w.waits[:i], w.waits[i+1:]...)
			break
		}
	}
	w.mu.Unlock()
}

// settle resolves every pending wait that msg matches, and fails every
// pending wait whose failure notice list contains msg's msg-id when msg is
// a NOTICE. Settled waits are removed so they can fire at most once.
func (w *waiter) settle(msg *Message) {
	w.mu.Lock()
	var kept []*pendingWait
	for _, pw := range w.waits {
		switch {
		case msg.Command.Is(CmdNotice) && pw.failsOn(msg.Tags.String("msgId")) && pw.inChannel(msg):
			pw.done <- waitResult{err: &NoticeError{
				MsgID:   msg.Tags.String("msgId"),
				Command: pw.command,
			}}
		case msg.Command.Is(pw.command) && (pw.match == nil || pw.match(msg)):
			pw.done <- waitResult{msg: msg}
		default:
			kept = append(kept, pw)
		}
	}
	w.waits = kept
	w.mu.Unlock()
}

// inChannel reports whether msg is scoped to the wait's channel. Waits
// with no channel accept any scope.
func (pw *pendingWait) inChannel(msg *Message) bool {
	if pw.channel == "" {
		return true
	}
	name, err := normalizeChannel(msg.Channel)
	return err == nil && name == pw.channel
}

func (pw *pendingWait) failsOn(msgID string) bool {
	for _, code := range pw.failureNotices {
		if code == msgID {
			return true
		}
	}
	return false
}

// awaitCommand blocks until a message with the given command satisfies
// match, a NOTICE carrying one of failureNotices arrives, the timeout
// elapses, or ctx is canceled. A timeout of 0 uses defaultWaitTimeout.
func (c *Client) awaitCommand(ctx context.Context, command Command, match func(*Message) bool, failureNotices []string, timeout time.Duration) (*Message, error) {
	return c.await(ctx, command, "", match, failureNotices, timeout)
}

func (c *Client) await(ctx context.Context, command Command, channel string, match func(*Message) bool, failureNotices []string, timeout time.Duration) (*Message, error) {
	if timeout <= 0 {
		timeout = defaultWaitTimeout
	}
	command.normalize()
	pw := &pendingWait{
		command:        command,
		channel:        channel,
		match:          match,
		failureNotices: failureNotices,
		done:           make(chan waitResult, 1),
	}
	c.waits.add(pw)
	defer c.waits.remove(pw)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-pw.done:
		return res.msg, res.err
	case <-timer.C:
		return nil, fmt.Errorf("%w: %s", ErrWaitTimeout, command)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// awaitChannelCommand is awaitCommand restricted to messages scoped to the
// given normalized channel. Messages without a channel never match.
func (c *Client) awaitChannelCommand(ctx context.Context, command Command, channel string, match func(*Message) bool, failureNotices []string, timeout time.Duration) (*Message, error) {
	return c.await(ctx, command, channel, func(msg *Message) bool {
		if msg.Channel == "" {
			return false
		}
		name, err := normalizeChannel(msg.Channel)
		if err != nil || name != channel {
			return false
		}
		return match == nil || match(msg)
	}, failureNotices, timeout)
}
