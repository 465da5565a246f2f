package tmi

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	// ErrMessageEmpty is returned by Say for an empty message.
	ErrMessageEmpty = errors.New("message is empty")

	// ErrMessageTooLong is returned by Say for a message over the chat
	// length limit of 500 characters.
	ErrMessageTooLong = errors.New("message exceeds 500 characters")
)

// sayFailureNotices are the NOTICE msg-ids that mean a sent message was
// rejected instead of delivered.
var sayFailureNotices = []string{
	NoticeUnrecognizedCmd,
	NoticeMsgDuplicate,
	NoticeMsgRatelimit,
	NoticeMsgR9k,
	NoticeMsgRejectedMandatory,
	NoticeMsgSubsOnly,
	NoticeMsgTimedOut,
	NoticeMsgBanned,
	NoticeMsgBadCharacters,
	NoticeMsgVerifiedPhone,
}

// SayOutcome reports a delivered chat message: the channel it landed in,
// the USERSTATE tags echoed back for it, and the sending identity.
type SayOutcome struct {
	Channel *Channel
	Tags    Tags
	User    Identity
}

// Join joins a chat channel and blocks until the server confirms it.
// Joining a channel the client is already in returns the existing channel
// without sending anything.
func (c *Client) Join(ctx context.Context, channel string) (*Channel, error) {
	name, err := normalizeChannel(channel)
	if err != nil {
		return nil, err
	}
	if ch, ok := c.channels.Get(name); ok {
		return ch, nil
	}
	ch := newChannel(name)
	c.channels.Set(name, ch)
	if err := c.send(Join(string(startChannel) + name)); err != nil {
		c.channels.Remove(name)
		return nil, err
	}
	if _, err := c.awaitChannelCommand(ctx, CmdJoin, name, nil, nil, 0); err != nil {
		c.channels.Remove(name)
		return nil, err
	}
	return ch, nil
}

// Part leaves a chat channel and blocks until the server confirms it.
// Parting a channel the client is not in is a no-op.
func (c *Client) Part(ctx context.Context, channel string) error {
	name, err := normalizeChannel(channel)
	if err != nil {
		return err
	}
	if _, ok := c.channels.Get(name); !ok {
		return nil
	}
	if err := c.send(Part(string(startChannel) + name)); err != nil {
		return err
	}
	_, err = c.awaitChannelCommand(ctx, CmdPart, name, nil, nil, 0)
	return err
}

// Say sends a chat message and blocks until the server echoes the
// USERSTATE for it or rejects it with a NOTICE. Rejections surface as a
// *NoticeError carrying the notice msg-id.
//
// Extra message tags, if given, are merged into the outgoing line.
func (c *Client) Say(ctx context.Context, channel, text string, extraTags ...RawTags) (SayOutcome, error) {
	tags := RawTags{}
	for _, extra := range extraTags {
		for k, v := range extra {
			tags[k] = v
		}
	}
	return c.say(ctx, channel, text, tags, false)
}

// Reply sends a chat message as a threaded reply to parentID. An empty
// parentID sends a plain message instead.
func (c *Client) Reply(ctx context.Context, channel, text, parentID string) (SayOutcome, error) {
	if parentID == "" {
		return c.Say(ctx, channel, text)
	}
	return c.say(ctx, channel, text, RawTags{"reply-parent-msg-id": parentID}, true)
}

// ReplyChain sends messages in order, each one a reply threaded under the
// first. When targetID is empty the first message starts the thread.
// It returns the outcomes of the messages delivered so far; on error the
// remaining messages are not sent.
func (c *Client) ReplyChain(ctx context.Context, channel string, messages []string, targetID string) ([]SayOutcome, error) {
	if len(messages) == 0 {
		return nil, nil
	}
	out := make([]SayOutcome, 0, len(messages))
	lastID := targetID
	i := 0
	if lastID == "" {
		o, err := c.Say(ctx, channel, messages[0])
		if err != nil {
			return out, err
		}
		out = append(out, o)
		lastID = o.Tags.String("id")
		i = 1
	}
	for ; i < len(messages); i++ {
		o, err := c.Reply(ctx, channel, messages[i], lastID)
		if err != nil {
			return out, err
		}
		out = append(out, o)
	}
	return out, nil
}

// Reply sends a threaded reply to this message.
func (e MessageEvent) Reply(ctx context.Context, text string) (SayOutcome, error) {
	return e.client.Reply(ctx, e.Channel.Name(), text, e.Message.ID)
}

func (c *Client) say(ctx context.Context, channel, text string, tags RawTags, isReply bool) (SayOutcome, error) {
	if c.Identity().IsAnonymous {
		return SayOutcome{}, ErrAnonymous
	}
	if text == "" {
		return SayOutcome{}, ErrMessageEmpty
	}
	if utf8.RuneCountInString(text) > 500 {
		return SayOutcome{}, ErrMessageTooLong
	}
	name, err := normalizeChannel(channel)
	if err != nil {
		return SayOutcome{}, err
	}

	// The nonce ties the USERSTATE echo back to this exact message, so
	// concurrent sends to the same channel each resolve their own echo.
	nonce := "tmi.js_" + uuid.NewString()
	tags["client-nonce"] = nonce

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return SayOutcome{}, err
		}
	}
	if err := c.send(Msg(string(startChannel)+name, text, tags)); err != nil {
		return SayOutcome{}, err
	}

	failures := sayFailureNotices
	if isReply {
		failures = append(append([]string(nil), failures...), NoticeInvalidParent)
	}
	m, err := c.awaitChannelCommand(ctx, CmdUserState, name, func(msg *Message) bool {
		return msg.Tags.String("clientNonce") == nonce
	}, failures, 0)
	if err != nil {
		return SayOutcome{}, err
	}
	return SayOutcome{
		Channel: c.getChannel(m),
		Tags:    m.Tags,
		User:    c.Identity(),
	}, nil
}
