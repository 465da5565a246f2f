package tmi

import (
	"strings"
	"time"
)

// dispatch processes one parsed inbound message. It runs on the read
// goroutine, so all events derived from one line fire in a fixed order:
// the any-message callbacks, then the per-command callbacks, then command
// handling with its derived events, and finally pending-wait settlement.
// Registry updates therefore land before the narrow events and before any
// blocked outbound operation resumes.
func (c *Client) dispatch(msg *Message, now time.Time) {
	emit(&c.handlers, &c.handlers.anyMessage, msg)
	if len(msg.UnknownTags) > 0 {
		c.logger().Debug("unknown tags", "raw", msg.Raw)
	}

	c.handlers.mu.RLock()
	fns := c.handlers.command[msg.Command]
	c.handlers.mu.RUnlock()
	for _, fn := range fns {
		fn(msg)
	}

	switch {
	case msg.Command.Is(CmdCap):
		if strings.Contains(msg.Raw, " * ACK :") {
			c.logger().Debug("capability acknowledged")
		} else {
			c.unhandled(msg)
		}

	case msg.Command.Is(CmdPing):
		c.writeMessage(Pong(msg.Params.Get(1)))

	case msg.Command.Is(CmdPong):
		c.onPong(now)

	case msg.Command.Is(CmdJoin):
		c.onJoin(msg)

	case msg.Command.Is(CmdPart):
		c.onPart(msg)

	case msg.Command.Is(CmdGlobalUserState):
		c.onGlobalUserState(msg)

	case msg.Command.Is(CmdUserState):
		// Observed only by pending waits for send acknowledgement.

	case msg.Command.Is(CmdRoomState):
		c.onRoomState(msg)

	case msg.Command.Is(CmdNotice):
		c.onNotice(msg)

	case msg.Command.Is(CmdUserNotice):
		c.onUserNotice(msg)

	case msg.Command.Is(CmdPrivmsg):
		c.onPrivmsg(msg)

	case msg.Command.Is(CmdClearMsg):
		c.onClearMsg(msg)

	case msg.Command.Is(CmdClearChat):
		c.onClearChat(msg)

	case msg.Command.Is(CmdReconnect):
		c.logger().Info("server requested reconnect")
		c.requestReconnect()

	case msg.Command.Is(RplWelcome):
		c.onWelcome(msg)

	case isIgnoredNumeric(msg.Command):
		c.logger().Debug("ignoring command", "command", msg.Command.String())
		emit(&c.handlers, &c.handlers.ignored, msg)

	case msg.Command.Is(RplErrUnknownCommand):
		c.logger().Warn("server rejected command", "raw", msg.Raw)
		c.unhandled(msg)

	default:
		c.unhandled(msg)
	}

	c.waits.settle(msg)
}

// isIgnoredNumeric reports whether the command is part of the welcome
// burst, which carries nothing worth acting on.
func isIgnoredNumeric(cmd Command) bool {
	switch cmd.String() {
	case RplYourHost, RplCreated, RplMyInfo,
		RplNamReply, RplEndOfNames,
		RplMOTD, RplMOTDStart, RplEndOfMOTD:
		return true
	}
	return false
}

func (c *Client) unhandled(msg *Message) {
	c.logger().Warn("unhandled command", "command", msg.Command.String(), "raw", msg.Raw)
	emit(&c.handlers, &c.handlers.unhandled, msg)
}

// getChannel resolves a message's channel against the registry, or builds
// a temporary unregistered channel for rooms the client never joined.
func (c *Client) getChannel(msg *Message) *Channel {
	name, err := normalizeChannel(msg.Channel)
	if err != nil {
		name = ""
	}
	if ch, ok := c.channels.Get(name); ok {
		return ch
	}
	ch := newChannel(name)
	ch.temporary = true
	ch.id = msg.Tags.String("roomId")
	return ch
}

// onWelcome handles 001: the server confirms the login and assigns the
// final nickname. The rest of the welcome burst is ignored.
func (c *Client) onWelcome(msg *Message) {
	id := c.setNick(msg.Params.Get(1))
	c.logger().Info("logged in", "nick", id.Nick)
	emit(&c.handlers, &c.handlers.identity, id)
	go c.joinPendingChannels()
	emit(&c.handlers, &c.handlers.ignored, msg)
}

func (c *Client) onJoin(msg *Message) {
	ch := c.getChannel(msg)
	ch.setJoined(true)
	emit(&c.handlers, &c.handlers.join, MembershipEvent{
		Channel:  ch,
		User:     msg.Source.Nick.String(),
		IsClient: msg.Source.Nick.Is(c.Identity().Nick),
	})
}

func (c *Client) onPart(msg *Message) {
	ch := c.getChannel(msg)
	isClient := msg.Source.Nick.Is(c.Identity().Nick)
	if isClient {
		ch.setJoined(false)
		c.channels.Remove(ch.Name())
	}
	emit(&c.handlers, &c.handlers.part, MembershipEvent{
		Channel:  ch,
		User:     msg.Source.Nick.String(),
		IsClient: isClient,
	})
}

func (c *Client) onGlobalUserState(msg *Message) {
	c.mu.Lock()
	if !c.identity.IsAnonymous {
		c.identity.UserID = msg.Tags.String("userId")
		c.identity.Color = msg.Tags.String("color")
	}
	c.mu.Unlock()
}

func (c *Client) onRoomState(msg *Message) {
	ch := c.getChannel(msg)
	ch.setJoined(true)
	state, initial := ch.mergeRoomState(msg.Tags)

	var change RoomStateChange
	if msg.Tags.Has("emoteOnly") {
		v := msg.Tags.Bool("emoteOnly")
		change.EmoteOnly = &v
	}
	if msg.Tags.Has("followersOnly") {
		v := msg.Tags.Int("followersOnly")
		change.FollowersOnly = &v
	}
	if msg.Tags.Has("r9k") {
		v := msg.Tags.Bool("r9k")
		change.R9k = &v
	}
	if msg.Tags.Has("slow") {
		v := msg.Tags.Int("slow")
		change.Slow = &v
	}
	if msg.Tags.Has("subsOnly") {
		v := msg.Tags.Bool("subsOnly")
		change.SubsOnly = &v
	}

	emit(&c.handlers, &c.handlers.roomState, RoomStateEvent{
		Channel:   ch,
		State:     state,
		Change:    change,
		IsInitial: initial,
	})
	if initial {
		return
	}
	if change.EmoteOnly != nil {
		emit(&c.handlers, &c.handlers.emoteOnly, ModeEvent{
			Channel:   ch,
			IsEnabled: *change.EmoteOnly,
		})
	}
	if change.FollowersOnly != nil {
		emit(&c.handlers, &c.handlers.followersOnly, DurationModeEvent{
			Channel:   ch,
			IsEnabled: *change.FollowersOnly != -1,
			Value:     *change.FollowersOnly,
		})
	}
	if change.R9k != nil {
		emit(&c.handlers, &c.handlers.uniqueMode, ModeEvent{
			Channel:   ch,
			IsEnabled: *change.R9k,
		})
	}
	if change.Slow != nil {
		emit(&c.handlers, &c.handlers.slowMode, DurationModeEvent{
			Channel:   ch,
			IsEnabled: *change.Slow != 0,
			Value:     *change.Slow,
		})
	}
	if change.SubsOnly != nil {
		emit(&c.handlers, &c.handlers.subsOnly, ModeEvent{
			Channel:   ch,
			IsEnabled: *change.SubsOnly,
		})
	}
}

func (c *Client) onNotice(msg *Message) {
	switch msg.Tags.String("msgId") {
	case NoticeEmoteOnlyOn, NoticeEmoteOnlyOff,
		NoticeFollowersOnZero, NoticeFollowersOn, NoticeFollowersOff,
		NoticeSlowOn, NoticeSlowOff,
		NoticeSubsOn, NoticeSubsOff,
		NoticeR9kOn, NoticeR9kOff:
		// Confirmed by the ROOMSTATE update that accompanies the notice.
		return
	}

	// ':tmi.twitch.tv NOTICE * :Login unsuccessful'
	// ':tmi.twitch.tv NOTICE * :Login authentication failed'
	switch msg.Params.Get(2) {
	case "Login unsuccessful", "Login authentication failed":
		c.logger().Error("login failed", "reason", msg.Params.Get(2))
	default:
		c.unhandled(msg)
	}
}

func (c *Client) onClearMsg(msg *Message) {
	emit(&c.handlers, &c.handlers.deleteMessage, DeleteMessageEvent{
		Channel:   c.getChannel(msg),
		User:      msg.Tags.String("login"),
		MessageID: msg.Tags.String("targetMsgId"),
		Text:      msg.Params.Get(1),
		Timestamp: tagTime(msg.Tags, "tmiSentTs"),
	})
}

// onClearChat branches three ways: no target user means the whole chat was
// cleared, a target without a duration is a ban, and a target with a
// duration is a timeout.
func (c *Client) onClearChat(msg *Message) {
	ch := c.getChannel(msg)
	ts := tagTime(msg.Tags, "tmiSentTs")
	name := msg.Params.Get(1)
	switch {
	case len(msg.Params) == 0:
		emit(&c.handlers, &c.handlers.chatCleared, ChatClearedEvent{
			Channel:   ch,
			Timestamp: ts,
			Tags:      msg.Tags,
		})
	case !msg.Tags.Has("banDuration"):
		emit(&c.handlers, &c.handlers.ban, BanEvent{
			Channel:   ch,
			UserID:    msg.Tags.String("targetUserId"),
			UserName:  name,
			Timestamp: ts,
			Tags:      msg.Tags,
		})
	default:
		emit(&c.handlers, &c.handlers.timeout, TimeoutEvent{
			Channel:   ch,
			UserID:    msg.Tags.String("targetUserId"),
			UserName:  name,
			Duration:  time.Duration(msg.Tags.Int("banDuration")) * time.Second,
			Timestamp: ts,
			Tags:      msg.Tags,
		})
	}
}

// tagTime converts a millisecond timestamp tag to a time.Time.
func tagTime(tags Tags, name string) time.Time {
	return time.UnixMilli(int64(tags.Number(name)))
}
