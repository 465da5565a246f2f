package tmi

import (
	"errors"
	"strings"
	"sync"
)

// ErrInvalidChannel is returned when a channel name is empty after
// normalization.
var ErrInvalidChannel = errors.New("invalid channel name")

// normalizeChannel lowercases a channel name, trims surrounding whitespace,
// and removes the leading # if present.
func normalizeChannel(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "#")
	if name == "" {
		return "", ErrInvalidChannel
	}
	return name, nil
}

// RoomState holds the moderation settings of a channel as reported by
// ROOMSTATE messages.
type RoomState struct {

	// EmoteOnly restricts chat to emote-only messages.
	EmoteOnly bool

	// FollowersOnly restricts chat to followers of the given duration in
	// minutes. -1 means the restriction is off; 0 means any follower
	// may chat.
	FollowersOnly int

	// R9k restricts chat to unique messages.
	R9k bool

	// RoomID is the numeric user id of the channel owner.
	RoomID string

	// Slow is the number of seconds a chatter must wait between messages,
	// or 0 when the restriction is off.
	Slow int

	// SubsOnly restricts chat to subscribers.
	SubsOnly bool
}

// Channel represents one chat room the client has joined or is joining.
//
// A Channel is safe for concurrent use. Fields are updated by the client's
// read loop as ROOMSTATE and membership messages arrive.
type Channel struct {
	mu sync.RWMutex

	name      string
	id        string
	roomState *RoomState
	isJoined  bool

	// temporary marks channels created on the fly for messages about
	// rooms the client never asked to join.
	temporary bool
}

func newChannel(name string) *Channel {
	return &Channel{name: name}
}

// Name returns the normalized channel name, without the leading #.
func (c *Channel) Name() string {
	return c.name
}

// ID returns the numeric user id of the channel owner. It is empty until the
// first ROOMSTATE for the channel arrives.
func (c *Channel) ID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.id
}

// IsJoined reports whether the server has confirmed our JOIN of the channel.
func (c *Channel) IsJoined() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isJoined
}

// RoomState returns a copy of the channel's last known moderation settings.
// The second return is false before the first ROOMSTATE arrives.
func (c *Channel) RoomState() (RoomState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.roomState == nil {
		return RoomState{}, false
	}
	return *c.roomState, true
}

func (c *Channel) setJoined(joined bool) {
	c.mu.Lock()
	c.isJoined = joined
	c.mu.Unlock()
}

func (c *Channel) setID(id string) {
	c.mu.Lock()
	c.id = id
	c.mu.Unlock()
}

// mergeRoomState folds the room settings present on a ROOMSTATE message into
// the channel's state, leaving absent settings untouched. It returns the
// state after the merge and whether this was the first ROOMSTATE for the
// channel.
func (c *Channel) mergeRoomState(tags Tags) (state RoomState, initial bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	initial = c.roomState == nil
	if initial {
		c.roomState = &RoomState{}
	}
	if tags.Has("emoteOnly") {
		c.roomState.EmoteOnly = tags.Bool("emoteOnly")
	}
	if tags.Has("followersOnly") {
		c.roomState.FollowersOnly = tags.Int("followersOnly")
	}
	if tags.Has("r9k") {
		c.roomState.R9k = tags.Bool("r9k")
	}
	if tags.Has("roomId") {
		c.roomState.RoomID = tags.String("roomId")
		c.id = c.roomState.RoomID
	}
	if tags.Has("slow") {
		c.roomState.Slow = tags.Int("slow")
	}
	if tags.Has("subsOnly") {
		c.roomState.SubsOnly = tags.Bool("subsOnly")
	}
	return *c.roomState, initial
}
