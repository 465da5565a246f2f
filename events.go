package tmi

import (
	"sync"
	"time"
)

// Identity describes the account the client is connected as.
type Identity struct {

	// Nick is the nickname assigned by the server at login.
	Nick string

	// UserID is the account's numeric id. Empty on anonymous connections.
	UserID string

	// Color is the account's chat name color.
	Color string

	// IsAnonymous is true when the client is connected read-only.
	IsAnonymous bool
}

// SimpleUser identifies a user referenced by a message, such as a gift
// recipient, without the full set of chatter fields.
type SimpleUser struct {
	ID          string
	Name        string
	DisplayName string
}

// Gifter identifies the user who gave a gift sub. Twitch attributes
// anonymous gifts to a shared account; IsAnonymous is true for those.
type Gifter struct {
	SimpleUser
	IsAnonymous bool
}

// MembershipEvent reports a JOIN or PART observed in a channel.
type MembershipEvent struct {
	Channel *Channel

	// User is the nickname that joined or left.
	User string

	// IsClient is true when the user is this client.
	IsClient bool
}

// RoomStateChange holds the room settings present on a single ROOMSTATE
// message. Absent settings are nil.
type RoomStateChange struct {
	EmoteOnly     *bool
	FollowersOnly *int
	R9k           *bool
	Slow          *int
	SubsOnly      *bool
}

// RoomStateEvent reports a ROOMSTATE update after it has been merged into
// the channel.
type RoomStateEvent struct {
	Channel *Channel

	// State is the channel's full room state after the merge.
	State RoomState

	// Change holds only the settings this message carried.
	Change RoomStateChange

	// IsInitial is true for the first ROOMSTATE seen for the channel,
	// which arrives as part of joining.
	IsInitial bool
}

// ModeEvent reports a boolean room setting being toggled.
type ModeEvent struct {
	Channel   *Channel
	IsEnabled bool
}

// DurationModeEvent reports a duration-valued room setting changing.
// Value is minutes for followers-only mode and seconds for slow mode.
type DurationModeEvent struct {
	Channel   *Channel
	IsEnabled bool
	Value     int
}

// ChatUser describes the sender of a chat message.
type ChatUser struct {
	ID          string
	Name        string
	DisplayName string

	Color string

	Badges    Badges
	BadgeInfo Badges

	IsMod        bool
	IsVip        bool
	IsSubscriber bool

	// IsFounder is derived from the badge set rather than a tag.
	IsFounder bool

	// Type is "", "mod", or "staff".
	Type string

	// IsReturningChatter identifies newer chatters who have chatted at
	// least twice in the last 30 days.
	IsReturningChatter bool
}

// ChatMessage holds the body of a chat message and its derived properties.
type ChatMessage struct {
	ID     string
	Text   string
	Emotes EmoteMap
	Flags  []MessageFlag

	// IsAction is true for "/me" messages. Text has the wrapping
	// stripped.
	IsAction bool

	// IsFirstMessage is true for the user's first ever message in the
	// channel.
	IsFirstMessage bool

	// IsIntroduction is true for messages posted with the introduction
	// prompt.
	IsIntroduction bool

	// WasAcceptedAfterAutomod is true for messages that were held for
	// review by AutoMod and then accepted by a moderator.
	WasAcceptedAfterAutomod bool
}

// ReplyThread identifies the root of a reply thread.
type ReplyThread struct {
	ID   string
	User SimpleUser
}

// ReplyParent describes the message a chat message replies to.
type ReplyParent struct {
	ID     string
	Text   string
	User   SimpleUser
	Thread ReplyThread
}

// Cheer holds the bits attached to a chat message.
type Cheer struct {
	Bits int
}

// Reward types attached to a chat message.
const (
	RewardCustom       = "custom"
	RewardHighlighted  = MsgIDHighlighted
	RewardSkipSubsMode = MsgIDSkipSubsMode
)

// Reward describes the channel-points reward a chat message redeemed.
// ID is set only for custom rewards.
type Reward struct {
	Type string
	ID   string
}

// MessageEvent is the full projection of a PRIVMSG.
type MessageEvent struct {
	Channel *Channel
	User    ChatUser
	Message ChatMessage

	// Parent is set when the message is a reply.
	Parent *ReplyParent

	// Cheer is set when the message carries bits.
	Cheer *Cheer

	// Reward is set when the message redeemed a channel-points reward.
	Reward *Reward

	// Tags holds the message's full decoded tag set for anything the
	// projection does not surface.
	Tags Tags

	client *Client
}

// DeleteMessageEvent reports a single message being deleted (CLEARMSG).
type DeleteMessageEvent struct {
	Channel *Channel

	// User is the login of the user whose message was deleted.
	User string

	// MessageID is the id of the deleted message.
	MessageID string

	// Text is the text of the deleted message.
	Text string

	Timestamp time.Time
}

// BanEvent reports a user being permanently banned from a channel.
type BanEvent struct {
	Channel   *Channel
	UserID    string
	UserName  string
	Timestamp time.Time
	Tags      Tags
}

// TimeoutEvent reports a user being timed out of a channel.
type TimeoutEvent struct {
	Channel  *Channel
	UserID   string
	UserName string

	// Duration of the timeout.
	Duration time.Duration

	Timestamp time.Time
	Tags      Tags
}

// ChatClearedEvent reports all of a channel's chat being cleared.
type ChatClearedEvent struct {
	Channel   *Channel
	Timestamp time.Time
	Tags      Tags
}

// NoticeUser describes the user a USERNOTICE is about.
type NoticeUser struct {
	ID          string
	Name        string
	DisplayName string

	Color string

	Badges    Badges
	BadgeInfo Badges

	IsMod        bool
	IsSubscriber bool
	Type         string

	// IsAnonymous is true on gift notices attributed to the shared
	// anonymous gifter account.
	IsAnonymous bool
}

// NoticeMessage holds the system message of a USERNOTICE along with the
// user-supplied message for the notice kinds that carry one.
type NoticeMessage struct {
	ID     string
	System string

	// Text is the user's own message. Empty for notice kinds without one.
	Text   string
	Emotes EmoteMap
	Flags  []MessageFlag
}

// SubPlan describes a subscription plan. Plan is the wire code "1000",
// "2000", "3000", or "Prime"; Tier maps those to 1, 2, 3, and 1.
type SubPlan struct {
	Plan    string
	Name    string
	Tier    int
	IsPrime bool
}

// Goal reports a creator goal's progress attached to a gift sub notice.
type Goal struct {
	ContributionType     string
	Description          string
	CurrentContributions int
	TargetContributions  int
	UserContributions    int
}

// SubEvent reports a first-time subscription.
type SubEvent struct {
	Channel *Channel
	User    NoticeUser
	Message NoticeMessage
	Plan    SubPlan

	// MultiMonthDuration is the length of a multi-month purchase, or 0.
	MultiMonthDuration int
}

// SubStreak reports a resubscriber's shared streak.
type SubStreak struct {
	Months int
}

// ResubGift is set on resubs that redeem a month of a previously gifted
// multi-month sub.
type ResubGift struct {
	Gifter Gifter

	// MonthBeingRedeemed is which month (1-based) of the gift this resub
	// redeems. It can be 0 on some anonymous gifts.
	MonthBeingRedeemed int

	// Months is the total length of the original gift.
	Months int
}

// ResubEvent reports a resubscription.
type ResubEvent struct {
	Channel *Channel
	User    NoticeUser
	Message NoticeMessage
	Plan    SubPlan

	CumulativeMonths   int
	MultiMonthDuration int
	MultiMonthTenure   int

	// Streak is set when the user chose to share their sub streak.
	Streak *SubStreak

	// Gift is set when the sub being continued was a gift.
	Gift *ResubGift
}

// MysteryGift describes a batch of community gift subs.
type MysteryGift struct {
	ID string

	// Count is the number of subs in the batch. Zero on the individual
	// subgift notices that follow a batch.
	Count int

	// UserTotal is the gifter's lifetime gift count in the channel.
	// Zero for anonymous gifters.
	UserTotal int

	Theme string
}

// SubMysteryGiftEvent reports a community gift sub batch being started.
type SubMysteryGiftEvent struct {
	Channel     *Channel
	User        NoticeUser
	Message     NoticeMessage
	Plan        SubPlan
	MysteryGift MysteryGift

	// Goal is set when the channel has an active creator goal.
	Goal *Goal
}

// SubGiftEvent reports a single gifted sub.
type SubGiftEvent struct {
	Channel   *Channel
	User      NoticeUser
	Message   NoticeMessage
	Plan      SubPlan
	Recipient SimpleUser

	// GiftMonths is the number of months gifted.
	GiftMonths int

	// MysteryGift is set when the gift is part of a community batch.
	MysteryGift *MysteryGift

	// Goal is set when the channel has an active creator goal.
	Goal *Goal
}

// Paid upgrade types.
const (
	UpgradeGift  = "gift"
	UpgradePrime = "prime"
)

// PaidUpgradeEvent reports a user converting a gift or Prime sub into a
// paid sub.
type PaidUpgradeEvent struct {
	Channel *Channel
	User    NoticeUser
	Message NoticeMessage

	// Type is UpgradeGift or UpgradePrime.
	Type string

	// Gifter is set for gift upgrades. Gift upgrade notices do not carry
	// the gifter's id.
	Gifter *SimpleUser

	// Plan is set for Prime upgrades.
	Plan *SubPlan
}

// Pay forward types.
const (
	PayForwardStandard  = "standard"
	PayForwardCommunity = "community"
)

// PayForwardEvent reports a user paying forward a gift sub they received.
type PayForwardEvent struct {
	Channel *Channel
	User    NoticeUser
	Message NoticeMessage

	// Type is PayForwardStandard or PayForwardCommunity.
	Type string

	PriorGifter Gifter

	// Recipient is set for standard pay-forwards, which target one user.
	Recipient *SimpleUser
}

// BitsBadgeTierEvent reports a user earning a new bits badge.
type BitsBadgeTierEvent struct {
	Channel *Channel
	User    NoticeUser
	Message NoticeMessage

	// Threshold is the bits amount of the new badge, e.g. 1000 or 25000.
	Threshold int
}

// AnnouncementEvent reports a moderator announcement.
type AnnouncementEvent struct {
	Channel *Channel
	User    NoticeUser
	Message NoticeMessage

	// Color is "PRIMARY", "BLUE", "GREEN", "ORANGE", or "PURPLE".
	Color string
}

// RaidEvent reports an incoming raid.
type RaidEvent struct {
	Channel *Channel
	User    NoticeUser
	Message NoticeMessage

	ViewerCount int

	// ProfileImageURLTemplate is the raider's profile image URL with a
	// "%s" placeholder for the resolution.
	ProfileImageURLTemplate string
}

// UnraidEvent reports a raid being canceled before it happened.
type UnraidEvent struct {
	Channel *Channel
	User    NoticeUser
	Message NoticeMessage
}

// ViewerMilestoneEvent reports a viewer milestone, such as a watch streak.
type ViewerMilestoneEvent struct {
	Channel *Channel
	User    NoticeUser
	Message NoticeMessage

	// Category is the milestone kind, currently only "watch-streak".
	Category string

	// MilestoneID is an opaque id for the milestone.
	MilestoneID string

	// Value is the milestone's magnitude, e.g. the streak length.
	Value int
}

// eventHandlers fans incoming messages out to registered callbacks.
// Registration is safe for concurrent use with dispatch; callbacks run on
// the client's read goroutine, in registration order.
type eventHandlers struct {
	mu sync.RWMutex

	anyMessage []func(*Message)
	command    map[Command][]func(*Message)
	unhandled  []func(*Message)
	ignored    []func(*Message)

	identity []func(Identity)
	pong     []func(time.Duration)

	join []func(MembershipEvent)
	part []func(MembershipEvent)

	roomState     []func(RoomStateEvent)
	emoteOnly     []func(ModeEvent)
	followersOnly []func(DurationModeEvent)
	uniqueMode    []func(ModeEvent)
	slowMode      []func(DurationModeEvent)
	subsOnly      []func(ModeEvent)

	message       []func(MessageEvent)
	deleteMessage []func(DeleteMessageEvent)
	ban           []func(BanEvent)
	timeout       []func(TimeoutEvent)
	chatCleared   []func(ChatClearedEvent)

	sub             []func(SubEvent)
	resub           []func(ResubEvent)
	subMysteryGift  []func(SubMysteryGiftEvent)
	subGift         []func(SubGiftEvent)
	paidUpgrade     []func(PaidUpgradeEvent)
	payForward      []func(PayForwardEvent)
	bitsBadgeTier   []func(BitsBadgeTierEvent)
	announcement    []func(AnnouncementEvent)
	raid            []func(RaidEvent)
	unraid          []func(UnraidEvent)
	viewerMilestone []func(ViewerMilestoneEvent)
}

// on appends a callback to a handler slice under the write lock.
func on[T any](h *eventHandlers, list *[]func(T), fn func(T)) {
	h.mu.Lock()
	*list = append(*list, fn)
	h.mu.Unlock()
}

// emit invokes the registered callbacks for one event.
func emit[T any](h *eventHandlers, list *[]func(T), ev T) {
	h.mu.RLock()
	fns := *list
	h.mu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// OnAnyMessage registers a callback invoked for every parsed line before
// any command handling runs.
func (c *Client) OnAnyMessage(fn func(*Message)) { on(&c.handlers, &c.handlers.anyMessage, fn) }

// OnCommand registers a callback for every message with the given command,
// invoked before the command's own handling runs.
func (c *Client) OnCommand(cmd Command, fn func(*Message)) {
	cmd.normalize()
	c.handlers.mu.Lock()
	if c.handlers.command == nil {
		c.handlers.command = make(map[Command][]func(*Message))
	}
	c.handlers.command[cmd] = append(c.handlers.command[cmd], fn)
	c.handlers.mu.Unlock()
}

// OnUnhandled registers a callback for messages the client recognizes no
// handling for.
func (c *Client) OnUnhandled(fn func(*Message)) { on(&c.handlers, &c.handlers.unhandled, fn) }

// OnIgnored registers a callback for the welcome-burst numerics the client
// deliberately does nothing with.
func (c *Client) OnIgnored(fn func(*Message)) { on(&c.handlers, &c.handlers.ignored, fn) }

// OnIdentity registers a callback invoked once per connection after the
// server confirms the login.
func (c *Client) OnIdentity(fn func(Identity)) { on(&c.handlers, &c.handlers.identity, fn) }

// OnPong registers a callback invoked with the round-trip latency of each
// keepalive ping.
func (c *Client) OnPong(fn func(time.Duration)) { on(&c.handlers, &c.handlers.pong, fn) }

// OnJoin registers a callback for users joining a channel.
func (c *Client) OnJoin(fn func(MembershipEvent)) { on(&c.handlers, &c.handlers.join, fn) }

// OnPart registers a callback for users leaving a channel.
func (c *Client) OnPart(fn func(MembershipEvent)) { on(&c.handlers, &c.handlers.part, fn) }

// OnRoomState registers a callback for room setting updates.
func (c *Client) OnRoomState(fn func(RoomStateEvent)) { on(&c.handlers, &c.handlers.roomState, fn) }

// OnEmoteOnly registers a callback for emote-only mode toggles.
func (c *Client) OnEmoteOnly(fn func(ModeEvent)) { on(&c.handlers, &c.handlers.emoteOnly, fn) }

// OnFollowersOnly registers a callback for followers-only mode changes.
func (c *Client) OnFollowersOnly(fn func(DurationModeEvent)) {
	on(&c.handlers, &c.handlers.followersOnly, fn)
}

// OnUniqueMode registers a callback for unique (r9k) mode toggles.
func (c *Client) OnUniqueMode(fn func(ModeEvent)) { on(&c.handlers, &c.handlers.uniqueMode, fn) }

// OnSlowMode registers a callback for slow mode changes.
func (c *Client) OnSlowMode(fn func(DurationModeEvent)) { on(&c.handlers, &c.handlers.slowMode, fn) }

// OnSubsOnly registers a callback for subscribers-only mode toggles.
func (c *Client) OnSubsOnly(fn func(ModeEvent)) { on(&c.handlers, &c.handlers.subsOnly, fn) }

// OnMessage registers a callback for chat messages.
func (c *Client) OnMessage(fn func(MessageEvent)) { on(&c.handlers, &c.handlers.message, fn) }

// OnDeleteMessage registers a callback for single-message deletions.
func (c *Client) OnDeleteMessage(fn func(DeleteMessageEvent)) {
	on(&c.handlers, &c.handlers.deleteMessage, fn)
}

// OnBan registers a callback for permanent bans.
func (c *Client) OnBan(fn func(BanEvent)) { on(&c.handlers, &c.handlers.ban, fn) }

// OnTimeout registers a callback for timeouts.
func (c *Client) OnTimeout(fn func(TimeoutEvent)) { on(&c.handlers, &c.handlers.timeout, fn) }

// OnChatCleared registers a callback for full chat clears.
func (c *Client) OnChatCleared(fn func(ChatClearedEvent)) {
	on(&c.handlers, &c.handlers.chatCleared, fn)
}

// OnSub registers a callback for new subscriptions.
func (c *Client) OnSub(fn func(SubEvent)) { on(&c.handlers, &c.handlers.sub, fn) }

// OnResub registers a callback for resubscriptions.
func (c *Client) OnResub(fn func(ResubEvent)) { on(&c.handlers, &c.handlers.resub, fn) }

// OnSubMysteryGift registers a callback for community gift sub batches.
func (c *Client) OnSubMysteryGift(fn func(SubMysteryGiftEvent)) {
	on(&c.handlers, &c.handlers.subMysteryGift, fn)
}

// OnSubGift registers a callback for individual gifted subs.
func (c *Client) OnSubGift(fn func(SubGiftEvent)) { on(&c.handlers, &c.handlers.subGift, fn) }

// OnPaidUpgrade registers a callback for gift and Prime sub upgrades.
func (c *Client) OnPaidUpgrade(fn func(PaidUpgradeEvent)) {
	on(&c.handlers, &c.handlers.paidUpgrade, fn)
}

// OnPayForward registers a callback for gift sub pay-forwards.
func (c *Client) OnPayForward(fn func(PayForwardEvent)) {
	on(&c.handlers, &c.handlers.payForward, fn)
}

// OnBitsBadgeTier registers a callback for bits badge notifications.
func (c *Client) OnBitsBadgeTier(fn func(BitsBadgeTierEvent)) {
	on(&c.handlers, &c.handlers.bitsBadgeTier, fn)
}

// OnAnnouncement registers a callback for moderator announcements.
func (c *Client) OnAnnouncement(fn func(AnnouncementEvent)) {
	on(&c.handlers, &c.handlers.announcement, fn)
}

// OnRaid registers a callback for incoming raids.
func (c *Client) OnRaid(fn func(RaidEvent)) { on(&c.handlers, &c.handlers.raid, fn) }

// OnUnraid registers a callback for canceled raids.
func (c *Client) OnUnraid(fn func(UnraidEvent)) { on(&c.handlers, &c.handlers.unraid, fn) }

// OnViewerMilestone registers a callback for viewer milestones.
func (c *Client) OnViewerMilestone(fn func(ViewerMilestoneEvent)) {
	on(&c.handlers, &c.handlers.viewerMilestone, fn)
}
