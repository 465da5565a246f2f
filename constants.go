package tmi

// Commands which may be sent or received on a Twitch chat connection.
// The Twitch IRC dialect uses a small, fixed subset of IRC verbs plus
// several verbs of its own.
const (
	CmdCap             = "CAP"             // Capability negotiation.
	CmdClearChat       = "CLEARCHAT"       // All chat was cleared, or a user was banned or timed out.
	CmdClearMsg        = "CLEARMSG"        // A single message was deleted.
	CmdGlobalUserState = "GLOBALUSERSTATE" // Global state for the authenticated user, sent after login.
	CmdJoin            = "JOIN"            // Join a channel.
	CmdNick            = "NICK"            // Set the connection nickname.
	CmdNotice          = "NOTICE"          // Informational or error message classified by a msg-id tag.
	CmdPart            = "PART"            // Leave a channel.
	CmdPass            = "PASS"            // Set the connection password (OAuth token).
	CmdPing            = "PING"            // Test for the presence of an active peer.
	CmdPong            = "PONG"            // Reply to a PING message.
	CmdPrivmsg         = "PRIVMSG"         // A chat message sent to a channel.
	CmdReconnect       = "RECONNECT"       // The server is about to terminate the connection; reconnect.
	CmdRoomState       = "ROOMSTATE"       // Per-channel moderation settings.
	CmdUserNotice      = "USERNOTICE"      // Subs, raids, announcements, and other channel notices.
	CmdUserState       = "USERSTATE"       // The client user's state within a channel.
	CmdWhisper         = "WHISPER"         // A direct message. Receive only.
)

// Numeric replies sent by Twitch chat servers. The welcome burst
// (001-004 plus the NAMES and MOTD numerics) carries no useful
// information beyond our assigned nickname in 001.
const (
	RplWelcome           = "001" // "Welcome, GLHF!" - the first param is our assigned nickname.
	RplYourHost          = "002"
	RplCreated           = "003"
	RplMyInfo            = "004"
	RplNamReply          = "353"
	RplEndOfNames        = "366"
	RplMOTD              = "372"
	RplMOTDStart         = "375"
	RplEndOfMOTD         = "376"
	RplErrUnknownCommand = "421"
)

// NOTICE msg-id values which reject an outbound chat message. A NOTICE
// carrying one of these while a send is awaiting its USERSTATE echo
// settles the wait with a NoticeError.
const (
	NoticeUnrecognizedCmd      = "unrecognized_cmd"
	NoticeMsgDuplicate         = "msg_duplicate"
	NoticeMsgRatelimit         = "msg_ratelimit"
	NoticeMsgR9k               = "msg_r9k"
	NoticeMsgRejectedMandatory = "msg_rejected_mandatory"
	NoticeMsgSubsOnly          = "msg_subsonly"
	NoticeMsgTimedOut          = "msg_timedout"
	NoticeMsgBanned            = "msg_banned"
	NoticeMsgBadCharacters     = "msg_bad_characters"
	NoticeMsgVerifiedPhone     = "msg_requires_verified_phone_number"
	NoticeInvalidParent        = "invalid_parent"
)

// NOTICE msg-id values confirming a room setting change. These arrive
// alongside the ROOMSTATE update that carries the actual change, so the
// dispatcher treats them as fully handled.
const (
	NoticeEmoteOnlyOn     = "emote_only_on"
	NoticeEmoteOnlyOff    = "emote_only_off"
	NoticeFollowersOnZero = "followers_on_zero"
	NoticeFollowersOn     = "followers_on"
	NoticeFollowersOff    = "followers_off"
	NoticeSlowOn          = "slow_on"
	NoticeSlowOff         = "slow_off"
	NoticeSubsOn          = "subs_on"
	NoticeSubsOff         = "subs_off"
	NoticeR9kOn           = "r9k_on"
	NoticeR9kOff          = "r9k_off"
)

// USERNOTICE msg-id values. Each selects a different event projection.
const (
	MsgIDSub                 = "sub"
	MsgIDResub               = "resub"
	MsgIDSubMysteryGift      = "submysterygift"
	MsgIDSubGift             = "subgift"
	MsgIDGiftPaidUpgrade     = "giftpaidupgrade"
	MsgIDPrimePaidUpgrade    = "primepaidupgrade"
	MsgIDStandardPayForward  = "standardpayforward"
	MsgIDCommunityPayForward = "communitypayforward"
	MsgIDBitsBadgeTier       = "bitsbadgetier"
	MsgIDAnnouncement        = "announcement"
	MsgIDRaid                = "raid"
	MsgIDUnraid              = "unraid"
	MsgIDViewerMilestone     = "viewermilestone"
)

// PRIVMSG msg-id values that appear on regular chat messages.
const (
	MsgIDHighlighted  = "highlighted-message"
	MsgIDSkipSubsMode = "skip-subs-mode-message"
	MsgIDUserIntro    = "user-intro"
)

const (
	// actionPrefix and actionSuffix bound the text of a "/me" action message.
	actionPrefix = "\x01ACTION "
	actionSuffix = "\x01"

	// anonymousGifterLogin is the fixed login of the account Twitch
	// attributes anonymous gift subs to.
	anonymousGifterLogin = "ananonymousgifter"

	// pingPayload is the token echoed back by the server in PONG replies
	// to our keepalive pings. The value is wire-compatible with the
	// widely deployed tmi.js client.
	pingPayload = "tmi.js"
)

// DefaultServerAddr is the public websocket endpoint for Twitch chat.
const DefaultServerAddr = "wss://irc-ws.chat.twitch.tv:443"
