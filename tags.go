package tmi

import (
	"strconv"
	"strings"
)

// tagKind selects the decode shape for a message tag value.
type tagKind int

const (
	kindString tagKind = iota
	kindNumber
	kindLiteralBoolean // the literal string "true"
	kindBooleanNumber  // "1" means true
	kindBadges
	kindEmotes
	kindFollowersOnly // minutes, or -1 when disabled
	kindSlow          // seconds, or 0 when disabled
	kindFlags
	kindThreadID
	kindCommaSeparatedStrings
)

// tagSpec maps a wire tag name to its decoded name and shape.
type tagSpec struct {
	name string
	kind tagKind
}

// tagTable holds every tag name this package knows how to decode.
// Tags not listed here land in Message.UnknownTags.
var tagTable = map[string]tagSpec{
	"badge-info":                           {"badgeInfo", kindBadges},
	"badges":                               {"badges", kindBadges},
	"ban-duration":                         {"banDuration", kindNumber},
	"bits":                                 {"bits", kindNumber},
	"client-nonce":                         {"clientNonce", kindString},
	"color":                                {"color", kindString},
	"custom-reward-id":                     {"customRewardId", kindString},
	"display-name":                         {"displayName", kindString},
	"emote-only":                           {"emoteOnly", kindBooleanNumber},
	"emote-sets":                           {"emoteSets", kindCommaSeparatedStrings},
	"emotes":                               {"emotes", kindEmotes},
	"first-msg":                            {"firstMsg", kindBooleanNumber},
	"flags":                                {"flags", kindFlags},
	"followers-only":                       {"followersOnly", kindFollowersOnly},
	"id":                                   {"id", kindString},
	"login":                                {"login", kindString},
	"message-id":                           {"messageId", kindString},
	"mod":                                  {"mod", kindLiteralBoolean},
	"msg-id":                               {"msgId", kindString},
	"msg-param-anon-gift":                  {"msgParamAnonGift", kindLiteralBoolean},
	"msg-param-category":                   {"msgParamCategory", kindString},
	"msg-param-color":                      {"msgParamColor", kindString},
	"msg-param-community-gift-id":          {"msgParamCommunityGiftId", kindString},
	"msg-param-copoReward":                 {"msgParamCopoReward", kindNumber},
	"msg-param-cumulative-months":          {"msgParamCumulativeMonths", kindNumber},
	"msg-param-displayName":                {"msgParamDisplayName", kindString},
	"msg-param-fun-string":                 {"msgParamFunString", kindString},
	"msg-param-gift-month-being-redeemed":  {"msgParamGiftMonthBeingRedeemed", kindNumber},
	"msg-param-gift-months":                {"msgParamGiftMonths", kindNumber},
	"msg-param-gift-theme":                 {"msgParamGiftTheme", kindString},
	"msg-param-gifter-id":                  {"msgParamGifterId", kindString},
	"msg-param-gifter-login":               {"msgParamGifterLogin", kindString},
	"msg-param-gifter-name":                {"msgParamGifterName", kindString},
	"msg-param-goal-contribution-type":     {"msgParamGoalContributionType", kindString},
	"msg-param-goal-current-contributions": {"msgParamGoalCurrentContributions", kindNumber},
	"msg-param-goal-description":           {"msgParamGoalDescription", kindString},
	"msg-param-goal-target-contributions":  {"msgParamGoalTargetContributions", kindNumber},
	"msg-param-goal-user-contributions":    {"msgParamGoalUserContributions", kindNumber},
	"msg-param-id":                         {"msgParamId", kindString},
	"msg-param-login":                      {"msgParamLogin", kindString},
	"msg-param-mass-gift-count":            {"msgParamMassGiftCount", kindNumber},
	"msg-param-months":                     {"msgParamMonths", kindNumber},
	"msg-param-multimonth-duration":        {"msgParamMultimonthDuration", kindNumber},
	"msg-param-multimonth-tenure":          {"msgParamMultimonthTenure", kindNumber},
	"msg-param-origin-id":                  {"msgParamOriginId", kindString},
	"msg-param-prior-gifter-anonymous":     {"msgParamPriorGifterAnonymous", kindLiteralBoolean},
	"msg-param-prior-gifter-display-name":  {"msgParamPriorGifterDisplayName", kindString},
	"msg-param-prior-gifter-id":            {"msgParamPriorGifterId", kindString},
	"msg-param-prior-gifter-user-name":     {"msgParamPriorGifterUserName", kindString},
	"msg-param-profileImageURL":            {"msgParamProfileImageUrl", kindString},
	"msg-param-recipient-display-name":     {"msgParamRecipientDisplayName", kindString},
	"msg-param-recipient-id":               {"msgParamRecipientId", kindString},
	"msg-param-recipient-user-name":        {"msgParamRecipientUserName", kindString},
	"msg-param-sender-count":               {"msgParamSenderCount", kindNumber},
	"msg-param-sender-login":               {"msgParamSenderLogin", kindString},
	"msg-param-sender-name":                {"msgParamSenderName", kindString},
	"msg-param-should-share-streak":        {"msgParamShouldShareStreak", kindBooleanNumber},
	"msg-param-streak-months":              {"msgParamStreakMonths", kindNumber},
	"msg-param-sub-plan-name":              {"msgParamSubPlanName", kindString},
	"msg-param-sub-plan":                   {"msgParamSubPlan", kindString},
	"msg-param-threshold":                  {"msgParamThreshold", kindNumber},
	"msg-param-value":                      {"msgParamValue", kindNumber},
	"msg-param-viewerCount":                {"msgParamViewerCount", kindNumber},
	"msg-param-was-gifted":                 {"msgParamWasGifted", kindLiteralBoolean},
	"pinned-chat-paid-amount":              {"pinnedChatPaidAmount", kindNumber},
	"pinned-chat-paid-canonical-amount":    {"pinnedChatPaidCanonicalAmount", kindNumber},
	"pinned-chat-paid-currency":            {"pinnedChatPaidCurrency", kindString},
	"pinned-chat-paid-exponent":            {"pinnedChatPaidExponent", kindNumber},
	"pinned-chat-paid-level":               {"pinnedChatPaidLevel", kindString},
	"pinned-chat-paid-is-system-message":   {"pinnedChatPaidIsSystemMessage", kindBooleanNumber},
	"r9k":                                  {"r9k", kindBooleanNumber},
	"reply-parent-display-name":            {"replyParentDisplayName", kindString},
	"reply-parent-msg-body":                {"replyParentMsgBody", kindString},
	"reply-parent-msg-id":                  {"replyParentMsgId", kindString},
	"reply-parent-user-id":                 {"replyParentUserId", kindString},
	"reply-parent-user-login":              {"replyParentUserLogin", kindString},
	"reply-thread-parent-display-name":     {"replyThreadParentDisplayName", kindString},
	"reply-thread-parent-msg-id":           {"replyThreadParentMsgId", kindString},
	"reply-thread-parent-user-id":          {"replyThreadParentUserId", kindString},
	"reply-thread-parent-user-login":       {"replyThreadParentUserLogin", kindString},
	"returning-chatter":                    {"returningChatter", kindBooleanNumber},
	"room-id":                              {"roomId", kindString},
	"slow":                                 {"slow", kindSlow},
	"subs-only":                            {"subsOnly", kindBooleanNumber},
	"subscriber":                           {"subscriber", kindBooleanNumber},
	"system-msg":                           {"systemMsg", kindString},
	"target-msg-id":                        {"targetMsgId", kindString},
	"target-user-id":                       {"targetUserId", kindString},
	"thread-id":                            {"threadId", kindThreadID},
	"tmi-sent-ts":                          {"tmiSentTs", kindNumber},
	"turbo":                                {"turbo", kindBooleanNumber},
	"user-id":                              {"userId", kindString},
	"user-type":                            {"userType", kindString},
	"vip":                                  {"vip", kindBooleanNumber},
}

// Badges maps a badge name to its version string, e.g. "subscriber" -> "36".
type Badges map[string]string

// Has returns true when the badge set includes name at any version.
func (b Badges) Has(name string) bool {
	_, ok := b[name]
	return ok
}

// EmoteMap maps an emote id to the index pairs where the emote occurs in the
// message text. Indices count code points, and the end index is exclusive.
type EmoteMap map[string][][2]int

// MessageFlag marks a span of message text that AutoMod classified.
//
// Flag keys:
//   - "A": Aggressive Content
//   - "I": Identity-Based Hate
//   - "P": Profane Content
//   - "S": Sexual Content
type MessageFlag struct {
	Start int // code point index of the first flagged character
	End   int // exclusive code point index past the last flagged character
	Text  string
	Flags map[string]int
}

// TagValue holds one decoded message tag value. Read it through the typed
// accessors on Tags; a value read with the wrong accessor returns that
// accessor's zero value.
type TagValue struct {
	kind    tagKind
	str     string
	num     float64
	boolean bool
	badges  Badges
	emotes  EmoteMap
	flags   []MessageFlag
	list    []string
}

// Tags holds the decoded message tags of a line, keyed by their camelCase
// name from the tag table, e.g. "displayName" for display-name.
type Tags map[string]TagValue

// Has returns true when the message carried the named tag.
func (t Tags) Has(name string) bool {
	_, ok := t[name]
	return ok
}

// String returns the named string-shaped tag value.
func (t Tags) String(name string) string {
	return t[name].str
}

// Number returns the named number-shaped tag value.
func (t Tags) Number(name string) float64 {
	return t[name].num
}

// Int returns the named number-shaped tag value truncated to an int.
func (t Tags) Int(name string) int {
	return int(t[name].num)
}

// Bool returns the named boolean-shaped tag value.
func (t Tags) Bool(name string) bool {
	return t[name].boolean
}

// Badges returns the named badge-shaped tag value. It never returns nil.
func (t Tags) Badges(name string) Badges {
	if v, ok := t[name]; ok && v.badges != nil {
		return v.badges
	}
	return Badges{}
}

// Emotes returns the named emote-shaped tag value. It never returns nil.
func (t Tags) Emotes(name string) EmoteMap {
	if v, ok := t[name]; ok && v.emotes != nil {
		return v.emotes
	}
	return EmoteMap{}
}

// Flags returns the named flag-shaped tag value.
func (t Tags) Flags(name string) []MessageFlag {
	return t[name].flags
}

// List returns the named list-shaped tag value.
func (t Tags) List(name string) []string {
	return t[name].list
}

// decodeTag records one raw tag on the message and, when the tag name is
// known, decodes it into m.Tags. val must already be unescaped.
func (m *Message) decodeTag(key, val string) {
	m.RawTags.Set(key, val)
	spec, ok := tagTable[key]
	if !ok {
		m.UnknownTags.Set(key, val)
		return
	}
	if m.Tags == nil {
		m.Tags = make(Tags)
	}
	m.Tags[spec.name] = decodeTagValue(spec.kind, val, m.Params.Get(1))
}

// decodeTagValue applies the decode shape for kind to val. text is the first
// message parameter, which the flags shape slices by code point.
func decodeTagValue(kind tagKind, val, text string) TagValue {
	switch kind {
	case kindNumber, kindFollowersOnly, kindSlow:
		n, _ := strconv.ParseFloat(val, 64)
		return TagValue{kind: kind, num: n}
	case kindLiteralBoolean:
		return TagValue{kind: kind, boolean: val == "true"}
	case kindBooleanNumber:
		return TagValue{kind: kind, boolean: val == "1"}
	case kindBadges:
		return TagValue{kind: kind, badges: decodeBadges(val)}
	case kindEmotes:
		return TagValue{kind: kind, emotes: decodeEmotes(val)}
	case kindFlags:
		return TagValue{kind: kind, flags: decodeFlags(val, text)}
	case kindThreadID:
		return TagValue{kind: kind, list: strings.Split(val, "_")}
	case kindCommaSeparatedStrings:
		return TagValue{kind: kind, list: strings.Split(val, ",")}
	default:
		return TagValue{kind: kindString, str: val}
	}
}

// decodeBadges parses "name/version,name/version" pairs.
// A version may itself contain '/'.
func decodeBadges(val string) Badges {
	badges := Badges{}
	if val == "" {
		return badges
	}
	for _, b := range strings.Split(val, ",") {
		name, version, _ := strings.Cut(b, "/")
		badges[name] = version
	}
	return badges
}

// decodeEmotes parses "id:start-end,start-end/id:start-end" runs into
// exclusive-end index pairs.
func decodeEmotes(val string) EmoteMap {
	emotes := EmoteMap{}
	if val == "" {
		return emotes
	}
	for _, emote := range strings.Split(val, "/") {
		id, indices, ok := strings.Cut(emote, ":")
		if !ok {
			continue
		}
		var pairs [][2]int
		for _, pos := range strings.Split(indices, ",") {
			first, last, ok := strings.Cut(pos, "-")
			if !ok {
				continue
			}
			start, _ := strconv.Atoi(first)
			end, _ := strconv.Atoi(last)
			pairs = append(pairs, [2]int{start, end + 1})
		}
		emotes[id] = pairs
	}
	return emotes
}

// decodeFlags parses "start-end:A.3/I.0" runs. The index pairs count code
// points in text, not bytes, so the flagged span is recovered by slicing the
// rune sequence.
func decodeFlags(val, text string) []MessageFlag {
	var flags []MessageFlag
	if val == "" {
		return flags
	}
	runes := []rune(text)
	for _, flag := range strings.Split(val, ",") {
		indices, types, ok := strings.Cut(flag, ":")
		if !ok {
			continue
		}
		first, last, ok := strings.Cut(indices, "-")
		if !ok {
			continue
		}
		start, _ := strconv.Atoi(first)
		end, _ := strconv.Atoi(last)
		end++

		levels := make(map[string]int)
		for _, t := range strings.Split(types, "/") {
			name, level, ok := strings.Cut(t, ".")
			if !ok {
				continue
			}
			n, _ := strconv.Atoi(level)
			levels[name] = n
		}

		var flagged string
		if start >= 0 && end >= start && end <= len(runes) {
			flagged = string(runes[start:end])
		}
		flags = append(flags, MessageFlag{
			Start: start,
			End:   end,
			Text:  flagged,
			Flags: levels,
		})
	}
	return flags
}
