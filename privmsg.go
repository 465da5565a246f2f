package tmi

import "strings"

// onPrivmsg projects a PRIVMSG into a MessageEvent: the user view, the
// message body with its derived booleans, and the optional reply-parent,
// cheer, and reward structures selected by which tags are present.
func (c *Client) onPrivmsg(msg *Message) {
	ch := c.getChannel(msg)
	tags := msg.Tags
	text := msg.Params.Get(1)

	isAction := strings.HasPrefix(text, actionPrefix) && strings.HasSuffix(text, actionSuffix)
	if isAction {
		text = strings.TrimSuffix(strings.TrimPrefix(text, actionPrefix), actionSuffix)
	}

	user := ChatUser{
		ID:          tags.String("userId"),
		Name:        msg.Source.Nick.String(),
		DisplayName: tags.String("displayName"),

		Color: tags.String("color"),

		Badges:    tags.Badges("badges"),
		BadgeInfo: tags.Badges("badgeInfo"),

		IsMod:        tags.Bool("mod"),
		IsVip:        tags.Bool("vip"),
		IsSubscriber: tags.Bool("subscriber"),
		IsFounder:    tags.Badges("badges").Has("founder"),
		Type:         tags.String("userType"),

		IsReturningChatter: tags.Bool("returningChatter"),
	}

	hasMsgID := tags.Has("msgId")
	msgID := tags.String("msgId")
	message := ChatMessage{
		ID:             tags.String("id"),
		Text:           text,
		Emotes:         tags.Emotes("emotes"),
		Flags:          tags.Flags("flags"),
		IsAction:       isAction,
		IsFirstMessage: tags.Bool("firstMsg"),
		IsIntroduction: hasMsgID && msgID == MsgIDUserIntro,

		// Messages held by AutoMod and then accepted arrive with msg-id
		// and custom-reward-id both present but empty.
		WasAcceptedAfterAutomod: hasMsgID && msgID == "" &&
			tags.Has("customRewardId") && tags.String("customRewardId") == "",
	}

	var parent *ReplyParent
	if tags.Has("replyParentMsgId") {
		parent = &ReplyParent{
			ID:   tags.String("replyParentMsgId"),
			Text: tags.String("replyParentMsgBody"),
			User: SimpleUser{
				ID:          tags.String("replyParentUserId"),
				Name:        tags.String("replyParentUserLogin"),
				DisplayName: tags.String("replyParentDisplayName"),
			},
			Thread: ReplyThread{
				ID: tags.String("replyThreadParentMsgId"),
				User: SimpleUser{
					ID:          tags.String("replyThreadParentUserId"),
					Name:        tags.String("replyThreadParentUserLogin"),
					DisplayName: tags.String("replyThreadParentDisplayName"),
				},
			},
		}
	}

	var cheer *Cheer
	if tags.Has("bits") {
		cheer = &Cheer{Bits: tags.Int("bits")}
	}

	// A custom reward takes precedence over the fixed reward kinds.
	var reward *Reward
	switch {
	case tags.Has("customRewardId") && tags.String("customRewardId") != "":
		reward = &Reward{Type: RewardCustom, ID: tags.String("customRewardId")}
	case hasMsgID && (msgID == MsgIDHighlighted || msgID == MsgIDSkipSubsMode):
		reward = &Reward{Type: msgID}
	}

	emit(&c.handlers, &c.handlers.message, MessageEvent{
		Channel: ch,
		User:    user,
		Message: message,
		Parent:  parent,
		Cheer:   cheer,
		Reward:  reward,
		Tags:    tags,
		client:  c,
	})
}
