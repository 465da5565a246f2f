package tmi

import (
	"fmt"
	"strings"
)

// subPlan builds a SubPlan from the plan code and optional plan name tags.
// Prime subs count as tier 1.
func subPlan(plan, name string) SubPlan {
	tier := 1
	switch plan {
	case "2000":
		tier = 2
	case "3000":
		tier = 3
	}
	return SubPlan{
		Plan:    plan,
		Name:    name,
		Tier:    tier,
		IsPrime: plan == "Prime",
	}
}

// noticeUser builds the user view shared by every USERNOTICE kind.
// checkAnonymous marks users whose login is the shared anonymous gifter
// account, used for the gift kinds.
func noticeUser(tags Tags, checkAnonymous bool) NoticeUser {
	return NoticeUser{
		ID:          tags.String("userId"),
		Name:        tags.String("login"),
		DisplayName: tags.String("displayName"),

		Color: tags.String("color"),

		Badges:    tags.Badges("badges"),
		BadgeInfo: tags.Badges("badgeInfo"),

		IsMod:        tags.Bool("mod"),
		IsSubscriber: tags.Bool("subscriber"),
		Type:         tags.String("userType"),

		IsAnonymous: checkAnonymous && tags.String("login") == anonymousGifterLogin,
	}
}

// noticeMessage builds the message view of a USERNOTICE. text is the
// user's own message for the kinds that carry one, or empty.
func noticeMessage(tags Tags, text string) NoticeMessage {
	return NoticeMessage{
		ID:     tags.String("id"),
		System: tags.String("systemMsg"),
		Text:   text,
		Emotes: tags.Emotes("emotes"),
		Flags:  tags.Flags("flags"),
	}
}

// noticeGoal builds the creator goal attached to a gift notice, or nil
// when the channel has none. The description matches the Helix API by
// defaulting to an empty string.
func noticeGoal(tags Tags) *Goal {
	if !tags.Has("msgParamGoalContributionType") {
		return nil
	}
	return &Goal{
		ContributionType:     tags.String("msgParamGoalContributionType"),
		Description:          tags.String("msgParamGoalDescription"),
		CurrentContributions: tags.Int("msgParamGoalCurrentContributions"),
		TargetContributions:  tags.Int("msgParamGoalTargetContributions"),
		UserContributions:    tags.Int("msgParamGoalUserContributions"),
	}
}

// onUserNotice routes a USERNOTICE on its msg-id tag into one of the
// subscription, gift, raid, announcement, and milestone event kinds.
func (c *Client) onUserNotice(msg *Message) {
	tags := msg.Tags
	if !tags.Has("msgId") {
		c.unhandled(msg)
		return
	}
	ch := c.getChannel(msg)

	switch tags.String("msgId") {
	case MsgIDSub:
		emit(&c.handlers, &c.handlers.sub, SubEvent{
			Channel:            ch,
			User:               noticeUser(tags, false),
			Message:            noticeMessage(tags, ""),
			Plan:               subPlan(tags.String("msgParamSubPlan"), tags.String("msgParamSubPlanName")),
			MultiMonthDuration: tags.Int("msgParamMultimonthDuration"),
		})

	case MsgIDResub:
		var gift *ResubGift
		if tags.Bool("msgParamWasGifted") {
			gift = &ResubGift{
				Gifter: Gifter{
					SimpleUser: SimpleUser{
						ID:          tags.String("msgParamGifterId"),
						Name:        tags.String("msgParamGifterLogin"),
						DisplayName: tags.String("msgParamGifterName"),
					},
					IsAnonymous: tags.Bool("msgParamAnonGift"),
				},
				MonthBeingRedeemed: tags.Int("msgParamGiftMonthBeingRedeemed"),
				Months:             tags.Int("msgParamGiftMonths"),
			}
		}
		var streak *SubStreak
		if tags.Bool("msgParamShouldShareStreak") {
			streak = &SubStreak{Months: tags.Int("msgParamStreakMonths")}
		}
		emit(&c.handlers, &c.handlers.resub, ResubEvent{
			Channel:            ch,
			User:               noticeUser(tags, false),
			Message:            noticeMessage(tags, msg.Params.Get(1)),
			Plan:               subPlan(tags.String("msgParamSubPlan"), tags.String("msgParamSubPlanName")),
			CumulativeMonths:   tags.Int("msgParamCumulativeMonths"),
			MultiMonthDuration: tags.Int("msgParamMultimonthDuration"),
			MultiMonthTenure:   tags.Int("msgParamCumulativeMonths"),
			Streak:             streak,
			Gift:               gift,
		})

	case MsgIDSubMysteryGift:
		emit(&c.handlers, &c.handlers.subMysteryGift, SubMysteryGiftEvent{
			Channel: ch,
			User:    noticeUser(tags, true),
			Message: noticeMessage(tags, ""),
			Plan:    subPlan(tags.String("msgParamSubPlan"), ""),
			MysteryGift: MysteryGift{
				ID:        tags.String("msgParamCommunityGiftId"),
				Count:     tags.Int("msgParamMassGiftCount"),
				UserTotal: tags.Int("msgParamSenderCount"),
				Theme:     tags.String("msgParamGiftTheme"),
			},
			Goal: noticeGoal(tags),
		})

	case MsgIDSubGift:
		var mysteryGift *MysteryGift
		if id := tags.String("msgParamCommunityGiftId"); id != "" {
			mysteryGift = &MysteryGift{
				ID:        id,
				UserTotal: tags.Int("msgParamSenderCount"),
				Theme:     tags.String("msgParamGiftTheme"),
			}
		}
		emit(&c.handlers, &c.handlers.subGift, SubGiftEvent{
			Channel: ch,
			User:    noticeUser(tags, true),
			Message: NoticeMessage{
				ID:     tags.String("id"),
				System: tags.String("systemMsg"),
			},
			Plan: subPlan(tags.String("msgParamSubPlan"), tags.String("msgParamSubPlanName")),
			Recipient: SimpleUser{
				ID:          tags.String("msgParamRecipientId"),
				Name:        tags.String("msgParamRecipientUserName"),
				DisplayName: tags.String("msgParamRecipientDisplayName"),
			},
			GiftMonths:  tags.Int("msgParamGiftMonths"),
			MysteryGift: mysteryGift,
			Goal:        noticeGoal(tags),
		})

	case MsgIDGiftPaidUpgrade:
		emit(&c.handlers, &c.handlers.paidUpgrade, PaidUpgradeEvent{
			Channel: ch,
			User:    noticeUser(tags, false),
			Message: noticeMessage(tags, ""),
			Type:    UpgradeGift,
			Gifter: &SimpleUser{
				Name:        tags.String("msgParamSenderLogin"),
				DisplayName: tags.String("msgParamSenderName"),
			},
		})

	case MsgIDPrimePaidUpgrade:
		plan := subPlan(tags.String("msgParamSubPlan"), "")
		emit(&c.handlers, &c.handlers.paidUpgrade, PaidUpgradeEvent{
			Channel: ch,
			User:    noticeUser(tags, false),
			Message: noticeMessage(tags, ""),
			Type:    UpgradePrime,
			Plan:    &plan,
		})

	case MsgIDStandardPayForward, MsgIDCommunityPayForward:
		ev := PayForwardEvent{
			Channel: ch,
			User:    noticeUser(tags, false),
			Message: noticeMessage(tags, ""),
			Type:    PayForwardCommunity,
			PriorGifter: Gifter{
				SimpleUser: SimpleUser{
					ID:          tags.String("msgParamPriorGifterId"),
					Name:        tags.String("msgParamPriorGifterUserName"),
					DisplayName: tags.String("msgParamPriorGifterDisplayName"),
				},
				IsAnonymous: tags.Bool("msgParamPriorGifterAnonymous"),
			},
		}
		if tags.String("msgId") == MsgIDStandardPayForward {
			ev.Type = PayForwardStandard
			ev.Recipient = &SimpleUser{
				ID:          tags.String("msgParamRecipientId"),
				Name:        tags.String("msgParamRecipientUserName"),
				DisplayName: tags.String("msgParamRecipientDisplayName"),
			}
		}
		emit(&c.handlers, &c.handlers.payForward, ev)

	case MsgIDBitsBadgeTier:
		emit(&c.handlers, &c.handlers.bitsBadgeTier, BitsBadgeTierEvent{
			Channel:   ch,
			User:      noticeUser(tags, false),
			Message:   noticeMessage(tags, msg.Params.Get(1)),
			Threshold: tags.Int("msgParamThreshold"),
		})

	case MsgIDAnnouncement:
		emit(&c.handlers, &c.handlers.announcement, AnnouncementEvent{
			Channel: ch,
			User:    noticeUser(tags, false),
			Message: noticeMessage(tags, msg.Params.Get(1)),
			Color:   tags.String("msgParamColor"),
		})

	case MsgIDRaid:
		emit(&c.handlers, &c.handlers.raid, RaidEvent{
			Channel:                 ch,
			User:                    noticeUser(tags, false),
			Message:                 noticeMessage(tags, ""),
			ViewerCount:             tags.Int("msgParamViewerCount"),
			ProfileImageURLTemplate: tags.String("msgParamProfileImageUrl"),
		})

	case MsgIDUnraid:
		emit(&c.handlers, &c.handlers.unraid, UnraidEvent{
			Channel: ch,
			User:    noticeUser(tags, false),
			Message: noticeMessage(tags, ""),
		})

	case MsgIDViewerMilestone:
		emit(&c.handlers, &c.handlers.viewerMilestone, ViewerMilestoneEvent{
			Channel:     ch,
			User:        noticeUser(tags, false),
			Message:     noticeMessage(tags, msg.Params.Get(1)),
			Category:    tags.String("msgParamCategory"),
			MilestoneID: tags.String("msgParamId"),
			Value:       tags.Int("msgParamValue"),
		})

	default:
		c.unhandled(msg)
	}
}

// profileImageSizes are the resolutions Twitch serves profile images at.
var profileImageSizes = []int{28, 50, 70, 150, 300, 600}

// ProfileImageURL resolves the raider's profile image URL template at the
// given size. A size of 0 selects the default of 50. Sizes outside the
// supported set return an error naming the nearest supported size; on an
// exact distance tie the smaller size wins.
func (e RaidEvent) ProfileImageURL(size int) (string, error) {
	if size == 0 {
		size = 50
	}
	if size < 0 {
		return "", fmt.Errorf("invalid size %d: smallest size is %d", size, profileImageSizes[0])
	}
	supported := false
	for _, s := range profileImageSizes {
		if s == size {
			supported = true
			break
		}
	}
	if !supported {
		suggestion := profileImageSizes[0]
		for _, s := range profileImageSizes[1:] {
			if abs(size-s) < abs(size-suggestion) {
				suggestion = s
			}
		}
		return "", fmt.Errorf("invalid size %d: nearest supported size is %d", size, suggestion)
	}
	res := fmt.Sprintf("%dx%d", size, size)
	return strings.Replace(e.ProfileImageURLTemplate, "%s", res, 1), nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
