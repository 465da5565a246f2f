package tmi

import (
	"strings"
	"testing"
)

func TestUserNotice_sub(t *testing.T) {
	c := NewClient()
	var got SubEvent
	c.OnSub(func(ev SubEvent) { got = ev })
	dispatchLine(t, c, `@badge-info=;badges=subscriber/0;display-name=Ronni;login=ronni;msg-id=sub;msg-param-cumulative-months=1;msg-param-multimonth-duration=3;msg-param-sub-plan-name=Channel\sSubscription;msg-param-sub-plan=1000;room-id=12345;system-msg=ronni\shas\ssubscribed!;user-id=1337 :tmi.twitch.tv USERNOTICE #pajlada`)

	if got.User.Name != "ronni" || got.User.DisplayName != "Ronni" {
		t.Errorf("user = %#v", got.User)
	}
	if got.Plan.Plan != "1000" || got.Plan.Tier != 1 || got.Plan.IsPrime {
		t.Errorf("plan = %#v", got.Plan)
	}
	if got.Plan.Name != "Channel Subscription" {
		t.Errorf("plan name = %q", got.Plan.Name)
	}
	if got.MultiMonthDuration != 3 {
		t.Errorf("multi month duration = %d", got.MultiMonthDuration)
	}
	if got.Message.System != "ronni has subscribed!" {
		t.Errorf("system = %q", got.Message.System)
	}
}

func TestSubPlan(t *testing.T) {
	for _, tt := range []struct {
		plan  string
		tier  int
		prime bool
	}{
		{"1000", 1, false},
		{"2000", 2, false},
		{"3000", 3, false},
		{"Prime", 1, true},
	} {
		p := subPlan(tt.plan, "")
		if p.Tier != tt.tier || p.IsPrime != tt.prime {
			t.Errorf("subPlan(%q) = %#v", tt.plan, p)
		}
	}
}

func TestUserNotice_resub(t *testing.T) {
	c := NewClient()
	var got ResubEvent
	c.OnResub(func(ev ResubEvent) { got = ev })
	dispatchLine(t, c, "@display-name=Ronni;login=ronni;msg-id=resub;msg-param-cumulative-months=26;msg-param-should-share-streak=1;msg-param-streak-months=12;msg-param-sub-plan=Prime;user-id=1337 :tmi.twitch.tv USERNOTICE #pajlada :Great stream!")

	if got.CumulativeMonths != 26 {
		t.Errorf("cumulative months = %d", got.CumulativeMonths)
	}
	if got.Streak == nil || got.Streak.Months != 12 {
		t.Errorf("streak = %#v", got.Streak)
	}
	if got.Gift != nil {
		t.Error("non-gifted resub should have no gift")
	}
	if !got.Plan.IsPrime {
		t.Error("Prime plan should be marked")
	}
	if got.Message.Text != "Great stream!" {
		t.Errorf("text = %q", got.Message.Text)
	}
}

func TestUserNotice_resubGift(t *testing.T) {
	c := NewClient()
	var got ResubEvent
	c.OnResub(func(ev ResubEvent) { got = ev })
	dispatchLine(t, c, "@display-name=Ronni;login=ronni;msg-id=resub;msg-param-cumulative-months=5;msg-param-was-gifted=true;msg-param-anon-gift=false;msg-param-gifter-id=999;msg-param-gifter-login=generousgifter;msg-param-gifter-name=GenerousGifter;msg-param-gift-months=6;msg-param-gift-month-being-redeemed=3;msg-param-sub-plan=1000;user-id=1337 :tmi.twitch.tv USERNOTICE #pajlada")

	if got.Gift == nil {
		t.Fatal("gifted resub should carry the gift details")
	}
	if got.Gift.Gifter.Name != "generousgifter" {
		t.Errorf("gifter = %#v", got.Gift.Gifter)
	}
	if got.Gift.Months != 6 {
		t.Errorf("gift months = %d", got.Gift.Months)
	}
	if got.Gift.MonthBeingRedeemed != 3 {
		t.Errorf("month being redeemed = %d", got.Gift.MonthBeingRedeemed)
	}
	if got.Gift.Gifter.IsAnonymous {
		t.Error("gifter should not be anonymous")
	}
	if got.Streak != nil {
		t.Error("streak should be absent when not shared")
	}
}

func TestUserNotice_subMysteryGift(t *testing.T) {
	c := NewClient()
	var got SubMysteryGiftEvent
	c.OnSubMysteryGift(func(ev SubMysteryGiftEvent) { got = ev })
	dispatchLine(t, c, "@display-name=AnAnonymousGifter;login=ananonymousgifter;msg-id=submysterygift;msg-param-community-gift-id=777;msg-param-mass-gift-count=20;msg-param-sender-count=100;msg-param-sub-plan=1000;msg-param-gift-theme=party;msg-param-goal-contribution-type=SUB_POINTS;msg-param-goal-current-contributions=120;msg-param-goal-target-contributions=500;msg-param-goal-user-contributions=20;user-id=274598607 :tmi.twitch.tv USERNOTICE #pajlada")

	if !got.User.IsAnonymous {
		t.Error("the shared gifter account should be marked anonymous")
	}
	if got.MysteryGift.Count != 20 || got.MysteryGift.UserTotal != 100 {
		t.Errorf("mystery gift = %#v", got.MysteryGift)
	}
	if got.MysteryGift.ID != "777" || got.MysteryGift.Theme != "party" {
		t.Errorf("mystery gift = %#v", got.MysteryGift)
	}
	if got.Goal == nil {
		t.Fatal("goal should be present")
	}
	if got.Goal.ContributionType != "SUB_POINTS" || got.Goal.TargetContributions != 500 {
		t.Errorf("goal = %#v", got.Goal)
	}
}

func TestUserNotice_subGift(t *testing.T) {
	c := NewClient()
	var got SubGiftEvent
	c.OnSubGift(func(ev SubGiftEvent) { got = ev })
	dispatchLine(t, c, "@display-name=Gifter;login=gifter;msg-id=subgift;msg-param-gift-months=3;msg-param-months=2;msg-param-recipient-display-name=Lucky;msg-param-recipient-id=456;msg-param-recipient-user-name=lucky;msg-param-sub-plan=1000;user-id=123 :tmi.twitch.tv USERNOTICE #pajlada")

	if got.Recipient.Name != "lucky" || got.Recipient.ID != "456" {
		t.Errorf("recipient = %#v", got.Recipient)
	}
	if got.GiftMonths != 3 {
		t.Errorf("gift months = %d", got.GiftMonths)
	}
	if got.MysteryGift != nil {
		t.Error("a directed gift has no mystery gift")
	}
	if got.User.IsAnonymous {
		t.Error("a named gifter is not anonymous")
	}

	// gifts that came out of a mystery batch reference the batch id
	c.OnSubGift(func(ev SubGiftEvent) { got = ev })
	dispatchLine(t, c, "@display-name=Gifter;login=gifter;msg-id=subgift;msg-param-community-gift-id=777;msg-param-sender-count=0;msg-param-recipient-id=456;msg-param-recipient-user-name=lucky;msg-param-sub-plan=1000;user-id=123 :tmi.twitch.tv USERNOTICE #pajlada")
	if got.MysteryGift == nil || got.MysteryGift.ID != "777" {
		t.Errorf("mystery gift = %#v", got.MysteryGift)
	}
	if got.MysteryGift.Count != 0 {
		t.Error("the per-recipient gift does not repeat the batch count")
	}
}

func TestUserNotice_paidUpgrades(t *testing.T) {
	c := NewClient()
	var got PaidUpgradeEvent
	c.OnPaidUpgrade(func(ev PaidUpgradeEvent) { got = ev })

	dispatchLine(t, c, "@display-name=Lucky;login=lucky;msg-id=giftpaidupgrade;msg-param-sender-login=gifter;msg-param-sender-name=Gifter;user-id=456 :tmi.twitch.tv USERNOTICE #pajlada")
	if got.Type != UpgradeGift {
		t.Errorf("type = %q", got.Type)
	}
	if got.Gifter == nil || got.Gifter.Name != "gifter" {
		t.Errorf("gifter = %#v", got.Gifter)
	}
	if got.Plan != nil {
		t.Error("gift upgrades carry no plan")
	}

	dispatchLine(t, c, "@display-name=Lucky;login=lucky;msg-id=primepaidupgrade;msg-param-sub-plan=2000;user-id=456 :tmi.twitch.tv USERNOTICE #pajlada")
	if got.Type != UpgradePrime {
		t.Errorf("type = %q", got.Type)
	}
	if got.Plan == nil || got.Plan.Tier != 2 {
		t.Errorf("plan = %#v", got.Plan)
	}
	if got.Gifter != nil {
		t.Error("prime upgrades have no gifter")
	}
}

func TestUserNotice_payForward(t *testing.T) {
	c := NewClient()
	var got PayForwardEvent
	c.OnPayForward(func(ev PayForwardEvent) { got = ev })

	dispatchLine(t, c, "@display-name=Forwarder;login=forwarder;msg-id=standardpayforward;msg-param-prior-gifter-anonymous=false;msg-param-prior-gifter-display-name=Original;msg-param-prior-gifter-id=111;msg-param-prior-gifter-user-name=original;msg-param-recipient-display-name=Next;msg-param-recipient-id=222;msg-param-recipient-user-name=next;user-id=333 :tmi.twitch.tv USERNOTICE #pajlada")
	if got.Type != PayForwardStandard {
		t.Errorf("type = %q", got.Type)
	}
	if got.PriorGifter.Name != "original" || got.PriorGifter.IsAnonymous {
		t.Errorf("prior gifter = %#v", got.PriorGifter)
	}
	if got.Recipient == nil || got.Recipient.Name != "next" {
		t.Errorf("recipient = %#v", got.Recipient)
	}

	dispatchLine(t, c, "@display-name=Forwarder;login=forwarder;msg-id=communitypayforward;msg-param-prior-gifter-anonymous=true;msg-param-prior-gifter-display-name=AnAnonymousGifter;msg-param-prior-gifter-id=274598607;msg-param-prior-gifter-user-name=ananonymousgifter;user-id=333 :tmi.twitch.tv USERNOTICE #pajlada")
	if got.Type != PayForwardCommunity {
		t.Errorf("type = %q", got.Type)
	}
	if !got.PriorGifter.IsAnonymous {
		t.Error("prior gifter should be anonymous")
	}
	if got.Recipient != nil {
		t.Error("community pay-forwards have no single recipient")
	}
}

func TestUserNotice_announcement(t *testing.T) {
	c := NewClient()
	var got AnnouncementEvent
	c.OnAnnouncement(func(ev AnnouncementEvent) { got = ev })
	dispatchLine(t, c, "@display-name=Mod;login=mod;msg-id=announcement;msg-param-color=PURPLE;user-id=123 :tmi.twitch.tv USERNOTICE #pajlada :The stream starts in ten minutes!")
	if got.Color != "PURPLE" {
		t.Errorf("color = %q", got.Color)
	}
	if got.Message.Text != "The stream starts in ten minutes!" {
		t.Errorf("text = %q", got.Message.Text)
	}
}

func TestUserNotice_raid(t *testing.T) {
	c := NewClient()
	var got RaidEvent
	c.OnRaid(func(ev RaidEvent) { got = ev })
	dispatchLine(t, c, `@display-name=Raider;login=raider;msg-id=raid;msg-param-displayName=Raider;msg-param-login=raider;msg-param-profileImageURL=https://static-cdn.jtvnw.net/jtv_user_pictures/cae3ca63-510d-4715-b4ce-059dcf938978-profile_image-%s.png;msg-param-viewerCount=5000;user-id=123 :tmi.twitch.tv USERNOTICE #pajlada`)
	if got.ViewerCount != 5000 {
		t.Errorf("viewer count = %d", got.ViewerCount)
	}

	u, err := got.ProfileImageURL(0)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(u, "50x50") {
		t.Errorf("default url = %q", u)
	}
	u, err = got.ProfileImageURL(600)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(u, "600x600") || strings.Contains(u, "%s") {
		t.Errorf("url = %q", u)
	}
}

func TestRaidEvent_ProfileImageURL_errors(t *testing.T) {
	ev := RaidEvent{ProfileImageURLTemplate: "https://example.com/img-%s.png"}
	if _, err := ev.ProfileImageURL(-1); err == nil {
		t.Error("negative sizes should be rejected")
	}
	_, err := ev.ProfileImageURL(40)
	if err == nil {
		t.Fatal("unsupported sizes should be rejected")
	}
	// 40 is equally close to 28 and... no: 40-28=12, 50-40=10, so 50
	if !strings.Contains(err.Error(), "50") {
		t.Errorf("suggestion should name 50: %v", err)
	}
	// an exact tie suggests the smaller size
	_, err = ev.ProfileImageURL(39)
	if err == nil || !strings.Contains(err.Error(), "28") {
		t.Errorf("39 should suggest 28: %v", err)
	}
}

func TestUserNotice_viewerMilestone(t *testing.T) {
	c := NewClient()
	var got ViewerMilestoneEvent
	c.OnViewerMilestone(func(ev ViewerMilestoneEvent) { got = ev })
	dispatchLine(t, c, "@display-name=Regular;login=regular;msg-id=viewermilestone;msg-param-category=watch-streak;msg-param-id=abc-milestone;msg-param-value=10;user-id=123 :tmi.twitch.tv USERNOTICE #pajlada :Ten in a row!")
	if got.Category != "watch-streak" {
		t.Errorf("category = %q", got.Category)
	}
	if got.MilestoneID != "abc-milestone" {
		t.Errorf("milestone id = %q", got.MilestoneID)
	}
	if got.Value != 10 {
		t.Errorf("value = %d", got.Value)
	}
	if got.Message.Text != "Ten in a row!" {
		t.Errorf("text = %q", got.Message.Text)
	}
}

func TestUserNotice_unknownKind(t *testing.T) {
	c := NewClient()
	var unhandled int
	c.OnUnhandled(func(m *Message) { unhandled++ })
	dispatchLine(t, c, "@msg-id=somenewkind;login=user :tmi.twitch.tv USERNOTICE #pajlada")
	if unhandled != 1 {
		t.Error("unknown USERNOTICE kinds should reach the unhandled hook")
	}
}
