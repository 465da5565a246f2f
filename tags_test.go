package tmi_test

import (
	"reflect"
	"testing"

	"github.com/tmi-go/tmi"
)

func parse(t *testing.T, raw string) *tmi.Message {
	t.Helper()
	m := new(tmi.Message)
	if err := m.UnmarshalText([]byte(raw)); err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return m
}

func TestTags_escapes(t *testing.T) {
	for _, tt := range []struct {
		escaped string
		want    string
	}{
		{`ronni\shas\ssubscribed!`, "ronni has subscribed!"},
		{`semi\:colon`, "semi;colon"},
		{`back\\slash`, `back\slash`},
		{`line\r\nbreak`, "line\r\nbreak"},
		{`dangling\`, "dangling"},
		{`unknown\x`, "unknownx"},
	} {
		m := parse(t, "@system-msg="+tt.escaped+" :tmi.twitch.tv USERNOTICE #chan")
		if got := m.RawTags.Get("system-msg"); got != tt.want {
			t.Errorf("unescape %q = %q; want %q", tt.escaped, got, tt.want)
		}
	}
}

func TestTags_string(t *testing.T) {
	m := parse(t, "@display-name=Ronni;color=#0000FF :r!r@r.tmi.twitch.tv PRIVMSG #chan :hi")
	if got := m.Tags.String("displayName"); got != "Ronni" {
		t.Errorf("displayName = %q", got)
	}
	if got := m.Tags.String("color"); got != "#0000FF" {
		t.Errorf("color = %q", got)
	}
	if m.Tags.Has("badges") {
		t.Error("badges should be absent")
	}
}

func TestTags_number(t *testing.T) {
	m := parse(t, "@bits=100;tmi-sent-ts=1507246572675 :r!r@r.tmi.twitch.tv PRIVMSG #chan :cheer100")
	if got := m.Tags.Int("bits"); got != 100 {
		t.Errorf("bits = %d", got)
	}
	if got := m.Tags.Number("tmiSentTs"); got != 1507246572675 {
		t.Errorf("tmiSentTs = %v", got)
	}
}

func TestTags_booleans(t *testing.T) {
	// mod is a 0/1 flag; msg-param-should-share-streak-months uses the
	// literal words true/false
	m := parse(t, "@mod=1;subscriber=0;first-msg=1 :r!r@r.tmi.twitch.tv PRIVMSG #chan :hi")
	if !m.Tags.Bool("mod") {
		t.Error("mod should be true")
	}
	if m.Tags.Bool("subscriber") {
		t.Error("subscriber should be false")
	}
	if !m.Tags.Bool("firstMsg") {
		t.Error("firstMsg should be true")
	}
}

func TestTags_badges(t *testing.T) {
	m := parse(t, "@badges=broadcaster/1,subscriber/3012,partner/1;badge-info=subscriber/38 :r!r@r.tmi.twitch.tv PRIVMSG #chan :hi")
	badges := m.Tags.Badges("badges")
	want := tmi.Badges{"broadcaster": "1", "subscriber": "3012", "partner": "1"}
	if !reflect.DeepEqual(badges, want) {
		t.Errorf("badges = %#v; want %#v", badges, want)
	}
	if !badges.Has("broadcaster") {
		t.Error("Has(broadcaster) should be true")
	}
	info := m.Tags.Badges("badgeInfo")
	if got := info["subscriber"]; got != "38" {
		t.Errorf("badgeInfo subscriber = %q", got)
	}
}

func TestTags_badgesNeverNil(t *testing.T) {
	m := parse(t, ":r!r@r.tmi.twitch.tv PRIVMSG #chan :hi")
	if m.Tags.Badges("badges") == nil {
		t.Error("Badges should return an empty map for missing tags")
	}
	if m.Tags.Emotes("emotes") == nil {
		t.Error("Emotes should return an empty map for missing tags")
	}
}

func TestTags_emotes(t *testing.T) {
	// end offsets on the wire are inclusive; decoded ranges are exclusive
	m := parse(t, "@emotes=25:0-4,12-16/1902:6-10 :r!r@r.tmi.twitch.tv PRIVMSG #chan :Kappa Keepo Kappa")
	emotes := m.Tags.Emotes("emotes")
	want := tmi.EmoteMap{
		"25":   {{0, 5}, {12, 17}},
		"1902": {{6, 11}},
	}
	if !reflect.DeepEqual(emotes, want) {
		t.Errorf("emotes = %#v; want %#v", emotes, want)
	}
}

func TestTags_flags(t *testing.T) {
	// flag offsets index code points of the message text, not bytes
	m := parse(t, "@flags=7-12:S.7 :r!r@r.tmi.twitch.tv PRIVMSG #chan :é asdf qwerty zxcv")
	flags := m.Tags.Flags("flags")
	if len(flags) != 1 {
		t.Fatalf("flags = %#v", flags)
	}
	f := flags[0]
	if f.Start != 7 || f.End != 13 {
		t.Errorf("range = %d-%d", f.Start, f.End)
	}
	if f.Text != "qwerty" {
		t.Errorf("text = %q; want %q", f.Text, "qwerty")
	}
	if got := f.Flags["S"]; got != 7 {
		t.Errorf("S = %d", got)
	}
}

func TestTags_flagsMultiple(t *testing.T) {
	m := parse(t, "@flags=0-3:A.3/I.5,5-8:P.6 :r!r@r.tmi.twitch.tv PRIVMSG #chan :dang heck")
	flags := m.Tags.Flags("flags")
	if len(flags) != 2 {
		t.Fatalf("flags = %#v", flags)
	}
	if flags[0].Text != "dang" || flags[0].Flags["A"] != 3 || flags[0].Flags["I"] != 5 {
		t.Errorf("first = %#v", flags[0])
	}
	if flags[1].Text != "heck" || flags[1].Flags["P"] != 6 {
		t.Errorf("second = %#v", flags[1])
	}
}

func TestTags_followersOnly(t *testing.T) {
	for _, tt := range []struct {
		val  string
		want int
	}{
		{"-1", -1},
		{"0", 0},
		{"30", 30},
	} {
		m := parse(t, "@followers-only="+tt.val+";room-id=12345 :tmi.twitch.tv ROOMSTATE #chan")
		if got := m.Tags.Int("followersOnly"); got != tt.want {
			t.Errorf("followersOnly %q = %d; want %d", tt.val, got, tt.want)
		}
	}
}

func TestTags_threadID(t *testing.T) {
	m := parse(t, "@thread-id=12345_67890 :r!r@r.tmi.twitch.tv WHISPER somebot :psst")
	want := []string{"12345", "67890"}
	if got := m.Tags.List("threadId"); !reflect.DeepEqual(got, want) {
		t.Errorf("threadId = %#v; want %#v", got, want)
	}
}

func TestTags_commaSeparated(t *testing.T) {
	m := parse(t, "@emote-sets=0,33,50,237 :tmi.twitch.tv GLOBALUSERSTATE")
	want := []string{"0", "33", "50", "237"}
	if got := m.Tags.List("emoteSets"); !reflect.DeepEqual(got, want) {
		t.Errorf("emoteSets = %#v; want %#v", got, want)
	}
}

func TestTags_unknownTagsPreserved(t *testing.T) {
	m := parse(t, "@someday-a-new-tag=value;mod=0 :r!r@r.tmi.twitch.tv PRIVMSG #chan :hi")
	if got := m.UnknownTags.Get("someday-a-new-tag"); got != "value" {
		t.Errorf("unknown tag = %q", got)
	}
	if m.UnknownTags.Has("mod") {
		t.Error("known tags should not appear in UnknownTags")
	}
	if got := m.RawTags.Get("someday-a-new-tag"); got != "value" {
		t.Errorf("raw tag = %q", got)
	}
}
