package tmi

import "testing"

func TestNormalizeChannel(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want string
		err  bool
	}{
		{"pajlada", "pajlada", false},
		{"#pajlada", "pajlada", false},
		{"  #PajLada  ", "pajlada", false},
		{"SODAPOPPIN", "sodapoppin", false},
		{"", "", true},
		{"#", "", true},
		{"   ", "", true},
	} {
		got, err := normalizeChannel(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("normalizeChannel(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("normalizeChannel(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func roomStateTags(t *testing.T, raw string) Tags {
	t.Helper()
	m := new(Message)
	if err := m.UnmarshalText([]byte(raw)); err != nil {
		t.Fatal(err)
	}
	return m.Tags
}

func TestChannel_mergeRoomState(t *testing.T) {
	ch := newChannel("pajlada")
	if _, ok := ch.RoomState(); ok {
		t.Fatal("room state should be unknown before the first ROOMSTATE")
	}

	full := roomStateTags(t, "@emote-only=0;followers-only=-1;r9k=0;room-id=11148817;slow=0;subs-only=0 :tmi.twitch.tv ROOMSTATE #pajlada")
	state, initial := ch.mergeRoomState(full)
	if !initial {
		t.Error("first merge should report initial")
	}
	want := RoomState{FollowersOnly: -1, RoomID: "11148817"}
	if state != want {
		t.Errorf("state = %#v; want %#v", state, want)
	}
	if ch.ID() != "11148817" {
		t.Errorf("id = %q", ch.ID())
	}

	// partial updates leave absent settings untouched
	partial := roomStateTags(t, "@room-id=11148817;slow=30 :tmi.twitch.tv ROOMSTATE #pajlada")
	state, initial = ch.mergeRoomState(partial)
	if initial {
		t.Error("second merge should not report initial")
	}
	want.Slow = 30
	if state != want {
		t.Errorf("state = %#v; want %#v", state, want)
	}

	got, ok := ch.RoomState()
	if !ok || got != want {
		t.Errorf("RoomState() = %#v, %v", got, ok)
	}
}

func TestChannel_join(t *testing.T) {
	ch := newChannel("pajlada")
	if ch.IsJoined() {
		t.Error("new channel should not be joined")
	}
	ch.setJoined(true)
	if !ch.IsJoined() {
		t.Error("channel should be joined")
	}
	if ch.Name() != "pajlada" {
		t.Errorf("name = %q", ch.Name())
	}
}
