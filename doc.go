// comment

/*
Package tmi implements a client for Twitch chat (TMI), Twitch's IRC-based
messaging interface.

This overview provides brief introductions for types and concepts.
The godoc for each type contains expanded documentation.

Jump to the package examples to see what writing client code looks like with this package.

# Client

The Client type manages a websocket connection to the chat server.
It negotiates the twitch.tv/commands and twitch.tv/tags capabilities,
authenticates with a Token, parses each incoming line into a Message,
and delivers typed events to the callbacks you register:

	client := tmi.NewClient()
	client.Token = tmi.NewToken(os.Getenv("TWITCH_TOKEN"))
	client.InitialChannels = []string{"sodapoppin"}
	client.OnMessage(func(ev tmi.MessageEvent) {
		fmt.Printf("%s: %s\n", ev.User.DisplayName, ev.Message.Text)
	})
	err := client.Connect(ctx)

Connect blocks for the life of the connection.
Callbacks run on the client's read goroutine in arrival order,
so a callback that blocks stalls all dispatch.

A nil Token connects anonymously.
Anonymous connections can read chat but not send.

# Events

Rather than one callback signature for every message,
each kind of chat activity has its own event struct and registration method:
OnMessage for chat messages, OnSub and OnResub for subscriptions,
OnRaid for raids, OnRoomState for room setting changes, and so on.
Event structs carry decoded, typed fields;
the raw tag values remain available through the Tags type for anything
the projection does not surface.

Messages the client has no typed event for still reach OnCommand and
OnAnyMessage, which receive the parsed *Message directly.

# Sending

Outbound operations are synchronous and context-aware.
Say blocks until the server confirms delivery with a USERSTATE echo or
rejects the message with a NOTICE, which surfaces as a *NoticeError:

	outcome, err := client.Say(ctx, "sodapoppin", "Hello!")
	var notice *tmi.NoticeError
	if errors.As(err, &notice) {
		log.Println("rejected:", notice.MsgID)
	}

Join and Part block the same way on the server's membership echo.

# Message

Message represents any incoming or outgoing chat line.
Its MarshalText and UnmarshalText methods implement the wire format,
including IRCv3 message tags and their escape sequences.
Most of the time there is no need to construct one by hand;
the named constructors (Msg, Join, Ping, etc.) explicitly list the
available parameters for each command and should be preferred.

The MessageWriter interface accepts any type that knows how to marshal
itself into a line of IRC-encoded text, so raw lines remain possible:

	type rawLine string

	func (l rawLine) MarshalText() ([]byte, error) {
		return []byte(l), nil
	}

	client.WriteMessage(rawLine("PRIVMSG #world :Hello!"))

# Testing

The tmitest package provides an in-memory server mock that plugs into
Client.DialFn, and the tmidebug package wraps a connection to copy its
traffic to a writer such as os.Stdout.
*/
package tmi
