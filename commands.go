package tmi

// asTrailing marks the last parameter to be written in the trailing
// component even when it contains no space, matching how Twitch clients
// traditionally send PING, PONG, and PRIVMSG.
func (m *Message) asTrailing() *Message {
	m.trailing = true
	return m
}

// Msg constructs a new Message of type PRIVMSG, with channel being the
// target channel including its leading #, and message being the text body.
// tags may carry outbound message tags such as client-nonce, keyed by
// their wire names.
func Msg(channel, message string, tags RawTags) *Message {
	m := NewMessage(CmdPrivmsg, message)
	m.Channel = channel
	m.RawTags = tags
	return m.asTrailing()
}

// Describe constructs a new Message of type PRIVMSG wrapped in the action
// markers, equivalent to the "/me" command. By convention, actions are
// written in third-person, and clients display them with different
// formatting from regular messages.
func Describe(channel, action string) *Message {
	return Msg(channel, actionPrefix+action+actionSuffix, nil)
}

// Nick constructs the login nickname command.
func Nick(name string) *Message {
	return NewMessage(CmdNick, name)
}

// Join constructs a channel join command. channel must include its
// leading #.
func Join(channel string) *Message {
	m := NewMessage(CmdJoin)
	m.Channel = channel
	return m
}

// Part constructs a leave (depart) command for channel.
func Part(channel string) *Message {
	m := NewMessage(CmdPart)
	m.Channel = channel
	return m
}

// Ping constructs a keepalive check. The server replies with a PONG
// echoing the same message.
func Ping(message string) *Message {
	return NewMessage(CmdPing, message).asTrailing()
}

// Pong builds the reply to a PING from the server. The reply message must
// be the same as the original PING message.
func Pong(reply string) *Message {
	return NewMessage(CmdPong, reply).asTrailing()
}

// CapReq requests the listed capabilities be enabled for the client's
// connection.
func CapReq(caps string) *Message {
	return NewMessage(CmdCap, "REQ", caps).asTrailing()
}

// Pass specifies the connection password, an "oauth:"-prefixed token.
func Pass(token string) *Message {
	return NewMessage(CmdPass, token)
}
