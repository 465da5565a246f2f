package tmi

import (
	"bytes"
	"encoding"
	"errors"
	"fmt"
	"strings"
)

// warnTruncate is an error indicating that an encoded IRC message is too long.
// The message was still written to the connection, but the server is likely to
// truncate the end of the message before relaying it to other clients.
//
// IRC servers limit messages to 512 bytes in length, including the trailing
// CR-LF characters. The message-tags capability allows an additional 8191
// bytes for the tags section of a message, including the leading '@' and
// trailing SPACE, of which clients may use at most 4094.
// https://ircv3.net/specs/extensions/message-tags.html
var warnTruncate = errors.New("message length exceeds IRC limit and may be truncated")

// parameterLimit is the maximum number of parameters a message may contain as defined by the protocol.
const parameterLimit = 15

// NewMessage constructs a new Message to be sent on the connection
// with cmd as the verb and args as the message parameters.
//
// Only the last argument may contain SPACE (ascii 32, %x20).
// This is a limitation defined in the IRC protocol.
func NewMessage(cmd Command, args ...string) *Message {
	p := make(Params, len(args), parameterLimit)
	copy(p, args)
	cmd.normalize()
	return &Message{
		Command: cmd,
		Params:  p,
	}
}

// Message represents any incoming or outgoing Twitch chat line.
//
// A message consists of up to five parts: tags, source, verb, channel, and
// params. The channel is carried as the first parameter on the wire; it is
// split out here because nearly every Twitch command is channel-scoped.
type Message struct {

	// Raw is the exact line as read from the connection,
	// without the trailing CR-LF pair. Empty for constructed messages.
	Raw string

	// Tags holds the decoded message tag values, keyed by their
	// camelCase name. See the Tags type for typed accessors.
	Tags Tags

	// RawTags holds every message tag that appeared on the line, keyed by
	// its wire name, with escape sequences resolved but no further decoding.
	RawTags RawTags

	// UnknownTags holds the subset of RawTags with wire names this package
	// does not know how to decode.
	UnknownTags RawTags

	// Source is where the message originated from.
	// It's set by the prefix portion of an IRC message.
	//
	// Source should be left empty for messages that will be written to a
	// connection; Twitch ignores client-supplied prefixes.
	Source Prefix

	// Command is the IRC verb or numeric such as PRIVMSG, NOTICE, 001, etc.
	Command Command

	// Channel is the channel parameter including its leading '#',
	// or empty for messages with no channel scope.
	Channel string

	// Params contains the message parameters after the channel.
	// If a message included a trailing component,
	// it will be included without special treatment.
	// For outgoing messages,
	// only the last parameter may contain a SPACE (ascii 32).
	Params Params

	// trailing forces MarshalText to write the last param with a leading
	// ':' even when it contains no space.
	trailing bool
}

// MarshalText implements encoding.TextMarshaler, producing a single
// CR-LF-terminated line suitable for writing to a Twitch chat connection.
func (m *Message) MarshalText() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 1024))
	var tbc int // tags byte count
	var err error

	if m.RawTags != nil {
		buf.WriteRune(startTags)
		first := true
		for k, v := range m.RawTags {
			if !first {
				buf.WriteRune(delimTag)
			}
			first = false
			buf.WriteString(k)
			buf.WriteRune(delimTagValue)
			buf.WriteString(escaper.Replace(v))
		}
		buf.WriteRune(delimParam)

		tbc = buf.Len()
		if tbc > 4094 {
			err = fmt.Errorf("%w: message tags were %d bytes", warnTruncate, tbc)
		}
	}

	buf.WriteString(m.Command.String())

	if m.Channel != "" {
		buf.WriteRune(delimParam)
		buf.WriteString(m.Channel)
	}

	for i := 0; i < len(m.Params); i++ {
		buf.WriteRune(delimParam)

		if i == len(m.Params)-1 {
			p := m.Params[i]
			if m.trailing || p == "" || strings.ContainsRune(p, delimParam) || strings.HasPrefix(p, ":") {
				buf.WriteRune(startTrailing)
			}
		}
		buf.WriteString(m.Params[i])
	}
	buf.WriteString("\r\n")

	if l := buf.Len() - tbc; l > 512 {
		err = fmt.Errorf("%w: message length is %d bytes", warnTruncate, l)
	}

	return buf.Bytes(), err
}

// UnmarshalText implements encoding.TextUnmarshaler,
// accepting a line read from a chat stream.
// text should not include the trailing CR-LF pair.
//
// This will unmarshal an arbitrarily long sequence of bytes.
// Length limitations should be implemented at the scanner.
func (m *Message) UnmarshalText(text []byte) error {
	m.Raw = string(text)

	// go start the lexer
	l := lex(m.Raw)

	// re-using a message to unmarshal a new line should clear old fields
	m.Tags = nil
	m.RawTags = nil
	m.UnknownTags = nil
	m.Source = Prefix{}
	m.Command = ""
	m.Channel = ""
	m.Params = nil
	m.trailing = false

	// Tag keys and values are buffered until the whole line is scanned
	// because some tag decoders read the message params.
	var tagKeys, tagVals []string

	for {
		i := l.nextItem()
		switch i.typ {
		case itemEOF:
			for n := range tagKeys {
				m.decodeTag(tagKeys[n], tagVals[n])
			}
			return nil
		case itemError:
			return errors.New(i.val)
		case itemTagKey:
			v := l.nextItem() // type itemTagValue is *always* emitted after itemTagKey
			if i.val == "" {  // if the key was empty, skip
				continue
			}
			tagKeys = append(tagKeys, i.val)
			tagVals = append(tagVals, unescaper.Replace(v.val))
		case itemPrefix:
			m.Source = parsePrefix(i.val)
		case itemCommand:
			m.Command = Command(i.val)
		case itemChannel:
			m.Channel = i.val
		case itemParam:
			m.Params = append(m.Params, i.val)
		}
	}
}

// parsePrefix splits a message source into its nick, user, and host parts.
// A source with neither '!' nor '@' is a server name and lands in Host.
func parsePrefix(s string) Prefix {
	var p Prefix
	if i := strings.IndexByte(s, '!'); i >= 0 {
		p.Nick = Nickname(s[:i])
		rest := s[i+1:]
		if j := strings.IndexByte(rest, '@'); j >= 0 {
			p.User = rest[:j]
			p.Host = rest[j+1:]
		} else {
			p.User = rest
		}
		return p
	}
	if j := strings.IndexByte(s, '@'); j >= 0 {
		p.Nick = Nickname(s[:j])
		p.Host = s[j+1:]
		return p
	}
	p.Host = s
	return p
}

// unescaper is a string replacer that unescapes message tag values.
var unescaper = strings.NewReplacer(
	"\\:", ";",
	"\\r", "\r",
	"\\n", "\n",
	"\\s", " ",
	"\\\\", "\\",
	"\\", "",
)

// escaper is a string replacer that escapes message tag values for transmission.
var escaper = strings.NewReplacer(
	";", "\\:",
	"\r", "\\r",
	"\n", "\\n",
	" ", "\\s",
	"\\", "\\\\",
)

// RawTags holds undecoded message tag values for an incoming or outgoing line.
type RawTags map[string]string

// Set will set the tag key k with value v.
func (t *RawTags) Set(k string, v string) {
	if *t == nil {
		*t = make(RawTags)
	}
	(*t)[k] = v
}

// Get will get the message tag value for key. All variations of missing or
// empty values return an empty string. To check whether a message included a
// specific tag key, use Has.
func (t RawTags) Get(key string) string {
	return t[key]
}

// Has returns true when the given key was listed in the message tags.
func (t RawTags) Has(key string) bool {
	_, ok := t[key]
	return ok
}

// Command is an IRC command such as PRIVMSG, NOTICE, 001, etc.
//
// A command may also be known as the "verb", "event type", or "numeric".
type Command string

// String implements fmt.Stringer
func (c Command) String() string {
	return string(c)
}

// normalize will modify the command to use consistent casing.
func (c *Command) normalize() {
	*c = Command(strings.ToUpper(c.String()))
}

// Is does a case-insensitive compare between two commands, which is
// useful if a command was given as a string constant.
func (c Command) Is(oc Command) bool {
	return strings.EqualFold(string(c), string(oc))
}

// Prefix is the optional message (line) prefix,
// which indicates the source (user or server) of the message.
//
// Example line with no prefix:
//
//	PING :tmi.js
//
// Example "fulladdress" prefix:
//
//	:ronni!ronni@ronni.tmi.twitch.tv PRIVMSG #dallas :Kappa
//
// Example server prefix:
//
//	:tmi.twitch.tv ROOMSTATE #dallas
type Prefix struct {
	Nick Nickname
	User string
	Host string
}

// IsServer returns true when the message originated from the server
// (as opposed to a user). When true, the server name is in the Host field.
func (p Prefix) IsServer() bool {
	return p.Host != "" && p.Nick == ""
}

// String implements fmt.Stringer
func (p Prefix) String() string {
	switch {
	case p.Nick == "" && p.User == "" && p.Host == "":
		return ""
	case p.Nick == "" && p.User == "":
		return p.Host
	case p.User == "":
		return p.Nick.String()
	default:
		return p.Nick.String() + "!" + p.User + "@" + p.Host
	}
}

// Params contains the slice of arguments for a message, not counting the
// channel.
//
// Prefer the Get method for reading params rather than accessing the slice
// directly.
//
// If a message included a trailing component as defined in [RFC 1459],
// it will be included as a normal parameter.
//
// [RFC 1459]: https://datatracker.ietf.org/doc/html/rfc1459#section-2.3.1
type Params []string

// Get returns the nth parameter (starting at 1) from the parameters list,
// or "" (empty string) if it did not exist.
//
// Because parameters have meaning based on their position in the argument
// list, Get does not differentiate between missing and empty parameters.
func (p Params) Get(n int) string {
	if n > len(p) || n < 1 {
		return ""
	}
	return p[n-1]
}

type Nickname string

func (n Nickname) String() string {
	return string(n)
}

// Is determines whether a nickname matches a string by using Unicode case folding.
func (n Nickname) Is(other string) bool {
	return strings.EqualFold(n.String(), other)
}

// MessageWriter contains methods for sending IRC messages to a server.
type MessageWriter interface {

	// WriteMessage writes the message to the client's outgoing message queue.
	// The given encoding.TextMarshaler MUST return a byte slice which
	// conforms to the IRC protocol. If the slice does not end in "\r\n",
	// then the sequence will be appended.
	WriteMessage(encoding.TextMarshaler)
}
