// Package tmitest provides an in-memory chat server mock for testing
// clients without a network.
package tmitest

import (
	"bufio"
	"encoding"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/tmi-go/tmi"
)

// NewServer creates a new mock chat server that implements
// io.ReadWriteCloser, suitable for returning from a Client's DialFn.
// Don't forget to close.
func NewServer() *Server {
	s := &Server{}
	s.sendReader, s.sendWriter = io.Pipe()
	s.recvReader, s.recvWriter = io.Pipe()

	s.recv = make(chan []byte, 1)

	// should exit when Close() is called
	go s.read()
	go s.write()
	return s
}

// Server is a scriptable chat server endpoint. Each line the client
// sends is parsed and passed to Handler; the handler replies through the
// server's WriteMessage or WriteString, or uses Login for the standard
// login exchange.
type Server struct {

	// Handler receives each message the client sends. It may be nil.
	Handler func(w tmi.MessageWriter, m *tmi.Message)

	rs   sync.Once
	recv chan []byte

	recvReader *io.PipeReader
	recvWriter *io.PipeWriter

	sendReader *io.PipeReader
	sendWriter *io.PipeWriter
}

// Read is how the client reads lines from the server.
func (s *Server) Read(p []byte) (int, error) {
	return s.sendReader.Read(p)
}

// Write is how a client sends messages to the server.
func (s *Server) Write(p []byte) (int, error) {
	s.recv <- append([]byte(nil), p...)
	return len(p), nil
}

func (s *Server) Close() error {
	_ = s.recvWriter.Close()
	_ = s.sendWriter.Close()
	s.rs.Do(func() {
		close(s.recv)
	})
	return nil
}

// WriteString sends raw lines to the client.
func (s *Server) WriteString(str string) {
	if !strings.HasSuffix(str, "\r\n") {
		str = str + "\r\n"
	}
	if _, err := s.sendWriter.Write([]byte(str)); err != nil {
		log.Println("mock server write error:", err)
	}
}

// WriteMessage sends a message from the server to the client.
func (s *Server) WriteMessage(m encoding.TextMarshaler) {
	b, err := m.MarshalText()
	if err != nil {
		log.Println("marshaler:", err)
		return
	}
	if _, err := s.sendWriter.Write(append(b, "\r\n"...)); err != nil {
		log.Println("mock server write error:", err)
	}
}

// Login replies to a client NICK with the standard welcome, assigning
// nick. Call it from Handler:
//
//	server.Handler = func(w tmi.MessageWriter, m *tmi.Message) {
//		if m.Command.Is(tmi.CmdNick) {
//			server.Login("somebot")
//		}
//	}
func (s *Server) Login(nick string) {
	s.WriteString(":tmi.twitch.tv 001 " + nick + " :Welcome, GLHF!")
	s.WriteString(":tmi.twitch.tv 376 " + nick + " :>")
}

func (s *Server) read() {
	scanner := bufio.NewScanner(s.recvReader)

	for scanner.Scan() {
		line := scanner.Bytes()
		m := new(tmi.Message)
		if err := m.UnmarshalText(line); err != nil {
			log.Println("unmarshaling error:", err)
			continue
		}
		if s.Handler != nil {
			s.Handler(s, m)
		}
	}
}

func (s *Server) write() {
	for b := range s.recv {
		if _, err := s.recvWriter.Write(b); err != nil {
			log.Println("server mock write error:", err)
		}
	}
}
