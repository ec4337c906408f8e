// Package client speaks the chat wire protocol from the user's side: it
// sends commands and turns every line received from the server into a typed
// Event for a single handler.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/andy6609/linechat/internal/protocol"
)

// EventKind tells a handler what a received line means.
type EventKind int

const (
	EventSuccess   EventKind = iota // OK status reply
	EventFailure                    // BAD status reply
	EventBroadcast                  // HAIL relayed from a user
	EventPrivate                    // MESG relayed from a user
	EventInvalid                    // line the codec could not classify
)

func (k EventKind) String() string {
	switch k {
	case EventSuccess:
		return "success"
	case EventFailure:
		return "failure"
	case EventBroadcast:
		return "broadcast"
	case EventPrivate:
		return "private"
	default:
		return "invalid"
	}
}

// Event is one classified server line. Raw is the line as received.
type Event struct {
	Kind    EventKind
	Message protocol.Message
	Raw     string
}

// Handler receives every event from Run, in arrival order, on Run's
// goroutine.
type Handler func(Event)

var ErrClosed = errors.New("client closed")

// Client is a connection to a chat server. Command methods may be called
// from any goroutine while Run is reading.
type Client struct {
	conn   net.Conn
	logger *slog.Logger

	mu       sync.Mutex
	username string
	closed   bool
}

// Dial connects to addr.
func Dial(ctx context.Context, addr string, logger *slog.Logger) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return New(conn, logger), nil
}

// New wraps an established connection.
func New(conn net.Conn, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{conn: conn, logger: logger}
}

// Username is the name last passed to Identify.
func (c *Client) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

// Send writes one command line.
func (c *Client) Send(cmd protocol.Command) error {
	return c.SendRaw(cmd.String())
}

// SendRaw writes line verbatim followed by a newline.
func (c *Client) SendRaw(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if _, err := io.WriteString(c.conn, line+"\n"); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// Identify asks to register as username. An empty name sends nothing.
func (c *Client) Identify(username string) error {
	if username == "" {
		return nil
	}
	if err := c.Send(protocol.Command{Verb: protocol.VerbIden, Arg: username}); err != nil {
		return err
	}
	c.mu.Lock()
	c.username = username
	c.mu.Unlock()
	return nil
}

func (c *Client) List() error { return c.Send(protocol.Command{Verb: protocol.VerbList}) }
func (c *Client) Stat() error { return c.Send(protocol.Command{Verb: protocol.VerbStat}) }
func (c *Client) Quit() error { return c.Send(protocol.Command{Verb: protocol.VerbQuit}) }

func (c *Client) Hail(text string) error {
	return c.Send(protocol.Command{Verb: protocol.VerbHail, Arg: text})
}

// Message sends text privately to username.
func (c *Client) Message(username, text string) error {
	return c.Send(protocol.Command{Verb: protocol.VerbMesg, Arg: username + " " + text})
}

// Run reads server lines until the connection ends or ctx is cancelled,
// passing each non-empty line to h. It returns nil when the server closes
// the connection.
func (c *Client) Run(ctx context.Context, h Handler) error {
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	reader := bufio.NewReader(c.conn)
	for {
		line, err := reader.ReadString('\n')
		if line = strings.TrimRight(line, "\r\n"); line != "" {
			ev := Classify(line)
			if ev.Kind == EventInvalid {
				c.logger.Debug("unclassified server line", "line", line)
			}
			h(ev)
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
	}
}

// Close closes the connection. Pending and later sends fail with ErrClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// Classify turns a raw server line into an Event.
func Classify(line string) Event {
	msg := protocol.ParseMessage(line)
	ev := Event{Message: msg, Raw: line}
	switch {
	case msg.Status == protocol.StatusInvalid:
		ev.Kind = EventInvalid
	case msg.Type == protocol.TypeBroadcast:
		ev.Kind = EventBroadcast
	case msg.Type == protocol.TypePM:
		ev.Kind = EventPrivate
	case msg.Status == protocol.StatusBad:
		ev.Kind = EventFailure
	default:
		ev.Kind = EventSuccess
	}
	return ev
}
