package chat

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/andy6609/linechat/internal/protocol"
)

// closeFlushTimeout limits how long terminate waits for queued lines to be
// written.
const closeFlushTimeout = time.Second

// Session owns one client connection: it reads commands, applies them to its
// own state and the roster, and queues replies on its outbox. Other sessions
// reach it only through Deliver.
type Session struct {
	id           string
	conn         net.Conn
	roster       *Roster
	logger       *slog.Logger
	writeTimeout time.Duration

	// state and username are guarded by roster.mu.
	state    State
	username string

	running  atomic.Bool
	serving  atomic.Bool
	messages atomic.Int64

	out        chan string
	stop       chan struct{}
	writerDone <-chan struct{}

	stopOnce sync.Once
}

// NewSession prepares a session for conn. It is running from construction,
// so a concurrent Prune never drops it before Serve starts.
func NewSession(conn net.Conn, roster *Roster, cfg Config, logger *slog.Logger) *Session {
	cfg = cfg.normalize()
	if logger == nil {
		logger = slog.Default()
	}

	id := uuid.NewString()
	logger = logger.With("session", id)
	if conn != nil {
		logger = logger.With("remote", conn.RemoteAddr().String())
	}

	s := &Session{
		id:           id,
		conn:         conn,
		roster:       roster,
		logger:       logger,
		writeTimeout: cfg.WriteTimeout,
		out:          make(chan string, cfg.OutboxSize),
		stop:         make(chan struct{}),
	}
	s.running.Store(true)
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) Running() bool { return s.running.Load() }

func (s *Session) State() State {
	s.roster.mu.Lock()
	defer s.roster.mu.Unlock()
	return s.state
}

func (s *Session) Username() string {
	s.roster.mu.Lock()
	defer s.roster.mu.Unlock()
	return s.username
}

// MessageCount is the number of HAIL messages this session has broadcast.
func (s *Session) MessageCount() int64 { return s.messages.Load() }

// Deliver queues one line from another session for this connection. It
// never blocks: it returns false when the session has terminated or its
// outbox is full.
func (s *Session) Deliver(line string) bool {
	select {
	case <-s.stop:
		return false
	default:
	}
	select {
	case s.out <- line:
		return true
	default:
		DroppedLines.Inc()
		s.logger.Warn("outbox full, dropping line")
		return false
	}
}

// reply queues a response to this session's own client. It is called only
// from the session's goroutine and waits for outbox space instead of
// dropping, so every command gets its answer in order. The writer's timeout
// and close-on-failure keep the wait bounded while the client is connected.
func (s *Session) reply(line string) {
	select {
	case s.out <- line:
	case <-s.stop:
	}
}

// Serve greets the client and runs the read loop until QUIT, end of stream
// or a read error. The session is removed from the roster on return.
func (s *Session) Serve() {
	s.writerDone = startOutboundWriter(s.conn, s.out, s.stop, s.writeTimeout, s.logger)
	s.serving.Store(true)
	defer s.terminate()

	s.logger.Info("client connected")
	s.reply(protocol.Welcome(s.roster.Count()))

	reader := bufio.NewReader(s.conn)
	for s.Running() {
		line, err := readLine(reader)
		if err != nil {
			if !errors.Is(err, io.EOF) && s.Running() {
				s.logger.Debug("read failed", "error", err)
			}
			return
		}
		s.handleLine(line)
	}
}

// Close terminates the session without a reply. Safe to call more than once.
func (s *Session) Close() error {
	s.terminate()
	return nil
}

func (s *Session) handleLine(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}

	start := time.Now()
	cmd, err := protocol.ParseCommand(line)
	label := "invalid"
	if err == nil || errors.Is(err, protocol.ErrMissingArgument) {
		label = strings.ToLower(string(cmd.Verb))
	}
	defer func() {
		CommandsTotal.WithLabelValues(label).Inc()
		CommandProcessingDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	}()

	if err != nil {
		s.logger.Debug("rejected command", "error", err)
		if errors.Is(err, protocol.ErrTooShort) {
			s.reply(protocol.InvalidCommand())
		} else {
			s.reply(protocol.NotRecognised())
		}
		return
	}

	s.logger.Debug("command", "verb", cmd.Verb)
	switch cmd.Verb {
	case protocol.VerbIden:
		s.iden(cmd.Arg)
	case protocol.VerbList:
		s.list()
	case protocol.VerbStat:
		s.stat()
	case protocol.VerbHail:
		s.hail(cmd.Arg)
	case protocol.VerbMesg:
		s.mesg(cmd.Arg)
	case protocol.VerbQuit:
		s.quit()
	}
}

func (s *Session) iden(arg string) {
	switch err := s.roster.Identify(s, protocol.FirstToken(arg)); {
	case err == nil:
		s.reply(protocol.IdentifyOK(s.Username()))
	case errors.Is(err, ErrAlreadyRegistered):
		s.reply(protocol.AlreadyRegistered(s.Username()))
	case errors.Is(err, ErrUsernameTaken):
		s.reply(protocol.UsernameTaken())
	default:
		s.reply(protocol.NotRecognised())
	}
}

func (s *Session) list() {
	if s.State() != StateRegistered {
		s.reply(protocol.NotLoggedIn(protocol.TypeList))
		return
	}
	s.reply(protocol.UserList(s.roster.Usernames()))
}

func (s *Session) stat() {
	registered := s.State() == StateRegistered
	s.reply(protocol.Stat(s.roster.Count(), registered, s.MessageCount()))
}

func (s *Session) hail(text string) {
	if s.State() != StateRegistered {
		s.reply(protocol.NotLoggedIn(protocol.TypeHail))
		return
	}
	n := s.roster.Broadcast(protocol.Broadcast(s.Username(), text))
	s.messages.Add(1)
	s.logger.Debug("broadcast", "recipients", n)
}

func (s *Session) mesg(arg string) {
	if s.State() != StateRegistered {
		s.reply(protocol.NotLoggedIn(protocol.TypeMesg))
		return
	}
	target, text, ok := protocol.SplitTarget(arg)
	if !ok {
		s.reply(protocol.BadlyFormatted())
		return
	}
	if s.roster.SendTo(target, protocol.Private(s.Username(), text)) {
		s.reply(protocol.MessageSent())
	} else {
		s.reply(protocol.NoSuchUser())
	}
}

func (s *Session) quit() {
	s.reply(protocol.Goodbye(s.State() == StateRegistered, s.MessageCount()))
	s.terminate()
}

// terminate stops the session once: it signals stop, lets the writer
// flush what was queued, closes the connection and prunes the roster.
func (s *Session) terminate() {
	s.stopOnce.Do(func() {
		s.running.Store(false)

		close(s.stop)

		if s.serving.Load() {
			// Bound the final flush even when writes have no timeout and the
			// client has stopped reading.
			_ = s.conn.SetWriteDeadline(time.Now().Add(closeFlushTimeout))
			<-s.writerDone
		}
		if s.conn != nil {
			_ = s.conn.Close()
		}
		s.roster.Prune()
		s.logger.Info("client disconnected", "state", s.State().String(), "messages", s.MessageCount())
	})
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err == nil {
		return strings.TrimRight(line, "\r\n"), nil
	}
	if err == io.EOF && line != "" {
		// last line without newline
		return strings.TrimRight(line, "\r\n"), nil
	}
	if err == io.EOF {
		return "", io.EOF
	}
	return "", fmt.Errorf("read: %w", err)
}
