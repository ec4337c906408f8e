package chat

import "time"

// State is the registration state of a session.
type State int

const (
	StateUnregistered State = iota
	StateRegistered
)

func (s State) String() string {
	switch s {
	case StateRegistered:
		return "registered"
	default:
		return "unregistered"
	}
}

// Config holds listener and per-session settings.
type Config struct {
	Addr string
	// OutboxSize is the number of lines buffered per session before new
	// lines for that session are dropped.
	OutboxSize int
	// WriteTimeout bounds a single line write to a client; 0 disables it.
	WriteTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Addr:         ":5000",
		OutboxSize:   64,
		WriteTimeout: 10 * time.Second,
	}
}

func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.Addr == "" {
		c.Addr = def.Addr
	}
	if c.OutboxSize <= 0 {
		c.OutboxSize = def.OutboxSize
	}
	if c.WriteTimeout < 0 {
		c.WriteTimeout = 0
	}
	return c
}

var (
	ErrUsernameTaken     = errorString("username_taken")
	ErrUsernameInvalid   = errorString("username_invalid")
	ErrAlreadyRegistered = errorString("already_registered")
)

type errorString string

func (e errorString) Error() string { return string(e) }
