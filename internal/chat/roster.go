package chat

import (
	"log/slog"
	"strings"
	"sync"
)

// Roster is the process-wide set of live sessions, kept in connection order.
// Every read or mutation goes through mu. Delivery to sessions happens after
// the lock is released and never blocks on the network.
type Roster struct {
	mu       sync.Mutex
	sessions []*Session
	logger   *slog.Logger
}

func NewRoster(logger *slog.Logger) *Roster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Roster{logger: logger}
}

// Register adds a newly accepted session. Usernames are not checked here.
func (r *Roster) Register(s *Session) {
	r.mu.Lock()
	r.sessions = append(r.sessions, s)
	n := len(r.sessions)
	r.mu.Unlock()

	ConnectedSessions.Set(float64(n))
}

// Exists reports whether a registered session holds exactly username.
func (r *Roster) Exists(username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookup(username) != nil
}

// Identify assigns username to s and marks it registered. The availability
// check and the assignment happen under one lock, so of two concurrent
// claims on the same name at most one succeeds.
func (r *Roster) Identify(s *Session, username string) error {
	r.mu.Lock()
	if s.state == StateRegistered {
		r.mu.Unlock()
		return ErrAlreadyRegistered
	}
	if strings.TrimSpace(username) == "" {
		r.mu.Unlock()
		return ErrUsernameInvalid
	}
	if r.lookup(username) != nil {
		r.mu.Unlock()
		return ErrUsernameTaken
	}
	s.username = username
	s.state = StateRegistered
	registered := r.registeredLocked()
	r.mu.Unlock()

	RegisteredUsers.Set(float64(registered))
	r.logger.Info("user registered", "username", username, "session", s.id)
	return nil
}

// Usernames returns the names of registered sessions in roster order.
func (r *Roster) Usernames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.sessions))
	for _, s := range r.sessions {
		if s.state == StateRegistered && s.Running() {
			names = append(names, s.username)
		}
	}
	return names
}

// Count returns the number of live sessions, registered or not.
func (r *Roster) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Broadcast queues line for every running session in roster order and
// returns how many accepted it. A full or closed outbox only affects its
// own session.
func (r *Roster) Broadcast(line string) int {
	r.mu.Lock()
	targets := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		if s.Running() {
			targets = append(targets, s)
		}
	}
	r.mu.Unlock()

	delivered := 0
	for _, s := range targets {
		if s.Deliver(line) {
			delivered++
		}
	}
	return delivered
}

// SendTo queues line for the registered session named username. It reports
// whether such a session exists.
func (r *Roster) SendTo(username, line string) bool {
	r.mu.Lock()
	target := r.lookup(username)
	r.mu.Unlock()

	if target == nil {
		return false
	}
	target.Deliver(line)
	return true
}

// Prune drops sessions that are no longer running and returns how many were
// removed. Calling it again without new disconnects removes nothing.
func (r *Roster) Prune() int {
	r.mu.Lock()
	kept := r.sessions[:0]
	// id and username are copied while mu is held.
	var removed [][2]string
	for _, s := range r.sessions {
		if s.Running() {
			kept = append(kept, s)
		} else {
			removed = append(removed, [2]string{s.id, s.username})
		}
	}
	for i := len(kept); i < len(r.sessions); i++ {
		r.sessions[i] = nil
	}
	r.sessions = kept
	n := len(kept)
	registered := r.registeredLocked()
	r.mu.Unlock()

	if len(removed) > 0 {
		ConnectedSessions.Set(float64(n))
		RegisteredUsers.Set(float64(registered))
		for _, gone := range removed {
			r.logger.Info("session removed", "session", gone[0], "username", gone[1])
		}
	}
	return len(removed)
}

// lookup finds the running registered session named username; mu must be
// held.
func (r *Roster) lookup(username string) *Session {
	for _, s := range r.sessions {
		if s.state == StateRegistered && s.username == username && s.Running() {
			return s
		}
	}
	return nil
}

func (r *Roster) registeredLocked() int {
	n := 0
	for _, s := range r.sessions {
		if s.state == StateRegistered {
			n++
		}
	}
	return n
}
