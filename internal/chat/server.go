package chat

import (
	"errors"
	"log/slog"
	"net"
	"sync"
)

var ErrServerRunning = errorString("server_already_running")

// Server accepts TCP connections and runs one Session per connection.
type Server struct {
	cfg      Config
	logger   *slog.Logger
	roster   *Roster
	listener net.Listener
	wg       sync.WaitGroup
	mu       sync.Mutex
}

func NewServer(cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:    cfg.normalize(),
		logger: logger,
		roster: NewRoster(logger),
	}
}

// Roster returns the server's live session roster.
func (s *Server) Roster() *Roster { return s.roster }

// Start binds the listen address and starts accepting in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return ErrServerRunning
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.listener = ln

	s.wg.Add(1)
	go s.acceptLoop(ln)

	s.logger.Info("server started", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop closes the listener and waits for the accept loop to exit. Sessions
// that are already running are left alone.
func (s *Server) Stop() {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	if ln == nil {
		return
	}

	s.logger.Info("shutting down")
	_ = ln.Close()
	s.wg.Wait()
	s.logger.Info("shutdown complete")
}

func (s *Server) acceptLoop(ln net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		session := NewSession(conn, s.roster, s.cfg, s.logger)
		s.roster.Register(session)
		go session.Serve()
	}
}
