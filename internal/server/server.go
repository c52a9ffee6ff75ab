package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
	"virtual-env-server/internal/config"

	"github.com/sirupsen/logrus"
)

var (
	ErrNotListening     = errors.New("server is not listening")
	ErrAlreadyListening = errors.New("server is already listening")
)

// Server serves one handler on one TCP listener
type Server struct {
	cfg    config.Config
	logger logrus.FieldLogger
	srv    *http.Server

	mu       sync.Mutex
	listener net.Listener
}

// New creates a server for cfg. Nothing is bound until Listen.
func New(cfg config.Config, h http.Handler, logger logrus.FieldLogger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
		srv: &http.Server{
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Listen binds the TCP listener. A bind failure, such as the port being
// used by another process, is returned to the caller.
func (s *Server) Listen(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return ErrAlreadyListening
	}

	lc := net.ListenConfig{Control: reuseAddrControl}
	l, err := lc.Listen(ctx, "tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr(), err)
	}

	s.listener = l
	s.logger.WithField("addr", l.Addr().String()).Debug("listener bound")
	return nil
}

// Addr returns the bound address, or nil before Listen
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Port returns the bound port, or the configured one before Listen
func (s *Server) Port() int {
	if addr, ok := s.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return s.cfg.Port
}

// URL returns the address a local browser should open
func (s *Server) URL() string {
	return "http://" + net.JoinHostPort("localhost", strconv.Itoa(s.Port()))
}

// Serve accepts connections until Shutdown or Close. A clean stop
// returns nil.
func (s *Server) Serve() error {
	s.mu.Lock()
	l := s.listener
	s.mu.Unlock()

	if l == nil {
		return ErrNotListening
	}

	if err := s.srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown stops accepting new connections and waits for in-flight
// requests until ctx expires, after which open connections are closed.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)

	// Serve may never have run; the listener must not outlive the server.
	s.mu.Lock()
	if s.listener != nil {
		s.listener.Close()
	}
	s.mu.Unlock()

	if err == nil {
		return nil
	}

	if closeErr := s.srv.Close(); closeErr != nil {
		s.logger.WithError(closeErr).Warn("error closing server")
	}
	return fmt.Errorf("failed to shut down gracefully: %w", err)
}

// Run serves until ctx is cancelled, then shuts down within the
// configured timeout. Hitting the timeout is not an error.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Serve()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	// Requests still running at the deadline are cut off; that is still a
	// normal stop.
	if err := s.Shutdown(shutdownCtx); err != nil {
		if !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		s.logger.WithField("timeout", s.cfg.ShutdownTimeout).Warn("in-flight requests closed at shutdown timeout")
	}
	return <-errCh
}
