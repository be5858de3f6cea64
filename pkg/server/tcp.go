package server

import (
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/tecu23/lobby-server/pkg/wire"
)

// Server accepts raw TCP clients and hands each one to the connection
// handler on its own goroutine.
type Server struct {
	addr        string
	handler     *Handler
	sendTimeout time.Duration
	logger      *zap.Logger

	listener net.Listener
	quit     chan struct{}
}

// NewServer creates a TCP server for the given listen address.
func NewServer(addr string, handler *Handler, sendTimeout time.Duration, logger *zap.Logger) *Server {
	return &Server{
		addr:        addr,
		handler:     handler,
		sendTimeout: sendTimeout,
		logger:      logger,
		quit:        make(chan struct{}),
	}
}

// Listen binds the listener without accepting yet, so callers learn the
// bound address before serving.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.listener = ln

	return nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() string { return s.listener.Addr().String() }

// Serve runs the accept loop until Shutdown.
func (s *Server) Serve() error {
	s.logger.Info("tcp server listening", zap.String("address", s.Addr()))

	for {
		netConn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return nil
			default:
			}
			s.logger.Error("accept error", zap.Error(err))
			continue
		}

		conn := NewConnection(wire.NewTCPConn(netConn), s.sendTimeout, s.logger)
		go s.handler.Handle(conn)
	}
}

// Shutdown stops accepting new connections. Live handlers end when their
// peers disconnect.
func (s *Server) Shutdown() {
	close(s.quit)
	if s.listener != nil {
		_ = s.listener.Close()
	}
}
