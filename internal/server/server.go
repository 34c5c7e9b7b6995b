package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"wisecow/internal/generator"
)

// Server owns the listening socket and serves every accepted connection with
// a freshly generated body. Request bytes are read and discarded; any payload
// gets the same treatment.
type Server struct {
	addr       string
	gen        generator.Generator
	genTimeout time.Duration
	log        *slog.Logger
}

func New(addr string, gen generator.Generator, genTimeout time.Duration, logger *slog.Logger) *Server {
	if genTimeout <= 0 {
		genTimeout = 5 * time.Second
	}
	return &Server{addr: addr, gen: gen, genTimeout: genTimeout, log: logger}
}

// Run binds the configured address and serves until ctx is cancelled. A bind
// failure is the only error surfaced to the caller besides an unexpected
// accept failure.
func (s *Server) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.addr, err)
	}
	s.log.Info("listening", "addr", l.Addr().String())
	return s.Serve(ctx, l)
}

// Serve accepts connections on l until ctx is cancelled. Per-connection
// failures never terminate the loop.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = l.Close()
	}()
	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}
		go s.handle(ctx, conn)
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	discardRequest(conn)

	gctx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()
	body, err := s.gen.Generate(gctx)

	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err != nil {
		s.log.Warn("generation failed", "remote", conn.RemoteAddr().String(), "err", err)
		_, _ = conn.Write(FrameError())
		return
	}
	if _, err := conn.Write(Frame(body)); err != nil {
		s.log.Warn("write response", "remote", conn.RemoteAddr().String(), "err", err)
	}
}

// discardRequest drains whatever the client sent first. Slow or silent
// clients only cost the read deadline, not a hung handler.
func discardRequest(conn net.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	buf := make([]byte, 4096)
	_, _ = conn.Read(buf)
	_ = conn.SetReadDeadline(time.Time{})
}
