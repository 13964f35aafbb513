package redisserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/respkv-go/internal/storage/memory"
	"github.com/yndnr/respkv-go/internal/telemetry/logger"
	"github.com/yndnr/respkv-go/internal/telemetry/metric"
	"github.com/yndnr/respkv-go/pkg/resp"
)

// DefaultAddr is the default listen address.
const DefaultAddr = "0.0.0.0:6379"

// Config holds the RESP server configuration.
type Config struct {
	// Addr is the TCP listen address.
	Addr string
	// ReadTimeout bounds the wait for the rest of a partially received
	// request. Zero disables it.
	ReadTimeout time.Duration
	// WriteTimeout bounds writing the replies of one read cycle. Zero
	// disables it.
	WriteTimeout time.Duration
	// IdleTimeout closes connections that send nothing between requests for
	// this long. Zero disables it.
	IdleTimeout time.Duration
	// RateLimit is the maximum number of commands per second per
	// connection. Zero disables rate limiting.
	RateLimit int
	// Limits are the protocol limits applied to requests.
	Limits resp.Limits
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:   DefaultAddr,
		Limits: resp.DefaultLimits(),
	}
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMetrics enables metrics collection into the given registry.
func WithMetrics(m *metric.Registry) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// Server represents the RESP protocol server.
type Server struct {
	cfg     *Config
	store   *memory.Store
	handler *CommandHandler
	decoder *resp.Decoder
	logger  *slog.Logger
	metrics *metric.Registry

	ln        net.Listener
	running   atomic.Bool
	accepting atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu    sync.Mutex
	conns map[*Conn]struct{}
}

// New creates a new RESP server sharing the given store across all
// connections.
func New(cfg *Config, store *memory.Store, opts ...Option) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Server{
		cfg:     cfg,
		store:   store,
		decoder: resp.NewDecoder(cfg.Limits),
		logger:  slog.Default(),
		conns:   make(map[*Conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.handler = NewCommandHandler(store, s.metrics)
	if s.metrics != nil {
		s.metrics.MustRegister(metric.NewCollector(store))
	}
	return s
}

// Start binds the listener and starts accepting connections in the
// background. A bind failure is returned to the caller.
func (s *Server) Start(ctx context.Context) error {
	addr := s.cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve starts accepting connections on ln in the background.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("redisserver: already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.ln = ln
	s.cancel = cancel

	s.logger.Info("redis server listening",
		"address", ln.Addr().String(),
		"rate_limit", s.cfg.RateLimit,
	)

	// Cancelling the parent context stops accepting, like Shutdown.
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	s.accepting.Store(true)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.accepting.Store(false)
		s.acceptLoop(ctx, ln)
	}()
	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Ready reports whether the server is accepting connections.
func (s *Server) Ready() bool {
	return s.accepting.Load()
}

// KeyCount returns the number of keys in the shared store.
func (s *Server) KeyCount() int {
	return s.store.Len()
}

// ActiveConnections returns the number of open client connections.
func (s *Server) ActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Shutdown stops accepting, closes every live connection and waits for the
// connection goroutines to exit or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	s.cancel()
	err := s.ln.Close()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}

	s.mu.Lock()
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("redis server stopped")
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

// Accept retry backoff bounds.
const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// acceptLoop accepts until the listener is closed or ctx is cancelled.
// Any other accept error, such as running out of file descriptors, is
// retried with exponential backoff.
func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) {
	var backoff time.Duration
	for {
		nc, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return
			}
			if backoff == 0 {
				backoff = minAcceptBackoff
			} else {
				backoff = min(2*backoff, maxAcceptBackoff)
			}
			s.logger.Warn("accept failed, retrying", "error", err, "backoff", backoff)
			if s.metrics != nil {
				s.metrics.AcceptErrors.Inc()
			}

			t := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				t.Stop()
				return
			case <-t.C:
			}
			continue
		}
		backoff = 0

		c := newConn(nc, s.cfg.RateLimit, s.cfg.WriteTimeout)
		if !s.track(c) {
			_ = c.Close()
			return
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(c)
			s.serveConn(ctx, c)
		}()
	}
}

// track registers a live connection. It fails once shutdown has begun.
func (s *Server) track(c *Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running.Load() {
		return false
	}
	s.conns[c] = struct{}{}
	if s.metrics != nil {
		s.metrics.ConnectionsActive.Inc()
		s.metrics.ConnectionsTotal.Inc()
	}
	return true
}

func (s *Server) untrack(c *Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, c)
	if s.metrics != nil {
		s.metrics.ConnectionsActive.Dec()
	}
}

func (s *Server) serveConn(ctx context.Context, c *Conn) {
	defer c.Close()

	ctx = logger.WithConnID(ctx, c.ID())
	log := s.logger.With("conn_id", c.ID())
	log.Debug("client connected", "remote_addr", c.RemoteAddr().String())
	defer log.Debug("client disconnected", "remote_addr", c.RemoteAddr().String())

	for {
		if err := s.setReadDeadline(c); err != nil {
			return
		}

		n, readErr := c.in.Fill()
		if n > 0 {
			if !s.process(ctx, c, log) {
				return
			}
			if err := c.flush(); err != nil {
				log.Debug("write failed", "error", err)
				return
			}
		}

		if readErr != nil {
			s.logReadError(log, c, readErr)
			return
		}
	}
}

// process decodes and executes every complete frame in the buffer, queueing
// the replies. It reports false when the connection must be closed; the
// queued replies, including a final protocol error, are flushed first.
func (s *Server) process(ctx context.Context, c *Conn, log *slog.Logger) bool {
	for {
		v, n, err := s.decoder.Decode(c.pending())
		if errors.Is(err, resp.ErrIncomplete) {
			return true
		}
		if err != nil {
			log.Warn("protocol error, closing connection",
				"remote_addr", c.RemoteAddr().String(),
				"error", err,
			)
			if s.metrics != nil {
				s.metrics.ProtocolErrors.Inc()
			}
			writeErr := resp.WriteValue(c.out, protocolError(err))
			if writeErr == nil {
				writeErr = c.flush()
			}
			if writeErr != nil {
				log.Debug("write failed", "error", writeErr)
			}
			return false
		}
		c.in.Discard(n)

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return false
			}
		}
		if err := resp.WriteValue(c.out, s.handler.Dispatch(ctx, v)); err != nil {
			log.Debug("write failed", "error", err)
			return false
		}
	}
}

func (s *Server) setReadDeadline(c *Conn) error {
	timeout := s.cfg.ReadTimeout
	if len(c.pending()) == 0 {
		timeout = s.cfg.IdleTimeout
	}
	if timeout <= 0 {
		if s.cfg.ReadTimeout > 0 || s.cfg.IdleTimeout > 0 {
			return c.netConn.SetReadDeadline(time.Time{})
		}
		return nil
	}
	return c.netConn.SetReadDeadline(time.Now().Add(timeout))
}

func (s *Server) logReadError(log *slog.Logger, c *Conn, err error) {
	if errors.Is(err, io.EOF) {
		if len(c.pending()) > 0 {
			log.Debug("client closed with incomplete request", "pending_bytes", len(c.pending()))
		}
		return
	}
	if errors.Is(err, net.ErrClosed) {
		return
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		log.Debug("connection timed out")
		return
	}
	log.Debug("connection read error", "error", err)
}

// protocolError renders a decode failure as the reply sent before closing.
func protocolError(err error) resp.Value {
	detail := strings.TrimPrefix(err.Error(), resp.ErrProtocol.Error()+": ")
	detail = strings.TrimPrefix(detail, "resp: ")
	return resp.Error("ERR Protocol error: " + detail)
}
