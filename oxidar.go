// Package oxidar is a small concurrent HTTP/1.x connection engine. Accepted connections are
// queued to a fixed pool of workers, each parsing a single request, routing it to the first
// sub-application whose prefix matches and writing back whatever it answers with.
package oxidar

import (
	"bufio"
	"context"
	stderrors "errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dchest/uniuri"
	"github.com/oxidar-web/oxidar/config"
	"github.com/oxidar-web/oxidar/errors"
	"github.com/oxidar-web/oxidar/http"
	"github.com/oxidar-web/oxidar/internal/address"
	"github.com/oxidar-web/oxidar/internal/parser/http1"
	"github.com/oxidar-web/oxidar/internal/pool"
	"github.com/oxidar-web/oxidar/router/prefix"
	"github.com/oxidar-web/oxidar/transport"
	"github.com/rs/zerolog"
)

const (
	// rejectDrainTimeout bounds how long a rejected connection is kept open to read out
	// the request it sent.
	rejectDrainTimeout = time.Second
	rejectDrainLimit   = 64 * 1024
)

// ErrRunning is returned by Run if the server was already started once.
var ErrRunning = stderrors.New("oxidar: server was already started")

// Handler is a sub-application. It's called concurrently from multiple workers, so it must
// be safe for that.
type Handler interface {
	Respond(srv *Server, req *http.Request) (*http.Response, error)
}

type HandlerFunc func(srv *Server, req *http.Request) (*http.Response, error)

func (f HandlerFunc) Respond(srv *Server, req *http.Request) (*http.Response, error) {
	return f(srv, req)
}

type hooks struct {
	OnStart, OnStop func()
}

// Server binds together the listener, the workers pool and the sub-applications.
type Server struct {
	cfg     *config.Config
	logger  zerolog.Logger
	routes  *prefix.Table[Handler]
	hooks   hooks
	started atomic.Bool
	tcp     *transport.TCP
	pool    *pool.Pool

	rejects sync.WaitGroup

	mu      sync.Mutex
	pending map[net.Conn]struct{}
	fatal   *errors.Failure
}

// New returns a server that isn't listening yet. The configuration is expected to be
// valid already, see config.Config.Validate.
func New(cfg *config.Config, logger zerolog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		logger:  logger,
		routes:  prefix.New[Handler](),
		tcp:     transport.NewTCP(),
		pending: make(map[net.Conn]struct{}),
	}
}

// Register adds a sub-application under the prefix. Prefixes are matched in the order of
// registration, so the first one matching wins even if a longer one matches as well.
// Registering anything after the server was started results in a panic.
func (s *Server) Register(prefix string, handler Handler) *Server {
	if s.started.Load() {
		panic("oxidar: sub-applications must be registered before the server is started")
	}

	s.routes.Add(prefix, handler)
	return s
}

// NotifyOnStart calls the callback once the listener is bound and the workers are up.
func (s *Server) NotifyOnStart(cb func()) *Server {
	s.hooks.OnStart = cb
	return s
}

// NotifyOnStop calls the callback once the listener is closed and all the workers exited.
func (s *Server) NotifyOnStop(cb func()) *Server {
	s.hooks.OnStop = cb
	return s
}

func (s *Server) Config() *config.Config {
	return s.cfg
}

func (s *Server) Logger() zerolog.Logger {
	return s.logger
}

// Addr returns the actual listening address. It's nil until the server is started.
func (s *Server) Addr() net.Addr {
	return s.tcp.Addr()
}

// Run binds the listener and serves until the context is done, Stop is called or a
// fatal failure occurs. A graceful stop lets every queued connection be served and
// returns nil. A fatal failure drops the connections still waiting in the queue and is
// returned as is.
func (s *Server) Run(ctx context.Context) error {
	if s.started.Swap(true) {
		return ErrRunning
	}

	if err := s.tcp.Bind(s.cfg.NET); err != nil {
		if stderrors.Is(err, transport.ErrStopped) {
			s.logger.Info().Msg("Server stopped before it started")
			return nil
		}

		return errors.FatalIO(err)
	}

	s.pool = pool.New(
		s.cfg.Pool.Workers, s.cfg.Pool.QueueSize,
		s.logger.With().Str("component", "pool").Logger(),
	)

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-done:
		}
	}()

	s.logger.Info().
		Int("workers", s.cfg.Pool.Workers).
		Int("apps", s.routes.Len()).
		Msgf("Started server. Listening on %s", s.Addr())
	if addr, err := address.Parse(s.Addr().String()); err == nil && s.cfg.Debug && !addr.IsLocalhost() {
		s.logger.Warn().Msg("Debug mode is on while listening on a non-loopback address")
	}

	callIfNotNil(s.hooks.OnStart)

	if err := s.tcp.Listen(s.cfg.NET, s.dispatch); err != nil {
		s.fail(errors.FatalIO(err))
	}

	s.tcp.Stop()
	_ = s.tcp.Close()

	failure := s.failure()
	if failure == nil {
		s.pool.Close()
	} else {
		dropped := s.pool.Stop()
		closed := s.closePending()
		s.logger.Warn().Int("dropped", dropped).Int("closed", closed).Msg("Shutting down after a fatal failure")
	}

	s.rejects.Wait()

	stats := s.pool.Stats()
	s.logger.Info().
		Uint64("served", stats.Completed).
		Uint64("dropped", stats.Dropped).
		Msg("Server stopped")
	callIfNotNil(s.hooks.OnStop)

	if failure != nil {
		return failure
	}

	return nil
}

// Stop makes the server stop accepting new connections. It doesn't wait for anything,
// Run returns as soon as all the queued connections are served.
func (s *Server) Stop() {
	s.tcp.Stop()
	_ = s.tcp.Close()
}

func (s *Server) dispatch(conn net.Conn) {
	s.mu.Lock()
	s.pending[conn] = struct{}{}
	s.mu.Unlock()

	job := func() {
		if s.take(conn) {
			s.serve(conn)
		}
	}

	var err error
	if s.cfg.Pool.Overflow == config.OverflowReject {
		err = s.pool.TryExecute(job)
	} else {
		err = s.pool.Execute(job)
	}

	if err != nil && s.take(conn) {
		s.rejects.Add(1)
		go func() {
			defer s.rejects.Done()
			s.reject(conn, err)
		}()
	}
}

// take removes the connection from the pending set. False means it's already gone, either
// closed by the shutdown or taken by someone else.
func (s *Server) take(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, found := s.pending[conn]
	delete(s.pending, conn)

	return found
}

func (s *Server) closePending() (closed int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.pending {
		_ = conn.Close()
		delete(s.pending, conn)
		closed++
	}

	return closed
}

func (s *Server) reject(conn net.Conn, err error) {
	defer conn.Close()

	s.logger.Warn().Err(err).Stringer("remote", conn.RemoteAddr()).Msg("Rejecting connection")
	response, _ := errors.NewNormal(errors.Unavailablef("Server is busy, try again later.")).ToResponse()
	if werr := s.write(conn, response); werr != nil {
		s.logger.Error().Err(errors.AbortIO(werr)).Msg("Failed to reject connection")
		return
	}

	drain(conn)
}

// drain half-closes the connection and reads out whatever the client sent. Closing a socket
// with unread input resets it, and the client may lose the response.
func drain(conn net.Conn) {
	if hc, ok := conn.(interface{ CloseWrite() error }); ok {
		_ = hc.CloseWrite()
	}

	if err := conn.SetReadDeadline(time.Now().Add(rejectDrainTimeout)); err != nil {
		return
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(conn, rejectDrainLimit))
}

func (s *Server) serve(conn net.Conn) {
	defer conn.Close()

	logger := s.logger.With().
		Str("conn", uniuri.NewLen(8)).
		Stringer("remote", conn.RemoteAddr()).
		Logger()

	response, err := s.process(conn, logger)
	if err != nil {
		failure := errors.Classify(err)
		logger.Error().Stringer("severity", failure.Severity).Msg(failure.Err.Error())

		var ok bool
		if response, ok = failure.ToResponse(); !ok {
			if failure.IsFatal() {
				s.fail(failure)
			}

			return
		}
	}

	if err = s.write(conn, response); err != nil {
		logger.Error().Err(errors.AbortIO(err)).Msg("Failed to write response")
	}
}

func (s *Server) process(conn net.Conn, logger zerolog.Logger) (*http.Response, error) {
	if s.cfg.NET.ReadTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(s.cfg.NET.ReadTimeout)); err != nil {
			return nil, errors.AbortIO(err)
		}
	}

	reader := bufio.NewReaderSize(conn, s.cfg.NET.ReadBufferSize)
	request, err := http1.NewParser(reader, s.cfg.Limits).Parse()
	if err != nil {
		return nil, err
	}

	request.Remote = conn.RemoteAddr()
	logger.Info().Msgf("Processing: %s %s", request.Method, request.URI)

	route, found := s.routes.Match(request.Path)
	if !found {
		return nil, errors.HTTP404("Could not tie to an app.")
	}

	return s.invoke(route.Handler, request)
}

func (s *Server) invoke(handler Handler, request *http.Request) (response *http.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			response, err = nil, errors.Untypedf("Sub-application panicked: %v", r)
		}
	}()

	response, err = handler.Respond(s, request)
	if err == nil && response == nil {
		err = errors.Untypedf("Sub-application returned no response.")
	}

	return response, err
}

func (s *Server) write(conn net.Conn, response *http.Response) error {
	if s.cfg.NET.WriteTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(s.cfg.NET.WriteTimeout)); err != nil {
			return err
		}
	}

	writer := bufio.NewWriter(conn)
	if _, err := response.WriteTo(writer); err != nil {
		return err
	}

	return writer.Flush()
}

// fail records the first fatal failure and stops accepting.
func (s *Server) fail(failure *errors.Failure) {
	s.mu.Lock()
	if s.fatal == nil {
		s.fatal = failure
	}
	s.mu.Unlock()

	s.Stop()
}

func (s *Server) failure() *errors.Failure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fatal
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
