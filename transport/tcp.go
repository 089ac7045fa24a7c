package transport

import (
	"context"
	"errors"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oxidar-web/oxidar/config"
)

// ErrStopped is returned by Bind if Stop was called before the socket got bound.
var ErrStopped = errors.New("transport: stopped before bound")

type listener interface {
	net.Listener
	SetDeadline(t time.Time) error
}

// TCP owns the listening socket and runs the accept loop. Accepting is periodically
// interrupted in order to check whether it's time to stop.
type TCP struct {
	mu   *sync.Mutex
	l    listener
	stop *atomic.Bool
}

func NewTCP() *TCP {
	tcp := newTCP(nil)
	return &tcp
}

func newTCP(l listener) TCP {
	return TCP{
		mu:   new(sync.Mutex),
		l:    l,
		stop: new(atomic.Bool),
	}
}

func bindTCP(cfg config.NET) (*net.TCPListener, error) {
	lc := net.ListenConfig{}
	if cfg.ReusePort {
		lc.Control = reusePort
	}

	l, err := lc.Listen(context.Background(), "tcp", cfg.Addr)
	if err != nil {
		return nil, err
	}

	return l.(*net.TCPListener), nil
}

// Bind opens the listening socket at the configured address. If the transport was stopped
// in the meantime, the socket is closed right away and ErrStopped is returned.
func (t *TCP) Bind(cfg config.NET) error {
	l, err := bindTCP(cfg)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop.Load() {
		_ = l.Close()
		return ErrStopped
	}

	t.l = l
	return nil
}

func (t *TCP) listener() listener {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.l
}

// Addr returns the address the socket is actually bound to. It's nil until bound.
func (t *TCP) Addr() net.Addr {
	l := t.listener()
	if l == nil {
		return nil
	}

	return l.Addr()
}

// Listen accepts connections until stopped, handing each one over to the callback. The
// callback is called from the accept loop itself and takes over the ownership of the
// connection. A nil error is returned if the loop was stopped, otherwise the accept
// error is returned as is.
func (t *TCP) Listen(cfg config.NET, cb func(conn net.Conn)) error {
	l := t.listener()
	if l == nil {
		if t.stop.Load() {
			return nil
		}

		return net.ErrClosed
	}

	for !t.stop.Load() {
		if cfg.AcceptLoopInterruptPeriod > 0 {
			err := l.SetDeadline(time.Now().Add(cfg.AcceptLoopInterruptPeriod))
			if err != nil {
				if t.stop.Load() {
					return nil
				}

				return err
			}
		}

		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}

			if t.stop.Load() && errors.Is(err, net.ErrClosed) {
				return nil
			}

			return err
		}

		cb(conn)
	}

	return nil
}

// Stop makes the accept loop exit on its next iteration.
func (t *TCP) Stop() {
	t.stop.Store(true)
}

// Stopped reports whether Stop was called.
func (t *TCP) Stopped() bool {
	return t.stop.Load()
}

// Close releases the listening socket. Stop must be called first for Listen to return
// nil, otherwise it reports the closed socket as an error.
func (t *TCP) Close() error {
	l := t.listener()
	if l == nil {
		return nil
	}

	return l.Close()
}
