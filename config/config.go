package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/oxidar-web/oxidar/internal/address"
)

// Sink tells where log records go.
type Sink string

const (
	SinkTerminal Sink = "terminal"
	SinkFile     Sink = "file"
	SinkBoth     Sink = "both"
)

// Overflow is the policy applied to a freshly accepted connection when the job queue is full.
type Overflow string

const (
	// OverflowBlock holds the accept loop until a seat in the queue frees up.
	OverflowBlock Overflow = "block"
	// OverflowReject answers the connection with 503 right away and closes it.
	OverflowReject Overflow = "reject"
)

var (
	ErrNoAddr          = errors.New("listen address is empty")
	ErrBadAddr         = errors.New("bad listen address")
	ErrBadWorkers      = errors.New("workers number must be positive")
	ErrBadQueueSize    = errors.New("queue size must be positive")
	ErrBadOverflow     = errors.New("unknown overflow policy")
	ErrBadSink         = errors.New("unknown logging sink")
	ErrNoLogPath       = errors.New("logging sink requires a file path")
	ErrBadLimits       = errors.New("limits must be positive")
	ErrNegativeTimeout = errors.New("timeouts must not be negative")
)

type (
	NET struct {
		// Addr is the address the listener is bound to.
		Addr string
		// ReadBufferSize is the size of the buffered reader wrapping every connection. It also
		// caps how much of a single line can be held at once.
		ReadBufferSize int
		// ReadTimeout limits how long reading the request may take. Zero disables it.
		ReadTimeout time.Duration
		// WriteTimeout limits how long writing the response may take. Zero disables it.
		WriteTimeout time.Duration
		// AcceptLoopInterruptPeriod controls how often will the Accept() call be interrupted
		// in order to check whether it's time to stop.
		AcceptLoopInterruptPeriod time.Duration
		// ReusePort sets SO_REUSEADDR and SO_REUSEPORT on the listening socket where supported.
		ReusePort bool `test:"nullable"`
	}

	Pool struct {
		// Workers is the fixed number of workers handling connections.
		Workers int
		// QueueSize bounds the number of accepted connections waiting for a worker.
		QueueSize int
		// Overflow is the policy applied when the queue is full.
		Overflow Overflow
	}

	Limits struct {
		// MaxLineLength is the maximal length of the request line and of every header line.
		MaxLineLength int
		// MaxHeaders is the maximal number of header lines in a request.
		MaxHeaders int
	}

	Log struct {
		Sink Sink
		// Path is the log file, required by the file and both sinks.
		Path string `test:"nullable"`
		// Level is one of trace, debug, info, warn, error, disabled.
		Level string
		// NoColor disables colors on the terminal sink.
		NoColor bool `test:"nullable"`
	}
)

// Config holds everything the server needs to know before it starts. It's never mutated
// after the server was started.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually.
type Config struct {
	NET    NET
	Pool   Pool
	Limits Limits
	Log    Log
	// Debug lowers the logging level to debug.
	Debug bool `test:"nullable"`
}

// Default returns default config.
func Default() *Config {
	return &Config{
		NET: NET{
			Addr:                      "127.0.0.1:8000",
			ReadBufferSize:            4 * 1024,
			ReadTimeout:               90 * time.Second,
			WriteTimeout:              90 * time.Second,
			AcceptLoopInterruptPeriod: 500 * time.Millisecond,
		},
		Pool: Pool{
			Workers:   runtime.NumCPU(),
			QueueSize: 1024,
			Overflow:  OverflowBlock,
		},
		Limits: Limits{
			MaxLineLength: 8 * 1024,
			MaxHeaders:    100,
		},
		Log: Log{
			Sink:  SinkTerminal,
			Level: "info",
		},
	}
}

// Validate reports the first inconsistency found in the config.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.NET.Addr) == "":
		return ErrNoAddr
	case !validAddr(c.NET.Addr):
		return fmt.Errorf("%w: %q", ErrBadAddr, c.NET.Addr)
	case c.NET.ReadTimeout < 0, c.NET.WriteTimeout < 0, c.NET.AcceptLoopInterruptPeriod < 0:
		return ErrNegativeTimeout
	case c.NET.ReadBufferSize <= 0, c.Limits.MaxLineLength <= 0, c.Limits.MaxHeaders <= 0:
		return ErrBadLimits
	case c.Pool.Workers <= 0:
		return ErrBadWorkers
	case c.Pool.QueueSize <= 0:
		return ErrBadQueueSize
	}

	switch c.Pool.Overflow {
	case OverflowBlock, OverflowReject:
	default:
		return fmt.Errorf("%w: %q", ErrBadOverflow, c.Pool.Overflow)
	}

	switch c.Log.Sink {
	case SinkTerminal:
	case SinkFile, SinkBoth:
		if strings.TrimSpace(c.Log.Path) == "" {
			return fmt.Errorf("%w: %s", ErrNoLogPath, c.Log.Sink)
		}
	default:
		return fmt.Errorf("%w: %q", ErrBadSink, c.Log.Sink)
	}

	return nil
}

func validAddr(addr string) bool {
	_, err := address.Parse(addr)
	return err == nil
}
