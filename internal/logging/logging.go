package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/oxidar-web/oxidar/config"
	"github.com/rs/zerolog"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the logger writing into the configured sink. The returned closer releases
// the log file, if any, and must be called once the logger isn't used anymore.
func New(cfg config.Log, debug bool) (zerolog.Logger, io.Closer, error) {
	return newLogger(cfg, debug, os.Stdout)
}

func newLogger(cfg config.Log, debug bool, terminal io.Writer) (zerolog.Logger, io.Closer, error) {
	var (
		writers []io.Writer
		closer  io.Closer = nopCloser{}
	)

	if cfg.Sink == config.SinkTerminal || cfg.Sink == config.SinkBoth {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        terminal,
			TimeFormat: time.RFC3339,
			NoColor:    cfg.NoColor,
		})
	}

	if cfg.Sink == config.SinkFile || cfg.Sink == config.SinkBoth {
		file, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, err
		}

		writers = append(writers, file)
		closer = file
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		out = io.Discard
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	level := ParseLevel(cfg.Level)
	if debug && level > zerolog.DebugLevel && level != zerolog.Disabled {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Str("app", "oxidar").Logger()

	return logger, closer, nil
}

// ParseLevel maps a level name to the zerolog level. Unknown names fall back to info.
func ParseLevel(raw string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
