package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	EnvAddr       = "OXIDAR_ADDR"
	EnvWorkers    = "OXIDAR_WORKERS"
	EnvDebug      = "OXIDAR_DEBUG"
	EnvLogLevel   = "OXIDAR_LOG_LEVEL"
	EnvLogNoColor = "OXIDAR_LOG_NOCOLOR"
)

type fileConfig struct {
	Addr    string     `toml:"addr"`
	Workers int        `toml:"workers"`
	Debug   bool       `toml:"debug"`
	NET     fileNET    `toml:"net"`
	Pool    filePool   `toml:"pool"`
	Limits  fileLimits `toml:"limits"`
	Log     fileLog    `toml:"log"`
}

type fileNET struct {
	ReadBuffer      int    `toml:"read_buffer"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	AcceptInterrupt string `toml:"accept_interrupt"`
	ReusePort       bool   `toml:"reuse_port"`
}

type filePool struct {
	QueueSize int    `toml:"queue_size"`
	Overflow  string `toml:"overflow"`
}

type fileLimits struct {
	MaxLineLength int `toml:"max_line_length"`
	MaxHeaders    int `toml:"max_headers"`
}

type fileLog struct {
	Sink    string `toml:"sink"`
	Path    string `toml:"path"`
	Level   string `toml:"level"`
	NoColor bool   `toml:"no_color"`
}

// Load reads the TOML file at path on top of the defaults, applies environment overrides
// and validates the result. Keys missing in the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	if len(path) > 0 {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := ApplyEnv(cfg, os.Getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config invalid (%s): %w", path, err)
	}

	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("addr") {
		cfg.NET.Addr = strings.TrimSpace(raw.Addr)
	}

	if meta.IsDefined("workers") {
		cfg.Pool.Workers = raw.Workers
	}

	if meta.IsDefined("debug") {
		cfg.Debug = raw.Debug
	}

	if meta.IsDefined("net", "read_buffer") {
		cfg.NET.ReadBufferSize = raw.NET.ReadBuffer
	}

	durations := []struct {
		key   string
		value string
		dst   *time.Duration
	}{
		{"read_timeout", raw.NET.ReadTimeout, &cfg.NET.ReadTimeout},
		{"write_timeout", raw.NET.WriteTimeout, &cfg.NET.WriteTimeout},
		{"accept_interrupt", raw.NET.AcceptInterrupt, &cfg.NET.AcceptLoopInterruptPeriod},
	}

	for _, d := range durations {
		if !meta.IsDefined("net", d.key) {
			continue
		}

		parsed, err := time.ParseDuration(strings.TrimSpace(d.value))
		if err != nil {
			return fmt.Errorf("parse net.%s: %w", d.key, err)
		}

		*d.dst = parsed
	}

	if meta.IsDefined("net", "reuse_port") {
		cfg.NET.ReusePort = raw.NET.ReusePort
	}

	if meta.IsDefined("pool", "queue_size") {
		cfg.Pool.QueueSize = raw.Pool.QueueSize
	}

	if meta.IsDefined("pool", "overflow") {
		cfg.Pool.Overflow = Overflow(strings.ToLower(strings.TrimSpace(raw.Pool.Overflow)))
	}

	if meta.IsDefined("limits", "max_line_length") {
		cfg.Limits.MaxLineLength = raw.Limits.MaxLineLength
	}

	if meta.IsDefined("limits", "max_headers") {
		cfg.Limits.MaxHeaders = raw.Limits.MaxHeaders
	}

	if meta.IsDefined("log", "sink") {
		cfg.Log.Sink = Sink(strings.ToLower(strings.TrimSpace(raw.Log.Sink)))
	}

	if meta.IsDefined("log", "path") {
		cfg.Log.Path = strings.TrimSpace(raw.Log.Path)
	}

	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.ToLower(strings.TrimSpace(raw.Log.Level))
	}

	if meta.IsDefined("log", "no_color") {
		cfg.Log.NoColor = raw.Log.NoColor
	}

	return nil
}

// ApplyEnv overrides the config with values taken from the environment. Empty variables
// are ignored.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if addr := strings.TrimSpace(getenv(EnvAddr)); addr != "" {
		cfg.NET.Addr = addr
	}

	if raw := strings.TrimSpace(getenv(EnvWorkers)); raw != "" {
		workers, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvWorkers, err)
		}

		cfg.Pool.Workers = workers
	}

	if v, ok := parseBool(getenv(EnvDebug)); ok {
		cfg.Debug = v
	}

	if level := strings.TrimSpace(getenv(EnvLogLevel)); level != "" {
		cfg.Log.Level = strings.ToLower(level)
	}

	if v, ok := parseBool(getenv(EnvLogNoColor)); ok {
		cfg.Log.NoColor = v
	}

	return nil
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}

	return v, true
}
