// Package logger builds the zap loggers of the controller and carries them
// through request and voice-session contexts.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Config selects level, encoding and destination. Empty fields fall back to
// info, console and stderr.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	Output     string // stdout, stderr, or file path
	TimeFormat string
}

// DefaultConfig is a console logger on stderr at info
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "console",
		Output:     "stderr",
		TimeFormat: defaultTimeLayout,
	}
}

// ForEnv switches production to JSON lines; every other env logs for humans
func ForEnv(env string) *Config {
	cfg := DefaultConfig()
	if env == "production" {
		cfg.Format = "json"
	}
	return cfg
}

var levels = map[string]zapcore.Level{
	"debug":   zapcore.DebugLevel,
	"info":    zapcore.InfoLevel,
	"warn":    zapcore.WarnLevel,
	"warning": zapcore.WarnLevel,
	"error":   zapcore.ErrorLevel,
	"fatal":   zapcore.FatalLevel,
}

// parseLevel is lenient: unknown names log at info
func parseLevel(level string) zapcore.Level {
	if l, ok := levels[strings.ToLower(strings.TrimSpace(level))]; ok {
		return l
	}
	return zapcore.InfoLevel
}

// New opens cfg.Output and builds the logger. An output file that cannot be
// opened fails startup instead of silently logging elsewhere.
func New(cfg *Config) (*zap.Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out, toFile, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}
	return build(cfg, out, !toFile), nil
}

// NewWithWriter logs to w without colors
func NewWithWriter(cfg *Config, w io.Writer) *zap.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return build(cfg, zapcore.AddSync(w), false)
}

func build(cfg *Config, out zapcore.WriteSyncer, color bool) *zap.Logger {
	core := zapcore.NewCore(encoderFor(cfg, color), out, parseLevel(cfg.Level))
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

func encoderFor(cfg *Config, color bool) zapcore.Encoder {
	layout := cfg.TimeFormat
	if layout == "" {
		layout = defaultTimeLayout
	}
	ec := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout(layout),
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if cfg.Format != "console" {
		return zapcore.NewJSONEncoder(ec)
	}
	// escape codes only make sense on a terminal stream
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	if color {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(ec)
}

func openOutput(output string) (out zapcore.WriteSyncer, toFile bool, err error) {
	switch strings.ToLower(output) {
	case "", "stderr":
		return zapcore.Lock(os.Stderr), false, nil
	case "stdout":
		return zapcore.Lock(os.Stdout), false, nil
	}
	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, false, fmt.Errorf("opening log output %s: %w", output, err)
	}
	return zapcore.AddSync(f), true, nil
}

// Sync flushes buffered entries before exit
func Sync(l *zap.Logger) error {
	return l.Sync()
}
