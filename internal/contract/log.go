package contract

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LevelWriter sends records above Info to Err and everything else to Std.
type LevelWriter struct {
	Std io.Writer
	Err io.Writer
}

func (lw LevelWriter) Write(p []byte) (n int, err error) {
	return lw.Std.Write(p)
}

// WriteLevel fulfills the interface for zerolog.LevelWriter
func (lw LevelWriter) WriteLevel(level zerolog.Level, p []byte) (n int, err error) {
	writer := lw.Std
	if level > zerolog.InfoLevel {
		writer = lw.Err
	}
	return writer.Write(p)
}

// Logger is the process-wide diagnostic logger. Both streams go to stderr so that stdout
// stays clean for CSV, JSON and the MCP stdio transport.
var Logger = NewLogger(zerolog.WarnLevel, os.Stderr, os.Stderr)

// NewLogger builds a console logger that splits records between two writers by level.
func NewLogger(level zerolog.Level, std, errw io.Writer) zerolog.Logger {
	return zerolog.New(LevelWriter{
		Std: zerolog.ConsoleWriter{Out: std, TimeFormat: time.TimeOnly},
		Err: zerolog.ConsoleWriter{Out: errw, TimeFormat: time.TimeOnly},
	}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// SetLogLevel changes the level of the process-wide logger.
func SetLogLevel(level zerolog.Level) {
	Logger = Logger.Level(level)
}

// ParseLogLevel parses a --log-level value. An empty value means warn.
func ParseLogLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.WarnLevel, nil
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid --log-level value '%s': must be trace, debug, info, warn, error, disabled", s)
	}
	return level, nil
}
