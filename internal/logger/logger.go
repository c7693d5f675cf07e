package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// LogLevel defines log severity levels
type LogLevel int

const (
	// Log levels from least to most restrictive
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelNone
)

// Output formats understood by WithFormat
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Logger provides levelled printf-style logging on top of zerolog
type Logger struct {
	zl          zerolog.Logger
	out         io.Writer
	useColors   bool
	format      string
	level       LogLevel
	VerboseMode bool // true when the level is Debug
}

// New creates a new Logger writing human readable lines to out
func New(out io.Writer, verbose bool, useColors bool) *Logger {
	level := LevelInfo
	if verbose {
		level = LevelDebug
	}

	l := &Logger{
		out:         out,
		useColors:   useColors,
		format:      FormatText,
		level:       level,
		VerboseMode: verbose,
	}
	l.rebuild()
	return l
}

// WithFormat switches between console ("text") and JSON lines ("json") output
func (l *Logger) WithFormat(format string) *Logger {
	switch strings.ToLower(format) {
	case FormatJSON:
		l.format = FormatJSON
	default:
		l.format = FormatText
	}
	l.rebuild()
	return l
}

// WithLevel sets the log level and returns the logger
func (l *Logger) WithLevel(level LogLevel) *Logger {
	l.level = level
	l.VerboseMode = level <= LevelDebug
	l.zl = l.zl.Level(zerologLevel(level))
	return l
}

// SetLevel sets the log level from its name
func (l *Logger) SetLevel(levelStr string) {
	l.WithLevel(ParseLevel(levelStr))
}

// Level returns the active level
func (l *Logger) Level() LogLevel {
	return l.level
}

func (l *Logger) rebuild() {
	var w io.Writer = l.out
	if l.format == FormatText {
		w = zerolog.ConsoleWriter{
			Out:         l.out,
			NoColor:     !l.useColors,
			TimeFormat:  "15:04:05.000",
			FormatLevel: l.formatLevel,
		}
	}
	l.zl = zerolog.New(w).With().Timestamp().Logger().Level(zerologLevel(l.level))
}

// formatLevel renders the level the same way for every message: a fixed-width
// upper-case tag, coloured per severity.
func (l *Logger) formatLevel(i any) string {
	name, _ := i.(string)
	tag := strings.ToUpper(name)
	if !l.useColors {
		return fmt.Sprintf("%-5s", tag)
	}
	switch name {
	case zerolog.LevelDebugValue:
		return color.CyanString("%-5s", tag)
	case zerolog.LevelInfoValue:
		return color.BlueString("%-5s", tag)
	case zerolog.LevelWarnValue:
		return color.YellowString("%-5s", tag)
	case zerolog.LevelErrorValue:
		return color.RedString("%-5s", tag)
	default:
		return fmt.Sprintf("%-5s", tag)
	}
}

// ParseLevel converts a level name to LogLevel, defaulting to Info
func ParseLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "none", "off":
		return LevelNone
	default:
		return LevelInfo
	}
}

func zerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}

// Debug logs a debug message if verbose mode is enabled
func (l *Logger) Debug(format string, args ...any) {
	l.zl.Debug().Msgf(format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...any) {
	l.zl.Info().Msgf(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...any) {
	l.zl.Warn().Msgf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...any) {
	l.zl.Error().Msgf(format, args...)
}

// Zerolog exposes the underlying logger for structured fields
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zl
}
