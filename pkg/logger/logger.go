package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger with pipeline-specific context helpers
type Logger struct {
	zerolog.Logger
}

// Config holds logger configuration
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json or console
	Output string // stdout, stderr or a file path
}

// New creates a logger from cfg. An unparseable level falls back to info and
// an unwritable output file falls back to stderr with a warning.
func New(cfg Config) *Logger {
	output, openErr := openOutput(cfg.Output)

	if strings.EqualFold(cfg.Format, "console") {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	l := &Logger{
		Logger: zerolog.New(output).
			Level(parseLevel(cfg.Level)).
			With().
			Timestamp().
			Caller().
			Logger(),
	}
	if openErr != nil {
		l.Warn().Err(openErr).Str("output", cfg.Output).Msg("Falling back to stderr for logs")
	}
	return l
}

func openOutput(target string) (io.Writer, error) {
	switch strings.ToLower(target) {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	file, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return os.Stderr, err
	}
	return file, nil
}

func parseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return parsed
}

// WithComponent adds a component field to the logger
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.With().Str("component", component).Logger(),
	}
}

// WithSource adds a source field to the logger (for topic sources)
func (l *Logger) WithSource(sourceType, sourceName string) *Logger {
	return &Logger{
		Logger: l.With().
			Str("source_type", sourceType).
			Str("source_name", sourceName).
			Logger(),
	}
}

// WithStage adds the pipeline stage name
func (l *Logger) WithStage(stage string) *Logger {
	return &Logger{
		Logger: l.With().Str("stage", stage).Logger(),
	}
}

// WithRunID tags every entry with the pipeline run id
func (l *Logger) WithRunID(runID string) *Logger {
	return &Logger{
		Logger: l.With().Str("run_id", runID).Logger(),
	}
}

// WithRow adds the tab and 1-based row number being processed
func (l *Logger) WithRow(tab string, row int) *Logger {
	return &Logger{
		Logger: l.With().Str("tab", tab).Int("row", row).Logger(),
	}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}
