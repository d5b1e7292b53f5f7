package fusion

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	slogmulti "github.com/samber/slog-multi"
)

// loggerConfig collects logger options before construction.
type loggerConfig struct {
	console io.Writer
	level   *slog.LevelVar
	file    string
}

// LoggerOption configures NewLogger.
type LoggerOption func(*loggerConfig)

// WithLogLevel sets the minimum level for all handlers.
func WithLogLevel(l slog.Level) LoggerOption {
	return func(c *loggerConfig) {
		c.level.Set(l)
	}
}

// WithConsole redirects the human-readable stream, which defaults to stderr.
func WithConsole(w io.Writer) LoggerOption {
	return func(c *loggerConfig) {
		c.console = w
	}
}

// WithLogFile appends a JSON log stream to the given file, alongside the
// console stream. Parent directories are created as needed.
func WithLogFile(path string) LoggerOption {
	return func(c *loggerConfig) {
		c.file = path
	}
}

// NewLogger builds the fusion logger: human-readable text on the console,
// optionally fanned out to a JSON file for later analysis. The returned
// close function releases the file handle; it is safe to call when no file
// was configured.
func NewLogger(opts ...LoggerOption) (*slog.Logger, func() error, error) {
	cfg := &loggerConfig{
		console: os.Stderr,
		level:   new(slog.LevelVar),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(cfg.console, &slog.HandlerOptions{Level: cfg.level}),
	}
	closer := func() error { return nil }

	if cfg.file != "" {
		if dir := filepath.Dir(cfg.file); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, nil, fmt.Errorf("create log dir: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: cfg.level}))
		closer = f.Close
	}

	if len(handlers) == 1 {
		return slog.New(handlers[0]), closer, nil
	}
	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}
