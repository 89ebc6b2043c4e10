package logging

import (
	"log/slog"
	"os"
)

// Logger is the printf-free logging interface accepted by the server and the
// cluster backend.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// SlogAdapter implements Logger on top of a *slog.Logger.
type SlogAdapter struct {
	logger *slog.Logger
}

var _ Logger = (*SlogAdapter)(nil)

// NewSlogAdapter wraps logger. A nil logger writes text to stderr at info level.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.New(NewHandler(FormatText, slog.LevelInfo, os.Stderr))
	}
	return &SlogAdapter{logger: logger}
}

// DefaultLogger returns an adapter writing text to stderr at info level.
// Stdout is reserved for stdio MCP traffic.
func DefaultLogger() *SlogAdapter {
	return NewSlogAdapter(nil)
}

// Logger returns the underlying *slog.Logger.
func (a *SlogAdapter) Logger() *slog.Logger { return a.logger }

func (a *SlogAdapter) Debug(msg string, args ...interface{}) { a.logger.Debug(msg, args...) }

func (a *SlogAdapter) Info(msg string, args ...interface{}) { a.logger.Info(msg, args...) }

func (a *SlogAdapter) Warn(msg string, args ...interface{}) { a.logger.Warn(msg, args...) }

func (a *SlogAdapter) Error(msg string, args ...interface{}) { a.logger.Error(msg, args...) }

// With returns an adapter that adds args to every record.
func (a *SlogAdapter) With(args ...interface{}) *SlogAdapter {
	return &SlogAdapter{logger: a.logger.With(args...)}
}
