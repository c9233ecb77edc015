// Package logging defines the structured logging contract used by zodmon.
//
// The client never writes to stdout or stderr on its own. It traces every call
// at debug level through a Logger, which defaults to NopLogger. The records
// are:
//
//	client ready          endpoints, validate, transform
//	request               endpoint
//	request rejected      endpoint, error
//	fetch failed          endpoint, error
//	fetch complete        endpoint, status
//	plugin request hook   plugin, priority, endpoint
//	plugin response hook  plugin, priority, endpoint
//	plugin error          plugin, endpoint, error
//	error classified      endpoint, status, declared
//
// endpoint is the "<method> <path>" key of the declaration, e.g. "get /users/:id".
// priority is "high", "normal" or "low". declared is the matched error status
// or "default".
//
// # Usage with log/slog
//
//	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
//	client, err := zodmon.New(endpoints,
//	    zodmon.WithLogger(logging.NewSlogAdapter(slog.New(handler))),
//	)
//
// Any other logging library can be plugged in by implementing Logger.
package logging

import "log/slog"

// Logger receives the client's pipeline trace. Attrs are alternating
// key-value pairs, as in log/slog.
//
// The client and the plugin registry only call Debug and With today; the
// other levels are for plugins that share the client's logger.
type Logger interface {
	Debug(msg string, attrs ...any)
	Info(msg string, attrs ...any)
	Warn(msg string, attrs ...any)
	Error(msg string, attrs ...any)

	// With returns a Logger that prepends attrs to every record. The client
	// uses it to bind the endpoint key once per call.
	With(attrs ...any) Logger
}

// NopLogger discards all output. It is the default logger.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(_ string, _ ...any) {}

// Info implements Logger.
func (NopLogger) Info(_ string, _ ...any) {}

// Warn implements Logger.
func (NopLogger) Warn(_ string, _ ...any) {}

// Error implements Logger.
func (NopLogger) Error(_ string, _ ...any) {}

// With implements Logger.
func (n NopLogger) With(_ ...any) Logger { return n }

var _ Logger = NopLogger{}

// SlogAdapter wraps a *slog.Logger to implement Logger.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter. A nil logger selects slog.Default().
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// Debug implements Logger.
func (s *SlogAdapter) Debug(msg string, attrs ...any) {
	s.logger.Debug(msg, attrs...)
}

// Info implements Logger.
func (s *SlogAdapter) Info(msg string, attrs ...any) {
	s.logger.Info(msg, attrs...)
}

// Warn implements Logger.
func (s *SlogAdapter) Warn(msg string, attrs ...any) {
	s.logger.Warn(msg, attrs...)
}

// Error implements Logger.
func (s *SlogAdapter) Error(msg string, attrs ...any) {
	s.logger.Error(msg, attrs...)
}

// With implements Logger.
func (s *SlogAdapter) With(attrs ...any) Logger {
	return &SlogAdapter{logger: s.logger.With(attrs...)}
}

var _ Logger = (*SlogAdapter)(nil)

// OrNop returns l, or NopLogger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}
