package logger

import "github.com/rs/zerolog"

// ZerologAdapter wraps a zerolog.Logger to implement the Logger interface.
// Key-value pairs become fields; a trailing key without a value is logged
// under "!BADKEY" like slog does.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates a new logger adapter wrapping a zerolog.Logger.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// Debug logs a debug-level message with structured key-value pairs.
func (a *ZerologAdapter) Debug(msg string, args ...any) {
	write(a.logger.Debug(), msg, args)
}

// Info logs an info-level message with structured key-value pairs.
func (a *ZerologAdapter) Info(msg string, args ...any) {
	write(a.logger.Info(), msg, args)
}

// Warn logs a warning-level message with structured key-value pairs.
func (a *ZerologAdapter) Warn(msg string, args ...any) {
	write(a.logger.Warn(), msg, args)
}

// Error logs an error-level message with structured key-value pairs.
func (a *ZerologAdapter) Error(msg string, args ...any) {
	write(a.logger.Error(), msg, args)
}

func write(e *zerolog.Event, msg string, args []any) {
	if e == nil {
		return
	}
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok || i+1 == len(args) {
			e = e.Interface("!BADKEY", args[i])
			i--
			continue
		}
		switch v := args[i+1].(type) {
		case error:
			e = e.AnErr(key, v)
		case string:
			e = e.Str(key, v)
		default:
			e = e.Interface(key, v)
		}
	}
	e.Msg(msg)
}
