package notify

import "github.com/rs/zerolog"

// Log writes each message as a structured warning. It never blocks on
// terminal output, which makes it the notifier of choice behind the HTTP API.
type Log struct {
	logger zerolog.Logger
}

func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Deliver(message string) {
	l.logger.Warn().Str("alert", message).Msg("vital sign out of range")
}
