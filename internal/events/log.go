package events

import "log/slog"

// LogSink writes status signals to a structured logger. It is the sink
// for plain one-shot CLI runs, where no SSE clients exist.
type LogSink struct {
	logger *slog.Logger
}

var _ Sink = (*LogSink)(nil)

// NewLogSink creates a sink over logger (slog.Default when nil).
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Publish logs the event.
func (s *LogSink) Publish(event Event) {
	s.logger.Info(event.Type, slog.Any("data", event.Data))
}
