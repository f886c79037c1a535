package telemetry

import (
	"context"
	"log/slog"
	"strconv"
)

// SlogSink writes every event as a log record. The event name becomes the
// message; source, id and payload entries (payload.0, payload.1, ...) become
// attributes.
type SlogSink struct {
	logger *slog.Logger
	level  slog.Level
}

// NewSlogSink creates a SlogSink that logs at Info on logger.
// A nil logger falls back to slog.Default().
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger, level: slog.LevelInfo}
}

// WithLevel returns a copy of the sink logging at level.
func (s *SlogSink) WithLevel(level slog.Level) *SlogSink {
	cp := *s
	cp.level = level
	return &cp
}

func (s *SlogSink) Record(event Event) {
	attrs := make([]slog.Attr, 0, len(event.Payload)+2)
	attrs = append(attrs,
		slog.String("source", event.Source),
		slog.String("event_id", event.ID),
	)
	for i, v := range event.Payload {
		attrs = append(attrs, slog.Any("payload."+strconv.Itoa(i), v))
	}

	s.logger.LogAttrs(context.Background(), s.level, event.Name, attrs...)
}
