package catalog

import (
	"context"
	"errors"
	"log/slog"
)

// LogEventSink writes every event to a structured logger
type LogEventSink struct {
	logger *slog.Logger
}

// NewLogEventSink creates an event sink that logs through logger
func NewLogEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEventSink{logger: logger}
}

// Publish logs the event at info level
func (l *LogEventSink) Publish(ctx context.Context, event Event) error {
	l.logger.InfoContext(ctx, "catalog event",
		"type", event.Type,
		"entity", event.Entity,
		"id", event.ID,
		"parent_id", event.ParentID)
	return nil
}

type fanOutSink []EventSink

// FanOut returns an EventSink that publishes to every sink in order and
// joins their errors.
func FanOut(sinks ...EventSink) EventSink {
	return fanOutSink(sinks)
}

func (f fanOutSink) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, sink := range f {
		if err := sink.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
