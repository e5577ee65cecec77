package engine

import (
	"context"
	"log/slog"
)

// LoggingObserver is a simple observer that logs all events using structured logging
type LoggingObserver struct {
	logger *slog.Logger
}

// NewLoggingObserver creates a new logging observer.
// A nil logger logs through slog.Default().
func NewLoggingObserver(logger *slog.Logger) *LoggingObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent implements the Observer interface
func (lo *LoggingObserver) OnEvent(event Event) {
	level := slog.LevelDebug
	if event.Type == EventPushRejected {
		level = slog.LevelWarn
	}
	lo.logger.Log(context.Background(), level, "collection_lifecycle",
		"event", event.Type,
		"collection", event.Collection,
		"id", event.RecordID,
		"timestamp", event.Timestamp,
		"data", event.Data,
	)
}
