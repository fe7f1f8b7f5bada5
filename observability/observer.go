// Package observability reports journey lifecycle events such as instance
// start, step advance and deletion to pluggable observers. Event levels use
// OpenTelemetry severity numbers so the trace observer can attach them as-is.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// Level is the severity of a journey event.
type Level int

// Severity numbers are the lower bound of the matching OTel range.
const (
	LevelVerbose Level = 5
	LevelInfo    Level = 9
	LevelWarning Level = 13
	LevelError   Level = 17
)

// String returns the severity text recorded on trace events.
func (l Level) String() string {
	switch {
	case l <= 4:
		return "TRACE"
	case l <= 8:
		return "DEBUG"
	case l <= 12:
		return "INFO"
	case l <= 16:
		return "WARN"
	case l <= 20:
		return "ERROR"
	default:
		return "FATAL"
	}
}

// SlogLevel returns the slog level journey events are logged at.
func (l Level) SlogLevel() slog.Level {
	switch {
	case l <= 8:
		return slog.LevelDebug
	case l <= 12:
		return slog.LevelInfo
	case l <= 16:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// EventType identifies the kind of event, e.g. "journey.advance".
type EventType string

// Event describes one change to a journey instance. Source names the
// operation that emitted it and Data carries its attributes.
type Event struct {
	Type      EventType
	Level     Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

// NewEvent creates an Event stamped with the current time.
func NewEvent(typ EventType, level Level, source string, data map[string]any) Event {
	return Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    source,
		Data:      data,
	}
}

// Observer receives events for logging, tracing or metrics.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// Journey returns the name of the journey the event concerns, or "" for
// events outside any journey.
func (e Event) Journey() string {
	name, _ := e.Data["journey"].(string)
	return name
}
