package engine

import "time"

// EventType represents the lifecycle phases a collection reports
type EventType string

const (
	EventPush         EventType = "push"
	EventPushRejected EventType = "push_rejected"
	EventCollect      EventType = "collect"
	EventKeyLookup    EventType = "key_lookup"
)

// Event represents a lifecycle event of a collection
type Event struct {
	Type       EventType // Type of event
	Collection string    // Collection that emitted the event
	RecordID   int64     // Identity involved (0 if none)
	Timestamp  time.Time // When the event occurred
	Data       any       // Phase-specific data (error, pipeline description, key)
}

// Observer interface for event subscribers
type Observer interface {
	OnEvent(event Event)
}
