package lifecycle

import "time"

// State represents the controller's position in the break lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateArmed      State = "armed"
	StateCompleting State = "completing"
	StateSkipping   State = "skipping"
)

// EventType defines the type of controller event.
type EventType string

const (
	EventArmed     EventType = "armed"
	EventProgress  EventType = "progress"
	EventCompleted EventType = "completed"
	EventSkipped   EventType = "skipped"
	EventCleared   EventType = "cleared"
	EventDismiss   EventType = "dismiss"
	EventError     EventType = "error"
)

// Event represents a controller update for the presentation layer.
type Event struct {
	Type    EventType
	View    View
	Message string
	At      time.Time
}
