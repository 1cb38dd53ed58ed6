package resource

// Handle is an opaque reference to a resource in a table.
// Handle 0 is reserved and always invalid. Handles are never reused.
type Handle uint64

// Event types for resource lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Event represents a resource lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	Type   EventType
}

// Observer receives notifications about resource lifecycle events.
// Observers run synchronously on the goroutine that changed the table.
type Observer interface {
	OnResourceEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) OnResourceEvent(e Event) { f(e) }

// Dropper is optionally implemented by resource values that need cleanup.
type Dropper interface {
	Drop()
}
