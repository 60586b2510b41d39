package ports

import "context"

const (
	// EventSequenceStarted is emitted when an Advance call begins.
	EventSequenceStarted = "sequence.started"
	// EventSequenceStopped is emitted when auto-chaining stops, with the stop reason.
	EventSequenceStopped = "sequence.stopped"
	// EventKeyframeStarted is emitted after styles are composed, before dispatch.
	EventKeyframeStarted = "keyframe.started"
	// EventKeyframeSettled is emitted once every controller of a keyframe settled.
	EventKeyframeSettled = "keyframe.settled"
	// EventKeyframeFailed is emitted when composition or any controller failed.
	EventKeyframeFailed = "keyframe.failed"
)

// DomainEvent represents a significant occurrence within the engine. Events
// carry structured payloads that subscribers use for logging or UI updates.
type DomainEvent interface {
	EventType() string
	Payload() interface{}
}

// EventPublisher distributes events to interested subscribers. Dispatch is
// synchronous: Publish blocks until all handlers run. Implementations must be
// thread-safe.
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
}

// EventHandler processes an event of a specific type.
type EventHandler func(context.Context, DomainEvent) error

// Subscription represents a registered handler. Callers must invoke
// Unsubscribe to stop receiving events.
type Subscription interface {
	Unsubscribe()
}

// Event is a plain DomainEvent implementation with a map payload.
type Event struct {
	Type string
	Data map[string]interface{}
}

// EventType implements DomainEvent.
func (e Event) EventType() string { return e.Type }

// Payload implements DomainEvent.
func (e Event) Payload() interface{} { return e.Data }
