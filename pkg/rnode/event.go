package rnode

// Phase is the dispatch phase of an Event.
type Phase uint8

const (
	PhaseNone Phase = iota
	PhaseCapturing
	PhaseAtTarget
	PhaseBubbling
)

// Event is delivered to listeners registered on an Element.
type Event struct {
	Type   string
	Target Node
	Detail any

	// CurrentTarget and Phase are set by the dispatcher.
	CurrentTarget Node
	Phase         Phase

	defaultPrevented bool
	stopped          bool
}

// NewEvent creates an event of the given type.
func NewEvent(eventType string, detail any) *Event {
	return &Event{Type: eventType, Detail: detail}
}

// PreventDefault marks the event's default action as cancelled.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// StopPropagation stops the event from reaching further nodes.
func (e *Event) StopPropagation() { e.stopped = true }

// PropagationStopped reports whether StopPropagation was called.
func (e *Event) PropagationStopped() bool { return e.stopped }

// Handler handles an event.
type Handler func(ev *Event)

// Listener wraps a Handler. Listeners are compared by pointer, so the same
// *Listener must be passed to RemoveEventListener.
type Listener struct {
	Handle Handler
}

// NewListener returns a listener calling h.
func NewListener(h Handler) *Listener {
	return &Listener{Handle: h}
}

// ListenerOptions follows the DOM addEventListener options. Capture is part
// of a registration's identity; Once removes the listener after its first
// invocation.
type ListenerOptions struct {
	Capture bool
	Once    bool
}
