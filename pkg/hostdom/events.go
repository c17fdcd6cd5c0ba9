package hostdom

import "github.com/vango-dev/hostrender/pkg/rnode"

type registration struct {
	listener *rnode.Listener
	capture  bool
	once     bool
	removed  bool
}

// AddEventListener registers l for eventType. Registering the same
// (listener, capture) pair twice is a no-op.
func (e *Element) AddEventListener(eventType string, l *rnode.Listener, opts rnode.ListenerOptions) {
	if l == nil || l.Handle == nil {
		return
	}
	for _, r := range e.listeners[eventType] {
		if r.listener == l && r.capture == opts.Capture {
			return
		}
	}
	if e.listeners == nil {
		e.listeners = make(map[string][]*registration)
	}
	e.listeners[eventType] = append(e.listeners[eventType], &registration{
		listener: l,
		capture:  opts.Capture,
		once:     opts.Once,
	})
}

// RemoveEventListener unregisters the (listener, capture) pair. Removing a
// listener that is not registered is a no-op.
func (e *Element) RemoveEventListener(eventType string, l *rnode.Listener, opts rnode.ListenerOptions) {
	regs := e.listeners[eventType]
	for i, r := range regs {
		if r.listener == l && r.capture == opts.Capture {
			r.removed = true
			e.listeners[eventType] = append(regs[:i:i], regs[i+1:]...)
			if len(e.listeners[eventType]) == 0 {
				delete(e.listeners, eventType)
			}
			return
		}
	}
}

// ListenerCount returns the number of listeners registered for eventType,
// or for every type when eventType is empty.
func (e *Element) ListenerCount(eventType string) int {
	if eventType != "" {
		return len(e.listeners[eventType])
	}
	n := 0
	for _, regs := range e.listeners {
		n += len(regs)
	}
	return n
}

// removeAllListeners drops every registration on e.
func (e *Element) removeAllListeners() {
	for _, regs := range e.listeners {
		for _, r := range regs {
			r.removed = true
		}
	}
	e.listeners = nil
}

// DispatchEvent delivers ev to target through the capture, target and
// bubble phases and reports whether the default action was not
// prevented. Listeners added during dispatch are not invoked for ev;
// listeners removed during dispatch are skipped.
func DispatchEvent(target Node, ev *rnode.Event) bool {
	ev.Target = target

	var path []*Element
	for p := target.Parent(); p != nil; p = p.Parent() {
		path = append(path, p)
	}

	ev.Phase = rnode.PhaseCapturing
	for i := len(path) - 1; i >= 0 && !ev.PropagationStopped(); i-- {
		path[i].invoke(ev, true, false)
	}

	if el, ok := target.(*Element); ok && !ev.PropagationStopped() {
		ev.Phase = rnode.PhaseAtTarget
		el.invoke(ev, true, true)
	}

	ev.Phase = rnode.PhaseBubbling
	for i := 0; i < len(path) && !ev.PropagationStopped(); i++ {
		path[i].invoke(ev, false, false)
	}

	ev.Phase = rnode.PhaseNone
	ev.CurrentTarget = nil
	return !ev.DefaultPrevented()
}

// Dispatch is DispatchEvent with e as the target.
func (e *Element) Dispatch(ev *rnode.Event) bool { return DispatchEvent(e, ev) }

func (e *Element) invoke(ev *rnode.Event, capture, atTarget bool) {
	regs := e.listeners[ev.Type]
	if len(regs) == 0 {
		return
	}
	snapshot := make([]*registration, len(regs))
	copy(snapshot, regs)

	ev.CurrentTarget = e
	for _, r := range snapshot {
		if r.removed {
			continue
		}
		if !atTarget && r.capture != capture {
			continue
		}
		if r.once {
			e.RemoveEventListener(ev.Type, r.listener, rnode.ListenerOptions{Capture: r.capture})
		}
		r.listener.Handle(ev)
	}
}
