package proxy

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vango-dev/hostrender/internal/errors"
	"github.com/vango-dev/hostrender/pkg/protocol"
)

// Transport delivers batches to a host.
type Transport interface {
	// Send delivers b and blocks until the host has applied it. A batch
	// the host rejected yields the error built by AckError. A failure
	// before the host received b is reported as ErrNotDelivered; any
	// other error leaves the host state unknown.
	Send(ctx context.Context, b *protocol.Batch) error
}

// EventSource is implemented by transports that carry host events back.
type EventSource interface {
	SetEventHandler(h func(protocol.Event))
}

// ErrNotDelivered matches Send failures that happened before the host
// received the batch. The same batch may be sent again.
var ErrNotDelivered = errors.New("E068")

// NotDelivered marks cause as a failure before delivery.
func NotDelivered(cause error) error {
	if errors.Code(cause) == "E068" {
		return cause
	}
	return errors.New("E068").Wrap(cause)
}

// rejection marks an error the host reported in an ack.
type rejection struct{ err error }

func (r rejection) Error() string { return r.err.Error() }
func (r rejection) Unwrap() error { return r.err }

// AckError converts a failed ack into an error carrying the host's code,
// so errors.Is matches the same sentinels on both sides.
func AckError(ack *protocol.Ack) error {
	if ack.OK() {
		return nil
	}
	code := ack.Code
	if code == "" {
		code = "E067"
	}
	return rejection{errors.New(code).WithDetailf("batch %d op %d: %s", ack.Seq, ack.Index, ack.Err)}
}

// sendOutcome classifies a Send error.
type sendOutcome uint8

const (
	sendOK sendOutcome = iota
	sendRejected
	sendNotDelivered
	sendUnknown
)

func classifySend(err error) sendOutcome {
	if err == nil {
		return sendOK
	}
	for e := err; e != nil; {
		if _, ok := e.(rejection); ok {
			return sendRejected
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	if errors.Code(err) == "E068" {
		return sendNotDelivered
	}
	return sendUnknown
}

// eventPump hands events to a handler on its own goroutine. Pushing never
// blocks, so a handler that flushes cannot stall the goroutine that
// received the event.
type eventPump struct {
	logger *slog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []protocol.Event
	handler func(protocol.Event)
	busy    bool
	closed  bool
	exited  chan struct{}
}

func newEventPump(logger *slog.Logger) *eventPump {
	p := &eventPump{logger: logger, exited: make(chan struct{})}
	p.cond = sync.NewCond(&p.mu)
	go p.run()
	return p
}

func (p *eventPump) setHandler(h func(protocol.Event)) {
	p.mu.Lock()
	p.handler = h
	p.mu.Unlock()
}

func (p *eventPump) push(ev protocol.Event) {
	p.mu.Lock()
	if !p.closed {
		p.queue = append(p.queue, ev)
		p.cond.Broadcast()
	}
	p.mu.Unlock()
}

func (p *eventPump) run() {
	defer close(p.exited)
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		ev := p.queue[0]
		p.queue = p.queue[1:]
		h := p.handler
		p.busy = true
		p.mu.Unlock()

		if h != nil {
			p.deliver(h, ev)
		}

		p.mu.Lock()
		p.busy = false
		p.cond.Broadcast()
		p.mu.Unlock()
	}
}

func (p *eventPump) deliver(h func(protocol.Event), ev protocol.Event) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("event handler panicked", "listener", ev.Listener, "type", ev.Type, "panic", r)
		}
	}()
	h(ev)
}

// wait blocks until every queued event has been handled.
func (p *eventPump) wait() {
	p.mu.Lock()
	for (len(p.queue) > 0 || p.busy) && !p.closed {
		p.cond.Wait()
	}
	p.mu.Unlock()
}

// close delivers what is queued and stops the goroutine.
func (p *eventPump) close() {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()
	<-p.exited
}
