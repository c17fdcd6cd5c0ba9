package host

import (
	"fmt"
	"log/slog"

	"github.com/vango-dev/hostrender/internal/errors"
	"github.com/vango-dev/hostrender/pkg/hostdom"
	"github.com/vango-dev/hostrender/pkg/protocol"
	"github.com/vango-dev/hostrender/pkg/renderer"
	"github.com/vango-dev/hostrender/pkg/rnode"
)

// EventSink receives events raised by listeners registered through
// OpListen. It is called on the goroutine that dispatched the event.
type EventSink func(protocol.Event)

// OpError locates a failure inside a batch.
type OpError struct {
	Seq   uint64
	Index int
	Op    protocol.Op
	Err   error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("batch %d op %d %s: %v", e.Seq, e.Index, e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// ApplierOption configures an Applier.
type ApplierOption func(*Applier)

// WithEventSink sets where forwarded events go.
func WithEventSink(sink EventSink) ApplierOption {
	return func(a *Applier) { a.sink = sink }
}

// WithRendererWrapper wraps the functional renderer every op is routed
// through, for instrumentation or policy.
func WithRendererWrapper(wrap func(renderer.FuncRenderer) renderer.FuncRenderer) ApplierOption {
	return func(a *Applier) { a.wrap = wrap }
}

// WithApplierLogger sets the logger.
func WithApplierLogger(l *slog.Logger) ApplierOption {
	return func(a *Applier) { a.logger = l }
}

type hostListener struct {
	node    protocol.NodeID
	dispose renderer.Disposer
}

// Applier replays batches onto a document. It is not safe for concurrent
// use; Worker provides that.
type Applier struct {
	doc    *hostdom.Document
	base   *hostdom.FuncRenderer
	fn     renderer.FuncRenderer
	sink   EventSink
	wrap   func(renderer.FuncRenderer) renderer.FuncRenderer
	logger *slog.Logger

	nodes     map[protocol.NodeID]rnode.Node
	ids       map[rnode.Node]protocol.NodeID
	listeners map[protocol.ListenerID]hostListener
	lastSeq   uint64
	applied   int
}

// NewApplier returns an applier over doc.
func NewApplier(doc *hostdom.Document, opts ...ApplierOption) *Applier {
	a := &Applier{
		doc:       doc,
		nodes:     make(map[protocol.NodeID]rnode.Node),
		ids:       make(map[rnode.Node]protocol.NodeID),
		listeners: make(map[protocol.ListenerID]hostListener),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default().With("component", "applier")
	}
	a.base = hostdom.NewFuncRenderer(doc)
	a.fn = a.base
	if a.wrap != nil {
		a.fn = a.wrap(a.base)
	}
	return a
}

// Document returns the target document.
func (a *Applier) Document() *hostdom.Document { return a.doc }

// LastSeq returns the sequence number of the last batch accepted.
func (a *Applier) LastSeq() uint64 { return a.lastSeq }

// Applied returns the total number of ops applied.
func (a *Applier) Applied() int { return a.applied }

// Node returns the node registered under id.
func (a *Applier) Node(id protocol.NodeID) (rnode.Node, bool) {
	n, ok := a.nodes[id]
	return n, ok
}

// ListenerCount returns the number of live listener registrations.
func (a *Applier) ListenerCount() int { return len(a.listeners) }

// Apply runs b's ops in order. Batches must arrive with Seq one past the
// previous batch. The first failing op stops the batch; ops before it
// stay applied.
func (a *Applier) Apply(b *protocol.Batch) error {
	if b.Seq != a.lastSeq+1 {
		return &OpError{Seq: b.Seq, Index: -1, Err: errors.New("E064").
			WithDetailf("expected batch %d, got %d", a.lastSeq+1, b.Seq)}
	}
	a.lastSeq = b.Seq
	for i := range b.Ops {
		if err := a.apply(&b.Ops[i]); err != nil {
			a.logger.Debug("op failed", "seq", b.Seq, "index", i, "op", b.Ops[i].String(), "error", err)
			return &OpError{Seq: b.Seq, Index: i, Op: b.Ops[i], Err: err}
		}
		a.applied++
	}
	return nil
}

// NewAck builds the acknowledgement for batch seq given Apply's result.
func NewAck(seq uint64, err error) *protocol.Ack {
	ack := &protocol.Ack{Seq: seq, Index: -1}
	if err == nil {
		return ack
	}
	cause := err
	if oe, ok := err.(*OpError); ok {
		ack.Index = oe.Index
		cause = oe.Err
	}
	ack.Code = errors.Code(cause)
	if ack.Code == "" {
		ack.Code = "E067"
	}
	ack.Err = cause.Error()
	return ack
}

func (a *Applier) lookup(id protocol.NodeID) (rnode.Node, error) {
	if id == protocol.NoNode {
		return nil, errors.New("E063").WithDetail("node id 0 is reserved")
	}
	n, ok := a.nodes[id]
	if !ok {
		return nil, errors.New("E063").WithDetailf("node %d", id)
	}
	return n, nil
}

func (a *Applier) element(id protocol.NodeID) (rnode.Element, error) {
	n, err := a.lookup(id)
	if err != nil {
		return nil, err
	}
	el, ok := n.(rnode.Element)
	if !ok {
		return nil, errors.New("E004").WithDetailf("node %d is not an element", id)
	}
	return el, nil
}

func (a *Applier) register(id protocol.NodeID, n rnode.Node) error {
	if id == protocol.NoNode {
		return errors.New("E061").WithDetail("node id 0 is reserved")
	}
	if _, dup := a.nodes[id]; dup {
		return errors.New("E061").WithDetailf("node %d already exists", id)
	}
	a.nodes[id] = n
	if _, known := a.ids[n]; !known {
		a.ids[n] = id
	}
	return nil
}

func (a *Applier) apply(op *protocol.Op) error {
	switch op.Code {
	case protocol.OpCreateElement:
		el, err := a.fn.CreateElement(op.Name, op.Namespace)
		if err != nil {
			return err
		}
		return a.register(op.Node, el)

	case protocol.OpCreateText:
		t, err := a.fn.CreateText(op.Value)
		if err != nil {
			return err
		}
		return a.register(op.Node, t)

	case protocol.OpCreateComment:
		c, err := a.fn.CreateComment(op.Value)
		if err != nil {
			return err
		}
		return a.register(op.Node, c)

	case protocol.OpSelectRoot:
		el, err := a.fn.SelectRootElement(op.Name)
		if err != nil {
			return err
		}
		return a.register(op.Node, el)

	case protocol.OpAppendChild:
		parent, err := a.element(op.Parent)
		if err != nil {
			return err
		}
		child, err := a.lookup(op.Node)
		if err != nil {
			return err
		}
		return a.fn.AppendChild(parent, child)

	case protocol.OpInsertBefore:
		parent, err := a.lookup(op.Parent)
		if err != nil {
			return err
		}
		child, err := a.lookup(op.Node)
		if err != nil {
			return err
		}
		var ref rnode.Node
		if op.Ref != protocol.NoNode {
			if ref, err = a.lookup(op.Ref); err != nil {
				return err
			}
		}
		if op.Flags&protocol.FlagViewRoot != 0 {
			return parent.InsertBefore(child, ref, true)
		}
		return a.fn.InsertBefore(parent, child, ref)

	case protocol.OpRemoveChild:
		parent, err := a.element(op.Parent)
		if err != nil {
			return err
		}
		child, err := a.lookup(op.Node)
		if err != nil {
			return err
		}
		return a.fn.RemoveChild(parent, child)

	case protocol.OpSetAttribute:
		el, err := a.element(op.Node)
		if err != nil {
			return err
		}
		return a.fn.SetAttribute(el, op.Name, op.Value, op.Namespace)

	case protocol.OpRemoveAttribute:
		el, err := a.element(op.Node)
		if err != nil {
			return err
		}
		return a.fn.RemoveAttribute(el, op.Name, op.Namespace)

	case protocol.OpAddClass, protocol.OpRemoveClass:
		el, err := a.element(op.Node)
		if err != nil {
			return err
		}
		if op.Code == protocol.OpAddClass {
			return a.fn.AddClass(el, op.Name)
		}
		return a.fn.RemoveClass(el, op.Name)

	case protocol.OpSetStyle:
		el, err := a.element(op.Node)
		if err != nil {
			return err
		}
		return a.fn.SetStyle(el, op.Name, op.Value, renderer.StyleFlags(op.Flags))

	case protocol.OpRemoveStyle:
		el, err := a.element(op.Node)
		if err != nil {
			return err
		}
		return a.fn.RemoveStyle(el, op.Name)

	case protocol.OpSetProperty:
		el, err := a.element(op.Node)
		if err != nil {
			return err
		}
		return a.fn.SetProperty(el, op.Name, op.Prop.Any())

	case protocol.OpSetValue:
		n, err := a.lookup(op.Node)
		if err != nil {
			return err
		}
		t, ok := n.(rnode.Text)
		if !ok {
			return errors.New("E004").WithDetailf("node %d is not a text node", op.Node)
		}
		return a.fn.SetValue(t, op.Value)

	case protocol.OpListen:
		return a.listen(op)

	case protocol.OpUnlisten:
		if l, ok := a.listeners[op.Listener]; ok {
			delete(a.listeners, op.Listener)
			l.dispose()
		}
		return nil

	case protocol.OpDestroyNode:
		n, err := a.lookup(op.Node)
		if err != nil {
			return err
		}
		a.base.DestroyNode(n)
		a.dropListeners(n)
		return nil
	}
	return errors.New("E062").WithDetail(op.Code.String())
}

func (a *Applier) listen(op *protocol.Op) error {
	if _, dup := a.listeners[op.Listener]; dup {
		return errors.New("E061").WithDetailf("listener %d already exists", op.Listener)
	}
	target, err := a.lookup(op.Node)
	if err != nil {
		return err
	}
	id := op.Listener
	dispose, err := a.fn.Listen(target, op.Name, func(ev *rnode.Event) {
		if a.sink == nil {
			return
		}
		a.sink(protocol.Event{
			Listener: id,
			Type:     ev.Type,
			Target:   a.ids[ev.Target],
			Detail:   protocol.ValueOf(ev.Detail),
		})
	})
	if err != nil {
		return err
	}
	a.listeners[id] = hostListener{node: op.Node, dispose: dispose}
	return nil
}

// dropListeners forgets registrations whose node lies in n's subtree. The
// DOM side has already released them.
func (a *Applier) dropListeners(n rnode.Node) {
	hn, ok := n.(hostdom.Node)
	if !ok {
		return
	}
	inSubtree := make(map[protocol.NodeID]bool)
	hostdom.Walk(hn, func(c hostdom.Node) bool {
		if id, ok := a.ids[c]; ok {
			inSubtree[id] = true
		}
		return true
	})
	for lid, l := range a.listeners {
		if inSubtree[l.node] {
			delete(a.listeners, lid)
		}
	}
}

// Dispatch delivers an event of type typ to the node registered under id
// and reports whether its default action was not prevented.
func (a *Applier) Dispatch(id protocol.NodeID, typ string, detail any) (bool, error) {
	n, err := a.lookup(id)
	if err != nil {
		return false, err
	}
	hn, ok := n.(hostdom.Node)
	if !ok {
		return false, errors.New("E004").WithDetailf("node %d", id)
	}
	return hostdom.DispatchEvent(hn, rnode.NewEvent(typ, detail)), nil
}
