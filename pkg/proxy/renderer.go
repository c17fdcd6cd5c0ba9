package proxy

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/hostrender/internal/errors"
	"github.com/vango-dev/hostrender/pkg/protocol"
	"github.com/vango-dev/hostrender/pkg/renderer"
	"github.com/vango-dev/hostrender/pkg/rnode"
)

// Defaults for Options.
const (
	DefaultMaxBatchOps  = 512
	DefaultFlushTimeout = 10 * time.Second
)

// Options configures a Renderer.
type Options struct {
	// MaxBatchOps triggers an automatic flush once the buffer holds this
	// many ops.
	MaxBatchOps int

	// FlushTimeout bounds flushes the renderer starts on its own
	// (automatic flushes, root selection, Factory.End).
	FlushTimeout time.Duration

	Logger *slog.Logger
}

type listenerEntry struct {
	node protocol.NodeID
	h    rnode.Handler
}

type domKey struct {
	node    protocol.NodeID
	typ     string
	l       *rnode.Listener
	capture bool
}

// Renderer is a renderer.FuncRenderer that records mutations as protocol
// ops. It is safe for concurrent use; ops from concurrent callers are
// interleaved in lock order.
type Renderer struct {
	transport Transport
	maxOps    int
	timeout   time.Duration
	logger    *slog.Logger

	// sendMu orders batches on the wire by sequence number.
	sendMu sync.Mutex

	mu           sync.Mutex
	buf          []protocol.Op
	seq          uint64
	nextNode     protocol.NodeID
	nextListener protocol.ListenerID
	nodes        map[protocol.NodeID]rnode.Node
	listeners    map[protocol.ListenerID]listenerEntry
	dom          map[domKey]renderer.Disposer
	deferred     error
	destroyed    bool
	sent         int

	// failed is set when a send ended with the host state unknown.
	failed error
}

var (
	_ renderer.FuncRenderer  = (*Renderer)(nil)
	_ renderer.NodeDestroyer = (*Renderer)(nil)
)

// New returns a renderer sending to t. If t is an EventSource, host events
// are routed to HandleEvent.
func New(t Transport, opts Options) *Renderer {
	if opts.MaxBatchOps <= 0 {
		opts.MaxBatchOps = DefaultMaxBatchOps
	}
	if opts.FlushTimeout <= 0 {
		opts.FlushTimeout = DefaultFlushTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default().With("component", "proxy")
	}
	r := &Renderer{
		transport: t,
		maxOps:    opts.MaxBatchOps,
		timeout:   opts.FlushTimeout,
		logger:    opts.Logger,
		nodes:     make(map[protocol.NodeID]rnode.Node),
		listeners: make(map[protocol.ListenerID]listenerEntry),
		dom:       make(map[domKey]renderer.Disposer),
	}
	if src, ok := t.(EventSource); ok {
		src.SetEventHandler(r.HandleEvent)
	}
	return r
}

// Pending returns the number of buffered ops.
func (r *Renderer) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buf)
}

// Seq returns the sequence number of the last batch sent.
func (r *Renderer) Seq() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}

// Destroyed reports whether Destroy has been called.
func (r *Renderer) Destroyed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroyed
}

// Failed returns the send error that left the host state unknown, if
// any. Once set, every mutation and Flush fails with E066.
func (r *Renderer) Failed() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed
}

// liveLocked reports why r cannot accept mutations; the caller holds r.mu.
func (r *Renderer) liveLocked() error {
	if r.destroyed {
		return errors.New("E001")
	}
	return r.failedLocked()
}

func (r *Renderer) failedLocked() error {
	if r.failed != nil {
		return errors.New("E066").WithDetail("transport failed").Wrap(r.failed)
	}
	return nil
}

func (r *Renderer) live() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.liveLocked()
}

// Destroy marks the renderer destroyed. Buffered ops stay buffered and
// can still be flushed; new mutations fail with E001.
func (r *Renderer) Destroy() {
	r.mu.Lock()
	r.destroyed = true
	r.mu.Unlock()
}

// Flush sends the buffered ops as one batch and waits for the host to
// apply them. It also reports the first error recorded by a handle method
// since the previous Flush.
//
// A batch the transport could not deliver goes back to the front of the
// buffer under the same sequence number, so a later Flush retries it. Any
// other transport failure fails r for good.
func (r *Renderer) Flush(ctx context.Context) error {
	r.sendMu.Lock()
	defer r.sendMu.Unlock()

	r.mu.Lock()
	if err := r.failedLocked(); err != nil {
		r.mu.Unlock()
		return err
	}
	ops := r.buf
	r.buf = nil
	deferred := r.deferred
	r.deferred = nil
	if len(ops) == 0 {
		r.mu.Unlock()
		return deferred
	}
	r.seq++
	b := &protocol.Batch{Seq: r.seq, Ops: ops}
	r.mu.Unlock()

	err := r.transport.Send(ctx, b)
	switch classifySend(err) {
	case sendOK:
		r.mu.Lock()
		r.sent += len(ops)
		r.mu.Unlock()
		return deferred
	case sendRejected:
		r.logger.Debug("batch rejected", "seq", b.Seq, "ops", len(ops), "error", err)
		return err
	case sendNotDelivered:
		r.mu.Lock()
		r.seq--
		r.buf = append(ops[:len(ops):len(ops)], r.buf...)
		if r.deferred == nil {
			r.deferred = deferred
		}
		r.mu.Unlock()
		r.logger.Debug("batch not delivered", "seq", b.Seq, "ops", len(ops), "error", err)
		return err
	default:
		r.mu.Lock()
		r.failed = err
		r.mu.Unlock()
		r.logger.Error("transport failed", "seq", b.Seq, "ops", len(ops), "error", err)
		return err
	}
}

// Sent returns the number of ops the host has acknowledged.
func (r *Renderer) Sent() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent
}

func (r *Renderer) flushWithTimeout() error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.Flush(ctx)
}

// deferErr records err for the next Flush.
func (r *Renderer) deferErr(err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	if r.deferred == nil {
		r.deferred = err
	}
	r.mu.Unlock()
	r.logger.Debug("handle operation failed", "error", err)
}

// pushLocked appends op; the caller holds r.mu. It reports whether the
// buffer is full.
func (r *Renderer) pushLocked(op protocol.Op) bool {
	r.buf = append(r.buf, op)
	return len(r.buf) >= r.maxOps
}

// push appends op unless the renderer is destroyed or failed, flushing
// when the buffer fills.
func (r *Renderer) push(op protocol.Op) error {
	return r.pushThen(op, nil)
}

// pushThen is push with after run under r.mu once op is buffered.
func (r *Renderer) pushThen(op protocol.Op, after func()) error {
	r.mu.Lock()
	if err := r.liveLocked(); err != nil {
		r.mu.Unlock()
		return err
	}
	full := r.pushLocked(op)
	if after != nil {
		after()
	}
	r.mu.Unlock()
	if full {
		return r.flushWithTimeout()
	}
	return nil
}

func (r *Renderer) allocLocked() protocol.NodeID {
	r.nextNode++
	return r.nextNode
}

// own returns the handle behind n, which must come from r.
func (r *Renderer) own(n rnode.Node) (*handle, error) {
	if rnode.IsNil(n) {
		return nil, errors.New("E004").WithDetail("nil node")
	}
	hn, ok := n.(handleNode)
	if !ok {
		return nil, errors.New("E004").WithDetailf("%T is not a proxy node", n)
	}
	h := hn.base()
	if h.r != r {
		return nil, errors.New("E004").WithDetail("node belongs to another renderer")
	}
	return h, nil
}

func (r *Renderer) element(n rnode.Node) (*Element, error) {
	if _, err := r.own(n); err != nil {
		return nil, err
	}
	el, ok := n.(*Element)
	if !ok {
		return nil, errors.New("E004").WithDetail("node is not an element")
	}
	return el, nil
}

func (r *Renderer) create(op protocol.Op, mk func(h handle) rnode.Node) (rnode.Node, error) {
	r.mu.Lock()
	if err := r.liveLocked(); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	op.Node = r.allocLocked()
	n := mk(handle{r: r, id: op.Node})
	r.nodes[op.Node] = n
	full := r.pushLocked(op)
	r.mu.Unlock()
	if full {
		if err := r.flushWithTimeout(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// CreateElement creates an element handle, in namespace when non-empty.
// Namespace aliases ("svg", "xlink") are resolved by the host.
func (r *Renderer) CreateElement(name, namespace string) (rnode.Element, error) {
	n, err := r.create(protocol.Op{Code: protocol.OpCreateElement, Name: name, Namespace: namespace},
		func(h handle) rnode.Node { return &Element{handle: h} })
	if n == nil {
		return nil, err
	}
	return n.(*Element), err
}

// CreateText creates a text handle.
func (r *Renderer) CreateText(value string) (rnode.Text, error) {
	n, err := r.create(protocol.Op{Code: protocol.OpCreateText, Value: value},
		func(h handle) rnode.Node { return &Text{handle: h, value: value} })
	if n == nil {
		return nil, err
	}
	return n.(*Text), err
}

// CreateComment creates a comment handle.
func (r *Renderer) CreateComment(value string) (rnode.Comment, error) {
	n, err := r.create(protocol.Op{Code: protocol.OpCreateComment, Value: value},
		func(h handle) rnode.Node { return &Comment{handle: h, data: value} })
	if n == nil {
		return nil, err
	}
	return n.(*Comment), err
}

// AppendChild appends child to parent.
func (r *Renderer) AppendChild(parent rnode.Element, child rnode.Node) error {
	p, err := r.element(parent)
	if err != nil {
		return err
	}
	c, err := r.own(child)
	if err != nil {
		return err
	}
	ph := p.base()
	return r.pushThen(protocol.Op{Code: protocol.OpAppendChild, Parent: p.id, Node: c.id},
		func() { link(ph, c) })
}

// InsertBefore inserts child before ref; a nil ref appends.
func (r *Renderer) InsertBefore(parent rnode.Node, child, ref rnode.Node) error {
	return r.insertBefore(parent, child, ref, false)
}

func (r *Renderer) insertBefore(parent rnode.Node, child, ref rnode.Node, viewRoot bool) error {
	p, err := r.own(parent)
	if err != nil {
		return err
	}
	c, err := r.own(child)
	if err != nil {
		return err
	}
	refID := protocol.NoNode
	if !rnode.IsNil(ref) {
		rh, err := r.own(ref)
		if err != nil {
			return err
		}
		refID = rh.id
	}
	op := protocol.Op{Code: protocol.OpInsertBefore, Parent: p.id, Node: c.id, Ref: refID}
	if viewRoot {
		op.Flags = protocol.FlagViewRoot
	}
	return r.pushThen(op, func() { link(p, c) })
}

// RemoveChild detaches child from parent.
func (r *Renderer) RemoveChild(parent rnode.Element, child rnode.Node) error {
	p, err := r.element(parent)
	if err != nil {
		return err
	}
	c, err := r.own(child)
	if err != nil {
		return err
	}
	ph := p.base()
	return r.pushThen(protocol.Op{Code: protocol.OpRemoveChild, Parent: p.id, Node: c.id},
		func() {
			if c.parent == ph {
				unlink(c)
			}
		})
}

// SelectRootElement resolves a selector on the host, or returns an
// element handle of r unchanged. Selector resolution flushes, so a miss
// is reported here with E003.
func (r *Renderer) SelectRootElement(selectorOrNode any) (rnode.Element, error) {
	switch v := selectorOrNode.(type) {
	case string:
		n, err := r.create(protocol.Op{Code: protocol.OpSelectRoot, Name: v},
			func(h handle) rnode.Node { return &Element{handle: h} })
		if n == nil {
			return nil, err
		}
		if err == nil {
			err = r.flushWithTimeout()
		}
		if err != nil {
			r.forget(n.(*Element).id)
			return nil, err
		}
		return n.(*Element), nil
	case rnode.Node:
		el, err := r.element(v)
		if err != nil {
			return nil, err
		}
		if err := r.live(); err != nil {
			return nil, err
		}
		return el, nil
	}
	return nil, errors.New("E002").WithDetailf("%T", selectorOrNode)
}

func (r *Renderer) forget(id protocol.NodeID) {
	r.mu.Lock()
	delete(r.nodes, id)
	r.mu.Unlock()
}

// SetAttribute sets the namespaced attribute when namespace is non-empty
// and the plain attribute otherwise.
func (r *Renderer) SetAttribute(el rnode.Element, name, value, namespace string) error {
	e, err := r.element(el)
	if err != nil {
		return err
	}
	return r.push(protocol.Op{Code: protocol.OpSetAttribute, Node: e.id, Name: name, Value: value, Namespace: namespace})
}

// RemoveAttribute removes an attribute.
func (r *Renderer) RemoveAttribute(el rnode.Element, name, namespace string) error {
	e, err := r.element(el)
	if err != nil {
		return err
	}
	return r.push(protocol.Op{Code: protocol.OpRemoveAttribute, Node: e.id, Name: name, Namespace: namespace})
}

// AddClass adds a class token.
func (r *Renderer) AddClass(el rnode.Element, name string) error {
	e, err := r.element(el)
	if err != nil {
		return err
	}
	if err := r.push(protocol.Op{Code: protocol.OpAddClass, Node: e.id, Name: name}); err != nil {
		return err
	}
	e.mirror(func(m *mirror) { m.addClass(name) })
	return nil
}

// RemoveClass removes a class token.
func (r *Renderer) RemoveClass(el rnode.Element, name string) error {
	e, err := r.element(el)
	if err != nil {
		return err
	}
	if err := r.push(protocol.Op{Code: protocol.OpRemoveClass, Node: e.id, Name: name}); err != nil {
		return err
	}
	e.mirror(func(m *mirror) { m.removeClass(name) })
	return nil
}

// SetStyle sets an inline style property.
func (r *Renderer) SetStyle(el rnode.Element, style, value string, flags renderer.StyleFlags) error {
	e, err := r.element(el)
	if err != nil {
		return err
	}
	if err := r.push(protocol.Op{Code: protocol.OpSetStyle, Node: e.id, Name: style, Value: value, Flags: uint8(flags)}); err != nil {
		return err
	}
	e.mirror(func(m *mirror) { m.styles[style] = value })
	return nil
}

// RemoveStyle removes an inline style property.
func (r *Renderer) RemoveStyle(el rnode.Element, style string) error {
	e, err := r.element(el)
	if err != nil {
		return err
	}
	if err := r.push(protocol.Op{Code: protocol.OpRemoveStyle, Node: e.id, Name: style}); err != nil {
		return err
	}
	e.mirror(func(m *mirror) { delete(m.styles, style) })
	return nil
}

// SetProperty sets a live host property. Values travel as null, string,
// bool, int or float; other types are sent as their string form.
func (r *Renderer) SetProperty(el rnode.Element, name string, value any) error {
	e, err := r.element(el)
	if err != nil {
		return err
	}
	return r.push(protocol.Op{Code: protocol.OpSetProperty, Node: e.id, Name: name, Prop: protocol.ValueOf(value)})
}

// SetValue replaces a text node's value.
func (r *Renderer) SetValue(node rnode.Text, value string) error {
	if _, err := r.own(node); err != nil {
		return err
	}
	t, ok := node.(*Text)
	if !ok {
		return errors.New("E004").WithDetail("node is not a text node")
	}
	if err := r.push(protocol.Op{Code: protocol.OpSetValue, Node: t.id, Value: value}); err != nil {
		return err
	}
	r.mu.Lock()
	t.value = value
	r.mu.Unlock()
	return nil
}

// Listen registers h on the host. The Disposer sends Unlisten once and
// stops local delivery at once, even before the next flush.
func (r *Renderer) Listen(target rnode.Node, eventName string, h rnode.Handler) (renderer.Disposer, error) {
	e, err := r.element(target)
	if err != nil {
		return renderer.NopDisposer, err
	}
	if h == nil {
		return renderer.NopDisposer, nil
	}
	r.mu.Lock()
	if err := r.liveLocked(); err != nil {
		r.mu.Unlock()
		return renderer.NopDisposer, err
	}
	r.nextListener++
	lid := r.nextListener
	r.listeners[lid] = listenerEntry{node: e.id, h: h}
	full := r.pushLocked(protocol.Op{Code: protocol.OpListen, Node: e.id, Name: eventName, Listener: lid})
	r.mu.Unlock()

	dispose := renderer.NewDisposer(func() { r.unlisten(lid) })
	if full {
		if err := r.flushWithTimeout(); err != nil {
			return dispose, err
		}
	}
	return dispose, nil
}

func (r *Renderer) unlisten(lid protocol.ListenerID) {
	r.mu.Lock()
	if _, ok := r.listeners[lid]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.listeners, lid)
	r.pushLocked(protocol.Op{Code: protocol.OpUnlisten, Listener: lid})
	r.mu.Unlock()
}

// ListenerCount returns the number of live listener registrations.
func (r *Renderer) ListenerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}

// DestroyNode tells the host to release the listeners of node's subtree
// and forgets the subtree's handles. It is accepted after Destroy.
func (r *Renderer) DestroyNode(node rnode.Node) {
	h, err := r.own(node)
	if err != nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushLocked(protocol.Op{Code: protocol.OpDestroyNode, Node: h.id})
	gone := make(map[protocol.NodeID]bool)
	h.walk(func(d *handle) { gone[d.id] = true })
	for lid, l := range r.listeners {
		if gone[l.node] {
			delete(r.listeners, lid)
		}
	}
	for k := range r.dom {
		if gone[k.node] {
			delete(r.dom, k)
		}
	}
	for id := range gone {
		delete(r.nodes, id)
	}
	unlink(h)
}

// NodeCount returns the number of handles r still tracks.
func (r *Renderer) NodeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.nodes)
}

// HandleEvent delivers a host event to its handler. Events for listeners
// that have been disposed are dropped.
func (r *Renderer) HandleEvent(ev protocol.Event) {
	r.mu.Lock()
	l, ok := r.listeners[ev.Listener]
	target := r.nodes[ev.Target]
	r.mu.Unlock()
	if !ok {
		r.logger.Debug("event for unknown listener", "listener", ev.Listener, "type", ev.Type)
		return
	}
	rev := rnode.NewEvent(ev.Type, ev.Detail.Any())
	rev.Target = target
	rev.CurrentTarget = r.nodeOrNil(l.node)
	l.h(rev)
}

func (r *Renderer) nodeOrNil(id protocol.NodeID) rnode.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nodes[id]
}
