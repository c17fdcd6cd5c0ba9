package host

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/vango-dev/hostrender/internal/errors"
	"github.com/vango-dev/hostrender/pkg/hostdom"
	"github.com/vango-dev/hostrender/pkg/protocol"
)

type job struct {
	fn   func(*Applier) error
	done chan error
}

// Worker owns a document and its Applier on a dedicated goroutine. All
// access to the document goes through Do, so the document itself needs
// no locking.
type Worker struct {
	applier *Applier
	jobs    chan job
	done    chan struct{}
	exited  chan struct{}
	once    sync.Once
	logger  *slog.Logger
}

// NewWorker starts a worker over a fresh document.
func NewWorker(opts ...ApplierOption) *Worker {
	return NewWorkerFor(hostdom.NewDocument(), opts...)
}

// NewWorkerFor starts a worker over doc. doc must not be touched by the
// caller afterwards except through Do.
func NewWorkerFor(doc *hostdom.Document, opts ...ApplierOption) *Worker {
	a := NewApplier(doc, opts...)
	w := &Worker{
		applier: a,
		jobs:    make(chan job),
		done:    make(chan struct{}),
		exited:  make(chan struct{}),
		logger:  a.logger,
	}
	go w.loop()
	return w
}

func (w *Worker) loop() {
	defer close(w.exited)
	for {
		select {
		case j := <-w.jobs:
			j.done <- w.run(j.fn)
		case <-w.done:
			return
		}
	}
}

func (w *Worker) run(fn func(*Applier) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("worker job panicked", "panic", r)
			if e, ok := r.(error); ok && errors.Code(e) != "" {
				err = e
				return
			}
			err = errors.New("E067").WithDetail(fmt.Sprint(r))
		}
	}()
	return fn(w.applier)
}

// submit hands fn to the worker goroutine. A failure is E068 wrapping
// the cause; fn has not run and will not run.
func (w *Worker) submit(ctx context.Context, fn func(*Applier) error) (job, error) {
	if err := ctx.Err(); err != nil {
		return job{}, errors.New("E068").Wrap(err)
	}
	j := job{fn: fn, done: make(chan error, 1)}
	select {
	case w.jobs <- j:
		return j, nil
	case <-w.done:
		return job{}, errors.New("E068").Wrap(errors.New("E066").WithDetail("worker closed"))
	case <-ctx.Done():
		return job{}, errors.New("E068").Wrap(ctx.Err())
	}
}

// Do runs fn on the worker goroutine and waits for it. fn must not call
// Do on the same worker.
func (w *Worker) Do(ctx context.Context, fn func(*Applier) error) error {
	j, err := w.submit(ctx, fn)
	if err != nil {
		return err
	}
	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Apply applies b and returns its acknowledgement. A non-nil error is
// E068: the batch never reached the applier. Once accepted, Apply waits
// for the ack regardless of ctx.
func (w *Worker) Apply(ctx context.Context, b *protocol.Batch) (*protocol.Ack, error) {
	var ack *protocol.Ack
	j, err := w.submit(ctx, func(a *Applier) error {
		ack = NewAck(b.Seq, a.Apply(b))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := <-j.done; err != nil {
		return nil, err
	}
	return ack, nil
}

// Dispatch dispatches an event on node id.
func (w *Worker) Dispatch(ctx context.Context, id protocol.NodeID, typ string, detail any) (bool, error) {
	var ok bool
	err := w.Do(ctx, func(a *Applier) error {
		var err error
		ok, err = a.Dispatch(id, typ, detail)
		return err
	})
	return ok, err
}

// Snapshot serializes the document.
func (w *Worker) Snapshot(ctx context.Context, opts hostdom.RenderOptions) (string, error) {
	var out string
	err := w.Do(ctx, func(a *Applier) error {
		var sb strings.Builder
		if err := hostdom.Render(&sb, a.Document().DocumentElement(), opts); err != nil {
			return err
		}
		out = sb.String()
		return nil
	})
	return out, err
}

// Close stops the worker. Pending Do calls fail with E066.
func (w *Worker) Close() {
	w.once.Do(func() { close(w.done) })
	<-w.exited
}
