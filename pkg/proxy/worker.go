package proxy

import (
	"context"
	"log/slog"

	"github.com/vango-dev/hostrender/pkg/host"
	"github.com/vango-dev/hostrender/pkg/protocol"
)

// WorkerTransport sends batches to an in-process host.Worker.
type WorkerTransport struct {
	worker *host.Worker
	pump   *eventPump
}

var (
	_ Transport   = (*WorkerTransport)(nil)
	_ EventSource = (*WorkerTransport)(nil)
)

// NewWorkerTransport starts a worker over a fresh document and returns a
// transport to it. opts are passed to the worker's Applier.
func NewWorkerTransport(logger *slog.Logger, opts ...host.ApplierOption) *WorkerTransport {
	if logger == nil {
		logger = slog.Default().With("component", "proxy")
	}
	t := &WorkerTransport{pump: newEventPump(logger)}
	opts = append(opts, host.WithEventSink(t.pump.push))
	t.worker = host.NewWorker(opts...)
	return t
}

// Worker returns the host worker.
func (t *WorkerTransport) Worker() *host.Worker { return t.worker }

// Send applies b on the worker.
func (t *WorkerTransport) Send(ctx context.Context, b *protocol.Batch) error {
	ack, err := t.worker.Apply(ctx, b)
	if err != nil {
		return err
	}
	return AckError(ack)
}

// SetEventHandler implements EventSource.
func (t *WorkerTransport) SetEventHandler(h func(protocol.Event)) {
	t.pump.setHandler(h)
}

// Dispatch raises an event on the host node id and waits until every
// event it forwarded has been handled. It must not be called from an
// event handler.
func (t *WorkerTransport) Dispatch(ctx context.Context, id protocol.NodeID, typ string, detail any) (bool, error) {
	ok, err := t.worker.Dispatch(ctx, id, typ, detail)
	t.pump.wait()
	return ok, err
}

// WaitEvents blocks until forwarded events have been handled.
func (t *WorkerTransport) WaitEvents() { t.pump.wait() }

// Close stops the worker and the event goroutine.
func (t *WorkerTransport) Close() error {
	t.worker.Close()
	t.pump.close()
	return nil
}
