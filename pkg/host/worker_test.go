package host

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/hostrender/pkg/hostdom"
	"github.com/vango-dev/hostrender/pkg/protocol"
)

func TestWorkerApplyAndSnapshot(t *testing.T) {
	w := NewWorker()
	defer w.Close()
	ctx := context.Background()

	ack, err := w.Apply(ctx, &protocol.Batch{Seq: 1, Ops: []protocol.Op{
		{Code: protocol.OpSelectRoot, Node: 1, Name: "body"},
		{Code: protocol.OpCreateElement, Node: 2, Name: "h1"},
		{Code: protocol.OpCreateText, Node: 3, Value: "Title"},
		{Code: protocol.OpAppendChild, Parent: 2, Node: 3},
		{Code: protocol.OpAppendChild, Parent: 1, Node: 2},
	}})
	if err != nil || !ack.OK() {
		t.Fatalf("Apply = %+v, %v", ack, err)
	}

	html, err := w.Snapshot(ctx, hostdom.RenderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, "<body><h1>Title</h1></body>") {
		t.Errorf("snapshot = %s", html)
	}

	ack, err = w.Apply(ctx, &protocol.Batch{Seq: 5})
	if err != nil {
		t.Fatal(err)
	}
	if ack.Code != "E064" {
		t.Errorf("sequence ack = %+v", ack)
	}
}

func TestWorkerDispatchForwardsOnWorkerGoroutine(t *testing.T) {
	events := make(chan protocol.Event, 1)
	w := NewWorker(WithEventSink(func(ev protocol.Event) { events <- ev }))
	defer w.Close()
	ctx := context.Background()

	if _, err := w.Apply(ctx, &protocol.Batch{Seq: 1, Ops: []protocol.Op{
		{Code: protocol.OpCreateElement, Node: 1, Name: "button"},
		{Code: protocol.OpListen, Node: 1, Name: "click", Listener: 3},
	}}); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Dispatch(ctx, 1, "click", int64(4)); err != nil {
		t.Fatal(err)
	}
	select {
	case ev := <-events:
		if ev.Listener != 3 || ev.Detail.Any() != int64(4) {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no event forwarded")
	}
}

func TestWorkerClose(t *testing.T) {
	w := NewWorker()
	w.Close()
	w.Close()
	err := w.Do(context.Background(), func(*Applier) error { return nil })
	if !errors.Is(err, errCode("E066")) {
		t.Errorf("Do after Close = %v, want E066", err)
	}
}

func TestWorkerRecoversPanic(t *testing.T) {
	w := NewWorker()
	defer w.Close()
	err := w.Do(context.Background(), func(*Applier) error { panic("boom") })
	if !errors.Is(err, errCode("E067")) {
		t.Errorf("panicking job = %v", err)
	}
	if err := w.Do(context.Background(), func(*Applier) error { return nil }); err != nil {
		t.Errorf("worker unusable after panic: %v", err)
	}
}

func TestWorkerContextCanceled(t *testing.T) {
	w := NewWorker()
	defer w.Close()

	release := make(chan struct{})
	started := make(chan struct{})
	go w.Do(context.Background(), func(*Applier) error {
		close(started)
		<-release
		return nil
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := w.Do(ctx, func(*Applier) error { return nil })
	close(release)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Do on busy worker = %v", err)
	}
}

func TestWorkerApplyNotDelivered(t *testing.T) {
	w := NewWorker()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := w.Apply(ctx, &protocol.Batch{Seq: 1}); !errors.Is(err, errCode("E068")) || !errors.Is(err, context.Canceled) {
		t.Errorf("Apply with canceled ctx = %v, want E068 wrapping context.Canceled", err)
	}

	// The canceled batch never reached the applier, so seq 1 is still next.
	ack, err := w.Apply(context.Background(), &protocol.Batch{Seq: 1})
	if err != nil || !ack.OK() {
		t.Fatalf("Apply after canceled send = %+v, %v", ack, err)
	}

	w.Close()
	_, err = w.Apply(context.Background(), &protocol.Batch{Seq: 2})
	if !errors.Is(err, errCode("E068")) || !errors.Is(err, errCode("E066")) {
		t.Errorf("Apply after Close = %v, want E068 wrapping E066", err)
	}
}
