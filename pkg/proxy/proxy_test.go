package proxy

import (
	"context"
	"errors"
	"testing"

	"github.com/vango-dev/hostrender/pkg/host"
	"github.com/vango-dev/hostrender/pkg/hostdom"
	"github.com/vango-dev/hostrender/pkg/renderer"
	"github.com/vango-dev/hostrender/pkg/rnode"
)

func newWorkerRenderer(t *testing.T, opts Options) (*Renderer, *WorkerTransport) {
	t.Helper()
	wt := NewWorkerTransport(nil)
	t.Cleanup(func() { wt.Close() })
	return New(wt, opts), wt
}

func hostBody(t *testing.T, wt *WorkerTransport) string {
	t.Helper()
	var out string
	err := wt.Worker().Do(context.Background(), func(a *host.Applier) error {
		out = hostdom.OuterHTML(a.Document().Body())
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}

// buildView runs the same call sequence against any functional renderer.
func buildView(t *testing.T, fn renderer.FuncRenderer) {
	t.Helper()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	root, err := fn.SelectRootElement("body")
	must(err)
	ul, _ := fn.CreateElement("ul", "")
	must(fn.SetAttribute(ul, "role", "list", ""))
	li1, _ := fn.CreateElement("li", "")
	t1, _ := fn.CreateText("one")
	must(fn.AppendChild(li1, t1))
	must(fn.AppendChild(ul, li1))
	li2, _ := fn.CreateElement("li", "")
	t2, _ := fn.CreateText("two")
	must(fn.AppendChild(li2, t2))
	must(fn.AddClass(li2, "active"))
	must(fn.AddClass(li2, "gone"))
	must(fn.RemoveClass(li2, "gone"))
	must(fn.SetStyle(li2, "color", "red", 0))
	must(fn.SetStyle(li2, "margin", "0", 0))
	must(fn.RemoveStyle(li2, "margin"))
	anchor, _ := fn.CreateComment("container")
	must(fn.AppendChild(ul, anchor))
	svg, _ := fn.CreateElement("svg", "svg")
	must(fn.SetAttribute(svg, "xlink:href", "#i", "xlink"))
	must(fn.AppendChild(li2, svg))
	must(fn.InsertBefore(ul, li2, anchor))
	must(fn.RemoveChild(ul, li1))
	must(fn.AppendChild(root, ul))
	must(fn.SetValue(t2, "two!"))
	must(fn.SetProperty(ul, "id", "items"))
	must(fn.InsertBefore(ul, li1, nil))
	must(fn.RemoveAttribute(ul, "role", ""))
}

func TestProxyMatchesDirectRenderer(t *testing.T) {
	doc := hostdom.NewDocument()
	buildView(t, hostdom.NewFuncRenderer(doc))
	want := hostdom.OuterHTML(doc.Body())

	r, wt := newWorkerRenderer(t, Options{})
	buildView(t, r)
	if err := r.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := hostBody(t, wt); got != want {
		t.Errorf("proxy tree =\n%s\nwant\n%s", got, want)
	}
}

func TestMutationsBufferUntilFlush(t *testing.T) {
	r, wt := newWorkerRenderer(t, Options{})
	root, err := r.SelectRootElement("body")
	if err != nil {
		t.Fatal(err)
	}
	if r.Seq() != 1 {
		t.Errorf("root selection did not flush: seq=%d", r.Seq())
	}
	p, _ := r.CreateElement("p", "")
	r.AppendChild(root, p)
	if r.Pending() != 2 {
		t.Errorf("Pending = %d, want 2", r.Pending())
	}
	if got := hostBody(t, wt); got != "<body></body>" {
		t.Errorf("host mutated before flush: %s", got)
	}
	if err := r.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := hostBody(t, wt); got != "<body><p></p></body>" {
		t.Errorf("after flush: %s", got)
	}
	if r.Pending() != 0 || r.Seq() != 2 || r.Sent() != 3 {
		t.Errorf("Pending=%d Seq=%d Sent=%d", r.Pending(), r.Seq(), r.Sent())
	}

	// An empty flush sends nothing.
	if err := r.Flush(context.Background()); err != nil || r.Seq() != 2 {
		t.Errorf("empty flush: err=%v seq=%d", err, r.Seq())
	}
}

func TestAutoFlushAtMaxBatchOps(t *testing.T) {
	r, _ := newWorkerRenderer(t, Options{MaxBatchOps: 4})
	for i := 0; i < 4; i++ {
		if _, err := r.CreateElement("div", ""); err != nil {
			t.Fatal(err)
		}
	}
	if r.Pending() != 0 || r.Seq() != 1 {
		t.Errorf("Pending=%d Seq=%d after reaching MaxBatchOps", r.Pending(), r.Seq())
	}
}

func TestSelectRootElement(t *testing.T) {
	r, _ := newWorkerRenderer(t, Options{})
	if _, err := r.SelectRootElement("#missing"); !errors.Is(err, renderer.ErrRootNotFound) {
		t.Errorf("missing root = %v, want ErrRootNotFound", err)
	}
	if _, err := r.SelectRootElement(42); !errors.Is(err, renderer.ErrUnsupportedRoot) {
		t.Errorf("int root = %v, want ErrUnsupportedRoot", err)
	}

	// The renderer keeps working after a rejected batch.
	body, err := r.SelectRootElement("body")
	if err != nil {
		t.Fatalf("body: %v", err)
	}
	same, err := r.SelectRootElement(body)
	if err != nil || same != body {
		t.Errorf("node root = %v, %v", same, err)
	}

	other, _ := newWorkerRenderer(t, Options{})
	foreign, _ := other.CreateElement("div", "")
	if _, err := r.SelectRootElement(foreign); !errors.Is(err, renderer.ErrForeignNode) {
		t.Errorf("foreign root = %v", err)
	}
}

func TestForeignNodes(t *testing.T) {
	r, _ := newWorkerRenderer(t, Options{})
	other, _ := newWorkerRenderer(t, Options{})
	mine, _ := r.CreateElement("div", "")
	theirs, _ := other.CreateElement("span", "")
	dom := hostdom.NewDocument().NewElement("b")

	if err := r.AppendChild(mine, theirs); !errors.Is(err, renderer.ErrForeignNode) {
		t.Errorf("other renderer's node = %v", err)
	}
	if err := r.AppendChild(mine, dom); !errors.Is(err, renderer.ErrForeignNode) {
		t.Errorf("hostdom node = %v", err)
	}
	var nilEl *Element
	if err := r.AppendChild(mine, nilEl); !errors.Is(err, renderer.ErrForeignNode) {
		t.Errorf("typed nil = %v", err)
	}
}

func TestTypedNilRefAppends(t *testing.T) {
	r, wt := newWorkerRenderer(t, Options{})
	root, _ := r.SelectRootElement("body")
	a, _ := r.CreateElement("a", "")
	b, _ := r.CreateElement("b", "")
	r.AppendChild(root, a)
	var ref *Element
	if err := r.InsertBefore(root, b, ref); err != nil {
		t.Fatal(err)
	}
	r.Flush(context.Background())
	if got := hostBody(t, wt); got != "<body><a></a><b></b></body>" {
		t.Errorf("body = %s", got)
	}
}

func TestHostErrorsSurfaceFromFlush(t *testing.T) {
	r, wt := newWorkerRenderer(t, Options{})
	root, _ := r.SelectRootElement("body")
	a, _ := r.CreateElement("a", "")
	b, _ := r.CreateElement("b", "")
	r.AppendChild(a, b)
	r.AppendChild(root, a)
	r.AppendChild(b, a)
	err := r.Flush(context.Background())
	if !errors.Is(err, rnode.ErrHierarchy) {
		t.Fatalf("cyclic append = %v, want ErrHierarchy", err)
	}
	if got := hostBody(t, wt); got != "<body><a><b></b></a></body>" {
		t.Errorf("body = %s", got)
	}

	r.RemoveChild(a, root)
	if err := r.Flush(context.Background()); !errors.Is(err, rnode.ErrNotChild) {
		t.Errorf("remove non-child = %v", err)
	}
}

func TestDestroy(t *testing.T) {
	r, wt := newWorkerRenderer(t, Options{})
	root, _ := r.SelectRootElement("body")
	p, _ := r.CreateElement("p", "")
	r.AppendChild(root, p)
	r.Destroy()

	if !r.Destroyed() {
		t.Fatal("Destroyed = false")
	}
	if _, err := r.CreateElement("div", ""); !errors.Is(err, renderer.ErrRendererDestroyed) {
		t.Errorf("create after destroy = %v", err)
	}
	if err := r.AddClass(p, "x"); !errors.Is(err, renderer.ErrRendererDestroyed) {
		t.Errorf("mutate after destroy = %v", err)
	}
	if err := r.Flush(context.Background()); err != nil {
		t.Fatalf("flush after destroy: %v", err)
	}
	if got := hostBody(t, wt); got != "<body><p></p></body>" {
		t.Errorf("buffered ops lost: %s", got)
	}
	r.DestroyNode(p)
	if r.Pending() != 1 {
		t.Errorf("DestroyNode after Destroy not queued")
	}
}

func TestHandleMethodsRouteThroughRenderer(t *testing.T) {
	r, wt := newWorkerRenderer(t, Options{})
	root, _ := r.SelectRootElement("body")
	el, _ := r.CreateElement("div", "")
	text, _ := r.CreateText("a")

	var node rnode.Element = el
	node.AppendChild(text)
	node.SetAttribute("title", "t")
	node.SetAttributeNS("xlink", "xlink:href", "#x")
	node.RemoveAttributeNS("xlink", "href")
	node.ClassList().Add("one", "two")
	node.ClassList().Remove("one")
	node.Style().SetProperty("color", "blue", "important")
	node.Style().SetProperty("width", "1px", "")
	if old := node.Style().RemoveProperty("width"); old != "1px" {
		t.Errorf("RemoveProperty = %q", old)
	}
	node.(rnode.PropertySetter).SetProperty("value", "v")
	text.SetTextContent("b")
	if err := root.InsertBefore(el, nil, true); err != nil {
		t.Fatal(err)
	}

	if !node.ClassList().Contains("two") || node.ClassList().Contains("one") {
		t.Error("class mirror out of date")
	}
	if node.Style().GetPropertyValue("color") != "blue" {
		t.Error("style mirror out of date")
	}
	if text.TextContent() != "b" {
		t.Errorf("TextContent = %q", text.TextContent())
	}
	if err := r.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := `<body><div title="t" class="two" style="color: blue !important;">b</div></body>`
	if got := hostBody(t, wt); got != want {
		t.Errorf("body =\n%s\nwant\n%s", got, want)
	}
}

func TestHandleErrorsAreDeferredToFlush(t *testing.T) {
	r, _ := newWorkerRenderer(t, Options{})
	text, _ := r.CreateText("leaf")
	child, _ := r.CreateElement("i", "")
	if got := text.AppendChild(child); got != child {
		t.Errorf("AppendChild returned %v", got)
	}
	if err := text.InsertBefore(child, nil, false); !errors.Is(err, rnode.ErrHierarchy) {
		t.Errorf("InsertBefore on text = %v", err)
	}
	if err := text.RemoveChild(child); !errors.Is(err, rnode.ErrNotChild) {
		t.Errorf("RemoveChild on text = %v", err)
	}
	if err := r.Flush(context.Background()); !errors.Is(err, rnode.ErrHierarchy) {
		t.Errorf("Flush = %v, want deferred ErrHierarchy", err)
	}
	if err := r.Flush(context.Background()); err != nil {
		t.Errorf("deferred error reported twice: %v", err)
	}
}

func TestListenEvents(t *testing.T) {
	r, wt := newWorkerRenderer(t, Options{})
	ctx := context.Background()
	root, _ := r.SelectRootElement("body")
	btn, _ := r.CreateElement("button", "")
	icon, _ := r.CreateElement("i", "")
	r.AppendChild(btn, icon)
	r.AppendChild(root, btn)

	var got []*rnode.Event
	dispose, err := r.Listen(btn, "click", func(ev *rnode.Event) { got = append(got, ev) })
	if err != nil {
		t.Fatal(err)
	}
	r.Flush(ctx)

	if _, err := wt.Dispatch(ctx, icon.(*Element).ID(), "click", "d"); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("events = %d", len(got))
	}
	if got[0].Target != icon || got[0].CurrentTarget != btn || got[0].Detail != "d" {
		t.Errorf("event = %+v", got[0])
	}

	dispose()
	dispose()
	if r.ListenerCount() != 0 {
		t.Errorf("ListenerCount = %d", r.ListenerCount())
	}
	wt.Dispatch(ctx, btn.(*Element).ID(), "click", nil)
	if len(got) != 1 {
		t.Errorf("disposed listener still called")
	}
	if r.Pending() != 1 {
		t.Errorf("Unlisten queued %d ops, want 1", r.Pending())
	}

	d, err := r.Listen(btn, "click", nil)
	if err != nil || d == nil {
		t.Errorf("nil handler = %v, %v", d, err)
	}
	text, _ := r.CreateText("t")
	if d, err := r.Listen(text, "click", func(*rnode.Event) {}); err == nil || d == nil {
		t.Errorf("listen on text = %v", err)
	}
}

func TestSelfUnregisteringListenerFiresOnce(t *testing.T) {
	r, wt := newWorkerRenderer(t, Options{})
	ctx := context.Background()
	root, _ := r.SelectRootElement("body")
	btn, _ := r.CreateElement("button", "")
	r.AppendChild(root, btn)

	count := 0
	var dispose renderer.Disposer
	dispose, _ = r.Listen(btn, "click", func(*rnode.Event) {
		count++
		dispose()
	})
	r.Flush(ctx)

	id := btn.(*Element).ID()
	wt.Dispatch(ctx, id, "click", nil)
	wt.Dispatch(ctx, id, "click", nil)
	if count != 1 {
		t.Errorf("handler ran %d times, want 1", count)
	}

	r.Flush(ctx)
	var hostListeners int
	wt.Worker().Do(ctx, func(a *host.Applier) error {
		hostListeners = a.ListenerCount()
		return nil
	})
	if hostListeners != 0 {
		t.Errorf("host still has %d listeners", hostListeners)
	}
}

func TestHandlerMayFlush(t *testing.T) {
	r, wt := newWorkerRenderer(t, Options{})
	ctx := context.Background()
	root, _ := r.SelectRootElement("body")
	btn, _ := r.CreateElement("button", "")
	r.AppendChild(root, btn)

	var flushErr error
	r.Listen(btn, "click", func(*rnode.Event) {
		p, _ := r.CreateElement("p", "")
		r.AppendChild(root, p)
		flushErr = r.Flush(ctx)
	})
	r.Flush(ctx)

	wt.Dispatch(ctx, btn.(*Element).ID(), "click", nil)
	if flushErr != nil {
		t.Fatalf("flush inside handler: %v", flushErr)
	}
	if got := hostBody(t, wt); got != "<body><button></button><p></p></body>" {
		t.Errorf("body = %s", got)
	}
}

func TestAddEventListenerOnHandle(t *testing.T) {
	r, wt := newWorkerRenderer(t, Options{})
	ctx := context.Background()
	root, _ := r.SelectRootElement("body")
	btn, _ := r.CreateElement("button", "")
	r.AppendChild(root, btn)

	calls := 0
	l := rnode.NewListener(func(*rnode.Event) { calls++ })
	btn.AddEventListener("click", l, rnode.ListenerOptions{})
	btn.AddEventListener("click", l, rnode.ListenerOptions{})
	onceCalls := 0
	once := rnode.NewListener(func(*rnode.Event) { onceCalls++ })
	btn.AddEventListener("click", once, rnode.ListenerOptions{Once: true})
	r.Flush(ctx)

	id := btn.(*Element).ID()
	wt.Dispatch(ctx, id, "click", nil)
	wt.Dispatch(ctx, id, "click", nil)
	if calls != 2 {
		t.Errorf("deduplicated listener ran %d times, want 2", calls)
	}
	if onceCalls != 1 {
		t.Errorf("once listener ran %d times, want 1", onceCalls)
	}

	btn.RemoveEventListener("click", l, rnode.ListenerOptions{})
	wt.Dispatch(ctx, id, "click", nil)
	if calls != 2 {
		t.Errorf("removed listener ran again")
	}
}

func TestDestroyNodeDropsListeners(t *testing.T) {
	r, wt := newWorkerRenderer(t, Options{})
	ctx := context.Background()
	root, _ := r.SelectRootElement("body")
	btn, _ := r.CreateElement("button", "")
	r.AppendChild(root, btn)
	calls := 0
	r.Listen(btn, "click", func(*rnode.Event) { calls++ })
	r.Flush(ctx)

	renderer.FromFunc(r).DestroyNode(btn)
	if r.ListenerCount() != 0 {
		t.Errorf("ListenerCount = %d", r.ListenerCount())
	}
	if err := r.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	wt.Dispatch(ctx, btn.(*Element).ID(), "click", nil)
	if calls != 0 {
		t.Error("destroyed node delivered an event")
	}
}

func TestFactoryFlushesOnEnd(t *testing.T) {
	r, wt := newWorkerRenderer(t, Options{})
	f := NewFactory(r)

	err := renderer.RunPass(f, func() error {
		rr, err := f.CreateRenderer(nil, &renderer.ComponentDef{Name: "app"})
		if err != nil {
			return err
		}
		root, err := renderer.SelectRootElement(rr, "body")
		if err != nil {
			return err
		}
		h1, err := renderer.CreateElement(rr, "h1", "")
		if err != nil {
			return err
		}
		return renderer.AppendChild(rr, root, h1)
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := hostBody(t, wt); got != "<body><h1></h1></body>" {
		t.Errorf("body after pass = %s", got)
	}
	if total, failed := f.Passes(); total != 1 || failed != 0 {
		t.Errorf("Passes = %d, %d", total, failed)
	}

	renderer.RunPass(f, func() error {
		body, _ := r.SelectRootElement("body")
		x, _ := r.CreateElement("x", "")
		r.RemoveChild(body, x)
		return nil
	})
	if _, failed := f.Passes(); failed != 1 || !errors.Is(f.LastError(), rnode.ErrNotChild) {
		t.Errorf("failed pass not recorded: %v", f.LastError())
	}
}
