package renderer_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/vango-dev/hostrender/pkg/hostdom"
	"github.com/vango-dev/hostrender/pkg/renderer"
	"github.com/vango-dev/hostrender/pkg/rnode"
)

// buildView runs the same engine-side call sequence against any renderer.
func buildView(t *testing.T, r renderer.Renderer) {
	t.Helper()
	host, err := renderer.SelectRootElement(r, "body")
	if err != nil {
		t.Fatalf("SelectRootElement: %v", err)
	}
	list, _ := renderer.CreateElement(r, "ul", "")
	anchor, _ := renderer.CreateComment(r, "container")
	item, _ := renderer.CreateElement(r, "li", "")
	text, _ := renderer.CreateText(r, "one")
	icon, _ := renderer.CreateElement(r, "svg", hostdom.NamespaceSVG)

	steps := []error{
		renderer.AppendChild(r, host, list),
		renderer.AppendChild(r, list, anchor),
		renderer.AppendChild(r, item, text),
		renderer.InsertBefore(r, list, item, anchor, true),
		renderer.AppendChild(r, item, icon),
		renderer.SetAttribute(r, list, "role", "list", ""),
		renderer.SetAttribute(r, icon, "xlink:href", "#i", hostdom.NamespaceXLink),
		renderer.AddClass(r, item, "active"),
		renderer.AddClass(r, item, "stale"),
		renderer.RemoveClass(r, item, "stale"),
		renderer.SetStyle(r, item, "color", "red", 0),
		renderer.SetStyle(r, item, "width", "1px", 0),
		renderer.RemoveStyle(r, item, "width"),
		renderer.SetProperty(r, item, "tabIndex", 1),
		renderer.SetValue(r, text, "two"),
	}
	for i, err := range steps {
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

const wantView = `<body><ul role="list"><li class="active" style="color: red;">two<svg xlink:href="#i"/></li><!--container--></ul></body>`

func TestBothVariantsProduceTheSameTree(t *testing.T) {
	objDoc := hostdom.NewDocument()
	buildView(t, renderer.FromObject(objDoc))

	fnDoc := hostdom.NewDocument()
	buildView(t, renderer.FromFunc(hostdom.NewFuncRenderer(fnDoc)))

	if got := hostdom.OuterHTML(objDoc.Body()); got != wantView {
		t.Errorf("object variant:\n got  %s\n want %s", got, wantView)
	}
	if got := hostdom.OuterHTML(fnDoc.Body()); got != wantView {
		t.Errorf("func variant:\n got  %s\n want %s", got, wantView)
	}
}

func TestInsertBeforeNilRefAppends(t *testing.T) {
	for _, variant := range []string{"object", "func"} {
		t.Run(variant, func(t *testing.T) {
			doc := hostdom.NewDocument()
			var r renderer.Renderer
			if variant == "object" {
				r = renderer.FromObject(doc)
			} else {
				r = renderer.FromFunc(hostdom.NewFuncRenderer(doc))
			}
			a, _ := renderer.CreateText(r, "a")
			b, _ := renderer.CreateText(r, "b")
			var none *hostdom.Element
			if err := renderer.InsertBefore(r, doc.Body(), a, nil, false); err != nil {
				t.Fatal(err)
			}
			if err := renderer.InsertBefore(r, doc.Body(), b, none, false); err != nil {
				t.Fatal(err)
			}
			if got := hostdom.InnerHTML(doc.Body()); got != "ab" {
				t.Errorf("body = %q", got)
			}
		})
	}
}

func TestListenDisposerIsIdempotent(t *testing.T) {
	for _, variant := range []string{"object", "func"} {
		t.Run(variant, func(t *testing.T) {
			doc := hostdom.NewDocument()
			r := renderer.FromObject(doc)
			if variant == "func" {
				r = renderer.FromFunc(hostdom.NewFuncRenderer(doc))
			}
			btn, _ := renderer.CreateElement(r, "button", "")

			calls := 0
			var dispose renderer.Disposer
			dispose, err := renderer.Listen(r, btn, "click", func(*rnode.Event) {
				calls++
				dispose()
			})
			if err != nil {
				t.Fatal(err)
			}
			el := btn.(*hostdom.Element)
			el.Dispatch(rnode.NewEvent("click", nil))
			el.Dispatch(rnode.NewEvent("click", nil))
			dispose()
			if calls != 1 {
				t.Errorf("calls = %d, want 1", calls)
			}
		})
	}
}

func TestListenCaptureSuffix(t *testing.T) {
	for _, variant := range []string{"object", "func"} {
		t.Run(variant, func(t *testing.T) {
			doc := hostdom.NewDocument()
			r := renderer.FromObject(doc)
			if variant == "func" {
				r = renderer.FromFunc(hostdom.NewFuncRenderer(doc))
			}
			outer, _ := renderer.CreateElement(r, "div", "")
			inner, _ := renderer.CreateElement(r, "button", "")
			renderer.AppendChild(r, outer, inner)

			var order []string
			bubble, _ := renderer.Listen(r, outer, "click", func(*rnode.Event) { order = append(order, "bubble") })
			capture, err := renderer.Listen(r, outer, "click.capture", func(*rnode.Event) { order = append(order, "capture") })
			if err != nil {
				t.Fatal(err)
			}
			renderer.Listen(r, inner, "click", func(*rnode.Event) { order = append(order, "target") })

			inner.(*hostdom.Element).Dispatch(rnode.NewEvent("click", nil))
			if got := strings.Join(order, ","); got != "capture,target,bubble" {
				t.Errorf("order = %s", got)
			}

			capture()
			bubble()
			order = nil
			inner.(*hostdom.Element).Dispatch(rnode.NewEvent("click", nil))
			if got := strings.Join(order, ","); got != "target" {
				t.Errorf("order after dispose = %s", got)
			}
		})
	}
}

func TestParseEventName(t *testing.T) {
	tests := []struct {
		in      string
		typ     string
		capture bool
	}{
		{"click", "click", false},
		{"click.capture", "click", true},
		{"focus.capture.capture", "focus.capture", true},
		{".capture", "", true},
	}
	for _, tt := range tests {
		typ, opts := renderer.ParseEventName(tt.in)
		if typ != tt.typ || opts.Capture != tt.capture {
			t.Errorf("ParseEventName(%q) = %q, %v", tt.in, typ, opts.Capture)
		}
	}
}

func TestObjectListenOnTextFails(t *testing.T) {
	doc := hostdom.NewDocument()
	r := renderer.FromObject(doc)
	text, _ := renderer.CreateText(r, "x")
	d, err := renderer.Listen(r, text, "click", func(*rnode.Event) {})
	if !errors.Is(err, renderer.ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
	if d == nil {
		t.Fatal("nil disposer")
	}
	d()
}

func TestSelectRootElementErrors(t *testing.T) {
	r := renderer.FromObject(hostdom.NewDocument())
	if _, err := renderer.SelectRootElement(r, "app-none"); !errors.Is(err, renderer.ErrRootNotFound) {
		t.Errorf("missing err = %v", err)
	}
	if _, err := renderer.SelectRootElement(r, 3.5); !errors.Is(err, renderer.ErrUnsupportedRoot) {
		t.Errorf("float err = %v", err)
	}
}

func TestZeroRenderer(t *testing.T) {
	var r renderer.Renderer
	if !r.IsZero() || r.Kind() != renderer.KindNone {
		t.Fatal("zero value should hold no renderer")
	}
	if _, err := renderer.CreateElement(r, "div", ""); err == nil {
		t.Error("zero renderer should fail")
	}
	if renderer.FromFunc(nil).Kind() != renderer.KindNone {
		t.Error("FromFunc(nil) should be zero")
	}
	r.Destroy()
	renderer.DestroyNode(r, nil)
}
