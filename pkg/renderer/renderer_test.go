package renderer

import (
	"errors"
	"testing"

	"github.com/vango-dev/hostrender/pkg/rnode"
)

// stubFunc embeds the interface so only the methods a test needs are
// implemented.
type stubFunc struct {
	FuncRenderer
	destroyed int
}

func (s *stubFunc) Destroy() { s.destroyed++ }

type destroyingFunc struct {
	stubFunc
	seen []rnode.Node
}

func (d *destroyingFunc) DestroyNode(n rnode.Node) { d.seen = append(d.seen, n) }

type nilDisposerFunc struct{ stubFunc }

func (nilDisposerFunc) Listen(rnode.Node, string, rnode.Handler) (Disposer, error) {
	return nil, nil
}

func TestDestroyNodeHookResolvedOnce(t *testing.T) {
	plain := FromFunc(&stubFunc{})
	if plain.HasDestroyNode() {
		t.Error("plain renderer reports a destroy-node hook")
	}
	plain.DestroyNode(nil)

	d := &destroyingFunc{}
	r := FromFunc(d)
	if !r.HasDestroyNode() {
		t.Fatal("hook not detected")
	}
	r.DestroyNode(nil)
	if len(d.seen) != 1 {
		t.Errorf("hook called %d times", len(d.seen))
	}
}

func TestDestroyForwardsToFuncOnly(t *testing.T) {
	s := &stubFunc{}
	r := FromFunc(s)
	r.Destroy()
	if s.destroyed != 1 {
		t.Errorf("destroyed = %d", s.destroyed)
	}
	if fn, ok := r.Func(); !ok || fn != FuncRenderer(s) {
		t.Error("Func accessor mismatch")
	}
	if _, ok := r.Object(); ok {
		t.Error("func renderer reported an object variant")
	}
}

func TestListenNeverReturnsNilDisposer(t *testing.T) {
	r := FromFunc(&nilDisposerFunc{})
	d, err := Listen(r, nil, "x", nil)
	if err != nil {
		t.Fatal(err)
	}
	if d == nil {
		t.Fatal("nil disposer")
	}
	d()
}

func TestNewDisposerRunsOnce(t *testing.T) {
	n := 0
	var d Disposer
	d = NewDisposer(func() {
		n++
		d()
	})
	d()
	d()
	if n != 1 {
		t.Errorf("release ran %d times", n)
	}
}

type hookedFactory struct {
	FactoryFunc
	events []string
}

func (h *hookedFactory) Begin() { h.events = append(h.events, "begin") }
func (h *hookedFactory) End()   { h.events = append(h.events, "end") }

func TestRunPass(t *testing.T) {
	h := &hookedFactory{}
	boom := errors.New("boom")
	err := RunPass(h, func() error {
		h.events = append(h.events, "work")
		return boom
	})
	if err != boom {
		t.Errorf("err = %v", err)
	}
	if len(h.events) != 3 || h.events[0] != "begin" || h.events[2] != "end" {
		t.Errorf("events = %v", h.events)
	}

	plain := FactoryFunc(func(rnode.Element, *ComponentDef) (Renderer, error) { return Renderer{}, nil })
	if Begin(plain) || End(plain) {
		t.Error("hookless factory reported hooks")
	}
	if err := RunPass(plain, nil); err != nil {
		t.Errorf("empty pass: %v", err)
	}
}

func TestKindAndEncapsulationStrings(t *testing.T) {
	if KindFunc.String() != "func" || KindObject.String() != "object" || KindNone.String() != "none" {
		t.Error("Kind strings")
	}
	if EncapsulationShadowDom.String() != "shadow-dom" {
		t.Error("Encapsulation string")
	}
}
