package proxy

import (
	"sync/atomic"

	"github.com/vango-dev/hostrender/internal/errors"
	"github.com/vango-dev/hostrender/pkg/renderer"
	"github.com/vango-dev/hostrender/pkg/rnode"
)

// View is one component's renderer over a shared Renderer. Destroying a
// view fails only that view; nodes it created stay usable through other
// views.
type View struct {
	r         *Renderer
	destroyed atomic.Bool
}

var (
	_ renderer.FuncRenderer  = (*View)(nil)
	_ renderer.NodeDestroyer = (*View)(nil)
)

// View returns a new view of r.
func (r *Renderer) View() *View { return &View{r: r} }

// Renderer returns the shared renderer.
func (v *View) Renderer() *Renderer { return v.r }

// Destroy marks v destroyed. r and its other views are unaffected.
func (v *View) Destroy() { v.destroyed.Store(true) }

// Destroyed reports whether v or its renderer has been destroyed.
func (v *View) Destroyed() bool { return v.destroyed.Load() || v.r.Destroyed() }

func (v *View) check() error {
	if v.destroyed.Load() {
		return errors.New("E001")
	}
	return nil
}

func (v *View) CreateElement(name, namespace string) (rnode.Element, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	return v.r.CreateElement(name, namespace)
}

func (v *View) CreateComment(value string) (rnode.Comment, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	return v.r.CreateComment(value)
}

func (v *View) CreateText(value string) (rnode.Text, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	return v.r.CreateText(value)
}

func (v *View) AppendChild(parent rnode.Element, child rnode.Node) error {
	if err := v.check(); err != nil {
		return err
	}
	return v.r.AppendChild(parent, child)
}

func (v *View) InsertBefore(parent rnode.Node, child, ref rnode.Node) error {
	if err := v.check(); err != nil {
		return err
	}
	return v.r.InsertBefore(parent, child, ref)
}

func (v *View) RemoveChild(parent rnode.Element, child rnode.Node) error {
	if err := v.check(); err != nil {
		return err
	}
	return v.r.RemoveChild(parent, child)
}

func (v *View) SelectRootElement(selectorOrNode any) (rnode.Element, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	return v.r.SelectRootElement(selectorOrNode)
}

func (v *View) SetAttribute(el rnode.Element, name, value, namespace string) error {
	if err := v.check(); err != nil {
		return err
	}
	return v.r.SetAttribute(el, name, value, namespace)
}

func (v *View) RemoveAttribute(el rnode.Element, name, namespace string) error {
	if err := v.check(); err != nil {
		return err
	}
	return v.r.RemoveAttribute(el, name, namespace)
}

func (v *View) AddClass(el rnode.Element, name string) error {
	if err := v.check(); err != nil {
		return err
	}
	return v.r.AddClass(el, name)
}

func (v *View) RemoveClass(el rnode.Element, name string) error {
	if err := v.check(); err != nil {
		return err
	}
	return v.r.RemoveClass(el, name)
}

func (v *View) SetStyle(el rnode.Element, style, value string, flags renderer.StyleFlags) error {
	if err := v.check(); err != nil {
		return err
	}
	return v.r.SetStyle(el, style, value, flags)
}

func (v *View) RemoveStyle(el rnode.Element, style string) error {
	if err := v.check(); err != nil {
		return err
	}
	return v.r.RemoveStyle(el, style)
}

func (v *View) SetProperty(el rnode.Element, name string, value any) error {
	if err := v.check(); err != nil {
		return err
	}
	return v.r.SetProperty(el, name, value)
}

func (v *View) SetValue(node rnode.Text, value string) error {
	if err := v.check(); err != nil {
		return err
	}
	return v.r.SetValue(node, value)
}

func (v *View) Listen(target rnode.Node, eventName string, h rnode.Handler) (renderer.Disposer, error) {
	if err := v.check(); err != nil {
		return renderer.NopDisposer, err
	}
	return v.r.Listen(target, eventName, h)
}

// DestroyNode is accepted after Destroy.
func (v *View) DestroyNode(node rnode.Node) { v.r.DestroyNode(node) }
