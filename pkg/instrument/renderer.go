package instrument

import (
	"log/slog"
	"sync/atomic"

	"github.com/vango-dev/hostrender/pkg/renderer"
	"github.com/vango-dev/hostrender/pkg/rnode"
)

var (
	_ renderer.FuncRenderer  = (*Renderer)(nil)
	_ renderer.NodeDestroyer = (*destroyingRenderer)(nil)
)

// Renderer forwards every call to an inner FuncRenderer, counting and
// logging it.
type Renderer struct {
	inner   renderer.FuncRenderer
	logger  *slog.Logger
	metrics *Metrics
	policy  *AttributePolicy

	// failures is shared with the Factory that created the renderer.
	failures *atomic.Int64
}

type destroyingRenderer struct {
	*Renderer
	d renderer.NodeDestroyer
}

func (r *destroyingRenderer) DestroyNode(node rnode.Node) {
	r.d.DestroyNode(node)
	r.observe("destroy_node", nil)
}

// Wrap returns an instrumented view of fn. The result implements
// renderer.NodeDestroyer exactly when fn does.
func Wrap(fn renderer.FuncRenderer, opts ...Option) renderer.FuncRenderer {
	c := newConfig(opts)
	return wrap(fn, &c, nil)
}

func wrap(fn renderer.FuncRenderer, c *config, failures *atomic.Int64) renderer.FuncRenderer {
	r := &Renderer{
		inner:    fn,
		logger:   c.logger,
		metrics:  c.metrics,
		policy:   c.policy,
		failures: failures,
	}
	if d, ok := fn.(renderer.NodeDestroyer); ok {
		return &destroyingRenderer{Renderer: r, d: d}
	}
	return r
}

// Inner returns the wrapped renderer.
func (r *Renderer) Inner() renderer.FuncRenderer { return r.inner }

func (r *Renderer) observe(op string, err error) {
	r.metrics.call(op, err)
	if err == nil {
		r.logger.Debug("renderer call", "op", op)
		return
	}
	if r.failures != nil {
		r.failures.Add(1)
	}
	r.logger.Debug("renderer call failed", "op", op, "error", err)
}

func (r *Renderer) Destroy() {
	r.inner.Destroy()
	r.observe("destroy", nil)
}

func (r *Renderer) CreateElement(name, namespace string) (rnode.Element, error) {
	el, err := r.inner.CreateElement(name, namespace)
	r.observe("create_element", err)
	return el, err
}

func (r *Renderer) CreateComment(value string) (rnode.Comment, error) {
	c, err := r.inner.CreateComment(value)
	r.observe("create_comment", err)
	return c, err
}

func (r *Renderer) CreateText(value string) (rnode.Text, error) {
	t, err := r.inner.CreateText(value)
	r.observe("create_text", err)
	return t, err
}

func (r *Renderer) AppendChild(parent rnode.Element, child rnode.Node) error {
	err := r.inner.AppendChild(parent, child)
	r.observe("append_child", err)
	return err
}

func (r *Renderer) InsertBefore(parent rnode.Node, child, ref rnode.Node) error {
	err := r.inner.InsertBefore(parent, child, ref)
	r.observe("insert_before", err)
	return err
}

func (r *Renderer) RemoveChild(parent rnode.Element, child rnode.Node) error {
	err := r.inner.RemoveChild(parent, child)
	r.observe("remove_child", err)
	return err
}

func (r *Renderer) SelectRootElement(selectorOrNode any) (rnode.Element, error) {
	el, err := r.inner.SelectRootElement(selectorOrNode)
	r.observe("select_root", err)
	return el, err
}

func (r *Renderer) SetAttribute(el rnode.Element, name, value, namespace string) error {
	if r.policy != nil {
		if err := r.policy.Check(name, value); err != nil {
			r.observe("set_attribute", err)
			return err
		}
	}
	err := r.inner.SetAttribute(el, name, value, namespace)
	r.observe("set_attribute", err)
	return err
}

func (r *Renderer) RemoveAttribute(el rnode.Element, name, namespace string) error {
	err := r.inner.RemoveAttribute(el, name, namespace)
	r.observe("remove_attribute", err)
	return err
}

func (r *Renderer) AddClass(el rnode.Element, name string) error {
	err := r.inner.AddClass(el, name)
	r.observe("add_class", err)
	return err
}

func (r *Renderer) RemoveClass(el rnode.Element, name string) error {
	err := r.inner.RemoveClass(el, name)
	r.observe("remove_class", err)
	return err
}

func (r *Renderer) SetStyle(el rnode.Element, style, value string, flags renderer.StyleFlags) error {
	err := r.inner.SetStyle(el, style, value, flags)
	r.observe("set_style", err)
	return err
}

func (r *Renderer) RemoveStyle(el rnode.Element, style string) error {
	err := r.inner.RemoveStyle(el, style)
	r.observe("remove_style", err)
	return err
}

// SetProperty applies the policy to string values, so handler and URL
// properties are held to the same rules as attributes.
func (r *Renderer) SetProperty(el rnode.Element, name string, value any) error {
	if r.policy != nil {
		s, _ := value.(string)
		if err := r.policy.Check(name, s); err != nil {
			r.observe("set_property", err)
			return err
		}
	}
	err := r.inner.SetProperty(el, name, value)
	r.observe("set_property", err)
	return err
}

func (r *Renderer) SetValue(node rnode.Text, value string) error {
	err := r.inner.SetValue(node, value)
	r.observe("set_value", err)
	return err
}

func (r *Renderer) Listen(target rnode.Node, eventName string, h rnode.Handler) (renderer.Disposer, error) {
	d, err := r.inner.Listen(target, eventName, h)
	r.observe("listen", err)
	return d, err
}
