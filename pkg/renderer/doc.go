// Package renderer defines the contract a rendering engine uses to create
// and mutate host nodes, and the factory protocol that hands out renderers.
//
// # Variants
//
// A Renderer is one of two shapes, fixed when the value is built:
//
//   - Object variant (ObjectRenderer): the renderer only manufactures
//     nodes. Structural and attribute mutations are called on the nodes
//     themselves. This suits hosts whose nodes already carry behaviour.
//   - Functional variant (FuncRenderer): every creation and mutation is
//     routed through the renderer. Nodes may be inert handles. This suits
//     serialization targets, cross-thread proxies and instrumented
//     execution, since there is a single choke point for every mutation.
//
// Engine call sites use the dispatch helpers (AppendChild, SetAttribute,
// Listen, ...) which branch on the active variant:
//
//	r, err := factory.CreateRenderer(host, def)
//	div, err := renderer.CreateElement(r, "div", "")
//	txt, err := renderer.CreateText(r, "-")
//	err = renderer.AppendChild(r, div, txt)
//
// # Optional Hooks
//
// NodeDestroyer (per renderer) and PassBeginner/PassEnder (per factory) are
// optional. Their absence means no extra work is needed; the helpers check
// for presence and never treat absence as an error.
//
// # Lifecycle
//
// A functional renderer is created, used, then destroyed. After Destroy
// every call fails with ErrRendererDestroyed. Object renderers have no
// destroyed state.
package renderer
