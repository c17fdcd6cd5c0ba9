// Package proxy provides a functional renderer whose nodes live in
// another goroutine or process.
//
// Every node the Renderer hands out is an inert ID handle. Creation
// completes locally; each mutation is appended to a buffer in call order,
// and Flush ships the buffer as one protocol.Batch over a Transport,
// waiting for the host to acknowledge it. Events raised on the host are
// delivered back to the handlers registered through Listen.
//
//	t, _ := proxy.DialWS(ctx, "ws://localhost:7070/ws", proxy.WSOptions{})
//	r := proxy.New(t, proxy.Options{})
//	root, _ := r.SelectRootElement("body")
//	p, _ := r.CreateElement("p", "")
//	r.AppendChild(root, p)
//	err := r.Flush(ctx)
//
// Handles also satisfy the rnode interfaces; their methods route back
// through the renderer that created them. Methods that cannot return an
// error record it, and the next Flush reports it.
package proxy
