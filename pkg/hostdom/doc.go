// Package hostdom is an in-memory, server-side DOM that satisfies the rnode
// capability interfaces.
//
// A Document is itself an object-variant renderer: it creates *Element,
// *Text and *Comment values which then mutate themselves. FuncRenderer
// exposes the same tree through the functional variant, and Factory hands
// out either shape per component.
//
//	doc := hostdom.NewDocument()
//	div := doc.CreateElement("div")
//	div.AppendChild(doc.CreateTextNode("-"))
//	doc.Body().AppendChild(div)
//	fmt.Println(hostdom.OuterHTML(doc.Body())) // <body><div>-</div></body>
//
// The tree is not safe for concurrent use. A single goroutine owns a
// Document; host.Worker serializes access for cross-goroutine callers.
package hostdom
