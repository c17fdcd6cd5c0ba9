package hostdom

import "strings"

// Well-known namespace URIs.
const (
	NamespaceHTML   = "http://www.w3.org/1999/xhtml"
	NamespaceSVG    = "http://www.w3.org/2000/svg"
	NamespaceMathML = "http://www.w3.org/1998/Math/MathML"
	NamespaceXLink  = "http://www.w3.org/1999/xlink"
	NamespaceXML    = "http://www.w3.org/XML/1998/namespace"
	NamespaceXMLNS  = "http://www.w3.org/2000/xmlns/"
)

// namespaceAliases maps the short names engines commonly pass to URIs.
var namespaceAliases = map[string]string{
	"html":  NamespaceHTML,
	"xhtml": NamespaceHTML,
	"svg":   NamespaceSVG,
	"math":  NamespaceMathML,
	"xlink": NamespaceXLink,
	"xml":   NamespaceXML,
	"xmlns": NamespaceXMLNS,
}

// ResolveNamespace expands a short namespace name ("svg", "xlink") to its
// URI. Anything else is returned unchanged.
func ResolveNamespace(ns string) string {
	if uri, ok := namespaceAliases[strings.ToLower(ns)]; ok {
		return uri
	}
	return ns
}

// splitQualified splits "prefix:local" into its parts.
func splitQualified(qualifiedName string) (prefix, local string) {
	if i := strings.IndexByte(qualifiedName, ':'); i > 0 {
		return qualifiedName[:i], qualifiedName[i+1:]
	}
	return "", qualifiedName
}

// isHTMLNamespace reports whether ns denotes an HTML element.
func isHTMLNamespace(ns string) bool {
	return ns == "" || ns == NamespaceHTML
}
