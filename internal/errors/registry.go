package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Renderer Errors (E001-E019)
	// ============================================

	"E001": {Category: CategoryRenderer, Message: "Renderer used after destroy"},
	"E002": {Category: CategoryRenderer, Message: "Unsupported root selector"},
	"E003": {Category: CategoryRenderer, Message: "Root element not found"},
	"E004": {Category: CategoryRenderer, Message: "Node belongs to a different host"},
	"E005": {Category: CategoryRenderer, Message: "Operation not supported for node kind"},

	// ============================================
	// Tree Errors (E020-E039)
	// ============================================

	"E020": {Category: CategoryTree, Message: "Node is not a child of the parent"},
	"E021": {Category: CategoryTree, Message: "Reference node is not a child of the parent"},
	"E022": {Category: CategoryTree, Message: "Invalid hierarchy request"},

	// ============================================
	// Selector Errors (E040-E059)
	// ============================================

	"E040": {Category: CategorySelector, Message: "Invalid selector"},

	// ============================================
	// Protocol Errors (E060-E079)
	// ============================================

	"E060": {Category: CategoryProtocol, Message: "Connection failed"},
	"E061": {Category: CategoryProtocol, Message: "Invalid message format"},
	"E062": {Category: CategoryProtocol, Message: "Unknown operation"},
	"E063": {Category: CategoryProtocol, Message: "Unknown node id"},
	"E064": {Category: CategoryProtocol, Message: "Batch sequence error"},
	"E065": {Category: CategoryProtocol, Message: "Acknowledgement timed out"},
	"E066": {Category: CategoryProtocol, Message: "Transport closed"},
	"E067": {Category: CategoryProtocol, Message: "Batch rejected by host"},
	"E068": {Category: CategoryProtocol, Message: "Batch not delivered"},

	// ============================================
	// Policy Errors (E080-E099)
	// ============================================

	"E080": {Category: CategoryPolicy, Message: "Attribute rejected by policy"},

	// ============================================
	// Config Errors (E120-E139)
	// ============================================

	"E120": {Category: CategoryConfig, Message: "Invalid configuration file"},
	"E121": {Category: CategoryConfig, Message: "Configuration file not found"},
	"E122": {Category: CategoryConfig, Message: "Invalid port"},
	"E123": {Category: CategoryConfig, Message: "Invalid configuration value"},

	// ============================================
	// Snapshot Errors (E140-E159)
	// ============================================

	"E140": {Category: CategorySnapshot, Message: "Snapshot store failed"},
	"E141": {Category: CategorySnapshot, Message: "Invalid snapshot key"},
}

// GetAllCodes returns all registered codes in sorted order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for a registered code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
