// Package errors provides coded, structured errors for hostrender.
//
// Every failure that crosses a package boundary is a *HostError carrying a
// registered code (e.g. "E020"), a category and a short message. Two errors
// compare equal under errors.Is when their codes match, so exported
// sentinels such as rnode.ErrNotChild can be tested against errors that
// carry extra detail:
//
//	err := errors.New("E020").WithDetail("text node is attached elsewhere")
//	stderrors.Is(err, rnode.ErrNotChild) // true
//
// # Error Categories
//
//   - renderer: misuse of a Renderer (destroyed, foreign node)
//   - tree: structural contract violations (not a child, hierarchy)
//   - selector: malformed selectors
//   - protocol: wire and transport failures
//   - policy: mutations rejected by an attribute policy
//   - config: configuration loading and validation
//   - snapshot: snapshot persistence
package errors
