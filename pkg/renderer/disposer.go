package renderer

import "sync"

// Disposer releases a registration. Calling it more than once has no
// further effect.
type Disposer func()

// NewDisposer returns a Disposer running release at most once. It may be
// called from inside the callback it unregisters.
func NewDisposer(release func()) Disposer {
	var once sync.Once
	return func() {
		once.Do(release)
	}
}

// NopDisposer is returned when a registration did nothing.
func NopDisposer() {}
