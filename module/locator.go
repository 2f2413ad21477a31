package module

import (
	"github.com/wippyai/memview/view"
)

// Locator finds a loaded module. ok is false when no module with that
// name is currently loaded.
type Locator interface {
	Locate(name string) (v view.View, ok bool)
}

// LocatorFunc adapts an ordinary function to Locator.
type LocatorFunc func(name string) (view.View, bool)

func (f LocatorFunc) Locate(name string) (view.View, bool) { return f(name) }

// Chain asks each locator in order and returns the first hit.
type Chain []Locator

func (c Chain) Locate(name string) (view.View, bool) {
	for _, l := range c {
		if l == nil {
			continue
		}
		if v, ok := l.Locate(name); ok {
			return v, true
		}
	}
	return view.View{}, false
}
