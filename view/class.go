package view

import (
	"github.com/wippyai/memview"
	"github.com/wippyai/memview/errors"
	"github.com/wippyai/memview/layout"
)

// Class declares a wrapper type W over a sized layout. bind builds a W
// whose fields hang off the given view.
type Class[W any] struct {
	layout    *layout.Layout
	bind      func(View) W
	construct func(W, ...any) error
	destruct  func(W) error
	caps      layout.Capabilities
}

// Option configures a Class.
type Option[W any] func(*Class[W])

// WithConstruct registers the hook run once when an instance is created.
func WithConstruct[W any](fn func(w W, args ...any) error) Option[W] {
	return func(c *Class[W]) {
		c.construct = fn
		c.caps.Construct = fn != nil
	}
}

// WithDestruct registers the hook run once when an instance is closed.
func WithDestruct[W any](fn func(w W) error) Option[W] {
	return func(c *Class[W]) {
		c.destruct = fn
		c.caps.Destruct = fn != nil
	}
}

// Declare builds a class. Unsized layouts are rejected, as are layouts
// whose Capabilities name a hook that no option provides.
func Declare[W any](l *layout.Layout, bind func(View) W, opts ...Option[W]) (*Class[W], error) {
	if l == nil {
		return nil, errors.InvalidInput(errors.PhaseDeclare, "class has no layout")
	}
	if !l.Sized() {
		return nil, errors.UnsizedLayout(l.Name, "view class")
	}
	if bind == nil {
		return nil, errors.New(errors.PhaseDeclare, errors.KindInvalidInput).
			Layout(l.Name).
			Detail("class has no bind function").
			Build()
	}
	c := &Class[W]{layout: l, bind: bind, caps: l.Capabilities}
	for _, opt := range opts {
		opt(c)
	}
	if c.caps.Construct && c.construct == nil {
		return nil, errors.New(errors.PhaseDeclare, errors.KindInvalidInput).
			Layout(l.Name).
			Detail("layout declares a constructor but none is bound").
			Build()
	}
	if c.caps.Destruct && c.destruct == nil {
		return nil, errors.New(errors.PhaseDeclare, errors.KindInvalidInput).
			Layout(l.Name).
			Detail("layout declares a destructor but none is bound").
			Build()
	}
	return c, nil
}

// MustDeclare is Declare that panics on error.
func MustDeclare[W any](l *layout.Layout, bind func(View) W, opts ...Option[W]) *Class[W] {
	c, err := Declare(l, bind, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Layout returns the class layout.
func (c *Class[W]) Layout() *layout.Layout { return c.layout }

// Capabilities returns the effective hook flags.
func (c *Class[W]) Capabilities() layout.Capabilities { return c.caps }

// Size returns the layout size.
func (c *Class[W]) Size() uint64 { return c.layout.Size }

// Cast returns the strong wrapper for addr.
func (c *Class[W]) Cast(mem memview.Memory, addr memview.Address) W {
	return c.bind(Cast(mem, addr))
}

// Weak returns the in-place form for addr.
func (c *Class[W]) Weak(mem memview.Memory, addr memview.Address) Weak[W] {
	return Weak[W]{view: Cast(mem, addr), class: c}
}

// Object returns a dynamic view of addr described by the class layout.
func (c *Class[W]) Object(mem memview.Memory, addr memview.Address) Object {
	return NewObject(Cast(mem, addr), c.layout)
}

// Weak is a view that is its own storage: its size is the layout size and
// its identity is the foreign address. It is what nested fields and view
// pointers yield.
type Weak[W any] struct {
	class *Class[W]
	view  View
}

// AddressOfObject returns the foreign address.
func (w Weak[W]) AddressOfObject() memview.Address { return w.view.addr }

// AddressOfView equals AddressOfObject for weak views.
func (w Weak[W]) AddressOfView() memview.Address { return w.view.addr }

// SizeOf returns the layout size.
func (w Weak[W]) SizeOf() uint64 {
	if w.class == nil {
		return 0
	}
	return w.class.layout.Size
}

// ToStrong returns a strong wrapper for the same address.
func (w Weak[W]) ToStrong() W {
	return w.class.bind(w.view)
}

// View returns the underlying view.
func (w Weak[W]) View() View { return w.view }

// Memory returns the memory the view overlays.
func (w Weak[W]) Memory() memview.Memory { return w.view.mem }

// IsNull reports whether the view refers to address 0.
func (w Weak[W]) IsNull() bool { return w.view.addr == 0 }

// Class returns the declaring class.
func (w Weak[W]) Class() *Class[W] { return w.class }
