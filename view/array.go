package view

import (
	"reflect"

	"github.com/wippyai/memview"
	"github.com/wippyai/memview/errors"
	"github.com/wippyai/memview/resolve"
)

// Array is a fixed-length run of T stored in place.
type Array[T any] struct {
	field
	elem codec[T]
	n    int
}

// NewArray declares an array of n elements. Arrays of views are rejected.
func NewArray[T any](parent View, res resolve.Resolver, n int) (Array[T], error) {
	rt := reflect.TypeFor[T]()
	if isViewType(rt) {
		return Array[T]{}, errors.UnsupportedKind(nil, rt.String(), "arrays of views are not supported")
	}
	if n < 0 {
		return Array[T]{}, errors.InvalidInput(errors.PhaseDeclare, "negative array length")
	}
	c, err := codecFor[T](nil, pointerSize(parent))
	if err != nil {
		return Array[T]{}, err
	}
	return Array[T]{field: newField(parent, res), elem: c, n: n}, nil
}

// MustArray is NewArray that panics on error.
func MustArray[T any](parent View, res resolve.Resolver, n int) Array[T] {
	a, err := NewArray[T](parent, res, n)
	if err != nil {
		panic(err)
	}
	return a
}

// Len returns the declared element count.
func (a Array[T]) Len() int { return a.n }

// At returns an accessor for element i.
func (a Array[T]) At(i int) (Value[T], error) {
	if i < 0 || i >= a.n {
		return Value[T]{}, errors.OutOfBounds(errors.PhaseAccess, nil, i, a.n)
	}
	off := int64(i) * int64(a.elem.size)
	base := a.res
	res := resolve.Func(func(mem memview.Memory, parent memview.Address) (memview.Address, error) {
		at, err := base.Resolve(mem, parent)
		if err != nil {
			return 0, err
		}
		return at.Add(off), nil
	})
	return Value[T]{field: field{parent: a.parent, res: res}, codec: a.elem}, nil
}

// Decay returns the address of the first element, as the array would
// decay to a pointer.
func (a Array[T]) Decay() (memview.Address, error) {
	return a.Address()
}

// Offset returns the address of element n without a bounds check.
func (a Array[T]) Offset(n int) (memview.Address, error) {
	addr, err := a.Address()
	if err != nil {
		return 0, err
	}
	return addr.Add(int64(n) * int64(a.elem.size)), nil
}

// Values reads every element.
func (a Array[T]) Values() ([]T, error) {
	b, err := a.read(uint64(a.n) * a.elem.size)
	if err != nil {
		return nil, err
	}
	order := a.parent.mem.ByteOrder()
	out := make([]T, a.n)
	for i := range out {
		at := uint64(i) * a.elem.size
		out[i] = a.elem.decode(b[at:at+a.elem.size], order)
	}
	return out, nil
}

// CopyFrom copies every element of src.
func (a Array[T]) CopyFrom(src Array[T]) error {
	if src.n != a.n {
		return errors.Arity(errors.PhaseAccess, a.n, src.n)
	}
	b, err := src.read(uint64(a.n) * a.elem.size)
	if err != nil {
		return err
	}
	return a.write(b)
}

// Nested is a wrapped layout embedded in place inside its parent.
type Nested[W any] struct {
	field
	class *Class[W]
}

// NewNested declares an embedded view of class.
func NewNested[W any](parent View, res resolve.Resolver, class *Class[W]) Nested[W] {
	return Nested[W]{field: newField(parent, res), class: class}
}

// Get returns the weak view at the field's address.
func (n Nested[W]) Get() (Weak[W], error) {
	addr, err := n.Address()
	if err != nil {
		return Weak[W]{}, err
	}
	return n.class.Weak(n.parent.mem, addr), nil
}
