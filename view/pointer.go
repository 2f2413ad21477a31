package view

import (
	"github.com/wippyai/memview"
	"github.com/wippyai/memview/errors"
	"github.com/wippyai/memview/resolve"
)

// Pointer is a field holding the address of one or more T.
type Pointer[T any] struct {
	field
	elem codec[T]
}

// NewPointer declares a pointer field. The pointee type follows the same
// rules as NewValue.
func NewPointer[T any](parent View, res resolve.Resolver) (Pointer[T], error) {
	c, err := codecFor[T](nil, pointerSize(parent))
	if err != nil {
		return Pointer[T]{}, err
	}
	return Pointer[T]{field: newField(parent, res), elem: c}, nil
}

// MustPointer is NewPointer that panics on error.
func MustPointer[T any](parent View, res resolve.Resolver) Pointer[T] {
	p, err := NewPointer[T](parent, res)
	if err != nil {
		panic(err)
	}
	return p
}

// Get reads the stored address.
func (p Pointer[T]) Get() (memview.Address, error) {
	return readPointerField(p.field)
}

// Set stores target.
func (p Pointer[T]) Set(target memview.Address) error {
	addr, err := p.Address()
	if err != nil {
		return err
	}
	return memview.WritePointer(p.parent.mem, addr, target)
}

// IsNull reports whether the stored address is 0.
func (p Pointer[T]) IsNull() (bool, error) {
	v, err := p.Get()
	return v == 0, err
}

// Offset returns the stored address advanced by n elements.
func (p Pointer[T]) Offset(n int64) (memview.Address, error) {
	v, err := p.Get()
	if err != nil {
		return 0, err
	}
	return v.Add(n * int64(p.elem.size)), nil
}

// At returns an accessor for element i of the pointee. The pointer is
// re-read on every access through the returned value.
func (p Pointer[T]) At(i int64) Value[T] {
	return Value[T]{field: field{parent: p.parent, res: p.through(i)}, codec: p.elem}
}

// Deref is At(0).
func (p Pointer[T]) Deref() Value[T] {
	return p.At(0)
}

func (p Pointer[T]) through(i int64) resolve.Resolver {
	slot, scale := p.res, int64(p.elem.size)
	return resolve.Func(func(mem memview.Memory, base memview.Address) (memview.Address, error) {
		at, err := slot.Resolve(mem, base)
		if err != nil {
			return 0, err
		}
		target, err := memview.ReadPointer(mem, at)
		if err != nil {
			return 0, err
		}
		if target == 0 {
			return 0, errors.NilPointer(errors.PhaseResolve, nil, "pointer target")
		}
		return target.Add(i * scale), nil
	})
}

func readPointerField(f field) (memview.Address, error) {
	addr, err := f.Address()
	if err != nil {
		return 0, err
	}
	return memview.ReadPointer(f.parent.mem, addr)
}

// ViewPtr is a pointer to a wrapped layout. Following it yields the weak
// form of the pointee.
type ViewPtr[W any] struct {
	field
	class *Class[W]
}

// NewViewPtr declares a pointer to views of class.
func NewViewPtr[W any](parent View, res resolve.Resolver, class *Class[W]) ViewPtr[W] {
	return ViewPtr[W]{field: newField(parent, res), class: class}
}

// Get follows the pointer. A null pointer yields a null weak view.
func (p ViewPtr[W]) Get() (Weak[W], error) {
	target, err := readPointerField(p.field)
	if err != nil {
		return Weak[W]{}, err
	}
	return p.class.Weak(p.parent.mem, target), nil
}

// Set stores the address of w.
func (p ViewPtr[W]) Set(w Weak[W]) error {
	return p.SetAddress(w.AddressOfObject())
}

// SetAddress stores a raw target address.
func (p ViewPtr[W]) SetAddress(target memview.Address) error {
	addr, err := p.Address()
	if err != nil {
		return err
	}
	return memview.WritePointer(p.parent.mem, addr, target)
}

// IsNull reports whether the stored address is 0.
func (p ViewPtr[W]) IsNull() (bool, error) {
	v, err := readPointerField(p.field)
	return v == 0, err
}
