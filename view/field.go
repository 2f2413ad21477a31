package view

import (
	"github.com/wippyai/memview"
	"github.com/wippyai/memview/errors"
	"github.com/wippyai/memview/resolve"
)

// field binds a resolver to a parent view. The address is recomputed on
// every access, so moving the parent moves the field.
type field struct {
	parent View
	res    resolve.Resolver
}

func newField(parent View, res resolve.Resolver) field {
	if res == nil {
		res = resolve.Offset(0)
	}
	return field{parent: parent, res: res}
}

// Address resolves the field's current address.
func (f field) Address() (memview.Address, error) {
	if f.res == nil || f.parent.mem == nil {
		return 0, errors.NilPointer(errors.PhaseResolve, nil, "undeclared field")
	}
	return f.res.Resolve(f.parent.mem, f.parent.addr)
}

// Parent returns the view the field hangs off.
func (f field) Parent() View { return f.parent }

// Resolver returns the bound resolver.
func (f field) Resolver() resolve.Resolver { return f.res }

func (f field) read(n uint64) ([]byte, error) {
	addr, err := f.Address()
	if err != nil {
		return nil, err
	}
	return f.parent.mem.Read(addr, n)
}

func (f field) write(b []byte) error {
	addr, err := f.Address()
	if err != nil {
		return err
	}
	return f.parent.mem.Write(addr, b)
}

// Value is a raw accessor for a scalar or trivially copyable aggregate.
type Value[T any] struct {
	field
	codec codec[T]
}

// NewValue declares a value field. Non-trivial types and views are rejected.
func NewValue[T any](parent View, res resolve.Resolver) (Value[T], error) {
	c, err := codecFor[T](nil, pointerSize(parent))
	if err != nil {
		return Value[T]{}, err
	}
	return Value[T]{field: newField(parent, res), codec: c}, nil
}

// MustValue is NewValue that panics on error.
func MustValue[T any](parent View, res resolve.Resolver) Value[T] {
	v, err := NewValue[T](parent, res)
	if err != nil {
		panic(err)
	}
	return v
}

// Get reads the current value.
func (v Value[T]) Get() (T, error) {
	b, err := v.read(v.codec.size)
	if err != nil {
		var zero T
		return zero, err
	}
	return v.codec.decode(b, v.parent.mem.ByteOrder()), nil
}

// Set writes x.
func (v Value[T]) Set(x T) error {
	if v.parent.mem == nil {
		return errors.NilPointer(errors.PhaseAccess, nil, "undeclared field")
	}
	b := make([]byte, v.codec.size)
	v.codec.encode(x, b, v.parent.mem.ByteOrder())
	return v.write(b)
}

// CopyFrom copies the bytes src refers to into the bytes v refers to.
// Neither field's resolver or parent changes.
func (v Value[T]) CopyFrom(src Value[T]) error {
	b, err := src.read(v.codec.size)
	if err != nil {
		return err
	}
	return v.write(b)
}

// Size returns the byte size of T.
func (v Value[T]) Size() uint64 { return v.codec.size }

func (v Value[T]) update(op func(T) (T, error)) (T, error) {
	cur, err := v.Get()
	if err != nil {
		return cur, err
	}
	next, err := op(cur)
	if err != nil {
		return cur, err
	}
	return next, v.Set(next)
}
