package view

import (
	"cmp"

	"github.com/wippyai/memview/errors"
	"github.com/wippyai/memview/resolve"
)

// integer carries the operations shared by signed and unsigned fields.
// Each operation reads, computes, writes back and returns the new value.
type integer[T Integer] struct {
	Value[T]
}

func (n integer[T]) Add(d T) (T, error) { return n.update(func(c T) (T, error) { return c + d, nil }) }
func (n integer[T]) Sub(d T) (T, error) { return n.update(func(c T) (T, error) { return c - d, nil }) }
func (n integer[T]) Mul(d T) (T, error) { return n.update(func(c T) (T, error) { return c * d, nil }) }

func (n integer[T]) Div(d T) (T, error) {
	return n.update(func(c T) (T, error) {
		if d == 0 {
			return c, errors.InvalidInput(errors.PhaseAccess, "integer division by zero")
		}
		return c / d, nil
	})
}

func (n integer[T]) Rem(d T) (T, error) {
	return n.update(func(c T) (T, error) {
		if d == 0 {
			return c, errors.InvalidInput(errors.PhaseAccess, "integer division by zero")
		}
		return c % d, nil
	})
}

func (n integer[T]) Inc() (T, error) { return n.Add(1) }
func (n integer[T]) Dec() (T, error) { return n.Sub(1) }

func (n integer[T]) And(m T) (T, error) { return n.update(func(c T) (T, error) { return c & m, nil }) }
func (n integer[T]) Or(m T) (T, error) { return n.update(func(c T) (T, error) { return c | m, nil }) }
func (n integer[T]) Xor(m T) (T, error) { return n.update(func(c T) (T, error) { return c ^ m, nil }) }
func (n integer[T]) Not() (T, error) { return n.update(func(c T) (T, error) { return ^c, nil }) }

func (n integer[T]) Shl(s uint) (T, error) { return n.update(func(c T) (T, error) { return c << s, nil }) }
func (n integer[T]) Shr(s uint) (T, error) { return n.update(func(c T) (T, error) { return c >> s, nil }) }

// Compare returns -1, 0 or +1 comparing the stored value with x.
func (n integer[T]) Compare(x T) (int, error) {
	c, err := n.Get()
	if err != nil {
		return 0, err
	}
	return cmp.Compare(c, x), nil
}

// Signed is a signed integer field.
type Signed[T SignedInt] struct {
	integer[T]
}

// NewSigned declares a signed integer field.
func NewSigned[T SignedInt](parent View, res resolve.Resolver) Signed[T] {
	return Signed[T]{integer[T]{Value[T]{field: newField(parent, res), codec: intCodec[T]()}}}
}

// Neg negates the stored value.
func (s Signed[T]) Neg() (T, error) { return s.update(func(c T) (T, error) { return -c, nil }) }

// Unsigned is an unsigned integer field. It has no negation.
type Unsigned[T UnsignedInt] struct {
	integer[T]
}

// NewUnsigned declares an unsigned integer field.
func NewUnsigned[T UnsignedInt](parent View, res resolve.Resolver) Unsigned[T] {
	return Unsigned[T]{integer[T]{Value[T]{field: newField(parent, res), codec: intCodec[T]()}}}
}

// Float is a floating point field. Bitwise operations are not offered.
type Float[T FloatNum] struct {
	Value[T]
}

// NewFloat declares a floating point field.
func NewFloat[T FloatNum](parent View, res resolve.Resolver) Float[T] {
	return Float[T]{Value[T]{field: newField(parent, res), codec: floatCodec[T]()}}
}

func (f Float[T]) Add(d T) (T, error) { return f.update(func(c T) (T, error) { return c + d, nil }) }
func (f Float[T]) Sub(d T) (T, error) { return f.update(func(c T) (T, error) { return c - d, nil }) }
func (f Float[T]) Mul(d T) (T, error) { return f.update(func(c T) (T, error) { return c * d, nil }) }
func (f Float[T]) Div(d T) (T, error) { return f.update(func(c T) (T, error) { return c / d, nil }) }
func (f Float[T]) Inc() (T, error) { return f.Add(1) }
func (f Float[T]) Dec() (T, error) { return f.Sub(1) }
func (f Float[T]) Neg() (T, error) { return f.update(func(c T) (T, error) { return -c, nil }) }

// Compare orders the stored value against x; NaN sorts first.
func (f Float[T]) Compare(x T) (int, error) {
	c, err := f.Get()
	if err != nil {
		return 0, err
	}
	return cmp.Compare(c, x), nil
}

// Bool is a one byte boolean field. It supports Get, Set and Toggle only.
type Bool struct {
	Value[bool]
}

// NewBool declares a boolean field.
func NewBool(parent View, res resolve.Resolver) Bool {
	return Bool{Value[bool]{field: newField(parent, res), codec: boolCodec}}
}

// Toggle flips the stored value and returns the new one.
func (b Bool) Toggle() (bool, error) {
	return b.update(func(c bool) (bool, error) { return !c, nil })
}
