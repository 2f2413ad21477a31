package view

import (
	"reflect"

	"github.com/wippyai/memview/errors"
	"github.com/wippyai/memview/layout"
	"github.com/wippyai/memview/memory"
	"github.com/wippyai/memview/resolve"
)

// Aggregate is a trivially copyable struct or array stored in place. Its
// bytes are copied as the Go compiler lays T out, so T must mirror the
// foreign layout exactly.
type Aggregate[T any] struct {
	Value[T]
}

// NewAggregate declares an aggregate field. T is rejected when it holds Go
// pointers, strings, slices, maps, channels, funcs or interfaces, or when
// it is a view type.
func NewAggregate[T any](parent View, res resolve.Resolver) (Aggregate[T], error) {
	rt := reflect.TypeFor[T]()
	if isViewType(rt) {
		return Aggregate[T]{}, errors.UnsupportedKind(nil, rt.String(), "views are accessed through Nested or ViewPtr fields")
	}
	if err := layout.CheckTrivial(rt); err != nil {
		return Aggregate[T]{}, err
	}
	return Aggregate[T]{Value[T]{field: newField(parent, res), codec: rawCodec[T]()}}, nil
}

// MustAggregate is NewAggregate that panics on error.
func MustAggregate[T any](parent View, res resolve.Resolver) Aggregate[T] {
	a, err := NewAggregate[T](parent, res)
	if err != nil {
		panic(err)
	}
	return a
}

// Update reads the aggregate, lets fn modify the copy and writes it back.
func (a Aggregate[T]) Update(fn func(*T)) error {
	v, err := a.Get()
	if err != nil {
		return err
	}
	fn(&v)
	return a.Set(v)
}

// Ref returns a Go pointer directly into the foreign bytes. It is only
// available on native memory.
func (a Aggregate[T]) Ref() (*T, error) {
	if !memory.IsNative(a.parent.mem) {
		return nil, errors.New(errors.PhaseAccess, errors.KindUnsupportedKind).
			Detail("references require native memory").
			Build()
	}
	addr, err := a.Address()
	if err != nil {
		return nil, err
	}
	if addr == 0 {
		return nil, errors.NilPointer(errors.PhaseAccess, nil, "aggregate")
	}
	return (*T)(memory.Pointer(addr)), nil
}
