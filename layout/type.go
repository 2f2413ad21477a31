package layout

import (
	"fmt"
)

// Type describes what a field holds.
type Type struct {
	Elem   *Type
	Layout *Layout
	Kind   Kind
	Scalar Scalar
	Embed  Embed
	Len    uint64
}

var scalarTypes = func() map[Scalar]*Type {
	m := make(map[Scalar]*Type, len(scalarNames))
	for s := range scalarNames {
		m[Scalar(s)] = &Type{Kind: KindScalar, Scalar: Scalar(s)}
	}
	return m
}()

// ScalarOf returns the shared type for a scalar.
func ScalarOf(s Scalar) *Type {
	return scalarTypes[s]
}

// AggregateOf describes a trivially copyable struct laid out by l.
func AggregateOf(l *Layout) *Type {
	return &Type{Kind: KindAggregate, Layout: l}
}

// PointerTo describes a pointer to elem. A nil elem is an untyped pointer.
func PointerTo(elem *Type) *Type {
	return &Type{Kind: KindPointer, Elem: elem}
}

// ArrayOf describes a fixed-size array.
func ArrayOf(elem *Type, n uint64) *Type {
	return &Type{Kind: KindArray, Elem: elem, Len: n}
}

// ViewOf describes a strong view of l. Fields and pointees referring to it
// are rewritten to the weak form when added to a layout.
func ViewOf(l *Layout) *Type {
	return &Type{Kind: KindView, Layout: l, Embed: EmbedStrong}
}

// UnsizedArrayOf names an array without a fixed length. It is always rejected.
func UnsizedArrayOf(elem *Type) *Type {
	return &Type{Kind: KindUnsizedArray, Elem: elem}
}

// RValueRefOf names a right-hand reference. It is always rejected.
func RValueRefOf(elem *Type) *Type {
	return &Type{Kind: KindRValueRef, Elem: elem}
}

// Weak returns t with every view type reachable through pointers rewritten
// to its in-place form.
func (t *Type) Weak() *Type {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case KindView:
		if t.Embed == EmbedWeak {
			return t
		}
		cp := *t
		cp.Embed = EmbedWeak
		return &cp
	case KindPointer, KindArray:
		elem := t.Elem.Weak()
		if elem == t.Elem {
			return t
		}
		cp := *t
		cp.Elem = elem
		return &cp
	}
	return t
}

// Size returns the byte size of t in a memory with the given pointer size.
func (t *Type) Size(ptrSize uint64) uint64 {
	switch t.Kind {
	case KindScalar:
		return t.Scalar.Size(ptrSize)
	case KindPointer:
		return ptrSize
	case KindArray:
		return t.Elem.Size(ptrSize) * t.Len
	case KindAggregate, KindView:
		return t.Layout.Size
	default:
		return 0
	}
}

// Align returns the natural alignment of t.
func (t *Type) Align(ptrSize uint64) uint64 {
	switch t.Kind {
	case KindScalar, KindPointer:
		return t.Size(ptrSize)
	case KindArray:
		return t.Elem.Align(ptrSize)
	case KindAggregate, KindView:
		if t.Layout.Align == 0 {
			return 1
		}
		return t.Layout.Align
	default:
		return 1
	}
}

func (t *Type) String() string {
	if t == nil {
		return "void"
	}
	switch t.Kind {
	case KindScalar:
		return t.Scalar.String()
	case KindPointer:
		return "*" + t.Elem.String()
	case KindArray:
		return fmt.Sprintf("%s[%d]", t.Elem, t.Len)
	case KindUnsizedArray:
		return t.Elem.String() + "[]"
	case KindRValueRef:
		return t.Elem.String() + "&&"
	case KindView:
		if t.Embed == EmbedWeak {
			return "@" + t.Layout.Name
		}
		return t.Layout.Name
	case KindAggregate:
		return t.Layout.Name
	}
	return "unknown"
}
