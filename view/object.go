package view

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/wippyai/memview"
	"github.com/wippyai/memview/errors"
	"github.com/wippyai/memview/layout"
)

// Object is a view driven by a layout descriptor instead of Go types. It
// serves layouts loaded at runtime from YAML or WIT.
type Object struct {
	root Member
}

// NewObject overlays l on v.
func NewObject(v View, l *layout.Layout) Object {
	return Object{root: Member{
		mem:  v.mem,
		addr: v.addr,
		typ:  &layout.Type{Kind: layout.KindView, Layout: l, Embed: layout.EmbedWeak},
		path: []string{l.Name},
	}}
}

// Layout returns the descriptor.
func (o Object) Layout() *layout.Layout { return o.root.typ.Layout }

// View returns the handle on the object.
func (o Object) View() View { return Cast(o.root.mem, o.root.addr) }

// Root returns the object as a member.
func (o Object) Root() Member { return o.root }

// Field returns the named top-level field.
func (o Object) Field(name string) (Member, error) { return o.root.Member(name) }

// Walk calls fn for each top-level field in declaration order.
func (o Object) Walk(fn func(Member) error) error { return o.root.Walk(fn) }

// Member is one typed location inside an object. Its address is fixed at
// the time it was reached; re-fetch from the object to observe pointer
// updates.
type Member struct {
	mem  memview.Memory
	typ  *layout.Type
	path []string
	addr memview.Address
}

// Address returns the member's foreign address.
func (m Member) Address() memview.Address { return m.addr }

// Type returns the member's type descriptor.
func (m Member) Type() *layout.Type { return m.typ }

// Name returns the last path element.
func (m Member) Name() string { return m.path[len(m.path)-1] }

// Path returns the dotted path from the object root.
func (m Member) Path() string { return strings.Join(m.path, ".") }

// Size returns the byte size of the member.
func (m Member) Size() uint64 { return m.typ.Size(m.mem.PointerSize()) }

func (m Member) child(name string, addr memview.Address, t *layout.Type) Member {
	path := make([]string, len(m.path), len(m.path)+1)
	copy(path, m.path)
	return Member{mem: m.mem, typ: t, path: append(path, name), addr: addr}
}

// compound returns the layout whose fields m exposes.
func (m Member) compound() (*layout.Layout, bool) {
	switch m.typ.Kind {
	case layout.KindView, layout.KindAggregate:
		return m.typ.Layout, true
	}
	return nil, false
}

// Member returns the named field of a view or aggregate member.
func (m Member) Member(name string) (Member, error) {
	l, ok := m.compound()
	if !ok {
		return Member{}, errors.TypeMismatch(errors.PhaseAccess, m.path, m.typ.String(), "view or aggregate")
	}
	f, ok := l.Field(name)
	if !ok {
		return Member{}, errors.FieldUnknown(errors.PhaseAccess, m.path, name)
	}
	return m.child(name, m.addr.Add(f.Offset), f.Type), nil
}

// Walk calls fn for each field of a view or aggregate member.
func (m Member) Walk(fn func(Member) error) error {
	l, ok := m.compound()
	if !ok {
		return errors.TypeMismatch(errors.PhaseAccess, m.path, m.typ.String(), "view or aggregate")
	}
	for _, f := range l.Fields {
		if err := fn(m.child(f.Name, m.addr.Add(f.Offset), f.Type)); err != nil {
			return err
		}
	}
	return nil
}

// Deref follows a pointer member to its pointee.
func (m Member) Deref() (Member, error) {
	if m.typ.Kind != layout.KindPointer {
		return Member{}, errors.TypeMismatch(errors.PhaseAccess, m.path, m.typ.String(), "pointer")
	}
	if m.typ.Elem == nil {
		return Member{}, errors.NilPointer(errors.PhaseAccess, m.path, "untyped pointer target")
	}
	target, err := memview.ReadPointer(m.mem, m.addr)
	if err != nil {
		return Member{}, err
	}
	if target == 0 {
		return Member{}, errors.NilPointer(errors.PhaseAccess, m.path, "pointer target")
	}
	return m.child("*", target, m.typ.Elem), nil
}

// DerefMember follows a pointer and selects a field of the pointee.
func (m Member) DerefMember(name string) (Member, error) {
	target, err := m.Deref()
	if err != nil {
		return Member{}, err
	}
	return target.Member(name)
}

// At returns element i of an array member, or of a pointer member's
// pointee sequence. Only arrays are bounds checked.
func (m Member) At(i int) (Member, error) {
	switch m.typ.Kind {
	case layout.KindArray:
		if i < 0 || uint64(i) >= m.typ.Len {
			return Member{}, errors.OutOfBounds(errors.PhaseAccess, m.path, i, int(m.typ.Len))
		}
		stride := m.typ.Elem.Size(m.mem.PointerSize())
		return m.child(strconv.Itoa(i), m.addr.Add(int64(uint64(i)*stride)), m.typ.Elem), nil
	case layout.KindPointer:
		base, err := m.Deref()
		if err != nil {
			return Member{}, err
		}
		stride := m.typ.Elem.Size(m.mem.PointerSize())
		return m.child(strconv.Itoa(i), base.addr.Add(int64(i)*int64(stride)), m.typ.Elem), nil
	}
	return Member{}, errors.TypeMismatch(errors.PhaseAccess, m.path, m.typ.String(), "array or pointer")
}

// Bytes reads the member's raw bytes.
func (m Member) Bytes() ([]byte, error) {
	return m.mem.Read(m.addr, m.Size())
}

// Get decodes the member. Scalars become the matching Go type, pointers
// become memview.Address, arrays become []any and views and aggregates
// become map[string]any. Pointers are not followed.
func (m Member) Get() (any, error) {
	switch m.typ.Kind {
	case layout.KindScalar:
		b, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		return decodeScalar(m.typ.Scalar, b, m.mem), nil
	case layout.KindPointer:
		return memview.ReadPointer(m.mem, m.addr)
	case layout.KindArray:
		out := make([]any, m.typ.Len)
		for i := range out {
			el, err := m.At(i)
			if err != nil {
				return nil, err
			}
			if out[i], err = el.Get(); err != nil {
				return nil, err
			}
		}
		return out, nil
	case layout.KindView, layout.KindAggregate:
		out := make(map[string]any, len(m.typ.Layout.Fields))
		err := m.Walk(func(c Member) error {
			v, err := c.Get()
			if err != nil {
				return err
			}
			out[c.Name()] = v
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, errors.UnsupportedKind(m.path, m.typ.String(), "kind cannot be read")
}

// Set encodes v into the member. Scalars accept any Go bool, integer or
// float; pointers accept memview.Address and unsigned integers; other kinds
// accept a []byte of exactly their size.
func (m Member) Set(v any) error {
	switch m.typ.Kind {
	case layout.KindScalar:
		b := make([]byte, m.Size())
		if err := encodeScalar(m.typ.Scalar, b, m.mem, v); err != nil {
			return errors.New(errors.PhaseAccess, errors.KindTypeMismatch).
				Path(m.path...).
				GoType(fmt.Sprintf("%T", v)).
				Layout(m.typ.String()).
				Cause(err).
				Build()
		}
		return m.mem.Write(m.addr, b)
	case layout.KindPointer:
		var target memview.Address
		switch p := v.(type) {
		case memview.Address:
			target = p
		case uint64:
			target = memview.Address(p)
		case uintptr:
			target = memview.Address(p)
		case uint32:
			target = memview.Address(p)
		default:
			return errors.TypeMismatch(errors.PhaseAccess, m.path, fmt.Sprintf("%T", v), m.typ.String())
		}
		return memview.WritePointer(m.mem, m.addr, target)
	}
	b, ok := v.([]byte)
	if !ok || uint64(len(b)) != m.Size() {
		return errors.TypeMismatch(errors.PhaseAccess, m.path, fmt.Sprintf("%T", v), m.typ.String())
	}
	return m.mem.Write(m.addr, b)
}

func decodeScalar(s layout.Scalar, b []byte, mem memview.Memory) any {
	u := getUint(b, mem.ByteOrder())
	switch s {
	case layout.Bool:
		return u != 0
	case layout.I8:
		return int8(u)
	case layout.U8:
		return uint8(u)
	case layout.I16:
		return int16(u)
	case layout.U16:
		return uint16(u)
	case layout.I32:
		return int32(u)
	case layout.U32:
		return uint32(u)
	case layout.I64:
		return int64(u)
	case layout.U64:
		return u
	case layout.F32:
		return math.Float32frombits(uint32(u))
	case layout.F64:
		return math.Float64frombits(u)
	case layout.USize:
		return memview.Address(u)
	}
	return u
}

func encodeScalar(s layout.Scalar, b []byte, mem memview.Memory, v any) error {
	rv := reflect.ValueOf(v)
	var u uint64
	switch {
	case s == layout.Bool:
		if rv.Kind() != reflect.Bool {
			return fmt.Errorf("want bool, got %T", v)
		}
		if rv.Bool() {
			u = 1
		}
	case s == layout.F32 || s == layout.F64:
		var f float64
		switch {
		case rv.CanFloat():
			f = rv.Float()
		case rv.CanInt():
			f = float64(rv.Int())
		case rv.CanUint():
			f = float64(rv.Uint())
		default:
			return fmt.Errorf("want number, got %T", v)
		}
		if s == layout.F32 {
			u = uint64(math.Float32bits(float32(f)))
		} else {
			u = math.Float64bits(f)
		}
	default:
		switch {
		case rv.CanInt():
			u = uint64(rv.Int())
		case rv.CanUint():
			u = rv.Uint()
		case rv.CanFloat():
			u = uint64(int64(rv.Float()))
		default:
			return fmt.Errorf("want integer, got %T", v)
		}
	}
	putUint(b, mem.ByteOrder(), u)
	return nil
}
