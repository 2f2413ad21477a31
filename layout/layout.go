package layout

import (
	"fmt"
	"math/bits"

	"github.com/wippyai/memview/errors"
)

// Capabilities records which lifecycle hooks a layout declares. It is set
// explicitly; nothing checks for hook presence.
type Capabilities struct {
	Construct bool `yaml:"construct"`
	Destruct  bool `yaml:"destruct"`
}

// Field is a named member at a fixed offset from its layout's start.
type Field struct {
	Type   *Type
	Name   string
	Offset int64
}

// Layout describes the byte image of one foreign object. A Size of zero
// marks an unsized layout: it can be pointed to but not wrapped as a view.
type Layout struct {
	index        map[string]int
	Name         string
	Fields       []Field
	Size         uint64
	Align        uint64
	Capabilities Capabilities
}

// New creates an empty layout. A zero align means 1.
func New(name string, size, align uint64) (*Layout, error) {
	if align == 0 {
		align = 1
	}
	if err := checkAlign(name, align); err != nil {
		return nil, err
	}
	return &Layout{
		Name:  name,
		Size:  size,
		Align: align,
		index: make(map[string]int),
	}, nil
}

// MustNew is New that panics on error.
func MustNew(name string, size, align uint64) *Layout {
	l, err := New(name, size, align)
	if err != nil {
		panic(err)
	}
	return l
}

func checkAlign(name string, align uint64) error {
	if bits.OnesCount64(align) != 1 {
		return errors.New(errors.PhaseDeclare, errors.KindInvalidInput).
			Layout(name).
			Detail("alignment %d is not a power of two", align).
			Build()
	}
	return nil
}

// Sized reports whether the layout has a byte size.
func (l *Layout) Sized() bool { return l.Size > 0 }

// AddField declares a field. View types are stored in their weak form.
func (l *Layout) AddField(name string, offset int64, t *Type) error {
	if name == "" {
		return errors.InvalidInput(errors.PhaseDeclare, "field name is empty")
	}
	if l.index == nil {
		l.reindex()
	}
	if _, dup := l.index[name]; dup {
		return errors.New(errors.PhaseDeclare, errors.KindInvalidInput).
			Layout(l.Name).
			Path(name).
			Detail("duplicate field").
			Build()
	}
	if err := CheckType([]string{l.Name, name}, t); err != nil {
		return err
	}
	l.index[name] = len(l.Fields)
	l.Fields = append(l.Fields, Field{Name: name, Offset: offset, Type: t.Weak()})
	return nil
}

// MustAddField is AddField that panics on error and returns l for chaining.
func (l *Layout) MustAddField(name string, offset int64, t *Type) *Layout {
	if err := l.AddField(name, offset, t); err != nil {
		panic(err)
	}
	return l
}

// Field returns the named field.
func (l *Layout) Field(name string) (Field, bool) {
	if l.index == nil {
		l.reindex()
	}
	i, ok := l.index[name]
	if !ok {
		return Field{}, false
	}
	return l.Fields[i], true
}

// Validate re-checks every field, for layouts whose Fields were assigned
// directly.
func (l *Layout) Validate() error {
	l.reindex()
	if len(l.index) != len(l.Fields) {
		return errors.New(errors.PhaseDeclare, errors.KindInvalidInput).
			Layout(l.Name).
			Detail("duplicate field names").
			Build()
	}
	for i := range l.Fields {
		f := &l.Fields[i]
		if err := CheckType([]string{l.Name, f.Name}, f.Type); err != nil {
			return err
		}
		f.Type = f.Type.Weak()
	}
	return nil
}

func (l *Layout) reindex() {
	l.index = make(map[string]int, len(l.Fields))
	for i, f := range l.Fields {
		l.index[f.Name] = i
	}
}

func (l *Layout) String() string {
	return fmt.Sprintf("%s{size=%#x align=%d fields=%d}", l.Name, l.Size, l.Align, len(l.Fields))
}

// CheckType rejects types outside the supported taxonomy: unsized arrays,
// right-hand references, arrays of views, by-value use of unsized layouts
// and aggregates containing views.
func CheckType(path []string, t *Type) error {
	if t == nil {
		return errors.UnsupportedKind(path, "void", "field has no type")
	}
	switch t.Kind {
	case KindScalar:
		return nil
	case KindPointer:
		return checkPointee(append(path, "*"), t.Elem)
	case KindArray:
		if t.Elem == nil {
			return errors.UnsupportedKind(path, t.String(), "array has no element type")
		}
		if t.Elem.Kind == KindView {
			return errors.UnsupportedKind(path, t.String(), "arrays of views are not supported")
		}
		return CheckType(append(path, "[]"), t.Elem)
	case KindView:
		if t.Layout == nil {
			return errors.UnsupportedKind(path, "view", "view has no layout")
		}
		if !t.Layout.Sized() {
			return errors.UnsizedLayout(t.Layout.Name, "embedded view")
		}
		return nil
	case KindAggregate:
		if t.Layout == nil {
			return errors.UnsupportedKind(path, "aggregate", "aggregate has no layout")
		}
		if !t.Layout.Sized() {
			return errors.UnsizedLayout(t.Layout.Name, "aggregate")
		}
		for _, f := range t.Layout.Fields {
			if containsView(f.Type) {
				return errors.NonTrivial(path, t.Layout.Name, f.Name)
			}
		}
		return nil
	case KindUnsizedArray:
		return errors.UnsupportedKind(path, t.String(), "unsized arrays are not supported")
	case KindRValueRef:
		return errors.UnsupportedKind(path, t.String(), "rvalue references are not supported")
	}
	return errors.UnsupportedKind(path, t.String(), "unknown kind")
}

// checkPointee validates the target of a pointer. Views and aggregates are
// accepted whatever their size, so a layout may point at itself while it
// is still being built and opaque targets stay declarable.
func checkPointee(path []string, t *Type) error {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case KindView:
		if t.Layout == nil {
			return errors.UnsupportedKind(path, "view", "view has no layout")
		}
		return nil
	case KindAggregate:
		if t.Layout == nil {
			return errors.UnsupportedKind(path, "aggregate", "aggregate has no layout")
		}
		for _, f := range t.Layout.Fields {
			if containsView(f.Type) {
				return errors.NonTrivial(path, t.Layout.Name, f.Name)
			}
		}
		return nil
	}
	return CheckType(path, t)
}

// containsView reports whether t holds view bytes in place.
func containsView(t *Type) bool {
	switch t.Kind {
	case KindView:
		return true
	case KindArray:
		return containsView(t.Elem)
	case KindAggregate:
		if t.Layout == nil {
			return false
		}
		for _, f := range t.Layout.Fields {
			if containsView(f.Type) {
				return true
			}
		}
	}
	return false
}
