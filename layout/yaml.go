package layout

import (
	"bytes"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/memview/errors"
)

// DefaultPointerSize is used when neither the caller nor the document
// names one.
const DefaultPointerSize = 8

// Document is the YAML form of a set of layouts.
type Document struct {
	Layouts     []Spec `yaml:"layouts"`
	PointerSize uint64 `yaml:"pointer_size"`
}

// Spec describes one layout. Kind is "view" (default) or "aggregate".
// A zero Size or Align is computed from the fields.
type Spec struct {
	Name         string       `yaml:"name"`
	Kind         string       `yaml:"kind"`
	Fields       []FieldSpec  `yaml:"fields"`
	Size         uint64       `yaml:"size"`
	Align        uint64       `yaml:"align"`
	Capabilities Capabilities `yaml:"capabilities"`
}

// FieldSpec describes one field. A missing offset places the field after
// the previous one at its natural alignment.
type FieldSpec struct {
	Offset *int64 `yaml:"offset"`
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
}

// Set is a group of layouts that may refer to each other by name.
type Set struct {
	layouts     map[string]*Layout
	types       NameMap
	order       []string
	PointerSize uint64
}

// LoadFile reads a YAML document from path. A zero ptrSize defers to the
// document.
func LoadFile(path string, ptrSize uint64) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read layout file "+path, err)
	}
	return Parse(data, ptrSize)
}

// Load reads a YAML document from r.
func Load(r io.Reader, ptrSize uint64) (*Set, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Load("read layout document", err)
	}
	return Parse(data, ptrSize)
}

// Parse decodes and builds a YAML document.
func Parse(data []byte, ptrSize uint64) (*Set, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, errors.ParseFailed("layout document", err)
	}
	if ptrSize == 0 {
		ptrSize = doc.PointerSize
	}
	if ptrSize == 0 {
		ptrSize = DefaultPointerSize
	}
	return Build(doc.Layouts, ptrSize)
}

// Build turns specs into layouts. Layouts embedded by value are built
// before their users; cycles that do not pass through a pointer fail.
func Build(specs []Spec, ptrSize uint64) (*Set, error) {
	if ptrSize != 4 && ptrSize != 8 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "pointer size must be 4 or 8")
	}
	s := &Set{
		layouts:     make(map[string]*Layout, len(specs)),
		types:       make(NameMap, len(specs)),
		PointerSize: ptrSize,
	}
	byName := make(map[string]*Spec, len(specs))
	for i := range specs {
		sp := &specs[i]
		if sp.Name == "" {
			return nil, errors.InvalidInput(errors.PhaseLoad, "layout without a name")
		}
		if _, dup := byName[sp.Name]; dup {
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
				Layout(sp.Name).
				Detail("duplicate layout").
				Build()
		}
		byName[sp.Name] = sp
		l := &Layout{Name: sp.Name, index: make(map[string]int)}
		s.layouts[sp.Name] = l
		s.order = append(s.order, sp.Name)
		switch sp.Kind {
		case "", "view":
			s.types[sp.Name] = ViewOf(l)
		case "aggregate":
			s.types[sp.Name] = AggregateOf(l)
		default:
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
				Layout(sp.Name).
				Detail("unknown layout kind %q", sp.Kind).
				Build()
		}
	}

	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int, len(specs))
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return errors.New(errors.PhaseLoad, errors.KindInvalidInput).
				Layout(name).
				Detail("layout contains itself by value").
				Build()
		}
		state[name] = visiting
		sp := byName[name]
		types := make([]*Type, len(sp.Fields))
		for i, f := range sp.Fields {
			t, err := ParseType(f.Type, s.types)
			if err != nil {
				return errors.New(errors.PhaseParse, errors.KindInvalidInput).
					Layout(name).
					Path(f.Name).
					Cause(err).
					Detail("field type").
					Build()
			}
			for _, dep := range byValue(t, nil) {
				if err := visit(dep.Name); err != nil {
					return err
				}
			}
			types[i] = t
		}
		b := builderFor(s.layouts[name], ptrSize).
			Size(sp.Size).
			Align(sp.Align).
			Capabilities(sp.Capabilities)
		for i, f := range sp.Fields {
			if f.Offset != nil {
				b.At(f.Name, *f.Offset, types[i])
			} else {
				b.Add(f.Name, types[i])
			}
		}
		l, err := b.Build()
		if err != nil {
			return err
		}
		if sp.Kind == "aggregate" {
			for _, f := range l.Fields {
				if containsView(f.Type) {
					return errors.NonTrivial([]string{name}, name, f.Name)
				}
			}
		}
		state[name] = done
		return nil
	}
	for _, name := range s.order {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// byValue lists the layouts whose bytes t embeds in place.
func byValue(t *Type, acc []*Layout) []*Layout {
	if t == nil {
		return acc
	}
	switch t.Kind {
	case KindView, KindAggregate:
		return append(acc, t.Layout)
	case KindArray, KindUnsizedArray, KindRValueRef:
		return byValue(t.Elem, acc)
	}
	return acc
}

// Layout returns the named layout.
func (s *Set) Layout(name string) (*Layout, bool) {
	l, ok := s.layouts[name]
	return l, ok
}

// Lookup implements Names, so further expressions can refer to the set.
func (s *Set) Lookup(name string) (*Type, bool) {
	return s.types.Lookup(name)
}

// Names returns layout names in document order.
func (s *Set) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
