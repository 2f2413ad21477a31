package layout

import (
	"github.com/wippyai/memview"
	"github.com/wippyai/memview/errors"
)

// Builder assigns sequential, naturally aligned offsets to fields in the
// order they are added, like a C compiler without packing pragmas.
type Builder struct {
	l        *Layout
	err      error
	ptrSize  uint64
	cursor   uint64
	maxAlign uint64
	size     uint64
	align    uint64
}

// NewBuilder starts a layout for a memory with the given pointer size.
func NewBuilder(name string, ptrSize uint64) *Builder {
	return builderFor(&Layout{Name: name, index: make(map[string]int)}, ptrSize)
}

// builderFor fills an existing layout in place, so types already pointing
// at it see the final size.
func builderFor(l *Layout, ptrSize uint64) *Builder {
	return &Builder{l: l, ptrSize: ptrSize, maxAlign: 1}
}

// Add appends a field at the next offset aligned for t.
func (b *Builder) Add(name string, t *Type) *Builder {
	if b.err != nil {
		return b
	}
	if err := CheckType([]string{b.l.Name, name}, t); err != nil {
		b.err = err
		return b
	}
	align := t.Align(b.ptrSize)
	return b.At(name, int64(memview.AlignTo(b.cursor, align)), t)
}

// At places a field at an explicit offset. The cursor moves past it.
func (b *Builder) At(name string, offset int64, t *Type) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.l.AddField(name, offset, t); err != nil {
		b.err = err
		return b
	}
	if a := t.Align(b.ptrSize); a > b.maxAlign {
		b.maxAlign = a
	}
	if offset >= 0 {
		if end := uint64(offset) + t.Size(b.ptrSize); end > b.cursor {
			b.cursor = end
		}
	}
	return b
}

// Size overrides the computed size. It must not be smaller than the fields.
func (b *Builder) Size(size uint64) *Builder {
	b.size = size
	return b
}

// Align overrides the computed alignment.
func (b *Builder) Align(align uint64) *Builder {
	b.align = align
	return b
}

// Capabilities sets the lifecycle hook flags.
func (b *Builder) Capabilities(c Capabilities) *Builder {
	b.l.Capabilities = c
	return b
}

// Build finishes the layout. The size is the end of the last field rounded
// up to the largest field alignment unless overridden.
func (b *Builder) Build() (*Layout, error) {
	if b.err != nil {
		return nil, b.err
	}
	l := b.l
	l.Align = b.maxAlign
	if b.align != 0 {
		if err := checkAlign(l.Name, b.align); err != nil {
			return nil, err
		}
		l.Align = b.align
	}
	l.Size = memview.AlignTo(b.cursor, l.Align)
	if b.size != 0 {
		if b.size < b.cursor {
			return nil, errors.New(errors.PhaseDeclare, errors.KindInvalidInput).
				Layout(l.Name).
				Detail("size %#x is smaller than its fields (%#x)", b.size, b.cursor).
				Build()
		}
		l.Size = b.size
	}
	return l, nil
}

// MustBuild is Build that panics on error.
func (b *Builder) MustBuild() *Layout {
	l, err := b.Build()
	if err != nil {
		panic(err)
	}
	return l
}
