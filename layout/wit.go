package layout

import (
	"strconv"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/memview"
	"github.com/wippyai/memview/errors"
)

// witPointerSize is the canonical ABI pointer width (wasm32).
const witPointerSize = 4

// FromWIT lays out a WIT type definition the way the component model
// canonical ABI stores it in linear memory. Records, tuples, variants,
// options and results become views whose nested members can be followed;
// strings and lists become {ptr, len} aggregates.
func FromWIT(name string, def *wit.TypeDef) (*Layout, error) {
	c := &witConverter{cache: make(map[*wit.TypeDef]*Type)}
	t, err := c.typeDef(name, def)
	if err != nil {
		return nil, err
	}
	if t.Layout == nil {
		return nil, errors.New(errors.PhaseLoad, errors.KindUnsupportedKind).
			Layout(name).
			Detail("WIT type %s is not a compound type", t).
			Build()
	}
	return t.Layout, nil
}

type witConverter struct {
	cache map[*wit.TypeDef]*Type
	str   *Type
}

func (c *witConverter) typeOf(name string, t wit.Type) (*Type, error) {
	switch typ := t.(type) {
	case wit.Bool:
		return ScalarOf(Bool), nil
	case wit.S8:
		return ScalarOf(I8), nil
	case wit.U8:
		return ScalarOf(U8), nil
	case wit.S16:
		return ScalarOf(I16), nil
	case wit.U16:
		return ScalarOf(U16), nil
	case wit.S32:
		return ScalarOf(I32), nil
	case wit.U32, wit.Char:
		return ScalarOf(U32), nil
	case wit.S64:
		return ScalarOf(I64), nil
	case wit.U64:
		return ScalarOf(U64), nil
	case wit.F32:
		return ScalarOf(F32), nil
	case wit.F64:
		return ScalarOf(F64), nil
	case wit.String:
		if c.str == nil {
			c.str = AggregateOf(NewBuilder("string", witPointerSize).
				Add("ptr", PointerTo(ScalarOf(U8))).
				Add("len", ScalarOf(U32)).
				MustBuild())
		}
		return c.str, nil
	case *wit.TypeDef:
		return c.typeDef(name, typ)
	}
	return nil, errors.New(errors.PhaseLoad, errors.KindUnsupportedKind).
		Layout(name).
		Detail("unsupported WIT type %T", t).
		Build()
}

func (c *witConverter) typeDef(name string, def *wit.TypeDef) (*Type, error) {
	if def == nil {
		return nil, errors.InvalidInput(errors.PhaseLoad, "nil WIT type definition")
	}
	if t, ok := c.cache[def]; ok {
		return t, nil
	}
	var (
		t   *Type
		err error
	)
	switch kind := def.Kind.(type) {
	case *wit.Record:
		b := NewBuilder(name, witPointerSize)
		for _, f := range kind.Fields {
			ft, ferr := c.typeOf(name+"."+f.Name, f.Type)
			if ferr != nil {
				return nil, ferr
			}
			b.Add(f.Name, ft)
		}
		t, err = c.view(b)
	case *wit.Tuple:
		b := NewBuilder(name, witPointerSize)
		for i, typ := range kind.Types {
			field := strconv.Itoa(i)
			ft, ferr := c.typeOf(name+"."+field, typ)
			if ferr != nil {
				return nil, ferr
			}
			b.Add(field, ft)
		}
		t, err = c.view(b)
	case *wit.List:
		elem, eerr := c.typeOf(name+".elem", kind.Type)
		if eerr != nil {
			return nil, eerr
		}
		l, lerr := NewBuilder("list<"+elem.String()+">", witPointerSize).
			Add("ptr", PointerTo(elem)).
			Add("len", ScalarOf(U32)).
			Build()
		if lerr != nil {
			return nil, lerr
		}
		t = AggregateOf(l)
	case *wit.Enum:
		t = ScalarOf(discriminant(len(kind.Cases)))
	case *wit.Flags:
		t = flagsType(len(kind.Flags))
	case *wit.Own, *wit.Borrow:
		t = ScalarOf(U32)
	case *wit.Option:
		payload, perr := c.typeOf(name+".some", kind.Type)
		if perr != nil {
			return nil, perr
		}
		t, err = c.tagged(name, U8, []string{"some"}, []*Type{payload})
	case *wit.Result:
		var names []string
		var payloads []*Type
		if kind.OK != nil {
			p, perr := c.typeOf(name+".ok", kind.OK)
			if perr != nil {
				return nil, perr
			}
			names, payloads = append(names, "ok"), append(payloads, p)
		}
		if kind.Err != nil {
			p, perr := c.typeOf(name+".err", kind.Err)
			if perr != nil {
				return nil, perr
			}
			names, payloads = append(names, "err"), append(payloads, p)
		}
		t, err = c.tagged(name, U8, names, payloads)
	case *wit.Variant:
		var names []string
		var payloads []*Type
		for _, cs := range kind.Cases {
			if cs.Type == nil {
				continue
			}
			p, perr := c.typeOf(name+"."+cs.Name, cs.Type)
			if perr != nil {
				return nil, perr
			}
			names, payloads = append(names, cs.Name), append(payloads, p)
		}
		t, err = c.tagged(name, discriminant(len(kind.Cases)), names, payloads)
	case wit.Type:
		t, err = c.typeOf(name, kind)
	default:
		return nil, errors.New(errors.PhaseLoad, errors.KindUnsupportedKind).
			Layout(name).
			Detail("unsupported WIT definition %T", def.Kind).
			Build()
	}
	if err != nil {
		return nil, err
	}
	c.cache[def] = t
	return t, nil
}

func (c *witConverter) view(b *Builder) (*Type, error) {
	l, err := b.Build()
	if err != nil {
		return nil, err
	}
	return &Type{Kind: KindView, Layout: l, Embed: EmbedWeak}, nil
}

// tagged lays out a discriminant followed by overlapping payload cases.
func (c *witConverter) tagged(name string, tag Scalar, cases []string, payloads []*Type) (*Type, error) {
	align := tag.Size(witPointerSize)
	size := uint64(0)
	for _, p := range payloads {
		if a := p.Align(witPointerSize); a > align {
			align = a
		}
		if s := p.Size(witPointerSize); s > size {
			size = s
		}
	}
	payloadAt := memview.AlignTo(tag.Size(witPointerSize), align)
	b := NewBuilder(name, witPointerSize).
		At("tag", 0, ScalarOf(tag)).
		Align(align).
		Size(memview.AlignTo(payloadAt+size, align))
	for i, p := range payloads {
		b.At(cases[i], int64(payloadAt), p)
	}
	return c.view(b)
}

func discriminant(cases int) Scalar {
	switch {
	case cases <= 1<<8:
		return U8
	case cases <= 1<<16:
		return U16
	}
	return U32
}

func flagsType(n int) *Type {
	switch {
	case n == 0:
		return ArrayOf(ScalarOf(U8), 0)
	case n <= 8:
		return ScalarOf(U8)
	case n <= 16:
		return ScalarOf(U16)
	case n <= 32:
		return ScalarOf(U32)
	case n <= 64:
		return ScalarOf(U64)
	}
	return ArrayOf(ScalarOf(U32), uint64((n+31)/32))
}
