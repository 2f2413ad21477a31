package layout

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/wippyai/memview/errors"
)

// Names resolves layout names used in type expressions.
type Names interface {
	Lookup(name string) (*Type, bool)
}

// NameMap is a Names backed by a map.
type NameMap map[string]*Type

func (m NameMap) Lookup(name string) (*Type, bool) {
	t, ok := m[name]
	return t, ok
}

// ParseType parses a field type expression.
//
//	type    := '*' type | postfix
//	postfix := primary ( '[' N ']' | '[]' | '&&' )*
//	primary := scalar | 'void' | '@' name | name | '(' type ')'
//
// Each suffix wraps the type to its left, so "*u8[4]" is a pointer to a
// four byte array and "(*u8)[4]" is an array of four pointers. '@' forces
// the named layout to be read as an embedded view.
func ParseType(expr string, names Names) (*Type, error) {
	p := &typeParser{src: expr, names: names}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	if t == nil {
		return nil, p.errorf("void is only valid behind a pointer")
	}
	return t, nil
}

type typeParser struct {
	names Names
	src   string
	pos   int
}

func (p *typeParser) errorf(format string, args ...any) error {
	return errors.ParseFailed("type "+strconv.Quote(p.src), fmt.Errorf(format, args...))
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) peek(s string) bool {
	p.skipSpace()
	return strings.HasPrefix(p.src[p.pos:], s)
}

func (p *typeParser) parseType() (*Type, error) {
	if p.peek("*") {
		p.pos++
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return PointerTo(elem), nil
	}
	return p.parsePostfix()
}

func (p *typeParser) parsePostfix() (*Type, error) {
	t, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.peek("[]"):
			p.pos += 2
			t = UnsizedArrayOf(t)
		case p.peek("["):
			p.pos++
			end := strings.IndexByte(p.src[p.pos:], ']')
			if end < 0 {
				return nil, p.errorf("unterminated array length")
			}
			n, err := strconv.ParseUint(strings.TrimSpace(p.src[p.pos:p.pos+end]), 0, 64)
			if err != nil {
				return nil, p.errorf("bad array length: %v", err)
			}
			p.pos += end + 1
			t = ArrayOf(t, n)
		case p.peek("&&"):
			p.pos += 2
			t = RValueRefOf(t)
		default:
			return t, nil
		}
		if t.Elem == nil {
			return nil, p.errorf("void cannot take a suffix")
		}
	}
}

func (p *typeParser) parsePrimary() (*Type, error) {
	if p.peek("(") {
		p.pos++
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if !p.peek(")") {
			return nil, p.errorf("missing ')'")
		}
		p.pos++
		return t, nil
	}
	embedded := false
	if p.peek("@") {
		p.pos++
		embedded = true
	}
	name := p.ident()
	if name == "" {
		return nil, p.errorf("expected a type name at offset %d", p.pos)
	}
	if !embedded {
		if name == "void" {
			return nil, nil
		}
		for s, sn := range scalarNames {
			if sn == name {
				return ScalarOf(Scalar(s)), nil
			}
		}
		if alias, ok := scalarAliases[name]; ok {
			return ScalarOf(alias), nil
		}
	}
	if p.names == nil {
		return nil, p.errorf("unknown type %s", name)
	}
	t, ok := p.names.Lookup(name)
	if !ok {
		return nil, p.errorf("unknown type %s", name)
	}
	if embedded {
		if t.Layout == nil {
			return nil, p.errorf("%s is not a layout", name)
		}
		return &Type{Kind: KindView, Layout: t.Layout, Embed: EmbedWeak}, nil
	}
	return t, nil
}

var scalarAliases = map[string]Scalar{
	"s8":     I8,
	"s16":    I16,
	"s32":    I32,
	"s64":    I64,
	"char":   I8,
	"int8":   I8,
	"uint8":  U8,
	"int16":  I16,
	"uint16": U16,
	"int32":  I32,
	"uint32": U32,
	"int64":  I64,
	"uint64": U64,
	"float":  F32,
	"double": F64,
	"ptr":    USize,
	"size_t": USize,
}

func (p *typeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if r != '_' && r != '.' && r != ':' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}
