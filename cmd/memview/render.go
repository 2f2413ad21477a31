package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wippyai/memview"
	"github.com/wippyai/memview/layout"
	"github.com/wippyai/memview/view"
)

// row is one printed line: a member, its nesting depth and its decoded value.
type row struct {
	err    error
	value  string
	member view.Member
	depth  int
}

// collect flattens m depth first. Views and aggregates expand into their
// fields; arrays of compound elements expand into elements. Read errors
// are kept on the row so one unreadable field does not hide the rest.
func collect(m view.Member) []row {
	var rows []row
	var walk func(m view.Member, depth int)
	walk = func(m view.Member, depth int) {
		t := m.Type()
		switch {
		case t.Kind == layout.KindView || t.Kind == layout.KindAggregate:
			rows = append(rows, row{member: m, depth: depth})
			_ = m.Walk(func(c view.Member) error {
				walk(c, depth+1)
				return nil
			})
		case t.Kind == layout.KindArray && t.Elem.Kind != layout.KindScalar && t.Elem.Kind != layout.KindPointer:
			rows = append(rows, row{member: m, depth: depth})
			for i := 0; uint64(i) < t.Len; i++ {
				el, err := m.At(i)
				if err != nil {
					rows = append(rows, row{member: m, depth: depth + 1, err: err})
					continue
				}
				walk(el, depth+1)
			}
		default:
			v, err := m.Get()
			rows = append(rows, row{member: m, depth: depth, value: formatValue(v), err: err})
		}
	}
	walk(m, 0)
	return rows
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case memview.Address:
		return x.String()
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = formatValue(e)
		}
		return "[" + strings.Join(parts, " ") + "]"
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}

func (r row) text() string {
	if r.err != nil {
		return "error: " + r.err.Error()
	}
	return r.value
}

func printRows(w io.Writer, rows []row) {
	for _, r := range rows {
		name := strings.Repeat("  ", r.depth) + r.member.Name()
		fmt.Fprintf(w, "%-28s %-14s %-18s %s\n", name, r.member.Type().String(), r.member.Address().String(), r.text())
	}
}

// resolvePath finds a member below root. Elements are separated by dots;
// a number indexes an array or pointer and "*" follows a pointer.
func resolvePath(root view.Member, path string) (view.Member, error) {
	m := root
	for _, part := range strings.Split(path, ".") {
		var err error
		switch i, convErr := strconv.Atoi(part); {
		case part == "*":
			m, err = m.Deref()
		case convErr == nil:
			m, err = m.At(i)
		case m.Type().Kind == layout.KindPointer:
			m, err = m.DerefMember(part)
		default:
			m, err = m.Member(part)
		}
		if err != nil {
			return view.Member{}, err
		}
	}
	return m, nil
}

// parseValue converts s to a value Member.Set accepts for t.
func parseValue(t *layout.Type, s string) (any, error) {
	switch t.Kind {
	case layout.KindPointer:
		v, err := strconv.ParseUint(s, 0, 64)
		return memview.Address(v), err
	case layout.KindScalar:
	default:
		return nil, fmt.Errorf("cannot assign text to %s", t)
	}
	switch {
	case t.Scalar == layout.Bool:
		return strconv.ParseBool(s)
	case t.Scalar.IsFloat():
		return strconv.ParseFloat(s, 64)
	case t.Scalar.IsSigned():
		return strconv.ParseInt(s, 0, 64)
	}
	return strconv.ParseUint(s, 0, 64)
}

// assign parses "path=value" and writes it below root.
func assign(root view.Member, expr string) error {
	path, text, ok := strings.Cut(expr, "=")
	if !ok {
		return fmt.Errorf("assignment %q must be path=value", expr)
	}
	m, err := resolvePath(root, strings.TrimSpace(path))
	if err != nil {
		return err
	}
	v, err := parseValue(m.Type(), strings.TrimSpace(text))
	if err != nil {
		return fmt.Errorf("%s: %w", m.Path(), err)
	}
	return m.Set(v)
}
