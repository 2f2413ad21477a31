package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDeclare Phase = "declare" // field, view and function declaration
	PhaseResolve Phase = "resolve" // address resolution
	PhaseAccess  Phase = "access"  // memory read/write through a field
	PhaseInvoke  Phase = "invoke"  // function view dispatch
	PhaseLookup  Phase = "lookup"  // module lookup
	PhaseLoad    Phase = "load"    // backend and descriptor loading
	PhaseParse   Phase = "parse"   // descriptor parsing
)

// Kind categorizes the error
type Kind string

const (
	KindUnsupportedKind       Kind = "unsupported_kind"
	KindNonTrivial            Kind = "non_trivial"
	KindUnsizedLayout         Kind = "unsized_layout"
	KindTypeMismatch          Kind = "type_mismatch"
	KindOutOfBounds           Kind = "out_of_bounds"
	KindNotFound              Kind = "not_found"
	KindUnsupportedConvention Kind = "unsupported_convention"
	KindArity                 Kind = "arity"
	KindAllocation            Kind = "allocation"
	KindInvalidInput          Kind = "invalid_input"
	KindFieldUnknown          Kind = "field_unknown"
	KindNilPointer            Kind = "nil_pointer"
	KindClosed                Kind = "closed"
)

// Error is the structured error type used throughout memview
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	Layout string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.Layout != "" {
		b.WriteString(": ")
		switch {
		case e.GoType != "" && e.Layout != "":
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", layout ")
			b.WriteString(e.Layout)
		case e.GoType != "":
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		default:
			b.WriteString("layout ")
			b.WriteString(e.Layout)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.Layout != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Layout sets the layout name
func (b *Builder) Layout(name string) *Builder {
	b.err.Layout = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// UnsupportedKind rejects a field type that has no fixed, copyable-by-address representation.
func UnsupportedKind(path []string, goType, detail string) *Error {
	return &Error{
		Phase:  PhaseDeclare,
		Kind:   KindUnsupportedKind,
		Path:   path,
		GoType: goType,
		Detail: detail,
	}
}

// NonTrivial rejects an aggregate whose Go type is not trivially copyable.
func NonTrivial(path []string, goType, member string) *Error {
	return &Error{
		Phase:  PhaseDeclare,
		Kind:   KindNonTrivial,
		Path:   path,
		GoType: goType,
		Detail: fmt.Sprintf("member %s is not trivially copyable", member),
	}
}

// UnsizedLayout rejects a layout without a byte size where one is required.
func UnsizedLayout(layout, what string) *Error {
	return &Error{
		Phase:  PhaseDeclare,
		Kind:   KindUnsizedLayout,
		Layout: layout,
		Detail: fmt.Sprintf("%s requires a sized layout", what),
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, layout string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		GoType: goType,
		Layout: layout,
	}
}

// UnsupportedConvention rejects a calling convention the invoker cannot dispatch.
func UnsupportedConvention(convention, invoker string) *Error {
	return &Error{
		Phase:  PhaseDeclare,
		Kind:   KindUnsupportedConvention,
		Value:  convention,
		Detail: fmt.Sprintf("calling convention %s not supported by %s", convention, invoker),
	}
}

// Arity creates an argument count mismatch error
func Arity(phase Phase, want, got int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindArity,
		Detail: fmt.Sprintf("expected %d arguments, got %d", want, got),
		Value:  got,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size, align uint64, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
		Cause:  cause,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// AddressOutOfBounds reports a backend access outside its mapped range.
func AddressOutOfBounds(phase Phase, addr uint64, length uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("address 0x%x (length %d) not mapped", addr, length),
		Value:  addr,
	}
}

// FieldUnknown creates an unknown field error
func FieldUnknown(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldUnknown,
		Path:   path,
		Detail: fmt.Sprintf("unknown field %q", fieldName),
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, path []string, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Path:   path,
		Detail: fmt.Sprintf("%s is nil", what),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Closed reports use of a released resource.
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s already closed", what),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidInput,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}
