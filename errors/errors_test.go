package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseDeclare,
				Kind:   KindNonTrivial,
				Path:   []string{"Player", "inventory", "name"},
				GoType: "string",
				Layout: "Item",
				Detail: "cannot overlay",
			},
			contains: []string{"[declare]", "non_trivial", "Player.inventory.name", "string", "Item", "cannot overlay"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseAccess,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[access]", "out_of_bounds"},
		},
		{
			name:     "layout only",
			err:      UnsizedLayout("Module", "instance"),
			contains: []string{"[declare]", "unsized_layout", "layout Module", "instance requires a sized layout"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindAllocation,
				Detail: "memory full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[load]", "allocation", "memory full", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(PhaseInvoke, KindInvalidInput, cause, "call failed")

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not find cause through chain")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseDeclare,
		Kind:  KindUnsupportedKind,
		Path:  []string{"foo"},
	}

	if !errors.Is(err, &Error{Phase: PhaseDeclare, Kind: KindUnsupportedKind}) {
		t.Error("expected match on phase and kind")
	}
	if errors.Is(err, &Error{Phase: PhaseAccess, Kind: KindUnsupportedKind}) {
		t.Error("unexpected match on different phase")
	}
	if errors.Is(err, &Error{Phase: PhaseDeclare, Kind: KindNonTrivial}) {
		t.Error("unexpected match on different kind")
	}
}

func TestBuilder(t *testing.T) {
	err := New(PhaseDeclare, KindTypeMismatch).
		Path("a", "b").
		GoType("int32").
		Layout("Vec3").
		Value(7).
		Detail("want %d bytes", 12).
		Build()

	if err.Phase != PhaseDeclare || err.Kind != KindTypeMismatch {
		t.Errorf("unexpected phase/kind: %s/%s", err.Phase, err.Kind)
	}
	if strings.Join(err.Path, ".") != "a.b" {
		t.Errorf("path = %v", err.Path)
	}
	if err.Detail != "want 12 bytes" {
		t.Errorf("detail = %q", err.Detail)
	}
	if err.Value != 7 {
		t.Errorf("value = %v", err.Value)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		err   *Error
		phase Phase
		kind  Kind
	}{
		{UnsupportedKind(nil, "[]int", "unsized"), PhaseDeclare, KindUnsupportedKind},
		{NonTrivial(nil, "T", "p"), PhaseDeclare, KindNonTrivial},
		{UnsupportedConvention("thiscall", "native"), PhaseDeclare, KindUnsupportedConvention},
		{Arity(PhaseInvoke, 2, 1), PhaseInvoke, KindArity},
		{AllocationFailed(PhaseLoad, 8, 8, nil), PhaseLoad, KindAllocation},
		{AddressOutOfBounds(PhaseAccess, 0x10, 4), PhaseAccess, KindOutOfBounds},
		{FieldUnknown(PhaseAccess, nil, "x"), PhaseAccess, KindFieldUnknown},
		{NilPointer(PhaseAccess, nil, "pointer"), PhaseAccess, KindNilPointer},
		{NotFound(PhaseLookup, "module", "a.so"), PhaseLookup, KindNotFound},
		{Closed(PhaseAccess, "instance"), PhaseAccess, KindClosed},
		{ParseFailed("layout", nil), PhaseParse, KindInvalidInput},
	}
	for _, tt := range tests {
		if tt.err.Phase != tt.phase || tt.err.Kind != tt.kind {
			t.Errorf("%s: got %s/%s, want %s/%s", tt.err.Error(), tt.err.Phase, tt.err.Kind, tt.phase, tt.kind)
		}
	}
}
