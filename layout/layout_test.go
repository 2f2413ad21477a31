package layout

import (
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/wippyai/memview/errors"
)

func TestNew_Alignment(t *testing.T) {
	tests := []struct {
		name    string
		align   uint64
		want    uint64
		wantErr bool
	}{
		{"zero defaults to one", 0, 1, false},
		{"one", 1, 1, false},
		{"eight", 8, 8, false},
		{"not power of two", 6, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l, err := New("T", 16, tc.align)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if l.Align != tc.want {
				t.Fatalf("align: got %d, want %d", l.Align, tc.want)
			}
		})
	}
}

func TestAddField_RejectsUnsupportedKinds(t *testing.T) {
	inner := MustNew("Inner", 8, 4)
	empty := MustNew("Opaque", 0, 1)
	withView := MustNew("Holder", 8, 4).MustAddField("inner", 0, ViewOf(inner))

	tests := []struct {
		name string
		typ  *Type
		kind errors.Kind
	}{
		{"unsized array", UnsizedArrayOf(ScalarOf(U8)), errors.KindUnsupportedKind},
		{"rvalue reference", RValueRefOf(ScalarOf(I32)), errors.KindUnsupportedKind},
		{"array of views", ArrayOf(ViewOf(inner), 2), errors.KindUnsupportedKind},
		{"unsized view by value", ViewOf(empty), errors.KindUnsizedLayout},
		{"aggregate with view member", AggregateOf(withView), errors.KindNonTrivial},
		{"unsized array behind pointer", PointerTo(UnsizedArrayOf(ScalarOf(U8))), errors.KindUnsupportedKind},
		{"nil type", nil, errors.KindUnsupportedKind},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := MustNew("T", 32, 8)
			err := l.AddField("f", 0, tc.typ)
			if err == nil {
				t.Fatal("expected error")
			}
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("expected *errors.Error, got %T", err)
			}
			if e.Phase != errors.PhaseDeclare || e.Kind != tc.kind {
				t.Fatalf("got %s/%s, want declare/%s", e.Phase, e.Kind, tc.kind)
			}
			if len(l.Fields) != 0 {
				t.Fatal("rejected field must not be added")
			}
		})
	}
}

func TestAddField_AcceptsPointerToUnsized(t *testing.T) {
	opaque := MustNew("Opaque", 0, 1)
	l := MustNew("T", 16, 8)
	if err := l.AddField("p", 0, PointerTo(ViewOf(opaque))); err != nil {
		t.Fatalf("AddField: %v", err)
	}
	if err := l.AddField("raw", 8, PointerTo(nil)); err != nil {
		t.Fatalf("AddField void pointer: %v", err)
	}
}

func TestAddField_PointeeChecks(t *testing.T) {
	inner := MustNew("Inner", 8, 4)
	tests := []struct {
		name string
		typ  *Type
		kind errors.Kind
	}{
		{"aggregate holding a view", PointerTo(AggregateOf(MustNew("Bad", 8, 4).MustAddField("v", 0, ViewOf(inner)))), errors.KindNonTrivial},
		{"array of views", PointerTo(ArrayOf(ViewOf(inner), 2)), errors.KindUnsupportedKind},
		{"rvalue reference", PointerTo(RValueRefOf(ScalarOf(I32))), errors.KindUnsupportedKind},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := MustNew("T", 8, 8).AddField("p", 0, tc.typ)
			if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDeclare, Kind: tc.kind}) {
				t.Fatalf("got %v, want %s", err, tc.kind)
			}
		})
	}
	if err := MustNew("T", 8, 8).AddField("p", 0, PointerTo(AggregateOf(MustNew("Later", 0, 4)))); err != nil {
		t.Fatalf("pointer to unsized aggregate: %v", err)
	}
}

func TestAddField_RewritesViewsToWeak(t *testing.T) {
	inner := MustNew("Inner", 8, 4)
	l := MustNew("Outer", 32, 8).
		MustAddField("in", 0, ViewOf(inner)).
		MustAddField("next", 8, PointerTo(ViewOf(inner)))

	in, _ := l.Field("in")
	if in.Type.Embed != EmbedWeak {
		t.Fatalf("embedded view: got %s, want weak", in.Type.Embed)
	}
	next, _ := l.Field("next")
	if next.Type.Elem.Embed != EmbedWeak {
		t.Fatalf("pointee: got %s, want weak", next.Type.Elem.Embed)
	}
}

func TestAddField_Duplicate(t *testing.T) {
	l := MustNew("T", 8, 4).MustAddField("a", 0, ScalarOf(I32))
	if err := l.AddField("a", 4, ScalarOf(I32)); err == nil {
		t.Fatal("expected duplicate error")
	}
}

func TestField_Lookup(t *testing.T) {
	l := MustNew("T", 16, 8).MustAddField("a", 4, ScalarOf(U16))
	f, ok := l.Field("a")
	if !ok || f.Offset != 4 || f.Type.Scalar != U16 {
		t.Fatalf("unexpected field %+v, ok=%v", f, ok)
	}
	if _, ok := l.Field("b"); ok {
		t.Fatal("unknown field found")
	}
}

func TestValidate_LiteralLayout(t *testing.T) {
	l := &Layout{
		Name: "Lit",
		Size: 8,
		Fields: []Field{
			{Name: "a", Offset: 0, Type: ScalarOf(I32)},
			{Name: "b", Offset: 4, Type: UnsizedArrayOf(ScalarOf(U8))},
		},
	}
	if err := l.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
	l.Fields[1].Type = ScalarOf(F32)
	if err := l.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if f, ok := l.Field("b"); !ok || f.Offset != 4 {
		t.Fatalf("field b not indexed: %+v", f)
	}
}

func TestTypeSizeAlign(t *testing.T) {
	vec := MustNew("Vec3", 12, 4)
	tests := []struct {
		typ     *Type
		name    string
		ptrSize uint64
		size    uint64
		align   uint64
	}{
		{ScalarOf(Bool), "bool", 8, 1, 1},
		{ScalarOf(I16), "i16", 8, 2, 2},
		{ScalarOf(F64), "f64", 8, 8, 8},
		{ScalarOf(USize), "usize32", 4, 4, 4},
		{ScalarOf(USize), "usize64", 8, 8, 8},
		{PointerTo(nil), "ptr32", 4, 4, 4},
		{PointerTo(ScalarOf(U8)), "ptr64", 8, 8, 8},
		{ArrayOf(ScalarOf(U16), 5), "u16[5]", 8, 10, 2},
		{AggregateOf(vec), "Vec3", 8, 12, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.typ.Size(tc.ptrSize); got != tc.size {
				t.Errorf("size: got %d, want %d", got, tc.size)
			}
			if got := tc.typ.Align(tc.ptrSize); got != tc.align {
				t.Errorf("align: got %d, want %d", got, tc.align)
			}
		})
	}
}

func TestKind_Supported(t *testing.T) {
	for k := KindScalar; k <= KindView; k++ {
		if !k.Supported() {
			t.Errorf("%s should be supported", k)
		}
	}
	if KindUnsizedArray.Supported() || KindRValueRef.Supported() {
		t.Error("unsized arrays and rvalue references must be unsupported")
	}
}

func TestCheckTrivial(t *testing.T) {
	type vec3 struct{ X, Y, Z float32 }
	type withArray struct {
		Tag  [4]byte
		Pos  vec3
		Addr uintptr
	}
	type withPointer struct {
		N int32
		P *int32
	}
	type withString struct{ S string }
	type nested struct{ In withString }

	tests := []struct {
		typ  reflect.Type
		name string
		ok   bool
	}{
		{reflect.TypeOf(int32(0)), "scalar", true},
		{reflect.TypeOf(vec3{}), "plain struct", true},
		{reflect.TypeOf(withArray{}), "arrays and uintptr", true},
		{reflect.TypeOf(withPointer{}), "go pointer", false},
		{reflect.TypeOf(withString{}), "string", false},
		{reflect.TypeOf(nested{}), "nested string", false},
		{reflect.TypeOf([]int32{}), "slice", false},
		{reflect.TypeOf(map[int]int{}), "map", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckTrivial(tc.typ)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok {
				if err == nil {
					t.Fatal("expected rejection")
				}
				if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDeclare, Kind: errors.KindNonTrivial}) {
					t.Fatalf("wrong error: %v", err)
				}
			}
		})
	}
}

func TestScalarFor(t *testing.T) {
	if s, ok := ScalarFor(reflect.Int, 4); !ok || s != I32 {
		t.Fatalf("int on 32-bit: got %s", s)
	}
	if s, ok := ScalarFor(reflect.Uintptr, 8); !ok || s != USize {
		t.Fatalf("uintptr: got %s", s)
	}
	if _, ok := ScalarFor(reflect.String, 8); ok {
		t.Fatal("string has no scalar")
	}
}
