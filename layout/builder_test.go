package layout

import "testing"

func TestBuilder_SequentialOffsets(t *testing.T) {
	l, err := NewBuilder("Mixed", 8).
		Add("a", ScalarOf(U8)).
		Add("b", ScalarOf(U32)).
		Add("c", ScalarOf(U8)).
		Add("p", PointerTo(nil)).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := map[string]int64{"a": 0, "b": 4, "c": 8, "p": 16}
	for name, off := range want {
		f, ok := l.Field(name)
		if !ok {
			t.Fatalf("missing field %s", name)
		}
		if f.Offset != off {
			t.Errorf("%s: got offset %d, want %d", name, f.Offset, off)
		}
	}
	if l.Size != 24 || l.Align != 8 {
		t.Fatalf("got size %d align %d, want 24/8", l.Size, l.Align)
	}
}

func TestBuilder_PointerSize32(t *testing.T) {
	l := NewBuilder("Node", 4).
		Add("value", ScalarOf(I32)).
		Add("next", PointerTo(nil)).
		MustBuild()
	if l.Size != 8 || l.Align != 4 {
		t.Fatalf("got size %d align %d, want 8/4", l.Size, l.Align)
	}
}

func TestBuilder_ExplicitOffsetMovesCursor(t *testing.T) {
	l := NewBuilder("Player", 8).
		At("health", 0x20, ScalarOf(I32)).
		Add("armor", ScalarOf(I32)).
		Size(0x40).
		Capabilities(Capabilities{Construct: true}).
		MustBuild()
	f, _ := l.Field("armor")
	if f.Offset != 0x24 {
		t.Fatalf("armor: got %#x, want 0x24", f.Offset)
	}
	if l.Size != 0x40 {
		t.Fatalf("size: got %#x", l.Size)
	}
	if !l.Capabilities.Construct || l.Capabilities.Destruct {
		t.Fatalf("capabilities: %+v", l.Capabilities)
	}
}

func TestBuilder_Errors(t *testing.T) {
	if _, err := NewBuilder("Small", 8).Add("x", ScalarOf(I64)).Size(4).Build(); err == nil {
		t.Fatal("expected error for size smaller than fields")
	}
	if _, err := NewBuilder("Bad", 8).Add("x", UnsizedArrayOf(ScalarOf(U8))).Add("y", ScalarOf(U8)).Build(); err == nil {
		t.Fatal("expected error for unsized array")
	}
	if _, err := NewBuilder("Align", 8).Align(3).Build(); err == nil {
		t.Fatal("expected error for bad alignment")
	}
}

func TestBuilder_Empty(t *testing.T) {
	l := NewBuilder("Empty", 8).MustBuild()
	if l.Sized() {
		t.Fatalf("empty layout should be unsized, got %d", l.Size)
	}
}
