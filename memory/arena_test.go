package memory

import (
	"testing"

	"github.com/wippyai/memview"
)

func TestWithAllocator(t *testing.T) {
	space := NewSpace(SpaceConfig{PointerSize: 4})
	a := WithAllocator(space, space)

	addr, err := a.Alloc(8, 4)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if err := memview.WriteUint32(a, addr, 7); err != nil {
		t.Fatalf("write through arena: %v", err)
	}
	if v, _ := memview.ReadUint32(space, addr); v != 7 {
		t.Fatalf("read back = %d", v)
	}
	if a.PointerSize() != 4 {
		t.Fatalf("pointer size = %d", a.PointerSize())
	}
	if err := a.Free(addr, 8, 4); err != nil {
		t.Fatalf("Free: %v", err)
	}
}

func TestNativeArena(t *testing.T) {
	a := NativeArena()
	addr, err := a.Alloc(16, 8)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if err := memview.WriteUint64(a, addr, 99); err != nil {
		t.Fatal(err)
	}
	if v, _ := memview.ReadUint64(a, addr); v != 99 {
		t.Fatalf("read back = %d", v)
	}
	if err := a.Free(addr, 16, 8); err != nil {
		t.Fatalf("Free: %v", err)
	}
}
