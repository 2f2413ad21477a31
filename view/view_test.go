package view

import (
	"encoding/binary"
	"runtime"
	"testing"
	"unsafe"

	"github.com/wippyai/memview"
	"github.com/wippyai/memview/memory"
	"github.com/wippyai/memview/resolve"
)

// newSpace maps size zeroed bytes at base and returns the space and the
// backing slice.
func newSpace(t *testing.T, base memview.Address, size uint64) (*memory.Space, []byte) {
	t.Helper()
	s := memory.NewSpace(memory.SpaceConfig{})
	return s, s.Map(base, size)
}

func TestCast(t *testing.T) {
	s, _ := newSpace(t, 0x1000, 0x100)
	v := Cast(s, 0x1040)
	if v.AddressOfObject() != 0x1040 {
		t.Fatalf("address: got %s", v.AddressOfObject())
	}
	if v.Memory() != s {
		t.Fatal("memory not preserved")
	}
	if v.IsNull() {
		t.Fatal("non-zero view reported null")
	}
	if !Cast(s, 0).IsNull() {
		t.Fatal("zero view not null")
	}
	if got := v.Offset(-0x40).AddressOfObject(); got != 0x1000 {
		t.Fatalf("offset: got %s", got)
	}
}

func TestAddressOfView_StrongIdentity(t *testing.T) {
	type wrapper struct {
		View
		Health Signed[int32]
	}
	s, _ := newSpace(t, 0x1000, 0x100)
	w := wrapper{View: Cast(s, 0x1000)}
	if w.AddressOfView() != uintptr(unsafe.Pointer(&w)) {
		t.Fatal("strong view identity should be the wrapper's own address")
	}
	if w.AddressOfView() == uintptr(w.AddressOfObject()) {
		t.Fatal("strong view identity must differ from the foreign address")
	}
	other := w
	if other.AddressOfView() == w.AddressOfView() {
		t.Fatal("copies are distinct handles")
	}
	if other.AddressOfObject() != w.AddressOfObject() {
		t.Fatal("copies refer to the same object")
	}
}

func TestGlobal(t *testing.T) {
	a, b := Global(), Global()
	if a != b {
		t.Fatal("global anchor should be stable")
	}
	if !memory.IsNative(a.Memory()) || a.AddressOfObject() != 0 {
		t.Fatalf("global anchor: %v at %s", a.Memory(), a.AddressOfObject())
	}
}

func TestGlobalField_NativeAbsolute(t *testing.T) {
	buf := make([]int32, 2)
	var pin runtime.Pinner
	pin.Pin(&buf[0])
	defer pin.Unpin()
	addr := memory.AddressOf(unsafe.Slice((*byte)(unsafe.Pointer(&buf[0])), 8))

	g := NewSigned[int32](Global(), resolve.Absolute(addr+4))
	if err := g.Set(-17); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if buf[1] != -17 {
		t.Fatalf("native global write: buf[1] = %d", buf[1])
	}
}

func TestField_OffsetResolution(t *testing.T) {
	// A module image at 0x1000 with a field at +0x20.
	s, raw := newSpace(t, 0x1000, 0x100)
	module := Cast(s, 0x1000)
	f := NewSigned[int32](module, resolve.Offset(0x20))

	addr, err := f.Address()
	if err != nil {
		t.Fatalf("Address: %v", err)
	}
	if addr != 0x1020 {
		t.Fatalf("resolved %s, want 0x1020", addr)
	}
	if err := f.Set(42); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, _ := f.Get(); v != 42 {
		t.Fatalf("Get: %d", v)
	}
	if got := binary.LittleEndian.Uint32(raw[0x20:]); got != 42 {
		t.Fatalf("raw bytes: %d", got)
	}
}

func TestField_RecomputesAddress(t *testing.T) {
	s, raw := newSpace(t, 0x1000, 0x100)
	raw[0x10] = 7
	raw[0x90] = 9

	parent := Cast(s, 0x1000)
	f := NewUnsigned[uint8](parent, resolve.Offset(0x10))
	if v, _ := f.Get(); v != 7 {
		t.Fatalf("first read: %d", v)
	}
	moved := NewUnsigned[uint8](parent.Offset(0x80), f.Resolver())
	if v, _ := moved.Get(); v != 9 {
		t.Fatalf("moved parent: %d", v)
	}
}

func TestField_Undeclared(t *testing.T) {
	var f Signed[int32]
	if _, err := f.Get(); err == nil {
		t.Fatal("zero field should fail")
	}
	if err := f.Set(1); err == nil {
		t.Fatal("zero field set should fail")
	}
}

func TestField_BackendBoundsError(t *testing.T) {
	s, _ := newSpace(t, 0x1000, 0x10)
	f := NewUnsigned[uint64](Cast(s, 0x1000), resolve.Offset(0x20))
	if _, err := f.Get(); err == nil {
		t.Fatal("expected the space to report unmapped memory")
	}
}
