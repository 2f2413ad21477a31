package view

import (
	stderrors "errors"
	"math"
	"runtime"
	"testing"
	"unsafe"

	"github.com/wippyai/memview/errors"
	"github.com/wippyai/memview/memory"
	"github.com/wippyai/memview/resolve"
)

type vec3 struct {
	X, Y, Z float32
}

func TestAggregate_GetSetUpdate(t *testing.T) {
	s, raw := newSpace(t, 0x1000, 0x40)
	pos := MustAggregate[vec3](Cast(s, 0x1000), resolve.Offset(0x20))

	if err := pos.Set(vec3{1, 2, 3}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := math.Float32frombits(uint32(raw[0x24]) | uint32(raw[0x25])<<8 | uint32(raw[0x26])<<16 | uint32(raw[0x27])<<24); got != 2 {
		t.Fatalf("Y raw: %v", got)
	}
	if err := pos.Update(func(v *vec3) { v.Z *= 10 }); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := pos.Get()
	if got != (vec3{1, 2, 30}) {
		t.Fatalf("Get: %+v", got)
	}
	if pos.Size() != 12 {
		t.Fatalf("size: %d", pos.Size())
	}
}

func TestAggregate_Rejections(t *testing.T) {
	type withPtr struct {
		N int32
		P *int32
	}
	type withIface struct{ V any }
	type viewBased struct {
		View
	}
	s, _ := newSpace(t, 0x1000, 0x40)
	parent := Cast(s, 0x1000)

	_, err := NewAggregate[withPtr](parent, resolve.Offset(0))
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDeclare, Kind: errors.KindNonTrivial}) {
		t.Fatalf("pointer member: got %v", err)
	}
	_, err = NewAggregate[withIface](parent, resolve.Offset(0))
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDeclare, Kind: errors.KindNonTrivial}) {
		t.Fatalf("interface member: got %v", err)
	}
	_, err = NewAggregate[viewBased](parent, resolve.Offset(0))
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDeclare, Kind: errors.KindUnsupportedKind}) {
		t.Fatalf("view type: got %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("MustAggregate should panic")
		}
	}()
	MustAggregate[withPtr](parent, resolve.Offset(0))
}

func TestAggregate_RefNative(t *testing.T) {
	buf := make([]vec3, 2)
	var pin runtime.Pinner
	pin.Pin(&buf[0])
	defer pin.Unpin()
	addr := memory.AddressOf(unsafe.Slice((*byte)(unsafe.Pointer(&buf[0])), 24))
	pos := MustAggregate[vec3](Cast(memory.Native(), addr), resolve.Offset(12))

	ref, err := pos.Ref()
	if err != nil {
		t.Fatalf("Ref: %v", err)
	}
	ref.X = 9
	if buf[1].X != 9 {
		t.Fatal("Ref should alias the native bytes")
	}

	s, _ := newSpace(t, 0x1000, 0x40)
	if _, err := MustAggregate[vec3](Cast(s, 0x1000), resolve.Offset(0)).Ref(); err == nil {
		t.Fatal("Ref on simulated memory should fail")
	}
}
