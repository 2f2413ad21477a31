package view

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/memview"
	"github.com/wippyai/memview/errors"
	"github.com/wippyai/memview/layout"
	"github.com/wippyai/memview/memory"
	"github.com/wippyai/memview/resolve"
)

func TestPointer_Deref(t *testing.T) {
	s, _ := newSpace(t, 0x1000, 0x100)
	parent := Cast(s, 0x1000)
	p := MustPointer[int32](parent, resolve.Offset(0x08))

	if null, _ := p.IsNull(); !null {
		t.Fatal("fresh pointer should be null")
	}
	if _, err := p.Deref().Get(); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseResolve, Kind: errors.KindNilPointer}) {
		t.Fatalf("null deref: got %v", err)
	}

	if err := p.Set(0x1080); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, _ := p.Get(); got != 0x1080 {
		t.Fatalf("Get: %s", got)
	}
	if err := p.Deref().Set(11); err != nil {
		t.Fatalf("deref set: %v", err)
	}
	if err := p.At(2).Set(33); err != nil {
		t.Fatalf("at set: %v", err)
	}
	if v, _ := memview.ReadUint32(s, 0x1088); v != 33 {
		t.Fatalf("element 2 at 0x1088: %d", v)
	}
	if off, _ := p.Offset(2); off != 0x1088 {
		t.Fatalf("offset: %s", off)
	}

	elem := p.At(0)
	_ = p.Set(0x1088)
	if v, _ := elem.Get(); v != 33 {
		t.Fatalf("accessor should re-read the pointer, got %d", v)
	}
}

func TestPointer_32Bit(t *testing.T) {
	s := memory.NewSpace(memory.SpaceConfig{PointerSize: 4})
	raw := s.Map(0x100, 0x40)
	p := MustPointer[uint16](Cast(s, 0x100), resolve.Offset(0))
	_ = p.Set(0x120)
	if raw[0] != 0x20 || raw[1] != 0x01 || raw[4] != 0 {
		t.Fatalf("pointer bytes: % x", raw[:8])
	}
	_ = p.At(1).Set(0xabcd)
	if v, _ := memview.ReadUint16(s, 0x122); v != 0xabcd {
		t.Fatalf("element: %#x", v)
	}
}

type listNode struct {
	View
	Value Signed[int32]
	Next  ViewPtr[listNode]
}

var nodeClass *Class[listNode]

func init() {
	nodeClass = MustDeclare(layout.MustNew("Node", 16, 8), func(v View) listNode {
		return listNode{
			View:  v,
			Value: NewSigned[int32](v, resolve.Offset(0)),
			Next:  NewViewPtr(v, resolve.Offset(8), nodeClass),
		}
	})
}

func TestViewPtr_LinkedList(t *testing.T) {
	s, _ := newSpace(t, 0x1000, 0x100)
	a := nodeClass.Cast(s, 0x1000)
	b := nodeClass.Cast(s, 0x1010)
	_ = a.Value.Set(1)
	_ = b.Value.Set(2)
	if err := a.Next.Set(nodeClass.Weak(s, 0x1010)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var sum int32
	for n := nodeClass.Weak(s, 0x1000); !n.IsNull(); {
		strong := n.ToStrong()
		v, err := strong.Value.Get()
		if err != nil {
			t.Fatalf("Value: %v", err)
		}
		sum += v
		if n, err = strong.Next.Get(); err != nil {
			t.Fatalf("Next: %v", err)
		}
	}
	if sum != 3 {
		t.Fatalf("sum: %d", sum)
	}
	if null, _ := b.Next.IsNull(); !null {
		t.Fatal("tail should be null")
	}
}
