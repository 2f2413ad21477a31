package module

import (
	"context"
	"testing"

	"github.com/tetratelabs/wazero"

	"github.com/wippyai/memview/resolve"
	"github.com/wippyai/memview/view"
)

// memoryWASM is a minimal WASM module with 1 page of memory exported as "memory"
var memoryWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	0x05, 0x03, 0x01, 0x00, 0x01, // memory section: 1 page, no max
	0x07, 0x0a, 0x01, // export section: 10 bytes, 1 export
	0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, // name: "memory" (6 bytes + string)
	0x02, 0x00, // kind: memory, index 0
}

func TestWazero_Locate(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	mod, err := rt.InstantiateWithConfig(ctx, memoryWASM, wazero.NewModuleConfig().WithName("guest"))
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}

	loc := NewWazero(rt, "")
	base, ok := loc.Locate("guest")
	if !ok {
		t.Fatal("guest not found")
	}
	if base.AddressOfObject() != 0 || base.Memory().PointerSize() != 4 {
		t.Fatalf("anchor: %s ptr=%d", base.AddressOfObject(), base.Memory().PointerSize())
	}

	hp := view.NewUnsigned[uint16](base, resolve.Offset(0x80))
	if err := hp.Set(999); err != nil {
		t.Fatalf("Set: %v", err)
	}
	raw, ok := mod.ExportedMemory("memory").ReadUint16Le(0x80)
	if !ok || raw != 999 {
		t.Fatalf("linear memory: %d, %v", raw, ok)
	}

	if _, ok := loc.Locate("other"); ok {
		t.Fatal("unknown instance found")
	}
	if _, ok := NewWazero(rt, "heap").Locate("guest"); ok {
		t.Fatal("instance without that memory found")
	}

	if err := mod.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, ok := loc.Locate("guest"); ok {
		t.Fatal("closed instance found")
	}
}
