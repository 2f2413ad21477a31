package module

import (
	"github.com/tetratelabs/wazero"

	"github.com/wippyai/memview/memory"
	"github.com/wippyai/memview/view"
)

// Wazero locates wasm module instances by name in a wazero runtime. Each
// instance is its own address space, so the view is anchored at address 0
// of the instance's exported linear memory.
type Wazero struct {
	rt         wazero.Runtime
	memoryName string
}

// NewWazero locates instances in rt that export memoryName, "memory" if empty.
func NewWazero(rt wazero.Runtime, memoryName string) *Wazero {
	if memoryName == "" {
		memoryName = "memory"
	}
	return &Wazero{rt: rt, memoryName: memoryName}
}

func (w *Wazero) Locate(name string) (view.View, bool) {
	mod := w.rt.Module(name)
	if mod == nil || mod.IsClosed() {
		return view.View{}, false
	}
	mem := mod.ExportedMemory(w.memoryName)
	if mem == nil {
		return view.View{}, false
	}
	return view.Anchor(memory.WrapWazero(mem)), true
}

var _ Locator = (*Wazero)(nil)
