// Package memory provides the address spaces views are overlaid on.
//
// # Backends
//
//   - Native: the current process, accessed through unsafe pointers with no
//     validation. Heap allocates pinned native storage for instances.
//   - Space: a sparse set of mapped regions for dumps and simulations; it
//     bounds-checks and doubles as an Allocator.
//   - Wazero: a WebAssembly instance's linear memory (32-bit pointers), with
//     WazeroAllocator driving the guest's cabi_realloc.
//   - Mapped: an mmap'd file or anonymous mapping, optionally rebased to the
//     address the region has in its owning process (linux and darwin).
//   - Process: another process through process_vm_readv/writev (linux only).
//
// # Usage
//
//	inst, err := memory.InstantiateWasm(ctx, wasmBytes, memory.WasmConfig{})
//	player := players.Cast(inst.Memory, 0x4000)
//
// Bounds errors reported here are the backend's own; views add none.
package memory
