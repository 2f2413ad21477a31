package memory

import (
	"encoding/binary"
	"runtime"
	"sync"
	"unsafe"

	"github.com/wippyai/memview"
	"github.com/wippyai/memview/errors"
)

// nativeMemory accesses the current process's address space directly.
// There is no validation: an unmapped address faults.
type nativeMemory struct{}

var native memview.Memory = nativeMemory{}

// Native returns the memory of the current process.
func Native() memview.Memory {
	return native
}

// IsNative reports whether mem addresses the current process directly,
// so addresses can be turned into Go pointers.
func IsNative(mem memview.Memory) bool {
	_, ok := mem.(nativeMemory)
	return ok
}

//go:nocheckptr
func nativeBytes(addr memview.Address, length uint64) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), length)
}

func (nativeMemory) Read(addr memview.Address, length uint64) ([]byte, error) {
	out := make([]byte, length)
	if length > 0 {
		copy(out, nativeBytes(addr, length))
	}
	return out, nil
}

func (nativeMemory) Write(addr memview.Address, data []byte) error {
	if len(data) > 0 {
		copy(nativeBytes(addr, uint64(len(data))), data)
	}
	return nil
}

func (nativeMemory) PointerSize() uint64 { return uint64(unsafe.Sizeof(uintptr(0))) }

func (nativeMemory) ByteOrder() binary.ByteOrder { return binary.NativeEndian }

// AddressOf returns the native address of the first byte of b.
// Goroutine stacks move as they grow, so b must live on the heap and stay
// pinned (runtime.Pinner) and reachable while the address is in use. Heap
// blocks satisfy this.
func AddressOf(b []byte) memview.Address {
	if len(b) == 0 {
		return 0
	}
	return memview.Address(uintptr(unsafe.Pointer(&b[0])))
}

// Pointer converts a native address into an unsafe.Pointer.
//
//go:nocheckptr
func Pointer(addr memview.Address) unsafe.Pointer {
	return unsafe.Pointer(uintptr(addr))
}

type heapBlock struct {
	buf    []byte
	pinner runtime.Pinner
}

// Heap allocates native storage from the Go heap. Blocks are pinned and
// stay reachable until freed, so their addresses can be handed to foreign
// code.
type Heap struct {
	blocks map[memview.Address]*heapBlock
	mu     sync.Mutex
}

// NewHeap creates an empty native heap.
func NewHeap() *Heap {
	return &Heap{blocks: make(map[memview.Address]*heapBlock)}
}

var defaultHeap = NewHeap()

// DefaultHeap returns the process-wide native heap.
func DefaultHeap() *Heap {
	return defaultHeap
}

// Alloc returns zeroed native storage of size bytes aligned to align.
func (h *Heap) Alloc(size, align uint64) (memview.Address, error) {
	if size == 0 {
		return 0, errors.AllocationFailed(errors.PhaseAccess, size, align, nil)
	}
	if align == 0 {
		align = 1
	}
	b := &heapBlock{buf: make([]byte, size+align-1)}
	base := AddressOf(b.buf)
	addr := memview.Address(memview.AlignTo(uint64(base), align))
	b.pinner.Pin(&b.buf[0])

	h.mu.Lock()
	h.blocks[addr] = b
	h.mu.Unlock()
	return addr, nil
}

// Free releases a block returned by Alloc.
func (h *Heap) Free(addr memview.Address, _, _ uint64) error {
	h.mu.Lock()
	b, ok := h.blocks[addr]
	delete(h.blocks, addr)
	h.mu.Unlock()
	if !ok {
		return errors.NotFound(errors.PhaseAccess, "heap block", addr.String())
	}
	b.pinner.Unpin()
	return nil
}

// Len returns the number of live blocks.
func (h *Heap) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.blocks)
}

var _ memview.Allocator = (*Heap)(nil)
