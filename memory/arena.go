package memory

import (
	"github.com/wippyai/memview"
)

type arena struct {
	memview.Memory
	alloc memview.Allocator
}

func (a arena) Alloc(size, align uint64) (memview.Address, error) {
	return a.alloc.Alloc(size, align)
}

func (a arena) Free(addr memview.Address, size, align uint64) error {
	return a.alloc.Free(addr, size, align)
}

// WithAllocator pairs a memory with an allocator that hands out addresses in it.
func WithAllocator(mem memview.Memory, alloc memview.Allocator) memview.Arena {
	return arena{Memory: mem, alloc: alloc}
}

// NativeArena allocates from DefaultHeap and accesses native memory.
func NativeArena() memview.Arena {
	return WithAllocator(Native(), DefaultHeap())
}
