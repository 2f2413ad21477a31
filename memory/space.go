package memory

import (
	"encoding/binary"
	"sort"
	"sync"

	"github.com/wippyai/memview"
	"github.com/wippyai/memview/errors"
)

// DefaultAllocBase is where Space places allocations when no base is configured.
const DefaultAllocBase memview.Address = 0x1000_0000

// SpaceConfig configures a simulated address space.
type SpaceConfig struct {
	// ByteOrder defaults to little endian.
	ByteOrder binary.ByteOrder

	// PointerSize is 4 or 8. 0 means 8.
	PointerSize uint64

	// AllocBase is the first address Alloc hands out. 0 means DefaultAllocBase.
	AllocBase memview.Address
}

type region struct {
	data []byte
	base memview.Address
}

func (r *region) end() memview.Address {
	return r.base + memview.Address(len(r.data))
}

// Space is a sparse address space made of independently mapped regions.
// It stands in for a foreign process image: dumps are mapped at their
// original addresses and views resolve against them unchanged.
//
// Space also implements memview.Allocator by mapping fresh regions.
type Space struct {
	order   binary.ByteOrder
	regions []*region
	ptrSize uint64
	next    memview.Address
	mu      sync.RWMutex
}

// NewSpace creates an empty address space.
func NewSpace(cfg SpaceConfig) *Space {
	s := &Space{
		order:   cfg.ByteOrder,
		ptrSize: cfg.PointerSize,
		next:    cfg.AllocBase,
	}
	if s.order == nil {
		s.order = binary.LittleEndian
	}
	if s.ptrSize == 0 {
		s.ptrSize = 8
	}
	if s.next == 0 {
		s.next = DefaultAllocBase
	}
	return s
}

// Map adds a zeroed region at base and returns its backing bytes.
// A region overlapping an existing one replaces it.
func (s *Space) Map(base memview.Address, size uint64) []byte {
	data := make([]byte, size)
	s.MapBytes(base, data)
	return data
}

// MapBytes adds a region backed by data without copying it.
func (s *Space) MapBytes(base memview.Address, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insert(&region{base: base, data: data})
}

func (s *Space) insert(r *region) {
	kept := s.regions[:0]
	for _, old := range s.regions {
		if old.base < r.end() && r.base < old.end() {
			continue
		}
		kept = append(kept, old)
	}
	s.regions = append(kept, r)
	sort.Slice(s.regions, func(i, j int) bool { return s.regions[i].base < s.regions[j].base })
}

// Unmap removes the region starting at base.
func (s *Space) Unmap(base memview.Address) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.regions {
		if r.base == base {
			s.regions = append(s.regions[:i], s.regions[i+1:]...)
			return true
		}
	}
	return false
}

// Regions returns the base addresses of all mapped regions in order.
func (s *Space) Regions() []memview.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]memview.Address, len(s.regions))
	for i, r := range s.regions {
		out[i] = r.base
	}
	return out
}

// find returns the region fully containing [addr, addr+length).
func (s *Space) find(addr memview.Address, length uint64) (*region, bool) {
	i := sort.Search(len(s.regions), func(i int) bool { return s.regions[i].end() > addr })
	if i == len(s.regions) {
		return nil, false
	}
	r := s.regions[i]
	if addr < r.base || uint64(r.end()-addr) < length {
		return nil, false
	}
	return r, true
}

// Read copies length bytes starting at addr.
func (s *Space) Read(addr memview.Address, length uint64) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.find(addr, length)
	if !ok {
		return nil, errors.AddressOutOfBounds(errors.PhaseAccess, uint64(addr), length)
	}
	off := addr - r.base
	out := make([]byte, length)
	copy(out, r.data[off:])
	return out, nil
}

// Write copies data to addr.
func (s *Space) Write(addr memview.Address, data []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.find(addr, uint64(len(data)))
	if !ok {
		return errors.AddressOutOfBounds(errors.PhaseAccess, uint64(addr), uint64(len(data)))
	}
	copy(r.data[addr-r.base:], data)
	return nil
}

func (s *Space) PointerSize() uint64 { return s.ptrSize }

func (s *Space) ByteOrder() binary.ByteOrder { return s.order }

// Alloc maps a fresh zeroed region of size bytes aligned to align.
// Allocations skip over regions that are already mapped.
func (s *Space) Alloc(size, align uint64) (memview.Address, error) {
	if size == 0 {
		return 0, errors.AllocationFailed(errors.PhaseAccess, size, align, nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	addr := memview.Address(memview.AlignTo(uint64(s.next), align))
	for {
		if addr < s.next || uint64(addr)+size < uint64(addr) {
			return 0, errors.AllocationFailed(errors.PhaseAccess, size, align, nil)
		}
		r, ok := s.overlap(addr, size)
		if !ok {
			break
		}
		s.next = r.end()
		addr = memview.Address(memview.AlignTo(uint64(s.next), align))
	}
	s.insert(&region{base: addr, data: make([]byte, size)})
	s.next = addr + memview.Address(size)
	return addr, nil
}

// overlap returns the first region intersecting [addr, addr+length).
func (s *Space) overlap(addr memview.Address, length uint64) (*region, bool) {
	for _, r := range s.regions {
		if r.base < addr+memview.Address(length) && addr < r.end() {
			return r, true
		}
	}
	return nil, false
}

// Free unmaps a region returned by Alloc.
func (s *Space) Free(addr memview.Address, _, _ uint64) error {
	if !s.Unmap(addr) {
		return errors.NotFound(errors.PhaseAccess, "region", addr.String())
	}
	return nil
}

var (
	_ memview.Memory    = (*Space)(nil)
	_ memview.Allocator = (*Space)(nil)
)
