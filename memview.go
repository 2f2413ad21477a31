package memview

import (
	"encoding/binary"
	"fmt"
)

// Address is a location in some foreign address space.
type Address uint64

// String formats the address as hex.
func (a Address) String() string {
	return fmt.Sprintf("0x%x", uint64(a))
}

// Add returns a+off with two's complement wrap for negative offsets.
func (a Address) Add(off int64) Address {
	return Address(uint64(a) + uint64(off))
}

// Memory is a foreign address space that views overlay.
// Implementations never validate that the layout described on top of them
// is correct; bounds errors, if any, come from the backend itself.
// Read returns a copy the caller owns; changes reach memory only through
// Write.
type Memory interface {
	Read(addr Address, length uint64) ([]byte, error)
	Write(addr Address, data []byte) error
	PointerSize() uint64
	ByteOrder() binary.ByteOrder
}

// Allocator hands out storage inside a Memory.
type Allocator interface {
	Alloc(size, align uint64) (Address, error)
	Free(addr Address, size, align uint64) error
}

// Arena is a Memory that can also allocate inside itself.
type Arena interface {
	Memory
	Allocator
}

// ReadPointer reads a pointer-sized value at addr.
func ReadPointer(mem Memory, addr Address) (Address, error) {
	switch mem.PointerSize() {
	case 4:
		v, err := ReadUint32(mem, addr)
		return Address(v), err
	default:
		v, err := ReadUint64(mem, addr)
		return Address(v), err
	}
}

// WritePointer writes a pointer-sized value at addr.
func WritePointer(mem Memory, addr, value Address) error {
	switch mem.PointerSize() {
	case 4:
		return WriteUint32(mem, addr, uint32(value))
	default:
		return WriteUint64(mem, addr, uint64(value))
	}
}

func ReadUint8(mem Memory, addr Address) (uint8, error) {
	b, err := mem.Read(addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func ReadUint16(mem Memory, addr Address) (uint16, error) {
	b, err := mem.Read(addr, 2)
	if err != nil {
		return 0, err
	}
	return mem.ByteOrder().Uint16(b), nil
}

func ReadUint32(mem Memory, addr Address) (uint32, error) {
	b, err := mem.Read(addr, 4)
	if err != nil {
		return 0, err
	}
	return mem.ByteOrder().Uint32(b), nil
}

func ReadUint64(mem Memory, addr Address) (uint64, error) {
	b, err := mem.Read(addr, 8)
	if err != nil {
		return 0, err
	}
	return mem.ByteOrder().Uint64(b), nil
}

func WriteUint8(mem Memory, addr Address, v uint8) error {
	return mem.Write(addr, []byte{v})
}

func WriteUint16(mem Memory, addr Address, v uint16) error {
	var b [2]byte
	mem.ByteOrder().PutUint16(b[:], v)
	return mem.Write(addr, b[:])
}

func WriteUint32(mem Memory, addr Address, v uint32) error {
	var b [4]byte
	mem.ByteOrder().PutUint32(b[:], v)
	return mem.Write(addr, b[:])
}

func WriteUint64(mem Memory, addr Address, v uint64) error {
	var b [8]byte
	mem.ByteOrder().PutUint64(b[:], v)
	return mem.Write(addr, b[:])
}

// AlignTo rounds offset up to a multiple of align (a power of two).
func AlignTo(offset, align uint64) uint64 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}
