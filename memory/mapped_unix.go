//go:build linux || darwin

package memory

import (
	"encoding/binary"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/wippyai/memview"
	"github.com/wippyai/memview/errors"
)

// MappedConfig configures a memory-mapped region.
type MappedConfig struct {
	// Base is the address the first mapped byte answers to. Set it to the
	// address the region has in the process that owns it so pointers stored
	// inside the region resolve unchanged.
	Base memview.Address

	// PointerSize is 4 or 8. 0 means 8.
	PointerSize uint64

	// ReadOnly maps the region without write permission.
	ReadOnly bool
}

// Mapped is memory backed by an mmap'd file or anonymous mapping.
type Mapped struct {
	file    *os.File
	data    []byte
	base    memview.Address
	ptrSize uint64
}

// MapFile maps size bytes of the file at path, creating and extending it
// as needed. The mapping is shared, so writes are visible to every process
// that maps the same file.
func MapFile(path string, size int, cfg MappedConfig) (*Mapped, error) {
	flags := os.O_RDWR | os.O_CREATE
	prot := unix.PROT_READ | unix.PROT_WRITE
	if cfg.ReadOnly {
		flags = os.O_RDONLY
		prot = unix.PROT_READ
	}

	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return nil, errors.Load("open mapped file", err)
	}
	if !cfg.ReadOnly {
		if st, err := f.Stat(); err == nil && st.Size() < int64(size) {
			if err := f.Truncate(int64(size)); err != nil {
				return nil, multierr.Append(errors.Load("extend mapped file", err), f.Close())
			}
		}
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, prot, unix.MAP_SHARED)
	if err != nil {
		return nil, multierr.Append(errors.Load("mmap file", err), f.Close())
	}

	Logger().Debug("mapped file",
		zap.String("path", path),
		zap.Int("size", size),
		zap.Stringer("base", cfg.Base))

	return newMapped(f, data, cfg), nil
}

// MapAnonymous creates a private zeroed mapping of size bytes.
func MapAnonymous(size int, cfg MappedConfig) (*Mapped, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Load("mmap anonymous", err)
	}
	return newMapped(nil, data, cfg), nil
}

func newMapped(f *os.File, data []byte, cfg MappedConfig) *Mapped {
	m := &Mapped{file: f, data: data, base: cfg.Base, ptrSize: cfg.PointerSize}
	if m.ptrSize == 0 {
		m.ptrSize = 8
	}
	return m
}

func (m *Mapped) span(addr memview.Address, length uint64) (uint64, bool) {
	if addr < m.base {
		return 0, false
	}
	off := uint64(addr - m.base)
	if off > uint64(len(m.data)) || length > uint64(len(m.data))-off {
		return 0, false
	}
	return off, true
}

// Read copies length bytes at addr.
func (m *Mapped) Read(addr memview.Address, length uint64) ([]byte, error) {
	off, ok := m.span(addr, length)
	if !ok {
		return nil, errors.AddressOutOfBounds(errors.PhaseAccess, uint64(addr), length)
	}
	out := make([]byte, length)
	copy(out, m.data[off:])
	return out, nil
}

// Write copies data to addr.
func (m *Mapped) Write(addr memview.Address, data []byte) error {
	off, ok := m.span(addr, uint64(len(data)))
	if !ok {
		return errors.AddressOutOfBounds(errors.PhaseAccess, uint64(addr), uint64(len(data)))
	}
	copy(m.data[off:], data)
	return nil
}

func (m *Mapped) PointerSize() uint64 { return m.ptrSize }

func (m *Mapped) ByteOrder() binary.ByteOrder { return binary.NativeEndian }

// Base returns the address of the first mapped byte.
func (m *Mapped) Base() memview.Address { return m.base }

// Len returns the mapping size in bytes.
func (m *Mapped) Len() int { return len(m.data) }

// Sync flushes a shared file mapping to disk.
func (m *Mapped) Sync() error {
	return unix.Msync(m.data, unix.MS_SYNC)
}

// Close unmaps the region and closes the backing file.
func (m *Mapped) Close() error {
	var err error
	if m.data != nil {
		err = unix.Munmap(m.data)
		m.data = nil
	}
	if m.file != nil {
		err = multierr.Append(err, m.file.Close())
		m.file = nil
	}
	return err
}

var _ memview.Memory = (*Mapped)(nil)
