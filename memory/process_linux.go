//go:build linux

package memory

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/wippyai/memview"
	"github.com/wippyai/memview/errors"
)

// Process accesses another process's address space through
// process_vm_readv/process_vm_writev. The caller needs ptrace access to the
// target.
type Process struct {
	pid     int
	ptrSize uint64
}

// OpenProcess returns memory for the process with the given pid.
// ptrSize 0 means the target has the same pointer width as this process.
func OpenProcess(pid int, ptrSize uint64) *Process {
	if ptrSize == 0 {
		ptrSize = Native().PointerSize()
	}
	return &Process{pid: pid, ptrSize: ptrSize}
}

// PID returns the target process id.
func (p *Process) PID() int { return p.pid }

func (p *Process) Read(addr memview.Address, length uint64) ([]byte, error) {
	out := make([]byte, length)
	if length == 0 {
		return out, nil
	}
	local := []unix.Iovec{{Base: &out[0]}}
	local[0].SetLen(int(length))
	remote := []unix.RemoteIovec{{Base: uintptr(addr), Len: int(length)}}

	n, err := unix.ProcessVMReadv(p.pid, local, remote, 0)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseAccess, errors.KindOutOfBounds, err,
			fmt.Sprintf("read %d bytes at %s in pid %d", length, addr, p.pid))
	}
	if uint64(n) != length {
		return nil, errors.AddressOutOfBounds(errors.PhaseAccess, uint64(addr)+uint64(n), length-uint64(n))
	}
	return out, nil
}

func (p *Process) Write(addr memview.Address, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	local := []unix.Iovec{{Base: &data[0]}}
	local[0].SetLen(len(data))
	remote := []unix.RemoteIovec{{Base: uintptr(addr), Len: len(data)}}

	n, err := unix.ProcessVMWritev(p.pid, local, remote, 0)
	if err != nil {
		return errors.Wrap(errors.PhaseAccess, errors.KindOutOfBounds, err,
			fmt.Sprintf("write %d bytes at %s in pid %d", len(data), addr, p.pid))
	}
	if n != len(data) {
		return errors.AddressOutOfBounds(errors.PhaseAccess, uint64(addr)+uint64(n), uint64(len(data)-n))
	}
	return nil
}

func (p *Process) PointerSize() uint64 { return p.ptrSize }

func (p *Process) ByteOrder() binary.ByteOrder { return binary.NativeEndian }

var _ memview.Memory = (*Process)(nil)
