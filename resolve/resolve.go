package resolve

import (
	"fmt"
	"strings"

	"github.com/wippyai/memview"
)

// Resolver computes a target address from a base address.
// Resolvers are pure: the same base and memory contents always yield the
// same target. Offset and Absolute never touch memory and never fail.
type Resolver interface {
	Resolve(mem memview.Memory, base memview.Address) (memview.Address, error)
}

// Func adapts an ordinary function to Resolver.
type Func func(mem memview.Memory, base memview.Address) (memview.Address, error)

func (f Func) Resolve(mem memview.Memory, base memview.Address) (memview.Address, error) {
	return f(mem, base)
}

// Offset adds a constant, possibly negative, to the base.
type Offset int64

func (o Offset) Resolve(_ memview.Memory, base memview.Address) (memview.Address, error) {
	return base.Add(int64(o)), nil
}

func (o Offset) String() string {
	if o < 0 {
		return fmt.Sprintf("-0x%x", uint64(-o))
	}
	return fmt.Sprintf("+0x%x", uint64(o))
}

// Absolute ignores the base and always returns a fixed address.
type Absolute memview.Address

func (a Absolute) Resolve(memview.Memory, memview.Address) (memview.Address, error) {
	return memview.Address(a), nil
}

func (a Absolute) String() string {
	return "@" + memview.Address(a).String()
}

// VTableSlot locates a function through a virtual function table:
// the table pointer lives at base+TableOffset and the target is the
// pointer stored in slot Index of that table.
type VTableSlot struct {
	Index       uint64
	TableOffset uint64
}

func (v VTableSlot) Resolve(mem memview.Memory, base memview.Address) (memview.Address, error) {
	table, err := memview.ReadPointer(mem, base+memview.Address(v.TableOffset))
	if err != nil {
		return 0, err
	}
	return memview.ReadPointer(mem, table+memview.Address(v.Index*mem.PointerSize()))
}

func (v VTableSlot) String() string {
	return fmt.Sprintf("vtable[+0x%x][%d]", v.TableOffset, v.Index)
}

// Chain follows a multi-level pointer path. Every offset but the last is
// added and then dereferenced; the last offset is only added.
// An empty chain resolves to the base.
type Chain []int64

func (c Chain) Resolve(mem memview.Memory, base memview.Address) (memview.Address, error) {
	addr := base
	for i, off := range c {
		addr = addr.Add(off)
		if i == len(c)-1 {
			break
		}
		next, err := memview.ReadPointer(mem, addr)
		if err != nil {
			return 0, err
		}
		addr = next
	}
	return addr, nil
}

func (c Chain) String() string {
	parts := make([]string, len(c))
	for i, off := range c {
		parts[i] = Offset(off).String()
	}
	return "chain(" + strings.Join(parts, " -> ") + ")"
}
