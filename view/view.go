package view

import (
	"sync"
	"unsafe"

	"github.com/wippyai/memview"
	"github.com/wippyai/memview/memory"
)

// View is a handle on a foreign object: one memory and one address.
// Copying a View copies the address only; a View never frees what it
// refers to.
type View struct {
	mem  memview.Memory
	addr memview.Address
}

// Cast reinterprets addr in mem as a view. It never fails.
func Cast(mem memview.Memory, addr memview.Address) View {
	return View{mem: mem, addr: addr}
}

// Anchor returns a view at address 0 of mem. Fields with absolute
// resolvers hang off an anchor.
func Anchor(mem memview.Memory) View {
	return View{mem: mem}
}

var (
	global     View
	globalOnce sync.Once
)

// Global returns the process-wide anchor over native memory.
func Global() View {
	globalOnce.Do(func() {
		global = Anchor(memory.Native())
		Logger().Debug("global anchor initialized")
	})
	return global
}

// Memory returns the memory the view overlays.
func (v View) Memory() memview.Memory { return v.mem }

// AddressOfObject returns the foreign address the view refers to.
func (v View) AddressOfObject() memview.Address { return v.addr }

// AddressOfView returns the identity of the handle itself. For a strong
// view embedded first in its wrapper this is the wrapper's own address.
func (v *View) AddressOfView() uintptr { return uintptr(unsafe.Pointer(v)) }

// IsNull reports whether the view refers to address 0.
func (v View) IsNull() bool { return v.addr == 0 }

// Offset returns a view off bytes away in the same memory.
func (v View) Offset(off int64) View {
	return View{mem: v.mem, addr: v.addr.Add(off)}
}

// Bytes reads n bytes starting at the view's address.
func (v View) Bytes(n uint64) ([]byte, error) {
	return v.mem.Read(v.addr, n)
}

func (v View) String() string { return v.addr.String() }
