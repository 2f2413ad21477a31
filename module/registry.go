package module

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/memview"
	"github.com/wippyai/memview/view"
)

type entry struct {
	mem  memview.Memory
	base memview.Address
}

// Registry is a set of modules whose bases are known up front, such as
// dumps mapped into a memory.Space or libraries loaded by the caller.
type Registry struct {
	modules map[string]entry
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]entry)}
}

// Register records that name is loaded at base in mem, replacing any
// earlier registration.
func (r *Registry) Register(name string, mem memview.Memory, base memview.Address) {
	r.mu.Lock()
	r.modules[name] = entry{mem: mem, base: base}
	r.mu.Unlock()
	Logger().Debug("registered module",
		zap.String("name", name),
		zap.Stringer("base", base))
}

// Unregister forgets name. It reports whether name was registered.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.modules[name]; !ok {
		return false
	}
	delete(r.modules, name)
	return true
}

func (r *Registry) Locate(name string) (view.View, bool) {
	r.mu.RLock()
	e, ok := r.modules[name]
	r.mu.RUnlock()
	if !ok {
		return view.View{}, false
	}
	return view.Cast(e.mem, e.base), true
}

// Names returns the registered module names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.modules))
	for n := range r.modules {
		names = append(names, n)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

var _ Locator = (*Registry)(nil)
