package invoke

import (
	"context"
	"sync"

	"github.com/wippyai/memview"
	"github.com/wippyai/memview/errors"
)

// HostFunc is a Go implementation of an entry point.
type HostFunc func(ctx context.Context, args []uint64) ([]uint64, error)

// Table dispatches to Go functions registered at addresses. It stands in
// for foreign code in simulated address spaces and can intercept calls.
type Table struct {
	funcs       map[memview.Address]HostFunc
	conventions map[Convention]bool
	mu          sync.RWMutex
}

// NewTable creates a table accepting the given conventions, or every
// convention when none are named.
func NewTable(conventions ...Convention) *Table {
	t := &Table{funcs: make(map[memview.Address]HostFunc)}
	if len(conventions) > 0 {
		t.conventions = make(map[Convention]bool, len(conventions))
		for _, c := range conventions {
			t.conventions[c] = true
		}
	}
	return t
}

// Register binds fn to addr, replacing any previous binding.
func (t *Table) Register(addr memview.Address, fn HostFunc) {
	t.mu.Lock()
	t.funcs[addr] = fn
	t.mu.Unlock()
}

// Unregister removes the binding at addr.
func (t *Table) Unregister(addr memview.Address) {
	t.mu.Lock()
	delete(t.funcs, addr)
	t.mu.Unlock()
}

func (t *Table) Supports(c Convention) bool {
	return t.conventions == nil || t.conventions[c]
}

func (t *Table) Invoke(ctx context.Context, addr memview.Address, sig Signature, args []uint64) ([]uint64, error) {
	t.mu.RLock()
	fn, ok := t.funcs[addr]
	t.mu.RUnlock()
	if !ok {
		return nil, errors.NotFound(errors.PhaseInvoke, "function", addr.String())
	}
	return fn(ctx, args)
}

var _ Invoker = (*Table)(nil)
