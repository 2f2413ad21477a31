package view

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/memview"
	"github.com/wippyai/memview/errors"
)

// Instance owns storage for one object of a class. Close runs the
// destructor hook, if declared, and releases the storage exactly once.
type Instance[W any] struct {
	value  W
	class  *Class[W]
	arena  memview.Arena
	view   View
	closed bool
}

// Instantiate allocates storage for one object and runs the constructor
// hook with args when the class declares one. Passing args to a class
// without a constructor is an error.
func (c *Class[W]) Instantiate(arena memview.Arena, args ...any) (*Instance[W], error) {
	if arena == nil {
		return nil, errors.InvalidInput(errors.PhaseAccess, "instantiate needs an arena")
	}
	if !c.caps.Construct && len(args) > 0 {
		return nil, errors.Arity(errors.PhaseAccess, 0, len(args))
	}
	addr, err := arena.Alloc(c.layout.Size, c.layout.Align)
	if err != nil {
		return nil, errors.AllocationFailed(errors.PhaseAccess, c.layout.Size, c.layout.Align, err)
	}
	v := Cast(arena, addr)
	inst := &Instance[W]{value: c.bind(v), class: c, arena: arena, view: v}

	if c.caps.Construct {
		if err := c.construct(inst.value, args...); err != nil {
			freeErr := arena.Free(addr, c.layout.Size, c.layout.Align)
			return nil, multierr.Append(
				errors.Wrap(errors.PhaseAccess, errors.KindInvalidInput, err, "construct "+c.layout.Name),
				freeErr)
		}
	}

	Logger().Debug("instantiated view",
		zap.String("layout", c.layout.Name),
		zap.Stringer("address", addr),
		zap.Uint64("size", c.layout.Size))
	return inst, nil
}

// Get returns the strong wrapper over the owned storage.
func (i *Instance[W]) Get() W { return i.value }

// View returns the handle on the owned storage.
func (i *Instance[W]) View() View { return i.view }

// Weak returns the in-place form of the owned storage.
func (i *Instance[W]) Weak() Weak[W] { return Weak[W]{class: i.class, view: i.view} }

// Closed reports whether Close has run.
func (i *Instance[W]) Closed() bool { return i.closed }

// Close runs the destructor hook and frees the storage. Later calls do
// nothing.
func (i *Instance[W]) Close() error {
	if i.closed {
		return nil
	}
	i.closed = true

	var err error
	if i.class.caps.Destruct {
		if derr := i.class.destruct(i.value); derr != nil {
			err = errors.Wrap(errors.PhaseAccess, errors.KindInvalidInput, derr, "destruct "+i.class.layout.Name)
		}
	}
	err = multierr.Append(err, i.arena.Free(i.view.addr, i.class.layout.Size, i.class.layout.Align))

	Logger().Debug("closed view instance",
		zap.String("layout", i.class.layout.Name),
		zap.Stringer("address", i.view.addr),
		zap.Error(err))
	return err
}
