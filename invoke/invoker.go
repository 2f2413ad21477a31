package invoke

import (
	"context"

	"github.com/wippyai/memview"
	"github.com/wippyai/memview/errors"
)

// Invoker dispatches a call to an entry point. Arguments and results are
// encoded one per uint64 slot.
type Invoker interface {
	Supports(c Convention) bool
	Invoke(ctx context.Context, addr memview.Address, sig Signature, args []uint64) ([]uint64, error)
}

func checkConvention(inv Invoker, c Convention) error {
	if inv == nil {
		return errors.InvalidInput(errors.PhaseDeclare, "function has no invoker")
	}
	if !inv.Supports(c) {
		return errors.UnsupportedConvention(c.String(), invokerName(inv))
	}
	return nil
}

func invokerName(inv Invoker) string {
	switch inv.(type) {
	case *Table:
		return "table"
	case *Wazero:
		return "wazero"
	case *Native:
		return "native"
	}
	return "custom"
}
