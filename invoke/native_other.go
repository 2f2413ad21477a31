//go:build !((darwin || linux) && (amd64 || arm64))

package invoke

import (
	"context"

	"github.com/wippyai/memview"
	"github.com/wippyai/memview/errors"
)

// Native is unavailable on this platform; it supports no convention.
type Native struct{}

// NewNative creates a native invoker that rejects every declaration.
func NewNative() *Native { return &Native{} }

func (n *Native) Supports(Convention) bool { return false }

func (n *Native) Invoke(context.Context, memview.Address, Signature, []uint64) ([]uint64, error) {
	return nil, errors.UnsupportedConvention(Platform().String(), "native")
}

var _ Invoker = (*Native)(nil)

// Symbol is unavailable on this platform.
func Symbol(library, name string) (memview.Address, error) {
	return 0, errors.NotFound(errors.PhaseLookup, "symbol", library+"!"+name)
}
