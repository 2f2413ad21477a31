//go:build (darwin || linux) && (amd64 || arm64)

package invoke

import (
	"github.com/ebitengine/purego"

	"github.com/wippyai/memview"
	"github.com/wippyai/memview/errors"
)

// Symbol loads library, if needed, and returns the address of name in it.
// The library stays loaded for the life of the process.
func Symbol(library, name string) (memview.Address, error) {
	handle, err := purego.Dlopen(library, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return 0, errors.Load("open library "+library, err)
	}
	sym, err := purego.Dlsym(handle, name)
	if err != nil {
		return 0, errors.New(errors.PhaseLookup, errors.KindNotFound).
			Value(name).
			Cause(err).
			Detail("symbol in %s", library).
			Build()
	}
	return memview.Address(sym), nil
}
