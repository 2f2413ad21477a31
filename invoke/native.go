//go:build (darwin || linux) && (amd64 || arm64)

package invoke

import (
	"context"
	"math"
	"reflect"
	"sync"

	"github.com/ebitengine/purego"
	"go.uber.org/zap"

	"github.com/wippyai/memview"
	"github.com/wippyai/memview/errors"
)

// maxNativeArgs is the most arguments purego passes in one call.
const maxNativeArgs = 15

type nativeKey struct {
	sig  string
	addr memview.Address
}

// Native calls machine code in the current process through purego. Integer
// and pointer signatures go through SyscallN; signatures with floats get a
// typed trampoline built once per address and cached.
type Native struct {
	fns map[nativeKey]reflect.Value
	mu  sync.Mutex
}

// NewNative creates a native invoker.
func NewNative() *Native {
	return &Native{fns: make(map[nativeKey]reflect.Value)}
}

// Supports accepts the platform C convention and cdecl, which is the same
// thing on every architecture purego runs on.
func (n *Native) Supports(c Convention) bool {
	return c == Platform() || c == CDecl
}

func (n *Native) Invoke(ctx context.Context, addr memview.Address, sig Signature, args []uint64) ([]uint64, error) {
	if addr == 0 {
		return nil, errors.NilPointer(errors.PhaseInvoke, nil, "native entry point")
	}
	if len(args) > maxNativeArgs {
		return nil, errors.Arity(errors.PhaseInvoke, maxNativeArgs, len(args))
	}
	if len(sig.Results) > 1 {
		return nil, errors.New(errors.PhaseInvoke, errors.KindUnsupportedKind).
			GoType(sig.String()).
			Detail("native calls return at most one value").
			Build()
	}
	if !sig.hasFloats() {
		raw := make([]uintptr, len(args))
		for i, a := range args {
			raw[i] = uintptr(a)
		}
		r1, _, _ := purego.SyscallN(uintptr(addr), raw...)
		if len(sig.Results) == 0 {
			return nil, nil
		}
		return []uint64{narrow(sig.Results[0], uint64(r1))}, nil
	}

	fn := n.trampoline(addr, sig)
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		in[i] = toReflect(sig.Params[i], a)
	}
	out := fn.Call(in)
	if len(out) == 0 {
		return nil, nil
	}
	return []uint64{fromReflect(sig.Results[0], out[0])}, nil
}

func (n *Native) trampoline(addr memview.Address, sig Signature) reflect.Value {
	key := nativeKey{addr: addr, sig: sig.String()}
	n.mu.Lock()
	defer n.mu.Unlock()
	if fn, ok := n.fns[key]; ok {
		return fn
	}
	in := make([]reflect.Type, len(sig.Params))
	for i, p := range sig.Params {
		in[i] = goType(p)
	}
	out := make([]reflect.Type, len(sig.Results))
	for i, r := range sig.Results {
		out[i] = goType(r)
	}
	ptr := reflect.New(reflect.FuncOf(in, out, false))
	purego.RegisterFunc(ptr.Interface(), uintptr(addr))
	fn := ptr.Elem()
	n.fns[key] = fn
	Logger().Debug("built native trampoline",
		zap.Stringer("address", addr),
		zap.Stringer("signature", sig))
	return fn
}

func goType(t ValueType) reflect.Type {
	switch t {
	case TypeI32:
		return reflect.TypeFor[int32]()
	case TypeI64:
		return reflect.TypeFor[int64]()
	case TypeF32:
		return reflect.TypeFor[float32]()
	case TypeF64:
		return reflect.TypeFor[float64]()
	}
	return reflect.TypeFor[uintptr]()
}

func toReflect(t ValueType, v uint64) reflect.Value {
	switch t {
	case TypeI32:
		return reflect.ValueOf(AsI32(v))
	case TypeI64:
		return reflect.ValueOf(AsI64(v))
	case TypeF32:
		return reflect.ValueOf(AsF32(v))
	case TypeF64:
		return reflect.ValueOf(AsF64(v))
	}
	return reflect.ValueOf(uintptr(v))
}

func fromReflect(t ValueType, v reflect.Value) uint64 {
	switch t {
	case TypeI32:
		return I32(int32(v.Int()))
	case TypeI64:
		return I64(v.Int())
	case TypeF32:
		return uint64(math.Float32bits(float32(v.Float())))
	case TypeF64:
		return math.Float64bits(v.Float())
	}
	return uint64(v.Uint())
}

// narrow drops the undefined upper half of a 32-bit register result.
func narrow(t ValueType, v uint64) uint64 {
	if t == TypeI32 {
		return uint64(uint32(v))
	}
	return v
}

var _ Invoker = (*Native)(nil)
