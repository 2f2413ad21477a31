package invoke

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/memview"
	"github.com/wippyai/memview/errors"
)

// Wazero dispatches to guest functions. An address is a function index
// chosen by whoever binds it, matching how wasm code stores function
// references as table indices.
type Wazero struct {
	fns map[memview.Address]api.Function
	mu  sync.RWMutex
}

// NewWazero creates an empty wazero invoker.
func NewWazero() *Wazero {
	return &Wazero{fns: make(map[memview.Address]api.Function)}
}

// Bind makes fn callable at index.
func (w *Wazero) Bind(index memview.Address, fn api.Function) {
	w.mu.Lock()
	w.fns[index] = fn
	w.mu.Unlock()
	Logger().Debug("bound wasm function",
		zap.Stringer("index", index),
		zap.String("name", fn.Definition().Name()))
}

// BindExport binds the named export of mod at index.
func (w *Wazero) BindExport(index memview.Address, mod api.Module, name string) error {
	fn := mod.ExportedFunction(name)
	if fn == nil {
		return errors.NotFound(errors.PhaseLoad, "exported function", name)
	}
	w.Bind(index, fn)
	return nil
}

func (w *Wazero) Supports(c Convention) bool { return c == Wasm }

func (w *Wazero) Invoke(ctx context.Context, addr memview.Address, sig Signature, args []uint64) ([]uint64, error) {
	w.mu.RLock()
	fn, ok := w.fns[addr]
	w.mu.RUnlock()
	if !ok {
		return nil, errors.NotFound(errors.PhaseInvoke, "wasm function", addr.String())
	}
	def := fn.Definition()
	if !sameTypes(sig.Params, def.ParamTypes()) || !sameTypes(sig.Results, def.ResultTypes()) {
		return nil, errors.New(errors.PhaseInvoke, errors.KindTypeMismatch).
			GoType(sig.String()).
			Layout(def.Name()).
			Detail("signature does not match the guest function").
			Build()
	}
	results, err := fn.Call(ctx, args...)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseInvoke, errors.KindInvalidInput, err, "call "+def.Name())
	}
	return results, nil
}

func sameTypes(want []ValueType, got []api.ValueType) bool {
	if len(want) != len(got) {
		return false
	}
	for i, t := range want {
		if t.Wasm() != got[i] {
			return false
		}
	}
	return true
}

var _ Invoker = (*Wazero)(nil)

// WasmSignature derives a Signature from a guest function definition.
// Reference types have no slot representation and are rejected.
func WasmSignature(def api.FunctionDefinition) (Signature, error) {
	sig := Signature{Convention: Wasm}
	var err error
	if sig.Params, err = fromWasm(def.Name(), def.ParamTypes()); err != nil {
		return Signature{}, err
	}
	if sig.Results, err = fromWasm(def.Name(), def.ResultTypes()); err != nil {
		return Signature{}, err
	}
	return sig, nil
}

func fromWasm(name string, types []api.ValueType) ([]ValueType, error) {
	out := make([]ValueType, len(types))
	for i, t := range types {
		switch t {
		case api.ValueTypeI32:
			out[i] = TypeI32
		case api.ValueTypeI64:
			out[i] = TypeI64
		case api.ValueTypeF32:
			out[i] = TypeF32
		case api.ValueTypeF64:
			out[i] = TypeF64
		default:
			return nil, errors.New(errors.PhaseDeclare, errors.KindUnsupportedKind).
				Layout(name).
				GoType(api.ValueTypeName(t)).
				Detail("value type has no slot representation").
				Build()
		}
	}
	return out, nil
}
