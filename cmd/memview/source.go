package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/memview"
	"github.com/wippyai/memview/invoke"
	"github.com/wippyai/memview/memory"
	"github.com/wippyai/memview/module"
	"github.com/wippyai/memview/resolve"
	"github.com/wippyai/memview/view"
)

// caller runs the function named by name with textual arguments.
type caller func(ctx context.Context, name string, args []string) ([]string, error)

// target is an opened memory source with the object view to overlay.
type target struct {
	mem     memview.Memory
	root    view.View
	call    caller
	closers []func() error
}

func (t *target) Close() error {
	var err error
	for i := len(t.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, t.closers[i]())
	}
	t.closers = nil
	return err
}

func openTarget(ctx context.Context, cfg Config, log *zap.Logger) (*target, error) {
	var (
		t   *target
		err error
	)
	switch cfg.Source {
	case sourceDump:
		t, err = openDump(cfg)
	case sourceWasm:
		t, err = openWasm(ctx, cfg)
	case sourcePID:
		t, err = openPID(cfg)
	case sourceSelf:
		t = &target{mem: memory.Native(), call: nativeCaller}
	default:
		err = fmt.Errorf("unknown source %q", cfg.Source)
	}
	if err != nil {
		return nil, err
	}

	base, _ := parseAddress("base", cfg.Base)
	if cfg.Module == "" {
		t.root = view.Cast(t.mem, base)
	} else {
		anchor, ok := module.Get(cfg.Module)
		if !ok {
			return nil, multierr.Append(fmt.Errorf("module %s is not loaded", cfg.Module), t.Close())
		}
		t.root = anchor.Offset(int64(base))
	}
	log.Debug("opened source",
		zap.String("source", cfg.Source),
		zap.String("module", cfg.Module),
		zap.Stringer("object", t.root.AddressOfObject()))
	return t, nil
}

func openWasm(ctx context.Context, cfg Config) (*target, error) {
	data, err := os.ReadFile(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("read wasm: %w", err)
	}
	name := cfg.Module
	if name == "" {
		name = "guest"
	}
	inst, err := memory.InstantiateWasm(ctx, data, memory.WasmConfig{
		Name:             name,
		MemoryLimitPages: cfg.MemoryLimitPages,
	})
	if err != nil {
		return nil, err
	}
	module.Use(module.NewWazero(inst.Runtime, ""))
	return &target{
		mem:     inst.Memory,
		call:    wasmCaller(inst.Module),
		closers: []func() error{func() error { return inst.Close(ctx) }},
	}, nil
}

func wasmCaller(mod api.Module) caller {
	inv := invoke.NewWazero()
	return func(ctx context.Context, name string, args []string) ([]string, error) {
		fn := mod.ExportedFunction(name)
		if fn == nil {
			return nil, fmt.Errorf("no exported function %q", name)
		}
		sig, err := invoke.WasmSignature(fn.Definition())
		if err != nil {
			return nil, err
		}
		index := memview.Address(fn.Definition().Index())
		inv.Bind(index, fn)
		f, err := invoke.NewFunction(inv, resolve.Absolute(index), sig)
		if err != nil {
			return nil, err
		}
		return callWith(ctx, f, args)
	}
}

// nativeCaller calls library:symbol in this process. Every argument and
// the result are treated as integers.
func nativeCaller(ctx context.Context, name string, args []string) ([]string, error) {
	lib, sym, ok := strings.Cut(name, ":")
	if !ok {
		return nil, fmt.Errorf("native call %q must be library:symbol", name)
	}
	addr, err := invoke.Symbol(lib, sym)
	if err != nil {
		return nil, err
	}
	sig := invoke.Signature{Convention: invoke.Platform(), Results: []invoke.ValueType{invoke.TypeI64}}
	for range args {
		sig.Params = append(sig.Params, invoke.TypeI64)
	}
	f, err := invoke.NewFunction(invoke.NewNative(), resolve.Absolute(addr), sig)
	if err != nil {
		return nil, err
	}
	return callWith(ctx, f, args)
}

func callWith(ctx context.Context, f *invoke.Function, args []string) ([]string, error) {
	sig := f.Signature()
	if len(args) != len(sig.Params) {
		return nil, fmt.Errorf("%s takes %d arguments, got %d", sig, len(sig.Params), len(args))
	}
	slots := make([]uint64, len(args))
	for i, a := range args {
		s, err := encodeArg(sig.Params[i], a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		slots[i] = s
	}
	out, err := f.Call(ctx, slots...)
	if err != nil {
		return nil, err
	}
	results := make([]string, len(out))
	for i, r := range out {
		results[i] = decodeResult(sig.Results[i], r)
	}
	return results, nil
}

func encodeArg(t invoke.ValueType, s string) (uint64, error) {
	switch t {
	case invoke.TypeI32:
		v, err := strconv.ParseInt(s, 0, 32)
		return invoke.I32(int32(v)), err
	case invoke.TypeF32:
		v, err := strconv.ParseFloat(s, 32)
		return invoke.F32(float32(v)), err
	case invoke.TypeF64:
		v, err := strconv.ParseFloat(s, 64)
		return invoke.F64(v), err
	case invoke.TypePtr:
		v, err := strconv.ParseUint(s, 0, 64)
		return v, err
	}
	v, err := strconv.ParseInt(s, 0, 64)
	return invoke.I64(v), err
}

func decodeResult(t invoke.ValueType, v uint64) string {
	switch t {
	case invoke.TypeI32:
		return strconv.FormatInt(int64(invoke.AsI32(v)), 10)
	case invoke.TypeF32:
		return strconv.FormatFloat(float64(invoke.AsF32(v)), 'g', -1, 32)
	case invoke.TypeF64:
		return strconv.FormatFloat(invoke.AsF64(v), 'g', -1, 64)
	case invoke.TypePtr:
		return invoke.AsPtr(v).String()
	}
	return strconv.FormatInt(invoke.AsI64(v), 10)
}
