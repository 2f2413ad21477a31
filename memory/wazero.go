package memory

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/memview"
	"github.com/wippyai/memview/errors"
)

// Wazero adapts a wazero api.Memory (wasm32 linear memory) to memview.Memory.
type Wazero struct {
	Mem api.Memory
}

// WrapWazero wraps a wazero linear memory.
func WrapWazero(mem api.Memory) *Wazero {
	if mem == nil {
		return nil
	}
	return &Wazero{Mem: mem}
}

func fits32(addr memview.Address, length uint64) bool {
	return uint64(addr) <= math.MaxUint32 && length <= math.MaxUint32-uint64(addr)
}

// Read copies bytes out of linear memory.
func (m *Wazero) Read(addr memview.Address, length uint64) ([]byte, error) {
	if !fits32(addr, length) {
		return nil, errors.AddressOutOfBounds(errors.PhaseAccess, uint64(addr), length)
	}
	data, ok := m.Mem.Read(uint32(addr), uint32(length))
	if !ok {
		return nil, errors.AddressOutOfBounds(errors.PhaseAccess, uint64(addr), length)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Write writes bytes to linear memory.
func (m *Wazero) Write(addr memview.Address, data []byte) error {
	if !fits32(addr, uint64(len(data))) || !m.Mem.Write(uint32(addr), data) {
		return errors.AddressOutOfBounds(errors.PhaseAccess, uint64(addr), uint64(len(data)))
	}
	return nil
}

func (m *Wazero) PointerSize() uint64 { return 4 }

func (m *Wazero) ByteOrder() binary.ByteOrder { return binary.LittleEndian }

// Size returns the current size of linear memory in bytes.
func (m *Wazero) Size() uint32 { return m.Mem.Size() }

// WazeroAllocator adapts a guest cabi_realloc export to memview.Allocator.
type WazeroAllocator struct {
	Ctx context.Context
	Fn  api.Function
}

// WrapAllocator wraps a guest realloc function.
func WrapAllocator(ctx context.Context, fn api.Function) *WazeroAllocator {
	if fn == nil {
		return nil
	}
	return &WazeroAllocator{Ctx: ctx, Fn: fn}
}

// Alloc allocates guest memory using cabi_realloc(0, 0, align, size).
func (a *WazeroAllocator) Alloc(size, align uint64) (memview.Address, error) {
	results, err := a.Fn.Call(a.Ctx, 0, 0, align, size)
	if err != nil {
		return 0, errors.AllocationFailed(errors.PhaseAccess, size, align, err)
	}
	if len(results) == 0 {
		return 0, errors.AllocationFailed(errors.PhaseAccess, size, align, nil)
	}
	return memview.Address(uint32(results[0])), nil
}

// Free deallocates guest memory using cabi_realloc(ptr, size, align, 0).
func (a *WazeroAllocator) Free(addr memview.Address, size, align uint64) error {
	if _, err := a.Fn.Call(a.Ctx, uint64(addr), size, align, 0); err != nil {
		return errors.Wrap(errors.PhaseAccess, errors.KindAllocation, err, "guest free")
	}
	return nil
}

// WasmConfig configures InstantiateWasm.
type WasmConfig struct {
	// Name of the module instance. Empty lets wazero pick one.
	Name string

	// MemoryName is the exported memory to overlay. Defaults to "memory".
	MemoryName string

	// AllocName is an optional realloc export. Defaults to "cabi_realloc".
	AllocName string

	// MemoryLimitPages caps linear memory in 64KiB pages. 0 keeps wazero's default.
	MemoryLimitPages uint32
}

// WasmInstance is a running wasm module whose linear memory can be overlaid.
// Allocator is nil when the module does not export a realloc function.
type WasmInstance struct {
	Runtime   wazero.Runtime
	Module    api.Module
	Memory    *Wazero
	Allocator *WazeroAllocator
}

// InstantiateWasm compiles and instantiates wasmBytes in a fresh runtime.
func InstantiateWasm(ctx context.Context, wasmBytes []byte, cfg WasmConfig) (*WasmInstance, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	compiled, err := rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, multierr.Append(errors.Load("compile wasm module", err), rt.Close(ctx))
	}

	modCfg := wazero.NewModuleConfig()
	if cfg.Name != "" {
		modCfg = modCfg.WithName(cfg.Name)
	}
	mod, err := rt.InstantiateModule(ctx, compiled, modCfg)
	if err != nil {
		return nil, multierr.Append(errors.Load("instantiate wasm module", err), rt.Close(ctx))
	}

	memName := cfg.MemoryName
	if memName == "" {
		memName = "memory"
	}
	mem := mod.ExportedMemory(memName)
	if mem == nil {
		return nil, multierr.Append(errors.NotFound(errors.PhaseLoad, "exported memory", memName), rt.Close(ctx))
	}

	allocName := cfg.AllocName
	if allocName == "" {
		allocName = "cabi_realloc"
	}

	Logger().Debug("instantiated wasm module",
		zap.String("module", mod.Name()),
		zap.Uint32("memory_bytes", mem.Size()))

	return &WasmInstance{
		Runtime:   rt,
		Module:    mod,
		Memory:    WrapWazero(mem),
		Allocator: WrapAllocator(ctx, mod.ExportedFunction(allocName)),
	}, nil
}

// Arena pairs the linear memory with the guest allocator. It returns nil
// when the module exports no allocator.
func (w *WasmInstance) Arena() memview.Arena {
	if w.Allocator == nil {
		return nil
	}
	return WithAllocator(w.Memory, w.Allocator)
}

// Close tears down the module and its runtime.
func (w *WasmInstance) Close(ctx context.Context) error {
	return multierr.Append(w.Module.Close(ctx), w.Runtime.Close(ctx))
}

var _ memview.Memory = (*Wazero)(nil)
