// Package memview overlays typed, named views on foreign memory.
//
// A caller that knows the byte layout of memory it does not own (a
// reverse-engineered structure, a loaded module, an injected process, a
// WebAssembly instance) describes that layout as fields and callable entry
// points. Nothing is copied: every field access recomputes its address from a
// base and reads or writes the foreign bytes directly.
//
// # Architecture Overview
//
//	memview/          Root package with Address, Memory and Allocator
//	├── resolve/      Address resolvers: offset, absolute, vtable slot, pointer chain
//	├── layout/       Layout descriptors, field kind taxonomy, WIT and YAML import
//	├── memory/       Memory backends: native, sparse space, wazero, mmap, remote process
//	├── view/         Views, typed fields, weak/strong duality, instances, dynamic objects
//	├── invoke/       Calling conventions and function, member and virtual call views
//	├── module/       Loaded module lookup
//	├── errors/       Structured error types
//	└── cmd/memview/  Layout inspection CLI
//
// # Quick Start
//
//	type Player struct {
//	    view.View
//	    Health view.Signed[int32]
//	    Pos    view.Aggregate[Vec3]
//	}
//
//	var players = view.MustDeclare(layout.MustNew("Player", 0x40, 8),
//	    func(v view.View) Player {
//	        return Player{
//	            View:   v,
//	            Health: view.NewSigned[int32](v, resolve.Offset(0x10)),
//	            Pos:    view.MustAggregate[Vec3](v, resolve.Offset(0x20)),
//	        }
//	    })
//
//	p := players.Cast(memory.Native(), addr)
//	hp, _ := p.Health.Get()
//
// # Safety
//
// Views trust their declarations completely. An address that does not map to
// readable memory faults on the native backend and returns an error on
// backends that bounds-check (wazero, sparse space). Reproducing a layout
// precisely is the caller's responsibility.
//
// # Thread Safety
//
// Views and fields perform no locking. Concurrent access to the same foreign
// region must be serialized by the caller.
package memview
