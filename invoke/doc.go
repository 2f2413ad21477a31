// Package invoke calls entry points found through resolvers.
//
// A Function pairs a resolver with a Signature and an Invoker. The
// signature carries the calling convention; declaring a function whose
// convention the invoker cannot honor fails immediately rather than at the
// first call. MemberFunction prepends its parent object's address, and
// NewVirtualFunction finds the entry point in the parent's vtable.
//
// Invokers:
//
//	Native  machine code in this process, via purego
//	Wazero  guest functions of a wazero module, addressed by index
//	Table   Go functions registered at addresses, for simulations and hooks
//
// Arguments and results are passed as uint64 slots; use I32, F64, Ptr and
// friends to encode them and AsI32, AsF64, AsPtr to decode.
package invoke
