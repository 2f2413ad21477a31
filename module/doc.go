// Package module finds the base address of a loaded module by name.
//
// A Locator answers one question: where is module name mapped, and in
// which memory? The answer is a view anchored at the module base, from
// which offset resolvers reach globals:
//
//	base, ok := module.Get("test.so")
//	if !ok {
//		return errNotLoaded
//	}
//	counter := view.NewSigned[int32](base, resolve.Offset(0x20))
//
// Get consults the default chain: modules registered explicitly with
// Register first, then the current process's memory map on Linux.
// Absence is reported by the boolean, never by an error.
package module
