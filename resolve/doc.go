// Package resolve provides the address resolution strategies fields and
// function views are bound to.
//
// Every field access calls its resolver again; nothing is cached, so a
// resolver always sees the current base and the current memory contents.
//
//	resolve.Offset(0x20)                  // base + 0x20
//	resolve.Absolute(0x7ff6_1000)         // fixed address, base ignored
//	resolve.VTableSlot{Index: 3}          // *(*(base + 0) + 3*ptrSize)
//	resolve.Chain{0x10, 0x8, 0x4}         // *(*(base+0x10)+0x8)+0x4
package resolve
