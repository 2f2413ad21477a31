// Package view overlays typed fields on foreign memory.
//
// A View is a memory plus an address. Fields hang off a parent view through
// a resolve.Resolver and recompute their address on every access. The Go
// type of a field fixes its contract:
//
//	Signed[T]    integer arithmetic, bitwise operations, Neg, Compare
//	Unsigned[T]  as Signed without Neg
//	Float[T]     arithmetic and Compare, no bitwise operations
//	Bool         Get, Set, Toggle
//	Aggregate[T] trivially copyable struct: Get, Set, Update, Ref
//	Value[T]     raw accessor for any of the above
//	Pointer[T]   stored address, element access, arithmetic
//	ViewPtr[W]   pointer to a wrapped layout, yields Weak[W]
//	Array[T]     fixed-length run of T
//	Nested[W]    wrapped layout embedded in place, yields Weak[W]
//
// Declaring a wrapper:
//
//	type Node struct {
//	    view.View
//	    Value view.Signed[int32]
//	    Next  view.ViewPtr[Node]
//	}
//
//	var nodes *view.Class[Node]
//
//	func init() {
//	    nodes = view.MustDeclare(layout.MustNew("Node", 16, 8), func(v view.View) Node {
//	        return Node{
//	            View:  v,
//	            Value: view.NewSigned[int32](v, resolve.Offset(0)),
//	            Next:  view.NewViewPtr(v, resolve.Offset(8), nodes),
//	        }
//	    })
//	}
//
// Class.Cast yields the strong wrapper. Nested fields and view pointers
// yield Weak views, whose size is the layout size and whose identity is
// the foreign address; ToStrong converts back.
//
// Class.Instantiate allocates storage from a memview.Arena and runs the
// construct hook registered with WithConstruct. Instance.Close runs the
// destruct hook and frees the storage once.
//
// Object and Member offer the same access driven by a layout.Layout
// loaded at runtime.
package view
