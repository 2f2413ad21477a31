// Package layout describes the byte images that views overlay.
//
// A Layout has a name, a size, an alignment, a Capabilities record and a
// list of fields at fixed offsets. Field types come from a closed taxonomy:
// scalars, trivially copyable aggregates, pointers, fixed arrays and
// embedded views. Unsized arrays, right-hand references and arrays of views
// are rejected when a field is declared, never when it is accessed.
//
// Layouts can be written by hand with New and AddField, computed with a
// Builder that assigns naturally aligned sequential offsets, read from YAML
// descriptor files, or derived from WIT type definitions using the
// component model canonical ABI.
//
//	pointer_size: 8
//	layouts:
//	  - name: Vec3
//	    kind: aggregate
//	    fields:
//	      - {name: x, type: f32}
//	      - {name: y, type: f32}
//	      - {name: z, type: f32}
//	  - name: Player
//	    size: 0x40
//	    fields:
//	      - {name: health, type: i32, offset: 0x20}
//	      - {name: pos, type: Vec3}
//	      - {name: target, type: "*Player"}
package layout
