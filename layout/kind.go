package layout

// Kind is the closed field kind taxonomy. Each kind has its own access
// contract; KindUnsizedArray and KindRValueRef exist only so descriptors
// can name them and be rejected.
type Kind uint8

const (
	KindScalar Kind = iota
	KindAggregate
	KindPointer
	KindArray
	KindView
	KindUnsizedArray
	KindRValueRef
)

var kindNames = [...]string{
	KindScalar:       "scalar",
	KindAggregate:    "aggregate",
	KindPointer:      "pointer",
	KindArray:        "array",
	KindView:         "view",
	KindUnsizedArray: "unsized-array",
	KindRValueRef:    "rvalue-reference",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Supported reports whether fields of this kind can be declared.
func (k Kind) Supported() bool {
	return k <= KindView
}

// Scalar is an arithmetic or boolean value type.
type Scalar uint8

const (
	Bool Scalar = iota
	I8
	U8
	I16
	U16
	I32
	U32
	I64
	U64
	F32
	F64
	// USize is an unsigned integer as wide as a pointer of the target memory.
	USize
)

var scalarNames = [...]string{
	Bool:  "bool",
	I8:    "i8",
	U8:    "u8",
	I16:   "i16",
	U16:   "u16",
	I32:   "i32",
	U32:   "u32",
	I64:   "i64",
	U64:   "u64",
	F32:   "f32",
	F64:   "f64",
	USize: "usize",
}

func (s Scalar) String() string {
	if int(s) < len(scalarNames) {
		return scalarNames[s]
	}
	return "unknown"
}

// Size returns the byte size; USize needs the target pointer size.
func (s Scalar) Size(ptrSize uint64) uint64 {
	switch s {
	case Bool, I8, U8:
		return 1
	case I16, U16:
		return 2
	case I32, U32, F32:
		return 4
	case I64, U64, F64:
		return 8
	case USize:
		return ptrSize
	default:
		return 0
	}
}

func (s Scalar) IsFloat() bool { return s == F32 || s == F64 }

func (s Scalar) IsSigned() bool {
	switch s {
	case I8, I16, I32, I64:
		return true
	}
	return false
}

// Embed is the explicit weak/strong tag carried by view types.
type Embed uint8

const (
	// EmbedWeak marks a view whose bytes live in place, inside another
	// layout's byte image or at a pointer's target.
	EmbedWeak Embed = iota
	// EmbedStrong marks a handle that refers to bytes held elsewhere. It
	// is never part of a foreign layout.
	EmbedStrong
)

func (e Embed) String() string {
	if e == EmbedStrong {
		return "strong"
	}
	return "weak"
}
