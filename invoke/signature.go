package invoke

import (
	"math"
	"strings"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/memview"
)

// ValueType is the type of one parameter or result slot.
type ValueType uint8

const (
	TypeI32 ValueType = iota
	TypeI64
	TypeF32
	TypeF64
	TypePtr
)

var valueTypeNames = [...]string{
	TypeI32: "i32",
	TypeI64: "i64",
	TypeF32: "f32",
	TypeF64: "f64",
	TypePtr: "ptr",
}

func (t ValueType) String() string {
	if int(t) < len(valueTypeNames) {
		return valueTypeNames[t]
	}
	return "unknown"
}

// IsFloat reports whether the slot travels in a float register.
func (t ValueType) IsFloat() bool { return t == TypeF32 || t == TypeF64 }

// Wasm maps t to a wasm value type. Pointers are i32 in wasm32.
func (t ValueType) Wasm() api.ValueType {
	switch t {
	case TypeI64:
		return api.ValueTypeI64
	case TypeF32:
		return api.ValueTypeF32
	case TypeF64:
		return api.ValueTypeF64
	}
	return api.ValueTypeI32
}

// Signature describes a callable entry point.
type Signature struct {
	Params     []ValueType
	Results    []ValueType
	Convention Convention
}

func (s Signature) String() string {
	var b strings.Builder
	b.WriteString(s.Convention.String())
	b.WriteString(" (")
	for i, p := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteString(")")
	if len(s.Results) > 0 {
		b.WriteString(" -> ")
		for i, r := range s.Results {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(r.String())
		}
	}
	return b.String()
}

// withThis returns s with a leading pointer parameter.
func (s Signature) withThis() Signature {
	params := make([]ValueType, 0, len(s.Params)+1)
	params = append(params, TypePtr)
	params = append(params, s.Params...)
	return Signature{Params: params, Results: s.Results, Convention: s.Convention}
}

func (s Signature) hasFloats() bool {
	for _, p := range s.Params {
		if p.IsFloat() {
			return true
		}
	}
	for _, r := range s.Results {
		if r.IsFloat() {
			return true
		}
	}
	return false
}

// Slot encoders. Every argument and result travels as a uint64.

func I32(v int32) uint64 { return uint64(uint32(v)) }
func I64(v int64) uint64 { return uint64(v) }
func F32(v float32) uint64 { return uint64(math.Float32bits(v)) }
func F64(v float64) uint64 { return math.Float64bits(v) }
func Ptr(a memview.Address) uint64 { return uint64(a) }
func AsI32(u uint64) int32 { return int32(uint32(u)) }
func AsI64(u uint64) int64 { return int64(u) }
func AsF32(u uint64) float32 { return math.Float32frombits(uint32(u)) }
func AsF64(u uint64) float64 { return math.Float64frombits(u) }
func AsPtr(u uint64) memview.Address { return memview.Address(u) }
