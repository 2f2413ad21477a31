package view

import (
	"encoding/binary"
	"math"
	"reflect"
	"unsafe"

	"github.com/wippyai/memview"
	"github.com/wippyai/memview/errors"
	"github.com/wippyai/memview/layout"
)

// SignedInt is the set of fixed-width signed integers fields can hold.
type SignedInt interface {
	~int8 | ~int16 | ~int32 | ~int64
}

// UnsignedInt is the set of fixed-width unsigned integers fields can hold.
type UnsignedInt interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Integer is any fixed-width integer.
type Integer interface {
	SignedInt | UnsignedInt
}

// FloatNum is any IEEE 754 float.
type FloatNum interface {
	~float32 | ~float64
}

// codec moves one T across foreign bytes.
type codec[T any] struct {
	decode func(b []byte, order binary.ByteOrder) T
	encode func(v T, b []byte, order binary.ByteOrder)
	size   uint64
}

func getUint(b []byte, order binary.ByteOrder) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(order.Uint16(b))
	case 4:
		return uint64(order.Uint32(b))
	case 8:
		return order.Uint64(b)
	}
	return 0
}

func putUint(b []byte, order binary.ByteOrder, v uint64) {
	switch len(b) {
	case 1:
		b[0] = byte(v)
	case 2:
		order.PutUint16(b, uint16(v))
	case 4:
		order.PutUint32(b, uint32(v))
	case 8:
		order.PutUint64(b, v)
	}
}

func signExtend(v uint64, size uint64) int64 {
	shift := 64 - 8*size
	return int64(v<<shift) >> shift
}

func intCodec[T Integer]() codec[T] {
	var zero T
	return codec[T]{
		size: uint64(unsafe.Sizeof(zero)),
		decode: func(b []byte, order binary.ByteOrder) T {
			return T(getUint(b, order))
		},
		encode: func(v T, b []byte, order binary.ByteOrder) {
			putUint(b, order, uint64(v))
		},
	}
}

func floatCodec[T FloatNum]() codec[T] {
	var zero T
	size := uint64(unsafe.Sizeof(zero))
	return codec[T]{
		size: size,
		decode: func(b []byte, order binary.ByteOrder) T {
			if size == 4 {
				return T(math.Float32frombits(uint32(getUint(b, order))))
			}
			return T(math.Float64frombits(getUint(b, order)))
		},
		encode: func(v T, b []byte, order binary.ByteOrder) {
			if size == 4 {
				putUint(b, order, uint64(math.Float32bits(float32(v))))
				return
			}
			putUint(b, order, math.Float64bits(float64(v)))
		},
	}
}

var boolCodec = codec[bool]{
	size: 1,
	decode: func(b []byte, _ binary.ByteOrder) bool {
		return b[0] != 0
	},
	encode: func(v bool, b []byte, _ binary.ByteOrder) {
		if v {
			b[0] = 1
		} else {
			b[0] = 0
		}
	},
}

// rawCodec copies the Go representation byte for byte.
func rawCodec[T any]() codec[T] {
	var zero T
	size := uint64(unsafe.Sizeof(zero))
	return codec[T]{
		size: size,
		decode: func(b []byte, _ binary.ByteOrder) T {
			var v T
			copy(unsafe.Slice((*byte)(unsafe.Pointer(&v)), size), b)
			return v
		},
		encode: func(v T, b []byte, _ binary.ByteOrder) {
			copy(b, unsafe.Slice((*byte)(unsafe.Pointer(&v)), size))
		},
	}
}

// reflectCodec handles scalars whose Go type is only known at runtime,
// honoring the memory's byte order. size is the foreign width, which for
// int, uint and uintptr follows the memory rather than the host.
func reflectCodec[T any](rt reflect.Type, size uint64) codec[T] {
	return codec[T]{
		size: size,
		decode: func(b []byte, order binary.ByteOrder) T {
			var v T
			rv := reflect.ValueOf(&v).Elem()
			u := getUint(b, order)
			switch rt.Kind() {
			case reflect.Bool:
				rv.SetBool(u != 0)
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
				rv.SetInt(signExtend(u, size))
			case reflect.Float32:
				rv.SetFloat(float64(math.Float32frombits(uint32(u))))
			case reflect.Float64:
				rv.SetFloat(math.Float64frombits(u))
			default:
				rv.SetUint(u)
			}
			return v
		},
		encode: func(v T, b []byte, order binary.ByteOrder) {
			rv := reflect.ValueOf(&v).Elem()
			var u uint64
			switch rt.Kind() {
			case reflect.Bool:
				if rv.Bool() {
					u = 1
				}
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
				u = uint64(rv.Int())
			case reflect.Float32:
				u = uint64(math.Float32bits(float32(rv.Float())))
			case reflect.Float64:
				u = math.Float64bits(rv.Float())
			default:
				u = rv.Uint()
			}
			putUint(b, order, u)
		},
	}
}

var viewerType = reflect.TypeOf((*interface {
	AddressOfObject() memview.Address
})(nil)).Elem()

// isViewType reports whether t is a view or a type built on one.
func isViewType(t reflect.Type) bool {
	return t.Implements(viewerType) || reflect.PointerTo(t).Implements(viewerType)
}

// pointerSize is the pointer width of the memory v overlays.
func pointerSize(v View) uint64 {
	if v.mem == nil {
		return uint64(unsafe.Sizeof(uintptr(0)))
	}
	return v.mem.PointerSize()
}

// codecFor picks the codec for an arbitrary trivially copyable T laid out
// in a memory with the given pointer width.
func codecFor[T any](path []string, ptrSize uint64) (codec[T], error) {
	rt := reflect.TypeFor[T]()
	if isViewType(rt) {
		return codec[T]{}, errors.UnsupportedKind(path, rt.String(), "views are accessed through Nested or ViewPtr fields")
	}
	if s, ok := layout.ScalarFor(rt.Kind(), ptrSize); ok {
		return reflectCodec[T](rt, s.Size(ptrSize)), nil
	}
	if err := layout.CheckTrivial(rt); err != nil {
		return codec[T]{}, err
	}
	return rawCodec[T](), nil
}
