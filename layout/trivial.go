package layout

import (
	"reflect"

	"github.com/wippyai/memview/errors"
)

// CheckTrivial reports whether values of t can be moved by copying their
// bytes into foreign memory. Go pointers, strings, slices, maps, channels,
// funcs and interfaces are rejected anywhere inside t; foreign addresses
// belong in uintptr or fixed-width integer fields.
func CheckTrivial(t reflect.Type) error {
	return checkTrivial([]string{t.String()}, t, t)
}

func checkTrivial(path []string, root, t reflect.Type) error {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return nil
	case reflect.Array:
		return checkTrivial(append(path, "[]"), root, t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if err := checkTrivial(append(path, f.Name), root, f.Type); err != nil {
				return err
			}
		}
		return nil
	default:
		member := path[len(path)-1]
		if len(path) == 1 {
			member = t.Kind().String()
		}
		return errors.NonTrivial(path, root.String(), member+" ("+t.Kind().String()+")")
	}
}

// ScalarFor maps a Go basic kind to its scalar, if it has one.
func ScalarFor(k reflect.Kind, ptrSize uint64) (Scalar, bool) {
	switch k {
	case reflect.Bool:
		return Bool, true
	case reflect.Int8:
		return I8, true
	case reflect.Uint8:
		return U8, true
	case reflect.Int16:
		return I16, true
	case reflect.Uint16:
		return U16, true
	case reflect.Int32:
		return I32, true
	case reflect.Uint32:
		return U32, true
	case reflect.Int64:
		return I64, true
	case reflect.Uint64:
		return U64, true
	case reflect.Float32:
		return F32, true
	case reflect.Float64:
		return F64, true
	case reflect.Uintptr:
		return USize, true
	case reflect.Int:
		if ptrSize == 4 {
			return I32, true
		}
		return I64, true
	case reflect.Uint:
		if ptrSize == 4 {
			return U32, true
		}
		return U64, true
	}
	return 0, false
}
