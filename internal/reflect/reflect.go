package reflect

import (
	"reflect"
	"unsafe"
)

// emptyInterface is the runtime layout of an `any` value.
type emptyInterface struct {
	typ  unsafe.Pointer
	data unsafe.Pointer
}

func efaceOf(v *any) *emptyInterface {
	return (*emptyInterface)(unsafe.Pointer(v))
}

// TypeWord returns the runtime type pointer stored in the first word of an
// interface holding a value of type t.
func TypeWord(t reflect.Type) unsafe.Pointer {
	v := reflect.Zero(t).Interface()
	return efaceOf(&v).typ
}

// TypeWordOf returns the runtime type pointer of v's dynamic type.
func TypeWordOf(v any) unsafe.Pointer {
	return efaceOf(&v).typ
}

// DataOf returns the data word of v.
func DataOf(v any) unsafe.Pointer {
	return efaceOf(&v).data
}

// Pack builds an interface value from a type word and a data word.
// It is only valid for pointer-shaped types, whose data word is the value itself.
func Pack(typ, data unsafe.Pointer) any {
	var v any
	e := efaceOf(&v)
	e.typ = typ
	e.data = data
	return v
}

// IsPointerShaped reports whether values of kind k are stored directly in
// the data word of an interface.
func IsPointerShaped(k reflect.Kind) bool {
	switch k {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return true
	}
	return false
}

func IsNillable(k reflect.Kind) bool {
	switch k {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface, reflect.UnsafePointer:
		return true
	}
	return false
}

func IsPrimitive(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

var builtinTypes = map[reflect.Kind]reflect.Type{
	reflect.Bool:          reflect.TypeFor[bool](),
	reflect.Int:           reflect.TypeFor[int](),
	reflect.Int8:          reflect.TypeFor[int8](),
	reflect.Int16:         reflect.TypeFor[int16](),
	reflect.Int32:         reflect.TypeFor[int32](),
	reflect.Int64:         reflect.TypeFor[int64](),
	reflect.Uint:          reflect.TypeFor[uint](),
	reflect.Uint8:         reflect.TypeFor[uint8](),
	reflect.Uint16:        reflect.TypeFor[uint16](),
	reflect.Uint32:        reflect.TypeFor[uint32](),
	reflect.Uint64:        reflect.TypeFor[uint64](),
	reflect.Uintptr:       reflect.TypeFor[uintptr](),
	reflect.Float32:       reflect.TypeFor[float32](),
	reflect.Float64:       reflect.TypeFor[float64](),
	reflect.Complex64:     reflect.TypeFor[complex64](),
	reflect.Complex128:    reflect.TypeFor[complex128](),
	reflect.String:        reflect.TypeFor[string](),
	reflect.UnsafePointer: reflect.TypeFor[unsafe.Pointer](),
}

// IsBuiltin reports whether t is the predeclared type of its kind
// (int rather than a named type whose underlying type is int).
func IsBuiltin(t reflect.Type) bool {
	b, ok := builtinTypes[t.Kind()]
	return ok && b == t
}

// ForceAccessible returns a settable view of v, dropping the read-only flag
// reflect attaches to values reached through unexported fields.
// v must be addressable.
func ForceAccessible(v reflect.Value) (reflect.Value, bool) {
	if v.CanSet() {
		return v, true
	}
	if !v.CanAddr() {
		return v, false
	}
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem(), true
}
