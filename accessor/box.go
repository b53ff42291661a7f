package accessor

import (
	"reflect"
	"unsafe"

	internalreflect "github.com/goccy/unreflect/internal/reflect"
)

type loadFunc func(p unsafe.Pointer) any

type storeFunc func(p unsafe.Pointer, v any) error

// loader returns a function boxing the value of type t stored at p.
func loader(t reflect.Type) loadFunc {
	if internalreflect.IsBuiltin(t) {
		switch t.Kind() {
		case reflect.Bool:
			return func(p unsafe.Pointer) any { return *(*bool)(p) }
		case reflect.Int:
			return func(p unsafe.Pointer) any { return *(*int)(p) }
		case reflect.Int8:
			return func(p unsafe.Pointer) any { return *(*int8)(p) }
		case reflect.Int16:
			return func(p unsafe.Pointer) any { return *(*int16)(p) }
		case reflect.Int32:
			return func(p unsafe.Pointer) any { return *(*int32)(p) }
		case reflect.Int64:
			return func(p unsafe.Pointer) any { return *(*int64)(p) }
		case reflect.Uint:
			return func(p unsafe.Pointer) any { return *(*uint)(p) }
		case reflect.Uint8:
			return func(p unsafe.Pointer) any { return *(*uint8)(p) }
		case reflect.Uint16:
			return func(p unsafe.Pointer) any { return *(*uint16)(p) }
		case reflect.Uint32:
			return func(p unsafe.Pointer) any { return *(*uint32)(p) }
		case reflect.Uint64:
			return func(p unsafe.Pointer) any { return *(*uint64)(p) }
		case reflect.Uintptr:
			return func(p unsafe.Pointer) any { return *(*uintptr)(p) }
		case reflect.Float32:
			return func(p unsafe.Pointer) any { return *(*float32)(p) }
		case reflect.Float64:
			return func(p unsafe.Pointer) any { return *(*float64)(p) }
		case reflect.Complex64:
			return func(p unsafe.Pointer) any { return *(*complex64)(p) }
		case reflect.Complex128:
			return func(p unsafe.Pointer) any { return *(*complex128)(p) }
		case reflect.String:
			return func(p unsafe.Pointer) any { return *(*string)(p) }
		case reflect.UnsafePointer:
			return func(p unsafe.Pointer) any { return *(*unsafe.Pointer)(p) }
		}
	}
	switch t.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		word := internalreflect.TypeWord(t)
		return func(p unsafe.Pointer) any {
			return internalreflect.Pack(word, *(*unsafe.Pointer)(p))
		}
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return func(p unsafe.Pointer) any { return *(*any)(p) }
		}
	}
	return func(p unsafe.Pointer) any {
		return reflect.NewAt(t, p).Elem().Interface()
	}
}

// storer returns a function unboxing v into the value of type t stored at p.
// Values that are not exactly of type t go through the shared narrowing rules.
func storer(t reflect.Type) storeFunc {
	slow := func(p unsafe.Pointer, v any) error {
		rv, err := internalreflect.Narrow(v, t)
		if err != nil {
			return err
		}
		reflect.NewAt(t, p).Elem().Set(rv)
		return nil
	}
	if internalreflect.IsBuiltin(t) {
		switch t.Kind() {
		case reflect.Bool:
			return typedStorer[bool](slow)
		case reflect.Int:
			return typedStorer[int](slow)
		case reflect.Int8:
			return typedStorer[int8](slow)
		case reflect.Int16:
			return typedStorer[int16](slow)
		case reflect.Int32:
			return typedStorer[int32](slow)
		case reflect.Int64:
			return typedStorer[int64](slow)
		case reflect.Uint:
			return typedStorer[uint](slow)
		case reflect.Uint8:
			return typedStorer[uint8](slow)
		case reflect.Uint16:
			return typedStorer[uint16](slow)
		case reflect.Uint32:
			return typedStorer[uint32](slow)
		case reflect.Uint64:
			return typedStorer[uint64](slow)
		case reflect.Uintptr:
			return typedStorer[uintptr](slow)
		case reflect.Float32:
			return typedStorer[float32](slow)
		case reflect.Float64:
			return typedStorer[float64](slow)
		case reflect.Complex64:
			return typedStorer[complex64](slow)
		case reflect.Complex128:
			return typedStorer[complex128](slow)
		case reflect.String:
			return typedStorer[string](slow)
		case reflect.UnsafePointer:
			return typedStorer[unsafe.Pointer](slow)
		}
	}
	switch t.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func:
		word := internalreflect.TypeWord(t)
		return func(p unsafe.Pointer, v any) error {
			if v != nil && internalreflect.TypeWordOf(v) == word {
				*(*unsafe.Pointer)(p) = internalreflect.DataOf(v)
				return nil
			}
			return slow(p, v)
		}
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return func(p unsafe.Pointer, v any) error {
				*(*any)(p) = v
				return nil
			}
		}
	}
	return slow
}

func typedStorer[T any](slow storeFunc) storeFunc {
	return func(p unsafe.Pointer, v any) error {
		x, ok := v.(T)
		if !ok {
			return slow(p, v)
		}
		*(*T)(p) = x
		return nil
	}
}
