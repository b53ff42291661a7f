package reflect

import (
	"reflect"

	"github.com/goccy/unreflect/internal/errs"
)

var errorType = reflect.TypeFor[error]()

// Call invokes fn, turning a panic into an error.
func Call(fn reflect.Value, in []reflect.Value, variadic bool) (out []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.Panic(r)
		}
	}()
	if variadic {
		return fn.CallSlice(in), nil
	}
	return fn.Call(in), nil
}

// Results boxes the results of a call. A trailing error result is split off
// and returned as the error. Zero remaining results box to nil, one to its
// value and more to a []any.
func Results(fnType reflect.Type, out []reflect.Value) (any, error) {
	if n := fnType.NumOut(); n > 0 && fnType.Out(n-1) == errorType {
		last := out[len(out)-1]
		out = out[:len(out)-1]
		if !last.IsNil() {
			return nil, last.Interface().(error)
		}
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return Interface(out[0]), nil
	}
	values := make([]any, len(out))
	for i, v := range out {
		values[i] = Interface(v)
	}
	return values, nil
}

// Interface is v.Interface() that also works on values reached through
// unexported fields.
func Interface(v reflect.Value) any {
	if v.CanInterface() {
		return v.Interface()
	}
	if accessible, ok := ForceAccessible(v); ok {
		return accessible.Interface()
	}
	return nil
}

// Receiver narrows instance to the receiver type of a method.
func Receiver(instance any, recv reflect.Type) (reflect.Value, error) {
	if instance == nil {
		return reflect.Value{}, errs.TypeMismatch("", "no receiver bound for %s", recv)
	}
	return Narrow(instance, recv)
}

// MethodOf returns the method name of instance's dynamic type, bound to instance.
func MethodOf(instance any, name string) (reflect.Value, error) {
	if instance == nil {
		return reflect.Value{}, errs.TypeMismatch("", "no receiver bound")
	}
	m := reflect.ValueOf(instance).MethodByName(name)
	if !m.IsValid() {
		return reflect.Value{}, errs.TypeMismatch("", "%T has no method %s", instance, name)
	}
	return m, nil
}
