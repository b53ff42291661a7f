package reflect

import (
	"reflect"
	"unsafe"

	"github.com/goccy/unreflect/internal/errs"
)

// Narrow converts v into a value assignable to t. Both the reflective and
// the compiled tiers use it so they accept and reject the same arguments.
//
// Rules, in order: nil becomes the zero value of a nillable t; assignable
// values are used as is; *T and T convert into each other; a struct value
// or pointer is narrowed to one of its embedded types.
func Narrow(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		if IsNillable(t.Kind()) {
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, errs.TypeMismatch("", "cannot use nil as %s", t)
	}
	return NarrowValue(reflect.ValueOf(v), t)
}

func NarrowValue(rv reflect.Value, t reflect.Type) (reflect.Value, error) {
	vt := rv.Type()
	if vt.AssignableTo(t) {
		return rv, nil
	}
	if vt.Kind() == reflect.Ptr && vt.Elem() == t {
		if rv.IsNil() {
			return reflect.Value{}, errs.TypeMismatch("", "cannot use nil %s as %s", vt, t)
		}
		return rv.Elem(), nil
	}
	if t.Kind() == reflect.Ptr && t.Elem() == vt {
		p := reflect.New(vt)
		p.Elem().Set(rv)
		return p, nil
	}
	if v, ok, err := narrowEmbedded(rv, t); ok || err != nil {
		return v, err
	}
	return reflect.Value{}, errs.TypeMismatch("", "cannot use %s as %s", vt, t)
}

func narrowEmbedded(rv reflect.Value, t reflect.Type) (reflect.Value, bool, error) {
	target := t
	if target.Kind() == reflect.Ptr {
		target = target.Elem()
	}
	root := rv
	if root.Kind() == reflect.Ptr {
		if root.Type().Elem().Kind() != reflect.Struct {
			return reflect.Value{}, false, nil
		}
		if root.IsNil() {
			return reflect.Value{}, false, errs.TypeMismatch("", "cannot use nil %s as %s", rv.Type(), t)
		}
		root = root.Elem()
	} else if root.Kind() == reflect.Struct {
		p := reflect.New(root.Type())
		p.Elem().Set(root)
		root = p.Elem()
	} else {
		return reflect.Value{}, false, nil
	}
	index, found := EmbedPath(root.Type(), target)
	if !found {
		return reflect.Value{}, false, nil
	}
	cur := root
	for _, i := range index {
		cur = cur.Field(i)
		if cur.Kind() == reflect.Ptr && cur.Type() != t {
			if cur.IsNil() {
				return reflect.Value{}, true, errs.TypeMismatch("", "nil embedded %s", cur.Type())
			}
			cur = cur.Elem()
		}
	}
	if cur.Type() == t {
		// embedded pointer that already has the requested type
		return reflect.NewAt(t, unsafe.Pointer(cur.UnsafeAddr())).Elem(), true, nil
	}
	accessible, _ := ForceAccessible(cur)
	if t.Kind() == reflect.Ptr {
		return accessible.Addr(), true, nil
	}
	return accessible, true, nil
}

// InstancePointer returns the address of the class value behind instance.
// Pointer instances are used in place. Value instances are copied, which is
// only allowed for reads.
func InstancePointer(instance any, class reflect.Type, write bool) (unsafe.Pointer, error) {
	if instance == nil {
		return nil, errs.TypeMismatch("", "nil instance of %s", class)
	}
	rv := reflect.ValueOf(instance)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, errs.TypeMismatch("", "nil instance of %s", class)
		}
		if rv.Type().Elem() == class {
			return rv.UnsafePointer(), nil
		}
		v, err := NarrowValue(rv, reflect.PointerTo(class))
		if err != nil {
			return nil, err
		}
		return v.UnsafePointer(), nil
	}
	if write {
		return nil, errs.Access("", "%s instance is not addressable, bind a pointer", rv.Type())
	}
	v, err := NarrowValue(rv, class)
	if err != nil {
		return nil, err
	}
	p := reflect.New(class)
	p.Elem().Set(v)
	return p.UnsafePointer(), nil
}
