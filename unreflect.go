// Package unreflect describes Go types and their members and gives uniform
// access to them in two interchangeable tiers: a reflective tier that
// resolves everything per call, and a compiled tier backed by synthesized
// accessors that precompute offsets, receivers and argument plans.
package unreflect

import (
	"reflect"

	"golang.org/x/exp/slices"

	"github.com/goccy/unreflect/internal/errs"
	ureflect "github.com/goccy/unreflect/reflect"
	"github.com/goccy/unreflect/registry"
)

func classType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Ptr && t.Name() == "" {
		return t.Elem()
	}
	return t
}

// ReflectType returns the class of t. Pointer types describe their element.
func (e *Env) ReflectType(t reflect.Type) Class {
	return Class{env: e, typ: classType(t)}
}

// Reflect returns the class of instance's dynamic type, bound to instance.
func (e *Env) Reflect(instance any) (Class, error) {
	if instance == nil {
		return Class{}, errs.Lookup("", "cannot reflect nil")
	}
	if t, ok := instance.(reflect.Type); ok {
		return e.ReflectType(t), nil
	}
	if t, ok := instance.(ureflect.Type); ok {
		if !t.IsValid() {
			return Class{}, errs.Lookup("", "cannot reflect an invalid type")
		}
		return e.ReflectType(t.Reflect()), nil
	}
	return e.ReflectType(reflect.TypeOf(instance)).Bind(instance), nil
}

// ReflectName returns the class registered under name, "pkgpath.Name".
func (e *Env) ReflectName(name string) (Class, error) {
	t, ok := e.registry.Lookup(name)
	if !ok {
		return Class{}, errs.Lookup(name, "type is not registered")
	}
	return e.ReflectType(t), nil
}

// Unreflect is Reflect followed by compiling every member.
func (e *Env) Unreflect(instance any) (Class, error) {
	c, err := e.Reflect(instance)
	if err != nil {
		return Class{}, err
	}
	return c.Unreflect()
}

func (e *Env) UnreflectType(t reflect.Type) (Class, error) {
	return e.ReflectType(t).Unreflect()
}

func (e *Env) UnreflectName(name string) (Class, error) {
	c, err := e.ReflectName(name)
	if err != nil {
		return Class{}, err
	}
	return c.Unreflect()
}

// ReflectField returns the descriptor of a struct field of owner. sf.Index
// must be relative to owner, as returned by owner.Field or owner.FieldByName.
func (e *Env) ReflectField(owner reflect.Type, sf reflect.StructField) (Field, error) {
	c := e.ReflectType(owner)
	for f := range c.Fields() {
		if !f.decl.static() && slices.Equal(f.decl.index, sf.Index) {
			return f, nil
		}
	}
	return Field{}, errs.Lookup(qualify(c.typ, sf.Name), "field not found")
}

// ReflectMethod returns the descriptor of a method of owner.
func (e *Env) ReflectMethod(owner reflect.Type, m reflect.Method) (Method, error) {
	c := e.ReflectType(owner)
	if method, ok := c.Method(m.Name); ok {
		return method, nil
	}
	return Method{}, errs.Lookup(qualify(c.typ, m.Name), "method not found")
}

// ReflectFunc returns a static method descriptor for fn. Functions
// registered against a type are described as members of that type.
func (e *Env) ReflectFunc(fn any) (Method, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return Method{}, errs.Lookup("", "%T is not a function", fn)
	}
	if owner, ok := e.registry.Owner(v); ok {
		c := e.ReflectType(owner)
		for m := range c.Methods() {
			if m.decl.fn.IsValid() && !m.decl.receiver && m.decl.fn.Pointer() == v.Pointer() {
				return m, nil
			}
		}
	}
	d := e.funcDecl(kindMethod, v.Type(), v.Type(), registry.Func{Name: registry.FuncName(v), Value: v})
	return Method{env: e, decl: d}, nil
}

// ReflectConstructor returns a constructor descriptor for fn, which must
// return T, *T or (T, error).
func (e *Env) ReflectConstructor(fn any) (Constructor, error) {
	v := reflect.ValueOf(fn)
	owner, err := registry.ConstructedType(v)
	if err != nil {
		return Constructor{}, errs.Lookup("", "%v", err)
	}
	c := e.ReflectType(owner)
	for ctor := range c.Constructors() {
		if ctor.decl.fn.Pointer() == v.Pointer() && !ctor.Modifiers().IsSynthetic() {
			return ctor, nil
		}
	}
	d := e.funcDecl(kindConstructor, c.typ, c.typ, registry.Func{Name: registry.FuncName(v), Value: v})
	return Constructor{env: e, decl: d}, nil
}

// ReflectParameter returns the index-th parameter of the function fn.
func (e *Env) ReflectParameter(fn any, index int) (Parameter, error) {
	m, err := e.ReflectFunc(fn)
	if err != nil {
		return Parameter{}, err
	}
	p, ok := m.Parameter(index)
	if !ok {
		return Parameter{}, errs.Lookup(m.decl.qualified(), "no parameter at index %d", index)
	}
	return p, nil
}

// ReflectVar returns a static field descriptor for the variable ptr points to.
func (e *Env) ReflectVar(ptr any) (Field, error) {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return Field{}, errs.Lookup("", "%T is not a pointer to a variable", ptr)
	}
	if owner, ok := e.registry.VarOwner(v); ok {
		c := e.ReflectType(owner)
		for f := range c.Fields() {
			if f.decl.static() && f.decl.v.Pointer() == v.Pointer() {
				return f, nil
			}
		}
	}
	elem := v.Type().Elem()
	d := e.varDecl(elem, elem, registry.Var{Name: "var", Ptr: v})
	return Field{env: e, decl: d}, nil
}

func Reflect(instance any) (Class, error) { return Default().Reflect(instance) }

func ReflectType(t reflect.Type) Class { return Default().ReflectType(t) }

func ReflectOf[T any]() Class { return Default().ReflectType(reflect.TypeFor[T]()) }

func ReflectName(name string) (Class, error) { return Default().ReflectName(name) }

func Unreflect(instance any) (Class, error) { return Default().Unreflect(instance) }

func UnreflectType(t reflect.Type) (Class, error) { return Default().UnreflectType(t) }

func UnreflectOf[T any]() (Class, error) { return Default().UnreflectType(reflect.TypeFor[T]()) }

func UnreflectName(name string) (Class, error) { return Default().UnreflectName(name) }

func ReflectField(owner reflect.Type, sf reflect.StructField) (Field, error) {
	return Default().ReflectField(owner, sf)
}

func ReflectMethod(owner reflect.Type, m reflect.Method) (Method, error) {
	return Default().ReflectMethod(owner, m)
}

func ReflectFunc(fn any) (Method, error) { return Default().ReflectFunc(fn) }

func ReflectConstructor(fn any) (Constructor, error) { return Default().ReflectConstructor(fn) }

func ReflectParameter(fn any, index int) (Parameter, error) {
	return Default().ReflectParameter(fn, index)
}

func ReflectVar(ptr any) (Field, error) { return Default().ReflectVar(ptr) }
