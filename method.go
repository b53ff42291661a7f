package unreflect

import (
	"fmt"
	"iter"
	"reflect"

	"github.com/goccy/unreflect/accessor"
	ureflect "github.com/goccy/unreflect/reflect"
	unreflecttypes "github.com/goccy/unreflect/types"
)

// Method describes a method, an abstract interface method or a static
// function, optionally bound to a receiver.
type Method struct {
	env      *Env
	decl     *invokableDecl
	instance any
	accessor accessor.InvokableAccessor
}

func (m Method) Name() string {
	return m.decl.name
}

// Type returns the first result type, or the zero Type for methods without results.
func (m Method) Type() ureflect.Type {
	if m.decl.fnType.NumOut() == 0 {
		return ureflect.Type{}
	}
	return ureflect.FromReflect(m.decl.fnType.Out(0))
}

func (m Method) DeclaringType() ureflect.Type {
	return ureflect.FromReflect(m.decl.declaring)
}

func (m Method) Class() Class {
	return Class{env: m.env, typ: m.decl.class, instance: m.instance}
}

func (m Method) Modifiers() Modifier {
	return m.decl.modifiers
}

func (m Method) IsStatic() bool {
	return m.decl.modifiers.IsStatic()
}

// Source returns the function invoked, with the receiver as first argument
// for methods. It is invalid for abstract methods.
func (m Method) Source() reflect.Value {
	return m.decl.fn
}

func (m Method) Annotations() []any {
	return m.decl.annots
}

func (m Method) Annotation(kind reflect.Type) (any, bool) {
	return findAnnotation(m.decl.annots, kind)
}

func (m Method) HasAnnotation(kind reflect.Type) bool {
	_, ok := m.Annotation(kind)
	return ok
}

func (m Method) Parameters() iter.Seq[Parameter] {
	return m.decl.parameters(m.env)
}

func (m Method) Parameter(index int) (Parameter, bool) {
	if index < 0 || index >= len(m.decl.params) {
		return Parameter{}, false
	}
	return Parameter{env: m.env, owner: m.decl, index: index}, true
}

func (m Method) ParameterTypes() []ureflect.Type {
	return m.decl.parameterTypes()
}

// Matches reports whether the method accepts argsOrTypes.
func (m Method) Matches(argsOrTypes ...any) bool {
	return matchParameters(m.env.registry, m.ParameterTypes(), argsOrTypes)
}

func (m Method) Instance() any {
	return m.instance
}

func (m Method) Bind(instance any) Method {
	m.instance = instance
	return m
}

func (m Method) IsCompiled() bool {
	return m.accessor != nil
}

func (m Method) Unit() string {
	if u, ok := m.accessor.(accessor.Unit); ok {
		return u.Unit()
	}
	return ""
}

func (m Method) Unreflect() (Method, error) {
	if m.accessor != nil {
		return m, nil
	}
	a, err := m.env.compiler.CompileInvokable(m.decl.spec())
	if err != nil {
		return m, err
	}
	m.accessor = a
	return m, nil
}

func (m Method) Reflect() Method {
	m.accessor = nil
	return m
}

// Invoke calls the method on the bound instance. Static functions ignore
// the instance. Methods without results return nil.
func (m Method) Invoke(args ...any) (any, error) {
	if m.accessor != nil {
		return m.accessor.Invoke(m.instance, args...)
	}
	return m.decl.invoke(m.instance, args)
}

func (m Method) String() string {
	d := m.decl
	switch {
	case d.receiver:
		return fmt.Sprintf("func (%s) %s%s", unreflecttypes.String(d.fnType.In(0)), d.name, d.signature())
	case d.method != "":
		return fmt.Sprintf("func (%s) %s%s", unreflecttypes.String(d.declaring), d.name, d.signature())
	}
	return fmt.Sprintf("func %s%s", d.qualified(), d.signature())
}
