package unreflect

import (
	"fmt"
	"iter"
	"reflect"

	"github.com/goccy/unreflect/accessor"
	ureflect "github.com/goccy/unreflect/reflect"
)

// Constructor describes a function creating instances of a class.
type Constructor struct {
	env      *Env
	decl     *invokableDecl
	instance any
	accessor accessor.InvokableAccessor
}

func (c Constructor) Name() string {
	return c.decl.name
}

// Type returns the type of the created value.
func (c Constructor) Type() ureflect.Type {
	return ureflect.FromReflect(c.decl.fnType.Out(0))
}

func (c Constructor) Class() Class {
	return Class{env: c.env, typ: c.decl.class, instance: c.instance}
}

func (c Constructor) Modifiers() Modifier {
	return c.decl.modifiers
}

func (c Constructor) Source() reflect.Value {
	return c.decl.fn
}

func (c Constructor) Annotations() []any {
	return c.decl.annots
}

func (c Constructor) Annotation(kind reflect.Type) (any, bool) {
	return findAnnotation(c.decl.annots, kind)
}

func (c Constructor) HasAnnotation(kind reflect.Type) bool {
	_, ok := c.Annotation(kind)
	return ok
}

func (c Constructor) Parameters() iter.Seq[Parameter] {
	return c.decl.parameters(c.env)
}

func (c Constructor) Parameter(index int) (Parameter, bool) {
	if index < 0 || index >= len(c.decl.params) {
		return Parameter{}, false
	}
	return Parameter{env: c.env, owner: c.decl, index: index}, true
}

func (c Constructor) ParameterTypes() []ureflect.Type {
	return c.decl.parameterTypes()
}

func (c Constructor) Matches(argsOrTypes ...any) bool {
	return matchParameters(c.env.registry, c.ParameterTypes(), argsOrTypes)
}

func (c Constructor) Instance() any {
	return c.instance
}

// Bind is accepted for symmetry with the other descriptors; constructors
// ignore the bound instance.
func (c Constructor) Bind(instance any) Constructor {
	c.instance = instance
	return c
}

func (c Constructor) IsCompiled() bool {
	return c.accessor != nil
}

func (c Constructor) Unit() string {
	if u, ok := c.accessor.(accessor.Unit); ok {
		return u.Unit()
	}
	return ""
}

func (c Constructor) Unreflect() (Constructor, error) {
	if c.accessor != nil {
		return c, nil
	}
	a, err := c.env.compiler.CompileInvokable(c.decl.spec())
	if err != nil {
		return c, err
	}
	c.accessor = a
	return c, nil
}

func (c Constructor) Reflect() Constructor {
	c.accessor = nil
	return c
}

func (c Constructor) Invoke(args ...any) (any, error) {
	if c.accessor != nil {
		return c.accessor.Invoke(nil, args...)
	}
	return c.decl.invoke(nil, args)
}

// Create is Invoke under the name used for constructors.
func (c Constructor) Create(args ...any) (any, error) {
	return c.Invoke(args...)
}

func (c Constructor) String() string {
	return fmt.Sprintf("func %s%s", c.decl.qualified(), c.decl.signature())
}
