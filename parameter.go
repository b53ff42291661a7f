package unreflect

import (
	"fmt"
	"reflect"

	ureflect "github.com/goccy/unreflect/reflect"
	"github.com/goccy/unreflect/registry"
	unreflecttypes "github.com/goccy/unreflect/types"
)

// Parameter describes one parameter of a constructor or method. It refers
// to its owner without keeping a descriptor of it.
type Parameter struct {
	env   *Env
	owner *invokableDecl
	index int
}

func (p Parameter) Index() int {
	return p.index
}

// Name is argN; parameter names are not retained at run time.
func (p Parameter) Name() string {
	return paramName(p.index)
}

func (p Parameter) Type() ureflect.Type {
	return ureflect.FromReflect(p.owner.params[p.index])
}

func (p Parameter) Modifiers() Modifier {
	if p.index == len(p.owner.params)-1 && p.owner.fnType.IsVariadic() {
		return Variadic
	}
	return 0
}

// Annotations returns the values registered for the member "<owner>.argN".
func (p Parameter) Annotations() []any {
	return p.env.registry.Annotations(registry.Member{
		Owner: p.owner.declaring,
		Name:  p.owner.name + "." + p.Name(),
	})
}

func (p Parameter) Annotation(kind reflect.Type) (any, bool) {
	return findAnnotation(p.Annotations(), kind)
}

func (p Parameter) HasAnnotation(kind reflect.Type) bool {
	_, ok := p.Annotation(kind)
	return ok
}

// Constructor returns the owning constructor, if the parameter belongs to one.
func (p Parameter) Constructor() (Constructor, bool) {
	if p.owner == nil || p.owner.kind != kindConstructor {
		return Constructor{}, false
	}
	return Constructor{env: p.env, decl: p.owner}, true
}

// Method returns the owning method, if the parameter belongs to one.
func (p Parameter) Method() (Method, bool) {
	if p.owner == nil || p.owner.kind != kindMethod {
		return Method{}, false
	}
	return Method{env: p.env, decl: p.owner}, true
}

func (p Parameter) String() string {
	return fmt.Sprintf("%s %s", unreflecttypes.String(p.owner.params[p.index]), p.Name())
}
