package unreflect

import (
	"iter"
	"reflect"
	"strings"

	"github.com/goccy/unreflect/accessor"
	"github.com/goccy/unreflect/internal/errs"
	internalreflect "github.com/goccy/unreflect/internal/reflect"
	ureflect "github.com/goccy/unreflect/reflect"
	unreflecttypes "github.com/goccy/unreflect/types"
)

// Invokable is implemented by Method and Constructor.
type Invokable interface {
	Annotated
	Name() string
	Parameters() iter.Seq[Parameter]
	ParameterTypes() []ureflect.Type
	Matches(argsOrTypes ...any) bool
	Invoke(args ...any) (any, error)
}

func (d *invokableDecl) spec() accessor.InvokableSpec {
	return accessor.InvokableSpec{
		Name:      d.qualified(),
		Declaring: d.declaring,
		Func:      d.fn,
		Class:     d.class,
		Index:     d.index,
		Receiver:  d.receiver,
		Method:    d.method,
		Signature: d.fnType,
	}
}

func (d *invokableDecl) parameters(env *Env) iter.Seq[Parameter] {
	return func(yield func(Parameter) bool) {
		for i := range d.params {
			if !yield(Parameter{env: env, owner: d, index: i}) {
				return
			}
		}
	}
}

func (d *invokableDecl) parameterTypes() []ureflect.Type {
	types := make([]ureflect.Type, len(d.params))
	for i, p := range d.params {
		types[i] = ureflect.FromReflect(p)
	}
	return types
}

// resolve looks the function up again at call time.
func (d *invokableDecl) resolve(instance any) (reflect.Value, error) {
	switch {
	case d.method != "":
		return internalreflect.MethodOf(instance, d.method)
	case d.receiver:
		base := d.fnType.In(0)
		m, ok := base.MethodByName(d.name)
		if !ok {
			return reflect.Value{}, errs.Lookup(d.qualified(), "method not found on %s", base)
		}
		return m.Func, nil
	}
	return d.fn, nil
}

// invoke calls the member reflectively.
func (d *invokableDecl) invoke(instance any, args []any) (any, error) {
	name := d.qualified()
	if len(args) != len(d.params) {
		return nil, errs.ArgumentCount(name, len(d.params), len(args))
	}
	fn, err := d.resolve(instance)
	if err != nil {
		return nil, errs.WithMember(err, name)
	}
	in := make([]reflect.Value, 0, len(args)+1)
	if d.receiver {
		recv, err := internalreflect.Receiver(instance, d.fnType.In(0))
		if err != nil {
			return nil, errs.WithMember(err, name)
		}
		in = append(in, recv)
	}
	for i, arg := range args {
		v, err := internalreflect.Narrow(arg, d.params[i])
		if err != nil {
			return nil, errs.WithMember(err, name)
		}
		in = append(in, v)
	}
	out, err := internalreflect.Call(fn, in, d.fnType.IsVariadic())
	if err != nil {
		return nil, errs.Invocation(name, err)
	}
	result, err := internalreflect.Results(d.fnType, out)
	if err != nil {
		return nil, errs.Invocation(name, err)
	}
	return result, nil
}

// signature renders the parameter and result lists, e.g. "(int, string) error".
func (d *invokableDecl) signature() string {
	var (
		in  []string
		out []string
	)
	for i, p := range d.params {
		s := unreflecttypes.String(p)
		if i == len(d.params)-1 && d.fnType.IsVariadic() {
			s = "..." + strings.TrimPrefix(s, "[]")
		}
		in = append(in, s)
	}
	for i := 0; i < d.fnType.NumOut(); i++ {
		out = append(out, unreflecttypes.String(d.fnType.Out(i)))
	}
	s := "(" + strings.Join(in, ", ") + ")"
	switch len(out) {
	case 0:
		return s
	case 1:
		return s + " " + out[0]
	}
	return s + " (" + strings.Join(out, ", ") + ")"
}
