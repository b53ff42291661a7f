package accessor

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/goccy/unreflect/internal/errs"
	internalreflect "github.com/goccy/unreflect/internal/reflect"
	unreflecttypes "github.com/goccy/unreflect/types"
)

// InvokableSpec describes the constructor, method or function an accessor
// is synthesized for.
type InvokableSpec struct {
	Name      string
	Declaring reflect.Type
	// Func is the function to call. For methods the receiver is its first parameter.
	Func reflect.Value
	// Class is the struct type instances are expected to have when the
	// receiver is reached through embedding. It may be nil.
	Class reflect.Type
	// Index is the field index path from Class to the embedded receiver.
	Index []int
	// Receiver reports whether the first parameter of Func is a receiver.
	Receiver bool
	// Method names an abstract method dispatched on the instance's dynamic
	// type. Signature is its type without receiver.
	Method    string
	Signature reflect.Type
}

func (s InvokableSpec) key() string {
	if s.Method != "" {
		return fmt.Sprintf("method:%s:%s", typeKey(s.Declaring), s.Method)
	}
	// code pointers are shared by reflect.MakeFunc values, the name and
	// class tell them apart
	return fmt.Sprintf("func:%s:%s:%x:%v", s.Name, typeKey(s.Class), s.Func.Pointer(), s.Index)
}

type invokableAccessor struct {
	unit     string
	name     string
	fn       reflect.Value
	fnType   reflect.Type
	method   string
	recv     reflect.Type
	recvBase reflect.Type
	word     unsafe.Pointer
	steps    []internalreflect.Step
	params   []reflect.Type
	words    []unsafe.Pointer
	variadic bool
}

// CompileInvokable synthesizes an InvokableAccessor for spec.
func (c *Compiler) CompileInvokable(spec InvokableSpec) (InvokableAccessor, error) {
	v, err := c.cached(spec.key(), func() (any, error) {
		return c.compileInvokable(spec)
	})
	if err != nil {
		return nil, err
	}
	return v.(InvokableAccessor), nil
}

func (c *Compiler) compileInvokable(spec InvokableSpec) (*invokableAccessor, error) {
	a := &invokableAccessor{name: spec.Name, fn: spec.Func, method: spec.Method}
	switch {
	case spec.Method != "":
		if spec.Signature == nil || spec.Signature.Kind() != reflect.Func {
			return nil, errs.Synthesis(spec.Name, fmt.Errorf("abstract method %s has no signature", spec.Method))
		}
		a.fnType = spec.Signature
	case spec.Func.Kind() == reflect.Func && !spec.Func.IsNil():
		a.fnType = spec.Func.Type()
	default:
		return nil, errs.Synthesis(spec.Name, fmt.Errorf("%s is not a function", spec.Func.Kind()))
	}
	first := 0
	if spec.Receiver {
		if a.fnType.NumIn() == 0 {
			return nil, errs.Synthesis(spec.Name, fmt.Errorf("%s has no receiver", a.fnType))
		}
		first = 1
		a.recv = a.fnType.In(0)
		a.recvBase = a.recv
		if a.recvBase.Kind() == reflect.Ptr {
			a.recvBase = a.recvBase.Elem()
		}
		if err := a.planReceiver(spec); err != nil {
			return nil, err
		}
	}
	for i := first; i < a.fnType.NumIn(); i++ {
		p := a.fnType.In(i)
		a.params = append(a.params, p)
		a.words = append(a.words, internalreflect.TypeWord(p))
	}
	a.variadic = a.fnType.IsVariadic()

	sig, err := unreflecttypes.SignatureFromReflectType(a.fnType)
	if err != nil {
		return nil, errs.Synthesis(spec.Name, err)
	}
	declaring := spec.Declaring
	if declaring == nil {
		declaring = a.recvBase
	}
	unit, err := c.install(spec.Name, contextOf(declaring), sig)
	if err != nil {
		return nil, err
	}
	a.unit = unit
	return a, nil
}

// planReceiver precomputes the offsets from a *Class instance to the receiver.
func (a *invokableAccessor) planReceiver(spec InvokableSpec) error {
	class := spec.Class
	if class == nil {
		class = a.recvBase
	}
	if class.Kind() != reflect.Struct && class != a.recvBase {
		return errs.Synthesis(spec.Name, fmt.Errorf("%s cannot embed %s", class, a.recvBase))
	}
	a.word = internalreflect.TypeWord(reflect.PointerTo(class))
	if len(spec.Index) == 0 {
		return nil
	}
	steps, last := internalreflect.Steps(class, spec.Index)
	if last.Kind() == reflect.Ptr {
		steps = append(steps, internalreflect.Step{Deref: true})
		last = last.Elem()
	}
	if last != a.recvBase {
		return errs.Synthesis(spec.Name, fmt.Errorf("%s at %v is %s, not %s", class, spec.Index, last, a.recvBase))
	}
	a.steps = steps
	return nil
}

func (a *invokableAccessor) Unit() string {
	return a.unit
}

func (a *invokableAccessor) Invoke(instance any, args ...any) (any, error) {
	if len(args) != len(a.params) {
		return nil, errs.ArgumentCount(a.name, len(a.params), len(args))
	}
	fn := a.fn
	in := make([]reflect.Value, 0, len(args)+1)
	switch {
	case a.method != "":
		m, err := internalreflect.MethodOf(instance, a.method)
		if err != nil {
			return nil, errs.WithMember(err, a.name)
		}
		fn = m
	case a.recv != nil:
		recv, err := a.receiver(instance)
		if err != nil {
			return nil, errs.WithMember(err, a.name)
		}
		in = append(in, recv)
	}
	for i, arg := range args {
		if arg != nil && a.words[i] != nil && internalreflect.TypeWordOf(arg) == a.words[i] {
			in = append(in, reflect.ValueOf(arg))
			continue
		}
		v, err := internalreflect.Narrow(arg, a.params[i])
		if err != nil {
			return nil, errs.WithMember(err, a.name)
		}
		in = append(in, v)
	}
	out, err := internalreflect.Call(fn, in, a.variadic)
	if err != nil {
		return nil, errs.Invocation(a.name, err)
	}
	result, err := internalreflect.Results(a.fnType, out)
	if err != nil {
		return nil, errs.Invocation(a.name, err)
	}
	return result, nil
}

func (a *invokableAccessor) receiver(instance any) (reflect.Value, error) {
	if instance != nil && internalreflect.TypeWordOf(instance) == a.word {
		if p := internalreflect.DataOf(instance); p != nil {
			if p, ok := internalreflect.Walk(p, a.steps); ok {
				v := reflect.NewAt(a.recvBase, p)
				if a.recv.Kind() == reflect.Ptr {
					return v, nil
				}
				return v.Elem(), nil
			}
		}
	}
	return internalreflect.Receiver(instance, a.recv)
}
