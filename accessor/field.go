package accessor

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/goccy/unreflect/internal/errs"
	internalreflect "github.com/goccy/unreflect/internal/reflect"
	unreflecttypes "github.com/goccy/unreflect/types"
)

// FieldSpec describes the field an accessor is synthesized for.
type FieldSpec struct {
	// Name is used in errors and logs, e.g. "pkg.User.Name".
	Name string
	// Class is the struct type instances are expected to have.
	// It is nil for static fields.
	Class reflect.Type
	// Declaring is the type whose package is the loading context.
	Declaring reflect.Type
	// Index is the field index path from Class.
	Index []int
	// Var points to the variable backing a static field.
	Var reflect.Value
}

func (s FieldSpec) static() bool {
	return s.Class == nil
}

func (s FieldSpec) key() string {
	if s.static() {
		return fmt.Sprintf("field:%s:%x", s.Name, s.Var.Pointer())
	}
	return fmt.Sprintf("field:%s:%v", typeKey(s.Class), s.Index)
}

func typeKey(t reflect.Type) string {
	if t == nil {
		return ""
	}
	return t.PkgPath() + "." + t.String()
}

type fieldAccessor struct {
	unit   string
	name   string
	class  reflect.Type
	word   unsafe.Pointer
	steps  []internalreflect.Step
	static unsafe.Pointer
	load   loadFunc
	store  storeFunc
}

// CompileField synthesizes a FieldAccessor for spec.
func (c *Compiler) CompileField(spec FieldSpec) (FieldAccessor, error) {
	v, err := c.cached(spec.key(), func() (any, error) {
		return c.compileField(spec)
	})
	if err != nil {
		return nil, err
	}
	return v.(FieldAccessor), nil
}

func (c *Compiler) compileField(spec FieldSpec) (*fieldAccessor, error) {
	a := &fieldAccessor{name: spec.Name, class: spec.Class}
	var (
		typ  reflect.Type
		recv reflect.Type
	)
	if spec.static() {
		if spec.Var.Kind() != reflect.Ptr || spec.Var.IsNil() {
			return nil, errs.Synthesis(spec.Name, fmt.Errorf("static field needs a pointer to its variable"))
		}
		typ = spec.Var.Type().Elem()
		a.static = spec.Var.UnsafePointer()
	} else {
		if spec.Class.Kind() != reflect.Struct || len(spec.Index) == 0 {
			return nil, errs.Synthesis(spec.Name, fmt.Errorf("%s has no field at %v", spec.Class, spec.Index))
		}
		a.steps, typ = internalreflect.Steps(spec.Class, spec.Index)
		recv = reflect.PointerTo(spec.Class)
		a.word = internalreflect.TypeWord(recv)
	}
	a.load = loader(typ)
	a.store = storer(typ)

	var params []reflect.Type
	if recv != nil {
		params = append(params, recv)
	}
	declaring := spec.Declaring
	if declaring == nil {
		declaring = spec.Class
	}
	sig := unreflecttypes.FuncSignature(params, []reflect.Type{typ})
	unit, err := c.install(spec.Name, contextOf(declaring), sig)
	if err != nil {
		return nil, err
	}
	a.unit = unit
	return a, nil
}

func (a *fieldAccessor) Unit() string {
	return a.unit
}

func (a *fieldAccessor) addr(instance any, write bool) (unsafe.Pointer, error) {
	if a.static != nil {
		return a.static, nil
	}
	var p unsafe.Pointer
	if instance != nil && internalreflect.TypeWordOf(instance) == a.word {
		p = internalreflect.DataOf(instance)
		if p == nil {
			return nil, errs.TypeMismatch(a.name, "nil instance of %s", a.class)
		}
	} else {
		var err error
		p, err = internalreflect.InstancePointer(instance, a.class, write)
		if err != nil {
			return nil, errs.WithMember(err, a.name)
		}
	}
	p, ok := internalreflect.Walk(p, a.steps)
	if !ok {
		return nil, errs.Access(a.name, "nil embedded pointer")
	}
	return p, nil
}

func (a *fieldAccessor) Get(instance any) (any, error) {
	p, err := a.addr(instance, false)
	if err != nil {
		return nil, err
	}
	return a.load(p), nil
}

func (a *fieldAccessor) Set(instance any, value any) error {
	p, err := a.addr(instance, true)
	if err != nil {
		return err
	}
	if err := a.store(p, value); err != nil {
		return errs.WithMember(err, a.name)
	}
	return nil
}
