package unreflect

import (
	"fmt"
	"reflect"

	"github.com/goccy/unreflect/accessor"
	"github.com/goccy/unreflect/internal/errs"
	internalreflect "github.com/goccy/unreflect/internal/reflect"
	ureflect "github.com/goccy/unreflect/reflect"
	unreflecttypes "github.com/goccy/unreflect/types"
)

// Field describes a struct field or a static variable, optionally bound to
// an instance. It reads and writes reflectively unless compiled with Unreflect.
type Field struct {
	env      *Env
	decl     *fieldDecl
	instance any
	accessor accessor.FieldAccessor
}

func (f Field) Name() string {
	return f.decl.name
}

func (f Field) Type() ureflect.Type {
	return ureflect.FromReflect(f.decl.typ)
}

func (f Field) DeclaringType() ureflect.Type {
	return ureflect.FromReflect(f.decl.declaring)
}

// Class returns the class the field was enumerated from, bound to the same instance.
func (f Field) Class() Class {
	return Class{env: f.env, typ: f.decl.class, instance: f.instance}
}

func (f Field) Modifiers() Modifier {
	return f.decl.modifiers
}

func (f Field) IsStatic() bool {
	return f.decl.static()
}

// Source returns the struct field declaration. It is the zero value for static fields.
func (f Field) Source() reflect.StructField {
	return f.decl.source
}

// Tag returns the value of the struct tag entry key.
func (f Field) Tag(key string) (string, bool) {
	return f.decl.source.Tag.Lookup(key)
}

func (f Field) Annotations() []any {
	return f.decl.annots
}

func (f Field) Annotation(kind reflect.Type) (any, bool) {
	return findAnnotation(f.decl.annots, kind)
}

func (f Field) HasAnnotation(kind reflect.Type) bool {
	_, ok := f.Annotation(kind)
	return ok
}

func (f Field) Instance() any {
	return f.instance
}

// Bind returns a copy of the field bound to instance.
func (f Field) Bind(instance any) Field {
	f.instance = instance
	return f
}

func (f Field) IsCompiled() bool {
	return f.accessor != nil
}

// Unit returns the name of the synthesized accessor, empty in the reflective tier.
func (f Field) Unit() string {
	if u, ok := f.accessor.(accessor.Unit); ok {
		return u.Unit()
	}
	return ""
}

// Unreflect returns a copy of the field backed by a synthesized accessor.
// A field that is already compiled is returned as is.
func (f Field) Unreflect() (Field, error) {
	if f.accessor != nil {
		return f, nil
	}
	a, err := f.env.compiler.CompileField(f.decl.spec())
	if err != nil {
		return f, err
	}
	f.accessor = a
	return f, nil
}

// Reflect returns a copy of the field in the reflective tier.
func (f Field) Reflect() Field {
	f.accessor = nil
	return f
}

func (d *fieldDecl) spec() accessor.FieldSpec {
	if d.static() {
		return accessor.FieldSpec{Name: d.qualified(), Declaring: d.declaring, Var: d.v}
	}
	return accessor.FieldSpec{Name: d.qualified(), Class: d.class, Declaring: d.declaring, Index: d.index}
}

func (f Field) Get() (any, error) {
	if f.accessor != nil {
		return f.accessor.Get(f.instance)
	}
	if f.decl.static() {
		return internalreflect.Interface(f.decl.v.Elem()), nil
	}
	v, err := f.value(false)
	if err != nil {
		return nil, err
	}
	return internalreflect.Interface(v), nil
}

func (f Field) Set(value any) error {
	if f.accessor != nil {
		return f.accessor.Set(f.instance, value)
	}
	var (
		v   reflect.Value
		err error
	)
	if f.decl.static() {
		v = f.decl.v.Elem()
	} else if v, err = f.value(true); err != nil {
		return err
	}
	rv, err := internalreflect.Narrow(value, f.decl.typ)
	if err != nil {
		return errs.WithMember(err, f.decl.qualified())
	}
	v.Set(rv)
	return nil
}

func (f Field) value(write bool) (reflect.Value, error) {
	d := f.decl
	p, err := internalreflect.InstancePointer(f.instance, d.class, write)
	if err != nil {
		return reflect.Value{}, errs.WithMember(err, d.qualified())
	}
	v, err := reflect.NewAt(d.class, p).Elem().FieldByIndexErr(d.index)
	if err != nil {
		return reflect.Value{}, errs.Access(d.qualified(), "nil embedded pointer")
	}
	accessible, ok := internalreflect.ForceAccessible(v)
	if !ok {
		return reflect.Value{}, errs.Access(d.qualified(), "field is not addressable")
	}
	return accessible, nil
}

func (f Field) String() string {
	s := fmt.Sprintf("%s %s", unreflecttypes.String(f.decl.typ), f.decl.qualified())
	if f.decl.static() {
		return "static " + s
	}
	return s
}
