package unreflect

import (
	"fmt"
	"iter"
	"reflect"

	"github.com/goccy/unreflect/accessor"
	"github.com/goccy/unreflect/internal/errs"
	internalreflect "github.com/goccy/unreflect/internal/reflect"
	ureflect "github.com/goccy/unreflect/reflect"
	"github.com/goccy/unreflect/registry"
)

// Class describes a type and gives access to its constructors, fields and
// methods, optionally bound to an instance of it.
type Class struct {
	env      *Env
	typ      reflect.Type
	instance any
	compiled *compiledClass
}

// compiledClass holds the accessors of every member of a class, indexed
// like the declarations they were compiled from.
type compiledClass struct {
	info    *classInfo
	fields  []accessor.FieldAccessor
	ctors   []accessor.InvokableAccessor
	methods []accessor.InvokableAccessor
	super   *compiledClass
}

func (c Class) IsValid() bool {
	return c.typ != nil
}

func (c Class) Name() string {
	return c.Type().Name()
}

func (c Class) Type() ureflect.Type {
	return ureflect.FromReflect(c.typ)
}

func (c Class) Modifiers() Modifier {
	var m Modifier
	if c.typ.Name() == "" || c.typ.PkgPath() == "" {
		m = Public
	} else {
		m = visibility(c.typ.Name())
	}
	if c.typ.Kind() == reflect.Interface {
		m |= Interface | Abstract
	}
	return m
}

func (c Class) Annotations() []any {
	return c.env.registry.Annotations(c.typ)
}

func (c Class) Annotation(kind reflect.Type) (any, bool) {
	return findAnnotation(c.Annotations(), kind)
}

func (c Class) HasAnnotation(kind reflect.Type) bool {
	_, ok := c.Annotation(kind)
	return ok
}

func (c Class) Instance() any {
	return c.instance
}

func (c Class) Bind(instance any) Class {
	c.instance = instance
	return c
}

func (c Class) IsCompiled() bool {
	return c.compiled != nil
}

// Unreflect returns a copy of the class whose members are all backed by
// synthesized accessors, compiling the members of every superclass too.
func (c Class) Unreflect() (Class, error) {
	if c.compiled != nil {
		return c, nil
	}
	compiled, err := c.env.compileClass(c.typ)
	if err != nil {
		return c, err
	}
	c.compiled = compiled
	return c, nil
}

func (c Class) Reflect() Class {
	c.compiled = nil
	return c
}

func (c Class) info() *classInfo {
	if c.compiled != nil {
		return c.compiled.info
	}
	return c.env.info(c.typ)
}

// Superclass returns the class of the first embedded type, or any. The
// parent is bound to the embedded part of the instance when possible.
func (c Class) Superclass() (Class, bool) {
	super := c.Type().SuperType()
	if !super.IsValid() {
		return Class{}, false
	}
	parent := Class{env: c.env, typ: super.Reflect()}
	if c.compiled != nil {
		parent.compiled = c.compiled.super
	}
	if c.instance != nil {
		parent.instance = narrowInstance(c.instance, parent.typ)
	}
	return parent, true
}

func narrowInstance(instance any, t reflect.Type) any {
	if t.Kind() == reflect.Interface {
		return instance
	}
	target := t
	if reflect.TypeOf(instance).Kind() == reflect.Ptr {
		target = reflect.PointerTo(t)
	}
	v, err := internalreflect.Narrow(instance, target)
	if err != nil {
		return nil
	}
	return internalreflect.Interface(v)
}

// SubTypes yields the types the class can be used as, resolving interfaces
// against the registry of its Env.
func (c Class) SubTypes() iter.Seq[ureflect.Type] {
	return c.Type().SubTypesIn(c.env.registry)
}

// GenericTypes yields the type arguments of the class, looking named
// arguments up in the registry of its Env.
func (c Class) GenericTypes() iter.Seq[ureflect.Type] {
	return c.Type().GenericTypesIn(c.env.registry)
}

func (c Class) Constructors() iter.Seq[Constructor] {
	return func(yield func(Constructor) bool) {
		for i, d := range c.info().ctors {
			if !yield(c.constructor(i, d)) {
				return
			}
		}
	}
}

func (c Class) constructor(i int, d *invokableDecl) Constructor {
	ctor := Constructor{env: c.env, decl: d, instance: c.instance}
	if c.compiled != nil {
		ctor.accessor = c.compiled.ctors[i]
	}
	return ctor
}

func (c Class) ConstructorAt(index int) (Constructor, bool) {
	return at(c.Constructors(), index)
}

// ConstructorFor returns the first constructor accepting argsOrTypes.
func (c Class) ConstructorFor(argsOrTypes ...any) (Constructor, bool) {
	return first(c.ConstructorsFor(argsOrTypes...))
}

func (c Class) ConstructorsFor(argsOrTypes ...any) iter.Seq[Constructor] {
	return filter(c.Constructors(), func(ctor Constructor) bool {
		return ctor.Matches(argsOrTypes...)
	})
}

// Create invokes the first constructor accepting args.
func (c Class) Create(args ...any) (any, error) {
	ctor, ok := c.ConstructorFor(args...)
	if !ok {
		return nil, errs.Lookup(c.typ.String(), "no constructor accepts %d arguments of the given types", len(args))
	}
	return ctor.Invoke(args...)
}

func (c Class) Fields() iter.Seq[Field] {
	return func(yield func(Field) bool) {
		for i, d := range c.info().fields {
			if !yield(c.field(i, d)) {
				return
			}
		}
	}
}

func (c Class) field(i int, d *fieldDecl) Field {
	f := Field{env: c.env, decl: d, instance: c.instance}
	if c.compiled != nil {
		f.accessor = c.compiled.fields[i]
	}
	return f
}

func (c Class) FieldAt(index int) (Field, bool) {
	return at(c.Fields(), index)
}

// Field returns the first field named name, searching the class before its superclasses.
func (c Class) Field(name string) (Field, bool) {
	return first(filter(c.Fields(), func(f Field) bool { return f.Name() == name }))
}

func (c Class) Methods() iter.Seq[Method] {
	return func(yield func(Method) bool) {
		for i, d := range c.info().methods {
			if !yield(c.method(i, d)) {
				return
			}
		}
	}
}

func (c Class) method(i int, d *invokableDecl) Method {
	m := Method{env: c.env, decl: d, instance: c.instance}
	if c.compiled != nil {
		m.accessor = c.compiled.methods[i]
	}
	return m
}

func (c Class) MethodAt(index int) (Method, bool) {
	return at(c.Methods(), index)
}

func (c Class) Method(name string) (Method, bool) {
	return first(c.MethodsNamed(name))
}

func (c Class) MethodsNamed(name string) iter.Seq[Method] {
	return filter(c.Methods(), func(m Method) bool { return m.Name() == name })
}

func (c Class) MethodFor(argsOrTypes ...any) (Method, bool) {
	return first(c.MethodsFor(argsOrTypes...))
}

func (c Class) MethodsFor(argsOrTypes ...any) iter.Seq[Method] {
	return filter(c.Methods(), func(m Method) bool { return m.Matches(argsOrTypes...) })
}

func (c Class) MethodNamedFor(name string, argsOrTypes ...any) (Method, bool) {
	return first(c.MethodsNamedFor(name, argsOrTypes...))
}

func (c Class) MethodsNamedFor(name string, argsOrTypes ...any) iter.Seq[Method] {
	return filter(c.Methods(), func(m Method) bool {
		return m.Name() == name && m.Matches(argsOrTypes...)
	})
}

func (c Class) String() string {
	if c.typ.Kind() == reflect.Interface {
		return fmt.Sprintf("interface %s", registry.Name(c.typ))
	}
	return fmt.Sprintf("type %s", registry.Name(c.typ))
}

func (e *Env) compileClass(t reflect.Type) (*compiledClass, error) {
	info := e.info(t)
	cc := &compiledClass{
		info:    info,
		fields:  make([]accessor.FieldAccessor, len(info.fields)),
		ctors:   make([]accessor.InvokableAccessor, len(info.ctors)),
		methods: make([]accessor.InvokableAccessor, len(info.methods)),
	}
	for i, d := range info.fields {
		a, err := e.compiler.CompileField(d.spec())
		if err != nil {
			return nil, err
		}
		cc.fields[i] = a
	}
	for i, d := range info.ctors {
		a, err := e.compiler.CompileInvokable(d.spec())
		if err != nil {
			return nil, err
		}
		cc.ctors[i] = a
	}
	for i, d := range info.methods {
		a, err := e.compiler.CompileInvokable(d.spec())
		if err != nil {
			return nil, err
		}
		cc.methods[i] = a
	}
	if super := ureflect.FromReflect(t).SuperType(); super.IsValid() {
		parent, err := e.compileClass(super.Reflect())
		if err != nil {
			return nil, err
		}
		cc.super = parent
	}
	e.logger.Debug("compiled class",
		"type", t.String(),
		"fields", len(cc.fields),
		"constructors", len(cc.ctors),
		"methods", len(cc.methods))
	return cc, nil
}

func at[T any](seq iter.Seq[T], index int) (T, bool) {
	var zero T
	if index < 0 {
		return zero, false
	}
	i := 0
	for v := range seq {
		if i == index {
			return v, true
		}
		i++
	}
	return zero, false
}

func first[T any](seq iter.Seq[T]) (T, bool) {
	for v := range seq {
		return v, true
	}
	var zero T
	return zero, false
}

func filter[T any](seq iter.Seq[T], keep func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range seq {
			if keep(v) && !yield(v) {
				return
			}
		}
	}
}
