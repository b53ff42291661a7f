package unreflect

import (
	"fmt"
	"go/token"
	"reflect"
	"runtime"

	"golang.org/x/exp/slices"

	internalreflect "github.com/goccy/unreflect/internal/reflect"
	"github.com/goccy/unreflect/registry"
)

type fieldDecl struct {
	name      string
	typ       reflect.Type
	class     reflect.Type
	declaring reflect.Type
	index     []int
	source    reflect.StructField
	v         reflect.Value
	modifiers Modifier
	annots    []any
}

func (d *fieldDecl) static() bool {
	return d.v.IsValid()
}

func (d *fieldDecl) qualified() string {
	return qualify(d.declaring, d.name)
}

type invokableKind int

const (
	kindConstructor invokableKind = iota
	kindMethod
)

type invokableDecl struct {
	kind      invokableKind
	name      string
	class     reflect.Type
	declaring reflect.Type
	fn        reflect.Value
	fnType    reflect.Type
	receiver  bool
	method    string
	index     []int
	params    []reflect.Type
	modifiers Modifier
	annots    []any
}

func (d *invokableDecl) qualified() string {
	return qualify(d.declaring, d.name)
}

func qualify(t reflect.Type, name string) string {
	if t == nil {
		return name
	}
	return t.String() + "." + name
}

type classInfo struct {
	version uint64
	typ     reflect.Type
	fields  []*fieldDecl
	ctors   []*invokableDecl
	methods []*invokableDecl
}

type level struct {
	typ   reflect.Type
	index []int
}

// levels returns t followed by its embedded non-interface ancestors.
func levels(t reflect.Type) []level {
	ls := []level{{typ: t}}
	for _, a := range internalreflect.Ancestors(t) {
		if a.Interface {
			continue
		}
		ls = append(ls, level{typ: a.Type, index: a.Index})
	}
	return ls
}

func (e *Env) buildInfo(t reflect.Type) *classInfo {
	info := &classInfo{typ: t}
	if t.Kind() == reflect.Interface {
		for i := 0; i < t.NumMethod(); i++ {
			info.methods = append(info.methods, e.abstractDecl(t, t.Method(i)))
		}
		info.fields = append(info.fields, e.varDecls(t, t)...)
		info.methods = append(info.methods, e.funcDecls(t, t)...)
		return info
	}
	for _, l := range levels(t) {
		if l.typ.Kind() == reflect.Struct {
			for i := 0; i < l.typ.NumField(); i++ {
				info.fields = append(info.fields, e.fieldDecl(t, l, i))
			}
		}
		info.fields = append(info.fields, e.varDecls(t, l.typ)...)
		info.methods = append(info.methods, e.methodDecls(t, l)...)
		info.methods = append(info.methods, e.funcDecls(t, l.typ)...)
	}
	info.ctors = e.constructorDecls(t)
	return info
}

func (e *Env) fieldDecl(class reflect.Type, l level, i int) *fieldDecl {
	sf := l.typ.Field(i)
	index := append(slices.Clone(l.index), i)
	mods := Private
	if sf.IsExported() {
		mods = Public
	}
	if sf.Anonymous {
		mods |= Embedded
	}
	annots := tagAnnotations(sf.Tag)
	annots = append(annots, e.registry.Annotations(registry.Member{Owner: l.typ, Name: sf.Name})...)
	return &fieldDecl{
		name:      sf.Name,
		typ:       sf.Type,
		class:     class,
		declaring: l.typ,
		index:     index,
		source:    sf,
		modifiers: mods,
		annots:    annots,
	}
}

func (e *Env) varDecls(class, owner reflect.Type) []*fieldDecl {
	var decls []*fieldDecl
	for _, v := range e.registry.Vars(owner) {
		decls = append(decls, e.varDecl(class, owner, v))
	}
	return decls
}

func (e *Env) varDecl(class, owner reflect.Type, v registry.Var) *fieldDecl {
	annots := slices.Clone(v.Annotations)
	annots = append(annots, e.registry.Annotations(registry.Member{Owner: owner, Name: v.Name})...)
	return &fieldDecl{
		name:      v.Name,
		typ:       v.Ptr.Type().Elem(),
		class:     class,
		declaring: owner,
		v:         v.Ptr,
		modifiers: visibility(v.Name) | Static,
		annots:    annots,
	}
}

func (e *Env) methodDecls(class reflect.Type, l level) []*invokableDecl {
	if l.typ.Kind() == reflect.Interface {
		return nil
	}
	ptr := reflect.PointerTo(l.typ)
	var decls []*invokableDecl
	for i := 0; i < ptr.NumMethod(); i++ {
		m := ptr.Method(i)
		if !declaredOn(l.typ, m) {
			continue
		}
		mods := visibility(m.Name) | Final
		if _, ok := l.typ.MethodByName(m.Name); !ok {
			mods |= PointerReceiver
		}
		if m.Type.IsVariadic() {
			mods |= Variadic
		}
		params := make([]reflect.Type, 0, m.Type.NumIn()-1)
		for j := 1; j < m.Type.NumIn(); j++ {
			params = append(params, m.Type.In(j))
		}
		decls = append(decls, &invokableDecl{
			kind:      kindMethod,
			name:      m.Name,
			class:     class,
			declaring: l.typ,
			fn:        m.Func,
			fnType:    m.Type,
			receiver:  true,
			index:     l.index,
			params:    params,
			modifiers: mods,
			annots:    e.registry.Annotations(registry.Member{Owner: l.typ, Name: m.Name}),
		})
	}
	return decls
}

func (e *Env) abstractDecl(t reflect.Type, m reflect.Method) *invokableDecl {
	mods := visibility(m.Name) | Abstract
	if m.Type.IsVariadic() {
		mods |= Variadic
	}
	params := make([]reflect.Type, m.Type.NumIn())
	for j := range params {
		params[j] = m.Type.In(j)
	}
	return &invokableDecl{
		kind:      kindMethod,
		name:      m.Name,
		class:     t,
		declaring: t,
		fnType:    m.Type,
		method:    m.Name,
		params:    params,
		modifiers: mods,
		annots:    e.registry.Annotations(registry.Member{Owner: t, Name: m.Name}),
	}
}

func (e *Env) funcDecls(class, owner reflect.Type) []*invokableDecl {
	var decls []*invokableDecl
	for _, f := range e.registry.Funcs(owner) {
		decls = append(decls, e.funcDecl(kindMethod, class, owner, f))
	}
	return decls
}

func (e *Env) funcDecl(kind invokableKind, class, owner reflect.Type, f registry.Func) *invokableDecl {
	ft := f.Value.Type()
	mods := visibility(f.Name)
	if kind == kindMethod {
		mods |= Static
	} else {
		mods |= Final
	}
	if ft.IsVariadic() {
		mods |= Variadic
	}
	params := make([]reflect.Type, ft.NumIn())
	for j := range params {
		params[j] = ft.In(j)
	}
	annots := slices.Clone(f.Annotations)
	annots = append(annots, e.registry.Annotations(registry.Member{Owner: owner, Name: f.Name})...)
	return &invokableDecl{
		kind:      kind,
		name:      f.Name,
		class:     class,
		declaring: owner,
		fn:        f.Value,
		fnType:    ft,
		params:    params,
		modifiers: mods,
		annots:    annots,
	}
}

func (e *Env) constructorDecls(t reflect.Type) []*invokableDecl {
	var decls []*invokableDecl
	for _, f := range e.registry.Constructors(t) {
		decls = append(decls, e.funcDecl(kindConstructor, t, t, f))
	}
	if len(decls) == 0 && t.Kind() != reflect.Interface {
		decls = append(decls, implicitConstructor(t))
	}
	return decls
}

// implicitConstructor returns the zero-argument constructor new(T) of a type
// without registered constructors.
func implicitConstructor(t reflect.Type) *invokableDecl {
	ft := reflect.FuncOf(nil, []reflect.Type{reflect.PointerTo(t)}, false)
	fn := reflect.MakeFunc(ft, func([]reflect.Value) []reflect.Value {
		return []reflect.Value{reflect.New(t)}
	})
	return &invokableDecl{
		kind:      kindConstructor,
		name:      "new",
		class:     t,
		declaring: t,
		fn:        fn,
		fnType:    ft,
		modifiers: Public | Final | Synthetic,
	}
}

// declaredOn reports whether m, a method of *t, is declared on t rather
// than promoted from an embedded field.
func declaredOn(t reflect.Type, m reflect.Method) bool {
	if t.Kind() != reflect.Struct {
		return true
	}
	promoted := false
	for i := 0; i < t.NumField() && !promoted; i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		ft := f.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		if ft.Kind() != reflect.Interface {
			ft = reflect.PointerTo(ft)
		}
		_, promoted = ft.MethodByName(m.Name)
	}
	if !promoted {
		return true
	}
	// an explicit method shadowing a promoted one is real code, the
	// promotion wrapper is compiler generated
	if !autogenerated(m.Func) {
		return true
	}
	if vm, ok := t.MethodByName(m.Name); ok && !autogenerated(vm.Func) {
		return true
	}
	return false
}

func autogenerated(fn reflect.Value) bool {
	f := runtime.FuncForPC(fn.Pointer())
	if f == nil {
		return false
	}
	file, _ := f.FileLine(f.Entry())
	return file == "<autogenerated>"
}

func visibility(name string) Modifier {
	if token.IsExported(name) {
		return Public
	}
	return Private
}

func paramName(i int) string {
	return fmt.Sprintf("arg%d", i)
}
