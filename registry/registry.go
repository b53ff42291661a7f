package registry

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var errorType = reflect.TypeFor[error]()

// Func is a registered function: a constructor or a static method.
type Func struct {
	Name        string
	Value       reflect.Value
	Annotations []any
}

// Var is a registered package-level variable exposed as a static field.
type Var struct {
	Name        string
	Ptr         reflect.Value
	Annotations []any
}

// Member identifies a member of a type for annotation lookup.
type Member struct {
	Owner reflect.Type
	Name  string
}

type Registry struct {
	mu          sync.RWMutex
	version     atomic.Uint64
	types       map[string]reflect.Type
	interfaces  []reflect.Type
	ctors       map[reflect.Type][]Func
	funcs       map[reflect.Type][]Func
	vars        map[reflect.Type][]Var
	annotations map[any][]any
}

func New() *Registry {
	return &Registry{
		types:       map[string]reflect.Type{},
		ctors:       map[reflect.Type][]Func{},
		funcs:       map[reflect.Type][]Func{},
		vars:        map[reflect.Type][]Var{},
		annotations: map[any][]any{},
	}
}

// Default is the process-wide registry. error and fmt.Stringer are
// registered as interfaces.
var Default = newDefault()

func newDefault() *Registry {
	r := New()
	r.RegisterInterface((*error)(nil))
	r.RegisterInterface((*fmt.Stringer)(nil))
	return r
}

// Name returns the qualified name of t used as registry key.
func Name(t reflect.Type) string {
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

func typeOf(v any) reflect.Type {
	if t, ok := v.(reflect.Type); ok {
		return t
	}
	return reflect.TypeOf(v)
}

// Version changes whenever the registry is modified.
func (r *Registry) Version() uint64 {
	return r.version.Load()
}

func (r *Registry) touch() {
	r.version.Add(1)
}

// RegisterType makes types resolvable by name. Values and reflect.Type are accepted.
func (r *Registry) RegisterType(values ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range values {
		t := typeOf(v)
		if t == nil {
			continue
		}
		r.registerType(t)
	}
	r.touch()
}

func (r *Registry) registerType(t reflect.Type) {
	for t.Kind() == reflect.Ptr && t.Name() == "" {
		t = t.Elem()
	}
	r.types[Name(t)] = t
}

// RegisterInterface registers the interface pointed to by ptr, e.g. (*io.Reader)(nil).
func (r *Registry) RegisterInterface(ptr any) error {
	t := typeOf(ptr)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Interface {
		return fmt.Errorf("registry: %v is not a pointer to an interface", typeOf(ptr))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !slices.Contains(r.interfaces, t) {
		r.interfaces = append(r.interfaces, t)
	}
	r.registerType(t)
	r.touch()
	return nil
}

// RegisterConstructor registers fn as a constructor of the type it returns.
// fn must return T or *T, optionally followed by an error.
func (r *Registry) RegisterConstructor(fn any, annotations ...any) (reflect.Type, error) {
	v := reflect.ValueOf(fn)
	owner, err := ConstructedType(v)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[owner] = append(r.ctors[owner], Func{Name: FuncName(v), Value: v, Annotations: annotations})
	r.registerType(owner)
	r.touch()
	return owner, nil
}

// ConstructedType returns the type a constructor function builds.
func ConstructedType(v reflect.Value) (reflect.Type, error) {
	if v.Kind() != reflect.Func || v.IsNil() {
		return nil, fmt.Errorf("registry: constructor must be a non-nil func, got %s", v.Kind())
	}
	ft := v.Type()
	switch {
	case ft.NumOut() == 1:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
	default:
		return nil, fmt.Errorf("registry: constructor %s must return T, *T or (T, error)", ft)
	}
	owner := ft.Out(0)
	if owner.Kind() == reflect.Ptr && owner.Elem().Name() != "" {
		owner = owner.Elem()
	}
	return owner, nil
}

// RegisterFunc registers fn as a static method of owner.
func (r *Registry) RegisterFunc(owner any, name string, fn any, annotations ...any) error {
	t := typeOf(owner)
	v := reflect.ValueOf(fn)
	if t == nil {
		return fmt.Errorf("registry: nil owner for %s", name)
	}
	if v.Kind() != reflect.Func || v.IsNil() {
		return fmt.Errorf("registry: %s must be a non-nil func", name)
	}
	if name == "" {
		name = FuncName(v)
	}
	t = deref(t)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[t] = append(r.funcs[t], Func{Name: name, Value: v, Annotations: annotations})
	r.registerType(t)
	r.touch()
	return nil
}

// RegisterVar registers the variable ptr points to as a static field of owner.
func (r *Registry) RegisterVar(owner any, name string, ptr any, annotations ...any) error {
	t := typeOf(owner)
	v := reflect.ValueOf(ptr)
	if t == nil {
		return fmt.Errorf("registry: nil owner for %s", name)
	}
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("registry: %s must be a non-nil pointer to a variable", name)
	}
	t = deref(t)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vars[t] = append(r.vars[t], Var{Name: name, Ptr: v, Annotations: annotations})
	r.registerType(t)
	r.touch()
	return nil
}

// Annotate attaches values to a reflect.Type or a Member.
func (r *Registry) Annotate(target any, annotations ...any) {
	switch target.(type) {
	case reflect.Type, Member:
	default:
		target = typeOf(target)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.annotations[target] = append(r.annotations[target], annotations...)
	r.touch()
}

func (r *Registry) Lookup(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// Names returns every registered type name in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := maps.Keys(r.types)
	r.mu.RUnlock()
	slices.Sort(names)
	return names
}

// Types returns every registered type ordered by name.
func (r *Registry) Types() []reflect.Type {
	names := r.Names()
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]reflect.Type, 0, len(names))
	for _, name := range names {
		if t, ok := r.types[name]; ok {
			types = append(types, t)
		}
	}
	return types
}

func (r *Registry) Interfaces() []reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.interfaces)
}

func (r *Registry) Constructors(t reflect.Type) []Func {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.ctors[t])
}

func (r *Registry) Funcs(t reflect.Type) []Func {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.funcs[t])
}

func (r *Registry) Vars(t reflect.Type) []Var {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.vars[t])
}

// Owner finds the type a function was registered against, as a constructor
// or a static method.
func (r *Registry) Owner(fn reflect.Value) (reflect.Type, bool) {
	if fn.Kind() != reflect.Func || fn.IsNil() {
		return nil, false
	}
	pc := fn.Pointer()
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, table := range []map[reflect.Type][]Func{r.funcs, r.ctors} {
		for t, fns := range table {
			if slices.ContainsFunc(fns, func(f Func) bool { return f.Value.Pointer() == pc }) {
				return t, true
			}
		}
	}
	return nil, false
}

// VarOwner finds the type a variable was registered against.
func (r *Registry) VarOwner(ptr reflect.Value) (reflect.Type, bool) {
	if ptr.Kind() != reflect.Ptr || ptr.IsNil() {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for t, vars := range r.vars {
		if slices.ContainsFunc(vars, func(v Var) bool { return v.Ptr.Pointer() == ptr.Pointer() }) {
			return t, true
		}
	}
	return nil, false
}

func (r *Registry) Annotations(target any) []any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.annotations[target])
}

// FuncName returns the short name of a function value: NewUser for
// example.com/pkg.NewUser.
func FuncName(fn reflect.Value) string {
	f := runtime.FuncForPC(fn.Pointer())
	if f == nil {
		return ""
	}
	name := f.Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func deref(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Ptr && t.Name() == "" && t.Elem().Name() != "" {
		return t.Elem()
	}
	return t
}
