package reflect

import (
	"iter"
	"reflect"
	"strconv"
	"strings"
	"unsafe"

	"github.com/goccy/unreflect/registry"
)

// GenericTypes yields the type arguments of the type: key and element of a
// map, element of a channel, or the arguments of an instantiated generic
// type. Arguments that cannot be resolved at run time end the sequence.
// Named arguments not reachable from the type are looked up in registry.Default.
func (t Type) GenericTypes() iter.Seq[Type] {
	return t.GenericTypesIn(registry.Default)
}

// GenericTypesIn is GenericTypes looking named arguments up in r.
func (t Type) GenericTypesIn(r *registry.Registry) iter.Seq[Type] {
	return func(yield func(Type) bool) {
		for _, a := range t.genericTypes(r) {
			if !a.IsValid() || !yield(a) {
				return
			}
		}
	}
}

// GenericType returns the index-th type argument, or the zero Type when the
// slot does not exist or its argument was erased.
func (t Type) GenericType(index int) Type {
	return t.GenericTypeIn(registry.Default, index)
}

func (t Type) GenericTypeIn(r *registry.Registry, index int) Type {
	args := t.genericTypes(r)
	if index < 0 || index >= len(args) {
		return Type{}
	}
	return args[index]
}

func (t Type) genericTypes(reg *registry.Registry) []Type {
	if t.typ == nil {
		return nil
	}
	switch t.typ.Kind() {
	case reflect.Map:
		return []Type{{typ: t.typ.Key()}, {typ: t.typ.Elem()}}
	case reflect.Chan:
		return []Type{{typ: t.typ.Elem()}}
	}
	args := typeArgs(t.typ.Name())
	if len(args) == 0 {
		return nil
	}
	if reg == nil {
		reg = registry.Default
	}
	r := &argResolver{root: t.typ, registry: reg, seen: map[reflect.Type]struct{}{}}
	types := make([]Type, len(args))
	for i, arg := range args {
		types[i] = Type{typ: r.resolve(arg)}
	}
	return types
}

// typeArgs splits the bracketed argument list of an instantiated type name:
// Pair[int,map[string]int] yields int and map[string]int.
func typeArgs(name string) []string {
	open := strings.IndexByte(name, '[')
	if open < 0 || !strings.HasSuffix(name, "]") {
		return nil
	}
	body := name[open+1 : len(name)-1]
	var (
		args  []string
		depth int
		start int
	)
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(body[start:i]))
				start = i + 1
			}
		}
	}
	return append(args, strings.TrimSpace(body[start:]))
}

var predeclared = map[string]reflect.Type{
	"bool":           reflect.TypeFor[bool](),
	"int":            reflect.TypeFor[int](),
	"int8":           reflect.TypeFor[int8](),
	"int16":          reflect.TypeFor[int16](),
	"int32":          reflect.TypeFor[int32](),
	"int64":          reflect.TypeFor[int64](),
	"uint":           reflect.TypeFor[uint](),
	"uint8":          reflect.TypeFor[uint8](),
	"uint16":         reflect.TypeFor[uint16](),
	"uint32":         reflect.TypeFor[uint32](),
	"uint64":         reflect.TypeFor[uint64](),
	"uintptr":        reflect.TypeFor[uintptr](),
	"float32":        reflect.TypeFor[float32](),
	"float64":        reflect.TypeFor[float64](),
	"complex64":      reflect.TypeFor[complex64](),
	"complex128":     reflect.TypeFor[complex128](),
	"string":         reflect.TypeFor[string](),
	"byte":           reflect.TypeFor[byte](),
	"rune":           reflect.TypeFor[rune](),
	"error":          reflect.TypeFor[error](),
	"interface {}":   anyType,
	"any":            anyType,
	"unsafe.Pointer": reflect.TypeFor[unsafe.Pointer](),
}

// argResolver maps a type argument, as spelled inside an instantiated type
// name, back to a reflect.Type. Named arguments are found among the types
// reachable from the instantiated type and in the registry.
type argResolver struct {
	root     reflect.Type
	registry *registry.Registry
	seen     map[reflect.Type]struct{}
	named    map[string]reflect.Type
}

func (r *argResolver) resolve(s string) reflect.Type {
	if t, ok := predeclared[s]; ok {
		return t
	}
	switch {
	case strings.HasPrefix(s, "[]"):
		if elem := r.resolve(s[2:]); elem != nil {
			return reflect.SliceOf(elem)
		}
		return nil
	case strings.HasPrefix(s, "*"):
		if elem := r.resolve(s[1:]); elem != nil {
			return reflect.PointerTo(elem)
		}
		return nil
	case strings.HasPrefix(s, "chan "):
		if elem := r.resolve(s[len("chan "):]); elem != nil {
			return reflect.ChanOf(reflect.BothDir, elem)
		}
		return nil
	case strings.HasPrefix(s, "map["):
		end := closing(s, len("map"))
		if end < 0 {
			return nil
		}
		key, elem := r.resolve(s[len("map["):end]), r.resolve(s[end+1:])
		if key == nil || elem == nil || !key.Comparable() {
			return nil
		}
		return reflect.MapOf(key, elem)
	case strings.HasPrefix(s, "["):
		end := closing(s, 0)
		if end < 0 {
			return nil
		}
		n, err := strconv.Atoi(s[1:end])
		if err != nil {
			return nil
		}
		if elem := r.resolve(s[end+1:]); elem != nil {
			return reflect.ArrayOf(n, elem)
		}
		return nil
	}
	if t, ok := r.reachable()[s]; ok {
		return t
	}
	if t, ok := r.registry.Lookup(s); ok {
		return t
	}
	return nil
}

// closing returns the index of the bracket matching the one at open.
func closing(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func (r *argResolver) reachable() map[string]reflect.Type {
	if r.named == nil {
		r.named = map[string]reflect.Type{}
		r.walk(r.root)
		r.walk(reflect.PointerTo(r.root))
	}
	return r.named
}

func (r *argResolver) walk(t reflect.Type) {
	if _, exists := r.seen[t]; exists {
		return
	}
	r.seen[t] = struct{}{}
	if t.Name() != "" && t.PkgPath() != "" {
		r.named[registry.Name(t)] = t
		r.named[t.String()] = t
	}
	switch t.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Array, reflect.Chan:
		r.walk(t.Elem())
	case reflect.Map:
		r.walk(t.Key())
		r.walk(t.Elem())
	case reflect.Func:
		for i := 0; i < t.NumIn(); i++ {
			r.walk(t.In(i))
		}
		for i := 0; i < t.NumOut(); i++ {
			r.walk(t.Out(i))
		}
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			r.walk(t.Field(i).Type)
		}
	}
	for i := 0; i < t.NumMethod(); i++ {
		r.walk(t.Method(i).Type)
	}
}
