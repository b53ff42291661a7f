package reflect

import (
	"reflect"
	"strings"

	"github.com/goccy/unreflect/internal/errs"
	internalreflect "github.com/goccy/unreflect/internal/reflect"
	"github.com/goccy/unreflect/registry"
)

const (
	Invalid       = reflect.Invalid
	Bool          = reflect.Bool
	Int           = reflect.Int
	Int8          = reflect.Int8
	Int16         = reflect.Int16
	Int32         = reflect.Int32
	Int64         = reflect.Int64
	Uint          = reflect.Uint
	Uint8         = reflect.Uint8
	Uint16        = reflect.Uint16
	Uint32        = reflect.Uint32
	Uint64        = reflect.Uint64
	Uintptr       = reflect.Uintptr
	Float32       = reflect.Float32
	Float64       = reflect.Float64
	Complex64     = reflect.Complex64
	Complex128    = reflect.Complex128
	Array         = reflect.Array
	Chan          = reflect.Chan
	Func          = reflect.Func
	Interface     = reflect.Interface
	Map           = reflect.Map
	Ptr           = reflect.Ptr
	Slice         = reflect.Slice
	String        = reflect.String
	Struct        = reflect.Struct
	UnsafePointer = reflect.UnsafePointer
)

type Kind = reflect.Kind
type ChanDir = reflect.ChanDir
type StructTag = reflect.StructTag

// Type describes a Go type. Two Types are equal when they describe the same
// type. The zero Type describes no type.
type Type struct {
	typ reflect.Type
}

// Typed is implemented by descriptors that have a declared type.
type Typed interface {
	Type() Type
}

var anyType = reflect.TypeFor[any]()

// Root is the type every other type extends.
var Root = Type{typ: anyType}

// Of returns the Type of source. Type tokens (reflect.Type, Type), field and
// method declarations and descriptors yield their declared type. Any other
// value yields its dynamic type.
func Of(source any) (Type, error) {
	switch s := source.(type) {
	case nil:
		return Type{}, errs.Lookup("", "cannot derive the type of nil")
	case Type:
		return s, nil
	case *Type:
		if s == nil {
			return Type{}, errs.Lookup("", "cannot derive the type of nil")
		}
		return *s, nil
	case reflect.Type:
		return Type{typ: s}, nil
	case reflect.StructField:
		return Type{typ: s.Type}, nil
	case reflect.Method:
		return methodResult(s.Type), nil
	case Typed:
		return s.Type(), nil
	}
	return Type{typ: reflect.TypeOf(source)}, nil
}

func methodResult(ft reflect.Type) Type {
	if ft == nil || ft.NumOut() == 0 {
		return Type{}
	}
	return Type{typ: ft.Out(0)}
}

// MustOf is like Of but panics on nil.
func MustOf(source any) Type {
	t, err := Of(source)
	if err != nil {
		panic(err)
	}
	return t
}

func TypeOf[T any]() Type {
	return Type{typ: reflect.TypeFor[T]()}
}

func FromReflect(t reflect.Type) Type {
	return Type{typ: t}
}

func (t Type) IsValid() bool {
	return t.typ != nil
}

// Reflect returns the underlying reflect.Type, nil for the zero Type.
func (t Type) Reflect() reflect.Type {
	return t.typ
}

func (t Type) Kind() Kind {
	if t.typ == nil {
		return Invalid
	}
	return t.typ.Kind()
}

func (t Type) Name() string {
	if t.typ == nil {
		return ""
	}
	if t.typ.Name() != "" {
		return t.typ.Name()
	}
	return t.typ.String()
}

func (t Type) String() string {
	if t.typ == nil {
		return "<none>"
	}
	return t.typ.String()
}

// BaseName is the name of a generic type without its type arguments.
func (t Type) BaseName() string {
	name := t.Name()
	if i := strings.IndexByte(name, '['); i > 0 && t.typ.Name() != "" {
		return name[:i]
	}
	return name
}

func (t Type) IsRoot() bool {
	return t.typ == anyType
}

func (t Type) IsArray() bool {
	k := t.Kind()
	return k == Slice || k == Array
}

// ComponentType returns the element type of a slice or array.
func (t Type) ComponentType() Type {
	if !t.IsArray() {
		return Type{}
	}
	return Type{typ: t.typ.Elem()}
}

func (t Type) IsPrimitive() bool {
	return t.typ != nil && internalreflect.IsPrimitive(t.typ.Kind())
}

// Wrap maps a bool or numeric type to a pointer to it, the form that can
// hold an absent value. Other types are returned unchanged.
func (t Type) Wrap() Type {
	if !t.IsPrimitive() {
		return t
	}
	return Type{typ: reflect.PointerTo(t.typ)}
}

// Unwrap is the inverse of Wrap.
func (t Type) Unwrap() Type {
	if t.Kind() == Ptr && internalreflect.IsPrimitive(t.typ.Elem().Kind()) {
		return Type{typ: t.typ.Elem()}
	}
	return t
}

// Allocate returns a pointer to a new zero value of the type. No constructor runs.
func (t Type) Allocate() any {
	if t.typ == nil {
		return nil
	}
	return reflect.New(t.typ).Interface()
}

// Matches reports whether a value of other's type can be used where this
// type is expected: other is assignable to it, embeds it, or both are
// instantiations of the same generic type. other may be a type token or a value.
func (t Type) Matches(other any) bool {
	return t.MatchesIn(registry.Default, other)
}

// MatchesIn is Matches with the interfaces registered in r.
func (t Type) MatchesIn(r *registry.Registry, other any) bool {
	o, err := Of(other)
	if err != nil || !o.IsValid() || !t.IsValid() {
		return false
	}
	if o.typ.AssignableTo(t.typ) {
		return true
	}
	if t.sameGeneric(o) {
		return true
	}
	for sub := range o.SubTypesIn(r) {
		if sub == t {
			return true
		}
	}
	return false
}

// MatchesExact reports whether other describes exactly this type.
func (t Type) MatchesExact(other any) bool {
	o, err := Of(other)
	return err == nil && o == t
}

func (t Type) sameGeneric(o Type) bool {
	if t.typ.Name() == "" || o.typ.Name() == "" || t.typ.PkgPath() != o.typ.PkgPath() {
		return false
	}
	if !strings.Contains(t.typ.Name(), "[") {
		return false
	}
	return t.BaseName() == o.BaseName()
}
