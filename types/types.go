package types

import (
	"fmt"
	"go/token"
	"go/types"
	"path"
	"reflect"
	"sync"
)

var (
	errorType = reflect.TypeFor[error]()

	pkgMu sync.Mutex
	pkgs  = map[string]*types.Package{}
)

// Package returns the go/types package for an import path. Packages are
// shared so that named types from the same path render with the same qualifier.
func Package(pkgPath string) *types.Package {
	pkgMu.Lock()
	defer pkgMu.Unlock()
	if pkg, exists := pkgs[pkgPath]; exists {
		return pkg
	}
	pkg := types.NewPackage(pkgPath, path.Base(pkgPath))
	pkgs[pkgPath] = pkg
	return pkg
}

type converter struct {
	cachedMap map[reflect.Type]types.Type
}

func newConverter() *converter {
	return &converter{cachedMap: map[reflect.Type]types.Type{}}
}

func TypeFromReflectType(typ reflect.Type) types.Type {
	return newConverter().typeFromReflectType(typ)
}

func (c *converter) typeFromReflectType(typ reflect.Type) types.Type {
	if t, found := c.cachedMap[typ]; found {
		return t
	}
	if typ == errorType {
		return types.Universe.Lookup("error").Type()
	}
	if typ.Name() != "" && typ.PkgPath() != "" {
		return c.namedFromReflectType(typ)
	}
	if basic, ok := basicFromKind(typ.Kind()); ok {
		return basic
	}
	return c.underlyingFromReflectType(typ)
}

// namedFromReflectType registers the named type before converting its
// underlying type so recursive types terminate.
func (c *converter) namedFromReflectType(typ reflect.Type) types.Type {
	obj := types.NewTypeName(token.NoPos, Package(typ.PkgPath()), typ.Name(), nil)
	named := types.NewNamed(obj, nil, nil)
	c.cachedMap[typ] = named
	named.SetUnderlying(c.underlyingFromReflectType(typ))
	return named
}

func (c *converter) underlyingFromReflectType(typ reflect.Type) types.Type {
	switch typ.Kind() {
	case reflect.Array:
		return types.NewArray(c.typeFromReflectType(typ.Elem()), int64(typ.Len()))
	case reflect.Chan:
		return types.NewChan(chanDir(typ.ChanDir()), c.typeFromReflectType(typ.Elem()))
	case reflect.Func:
		return c.signatureFromReflectType(nil, typ)
	case reflect.Interface:
		methods := make([]*types.Func, typ.NumMethod())
		for i := 0; i < typ.NumMethod(); i++ {
			mtd := typ.Method(i)
			sig := c.signatureFromReflectType(nil, mtd.Type)
			methods[i] = types.NewFunc(token.NoPos, pkgOf(mtd.PkgPath), mtd.Name, sig)
		}
		return types.NewInterfaceType(methods, nil).Complete()
	case reflect.Map:
		return types.NewMap(c.typeFromReflectType(typ.Key()), c.typeFromReflectType(typ.Elem()))
	case reflect.Ptr:
		return types.NewPointer(c.typeFromReflectType(typ.Elem()))
	case reflect.Slice:
		return types.NewSlice(c.typeFromReflectType(typ.Elem()))
	case reflect.Struct:
		return c.structFromReflectType(typ)
	}
	// named basic types
	if basic, ok := basicFromKind(typ.Kind()); ok {
		return basic
	}
	return types.Typ[types.Invalid]
}

func basicFromKind(kind reflect.Kind) (types.Type, bool) {
	switch kind {
	case reflect.Bool:
		return types.Typ[types.Bool], true
	case reflect.Int:
		return types.Typ[types.Int], true
	case reflect.Int8:
		return types.Typ[types.Int8], true
	case reflect.Int16:
		return types.Typ[types.Int16], true
	case reflect.Int32:
		return types.Typ[types.Int32], true
	case reflect.Int64:
		return types.Typ[types.Int64], true
	case reflect.Uint:
		return types.Typ[types.Uint], true
	case reflect.Uint8:
		return types.Typ[types.Uint8], true
	case reflect.Uint16:
		return types.Typ[types.Uint16], true
	case reflect.Uint32:
		return types.Typ[types.Uint32], true
	case reflect.Uint64:
		return types.Typ[types.Uint64], true
	case reflect.Uintptr:
		return types.Typ[types.Uintptr], true
	case reflect.Float32:
		return types.Typ[types.Float32], true
	case reflect.Float64:
		return types.Typ[types.Float64], true
	case reflect.Complex64:
		return types.Typ[types.Complex64], true
	case reflect.Complex128:
		return types.Typ[types.Complex128], true
	case reflect.String:
		return types.Typ[types.String], true
	case reflect.UnsafePointer:
		return types.Typ[types.UnsafePointer], true
	}
	return nil, false
}

func chanDir(dir reflect.ChanDir) types.ChanDir {
	switch dir {
	case reflect.SendDir:
		return types.SendOnly
	case reflect.RecvDir:
		return types.RecvOnly
	}
	return types.SendRecv
}

func pkgOf(pkgPath string) *types.Package {
	if pkgPath == "" {
		return nil
	}
	return Package(pkgPath)
}

// MethodSignatureFromReflectType builds the signature of mtd with recv as
// receiver. mtd.Type is expected to carry the receiver as first parameter,
// as methods obtained from a concrete reflect.Type do.
func MethodSignatureFromReflectType(recv reflect.Type, mtd reflect.Method) *types.Signature {
	c := newConverter()
	ft := mtd.Type
	params := make([]*types.Var, 0, ft.NumIn())
	for i := 1; i < ft.NumIn(); i++ {
		params = append(params, types.NewParam(token.NoPos, nil, "", c.typeFromReflectType(ft.In(i))))
	}
	results := c.results(ft)
	return types.NewSignatureType(
		types.NewVar(token.NoPos, nil, "", c.typeFromReflectType(recv)),
		nil, nil,
		types.NewTuple(params...),
		results,
		ft.IsVariadic(),
	)
}

func SignatureFromReflectType(typ reflect.Type) (*types.Signature, error) {
	if typ.Kind() != reflect.Func {
		return nil, fmt.Errorf("failed to convert from reflect.Type to *types.Signature. from type is %s", typ.Kind())
	}
	return newConverter().signatureFromReflectType(nil, typ), nil
}

// FuncSignature builds the signature func(params...) (results...).
func FuncSignature(params, results []reflect.Type) *types.Signature {
	c := newConverter()
	in := make([]*types.Var, len(params))
	for i, p := range params {
		in[i] = types.NewParam(token.NoPos, nil, "", c.typeFromReflectType(p))
	}
	out := make([]*types.Var, len(results))
	for i, r := range results {
		out[i] = types.NewParam(token.NoPos, nil, "", c.typeFromReflectType(r))
	}
	return types.NewSignatureType(nil, nil, nil, types.NewTuple(in...), types.NewTuple(out...), false)
}

func (c *converter) signatureFromReflectType(recv *types.Var, typ reflect.Type) *types.Signature {
	params := make([]*types.Var, 0, typ.NumIn())
	for i := 0; i < typ.NumIn(); i++ {
		params = append(params, types.NewParam(token.NoPos, nil, "", c.typeFromReflectType(typ.In(i))))
	}
	return types.NewSignatureType(recv, nil, nil, types.NewTuple(params...), c.results(typ), typ.IsVariadic())
}

func (c *converter) results(typ reflect.Type) *types.Tuple {
	results := make([]*types.Var, 0, typ.NumOut())
	for i := 0; i < typ.NumOut(); i++ {
		results = append(results, types.NewParam(token.NoPos, nil, "", c.typeFromReflectType(typ.Out(i))))
	}
	return types.NewTuple(results...)
}

func StructTypeFromReflectType(typ reflect.Type) (*types.Struct, error) {
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("failed to convert from reflect.Type to *types.Struct. from type is %s", typ.Kind())
	}
	return newConverter().structFromReflectType(typ), nil
}

func (c *converter) structFromReflectType(typ reflect.Type) *types.Struct {
	fields := make([]*types.Var, 0, typ.NumField())
	tags := make([]string, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		structField := typ.Field(i)
		fields = append(fields, types.NewField(
			token.NoPos,
			pkgOf(structField.PkgPath),
			structField.Name,
			c.typeFromReflectType(structField.Type),
			structField.Anonymous,
		))
		tags = append(tags, string(structField.Tag))
	}
	return types.NewStruct(fields, tags)
}

// TypeString renders t qualifying named types by package name.
func TypeString(t types.Type) string {
	return types.TypeString(t, func(pkg *types.Package) string {
		return pkg.Name()
	})
}

// String renders a reflect.Type the way go/types prints it.
func String(typ reflect.Type) string {
	return TypeString(TypeFromReflectType(typ))
}
