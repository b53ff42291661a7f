package unreflect

import (
	"reflect"

	internalreflect "github.com/goccy/unreflect/internal/reflect"
	ureflect "github.com/goccy/unreflect/reflect"
	"github.com/goccy/unreflect/registry"
)

// MatchParameters reports whether argsOrTypes fits the declared parameter
// types. When every element is a type token (reflect.Type or Type) the
// elements are compared as types, otherwise as values: each value's dynamic
// type is compared and nil fits any nillable parameter. A value list made
// only of type tokens is therefore always compared as types. Embedding and
// interfaces are resolved against registry.Default.
func MatchParameters(params []ureflect.Type, argsOrTypes ...any) bool {
	return matchParameters(registry.Default, params, argsOrTypes)
}

func matchParameters(r *registry.Registry, params []ureflect.Type, argsOrTypes []any) bool {
	if len(params) != len(argsOrTypes) {
		return false
	}
	types := isTypeList(argsOrTypes)
	for i, p := range params {
		arg := argsOrTypes[i]
		if !types && arg == nil {
			if !internalreflect.IsNillable(p.Kind()) {
				return false
			}
			continue
		}
		if !types {
			arg = reflect.TypeOf(arg)
		}
		if !p.MatchesIn(r, arg) {
			return false
		}
	}
	return true
}

// Matches reports whether inv accepts argsOrTypes.
func Matches(inv Invokable, argsOrTypes ...any) bool {
	return inv.Matches(argsOrTypes...)
}

func isTypeList(values []any) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		switch v.(type) {
		case reflect.Type, ureflect.Type:
		default:
			return false
		}
	}
	return true
}
