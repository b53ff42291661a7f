package unreflect

import (
	"reflect"
	"strconv"
)

// Tag is one key:"value" entry of a struct tag, exposed as a field annotation.
type Tag struct {
	Key   string
	Value string
}

// Annotated is implemented by every descriptor.
type Annotated interface {
	Annotations() []any
}

// AnnotationOf returns the first annotation of a of type A.
func AnnotationOf[A any](a Annotated) (A, bool) {
	for _, v := range a.Annotations() {
		if x, ok := v.(A); ok {
			return x, true
		}
	}
	var zero A
	return zero, false
}

func findAnnotation(annots []any, kind reflect.Type) (any, bool) {
	if kind == nil {
		return nil, false
	}
	for _, v := range annots {
		if v == nil {
			continue
		}
		t := reflect.TypeOf(v)
		if t == kind || kind.Kind() == reflect.Interface && t.Implements(kind) {
			return v, true
		}
	}
	return nil, false
}

// tagAnnotations splits a struct tag into its entries, in order. It mirrors
// the scanner of reflect.StructTag.Lookup, which only finds a single key,
// and keeps every entry instead. Scanning stops at the first malformed entry
// as Lookup does.
func tagAnnotations(tag reflect.StructTag) []any {
	var tags []any
	s := string(tag)
	for s != "" {
		i := 0
		for i < len(s) && s[i] == ' ' {
			i++
		}
		s = s[i:]
		if s == "" {
			break
		}
		i = 0
		for i < len(s) && s[i] > ' ' && s[i] != ':' && s[i] != '"' && s[i] != 0x7f {
			i++
		}
		if i == 0 || i+1 >= len(s) || s[i] != ':' || s[i+1] != '"' {
			break
		}
		key := s[:i]
		s = s[i+1:]

		i = 1
		for i < len(s) && s[i] != '"' {
			if s[i] == '\\' {
				i++
			}
			i++
		}
		if i >= len(s) {
			break
		}
		quoted := s[:i+1]
		s = s[i+1:]
		value, err := strconv.Unquote(quoted)
		if err != nil {
			break
		}
		tags = append(tags, Tag{Key: key, Value: value})
	}
	return tags
}
