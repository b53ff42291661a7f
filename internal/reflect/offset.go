package reflect

import (
	"reflect"
	"unsafe"
)

// Step is one hop of a field path: add Offset, then follow the pointer
// stored there if Deref is set.
type Step struct {
	Offset uintptr
	Deref  bool
}

// Steps flattens a field index path rooted at struct type t into raw
// offsets. Consecutive hops through embedded values are merged.
func Steps(t reflect.Type, index []int) ([]Step, reflect.Type) {
	steps := []Step{{}}
	cur := t
	for i, x := range index {
		f := cur.Field(x)
		steps[len(steps)-1].Offset += f.Offset
		cur = f.Type
		if i == len(index)-1 {
			break
		}
		if cur.Kind() == reflect.Ptr {
			steps[len(steps)-1].Deref = true
			steps = append(steps, Step{})
			cur = cur.Elem()
		}
	}
	return steps, cur
}

// Walk applies steps to p. It reports false if a nil embedded pointer is met.
func Walk(p unsafe.Pointer, steps []Step) (unsafe.Pointer, bool) {
	for _, s := range steps {
		p = unsafe.Add(p, s.Offset)
		if s.Deref {
			p = *(*unsafe.Pointer)(p)
			if p == nil {
				return nil, false
			}
		}
	}
	return p, true
}

type Ancestor struct {
	Type      reflect.Type
	Index     []int
	Interface bool
}

// Direct reports whether the ancestor is embedded directly in the root type.
func (a Ancestor) Direct() bool {
	return len(a.Index) == 1
}

// Ancestors lists the types embedded in t, breadth first, each with the
// field index path leading to it. Each type appears once, at its shallowest
// depth. Embedded pointers are reported by their element type.
func Ancestors(t reflect.Type) []Ancestor {
	if t.Kind() != reflect.Struct {
		return nil
	}
	type node struct {
		typ   reflect.Type
		index []int
	}
	seen := map[reflect.Type]struct{}{t: {}}
	queue := []node{{typ: t}}
	var ancestors []Ancestor
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for i := 0; i < n.typ.NumField(); i++ {
			f := n.typ.Field(i)
			if !f.Anonymous {
				continue
			}
			ft := f.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if _, exists := seen[ft]; exists {
				continue
			}
			seen[ft] = struct{}{}
			index := make([]int, len(n.index)+1)
			copy(index, n.index)
			index[len(n.index)] = i
			ancestors = append(ancestors, Ancestor{
				Type:      ft,
				Index:     index,
				Interface: ft.Kind() == reflect.Interface,
			})
			if ft.Kind() == reflect.Struct {
				queue = append(queue, node{typ: ft, index: index})
			}
		}
	}
	return ancestors
}

// EmbedPath returns the field index path from struct type from to the
// embedded type to.
func EmbedPath(from, to reflect.Type) ([]int, bool) {
	for _, a := range Ancestors(from) {
		if a.Type == to {
			return a.Index, true
		}
	}
	return nil, false
}
