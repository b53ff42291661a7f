package reflect

import (
	"iter"
	"reflect"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	internalreflect "github.com/goccy/unreflect/internal/reflect"
	"github.com/goccy/unreflect/registry"
)

// SuperType returns the direct parent: the first embedded non-interface
// type, or the root type. The root type has no parent.
func (t Type) SuperType() Type {
	if t.typ == nil || t.IsRoot() {
		return Type{}
	}
	base, ptr := t.structBase()
	if base != nil {
		for _, a := range internalreflect.Ancestors(base) {
			if a.Direct() && !a.Interface {
				if ptr {
					return Type{typ: reflect.PointerTo(a.Type)}
				}
				return Type{typ: a.Type}
			}
		}
	}
	return Root
}

// SuperTypeAt returns the index-th element of SuperTypes. Index 0 is the
// direct parent.
func (t Type) SuperTypeAt(index int) Type {
	if index < 0 {
		return Type{}
	}
	cur := t.SuperType()
	for i := 0; i < index && cur.IsValid(); i++ {
		cur = cur.SuperType()
	}
	return cur
}

// SuperTypes yields the parent chain, excluding the type itself.
func (t Type) SuperTypes() iter.Seq[Type] {
	return func(yield func(Type) bool) {
		for cur := t.SuperType(); cur.IsValid(); cur = cur.SuperType() {
			if !yield(cur) {
				return
			}
		}
	}
}

// SubType returns the type itself, the first element of SubTypes.
func (t Type) SubType() Type {
	return t.SubTypeAt(0)
}

func (t Type) SubTypeAt(index int) Type {
	return t.SubTypeAtIn(registry.Default, index)
}

// SubTypeAtIn is SubTypeAt with the interfaces registered in r.
func (t Type) SubTypeAtIn(r *registry.Registry, index int) Type {
	if index < 0 {
		return Type{}
	}
	i := 0
	for s := range t.SubTypesIn(r) {
		if i == index {
			return s
		}
		i++
	}
	return Type{}
}

// SubTypes yields every type this type can be used as: itself, every
// embedded type, every registered interface it implements and the root
// type. A type is always yielded before the types it extends.
// Each iteration recomputes the sequence. Interfaces come from
// registry.Default.
func (t Type) SubTypes() iter.Seq[Type] {
	return t.SubTypesIn(registry.Default)
}

// SubTypesIn is SubTypes with the interfaces registered in r.
func (t Type) SubTypesIn(r *registry.Registry) iter.Seq[Type] {
	if r == nil {
		r = registry.Default
	}
	return func(yield func(Type) bool) {
		if t.typ == nil {
			return
		}
		for _, s := range t.hierarchy(r) {
			if !yield(s) {
				return
			}
		}
	}
}

// structBase returns the struct type the hierarchy is computed from and
// whether the hierarchy is pointerized.
func (t Type) structBase() (reflect.Type, bool) {
	switch {
	case t.typ.Kind() == reflect.Struct:
		return t.typ, false
	case t.typ.Kind() == reflect.Ptr && t.typ.Elem().Kind() == reflect.Struct:
		return t.typ.Elem(), true
	}
	return nil, false
}

type hierarchyGraph struct {
	g     *simple.DirectedGraph
	ids   map[reflect.Type]int64
	types []reflect.Type
}

func (h *hierarchyGraph) node(t reflect.Type) graph.Node {
	if id, exists := h.ids[t]; exists {
		return h.g.Node(id)
	}
	n := simple.Node(len(h.types))
	h.ids[t] = n.ID()
	h.types = append(h.types, t)
	h.g.AddNode(n)
	return n
}

func (h *hierarchyGraph) extend(sub, super reflect.Type) {
	from, to := h.node(sub), h.node(super)
	if from.ID() == to.ID() {
		return
	}
	h.g.SetEdge(h.g.NewEdge(from, to))
}

func (t Type) hierarchy(r *registry.Registry) []Type {
	h := &hierarchyGraph{
		g:   simple.NewDirectedGraph(),
		ids: map[reflect.Type]int64{},
	}
	h.node(t.typ)

	wrap := func(a reflect.Type) reflect.Type { return a }
	base, ptr := t.structBase()
	if ptr {
		wrap = func(a reflect.Type) reflect.Type {
			if a.Kind() == reflect.Interface {
				return a
			}
			return reflect.PointerTo(a)
		}
	}
	if base != nil {
		extendAncestors(h, t.typ, base, wrap)
	}
	for _, iface := range r.Interfaces() {
		if iface != t.typ && t.typ.Implements(iface) {
			h.extend(t.typ, iface)
		}
	}
	if t.typ != anyType {
		for _, typ := range h.types {
			if typ != anyType {
				h.extend(typ, anyType)
			}
		}
	}

	sorted, err := topo.SortStabilized(h.g, nil)
	if err != nil {
		// embedding cannot form cycles; keep discovery order if it ever does
		sorted = graph.NodesOf(h.g.Nodes())
	}
	types := make([]Type, 0, len(sorted))
	for _, n := range sorted {
		types = append(types, Type{typ: h.types[n.ID()]})
	}
	return types
}

func extendAncestors(h *hierarchyGraph, sub, base reflect.Type, wrap func(reflect.Type) reflect.Type) {
	for _, a := range internalreflect.Ancestors(base) {
		if !a.Direct() {
			continue
		}
		super := wrap(a.Type)
		_, visited := h.ids[super]
		h.extend(sub, super)
		if !visited && a.Type.Kind() == reflect.Struct {
			extendAncestors(h, super, a.Type, wrap)
		}
	}
}
