package unreflect

import "strings"

// Modifier is a set of member attributes.
type Modifier uint32

const (
	Public Modifier = 1 << iota
	Private
	Static
	Abstract
	Final
	Interface
	Embedded
	Variadic
	PointerReceiver
	Synthetic
)

var modifierNames = []struct {
	m    Modifier
	name string
}{
	{Public, "public"},
	{Private, "private"},
	{Static, "static"},
	{Abstract, "abstract"},
	{Final, "final"},
	{Interface, "interface"},
	{Embedded, "embedded"},
	{Variadic, "variadic"},
	{PointerReceiver, "pointer-receiver"},
	{Synthetic, "synthetic"},
}

func (m Modifier) Has(o Modifier) bool { return m&o == o }

func (m Modifier) IsPublic() bool          { return m.Has(Public) }
func (m Modifier) IsPrivate() bool         { return m.Has(Private) }
func (m Modifier) IsStatic() bool          { return m.Has(Static) }
func (m Modifier) IsAbstract() bool        { return m.Has(Abstract) }
func (m Modifier) IsFinal() bool           { return m.Has(Final) }
func (m Modifier) IsInterface() bool       { return m.Has(Interface) }
func (m Modifier) IsEmbedded() bool        { return m.Has(Embedded) }
func (m Modifier) IsVariadic() bool        { return m.Has(Variadic) }
func (m Modifier) IsPointerReceiver() bool { return m.Has(PointerReceiver) }
func (m Modifier) IsSynthetic() bool       { return m.Has(Synthetic) }

func (m Modifier) String() string {
	var names []string
	for _, n := range modifierNames {
		if m.Has(n.m) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, " ")
}
