package model

import (
	"testing"

	"dts2as/internal/core/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClass(pkg, name, super string) *ClassDefinition {
	return &ClassDefinition{
		Header:     Header{Name: name, PackageName: pkg, Access: AccessPublic},
		SuperClass: super,
	}
}

func TestWorld_AddLookup(t *testing.T) {
	w := NewWorld()
	require.NoError(t, w.Add(newClass("a.b", "Foo", "")))
	require.NoError(t, w.Add(newClass("", "Bar", "")))

	def, ok := w.Lookup("a.b.Foo")
	require.True(t, ok)
	assert.Equal(t, KindClass, def.Kind())
	assert.Equal(t, "Foo", def.Head().Name)

	_, ok = w.Lookup("Foo")
	assert.False(t, ok, "lookup is by FQN, not short name")
	assert.True(t, w.Has("Bar"))
	assert.Equal(t, 2, w.Len())
}

func TestWorld_AddDuplicateConflicts(t *testing.T) {
	w := NewWorld()
	require.NoError(t, w.Add(newClass("", "Foo", "")))
	err := w.Add(&InterfaceDefinition{Header: Header{Name: "Foo"}})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeConflict))
}

func TestWorld_ReplaceKeepsOrder(t *testing.T) {
	w := NewWorld()
	require.NoError(t, w.Add(&InterfaceDefinition{Header: Header{Name: "A"}}))
	require.NoError(t, w.Add(&InterfaceDefinition{Header: Header{Name: "B"}}))
	require.NoError(t, w.Replace(newClass("", "A", "")))

	defs := w.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, KindClass, defs[0].Kind())
	assert.Equal(t, "A", defs[0].Head().Name)
	assert.Equal(t, "B", defs[1].Head().Name)

	err := w.Replace(newClass("", "Missing", ""))
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestWorld_Remove(t *testing.T) {
	w := NewWorld()
	require.NoError(t, w.Add(newClass("", "A", "")))
	require.NoError(t, w.Add(newClass("", "B", "")))
	require.NoError(t, w.Add(newClass("", "C", "")))

	assert.True(t, w.Remove("B"))
	assert.False(t, w.Remove("B"))
	assert.False(t, w.Has("B"))

	var names []string
	for _, def := range w.Definitions() {
		names = append(names, def.Head().Name)
	}
	assert.Equal(t, []string{"A", "C"}, names)

	// Re-adding after removal is allowed.
	require.NoError(t, w.Add(newClass("", "B", "")))
	assert.Equal(t, 3, w.Len())
}

func TestWorld_CloneIsDeep(t *testing.T) {
	w := NewWorld()
	cls := newClass("", "A", "")
	cls.Methods = []Method{{Name: "run", Signature: Signature{Params: []Parameter{{Name: "x", Type: Prim(Number)}}, Return: Prim(Void)}}}
	require.NoError(t, w.Add(cls))

	clone := w.Clone()
	copied, ok := clone.Class("A")
	require.True(t, ok)
	copied.Methods[0].Params[0].Type = Prim(Object)
	copied.Properties = append(copied.Properties, Property{Name: "p"})

	assert.Equal(t, Prim(Number), cls.Methods[0].Params[0].Type)
	assert.Empty(t, cls.Properties)
}

func TestWorld_SuperChainAndConstructor(t *testing.T) {
	w := NewWorld()
	base := newClass("", "Base", "")
	base.Constructor = &Constructor{Signature: Signature{Params: []Parameter{{Name: "n", Type: Prim(Number)}}}}
	mid := newClass("", "Mid", "Base")
	leaf := newClass("", "Leaf", "Mid")
	require.NoError(t, w.Add(base))
	require.NoError(t, w.Add(mid))
	require.NoError(t, w.Add(leaf))

	chain := w.SuperChain(leaf)
	require.Len(t, chain, 2)
	assert.Equal(t, "Mid", chain[0].Name)
	assert.Equal(t, "Base", chain[1].Name)

	assert.Same(t, base.Constructor, w.EffectiveConstructor(leaf))
	assert.Nil(t, w.EffectiveConstructor(newClass("", "Lonely", "")))
}

func TestWorld_SuperChainStopsOnCycle(t *testing.T) {
	w := NewWorld()
	a := newClass("", "A", "B")
	b := newClass("", "B", "A")
	require.NoError(t, w.Add(a))
	require.NoError(t, w.Add(b))

	chain := w.SuperChain(a)
	require.Len(t, chain, 1)
	assert.Equal(t, "B", chain[0].Name)
}

func TestFQNHelpers(t *testing.T) {
	assert.Equal(t, "Foo", JoinFQN("", "Foo"))
	assert.Equal(t, "a.b.Foo", JoinFQN("a.b", "Foo"))

	pkg, name := SplitFQN("a.b.Foo")
	assert.Equal(t, "a.b", pkg)
	assert.Equal(t, "Foo", name)

	pkg, name = SplitFQN("Foo")
	assert.Equal(t, "", pkg)
	assert.Equal(t, "Foo", name)
}

func TestDefaultLiteral(t *testing.T) {
	assert.Equal(t, "0", DefaultLiteral(Prim(Number)))
	assert.Equal(t, "0", DefaultLiteral(Prim(Int)))
	assert.Equal(t, "0", DefaultLiteral(Prim(Uint)))
	assert.Equal(t, "false", DefaultLiteral(Prim(Boolean)))
	assert.Equal(t, "null", DefaultLiteral(Prim(String)))
	assert.Equal(t, "null", DefaultLiteral(Ref("a.Foo")))
}

func TestMembers_DropMember(t *testing.T) {
	m := Members{
		Properties: []Property{{Name: "Foo"}, {Name: "bar"}},
		Methods:    []Method{{Name: "Foo"}, {Name: "baz"}},
	}
	m.DropMember("Foo")
	assert.False(t, m.HasMember("Foo"))
	assert.True(t, m.HasMember("bar"))
	assert.True(t, m.HasMember("baz"))
}

func TestIsDynamicBuiltin(t *testing.T) {
	for _, name := range []string{"Object", "Array", "Error", "TypeError", "Date", "RegExp"} {
		assert.True(t, IsDynamicBuiltin(name), name)
	}
	assert.False(t, IsDynamicBuiltin("String"))
	assert.False(t, IsDynamicBuiltin("a.Object"))
}
