package model

import "strings"

// Primitive is one of the closed set of ActionScript types that need no declaration.
type Primitive string

const (
	Object   Primitive = "Object"
	Array    Primitive = "Array"
	Number   Primitive = "Number"
	Boolean  Primitive = "Boolean"
	String   Primitive = "String"
	Function Primitive = "Function"
	Class    Primitive = "Class"
	Int      Primitive = "int"
	Uint     Primitive = "uint"
	Void     Primitive = "void"
)

var primitives = map[string]Primitive{
	"Object":   Object,
	"Array":    Array,
	"Number":   Number,
	"Boolean":  Boolean,
	"String":   String,
	"Function": Function,
	"Class":    Class,
	"int":      Int,
	"uint":     Uint,
	"void":     Void,
}

// LookupPrimitive returns the primitive spelled exactly as name.
func LookupPrimitive(name string) (Primitive, bool) {
	p, ok := primitives[name]
	return p, ok
}

// TypeRef is either a primitive or a reference, by FQN, to a package-level
// definition in the World. The zero value means "no type".
type TypeRef struct {
	Primitive Primitive
	Ref       string
}

func Prim(p Primitive) TypeRef { return TypeRef{Primitive: p} }

func Ref(fqn string) TypeRef { return TypeRef{Ref: fqn} }

func (t TypeRef) IsZero() bool      { return t.Primitive == "" && t.Ref == "" }
func (t TypeRef) IsPrimitive() bool { return t.Primitive != "" }
func (t TypeRef) IsVoid() bool      { return t.Primitive == Void }

func (t TypeRef) String() string {
	if t.Primitive != "" {
		return string(t.Primitive)
	}
	return t.Ref
}

// DefaultLiteral is the placeholder value used for getter bodies, return
// statements, optional parameters and synthesized super calls.
func DefaultLiteral(t TypeRef) string {
	switch t.Primitive {
	case Number, Int, Uint:
		return "0"
	case Boolean:
		return "false"
	default:
		return "null"
	}
}

// JoinFQN builds a fully-qualified name; an empty package yields the bare name.
func JoinFQN(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

// SplitFQN is the inverse of JoinFQN.
func SplitFQN(fqn string) (pkg, name string) {
	idx := strings.LastIndex(fqn, ".")
	if idx < 0 {
		return "", fqn
	}
	return fqn[:idx], fqn[idx+1:]
}
