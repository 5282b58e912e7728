package model

// Access is the visibility of a definition or member. AccessNone marks
// interface members, which carry no modifier.
type Access string

const (
	AccessNone     Access = ""
	AccessPublic   Access = "public"
	AccessInternal Access = "internal"
)

// Kind tags the variant held by a Definition.
type Kind int

const (
	KindClass Kind = iota
	KindInterface
	KindFunction
	KindVariable
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindFunction:
		return "function"
	case KindVariable:
		return "variable"
	default:
		return "unknown"
	}
}

// Header holds the attributes every package-level definition shares.
type Header struct {
	Name        string
	PackageName string
	SourceFile  string
	Access      Access
	// External definitions come from the baseline input and are never emitted.
	External bool
	// Require marks definitions declared inside a quoted module.
	Require bool
}

func (h *Header) FQN() string { return JoinFQN(h.PackageName, h.Name) }

// Signature holds what functions, methods and constructors share.
type Signature struct {
	Params []Parameter
	// Return is zero for constructors.
	Return TypeRef
}

type Parameter struct {
	Name string
	Type TypeRef
	// Default is target-language literal text, rendered verbatim.
	Default string
	Rest    bool
}

func (p Parameter) Optional() bool { return p.Default != "" }

type Property struct {
	Name     string
	Type     TypeRef
	Access   Access
	Static   bool
	Constant bool
}

type Method struct {
	Name string
	Signature
	Access Access
	Static bool
}

// Constructor is named after its owning class.
type Constructor struct {
	Signature
}

// Members is the ordered member list shared by classes and interfaces.
// Insertion order is emission order.
type Members struct {
	Properties []Property
	Methods    []Method
}

func (m *Members) FindMethod(name string) (*Method, bool) {
	for i := range m.Methods {
		if m.Methods[i].Name == name {
			return &m.Methods[i], true
		}
	}
	return nil, false
}

func (m *Members) FindProperty(name string) (*Property, bool) {
	for i := range m.Properties {
		if m.Properties[i].Name == name {
			return &m.Properties[i], true
		}
	}
	return nil, false
}

// HasMember reports whether a property or method is named name.
func (m *Members) HasMember(name string) bool {
	if _, ok := m.FindProperty(name); ok {
		return true
	}
	_, ok := m.FindMethod(name)
	return ok
}

// DropMember removes every property and method named name.
func (m *Members) DropMember(name string) {
	props := m.Properties[:0]
	for _, p := range m.Properties {
		if p.Name != name {
			props = append(props, p)
		}
	}
	m.Properties = props
	methods := m.Methods[:0]
	for _, fn := range m.Methods {
		if fn.Name != name {
			methods = append(methods, fn)
		}
	}
	m.Methods = methods
}

func (m Members) clone() Members {
	out := Members{
		Properties: append([]Property(nil), m.Properties...),
		Methods:    make([]Method, len(m.Methods)),
	}
	for i, fn := range m.Methods {
		fn.Signature = fn.Signature.clone()
		out.Methods[i] = fn
	}
	return out
}

func (s Signature) clone() Signature {
	s.Params = append([]Parameter(nil), s.Params...)
	return s
}

// Definition is the closed set of package-level definitions:
// *ClassDefinition, *InterfaceDefinition, *PackageFunctionDefinition and
// *PackageVariableDefinition. Consumers switch on the concrete type.
type Definition interface {
	Head() *Header
	Kind() Kind
	clone() Definition
}

type ClassDefinition struct {
	Header
	Members
	// SuperClass is the FQN of the parent class, empty for none.
	SuperClass  string
	Interfaces  []string
	Constructor *Constructor
	Dynamic     bool
}

type InterfaceDefinition struct {
	Header
	Members
	Extends []string
	// Constructor records a construct signature; interfaces never render it,
	// but it becomes the class constructor when the interface is a static side.
	Constructor *Constructor
}

type PackageFunctionDefinition struct {
	Header
	Signature
}

type PackageVariableDefinition struct {
	Header
	Type     TypeRef
	Constant bool
}

func (d *ClassDefinition) Head() *Header           { return &d.Header }
func (d *InterfaceDefinition) Head() *Header       { return &d.Header }
func (d *PackageFunctionDefinition) Head() *Header { return &d.Header }
func (d *PackageVariableDefinition) Head() *Header { return &d.Header }

func (d *ClassDefinition) Kind() Kind           { return KindClass }
func (d *InterfaceDefinition) Kind() Kind       { return KindInterface }
func (d *PackageFunctionDefinition) Kind() Kind { return KindFunction }
func (d *PackageVariableDefinition) Kind() Kind { return KindVariable }

func (d *ClassDefinition) clone() Definition {
	out := *d
	out.Members = d.Members.clone()
	out.Interfaces = append([]string(nil), d.Interfaces...)
	if d.Constructor != nil {
		ctor := Constructor{Signature: d.Constructor.Signature.clone()}
		out.Constructor = &ctor
	}
	return &out
}

func (d *InterfaceDefinition) clone() Definition {
	out := *d
	out.Members = d.Members.clone()
	out.Extends = append([]string(nil), d.Extends...)
	if d.Constructor != nil {
		ctor := Constructor{Signature: d.Constructor.Signature.clone()}
		out.Constructor = &ctor
	}
	return &out
}

func (d *PackageFunctionDefinition) clone() Definition {
	out := *d
	out.Signature = d.Signature.clone()
	return &out
}

func (d *PackageVariableDefinition) clone() Definition {
	out := *d
	return &out
}

// dynamicBuiltins may have properties added at runtime.
var dynamicBuiltins = map[string]bool{
	"Object":         true,
	"Array":          true,
	"Error":          true,
	"EvalError":      true,
	"RangeError":     true,
	"ReferenceError": true,
	"SyntaxError":    true,
	"TypeError":      true,
	"URIError":       true,
	"Date":           true,
	"RegExp":         true,
}

// IsDynamicBuiltin reports whether fqn is on the allow-list of dynamic classes.
func IsDynamicBuiltin(fqn string) bool {
	return dynamicBuiltins[fqn]
}
