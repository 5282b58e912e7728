package resolver

import (
	"dts2as/internal/engine/model"
	"dts2as/internal/engine/parser"
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// memberTarget is where the members of a class body, interface body or
// object type are collected.
type memberTarget struct {
	fqn     string
	members *model.Members
	access  model.Access
	// ctor receives construct signatures and, when allowCtor is set,
	// constructor declarations.
	ctor      **model.Constructor
	allowCtor bool
	// static forces every member static, for inline static sides.
	static bool
}

func (f *file) populateMembers(ctx Context, t memberTarget, body *sitter.Node) error {
	if body == nil {
		return nil
	}
	return parser.NewDispatcher(map[string]parser.NodeHandler{
		"public_field_definition":   func(n *sitter.Node) error { return f.property(ctx, t, n) },
		"property_signature":        func(n *sitter.Node) error { return f.property(ctx, t, n) },
		"method_signature":          func(n *sitter.Node) error { return f.method(ctx, t, n) },
		"method_definition":         func(n *sitter.Node) error { return f.method(ctx, t, n) },
		"abstract_method_signature": func(n *sitter.Node) error { return f.method(ctx, t, n) },
		"construct_signature":       func(n *sitter.Node) error { return f.constructSignature(ctx, t, n) },
	}).Ignore(
		"index_signature",
		"call_signature",
		"class_static_block",
		"decorator",
	).Fallback(func(n *sitter.Node) error {
		f.warn("unknown_member", n, "skipping unrecognized member", "kind", n.Kind(), "type", t.fqn)
		return nil
	}).DispatchChildren(body)
}

func (f *file) memberName(node *sitter.Node) (string, bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return "", false
	}
	var name string
	switch nameNode.Kind() {
	case "property_identifier", "identifier", "string":
		name = unquote(f.text(nameNode))
	case "computed_property_name", "private_property_identifier":
		f.logger.Debug("skipping computed member name", "name", f.text(nameNode), "location", f.doc.Location(nameNode).String())
		return "", false
	default:
		name = f.text(nameNode)
	}
	if !isIdentifier(name) {
		f.warn("invalid_name", nameNode, "skipping member with invalid name", "name", name)
		return "", false
	}
	return name, true
}

func (f *file) property(ctx Context, t memberTarget, node *sitter.Node) error {
	name, ok := f.memberName(node)
	if !ok {
		return nil
	}
	nameNode := node.ChildByFieldName("name")
	typ, err := f.mapValue(ctx, node.ChildByFieldName("type"))
	if err != nil {
		return err
	}
	addProperty(t.members, model.Property{
		Name:     name,
		Type:     typ,
		Access:   t.access,
		Static:   t.static || parser.HasModifier(node, "static", nameNode),
		Constant: parser.HasModifier(node, "readonly", nameNode),
	})
	return nil
}

func (f *file) method(ctx Context, t memberTarget, node *sitter.Node) error {
	name, ok := f.memberName(node)
	if !ok {
		return nil
	}
	nameNode := node.ChildByFieldName("name")
	if name == "constructor" && node.Kind() != "abstract_method_signature" {
		return f.constructor(ctx, t, node)
	}
	static := t.static || parser.HasModifier(node, "static", nameNode)

	sig, err := f.signature(ctx.WithTypeParams(f.typeParamNames(node)), node)
	if err != nil {
		return err
	}

	switch {
	case parser.HasModifier(node, "get", nameNode):
		typ := sig.Return
		if typ.IsVoid() {
			typ = model.Prim(model.Object)
		}
		addProperty(t.members, model.Property{Name: name, Type: typ, Access: t.access, Static: static})
		return nil
	case parser.HasModifier(node, "set", nameNode):
		typ := model.Prim(model.Object)
		if len(sig.Params) > 0 {
			typ = sig.Params[0].Type
		}
		addProperty(t.members, model.Property{Name: name, Type: typ, Access: t.access, Static: static})
		return nil
	}

	addMethod(t.members, model.Method{Name: name, Signature: sig, Access: t.access, Static: static})
	return nil
}

func (f *file) constructor(ctx Context, t memberTarget, node *sitter.Node) error {
	if !t.allowCtor || t.ctor == nil {
		f.warn("constructor_outside_class", node, "skipping constructor outside a class", "type", t.fqn)
		return nil
	}
	sig, err := f.signature(ctx, node)
	if err != nil {
		return err
	}
	mergeConstructor(t.ctor, sig)
	return nil
}

func (f *file) constructSignature(ctx Context, t memberTarget, node *sitter.Node) error {
	if t.ctor == nil {
		return nil
	}
	sig, err := f.signature(ctx.WithTypeParams(f.typeParamNames(node)), node)
	if err != nil {
		return err
	}
	mergeConstructor(t.ctor, sig)
	return nil
}

func mergeConstructor(slot **model.Constructor, sig model.Signature) {
	sig.Return = model.TypeRef{}
	if *slot == nil {
		*slot = &model.Constructor{Signature: sig}
		return
	}
	mergeSignature(&(*slot).Signature, sig)
}

// signature reads the parameters and return type of any function-like node.
func (f *file) signature(ctx Context, node *sitter.Node) (model.Signature, error) {
	params, err := f.parameters(ctx, node.ChildByFieldName("parameters"))
	if err != nil {
		return model.Signature{}, err
	}
	ret, err := f.mapReturn(ctx, node.ChildByFieldName("return_type"))
	if err != nil {
		return model.Signature{}, err
	}
	return model.Signature{Params: params, Return: ret}, nil
}

func (f *file) parameters(ctx Context, node *sitter.Node) ([]model.Parameter, error) {
	var out []model.Parameter
	optional := false
	for i, p := range parser.NamedChildren(node) {
		if p.Kind() != "required_parameter" && p.Kind() != "optional_parameter" {
			continue
		}
		pattern := p.ChildByFieldName("pattern")
		if pattern == nil || pattern.Kind() == "this" {
			continue
		}
		param := model.Parameter{}
		switch pattern.Kind() {
		case "rest_pattern":
			param.Rest = true
			param.Name = f.text(parser.FirstNamedChild(pattern))
		case "identifier":
			param.Name = f.text(pattern)
		}
		if !isIdentifier(param.Name) {
			param.Name = fmt.Sprintf("arg%d", i)
		}

		if param.Rest {
			param.Type = model.Prim(model.Array)
			out = append(out, param)
			break
		}
		typ, err := f.mapValue(ctx, p.ChildByFieldName("type"))
		if err != nil {
			return nil, err
		}
		param.Type = typ
		if p.Kind() == "optional_parameter" || optional {
			optional = true
			param.Default = model.DefaultLiteral(typ)
		}
		out = append(out, param)
	}
	return out, nil
}

func findProperty(m *model.Members, name string, static bool) (*model.Property, bool) {
	for i := range m.Properties {
		if m.Properties[i].Name == name && m.Properties[i].Static == static {
			return &m.Properties[i], true
		}
	}
	return nil, false
}

func findMethod(m *model.Members, name string, static bool) (*model.Method, bool) {
	for i := range m.Methods {
		if m.Methods[i].Name == name && m.Methods[i].Static == static {
			return &m.Methods[i], true
		}
	}
	return nil, false
}

// addProperty appends p unless a same-named member exists on the same side;
// a redeclared property with another type widens to Object.
func addProperty(m *model.Members, p model.Property) {
	if existing, ok := findProperty(m, p.Name, p.Static); ok {
		if existing.Type != p.Type {
			existing.Type = model.Prim(model.Object)
		}
		return
	}
	if _, ok := findMethod(m, p.Name, p.Static); ok {
		return
	}
	m.Properties = append(m.Properties, p)
}

// addMethod merges fn into a same-named method on the same side as an
// overload, or appends it.
func addMethod(m *model.Members, fn model.Method) {
	if existing, ok := findMethod(m, fn.Name, fn.Static); ok {
		mergeSignature(&existing.Signature, fn.Signature)
		return
	}
	if _, ok := findProperty(m, fn.Name, fn.Static); ok {
		return
	}
	m.Methods = append(m.Methods, fn)
}
