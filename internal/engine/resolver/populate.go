package resolver

import (
	"dts2as/internal/core/errors"
	"dts2as/internal/engine/model"
	"dts2as/internal/engine/parser"
	"slices"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// populatePass fills the skeletons: heritage, members, signatures and the
// decomposed-class merges.
func populatePass(f *file) *visitor {
	return &visitor{
		class:    f.populateClass,
		iface:    f.populateInterface,
		function: f.populateFunction,
		variable: f.populateVariables,
		enum:     f.populateEnum,
		alias:    f.populateTypeAlias,
	}
}

func (f *file) populateClass(ctx Context, node *sitter.Node) error {
	name := f.declName(node)
	if name == "" {
		return nil
	}
	fqn := ctx.FQN(name)
	cls, ok := f.world().Class(fqn)
	if !ok {
		return nil
	}
	ctx = ctx.WithTypeParams(f.typeParamNames(node))
	ctx.Self = fqn

	if heritage := parser.ChildOfKind(node, "class_heritage"); heritage != nil {
		for _, clause := range parser.NamedChildren(heritage) {
			switch clause.Kind() {
			case "extends_clause":
				for _, value := range parser.NamedChildren(clause) {
					if value.Kind() == "type_arguments" || value.Kind() == "comment" {
						continue
					}
					if err := f.inherit(ctx, cls, value); err != nil {
						return err
					}
				}
			case "implements_clause":
				for _, typ := range parser.NamedChildren(clause) {
					if typ.Kind() == "comment" {
						continue
					}
					parent, ok := f.resolveName(ctx, f.text(typ))
					if !ok {
						return f.fail(errors.KindInterface, eraseGenerics(f.text(typ)), typ)
					}
					if parent != fqn {
						cls.Interfaces = appendUnique(cls.Interfaces, parent)
					}
				}
			}
		}
	}

	return f.populateMembers(ctx, memberTarget{
		fqn:       fqn,
		members:   &cls.Members,
		access:    model.AccessPublic,
		ctor:      &cls.Constructor,
		allowCtor: true,
	}, node.ChildByFieldName("body"))
}

func (f *file) inherit(ctx Context, cls *model.ClassDefinition, value *sitter.Node) error {
	text := f.text(value)
	parent, ok := f.resolveName(ctx, text)
	if !ok {
		return f.fail(errors.KindSuperClass, eraseGenerics(text), value)
	}
	if parent == cls.FQN() {
		return nil
	}
	def, _ := f.world().Lookup(parent)
	switch def.(type) {
	case *model.ClassDefinition:
		if cls.SuperClass == "" {
			cls.SuperClass = parent
		} else if cls.SuperClass != parent {
			f.warn("multiple_super", value, "class already has a super class", "fqn", cls.FQN(), "ignored", parent)
		}
	case *model.InterfaceDefinition:
		// becomes the super class if it is later decomposed into a class
		cls.Interfaces = appendUnique(cls.Interfaces, parent)
	default:
		f.warn("invalid_super", value, "super class is not a type", "fqn", cls.FQN(), "super", parent)
	}
	return nil
}

func (f *file) populateInterface(ctx Context, node *sitter.Node) error {
	name := f.declName(node)
	if name == "" {
		return nil
	}
	fqn := ctx.FQN(name)
	def, ok := f.world().Lookup(fqn)
	if !ok {
		// function alias
		return nil
	}
	ctx = ctx.WithTypeParams(f.typeParamNames(node))
	ctx.Self = fqn

	var parents []string
	if clause := parser.ChildOfKind(node, "extends_type_clause"); clause != nil {
		for _, typ := range parser.NamedChildren(clause) {
			if typ.Kind() == "comment" {
				continue
			}
			parent, ok := f.resolveName(ctx, f.text(typ))
			if !ok {
				if f.prog.FunctionAliases[ctx.FQN(eraseGenerics(f.text(typ)))] {
					continue
				}
				return f.fail(errors.KindInterface, eraseGenerics(f.text(typ)), typ)
			}
			if parent != fqn {
				parents = append(parents, parent)
			}
		}
	}

	body := node.ChildByFieldName("body")
	switch target := def.(type) {
	case *model.InterfaceDefinition:
		for _, parent := range parents {
			target.Extends = appendUnique(target.Extends, parent)
		}
		return f.populateMembers(ctx, memberTarget{
			fqn:     fqn,
			members: &target.Members,
			access:  model.AccessNone,
			ctor:    &target.Constructor,
		}, body)
	case *model.ClassDefinition:
		// interface merged into a class or a decomposed class
		for _, parent := range parents {
			target.Interfaces = appendUnique(target.Interfaces, parent)
		}
		return f.populateMembers(ctx, memberTarget{
			fqn:     fqn,
			members: &target.Members,
			access:  model.AccessPublic,
			ctor:    &target.Constructor,
		}, body)
	default:
		return nil
	}
}

func (f *file) populateFunction(ctx Context, node *sitter.Node) error {
	name := f.declName(node)
	if name == "" {
		return nil
	}
	fqn := ctx.FQN(name)
	def, ok := f.world().Lookup(fqn)
	if !ok {
		return f.fail(errors.KindPackageFunction, fqn, node)
	}
	fn, ok := def.(*model.PackageFunctionDefinition)
	if !ok {
		return nil
	}
	sig, err := f.signature(ctx.WithTypeParams(f.typeParamNames(node)), node)
	if err != nil {
		return err
	}
	if !f.prog.functions[fqn] {
		fn.Signature = sig
		f.prog.functions[fqn] = true
		return nil
	}
	mergeSignature(&fn.Signature, sig)
	return nil
}

func (f *file) populateVariables(ctx Context, node *sitter.Node) error {
	constant := f.isConst(node)
	for _, decl := range parser.NamedChildren(node) {
		if decl.Kind() != "variable_declarator" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		if nameNode == nil || nameNode.Kind() != "identifier" {
			continue
		}
		fqn := ctx.FQN(f.text(nameNode))
		def, ok := f.world().Lookup(fqn)
		if !ok {
			return f.fail(errors.KindPackageVariable, fqn, decl)
		}
		typeNode := decl.ChildByFieldName("type")

		switch target := def.(type) {
		case *model.PackageVariableDefinition:
			t, err := f.mapValue(ctx, typeNode)
			if err != nil {
				return err
			}
			if !f.prog.variables[fqn] {
				target.Type = t
				target.Constant = constant
				f.prog.variables[fqn] = true
				if named, ok := f.namedType(ctx, typeNode); ok {
					f.prog.variableTypes[fqn] = named
				}
			} else if target.Type != t {
				target.Type = model.Prim(model.Object)
			}
		case *model.InterfaceDefinition:
			cls := f.classFromInterface(target, ctx.Access())
			f.replace(cls)
			if err := f.populateStaticSide(ctx, cls, typeNode); err != nil {
				return err
			}
		case *model.ClassDefinition:
			if err := f.populateStaticSide(ctx, target, typeNode); err != nil {
				return err
			}
		}
	}
	return nil
}

// populateStaticSide handles the variable half of a decomposed class. The variable's
// type is either the class itself, another type describing the static side,
// or an inline object type.
func (f *file) populateStaticSide(ctx Context, cls *model.ClassDefinition, typeNode *sitter.Node) error {
	typ := parser.FirstNamedChild(typeNode)
	if typ == nil {
		return nil
	}
	switch typ.Kind() {
	case "object_type":
		ctx.Self = cls.FQN()
		return f.populateMembers(ctx, memberTarget{
			fqn:     cls.FQN(),
			members: &cls.Members,
			access:  model.AccessPublic,
			ctor:    &cls.Constructor,
			static:  true,
		}, typ)
	default:
		if side, ok := f.namedType(ctx, typeNode); ok {
			side.class = cls.FQN()
			f.prog.addStaticSide(side)
		}
	}
	return nil
}

// namedType returns the type name of a variable annotation when it names a
// type rather than spelling one out.
func (f *file) namedType(ctx Context, typeNode *sitter.Node) (staticSide, bool) {
	typ := parser.FirstNamedChild(typeNode)
	if typ == nil {
		return staticSide{}, false
	}
	switch typ.Kind() {
	case "type_identifier", "nested_type_identifier", "generic_type":
		name := eraseGenerics(f.text(typ))
		if name == "" {
			return staticSide{}, false
		}
		return staticSide{
			name:     name,
			scopes:   ctx.Scopes(),
			location: f.doc.Location(typ).String(),
		}, true
	}
	return staticSide{}, false
}

func (f *file) populateEnum(ctx Context, node *sitter.Node) error {
	cls, ok := f.world().Class(ctx.FQN(f.declName(node)))
	if !ok {
		return nil
	}
	for _, member := range parser.NamedChildren(node.ChildByFieldName("body")) {
		var name string
		typ := model.Prim(model.Number)
		switch member.Kind() {
		case "property_identifier", "identifier", "string":
			name = unquote(f.text(member))
		case "enum_assignment":
			name = unquote(f.text(member.ChildByFieldName("name")))
			if value := member.ChildByFieldName("value"); value != nil && value.Kind() == "string" {
				typ = model.Prim(model.String)
			}
		default:
			continue
		}
		if !isIdentifier(name) {
			f.warn("invalid_name", member, "skipping enum member", "name", name)
			continue
		}
		if _, exists := findProperty(&cls.Members, name, true); exists {
			continue
		}
		cls.Properties = append(cls.Properties, model.Property{
			Name:     name,
			Type:     typ,
			Access:   model.AccessPublic,
			Static:   true,
			Constant: true,
		})
	}
	return nil
}

// populateTypeAlias resolves aliases nothing referenced, so an unknown
// target is reported even when unused.
func (f *file) populateTypeAlias(ctx Context, node *sitter.Node) error {
	fqn := ctx.FQN(f.declName(node))
	alias, ok := f.aliases[fqn]
	if !ok {
		return nil
	}
	_, err := f.resolveAlias(fqn, alias)
	return err
}

func appendUnique(list []string, value string) []string {
	if slices.Contains(list, value) {
		return list
	}
	return append(list, value)
}
