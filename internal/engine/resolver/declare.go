package resolver

import (
	"dts2as/internal/engine/model"
	"dts2as/internal/engine/parser"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// declarePass creates an empty definition for every package-level name so
// the population pass can resolve references regardless of declaration order.
func declarePass(f *file) *visitor {
	return &visitor{
		class:         f.declareClass,
		iface:         f.declareInterface,
		function:      f.declareFunction,
		variable:      f.declareVariables,
		enum:          f.declareEnum,
		alias:         f.declareTypeAlias,
		reportUnknown: true,
	}
}

func (f *file) add(def model.Definition) {
	if err := f.world().Add(def); err != nil {
		f.logger.Error("add definition", "fqn", def.Head().FQN(), "error", err)
		return
	}
	f.discovered(def.Head().FQN(), def.Kind())
}

func (f *file) replace(def model.Definition) {
	if err := f.world().Replace(def); err != nil {
		f.logger.Error("replace definition", "fqn", def.Head().FQN(), "error", err)
	}
}

func (f *file) declareClass(ctx Context, node *sitter.Node) error {
	name := f.declName(node)
	if name == "" {
		return nil
	}
	fqn := ctx.FQN(name)
	existing, ok := f.world().Lookup(fqn)
	if !ok {
		f.add(&model.ClassDefinition{Header: f.header(ctx, name)})
		return nil
	}
	switch def := existing.(type) {
	case *model.ClassDefinition:
		// merged declaration
	case *model.InterfaceDefinition:
		f.replace(f.classFromInterface(def, ctx.Access()))
	case *model.PackageVariableDefinition:
		f.replace(&model.ClassDefinition{Header: f.header(ctx, name)})
	case *model.PackageFunctionDefinition:
		f.warn("conflict", node, "class conflicts with a function", "fqn", fqn)
	}
	return nil
}

func (f *file) declareInterface(ctx Context, node *sitter.Node) error {
	name := f.declName(node)
	if name == "" {
		return nil
	}
	fqn := ctx.FQN(name)
	existing, ok := f.world().Lookup(fqn)
	if !ok && isCallOnly(node) {
		f.prog.FunctionAliases[fqn] = true
		f.logger.Info("function alias discovered", "fqn", fqn, "file", f.doc.Path)
		return nil
	}
	delete(f.prog.FunctionAliases, fqn)
	if !ok {
		f.add(&model.InterfaceDefinition{Header: f.header(ctx, name)})
		return nil
	}
	switch def := existing.(type) {
	case *model.ClassDefinition, *model.InterfaceDefinition:
		// merged declaration
	case *model.PackageVariableDefinition:
		if !f.prog.variables[fqn] {
			// declared earlier in this file; population decomposes the pair
			f.replace(&model.InterfaceDefinition{Header: f.header(ctx, name)})
			return nil
		}
		f.decomposeResolvedVariable(ctx, def, node)
	case *model.PackageFunctionDefinition:
		f.warn("conflict", node, "interface conflicts with a function", "fqn", fqn)
	}
	return nil
}

// decomposeResolvedVariable turns a variable populated by an earlier file
// into the class half of a decomposed class. That variable is not visited
// again, so its recorded type becomes the static side here.
func (f *file) decomposeResolvedVariable(ctx Context, v *model.PackageVariableDefinition, node *sitter.Node) {
	name := f.declName(node)
	fqn := v.FQN()
	cls := f.classFromInterface(&model.InterfaceDefinition{Header: f.header(ctx, name)}, v.Access)
	f.replace(cls)
	f.discovered(fqn, cls.Kind())

	side, ok := f.prog.variableTypes[fqn]
	if !ok {
		f.warn("untyped_static_side", node, "variable has no named type, class keeps instance members only", "fqn", fqn)
		return
	}
	side.class = fqn
	f.prog.addStaticSide(side)
}

// isCallOnly reports whether an interface body holds exactly one member and
// that member is a bare call signature.
func isCallOnly(node *sitter.Node) bool {
	var members []*sitter.Node
	for _, child := range parser.NamedChildren(node.ChildByFieldName("body")) {
		if child.Kind() != "comment" {
			members = append(members, child)
		}
	}
	return len(members) == 1 && members[0].Kind() == "call_signature"
}

func (f *file) declareFunction(ctx Context, node *sitter.Node) error {
	name := f.declName(node)
	if name == "" {
		return nil
	}
	fqn := ctx.FQN(name)
	if existing, ok := f.world().Lookup(fqn); ok {
		if _, fn := existing.(*model.PackageFunctionDefinition); !fn {
			f.warn("conflict", node, "function conflicts with an existing definition", "fqn", fqn, "kind", existing.Kind().String())
		}
		// overload, merged during population
		return nil
	}
	f.add(&model.PackageFunctionDefinition{Header: f.header(ctx, name)})
	return nil
}

func (f *file) declareVariables(ctx Context, node *sitter.Node) error {
	constant := f.isConst(node)
	for _, decl := range parser.NamedChildren(node) {
		if decl.Kind() != "variable_declarator" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		if nameNode == nil || nameNode.Kind() != "identifier" {
			f.warn("unsupported_variable", decl, "skipping destructured variable")
			continue
		}
		name := f.text(nameNode)
		fqn := ctx.FQN(name)
		if f.world().Has(fqn) {
			continue
		}
		f.add(&model.PackageVariableDefinition{Header: f.header(ctx, name), Constant: constant})
	}
	return nil
}

func (f *file) isConst(node *sitter.Node) bool {
	if node.Kind() != "lexical_declaration" {
		return false
	}
	return f.text(node.ChildByFieldName("kind")) == "const"
}

func (f *file) declareEnum(ctx Context, node *sitter.Node) error {
	name := f.declName(node)
	if name == "" {
		return nil
	}
	fqn := ctx.FQN(name)
	if existing, ok := f.world().Lookup(fqn); ok {
		if _, cls := existing.(*model.ClassDefinition); !cls {
			f.warn("conflict", node, "enum conflicts with an existing definition", "fqn", fqn, "kind", existing.Kind().String())
		}
		return nil
	}
	f.add(&model.ClassDefinition{Header: f.header(ctx, name)})
	return nil
}

func (f *file) declareTypeAlias(ctx Context, node *sitter.Node) error {
	name := f.declName(node)
	if name == "" {
		return nil
	}
	fqn := ctx.FQN(name)
	delete(f.prog.TypeAliases, fqn)
	f.aliases[fqn] = &pendingAlias{node: node, ctx: ctx}
	f.logger.Info("type alias discovered", "fqn", fqn, "file", f.doc.Path)
	return nil
}

// classFromInterface converts an interface into a class at the same FQN,
// keeping its members. Interface members carry no access, class members are public.
func (f *file) classFromInterface(iface *model.InterfaceDefinition, access model.Access) *model.ClassDefinition {
	cls := &model.ClassDefinition{
		Header:      iface.Header,
		Constructor: iface.Constructor,
	}
	cls.Access = access
	cls.External = iface.External && f.external
	for _, p := range iface.Properties {
		p.Access = model.AccessPublic
		cls.Properties = append(cls.Properties, p)
	}
	for _, m := range iface.Methods {
		m.Access = model.AccessPublic
		m.Params = append([]model.Parameter(nil), m.Params...)
		cls.Methods = append(cls.Methods, m)
	}
	for _, parent := range iface.Extends {
		if _, isClass := f.world().Class(parent); isClass && cls.SuperClass == "" {
			cls.SuperClass = parent
			continue
		}
		cls.Interfaces = append(cls.Interfaces, parent)
	}
	f.logger.Info("decomposed class", "fqn", cls.FQN(), "file", f.doc.Path)
	return cls
}
