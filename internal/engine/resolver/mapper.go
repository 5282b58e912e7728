package resolver

import (
	"dts2as/internal/core/errors"
	"dts2as/internal/engine/model"
	"dts2as/internal/engine/parser"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

var keywords = map[string]model.Primitive{
	"number":    model.Number,
	"bigint":    model.Number,
	"boolean":   model.Boolean,
	"string":    model.String,
	"any":       model.Object,
	"unknown":   model.Object,
	"object":    model.Object,
	"symbol":    model.Object,
	"void":      model.Void,
	"never":     model.Void,
	"undefined": model.Object,
	"null":      model.Object,
}

// mapType maps a type expression to a primitive or a reference. An absent
// expression is void. A name that matches nothing fails with KindType.
func (f *file) mapType(ctx Context, node *sitter.Node) (model.TypeRef, error) {
	if node == nil {
		return model.Prim(model.Void), nil
	}
	switch node.Kind() {
	case "type_annotation", "opting_type_annotation", "omitting_type_annotation", "adding_type_annotation",
		"parenthesized_type", "readonly_type":
		return f.mapType(ctx, parser.FirstNamedChild(node))
	case "function_type", "constructor_type":
		return model.Prim(model.Function), nil
	case "union_type", "intersection_type", "object_type":
		return model.Prim(model.Object), nil
	case "literal_type":
		return mapLiteral(parser.FirstNamedChild(node)), nil
	case "template_literal_type":
		return model.Prim(model.String), nil
	case "array_type", "tuple_type":
		return model.Prim(model.Array), nil
	case "this_type":
		if ctx.Self != "" {
			return model.Ref(ctx.Self), nil
		}
		return model.Prim(model.Object), nil
	case "predefined_type", "type_identifier", "nested_type_identifier", "generic_type", "identifier":
		return f.mapName(ctx, f.text(node))
	default:
		// conditional, mapped, lookup, typeof and keyof types
		return model.Prim(model.Object), nil
	}
}

func mapLiteral(node *sitter.Node) model.TypeRef {
	if node == nil {
		return model.Prim(model.Object)
	}
	switch node.Kind() {
	case "string":
		return model.Prim(model.String)
	case "number", "unary_expression":
		return model.Prim(model.Number)
	case "true", "false":
		return model.Prim(model.Boolean)
	default:
		return model.Prim(model.Object)
	}
}

// mapName resolves a type by its source text.
func (f *file) mapName(ctx Context, text string) (model.TypeRef, error) {
	text = strings.TrimSpace(text)
	if strings.HasSuffix(text, "]") {
		return model.Prim(model.Array), nil
	}
	name := eraseGenerics(text)
	if p, ok := keywords[name]; ok {
		return model.Prim(p), nil
	}
	if ctx.IsTypeParam(name) {
		return model.Prim(model.Object), nil
	}
	for _, pkg := range ctx.Scopes() {
		fqn := model.JoinFQN(pkg, name)
		if f.prog.FunctionAliases[fqn] {
			return model.Prim(model.Function), nil
		}
		if t, ok, err := f.typeAlias(fqn); ok || err != nil {
			return t, err
		}
		if f.world().Has(fqn) {
			return model.Ref(fqn), nil
		}
	}
	if p, ok := model.LookupPrimitive(name); ok {
		return model.Prim(p), nil
	}
	return model.TypeRef{}, errors.NewResolution(errors.KindType, name)
}

// mapValue maps the type of a property, variable or parameter. Unknown
// names fall back to Object and void is not a value type.
func (f *file) mapValue(ctx Context, node *sitter.Node) (model.TypeRef, error) {
	t, err := f.mapType(ctx, node)
	if err != nil {
		if !f.unknownType(err, node) {
			return model.TypeRef{}, err
		}
		return model.Prim(model.Object), nil
	}
	if t.IsVoid() {
		return model.Prim(model.Object), nil
	}
	return t, nil
}

// mapReturn maps a return-type annotation; an absent one is void.
func (f *file) mapReturn(ctx Context, node *sitter.Node) (model.TypeRef, error) {
	if node == nil {
		return model.Prim(model.Void), nil
	}
	switch node.Kind() {
	case "type_predicate_annotation":
		return model.Prim(model.Boolean), nil
	case "asserts_annotation":
		return model.Prim(model.Void), nil
	}
	t, err := f.mapType(ctx, node)
	if err != nil {
		if !f.unknownType(err, node) {
			return model.TypeRef{}, err
		}
		return model.Prim(model.Object), nil
	}
	return t, nil
}

// unknownType reports whether err is a recoverable unknown type name, and
// logs it when so.
func (f *file) unknownType(err error, node *sitter.Node) bool {
	re, ok := errors.AsResolution(err)
	if !ok || re.Kind != errors.KindType {
		return false
	}
	f.warn("unknown_type", node, "unknown type, using Object", "type", re.FQN)
	return true
}

// typeAlias returns the target of the alias at fqn, resolving a pending
// alias of the current file on first use.
func (f *file) typeAlias(fqn string) (model.TypeRef, bool, error) {
	if t, ok := f.prog.TypeAliases[fqn]; ok {
		return t, true, nil
	}
	pending, ok := f.aliases[fqn]
	if !ok {
		return model.TypeRef{}, false, nil
	}
	t, err := f.resolveAlias(fqn, pending)
	return t, true, err
}

func (f *file) resolveAlias(fqn string, alias *pendingAlias) (model.TypeRef, error) {
	if t, ok := f.prog.TypeAliases[fqn]; ok {
		return t, nil
	}
	if alias.resolving {
		// type List = Node | List[] style recursion
		return model.Prim(model.Object), nil
	}
	alias.resolving = true
	defer func() { alias.resolving = false }()

	ctx := alias.ctx.WithTypeParams(f.typeParamNames(alias.node))
	t, err := f.mapType(ctx, alias.node.ChildByFieldName("value"))
	if err != nil {
		if re, ok := errors.AsResolution(err); ok && re.Kind == errors.KindType {
			return model.TypeRef{}, f.fail(errors.KindTypeAlias, re.FQN, alias.node)
		}
		return model.TypeRef{}, err
	}
	f.prog.TypeAliases[fqn] = t
	return t, nil
}

// resolveName finds the definition a possibly qualified name refers to,
// searching the module scopes innermost first.
func (f *file) resolveName(ctx Context, text string) (string, bool) {
	name := eraseGenerics(text)
	if name == "" {
		return "", false
	}
	for _, pkg := range ctx.Scopes() {
		fqn := model.JoinFQN(pkg, name)
		if f.world().Has(fqn) {
			return fqn, true
		}
	}
	return "", false
}
