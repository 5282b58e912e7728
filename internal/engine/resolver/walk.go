package resolver

import (
	"dts2as/internal/engine/parser"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type handler func(ctx Context, node *sitter.Node) error

// visitor holds the per-declaration handlers of one pass. Module and
// statement nesting is shared by both passes and handled by walk.
type visitor struct {
	class    handler
	iface    handler
	function handler
	variable handler
	enum     handler
	alias    handler
	// reportUnknown logs unrecognized statements; only one pass does so.
	reportUnknown bool
}

func (f *file) walk(v *visitor, ctx Context, node *sitter.Node) error {
	return f.dispatcher(v, ctx).DispatchChildren(node)
}

func (f *file) dispatcher(v *visitor, ctx Context) *parser.Dispatcher {
	bind := func(h handler) parser.NodeHandler {
		return func(node *sitter.Node) error { return h(ctx, node) }
	}
	scoped := func(h func(*visitor, Context, *sitter.Node) error) parser.NodeHandler {
		return func(node *sitter.Node) error { return h(v, ctx, node) }
	}
	return parser.NewDispatcher(map[string]parser.NodeHandler{
		"ambient_declaration":            scoped(f.ambient),
		"export_statement":               scoped(f.export),
		"module":                         scoped(f.module),
		"internal_module":                scoped(f.module),
		"expression_statement":           scoped(f.expression),
		"class_declaration":              bind(v.class),
		"abstract_class_declaration":     bind(v.class),
		"interface_declaration":          bind(v.iface),
		"function_signature":             bind(v.function),
		"function_declaration":           bind(v.function),
		"generator_function_declaration": bind(v.function),
		"variable_declaration":           bind(v.variable),
		"lexical_declaration":            bind(v.variable),
		"enum_declaration":               bind(v.enum),
		"type_alias_declaration":         bind(v.alias),
	}).Ignore("import_statement", "import_alias", "empty_statement", "hash_bang_line").Fallback(func(node *sitter.Node) error {
		if v.reportUnknown {
			f.warn("unknown_declaration", node, "skipping unrecognized declaration", "kind", node.Kind())
		}
		return nil
	})
}

func (f *file) ambient(v *visitor, ctx Context, node *sitter.Node) error {
	ctx.Ambient = true
	for _, child := range parser.NamedChildren(node) {
		switch child.Kind() {
		case "statement_block":
			// declare global { ... }
			if err := f.walk(v, ctx.Global(), child); err != nil {
				return err
			}
		case "comment", "property_identifier":
		default:
			if err := f.dispatcher(v, ctx).Dispatch(child); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *file) export(v *visitor, ctx Context, node *sitter.Node) error {
	decl := node.ChildByFieldName("declaration")
	if decl == nil {
		// export =, export default <expr>, export { ... }
		return nil
	}
	ctx.Exported = true
	return f.dispatcher(v, ctx).Dispatch(decl)
}

func (f *file) module(v *visitor, ctx Context, node *sitter.Node) error {
	name := node.ChildByFieldName("name")
	if name == nil {
		return nil
	}
	var segments []string
	if name.Kind() == "string" {
		ctx.Require = true
		segments = moduleSegments(unquote(f.text(name)))
	} else {
		segments = strings.Split(f.text(name), ".")
	}
	body := node.ChildByFieldName("body")
	if body == nil {
		// declare module "x"; shorthand has no members
		return nil
	}
	return f.walk(v, ctx.Enter(segments...), body)
}

// expression handles `namespace X {}` written without declare, which the
// grammar places in expression position.
func (f *file) expression(v *visitor, ctx Context, node *sitter.Node) error {
	for _, child := range parser.NamedChildren(node) {
		if child.Kind() == "internal_module" {
			if err := f.module(v, ctx, child); err != nil {
				return err
			}
			continue
		}
		if v.reportUnknown {
			f.warn("unknown_declaration", child, "skipping expression statement", "kind", child.Kind())
		}
	}
	return nil
}

func (f *file) declName(node *sitter.Node) string {
	return strings.TrimSpace(f.text(node.ChildByFieldName("name")))
}

func (f *file) typeParamNames(node *sitter.Node) []string {
	params := node.ChildByFieldName("type_parameters")
	if params == nil {
		return nil
	}
	var names []string
	for _, param := range parser.NamedChildren(params) {
		if param.Kind() != "type_parameter" {
			continue
		}
		if name := f.text(param.ChildByFieldName("name")); name != "" {
			names = append(names, name)
		}
	}
	return names
}
