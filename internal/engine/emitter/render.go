package emitter

import (
	"dts2as/internal/engine/model"
	"fmt"
	"strings"
)

// writer accumulates one unit, indenting with tabs. A requested blank line
// is only written when another line follows at the same block level.
type writer struct {
	buf   strings.Builder
	depth int
	gap   bool
}

func (w *writer) space() { w.gap = true }

func (w *writer) line(format string, args ...any) {
	if w.gap {
		w.buf.WriteString("\n")
		w.gap = false
	}
	w.buf.WriteString(strings.Repeat("\t", w.depth))
	fmt.Fprintf(&w.buf, format, args...)
	w.buf.WriteString("\n")
}

func (w *writer) open(format string, args ...any) {
	w.line(format+" {", args...)
	w.depth++
}

func (w *writer) close() {
	w.gap = false
	w.depth--
	w.line("}")
}

// begin writes the package block opening, imports and metadata shared by
// every unit kind.
func (e *Emitter) begin(w *writer, def model.Definition) {
	if pkg := def.Head().PackageName; pkg != "" {
		w.open("package %s", pkg)
	} else {
		w.open("package")
	}
	if imports := e.imports(def); len(imports) > 0 {
		for _, fqn := range imports {
			w.line("import %s;", fqn)
		}
		w.space()
	}
	if def.Head().Require {
		w.line("[JSModule]")
	}
}

func access(a model.Access) string {
	if a == model.AccessNone {
		return string(model.AccessPublic)
	}
	return string(a)
}

func (e *Emitter) class(cls *model.ClassDefinition) string {
	s := scope{def: cls, members: &cls.Members}
	w := &writer{}
	e.begin(w, cls)

	decl := access(cls.Access)
	if cls.Dynamic {
		decl += " dynamic"
	}
	decl += " class " + cls.Name
	if cls.SuperClass != "" {
		decl += " extends " + e.refName(cls.SuperClass, s)
	}
	if len(cls.Interfaces) > 0 {
		names := make([]string, len(cls.Interfaces))
		for i, fqn := range cls.Interfaces {
			names[i] = e.refName(fqn, s)
		}
		decl += " implements " + strings.Join(names, ", ")
	}
	w.open("%s", decl)

	overrides := e.inherited(cls)
	for _, p := range cls.Properties {
		if p.Static {
			e.property(w, s, p, false)
		}
	}
	for _, m := range cls.Methods {
		if m.Static {
			e.method(w, s, m, false)
		}
	}
	e.constructor(w, s, cls)
	for _, p := range cls.Properties {
		if !p.Static {
			e.property(w, s, p, overrides[p.Name])
		}
	}
	for _, m := range cls.Methods {
		if !m.Static {
			e.method(w, s, m, overrides[m.Name])
		}
	}

	w.close()
	w.close()
	return w.buf.String()
}

// inherited names the instance members declared by an ancestor, which the
// class must redeclare with override.
func (e *Emitter) inherited(cls *model.ClassDefinition) map[string]bool {
	names := make(map[string]bool)
	for _, parent := range e.world.SuperChain(cls) {
		for _, p := range parent.Properties {
			if !p.Static {
				names[p.Name] = true
			}
		}
		for _, m := range parent.Methods {
			if !m.Static {
				names[m.Name] = true
			}
		}
	}
	return names
}

func (e *Emitter) constructor(w *writer, s scope, cls *model.ClassDefinition) {
	var params []model.Parameter
	if ctor := e.world.EffectiveConstructor(cls); ctor != nil {
		params = ctor.Params
	}
	w.open("public function %s(%s)", cls.Name, e.params(params, s))
	if cls.SuperClass != "" {
		var args []string
		if parent, ok := e.world.Class(cls.SuperClass); ok {
			if ctor := e.world.EffectiveConstructor(parent); ctor != nil {
				for _, p := range ctor.Params {
					if p.Rest || p.Optional() {
						break
					}
					args = append(args, model.DefaultLiteral(p.Type))
				}
			}
		}
		w.line("super(%s);", strings.Join(args, ", "))
	}
	w.close()
	w.space()
}

func (e *Emitter) property(w *writer, s scope, p model.Property, override bool) {
	mods := memberModifiers(p.Access, p.Static, override)
	typ := e.typeName(p.Type, s)
	w.line("%sfunction get %s():%s { return %s; }", mods, p.Name, typ, model.DefaultLiteral(p.Type))
	if !p.Constant {
		w.line("%sfunction set %s(value:%s):void {}", mods, p.Name, typ)
	}
	w.space()
}

func (e *Emitter) method(w *writer, s scope, m model.Method, override bool) {
	mods := memberModifiers(m.Access, m.Static, override)
	w.line("%sfunction %s(%s):%s %s", mods, m.Name, e.params(m.Params, s), e.returnName(m.Return, s), body(m.Return))
	w.space()
}

func memberModifiers(a model.Access, static, override bool) string {
	var b strings.Builder
	if override {
		b.WriteString("override ")
	}
	b.WriteString(access(a))
	b.WriteString(" ")
	if static {
		b.WriteString("static ")
	}
	return b.String()
}

func (e *Emitter) iface(def *model.InterfaceDefinition) string {
	s := scope{def: def, members: &def.Members}
	w := &writer{}
	e.begin(w, def)

	decl := access(def.Access) + " interface " + def.Name
	if len(def.Extends) > 0 {
		names := make([]string, len(def.Extends))
		for i, fqn := range def.Extends {
			names[i] = e.refName(fqn, s)
		}
		decl += " extends " + strings.Join(names, ", ")
	}
	w.open("%s", decl)
	for _, p := range def.Properties {
		typ := e.typeName(p.Type, s)
		w.line("function get %s():%s;", p.Name, typ)
		if !p.Constant {
			w.line("function set %s(value:%s):void;", p.Name, typ)
		}
		w.space()
	}
	for _, m := range def.Methods {
		w.line("function %s(%s):%s;", m.Name, e.params(m.Params, s), e.returnName(m.Return, s))
		w.space()
	}
	w.close()
	w.close()
	return w.buf.String()
}

func (e *Emitter) function(fn *model.PackageFunctionDefinition) string {
	s := scope{def: fn}
	w := &writer{}
	e.begin(w, fn)
	w.line("%s function %s(%s):%s %s", access(fn.Access), fn.Name, e.params(fn.Params, s), e.returnName(fn.Return, s), body(fn.Return))
	w.close()
	return w.buf.String()
}

func (e *Emitter) variable(v *model.PackageVariableDefinition) string {
	s := scope{def: v}
	w := &writer{}
	e.begin(w, v)
	typ := e.typeName(v.Type, s)
	if v.Constant {
		w.line("%s const %s:%s = %s;", access(v.Access), v.Name, typ, model.DefaultLiteral(v.Type))
	} else {
		w.line("%s var %s:%s;", access(v.Access), v.Name, typ)
	}
	w.close()
	return w.buf.String()
}

func (e *Emitter) params(params []model.Parameter, s scope) string {
	out := make([]string, len(params))
	for i, p := range params {
		switch {
		case p.Rest:
			out[i] = "..." + p.Name
		case p.Optional():
			out[i] = fmt.Sprintf("%s:%s = %s", p.Name, e.typeName(p.Type, s), p.Default)
		default:
			out[i] = fmt.Sprintf("%s:%s", p.Name, e.typeName(p.Type, s))
		}
	}
	return strings.Join(out, ", ")
}

func (e *Emitter) returnName(t model.TypeRef, s scope) string {
	if t.IsZero() {
		return string(model.Void)
	}
	return e.typeName(t, s)
}

func body(ret model.TypeRef) string {
	if ret.IsZero() || ret.IsVoid() {
		return "{}"
	}
	return fmt.Sprintf("{ return %s; }", model.DefaultLiteral(ret))
}
