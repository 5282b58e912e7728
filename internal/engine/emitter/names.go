package emitter

import (
	"dts2as/internal/engine/model"
)

// RequiresImport reports whether a unit for a must import b: b lives in a
// named package other than a's.
func RequiresImport(b, a model.Definition) bool {
	pkg := b.Head().PackageName
	return pkg != "" && pkg != a.Head().PackageName
}

// scope is the emitting definition, against which names are resolved.
type scope struct {
	def     model.Definition
	members *model.Members
}

func (s scope) pkg() string { return s.def.Head().PackageName }

// typeName is the text used for t inside s.
func (e *Emitter) typeName(t model.TypeRef, s scope) string {
	if t.IsPrimitive() {
		return string(t.Primitive)
	}
	if t.Ref == "" {
		return string(model.Void)
	}
	return e.refName(t.Ref, s)
}

// refName is the bare short name of fqn unless that would be ambiguous
// inside s: it collides with a member of the emitting type, or another
// definition with the same short name is visible from the emitting package.
func (e *Emitter) refName(fqn string, s scope) string {
	def, ok := e.world.Lookup(fqn)
	if !ok {
		return string(model.Object)
	}
	pkg, short := def.Head().PackageName, def.Head().Name
	if s.members != nil && s.members.HasMember(short) {
		if pkg == "" {
			return string(model.Object)
		}
		return fqn
	}
	if local := model.JoinFQN(s.pkg(), short); local != fqn && e.world.Has(local) {
		return fqn
	}
	if short != fqn && e.world.Has(short) {
		return fqn
	}
	return short
}

// imports lists the FQNs def must import, de-duplicated in first-seen order.
func (e *Emitter) imports(def model.Definition) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(fqn string) {
		if fqn == "" || seen[fqn] {
			return
		}
		target, ok := e.world.Lookup(fqn)
		if !ok || !RequiresImport(target, def) {
			return
		}
		seen[fqn] = true
		out = append(out, fqn)
	}
	addSignature := func(sig model.Signature) {
		for _, p := range sig.Params {
			add(p.Type.Ref)
		}
		add(sig.Return.Ref)
	}
	addMembers := func(m *model.Members) {
		for _, p := range m.Properties {
			add(p.Type.Ref)
		}
		for _, fn := range m.Methods {
			addSignature(fn.Signature)
		}
	}

	switch d := def.(type) {
	case *model.ClassDefinition:
		add(d.SuperClass)
		for _, iface := range d.Interfaces {
			add(iface)
		}
		addMembers(&d.Members)
		if ctor := e.world.EffectiveConstructor(d); ctor != nil {
			addSignature(ctor.Signature)
		}
	case *model.InterfaceDefinition:
		for _, parent := range d.Extends {
			add(parent)
		}
		addMembers(&d.Members)
	case *model.PackageFunctionDefinition:
		addSignature(d.Signature)
	case *model.PackageVariableDefinition:
		add(d.Type.Ref)
	}
	return out
}
