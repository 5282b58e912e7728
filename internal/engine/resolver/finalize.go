package resolver

import (
	"dts2as/internal/engine/model"
	"dts2as/internal/shared/observability"
	"slices"
)

// Finish applies the static sides recorded by every file of the run. A
// variable typed as its own class makes all members of that class static;
// any other side has its members copied onto the class as statics and, when
// it is a non-external interface, is removed. References to a removed side
// become Object.
func (r *Resolver) Finish(prog *Program) {
	world := prog.World
	var removed []string
	for _, s := range prog.staticSides {
		cls, ok := world.Class(s.class)
		if !ok {
			continue
		}
		side, ok := s.resolve(world)
		if !ok {
			observability.ResolverWarningsTotal.WithLabelValues("unknown_static_side").Inc()
			r.logger.Warn("unknown static side, class keeps instance members only",
				"location", s.location, "class", s.class, "type", s.name)
			continue
		}
		if side == cls.FQN() {
			markStatic(cls)
			continue
		}
		if applyStaticSide(world, cls, side) {
			removed = appendUnique(removed, side)
		}
	}
	prog.staticSides = nil

	for _, fqn := range removed {
		world.Remove(fqn)
		r.logger.Info("static side merged", "fqn", fqn)
	}
	if len(removed) == 0 {
		return
	}
	for _, def := range world.Definitions() {
		eraseDangling(world, def)
	}
}

// finalize restores the World invariants once a file is populated: no
// member named after its class, class-only super chains without cycles, and
// no reference to a definition that is gone.
func (f *file) finalize() {
	world := f.world()
	for _, def := range world.Definitions() {
		switch d := def.(type) {
		case *model.ClassDefinition:
			d.DropMember(d.Name)
			f.normalizeClass(d)
		case *model.InterfaceDefinition:
			d.Extends = slices.DeleteFunc(d.Extends, func(parent string) bool {
				_, ok := world.Interface(parent)
				return !ok || parent == d.FQN()
			})
		}
	}
	for _, def := range world.Definitions() {
		if cls, ok := def.(*model.ClassDefinition); ok {
			f.breakCycle(cls)
		}
		eraseDangling(world, def)
	}
}

func markStatic(cls *model.ClassDefinition) {
	for i := range cls.Properties {
		cls.Properties[i].Static = true
	}
	for i := range cls.Methods {
		cls.Methods[i].Static = true
	}
}

// applyStaticSide copies the members of side onto cls as statics. It
// reports whether side should be removed from the World.
func applyStaticSide(world *model.World, cls *model.ClassDefinition, side string) bool {
	def, ok := world.Lookup(side)
	if !ok {
		return false
	}
	var members *model.Members
	var ctor *model.Constructor
	removable := false
	switch d := def.(type) {
	case *model.InterfaceDefinition:
		members = &d.Members
		ctor = d.Constructor
		removable = !d.External
	case *model.ClassDefinition:
		members = &d.Members
	default:
		return false
	}

	for _, p := range members.Properties {
		if p.Name == "prototype" {
			continue
		}
		p.Static = true
		p.Access = model.AccessPublic
		addProperty(&cls.Members, p)
	}
	for _, m := range members.Methods {
		m.Static = true
		m.Access = model.AccessPublic
		m.Params = append([]model.Parameter(nil), m.Params...)
		addMethod(&cls.Members, m)
	}
	if cls.Constructor == nil && ctor != nil {
		cls.Constructor = &model.Constructor{Signature: model.Signature{
			Params: append([]model.Parameter(nil), ctor.Params...),
		}}
	}
	return removable
}

// normalizeClass keeps classes in the super-class slot and interfaces in
// the interface list.
func (f *file) normalizeClass(cls *model.ClassDefinition) {
	world := f.world()
	if cls.SuperClass != "" {
		if _, ok := world.Interface(cls.SuperClass); ok {
			cls.Interfaces = append([]string{cls.SuperClass}, cls.Interfaces...)
			cls.SuperClass = ""
		}
	}
	var ifaces []string
	for _, fqn := range cls.Interfaces {
		if fqn == cls.FQN() {
			continue
		}
		def, _ := world.Lookup(fqn)
		switch def.(type) {
		case *model.ClassDefinition:
			if cls.SuperClass == "" {
				cls.SuperClass = fqn
			}
		case *model.InterfaceDefinition:
			ifaces = appendUnique(ifaces, fqn)
		}
	}
	cls.Interfaces = ifaces
	cls.Dynamic = cls.External && model.IsDynamicBuiltin(cls.FQN())
}

// breakCycle cuts the super-class link that closes a cycle through cls.
func (f *file) breakCycle(cls *model.ClassDefinition) {
	seen := map[string]bool{cls.FQN(): true}
	cur := cls
	for cur.SuperClass != "" {
		if cur.SuperClass == cls.FQN() {
			f.logger.Warn("breaking super class cycle", "fqn", cur.FQN(), "super", cur.SuperClass)
			cur.SuperClass = ""
			return
		}
		if seen[cur.SuperClass] {
			return
		}
		seen[cur.SuperClass] = true
		next, ok := f.world().Class(cur.SuperClass)
		if !ok {
			return
		}
		cur = next
	}
}

func eraseDangling(world *model.World, def model.Definition) {
	fix := func(t *model.TypeRef) {
		if t.Ref != "" && !world.Has(t.Ref) {
			*t = model.Prim(model.Object)
		}
	}
	fixSig := func(sig *model.Signature) {
		for i := range sig.Params {
			fix(&sig.Params[i].Type)
		}
		fix(&sig.Return)
	}
	fixMembers := func(m *model.Members) {
		for i := range m.Properties {
			fix(&m.Properties[i].Type)
		}
		for i := range m.Methods {
			fixSig(&m.Methods[i].Signature)
		}
	}

	switch d := def.(type) {
	case *model.ClassDefinition:
		if d.SuperClass != "" && !world.Has(d.SuperClass) {
			d.SuperClass = ""
		}
		fixMembers(&d.Members)
		if d.Constructor != nil {
			fixSig(&d.Constructor.Signature)
		}
	case *model.InterfaceDefinition:
		fixMembers(&d.Members)
		if d.Constructor != nil {
			fixSig(&d.Constructor.Signature)
		}
	case *model.PackageFunctionDefinition:
		fixSig(&d.Signature)
	case *model.PackageVariableDefinition:
		fix(&d.Type)
	}
}
