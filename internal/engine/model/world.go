package model

import (
	"dts2as/internal/core/errors"
	"fmt"
)

// World is the symbol table: an arena of package-level definitions addressed
// by fully-qualified name. References between definitions are FQN strings,
// never pointers, so replacing a definition never leaves stale links behind.
//
// A World is not safe for concurrent mutation. Once resolution finishes it is
// only read, and readers may run in parallel.
type World struct {
	defs  []Definition
	index map[string]int
}

func NewWorld() *World {
	return &World{index: make(map[string]int)}
}

// Add appends def. Adding a second definition for an existing FQN is a conflict.
func (w *World) Add(def Definition) error {
	fqn := def.Head().FQN()
	if _, ok := w.index[fqn]; ok {
		return errors.New(errors.CodeConflict, fmt.Sprintf("duplicate definition: %s", fqn))
	}
	w.index[fqn] = len(w.defs)
	w.defs = append(w.defs, def)
	return nil
}

// Replace swaps the definition stored under def's FQN, keeping its slot.
func (w *World) Replace(def Definition) error {
	fqn := def.Head().FQN()
	idx, ok := w.index[fqn]
	if !ok {
		return errors.New(errors.CodeNotFound, fmt.Sprintf("no definition to replace: %s", fqn))
	}
	w.defs[idx] = def
	return nil
}

// Remove deletes the definition for fqn. The slot is left empty so the
// positions of other definitions do not move.
func (w *World) Remove(fqn string) bool {
	idx, ok := w.index[fqn]
	if !ok {
		return false
	}
	w.defs[idx] = nil
	delete(w.index, fqn)
	return true
}

func (w *World) Lookup(fqn string) (Definition, bool) {
	idx, ok := w.index[fqn]
	if !ok {
		return nil, false
	}
	return w.defs[idx], true
}

func (w *World) Has(fqn string) bool {
	_, ok := w.index[fqn]
	return ok
}

func (w *World) Class(fqn string) (*ClassDefinition, bool) {
	def, ok := w.Lookup(fqn)
	if !ok {
		return nil, false
	}
	cls, ok := def.(*ClassDefinition)
	return cls, ok
}

func (w *World) Interface(fqn string) (*InterfaceDefinition, bool) {
	def, ok := w.Lookup(fqn)
	if !ok {
		return nil, false
	}
	iface, ok := def.(*InterfaceDefinition)
	return iface, ok
}

// Definitions returns the live definitions in insertion order.
func (w *World) Definitions() []Definition {
	out := make([]Definition, 0, len(w.index))
	for _, def := range w.defs {
		if def != nil {
			out = append(out, def)
		}
	}
	return out
}

func (w *World) Len() int { return len(w.index) }

// Clone deep-copies the world so a baseline can be reused as a read-only
// prefix for several independent runs.
func (w *World) Clone() *World {
	out := &World{
		defs:  make([]Definition, 0, len(w.defs)),
		index: make(map[string]int, len(w.index)),
	}
	for _, def := range w.defs {
		if def == nil {
			continue
		}
		out.index[def.Head().FQN()] = len(out.defs)
		out.defs = append(out.defs, def.clone())
	}
	return out
}

// SuperChain returns the ancestors of cls, nearest first. It stops at the
// first missing or repeated class.
func (w *World) SuperChain(cls *ClassDefinition) []*ClassDefinition {
	var chain []*ClassDefinition
	seen := map[string]bool{cls.FQN(): true}
	next := cls.SuperClass
	for next != "" && !seen[next] {
		seen[next] = true
		parent, ok := w.Class(next)
		if !ok {
			break
		}
		chain = append(chain, parent)
		next = parent.SuperClass
	}
	return chain
}

// EffectiveConstructor returns cls's own constructor or the nearest
// inherited one, and nil when no class in the chain declares one.
func (w *World) EffectiveConstructor(cls *ClassDefinition) *Constructor {
	if cls.Constructor != nil {
		return cls.Constructor
	}
	for _, parent := range w.SuperChain(cls) {
		if parent.Constructor != nil {
			return parent.Constructor
		}
	}
	return nil
}
