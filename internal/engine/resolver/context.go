package resolver

import (
	"dts2as/internal/engine/model"
	"slices"
	"strings"
)

// Context is the lexical position of a declaration. It is passed by value
// through both passes; entering a module or a generic declaration returns a
// new Context and leaves the caller's untouched.
type Context struct {
	// Module is the package path stack, outermost first.
	Module []string
	// Require is set inside a module declared with a quoted name.
	Require bool
	// Ambient is set inside declare blocks and declaration files.
	Ambient bool
	// Exported is set for the declaration directly under an export statement.
	Exported bool
	// Self is the FQN of the enclosing class or interface, the target of `this`.
	Self string

	typeParams map[string]bool
}

func (c Context) Package() string { return strings.Join(c.Module, ".") }

func (c Context) FQN(name string) string { return model.JoinFQN(c.Package(), name) }

func (c Context) Enter(segments ...string) Context {
	c.Module = append(slices.Clip(c.Module), segments...)
	c.Exported = false
	return c
}

// Global drops the module path, for `declare global` blocks.
func (c Context) Global() Context {
	c.Module = nil
	c.Require = false
	c.Exported = false
	return c
}

func (c Context) WithTypeParams(names []string) Context {
	if len(names) == 0 {
		return c
	}
	merged := make(map[string]bool, len(c.typeParams)+len(names))
	for name := range c.typeParams {
		merged[name] = true
	}
	for _, name := range names {
		merged[name] = true
	}
	c.typeParams = merged
	return c
}

func (c Context) IsTypeParam(name string) bool { return c.typeParams[name] }

// Scopes lists the packages a bare name may live in, innermost first and
// ending with the top level.
func (c Context) Scopes() []string {
	out := make([]string, 0, len(c.Module)+1)
	for i := len(c.Module); i >= 0; i-- {
		out = append(out, strings.Join(c.Module[:i], "."))
	}
	return out
}

func (c Context) Access() model.Access {
	if c.Ambient || c.Exported {
		return model.AccessPublic
	}
	return model.AccessInternal
}
