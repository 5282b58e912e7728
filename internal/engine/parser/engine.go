// # internal/engine/parser/engine.go
package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// NodeHandler processes one syntax node. A returned error stops the walk.
type NodeHandler func(node *sitter.Node) error

// Dispatcher routes syntax nodes to handlers by node kind. Kinds without a
// handler go to the fallback, unless they were explicitly ignored.
type Dispatcher struct {
	handlers map[string]NodeHandler
	ignored  map[string]bool
	fallback NodeHandler
}

func NewDispatcher(handlers map[string]NodeHandler) *Dispatcher {
	return &Dispatcher{
		handlers: handlers,
		ignored:  map[string]bool{"comment": true},
	}
}

// Ignore silently skips the given node kinds.
func (d *Dispatcher) Ignore(kinds ...string) *Dispatcher {
	for _, kind := range kinds {
		d.ignored[kind] = true
	}
	return d
}

// Fallback sets the handler for kinds that are neither handled nor ignored.
func (d *Dispatcher) Fallback(h NodeHandler) *Dispatcher {
	d.fallback = h
	return d
}

func (d *Dispatcher) Dispatch(node *sitter.Node) error {
	if node == nil {
		return nil
	}
	kind := node.Kind()
	if handler, ok := d.handlers[kind]; ok {
		return handler(node)
	}
	if d.ignored[kind] || d.fallback == nil {
		return nil
	}
	return d.fallback(node)
}

// DispatchChildren dispatches every named child of node in source order.
func (d *Dispatcher) DispatchChildren(node *sitter.Node) error {
	for _, child := range NamedChildren(node) {
		if err := d.Dispatch(child); err != nil {
			return err
		}
	}
	return nil
}

func NamedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	count := node.NamedChildCount()
	out := make([]*sitter.Node, 0, count)
	for i := uint(0); i < count; i++ {
		if child := node.NamedChild(i); child != nil {
			out = append(out, child)
		}
	}
	return out
}

// FirstNamedChild returns the first named child that is not a comment.
func FirstNamedChild(node *sitter.Node) *sitter.Node {
	for _, child := range NamedChildren(node) {
		if child.Kind() != "comment" {
			return child
		}
	}
	return nil
}

// ChildOfKind returns the first direct child (named or not) of the given kind.
func ChildOfKind(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

// HasModifier reports whether node has a direct child token of kind that
// appears before stop. Modifiers such as static or readonly are anonymous
// tokens preceding the member name.
func HasModifier(node *sitter.Node, kind string, stop *sitter.Node) bool {
	if node == nil {
		return false
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if stop != nil && child.StartByte() >= stop.StartByte() {
			return false
		}
		if child.Kind() == kind {
			return true
		}
	}
	return false
}
