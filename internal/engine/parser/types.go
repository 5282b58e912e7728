// # internal/engine/parser/types.go
package parser

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// SyntaxIssue is an ERROR or MISSING node reported by the grammar.
type SyntaxIssue struct {
	Location Location
	Text     string
	Missing  bool
}

// Document is one parsed declaration file. Nodes borrowed from it are only
// valid until Close.
type Document struct {
	Path     string
	Language string
	Source   []byte
	Issues   []SyntaxIssue

	tree *sitter.Tree
}

func (d *Document) Root() *sitter.Node {
	if d == nil || d.tree == nil {
		return nil
	}
	return d.tree.RootNode()
}

func (d *Document) Close() {
	if d != nil && d.tree != nil {
		d.tree.Close()
		d.tree = nil
	}
}

// Text returns the source spanned by node.
func (d *Document) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start >= end || end > uint(len(d.Source)) {
		return ""
	}
	return string(d.Source[start:end])
}

func (d *Document) Location(node *sitter.Node) Location {
	if node == nil {
		return Location{File: d.Path}
	}
	pos := node.StartPosition()
	return Location{
		File:   d.Path,
		Line:   int(pos.Row) + 1,
		Column: int(pos.Column) + 1,
	}
}
