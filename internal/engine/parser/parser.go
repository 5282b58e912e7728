// # internal/engine/parser/parser.go
package parser

import (
	"dts2as/internal/core/errors"
	"fmt"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

const maxIssueText = 80

type Parser struct {
	loader *GrammarLoader

	mu    sync.Mutex
	pools map[string]*ParserPool
}

func NewParser(loader *GrammarLoader) *Parser {
	return &Parser{
		loader: loader,
		pools:  make(map[string]*ParserPool),
	}
}

// Parse builds the syntax tree for one declaration file. Syntax errors do not
// fail the parse; they are collected on Document.Issues and the affected
// nodes surface as ERROR kinds for the caller to skip.
func (p *Parser) Parse(path string, source []byte) (*Document, error) {
	lang := p.loader.Detect(path)
	if lang == "" {
		// Inputs handed over explicitly are treated as declarations regardless of suffix.
		lang = LangTypeScript
	}
	pool, err := p.pool(lang)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}

	sp := pool.Get()
	defer pool.Put(sp)

	tree := sp.Parse(source, nil)
	if tree == nil {
		return nil, errors.New(errors.CodeInternal, fmt.Sprintf("parse failed: %s", path))
	}

	doc := &Document{
		Path:     path,
		Language: lang,
		Source:   source,
		tree:     tree,
	}
	if root := tree.RootNode(); root != nil && root.HasError() {
		collectIssues(doc, root)
	}
	return doc, nil
}

func (p *Parser) Supports(path string) bool {
	return p.loader.Detect(path) != ""
}

func (p *Parser) SupportedSuffixes() []string {
	return p.loader.SupportedSuffixes()
}

func (p *Parser) pool(lang string) (*ParserPool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pool, ok := p.pools[lang]; ok {
		return pool, nil
	}
	grammar, ok := p.loader.Language(lang)
	if !ok {
		return nil, errors.New(errors.CodeNotSupported, fmt.Sprintf("grammar not loaded: %s", lang))
	}
	pool := NewParserPool(grammar)
	p.pools[lang] = pool
	return pool, nil
}

func collectIssues(doc *Document, node *sitter.Node) {
	if node == nil {
		return
	}
	if node.IsError() || node.IsMissing() {
		text := strings.TrimSpace(doc.Text(node))
		if len(text) > maxIssueText {
			text = text[:maxIssueText] + "..."
		}
		if node.IsMissing() {
			text = node.Kind()
		}
		doc.Issues = append(doc.Issues, SyntaxIssue{
			Location: doc.Location(node),
			Text:     text,
			Missing:  node.IsMissing(),
		})
		return
	}
	if !node.HasError() {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		collectIssues(doc, node.Child(i))
	}
}
