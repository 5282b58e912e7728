// # internal/engine/parser/loader.go
package parser

import (
	"fmt"
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

const (
	LangTypeScript = "typescript"
	LangTSX        = "tsx"
)

// LanguageSpec describes which file names are routed to a grammar.
type LanguageSpec struct {
	Suffixes []string
	Enabled  bool
}

// DefaultLanguageRegistry routes declaration files to the TypeScript grammar.
// TSX is known but disabled: declaration files never contain JSX.
func DefaultLanguageRegistry() map[string]LanguageSpec {
	return map[string]LanguageSpec{
		LangTypeScript: {Suffixes: []string{".d.ts", ".d.mts", ".d.cts"}, Enabled: true},
		LangTSX:        {Suffixes: []string{".d.tsx"}, Enabled: false},
	}
}

type GrammarLoader struct {
	languages map[string]*sitter.Language
	registry  map[string]LanguageSpec
}

func NewGrammarLoader() (*GrammarLoader, error) {
	return NewGrammarLoaderWithRegistry(DefaultLanguageRegistry())
}

func NewGrammarLoaderWithRegistry(registry map[string]LanguageSpec) (*GrammarLoader, error) {
	gl := &GrammarLoader{
		languages: make(map[string]*sitter.Language),
		registry:  make(map[string]LanguageSpec, len(registry)),
	}
	for id, entry := range registry {
		entry.Suffixes = append([]string(nil), entry.Suffixes...)
		gl.registry[id] = entry
	}

	for _, langID := range sortedKeys(gl.registry) {
		if !gl.registry[langID].Enabled {
			continue
		}
		switch langID {
		case LangTypeScript:
			gl.languages[langID] = sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
		case LangTSX:
			gl.languages[langID] = sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
		default:
			return nil, fmt.Errorf("language %q is enabled but no grammar is bundled for it", langID)
		}
	}
	return gl, nil
}

// Language returns the loaded grammar for a language id.
func (gl *GrammarLoader) Language(id string) (*sitter.Language, bool) {
	lang, ok := gl.languages[id]
	return lang, ok
}

// Detect returns the language id for a file path, or "" when unsupported.
func (gl *GrammarLoader) Detect(path string) string {
	lower := strings.ToLower(path)
	for _, id := range sortedKeys(gl.registry) {
		entry := gl.registry[id]
		if !entry.Enabled {
			continue
		}
		for _, suffix := range entry.Suffixes {
			if strings.HasSuffix(lower, suffix) {
				return id
			}
		}
	}
	return ""
}

func (gl *GrammarLoader) SupportedSuffixes() []string {
	var out []string
	for _, id := range sortedKeys(gl.registry) {
		if gl.registry[id].Enabled {
			out = append(out, gl.registry[id].Suffixes...)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
