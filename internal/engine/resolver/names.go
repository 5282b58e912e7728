package resolver

import (
	"strings"
	"unicode"
)

// reserved words of the target language that cannot name a member or parameter.
var reserved = map[string]bool{
	"as": true, "break": true, "case": true, "catch": true, "class": true,
	"const": true, "continue": true, "default": true, "delete": true, "do": true,
	"else": true, "extends": true, "false": true, "finally": true, "for": true,
	"function": true, "if": true, "implements": true, "import": true, "in": true,
	"instanceof": true, "interface": true, "internal": true, "is": true,
	"new": true, "null": true, "package": true, "private": true,
	"protected": true, "public": true, "return": true, "super": true,
	"switch": true, "this": true, "throw": true, "true": true, "try": true,
	"typeof": true, "use": true, "var": true, "void": true, "while": true,
	"with": true,
}

func isIdentifier(name string) bool {
	if name == "" || reserved[name] {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'' || first == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// moduleSegments turns a quoted module name such as "@scope/pkg-name" into
// package segments: scope.pkg_name.
func moduleSegments(name string) []string {
	var out []string
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '.' })
	for _, part := range parts {
		part = strings.TrimPrefix(part, "@")
		var b strings.Builder
		for _, r := range part {
			if r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			} else {
				b.WriteByte('_')
			}
		}
		seg := b.String()
		if seg == "" {
			continue
		}
		if unicode.IsDigit(rune(seg[0])) {
			seg = "_" + seg
		}
		if reserved[seg] {
			seg += "_"
		}
		out = append(out, seg)
	}
	return out
}

// eraseGenerics drops the type argument list: Map<K, V> becomes Map.
func eraseGenerics(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexByte(text, '<'); idx >= 0 {
		text = strings.TrimSpace(text[:idx])
	}
	return text
}
