package evaluator

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/zephyrtronium/calcpaper/expressions"
)

// StripComments removes // line comments and /* */ block comments from s.
// Block comments nest. If a block comment is not closed, s is returned
// unchanged.
func StripComments(s string) string {
	var b strings.Builder
	depth := 0
	for i := 0; i < len(s); {
		switch {
		case depth == 0 && strings.HasPrefix(s[i:], "//"):
			j := strings.IndexByte(s[i:], '\n')
			if j < 0 {
				i = len(s)
				continue
			}
			i += j
		case strings.HasPrefix(s[i:], "/*"):
			depth++
			i += 2
		case depth > 0 && strings.HasPrefix(s[i:], "*/"):
			depth--
			i += 2
		case depth > 0:
			i++
		default:
			b.WriteByte(s[i])
			i++
		}
	}
	if depth > 0 {
		return s
	}
	return b.String()
}

var (
	// baseLiteral matches binary, octal, and hexadecimal integer literals.
	baseLiteral = regexp.MustCompile(`\b0([bB][01]+|[oO][0-7]+|[xX][0-9a-fA-F]+)\b`)
	// assignment matches id=expr where the = is not part of ==.
	assignment = regexp.MustCompile(`(?s)^\s*([a-zA-Z_]+)\s*=([^=].*)$`)
	// definition matches name(params)=body.
	definition = regexp.MustCompile(`(?s)^\s*([a-zA-Z_]+)\s*\(\s*([a-zA-Z_]+(?:\s*,\s*[a-zA-Z_]+)*)?\s*\)\s*=([^=].*)$`)
)

// RewriteBases replaces 0b, 0o, and 0x integer literals in s with their
// decimal values.
func RewriteBases(s string) string {
	return baseLiteral.ReplaceAllStringFunc(s, func(lit string) string {
		n, ok := new(big.Int).SetString(lit, 0)
		if !ok {
			return lit
		}
		return n.String()
	})
}

// normalize rewrites expression text into the grammar understood by package
// expressions.
func normalize(s string) string {
	s = RewriteBases(s)
	s = strings.ReplaceAll(s, "==", "=")
	return varName(s)
}

// varName maps an id to the name of its variable. Auto ids begin with #, which
// isn't an identifier character.
func varName(id string) string {
	return strings.ReplaceAll(id, "#", "_")
}

func splitParams(s string) []string {
	p := strings.Split(s, ",")
	for i := range p {
		p[i] = strings.TrimSpace(p[i])
	}
	return p
}

// isBooleanSource reports whether the source of an expression has a
// comparison or boolean operator at its root.
func isBooleanSource(src string) bool {
	e, err := expressions.Parse(strings.NewReader(normalize(src)), expressions.DisableDefaultFuncs())
	if err != nil {
		return false
	}
	return e.IsBoolean()
}
