package dispatch

import (
	"strings"
	"unicode"
)

// Signature renders a command as a WIT function type. Instance commands
// take the handle as their first parameter.
func (c *Command) Signature() string {
	var b strings.Builder
	b.WriteString("func(")

	params := c.Params
	if c.Scope == Instance {
		b.WriteString("handle: u32")
		if len(params) > 0 {
			b.WriteString(", ")
		}
	}
	writeParams(&b, params)
	b.WriteByte(')')

	switch len(c.Results) {
	case 0:
	case 1:
		b.WriteString(" -> ")
		b.WriteString(TypeName(c.Results[0].Type))
	default:
		b.WriteString(" -> (")
		writeParams(&b, c.Results)
		b.WriteByte(')')
	}
	return b.String()
}

func writeParams(b *strings.Builder, ps []Param) {
	for i, p := range ps {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(kebab(p.Name))
		b.WriteString(": ")
		b.WriteString(TypeName(p.Type))
	}
}

// WIT renders the command table as a WIT interface named name.
// Each function carries a doc comment with its keyword and aliases.
func (s *Set) WIT(name string) string {
	var b strings.Builder
	b.WriteString("interface ")
	b.WriteString(kebab(name))
	b.WriteString(" {\n")
	for i, c := range s.order {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("    /// keyword: ")
		b.WriteString(c.Name)
		if len(c.Aliases) > 0 {
			b.WriteString(", aliases: ")
			b.WriteString(strings.Join(c.Aliases, ", "))
		}
		b.WriteByte('\n')
		b.WriteString("    ")
		b.WriteString(kebab(c.Name))
		b.WriteString(": ")
		b.WriteString(c.Signature())
		b.WriteString(";\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// kebab converts camelCase and snake_case identifiers to WIT kebab-case.
func kebab(s string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range s {
		switch {
		case r == '_' || r == ' ':
			b.WriteByte('-')
			prevLower = false
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		default:
			b.WriteRune(r)
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}
	return b.String()
}
