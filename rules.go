package iconify

import (
	"bufio"
	"io"
	"sort"
	"strings"
)

// Declaration is a single CSS property and value.
type Declaration struct {
	Property string
	Value    string
}

// Declarations is an ordered CSS declaration block.
type Declarations []Declaration

// Set replaces the value of prop if it is already present, otherwise it is
// appended.
func (d *Declarations) Set(prop, value string) {
	for i := range *d {
		if (*d)[i].Property == prop {
			(*d)[i].Value = value
			return
		}
	}
	*d = append(*d, Declaration{Property: prop, Value: value})
}

// Get returns the value for prop.
func (d Declarations) Get(prop string) (string, bool) {
	for _, decl := range d {
		if decl.Property == prop {
			return decl.Value, true
		}
	}
	return "", false
}

// Merge sets every declaration of other on d, in order.
func (d *Declarations) Merge(other Declarations) {
	for _, decl := range other {
		d.Set(decl.Property, decl.Value)
	}
}

// String renders the block contents, e.g. "width:1em;height:1em;".
func (d Declarations) String() string {
	var sb strings.Builder
	for _, decl := range d {
		sb.WriteString(decl.Property)
		sb.WriteByte(':')
		sb.WriteString(decl.Value)
		sb.WriteByte(';')
	}
	return sb.String()
}

// Rules maps a selector to its declarations.
type Rules map[string]Declarations

// Selectors returns the selectors of r in sorted order.
func (r Rules) Selectors() []string {
	ret := make([]string, 0, len(r))
	for sel := range r {
		ret = append(ret, sel)
	}
	sort.Strings(ret)
	return ret
}

func writeRules(w io.Writer, selectors []string, rules Rules) error {
	bw := bufio.NewWriter(w)
	for _, sel := range selectors {
		decls, ok := rules[sel]
		if !ok || len(decls) == 0 {
			continue
		}
		bw.WriteString(sel)
		bw.WriteByte('{')
		bw.WriteString(decls.String())
		bw.WriteByte('}')
	}
	return bw.Flush()
}

// ClassSelector returns the CSS selector for a class name, escaping every
// character that is not allowed in an identifier.
func ClassSelector(class string) string {
	var sb strings.Builder
	sb.Grow(len(class) + 8)
	sb.WriteByte('.')
	for i, r := range class {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == '-', r >= 0x80:
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				// digits cannot start an identifier
				sb.WriteString(`\3`)
				sb.WriteRune(r)
				sb.WriteByte(' ')
				continue
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte('\\')
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
