package dom

import (
	"sort"
	"strings"
	"unicode"
)

// Style is an element's inline style declaration. Property names may
// be given in camelCase ("textDecoration") or CSS form
// ("text-decoration"); they are stored in CSS form.
type Style struct {
	props map[string]string
}

// Set sets a property. An empty value removes it.
func (s *Style) Set(name, value string) {
	name = cssName(name)
	if value == "" {
		delete(s.props, name)
		return
	}
	s.props[name] = value
}

// Get returns the value of a property, or "".
func (s *Style) Get(name string) string {
	return s.props[cssName(name)]
}

// Len returns the number of properties set.
func (s *Style) Len() int {
	return len(s.props)
}

// CSSText serializes the declaration with properties sorted by name,
// e.g. "color: red; display: flex".
func (s *Style) CSSText() string {
	names := make([]string, 0, len(s.props))
	for k := range s.props {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = k + ": " + s.props[k]
	}
	return strings.Join(parts, "; ")
}

// cssName converts camelCase to hyphenated CSS property names.
func cssName(name string) string {
	if strings.ContainsRune(name, '-') {
		return strings.ToLower(name)
	}
	var b strings.Builder
	for _, r := range name {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
