package dom

import (
	"fmt"
	"strings"
)

// compound is one space-separated step of a selector, such as
// "input.todo[type=checkbox]".
type compound struct {
	tag     string
	id      string
	classes []string
	attrs   []attrTest
}

type attrTest struct {
	name   string
	value  string
	exists bool // [name] without a value
}

// Query returns the descendants of n, in document order, matching a
// selector. Supported syntax is a subset of CSS: compound selectors
// built from a tag name, #id, .class and [attr] / [attr=value] tests,
// combined with the descendant (space) combinator.
func (n *Node) Query(selector string) ([]*Node, error) {
	chain, err := parseSelector(selector)
	if err != nil {
		return nil, err
	}
	var out []*Node
	for _, c := range n.children {
		c.walk(func(d *Node) bool {
			if d.Type == ElementNode && matchChain(d, chain, len(chain)-1) {
				out = append(out, d)
			}
			return true
		})
	}
	return out, nil
}

// QueryOne returns the first match of selector, or nil.
func (n *Node) QueryOne(selector string) (*Node, error) {
	all, err := n.Query(selector)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func matchChain(n *Node, chain []compound, i int) bool {
	if !chain[i].matches(n) {
		return false
	}
	if i == 0 {
		return true
	}
	for a := n.parent; a != nil; a = a.parent {
		if matchChain(a, chain, i-1) {
			return true
		}
	}
	return false
}

func (c *compound) matches(n *Node) bool {
	if c.tag != "" && c.tag != "*" && c.tag != n.Tag {
		return false
	}
	if c.id != "" && n.attrs["id"] != c.id {
		return false
	}
	for _, cls := range c.classes {
		if !n.HasClass(cls) {
			return false
		}
	}
	for _, t := range c.attrs {
		v, ok := n.attrs[t.name]
		if !ok || (!t.exists && v != t.value) {
			return false
		}
	}
	return true
}

func parseSelector(sel string) ([]compound, error) {
	fields := strings.Fields(sel)
	if len(fields) == 0 {
		return nil, fmt.Errorf("dom: empty selector")
	}
	chain := make([]compound, 0, len(fields))
	for _, f := range fields {
		c, err := parseCompound(f)
		if err != nil {
			return nil, fmt.Errorf("dom: selector %q: %w", sel, err)
		}
		chain = append(chain, c)
	}
	return chain, nil
}

func parseCompound(s string) (compound, error) {
	var c compound
	i := 0
	name := func() string {
		j := i
		for j < len(s) && isNameByte(s[j]) {
			j++
		}
		v := s[i:j]
		i = j
		return v
	}
	c.tag = strings.ToLower(name())
	for i < len(s) {
		switch s[i] {
		case '.':
			i++
			cls := name()
			if cls == "" {
				return c, fmt.Errorf("empty class at %d", i)
			}
			c.classes = append(c.classes, cls)
		case '#':
			i++
			c.id = name()
			if c.id == "" {
				return c, fmt.Errorf("empty id at %d", i)
			}
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return c, fmt.Errorf("unterminated attribute test")
			}
			body := s[i+1 : i+end]
			i += end + 1
			k, v, hasValue := strings.Cut(body, "=")
			if k == "" {
				return c, fmt.Errorf("empty attribute name")
			}
			c.attrs = append(c.attrs, attrTest{
				name:   k,
				value:  strings.Trim(v, `"'`),
				exists: !hasValue,
			})
		default:
			return c, fmt.Errorf("unexpected %q at %d", s[i], i)
		}
	}
	return c, nil
}

func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '-' || c == '_' || c == '*' || c >= 0x80
}
