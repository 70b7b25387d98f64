// Package proto implements the line-oriented text formats used to
// exchange document snapshots and user actions with a running
// runtime.
//
// Tree format (deterministic, diff-friendly):
//
//	rev <uint64>
//	root <nodeid>
//	node <id> <type>
//	prop <id> <k>=<v> <k>=<v> ...
//	child <parent> <child>
//
// Action format (one per line):
//
//	<kind> <k>=<v> <k>=<v> ...
//
// Values that are empty or contain whitespace, quotes, backslashes,
// '=' or unprintable runes are written as Go-style double-quoted
// strings.
package proto

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Node is one node of a tree snapshot.
type Node struct {
	ID       string
	Type     string
	Props    map[string]string
	Children []string // child IDs in order
}

// Tree is a complete document snapshot.
type Tree struct {
	Rev   uint64
	Root  string
	Nodes map[string]*Node // keyed by ID
	Order []string         // node IDs in document order
}

// Action is a user action addressed to the document, such as
// "click sel=button.inc".
type Action struct {
	Kind string
	Args map[string]string
}

// Get returns the named argument, or "".
func (a *Action) Get(k string) string {
	return a.Args[k]
}

// Int returns the named argument parsed as an int, or def.
func (a *Action) Int(k string, def int) int {
	n, err := strconv.Atoi(a.Args[k])
	if err != nil {
		return def
	}
	return n
}

// --- Values ---

func needsQuote(s string) bool {
	if s == "" {
		return true
	}
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '"' || r == '\\' || r == '=' || !unicode.IsPrint(r)
	}) >= 0
}

// EscapeValue encodes a value, quoting it if necessary.
func EscapeValue(s string) string {
	if !needsQuote(s) {
		return s
	}
	return strconv.Quote(s)
}

// UnescapeValue decodes a value written by EscapeValue. Malformed
// quoted strings are returned unchanged.
func UnescapeValue(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	v, err := strconv.Unquote(s)
	if err != nil {
		return s
	}
	return v
}

// FormatKV formats a key=value pair.
func FormatKV(k, v string) string {
	return k + "=" + EscapeValue(v)
}

// ParseKV splits a key=value token and decodes the value.
func ParseKV(token string) (string, string, bool) {
	k, v, ok := strings.Cut(token, "=")
	if !ok {
		return "", "", false
	}
	return k, UnescapeValue(v), true
}

// Tokenize splits a line on unquoted blanks. Quoted sections,
// including those following "k=", stay inside their token.
func Tokenize(line string) []string {
	var (
		tokens  []string
		cur     strings.Builder
		quoted  bool
		escaped bool
		pending bool
	)
	flush := func() {
		if pending {
			tokens = append(tokens, cur.String())
			cur.Reset()
			pending = false
		}
	}
	for _, r := range line {
		switch {
		case escaped:
			escaped = false
		case quoted && r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		case !quoted && (r == ' ' || r == '\t'):
			flush()
			continue
		}
		cur.WriteRune(r)
		pending = true
	}
	flush()
	return tokens
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// --- Trees ---

// SerializeTree encodes a tree in the text format.
func SerializeTree(t *Tree) string {
	var b strings.Builder
	fmt.Fprintf(&b, "rev %d\n", t.Rev)
	fmt.Fprintf(&b, "root %s\n", t.Root)
	for _, id := range t.Order {
		n := t.Nodes[id]
		if n == nil {
			continue
		}
		fmt.Fprintf(&b, "node %s %s\n", n.ID, n.Type)
		if len(n.Props) > 0 {
			b.WriteString("prop " + n.ID)
			for _, k := range sortedKeys(n.Props) {
				b.WriteString(" " + FormatKV(k, n.Props[k]))
			}
			b.WriteByte('\n')
		}
		for _, c := range n.Children {
			fmt.Fprintf(&b, "child %s %s\n", n.ID, c)
		}
	}
	return b.String()
}

// ParseTree decodes a tree from the text format. Unknown directives
// are skipped.
func ParseTree(text string) (*Tree, error) {
	t := &Tree{Nodes: make(map[string]*Node)}
	node := func(id string) *Node {
		n := t.Nodes[id]
		if n == nil {
			n = &Node{ID: id, Props: make(map[string]string)}
			t.Nodes[id] = n
			t.Order = append(t.Order, id)
		}
		return n
	}
	for i, line := range strings.Split(text, "\n") {
		tokens := Tokenize(strings.TrimSpace(line))
		if len(tokens) == 0 {
			continue
		}
		need := map[string]int{"rev": 2, "root": 2, "node": 3, "prop": 2, "child": 3}[tokens[0]]
		if len(tokens) < need {
			return nil, fmt.Errorf("proto: line %d: %s: missing operands", i+1, tokens[0])
		}
		switch tokens[0] {
		case "rev":
			v, err := strconv.ParseUint(tokens[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("proto: line %d: bad rev: %w", i+1, err)
			}
			t.Rev = v
		case "root":
			t.Root = tokens[1]
		case "node":
			node(tokens[1]).Type = tokens[2]
		case "prop":
			n := node(tokens[1])
			for _, kv := range tokens[2:] {
				if k, v, ok := ParseKV(kv); ok {
					n.Props[k] = v
				}
			}
		case "child":
			n := node(tokens[1])
			n.Children = append(n.Children, tokens[2])
		}
	}
	return t, nil
}

// FormatOutline renders a tree as an indented outline for humans:
// one line per node, elements as tag#id.class [attrs], text nodes as
// quoted strings.
func FormatOutline(t *Tree) string {
	var b strings.Builder
	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		n := t.Nodes[id]
		if n == nil {
			return
		}
		b.WriteString(strings.Repeat("  ", depth))
		if n.Type == "#text" {
			b.WriteString(strconv.Quote(n.Props["text"]))
		} else {
			b.WriteString(n.Type)
			if v := n.Props["id"]; v != "" {
				b.WriteString("#" + v)
			}
			for _, c := range strings.Fields(n.Props["class"]) {
				b.WriteString("." + c)
			}
			var rest []string
			for _, k := range sortedKeys(n.Props) {
				if k == "id" || k == "class" {
					continue
				}
				rest = append(rest, FormatKV(k, n.Props[k]))
			}
			if len(rest) > 0 {
				b.WriteString(" [" + strings.Join(rest, " ") + "]")
			}
		}
		b.WriteByte('\n')
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(t.Root, 0)
	return b.String()
}

// --- Actions ---

// SerializeAction encodes an action as a single line.
func SerializeAction(a *Action) string {
	var b strings.Builder
	b.WriteString(a.Kind)
	for _, k := range sortedKeys(a.Args) {
		b.WriteString(" " + FormatKV(k, a.Args[k]))
	}
	return b.String()
}

// ParseAction decodes a single action line.
func ParseAction(line string) (*Action, error) {
	tokens := Tokenize(strings.TrimSpace(line))
	if len(tokens) == 0 {
		return nil, fmt.Errorf("proto: empty action")
	}
	a := &Action{Kind: tokens[0], Args: make(map[string]string)}
	for _, kv := range tokens[1:] {
		k, v, ok := ParseKV(kv)
		if !ok {
			return nil, fmt.Errorf("proto: action %s: malformed argument %q", a.Kind, kv)
		}
		a.Args[k] = v
	}
	return a, nil
}
