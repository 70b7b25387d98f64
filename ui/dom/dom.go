// Package dom implements the in-memory host document the renderer
// writes to.
//
// A Document is a tree of element and text Nodes. Elements carry
// attributes, an inline Style, the live form properties Value and
// Checked, and event listeners. Events dispatched on a node bubble
// to its ancestors the way they do in a browser, so handlers can
// call StopPropagation and PreventDefault.
//
// Nothing here is safe for concurrent use; the document is owned by
// the goroutine that drives the runtime.
package dom

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidTag is returned by CreateElement for malformed tag names.
var ErrInvalidTag = errors.New("dom: invalid tag name")

// NodeType distinguishes element nodes from text nodes.
type NodeType uint8

const (
	ElementNode NodeType = iota + 1
	TextNode
)

func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	default:
		return "unknown"
	}
}

// Node is an element or a text node.
type Node struct {
	Type NodeType
	Tag  string // lower-case tag name, elements only
	Text string // text nodes only

	// Live form properties. They are independent of the "value" and
	// "checked" attributes, as in a browser.
	Value   string
	Checked bool

	doc       *Document
	parent    *Node
	children  []*Node
	attrs     map[string]string
	style     *Style
	listeners map[string][]*Listener
}

// Document owns a body element under which applications mount.
type Document struct {
	body *Node
}

// NewDocument creates an empty document with a body element.
func NewDocument() *Document {
	d := &Document{}
	d.body = d.newElement("body")
	return d
}

// Body returns the document's body element.
func (d *Document) Body() *Node {
	return d.body
}

// CreateElement creates a detached element. Tag names are folded to
// lower case and must start with a letter, followed by letters,
// digits or hyphens.
func (d *Document) CreateElement(tag string) (*Node, error) {
	if !validTag(tag) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}
	return d.newElement(strings.ToLower(tag)), nil
}

// CreateTextNode creates a detached text node.
func (d *Document) CreateTextNode(text string) *Node {
	return &Node{Type: TextNode, Text: text, doc: d}
}

// GetElementByID returns the first element in document order whose
// id attribute equals id, or nil.
func (d *Document) GetElementByID(id string) *Node {
	var found *Node
	d.body.walk(func(n *Node) bool {
		if n.Type == ElementNode && n.attrs["id"] == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Mount creates a div with the given id, appends it to the body and
// returns it. It is the usual way to prepare a container.
func (d *Document) Mount(id string) *Node {
	n := d.newElement("div")
	n.SetAttribute("id", id)
	d.body.AppendChild(n)
	return n
}

func (d *Document) newElement(tag string) *Node {
	return &Node{
		Type:  ElementNode,
		Tag:   tag,
		doc:   d,
		attrs: make(map[string]string),
		style: &Style{props: make(map[string]string)},
	}
}

func validTag(tag string) bool {
	if tag == "" {
		return false
	}
	for i, c := range tag {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '-'):
		default:
			return false
		}
	}
	return true
}

// --- Tree structure ---

// Parent returns the node's parent, or nil if it is detached.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the node's children. The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// AppendChild appends child to n, detaching it from its previous
// parent first. It returns child.
func (n *Node) AppendChild(child *Node) *Node {
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = n
	n.children = append(n.children, child)
	return child
}

// RemoveChild detaches child from n. It reports whether child was found.
func (n *Node) RemoveChild(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// RemoveChildren detaches every child of n.
func (n *Node) RemoveChildren() {
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
}

// TextContent returns the concatenated text of n and its descendants.
func (n *Node) TextContent() string {
	if n.Type == TextNode {
		return n.Text
	}
	var b strings.Builder
	n.walk(func(c *Node) bool {
		if c.Type == TextNode {
			b.WriteString(c.Text)
		}
		return true
	})
	return b.String()
}

// walk visits n and its descendants in document order until fn
// returns false.
func (n *Node) walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

// --- Attributes ---

// SetAttribute sets an attribute on an element. It is a no-op on
// text nodes.
func (n *Node) SetAttribute(name, value string) {
	if n.Type != ElementNode {
		return
	}
	n.attrs[name] = value
}

// Attribute returns the attribute value and whether it is set.
func (n *Node) Attribute(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// RemoveAttribute removes an attribute.
func (n *Node) RemoveAttribute(name string) {
	delete(n.attrs, name)
}

// AttributeNames returns the element's attribute names, sorted.
func (n *Node) AttributeNames() []string {
	names := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ID returns the id attribute.
func (n *Node) ID() string {
	return n.attrs["id"]
}

// Classes returns the whitespace-separated entries of the class attribute.
func (n *Node) Classes() []string {
	return strings.Fields(n.attrs["class"])
}

// HasClass reports whether the class attribute contains cls.
func (n *Node) HasClass(cls string) bool {
	for _, c := range n.Classes() {
		if c == cls {
			return true
		}
	}
	return false
}

// Style returns the element's inline style. Text nodes return nil.
func (n *Node) Style() *Style {
	return n.style
}

func (n *Node) String() string {
	if n.Type == TextNode {
		return fmt.Sprintf("%q", n.Text)
	}
	var b strings.Builder
	b.WriteString(n.Tag)
	if id := n.ID(); id != "" {
		b.WriteString("#" + id)
	}
	for _, c := range n.Classes() {
		b.WriteString("." + c)
	}
	return b.String()
}
