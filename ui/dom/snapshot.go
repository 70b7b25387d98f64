package dom

import (
	"strconv"

	"github.com/elizafairlady/go-vdom/ui/proto"
)

// Snapshot serializes the subtree rooted at n into a proto.Tree.
//
// Node IDs are positional ("0", "0.1", "0.1.2") so that snapshots of
// equivalent documents are byte-identical. Elements have their tag as
// type and their attributes as props; a non-empty inline style is
// exported as "style", and the live form properties as ".value" and
// ".checked". Text nodes have type "#text" and a "text" prop.
func (n *Node) Snapshot(rev uint64) *proto.Tree {
	t := &proto.Tree{
		Rev:   rev,
		Root:  "0",
		Nodes: make(map[string]*proto.Node),
	}
	var walk func(n *Node, id string)
	walk = func(n *Node, id string) {
		pn := &proto.Node{ID: id, Props: make(map[string]string)}
		switch n.Type {
		case TextNode:
			pn.Type = "#text"
			pn.Props["text"] = n.Text
		default:
			pn.Type = n.Tag
			for k, v := range n.attrs {
				pn.Props[k] = v
			}
			if n.style.Len() > 0 {
				pn.Props["style"] = n.style.CSSText()
			}
			if n.Value != "" {
				pn.Props[".value"] = n.Value
			}
			if n.Checked {
				pn.Props[".checked"] = "true"
			}
		}
		t.Nodes[id] = pn
		t.Order = append(t.Order, id)
		for i := range n.children {
			pn.Children = append(pn.Children, id+"."+strconv.Itoa(i))
		}
		for i, c := range n.children {
			walk(c, pn.Children[i])
		}
	}
	walk(n, t.Root)
	return t
}
