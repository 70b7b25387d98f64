package vdom

import (
	"fmt"

	"github.com/elizafairlady/go-vdom/ui/config"
	"github.com/elizafairlady/go-vdom/ui/dom"
)

// Render materializes node into container and returns the node it
// appended: a text node for strings and numbers, an element for tag
// elements, and whatever the component rendered for component
// elements. nil and booleans render nothing. parentPath is the stable
// identity of the enclosing element ("" at the root).
//
// Render always creates new document nodes; nothing is reused from
// earlier renders.
func (rt *Runtime) Render(node any, container *dom.Node, parentPath string) (*dom.Node, error) {
	switch v := node.(type) {
	case nil, bool:
		return nil, nil
	case *Element:
		if v == nil {
			return nil, nil
		}
		return rt.renderElement(v, container, parentPath)
	case string:
		return container.AppendChild(rt.doc.CreateTextNode(v)), nil
	}
	if s, ok := numberText(node); ok {
		return container.AppendChild(rt.doc.CreateTextNode(s)), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrInvalidType, node)
}

func (rt *Runtime) renderElement(e *Element, container *dom.Node, parentPath string) (*dom.Node, error) {
	switch t := e.Type.(type) {
	case Component:
		return rt.renderComponent(t, e, container, parentPath)
	case string:
		return rt.renderTag(t, e, container, parentPath)
	default:
		return nil, fmt.Errorf("%w: element type %T", ErrInvalidType, e.Type)
	}
}

// renderComponent invokes the component with a fresh Context and
// renders its result under the component's own path.
func (rt *Runtime) renderComponent(comp Component, e *Element, container *dom.Node, parentPath string) (*dom.Node, error) {
	name := rt.componentName(comp)
	path := joinPath(parentPath, rt.ids.local(name, e))
	c := &Context{rt: rt, owner: path, path: path, name: name}
	if rt.cfg.StateScope == config.ScopeName {
		c.owner = name
	}
	child := comp(c, e.Props)
	return rt.Render(child, container, path)
}

func (rt *Runtime) renderTag(tag string, e *Element, container *dom.Node, parentPath string) (*dom.Node, error) {
	n, err := rt.doc.CreateElement(tag)
	if err != nil {
		return nil, err
	}
	id := joinPath(parentPath, rt.ids.local(tag, e))
	n.SetAttribute(rt.cfg.IdentityAttr, id)
	rt.applyProps(n, id, e.Props)
	for _, child := range e.Children {
		if _, err := rt.Render(child, n, id); err != nil {
			return nil, err
		}
	}
	container.AppendChild(n)
	rt.created++
	return n, nil
}
