package vdom

import (
	"fmt"
	"strconv"
)

// identities assigns stable path identities. Unkeyed occurrences are
// numbered by a counter per type key shared by the whole runtime, not
// per parent; the scheduler resets the counters at the start of every
// full pass, so a pass that visits the same shapes in the same order
// yields the same identities.
type identities struct {
	counters map[string]int
}

func newIdentities() *identities {
	return &identities{counters: make(map[string]int)}
}

func (ids *identities) reset() {
	clear(ids.counters)
}

// local returns "typeKey-key" for keyed elements and "typeKey-N" for
// the N-th unkeyed occurrence of typeKey in this pass.
func (ids *identities) local(typeKey string, e *Element) string {
	if k, ok := e.Key(); ok {
		return typeKey + "-" + fmt.Sprint(k)
	}
	n := ids.counters[typeKey]
	ids.counters[typeKey] = n + 1
	return typeKey + "-" + strconv.Itoa(n)
}

func joinPath(parent, local string) string {
	if parent == "" {
		return local
	}
	return parent + "/" + local
}

// StableID returns the identity e would receive under parentPath. It
// consumes an occurrence of e's type, exactly as rendering does.
func (rt *Runtime) StableID(e *Element, parentPath string) string {
	return joinPath(parentPath, rt.ids.local(rt.typeKey(e), e))
}

// typeKey is the component name or the tag name.
func (rt *Runtime) typeKey(e *Element) string {
	switch t := e.Type.(type) {
	case Component:
		return rt.componentName(t)
	case string:
		return t
	default:
		return fmt.Sprintf("%T", t)
	}
}

func (rt *Runtime) componentName(c Component) string {
	pc := reflectPointer(c)
	if name, ok := rt.names[pc]; ok {
		return name
	}
	name := funcName(c)
	rt.names[pc] = name
	return name
}
