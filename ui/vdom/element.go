package vdom

import (
	"reflect"
	"runtime"
	"strings"
)

// Props maps attribute, event and component property names to values.
type Props map[string]any

// Component renders its props into a node: an *Element, a string, a
// number, or nil. Hooks are called through c.
type Component func(c *Context, props Props) any

// Element describes a node to render: a tag or a component, its
// props and its children. Elements are not modified after Create
// returns; every render pass builds a fresh tree.
type Element struct {
	Type     any // string tag name or Component
	Props    Props
	Children []any
}

// Create builds an Element. typ is a tag name or a Component (a plain
// func(*Context, Props) any is accepted too). A nil props becomes an
// empty map. Children may be *Element, string or numeric values. A
// byte slice becomes a string; other slices are flattened one level
// and nil entries are dropped, keeping the order of the rest.
func Create(typ any, props Props, children ...any) *Element {
	if props == nil {
		props = Props{}
	}
	if fn, ok := typ.(func(*Context, Props) any); ok {
		typ = Component(fn)
	}
	flat := make([]any, 0, len(children))
	for _, c := range children {
		if isNil(c) {
			continue
		}
		if items, ok := expand(c); ok {
			for _, it := range items {
				if !isNil(it) {
					flat = append(flat, it)
				}
			}
			continue
		}
		flat = append(flat, c)
	}
	return &Element{Type: typ, Props: props, Children: flat}
}

// Key returns the element's "key" prop, if set.
func (e *Element) Key() (any, bool) {
	k, ok := e.Props["key"]
	if !ok || k == nil {
		return nil, false
	}
	return k, true
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// expand returns the items of a slice or array child. A byte slice is
// text, not a list of numbers.
func expand(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		return []any{string(rv.Bytes())}, true
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// funcName returns the declared name of a component function without
// its package path: "Counter", "(*Board).View", "App.func1".
func funcName(c Component) string {
	fn := runtime.FuncForPC(reflectPointer(c))
	if fn == nil {
		return "anonymous"
	}
	name := fn.Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func reflectPointer(c Component) uintptr {
	return reflect.ValueOf(c).Pointer()
}
