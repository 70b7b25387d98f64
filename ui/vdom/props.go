package vdom

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/elizafairlady/go-vdom/ui/dom"
)

// propKind classifies a prop for application to an element.
type propKind uint8

const (
	propAttr    propKind = iota // generic attribute
	propEvent                   // onXxx with a handler func
	propClass                   // className / class
	propStyle                   // style given as a map
	propValue                   // live value of input / textarea
	propChecked                 // live checked state of input
	propSkip                    // children, key
)

func (k propKind) String() string {
	switch k {
	case propAttr:
		return "attr"
	case propEvent:
		return "event"
	case propClass:
		return "class"
	case propStyle:
		return "style"
	case propValue:
		return "value"
	case propChecked:
		return "checked"
	case propSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// classifyProp resolves the kind of a prop. The order of the cases is
// the precedence order.
func classifyProp(n *dom.Node, name string, value any) propKind {
	switch {
	case len(name) > 2 && strings.HasPrefix(name, "on") && isHandler(value):
		return propEvent
	case name == "className" || name == "class":
		return propClass
	case name == "style" && isStyleMap(value):
		return propStyle
	case name == "value" && (n.Tag == "input" || n.Tag == "textarea"):
		return propValue
	case name == "checked" && n.Tag == "input":
		return propChecked
	case name == "children" || name == "key":
		return propSkip
	}
	return propAttr
}

func isHandler(v any) bool {
	switch v.(type) {
	case func(*dom.Event), func():
		return true
	}
	return false
}

func isStyleMap(v any) bool {
	switch v.(type) {
	case map[string]string, map[string]any, Props:
		return true
	}
	return false
}

// applyProps applies props to a freshly created element whose stable
// identity is id. Props are visited in name order.
func (rt *Runtime) applyProps(n *dom.Node, id string, props Props) {
	names := make([]string, 0, len(props))
	for k := range props {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, name := range names {
		value := props[name]
		switch classifyProp(n, name, value) {
		case propEvent:
			rt.bindEvent(n, id, rt.eventName(name), value)
		case propClass:
			n.SetAttribute("class", stringify(value))
		case propStyle:
			applyStyle(n.Style(), value)
		case propValue:
			n.Value = stringify(value)
		case propChecked:
			n.Checked = truthy(value)
		case propSkip:
		case propAttr:
			n.SetAttribute(name, stringify(value))
		}
	}
}

// eventName maps "onKeyDown" to "keydown".
func (rt *Runtime) eventName(prop string) string {
	return rt.lower.String(prop[2:])
}

func applyStyle(s *dom.Style, v any) {
	switch m := v.(type) {
	case map[string]string:
		for k, x := range m {
			s.Set(k, x)
		}
	case map[string]any:
		for k, x := range m {
			s.Set(k, stringify(x))
		}
	case Props:
		for k, x := range m {
			s.Set(k, stringify(x))
		}
	}
}

// handlerKey addresses the event handler cache.
type handlerKey struct {
	id    string
	event string
}

type boundHandler struct {
	node     *dom.Node
	listener *dom.Listener
}

// bindEvent registers value as the handler for event on n, first
// detaching whatever listener was cached for the same identity. Every
// render re-registers, so the listener always calls the closure from
// the latest render. Handlers run inside a batch: all state updates
// they make produce a single rerender.
func (rt *Runtime) bindEvent(n *dom.Node, id, event string, value any) {
	key := handlerKey{id: id, event: event}
	if old, ok := rt.handlers[key]; ok {
		old.node.RemoveEventListener(event, old.listener)
		delete(rt.handlers, key)
	}

	var fn func(*dom.Event)
	switch h := value.(type) {
	case func(*dom.Event):
		fn = h
	case func():
		fn = func(*dom.Event) { h() }
	}
	l := dom.NewListener(func(e *dom.Event) {
		rt.Batch(func() {
			if err := protect(func() { fn(e) }); err != nil {
				rt.report(&HandlerError{ID: id, Event: event, Err: err})
			}
		})
	})
	n.AddEventListener(event, l)
	rt.handlers[key] = boundHandler{node: n, listener: l}
}

// stringify formats a prop or child value the way a browser would
// coerce it to a string.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	}
	if s, ok := numberText(v); ok {
		return s
	}
	return fmt.Sprint(v)
}

// numberText formats integer and floating-point values.
func numberText(v any) (string, bool) {
	switch x := v.(type) {
	case int:
		return strconv.Itoa(x), true
	case int8:
		return strconv.FormatInt(int64(x), 10), true
	case int16:
		return strconv.FormatInt(int64(x), 10), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint:
		return strconv.FormatUint(uint64(x), 10), true
	case uint8:
		return strconv.FormatUint(uint64(x), 10), true
	case uint16:
		return strconv.FormatUint(uint64(x), 10), true
	case uint32:
		return strconv.FormatUint(uint64(x), 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case float32:
		return formatFloat(float64(x), 32), true
	case float64:
		return formatFloat(x, 64), true
	}
	return "", false
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}
	if s, ok := numberText(v); ok {
		return s != "0" && s != "NaN"
	}
	return true
}
