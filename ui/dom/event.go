package dom

// Event is dispatched to a node and bubbles to its ancestors.
type Event struct {
	Type string
	// Key is set for keyboard events ("Enter", "a", ...).
	Key string
	// Bubbles controls whether the event propagates past its target.
	Bubbles bool

	Target        *Node
	CurrentTarget *Node

	stopped   bool
	prevented bool
}

// NewEvent returns a bubbling event of the given type.
func NewEvent(typ string) *Event {
	return &Event{Type: typ, Bubbles: true}
}

// StopPropagation prevents the event from reaching further ancestors.
// Remaining listeners on the current node still run.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// PreventDefault marks the event's default action as cancelled.
func (e *Event) PreventDefault() {
	e.prevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool {
	return e.prevented
}

// Listener wraps an event callback. Listeners are compared by
// identity, so the same *Listener must be passed to
// RemoveEventListener that was passed to AddEventListener.
type Listener struct {
	fn func(*Event)
}

// NewListener wraps fn.
func NewListener(fn func(*Event)) *Listener {
	return &Listener{fn: fn}
}

// AddEventListener registers l for events of type typ. Registering
// the same listener twice has no effect.
func (n *Node) AddEventListener(typ string, l *Listener) {
	if n.listeners == nil {
		n.listeners = make(map[string][]*Listener)
	}
	for _, x := range n.listeners[typ] {
		if x == l {
			return
		}
	}
	n.listeners[typ] = append(n.listeners[typ], l)
}

// RemoveEventListener unregisters l. It reports whether l was registered.
func (n *Node) RemoveEventListener(typ string, l *Listener) bool {
	ls := n.listeners[typ]
	for i, x := range ls {
		if x == l {
			n.listeners[typ] = append(ls[:i:i], ls[i+1:]...)
			if len(n.listeners[typ]) == 0 {
				delete(n.listeners, typ)
			}
			return true
		}
	}
	return false
}

// ListenerCount returns the number of listeners registered for typ.
func (n *Node) ListenerCount(typ string) int {
	return len(n.listeners[typ])
}

// Dispatch delivers e to n and, if e bubbles, to each ancestor. The
// propagation path is fixed before the first listener runs, so
// listeners that rebuild the document do not change who receives the
// event. It returns false if a listener called PreventDefault.
func (n *Node) Dispatch(e *Event) bool {
	e.Target = n
	var path []*Node
	for p := n; p != nil; p = p.parent {
		path = append(path, p)
		if !e.Bubbles {
			break
		}
	}
	for _, p := range path {
		ls := p.listeners[e.Type]
		if len(ls) == 0 {
			continue
		}
		e.CurrentTarget = p
		for _, l := range append([]*Listener(nil), ls...) {
			l.fn(e)
		}
		if e.stopped {
			break
		}
	}
	e.CurrentTarget = nil
	return !e.prevented
}

// Click dispatches a click. Checkbox and radio inputs flip their live
// Checked property first and follow the click with a change event.
func (n *Node) Click() bool {
	toggles := n.isCheckable()
	if toggles {
		n.Checked = !n.Checked
	}
	ok := n.Dispatch(NewEvent("click"))
	if toggles {
		n.Dispatch(NewEvent("change"))
	}
	return ok
}

// Input sets the live Value and dispatches input and change events,
// as typing and committing a text field would.
func (n *Node) Input(value string) {
	n.Value = value
	n.Dispatch(NewEvent("input"))
	n.Dispatch(NewEvent("change"))
}

// KeyDown dispatches a keydown event carrying key.
func (n *Node) KeyDown(key string) bool {
	e := NewEvent("keydown")
	e.Key = key
	return n.Dispatch(e)
}

func (n *Node) isCheckable() bool {
	if n.Type != ElementNode || n.Tag != "input" {
		return false
	}
	t := n.attrs["type"]
	return t == "checkbox" || t == "radio"
}
