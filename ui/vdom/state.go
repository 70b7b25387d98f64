package vdom

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// slotKey addresses a state or effect slot: the owning component's
// identity and the call-order index of the hook within one render.
type slotKey struct {
	owner string
	index int
}

func (k slotKey) String() string {
	return fmt.Sprintf("%s#%d", k.owner, k.index)
}

// Context is the render context of one component invocation. It is
// passed to the component and carries the hook counters for that
// call; it must not be retained after the component returns.
type Context struct {
	rt      *Runtime
	owner   string // slot owner: the path, or the name in name scope
	path    string
	name    string
	states  int
	effects int
}

// Path returns the component's stable identity.
func (c *Context) Path() string { return c.path }

// Name returns the component function's name.
func (c *Context) Name() string { return c.name }

// Runtime returns the runtime rendering the component.
func (c *Context) Runtime() *Runtime { return c.rt }

func (c *Context) check() {
	if c == nil || c.rt == nil {
		panic(ErrHookOutsideRender)
	}
}

// Setter replaces the value of a state slot. Setters stay valid
// across renders and may be called from event handlers, effects or
// other goroutines' tasks submitted through a Loop.
type Setter[T any] struct {
	rt  *Runtime
	key slotKey
}

// Set replaces the slot's value with v.
func (s Setter[T]) Set(v T) {
	if s.rt == nil {
		return
	}
	s.rt.commitState(s.key, v)
}

// Update replaces the slot's value with fn applied to the value held
// at the time of the call.
func (s Setter[T]) Update(fn func(prev T) T) {
	if s.rt == nil {
		return
	}
	prev, _ := s.rt.states[s.key].(T)
	s.rt.commitState(s.key, fn(prev))
}

// UseState returns the value of the component's next state slot and a
// Setter for it. The slot is seeded with initial the first time it is
// reached; afterwards initial is ignored. Hooks must be called in the
// same order on every render of a component.
func UseState[T any](c *Context, initial T) (T, Setter[T]) {
	c.check()
	key := slotKey{owner: c.owner, index: c.states}
	c.states++

	rt := c.rt
	v, ok := rt.states[key]
	if !ok {
		rt.states[key] = initial
		return initial, Setter[T]{rt: rt, key: key}
	}
	cur, ok := v.(T)
	if !ok && v != nil {
		panic(fmt.Errorf("%w: state slot %s holds %T, not %T", ErrHookOrder, key, v, initial))
	}
	return cur, Setter[T]{rt: rt, key: key}
}

// commitState stores next unless it serializes to the same JSON as
// the current value. Values that cannot be serialized always count
// as changed.
func (rt *Runtime) commitState(key slotKey, next any) {
	if cur, ok := rt.states[key]; ok && sameJSON(cur, next) {
		rt.log.Debug("state unchanged", "slot", key.String())
		return
	}
	rt.states[key] = next
	rt.scheduleUpdate()
}

func sameJSON(a, b any) bool {
	ja, err := json.Marshal(a)
	if err != nil {
		return false
	}
	jb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}
