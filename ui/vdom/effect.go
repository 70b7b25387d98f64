package vdom

import "reflect"

// Cleanup undoes an effect. It runs before the effect's next run.
type Cleanup func()

// EffectFunc performs a side effect after a render has committed and
// optionally returns its Cleanup.
type EffectFunc func() Cleanup

type effectSlot struct {
	deps    []any
	cleanup Cleanup
}

type effectTask struct {
	key    slotKey
	slot   *effectSlot
	effect EffectFunc
}

// UseEffect schedules effect to run after the current render pass has
// committed, if deps changed since the previous render. A nil deps
// runs the effect after every render; an empty non-nil deps runs it
// once. Elements of deps are compared with == when comparable and by
// reference for slices, maps and funcs.
func UseEffect(c *Context, effect EffectFunc, deps []any) {
	c.check()
	key := slotKey{owner: c.owner, index: c.effects}
	c.effects++

	rt := c.rt
	slot, seen := rt.effects[key]
	changed := !seen || slot.deps == nil || deps == nil || !sameDeps(slot.deps, deps)
	if !seen {
		slot = &effectSlot{}
		rt.effects[key] = slot
	}
	slot.deps = deps
	if changed {
		rt.queue = append(rt.queue, effectTask{key: key, slot: slot, effect: effect})
	}
}

// drainEffects runs queued effects in call order. Effects queued by
// renders triggered from within are left for the caller's loop.
func (rt *Runtime) drainEffects() {
	tasks := rt.queue
	rt.queue = nil
	for _, t := range tasks {
		rt.runEffect(t)
	}
}

func (rt *Runtime) runEffect(t effectTask) {
	if cleanup := t.slot.cleanup; cleanup != nil {
		t.slot.cleanup = nil
		if err := protect(func() { cleanup() }); err != nil {
			rt.report(&EffectError{Owner: t.key.owner, Index: t.key.index, Cleanup: true, Err: err})
		}
	}
	var next Cleanup
	if err := protect(func() { next = t.effect() }); err != nil {
		rt.report(&EffectError{Owner: t.key.owner, Index: t.key.index, Err: err})
		return
	}
	t.slot.cleanup = next
}

func sameDeps(prev, next []any) bool {
	if len(prev) != len(next) {
		return false
	}
	for i := range prev {
		if !sameDep(prev[i], next[i]) {
			return false
		}
	}
	return true
}

// sameDep reports whether a dependency is unchanged. Comparable values
// compare with ==. Slices and maps compare by identity (same backing
// storage and length), and structs and arrays field by field under the
// same rules. A func is never the same as another func value: a closure
// built on each render must count as a new dependency.
func sameDep(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return sameValue(reflect.ValueOf(a), reflect.ValueOf(b))
}

func sameValue(a, b reflect.Value) bool {
	if a.Type() != b.Type() {
		return false
	}
	switch a.Kind() {
	case reflect.Func:
		return a.IsNil() && b.IsNil()
	case reflect.Slice:
		return a.Len() == b.Len() && a.Pointer() == b.Pointer()
	case reflect.Map:
		return a.Pointer() == b.Pointer()
	case reflect.Interface:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}
		return sameValue(a.Elem(), b.Elem())
	case reflect.Struct:
		for i := 0; i < a.NumField(); i++ {
			if !sameValue(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Array:
		for i := 0; i < a.Len(); i++ {
			if !sameValue(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	}
	return a.Equal(b)
}
