package vdom

import (
	"fmt"

	"github.com/elizafairlady/go-vdom/ui/dom"
)

// scheduleUpdate records that state changed. Outside of a render, a
// batch or a running flush, it rerenders right away; otherwise the
// enclosing operation picks the update up when it finishes, so any
// number of updates coalesce into one pass.
func (rt *Runtime) scheduleUpdate() {
	rt.pending = true
	if rt.rendering || rt.flushing || rt.batch > 0 {
		return
	}
	rt.flush()
}

// Batch runs fn and performs at most one rerender for all the state
// updates it makes. Batches nest; the rerender happens when the
// outermost one returns.
func (rt *Runtime) Batch(fn func()) {
	rt.batch++
	func() {
		defer func() { rt.batch-- }()
		fn()
	}()
	if rt.batch == 0 && rt.pending && !rt.rendering {
		rt.flush()
	}
}

// Flush runs queued effects and performs pending updates. The runtime
// flushes on its own after every pass; Flush is for callers that
// render subtrees directly with Render.
func (rt *Runtime) Flush() {
	if rt.rendering || rt.batch > 0 {
		return
	}
	rt.flush()
}

// flush alternates between draining effects and rerendering until
// neither has work left.
func (rt *Runtime) flush() {
	if rt.flushing {
		return
	}
	rt.flushing = true
	defer func() { rt.flushing = false }()

	for passes := 0; ; passes++ {
		rt.drainEffects()
		if !rt.pending {
			return
		}
		rt.pending = false
		if passes >= rt.cfg.MaxRerenders {
			rt.queue = nil
			rt.report(fmt.Errorf("%w: gave up after %d passes", ErrUpdateLoop, passes))
			return
		}
		mount := rt.Mount()
		if mount == nil || rt.root == nil {
			rt.log.Warn("update dropped: nothing mounted", "mount", rt.cfg.MountID)
			return
		}
		rt.renderPass(mount)
	}
}

// renderPass clears mount and renders the root component into it.
// Failures, including panics from components, are reported and
// returned; the rendering flag is always cleared.
func (rt *Runtime) renderPass(mount *dom.Node) (err error) {
	rt.rendering = true
	rt.pass++
	rt.created = 0
	rt.ids.reset()
	pass := rt.pass
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
		rt.rendering = false
		if err != nil {
			err = &RenderError{Pass: pass, Err: err}
			rt.report(err)
			return
		}
		rt.log.Debug("render pass", "pass", pass, "elements", rt.created, "effects", len(rt.queue))
	}()

	mount.RemoveChildren()
	_, err = rt.Render(Create(rt.root, nil), mount, "")
	return err
}
