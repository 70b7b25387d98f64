// Package host drives a mounted application from the outside.
//
// A Host owns a document, a runtime and the root component. It
// produces tree snapshots on demand and processes action lines such
// as
//
//	click sel=.add-button
//	input sel=input[type=text] value="buy milk"
//	keydown sel=input key=Enter
//
// by dispatching the matching DOM events, which run the component
// handlers. It is the boundary used by scripts, the command line and
// tests.
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/elizafairlady/go-vdom/ui/config"
	"github.com/elizafairlady/go-vdom/ui/dom"
	"github.com/elizafairlady/go-vdom/ui/proto"
	"github.com/elizafairlady/go-vdom/ui/vdom"
)

var (
	// ErrUnknownAction is returned for action kinds the host does not handle.
	ErrUnknownAction = errors.New("host: unknown action")
	// ErrNoTarget is returned when an action's target matches nothing.
	ErrNoTarget = errors.New("host: no target")
)

// Host runs one application.
type Host struct {
	mu    sync.Mutex
	rt    *vdom.Runtime
	doc   *dom.Document
	mount *dom.Node
	log   *slog.Logger
	attr  string

	tree     *proto.Tree // cached snapshot
	treePass uint64
	errs     []error

	// Focus is the stable identity of the element last targeted by a
	// focus action.
	Focus string

	// Notify is called after every action that caused a render pass.
	Notify func()

	// ActionLog records processed actions. Set to non-nil to enable.
	ActionLog []string
}

// New creates a host for root. The application is not rendered until
// Start is called.
func New(root vdom.Component, cfg config.Config, log *slog.Logger) *Host {
	if log == nil {
		log = slog.Default()
	}
	h := &Host{
		doc:  dom.NewDocument(),
		attr: cfg.IdentityAttr,
	}
	h.mount = h.doc.Mount(cfg.MountID)
	h.rt = vdom.New(h.doc,
		vdom.WithConfig(cfg),
		vdom.WithLogger(log),
		vdom.WithErrorHandler(func(err error) { h.errs = append(h.errs, err) }),
	)
	h.log = h.rt.Logger()
	h.rt.SetRoot(root)
	return h
}

// Start renders the application.
func (h *Host) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tree = nil
	return h.rt.Initialize()
}

// Runtime returns the runtime rendering the application.
func (h *Host) Runtime() *vdom.Runtime { return h.rt }

// Mount returns the mount container.
func (h *Host) Mount() *dom.Node { return h.mount }

// Errors returns every failure the runtime has reported so far.
func (h *Host) Errors() []error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]error(nil), h.errs...)
}

// Rev returns the current revision: the number of render passes.
func (h *Host) Rev() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rt.Pass()
}

// Tree returns a snapshot of the mounted document, recomputed when a
// render pass happened since the last call.
func (h *Host) Tree() *proto.Tree {
	h.mu.Lock()
	defer h.mu.Unlock()
	if pass := h.rt.Pass(); h.tree == nil || h.treePass != pass {
		h.tree = h.mount.Snapshot(pass)
		h.treePass = pass
	}
	return h.tree
}

// TreeText returns the serialized tree.
func (h *Host) TreeText() string {
	return proto.SerializeTree(h.Tree())
}

// Outline returns the tree as an indented outline.
func (h *Host) Outline() string {
	return proto.FormatOutline(h.Tree())
}

// ProcessAction parses and processes an action line.
func (h *Host) ProcessAction(line string) error {
	a, err := proto.ParseAction(line)
	if err != nil {
		return err
	}
	return h.HandleAction(a)
}

// HandleAction dispatches an action to its target element. Failures
// the runtime reports while the action runs are returned joined.
//
// The target is given by sel (a selector, with index choosing among
// several matches, default 0) or by id (a stable identity).
func (h *Host) HandleAction(a *proto.Action) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	pass, nerr := h.rt.Pass(), len(h.errs)
	if err := h.dispatch(a); err != nil {
		return err
	}
	return h.settle(pass, nerr)
}

// Serve processes action lines received on lines until lines is
// closed or ctx is done. The actions run one at a time on a vdom.Loop
// in the calling goroutine, so lines may be fed from anywhere. result,
// if non-nil, is called on that goroutine with each line's outcome in
// order. Serve returns nil once lines is closed and drained.
func (h *Host) Serve(ctx context.Context, lines <-chan string, result func(line string, err error)) error {
	if result == nil {
		result = func(string, error) {}
	}
	loop := vdom.NewLoop(h.rt, 0)
	loop.Locker = &h.mu

	run, stop := context.WithCancel(ctx)
	defer stop()
	go func() {
		defer stop()
		for {
			select {
			case <-run.Done():
				return
			case line, ok := <-lines:
				if !ok || h.submit(loop, line, result) != nil {
					return
				}
			}
		}
	}()

	err := loop.Run(run)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// submit queues one action line as two loop tasks: the dispatch, and
// a second task that sees the document after the dispatch's batch has
// rerendered.
func (h *Host) submit(loop *vdom.Loop, line string, result func(string, error)) error {
	a, err := proto.ParseAction(line)
	if err != nil {
		return loop.Submit(func() { result(line, err) })
	}
	var (
		pass uint64
		nerr int
		derr error
	)
	err = loop.Submit(func() {
		pass, nerr = h.rt.Pass(), len(h.errs)
		derr = h.dispatch(a)
	})
	if err != nil {
		return err
	}
	return loop.Submit(func() {
		if derr == nil {
			derr = h.settle(pass, nerr)
		}
		result(line, derr)
	})
}

// dispatch logs a and fires its event on the target. h.mu is held.
func (h *Host) dispatch(a *proto.Action) error {
	if h.ActionLog != nil {
		h.ActionLog = append(h.ActionLog, proto.SerializeAction(a))
	}
	h.log.Debug("action", "kind", a.Kind, "args", proto.SerializeAction(a))

	target, err := h.resolve(a)
	if err != nil {
		return err
	}
	switch a.Kind {
	case "click":
		target.Click()
	case "input":
		target.Input(a.Get("value"))
	case "change":
		target.Dispatch(dom.NewEvent("change"))
	case "keydown":
		target.KeyDown(a.Get("key"))
	case "focus":
		h.Focus, _ = target.Attribute(h.attr)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
	}
	return nil
}

// settle calls Notify if a render pass happened since pass and
// returns the failures reported after the first nerr. h.mu is held.
func (h *Host) settle(pass uint64, nerr int) error {
	if notify := h.Notify; notify != nil && h.rt.Pass() != pass {
		h.mu.Unlock()
		notify()
		h.mu.Lock()
	}
	return errors.Join(h.errs[nerr:]...)
}

// resolve finds the element an action targets.
func (h *Host) resolve(a *proto.Action) (*dom.Node, error) {
	if id := a.Get("id"); id != "" {
		all, err := h.mount.Query("[" + h.attr + "]")
		if err != nil {
			return nil, err
		}
		for _, n := range all {
			if v, _ := n.Attribute(h.attr); v == id {
				return n, nil
			}
		}
		return nil, fmt.Errorf("%w: id %q", ErrNoTarget, id)
	}

	sel := a.Get("sel")
	if sel == "" {
		return nil, fmt.Errorf("%w: %s needs sel or id", ErrNoTarget, a.Kind)
	}
	matches, err := h.mount.Query(sel)
	if err != nil {
		return nil, err
	}
	i := a.Int("index", 0)
	if i < 0 || i >= len(matches) {
		return nil, fmt.Errorf("%w: %q index %d of %d matches", ErrNoTarget, sel, i, len(matches))
	}
	return matches[i], nil
}
