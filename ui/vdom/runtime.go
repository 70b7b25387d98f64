// Package vdom is a hooks-style rendering runtime over the in-memory
// document of package dom.
//
// Components are functions from a *Context and Props to an Element
// tree. The runtime calls the root component, turns the result into
// document nodes under a mount container, and rebuilds the whole
// subtree from scratch whenever a state Setter commits a new value.
// There is no diffing: each update costs time proportional to the
// size of the tree.
//
// State lives in slots addressed by component identity and hook call
// order (UseState). Effects (UseEffect) are queued during a render and
// run after that render has committed, gated by their dependencies.
//
// A Runtime is not safe for concurrent use. Work from other
// goroutines goes through a Loop.
package vdom

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/elizafairlady/go-vdom/ui/config"
	"github.com/elizafairlady/go-vdom/ui/dom"
)

// Runtime renders a root component into a document and keeps it in
// sync with component state.
type Runtime struct {
	doc     *dom.Document
	cfg     config.Config
	log     *slog.Logger
	onError func(error)
	id      string

	root Component

	ids      *identities
	names    map[uintptr]string
	states   map[slotKey]any
	effects  map[slotKey]*effectSlot
	queue    []effectTask
	handlers map[handlerKey]boundHandler
	lower    cases.Caser // event prop names

	rendering bool
	pending   bool
	flushing  bool
	batch     int
	pass      uint64
	created   int // elements created in the current pass
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithConfig replaces the default configuration.
func WithConfig(c config.Config) Option {
	return func(rt *Runtime) { rt.cfg = c }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) { rt.log = l }
}

// WithErrorHandler sets a function that receives every reported
// failure (render passes, effects, handlers) in addition to the log.
func WithErrorHandler(fn func(error)) Option {
	return func(rt *Runtime) { rt.onError = fn }
}

// New creates a runtime rendering into doc.
func New(doc *dom.Document, opts ...Option) *Runtime {
	rt := &Runtime{
		doc:   doc,
		cfg:   config.Default(),
		log:   slog.Default(),
		names: make(map[uintptr]string),
		lower: cases.Lower(language.Und),
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.id = newRuntimeID()
	rt.log = rt.log.With("runtime", rt.id)
	rt.reset()
	return rt
}

func newRuntimeID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ID returns the runtime's unique id, used to correlate log records.
func (rt *Runtime) ID() string { return rt.id }

// Document returns the document the runtime renders into.
func (rt *Runtime) Document() *dom.Document { return rt.doc }

// Config returns the runtime's configuration.
func (rt *Runtime) Config() config.Config { return rt.cfg }

// Logger returns the runtime's logger, tagged with its id.
func (rt *Runtime) Logger() *slog.Logger { return rt.log }

// Pass returns the number of full render passes performed so far.
func (rt *Runtime) Pass() uint64 { return rt.pass }

// SetRoot registers the top-level component.
func (rt *Runtime) SetRoot(c Component) { rt.root = c }

// Root returns the top-level component.
func (rt *Runtime) Root() Component { return rt.root }

// Mount returns the mount container, or nil if the document has none.
func (rt *Runtime) Mount() *dom.Node {
	return rt.doc.GetElementByID(rt.cfg.MountID)
}

// reset discards all state, effects, cached handlers and scheduler
// flags.
func (rt *Runtime) reset() {
	rt.ids = newIdentities()
	rt.states = make(map[slotKey]any)
	rt.effects = make(map[slotKey]*effectSlot)
	rt.handlers = make(map[handlerKey]boundHandler)
	rt.queue = nil
	rt.rendering = false
	rt.pending = false
	rt.flushing = false
	rt.batch = 0
}

// Initialize clears every store and cache, locates the mount
// container, clears it and renders the root component, then runs the
// resulting effects and any updates they cause. A failed render is
// reported like any other and also returned.
func (rt *Runtime) Initialize() error {
	mount := rt.Mount()
	if mount == nil {
		return fmt.Errorf("%w: #%s", ErrNoMount, rt.cfg.MountID)
	}
	if rt.root == nil {
		return ErrNoRoot
	}
	rt.reset()
	rt.log.Info("initializing", "mount", rt.cfg.MountID, "scope", string(rt.cfg.StateScope))
	err := rt.renderPass(mount)
	rt.flush()
	return err
}

// report sends a failure to the log and the error handler.
func (rt *Runtime) report(err error) {
	rt.log.Error("vdom failure", "error", err)
	if rt.onError != nil {
		rt.onError(err)
	}
}
