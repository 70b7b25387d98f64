package script

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/elizafairlady/go-vdom/ui/config"
	"github.com/elizafairlady/go-vdom/ui/demo"
	"github.com/elizafairlady/go-vdom/ui/dom"
	"github.com/elizafairlady/go-vdom/ui/host"
	"github.com/elizafairlady/go-vdom/ui/proto"
)

// ErrUnknownApp is returned when a scenario names an unregistered app.
var ErrUnknownApp = errors.New("script: unknown app")

// StepRecord is one performed step and the revision after it.
type StepRecord struct {
	Line string
	Rev  uint64
}

// Result is the outcome of running a scenario.
type Result struct {
	Name    string
	App     string
	Steps   []StepRecord
	Rev     uint64
	Errors  []error
	Outline string
}

// Transcript renders the result as text, suitable for golden files.
func (r *Result) Transcript() string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario %s\n", r.Name)
	fmt.Fprintf(&b, "app %s\n", r.App)
	for _, st := range r.Steps {
		fmt.Fprintf(&b, "> %s\n", st.Line)
		fmt.Fprintf(&b, "  rev %d\n", st.Rev)
	}
	fmt.Fprintf(&b, "errors %d\n", len(r.Errors))
	b.WriteString("---\n")
	b.WriteString(r.Outline)
	return b.String()
}

// AssertionError is a failed assertion.
type AssertionError struct {
	Index    int
	Type     string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion %d (%s): expected %s, got %s", e.Index+1, e.Type, e.Expected, e.Actual)
}

// Run mounts the scenario's app under cfg, performs its steps and
// checks its assertions. The result is returned even when assertions
// fail; the error then joins every AssertionError.
func Run(s *Scenario, cfg config.Config, log *slog.Logger) (*Result, error) {
	app, ok := demo.Lookup(s.App)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownApp, s.App)
	}
	if s.StateScope != "" {
		cfg.StateScope = s.StateScope
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With("scenario", s.Name)

	h := host.New(app.Root, cfg, log)
	if err := h.Start(); err != nil {
		return nil, fmt.Errorf("script: %s: start: %w", s.Name, err)
	}

	res := &Result{Name: s.Name, App: s.App}
	for i, st := range s.Steps {
		a := st.Action()
		line := proto.SerializeAction(a)
		if err := h.HandleAction(a); err != nil {
			return nil, fmt.Errorf("script: %s: step %d (%s): %w", s.Name, i+1, line, err)
		}
		res.Steps = append(res.Steps, StepRecord{Line: line, Rev: h.Rev()})
		log.Debug("step", "n", i+1, "action", line, "rev", h.Rev())
	}
	res.Rev = h.Rev()
	res.Errors = h.Errors()
	res.Outline = h.Outline()

	var failed []error
	for i, a := range s.Assertions {
		if err := check(h, res, a); err != nil {
			err.Index = i
			failed = append(failed, err)
		}
	}
	return res, errors.Join(failed...)
}

func check(h *host.Host, res *Result, a Assertion) *AssertionError {
	fail := func(expected, actual string) *AssertionError {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual}
	}

	switch a.Type {
	case AssertPasses:
		if res.Rev != uint64(a.Count) {
			return fail(fmt.Sprintf("%d render passes", a.Count), fmt.Sprintf("%d", res.Rev))
		}
		return nil
	case AssertNoErrors:
		if len(res.Errors) > 0 {
			return fail("no reported failures", errors.Join(res.Errors...).Error())
		}
		return nil
	case AssertTextContains:
		scope := h.Mount()
		if a.Sel != "" {
			n, err := pick(scope, a.Sel, a.Index)
			if err != nil {
				return fail(fmt.Sprintf("element %q", a.Sel), err.Error())
			}
			scope = n
		}
		if text := scope.TextContent(); !strings.Contains(text, a.Text) {
			return fail(fmt.Sprintf("text containing %q", a.Text), fmt.Sprintf("%q", text))
		}
		return nil
	case AssertCount:
		all, err := h.Mount().Query(a.Sel)
		if err != nil {
			return fail(fmt.Sprintf("%d matches of %q", a.Count, a.Sel), err.Error())
		}
		if len(all) != a.Count {
			return fail(fmt.Sprintf("%d matches of %q", a.Count, a.Sel), fmt.Sprintf("%d", len(all)))
		}
		return nil
	}

	n, err := pick(h.Mount(), a.Sel, a.Index)
	if err != nil {
		return fail(fmt.Sprintf("element %q", a.Sel), err.Error())
	}
	switch a.Type {
	case AssertTextEquals:
		if got := n.TextContent(); got != a.Text {
			return fail(fmt.Sprintf("%q", a.Text), fmt.Sprintf("%q", got))
		}
	case AssertChecked:
		if n.Checked != a.Checked {
			return fail(fmt.Sprintf("checked=%t", a.Checked), fmt.Sprintf("checked=%t", n.Checked))
		}
	case AssertValue:
		if n.Value != a.Value {
			return fail(fmt.Sprintf("value %q", a.Value), fmt.Sprintf("%q", n.Value))
		}
	}
	return nil
}

func pick(root *dom.Node, sel string, index int) (*dom.Node, error) {
	all, err := root.Query(sel)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(all) {
		return nil, fmt.Errorf("%d matches, no index %d", len(all), index)
	}
	return all[index], nil
}
