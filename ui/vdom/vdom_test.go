package vdom_test

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elizafairlady/go-vdom/ui/config"
	"github.com/elizafairlady/go-vdom/ui/dom"
	"github.com/elizafairlady/go-vdom/ui/proto"
	"github.com/elizafairlady/go-vdom/ui/vdom"
)

type harness struct {
	rt    *vdom.Runtime
	doc   *dom.Document
	mount *dom.Node
	errs  []error
}

func newHarness(t *testing.T, root vdom.Component, tweak ...func(*config.Config)) *harness {
	t.Helper()
	h := &harness{doc: dom.NewDocument()}
	h.mount = h.doc.Mount("root")
	cfg := config.Default()
	for _, f := range tweak {
		f(&cfg)
	}
	h.rt = vdom.New(h.doc,
		vdom.WithConfig(cfg),
		vdom.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		vdom.WithErrorHandler(func(err error) { h.errs = append(h.errs, err) }),
	)
	h.rt.SetRoot(root)
	return h
}

func (h *harness) init(t *testing.T) *harness {
	t.Helper()
	require.NoError(t, h.rt.Initialize())
	return h
}

func (h *harness) one(t *testing.T, sel string) *dom.Node {
	t.Helper()
	n, err := h.mount.QueryOne(sel)
	require.NoError(t, err)
	require.NotNil(t, n, "no match for %q", sel)
	return n
}

func (h *harness) all(t *testing.T, sel string) []*dom.Node {
	t.Helper()
	ns, err := h.mount.Query(sel)
	require.NoError(t, err)
	return ns
}

func (h *harness) snapshot() string {
	return proto.SerializeTree(h.mount.Snapshot(0))
}

// counter is reused by several tests; its name is part of the
// identities they assert.
func counter(c *vdom.Context, p vdom.Props) any {
	n, set := vdom.UseState(c, 0)
	label, _ := p["label"].(string)
	return vdom.Create("div", vdom.Props{"className": "counter"},
		vdom.Create("span", nil, label, ": ", n),
		vdom.Create("button", vdom.Props{"onClick": func() { set.Set(n + 1) }}, "+"),
	)
}

func twoCounters(c *vdom.Context, p vdom.Props) any {
	return vdom.Create("div", nil,
		vdom.Create(counter, vdom.Props{"label": "a"}),
		vdom.Create(counter, vdom.Props{"label": "b"}),
	)
}

func TestCreate(t *testing.T) {
	e := vdom.Create("div", nil)
	assert.NotNil(t, e.Props)
	assert.NotNil(t, e.Children)
	assert.Empty(t, e.Children)

	var nilElem *vdom.Element
	e = vdom.Create("ul", vdom.Props{"id": "x"},
		"a", nil, []any{"b", nil, "c"}, []string{"d"}, nilElem, 3, []any{[]any{"deep"}}, []byte("raw"))
	assert.Equal(t, []any{"a", "b", "c", "d", 3, []any{"deep"}, "raw"}, e.Children)
	assert.Equal(t, "x", e.Props["id"])

	e = vdom.Create(func(c *vdom.Context, p vdom.Props) any { return nil }, nil)
	assert.IsType(t, vdom.Component(nil), e.Type)

	k, ok := vdom.Create("li", vdom.Props{"key": 7}).Key()
	assert.True(t, ok)
	assert.Equal(t, 7, k)
	_, ok = vdom.Create("li", nil).Key()
	assert.False(t, ok)
}

func TestRenderPrimitives(t *testing.T) {
	doc := dom.NewDocument()
	mount := doc.Mount("root")
	rt := vdom.New(doc, vdom.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	tests := []struct {
		in   any
		text string
	}{
		{"hello", "hello"},
		{42, "42"},
		{int64(-3), "-3"},
		{1.5, "1.5"},
		{float32(0.25), "0.25"},
	}
	for _, tt := range tests {
		mount.RemoveChildren()
		n, err := rt.Render(tt.in, mount, "")
		require.NoError(t, err)
		require.NotNil(t, n)
		assert.Equal(t, dom.TextNode, n.Type)
		assert.Equal(t, tt.text, mount.TextContent())
	}

	mount.RemoveChildren()
	for _, in := range []any{nil, true, false, (*vdom.Element)(nil)} {
		n, err := rt.Render(in, mount, "")
		assert.NoError(t, err)
		assert.Nil(t, n)
	}
	assert.Empty(t, mount.Children())

	_, err := rt.Render(struct{}{}, mount, "")
	assert.ErrorIs(t, err, vdom.ErrInvalidType)
	_, err = rt.Render(vdom.Create(3.5, nil), mount, "")
	assert.ErrorIs(t, err, vdom.ErrInvalidType)
}

func TestRenderTagIdentity(t *testing.T) {
	doc := dom.NewDocument()
	mount := doc.Mount("root")
	rt := vdom.New(doc, vdom.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	n, err := rt.Render(vdom.Create("div", nil, vdom.Create("span", nil, "x")), mount, "")
	require.NoError(t, err)
	id, _ := n.Attribute("data-vdom-id")
	assert.Equal(t, "div-0", id)
	id, _ = n.Children()[0].Attribute("data-vdom-id")
	assert.Equal(t, "div-0/span-0", id)

	// Counters only reset between full passes; direct renders keep
	// counting.
	n, err = rt.Render(vdom.Create("div", nil), mount, "sub")
	require.NoError(t, err)
	id, _ = n.Attribute("data-vdom-id")
	assert.Equal(t, "sub/div-1", id)

	assert.Equal(t, "p-k", rt.StableID(vdom.Create("p", vdom.Props{"key": "k"}), ""))
	assert.Equal(t, "a/counter-0", rt.StableID(vdom.Create(counter, nil), "a"))

	_, err = rt.Render(vdom.Create("1bad", nil), mount, "")
	assert.ErrorIs(t, err, dom.ErrInvalidTag)
}

func TestProps(t *testing.T) {
	var got []string
	app := func(c *vdom.Context, p vdom.Props) any {
		return vdom.Create("div", nil,
			vdom.Create("input", vdom.Props{
				"type":      "text",
				"value":     "typed",
				"className": "field wide",
				"style":     map[string]string{"marginTop": "4px"},
				"onKeyDown": func(e *dom.Event) { got = append(got, "keydown "+e.Key) },
				"key":       "in",
				"disabled":  true,
				"tabindex":  2,
			}),
			vdom.Create("input", vdom.Props{"type": "checkbox", "checked": true}),
			vdom.Create("p", vdom.Props{"value": "attr", "style": vdom.Props{"color": "red"}, "onclick": "ignored()"}),
		)
	}
	h := newHarness(t, app).init(t)

	in := h.one(t, "input[type=text]")
	assert.Equal(t, "typed", in.Value)
	_, hasValueAttr := in.Attribute("value")
	assert.False(t, hasValueAttr)
	assert.Equal(t, []string{"field", "wide"}, in.Classes())
	assert.Equal(t, "4px", in.Style().Get("margin-top"))
	_, hasKey := in.Attribute("key")
	assert.False(t, hasKey)
	v, _ := in.Attribute("disabled")
	assert.Equal(t, "true", v)
	v, _ = in.Attribute("tabindex")
	assert.Equal(t, "2", v)
	assert.Equal(t, 1, in.ListenerCount("keydown"))

	in.KeyDown("Enter")
	assert.Equal(t, []string{"keydown Enter"}, got)

	assert.True(t, h.one(t, "input[type=checkbox]").Checked)

	p := h.one(t, "p")
	v, _ = p.Attribute("value")
	assert.Equal(t, "attr", v)
	v, _ = p.Attribute("onclick")
	assert.Equal(t, "ignored()", v)
	assert.Equal(t, "red", p.Style().Get("color"))
}

func TestInitializeErrors(t *testing.T) {
	doc := dom.NewDocument()
	rt := vdom.New(doc, vdom.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	rt.SetRoot(counter)
	assert.ErrorIs(t, rt.Initialize(), vdom.ErrNoMount)

	doc.Mount("root")
	rt.SetRoot(nil)
	assert.ErrorIs(t, rt.Initialize(), vdom.ErrNoRoot)
	assert.Nil(t, rt.Root())
}

func TestInitializeClearsPreviousRender(t *testing.T) {
	h := newHarness(t, counter).init(t)
	h.one(t, "button").Click()
	assert.Equal(t, ": 1", h.one(t, "span").TextContent())

	h.mount.AppendChild(h.doc.CreateTextNode("stray"))
	require.NoError(t, h.rt.Initialize())
	assert.Equal(t, ": 0", h.one(t, "span").TextContent())
	assert.NotContains(t, h.mount.TextContent(), "stray")
}

func TestIdempotentRerender(t *testing.T) {
	var nonce vdom.Setter[int]
	app := func(c *vdom.Context, p vdom.Props) any {
		_, nonce = vdom.UseState(c, 0)
		return vdom.Create("main", nil, vdom.Create(counter, vdom.Props{"label": "n"}), vdom.Create(counter, nil))
	}
	h := newHarness(t, app).init(t)
	before := h.snapshot()
	pass := h.rt.Pass()

	nonce.Set(1)
	assert.Equal(t, pass+1, h.rt.Pass())
	if diff := cmp.Diff(before, h.snapshot()); diff != "" {
		t.Errorf("rerender changed the document (-before +after):\n%s", diff)
	}
}

func TestStableIdentity(t *testing.T) {
	var bump vdom.Setter[int]
	list := func(c *vdom.Context, p vdom.Props) any {
		n, set := vdom.UseState(c, 0)
		bump = set
		var items []any
		for _, k := range []string{"x", "y"} {
			items = append(items, vdom.Create("li", vdom.Props{"key": k}, k))
		}
		return vdom.Create("div", nil,
			vdom.Create("p", nil, n),
			vdom.Create("ul", nil, items),
			vdom.Create("p", nil, "tail"),
		)
	}
	h := newHarness(t, list).init(t)

	ids := func() []string {
		var out []string
		for _, n := range h.all(t, "[data-vdom-id]") {
			v, _ := n.Attribute("data-vdom-id")
			out = append(out, v)
		}
		return out
	}
	first := ids()
	want := []string{
		"TestStableIdentity.func1-0/div-0",
		"TestStableIdentity.func1-0/div-0/p-0",
		"TestStableIdentity.func1-0/div-0/ul-0",
		"TestStableIdentity.func1-0/div-0/ul-0/li-x",
		"TestStableIdentity.func1-0/div-0/ul-0/li-y",
		"TestStableIdentity.func1-0/div-0/p-1",
	}
	assert.Equal(t, want, first)

	bump.Set(5)
	bump.Set(6)
	assert.Equal(t, first, ids())
	assert.Equal(t, "6", h.one(t, "p").TextContent())
}

func TestStateScope(t *testing.T) {
	texts := func(h *harness) []string {
		var out []string
		for _, n := range h.all(t, "span") {
			out = append(out, n.TextContent())
		}
		return out
	}

	t.Run("path", func(t *testing.T) {
		h := newHarness(t, twoCounters).init(t)
		h.all(t, "button")[0].Click()
		assert.Equal(t, []string{"a: 1", "b: 0"}, texts(h))
	})

	t.Run("name", func(t *testing.T) {
		h := newHarness(t, twoCounters, func(c *config.Config) { c.StateScope = config.ScopeName }).init(t)
		h.all(t, "button")[0].Click()
		assert.Equal(t, []string{"a: 1", "b: 1"}, texts(h))
	})
}

func TestSetterSemantics(t *testing.T) {
	type item struct {
		ID   int    `json:"id"`
		Text string `json:"text"`
	}
	var set vdom.Setter[[]item]
	var setFn vdom.Setter[func()]
	app := func(c *vdom.Context, p vdom.Props) any {
		items, s := vdom.UseState(c, []item{{1, "a"}})
		_, setFn = vdom.UseState[func()](c, nil)
		set = s
		return vdom.Create("p", nil, len(items))
	}
	h := newHarness(t, app).init(t)
	pass := h.rt.Pass()

	// Deep-equal values are no-ops.
	set.Set([]item{{1, "a"}})
	assert.Equal(t, pass, h.rt.Pass())

	set.Update(func(prev []item) []item { return append(prev, item{2, "b"}) })
	assert.Equal(t, pass+1, h.rt.Pass())
	assert.Equal(t, "2", h.one(t, "p").TextContent())

	// Unserializable values always count as changed.
	setFn.Set(func() {})
	assert.Equal(t, pass+2, h.rt.Pass())
	setFn.Set(func() {})
	assert.Equal(t, pass+3, h.rt.Pass())

	var zero vdom.Setter[int]
	assert.NotPanics(t, func() { zero.Set(1) })
}

func TestHookMisuse(t *testing.T) {
	assert.PanicsWithError(t, vdom.ErrHookOutsideRender.Error(), func() { vdom.UseState(nil, 0) })
	assert.PanicsWithError(t, vdom.ErrHookOutsideRender.Error(), func() { vdom.UseEffect(nil, nil, nil) })

	var flip vdom.Setter[bool]
	app := func(c *vdom.Context, p vdom.Props) any {
		swapped, set := vdom.UseState(c, false)
		flip = set
		if swapped {
			vdom.UseState(c, "now a string")
		} else {
			vdom.UseState(c, 0)
		}
		return nil
	}
	h := newHarness(t, app).init(t)
	flip.Set(true)
	require.Len(t, h.errs, 1)
	var re *vdom.RenderError
	require.ErrorAs(t, h.errs[0], &re)
	assert.ErrorIs(t, re, vdom.ErrHookOrder)
}

func TestCoalescing(t *testing.T) {
	app := func(c *vdom.Context, p vdom.Props) any {
		a, setA := vdom.UseState(c, 0)
		b, setB := vdom.UseState(c, 0)
		return vdom.Create("div", nil,
			vdom.Create("p", nil, fmt.Sprintf("%d %d", a, b)),
			vdom.Create("button", vdom.Props{"onClick": func(e *dom.Event) {
				setA.Set(1)
				setB.Set(2)
				setA.Update(func(prev int) int { return prev + 2 })
			}}),
		)
	}
	h := newHarness(t, app).init(t)
	pass := h.rt.Pass()

	h.one(t, "button").Click()
	assert.Equal(t, pass+1, h.rt.Pass())
	assert.Equal(t, "3 2", h.one(t, "p").TextContent())
}

func TestBatch(t *testing.T) {
	var setA, setB vdom.Setter[int]
	app := func(c *vdom.Context, p vdom.Props) any {
		var a, b int
		a, setA = vdom.UseState(c, 0)
		b, setB = vdom.UseState(c, 0)
		return vdom.Create("p", nil, a+b)
	}
	h := newHarness(t, app).init(t)
	pass := h.rt.Pass()

	h.rt.Batch(func() {
		setA.Set(1)
		h.rt.Batch(func() { setB.Set(2) })
		assert.Equal(t, pass, h.rt.Pass(), "nested batch must not flush")
	})
	assert.Equal(t, pass+1, h.rt.Pass())
	assert.Equal(t, "3", h.one(t, "p").TextContent())

	h.rt.Batch(func() {})
	assert.Equal(t, pass+1, h.rt.Pass())
}

func TestHandlerCache(t *testing.T) {
	h := newHarness(t, counter).init(t)
	old := h.one(t, "button")
	old.Click()

	cur := h.one(t, "button")
	assert.NotSame(t, old, cur)
	assert.Equal(t, 0, old.ListenerCount("click"))
	assert.Equal(t, 1, cur.ListenerCount("click"))

	// The listener on the fresh node sees the latest closure.
	cur.Click()
	assert.Equal(t, ": 2", h.one(t, "span").TextContent())
}

func TestEffectGating(t *testing.T) {
	var log []string
	var setA, setB vdom.Setter[int]
	var mount *dom.Node
	app := func(c *vdom.Context, p vdom.Props) any {
		var a, b int
		a, setA = vdom.UseState(c, 0)
		b, setB = vdom.UseState(c, 0)
		vdom.UseEffect(c, func() vdom.Cleanup {
			log = append(log, fmt.Sprintf("run %d sees %q", a, mount.TextContent()))
			return func() { log = append(log, fmt.Sprintf("cleanup %d", a)) }
		}, []any{a})
		return vdom.Create("p", nil, fmt.Sprintf("%d/%d", a, b))
	}
	h := newHarness(t, app)
	mount = h.mount
	h.init(t)
	assert.Equal(t, []string{`run 0 sees "0/0"`}, log)

	setB.Set(1)
	assert.Equal(t, []string{`run 0 sees "0/0"`}, log)

	setA.Set(1)
	assert.Equal(t, []string{`run 0 sees "0/0"`, "cleanup 0", `run 1 sees "1/1"`}, log)
}

func TestEffectDependencyForms(t *testing.T) {
	var always, once, bySlice int
	var bump vdom.Setter[int]
	shared := []string{"s"}
	app := func(c *vdom.Context, p vdom.Props) any {
		n, set := vdom.UseState(c, 0)
		bump = set
		vdom.UseEffect(c, func() vdom.Cleanup { always++; return nil }, nil)
		vdom.UseEffect(c, func() vdom.Cleanup { once++; return nil }, []any{})
		vdom.UseEffect(c, func() vdom.Cleanup { bySlice++; return nil }, []any{shared, "const"})
		return vdom.Create("p", nil, n)
	}
	newHarness(t, app).init(t)
	bump.Set(1)
	bump.Set(2)
	assert.Equal(t, 3, always)
	assert.Equal(t, 1, once)
	assert.Equal(t, 1, bySlice)
}

func TestEffectClosureDeps(t *testing.T) {
	var runs int
	var bump vdom.Setter[int]
	app := func(c *vdom.Context, p vdom.Props) any {
		n, set := vdom.UseState(c, 0)
		bump = set
		get := func() int { return n }
		vdom.UseEffect(c, func() vdom.Cleanup { runs++; return nil }, []any{get})
		return vdom.Create("p", nil, n)
	}
	newHarness(t, app).init(t)
	assert.Equal(t, 1, runs)
	bump.Set(1)
	assert.Equal(t, 2, runs)
}

func TestEffectStructStateDeps(t *testing.T) {
	type list struct {
		Items []int
	}
	var runs int
	var bump vdom.Setter[int]
	var setList vdom.Setter[list]
	app := func(c *vdom.Context, p vdom.Props) any {
		l, sl := vdom.UseState(c, list{Items: []int{1}})
		n, set := vdom.UseState(c, 0)
		bump, setList = set, sl
		vdom.UseEffect(c, func() vdom.Cleanup { runs++; return nil }, []any{l})
		return vdom.Create("p", nil, n, len(l.Items))
	}
	h := newHarness(t, app).init(t)
	assert.Equal(t, 1, runs)

	bump.Set(1)
	assert.Equal(t, uint64(2), h.rt.Pass())
	assert.Equal(t, 1, runs)

	setList.Set(list{Items: []int{1, 2}})
	assert.Equal(t, 2, runs)
	assert.Empty(t, h.errs)
}

func TestEffectUpdatesState(t *testing.T) {
	app := func(c *vdom.Context, p vdom.Props) any {
		a, _ := vdom.UseState(c, 1)
		b, setB := vdom.UseState(c, 0)
		vdom.UseEffect(c, func() vdom.Cleanup {
			setB.Set(a * 2)
			return nil
		}, []any{a})
		return vdom.Create("p", nil, fmt.Sprintf("%d %d", a, b))
	}
	h := newHarness(t, app).init(t)
	assert.Equal(t, uint64(2), h.rt.Pass())
	assert.Equal(t, "1 2", h.one(t, "p").TextContent())
}

func TestEffectFailures(t *testing.T) {
	var ran []int
	var bump vdom.Setter[int]
	app := func(c *vdom.Context, p vdom.Props) any {
		n, set := vdom.UseState(c, 0)
		bump = set
		vdom.UseEffect(c, func() vdom.Cleanup {
			ran = append(ran, 0)
			if n == 0 {
				panic("effect boom")
			}
			return func() { panic(errors.New("cleanup boom")) }
		}, []any{n})
		vdom.UseEffect(c, func() vdom.Cleanup {
			ran = append(ran, 1)
			return nil
		}, []any{n})
		return nil
	}
	h := newHarness(t, app).init(t)
	assert.Equal(t, []int{0, 1}, ran)
	require.Len(t, h.errs, 1)
	var ee *vdom.EffectError
	require.ErrorAs(t, h.errs[0], &ee)
	assert.Equal(t, 0, ee.Index)
	assert.False(t, ee.Cleanup)
	assert.Contains(t, ee.Error(), "effect boom")

	// The failed run stored no cleanup; the next run stores one.
	bump.Set(1)
	assert.Len(t, h.errs, 1)
	bump.Set(2)
	require.Len(t, h.errs, 2)
	require.ErrorAs(t, h.errs[1], &ee)
	assert.True(t, ee.Cleanup)
	assert.Equal(t, []int{0, 1, 0, 1, 0, 1}, ran)
}

func TestRenderFailureRecovers(t *testing.T) {
	app := func(c *vdom.Context, p vdom.Props) any {
		broken, set := vdom.UseState(c, false)
		if broken {
			panic("render boom")
		}
		return vdom.Create("button", vdom.Props{"onClick": func() { set.Set(true) }}, "break")
	}
	h := newHarness(t, app).init(t)
	h.one(t, "button").Click()

	require.Len(t, h.errs, 1)
	var re *vdom.RenderError
	require.ErrorAs(t, h.errs[0], &re)
	assert.Equal(t, uint64(2), re.Pass)
	assert.Contains(t, re.Error(), "render boom")

	// The runtime is not stuck: a fresh initialize renders again.
	require.NoError(t, h.rt.Initialize())
	assert.Equal(t, "break", h.one(t, "button").TextContent())
}

func TestInitializeReportsRenderFailure(t *testing.T) {
	h := newHarness(t, func(c *vdom.Context, p vdom.Props) any { return struct{}{} })
	err := h.rt.Initialize()
	var re *vdom.RenderError
	require.ErrorAs(t, err, &re)
	assert.ErrorIs(t, err, vdom.ErrInvalidType)
	require.Len(t, h.errs, 1)
	assert.Same(t, re, h.errs[0])
}

func TestHandlerPanic(t *testing.T) {
	app := func(c *vdom.Context, p vdom.Props) any {
		return vdom.Create("button", vdom.Props{"onClick": func() { panic("click boom") }})
	}
	h := newHarness(t, app).init(t)
	assert.NotPanics(t, func() { h.one(t, "button").Click() })
	require.Len(t, h.errs, 1)
	var he *vdom.HandlerError
	require.ErrorAs(t, h.errs[0], &he)
	assert.Equal(t, "click", he.Event)
	assert.True(t, strings.HasSuffix(he.ID, "/button-0"), he.ID)
}

func TestUpdateLoopGuard(t *testing.T) {
	app := func(c *vdom.Context, p vdom.Props) any {
		n, set := vdom.UseState(c, 0)
		vdom.UseEffect(c, func() vdom.Cleanup {
			set.Set(n + 1)
			return nil
		}, nil)
		return vdom.Create("p", nil, n)
	}
	h := newHarness(t, app, func(c *config.Config) { c.MaxRerenders = 5 }).init(t)
	assert.Equal(t, uint64(6), h.rt.Pass())
	require.Len(t, h.errs, 1)
	assert.ErrorIs(t, h.errs[0], vdom.ErrUpdateLoop)
	assert.Equal(t, "5", h.one(t, "p").TextContent())
}

func TestContext(t *testing.T) {
	var path, name string
	var rt *vdom.Runtime
	app := func(c *vdom.Context, p vdom.Props) any {
		path, name, rt = c.Path(), c.Name(), c.Runtime()
		return nil
	}
	h := newHarness(t, app).init(t)
	assert.Equal(t, "TestContext.func1", name)
	assert.Equal(t, "TestContext.func1-0", path)
	assert.Same(t, h.rt, rt)
	assert.NotEmpty(t, h.rt.ID())
	assert.Same(t, h.doc, h.rt.Document())
	assert.Equal(t, "root", h.rt.Config().MountID)
}
