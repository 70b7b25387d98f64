package demo

import (
	"fmt"

	"github.com/elizafairlady/go-vdom/ui/vdom"
)

// Counter shows a number with buttons to decrement and increment it.
func Counter(c *vdom.Context, p vdom.Props) any {
	count, setCount := vdom.UseState(c, 0)

	increment := func() { setCount.Set(count + 1) }
	decrement := func() { setCount.Set(count - 1) }

	return vdom.Create("div", vdom.Props{"className": "counter-container"},
		vdom.Create("h2", nil, "카운터 앱"),
		vdom.Create("p", nil, fmt.Sprintf("현재 카운트: %d", count)),
		vdom.Create("div", vdom.Props{"className": "button-container"},
			vdom.Create("button", vdom.Props{
				"onClick":   decrement,
				"className": "button button-decrement",
			}, "감소"),
			vdom.Create("button", vdom.Props{
				"onClick":   increment,
				"className": "button button-increment",
			}, "증가"),
		),
	)
}

// Counters mounts two Counter instances. Whether they share state
// depends on the runtime's state scope.
func Counters(c *vdom.Context, p vdom.Props) any {
	return vdom.Create("div", vdom.Props{"className": "counters"},
		vdom.Create(Counter, vdom.Props{"key": "left"}),
		vdom.Create(Counter, vdom.Props{"key": "right"}),
	)
}
