package demo

import "github.com/elizafairlady/go-vdom/ui/vdom"

// Page is the example page: a heading, a Counter and a TodoList.
func Page(c *vdom.Context, p vdom.Props) any {
	return vdom.Create("div", vdom.Props{"className": "app-container"},
		vdom.Create("h1", nil, "가상 DOM 예제"),
		vdom.Create(Counter, nil),
		vdom.Create("hr", vdom.Props{
			"style": map[string]string{
				"margin":    "30px 0",
				"border":    "none",
				"borderTop": "1px solid #ddd",
			},
		}),
		vdom.Create(TodoList, nil),
	)
}
