package demo

import (
	"slices"
	"strings"

	"github.com/elizafairlady/go-vdom/ui/dom"
	"github.com/elizafairlady/go-vdom/ui/vdom"
)

// Todo is one entry of a TodoList.
type Todo struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// SeedTodos returns the list a TodoList starts with.
func SeedTodos() []Todo {
	return []Todo{
		{ID: 1, Text: "가상 DOM 구현하기", Completed: true},
		{ID: 2, Text: "컴포넌트 만들기"},
		{ID: 3, Text: "상태 관리 추가하기"},
	}
}

// nextID returns one more than the largest id, or 1 for an empty list.
func nextID(todos []Todo) int {
	id := 0
	for _, t := range todos {
		id = max(id, t.ID)
	}
	return id + 1
}

// TodoList renders an input for new items and the list of todos.
func TodoList(c *vdom.Context, p vdom.Props) any {
	todos, setTodos := vdom.UseState(c, SeedTodos())
	newTodo, setNewTodo := vdom.UseState(c, "")

	log := c.Runtime().Logger().With("component", c.Path())
	vdom.UseEffect(c, func() vdom.Cleanup {
		log.Info("todos changed", "count", len(todos))
		return nil
	}, []any{todos})

	add := func() {
		if strings.TrimSpace(newTodo) == "" {
			return
		}
		setTodos.Update(func(prev []Todo) []Todo {
			return append(slices.Clone(prev), Todo{ID: nextID(prev), Text: newTodo})
		})
		setNewTodo.Set("")
	}
	remove := func(id int) {
		setTodos.Update(func(prev []Todo) []Todo {
			out := make([]Todo, 0, len(prev))
			for _, t := range prev {
				if t.ID != id {
					out = append(out, t)
				}
			}
			return out
		})
	}
	toggle := func(id int) {
		setTodos.Update(func(prev []Todo) []Todo {
			out := slices.Clone(prev)
			for i := range out {
				if out[i].ID == id {
					out[i].Completed = !out[i].Completed
				}
			}
			return out
		})
	}

	items := make([]any, 0, len(todos))
	for _, t := range todos {
		id := t.ID
		items = append(items, vdom.Create(TodoItem, vdom.Props{
			"key":       id,
			"text":      t.Text,
			"completed": t.Completed,
			"onToggle":  func() { toggle(id) },
			"onDelete":  func() { remove(id) },
		}))
	}

	return vdom.Create("div", vdom.Props{"className": "todo-list-container"},
		vdom.Create("h2", nil, "할 일 목록"),
		vdom.Create("div", vdom.Props{
			"className": "todo-input-container",
			"style":     map[string]string{"display": "flex", "marginBottom": "15px"},
		},
			vdom.Create("input", vdom.Props{
				"type":  "text",
				"value": newTodo,
				"onChange": func(e *dom.Event) {
					setNewTodo.Set(e.Target.Value)
				},
				"onKeyDown": func(e *dom.Event) {
					if e.Key == "Enter" {
						e.PreventDefault()
						add()
					}
				},
				"placeholder": "할 일을 입력하세요",
				"style": map[string]string{
					"flex":         "1",
					"padding":      "8px",
					"borderRadius": "4px 0 0 4px",
					"border":       "1px solid #ddd",
					"fontSize":     "16px",
				},
			}),
			vdom.Create("div", vdom.Props{
				"onClick":   add,
				"className": "add-button",
				"style": map[string]string{
					"backgroundColor": "#3498db",
					"color":           "white",
					"border":          "none",
					"borderRadius":    "0 4px 4px 0",
					"padding":         "0 15px",
					"cursor":          "pointer",
					"display":         "flex",
					"alignItems":      "center",
					"justifyContent":  "center",
					"userSelect":      "none",
				},
			}, "추가"),
		),
		vdom.Create("ul", vdom.Props{
			"className": "todo-items",
			"style": map[string]string{
				"listStyleType": "none",
				"padding":       "0",
				"margin":        "0",
			},
		}, items),
	)
}

// TodoItem renders one todo with a completion checkbox and a delete
// button. Props: text, completed, onToggle and onDelete.
func TodoItem(c *vdom.Context, p vdom.Props) any {
	text, _ := p["text"].(string)
	completed, _ := p["completed"].(bool)
	onToggle, _ := p["onToggle"].(func())
	onDelete, _ := p["onDelete"].(func())

	// Both handlers keep the event from reaching the list.
	handleToggle := func(e *dom.Event) {
		e.StopPropagation()
		if onToggle != nil {
			onToggle()
		}
	}
	handleDelete := func(e *dom.Event) {
		e.StopPropagation()
		if onDelete != nil {
			onDelete()
		}
	}

	class, decoration := "todo-item ", "none"
	if completed {
		class, decoration = "todo-item completed", "line-through"
	}

	return vdom.Create("li", vdom.Props{
		"className": class,
		"style": map[string]string{
			"textDecoration": decoration,
			"display":        "flex",
			"justifyContent": "space-between",
			"alignItems":     "center",
			"padding":        "8px 0",
		},
	},
		vdom.Create("div", vdom.Props{
			"className": "todo-content",
			"style":     map[string]string{"display": "flex", "alignItems": "center", "gap": "8px"},
		},
			vdom.Create("input", vdom.Props{
				"type":     "checkbox",
				"checked":  completed,
				"onChange": handleToggle,
			}),
			vdom.Create("span", nil, text),
		),
		vdom.Create("div", vdom.Props{
			"onClick":   handleDelete,
			"className": "delete-button",
			"style": map[string]string{
				"backgroundColor": "#e74c3c",
				"color":           "white",
				"border":          "none",
				"borderRadius":    "4px",
				"padding":         "4px 8px",
				"cursor":          "pointer",
				"display":         "flex",
				"alignItems":      "center",
				"justifyContent":  "center",
				"userSelect":      "none",
			},
		}, "삭제"),
	)
}
