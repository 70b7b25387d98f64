// Package demo holds the example applications: a counter, a todo
// list and the page that combines them.
package demo

import (
	"sort"

	"github.com/elizafairlady/go-vdom/ui/vdom"
)

// App is a named root component.
type App struct {
	Name        string
	Description string
	Root        vdom.Component
}

var registry = map[string]App{
	"app":      {Name: "app", Description: "counter and todo list on one page", Root: Page},
	"counter":  {Name: "counter", Description: "increment and decrement a number", Root: Counter},
	"todo":     {Name: "todo", Description: "add, toggle and delete todo items", Root: TodoList},
	"counters": {Name: "counters", Description: "two counter instances side by side", Root: Counters},
}

// Apps returns the registered apps sorted by name.
func Apps() []App {
	out := make([]App, 0, len(registry))
	for _, a := range registry {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the app registered under name.
func Lookup(name string) (App, bool) {
	a, ok := registry[name]
	return a, ok
}
