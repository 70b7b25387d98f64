// Vdom lists, renders and drives the example applications.
//
// Usage:
//
//	vdom apps
//	vdom dump counter -a "click sel=button.button-increment"
//	vdom run scenario.yaml...
package main

import (
	"fmt"
	"os"

	"github.com/elizafairlady/go-vdom/ui/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "vdom:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
