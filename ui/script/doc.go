// Package script runs scripted sessions against the example
// applications.
//
// A scenario is a YAML file naming an app, a list of steps (user
// actions addressed by selector or stable identity) and a list of
// assertions about the final document:
//
//	name: counter_basic
//	description: decrement once, increment twice
//	app: counter
//	steps:
//	  - action: click
//	    sel: button.button-decrement
//	assertions:
//	  - type: text_contains
//	    sel: p
//	    text: "-1"
//
// Run returns a Result whose Transcript is stable across runs, so it
// can be compared against golden files.
package script
