package script

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/elizafairlady/go-vdom/ui/config"
	"github.com/elizafairlady/go-vdom/ui/proto"
)

// Scenario drives one application through a sequence of user actions
// and checks the resulting document.
type Scenario struct {
	// Name identifies the scenario; golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what the scenario checks.
	Description string `yaml:"description"`

	// App is the registered application to mount.
	App string `yaml:"app"`

	// StateScope overrides the configured state scope ("path" or "name").
	StateScope config.Scope `yaml:"state_scope,omitempty"`

	// Steps are performed in order. A step that fails stops the run.
	Steps []Step `yaml:"steps"`

	// Assertions are checked against the document after the last step.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one user action.
type Step struct {
	// Kind is the action kind: click, input, change, keydown or focus.
	Kind string `yaml:"action"`

	// Sel and Index pick the target among selector matches; ID picks
	// it by stable identity instead.
	Sel   string `yaml:"sel,omitempty"`
	Index int    `yaml:"index,omitempty"`
	ID    string `yaml:"id,omitempty"`

	// Value is the text typed by an input action.
	Value string `yaml:"value,omitempty"`

	// Key is the key pressed by a keydown action.
	Key string `yaml:"key,omitempty"`
}

// Action converts the step into a host action.
func (s Step) Action() *proto.Action {
	a := &proto.Action{Kind: s.Kind, Args: make(map[string]string)}
	if s.Sel != "" {
		a.Args["sel"] = s.Sel
	}
	if s.Index != 0 {
		a.Args["index"] = strconv.Itoa(s.Index)
	}
	if s.ID != "" {
		a.Args["id"] = s.ID
	}
	if s.Value != "" || s.Kind == "input" {
		a.Args["value"] = s.Value
	}
	if s.Key != "" {
		a.Args["key"] = s.Key
	}
	return a
}

// Assertion checks the final document.
type Assertion struct {
	// Type is one of the Assert constants.
	Type string `yaml:"type"`

	// Sel selects the elements checked; Index picks one of them.
	Sel   string `yaml:"sel,omitempty"`
	Index int    `yaml:"index,omitempty"`

	// Text is the expected text (text_contains, text_equals).
	Text string `yaml:"text,omitempty"`

	// Count is the expected number of matches (count) or render
	// passes (passes).
	Count int `yaml:"count,omitempty"`

	// Checked is the expected live checked state (checked).
	Checked bool `yaml:"checked,omitempty"`

	// Value is the expected live value (value).
	Value string `yaml:"value,omitempty"`
}

// Assertion types.
const (
	AssertTextContains = "text_contains"
	AssertTextEquals   = "text_equals"
	AssertCount        = "count"
	AssertChecked      = "checked"
	AssertValue        = "value"
	AssertPasses       = "passes"
	AssertNoErrors     = "no_errors"
)

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w (in %s)", err, path)
	}
	return s, nil
}

// Parse decodes a scenario. Unknown fields are rejected so that
// typos do not silently disable a check.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("script: parse: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks required fields and known step and assertion types.
func (s *Scenario) Validate() error {
	var errs []error
	if s.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if s.App == "" {
		errs = append(errs, errors.New("app is required"))
	}
	if s.StateScope != "" && s.StateScope != config.ScopePath && s.StateScope != config.ScopeName {
		errs = append(errs, fmt.Errorf("state_scope %q is not path or name", s.StateScope))
	}
	for i, st := range s.Steps {
		switch st.Kind {
		case "click", "input", "change", "keydown", "focus":
		default:
			errs = append(errs, fmt.Errorf("step %d: unknown action %q", i+1, st.Kind))
		}
		if st.Sel == "" && st.ID == "" {
			errs = append(errs, fmt.Errorf("step %d: sel or id is required", i+1))
		}
	}
	for i, a := range s.Assertions {
		switch a.Type {
		case AssertTextContains, AssertPasses, AssertNoErrors:
		case AssertTextEquals, AssertCount, AssertChecked, AssertValue:
			if a.Sel == "" {
				errs = append(errs, fmt.Errorf("assertion %d: %s needs sel", i+1, a.Type))
			}
		default:
			errs = append(errs, fmt.Errorf("assertion %d: unknown type %q", i+1, a.Type))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("script: invalid scenario: %w", err)
	}
	return nil
}
