// Package def loads state machine definitions from YAML and builds
// statefire configurations from them. Guards, actions, and dynamic
// destination selectors are referenced by name in the definition and
// supplied through Bindings at build time.
package def

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"

	"gopkg.in/yaml.v3"
)

// Definition is the top-level machine definition.
type Definition struct {
	// Machine is the machine name. A uuid is assigned at build time when
	// it is empty.
	Machine string `yaml:"machine,omitempty"`

	// Initial is the state the machine starts in.
	Initial string `yaml:"initial"`

	// TriggerParameters maps trigger names to the parameter type names the
	// trigger carries, in positional order.
	TriggerParameters map[string][]string `yaml:"trigger_parameters,omitempty"`

	// States declares the states in order. Declaration order is preserved
	// through to the built configuration, so guard precedence within a
	// trigger follows the YAML.
	States []State `yaml:"states"`
}

// State declares one state and its outgoing transitions.
type State struct {
	ID     string `yaml:"id"`
	Parent string `yaml:"parent,omitempty"`

	// Entry and Exit name bound actions to run on entering and leaving the
	// state.
	Entry []string `yaml:"entry,omitempty"`
	Exit  []string `yaml:"exit,omitempty"`

	Transitions []TransitionRule `yaml:"transitions,omitempty"`
}

// TransitionRule declares how one trigger is handled in a state. Exactly
// one of Target, Ignore, Reentry, or Dynamic must be set.
type TransitionRule struct {
	Trigger string `yaml:"trigger"`

	// Target names the destination state for a plain transition.
	Target string `yaml:"target,omitempty"`

	// Guard names a bound guard condition. The name doubles as the guard
	// description in diagnostics and rendered graphs.
	Guard string `yaml:"guard,omitempty"`

	// Ignore accepts the trigger without leaving the state and without
	// running any actions.
	Ignore bool `yaml:"ignore,omitempty"`

	// Reentry exits and re-enters the state.
	Reentry bool `yaml:"reentry,omitempty"`

	// Dynamic names a bound destination selector.
	Dynamic string `yaml:"dynamic,omitempty"`

	// Targets optionally lists the destinations a dynamic selector can
	// choose, for validation and graph rendering.
	Targets []string `yaml:"targets,omitempty"`
}

// Parse decodes a YAML definition.
func Parse(data []byte) (*Definition, error) {
	var d Definition
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return &d, nil
}

// ParseReader decodes a YAML definition from a reader.
func ParseReader(r io.Reader) (*Definition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}
	return Parse(data)
}

// Load reads and decodes a YAML definition file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return d, nil
}

// Validate checks the structure of the definition:
//   - Initial is set and declared
//   - state IDs are non-empty and unique
//   - parent references exist and form no cycle
//   - each transition names a trigger and exactly one handling kind
//   - plain targets exist and differ from the source state
//   - dynamic target lists only appear on unguarded dynamic transitions
//     and reference declared states
//   - at most one unguarded transition per trigger per state
//   - trigger parameter types are known
//
// Binding names are resolved later, by Build.
func (d *Definition) Validate() error {
	if d.Initial == "" {
		return fmt.Errorf("initial state ID is required")
	}
	if len(d.States) == 0 {
		return fmt.Errorf("at least one state is required")
	}

	declared := make(map[string]bool, len(d.States))
	parents := make(map[string]string, len(d.States))
	for i, state := range d.States {
		if state.ID == "" {
			return fmt.Errorf("state %d: id is required", i)
		}
		if declared[state.ID] {
			return fmt.Errorf("duplicate state ID %q", state.ID)
		}
		declared[state.ID] = true
		if state.Parent != "" {
			parents[state.ID] = state.Parent
		}
	}

	if !declared[d.Initial] {
		return fmt.Errorf("initial state %q not found in states", d.Initial)
	}

	for _, state := range d.States {
		if state.Parent == "" {
			continue
		}
		if !declared[state.Parent] {
			return fmt.Errorf("state %q: parent %q not found", state.ID, state.Parent)
		}
		seen := map[string]bool{state.ID: true}
		for parent := state.Parent; parent != ""; parent = parents[parent] {
			if seen[parent] {
				return fmt.Errorf("circular parent relationship involving state %q", state.ID)
			}
			seen[parent] = true
		}
	}

	for _, state := range d.States {
		if err := validateTransitions(state, declared); err != nil {
			return err
		}
	}

	for _, trigger := range sortedTriggerNames(d.TriggerParameters) {
		if _, err := parameterTypes(trigger, d.TriggerParameters[trigger]); err != nil {
			return err
		}
	}

	return nil
}

func validateTransitions(state State, declared map[string]bool) error {
	unguarded := make(map[string]bool)

	for i, rule := range state.Transitions {
		if rule.Trigger == "" {
			return fmt.Errorf("state %q: transition %d: trigger is required", state.ID, i)
		}

		kinds := 0
		if rule.Target != "" {
			kinds++
		}
		if rule.Ignore {
			kinds++
		}
		if rule.Reentry {
			kinds++
		}
		if rule.Dynamic != "" {
			kinds++
		}
		if kinds != 1 {
			return fmt.Errorf("state %q: trigger %q: exactly one of target, ignore, reentry, or dynamic is required", state.ID, rule.Trigger)
		}

		if rule.Target != "" {
			if rule.Target == state.ID {
				return fmt.Errorf("state %q: trigger %q: target equals the source state; use reentry or ignore", state.ID, rule.Trigger)
			}
			if !declared[rule.Target] {
				return fmt.Errorf("state %q: trigger %q: target %q not found", state.ID, rule.Trigger, rule.Target)
			}
		}

		if len(rule.Targets) > 0 {
			if rule.Dynamic == "" {
				return fmt.Errorf("state %q: trigger %q: targets require dynamic", state.ID, rule.Trigger)
			}
			if rule.Guard != "" {
				return fmt.Errorf("state %q: trigger %q: targets cannot be combined with a guarded dynamic transition", state.ID, rule.Trigger)
			}
			for _, target := range rule.Targets {
				if !declared[target] {
					return fmt.Errorf("state %q: trigger %q: dynamic target %q not found", state.ID, rule.Trigger, target)
				}
			}
		}

		if rule.Guard == "" {
			if unguarded[rule.Trigger] {
				return fmt.Errorf("state %q: trigger %q: multiple transitions without guards", state.ID, rule.Trigger)
			}
			unguarded[rule.Trigger] = true
		}
	}

	return nil
}

var parameterTypeNames = map[string]reflect.Type{
	"string":  reflect.TypeOf(""),
	"int":     reflect.TypeOf(int(0)),
	"int64":   reflect.TypeOf(int64(0)),
	"float64": reflect.TypeOf(float64(0)),
	"bool":    reflect.TypeOf(false),
}

func parameterTypes(trigger string, names []string) ([]reflect.Type, error) {
	types := make([]reflect.Type, len(names))
	for i, name := range names {
		t, ok := parameterTypeNames[name]
		if !ok {
			return nil, fmt.Errorf("trigger %q: unknown parameter type %q", trigger, name)
		}
		types[i] = t
	}
	return types, nil
}

func sortedTriggerNames(params map[string][]string) []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
