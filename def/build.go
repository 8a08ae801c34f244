package def

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/statefire/statefire"
)

// Bindings supplies the guard, action, and selector implementations a
// definition references by name.
type Bindings struct {
	// Guards maps guard names to guard conditions.
	Guards map[string]statefire.GuardFunc

	// Actions maps action names to entry/exit actions.
	Actions map[string]func(statefire.Transition[string, string])

	// Selectors maps selector names to dynamic destination selectors.
	Selectors map[string]func(args ...any) string
}

// Build validates the definition and turns it into a machine configuration
// with the given bindings wired in. Guard names become the guard
// descriptions shown in diagnostics and rendered graphs. When the
// definition has no machine name, a uuid is assigned.
func Build(d *Definition, b Bindings) (*statefire.StateMachineConfig[string, string], error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	name := d.Machine
	if name == "" {
		name = uuid.New().String()
	}
	cfg := statefire.NewStateMachineConfig[string, string]().WithName(name)

	for _, trigger := range sortedTriggerNames(d.TriggerParameters) {
		types, err := parameterTypes(trigger, d.TriggerParameters[trigger])
		if err != nil {
			return nil, err
		}
		cfg.SetTriggerParameters(trigger, types...)
	}

	for _, state := range d.States {
		sc := cfg.Configure(state.ID)
		if state.Parent != "" {
			sc.SubstateOf(state.Parent)
		}

		for _, actionName := range state.Entry {
			action, ok := b.Actions[actionName]
			if !ok {
				return nil, fmt.Errorf("state %q: entry action %q is not bound", state.ID, actionName)
			}
			sc.OnEntry(action)
		}
		for _, actionName := range state.Exit {
			action, ok := b.Actions[actionName]
			if !ok {
				return nil, fmt.Errorf("state %q: exit action %q is not bound", state.ID, actionName)
			}
			sc.OnExit(action)
		}

		for _, rule := range state.Transitions {
			if err := buildTransition(sc, state, rule, b); err != nil {
				return nil, err
			}
		}
	}

	return cfg, nil
}

func buildTransition(
	sc *statefire.StateConfiguration[string, string],
	state State,
	rule TransitionRule,
	b Bindings,
) error {
	var guard statefire.GuardFunc
	if rule.Guard != "" {
		bound, ok := b.Guards[rule.Guard]
		if !ok {
			return fmt.Errorf("state %q: guard %q is not bound", state.ID, rule.Guard)
		}
		guard = bound
	}

	switch {
	case rule.Target != "":
		if guard == nil {
			sc.Permit(rule.Trigger, rule.Target)
		} else {
			sc.PermitIf(rule.Trigger, rule.Target, guard, rule.Guard)
		}

	case rule.Ignore:
		if guard == nil {
			sc.Ignore(rule.Trigger)
		} else {
			sc.IgnoreIf(rule.Trigger, guard, rule.Guard)
		}

	case rule.Reentry:
		if guard == nil {
			sc.PermitReentry(rule.Trigger)
		} else {
			sc.PermitReentryIf(rule.Trigger, guard, rule.Guard)
		}

	case rule.Dynamic != "":
		selector, ok := b.Selectors[rule.Dynamic]
		if !ok {
			return fmt.Errorf("state %q: selector %q is not bound", state.ID, rule.Dynamic)
		}
		if guard == nil {
			destinations := make([]statefire.DynamicStateInfo, len(rule.Targets))
			for i, target := range rule.Targets {
				destinations[i] = statefire.DynamicStateInfo{DestinationState: target}
			}
			sc.PermitDynamic(rule.Trigger, selector, destinations...)
		} else {
			sc.PermitDynamicIf(rule.Trigger, selector, guard, rule.Guard)
		}
	}

	return nil
}

// NewStateMachine builds the configuration and starts a machine in the
// definition's initial state.
func NewStateMachine(d *Definition, b Bindings) (*statefire.StateMachine[string, string], error) {
	cfg, err := Build(d, b)
	if err != nil {
		return nil, err
	}
	return statefire.NewStateMachineWithConfig(d.Initial, cfg), nil
}

// StubBindings covers every name the definition references with inert
// implementations: guards pass, actions do nothing, selectors stay in the
// source state. Useful for building a configuration purely to render it.
func StubBindings(d *Definition) Bindings {
	b := Bindings{
		Guards:    make(map[string]statefire.GuardFunc),
		Actions:   make(map[string]func(statefire.Transition[string, string])),
		Selectors: make(map[string]func(args ...any) string),
	}

	for _, state := range d.States {
		for _, actionName := range state.Entry {
			b.Actions[actionName] = func(statefire.Transition[string, string]) {}
		}
		for _, actionName := range state.Exit {
			b.Actions[actionName] = func(statefire.Transition[string, string]) {}
		}
		for _, rule := range state.Transitions {
			if rule.Guard != "" {
				b.Guards[rule.Guard] = func(...any) bool { return true }
			}
			if rule.Dynamic != "" {
				source := state.ID
				b.Selectors[rule.Dynamic] = func(...any) string { return source }
			}
		}
	}

	return b
}
