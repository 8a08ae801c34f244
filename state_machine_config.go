package statefire

import (
	"fmt"
	"reflect"
)

// StateMachineConfig holds the state representations and trigger parameter
// descriptors for a machine. A config can be built once and shared by any
// number of state machines, each tracking its own current state.
type StateMachineConfig[TState, TTrigger comparable] struct {
	representations map[TState]*StateRepresentation[TState, TTrigger]

	// stateOrder records first configuration order, keeping state
	// enumeration deterministic.
	stateOrder []TState

	triggerConfiguration map[TTrigger]*TriggerWithParameters[TTrigger]

	name string

	entryActionOfInitialStateEnabled bool
}

// NewStateMachineConfig creates an empty state machine configuration.
func NewStateMachineConfig[TState, TTrigger comparable]() *StateMachineConfig[TState, TTrigger] {
	return &StateMachineConfig[TState, TTrigger]{
		representations:      make(map[TState]*StateRepresentation[TState, TTrigger]),
		triggerConfiguration: make(map[TTrigger]*TriggerWithParameters[TTrigger]),
	}
}

// WithName gives the configuration a name, used by the state machine's
// String method and by log output.
func (c *StateMachineConfig[TState, TTrigger]) WithName(name string) *StateMachineConfig[TState, TTrigger] {
	c.name = name
	return c
}

// Name returns the configuration name, which may be empty.
func (c *StateMachineConfig[TState, TTrigger]) Name() string {
	return c.name
}

// EnableEntryActionOfInitialState makes machines built on this configuration
// run the initial state's entry actions on construction, via a synthetic
// transition whose source and destination are both the initial state.
func (c *StateMachineConfig[TState, TTrigger]) EnableEntryActionOfInitialState() *StateMachineConfig[TState, TTrigger] {
	c.entryActionOfInitialStateEnabled = true
	return c
}

// EntryActionOfInitialStateEnabled reports whether initial entry actions run
// on machine construction.
func (c *StateMachineConfig[TState, TTrigger]) EntryActionOfInitialStateEnabled() bool {
	return c.entryActionOfInitialStateEnabled
}

// Configure begins configuration of a state, creating its representation on
// first use. Calling Configure repeatedly for the same state extends the
// existing representation.
func (c *StateMachineConfig[TState, TTrigger]) Configure(state TState) *StateConfiguration[TState, TTrigger] {
	return NewStateConfiguration(c.getOrCreateRepresentation(state), c.getOrCreateRepresentation)
}

// Representation returns the representation of a configured state. The
// second result is false when the state has never been configured.
func (c *StateMachineConfig[TState, TTrigger]) Representation(state TState) (*StateRepresentation[TState, TTrigger], bool) {
	representation, ok := c.representations[state]
	return representation, ok
}

// States returns all configured states in first configuration order.
func (c *StateMachineConfig[TState, TTrigger]) States() []TState {
	result := make([]TState, len(c.stateOrder))
	copy(result, c.stateOrder)
	return result
}

func (c *StateMachineConfig[TState, TTrigger]) getOrCreateRepresentation(state TState) *StateRepresentation[TState, TTrigger] {
	if representation, ok := c.representations[state]; ok {
		return representation
	}
	representation := NewStateRepresentation[TState, TTrigger](state)
	c.representations[state] = representation
	c.stateOrder = append(c.stateOrder, state)
	return representation
}

// SetTriggerParameters registers the argument types that every fire of the
// trigger must supply. Registering the same trigger again with the identical
// types is a no-op; registering it with different types panics.
func (c *StateMachineConfig[TState, TTrigger]) SetTriggerParameters(trigger TTrigger, argumentTypes ...reflect.Type) *TriggerWithParameters[TTrigger] {
	return c.registerTriggerParameters(NewTriggerWithParameters(trigger, argumentTypes...))
}

// TriggerParameters returns the parameter descriptor registered for a
// trigger. The second result is false for unregistered triggers.
func (c *StateMachineConfig[TState, TTrigger]) TriggerParameters(trigger TTrigger) (*TriggerWithParameters[TTrigger], bool) {
	descriptor, ok := c.triggerConfiguration[trigger]
	return descriptor, ok
}

func (c *StateMachineConfig[TState, TTrigger]) registerTriggerParameters(descriptor *TriggerWithParameters[TTrigger]) *TriggerWithParameters[TTrigger] {
	trigger := descriptor.Trigger()
	if existing, ok := c.triggerConfiguration[trigger]; ok {
		if !existing.sameArgumentTypes(descriptor) {
			panic(&InvalidOperationError{
				Message: fmt.Sprintf("Parameters for the trigger '%v' have already been configured.", trigger),
			})
		}
		return existing
	}
	c.triggerConfiguration[trigger] = descriptor
	return descriptor
}

// SetTriggerParameters1 registers a one-argument trigger on the
// configuration and returns its typed descriptor.
func SetTriggerParameters1[TArg0 any, TState, TTrigger comparable](c *StateMachineConfig[TState, TTrigger], trigger TTrigger) *TriggerWithParameters1[TTrigger, TArg0] {
	descriptor := NewTriggerWithParameters1[TTrigger, TArg0](trigger)
	c.registerTriggerParameters(descriptor.TriggerWithParameters)
	return descriptor
}

// SetTriggerParameters2 registers a two-argument trigger on the
// configuration and returns its typed descriptor.
func SetTriggerParameters2[TArg0, TArg1 any, TState, TTrigger comparable](c *StateMachineConfig[TState, TTrigger], trigger TTrigger) *TriggerWithParameters2[TTrigger, TArg0, TArg1] {
	descriptor := NewTriggerWithParameters2[TTrigger, TArg0, TArg1](trigger)
	c.registerTriggerParameters(descriptor.TriggerWithParameters)
	return descriptor
}

// SetTriggerParameters3 registers a three-argument trigger on the
// configuration and returns its typed descriptor.
func SetTriggerParameters3[TArg0, TArg1, TArg2 any, TState, TTrigger comparable](c *StateMachineConfig[TState, TTrigger], trigger TTrigger) *TriggerWithParameters3[TTrigger, TArg0, TArg1, TArg2] {
	descriptor := NewTriggerWithParameters3[TTrigger, TArg0, TArg1, TArg2](trigger)
	c.registerTriggerParameters(descriptor.TriggerWithParameters)
	return descriptor
}
