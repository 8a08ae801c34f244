// Package graph renders state machine configurations as DOT or Mermaid
// diagrams, built from the reflection info exposed by a machine.
package graph

import (
	"github.com/statefire/statefire"
)

// State represents a state node in the graph.
type State struct {
	// StateName is the name of the state.
	StateName string

	// NodeName is the name used for the node in the rendered graph.
	NodeName string

	// EntryActions are the unfiltered entry action descriptions.
	EntryActions []string

	// ExitActions are the exit action descriptions.
	ExitActions []string

	// Leaving are the transitions leaving this state.
	Leaving []*Transition

	// Arriving are the transitions arriving at this state.
	Arriving []*Transition

	// SuperState is the parent state, if any.
	SuperState *SuperState

	// StateInfo is the underlying reflection info.
	StateInfo *statefire.StateInfo
}

// SuperState is a state that contains substates, rendered as a cluster.
type SuperState struct {
	*State

	// SubStates are the child states of this state.
	SubStates []*State
}

// Decision is a choice node standing in for a dynamic transition's selector.
type Decision struct {
	// NodeName is the name of the decision node.
	NodeName string

	// Method describes the destination selector.
	Method statefire.InvocationInfo

	// Leaving are the edges from this decision node to the possible
	// destination states.
	Leaving []*DynamicTransition

	// Arriving are the transitions arriving at this decision node.
	Arriving []*Transition
}

// Transition represents an edge in the graph.
type Transition struct {
	// Trigger is the trigger that causes this transition.
	Trigger statefire.TriggerInfo

	// SourceState is the source state of the transition.
	SourceState *State

	// DestinationState is the destination state of the transition. Nil for
	// edges into a decision node.
	DestinationState *State

	// Guards are the guard condition descriptions for this transition.
	Guards []statefire.InvocationInfo

	// DestinationEntryActions are the entry actions executed at the
	// destination.
	DestinationEntryActions []statefire.ActionInfo

	// ExecuteEntryExitActions is false for ignored triggers, which stay in
	// the state without running any actions.
	ExecuteEntryExitActions bool
}

// StayTransition is an edge from a state to itself: a reentry or an ignored
// trigger.
type StayTransition struct {
	*Transition
}

// FixedTransition is an edge to a fixed destination state.
type FixedTransition struct {
	*Transition
}

// DynamicTransition is an edge whose destination is selected at fire time.
type DynamicTransition struct {
	*Transition

	// Criterion is the reason this destination would be chosen.
	Criterion string
}
