package statefire

import (
	"fmt"
)

// StateRepresentation models the behaviour of a single state: its place in
// the superstate tree, its trigger behaviours, and its entry and exit
// actions.
type StateRepresentation[TState, TTrigger comparable] struct {
	state TState

	// superstate is the parent state (nil if this is a root state).
	superstate *StateRepresentation[TState, TTrigger]

	// substates are the child states of this state.
	substates []*StateRepresentation[TState, TTrigger]

	// triggerBehaviours maps triggers to their behaviours in declaration order.
	triggerBehaviours map[TTrigger][]TriggerBehaviour[TState, TTrigger]

	// triggerOrder records first registration order, keeping trigger
	// enumeration deterministic.
	triggerOrder []TTrigger

	// entryActions are executed when entering this state.
	entryActions []*EntryActionBehaviour[TState, TTrigger]

	// exitActions are executed when leaving this state.
	exitActions []*ExitActionBehaviour[TState, TTrigger]
}

// NewStateRepresentation creates a new state representation.
func NewStateRepresentation[TState, TTrigger comparable](state TState) *StateRepresentation[TState, TTrigger] {
	return &StateRepresentation[TState, TTrigger]{
		state:             state,
		triggerBehaviours: make(map[TTrigger][]TriggerBehaviour[TState, TTrigger]),
	}
}

// UnderlyingState returns the state this representation models.
func (sr *StateRepresentation[TState, TTrigger]) UnderlyingState() TState {
	return sr.state
}

// Superstate returns the parent state representation, if any.
func (sr *StateRepresentation[TState, TTrigger]) Superstate() *StateRepresentation[TState, TTrigger] {
	return sr.superstate
}

// SetSuperstate sets the parent state representation.
func (sr *StateRepresentation[TState, TTrigger]) SetSuperstate(superstate *StateRepresentation[TState, TTrigger]) {
	sr.superstate = superstate
}

// Substates returns the substate representations of this state.
func (sr *StateRepresentation[TState, TTrigger]) Substates() []*StateRepresentation[TState, TTrigger] {
	return sr.substates
}

// AddSubstate adds a substate to this state.
func (sr *StateRepresentation[TState, TTrigger]) AddSubstate(substate *StateRepresentation[TState, TTrigger]) {
	sr.substates = append(sr.substates, substate)
}

// TriggerBehaviours returns the trigger behaviours map.
func (sr *StateRepresentation[TState, TTrigger]) TriggerBehaviours() map[TTrigger][]TriggerBehaviour[TState, TTrigger] {
	return sr.triggerBehaviours
}

// Triggers returns the triggers configured on this state in first
// registration order.
func (sr *StateRepresentation[TState, TTrigger]) Triggers() []TTrigger {
	return sr.triggerOrder
}

// EntryActions returns the entry actions.
func (sr *StateRepresentation[TState, TTrigger]) EntryActions() []*EntryActionBehaviour[TState, TTrigger] {
	return sr.entryActions
}

// ExitActions returns the exit actions.
func (sr *StateRepresentation[TState, TTrigger]) ExitActions() []*ExitActionBehaviour[TState, TTrigger] {
	return sr.exitActions
}

// AddTriggerBehaviour adds a trigger behaviour to this state.
func (sr *StateRepresentation[TState, TTrigger]) AddTriggerBehaviour(behaviour TriggerBehaviour[TState, TTrigger]) {
	trigger := behaviour.Trigger()
	if _, exists := sr.triggerBehaviours[trigger]; !exists {
		sr.triggerOrder = append(sr.triggerOrder, trigger)
	}
	sr.triggerBehaviours[trigger] = append(sr.triggerBehaviours[trigger], behaviour)
}

// AddEntryAction adds an entry action to this state.
func (sr *StateRepresentation[TState, TTrigger]) AddEntryAction(action *EntryActionBehaviour[TState, TTrigger]) {
	sr.entryActions = append(sr.entryActions, action)
}

// AddExitAction adds an exit action to this state.
func (sr *StateRepresentation[TState, TTrigger]) AddExitAction(action *ExitActionBehaviour[TState, TTrigger]) {
	sr.exitActions = append(sr.exitActions, action)
}

// CanHandle returns true if this state or one of its superstates has an
// active behaviour for the trigger.
func (sr *StateRepresentation[TState, TTrigger]) CanHandle(trigger TTrigger, args ...any) bool {
	return sr.FindHandler(trigger, args...) != nil
}

// FindHandler resolves the active behaviour for a trigger. The state's own
// behaviours are consulted first; when none is active the search continues
// up the superstate chain. Returns nil when no active behaviour exists.
func (sr *StateRepresentation[TState, TTrigger]) FindHandler(trigger TTrigger, args ...any) TriggerBehaviour[TState, TTrigger] {
	if handler := sr.FindLocalHandler(trigger, args...); handler != nil {
		return handler
	}
	if sr.superstate != nil {
		return sr.superstate.FindHandler(trigger, args...)
	}
	return nil
}

// FindLocalHandler resolves the active behaviour for a trigger among this
// state's own behaviours. When several behaviours are registered for the
// same trigger the first one in declaration order whose guard passes wins.
func (sr *StateRepresentation[TState, TTrigger]) FindLocalHandler(trigger TTrigger, args ...any) TriggerBehaviour[TState, TTrigger] {
	for _, behaviour := range sr.triggerBehaviours[trigger] {
		if behaviour.GuardConditionsMet(args...) {
			return behaviour
		}
	}
	return nil
}

// Enter executes the entry actions appropriate for the transition. Entering
// a substate from outside its superstate enters the superstate first; a
// transition between two states sharing a superstate does not re-run the
// superstate's entry actions.
func (sr *StateRepresentation[TState, TTrigger]) Enter(transition Transition[TState, TTrigger]) {
	if transition.IsReentry() {
		sr.ExecuteEntryActions(transition)
		return
	}

	if !sr.Includes(transition.Source) {
		if sr.superstate != nil {
			sr.superstate.Enter(transition)
		}
		sr.ExecuteEntryActions(transition)
	}
}

// Exit executes the exit actions appropriate for the transition. Leaving a
// superstate's subtree exits every state up to, but not including, the first
// common ancestor with the destination.
func (sr *StateRepresentation[TState, TTrigger]) Exit(transition Transition[TState, TTrigger]) {
	if transition.IsReentry() {
		sr.ExecuteExitActions(transition)
		return
	}

	if !sr.Includes(transition.Destination) {
		sr.ExecuteExitActions(transition)
		if sr.superstate != nil {
			sr.superstate.Exit(transition)
		}
	}
}

// ExecuteEntryActions runs all entry actions of this state in declaration order.
func (sr *StateRepresentation[TState, TTrigger]) ExecuteEntryActions(transition Transition[TState, TTrigger]) {
	for _, action := range sr.entryActions {
		action.Execute(transition)
	}
}

// ExecuteExitActions runs all exit actions of this state in declaration order.
func (sr *StateRepresentation[TState, TTrigger]) ExecuteExitActions(transition Transition[TState, TTrigger]) {
	for _, action := range sr.exitActions {
		action.Execute(transition)
	}
}

// Includes returns true if this state or any of its substates is the
// specified state.
func (sr *StateRepresentation[TState, TTrigger]) Includes(state TState) bool {
	if sr.state == state {
		return true
	}
	for _, substate := range sr.substates {
		if substate.Includes(state) {
			return true
		}
	}
	return false
}

// IsIncludedIn returns true if this state is the specified state or a
// substate of it, at any depth.
func (sr *StateRepresentation[TState, TTrigger]) IsIncludedIn(state TState) bool {
	if sr.state == state {
		return true
	}
	if sr.superstate != nil {
		return sr.superstate.IsIncludedIn(state)
	}
	return false
}

// PermittedTriggers returns the triggers with at least one active behaviour
// on this state or any superstate. A state's own triggers come first, then
// inherited ones, without duplicates.
func (sr *StateRepresentation[TState, TTrigger]) PermittedTriggers(args ...any) []TTrigger {
	result := sr.LocalPermittedTriggers(args...)

	if sr.superstate != nil {
		for _, trigger := range sr.superstate.PermittedTriggers(args...) {
			if !containsTrigger(result, trigger) {
				result = append(result, trigger)
			}
		}
	}

	return result
}

// LocalPermittedTriggers returns the triggers with at least one active
// behaviour on this state, not including superstates, in registration order.
func (sr *StateRepresentation[TState, TTrigger]) LocalPermittedTriggers(args ...any) []TTrigger {
	var result []TTrigger
	for _, trigger := range sr.triggerOrder {
		for _, behaviour := range sr.triggerBehaviours[trigger] {
			if behaviour.GuardConditionsMet(args...) {
				result = append(result, trigger)
				break
			}
		}
	}
	return result
}

// String returns a string representation of this state.
func (sr *StateRepresentation[TState, TTrigger]) String() string {
	return fmt.Sprintf("%v", sr.state)
}

func containsTrigger[TTrigger comparable](triggers []TTrigger, trigger TTrigger) bool {
	for _, t := range triggers {
		if t == trigger {
			return true
		}
	}
	return false
}
