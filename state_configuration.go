package statefire

import (
	"fmt"
)

// StateConfiguration provides a fluent interface for configuring the
// behaviour of a single state.
type StateConfiguration[TState, TTrigger comparable] struct {
	representation *StateRepresentation[TState, TTrigger]
	lookup         func(TState) *StateRepresentation[TState, TTrigger]
}

func firstOrEmpty(s []string) string {
	if len(s) > 0 {
		return s[0]
	}
	return ""
}

// NewStateConfiguration creates a new state configuration.
func NewStateConfiguration[TState, TTrigger comparable](
	representation *StateRepresentation[TState, TTrigger],
	lookup func(TState) *StateRepresentation[TState, TTrigger],
) *StateConfiguration[TState, TTrigger] {
	return &StateConfiguration[TState, TTrigger]{
		representation: representation,
		lookup:         lookup,
	}
}

// State returns the state being configured.
func (sc *StateConfiguration[TState, TTrigger]) State() TState {
	return sc.representation.UnderlyingState()
}

// Permit configures the state to transition to the specified destination
// state when the trigger is fired.
func (sc *StateConfiguration[TState, TTrigger]) Permit(trigger TTrigger, destinationState TState) *StateConfiguration[TState, TTrigger] {
	sc.enforceNotIdentityTransition(destinationState)
	sc.representation.AddTriggerBehaviour(
		NewTransitioningTriggerBehaviour(trigger, destinationState, EmptyTransitionGuard, nil),
	)
	return sc
}

// PermitWithAction configures the state to transition to the specified
// destination state when the trigger is fired, running the action between
// the exit of this state and the commit of the destination.
func (sc *StateConfiguration[TState, TTrigger]) PermitWithAction(trigger TTrigger, destinationState TState, action func()) *StateConfiguration[TState, TTrigger] {
	sc.enforceNotIdentityTransition(destinationState)
	sc.representation.AddTriggerBehaviour(
		NewTransitioningTriggerBehaviour(trigger, destinationState, EmptyTransitionGuard, action),
	)
	return sc
}

// PermitIf configures the state to transition to the specified destination
// state when the trigger is fired and the guard condition is met. When
// several guarded behaviours are configured for the same trigger, the first
// one in declaration order whose guard passes wins. Unlike Permit, a
// destination equal to the source is accepted and fires as a reentry.
func (sc *StateConfiguration[TState, TTrigger]) PermitIf(trigger TTrigger, destinationState TState, guard GuardFunc, guardDescription ...string) *StateConfiguration[TState, TTrigger] {
	sc.representation.AddTriggerBehaviour(
		NewTransitioningTriggerBehaviour(trigger, destinationState, NewTransitionGuard(guard, firstOrEmpty(guardDescription)), nil),
	)
	return sc
}

// PermitIfWithAction combines PermitIf and PermitWithAction.
func (sc *StateConfiguration[TState, TTrigger]) PermitIfWithAction(trigger TTrigger, destinationState TState, guard GuardFunc, action func(), guardDescription ...string) *StateConfiguration[TState, TTrigger] {
	sc.representation.AddTriggerBehaviour(
		NewTransitioningTriggerBehaviour(trigger, destinationState, NewTransitionGuard(guard, firstOrEmpty(guardDescription)), action),
	)
	return sc
}

// PermitReentry configures the state to exit and re-enter itself when the
// trigger is fired. Entry and exit actions run, unlike Ignore.
func (sc *StateConfiguration[TState, TTrigger]) PermitReentry(trigger TTrigger) *StateConfiguration[TState, TTrigger] {
	sc.representation.AddTriggerBehaviour(
		NewReentryTriggerBehaviour(trigger, sc.representation.UnderlyingState(), EmptyTransitionGuard, nil),
	)
	return sc
}

// PermitReentryWithAction configures a reentry with a transition action.
func (sc *StateConfiguration[TState, TTrigger]) PermitReentryWithAction(trigger TTrigger, action func()) *StateConfiguration[TState, TTrigger] {
	sc.representation.AddTriggerBehaviour(
		NewReentryTriggerBehaviour(trigger, sc.representation.UnderlyingState(), EmptyTransitionGuard, action),
	)
	return sc
}

// PermitReentryIf configures the state to exit and re-enter itself when the
// trigger is fired and the guard condition is met.
func (sc *StateConfiguration[TState, TTrigger]) PermitReentryIf(trigger TTrigger, guard GuardFunc, guardDescription ...string) *StateConfiguration[TState, TTrigger] {
	sc.representation.AddTriggerBehaviour(
		NewReentryTriggerBehaviour(trigger, sc.representation.UnderlyingState(), NewTransitionGuard(guard, firstOrEmpty(guardDescription)), nil),
	)
	return sc
}

// Ignore configures the state to accept the trigger without transitioning
// and without running any entry or exit actions.
func (sc *StateConfiguration[TState, TTrigger]) Ignore(trigger TTrigger) *StateConfiguration[TState, TTrigger] {
	sc.representation.AddTriggerBehaviour(
		NewIgnoredTriggerBehaviour[TState](trigger, EmptyTransitionGuard),
	)
	return sc
}

// IgnoreIf configures the state to ignore the trigger when the guard
// condition is met. When the guard fails the trigger is unhandled, not
// ignored.
func (sc *StateConfiguration[TState, TTrigger]) IgnoreIf(trigger TTrigger, guard GuardFunc, guardDescription ...string) *StateConfiguration[TState, TTrigger] {
	sc.representation.AddTriggerBehaviour(
		NewIgnoredTriggerBehaviour[TState](trigger, NewTransitionGuard(guard, firstOrEmpty(guardDescription))),
	)
	return sc
}

// PermitDynamic configures the state to transition to a destination computed
// from the trigger arguments at fire time. Possible destinations may be
// declared for introspection and graph rendering.
func (sc *StateConfiguration[TState, TTrigger]) PermitDynamic(
	trigger TTrigger,
	destinationSelector func(args ...any) TState,
	possibleDestinations ...DynamicStateInfo,
) *StateConfiguration[TState, TTrigger] {
	info := DynamicTransitionInfo{
		transitionInfoBase: transitionInfoBase{
			Trigger: NewTriggerInfo(trigger),
		},
		DestinationStateSelectorDescription: CreateInvocationInfo(destinationSelector, ""),
		PossibleDestinationStates:           possibleDestinations,
	}
	sc.representation.AddTriggerBehaviour(
		NewDynamicTriggerBehaviour(trigger, destinationSelector, EmptyTransitionGuard, nil, info),
	)
	return sc
}

// PermitDynamicWithAction configures a dynamic transition with an action
// that receives the trigger arguments.
func (sc *StateConfiguration[TState, TTrigger]) PermitDynamicWithAction(
	trigger TTrigger,
	destinationSelector func(args ...any) TState,
	action func(args ...any),
	possibleDestinations ...DynamicStateInfo,
) *StateConfiguration[TState, TTrigger] {
	info := DynamicTransitionInfo{
		transitionInfoBase: transitionInfoBase{
			Trigger: NewTriggerInfo(trigger),
		},
		DestinationStateSelectorDescription: CreateInvocationInfo(destinationSelector, ""),
		PossibleDestinationStates:           possibleDestinations,
	}
	sc.representation.AddTriggerBehaviour(
		NewDynamicTriggerBehaviour(trigger, destinationSelector, EmptyTransitionGuard, action, info),
	)
	return sc
}

// PermitDynamicIf configures a dynamic transition that is only active when
// the guard condition is met.
func (sc *StateConfiguration[TState, TTrigger]) PermitDynamicIf(
	trigger TTrigger,
	destinationSelector func(args ...any) TState,
	guard GuardFunc,
	guardDescription ...string,
) *StateConfiguration[TState, TTrigger] {
	desc := firstOrEmpty(guardDescription)
	info := DynamicTransitionInfo{
		transitionInfoBase: transitionInfoBase{
			Trigger:         NewTriggerInfo(trigger),
			GuardConditions: []InvocationInfo{CreateInvocationInfo(guard, desc)},
		},
		DestinationStateSelectorDescription: CreateInvocationInfo(destinationSelector, ""),
	}
	sc.representation.AddTriggerBehaviour(
		NewDynamicTriggerBehaviour(trigger, destinationSelector, NewTransitionGuard(guard, desc), nil, info),
	)
	return sc
}

// OnEntry configures an action to run when entering this state. The action
// receives the transition, including any trigger arguments in t.Args.
func (sc *StateConfiguration[TState, TTrigger]) OnEntry(action func(t Transition[TState, TTrigger])) *StateConfiguration[TState, TTrigger] {
	sc.representation.AddEntryAction(
		NewEntryActionBehaviour(action, CreateInvocationInfo(action, "")),
	)
	return sc
}

// OnEntryFrom configures an action to run when entering this state via the
// specified trigger only. The action does not run on the synthetic initial
// transition.
func (sc *StateConfiguration[TState, TTrigger]) OnEntryFrom(trigger TTrigger, action func(t Transition[TState, TTrigger])) *StateConfiguration[TState, TTrigger] {
	sc.representation.AddEntryAction(
		NewEntryActionBehaviourFrom(trigger, action, CreateInvocationInfo(action, "")),
	)
	return sc
}

// OnExit configures an action to run when exiting this state.
func (sc *StateConfiguration[TState, TTrigger]) OnExit(action func(t Transition[TState, TTrigger])) *StateConfiguration[TState, TTrigger] {
	sc.representation.AddExitAction(
		NewExitActionBehaviour(action, CreateInvocationInfo(action, "")),
	)
	return sc
}

// SubstateOf makes this state a substate of the given superstate. A state
// may have at most one superstate and the relationship must stay acyclic.
func (sc *StateConfiguration[TState, TTrigger]) SubstateOf(superstate TState) *StateConfiguration[TState, TTrigger] {
	state := sc.representation.UnderlyingState()
	if sc.representation.Superstate() != nil {
		panic(&InvalidOperationError{
			Message: fmt.Sprintf("state '%v' is already a substate of '%v'", state, sc.representation.Superstate().UnderlyingState()),
		})
	}

	superstateRep := sc.lookup(superstate)
	if superstateRep.IsIncludedIn(state) {
		panic(&InvalidOperationError{
			Message: fmt.Sprintf("circular superstate relationship detected: %v -> %v", state, superstate),
		})
	}

	sc.representation.SetSuperstate(superstateRep)
	superstateRep.AddSubstate(sc.representation)
	return sc
}

func (sc *StateConfiguration[TState, TTrigger]) enforceNotIdentityTransition(destinationState TState) {
	if sc.representation.UnderlyingState() == destinationState {
		panic(&InvalidOperationError{
			Message: "Permit() requires that the destination state is not equal to the source state. To accept a trigger without changing state, use either Ignore() or PermitReentry()",
		})
	}
}

// OnEntryFrom1 configures an entry action bound to a one-argument trigger.
// The argument is extracted from the transition and passed to the action
// with its declared type.
func OnEntryFrom1[TArg0 any, TState, TTrigger comparable](
	sc *StateConfiguration[TState, TTrigger],
	trigger *TriggerWithParameters1[TTrigger, TArg0],
	action func(arg0 TArg0),
) *StateConfiguration[TState, TTrigger] {
	return sc.OnEntryFrom(trigger.Trigger(), func(t Transition[TState, TTrigger]) {
		action(argAt[TArg0](t.Args, 0))
	})
}

// OnEntryFrom2 configures an entry action bound to a two-argument trigger.
func OnEntryFrom2[TArg0, TArg1 any, TState, TTrigger comparable](
	sc *StateConfiguration[TState, TTrigger],
	trigger *TriggerWithParameters2[TTrigger, TArg0, TArg1],
	action func(arg0 TArg0, arg1 TArg1),
) *StateConfiguration[TState, TTrigger] {
	return sc.OnEntryFrom(trigger.Trigger(), func(t Transition[TState, TTrigger]) {
		action(argAt[TArg0](t.Args, 0), argAt[TArg1](t.Args, 1))
	})
}

// OnEntryFrom3 configures an entry action bound to a three-argument trigger.
func OnEntryFrom3[TArg0, TArg1, TArg2 any, TState, TTrigger comparable](
	sc *StateConfiguration[TState, TTrigger],
	trigger *TriggerWithParameters3[TTrigger, TArg0, TArg1, TArg2],
	action func(arg0 TArg0, arg1 TArg1, arg2 TArg2),
) *StateConfiguration[TState, TTrigger] {
	return sc.OnEntryFrom(trigger.Trigger(), func(t Transition[TState, TTrigger]) {
		action(argAt[TArg0](t.Args, 0), argAt[TArg1](t.Args, 1), argAt[TArg2](t.Args, 2))
	})
}

// argAt extracts a typed argument from a trigger argument list. Fire
// validates arguments against registered parameter types before actions
// run, so a failure here means the trigger was fired without registering
// its parameters.
func argAt[T any](args []any, position int) T {
	if position >= len(args) {
		panic(&ParameterConversionError{
			Message: fmt.Sprintf("argument at position %d is missing", position),
		})
	}
	if args[position] == nil {
		var zero T
		return zero
	}
	v, ok := args[position].(T)
	if !ok {
		panic(&ParameterConversionError{
			Message: fmt.Sprintf("argument at position %d is of type %T but expected type %v", position, args[position], typeOf[T]()),
		})
	}
	return v
}
