package statefire

// TriggerBehaviour is the common interface of the ways a state can respond
// to a trigger: unconditional and guarded transitions, reentry, ignoring,
// and dynamic destination selection.
type TriggerBehaviour[TState, TTrigger comparable] interface {
	// Trigger returns the trigger this behaviour responds to.
	Trigger() TTrigger

	// Guard returns the transition guard for this behaviour.
	Guard() TransitionGuard

	// GuardConditionsMet returns true if all guard conditions are met.
	GuardConditionsMet(args ...any) bool

	// ResultsInTransitionFrom resolves the destination state when the
	// behaviour fires from source. The second result is false when the
	// trigger is accepted without causing a transition.
	ResultsInTransitionFrom(source TState, args ...any) (TState, bool)

	// PerformAction invokes the behaviour's associated action, if any.
	// Only dynamic behaviours see the trigger arguments.
	PerformAction(args []any)
}

// triggerBehaviourBase provides the base implementation for trigger behaviours.
type triggerBehaviourBase[TState, TTrigger comparable] struct {
	trigger TTrigger
	guard   TransitionGuard
}

func (t *triggerBehaviourBase[TState, TTrigger]) Trigger() TTrigger {
	return t.trigger
}

func (t *triggerBehaviourBase[TState, TTrigger]) Guard() TransitionGuard {
	return t.guard
}

func (t *triggerBehaviourBase[TState, TTrigger]) GuardConditionsMet(args ...any) bool {
	return t.guard.ConditionsMet(args...)
}

// TransitioningTriggerBehaviour represents a transition to a fixed destination state.
type TransitioningTriggerBehaviour[TState, TTrigger comparable] struct {
	triggerBehaviourBase[TState, TTrigger]

	Destination TState

	action func()
}

// NewTransitioningTriggerBehaviour creates a new transitioning trigger behaviour.
// The action, if not nil, runs between the exit of the source state and the
// commit of the destination.
func NewTransitioningTriggerBehaviour[TState, TTrigger comparable](
	trigger TTrigger,
	destination TState,
	guard TransitionGuard,
	action func(),
) *TransitioningTriggerBehaviour[TState, TTrigger] {
	return &TransitioningTriggerBehaviour[TState, TTrigger]{
		triggerBehaviourBase: triggerBehaviourBase[TState, TTrigger]{
			trigger: trigger,
			guard:   guard,
		},
		Destination: destination,
		action:      action,
	}
}

func (t *TransitioningTriggerBehaviour[TState, TTrigger]) ResultsInTransitionFrom(_ TState, _ ...any) (TState, bool) {
	return t.Destination, true
}

func (t *TransitioningTriggerBehaviour[TState, TTrigger]) PerformAction(_ []any) {
	if t.action != nil {
		t.action()
	}
}

// ReentryTriggerBehaviour represents a reentry transition: the state exits
// and re-enters itself, running both exit and entry actions.
type ReentryTriggerBehaviour[TState, TTrigger comparable] struct {
	triggerBehaviourBase[TState, TTrigger]

	Destination TState

	action func()
}

// NewReentryTriggerBehaviour creates a new reentry trigger behaviour.
func NewReentryTriggerBehaviour[TState, TTrigger comparable](
	trigger TTrigger,
	destination TState,
	guard TransitionGuard,
	action func(),
) *ReentryTriggerBehaviour[TState, TTrigger] {
	return &ReentryTriggerBehaviour[TState, TTrigger]{
		triggerBehaviourBase: triggerBehaviourBase[TState, TTrigger]{
			trigger: trigger,
			guard:   guard,
		},
		Destination: destination,
		action:      action,
	}
}

func (r *ReentryTriggerBehaviour[TState, TTrigger]) ResultsInTransitionFrom(_ TState, _ ...any) (TState, bool) {
	return r.Destination, true
}

func (r *ReentryTriggerBehaviour[TState, TTrigger]) PerformAction(_ []any) {
	if r.action != nil {
		r.action()
	}
}

// IgnoredTriggerBehaviour represents a trigger that is accepted but causes
// no transition and runs no actions.
type IgnoredTriggerBehaviour[TState, TTrigger comparable] struct {
	triggerBehaviourBase[TState, TTrigger]
}

// NewIgnoredTriggerBehaviour creates a new ignored trigger behaviour.
func NewIgnoredTriggerBehaviour[TState, TTrigger comparable](
	trigger TTrigger,
	guard TransitionGuard,
) *IgnoredTriggerBehaviour[TState, TTrigger] {
	return &IgnoredTriggerBehaviour[TState, TTrigger]{
		triggerBehaviourBase: triggerBehaviourBase[TState, TTrigger]{
			trigger: trigger,
			guard:   guard,
		},
	}
}

func (i *IgnoredTriggerBehaviour[TState, TTrigger]) ResultsInTransitionFrom(source TState, _ ...any) (TState, bool) {
	return source, false
}

func (i *IgnoredTriggerBehaviour[TState, TTrigger]) PerformAction(_ []any) {}

// DynamicTriggerBehaviour represents a transition whose destination is
// computed from the trigger arguments at fire time.
type DynamicTriggerBehaviour[TState, TTrigger comparable] struct {
	triggerBehaviourBase[TState, TTrigger]

	destination func(args ...any) TState
	action      func(args ...any)

	// TransitionInfo describes the selector and its possible destinations
	// for introspection.
	TransitionInfo DynamicTransitionInfo
}

// NewDynamicTriggerBehaviour creates a new dynamic trigger behaviour.
func NewDynamicTriggerBehaviour[TState, TTrigger comparable](
	trigger TTrigger,
	destination func(args ...any) TState,
	guard TransitionGuard,
	action func(args ...any),
	info DynamicTransitionInfo,
) *DynamicTriggerBehaviour[TState, TTrigger] {
	if destination == nil {
		panic(&ArgumentError{ParamName: "destination", Message: "destination selector cannot be nil"})
	}
	return &DynamicTriggerBehaviour[TState, TTrigger]{
		triggerBehaviourBase: triggerBehaviourBase[TState, TTrigger]{
			trigger: trigger,
			guard:   guard,
		},
		destination:    destination,
		action:         action,
		TransitionInfo: info,
	}
}

func (d *DynamicTriggerBehaviour[TState, TTrigger]) ResultsInTransitionFrom(_ TState, args ...any) (TState, bool) {
	return d.destination(args...), true
}

func (d *DynamicTriggerBehaviour[TState, TTrigger]) PerformAction(args []any) {
	if d.action != nil {
		d.action(args...)
	}
}
