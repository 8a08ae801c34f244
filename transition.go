package statefire

// Transition describes a single state change.
type Transition[TState, TTrigger comparable] struct {
	// Source is the state transitioned from.
	Source TState

	// Destination is the state transitioned to.
	Destination TState

	// Trigger is the trigger that caused the transition.
	Trigger TTrigger

	// Args are the optional trigger arguments supplied to Fire.
	Args []any

	// isInitial marks the synthetic transition that enters the initial state.
	isInitial bool
}

// NewTransition creates a new transition.
func NewTransition[TState, TTrigger comparable](source, destination TState, trigger TTrigger, args ...any) Transition[TState, TTrigger] {
	if args == nil {
		args = []any{}
	}
	return Transition[TState, TTrigger]{
		Source:      source,
		Destination: destination,
		Trigger:     trigger,
		Args:        args,
	}
}

// NewInitialTransition creates the synthetic transition that represents
// entering the initial state. Its trigger is the zero value and both
// endpoints are the initial state itself.
func NewInitialTransition[TState, TTrigger comparable](initial TState) Transition[TState, TTrigger] {
	var trigger TTrigger
	t := NewTransition(initial, initial, trigger)
	t.isInitial = true
	return t
}

// IsReentry reports whether source and destination are the same state.
func (t Transition[TState, TTrigger]) IsReentry() bool {
	return t.Source == t.Destination
}

// IsInitial reports whether this is the synthetic initial transition.
func (t Transition[TState, TTrigger]) IsInitial() bool {
	return t.isInitial
}
