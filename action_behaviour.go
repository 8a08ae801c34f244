package statefire

// EntryActionBehaviour is an entry action, optionally bound to a trigger so
// it only runs when the state was entered via that trigger.
type EntryActionBehaviour[TState, TTrigger comparable] struct {
	action      func(transition Transition[TState, TTrigger])
	description InvocationInfo
	fromTrigger *TTrigger
}

// NewEntryActionBehaviour creates an entry action that runs on every entry.
func NewEntryActionBehaviour[TState, TTrigger comparable](
	action func(transition Transition[TState, TTrigger]),
	description InvocationInfo,
) *EntryActionBehaviour[TState, TTrigger] {
	return &EntryActionBehaviour[TState, TTrigger]{
		action:      action,
		description: description,
	}
}

// NewEntryActionBehaviourFrom creates an entry action bound to a specific
// trigger.
func NewEntryActionBehaviourFrom[TState, TTrigger comparable](
	trigger TTrigger,
	action func(transition Transition[TState, TTrigger]),
	description InvocationInfo,
) *EntryActionBehaviour[TState, TTrigger] {
	return &EntryActionBehaviour[TState, TTrigger]{
		action:      action,
		description: description,
		fromTrigger: &trigger,
	}
}

// Execute runs the entry action. Trigger-bound actions are skipped when the
// transition was caused by a different trigger, and on the synthetic initial
// transition, whose trigger value carries no meaning.
func (b *EntryActionBehaviour[TState, TTrigger]) Execute(transition Transition[TState, TTrigger]) {
	if b.fromTrigger != nil && (transition.IsInitial() || transition.Trigger != *b.fromTrigger) {
		return
	}
	if b.action != nil {
		b.action(transition)
	}
}

// Description returns the description of the action.
func (b *EntryActionBehaviour[TState, TTrigger]) Description() InvocationInfo {
	return b.description
}

// FromTrigger returns the trigger this action is bound to, or nil when the
// action runs on every entry.
func (b *EntryActionBehaviour[TState, TTrigger]) FromTrigger() *TTrigger {
	return b.fromTrigger
}

// ExitActionBehaviour is an exit action for a state.
type ExitActionBehaviour[TState, TTrigger comparable] struct {
	action      func(transition Transition[TState, TTrigger])
	description InvocationInfo
}

// NewExitActionBehaviour creates a new exit action.
func NewExitActionBehaviour[TState, TTrigger comparable](
	action func(transition Transition[TState, TTrigger]),
	description InvocationInfo,
) *ExitActionBehaviour[TState, TTrigger] {
	return &ExitActionBehaviour[TState, TTrigger]{
		action:      action,
		description: description,
	}
}

// Execute runs the exit action.
func (b *ExitActionBehaviour[TState, TTrigger]) Execute(transition Transition[TState, TTrigger]) {
	if b.action != nil {
		b.action(transition)
	}
}

// Description returns the description of the action.
func (b *ExitActionBehaviour[TState, TTrigger]) Description() InvocationInfo {
	return b.description
}
