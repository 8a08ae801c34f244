package statefire

// Named filters for entry and exit actions. Each wraps a plain action into a
// transition action that only runs when the transition matches, so common
// conditions read declaratively at the configuration site:
//
//	cfg.Configure(Connected).
//		OnExit(WhenTriggeredBy[State, Trigger](HungUp, stopCallTimer))

// WhenTriggeredBy restricts an action to transitions caused by the given
// trigger. The action does not run on the synthetic initial transition.
func WhenTriggeredBy[TState, TTrigger comparable](trigger TTrigger, action func()) func(Transition[TState, TTrigger]) {
	return func(t Transition[TState, TTrigger]) {
		if !t.IsInitial() && t.Trigger == trigger {
			action()
		}
	}
}

// WhenNotTriggeredBy restricts an action to transitions caused by any
// trigger other than the given one.
func WhenNotTriggeredBy[TState, TTrigger comparable](trigger TTrigger, action func()) func(Transition[TState, TTrigger]) {
	return func(t Transition[TState, TTrigger]) {
		if t.IsInitial() || t.Trigger != trigger {
			action()
		}
	}
}

// WhenTransitioningTo restricts an action to transitions whose destination
// is the given state. Useful on exit actions that should only run when the
// state is left in a particular direction.
func WhenTransitioningTo[TState, TTrigger comparable](state TState, action func()) func(Transition[TState, TTrigger]) {
	return func(t Transition[TState, TTrigger]) {
		if t.Destination == state {
			action()
		}
	}
}
