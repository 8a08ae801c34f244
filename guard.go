package statefire

// GuardFunc is a predicate evaluated against the trigger arguments to decide
// whether a trigger behaviour is active.
type GuardFunc func(args ...any) bool

// GuardCondition represents a single guard condition with its method description.
type GuardCondition struct {
	// Guard is the predicate. A nil guard is always met.
	Guard GuardFunc

	// methodDescription contains information about the guard method.
	methodDescription InvocationInfo
}

// NewGuardCondition creates a new guard condition.
func NewGuardCondition(guard GuardFunc, description InvocationInfo) GuardCondition {
	return GuardCondition{
		Guard:             guard,
		methodDescription: description,
	}
}

// Description returns the description of the guard method.
func (g GuardCondition) Description() string {
	return g.methodDescription.Description()
}

// MethodDescription returns the full method description.
func (g GuardCondition) MethodDescription() InvocationInfo {
	return g.methodDescription
}

// IsMet returns true if the guard condition is met.
func (g GuardCondition) IsMet(args ...any) bool {
	if g.Guard == nil {
		return true
	}
	return g.Guard(args...)
}

// TransitionGuard contains the guard conditions that must all be met for a
// trigger behaviour to be active.
type TransitionGuard struct {
	Conditions []GuardCondition
}

// EmptyTransitionGuard is a transition guard with no conditions (always passes).
var EmptyTransitionGuard = TransitionGuard{Conditions: []GuardCondition{}}

// NewTransitionGuard creates a new transition guard from a guard function.
// A nil guard yields the empty guard.
func NewTransitionGuard(guard GuardFunc, description string) TransitionGuard {
	if guard == nil {
		return EmptyTransitionGuard
	}
	return TransitionGuard{
		Conditions: []GuardCondition{
			NewGuardCondition(guard, CreateInvocationInfo(guard, description)),
		},
	}
}

// ConditionsMet returns true if all guard conditions are met.
func (tg TransitionGuard) ConditionsMet(args ...any) bool {
	for _, c := range tg.Conditions {
		if !c.IsMet(args...) {
			return false
		}
	}
	return true
}

// UnmetConditions returns the descriptions of all guard conditions that are
// not met for the given arguments.
func (tg TransitionGuard) UnmetConditions(args ...any) []string {
	var unmet []string
	for _, c := range tg.Conditions {
		if !c.IsMet(args...) {
			unmet = append(unmet, c.Description())
		}
	}
	return unmet
}

// IsEmpty returns true if the transition guard has no conditions.
func (tg TransitionGuard) IsEmpty() bool {
	return len(tg.Conditions) == 0
}
