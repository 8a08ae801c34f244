package statefire

import "fmt"

// InvalidOperationError indicates an operation that is not valid given the
// current configuration or state.
type InvalidOperationError struct {
	Message string
}

func (e *InvalidOperationError) Error() string {
	return e.Message
}

// ArgumentError indicates an invalid argument was passed.
type ArgumentError struct {
	ParamName string
	Message   string
}

func (e *ArgumentError) Error() string {
	if e.ParamName != "" {
		return fmt.Sprintf("%s (parameter: %s)", e.Message, e.ParamName)
	}
	return e.Message
}

// InvalidTransitionError is returned when a trigger is fired from a state
// that has no active behaviour for it, neither locally nor in any superstate.
type InvalidTransitionError struct {
	State   any
	Trigger any
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf(
		"No valid leaving transitions are permitted from state '%v' for trigger '%v'. Consider ignoring the trigger.",
		e.State, e.Trigger)
}

// ParameterConversionError indicates a trigger argument did not match the
// registered parameter types.
type ParameterConversionError struct {
	Message string
}

func (e *ParameterConversionError) Error() string {
	return e.Message
}
