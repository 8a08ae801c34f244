package statefire

import (
	"fmt"
	"reflect"
)

// TriggerWithParameters associates configured parameter types with an
// underlying trigger value. Once registered on a StateMachineConfig, every
// fire of the trigger is validated against these types before any other work.
type TriggerWithParameters[TTrigger comparable] struct {
	underlyingTrigger TTrigger
	argumentTypes     []reflect.Type
}

// NewTriggerWithParameters creates a new configured trigger.
func NewTriggerWithParameters[TTrigger comparable](underlyingTrigger TTrigger, argumentTypes ...reflect.Type) *TriggerWithParameters[TTrigger] {
	return &TriggerWithParameters[TTrigger]{
		underlyingTrigger: underlyingTrigger,
		argumentTypes:     argumentTypes,
	}
}

// ArgumentTypes returns the argument types expected by this trigger.
func (t *TriggerWithParameters[TTrigger]) ArgumentTypes() []reflect.Type {
	return t.argumentTypes
}

// Trigger returns the underlying trigger value.
func (t *TriggerWithParameters[TTrigger]) Trigger() TTrigger {
	return t.underlyingTrigger
}

// ValidateParameters checks the supplied arguments against the configured
// types in count and in positional type. A nil argument is accepted at any
// position.
func (t *TriggerWithParameters[TTrigger]) ValidateParameters(args []any) error {
	if len(args) > len(t.argumentTypes) {
		return &ParameterConversionError{
			Message: fmt.Sprintf("too many parameters have been supplied. Expected %d but got %d", len(t.argumentTypes), len(args)),
		}
	}
	if len(args) < len(t.argumentTypes) {
		return &ParameterConversionError{
			Message: fmt.Sprintf("too few parameters have been supplied. Expected %d but got %d", len(t.argumentTypes), len(args)),
		}
	}

	for i, expectedType := range t.argumentTypes {
		arg := args[i]
		if arg == nil {
			continue
		}
		argType := reflect.TypeOf(arg)
		if !argType.AssignableTo(expectedType) {
			return &ParameterConversionError{
				Message: fmt.Sprintf("argument at position %d is of type %v but expected type %v", i, argType, expectedType),
			}
		}
	}

	return nil
}

// sameArgumentTypes reports whether both descriptors declare the identical
// parameter shape.
func (t *TriggerWithParameters[TTrigger]) sameArgumentTypes(other *TriggerWithParameters[TTrigger]) bool {
	if len(t.argumentTypes) != len(other.argumentTypes) {
		return false
	}
	for i, at := range t.argumentTypes {
		if at != other.argumentTypes[i] {
			return false
		}
	}
	return true
}

// typeOf resolves the reflect.Type of a type parameter, including interface
// types, which reflect.TypeOf on a zero value cannot see.
func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// TriggerWithParameters1 is a configured trigger with one required argument.
type TriggerWithParameters1[TTrigger comparable, TArg0 any] struct {
	*TriggerWithParameters[TTrigger]
}

// NewTriggerWithParameters1 creates a new configured trigger with one argument.
func NewTriggerWithParameters1[TTrigger comparable, TArg0 any](underlyingTrigger TTrigger) *TriggerWithParameters1[TTrigger, TArg0] {
	return &TriggerWithParameters1[TTrigger, TArg0]{
		TriggerWithParameters: NewTriggerWithParameters(underlyingTrigger, typeOf[TArg0]()),
	}
}

// TriggerWithParameters2 is a configured trigger with two required arguments.
type TriggerWithParameters2[TTrigger comparable, TArg0, TArg1 any] struct {
	*TriggerWithParameters[TTrigger]
}

// NewTriggerWithParameters2 creates a new configured trigger with two arguments.
func NewTriggerWithParameters2[TTrigger comparable, TArg0, TArg1 any](underlyingTrigger TTrigger) *TriggerWithParameters2[TTrigger, TArg0, TArg1] {
	return &TriggerWithParameters2[TTrigger, TArg0, TArg1]{
		TriggerWithParameters: NewTriggerWithParameters(underlyingTrigger, typeOf[TArg0](), typeOf[TArg1]()),
	}
}

// TriggerWithParameters3 is a configured trigger with three required arguments.
type TriggerWithParameters3[TTrigger comparable, TArg0, TArg1, TArg2 any] struct {
	*TriggerWithParameters[TTrigger]
}

// NewTriggerWithParameters3 creates a new configured trigger with three arguments.
func NewTriggerWithParameters3[TTrigger comparable, TArg0, TArg1, TArg2 any](underlyingTrigger TTrigger) *TriggerWithParameters3[TTrigger, TArg0, TArg1, TArg2] {
	return &TriggerWithParameters3[TTrigger, TArg0, TArg1, TArg2]{
		TriggerWithParameters: NewTriggerWithParameters(underlyingTrigger, typeOf[TArg0](), typeOf[TArg1](), typeOf[TArg2]()),
	}
}
