package statefire_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statefire/statefire"
)

func TestValidateParameters(t *testing.T) {
	descriptor := statefire.NewTriggerWithParameters(TriggerX, reflect.TypeOf(""), reflect.TypeOf(0))

	t.Run("accepts matching arguments", func(t *testing.T) {
		assert.NoError(t, descriptor.ValidateParameters([]any{"order-42", 7}))
	})

	t.Run("accepts nil at any position", func(t *testing.T) {
		assert.NoError(t, descriptor.ValidateParameters([]any{nil, 7}))
	})

	t.Run("rejects too many arguments", func(t *testing.T) {
		err := descriptor.ValidateParameters([]any{"order-42", 7, true})

		var conversionErr *statefire.ParameterConversionError
		require.ErrorAs(t, err, &conversionErr)
		assert.EqualError(t, err, "too many parameters have been supplied. Expected 2 but got 3")
	})

	t.Run("rejects too few arguments", func(t *testing.T) {
		err := descriptor.ValidateParameters([]any{"order-42"})

		assert.EqualError(t, err, "too few parameters have been supplied. Expected 2 but got 1")
	})

	t.Run("rejects a wrong argument type", func(t *testing.T) {
		err := descriptor.ValidateParameters([]any{"order-42", "seven"})

		assert.EqualError(t, err, "argument at position 1 is of type string but expected type int")
	})
}

func TestTypedTriggerDescriptors(t *testing.T) {
	t.Run("one argument", func(t *testing.T) {
		descriptor := statefire.NewTriggerWithParameters1[Trigger, string](TriggerX)

		assert.Equal(t, TriggerX, descriptor.Trigger())
		assert.Equal(t, []reflect.Type{reflect.TypeOf("")}, descriptor.ArgumentTypes())
	})

	t.Run("two arguments", func(t *testing.T) {
		descriptor := statefire.NewTriggerWithParameters2[Trigger, string, int](TriggerY)

		assert.Equal(t, TriggerY, descriptor.Trigger())
		assert.Equal(t, []reflect.Type{reflect.TypeOf(""), reflect.TypeOf(0)}, descriptor.ArgumentTypes())
	})

	t.Run("three arguments", func(t *testing.T) {
		descriptor := statefire.NewTriggerWithParameters3[Trigger, string, int, bool](TriggerZ)

		assert.Equal(t, TriggerZ, descriptor.Trigger())
		assert.Equal(t, []reflect.Type{reflect.TypeOf(""), reflect.TypeOf(0), reflect.TypeOf(false)}, descriptor.ArgumentTypes())
	})

	t.Run("interface argument types accept implementations", func(t *testing.T) {
		descriptor := statefire.NewTriggerWithParameters1[Trigger, error](TriggerX)

		assert.NoError(t, descriptor.ValidateParameters([]any{errors.New("boom")}))
		assert.Error(t, descriptor.ValidateParameters([]any{"not an error"}))
	})
}
