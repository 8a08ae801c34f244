package statefire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statefire/statefire"
)

func TestGuardCondition(t *testing.T) {
	t.Run("met when the predicate passes", func(t *testing.T) {
		condition := statefire.NewGuardCondition(
			func(args ...any) bool { return true },
			statefire.CreateInvocationInfo(nil, ""),
		)

		assert.True(t, condition.IsMet())
	})

	t.Run("not met when the predicate fails", func(t *testing.T) {
		condition := statefire.NewGuardCondition(
			func(args ...any) bool { return false },
			statefire.CreateInvocationInfo(nil, ""),
		)

		assert.False(t, condition.IsMet())
	})

	t.Run("nil predicate is always met", func(t *testing.T) {
		condition := statefire.NewGuardCondition(nil, statefire.CreateInvocationInfo(nil, ""))

		assert.True(t, condition.IsMet())
	})

	t.Run("receives the trigger arguments", func(t *testing.T) {
		condition := statefire.NewGuardCondition(
			func(args ...any) bool { return args[0].(int) > 10 },
			statefire.CreateInvocationInfo(nil, ""),
		)

		assert.True(t, condition.IsMet(11))
		assert.False(t, condition.IsMet(10))
	})

	t.Run("description prefers the user-specified text", func(t *testing.T) {
		guard := func(args ...any) bool { return true }
		condition := statefire.NewGuardCondition(guard, statefire.CreateInvocationInfo(guard, "door is closed"))

		assert.Equal(t, "door is closed", condition.Description())
	})

	t.Run("anonymous predicate falls back to the default description", func(t *testing.T) {
		guard := func(args ...any) bool { return true }
		condition := statefire.NewGuardCondition(guard, statefire.CreateInvocationInfo(guard, ""))

		assert.Equal(t, statefire.DefaultFunctionDescription, condition.Description())
	})
}

func TestTransitionGuard(t *testing.T) {
	t.Run("empty guard always passes", func(t *testing.T) {
		assert.True(t, statefire.EmptyTransitionGuard.ConditionsMet())
		assert.True(t, statefire.EmptyTransitionGuard.IsEmpty())
	})

	t.Run("nil predicate yields the empty guard", func(t *testing.T) {
		guard := statefire.NewTransitionGuard(nil, "never evaluated")

		assert.True(t, guard.IsEmpty())
		assert.True(t, guard.ConditionsMet())
	})

	t.Run("conditions met when the predicate passes", func(t *testing.T) {
		guard := statefire.NewTransitionGuard(func(args ...any) bool {
			return args[0].(bool)
		}, "")

		assert.False(t, guard.IsEmpty())
		assert.True(t, guard.ConditionsMet(true))
		assert.False(t, guard.ConditionsMet(false))
	})

	t.Run("unmet conditions lists the failing descriptions", func(t *testing.T) {
		guard := statefire.NewTransitionGuard(func(args ...any) bool {
			return args[0].(bool)
		}, "door is closed")

		assert.Empty(t, guard.UnmetConditions(true))

		unmet := guard.UnmetConditions(false)
		require.Len(t, unmet, 1)
		assert.Equal(t, "door is closed", unmet[0])
	})
}
