package statefire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statefire/statefire"
)

// observe wires entry and exit recorders onto a state so tests can assert
// the exact action sequence of a transition.
func observe(sm *statefire.StateMachine[State, Trigger], record *[]string, state State) *statefire.StateConfiguration[State, Trigger] {
	return sm.Configure(state).
		OnEntry(func(statefire.Transition[State, Trigger]) {
			*record = append(*record, "enter "+state.String())
		}).
		OnExit(func(statefire.Transition[State, Trigger]) {
			*record = append(*record, "exit "+state.String())
		})
}

func TestSubstateOf(t *testing.T) {
	t.Run("panics when the state already has a superstate", func(t *testing.T) {
		sm := statefire.NewStateMachine[State, Trigger](StateB)
		sm.Configure(StateB).SubstateOf(StateA)

		assert.PanicsWithError(t, "state 'StateB' is already a substate of 'StateA'", func() {
			sm.Configure(StateB).SubstateOf(StateC)
		})
	})

	t.Run("panics on a circular relationship", func(t *testing.T) {
		sm := statefire.NewStateMachine[State, Trigger](StateA)
		sm.Configure(StateA).SubstateOf(StateB)

		assert.PanicsWithError(t, "circular superstate relationship detected: StateB -> StateA", func() {
			sm.Configure(StateB).SubstateOf(StateA)
		})
	})

	t.Run("panics when a state is made a substate of itself", func(t *testing.T) {
		sm := statefire.NewStateMachine[State, Trigger](StateA)

		assert.PanicsWithError(t, "circular superstate relationship detected: StateA -> StateA", func() {
			sm.Configure(StateA).SubstateOf(StateA)
		})
	})
}

func TestSubstateInheritsTriggers(t *testing.T) {
	t.Run("fires a trigger handled by the superstate", func(t *testing.T) {
		sm := statefire.NewStateMachine[State, Trigger](StateB)
		sm.Configure(StateA).Permit(TriggerX, StateD)
		sm.Configure(StateB).SubstateOf(StateA)

		assert.True(t, sm.CanFire(TriggerX))
		require.NoError(t, sm.Fire(TriggerX))
		assert.Equal(t, StateD, sm.State())
	})

	t.Run("substate behaviour overrides the superstate", func(t *testing.T) {
		sm := statefire.NewStateMachine[State, Trigger](StateB)
		sm.Configure(StateA).Permit(TriggerX, StateC)
		sm.Configure(StateB).
			SubstateOf(StateA).
			Permit(TriggerX, StateD)

		require.NoError(t, sm.Fire(TriggerX))

		assert.Equal(t, StateD, sm.State())
	})

	t.Run("falls through to the superstate when the substate guard fails", func(t *testing.T) {
		sm := statefire.NewStateMachine[State, Trigger](StateB)
		sm.Configure(StateA).Permit(TriggerX, StateC)
		sm.Configure(StateB).
			SubstateOf(StateA).
			PermitIf(TriggerX, StateD, func(args ...any) bool { return false })

		require.NoError(t, sm.Fire(TriggerX))

		assert.Equal(t, StateC, sm.State())
	})

	t.Run("resolves through several levels", func(t *testing.T) {
		sm := statefire.NewStateMachine[State, Trigger](StateC)
		sm.Configure(StateA).Permit(TriggerX, StateD)
		sm.Configure(StateB).SubstateOf(StateA)
		sm.Configure(StateC).SubstateOf(StateB)

		require.NoError(t, sm.Fire(TriggerX))

		assert.Equal(t, StateD, sm.State())
	})
}

func TestIsInState(t *testing.T) {
	sm := statefire.NewStateMachine[State, Trigger](StateC)
	sm.Configure(StateB).SubstateOf(StateA)
	sm.Configure(StateC).SubstateOf(StateB)

	t.Run("true for the current state", func(t *testing.T) {
		assert.True(t, sm.IsInState(StateC))
	})

	t.Run("true for any ancestor", func(t *testing.T) {
		assert.True(t, sm.IsInState(StateB))
		assert.True(t, sm.IsInState(StateA))
	})

	t.Run("false for an unrelated state", func(t *testing.T) {
		assert.False(t, sm.IsInState(StateD))
	})
}

func TestHierarchicalEntryExit(t *testing.T) {
	t.Run("entering a substate from outside enters the superstate first", func(t *testing.T) {
		var record []string
		sm := statefire.NewStateMachine[State, Trigger](StateD)
		observe(sm, &record, StateA)
		observe(sm, &record, StateB).SubstateOf(StateA)
		observe(sm, &record, StateD).Permit(TriggerX, StateB)

		require.NoError(t, sm.Fire(TriggerX))

		assert.Equal(t, []string{"exit StateD", "enter StateA", "enter StateB"}, record)
	})

	t.Run("leaving the subtree exits up to the superstate", func(t *testing.T) {
		var record []string
		sm := statefire.NewStateMachine[State, Trigger](StateB)
		observe(sm, &record, StateA)
		observe(sm, &record, StateB).
			SubstateOf(StateA).
			Permit(TriggerX, StateD)
		observe(sm, &record, StateD)

		require.NoError(t, sm.Fire(TriggerX))

		assert.Equal(t, []string{"exit StateB", "exit StateA", "enter StateD"}, record)
	})

	t.Run("a transition between sibling substates stays inside the superstate", func(t *testing.T) {
		var record []string
		sm := statefire.NewStateMachine[State, Trigger](StateB)
		observe(sm, &record, StateA)
		observe(sm, &record, StateB).
			SubstateOf(StateA).
			Permit(TriggerX, StateC)
		observe(sm, &record, StateC).SubstateOf(StateA)

		require.NoError(t, sm.Fire(TriggerX))

		assert.Equal(t, []string{"exit StateB", "enter StateC"}, record)
	})

	t.Run("moving up to the superstate runs no superstate actions", func(t *testing.T) {
		var record []string
		sm := statefire.NewStateMachine[State, Trigger](StateB)
		observe(sm, &record, StateA)
		observe(sm, &record, StateB).
			SubstateOf(StateA).
			Permit(TriggerX, StateA)

		require.NoError(t, sm.Fire(TriggerX))

		assert.Equal(t, StateA, sm.State())
		assert.Equal(t, []string{"exit StateB"}, record)
	})

	t.Run("reentry of a substate stays local", func(t *testing.T) {
		var record []string
		sm := statefire.NewStateMachine[State, Trigger](StateB)
		observe(sm, &record, StateA)
		observe(sm, &record, StateB).
			SubstateOf(StateA).
			PermitReentry(TriggerX)

		require.NoError(t, sm.Fire(TriggerX))

		assert.Equal(t, StateB, sm.State())
		assert.Equal(t, []string{"exit StateB", "enter StateB"}, record)
	})
}
