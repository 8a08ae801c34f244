// Package statefire provides a generic hierarchical state machine library
// for Go, with a fluent API for configuring states, triggers, and actions:
//
//   - Generic types for states and triggers
//   - Guard conditions for conditional transitions
//   - Entry and exit actions, optionally filtered by trigger
//   - Hierarchical states (substates and superstates)
//   - Parameterized triggers with typed argument validation
//   - Dynamic transitions routed by trigger arguments
//   - Reentry and ignored triggers
//   - Externally stored current state for persistence
//   - Introspection and graph generation
//
// # Basic Usage
//
// Create a state machine with an initial state:
//
//	sm := statefire.NewStateMachine[State, Trigger](InitialState)
//
// Configure states with transitions:
//
//	sm.Configure(StateA).
//	    Permit(TriggerX, StateB).
//	    OnEntry(func(t statefire.Transition[State, Trigger]) { fmt.Println("entering A") })
//
// Fire triggers to cause transitions:
//
//	err := sm.Fire(TriggerX)
//
// # Guards
//
// Add conditions to transitions. When several guarded transitions share a
// trigger, the first declared whose guard passes wins:
//
//	sm.Configure(StateA).
//	    PermitIf(TriggerX, StateB, func(args ...any) bool { return someCondition })
//
// # Hierarchical States
//
// Create state hierarchies:
//
//	sm.Configure(StateB).SubstateOf(StateA)
//
// # Shared Configuration
//
// Configure once, run many machines over the same configuration, each with
// its own current state:
//
//	cfg := statefire.NewStateMachineConfig[State, Trigger]()
//	cfg.Configure(StateA).Permit(TriggerX, StateB)
//	sm1 := statefire.NewStateMachineWithConfig(StateA, cfg)
//	sm2 := statefire.NewStateMachineWithConfig(StateB, cfg)
//
// # Graph Generation
//
// Export to DOT or Mermaid format:
//
//	import "github.com/statefire/statefire/graph"
//	dot := graph.UmlDotGraph(sm.Info())
package statefire
