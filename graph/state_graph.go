package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/statefire/statefire"
)

// StateGraph is the symbolic form of a machine configuration, ready to be
// rendered by a Style.
type StateGraph struct {
	// InitialState is the initial state of the machine.
	InitialState *statefire.StateInfo

	// States contains all states in the graph, indexed by state name.
	States map[string]*State

	// Transitions contains all transitions in the graph.
	Transitions []*Transition

	// Decisions contains the choice nodes created for dynamic transitions.
	Decisions []*Decision
}

// NewStateGraph builds a state graph from state machine info.
func NewStateGraph(machineInfo *statefire.StateMachineInfo) *StateGraph {
	sg := &StateGraph{
		InitialState: machineInfo.InitialState,
		States:       make(map[string]*State),
	}

	sg.addSuperstates(machineInfo)
	sg.addSingleStates(machineInfo)
	sg.addTransitions(machineInfo)
	sg.bindTriggerFilteredEntryActions(machineInfo)

	return sg
}

// addSuperstates walks the hierarchy roots and adds each superstate with its
// substate subtree.
func (sg *StateGraph) addSuperstates(machineInfo *statefire.StateMachineInfo) {
	for _, stateInfo := range machineInfo.States {
		if len(stateInfo.Substates) > 0 && stateInfo.Superstate == nil {
			state := sg.createSuperState(stateInfo)
			sg.States[stateName(stateInfo)] = state.State
			sg.addSubstates(state, stateInfo.Substates)
		}
	}
}

func (sg *StateGraph) createSuperState(stateInfo *statefire.StateInfo) *SuperState {
	return &SuperState{
		State: &State{
			StateName:    stateName(stateInfo),
			NodeName:     stateName(stateInfo),
			EntryActions: unfilteredEntryActionDescriptions(stateInfo),
			ExitActions:  exitActionDescriptions(stateInfo),
			StateInfo:    stateInfo,
		},
		SubStates: make([]*State, 0),
	}
}

func (sg *StateGraph) addSubstates(superState *SuperState, substates []*statefire.StateInfo) {
	for _, subStateInfo := range substates {
		name := stateName(subStateInfo)
		if _, exists := sg.States[name]; exists {
			continue
		}

		if len(subStateInfo.Substates) > 0 {
			sub := sg.createSuperState(subStateInfo)
			sg.States[name] = sub.State
			superState.SubStates = append(superState.SubStates, sub.State)
			sub.State.SuperState = superState
			sg.addSubstates(sub, subStateInfo.Substates)
		} else {
			sub := &State{
				StateName:    name,
				NodeName:     name,
				EntryActions: unfilteredEntryActionDescriptions(subStateInfo),
				ExitActions:  exitActionDescriptions(subStateInfo),
				StateInfo:    subStateInfo,
			}
			sg.States[name] = sub
			superState.SubStates = append(superState.SubStates, sub)
			sub.SuperState = superState
		}
	}
}

// addSingleStates adds the states that aren't part of any hierarchy.
func (sg *StateGraph) addSingleStates(machineInfo *statefire.StateMachineInfo) {
	for _, stateInfo := range machineInfo.States {
		name := stateName(stateInfo)
		if _, exists := sg.States[name]; !exists {
			sg.States[name] = &State{
				StateName:    name,
				NodeName:     name,
				EntryActions: unfilteredEntryActionDescriptions(stateInfo),
				ExitActions:  exitActionDescriptions(stateInfo),
				StateInfo:    stateInfo,
			}
		}
	}
}

func (sg *StateGraph) addTransitions(machineInfo *statefire.StateMachineInfo) {
	for _, stateInfo := range machineInfo.States {
		fromState := sg.States[stateName(stateInfo)]

		for _, fix := range stateInfo.FixedTransitions {
			toState := sg.States[stateName(fix.DestinationState)]

			if fromState == toState {
				// Reentry renders as a self-loop that runs entry actions.
				stay := &StayTransition{
					Transition: &Transition{
						Trigger:                 fix.GetTrigger(),
						SourceState:             fromState,
						DestinationState:        toState,
						Guards:                  fix.GetGuardConditions(),
						ExecuteEntryExitActions: true,
					},
				}
				sg.Transitions = append(sg.Transitions, stay.Transition)
				fromState.Leaving = append(fromState.Leaving, stay.Transition)
				fromState.Arriving = append(fromState.Arriving, stay.Transition)

				for _, action := range stateInfo.EntryActions {
					if action.FromTrigger == nil {
						stay.DestinationEntryActions = append(stay.DestinationEntryActions, action)
					}
				}
			} else {
				trans := &FixedTransition{
					Transition: &Transition{
						Trigger:                 fix.GetTrigger(),
						SourceState:             fromState,
						DestinationState:        toState,
						Guards:                  fix.GetGuardConditions(),
						ExecuteEntryExitActions: true,
					},
				}
				sg.Transitions = append(sg.Transitions, trans.Transition)
				fromState.Leaving = append(fromState.Leaving, trans.Transition)
				toState.Arriving = append(toState.Arriving, trans.Transition)
			}
		}

		for _, dyn := range stateInfo.DynamicTransitions {
			decide := &Decision{
				NodeName: fmt.Sprintf("Decision%d", len(sg.Decisions)+1),
				Method:   dyn.DestinationStateSelectorDescription,
			}
			sg.Decisions = append(sg.Decisions, decide)

			// Decision edges are kept on the node itself; the styles render
			// them after the regular transitions.
			into := &Transition{
				Trigger:                 dyn.GetTrigger(),
				SourceState:             fromState,
				Guards:                  dyn.GetGuardConditions(),
				ExecuteEntryExitActions: true,
			}
			fromState.Leaving = append(fromState.Leaving, into)
			decide.Arriving = append(decide.Arriving, into)

			for _, possibleDest := range dyn.PossibleDestinationStates {
				toState, exists := sg.States[possibleDest.DestinationState]
				if !exists {
					continue
				}
				edge := &DynamicTransition{
					Transition: &Transition{
						Trigger:                 dyn.GetTrigger(),
						SourceState:             fromState,
						DestinationState:        toState,
						ExecuteEntryExitActions: true,
					},
					Criterion: possibleDest.Criterion,
				}
				decide.Leaving = append(decide.Leaving, edge)
				toState.Arriving = append(toState.Arriving, edge.Transition)
			}
		}

		for _, ignored := range stateInfo.IgnoredTriggers {
			stay := &StayTransition{
				Transition: &Transition{
					Trigger:                 ignored.GetTrigger(),
					SourceState:             fromState,
					DestinationState:        fromState,
					Guards:                  ignored.GetGuardConditions(),
					ExecuteEntryExitActions: false,
				},
			}
			sg.Transitions = append(sg.Transitions, stay.Transition)
			fromState.Leaving = append(fromState.Leaving, stay.Transition)
			fromState.Arriving = append(fromState.Arriving, stay.Transition)
		}
	}
}

// bindTriggerFilteredEntryActions attaches trigger-bound entry actions to
// the incoming transitions that carry their trigger.
func (sg *StateGraph) bindTriggerFilteredEntryActions(machineInfo *statefire.StateMachineInfo) {
	for _, stateInfo := range machineInfo.States {
		state := sg.States[stateName(stateInfo)]

		for _, entryAction := range stateInfo.EntryActions {
			if entryAction.FromTrigger == nil {
				continue
			}
			fromTrigger := fmt.Sprintf("%v", entryAction.FromTrigger)
			for _, transit := range state.Arriving {
				if transit.ExecuteEntryExitActions && transit.Trigger.String() == fromTrigger {
					transit.DestinationEntryActions = append(transit.DestinationEntryActions, entryAction)
				}
			}
		}
	}
}

func unfilteredEntryActionDescriptions(stateInfo *statefire.StateInfo) []string {
	var descriptions []string
	for _, action := range stateInfo.EntryActions {
		if action.FromTrigger == nil {
			descriptions = append(descriptions, action.Description())
		}
	}
	return descriptions
}

func exitActionDescriptions(stateInfo *statefire.StateInfo) []string {
	var descriptions []string
	for _, action := range stateInfo.ExitActions {
		descriptions = append(descriptions, action.Description())
	}
	return descriptions
}

func stateName(stateInfo *statefire.StateInfo) string {
	return fmt.Sprintf("%v", stateInfo.UnderlyingState)
}

// ToGraph renders the state graph with the given style.
func (sg *StateGraph) ToGraph(style Style) string {
	var sb strings.Builder

	sb.WriteString(style.GetPrefix())

	sortedStateNames := sg.sortedStateNames()

	// Clusters first, then standalone states, then decision nodes.
	for _, name := range sortedStateNames {
		state := sg.States[name]
		if superState, ok := sg.asSuperState(state); ok {
			sb.WriteString(style.FormatOneCluster(superState))
		}
	}

	for _, name := range sortedStateNames {
		state := sg.States[name]
		if _, ok := sg.asSuperState(state); ok {
			continue
		}
		if state.SuperState != nil {
			continue
		}
		sb.WriteString(style.FormatOneState(state))
	}

	for _, dec := range sg.Decisions {
		sb.WriteString(style.FormatOneDecisionNode(dec.NodeName, dec.Method.Description()))
	}

	for _, line := range style.FormatAllTransitions(sg.sortedTransitions(), sg.Decisions) {
		sb.WriteString("\n")
		sb.WriteString(line)
	}

	sb.WriteString(style.GetInitialTransition(sg.InitialState))

	return sb.String()
}

func (sg *StateGraph) sortedStateNames() []string {
	names := make([]string, 0, len(sg.States))
	for name := range sg.States {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sortedTransitions orders edges by source, destination, then trigger so the
// rendered output is stable.
func (sg *StateGraph) sortedTransitions() []*Transition {
	sorted := make([]*Transition, len(sg.Transitions))
	copy(sorted, sg.Transitions)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, tj := sorted[i], sorted[j]
		if a, b := transitionEndpoint(ti.SourceState), transitionEndpoint(tj.SourceState); a != b {
			return a < b
		}
		if a, b := transitionEndpoint(ti.DestinationState), transitionEndpoint(tj.DestinationState); a != b {
			return a < b
		}
		return ti.Trigger.String() < tj.Trigger.String()
	})
	return sorted
}

func transitionEndpoint(state *State) string {
	if state == nil {
		return ""
	}
	return state.StateName
}

func (sg *StateGraph) asSuperState(state *State) (*SuperState, bool) {
	if state.StateInfo != nil && len(state.StateInfo.Substates) > 0 {
		return &SuperState{
			State:     state,
			SubStates: sg.subStatesOf(state),
		}, true
	}
	return nil, false
}

func (sg *StateGraph) subStatesOf(state *State) []*State {
	var substates []*State
	if state.StateInfo != nil {
		for _, subInfo := range state.StateInfo.Substates {
			if sub, exists := sg.States[stateName(subInfo)]; exists {
				substates = append(substates, sub)
			}
		}
	}
	return substates
}
