package graph

import (
	"github.com/statefire/statefire"
)

// Style is an output format for a state graph.
type Style interface {
	// GetPrefix returns the text that starts a new graph.
	GetPrefix() string

	// GetInitialTransition returns the text for the initial state marker.
	GetInitialTransition(initialState *statefire.StateInfo) string

	// FormatOneState formats a single state.
	FormatOneState(state *State) string

	// FormatOneCluster formats a superstate and its substates.
	FormatOneCluster(superState *SuperState) string

	// FormatOneDecisionNode formats a choice node.
	FormatOneDecisionNode(nodeName, label string) string

	// FormatAllTransitions formats all transitions.
	FormatAllTransitions(transitions []*Transition, decisions []*Decision) []string

	// FormatOneTransition formats a single transition.
	FormatOneTransition(
		sourceNodeName, trigger string,
		actions []string,
		destinationNodeName string,
		guards []string,
	) string
}

// FormatTransitions renders all transitions with the given style. Shared by
// the style implementations.
func FormatTransitions(style Style, transitions []*Transition, decisions []*Decision) []string {
	var lines []string

	for _, transit := range transitions {
		if line := formatSingleTransition(style, transit); line != "" {
			lines = append(lines, line)
		}
	}

	for _, decision := range decisions {
		lines = append(lines, formatDecisionEdges(style, decision)...)
	}

	return lines
}

// formatDecisionEdges renders the edges around a choice node. The incoming
// edge carries the trigger and guards; each outgoing edge carries the
// criterion for choosing that destination, when one was declared.
func formatDecisionEdges(style Style, decision *Decision) []string {
	var lines []string

	for _, transit := range decision.Arriving {
		lines = append(lines, style.FormatOneTransition(
			transit.SourceState.NodeName,
			transit.Trigger.String(),
			nil,
			decision.NodeName,
			guardLabels(transit),
		))
	}

	for _, transit := range decision.Leaving {
		var criteria []string
		if transit.Criterion != "" {
			criteria = append(criteria, transit.Criterion)
		}
		lines = append(lines, style.FormatOneTransition(
			decision.NodeName,
			transit.Trigger.String(),
			entryActionLabels(transit.Transition),
			transit.DestinationState.NodeName,
			criteria,
		))
	}

	return lines
}

func formatSingleTransition(style Style, transit *Transition) string {
	if transit.SourceState == transit.DestinationState {
		return formatStayTransition(style, transit)
	}
	if transit.DestinationState != nil {
		return formatRegularTransition(style, transit)
	}
	return ""
}

func formatStayTransition(style Style, transit *Transition) string {
	// Ignored triggers stay without running entry actions.
	var actions []string
	if transit.ExecuteEntryExitActions {
		actions = entryActionLabels(transit)
	}

	return style.FormatOneTransition(
		transit.SourceState.NodeName,
		transit.Trigger.String(),
		actions,
		transit.SourceState.NodeName,
		guardLabels(transit),
	)
}

func formatRegularTransition(style Style, transit *Transition) string {
	return style.FormatOneTransition(
		transit.SourceState.NodeName,
		transit.Trigger.String(),
		entryActionLabels(transit),
		transit.DestinationState.NodeName,
		guardLabels(transit),
	)
}

func entryActionLabels(transit *Transition) []string {
	var actions []string
	for _, act := range transit.DestinationEntryActions {
		actions = append(actions, act.Description())
	}
	return actions
}

func guardLabels(transit *Transition) []string {
	var guards []string
	for _, g := range transit.Guards {
		guards = append(guards, g.Description())
	}
	return guards
}
