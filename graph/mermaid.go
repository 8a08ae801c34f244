package graph

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/statefire/statefire"
)

// MermaidGraphDirection specifies the flow direction of a Mermaid diagram.
type MermaidGraphDirection int

const (
	// TopToBottom flows from top to bottom.
	TopToBottom MermaidGraphDirection = iota
	// BottomToTop flows from bottom to top.
	BottomToTop
	// LeftToRight flows from left to right.
	LeftToRight
	// RightToLeft flows from right to left.
	RightToLeft
)

func (d MermaidGraphDirection) code() string {
	switch d {
	case BottomToTop:
		return "BT"
	case LeftToRight:
		return "LR"
	case RightToLeft:
		return "RL"
	default:
		return "TB"
	}
}

// MermaidGraphStyle generates Mermaid state diagrams.
type MermaidGraphStyle struct {
	graph     *StateGraph
	direction MermaidGraphDirection
	aliases   map[string]string
}

// NewMermaidGraphStyle creates a new Mermaid graph style.
func NewMermaidGraphStyle(graph *StateGraph, direction MermaidGraphDirection) *MermaidGraphStyle {
	s := &MermaidGraphStyle{
		graph:     graph,
		direction: direction,
		aliases:   make(map[string]string),
	}
	s.assignAliases()
	return s
}

// GetPrefix returns the text that starts a new Mermaid diagram, including
// display aliases for state names Mermaid cannot use as identifiers.
func (s *MermaidGraphStyle) GetPrefix() string {
	var sb strings.Builder
	sb.WriteString("stateDiagram-v2")
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("\tdirection %s", s.direction.code()))

	for _, stateName := range s.sortedStateNames() {
		if alias := s.aliases[stateName]; alias != stateName {
			sb.WriteString("\n")
			sb.WriteString(fmt.Sprintf("\t%s : %s", alias, stateName))
		}
	}

	return sb.String()
}

// FormatOneCluster formats a superstate and its substates.
func (s *MermaidGraphStyle) FormatOneCluster(superState *SuperState) string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("\tstate %s {\n", s.aliasOf(superState.StateName)))

	for _, subState := range superState.SubStates {
		sb.WriteString(fmt.Sprintf("\t\t%s\n", s.aliasOf(subState.StateName)))
	}

	sb.WriteString("\t}")
	return sb.String()
}

// FormatOneState formats a single state. Mermaid needs no explicit
// declaration for plain states.
func (s *MermaidGraphStyle) FormatOneState(_ *State) string {
	return ""
}

// FormatOneDecisionNode formats a choice node.
func (s *MermaidGraphStyle) FormatOneDecisionNode(nodeName, _ string) string {
	return fmt.Sprintf("\n\tstate %s <<choice>>", nodeName)
}

// FormatAllTransitions formats all transitions.
func (s *MermaidGraphStyle) FormatAllTransitions(
	transitions []*Transition,
	decisions []*Decision,
) []string {
	return FormatTransitions(s, transitions, decisions)
}

// FormatOneTransition formats a single transition.
func (s *MermaidGraphStyle) FormatOneTransition(
	sourceNodeName, trigger string,
	actions []string,
	destinationNodeName string,
	guards []string,
) string {
	var label strings.Builder

	label.WriteString(trigger)

	if len(actions) > 0 {
		label.WriteString(" / ")
		label.WriteString(strings.Join(actions, ", "))
	}

	for _, info := range guards {
		if label.Len() > 0 {
			label.WriteString(" ")
		}
		label.WriteString("[")
		label.WriteString(info)
		label.WriteString("]")
	}

	return fmt.Sprintf("\t%s --> %s : %s",
		s.aliasOf(sourceNodeName), s.aliasOf(destinationNodeName), label.String())
}

// GetInitialTransition returns the text for the initial state marker.
func (s *MermaidGraphStyle) GetInitialTransition(initialState *statefire.StateInfo) string {
	if initialState == nil {
		return ""
	}

	initialStateName := fmt.Sprintf("%v", initialState.UnderlyingState)
	return fmt.Sprintf("\n[*] --> %s", s.aliasOf(initialStateName))
}

// assignAliases picks a Mermaid-safe identifier for every state. Sanitized
// names that collide with an existing state or another alias get a numeric
// suffix.
func (s *MermaidGraphStyle) assignAliases() {
	taken := make(map[string]bool, len(s.graph.States))
	for name := range s.graph.States {
		taken[name] = true
	}

	for _, stateName := range s.sortedStateNames() {
		alias := sanitizeStateName(stateName)
		if alias == stateName {
			s.aliases[stateName] = stateName
			continue
		}
		if alias == "" {
			alias = "state"
		}

		candidate := alias
		for count := 1; taken[candidate]; count++ {
			candidate = fmt.Sprintf("%s_%d", alias, count)
		}
		taken[candidate] = true
		s.aliases[stateName] = candidate
	}
}

// aliasOf returns the Mermaid identifier for a state name. Node names that
// aren't states, such as decision nodes, pass through unchanged.
func (s *MermaidGraphStyle) aliasOf(stateName string) string {
	if alias, ok := s.aliases[stateName]; ok {
		return alias
	}
	return stateName
}

func (s *MermaidGraphStyle) sortedStateNames() []string {
	names := make([]string, 0, len(s.graph.States))
	for name := range s.graph.States {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sanitizeStateName strips characters that produce invalid Mermaid
// identifiers.
func sanitizeStateName(name string) string {
	var result strings.Builder
	for _, c := range name {
		if !unicode.IsSpace(c) && c != ':' && c != '-' {
			result.WriteRune(c)
		}
	}
	return result.String()
}

// MermaidGraph renders a machine configuration as a Mermaid state diagram.
func MermaidGraph(machineInfo *statefire.StateMachineInfo, direction MermaidGraphDirection) string {
	g := NewStateGraph(machineInfo)
	return g.ToGraph(NewMermaidGraphStyle(g, direction))
}
