package statefire

import (
	"fmt"
	"log/slog"
	"strings"
)

// StateMachine models the behaviour of one stateful entity. The machine
// itself holds no configuration: it reads trigger behaviours from its
// StateMachineConfig and keeps only the current state, via an accessor and
// mutator pair that may be backed by external storage.
//
// Firing is synchronous and runs on the caller's goroutine. A machine is not
// safe for concurrent use; give each goroutine its own machine over a shared
// configuration instead.
type StateMachine[TState, TTrigger comparable] struct {
	config *StateMachineConfig[TState, TTrigger]

	// stateAccessor retrieves the current state.
	stateAccessor func() TState

	// stateMutator commits a new current state.
	stateMutator func(TState)

	// unhandledTriggerAction is the policy applied when a fired trigger has
	// no active behaviour. Nil means the default policy, which returns an
	// InvalidTransitionError.
	unhandledTriggerAction func(state TState, trigger TTrigger) error

	onTransitionedEvent        *transitionEvent[TState, TTrigger]
	onTransitionCompletedEvent *transitionEvent[TState, TTrigger]

	initialState TState

	logger *slog.Logger
}

// transitionEvent holds transition callbacks in registration order.
type transitionEvent[TState, TTrigger comparable] struct {
	handlers []func(Transition[TState, TTrigger])
}

func (e *transitionEvent[TState, TTrigger]) register(handler func(Transition[TState, TTrigger])) {
	e.handlers = append(e.handlers, handler)
}

func (e *transitionEvent[TState, TTrigger]) invoke(transition Transition[TState, TTrigger]) {
	for _, handler := range e.handlers {
		handler(transition)
	}
}

// NewStateMachine creates a state machine with in-memory state storage and
// its own empty configuration.
func NewStateMachine[TState, TTrigger comparable](initialState TState) *StateMachine[TState, TTrigger] {
	return NewStateMachineWithConfig(initialState, NewStateMachineConfig[TState, TTrigger]())
}

// NewStateMachineWithConfig creates a state machine with in-memory state
// storage over an existing configuration. Several machines may share one
// configuration, each tracking its own current state.
func NewStateMachineWithConfig[TState, TTrigger comparable](
	initialState TState,
	config *StateMachineConfig[TState, TTrigger],
) *StateMachine[TState, TTrigger] {
	state := initialState
	return NewStateMachineWithExternalStorage(
		initialState,
		func() TState { return state },
		func(s TState) { state = s },
		config,
	)
}

// NewStateMachineWithExternalStorage creates a state machine whose current
// state lives outside the machine, behind an accessor and mutator pair. The
// mutator is called once with the initial state during construction.
func NewStateMachineWithExternalStorage[TState, TTrigger comparable](
	initialState TState,
	stateAccessor func() TState,
	stateMutator func(TState),
	config *StateMachineConfig[TState, TTrigger],
) *StateMachine[TState, TTrigger] {
	if stateAccessor == nil {
		panic(&ArgumentError{ParamName: "stateAccessor", Message: "state accessor cannot be nil"})
	}
	if stateMutator == nil {
		panic(&ArgumentError{ParamName: "stateMutator", Message: "state mutator cannot be nil"})
	}
	if config == nil {
		panic(&ArgumentError{ParamName: "config", Message: "config cannot be nil"})
	}

	sm := &StateMachine[TState, TTrigger]{
		config:                     config,
		stateAccessor:              stateAccessor,
		stateMutator:               stateMutator,
		onTransitionedEvent:        &transitionEvent[TState, TTrigger]{},
		onTransitionCompletedEvent: &transitionEvent[TState, TTrigger]{},
		initialState:               initialState,
		logger:                     slog.Default(),
	}
	sm.stateMutator(initialState)

	if config.EntryActionOfInitialStateEnabled() {
		transition := NewInitialTransition[TState, TTrigger](initialState)
		sm.representationOf(initialState).Enter(transition)
	}

	return sm
}

// State returns the current state.
func (sm *StateMachine[TState, TTrigger]) State() TState {
	return sm.stateAccessor()
}

// Config returns the configuration this machine reads from.
func (sm *StateMachine[TState, TTrigger]) Config() *StateMachineConfig[TState, TTrigger] {
	return sm.config
}

// Configure begins configuration of a state on the machine's configuration.
func (sm *StateMachine[TState, TTrigger]) Configure(state TState) *StateConfiguration[TState, TTrigger] {
	return sm.config.Configure(state)
}

// SetLogger replaces the machine's logger. A nil logger restores the
// default.
func (sm *StateMachine[TState, TTrigger]) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	sm.logger = logger
}

// Fire runs the trigger against the current state.
//
// Arguments are validated first against the trigger's registered parameter
// types, if any. Resolution then walks from the current state up the
// superstate chain looking for an active behaviour. An unhandled trigger is
// passed to the unhandled-trigger policy; an ignored one returns nil without
// side effects. Otherwise the machine exits the source state, runs the
// behaviour's action, commits the destination through the state mutator, and
// enters the destination state.
func (sm *StateMachine[TState, TTrigger]) Fire(trigger TTrigger, args ...any) error {
	if descriptor, ok := sm.config.TriggerParameters(trigger); ok {
		if err := descriptor.ValidateParameters(args); err != nil {
			return err
		}
	}

	source := sm.State()
	representation := sm.representationOf(source)

	handler := representation.FindHandler(trigger, args...)
	if handler == nil {
		sm.logger.Debug("trigger unhandled",
			slog.Any("machine", sm.config.Name()),
			slog.Any("state", source),
			slog.Any("trigger", trigger))
		if sm.unhandledTriggerAction != nil {
			return sm.unhandledTriggerAction(source, trigger)
		}
		return &InvalidTransitionError{State: source, Trigger: trigger}
	}

	destination, transitions := handler.ResultsInTransitionFrom(source, args...)
	if !transitions {
		sm.logger.Debug("trigger ignored",
			slog.Any("machine", sm.config.Name()),
			slog.Any("state", source),
			slog.Any("trigger", trigger))
		return nil
	}

	transition := NewTransition(source, destination, trigger, args...)

	representation.Exit(transition)
	handler.PerformAction(args)
	sm.stateMutator(destination)
	sm.onTransitionedEvent.invoke(transition)
	sm.representationOf(destination).Enter(transition)
	sm.onTransitionCompletedEvent.invoke(transition)

	sm.logger.Debug("transitioned",
		slog.Any("machine", sm.config.Name()),
		slog.Any("source", source),
		slog.Any("destination", destination),
		slog.Any("trigger", trigger))
	return nil
}

// CanFire returns true if the trigger can be fired from the current state
// with the given arguments.
func (sm *StateMachine[TState, TTrigger]) CanFire(trigger TTrigger, args ...any) bool {
	return sm.currentRepresentation().CanHandle(trigger, args...)
}

// PermittedTriggers returns the triggers with at least one active behaviour
// from the current state, including inherited ones. Guards are evaluated
// against the given arguments.
func (sm *StateMachine[TState, TTrigger]) PermittedTriggers(args ...any) []TTrigger {
	return sm.currentRepresentation().PermittedTriggers(args...)
}

// IsInState returns true if the current state is the specified state or a
// substate of it, at any depth.
func (sm *StateMachine[TState, TTrigger]) IsInState(state TState) bool {
	return sm.currentRepresentation().IsIncludedIn(state)
}

// OnUnhandledTrigger replaces the policy applied when a fired trigger has no
// active behaviour. The policy's return value becomes the result of Fire.
func (sm *StateMachine[TState, TTrigger]) OnUnhandledTrigger(action func(state TState, trigger TTrigger) error) {
	if action == nil {
		panic(&ArgumentError{ParamName: "action", Message: "unhandled trigger action cannot be nil"})
	}
	sm.unhandledTriggerAction = action
}

// LogUnhandledTrigger is an unhandled-trigger policy that logs a warning and
// treats the trigger as handled:
//
//	machine.OnUnhandledTrigger(machine.LogUnhandledTrigger)
func (sm *StateMachine[TState, TTrigger]) LogUnhandledTrigger(state TState, trigger TTrigger) error {
	sm.logger.Warn("unhandled trigger",
		slog.Any("machine", sm.config.Name()),
		slog.Any("state", state),
		slog.Any("trigger", trigger))
	return nil
}

// OnTransitioned registers a callback invoked after the state has been
// committed but before the destination's entry actions run.
func (sm *StateMachine[TState, TTrigger]) OnTransitioned(action func(Transition[TState, TTrigger])) {
	sm.onTransitionedEvent.register(action)
}

// OnTransitionCompleted registers a callback invoked after the destination's
// entry actions have run.
func (sm *StateMachine[TState, TTrigger]) OnTransitionCompleted(action func(Transition[TState, TTrigger])) {
	sm.onTransitionCompletedEvent.register(action)
}

func (sm *StateMachine[TState, TTrigger]) currentRepresentation() *StateRepresentation[TState, TTrigger] {
	return sm.representationOf(sm.State())
}

// representationOf returns the stored representation of a state, or a
// transient empty one for states that were never configured. The transient
// representation is not added to the configuration.
func (sm *StateMachine[TState, TTrigger]) representationOf(state TState) *StateRepresentation[TState, TTrigger] {
	if representation, ok := sm.config.Representation(state); ok {
		return representation
	}
	return NewStateRepresentation[TState, TTrigger](state)
}

// Info returns information about the machine's configuration for
// introspection and graph rendering. States appear in configuration order.
func (sm *StateMachine[TState, TTrigger]) Info() *StateMachineInfo {
	states := sm.config.States()
	stateInfos := make(map[TState]*StateInfo, len(states))
	order := make([]TState, 0, len(states))

	for _, state := range states {
		representation, _ := sm.config.Representation(state)
		stateInfos[state] = createStateInfo(representation)
		order = append(order, state)
	}

	// The initial state and states only ever named as destinations still
	// appear in the snapshot, with no behaviour of their own.
	if _, ok := stateInfos[sm.initialState]; !ok {
		stateInfos[sm.initialState] = &StateInfo{UnderlyingState: sm.initialState}
		order = append(order, sm.initialState)
	}
	for _, state := range states {
		representation, _ := sm.config.Representation(state)
		for _, destination := range fixedDestinations(representation) {
			if _, ok := stateInfos[destination]; !ok {
				stateInfos[destination] = &StateInfo{UnderlyingState: destination}
				order = append(order, destination)
			}
		}
	}

	for _, state := range states {
		representation, _ := sm.config.Representation(state)
		addStateRelationships(stateInfos[state], representation, stateInfos)
	}

	infos := make([]*StateInfo, 0, len(order))
	for _, state := range order {
		infos = append(infos, stateInfos[state])
	}

	return &StateMachineInfo{
		Name:         sm.config.Name(),
		InitialState: stateInfos[sm.initialState],
		States:       infos,
		StateType:    fmt.Sprintf("%T", sm.initialState),
		TriggerType:  fmt.Sprintf("%T", *new(TTrigger)),
	}
}

func fixedDestinations[TState, TTrigger comparable](rep *StateRepresentation[TState, TTrigger]) []TState {
	var destinations []TState
	for _, trigger := range rep.Triggers() {
		for _, behaviour := range rep.TriggerBehaviours()[trigger] {
			switch b := behaviour.(type) {
			case *TransitioningTriggerBehaviour[TState, TTrigger]:
				destinations = append(destinations, b.Destination)
			case *ReentryTriggerBehaviour[TState, TTrigger]:
				destinations = append(destinations, b.Destination)
			}
		}
	}
	return destinations
}

func createStateInfo[TState, TTrigger comparable](rep *StateRepresentation[TState, TTrigger]) *StateInfo {
	var ignoredTriggers []IgnoredTransitionInfo
	for _, trigger := range rep.Triggers() {
		for _, behaviour := range rep.TriggerBehaviours()[trigger] {
			if _, ok := behaviour.(*IgnoredTriggerBehaviour[TState, TTrigger]); ok {
				ignoredTriggers = append(ignoredTriggers, IgnoredTransitionInfo{
					transitionInfoBase: transitionInfoBase{
						Trigger:         NewTriggerInfo(trigger),
						GuardConditions: convertGuardConditions(behaviour.Guard().Conditions),
					},
				})
			}
		}
	}

	entryActions := make([]ActionInfo, len(rep.EntryActions()))
	for i, action := range rep.EntryActions() {
		var fromTrigger any
		if trigger := action.FromTrigger(); trigger != nil {
			fromTrigger = *trigger
		}
		entryActions[i] = NewActionInfo(action.Description(), fromTrigger)
	}

	exitActions := make([]InvocationInfo, len(rep.ExitActions()))
	for i, action := range rep.ExitActions() {
		exitActions[i] = action.Description()
	}

	return &StateInfo{
		UnderlyingState: rep.UnderlyingState(),
		IgnoredTriggers: ignoredTriggers,
		EntryActions:    entryActions,
		ExitActions:     exitActions,
	}
}

func addStateRelationships[TState, TTrigger comparable](
	info *StateInfo,
	rep *StateRepresentation[TState, TTrigger],
	stateInfos map[TState]*StateInfo,
) {
	if rep.Superstate() != nil {
		if superstateInfo, ok := stateInfos[rep.Superstate().UnderlyingState()]; ok {
			info.Superstate = superstateInfo
		}
	}

	for _, substate := range rep.Substates() {
		if substateInfo, ok := stateInfos[substate.UnderlyingState()]; ok {
			info.Substates = append(info.Substates, substateInfo)
		}
	}

	for _, trigger := range rep.Triggers() {
		for _, behaviour := range rep.TriggerBehaviours()[trigger] {
			switch b := behaviour.(type) {
			case *TransitioningTriggerBehaviour[TState, TTrigger]:
				if destInfo, ok := stateInfos[b.Destination]; ok {
					info.FixedTransitions = append(info.FixedTransitions, FixedTransitionInfo{
						transitionInfoBase: transitionInfoBase{
							Trigger:         NewTriggerInfo(trigger),
							GuardConditions: convertGuardConditions(behaviour.Guard().Conditions),
						},
						DestinationState: destInfo,
					})
				}
			case *ReentryTriggerBehaviour[TState, TTrigger]:
				if destInfo, ok := stateInfos[b.Destination]; ok {
					info.FixedTransitions = append(info.FixedTransitions, FixedTransitionInfo{
						transitionInfoBase: transitionInfoBase{
							Trigger:         NewTriggerInfo(trigger),
							GuardConditions: convertGuardConditions(behaviour.Guard().Conditions),
						},
						DestinationState: destInfo,
					})
				}
			case *DynamicTriggerBehaviour[TState, TTrigger]:
				info.DynamicTransitions = append(info.DynamicTransitions, b.TransitionInfo)
			}
		}
	}
}

func convertGuardConditions(conditions []GuardCondition) []InvocationInfo {
	result := make([]InvocationInfo, len(conditions))
	for i, c := range conditions {
		result[i] = c.MethodDescription()
	}
	return result
}

// String renders the current state and the currently permitted triggers.
func (sm *StateMachine[TState, TTrigger]) String() string {
	triggers := sm.PermittedTriggers()
	names := make([]string, len(triggers))
	for i, trigger := range triggers {
		names[i] = fmt.Sprintf("%v", trigger)
	}
	permitted := strings.Join(names, ", ")

	if name := sm.config.Name(); name != "" {
		return fmt.Sprintf("StateMachine '%s' {{ State = %v, PermittedTriggers = {{ %s }}}}", name, sm.State(), permitted)
	}
	return fmt.Sprintf("StateMachine {{ State = %v, PermittedTriggers = {{ %s }}}}", sm.State(), permitted)
}

// Fire1 fires a one-argument trigger with a typed argument.
func Fire1[TArg0 any, TState, TTrigger comparable](
	sm *StateMachine[TState, TTrigger],
	trigger *TriggerWithParameters1[TTrigger, TArg0],
	arg0 TArg0,
) error {
	return sm.Fire(trigger.Trigger(), arg0)
}

// Fire2 fires a two-argument trigger with typed arguments.
func Fire2[TArg0, TArg1 any, TState, TTrigger comparable](
	sm *StateMachine[TState, TTrigger],
	trigger *TriggerWithParameters2[TTrigger, TArg0, TArg1],
	arg0 TArg0,
	arg1 TArg1,
) error {
	return sm.Fire(trigger.Trigger(), arg0, arg1)
}

// Fire3 fires a three-argument trigger with typed arguments.
func Fire3[TArg0, TArg1, TArg2 any, TState, TTrigger comparable](
	sm *StateMachine[TState, TTrigger],
	trigger *TriggerWithParameters3[TTrigger, TArg0, TArg1, TArg2],
	arg0 TArg0,
	arg1 TArg1,
	arg2 TArg2,
) error {
	return sm.Fire(trigger.Trigger(), arg0, arg1, arg2)
}
