package def_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statefire/statefire"
	"github.com/statefire/statefire/def"
)

const phoneCallYAML = `
machine: phone-call
initial: off_hook
trigger_parameters:
  set_volume: [int]
states:
  - id: off_hook
    transitions:
      - trigger: call_dialed
        target: ringing
  - id: ringing
    transitions:
      - trigger: call_connected
        target: connected
      - trigger: hung_up
        target: off_hook
  - id: connected
    entry: [start_call_timer]
    exit: [stop_call_timer]
    transitions:
      - trigger: hung_up
        target: off_hook
      - trigger: placed_on_hold
        target: on_hold
      - trigger: set_volume
        ignore: true
  - id: on_hold
    parent: connected
    entry: [start_hold_music]
    exit: [stop_hold_music]
    transitions:
      - trigger: taken_off_hold
        target: connected
      - trigger: mute
        ignore: true
      - trigger: redial
        reentry: true
        guard: can_redial
      - trigger: route
        dynamic: pick_route
        targets: [connected, off_hook]
`

type actionLog struct {
	entries []string
}

func (l *actionLog) record(name string) func(statefire.Transition[string, string]) {
	return func(statefire.Transition[string, string]) {
		l.entries = append(l.entries, name)
	}
}

func phoneCallBindings(log *actionLog, canRedial *bool, route *string) def.Bindings {
	return def.Bindings{
		Guards: map[string]statefire.GuardFunc{
			"can_redial": func(...any) bool { return *canRedial },
		},
		Actions: map[string]func(statefire.Transition[string, string]){
			"start_call_timer": log.record("start_call_timer"),
			"stop_call_timer":  log.record("stop_call_timer"),
			"start_hold_music": log.record("start_hold_music"),
			"stop_hold_music":  log.record("stop_hold_music"),
		},
		Selectors: map[string]func(args ...any) string{
			"pick_route": func(...any) string { return *route },
		},
	}
}

func TestParse(t *testing.T) {
	t.Run("valid definition", func(t *testing.T) {
		d, err := def.Parse([]byte(phoneCallYAML))
		require.NoError(t, err)

		assert.Equal(t, "phone-call", d.Machine)
		assert.Equal(t, "off_hook", d.Initial)
		assert.Equal(t, []string{"int"}, d.TriggerParameters["set_volume"])
		require.Len(t, d.States, 4)

		// Declaration order is preserved.
		assert.Equal(t, "off_hook", d.States[0].ID)
		assert.Equal(t, "on_hold", d.States[3].ID)
		assert.Equal(t, "connected", d.States[3].Parent)

		onHold := d.States[3]
		require.Len(t, onHold.Transitions, 4)
		assert.Equal(t, "taken_off_hold", onHold.Transitions[0].Trigger)
		assert.True(t, onHold.Transitions[1].Ignore)
		assert.True(t, onHold.Transitions[2].Reentry)
		assert.Equal(t, "can_redial", onHold.Transitions[2].Guard)
		assert.Equal(t, "pick_route", onHold.Transitions[3].Dynamic)
		assert.Equal(t, []string{"connected", "off_hook"}, onHold.Transitions[3].Targets)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := def.Parse([]byte("states: [unclosed"))
		require.Error(t, err)
		assert.ErrorContains(t, err, "yaml unmarshal")
	})
}

func TestParseReader(t *testing.T) {
	d, err := def.ParseReader(strings.NewReader(phoneCallYAML))
	require.NoError(t, err)
	assert.Equal(t, "phone-call", d.Machine)
}

func TestLoad(t *testing.T) {
	t.Run("existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "machine.yaml")
		require.NoError(t, os.WriteFile(path, []byte(phoneCallYAML), 0o644))

		d, err := def.Load(path)
		require.NoError(t, err)
		assert.Equal(t, "phone-call", d.Machine)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := def.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}

func TestDefinitionValidate(t *testing.T) {
	valid := func() *def.Definition {
		return &def.Definition{
			Initial: "a",
			States: []def.State{
				{ID: "a", Transitions: []def.TransitionRule{{Trigger: "go", Target: "b"}}},
				{ID: "b"},
			},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	tests := []struct {
		name    string
		mutate  func(*def.Definition)
		wantErr string
	}{
		{
			name:    "missing initial",
			mutate:  func(d *def.Definition) { d.Initial = "" },
			wantErr: "initial state ID is required",
		},
		{
			name:    "no states",
			mutate:  func(d *def.Definition) { d.States = nil },
			wantErr: "at least one state is required",
		},
		{
			name:    "undeclared initial",
			mutate:  func(d *def.Definition) { d.Initial = "zz" },
			wantErr: `initial state "zz" not found`,
		},
		{
			name:    "empty state id",
			mutate:  func(d *def.Definition) { d.States[1].ID = "" },
			wantErr: "id is required",
		},
		{
			name:    "duplicate state id",
			mutate:  func(d *def.Definition) { d.States[1].ID = "a" },
			wantErr: `duplicate state ID "a"`,
		},
		{
			name:    "unknown parent",
			mutate:  func(d *def.Definition) { d.States[1].Parent = "zz" },
			wantErr: `parent "zz" not found`,
		},
		{
			name: "parent cycle",
			mutate: func(d *def.Definition) {
				d.States[0].Parent = "b"
				d.States[1].Parent = "a"
			},
			wantErr: "circular parent relationship",
		},
		{
			name:    "self parent",
			mutate:  func(d *def.Definition) { d.States[1].Parent = "b" },
			wantErr: "circular parent relationship",
		},
		{
			name: "missing trigger",
			mutate: func(d *def.Definition) {
				d.States[0].Transitions[0].Trigger = ""
			},
			wantErr: "trigger is required",
		},
		{
			name: "no transition kind",
			mutate: func(d *def.Definition) {
				d.States[0].Transitions[0].Target = ""
			},
			wantErr: "exactly one of target, ignore, reentry, or dynamic",
		},
		{
			name: "two transition kinds",
			mutate: func(d *def.Definition) {
				d.States[0].Transitions[0].Ignore = true
			},
			wantErr: "exactly one of target, ignore, reentry, or dynamic",
		},
		{
			name: "identity target",
			mutate: func(d *def.Definition) {
				d.States[0].Transitions[0].Target = "a"
			},
			wantErr: "target equals the source state",
		},
		{
			name: "unknown target",
			mutate: func(d *def.Definition) {
				d.States[0].Transitions[0].Target = "zz"
			},
			wantErr: `target "zz" not found`,
		},
		{
			name: "targets without dynamic",
			mutate: func(d *def.Definition) {
				d.States[0].Transitions[0].Targets = []string{"b"}
			},
			wantErr: "targets require dynamic",
		},
		{
			name: "targets with guarded dynamic",
			mutate: func(d *def.Definition) {
				d.States[0].Transitions[0] = def.TransitionRule{
					Trigger: "go",
					Dynamic: "pick",
					Guard:   "ok",
					Targets: []string{"b"},
				}
			},
			wantErr: "targets cannot be combined with a guarded dynamic transition",
		},
		{
			name: "unknown dynamic target",
			mutate: func(d *def.Definition) {
				d.States[0].Transitions[0] = def.TransitionRule{
					Trigger: "go",
					Dynamic: "pick",
					Targets: []string{"zz"},
				}
			},
			wantErr: `dynamic target "zz" not found`,
		},
		{
			name: "duplicate unguarded transitions",
			mutate: func(d *def.Definition) {
				d.States[0].Transitions = append(d.States[0].Transitions,
					def.TransitionRule{Trigger: "go", Ignore: true})
			},
			wantErr: "multiple transitions without guards",
		},
		{
			name: "unknown parameter type",
			mutate: func(d *def.Definition) {
				d.TriggerParameters = map[string][]string{"go": {"complex128"}}
			},
			wantErr: `unknown parameter type "complex128"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid()
			tt.mutate(d)
			err := d.Validate()
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestBuild(t *testing.T) {
	t.Run("machine name passes through", func(t *testing.T) {
		log := &actionLog{}
		canRedial := true
		route := "off_hook"
		d, err := def.Parse([]byte(phoneCallYAML))
		require.NoError(t, err)

		cfg, err := def.Build(d, phoneCallBindings(log, &canRedial, &route))
		require.NoError(t, err)
		assert.Equal(t, "phone-call", cfg.Name())
	})

	t.Run("uuid assigned when unnamed", func(t *testing.T) {
		d := &def.Definition{Initial: "a", States: []def.State{{ID: "a"}}}

		cfg, err := def.Build(d, def.Bindings{})
		require.NoError(t, err)
		assert.Len(t, cfg.Name(), 36)
	})

	t.Run("guard name becomes description", func(t *testing.T) {
		log := &actionLog{}
		canRedial := true
		route := "off_hook"
		d, err := def.Parse([]byte(phoneCallYAML))
		require.NoError(t, err)

		m, err := def.NewStateMachine(d, phoneCallBindings(log, &canRedial, &route))
		require.NoError(t, err)

		var onHold *statefire.StateInfo
		for _, info := range m.Info().States {
			if info.UnderlyingState == "on_hold" {
				onHold = info
			}
		}
		require.NotNil(t, onHold)

		found := false
		for _, fixed := range onHold.FixedTransitions {
			if fixed.Trigger.String() == "redial" {
				require.Len(t, fixed.GuardConditions, 1)
				assert.Equal(t, "can_redial", fixed.GuardConditions[0].Description())
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("trigger parameters registered", func(t *testing.T) {
		log := &actionLog{}
		canRedial := true
		route := "off_hook"
		d, err := def.Parse([]byte(phoneCallYAML))
		require.NoError(t, err)

		cfg, err := def.Build(d, phoneCallBindings(log, &canRedial, &route))
		require.NoError(t, err)

		_, ok := cfg.TriggerParameters("set_volume")
		assert.True(t, ok)
	})

	t.Run("invalid definition rejected", func(t *testing.T) {
		d := &def.Definition{States: []def.State{{ID: "a"}}}

		_, err := def.Build(d, def.Bindings{})
		assert.ErrorContains(t, err, "initial state ID is required")
	})

	t.Run("unbound guard", func(t *testing.T) {
		d := &def.Definition{
			Initial: "a",
			States: []def.State{
				{ID: "a", Transitions: []def.TransitionRule{{Trigger: "go", Target: "b", Guard: "nope"}}},
				{ID: "b"},
			},
		}

		_, err := def.Build(d, def.Bindings{})
		assert.ErrorContains(t, err, `guard "nope" is not bound`)
	})

	t.Run("unbound action", func(t *testing.T) {
		d := &def.Definition{
			Initial: "a",
			States:  []def.State{{ID: "a", Entry: []string{"nope"}}},
		}

		_, err := def.Build(d, def.Bindings{})
		assert.ErrorContains(t, err, `entry action "nope" is not bound`)
	})

	t.Run("unbound selector", func(t *testing.T) {
		d := &def.Definition{
			Initial: "a",
			States: []def.State{
				{ID: "a", Transitions: []def.TransitionRule{{Trigger: "go", Dynamic: "nope"}}},
			},
		}

		_, err := def.Build(d, def.Bindings{})
		assert.ErrorContains(t, err, `selector "nope" is not bound`)
	})
}

func TestNewStateMachine(t *testing.T) {
	newPhoneCall := func(t *testing.T, canRedial *bool, route *string) (*statefire.StateMachine[string, string], *actionLog) {
		t.Helper()
		log := &actionLog{}
		d, err := def.Parse([]byte(phoneCallYAML))
		require.NoError(t, err)
		m, err := def.NewStateMachine(d, phoneCallBindings(log, canRedial, route))
		require.NoError(t, err)
		return m, log
	}

	canRedial := true
	route := "off_hook"

	t.Run("starts in initial state", func(t *testing.T) {
		m, _ := newPhoneCall(t, &canRedial, &route)
		assert.Equal(t, "off_hook", m.State())
	})

	t.Run("plain transitions", func(t *testing.T) {
		m, log := newPhoneCall(t, &canRedial, &route)

		require.NoError(t, m.Fire("call_dialed"))
		require.NoError(t, m.Fire("call_connected"))
		assert.Equal(t, "connected", m.State())
		assert.Equal(t, []string{"start_call_timer"}, log.entries)
	})

	t.Run("substate keeps superstate membership", func(t *testing.T) {
		m, log := newPhoneCall(t, &canRedial, &route)
		require.NoError(t, m.Fire("call_dialed"))
		require.NoError(t, m.Fire("call_connected"))

		require.NoError(t, m.Fire("placed_on_hold"))
		assert.Equal(t, "on_hold", m.State())
		assert.True(t, m.IsInState("connected"))
		// Entering the substate does not re-run the superstate entry.
		assert.Equal(t, []string{"start_call_timer", "start_hold_music"}, log.entries)
	})

	t.Run("trigger handled by superstate", func(t *testing.T) {
		m, log := newPhoneCall(t, &canRedial, &route)
		require.NoError(t, m.Fire("call_dialed"))
		require.NoError(t, m.Fire("call_connected"))
		require.NoError(t, m.Fire("placed_on_hold"))

		// hung_up is declared on connected but fires from on_hold.
		require.NoError(t, m.Fire("hung_up"))
		assert.Equal(t, "off_hook", m.State())
		assert.Equal(t,
			[]string{"start_call_timer", "start_hold_music", "stop_hold_music", "stop_call_timer"},
			log.entries)
	})

	t.Run("guarded reentry", func(t *testing.T) {
		redial := true
		m, log := newPhoneCall(t, &redial, &route)
		require.NoError(t, m.Fire("call_dialed"))
		require.NoError(t, m.Fire("call_connected"))
		require.NoError(t, m.Fire("placed_on_hold"))
		log.entries = nil

		require.NoError(t, m.Fire("redial"))
		assert.Equal(t, "on_hold", m.State())
		assert.Equal(t, []string{"stop_hold_music", "start_hold_music"}, log.entries)

		redial = false
		err := m.Fire("redial")
		require.Error(t, err)
		assert.Equal(t, "on_hold", m.State())
	})

	t.Run("ignored trigger", func(t *testing.T) {
		m, log := newPhoneCall(t, &canRedial, &route)
		require.NoError(t, m.Fire("call_dialed"))
		require.NoError(t, m.Fire("call_connected"))
		log.entries = nil

		require.NoError(t, m.Fire("set_volume", 11))
		assert.Equal(t, "connected", m.State())
		assert.Empty(t, log.entries)
	})

	t.Run("trigger parameters validated", func(t *testing.T) {
		m, _ := newPhoneCall(t, &canRedial, &route)
		require.NoError(t, m.Fire("call_dialed"))
		require.NoError(t, m.Fire("call_connected"))

		err := m.Fire("set_volume", "loud")
		var conversionErr *statefire.ParameterConversionError
		assert.ErrorAs(t, err, &conversionErr)
	})

	t.Run("dynamic routing", func(t *testing.T) {
		dest := "off_hook"
		m, _ := newPhoneCall(t, &canRedial, &dest)
		require.NoError(t, m.Fire("call_dialed"))
		require.NoError(t, m.Fire("call_connected"))
		require.NoError(t, m.Fire("placed_on_hold"))

		require.NoError(t, m.Fire("route"))
		assert.Equal(t, "off_hook", m.State())
	})

	t.Run("guard precedence follows declaration order", func(t *testing.T) {
		d := &def.Definition{
			Initial: "a",
			States: []def.State{
				{ID: "a", Transitions: []def.TransitionRule{
					{Trigger: "go", Target: "b", Guard: "first"},
					{Trigger: "go", Target: "c", Guard: "second"},
				}},
				{ID: "b"},
				{ID: "c"},
			},
		}
		first, second := true, true
		bindings := def.Bindings{Guards: map[string]statefire.GuardFunc{
			"first":  func(...any) bool { return first },
			"second": func(...any) bool { return second },
		}}

		m, err := def.NewStateMachine(d, bindings)
		require.NoError(t, err)
		require.NoError(t, m.Fire("go"))
		assert.Equal(t, "b", m.State())

		first = false
		m2, err := def.NewStateMachine(d, bindings)
		require.NoError(t, err)
		require.NoError(t, m2.Fire("go"))
		assert.Equal(t, "c", m2.State())
	})
}

func TestStubBindings(t *testing.T) {
	d, err := def.Parse([]byte(phoneCallYAML))
	require.NoError(t, err)

	b := def.StubBindings(d)
	assert.Contains(t, b.Guards, "can_redial")
	assert.Contains(t, b.Actions, "start_call_timer")
	assert.Contains(t, b.Actions, "stop_hold_music")
	assert.Contains(t, b.Selectors, "pick_route")

	cfg, err := def.Build(d, b)
	require.NoError(t, err)
	assert.Equal(t, "phone-call", cfg.Name())
}
