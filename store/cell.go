package store

import (
	"context"
	"errors"
	"sync"
)

// Cell binds one machine's current state to a row in the store. Its accessor
// and mutator pair plugs into NewStateMachineWithExternalStorage, and every
// mutation is written through to the database.
type Cell struct {
	store     *Store
	machineID string

	// ctx is used for write-through saves. The machine's state mutator
	// carries no context of its own.
	ctx context.Context

	mu      sync.Mutex
	current string
	err     error
}

// Cell loads the saved state of a machine, seeding the row with initial when
// none exists yet.
func (s *Store) Cell(ctx context.Context, machineID, initial string) (*Cell, error) {
	state, err := s.Load(ctx, machineID)
	if errors.Is(err, ErrNotFound) {
		state = initial
		err = s.Save(ctx, machineID, state)
	}
	if err != nil {
		return nil, err
	}

	return &Cell{store: s, machineID: machineID, ctx: ctx, current: state}, nil
}

// State returns the state the cell currently holds. Pass it as the initial
// state when constructing the machine.
func (c *Cell) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Accessor returns the state accessor for NewStateMachineWithExternalStorage.
func (c *Cell) Accessor() func() string {
	return c.State
}

// Mutator returns the state mutator for NewStateMachineWithExternalStorage.
// Each call stores the new state in memory and writes it through to the
// database. A write failure is reported by Err; the in-memory state still
// moves, keeping the machine and the cell consistent.
func (c *Cell) Mutator() func(string) {
	return func(state string) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.current = state
		c.err = c.store.Save(c.ctx, c.machineID, state)
	}
}

// Err returns the error from the most recent write-through, or nil.
func (c *Cell) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
