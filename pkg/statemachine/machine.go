package statemachine

import (
	"context"
	"fmt"
)

// Machine is a transition table keyed by [from state][event].
// It is read-only after New returns and safe for concurrent use.
type Machine struct {
	transitions map[string]map[string][]Transition
}

func (m *Machine) add(t Transition) error {
	if t.From == nil || t.To == nil || t.Event == nil {
		return ErrInvalidTransition
	}

	from := t.From.Name()
	if _, ok := m.transitions[from]; !ok {
		m.transitions[from] = make(map[string][]Transition)
	}
	m.transitions[from][t.Event.Name()] = append(m.transitions[from][t.Event.Name()], t)
	return nil
}

// Fire returns the state event leads to from the given state.
func (m *Machine) Fire(ctx context.Context, from State, event Event, data any) (State, error) {
	if from == nil {
		return nil, ErrInvalidState
	}
	if event == nil {
		return nil, ErrInvalidEvent
	}

	candidates := m.transitions[from.Name()][event.Name()]
	if len(candidates) == 0 {
		return nil, NewErrNoTransitionAvailable(from.Name(), event.Name())
	}

	for _, t := range candidates {
		if !t.allowed(ctx, from, event, data) {
			continue
		}
		for _, action := range t.Actions {
			if action == nil {
				continue
			}
			if err := action(ctx, from, t.To, event, data); err != nil {
				return nil, fmt.Errorf("action failed: %w", err)
			}
		}
		return t.To, nil
	}

	return nil, NewErrTransitionRejected(from.Name(), event.Name())
}

// CanFire reports whether some transition for event would pass its guards.
// Actions are not run.
func (m *Machine) CanFire(ctx context.Context, from State, event Event, data any) bool {
	if from == nil || event == nil {
		return false
	}
	for _, t := range m.transitions[from.Name()][event.Name()] {
		if t.allowed(ctx, from, event, data) {
			return true
		}
	}
	return false
}

// Events lists the event names defined for a state.
func (m *Machine) Events(from State) []string {
	if from == nil {
		return nil
	}
	events := make([]string, 0, len(m.transitions[from.Name()]))
	for name := range m.transitions[from.Name()] {
		events = append(events, name)
	}
	return events
}
