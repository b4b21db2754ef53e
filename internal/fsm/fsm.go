// Package fsm wraps looplab/fsm behind a small builder used to track the
// lifecycle of long-running units of work.
// file: internal/fsm/fsm.go
package fsm

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/camptools/internal/logging"
	lfsm "github.com/looplab/fsm"
)

// State represents a state in the FSM.
type State string

// Event represents an event that can trigger a state transition.
type Event string

// TransitionAction runs after the machine enters the transition's destination.
type TransitionAction func(ctx context.Context, event Event, data any) error

// GuardCondition vetoes a transition when it returns false.
type GuardCondition func(ctx context.Context, event Event, data any) bool

// Transition defines a transition rule between states.
type Transition struct {
	From      []State
	To        State
	Event     Event
	Action    TransitionAction
	Condition GuardCondition
}

// FSM is a finite state machine. Transitions are declared with
// AddTransition and frozen by Build.
type FSM interface {
	AddTransition(transition Transition) FSM
	Build() error
	CurrentState() State
	CanTransition(event Event) bool
	Transition(ctx context.Context, event Event, data any) error
	History() []State
}

// ErrNotBuilt is returned when a machine is used before a successful Build.
var ErrNotBuilt = errors.New("fsm: not built")

type loopFSM struct {
	initialState State
	logger       logging.Logger
	transitions  []Transition

	mu       sync.RWMutex
	fsm      *lfsm.FSM
	buildErr error
	history  []State
}

// NewFSM creates a builder with the given initial state.
func NewFSM(initialState State, logger logging.Logger) FSM {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &loopFSM{
		initialState: initialState,
		logger:       logger.WithField("component", "fsm"),
		history:      []State{initialState},
	}
}

// AddTransition stores a transition definition to be used during Build.
func (l *loopFSM) AddTransition(t Transition) FSM {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch {
	case l.fsm != nil:
		l.setBuildErr(errors.New("cannot AddTransition after Build"))
	case len(t.From) == 0:
		l.setBuildErr(errors.Newf("transition %q has no source states", t.Event))
	default:
		l.transitions = append(l.transitions, t)
	}
	return l
}

func (l *loopFSM) setBuildErr(err error) {
	l.logger.Error("Invalid FSM configuration.", "error", err)
	if l.buildErr == nil {
		l.buildErr = err
	}
}

// Build creates the underlying looplab machine. Each event must have exactly
// one destination.
func (l *loopFSM) Build() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fsm != nil || l.buildErr != nil {
		return l.buildErr
	}

	descs := make(map[string]*lfsm.EventDesc)
	order := make([]string, 0, len(l.transitions))
	callbacks := make(lfsm.Callbacks)
	actions := make(map[string][]Transition)

	for _, t := range l.transitions {
		name := string(t.Event)
		desc, ok := descs[name]
		if !ok {
			desc = &lfsm.EventDesc{Name: name, Dst: string(t.To)}
			descs[name] = desc
			order = append(order, name)
		} else if desc.Dst != string(t.To) {
			l.buildErr = errors.Newf("event %q has conflicting destinations %q and %q", name, desc.Dst, t.To)
			return l.buildErr
		}
		for _, s := range t.From {
			desc.Src = appendUnique(desc.Src, string(s))
		}
		if t.Condition != nil {
			callbacks["before_"+name] = l.guard(t)
		}
		if t.Action != nil {
			actions[string(t.To)] = append(actions[string(t.To)], t)
		}
	}
	for dst, ts := range actions {
		callbacks["enter_"+dst] = l.enter(ts)
	}

	events := make(lfsm.Events, 0, len(order))
	for _, name := range order {
		events = append(events, *descs[name])
	}
	l.fsm = lfsm.NewFSM(string(l.initialState), events, callbacks)
	l.logger.Debug("FSM built.", "initial_state", l.initialState, "events", len(events))
	return nil
}

func (l *loopFSM) guard(t Transition) lfsm.Callback {
	return func(ctx context.Context, e *lfsm.Event) {
		if !containsState(t.From, State(e.Src)) {
			return
		}
		if !t.Condition(ctx, t.Event, eventData(e)) {
			e.Cancel(errors.Newf("guard for %q from %q failed", t.Event, e.Src))
		}
	}
}

func (l *loopFSM) enter(ts []Transition) lfsm.Callback {
	return func(ctx context.Context, e *lfsm.Event) {
		for _, t := range ts {
			if string(t.Event) != e.Event || !containsState(t.From, State(e.Src)) {
				continue
			}
			if err := t.Action(ctx, t.Event, eventData(e)); err != nil {
				l.logger.Error("Transition action failed.", "event", t.Event, "to_state", t.To, "error", err)
			}
		}
	}
}

// CurrentState returns the current state, or "" before Build.
func (l *loopFSM) CurrentState() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.fsm == nil {
		return ""
	}
	return State(l.fsm.Current())
}

// CanTransition reports whether event is allowed from the current state.
func (l *loopFSM) CanTransition(event Event) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fsm != nil && l.fsm.Can(string(event))
}

// Transition fires event. Guard failures surface as lfsm.CanceledError and
// undefined transitions as lfsm.InvalidEventError.
func (l *loopFSM) Transition(ctx context.Context, event Event, data any) error {
	l.mu.RLock()
	machine, buildErr := l.fsm, l.buildErr
	l.mu.RUnlock()
	if machine == nil {
		if buildErr != nil {
			return buildErr
		}
		return ErrNotBuilt
	}

	from := State(machine.Current())
	var args []any
	if data != nil {
		args = append(args, data)
	}
	if err := machine.Event(ctx, string(event), args...); err != nil {
		var noTransition lfsm.NoTransitionError
		if errors.As(err, &noTransition) {
			return nil
		}
		l.logger.Debug("FSM transition rejected.", "event", event, "from_state", from, "error", err)
		return errors.Wrapf(err, "fsm: %s from %s", event, from)
	}

	to := State(machine.Current())
	l.mu.Lock()
	l.history = append(l.history, to)
	l.mu.Unlock()
	l.logger.Debug("FSM transition.", "event", event, "from_state", from, "to_state", to)
	return nil
}

// History returns every state the machine has been in, oldest first.
func (l *loopFSM) History() []State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]State(nil), l.history...)
}

func eventData(e *lfsm.Event) any {
	if len(e.Args) > 0 {
		return e.Args[0]
	}
	return nil
}

func containsState(states []State, s State) bool {
	for _, candidate := range states {
		if candidate == s {
			return true
		}
	}
	return false
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
