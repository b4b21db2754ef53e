package aggregate

// file: internal/aggregate/run.go

import (
	"github.com/dkoosis/camptools/internal/fsm"
	"github.com/dkoosis/camptools/internal/logging"
)

// Project run states.
const (
	StatePending  fsm.State = "pending"
	StateFetching fsm.State = "fetching"
	StateComplete fsm.State = "complete"
	StatePartial  fsm.State = "partial"
	StateFailed   fsm.State = "failed"
)

// Project run events.
const (
	eventStart   fsm.Event = "start"
	eventSucceed fsm.Event = "succeed"
	eventDegrade fsm.Event = "degrade"
	eventFail    fsm.Event = "fail"
)

// newRun builds the lifecycle of one project within an aggregation:
// pending -> fetching -> complete | partial | failed. A project can also
// fail before it starts when the context is already done.
func newRun(logger logging.Logger) (fsm.FSM, error) {
	m := fsm.NewFSM(StatePending, logger)
	m.AddTransition(fsm.Transition{From: []fsm.State{StatePending}, Event: eventStart, To: StateFetching})
	m.AddTransition(fsm.Transition{From: []fsm.State{StateFetching}, Event: eventSucceed, To: StateComplete})
	m.AddTransition(fsm.Transition{From: []fsm.State{StateFetching}, Event: eventDegrade, To: StatePartial})
	m.AddTransition(fsm.Transition{From: []fsm.State{StatePending, StateFetching}, Event: eventFail, To: StateFailed})
	if err := m.Build(); err != nil {
		return nil, err
	}
	return m, nil
}
