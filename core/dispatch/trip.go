package dispatch

import (
	"context"
	"time"

	"github.com/looplab/fsm"
)

// Trip phases.
const (
	PhasePending   = "pending"
	PhaseAcquired  = "acquired"
	PhaseOutbound  = "outbound"
	PhaseServicing = "servicing"
	PhaseReturning = "returning"
	PhaseCompleted = "completed"
	PhaseFailed    = "failed"
)

const (
	evAcquire  = "acquire"
	evDepart   = "depart"
	evService  = "service"
	evReturn   = "return"
	evComplete = "complete"
	evFail     = "fail"
)

// trip is one vehicle carrying at most one capacity of meals to an aircraft
// and back. Only the goroutine running the trip touches it.
type trip struct {
	ID          string
	AircraftID  string
	VehicleID   string
	Destination string
	Meals       int
	Conflicts   int
	Start       time.Time
	// reached is the last phase before the trip failed.
	reached string
	err     error

	fsm *fsm.FSM
}

func newTrip(id, aircraft string, meals int, onEnter func(*trip)) *trip {
	t := &trip{ID: id, AircraftID: aircraft, Meals: meals, Start: time.Now(), reached: PhasePending}
	t.fsm = fsm.NewFSM(
		PhasePending,
		fsm.Events{
			{Name: evAcquire, Src: []string{PhasePending}, Dst: PhaseAcquired},
			{Name: evDepart, Src: []string{PhaseAcquired}, Dst: PhaseOutbound},
			{Name: evService, Src: []string{PhaseOutbound}, Dst: PhaseServicing},
			{Name: evReturn, Src: []string{PhaseServicing}, Dst: PhaseReturning},
			{Name: evComplete, Src: []string{PhaseReturning}, Dst: PhaseCompleted},
			{Name: evFail, Src: []string{PhasePending, PhaseAcquired, PhaseOutbound, PhaseServicing, PhaseReturning}, Dst: PhaseFailed},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				if e.Dst != PhaseFailed {
					t.reached = e.Dst
				}
				if onEnter != nil {
					onEnter(t)
				}
			},
		},
	)
	return t
}

// Phase returns the current phase.
func (t *trip) Phase() string { return t.fsm.Current() }

// Reached returns the furthest phase the trip got to, ignoring failure.
func (t *trip) Reached() string { return t.reached }

func (t *trip) fire(ctx context.Context, event string) error {
	return t.fsm.Event(ctx, event)
}

// fail moves the trip to PhaseFailed unless it already ended.
func (t *trip) fail(ctx context.Context, err error) {
	if t.fsm.Is(PhaseFailed) || t.fsm.Is(PhaseCompleted) {
		return
	}
	t.err = err
	_ = t.fsm.Event(ctx, evFail)
}
