// Package tracker implements the periodic control loop that sits
// between a real (or simulated) tracking system and the planner: on a
// fixed cadence it asks the value function for the optimal control
// given the current tracker and planner states, then publishes it.
// fastrack's planner never calls this package directly — it only
// relies on the tracking bound and dynamics the same value function
// exposes — but both consume the same PlannerState reference, which is
// why both live in the same module.
package tracker

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/pkg/errors"

	"go.viam.com/fastrack/logging"
	"go.viam.com/fastrack/valuefn"
)

// Loop drives OptimalControl at a fixed TimeStep cadence.
type Loop[TrackerState, PlannerState, Control, Bound, Dynamics any] struct {
	ValueFn      valuefn.ValueFunction[TrackerState, PlannerState, Control, Bound, Dynamics]
	TimeStep     time.Duration
	TrackerState func() TrackerState
	PlannerState func() PlannerState
	Publish      func(Control)
	Logger       logging.Logger

	scheduler gocron.Scheduler
}

// Start begins the periodic loop and returns immediately; it stops
// automatically when ctx is cancelled.
func (l *Loop[T, P, C, B, D]) Start(ctx context.Context) error {
	if l.Logger == nil {
		l.Logger = logging.NewLogger("tracker")
	}
	if l.TimeStep <= 0 {
		return errors.New("tracker: time_step must be positive")
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return errors.Wrap(err, "building tracker scheduler")
	}
	l.scheduler = sched

	_, err = sched.NewJob(
		gocron.DurationJob(l.TimeStep),
		gocron.NewTask(func() {
			control, err := l.ValueFn.OptimalControl(l.TrackerState(), l.PlannerState())
			if err != nil {
				l.Logger.Warnf("optimal control query failed: %v", err)
				return
			}
			l.Publish(control)
		}),
	)
	if err != nil {
		return errors.Wrap(err, "scheduling tracker job")
	}

	sched.Start()
	go func() {
		<-ctx.Done()
		if err := sched.Shutdown(); err != nil {
			l.Logger.Warnf("tracker scheduler shutdown: %v", err)
		}
	}()
	return nil
}

// TrackingBound exposes the value function's worst-case error bound,
// the number the planner's SubPlanner implementations are expected to
// consult when deciding how aggressively to connect two states.
func (l *Loop[T, P, C, B, D]) TrackingBound() (B, error) {
	return l.ValueFn.TrackingBound()
}

// PlannerDynamics exposes the value function's planner-facing
// dynamics model.
func (l *Loop[T, P, C, B, D]) PlannerDynamics() (D, error) {
	return l.ValueFn.PlannerDynamics()
}
