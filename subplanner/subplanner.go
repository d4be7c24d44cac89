// Package subplanner implements the SubPlanner interface the graph
// planner calls to connect two states with a short, locally-feasible
// trajectory.
package subplanner

import (
	"context"
	"time"

	"go.viam.com/fastrack/logging"
	"go.viam.com/fastrack/statespace"
	"go.viam.com/fastrack/trajectory"
)

// SubPlanner produces a local trajectory from `from` to `to`, starting
// at absolute time startTime. An empty (zero-length) returned
// trajectory, not an error, signals "no local connection exists";
// err is reserved for genuine failures (context cancellation,
// collision-checker faults, and the like).
type SubPlanner[S statespace.State[S]] interface {
	SubPlan(ctx context.Context, from, to S, startTime float64) (*trajectory.Trajectory[S], error)
}

// StraightLine connects two states by sampling Space.Interpolate at
// Steps+1 evenly spaced points, advancing time at a constant Speed
// measured in Space.Distance units per second. It is the reference
// SubPlanner used by the point-mass example and the test suite.
type StraightLine[S statespace.State[S]] struct {
	Space  statespace.Space[S]
	Speed  float64
	Steps  int
	Logger logging.Logger
}

// SubPlan implements SubPlanner.
func (sl StraightLine[S]) SubPlan(ctx context.Context, from, to S, startTime float64) (*trajectory.Trajectory[S], error) {
	steps := sl.Steps
	if steps < 1 {
		steps = 1
	}
	dist := sl.Space.Distance(from, to)
	duration := 0.0
	if sl.Speed > 0 {
		duration = dist / sl.Speed
	}

	states := make([]S, 0, steps+1)
	times := make([]float64, 0, steps+1)
	for i := 0; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return trajectory.New[S](sl.Logger, nil, nil), nil
		default:
		}
		alpha := float64(i) / float64(steps)
		states = append(states, sl.Space.Interpolate(from, to, alpha))
		times = append(times, startTime+alpha*duration)
	}
	return trajectory.New[S](sl.Logger, states, times), nil
}

// AlwaysFail never produces a connection; it models a SubPlanner whose
// local connectivity check always rejects, used to exercise the
// planner's timeout-and-report-no-feasible-loop path.
type AlwaysFail[S statespace.State[S]] struct {
	Logger logging.Logger
}

// SubPlan implements SubPlanner by always returning an empty
// trajectory.
func (AlwaysFail[S]) SubPlan(_ context.Context, _, _ S, _ float64) (*trajectory.Trajectory[S], error) {
	return trajectory.New[S](nil, nil, nil), nil
}

// WithBudget bounds an inner SubPlanner call with a per-call timeout,
// the same pattern a constrained-extend step in an RRT planner uses to
// keep a single local-connection attempt from stalling the whole
// search.
type WithBudget[S statespace.State[S]] struct {
	Inner  SubPlanner[S]
	Budget time.Duration
}

// SubPlan implements SubPlanner.
func (wb WithBudget[S]) SubPlan(ctx context.Context, from, to S, startTime float64) (*trajectory.Trajectory[S], error) {
	subCtx, cancel := context.WithTimeout(ctx, wb.Budget)
	defer cancel()
	return wb.Inner.SubPlan(subCtx, from, to, startTime)
}
