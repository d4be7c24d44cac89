// Package graphplanner implements the sampling-based, recursively
// feasible dynamic planner: the core search that grows a tree of
// locally-connected states from a start toward a goal, using a
// SubPlanner to attempt each local connection and a recursive
// "escape" witness to certify that an attached sample can still reach
// back to known-safe territory.
package graphplanner

import (
	"context"
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"go.viam.com/fastrack/logging"
	"go.viam.com/fastrack/metrics"
	"go.viam.com/fastrack/statespace"
	"go.viam.com/fastrack/subplanner"
	"go.viam.com/fastrack/trajectory"
)

// CostFn scores a sub-trajectory for the purpose of ranking candidate
// parents during attach and rewiring. Duration is the natural default
// (see DurationCost); callers with a richer notion of cost (energy,
// risk) supply their own.
type CostFn[S statespace.State[S]] func(*trajectory.Trajectory[S]) float64

// DurationCost is the CostFn every example in this module uses unless
// told otherwise: a trajectory's cost is simply how long it takes.
func DurationCost[S statespace.State[S]](t *trajectory.Trajectory[S]) float64 {
	return t.Duration()
}

// Options configures a single Plan call.
type Options struct {
	// NumNeighbors bounds how many nearest neighbors are attempted as
	// a parent for each new sample.
	NumNeighbors int
	// SearchRadius bounds how far a sample may reach to connect
	// directly into the goal set.
	SearchRadius float64
	// MaxRuntime bounds the wall-clock budget of the call.
	MaxRuntime time.Duration
}

// Planner is the sampling-based dynamic planner over state space S. A
// Planner instance is reusable across Plan calls; it holds no
// per-call mutable state of its own (that all lives in the arena a
// single Plan call allocates).
type Planner[S statespace.State[S]] struct {
	Space   statespace.Space[S]
	SubPlan subplanner.SubPlanner[S]
	Cost    CostFn[S]
	Options Options
	Logger  logging.Logger
	Stats   *metrics.RunStats

	// Clock is the time source Plan measures its deadline against.
	// Defaults to the real wall clock; a mock clock can be substituted
	// to control when the deadline is reached.
	Clock clock.Clock

	extractWarn *logging.Sometimes
}

// New constructs a Planner ready to call Plan.
func New[S statespace.State[S]](space statespace.Space[S], sp subplanner.SubPlanner[S], cost CostFn[S], opts Options, logger logging.Logger) *Planner[S] {
	if logger == nil {
		logger = logging.NewLogger("graphplanner")
	}
	if cost == nil {
		cost = DurationCost[S]
	}
	return &Planner[S]{
		Space:       space,
		SubPlan:     sp,
		Cost:        cost,
		Options:     opts,
		Logger:      logger,
		Stats:       &metrics.RunStats{},
		Clock:       clock.New(),
		extractWarn: logging.NewSometimes(logger, 1),
	}
}

// Plan searches for a trajectory from start to goal, starting at
// absolute time startTime, within Options.MaxRuntime. A nil error with
// an empty returned trajectory means no feasible connection was found
// before the deadline; a non-nil error means the search itself failed
// (bad options, a SubPlanner error, or ctx cancellation surfaced from
// below).
func (p *Planner[S]) Plan(ctx context.Context, start, goal S, startTime float64) (*trajectory.Trajectory[S], error) {
	if p.Options.NumNeighbors < 1 {
		return nil, errors.New("graphplanner: num_neighbors must be at least 1")
	}
	if p.Options.MaxRuntime <= 0 {
		return nil, errors.New("graphplanner: max_runtime must be positive")
	}

	runID := uuid.New()
	logger := p.Logger.Named(runID.String())

	a := &arena[S]{}
	startIdx := a.alloc(&node[S]{
		state:      start,
		time:       startTime,
		costToCome: 0,
		isViable:   true,
		bestParent: invalidIndex,
		children:   map[nodeIndex]edge[S]{},
	})
	goalIdx := a.alloc(&node[S]{
		state:      goal,
		time:       math.Inf(1),
		costToCome: math.Inf(1),
		isViable:   true,
		bestParent: invalidIndex,
		children:   map[nodeIndex]edge[S]{},
	})

	startGraph := newGraph[S](p.Space, a)
	startGraph.insert(startIdx)
	goalGraph := newGraph[S](p.Space, a)
	goalGraph.insert(goalIdx)

	deadline := p.Clock.Now().Add(p.Options.MaxRuntime)

	logger.Debugf("starting plan run, deadline in %s", p.Options.MaxRuntime)
	result, err := p.runTraversal(ctx, logger, a, startGraph, goalGraph, true, deadline)
	if err != nil {
		return nil, err
	}
	if result.Empty() {
		p.Stats.DeadlineHits.Inc()
	}
	return result, nil
}

// runTraversal implements one invocation of the main loop (spec's
// "Main loop" procedure). outbound distinguishes the top-level search
// (g is the tree rooted at the true start, goals is the true goal set,
// and finding a connection returns the extracted plan) from a
// recursive escape call (g is a single-node set around the sample
// being tested, goals is the caller's tree, and the returned
// trajectory is discarded — the caller only cares whether the sample
// could mark itself viable).
func (p *Planner[S]) runTraversal(
	ctx context.Context,
	logger logging.Logger,
	a *arena[S],
	g, goals *graph[S],
	outbound bool,
	deadline time.Time,
) (*trajectory.Trajectory[S], error) {
	for p.Clock.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return trajectory.New[S](logger, nil, nil), nil
		default:
		}

		sample := p.Space.Sample()
		p.Stats.SamplesDrawn.Inc()

		sampleIdx, attached, err := p.attach(ctx, logger, a, g, sample)
		if err != nil {
			return nil, err
		}
		if !attached {
			continue
		}

		childIdx, childTraj, found, err := p.tryReachGoal(ctx, a, goals, sampleIdx)
		if err != nil {
			return nil, err
		}

		if found {
			p.connectAndMarkViable(a, g, sampleIdx, childIdx, childTraj)
			if outbound {
				startIdx, _ := g.initial()
				goalIdx, _ := goals.initial()
				return p.extractTrajectory(a, startIdx, goalIdx), nil
			}
			return trajectory.New[S](logger, nil, nil), nil
		}

		if outbound {
			if err := p.recursiveEscape(ctx, logger, a, g, sampleIdx, deadline); err != nil {
				return nil, err
			}
		}
	}

	if !outbound {
		return trajectory.New[S](logger, nil, nil), nil
	}

	startIdx, _ := g.initial()
	startNode := a.get(startIdx)
	if startNode.bestParent != invalidIndex {
		return p.extractTrajectory(a, startIdx, startIdx), nil
	}
	logger.Warnf("plan deadline exhausted with no viable loop at the start state")
	return trajectory.New[S](logger, nil, nil), nil
}

// attach tries to connect sample to its nearest neighbors in g, in
// order, stopping at the first feasible connection. It returns the
// newly allocated node's index and whether any connection succeeded.
func (p *Planner[S]) attach(ctx context.Context, logger logging.Logger, a *arena[S], g *graph[S], sample S) (nodeIndex, bool, error) {
	neighbors := g.knn(sample, p.Options.NumNeighbors)

	for _, nIdx := range neighbors {
		nb := a.get(nIdx)
		if nb.state.ApproxEqual(sample, statespace.DefaultEpsilon) {
			continue
		}

		p.Stats.EdgesAttempted.Inc()
		sub, err := p.SubPlan.SubPlan(ctx, nb.state, sample, nb.time)
		if err != nil {
			return invalidIndex, false, errors.Wrap(err, "sub-planning attach edge")
		}
		if sub.Empty() {
			continue
		}

		newNode := &node[S]{
			state:      sample,
			time:       nb.time + sub.Duration(),
			costToCome: nb.costToCome + p.Cost(sub),
			isViable:   false,
			bestParent: nIdx,
			children:   map[nodeIndex]edge[S]{},
		}
		sampleIdx := a.alloc(newNode)
		nb.children[sampleIdx] = edge[S]{traj: sub}
		g.insert(sampleIdx)
		p.Stats.EdgesAccepted.Inc()
		logger.Debugf("attached sample at time %f with cost-to-come %f", newNode.time, newNode.costToCome)
		return sampleIdx, true, nil
	}

	return invalidIndex, false, nil
}

// tryReachGoal looks for a viable node in goals within SearchRadius of
// sample and attempts a direct sub-plan connection to it.
func (p *Planner[S]) tryReachGoal(ctx context.Context, a *arena[S], goals *graph[S], sampleIdx nodeIndex) (nodeIndex, *trajectory.Trajectory[S], bool, error) {
	sampleNode := a.get(sampleIdx)
	candidates := goals.radius(sampleNode.state, p.Options.SearchRadius)

	for _, gIdx := range candidates {
		gNode := a.get(gIdx)
		if !gNode.isViable {
			continue
		}
		sub, err := p.SubPlan.SubPlan(ctx, sampleNode.state, gNode.state, sampleNode.time)
		if err != nil {
			return invalidIndex, nil, false, errors.Wrap(err, "sub-planning goal connection")
		}
		if sub.Empty() {
			continue
		}
		return gIdx, sub, true, nil
	}
	return invalidIndex, nil, false, nil
}

// connectAndMarkViable records the sample->child edge and rewires
// child's subtree through sample only when child has no best parent or
// sample is cheaper than child's current best parent; otherwise the
// edge is not recorded. It then marks sample and its ancestors viable,
// stopping at the first ancestor that is already viable.
func (p *Planner[S]) connectAndMarkViable(a *arena[S], g *graph[S], sampleIdx, childIdx nodeIndex, childTraj *trajectory.Trajectory[S]) {
	sampleNode := a.get(sampleIdx)
	childNode := a.get(childIdx)

	// Leave childNode.bestParent untouched here: updateDescendants
	// performs the same best_parent/time/cost_to_come comparison while
	// walking sampleIdx's children, and doing it there (rather than
	// here) keeps the old parent's cost visible for that comparison.
	if childNode.bestParent == invalidIndex || a.get(childNode.bestParent).costToCome > sampleNode.costToCome {
		sampleNode.children[childIdx] = edge[S]{traj: childTraj}
		p.updateDescendants(a, sampleIdx, invalidIndex)
	}

	for cur := sampleIdx; cur != invalidIndex; {
		n := a.get(cur)
		if n.isViable {
			break
		}
		n.isViable = true
		cur = n.bestParent
	}
}

// updateDescendants walks the subtree rooted at start in breadth-first
// order, re-timing each edge from its (possibly just-rewired) parent
// and updating cost-to-come/best_parent wherever the node reached via
// start is now cheaper than its previous best parent. anchor, when
// valid, is excluded from having its own children revisited (used when
// start's only effect should be to retime/rewire start's subtree, not
// recurse back into the node start was attached beneath).
func (p *Planner[S]) updateDescendants(a *arena[S], start, anchor nodeIndex) {
	queue := []nodeIndex{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == anchor {
			continue
		}
		curNode := a.get(cur)
		for childIdx, e := range curNode.children {
			e.traj.ResetFirstTime(curNode.time)
			child := a.get(childIdx)
			if child.bestParent == invalidIndex || a.get(child.bestParent).costToCome > curNode.costToCome {
				child.bestParent = cur
				child.time = curNode.time + e.traj.Duration()
				child.costToCome = curNode.costToCome + p.Cost(e.traj)
				p.Stats.RewiresPropagated.Inc()
			}
			queue = append(queue, childIdx)
		}
	}
}

// recursiveEscape spawns a nested traversal, rooted at sampleIdx alone,
// whose goal set is the caller's own tree g. A successful nested
// traversal proves sampleIdx can still reach known territory even
// though it failed to reach the true goal directly, and marks it
// viable as a side effect; its returned trajectory is discarded. The
// nested traversal runs on its own goroutine and is always joined
// before this function returns, mirroring the spawn-then-receive
// shape the teacher's parallel planners use for short-lived
// concurrent work, with a recovered panic surfaced as an error rather
// than crashing the caller. The join is unconditional even when ctx
// is already done: runTraversal itself observes ctx.Done() on every
// loop iteration and returns promptly, so waiting here never blocks
// indefinitely, and it avoids leaving the goroutine free to keep
// mutating the shared arena after this call has returned.
func (p *Planner[S]) recursiveEscape(ctx context.Context, logger logging.Logger, a *arena[S], g *graph[S], sampleIdx nodeIndex, deadline time.Time) error {
	singleton := newGraph[S](p.Space, a)
	singleton.insert(sampleIdx)

	type outcome struct {
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: errors.Errorf("recursive escape panicked: %v", r)}
			}
		}()
		_, err := p.runTraversal(ctx, logger.Named("escape"), a, singleton, g, false, deadline)
		done <- outcome{err: err}
	}()

	o := <-done
	return o.err
}

// extractTrajectory walks best_parent links backward from goal to
// start, concatenating each edge's sub-trajectory, and stops when it
// reaches start with at least one edge accumulated — this lets start
// == goal describe a viable loop back to the start state, not an
// immediate empty result.
func (p *Planner[S]) extractTrajectory(a *arena[S], start, goal nodeIndex) *trajectory.Trajectory[S] {
	var edges []*trajectory.Trajectory[S]
	cur := goal

	for {
		if cur == start && len(edges) > 0 {
			break
		}
		curNode := a.get(cur)
		if curNode.bestParent == invalidIndex {
			p.extractWarn.Errorf("best_parent unexpectedly absent while extracting trajectory at node with time %f", curNode.time)
			break
		}
		parentIdx := curNode.bestParent
		parent := a.get(parentIdx)
		e, ok := parent.children[cur]
		if !ok {
			p.extractWarn.Errorf("parent/child edge missing while extracting trajectory")
			break
		}
		edges = append([]*trajectory.Trajectory[S]{e.traj}, edges...)
		cur = parentIdx
	}

	return trajectory.Concatenate[S](p.Logger, edges)
}
