package graphplanner

import (
	"context"
	"math"
	"testing"
	"time"

	"go.viam.com/test"

	"go.viam.com/fastrack/logging"
	"go.viam.com/fastrack/subplanner"
	"go.viam.com/fastrack/trajectory"
)

type scalar float64

func (s scalar) ToVector() []float64 { return []float64{float64(s)} }

func (s scalar) ApproxEqual(other scalar, epsilon float64) bool {
	return math.Abs(float64(s-other)) <= epsilon
}

type scalarSpace struct{}

func (scalarSpace) Sample() scalar                               { return 0 }
func (scalarSpace) Distance(a, b scalar) float64                 { return math.Abs(float64(a - b)) }
func (scalarSpace) Interpolate(a, b scalar, alpha float64) scalar {
	return scalar((1-alpha)*float64(a) + alpha*float64(b))
}

// fixedSequenceSpace serves a predetermined, cyclic sequence of samples
// so tests can drive the main loop deterministically instead of
// depending on a real sampling distribution.
type fixedSequenceSpace struct {
	scalarSpace
	samples []scalar
	next    int
}

func (f *fixedSequenceSpace) Sample() scalar {
	s := f.samples[f.next%len(f.samples)]
	f.next++
	return s
}

func newArenaWithStartAndGoal(start, goal scalar) (*arena[scalar], nodeIndex, nodeIndex) {
	a := &arena[scalar]{}
	startIdx := a.alloc(&node[scalar]{state: start, time: 0, costToCome: 0, isViable: true, bestParent: invalidIndex, children: map[nodeIndex]edge[scalar]{}})
	goalIdx := a.alloc(&node[scalar]{state: goal, time: math.Inf(1), costToCome: math.Inf(1), isViable: true, bestParent: invalidIndex, children: map[nodeIndex]edge[scalar]{}})
	return a, startIdx, goalIdx
}

func straightLinePlanner(space scalarSpaceLike, numNeighbors int, radius float64, maxRuntime time.Duration) *Planner[scalar] {
	sp := subplanner.StraightLine[scalar]{Space: space, Speed: 1, Steps: 1, Logger: logging.NewTestLogger()}
	return New[scalar](space, sp, DurationCost[scalar], Options{NumNeighbors: numNeighbors, SearchRadius: radius, MaxRuntime: maxRuntime}, logging.NewTestLogger())
}

// scalarSpaceLike is satisfied by both scalarSpace and
// *fixedSequenceSpace; it exists only so test helpers can accept
// either without repeating their construction.
type scalarSpaceLike interface {
	Sample() scalar
	Distance(a, b scalar) float64
	Interpolate(a, b scalar, alpha float64) scalar
}

func TestPlanRejectsInvalidOptions(t *testing.T) {
	p := straightLinePlanner(scalarSpace{}, 0, 1, time.Second)
	_, err := p.Plan(context.Background(), 0, 10, 0)
	test.That(t, err, test.ShouldNotBeNil)

	p2 := straightLinePlanner(scalarSpace{}, 1, 1, 0)
	_, err = p2.Plan(context.Background(), 0, 10, 0)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPlanFindsDirectConnection(t *testing.T) {
	space := &fixedSequenceSpace{samples: []scalar{10}}
	p := straightLinePlanner(space, 1, 1, 50*time.Millisecond)

	traj, err := p.Plan(context.Background(), 0, 10, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, traj.Empty(), test.ShouldBeFalse)

	states := traj.States()
	test.That(t, float64(states[0]), test.ShouldAlmostEqual, 0.0)
	test.That(t, float64(states[len(states)-1]), test.ShouldAlmostEqual, 10.0)
}

func TestPlanReturnsEmptyWhenUnreachable(t *testing.T) {
	space := scalarSpace{}
	sp := subplanner.AlwaysFail[scalar]{Logger: logging.NewTestLogger()}
	p := New[scalar](space, sp, DurationCost[scalar], Options{NumNeighbors: 1, SearchRadius: 1, MaxRuntime: 5 * time.Millisecond}, logging.NewTestLogger())

	traj, err := p.Plan(context.Background(), 0, 10, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, traj.Empty(), test.ShouldBeTrue)
	test.That(t, p.Stats.DeadlineHits.Load(), test.ShouldEqual, int64(1))
}

func TestAttachSkipsNeighborsWithinEpsilon(t *testing.T) {
	p := straightLinePlanner(scalarSpace{}, 1, 1, time.Second)
	a, startIdx, _ := newArenaWithStartAndGoal(0, 10)
	g := newGraph[scalar](scalarSpace{}, a)
	g.insert(startIdx)

	_, attached, err := p.attach(context.Background(), logging.NewTestLogger(), a, g, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, attached, test.ShouldBeFalse)
}

func TestAttachConnectsToNearestNeighbor(t *testing.T) {
	p := straightLinePlanner(scalarSpace{}, 1, 1, time.Second)
	a, startIdx, _ := newArenaWithStartAndGoal(0, 10)
	g := newGraph[scalar](scalarSpace{}, a)
	g.insert(startIdx)

	sampleIdx, attached, err := p.attach(context.Background(), logging.NewTestLogger(), a, g, 5)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, attached, test.ShouldBeTrue)
	test.That(t, a.get(sampleIdx).bestParent, test.ShouldEqual, startIdx)
	test.That(t, a.get(sampleIdx).costToCome, test.ShouldAlmostEqual, 5.0)
}

func TestTryReachGoalSkipsNonViableGoal(t *testing.T) {
	p := straightLinePlanner(scalarSpace{}, 1, 100, time.Second)
	a, _, goalIdx := newArenaWithStartAndGoal(0, 10)
	a.get(goalIdx).isViable = false

	goals := newGraph[scalar](scalarSpace{}, a)
	goals.insert(goalIdx)

	sampleIdx := a.alloc(&node[scalar]{state: 9, time: 1, costToCome: 1, children: map[nodeIndex]edge[scalar]{}})

	_, _, found, err := p.tryReachGoal(context.Background(), a, goals, sampleIdx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, found, test.ShouldBeFalse)
}

func TestConnectAndMarkViableRewiresToCheaperParent(t *testing.T) {
	p := straightLinePlanner(scalarSpace{}, 1, 100, time.Second)
	a := &arena[scalar]{}
	logger := logging.NewTestLogger()

	startIdx := a.alloc(&node[scalar]{state: 0, time: 0, costToCome: 0, isViable: true, bestParent: invalidIndex, children: map[nodeIndex]edge[scalar]{}})
	expensiveIdx := a.alloc(&node[scalar]{state: 5, time: 10, costToCome: 10, isViable: true, bestParent: startIdx, children: map[nodeIndex]edge[scalar]{}})
	cheapIdx := a.alloc(&node[scalar]{state: 4, time: 1, costToCome: 1, isViable: false, bestParent: invalidIndex, children: map[nodeIndex]edge[scalar]{}})
	target := a.alloc(&node[scalar]{state: 6, time: 20, costToCome: 20, isViable: true, bestParent: expensiveIdx, children: map[nodeIndex]edge[scalar]{}})
	a.get(expensiveIdx).children[target] = edge[scalar]{traj: trajectory.New[scalar](logger, []scalar{5, 6}, []float64{10, 20})}

	g := newGraph[scalar](scalarSpace{}, a)
	g.insert(startIdx)

	cheaperTraj := trajectory.New[scalar](logger, []scalar{4, 6}, []float64{1, 2})
	p.connectAndMarkViable(a, g, cheapIdx, target, cheaperTraj)

	test.That(t, a.get(target).bestParent, test.ShouldEqual, cheapIdx)
	test.That(t, a.get(cheapIdx).isViable, test.ShouldBeTrue)
}

func TestExtractTrajectoryDetectsLoopAtStart(t *testing.T) {
	p := straightLinePlanner(scalarSpace{}, 1, 100, time.Second)
	a := &arena[scalar]{}
	logger := logging.NewTestLogger()

	startIdx := a.alloc(&node[scalar]{state: 0, time: 0, costToCome: 0, isViable: true, bestParent: invalidIndex, children: map[nodeIndex]edge[scalar]{}})
	midIdx := a.alloc(&node[scalar]{state: 5, time: 5, costToCome: 5, isViable: true, bestParent: startIdx, children: map[nodeIndex]edge[scalar]{}})
	a.get(startIdx).children[midIdx] = edge[scalar]{traj: trajectory.New[scalar](logger, []scalar{0, 5}, []float64{0, 5})}
	a.get(startIdx).bestParent = midIdx
	a.get(midIdx).children[startIdx] = edge[scalar]{traj: trajectory.New[scalar](logger, []scalar{5, 0}, []float64{5, 10})}

	traj := p.extractTrajectory(a, startIdx, startIdx)
	test.That(t, traj.Empty(), test.ShouldBeFalse)
	test.That(t, traj.Len(), test.ShouldEqual, 3)
}

func TestUpdateDescendantsPropagatesCostDecrease(t *testing.T) {
	p := straightLinePlanner(scalarSpace{}, 1, 100, time.Second)
	a := &arena[scalar]{}
	logger := logging.NewTestLogger()

	rootIdx := a.alloc(&node[scalar]{state: 0, time: 0, costToCome: 2, isViable: true, bestParent: invalidIndex, children: map[nodeIndex]edge[scalar]{}})
	childIdx := a.alloc(&node[scalar]{state: 3, time: 0, costToCome: 100, isViable: true, bestParent: invalidIndex, children: map[nodeIndex]edge[scalar]{}})
	a.get(rootIdx).children[childIdx] = edge[scalar]{traj: trajectory.New[scalar](logger, []scalar{0, 3}, []float64{0, 3})}

	p.updateDescendants(a, rootIdx, invalidIndex)

	test.That(t, a.get(childIdx).bestParent, test.ShouldEqual, rootIdx)
	test.That(t, a.get(childIdx).costToCome, test.ShouldAlmostEqual, 5.0)
	test.That(t, a.get(childIdx).time, test.ShouldAlmostEqual, 3.0)
}
