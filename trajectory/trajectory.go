// Package trajectory implements the timestamped state sequence that
// every SubPlanner call and every extracted plan is expressed as.
package trajectory

import (
	"encoding/json"

	"github.com/pkg/errors"

	"go.viam.com/fastrack/logging"
	"go.viam.com/fastrack/statespace"
)

// ErrEmptyTrajectory is returned by operations that require at least
// one sample.
var ErrEmptyTrajectory = errors.New("trajectory has no samples")

// Sample is the wire representation of a single (time, state) pair,
// used when a trajectory crosses a serialization boundary (e.g. the
// CLI's JSON output).
type Sample[S statespace.State[S]] struct {
	Time  float64 `json:"time"`
	State S       `json:"state"`
}

// Trajectory is a piecewise sequence of states indexed by a
// monotonically nondecreasing time axis. Construction repairs a
// strictly-decreasing timestamp by clamping it to its predecessor
// rather than rejecting the whole trajectory, since a SubPlanner
// producing a single out-of-order sample amid an otherwise usable path
// is a more common failure mode than a wholesale corrupt result.
type Trajectory[S statespace.State[S]] struct {
	states []S
	times  []float64

	warnMismatch *logging.Sometimes
	warnInverted *logging.Sometimes
	warnBefore   *logging.Sometimes
	warnAfter    *logging.Sometimes
}

// New builds a Trajectory from parallel states/times slices. If the
// slices differ in length, the longer one is truncated with a warning.
// Any strictly-decreasing timestamp is clamped to its predecessor with
// a warning.
func New[S statespace.State[S]](logger logging.Logger, states []S, times []float64) *Trajectory[S] {
	if logger == nil {
		logger = logging.Nop()
	}
	t := &Trajectory[S]{
		warnMismatch: logging.NewSometimes(logger, 1),
		warnInverted: logging.NewSometimes(logger, 1),
		warnBefore:   logging.NewSometimes(logger, 20),
		warnAfter:    logging.NewSometimes(logger, 20),
	}

	n := len(states)
	if len(times) < n {
		n = len(times)
	}
	if len(states) != len(times) {
		t.warnMismatch.Warnf("trajectory states (%d) and times (%d) length mismatch, truncating to %d", len(states), len(times), n)
	}

	t.states = append([]S(nil), states[:n]...)
	t.times = append([]float64(nil), times[:n]...)

	for i := 1; i < len(t.times); i++ {
		if t.times[i] < t.times[i-1] {
			t.warnInverted.Warnf("trajectory timestamp at index %d (%f) precedes predecessor (%f), clamping", i, t.times[i], t.times[i-1])
			t.times[i] = t.times[i-1]
		}
	}

	return t
}

// Len returns the number of samples.
func (t *Trajectory[S]) Len() int { return len(t.states) }

// Empty reports whether the trajectory carries no samples, the
// canonical way a SubPlanner or GraphDynamicPlanner signals failure.
func (t *Trajectory[S]) Empty() bool { return len(t.states) == 0 }

// States returns the trajectory's states in time order. The returned
// slice must not be mutated by the caller.
func (t *Trajectory[S]) States() []S { return t.states }

// Times returns the trajectory's timestamps in order, parallel to
// States(). The returned slice must not be mutated by the caller.
func (t *Trajectory[S]) Times() []float64 { return t.times }

// Duration returns the elapsed time between the first and last sample,
// or 0 for an empty or single-sample trajectory.
func (t *Trajectory[S]) Duration() float64 {
	if len(t.times) < 2 {
		return 0
	}
	return t.times[len(t.times)-1] - t.times[0]
}

// Interpolate returns the state at absolute time tau, linearly
// interpolating between the two bracketing samples via space's own
// Interpolate method. Querying before the first sample or after the
// last clamps to the nearest endpoint and logs a throttled warning.
func (t *Trajectory[S]) Interpolate(space statespace.Space[S], tau float64) (S, error) {
	var zero S
	if t.Empty() {
		return zero, ErrEmptyTrajectory
	}
	if len(t.times) == 1 {
		return t.states[0], nil
	}

	if tau <= t.times[0] {
		if tau < t.times[0] {
			t.warnBefore.Warnf("interpolating at time %f before trajectory start %f", tau, t.times[0])
		}
		return t.states[0], nil
	}
	last := len(t.times) - 1
	if tau >= t.times[last] {
		if tau > t.times[last] {
			t.warnAfter.Warnf("interpolating at time %f after trajectory end %f", tau, t.times[last])
		}
		return t.states[last], nil
	}

	hi := 1
	for hi < len(t.times) && t.times[hi] < tau {
		hi++
	}
	lo := hi - 1

	span := t.times[hi] - t.times[lo]
	var alpha float64
	if span > 0 {
		alpha = (tau - t.times[lo]) / span
	}
	return space.Interpolate(t.states[lo], t.states[hi], alpha), nil
}

// ResetFirstTime shifts every timestamp so the first sample lands at
// t0, preserving all inter-sample spacing. Used when an edge's
// sub-trajectory is grafted onto a parent node at a new absolute time
// during rewiring.
func (t *Trajectory[S]) ResetFirstTime(t0 float64) {
	if len(t.times) == 0 {
		return
	}
	shift := t0 - t.times[0]
	if shift == 0 {
		return
	}
	for i := range t.times {
		t.times[i] += shift
	}
}

// Clone returns a deep copy whose states/times slices are independent
// of the receiver's.
func (t *Trajectory[S]) Clone() *Trajectory[S] {
	return &Trajectory[S]{
		states:       append([]S(nil), t.states...),
		times:        append([]float64(nil), t.times...),
		warnMismatch: t.warnMismatch,
		warnInverted: t.warnInverted,
		warnBefore:   t.warnBefore,
		warnAfter:    t.warnAfter,
	}
}

// Concatenate joins a sequence of trajectory parts end to end, shifting
// each part's timestamps so its first sample lands exactly on the
// previous part's last sample. Empty parts are skipped. A fully empty
// input yields an empty trajectory.
func Concatenate[S statespace.State[S]](logger logging.Logger, parts []*Trajectory[S]) *Trajectory[S] {
	result := New[S](logger, nil, nil)
	var lastTime float64
	first := true

	for _, part := range parts {
		if part == nil || part.Empty() {
			continue
		}
		p := part.Clone()
		if !first {
			p.ResetFirstTime(lastTime)
		}
		if first {
			result.states = append(result.states, p.states...)
			result.times = append(result.times, p.times...)
		} else {
			// Skip the first sample of every part after the first: it
			// coincides with the previous part's last sample.
			result.states = append(result.states, p.states[1:]...)
			result.times = append(result.times, p.times[1:]...)
		}
		lastTime = p.times[len(p.times)-1]
		first = false
	}

	return result
}

// MarshalJSON renders the trajectory as an array of timestamped
// samples.
func (t *Trajectory[S]) MarshalJSON() ([]byte, error) {
	samples := make([]Sample[S], len(t.states))
	for i := range t.states {
		samples[i] = Sample[S]{Time: t.times[i], State: t.states[i]}
	}
	return json.Marshal(samples)
}
