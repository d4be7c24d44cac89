// Package valuefn models the precomputed Hamilton-Jacobi reachability
// value function fastrack treats as an external oracle: something that
// already exists on disk by the time a planner or tracker process
// starts, never recomputed online. Actually solving the reachability
// PDE is out of scope for this module.
package valuefn

import (
	"encoding/gob"
	"os"

	"github.com/pkg/errors"
)

// ValueFunction answers the three questions the tracking loop and the
// planner's SubPlanner both need from reachability analysis: the
// optimal tracking control for a given (tracker, planner) state pair,
// the worst-case tracking error bound, and the planner-facing
// dynamics that bound implies.
type ValueFunction[TrackerState, PlannerState, Control, Bound, Dynamics any] interface {
	OptimalControl(tracker TrackerState, planner PlannerState) (Control, error)
	TrackingBound() (Bound, error)
	PlannerDynamics() (Dynamics, error)
}

// FileData is the on-disk payload a precomputed value function file
// carries: everything except the control law itself, which depends on
// concrete state types this package stays agnostic to.
type FileData[Bound, Dynamics any] struct {
	Bound    Bound
	Dynamics Dynamics
}

// FileBacked loads FileData once at construction and answers
// TrackingBound/PlannerDynamics directly from it, delegating
// OptimalControl to a caller-supplied pure function over that data.
type FileBacked[TrackerState, PlannerState, Control, Bound, Dynamics any] struct {
	data    FileData[Bound, Dynamics]
	control func(FileData[Bound, Dynamics], TrackerState, PlannerState) (Control, error)
}

// ControlFunc is the shape Load expects for computing OptimalControl
// from loaded FileData plus the current tracker/planner states.
type ControlFunc[TrackerState, PlannerState, Control, Bound, Dynamics any] func(FileData[Bound, Dynamics], TrackerState, PlannerState) (Control, error)

// Load reads a gob-encoded FileData blob from path and pairs it with
// control to produce a ready-to-use ValueFunction.
func Load[TrackerState, PlannerState, Control, Bound, Dynamics any](
	path string,
	control ControlFunc[TrackerState, PlannerState, Control, Bound, Dynamics],
) (*FileBacked[TrackerState, PlannerState, Control, Bound, Dynamics], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening value function file %q", path)
	}
	defer f.Close()

	var data FileData[Bound, Dynamics]
	if err := gob.NewDecoder(f).Decode(&data); err != nil {
		return nil, errors.Wrap(err, "decoding value function file")
	}

	return &FileBacked[TrackerState, PlannerState, Control, Bound, Dynamics]{data: data, control: control}, nil
}

// Save writes data to path as a gob-encoded blob a later Load call can
// read back. Producing the data in the first place (running the
// reachability computation) is out of scope for this module; Save
// exists so tests and example tooling can round-trip fixtures.
func Save[Bound, Dynamics any](path string, data FileData[Bound, Dynamics]) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating value function file %q", path)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(data); err != nil {
		return errors.Wrap(err, "encoding value function file")
	}
	return nil
}

// OptimalControl implements ValueFunction.
func (v *FileBacked[T, P, C, B, D]) OptimalControl(tracker T, planner P) (C, error) {
	return v.control(v.data, tracker, planner)
}

// TrackingBound implements ValueFunction.
func (v *FileBacked[T, P, C, B, D]) TrackingBound() (B, error) {
	return v.data.Bound, nil
}

// PlannerDynamics implements ValueFunction.
func (v *FileBacked[T, P, C, B, D]) PlannerDynamics() (D, error) {
	return v.data.Dynamics, nil
}
