package valuefn

import (
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

type bound struct{ ErrorRadius float64 }
type dynamics struct{ MaxSpeed float64 }

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vf.gob")
	data := FileData[bound, dynamics]{
		Bound:    bound{ErrorRadius: 0.5},
		Dynamics: dynamics{MaxSpeed: 2},
	}
	test.That(t, Save(path, data), test.ShouldBeNil)

	vf, err := Load[string, string, float64](path, func(d FileData[bound, dynamics], tracker, planner string) (float64, error) {
		return d.Bound.ErrorRadius, nil
	})
	test.That(t, err, test.ShouldBeNil)

	b, err := vf.TrackingBound()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b.ErrorRadius, test.ShouldAlmostEqual, 0.5)

	d, err := vf.PlannerDynamics()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d.MaxSpeed, test.ShouldAlmostEqual, 2.0)

	control, err := vf.OptimalControl("tracker-state", "planner-state")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, control, test.ShouldAlmostEqual, 0.5)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load[string, string, float64](filepath.Join(t.TempDir(), "missing.gob"), nil)
	test.That(t, err, test.ShouldNotBeNil)
}
