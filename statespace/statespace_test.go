package statespace

import (
	"testing"

	"go.viam.com/test"
)

func TestVectorDistance(t *testing.T) {
	d := VectorDistance([]float64{0, 0}, []float64{3, 4})
	test.That(t, d, test.ShouldAlmostEqual, 5.0)

	d = VectorDistance([]float64{1, 2, 3}, []float64{1, 2, 3})
	test.That(t, d, test.ShouldAlmostEqual, 0.0)
}

func TestDefaultEpsilonIsTiny(t *testing.T) {
	test.That(t, DefaultEpsilon, test.ShouldBeLessThan, 1e-6)
}
