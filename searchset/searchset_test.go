package searchset

import (
	"math"
	"testing"

	"go.viam.com/test"
)

type point struct{ x, y float64 }

func (p point) ToVector() []float64 { return []float64{p.x, p.y} }

func (p point) ApproxEqual(other point, epsilon float64) bool {
	dx, dy := p.x-other.x, p.y-other.y
	return dx*dx+dy*dy <= epsilon*epsilon
}

type pointSpace struct{}

func (pointSpace) Sample() point                                { return point{} }
func (pointSpace) Distance(a, b point) float64                  { return math.Hypot(a.x-b.x, a.y-b.y) }
func (pointSpace) Interpolate(a, b point, alpha float64) point  { return a }

func TestInitialNodeIsFirstInserted(t *testing.T) {
	s := New[string, point](pointSpace{})
	_, ok := s.InitialNode()
	test.That(t, ok, test.ShouldBeFalse)

	s.Insert(point{0, 0}, "first")
	s.Insert(point{1, 1}, "second")

	v, ok := s.InitialNode()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, v, test.ShouldEqual, "first")
}

func TestKnnSearchOrdersByDistance(t *testing.T) {
	s := New[string, point](pointSpace{})
	s.Insert(point{10, 0}, "far")
	s.Insert(point{1, 0}, "near")
	s.Insert(point{5, 0}, "mid")

	results := s.KnnSearch(point{0, 0}, 2)
	test.That(t, len(results), test.ShouldEqual, 2)
	test.That(t, results[0].Value, test.ShouldEqual, "near")
	test.That(t, results[1].Value, test.ShouldEqual, "mid")
}

func TestKnnSearchBreaksTiesByInsertionOrder(t *testing.T) {
	s := New[string, point](pointSpace{})
	s.Insert(point{1, 0}, "a")
	s.Insert(point{0, 1}, "b")

	results := s.KnnSearch(point{0, 0}, 2)
	test.That(t, results[0].Value, test.ShouldEqual, "a")
	test.That(t, results[1].Value, test.ShouldEqual, "b")
}

func TestKnnSearchCapsAtSetSize(t *testing.T) {
	s := New[string, point](pointSpace{})
	s.Insert(point{0, 0}, "only")

	results := s.KnnSearch(point{5, 5}, 10)
	test.That(t, len(results), test.ShouldEqual, 1)
}

func TestRadiusSearchExcludesOutOfRange(t *testing.T) {
	s := New[string, point](pointSpace{})
	s.Insert(point{1, 0}, "near")
	s.Insert(point{100, 0}, "far")

	results := s.RadiusSearch(point{0, 0}, 5)
	test.That(t, len(results), test.ShouldEqual, 1)
	test.That(t, results[0].Value, test.ShouldEqual, "near")
}
