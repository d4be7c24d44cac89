// Package pointmass is the concrete example state space this module
// ships: a 6-DOF point mass (3-D position and velocity), the natural
// stand-in for the "fast, dynamically capable tracker (e.g., a
// quadrotor)" fastrack's own documentation uses as its running
// example. It exists to give graphplanner, subplanner, and the CLI
// something concrete to run against.
package pointmass

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/floats"
)

// State is a point mass's position and velocity.
type State struct {
	Position r3.Vector
	Velocity r3.Vector
}

// ToVector implements statespace.State.
func (s State) ToVector() []float64 {
	return []float64{
		s.Position.X, s.Position.Y, s.Position.Z,
		s.Velocity.X, s.Velocity.Y, s.Velocity.Z,
	}
}

// ApproxEqual implements statespace.State.
func (s State) ApproxEqual(other State, epsilon float64) bool {
	a, b := s.ToVector(), other.ToVector()
	for i := range a {
		if math.Abs(a[i]-b[i]) > epsilon {
			return false
		}
	}
	return true
}

// Space samples uniformly within an axis-aligned position/velocity
// box.
type Space struct {
	PositionMin, PositionMax r3.Vector
	VelocityMin, VelocityMax r3.Vector
	Rand                     *rand.Rand
}

func (sp *Space) rng() *rand.Rand {
	if sp.Rand == nil {
		sp.Rand = rand.New(rand.NewSource(1))
	}
	return sp.Rand
}

// Sample implements statespace.Space.
func (sp *Space) Sample() State {
	r := sp.rng()
	lerp := func(lo, hi float64) float64 { return lo + r.Float64()*(hi-lo) }
	return State{
		Position: r3.Vector{
			X: lerp(sp.PositionMin.X, sp.PositionMax.X),
			Y: lerp(sp.PositionMin.Y, sp.PositionMax.Y),
			Z: lerp(sp.PositionMin.Z, sp.PositionMax.Z),
		},
		Velocity: r3.Vector{
			X: lerp(sp.VelocityMin.X, sp.VelocityMax.X),
			Y: lerp(sp.VelocityMin.Y, sp.VelocityMax.Y),
			Z: lerp(sp.VelocityMin.Z, sp.VelocityMax.Z),
		},
	}
}

// Distance implements statespace.Space as Euclidean distance over
// ToVector.
func (sp *Space) Distance(a, b State) float64 {
	return floats.Distance(a.ToVector(), b.ToVector(), 2)
}

// Interpolate implements statespace.Space by linearly interpolating
// position and velocity independently.
func (sp *Space) Interpolate(a, b State, alpha float64) State {
	lerp := func(x, y float64) float64 { return (1-alpha)*x + alpha*y }
	return State{
		Position: r3.Vector{
			X: lerp(a.Position.X, b.Position.X),
			Y: lerp(a.Position.Y, b.Position.Y),
			Z: lerp(a.Position.Z, b.Position.Z),
		},
		Velocity: r3.Vector{
			X: lerp(a.Velocity.X, b.Velocity.X),
			Y: lerp(a.Velocity.Y, b.Velocity.Y),
			Z: lerp(a.Velocity.Z, b.Velocity.Z),
		},
	}
}
