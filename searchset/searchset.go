// Package searchset implements the SearchableSet abstraction the graph
// planner uses to find nearest neighbors and radius-bounded candidates
// among the nodes it has already placed.
//
// gonum.org/v1/gonum/spatial/kdtree was evaluated as the backing index
// but its nearest-neighbor Keeper breaks ties by heap order, not by
// insertion order, and the planner's determinism requirement ("two
// calls with identical insertion history return identical results")
// needs ties broken by insertion order specifically. Rather than wrap
// kdtree with a second sort pass that would erase most of its benefit
// at the scales this planner runs at, Set keeps nodes in a flat,
// insertion-ordered slice and scores them through the space's own
// Distance method, so the metric stays whatever the concrete
// statespace.Space implementation says it is rather than a fixed
// Euclidean norm.
package searchset

import (
	"sort"

	"go.viam.com/fastrack/statespace"
)

type entry[N any, S statespace.State[S]] struct {
	state S
	value N
}

// Set is a spatially-queryable, insertion-ordered bag of values
// addressed by their state-space location.
type Set[N any, S statespace.State[S]] struct {
	space   statespace.Space[S]
	entries []entry[N, S]
}

// New returns an empty Set over the given space.
func New[N any, S statespace.State[S]](space statespace.Space[S]) *Set[N, S] {
	return &Set[N, S]{space: space}
}

// Insert adds value at state's location, in insertion order.
func (s *Set[N, S]) Insert(state S, value N) {
	s.entries = append(s.entries, entry[N, S]{state: state, value: value})
}

// Len returns the number of values in the set.
func (s *Set[N, S]) Len() int { return len(s.entries) }

// InitialNode returns the first value Insert was ever called with,
// i.e. the distinguished root of whichever graph this set indexes.
func (s *Set[N, S]) InitialNode() (N, bool) {
	if len(s.entries) == 0 {
		var zero N
		return zero, false
	}
	return s.entries[0].value, true
}

// Result pairs a stored value with its distance from a query state.
type Result[N any] struct {
	Value    N
	Distance float64
}

func (s *Set[N, S]) distance(a, b S) float64 {
	return s.space.Distance(a, b)
}

// KnnSearch returns the k values nearest to state, nearest first, ties
// broken by insertion order. If the set holds fewer than k values, all
// of them are returned.
func (s *Set[N, S]) KnnSearch(state S, k int) []Result[N] {
	if k <= 0 {
		return nil
	}
	results := make([]Result[N], len(s.entries))
	for i, e := range s.entries {
		results[i] = Result[N]{Value: e.value, Distance: s.distance(state, e.state)}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	if k < len(results) {
		results = results[:k]
	}
	return results
}

// RadiusSearch returns every value within radius of state, nearest
// first, ties broken by insertion order.
func (s *Set[N, S]) RadiusSearch(state S, radius float64) []Result[N] {
	results := make([]Result[N], 0, len(s.entries))
	for _, e := range s.entries {
		d := s.distance(state, e.state)
		if d <= radius {
			results = append(results, Result[N]{Value: e.value, Distance: d})
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	return results
}
