package graphplanner

import (
	"go.viam.com/fastrack/searchset"
	"go.viam.com/fastrack/statespace"
	"go.viam.com/fastrack/trajectory"
)

// nodeIndex addresses a node within a single Plan call's arena. Nodes
// are never shared across Plan calls and never hold pointers to one
// another directly: every cross-reference (parent, child) is an index
// into the owning arena, which rules out the accidental reference
// cycles a pointer-linked tree invites during rewiring.
type nodeIndex int32

const invalidIndex nodeIndex = -1

// edge is the sub-trajectory connecting a node to one of its children,
// keyed by the child's index in the node's children map.
type edge[S statespace.State[S]] struct {
	traj *trajectory.Trajectory[S]
}

// node is a single vertex of the search tree/graph built during a Plan
// call.
type node[S statespace.State[S]] struct {
	state      S
	time       float64
	costToCome float64
	isViable   bool
	bestParent nodeIndex
	children   map[nodeIndex]edge[S]
}

// arena owns every node allocated during one Plan call, addressed by
// stable nodeIndex values that remain valid for the arena's lifetime.
type arena[S statespace.State[S]] struct {
	nodes []*node[S]
}

func (a *arena[S]) alloc(n *node[S]) nodeIndex {
	a.nodes = append(a.nodes, n)
	return nodeIndex(len(a.nodes) - 1)
}

func (a *arena[S]) get(i nodeIndex) *node[S] {
	return a.nodes[i]
}

// graph is a SearchableSet view over a subset of an arena's nodes: the
// outbound tree rooted at the start state, the goal set, or the
// single-node set a recursive escape call builds around its sample.
type graph[S statespace.State[S]] struct {
	arena *arena[S]
	set   *searchset.Set[nodeIndex, S]
}

func newGraph[S statespace.State[S]](space statespace.Space[S], a *arena[S]) *graph[S] {
	return &graph[S]{arena: a, set: searchset.New[nodeIndex, S](space)}
}

func (g *graph[S]) insert(idx nodeIndex) {
	g.set.Insert(g.arena.get(idx).state, idx)
}

func (g *graph[S]) knn(state S, k int) []nodeIndex {
	results := g.set.KnnSearch(state, k)
	out := make([]nodeIndex, len(results))
	for i, r := range results {
		out[i] = r.Value
	}
	return out
}

func (g *graph[S]) radius(state S, r float64) []nodeIndex {
	results := g.set.RadiusSearch(state, r)
	out := make([]nodeIndex, len(results))
	for i, r2 := range results {
		out[i] = r2.Value
	}
	return out
}

func (g *graph[S]) initial() (nodeIndex, bool) {
	return g.set.InitialNode()
}
