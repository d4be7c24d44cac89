// Package metrics holds the run-time counters a GraphDynamicPlanner
// call accumulates, safe for concurrent reads while the planner is
// still running.
package metrics

import "go.uber.org/atomic"

// RunStats counts the events a Planner's Plan calls produce; counters
// are not reset between calls, so they accumulate over every Plan call
// made on the same Planner. All fields
// are safe to read concurrently with the planner's own goroutine (the
// recursive-escape call in particular runs on its own goroutine and
// increments these same counters before the planner joins it).
type RunStats struct {
	SamplesDrawn      atomic.Int64
	EdgesAttempted    atomic.Int64
	EdgesAccepted     atomic.Int64
	RewiresPropagated atomic.Int64
	DeadlineHits      atomic.Int64
}

// Snapshot is a point-in-time, non-atomic copy of RunStats suitable for
// logging or serialization.
type Snapshot struct {
	SamplesDrawn      int64 `json:"samples_drawn"`
	EdgesAttempted    int64 `json:"edges_attempted"`
	EdgesAccepted     int64 `json:"edges_accepted"`
	RewiresPropagated int64 `json:"rewires_propagated"`
	DeadlineHits      int64 `json:"deadline_hits"`
}

// Snapshot reads all counters into a plain struct.
func (s *RunStats) Snapshot() Snapshot {
	return Snapshot{
		SamplesDrawn:      s.SamplesDrawn.Load(),
		EdgesAttempted:    s.EdgesAttempted.Load(),
		EdgesAccepted:     s.EdgesAccepted.Load(),
		RewiresPropagated: s.RewiresPropagated.Load(),
		DeadlineHits:      s.DeadlineHits.Load(),
	}
}
