// SPDX-License-Identifier: MIT
//
// File: api.go
// Role: Read-only getters for construction-time flags and a Stats snapshot.
// Policy:
//   - No algorithms or hidden state here.
//   - Flags are immutable after NewGraph, but are still read under muVert.

package core

// Directed reports whether new edges are directed.
// Complexity: O(1).
func (g *Graph) Directed() bool {
	g.muVert.RLock()
	defer g.muVert.RUnlock()

	return g.directed
}

// Stats produces a read-only snapshot of flags and catalog sizes.
//
// The two locks are taken one after the other, never together, so a
// concurrent writer may be observed between phases.
//
// Complexity: O(1).
func (g *Graph) Stats() *GraphStats {
	g.muVert.RLock()
	stats := GraphStats{
		Directed:    g.directed,
		VertexCount: len(g.order),
	}
	g.muVert.RUnlock()

	g.muEdgeAdj.RLock()
	stats.EdgeCount = len(g.edges)
	g.muEdgeAdj.RUnlock()

	return &stats
}
