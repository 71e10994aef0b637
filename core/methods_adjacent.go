// SPDX-License-Identifier: MIT
//
// File: methods_adjacent.go
// Role: Neighborhood APIs (NeighborIDs, AdjacencyList) and adjacency helpers.
//
// Determinism:
//   - NeighborIDs() returns unique IDs ordered by Vertex.Index.
//
// Concurrency:
//   - Read operations hold muVert then muEdgeAdj read locks.
//   - Helpers are called only under the muEdgeAdj write lock.
package core

import "sort"

// NeighborIDs returns the contacts reachable from id in one hop, ordered
// by vertex insertion index. Directed edges contribute only their head;
// undirected edges are visible from both ends.
//
// Errors:
//   - ErrEmptyVertexID: if id == "".
//   - ErrVertexNotFound: if the vertex does not exist.
//
// Complexity: O(d log d).
func (g *Graph) NeighborIDs(id string) ([]string, error) {
	if id == "" {
		return nil, ErrEmptyVertexID
	}

	g.muVert.RLock()
	defer g.muVert.RUnlock()
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()

	if _, ok := g.vertices[id]; !ok {
		return nil, ErrVertexNotFound
	}

	out := make([]string, 0, len(g.adjacencyList[id]))
	for to, set := range g.adjacencyList[id] {
		if len(set) == 0 {
			continue
		}
		out = append(out, to)
	}
	sort.Slice(out, func(i, j int) bool {
		return g.vertices[out[i]].Index < g.vertices[out[j]].Index
	})

	return out, nil
}

// AdjacencyList returns a snapshot of NeighborIDs for every vertex.
// Complexity: O(V + E log E).
func (g *Graph) AdjacencyList() map[string][]string {
	ids := g.Vertices()
	out := make(map[string][]string, len(ids))
	for _, id := range ids {
		// Vertices are never removed, so the lookup cannot fail.
		nbrs, _ := g.NeighborIDs(id)
		out[id] = nbrs
	}

	return out
}

// ensureAdjID bootstraps the outer adjacency bucket for id.
func ensureAdjID(g *Graph, id string) {
	if _, ok := g.adjacencyList[id]; !ok {
		g.adjacencyList[id] = make(map[string]map[string]struct{})
	}
}

// ensureAdjacency bootstraps adjacencyList[from][to].
func ensureAdjacency(g *Graph, from, to string) {
	ensureAdjID(g, from)
	if _, ok := g.adjacencyList[from][to]; !ok {
		g.adjacencyList[from][to] = make(map[string]struct{})
	}
}
