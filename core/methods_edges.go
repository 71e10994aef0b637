// SPDX-License-Identifier: MIT
//
// File: methods_edges.go
// Role: Edge creation (AddEdge) and the nextEdgeID() generator.
//
// Determinism:
//   - nextEdgeID() is monotonic and stable ("e" + decimal).
//
// Concurrency:
//   - Mutations under muEdgeAdj write lock.
package core

import (
	"strconv"
	"sync/atomic"
)

// edgeIDPrefix is the textual prefix for edge identifiers.
const edgeIDPrefix = 'e'

// AddEdge creates a new contact from→to and returns its ID.
// Missing endpoints are added first. Undirected edges are mirrored in the
// adjacency so that NeighborIDs sees them from both ends.
//
// Errors:
//   - ErrEmptyVertexID: either endpoint is "".
//   - ErrLoopNotAllowed: from == to.
//   - ErrMultiEdgeNotAllowed: (from,to) is already a contact.
//
// Complexity: O(1) amortized.
func (g *Graph) AddEdge(from, to string) (string, error) {
	if from == "" || to == "" {
		return "", ErrEmptyVertexID
	}
	if from == to {
		return "", ErrLoopNotAllowed
	}

	if err := g.AddVertex(from); err != nil {
		return "", err
	}
	if err := g.AddVertex(to); err != nil {
		return "", err
	}

	g.muEdgeAdj.Lock()
	defer g.muEdgeAdj.Unlock()

	if len(g.adjacencyList[from][to]) > 0 {
		return "", ErrMultiEdgeNotAllowed
	}

	eid := nextEdgeID(g)
	e := &Edge{ID: eid, From: from, To: to, Directed: g.directed}
	g.edges[eid] = e

	ensureAdjacency(g, from, to)
	g.adjacencyList[from][to][eid] = struct{}{}
	if !e.Directed {
		ensureAdjacency(g, to, from)
		g.adjacencyList[to][from][eid] = struct{}{}
	}

	return eid, nil
}

// nextEdgeID returns "e<N>" for a fresh N. Caller holds muEdgeAdj.
func nextEdgeID(g *Graph) string {
	n := atomic.AddUint64(&g.nextEdgeID, 1)
	buf := make([]byte, 0, 21)
	buf = append(buf, edgeIDPrefix)
	buf = strconv.AppendUint(buf, n, 10)

	return string(buf)
}
