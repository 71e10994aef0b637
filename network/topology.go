// SPDX-License-Identifier: MIT
// Package: ssis/network
//
// topology.go — immutable, index-addressed snapshot of a contact graph.
//
// Canonical model:
//   - Vertices are renumbered 0..N-1 in core insertion order.
//   - Contacts are stored in CSR form: offsets[i]..offsets[i+1] index into
//     targets. Each row is sorted ascending and free of duplicates.
//   - Undirected edges appear in both rows; directed edges only in the
//     row of their tail. A node never contacts itself.
//
// Concurrency:
//   - A Topology is read-only after FromGraph and safe to share across
//     any number of concurrent trials.
//
// Complexity: FromGraph is O(V + E log E); all queries are O(1).
package network

import (
	"errors"
	"fmt"
	"sort"

	"github.com/katalvlaran/ssis/core"
)

// ErrEmptyGraph indicates a graph without vertices; an epidemic needs at
// least one node to seed.
var ErrEmptyGraph = errors.New("network: graph has no vertices")

// ErrNilGraph indicates a nil *core.Graph argument.
var ErrNilGraph = errors.New("network: nil graph")

const methodFromGraph = "FromGraph"

// Topology is the read-only contact structure consumed by the simulation.
type Topology struct {
	directed bool
	ids      []string
	index    map[string]int
	offsets  []int
	targets  []int
}

// FromGraph snapshots g into a Topology.
//
// Errors:
//   - ErrNilGraph, ErrEmptyGraph.
func FromGraph(g *core.Graph) (*Topology, error) {
	if g == nil {
		return nil, fmt.Errorf("%s: %w", methodFromGraph, ErrNilGraph)
	}
	stats := g.Stats()
	if stats.VertexCount == 0 {
		return nil, fmt.Errorf("%s: %w", methodFromGraph, ErrEmptyGraph)
	}
	ids := g.Vertices()
	adj := g.AdjacencyList()

	contacts := stats.EdgeCount
	if !stats.Directed {
		contacts *= 2
	}
	t := &Topology{
		directed: stats.Directed,
		ids:      ids,
		index:    make(map[string]int, len(ids)),
		offsets:  make([]int, len(ids)+1),
		targets:  make([]int, 0, contacts),
	}
	for i, id := range ids {
		t.index[id] = i
	}

	for i, id := range ids {
		nbrs := adj[id]
		row := make([]int, 0, len(nbrs))
		for _, nid := range nbrs {
			j, ok := t.index[nid]
			if !ok || j == i {
				continue
			}
			row = append(row, j)
		}
		// NeighborIDs is already unique and index-ordered; sort keeps the
		// CSR invariant independent of that detail.
		sort.Ints(row)
		t.targets = append(t.targets, row...)
		t.offsets[i+1] = len(t.targets)
	}

	return t, nil
}

// Directed reports whether contacts are one-way.
func (t *Topology) Directed() bool { return t.directed }

// VertexCount returns N.
func (t *Topology) VertexCount() int { return len(t.ids) }

// EdgeCount returns the number of directed contacts; an undirected edge
// counts twice.
func (t *Topology) EdgeCount() int { return len(t.targets) }

// Neighbors returns the contacts of node i in ascending order.
// The returned slice aliases internal storage and must not be modified.
// It panics if i is out of range, like a slice index.
func (t *Topology) Neighbors(i int) []int {
	return t.targets[t.offsets[i]:t.offsets[i+1]:t.offsets[i+1]]
}

// Degree returns len(Neighbors(i)).
func (t *Topology) Degree(i int) int {
	return t.offsets[i+1] - t.offsets[i]
}

// ID returns the core vertex ID of node i.
func (t *Topology) ID(i int) string { return t.ids[i] }

// Index returns the node index of a core vertex ID.
func (t *Topology) Index(id string) (int, bool) {
	i, ok := t.index[id]
	return i, ok
}
