// SPDX-License-Identifier: MIT
//
// File: types.go
// Role: Vertex, Edge, Graph, GraphOption, sentinel errors and the NewGraph constructor.
//
// Errors:
//
//	ErrEmptyVertexID       - vertex ID is the empty string.
//	ErrVertexNotFound      - requested vertex does not exist.
//	ErrLoopNotAllowed      - a node cannot be its own contact.
//	ErrMultiEdgeNotAllowed - the two vertices are already in contact.
package core

import (
	"errors"
	"sync"
)

// Sentinel errors for core graph operations.
var (
	// ErrEmptyVertexID indicates that the provided vertex ID is empty.
	ErrEmptyVertexID = errors.New("core: vertex ID is empty")

	// ErrVertexNotFound indicates an operation referenced a non-existent vertex.
	ErrVertexNotFound = errors.New("core: vertex not found")

	// ErrLoopNotAllowed indicates a self-loop; contact graphs are loop-free.
	ErrLoopNotAllowed = errors.New("core: self-loop not allowed")

	// ErrMultiEdgeNotAllowed indicates a parallel contact between the same
	// ordered pair.
	ErrMultiEdgeNotAllowed = errors.New("core: multi-edges not allowed")
)

// Vertex is a member of the contact population.
//
// Index is the zero-based insertion rank of the vertex; it is stable for the
// lifetime of the Graph and is what simulation snapshots address nodes by.
type Vertex struct {
	// ID is the unique identifier for this Vertex.
	ID string

	// Index is the insertion rank (0..V-1).
	Index int
}

// Edge is a contact between two vertices.
type Edge struct {
	// ID uniquely identifies this edge in the Graph ("e1", "e2", ...).
	ID string

	// From is the source vertex ID.
	From string

	// To is the destination vertex ID.
	To string

	// Directed reports whether contagion may only travel From→To.
	Directed bool
}

// GraphOption configures behavior of a Graph before creation.
type GraphOption func(g *Graph)

// WithDirected sets the directedness of all new edges.
func WithDirected(directed bool) GraphOption {
	return func(g *Graph) { g.directed = directed }
}

// Graph is the in-memory contact graph.
//
// muVert protects the vertex catalog and insertion order; muEdgeAdj protects
// the edge catalog and adjacency. Lock order is always muVert -> muEdgeAdj.
type Graph struct {
	muVert    sync.RWMutex // guards vertices, order
	muEdgeAdj sync.RWMutex // guards edges and adjacency

	directed bool

	nextEdgeID uint64             // atomic edge ID generator
	vertices   map[string]*Vertex // vertex ID → Vertex
	order      []string           // vertex IDs in insertion order
	edges      map[string]*Edge   // edge ID → Edge

	// adjacencyList[from][to][edgeID] = struct{}{}
	adjacencyList map[string]map[string]map[string]struct{}
}

// NewGraph creates an empty Graph.
// By default the Graph is undirected. Graphs never hold loops or parallel
// contacts.
// Complexity: O(len(opts)).
func NewGraph(opts ...GraphOption) *Graph {
	g := &Graph{
		vertices:      make(map[string]*Vertex),
		edges:         make(map[string]*Edge),
		adjacencyList: make(map[string]map[string]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// GraphStats is a read-only summary of a Graph's flags and sizes.
type GraphStats struct {
	Directed    bool
	VertexCount int
	EdgeCount   int
}
