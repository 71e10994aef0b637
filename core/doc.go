// Package core provides the thread-safe in-memory contact graph consumed by
// the simulation packages.
//
// The Graph G = (V,E) supports:
//
//   - Directed vs. undirected contacts (WithDirected)
//   - Simple contacts only: loops and parallel edges are rejected
//   - Constant-time edge operations via nested maps:
//     adjacencyList[from][to][edgeID] = struct{}{}
//   - Collision-free atomic Edge.ID generation ("e1", "e2", …)
//   - Separate sync.RWMutex for vertices (muVert) and edges+adjacency (muEdgeAdj)
//
// Vertices carry a stable insertion Index. Simulation code never addresses
// nodes by string: network.FromGraph freezes a Graph into a dense index
// space and all per-node state lives outside the Graph. Topology is never
// mutated by a simulation.
//
// Core Methods:
//
//	AddVertex(id string) error                 // O(1)
//	AddEdge(from, to string) (string, error)   // O(1)
//	NeighborIDs(id string) ([]string, error)   // O(d·log d), index order
//	AdjacencyList() map[string][]string        // O(V+E)
//	Vertices() []string                        // O(V), insertion order
//	Directed() bool, Stats() *GraphStats       // O(1)
package core
