// SPDX-License-Identifier: MIT
//
// File: methods_vertices.go
// Role: Vertex lifecycle & queries.
//
// Determinism:
//   - Vertices() returns IDs in insertion order; Vertex.Index mirrors that order.
//
// Concurrency:
//   - Vertex catalog protected by muVert.
//   - Adjacency bootstrap under muEdgeAdj.
package core

// AddVertex inserts a vertex if missing (idempotent).
//
// Errors:
//   - ErrEmptyVertexID: if id == "".
//
// Complexity: O(1) amortized.
func (g *Graph) AddVertex(id string) error {
	if id == "" {
		return ErrEmptyVertexID
	}

	g.muVert.Lock()
	defer g.muVert.Unlock()

	if _, exists := g.vertices[id]; exists {
		return nil
	}
	g.vertices[id] = &Vertex{ID: id, Index: len(g.order)}
	g.order = append(g.order, id)

	g.muEdgeAdj.Lock()
	ensureAdjID(g, id)
	g.muEdgeAdj.Unlock()

	return nil
}

// Vertices returns all vertex IDs in insertion order.
// The returned slice is a copy; callers may mutate it freely.
// Complexity: O(V).
func (g *Graph) Vertices() []string {
	g.muVert.RLock()
	defer g.muVert.RUnlock()

	out := make([]string, len(g.order))
	copy(out, g.order)

	return out
}
