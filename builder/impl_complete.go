// SPDX-License-Identifier: MIT
// Package: ssis/builder
//
// impl_complete.go — Complete(n): the fully mixed population K_n.
//
// Contract:
//   - n ≥ 1 (else ErrTooFewVertices).
//   - Adds vertices "0".."n-1" in ascending index order (0..n-1).
//   - Emits each unordered pair {i,j} with i<j exactly once, and mirrors to
//     j→i only if g.Directed() is true.
//
// Complexity: O(n) vertices + O(n²) edges; O(n) extra for the ID slice.
package builder

import (
	"fmt"

	"github.com/katalvlaran/ssis/core"
)

const (
	methodComplete   = "Complete"
	minCompleteNodes = 1
)

// Complete returns a Constructor that builds the complete simple graph K_n.
func Complete(n int) Constructor {
	return func(g *core.Graph, cfg builderConfig) error {
		if n < minCompleteNodes {
			return fmt.Errorf("%s: n=%d < min=%d: %w", methodComplete, n, minCompleteNodes, ErrTooFewVertices)
		}

		ids := make([]string, n)
		for i := 0; i < n; i++ {
			ids[i] = vertexID(i)
			if err := g.AddVertex(ids[i]); err != nil {
				return fmt.Errorf("%s: AddVertex(%s): %w", methodComplete, ids[i], err)
			}
		}

		directed := g.Directed()
		for i := 0; i < n; i++ {
			u := ids[i]
			for j := i + 1; j < n; j++ {
				v := ids[j]
				if _, err := g.AddEdge(u, v); err != nil {
					return fmt.Errorf("%s: AddEdge(%s→%s): %w", methodComplete, u, v, err)
				}
				if directed {
					if _, err := g.AddEdge(v, u); err != nil {
						return fmt.Errorf("%s: AddEdge(%s→%s): %w", methodComplete, v, u, err)
					}
				}
			}
		}

		return nil
	}
}
