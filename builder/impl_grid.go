// SPDX-License-Identifier: MIT
// Package: ssis/builder
//
// impl_grid.go — Grid(rows, cols): the square contact lattice.
//
// Canonical model:
//   - 2D orthogonal, non-periodic lattice with 4-neighbourhood.
//   - Vertex IDs use the coordinate scheme "r,c" (row-major) rather than
//     the decimal indices of the other constructors.
//
// Contract:
//   - rows ≥ 1 and cols ≥ 1 (else ErrTooFewVertices).
//   - For each (r,c) emits Right then Bottom where they exist; directed
//     graphs also get the reverse arc.
//
// Complexity: O(rows·cols) time, O(1) extra space.
package builder

import (
	"fmt"

	"github.com/katalvlaran/ssis/core"
)

const (
	methodGrid = "Grid"
	minGridDim = 1
	gridIDFmt  = "%d,%d"
)

// GridID returns the vertex ID used by Grid for cell (r,c).
func GridID(r, c int) string {
	return fmt.Sprintf(gridIDFmt, r, c)
}

// Grid returns a Constructor that builds a rows×cols orthogonal lattice.
func Grid(rows, cols int) Constructor {
	return func(g *core.Graph, cfg builderConfig) error {
		if rows < minGridDim || cols < minGridDim {
			return fmt.Errorf("%s: rows=%d, cols=%d (each must be ≥ %d): %w",
				methodGrid, rows, cols, minGridDim, ErrTooFewVertices)
		}

		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				id := GridID(r, c)
				if err := g.AddVertex(id); err != nil {
					return fmt.Errorf("%s: AddVertex(%s): %w", methodGrid, id, err)
				}
			}
		}

		directed := g.Directed()
		link := func(u, v string) error {
			if _, err := g.AddEdge(u, v); err != nil {
				return fmt.Errorf("%s: AddEdge(%s→%s): %w", methodGrid, u, v, err)
			}
			if directed {
				if _, err := g.AddEdge(v, u); err != nil {
					return fmt.Errorf("%s: AddEdge(%s→%s): %w", methodGrid, v, u, err)
				}
			}
			return nil
		}

		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				u := GridID(r, c)
				if c+1 < cols {
					if err := link(u, GridID(r, c+1)); err != nil {
						return err
					}
				}
				if r+1 < rows {
					if err := link(u, GridID(r+1, c)); err != nil {
						return err
					}
				}
			}
		}

		return nil
	}
}
