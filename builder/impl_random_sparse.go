// SPDX-License-Identifier: MIT
// Package: ssis/builder
//
// impl_random_sparse.go - RandomSparse(n, p): Erdős–Rényi G(n,p) contact graph.
//
// Canonical model:
//   - Include each admissible edge independently with probability p.
//   - Undirected: iterate unordered pairs {i,j} with i<j.
//   - Directed: iterate ordered pairs (i,j) with i≠j.
//
// Contract:
//   - n ≥ 1 (else ErrTooFewVertices).
//   - 0 ≤ p ≤ 1 (else ErrInvalidProbability).
//   - cfg.rng must be non-nil when 0 < p < 1 (else ErrNeedRandSource).
//
// Determinism:
//   - Stable trial order: i asc, then j asc → identical graphs per seed.
//
// Complexity: O(n²) Bernoulli trials, O(1) extra space.
package builder

import (
	"fmt"

	"github.com/katalvlaran/ssis/core"
)

const (
	methodRandomSparse      = "RandomSparse"
	minRandomSparseVertices = 1
	probMin                 = 0.0
	probMax                 = 1.0
)

// RandomSparse returns a Constructor that samples G(n,p).
func RandomSparse(n int, p float64) Constructor {
	return func(g *core.Graph, cfg builderConfig) error {
		if n < minRandomSparseVertices {
			return fmt.Errorf("%s: n=%d < min=%d: %w",
				methodRandomSparse, n, minRandomSparseVertices, ErrTooFewVertices)
		}
		// Written as a negated range so NaN is rejected too.
		if !(p >= probMin && p <= probMax) {
			return fmt.Errorf("%s: p=%.6f not in [%.1f,%.1f]: %w",
				methodRandomSparse, p, probMin, probMax, ErrInvalidProbability)
		}
		rng := cfg.rng
		if rng == nil && p > probMin && p < probMax {
			return fmt.Errorf("%s: rng is required: %w", methodRandomSparse, ErrNeedRandSource)
		}

		for i := 0; i < n; i++ {
			id := vertexID(i)
			if err := g.AddVertex(id); err != nil {
				return fmt.Errorf("%s: AddVertex(%s): %w", methodRandomSparse, id, err)
			}
		}

		// keep draws a Bernoulli(p) trial; p ∈ {0,1} never touches the RNG.
		keep := func() bool {
			switch {
			case p == probMax:
				return true
			case p == probMin:
				return false
			default:
				return rng.Float64() < p
			}
		}

		directed := g.Directed()
		for i := 0; i < n; i++ {
			u := vertexID(i)
			start := i + 1
			if directed {
				start = 0
			}
			for j := start; j < n; j++ {
				if i == j {
					continue
				}
				if !keep() {
					continue
				}
				v := vertexID(j)
				if _, err := g.AddEdge(u, v); err != nil {
					return fmt.Errorf("%s: AddEdge(%s→%s): %w", methodRandomSparse, u, v, err)
				}
			}
		}

		return nil
	}
}
