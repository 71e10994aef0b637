// SPDX-License-Identifier: MIT
// Package: ssis/builder
//
// impl_random_regular.go — RandomRegular(n, d): every individual has exactly d contacts.
//
// Canonical model:
//   - Stub pairing with incremental rejection: repeatedly draw two random
//     open stubs and pair them if the resulting edge is simple (no loops,
//     no parallels). When no
//     admissible pair is found within a bounded number of draws, the whole
//     pairing restarts. Edges are applied only after a complete pairing.
//
// Contract:
//   - Only UNDIRECTED graphs are supported (else ErrUnsupportedGraphMode).
//   - n ≥ 1; 0 ≤ d < n; n·d even (else ErrTooFewVertices).
//   - cfg.rng must be non-nil (else ErrNeedRandSource).
//   - ErrConstructFailed after maxPairingRestarts complete failures.
//
// Complexity: ~O(n·d) per attempt; O(n·d) temporary space for stubs.
package builder

import (
	"fmt"

	"github.com/katalvlaran/ssis/core"
)

const (
	methodRandomRegular = "RandomRegular"
	minRRVertices       = 1
	maxPairingRestarts  = 64
	pairDrawsPerStub    = 8 // draws allowed per remaining stub before a restart
	minPairDraws        = 64
)

// RandomRegular returns a Constructor that builds an undirected d-regular graph.
func RandomRegular(n, d int) Constructor {
	return func(g *core.Graph, cfg builderConfig) error {
		if g.Directed() {
			return fmt.Errorf("%s: only undirected graphs are supported: %w",
				methodRandomRegular, ErrUnsupportedGraphMode)
		}
		if n < minRRVertices {
			return fmt.Errorf("%s: n=%d < min=%d: %w",
				methodRandomRegular, n, minRRVertices, ErrTooFewVertices)
		}
		if d < 0 || d >= n {
			return fmt.Errorf("%s: degree must be in [0,%d), got %d: %w",
				methodRandomRegular, n, d, ErrTooFewVertices)
		}
		if (n*d)%2 != 0 {
			return fmt.Errorf("%s: n*d must be even (n=%d, d=%d): %w",
				methodRandomRegular, n, d, ErrTooFewVertices)
		}
		if cfg.rng == nil {
			return fmt.Errorf("%s: rng is required: %w", methodRandomRegular, ErrNeedRandSource)
		}

		for i := 0; i < n; i++ {
			id := vertexID(i)
			if err := g.AddVertex(id); err != nil {
				return fmt.Errorf("%s: AddVertex(%s): %w", methodRandomRegular, id, err)
			}
		}
		if d == 0 {
			return nil
		}

		pairs, ok := pairStubs(n, d, cfg)
		if !ok {
			return fmt.Errorf("%s: failed to construct after %d attempts: %w",
				methodRandomRegular, maxPairingRestarts, ErrConstructFailed)
		}
		for _, p := range pairs {
			u, v := vertexID(p[0]), vertexID(p[1])
			if _, err := g.AddEdge(u, v); err != nil {
				return fmt.Errorf("%s: AddEdge(%s→%s): %w", methodRandomRegular, u, v, err)
			}
		}

		return nil
	}
}

// pairStubs runs up to maxPairingRestarts pairing attempts and returns the
// first complete, simple pairing.
func pairStubs(n, d int, cfg builderConfig) ([][2]int, bool) {
	rng := cfg.rng
	total := n * d
	stubs := make([]int, total)
	pairs := make([][2]int, 0, total/2)

	for attempt := 0; attempt < maxPairingRestarts; attempt++ {
		for i := range stubs {
			stubs[i] = i / d
		}
		pairs = pairs[:0]
		seen := make(map[[2]int]struct{}, total/2)
		open := total

		for open > 0 {
			budget := open * pairDrawsPerStub
			if budget < minPairDraws {
				budget = minPairDraws
			}
			paired := false
			for draw := 0; draw < budget; draw++ {
				i, j := rng.Intn(open), rng.Intn(open)
				if i == j {
					continue
				}
				u, v := stubs[i], stubs[j]
				if u == v {
					continue
				}
				key := [2]int{u, v}
				if u > v {
					key = [2]int{v, u}
				}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				pairs = append(pairs, key)

				// Swap-remove the higher index first so the lower one stays valid.
				if i < j {
					i, j = j, i
				}
				stubs[i] = stubs[open-1]
				open--
				stubs[j] = stubs[open-1]
				open--
				paired = true
				break
			}
			if !paired {
				break
			}
		}
		if open == 0 {
			return pairs, true
		}
	}

	return nil, false
}
