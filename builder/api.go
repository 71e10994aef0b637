// SPDX-License-Identifier: MIT
// Package: ssis/builder
//
// api.go - public entry-points for the builder package.
//
// Design contract (strict):
//   - One orchestrator: BuildGraph(gopts, bopts, cons...). Creates g, resolves cfg, runs cons in order.
//   - Functional options (BuilderOption) resolve into an immutable builderConfig (no global state).
//   - Determinism: same inputs/options/seed and constructor order ⇒ identical contact graphs.
//   - Safety: never panic at runtime; return sentinel errors from constructors.
//
// Topology factories (implemented in impl_*.go):
//
//	Complete(n)          K_n, every pair in contact.            O(n²)
//	Grid(rows, cols)     2D lattice, 4-neighbourhood, "r,c" IDs. O(rows·cols)
//	RandomSparse(n, p)   Erdős–Rényi G(n,p); needs an RNG.       O(n²)
//	RandomRegular(n, d)  uniform-ish d-regular; needs an RNG.    ~O(n·d)
package builder

import (
	"fmt"

	"github.com/katalvlaran/ssis/core"
)

// Constructor applies a deterministic graph mutation using the resolved
// builderConfig. Constructors MUST:
//   - Validate parameters early and return sentinel errors (no panics).
//   - Respect the core graph mode (directed or undirected).
//   - Preserve determinism for the same config and call order.
type Constructor func(g *core.Graph, cfg builderConfig) error

// BuildGraph creates a new core.Graph with graph options gopts, resolves the
// builder configuration from bopts, and applies all constructors in order.
// Any constructor error is wrapped with the context "BuildGraph: %w" and
// returned immediately; no partial cleanup is attempted.
//
// Errors:
//   - Wraps constructor errors via %w; callers should branch with errors.Is
//     against builder sentinels (ErrTooFewVertices, ErrInvalidProbability, ...).
func BuildGraph(gopts []core.GraphOption, bopts []BuilderOption, cons ...Constructor) (*core.Graph, error) {
	g := core.NewGraph(gopts...)
	cfg := newBuilderConfig(bopts...)

	for i, fn := range cons {
		if fn == nil {
			return nil, fmt.Errorf("BuildGraph: nil constructor at index %d: %w", i, ErrConstructFailed)
		}
		if err := fn(g, cfg); err != nil {
			return nil, fmt.Errorf("BuildGraph: %w", err)
		}
	}

	return g, nil
}
