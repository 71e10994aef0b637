// SPDX-License-Identifier: MIT
// Package: ssis/builder
//
// options.go — functional options for the builder package.
//
// Contract (strict):
//   - Options are functional (type BuilderOption func(*builderConfig)).
//   - Determinism is explicit: seeding is done via WithSeed.

package builder

import "math/rand"

// BuilderOption customizes the behavior of a constructor by mutating a
// builderConfig instance before graph construction begins.
type BuilderOption func(*builderConfig)

// WithSeed creates a new *rand.Rand with the given seed (deterministic).
func WithSeed(seed int64) BuilderOption {
	return func(c *builderConfig) {
		c.rng = rand.New(rand.NewSource(seed))
	}
}
